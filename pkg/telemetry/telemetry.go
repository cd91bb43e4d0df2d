// Package telemetry gives the pkg/ and cmd/ host-side tooling one
// leveled logger to share, since gomeboy itself mixes logrus in its
// old mmu package with plain log elsewhere rather than committing to
// one logging library — see DESIGN.md for why that makes log/slog an
// acceptable stdlib choice here specifically.
package telemetry

import (
	"log/slog"
	"os"
)

// Logger is a thin named wrapper over *slog.Logger, so every component
// tags its lines with which subsystem emitted them.
type Logger struct {
	*slog.Logger
}

// New returns a Logger that tags every line with component, writing
// text-formatted records to stderr.
func New(component string) *Logger {
	base := slog.New(slog.NewTextHandler(os.Stderr, nil))
	return &Logger{Logger: base.With("component", component)}
}
