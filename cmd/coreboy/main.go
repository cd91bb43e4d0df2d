// Command coreboy wires the engine to a native window and audio sink,
// the host shell internal/ packages never import themselves.
//
// Grounded on thelolagemann-gomeboy/cmd/goboy/main.go's flag parsing
// and file-load-then-NewGameBoy-then-run-window shape, trimmed of the
// CPU/PPU debug windows and pprof server (those are Fyne debug views
// this repo dropped, see DESIGN.md) down to the single main window plus
// periodic battery-RAM flush.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/dmgcore/lr35902/internal/engine"
	"github.com/dmgcore/lr35902/pkg/audio"
	"github.com/dmgcore/lr35902/pkg/display"
	"github.com/dmgcore/lr35902/pkg/identity"
	"github.com/dmgcore/lr35902/pkg/romsource"
	"github.com/dmgcore/lr35902/pkg/saves"
	"github.com/dmgcore/lr35902/pkg/telemetry"
)

const sampleRateHz = 44100

var logger = telemetry.New("coreboy")

func main() {
	romPath := flag.String("rom", "", "the ROM file to load (.gb/.gbc, optionally zipped/7z-compressed)")
	bootPath := flag.String("boot", "", "an optional DMG boot ROM image")
	saveRoot := flag.String("save-dir", "saves", "directory battery-RAM saves are written under")
	flag.Parse()

	if *romPath == "" {
		fmt.Fprintln(os.Stderr, "usage: coreboy -rom path/to/game.gb")
		os.Exit(2)
	}

	rom, err := romsource.Load(*romPath)
	if err != nil {
		logger.Error("load rom", "err", err)
		os.Exit(1)
	}

	var opts []engine.Option
	if *bootPath != "" {
		boot, err := romsource.Load(*bootPath)
		if err != nil {
			logger.Error("load boot rom", "err", err)
			os.Exit(1)
		}
		opts = append(opts, engine.WithBootROM(boot))
	}
	opts = append(opts, engine.WithSampleRate(sampleRateHz))

	e, err := engine.Load(rom, opts...)
	if err != nil {
		logger.Error("load engine", "err", err)
		os.Exit(1)
	}

	id := identity.ForROM(rom)
	savePath := saves.PathFor(*saveRoot, id)
	if data, ok, err := saves.Load(savePath); err != nil {
		logger.Warn("load save", "err", err)
	} else if ok {
		e.LoadCartridgeRAM(data)
	}

	sink, err := audio.Open(sampleRateHz)
	if err != nil {
		logger.Warn("audio disabled", "err", err)
		sink = nil
	}

	win := display.New("coreboy")
	win.OnButtons(e.SetButtons)

	saveManager := saves.NewManager(10 * time.Second)
	go runLoop(e, win, sink, saveManager, savePath)

	win.ShowAndRun()

	if sink != nil {
		sink.Close()
	}
	if err := saves.FlushNow(savePath, e); err != nil {
		logger.Warn("final save", "err", err)
	}
}

func runLoop(e *engine.Engine, win *display.Window, sink *audio.Sink, saveManager *saves.Manager, savePath string) {
	for {
		if _, err := e.StepFrame(); err != nil {
			logger.Error("step frame", "err", err)
			os.Exit(1)
		}
		win.Render(e.Framebuffer())
		if sink != nil {
			if err := sink.Drain(e); err != nil {
				logger.Warn("audio drain", "err", err)
			}
		}
		if _, err := saveManager.MaybeFlush(savePath, e); err != nil {
			logger.Warn("save", "err", err)
		}
	}
}
