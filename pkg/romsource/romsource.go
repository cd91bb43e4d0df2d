// Package romsource loads a cartridge ROM image from disk, unwrapping
// the archive formats a downloaded ROM commonly arrives in before
// handing the raw bytes to internal/cartridge.
//
// Grounded on thelolagemann-gomeboy/pkg/utils/files.go's LoadFile
// (extension sniffing, archive unwrapping to the first member),
// restricted to .zip and .7z (github.com/bodgit/sevenzip plus the
// standard archive/zip, used side by side intentionally) rather than
// also stubbing the gzip/xz support gomeboy only partially implements.
package romsource

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"
)

const (
	bankSize    = 16 * 1024
	minROMBytes = 32 * 1024
)

// ErrRomIO wraps a filesystem or archive failure while loading a ROM
// image.
type ErrRomIO struct{ Err error }

func (e ErrRomIO) Error() string { return fmt.Sprintf("rom i/o: %v", e.Err) }
func (e ErrRomIO) Unwrap() error { return e.Err }

// ErrInvalidROMSize is returned when the loaded image isn't a multiple
// of 16 KiB at least 32 KiB, e.g. the archive member selected wasn't
// actually a ROM.
type ErrInvalidROMSize struct{ Size int }

func (e ErrInvalidROMSize) Error() string {
	return fmt.Sprintf("rom image is %d bytes, want a multiple of 16KiB >= 32KiB", e.Size)
}

// Load reads path, unwrapping a .zip or .7z archive to its first
// member, and validates the result against the ROM size rule. Plain
// .gb/.gbc files and boot ROM images (256 or 2304 bytes, matching the
// DMG and CGB boot ROM sizes) pass through unchanged.
func Load(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ErrRomIO{Err: err}
	}

	ext := strings.ToLower(filepath.Ext(path))
	if isBootROM(data, ext) {
		return data, nil
	}

	switch ext {
	case ".zip":
		data, err = firstZipMember(path, data)
	case ".7z":
		data, err = first7zMember(path, data)
	}
	if err != nil {
		return nil, err
	}

	if !isValidROMSize(len(data)) {
		return nil, ErrInvalidROMSize{Size: len(data)}
	}
	return data, nil
}

func isBootROM(data []byte, ext string) bool {
	return ext == ".bin" && (len(data) == 256 || len(data) == 2304)
}

func isValidROMSize(n int) bool {
	return n >= minROMBytes && n%bankSize == 0
}

func firstZipMember(path string, data []byte) ([]byte, error) {
	r, err := zip.NewReader(strings.NewReader(string(data)), int64(len(data)))
	if err != nil {
		return nil, ErrRomIO{Err: err}
	}
	if len(r.File) == 0 {
		return nil, ErrRomIO{Err: fmt.Errorf("%s: empty archive", path)}
	}
	f, err := r.File[0].Open()
	if err != nil {
		return nil, ErrRomIO{Err: err}
	}
	defer f.Close()

	out, err := io.ReadAll(f)
	if err != nil {
		return nil, ErrRomIO{Err: err}
	}
	return out, nil
}

func first7zMember(path string, data []byte) ([]byte, error) {
	r, err := sevenzip.NewReader(strings.NewReader(string(data)), int64(len(data)))
	if err != nil {
		return nil, ErrRomIO{Err: err}
	}
	if len(r.File) == 0 {
		return nil, ErrRomIO{Err: fmt.Errorf("%s: empty archive", path)}
	}
	f, err := r.File[0].Open()
	if err != nil {
		return nil, ErrRomIO{Err: err}
	}
	defer f.Close()

	out, err := io.ReadAll(f)
	if err != nil {
		return nil, ErrRomIO{Err: err}
	}
	return out, nil
}
