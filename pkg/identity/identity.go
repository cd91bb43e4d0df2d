// Package identity derives a stable, content-based identifier for a
// cartridge image, used to name its save and resume files.
//
// Grounded on thelolagemann-gomeboy/internal/cartridge/cartridge.go's
// Filename() (an md5 hash of the cartridge title), switched to hashing
// the full ROM image with github.com/cespare/xxhash, matching
// craterboy's rom_loader.rs identity-by-content approach rather than
// identity-by-title: two ROM hacks sharing a title would otherwise
// collide on a single save slot.
package identity

import (
	"fmt"

	"github.com/cespare/xxhash"
)

// ID is a cartridge's content hash, stable across renames and across
// which directory the ROM file happens to live in.
type ID uint64

// ForROM hashes a cartridge's raw ROM bytes.
func ForROM(rom []byte) ID {
	return ID(xxhash.Sum64(rom))
}

// String renders the id as the fixed-width hex string used for save
// and resume directory/file names.
func (id ID) String() string {
	return fmt.Sprintf("%016x", uint64(id))
}
