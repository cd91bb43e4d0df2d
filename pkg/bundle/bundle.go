// Package bundle exports a brotli-compressed backup of a cartridge's
// save state for transfer between machines: the ROM's identity, its
// battery RAM, and its resume metadata, all in one file distinct from
// the primary uncompressed .sav format (which stays exact-RAM-size
// with no header, so a host's existing save tooling keeps working
// against it).
//
// Grounded on thelolagemann-gomeboy/pkg/display/web/player.go's
// cbrotli.Encode usage (gomeboy's only caller of this otherwise unwired
// dependency), repurposed from per-frame compression to a one-shot
// backup archive.
package bundle

import (
	"encoding/binary"
	"fmt"

	"github.com/google/brotli/go/cbrotli"

	"github.com/dmgcore/lr35902/pkg/identity"
	"github.com/dmgcore/lr35902/pkg/saves"
)

// quality matches gomeboy's Player.Sync call
// (cbrotli.WriterOptions{Quality: 9}), the highest compression level,
// since a backup bundle is written and read far less often than a
// per-frame stream.
const quality = 9

// Bundle is the decompressed payload: a cartridge's identity, its
// battery RAM, and its resume metadata (see pkg/saves.ResumeRecord).
type Bundle struct {
	CartridgeID identity.ID
	RAM         []byte
	Resume      saves.ResumeRecord
}

// Export compresses b into a single self-describing byte slice.
func Export(b Bundle) ([]byte, error) {
	raw := encode(b)
	out, err := cbrotli.Encode(raw, cbrotli.WriterOptions{Quality: quality})
	if err != nil {
		return nil, fmt.Errorf("bundle: encode: %w", err)
	}
	return out, nil
}

// Import decompresses and decodes a byte slice produced by Export.
func Import(data []byte) (Bundle, error) {
	raw, err := cbrotli.Decode(data)
	if err != nil {
		return Bundle{}, fmt.Errorf("bundle: decode: %w", err)
	}
	return decode(raw)
}

func encode(b Bundle) []byte {
	out := make([]byte, 8, 8+8+4+len(b.RAM))
	binary.LittleEndian.PutUint64(out[0:8], uint64(b.CartridgeID))

	out = binary.LittleEndian.AppendUint32(out, uint32(len(b.RAM)))
	out = append(out, b.RAM...)

	resume := b.Resume.Encode()
	out = binary.LittleEndian.AppendUint32(out, uint32(len(resume)))
	out = append(out, resume...)
	return out
}

func decode(raw []byte) (Bundle, error) {
	var b Bundle
	if len(raw) < 8+4 {
		return b, fmt.Errorf("bundle: truncated header")
	}
	b.CartridgeID = identity.ID(binary.LittleEndian.Uint64(raw[0:8]))
	pos := 8

	ramLen := int(binary.LittleEndian.Uint32(raw[pos : pos+4]))
	pos += 4
	if pos+ramLen > len(raw) {
		return b, fmt.Errorf("bundle: truncated ram section")
	}
	b.RAM = append([]byte(nil), raw[pos:pos+ramLen]...)
	pos += ramLen

	if pos+4 > len(raw) {
		return b, fmt.Errorf("bundle: truncated resume length")
	}
	resumeLen := int(binary.LittleEndian.Uint32(raw[pos : pos+4]))
	pos += 4
	if pos+resumeLen > len(raw) {
		return b, fmt.Errorf("bundle: truncated resume section")
	}
	resume, err := saves.DecodeResumeRecord(raw[pos : pos+resumeLen])
	if err != nil {
		return b, err
	}
	b.Resume = resume
	return b, nil
}
