package bundle

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmgcore/lr35902/pkg/identity"
	"github.com/dmgcore/lr35902/pkg/saves"
)

func TestExportImport_RoundTrip(t *testing.T) {
	b := Bundle{
		CartridgeID: identity.ForROM(make([]byte, 32*1024)),
		RAM:         []byte{1, 2, 3, 4, 5},
		Resume: saves.ResumeRecord{
			ROMPath:     "roms/tetris.gb",
			StatePath:   "",
			SavedAtUnix: 1700000000,
		},
	}

	data, err := Export(b)
	require.NoError(t, err)

	got, err := Import(data)
	require.NoError(t, err)
	require.Equal(t, b, got)
}

func TestImport_RejectsGarbage(t *testing.T) {
	_, err := Import([]byte("not a brotli stream"))
	require.Error(t, err)
}
