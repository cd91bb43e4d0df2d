// Package tools wraps small native desktop helpers a host shell
// wants but the dependency-free engine never touches: a native "open
// ROM" file picker and a clipboard copy, outside internal/.
//
// Grounded on thelolagemann-gomeboy/pkg/utils/dialog.go's AskForFile
// (github.com/sqweek/dialog) and pkg/utils/clipboard.go's CopyImage
// (golang.design/x/clipboard), retargeted: CopyText copies a save-file
// path or cartridge title instead of a screenshot PNG.
package tools

import (
	"github.com/sqweek/dialog"
	"golang.design/x/clipboard"
)

// AskForROM opens a native file-picker restricted to Game Boy ROM
// extensions, mirroring gomeboy's AskForFile/fyne.go askForROM.
func AskForROM(startingDir string) (string, error) {
	return dialog.File().
		SetStartDir(startingDir).
		Title("Open ROM").
		Filter("Game Boy ROMs", "gb", "gbc", "zip", "7z").
		Load()
}

// CopyText copies s (a save-file path or cartridge title) to the
// system clipboard.
func CopyText(s string) error {
	if err := clipboard.Init(); err != nil {
		return err
	}
	clipboard.Write(clipboard.FmtText, []byte(s))
	return nil
}
