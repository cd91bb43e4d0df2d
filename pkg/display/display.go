// Package display renders an engine's framebuffer in a native window
// and forwards key events back as a joypad button mask, outside the
// dependency-free engine package.
//
// Grounded on thelolagemann-gomeboy/pkg/display/fyne/fyne.go's window
// setup (fixed-size undecorated window, canvas.Raster fed from a
// manually-copied image.RGBA, desktop.Canvas key handlers), trimmed of
// the menu bar, debug windows and multi-window management (no menu
// overlay here) — exactly one window showing exactly one raster.
package display

import (
	"image"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"golang.org/x/image/draw"

	"github.com/dmgcore/lr35902/internal/joypad"
	"github.com/dmgcore/lr35902/internal/ppu"
)

// Scale is the integer pixel-scale factor the window renders at,
// matching gomeboy's default 4x window size.
const Scale = 4

// keyMap mirrors gomeboy's fyne.go keyMap, retargeted at
// internal/joypad's bit constants instead of its own io.Button type.
var keyMap = map[fyne.KeyName]uint8{
	fyne.KeyA:         joypad.A,
	fyne.KeyB:         joypad.B,
	fyne.KeyUp:        joypad.Up,
	fyne.KeyDown:      joypad.Down,
	fyne.KeyLeft:      joypad.Left,
	fyne.KeyRight:     joypad.Right,
	fyne.KeyReturn:    joypad.Start,
	fyne.KeyBackspace: joypad.Select,
}

// Window owns the Fyne app/window pair, the native-resolution RGBA
// image the framebuffer is copied into every refresh, and the
// Scale-times-larger image actually handed to the canvas.
type Window struct {
	app    fyne.App
	window fyne.Window
	native *image.RGBA
	img    *image.RGBA
	raster *canvas.Raster

	pressed uint8
}

// New creates an unshown window of the engine's native resolution
// scaled by Scale.
func New(title string) *Window {
	a := app.NewWithID("dmgcore.lr35902")
	w := a.NewWindow(title)
	w.SetPadded(false)
	w.Resize(fyne.NewSize(ppu.ScreenWidth*Scale, ppu.ScreenHeight*Scale))

	native := image.NewRGBA(image.Rect(0, 0, ppu.ScreenWidth, ppu.ScreenHeight))
	img := image.NewRGBA(image.Rect(0, 0, ppu.ScreenWidth*Scale, ppu.ScreenHeight*Scale))
	raster := canvas.NewRasterFromImage(img)
	w.SetContent(raster)

	return &Window{app: a, window: w, native: native, img: img, raster: raster}
}

// OnButtons registers the callback invoked with the current pressed
// mask on every key press/release, so the caller can forward it to
// Engine.SetButtons.
func (win *Window) OnButtons(fn func(mask uint8)) {
	desk, ok := win.window.Canvas().(desktop.Canvas)
	if !ok {
		return
	}
	desk.SetOnKeyDown(func(e *fyne.KeyEvent) {
		if bit, isMapped := keyMap[e.Name]; isMapped {
			win.pressed = pressButton(win.pressed, bit)
			fn(win.pressed)
		}
	})
	desk.SetOnKeyUp(func(e *fyne.KeyEvent) {
		if bit, isMapped := keyMap[e.Name]; isMapped {
			win.pressed = releaseButton(win.pressed, bit)
			fn(win.pressed)
		}
	})
}

func pressButton(mask, bit uint8) uint8   { return mask | bit }
func releaseButton(mask, bit uint8) uint8 { return mask &^ bit }

// Render copies fb into the native-resolution image, nearest-neighbor
// scales it up into the window's displayed image, and refreshes the
// canvas — matching the blocky upscale real DMG LCD output gets on a
// modern display rather than a blurred interpolation.
func (win *Window) Render(fb *[ppu.ScreenHeight][ppu.ScreenWidth][3]uint8) {
	for y := 0; y < ppu.ScreenHeight; y++ {
		for x := 0; x < ppu.ScreenWidth; x++ {
			i := (y*ppu.ScreenWidth + x) * 4
			px := fb[y][x]
			win.native.Pix[i] = px[0]
			win.native.Pix[i+1] = px[1]
			win.native.Pix[i+2] = px[2]
			win.native.Pix[i+3] = 255
		}
	}
	draw.NearestNeighbor.Scale(win.img, win.img.Bounds(), win.native, win.native.Bounds(), draw.Src, nil)
	win.raster.Refresh()
}

// ShowAndRun shows the window and blocks running the Fyne event loop,
// matching fyne.App.Run's blocking contract.
func (win *Window) ShowAndRun() {
	win.window.Show()
	win.app.Run()
}

// Close requests the application quit.
func (win *Window) Close() {
	win.app.Quit()
}
