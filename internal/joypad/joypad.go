// Package joypad materializes the JOYP register (0xFF00) from an
// 8-bit button mask the host sets once per frame.
//
// Grounded on thelolagemann-gomeboy/internal/joypad's bit layout and
// row-select Read logic, adapted from its press/release-interrupt API
// to a single SetButtons(mask) call: transitions are detected by
// comparing the new mask against the previously-applied one.
package joypad

import "github.com/dmgcore/lr35902/internal/interrupt"

// Button bit positions within the mask passed to SetButtons. Right,
// Left, Up, Down occupy the low nibble ("direction" keys); A, B,
// Select, Start occupy the high nibble ("action" keys) — matching the
// two row-select groups JOYP itself exposes.
const (
	Right  uint8 = 1 << 0
	Left   uint8 = 1 << 1
	Up     uint8 = 1 << 2
	Down   uint8 = 1 << 3
	A      uint8 = 1 << 4
	B      uint8 = 1 << 5
	Select uint8 = 1 << 6
	Start  uint8 = 1 << 7
)

const Register uint16 = 0xFF00

// Controller owns JOYP's row-select bits and the currently pressed
// button mask, and raises the Joypad interrupt on a released->pressed
// transition of any button the guest is currently selecting.
type Controller struct {
	selectBits uint8 // bits 4-5 of JOYP, as last written by the guest
	pressed    uint8 // 1=pressed, our own bit layout (see consts above)

	irq *interrupt.Controller
}

func New(irq *interrupt.Controller) *Controller {
	return &Controller{selectBits: 0x30, irq: irq}
}

// SetButtons replaces the held-button mask wholesale. mask bit layout
// matches the package consts (1=pressed). Buttons that just transitioned
// released->pressed, and are in a row the guest currently selects,
// raise the Joypad interrupt.
func (c *Controller) SetButtons(mask uint8) {
	newlyPressed := mask &^ c.pressed
	c.pressed = mask

	if newlyPressed == 0 {
		return
	}
	if c.directionSelected() && newlyPressed&0x0F != 0 {
		c.irq.Request(interrupt.Joypad)
		return
	}
	if c.actionSelected() && newlyPressed&0xF0 != 0 {
		c.irq.Request(interrupt.Joypad)
	}
}

func (c *Controller) directionSelected() bool { return c.selectBits&0x10 == 0 }
func (c *Controller) actionSelected() bool    { return c.selectBits&0x20 == 0 }

func (c *Controller) Read(uint16) uint8 {
	result := c.selectBits | 0xC0
	nibble := uint8(0x0F)
	if c.directionSelected() {
		nibble &= ^(c.pressed & 0x0F)
	}
	if c.actionSelected() {
		nibble &= ^(c.pressed >> 4)
	}
	return result | nibble
}

func (c *Controller) Write(_ uint16, val uint8) {
	c.selectBits = val & 0x30
}
