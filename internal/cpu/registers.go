package cpu

// Register is an 8-bit CPU register.
type Register = uint8

// RegisterPair aliases two Registers as a single 16-bit value, high
// byte first. Grounded on thelolagemann-gomeboy/internal/types.
// RegisterPair's pointer-aliasing trick: BC/DE/HL/AF read and write
// straight through to the same storage as B/C, D/E, H/L, A/F, so
// `LD r,r'` and `LD rr,d16` never need to keep two copies in sync.
type RegisterPair struct {
	High *Register
	Low  *Register
}

func (r *RegisterPair) Uint16() uint16 {
	return uint16(*r.High)<<8 | uint16(*r.Low)
}

func (r *RegisterPair) SetUint16(v uint16) {
	*r.High = uint8(v >> 8)
	*r.Low = uint8(v)
}

// Registers holds the eight 8-bit registers and the four register-pair
// views over them.
type Registers struct {
	A, F Register
	B, C Register
	D, E Register
	H, L Register

	AF, BC, DE, HL *RegisterPair
}

// linkPairs wires up the register-pair pointers. Must run after the
// owning CPU has been heap-allocated (so the pointers stay valid for
// the CPU's lifetime) — see New.
func (r *Registers) linkPairs() {
	r.AF = &RegisterPair{&r.A, &r.F}
	r.BC = &RegisterPair{&r.B, &r.C}
	r.DE = &RegisterPair{&r.D, &r.E}
	r.HL = &RegisterPair{&r.H, &r.L}
}
