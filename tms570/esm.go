package tms570

import "omibyte.io/hercules/mmio"

const (
	esmKeyNormal     = 0x0
	esmKeyErrorReset = 0x5
	esmAllOnes       = 0xFFFFFFFF
)

// ESM is the error signaling module. It latches every error source of the
// device, routes group 1 channels to interrupts and to the error pin, and
// drives the external error pin.
type ESM struct {
	mmio.NoCopy

	EEPAPR1 mmio.Register // error pin enable set
	DEPAPR1 mmio.Register // error pin enable clear
	IESR1   mmio.Register // interrupt enable set
	IECR1   mmio.Register // interrupt enable clear
	ILSR1   mmio.Register // interrupt level set
	ILCR1   mmio.Register // interrupt level clear
	SR1     [3]mmio.Register
	EPSR    mmio.Register // error pin status
	IOFFHR  mmio.Register // high level interrupt offset
	IOFFLR  mmio.Register // low level interrupt offset
	LTCR    mmio.Register // low time counter
	LTCPR   mmio.Register // low time counter preload
	EKR     mmio.Register // error key
	SSR2    mmio.Register // group 2 shadow status
	IEPSR4  mmio.Register
	IEPCR4  mmio.Register
	IESR4   mmio.Register
	IECR4   mmio.Register
	ILSR4   mmio.Register
	ILCR4   mmio.Register
	SR4     [3]mmio.Register
}

func newESM(bus mmio.Bus, base uintptr) *ESM {
	blk := mmio.NewBlock(bus, base)
	esm := &ESM{
		EEPAPR1: blk.Reg(0x00),
		DEPAPR1: blk.Reg(0x04),
		IESR1:   blk.Reg(0x08),
		IECR1:   blk.Reg(0x0C),
		ILSR1:   blk.Reg(0x10),
		ILCR1:   blk.Reg(0x14),
		EPSR:    blk.Reg(0x24),
		IOFFHR:  blk.Reg(0x28),
		IOFFLR:  blk.Reg(0x2C),
		LTCR:    blk.Reg(0x30),
		LTCPR:   blk.Reg(0x34),
		EKR:     blk.Reg(0x38),
		SSR2:    blk.Reg(0x3C),
		IEPSR4:  blk.Reg(0x40),
		IEPCR4:  blk.Reg(0x44),
		IESR4:   blk.Reg(0x48),
		IECR4:   blk.Reg(0x4C),
		ILSR4:   blk.Reg(0x50),
		ILCR4:   blk.Reg(0x54),
	}
	blk.Array(0x18, esm.SR1[:])
	blk.Array(0x58, esm.SR4[:])
	return esm
}

// Reset brings the module to a known state: routing disabled, latched
// errors cleared, error pin released and the low time counter preloaded.
func (e *ESM) Reset(preload uint16) {
	e.DEPAPR1.Set(esmAllOnes)
	e.IEPCR4.Set(esmAllOnes)
	e.IECR1.Set(esmAllOnes)
	e.IECR4.Set(esmAllOnes)

	e.ClearAllErrors()

	if e.ErrorPinActive() {
		e.ErrorReset()
	} else {
		e.NormalOperation()
	}

	e.SetPreload(preload)
}

// SetPreload programs the number of low time counter cycles the error pin
// stays asserted.
func (e *ESM) SetPreload(preload uint16) {
	if preload == 0 {
		e.LTCPR.Set(0)
		return
	}
	e.LTCPR.Set(uint32(preload) - 1)
}

// ErrorPinActive reports whether the error pin is currently driven low.
func (e *ESM) ErrorPinActive() bool {
	return e.EPSR.Get() == 0
}

// ErrorReset releases the error pin once the low time has expired.
//
//go:nosplit
func (e *ESM) ErrorReset() {
	e.EKR.Set(esmKeyErrorReset)
}

func (e *ESM) NormalOperation() {
	e.EKR.Set(esmKeyNormal)
}

// HighLevelInterrupt returns the flat index of the pending high level
// interrupt. ok is false when none is pending.
//
//go:nosplit
func (e *ESM) HighLevelInterrupt() (index uint32, ok bool) {
	return interruptOffset(e.IOFFHR.Get())
}

// LowLevelInterrupt returns the flat index of the pending low level
// interrupt. ok is false when none is pending.
func (e *ESM) LowLevelInterrupt() (index uint32, ok bool) {
	return interruptOffset(e.IOFFLR.Get())
}

//go:nosplit
func interruptOffset(raw uint32) (uint32, bool) {
	if raw == 0 {
		return 0, false
	}
	return raw - 1, true
}

//go:nosplit
func (e *ESM) status(ch Channel) (mmio.Register, uint32, bool) {
	loc := ch.StatusLocation()
	if !loc.Valid {
		return mmio.Register{}, 0, false
	}
	if loc.Bank == BankSR1 {
		return e.SR1[loc.Index], 1 << loc.Bit, true
	}
	return e.SR4[loc.Index], 1 << loc.Bit, true
}

// ErrorIsSet reports whether the channel has latched an error.
//
//go:nosplit
func (e *ESM) ErrorIsSet(ch Channel) bool {
	reg, mask, ok := e.status(ch)
	if !ok {
		return false
	}
	return reg.Get()&mask != 0
}

// ClearError clears the latched error of the channel. Clearing a channel
// that is not set leaves every status bit unchanged.
//
//go:nosplit
func (e *ESM) ClearError(ch Channel) {
	reg, mask, ok := e.status(ch)
	if !ok {
		return
	}
	// Write-1-to-clear
	reg.Set(mask)
}

// ClearAllErrors clears every latched error of groups 1 to 3.
func (e *ESM) ClearAllErrors() {
	for _, reg := range e.SR1 {
		reg.Set(esmAllOnes)
	}
	e.SSR2.Set(esmAllOnes)
	e.SR4[0].Set(esmAllOnes)
}

// ShadowStatusClear clears the shadow status bit of a group. The shadow
// register keeps group 2 errors across a reset until explicitly cleared.
func (e *ESM) ShadowStatusClear(g Group) {
	e.SSR2.Set(1 << g)
}

// routing returns the register pair (set, clear) and mask that route a group
// 1 channel. Channels 0-31 are controlled by the *1 registers, 32-63 by the
// *4 registers.
func routing(ch Channel, low, high [2]mmio.Register) ([2]mmio.Register, uint32) {
	if ch.Number < 32 {
		return low, 1 << ch.Number
	}
	return high, 1 << (ch.Number - 32)
}

// EnableInterrupt routes a group 1 channel to the interrupt controller.
func (e *ESM) EnableInterrupt(ch Channel) {
	if ch.Group != Group1 || ch.Number > 63 {
		return
	}
	regs, mask := routing(ch, [2]mmio.Register{e.IESR1, e.IECR1}, [2]mmio.Register{e.IESR4, e.IECR4})
	regs[0].Set(mask)
}

func (e *ESM) DisableInterrupt(ch Channel) {
	if ch.Group != Group1 || ch.Number > 63 {
		return
	}
	regs, mask := routing(ch, [2]mmio.Register{e.IESR1, e.IECR1}, [2]mmio.Register{e.IESR4, e.IECR4})
	regs[1].Set(mask)
}

// EnableError routes a group 1 channel to the error pin.
func (e *ESM) EnableError(ch Channel) {
	if ch.Group != Group1 || ch.Number > 63 {
		return
	}
	regs, mask := routing(ch, [2]mmio.Register{e.EEPAPR1, e.DEPAPR1}, [2]mmio.Register{e.IEPSR4, e.IEPCR4})
	regs[0].Set(mask)
}

func (e *ESM) DisableError(ch Channel) {
	if ch.Group != Group1 || ch.Number > 63 {
		return
	}
	regs, mask := routing(ch, [2]mmio.Register{e.EEPAPR1, e.DEPAPR1}, [2]mmio.Register{e.IEPSR4, e.IEPCR4})
	regs[1].Set(mask)
}

// SetInterruptLevel selects the high (true) or low level interrupt line for
// a group 1 channel.
func (e *ESM) SetInterruptLevel(ch Channel, high bool) {
	if ch.Group != Group1 || ch.Number > 63 {
		return
	}
	regs, mask := routing(ch, [2]mmio.Register{e.ILSR1, e.ILCR1}, [2]mmio.Register{e.ILSR4, e.ILCR4})
	if high {
		regs[0].Set(mask)
	} else {
		regs[1].Set(mask)
	}
}
