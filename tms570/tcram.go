package tms570

import "omibyte.io/hercules/mmio"

const (
	ramctrlECCDetect    = 0xA
	ramctrlECCWrite     = 1 << 8
	ramerrUncorrectable = 1 << 5
)

// TCRAM is the interface module of one tightly coupled RAM bank. Bank 1
// holds the even, bank 2 the odd 64 bit words.
type TCRAM struct {
	mmio.NoCopy

	RAMCTRL        mmio.Register
	RAMTHRESHOLD   mmio.Register
	RAMOCCUR       mmio.Register
	RAMINTCTRL     mmio.Register
	RAMERRSTATUS   mmio.Register
	RAMSERRADDR    mmio.Register
	RAMUERRADDR    mmio.Register
	RAMTEST        mmio.Register
	RAMADDRDECVECT mmio.Register
	RAMPERADDR     mmio.Register
}

func newTCRAM(bus mmio.Bus, base uintptr) *TCRAM {
	blk := mmio.NewBlock(bus, base)
	return &TCRAM{
		RAMCTRL:        blk.Reg(0x00),
		RAMTHRESHOLD:   blk.Reg(0x04),
		RAMOCCUR:       blk.Reg(0x08),
		RAMINTCTRL:     blk.Reg(0x0C),
		RAMERRSTATUS:   blk.Reg(0x10),
		RAMSERRADDR:    blk.Reg(0x14),
		RAMUERRADDR:    blk.Reg(0x1C),
		RAMTEST:        blk.Reg(0x30),
		RAMADDRDECVECT: blk.Reg(0x38),
		RAMPERADDR:     blk.Reg(0x3C),
	}
}

// ECCWriteEnabled reports whether writes to the bank are ECC protected. An
// uncorrectable error seen in that state is a genuine memory fault.
//
//go:nosplit
func (t *TCRAM) ECCWriteEnabled() bool {
	return t.RAMCTRL.Get()&ramctrlECCWrite != 0
}

// EnableECCDetect turns on ECC error detection for the bank.
func (t *TCRAM) EnableECCDetect() {
	t.RAMCTRL.Modify(func(v uint32) uint32 {
		return v&^0xF | ramctrlECCDetect
	})
}

// UncorrectableError reports whether the bank latched an uncorrectable error.
func (t *TCRAM) UncorrectableError() bool {
	return t.RAMERRSTATUS.Get()&ramerrUncorrectable != 0
}

// ErrorAddress returns the address of the last uncorrectable error.
func (t *TCRAM) ErrorAddress() uint32 {
	return t.RAMUERRADDR.Get()
}

// ClearError clears the uncorrectable error flag.
//
//go:nosplit
func (t *TCRAM) ClearError() {
	t.RAMERRSTATUS.Set(ramerrUncorrectable)
}
