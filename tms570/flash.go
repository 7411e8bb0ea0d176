package tms570

import "omibyte.io/hercules/mmio"

// FlashPower is the fallback power mode of a flash bank.
type FlashPower uint32

const (
	FlashSleep   FlashPower = 0x0
	FlashStandby FlashPower = 0x1
	FlashActive  FlashPower = 0x3
)

const (
	fsmWriteEnable  = 0x5
	fsmWriteDisable = 0xA

	// EEPROM bank: 3 address wait states, auto suspend enabled
	eepromConfig = 0x2 | 0x3<<16

	fdiagEnableKey      = 0x5 << 16
	fdiagEnableKeyMask  = 0xF << 16
	fedacUncorrectable  = 1 << 8
	fedacCorrectable    = 1 << 1
	fedacctrl1ECCEnable = 0xA
)

// Flash is the flash wrapper controlling the program and data flash banks.
type Flash struct {
	mmio.NoCopy

	FRDCNTL      mmio.Register // read control: wait states, pipeline
	FEDACCTRL1   mmio.Register // error detection and correction control
	FEDACSTATUS  mmio.Register
	FUNCERRADD   mmio.Register // uncorrectable error address
	FBFALLBACK   mmio.Register // bank fallback power
	FDIAGCTRL    mmio.Register // diagnostic control
	FSMWRENA     mmio.Register // state machine write enable
	EEPROMCONFIG mmio.Register
}

func newFlash(bus mmio.Bus, base uintptr) *Flash {
	blk := mmio.NewBlock(bus, base)
	return &Flash{
		FRDCNTL:      blk.Reg(0x00),
		FEDACCTRL1:   blk.Reg(0x08),
		FEDACSTATUS:  blk.Reg(0x1C),
		FUNCERRADD:   blk.Reg(0x20),
		FBFALLBACK:   blk.Reg(0x40),
		FDIAGCTRL:    blk.Reg(0x6C),
		FSMWRENA:     blk.Reg(0x288),
		EEPROMCONFIG: blk.Reg(0x2B8),
	}
}

// Setup programs the read wait states for the target clock and sets the
// fallback power mode of the banks. It must run before the CPU clock is
// raised to the frequency the wait states are chosen for.
func (f *Flash) Setup(power FlashPower, waitStates uint8, addressWaitState, pipeline bool) {
	value := uint32(waitStates&0xF) << 8
	if addressWaitState {
		value |= 1 << 4
	}
	if pipeline {
		value |= 1
	}
	f.FRDCNTL.Set(value)

	f.FSMWRENA.Set(fsmWriteEnable)
	f.EEPROMCONFIG.Set(eepromConfig)
	f.FSMWRENA.Set(fsmWriteDisable)

	// Bank 7 (EEPROM emulation), bank 1 and bank 0
	mode := uint32(power)
	f.FBFALLBACK.Set(mode<<14 | mode<<2 | mode)
}

// WaitStates returns the programmed read wait states.
func (f *Flash) WaitStates() uint8 {
	return uint8(f.FRDCNTL.Get() >> 8 & 0xF)
}

// DiagnosticActive reports whether the diagnostic mode is enabled. In that
// mode ECC errors are injected on purpose.
//
//go:nosplit
func (f *Flash) DiagnosticActive() bool {
	return f.FDIAGCTRL.Get()&fdiagEnableKeyMask == fdiagEnableKey
}

// EnableECC turns on ECC checking of flash reads.
func (f *Flash) EnableECC() {
	f.FEDACCTRL1.Modify(func(v uint32) uint32 {
		return v&^0xF | fedacctrl1ECCEnable
	})
}

// UncorrectableError reports whether an uncorrectable error was latched.
func (f *Flash) UncorrectableError() bool {
	return f.FEDACSTATUS.Get()&fedacUncorrectable != 0
}

// ErrorAddress returns the address of the last uncorrectable error.
func (f *Flash) ErrorAddress() uint32 {
	return f.FUNCERRADD.Get()
}

//go:nosplit
func (f *Flash) ClearError() {
	f.FEDACSTATUS.Set(fedacUncorrectable | fedacCorrectable)
}
