package tms570

import (
	"omibyte.io/hercules/arch/cortexr4"
	"omibyte.io/hercules/mmio"
)

// ClockSource is a clock source number as used by the source selection and
// source disable registers.
type ClockSource uint32

const (
	SourceOsc     ClockSource = 0
	SourcePLL1    ClockSource = 1
	SourceExt1    ClockSource = 3
	SourceLPOLow  ClockSource = 4
	SourceLPOHigh ClockSource = 5
	SourcePLL2    ClockSource = 6
	SourceExt2    ClockSource = 7
	SourceVCLK    ClockSource = 9
)

// RAM selects the on-chip memories for hardware initialization.
type RAM uint32

const (
	RAMInternal RAM = 1 << 0
	RAMDMA      RAM = 1 << 1
	RAMVIM      RAM = 1 << 2
	RAMHET1     RAM = 1 << 3
	RAMHTU1     RAM = 1 << 4
	RAMDCAN1    RAM = 1 << 5
	RAMDCAN2    RAM = 1 << 6
	RAMMibSPI1  RAM = 1 << 7
	RAMADC1     RAM = 1 << 8
	RAMDCAN3    RAM = 1 << 10
	RAMMibSPI3  RAM = 1 << 11
	RAMMibSPI5  RAM = 1 << 12
	RAMADC2     RAM = 1 << 14
	RAMHET2     RAM = 1 << 15
	RAMHTU2     RAM = 1 << 16
)

// PowerMode is the low power mode entered by PowerDown.
type PowerMode uint32

const (
	// Doze keeps the main oscillator and the RTI running.
	Doze PowerMode = 0x000000FE
	// Snooze keeps only the low frequency LPO running.
	Snooze PowerMode = 0x000000EE
	// Sleep stops every clock source.
	Sleep PowerMode = 0x000000FF
)

const (
	pllSourceMask       = 1<<uint(SourcePLL1) | 1<<uint(SourcePLL2)
	pllOutputDivMask    = 0xE0FFFFFF
	pllOutputDivSlowest = 0x1F
	pllctl1ResetOnSlip  = 0x20000000
	pllMultiplierMask   = 0xFF00

	gblstatClearMask = 0x301
	gblstatOscFail   = 0x1

	clktestSupervisorTest = 0x03000000
	ghvsrcSupervisorTest  = 0x05050005

	mstcgstatMemInitDone = 0x100
	mstcgstatMemTestDone = 0x1
	keyEnable            = 0xA
	keyDisable           = 0x5

	clkcntlPeripheralsEnable = 0x100

	lpoTrimUnavailable  = 0xFFFF
	lpomonctlBiasEnable = 1 << 24
)

// Sys holds the primary and secondary system register frames. It owns the
// clock tree, the memory hardware initialization and the PBIST/memory self
// test controller.
type Sys struct {
	mmio.NoCopy

	SYSPC1    mmio.Register
	SYSPC2    mmio.Register
	SYSPC3    mmio.Register
	SYSPC4    mmio.Register
	SYSPC5    mmio.Register
	SYSPC6    mmio.Register
	SYSPC7    mmio.Register
	SYSPC8    mmio.Register
	SYSPC9    mmio.Register
	CSDIS     mmio.Register // clock source disable
	CSDISSET  mmio.Register
	CSDISCLR  mmio.Register
	CDDIS     mmio.Register // clock domain disable
	CDDISSET  mmio.Register
	CDDISCLR  mmio.Register
	GHVSRC    mmio.Register // GCLK, HCLK, VCLK source
	VCLKASRC  mmio.Register
	RCLKSRC   mmio.Register
	CSVSTAT   mmio.Register // clock source valid status
	MSTGCR    mmio.Register // memory self-test global control
	MINITGCR  mmio.Register // memory hardware initialization global control
	MSINENA   mmio.Register
	MSTFAIL   mmio.Register
	MSTCGSTAT mmio.Register
	MINISTAT  mmio.Register
	PLLCTL1   mmio.Register
	PLLCTL2   mmio.Register
	SYSPC10   mmio.Register
	DIEIDL    mmio.Register
	DIEIDH    mmio.Register
	LPOMONCTL mmio.Register
	CLKTEST   mmio.Register
	CLKCNTL   mmio.Register
	ECPCNTL   mmio.Register
	SYSESR    mmio.Register
	GBLSTAT   mmio.Register
	DEVID     mmio.Register
	SSIR1     mmio.Register

	PLLCTL3    mmio.Register
	STCCLKDIV  mmio.Register
	CLK2CNTRL  mmio.Register
	VCLKACON1  mmio.Register
	CLKSLIP    mmio.Register
	EFCCTLREG  mmio.Register
	DIEIDLREG0 mmio.Register
	DIEIDHREG1 mmio.Register

	// LPOTRIM is the OTP word holding the factory LPO trim value in its
	// upper half word.
	LPOTRIM mmio.Register
}

func newSys(bus mmio.Bus, sys1, sys2, lpoTrim uintptr) *Sys {
	r1 := mmio.NewBlock(bus, sys1)
	r2 := mmio.NewBlock(bus, sys2)
	return &Sys{
		SYSPC1:    r1.Reg(0x00),
		SYSPC2:    r1.Reg(0x04),
		SYSPC3:    r1.Reg(0x08),
		SYSPC4:    r1.Reg(0x0C),
		SYSPC5:    r1.Reg(0x10),
		SYSPC6:    r1.Reg(0x14),
		SYSPC7:    r1.Reg(0x18),
		SYSPC8:    r1.Reg(0x1C),
		SYSPC9:    r1.Reg(0x20),
		CSDIS:     r1.Reg(0x30),
		CSDISSET:  r1.Reg(0x34),
		CSDISCLR:  r1.Reg(0x38),
		CDDIS:     r1.Reg(0x3C),
		CDDISSET:  r1.Reg(0x40),
		CDDISCLR:  r1.Reg(0x44),
		GHVSRC:    r1.Reg(0x48),
		VCLKASRC:  r1.Reg(0x4C),
		RCLKSRC:   r1.Reg(0x50),
		CSVSTAT:   r1.Reg(0x54),
		MSTGCR:    r1.Reg(0x58),
		MINITGCR:  r1.Reg(0x5C),
		MSINENA:   r1.Reg(0x60),
		MSTFAIL:   r1.Reg(0x64),
		MSTCGSTAT: r1.Reg(0x68),
		MINISTAT:  r1.Reg(0x6C),
		PLLCTL1:   r1.Reg(0x70),
		PLLCTL2:   r1.Reg(0x74),
		SYSPC10:   r1.Reg(0x78),
		DIEIDL:    r1.Reg(0x7C),
		DIEIDH:    r1.Reg(0x80),
		LPOMONCTL: r1.Reg(0x88),
		CLKTEST:   r1.Reg(0x8C),
		CLKCNTL:   r1.Reg(0xD0),
		ECPCNTL:   r1.Reg(0xD4),
		SYSESR:    r1.Reg(0xE4),
		GBLSTAT:   r1.Reg(0xEC),
		DEVID:     r1.Reg(0xF0),
		SSIR1:     r1.Reg(0xB0),

		PLLCTL3:    r2.Reg(0x00),
		STCCLKDIV:  r2.Reg(0x08),
		CLK2CNTRL:  r2.Reg(0x3C),
		VCLKACON1:  r2.Reg(0x40),
		CLKSLIP:    r2.Reg(0x70),
		EFCCTLREG:  r2.Reg(0xEC),
		DIEIDLREG0: r2.Reg(0xF0),
		DIEIDHREG1: r2.Reg(0xF4),

		LPOTRIM: mmio.NewRegister(bus, lpoTrim),
	}
}

// DisablePLL switches both PLLs off and waits until the clock controller
// acknowledges it.
func (s *Sys) DisablePLL() {
	s.CSDISSET.Set(pllSourceMask)

	// Wait for both PLLs to be reported disabled
	mmio.WaitSet(s.CSDIS, pllSourceMask)
}

// EnablePLL switches both PLLs on. It does not wait for lock.
func (s *Sys) EnablePLL() {
	s.CSDISCLR.Set(pllSourceMask)
}

// ClearGlobalStatus clears the oscillator fail and PLL slip flags.
func (s *Sys) ClearGlobalStatus() {
	s.GBLSTAT.Set(gblstatClearMask)
}

// SetupPLL disables both PLLs, clears the global status and programs both
// PLLs for a 16 MHz oscillator with the slowest output divider, then starts
// them. Locking continues in the background; call WaitPLLLock before
// switching any clock domain to a PLL.
//
// With the reference divider of 6 and the post divider of 2 the full PLL
// frequency is 16 MHz / 6 * multiplier / 2, 160 MHz for a multiplier of
// 120. The multiplier takes 1 to 256.
func (s *Sys) SetupPLL(multiplier uint32) {
	s.DisablePLL()
	s.ClearGlobalStatus()

	mul := (multiplier - 1) << 8 & pllMultiplierMask

	// PLL1: reset on slip, output divider /32, reference divider /6
	s.PLLCTL1.Set(pllctl1ResetOnSlip | pllOutputDivSlowest<<24 | (6-1)<<16 | mul)
	// Modulation off, spreading rate 255, spreading amount 61, post divider /2
	s.PLLCTL2.Set(255<<22 | 7<<12 | (2-1)<<9 | 61)
	// PLL2: post divider /2, output divider /32, reference divider /6
	s.PLLCTL3.Set((2-1)<<29 | pllOutputDivSlowest<<24 | (6-1)<<16 | mul)

	s.EnablePLL()
}

// WaitPLLLock waits until every enabled clock source reports valid.
func (s *Sys) WaitPLLLock() {
	mask := (s.CSDIS.Get() ^ 0xFF) & 0xFF
	mmio.WaitSet(s.CSVSTAT, mask)
}

// SetPLLDivider programs the output dividers of PLL1 and PLL2. A divider of
// 0 selects the full PLL frequency.
func (s *Sys) SetPLLDivider(pll1, pll2 uint8) {
	s.PLLCTL1.Modify(func(v uint32) uint32 {
		return v&pllOutputDivMask | uint32(pll1&0x1F)<<24
	})
	s.PLLCTL3.Modify(func(v uint32) uint32 {
		return v&pllOutputDivMask | uint32(pll2&0x1F)<<24
	})
}

// PLLDivider returns the output dividers of PLL1 and PLL2.
func (s *Sys) PLLDivider() (pll1, pll2 uint8) {
	return uint8(s.PLLCTL1.Get() >> 24 & 0x1F), uint8(s.PLLCTL3.Get() >> 24 & 0x1F)
}

// SetupClockSource selects the sources of GCLK, HCLK and VCLK and points the
// RTI and asynchronous peripheral clocks at VCLK.
func (s *Sys) SetupClockSource(gclk, hclk, vclk ClockSource) {
	s.GHVSRC.Set(uint32(gclk)<<24 | uint32(hclk)<<16 | uint32(vclk))

	// RTICLK1 = VCLK / 2
	s.RCLKSRC.Set(1<<24 | uint32(SourceVCLK)<<16 | 1<<8 | uint32(SourceVCLK))
	s.VCLKASRC.Set(uint32(SourceVCLK)<<8 | uint32(SourceVCLK))
	s.VCLKACON1.Set(uint32(SourceVCLK)<<16 | uint32(SourceVCLK))
}

// PeripheralsClockDivider sets the VCLK, VCLK2, VCLK3 and VCLK4 dividers
// relative to HCLK.
func (s *Sys) PeripheralsClockDivider(vclk1, vclk2, vclk3, vclk4 uint8) {
	s.CLKCNTL.Modify(func(v uint32) uint32 {
		return v&0xF0FFFFFF | uint32(vclk2&0xF)<<24
	})
	s.CLKCNTL.Modify(func(v uint32) uint32 {
		return v&0xFFF0FFFF | uint32(vclk1&0xF)<<16
	})
	s.CLK2CNTRL.Modify(func(v uint32) uint32 {
		return v&0xFFFFF0F0 | uint32(vclk4&0xF)<<8 | uint32(vclk3&0xF)
	})
}

// EnablePeripherals releases (true) or holds (false) all peripherals in
// reset.
func (s *Sys) EnablePeripherals(enable bool) {
	if enable {
		s.CLKCNTL.SetBits(clkcntlPeripheralsEnable)
	} else {
		s.CLKCNTL.ClearBits(clkcntlPeripheralsEnable)
	}
}

// ClockDomainEnableAll enables every clock domain.
func (s *Sys) ClockDomainEnableAll() {
	s.CDDIS.Set(0)
}

// ClockDomainDisable disables the clock domains in mask.
func (s *Sys) ClockDomainDisable(mask uint32) {
	s.CDDISSET.Set(mask)
}

// ClockDomainEnable enables the clock domains in mask.
func (s *Sys) ClockDomainEnable(mask uint32) {
	s.CDDISCLR.Set(mask)
}

// TrimLPO programs the low power oscillator trim from OTP, or fallback when
// the device carries no trim value. It returns the value written.
func (s *Sys) TrimLPO(fallback uint32) uint32 {
	lpo := s.LPOTRIM.Get() >> 16
	if lpo == lpoTrimUnavailable {
		lpo = fallback
	}
	s.LPOMONCTL.Set(lpomonctlBiasEnable | lpo)
	return lpo
}

// ECLKFunctionalMode configures the ECLK pin as clock output with the given
// divider, taken from OSCIN when oscin is set and from VCLK otherwise.
func (s *Sys) ECLKFunctionalMode(div uint16, oscin bool) {
	s.SYSPC1.Set(1)
	s.SYSPC2.Set(1)
	s.SYSPC4.Set(0)
	s.SYSPC7.Set(0)
	s.SYSPC8.Set(0)
	s.SYSPC9.Set(1)

	var src uint32
	if oscin {
		src = 1
	}
	s.ECPCNTL.Set(src<<24 | uint32(div))
}

// MemorySelfController enables or disables the memory self-test controller.
// Enabling it needs 32 VCLK cycles to settle.
func (s *Sys) MemorySelfController(core cortexr4.Core, enable bool) {
	if enable {
		s.MSTGCR.Set(0x100 | keyEnable)
		cortexr4.Cycles(core, 32)
	} else {
		s.MSTGCR.Set(0x100 | keyDisable)
	}
}

// MemoryControllerEnable enables or disables the memory hardware
// initialization controller.
func (s *Sys) MemoryControllerEnable(enable bool) {
	if enable {
		s.MINITGCR.Set(keyEnable)
	} else {
		s.MINITGCR.Set(keyDisable)
	}
}

// InitMemory auto-initializes the selected memories, including their ECC or
// parity bits.
func (s *Sys) InitMemory(ram RAM) {
	s.MemoryControllerEnable(true)
	s.MSINENA.Set(uint32(ram))

	// Wait for the initialization to complete
	mmio.WaitSet(s.MSTCGSTAT, mstcgstatMemInitDone)

	s.MemoryControllerEnable(false)
}

// SetSTCClockDivider sets the CPU self-test clock divider.
func (s *Sys) SetSTCClockDivider(div uint32) {
	s.STCCLKDIV.Set(div)
}

// ClockSupervisorTest verifies that an oscillator failure is detected and
// reported to the ESM. The oscillator is disabled while the device runs from
// the high frequency LPO, and every register touched is restored before
// returning, whether or not the failure was detected.
func (s *Sys) ClockSupervisorTest(esm *ESM) bool {
	// Enable the clock supervisor test mode
	s.CLKTEST.SetBits(clktestSupervisorTest)

	// Run from the high frequency LPO while the oscillator is off
	ghvsrc := s.GHVSRC.Get()
	s.GHVSRC.Set(ghvsrcSupervisorTest)

	// Disable the oscillator
	s.CSDISSET.Set(1 << uint(SourceOsc))

	// Wait for the oscillator fail flag
	mmio.WaitAny(s.GBLSTAT, gblstatOscFail)

	detected := esm.ErrorIsSet(OscFail)

	esm.ClearError(OscFail)
	s.CLKTEST.ClearBits(clktestSupervisorTest)
	s.CSDISCLR.Set(1 << uint(SourceOsc))

	// Wait for the oscillator to become valid again
	mmio.WaitAny(s.CSVSTAT, 0x3)

	s.ClearGlobalStatus()
	s.GHVSRC.Set(ghvsrc)

	return detected
}

// PowerDown disables the clock sources and domains of the mode and idles
// the core until a wake-up interrupt.
func (s *Sys) PowerDown(core cortexr4.Core, mode PowerMode) {
	s.CSDISSET.Set(uint32(mode) &^ (1 << uint(SourcePLL2)))
	s.CDDISSET.Set(uint32(mode))

	core.WaitForInterrupt()
	cortexr4.Cycles(core, 4)
}

// DeviceID returns the device identification register.
func (s *Sys) DeviceID() uint32 {
	return s.DEVID.Get()
}

// DieID is the unique die identification.
type DieID struct {
	Lot   uint32
	Wafer uint8
	X, Y  uint8
}

func (s *Sys) DieID() DieID {
	low := s.DIEIDLREG0.Get()
	high := s.DIEIDHREG1.Get()
	return DieID{
		Lot:   low>>22 | (high&0x3FFF)<<10,
		Wafer: uint8(low >> 16 & 0x3F),
		Y:     uint8(low >> 8),
		X:     uint8(low),
	}
}
