package tms570

import (
	"omibyte.io/hercules/arch/cortexr4"
	"omibyte.io/hercules/mmio"
)

const (
	stcKey            = 0xA
	stcRestart        = 0x1
	stcFaultInsertion = 1 << 4
	stcClockDivider   = 0x01000000

	stcgstatDone = 0x1
	stcgstatFail = 0x2

	stcfstatCPU1    = 0x1
	stcfstatCPU2    = 0x2
	stcfstatTimeout = 0x4
)

// STC is the CPU self-test controller. A completed self-test ends with a CPU
// reset; the result is read back on the following startup.
type STC struct {
	mmio.NoCopy

	STCGCR0  mmio.Register // global control 0: interval count, restart
	STCGCR1  mmio.Register // global control 1: enable key
	STCTPR   mmio.Register // self-test run timeout preload
	STCCADDR mmio.Register // current ROM address
	STCCICR  mmio.Register // current interval count
	STCGSTAT mmio.Register // global status
	STCFSTAT mmio.Register // fail status
	CPU1MISR [4]mmio.Register
	CPU2MISR [4]mmio.Register
	STCSCSCR mmio.Register // signature compare self-check

	sys *Sys
}

func newSTC(bus mmio.Bus, base uintptr, sys *Sys) *STC {
	blk := mmio.NewBlock(bus, base)
	stc := &STC{
		STCGCR0:  blk.Reg(0x00),
		STCGCR1:  blk.Reg(0x04),
		STCTPR:   blk.Reg(0x08),
		STCCADDR: blk.Reg(0x0C),
		STCCICR:  blk.Reg(0x10),
		STCGSTAT: blk.Reg(0x14),
		STCFSTAT: blk.Reg(0x18),
		STCSCSCR: blk.Reg(0x3C),
		sys:      sys,
	}
	blk.Array(0x1C, stc.CPU1MISR[:])
	blk.Array(0x2C, stc.CPU2MISR[:])
	return stc
}

// SetupIntervals selects the number of test intervals and whether the run
// restarts from the first interval.
func (s *STC) SetupIntervals(intervals uint16, restart bool) {
	value := uint32(intervals) << 16
	if restart {
		value |= stcRestart
	}
	s.STCGCR0.Set(value)
}

// SetTimeout sets the self-test timeout preload in VBUS cycles.
func (s *STC) SetTimeout(preload uint32) {
	s.STCTPR.Set(preload)
}

// SelfCheck runs the self-test with a stuck-at fault inserted, which must
// make the run fail. It proves the compare logic of the controller.
func (s *STC) SelfCheck(core cortexr4.Core, intervals uint16, restart bool) {
	s.sys.SetSTCClockDivider(stcClockDivider)
	s.SetupIntervals(intervals, restart)
	s.STCSCSCR.Set(stcFaultInsertion | stcKey)
	s.SetTimeout(0xFFFFFFFF)
	s.activate(core)
}

// CPUSelfTest runs the CPU self-test.
func (s *STC) CPUSelfTest(core cortexr4.Core, intervals uint16, timeout uint32, restart bool) {
	s.sys.SetSTCClockDivider(stcClockDivider)
	s.SetupIntervals(intervals, restart)
	s.SetTimeout(timeout)
	s.activate(core)
}

// activate starts the test and idles the core. The controller resets the
// core when the run completes, so activate normally does not return.
func (s *STC) activate(core cortexr4.Core) {
	// Let outstanding transactions drain
	cortexr4.Cycles(core, 16)
	s.STCGCR1.Set(stcKey)
	core.WaitForInterrupt()
	cortexr4.Cycles(core, 4)
}

// SelfCheckActive reports whether the last run was a self-check run.
func (s *STC) SelfCheckActive() bool {
	return s.STCSCSCR.Get()&0x1F == stcFaultInsertion|stcKey
}

// STCResult is the outcome of the last self-test run.
type STCResult struct {
	Done    bool
	Failed  bool
	CPU1    bool
	CPU2    bool
	Timeout bool
	Address uint32
}

// Result reads back the outcome of the last self-test run.
func (s *STC) Result() STCResult {
	gstat := s.STCGSTAT.Get()
	fstat := s.STCFSTAT.Get()
	return STCResult{
		Done:    gstat&stcgstatDone != 0,
		Failed:  gstat&stcgstatFail != 0,
		CPU1:    fstat&stcfstatCPU1 != 0,
		CPU2:    fstat&stcfstatCPU2 != 0,
		Timeout: fstat&stcfstatTimeout != 0,
		Address: s.STCCADDR.Get(),
	}
}

// Reset disables the controller and clears its status.
func (s *STC) Reset() {
	s.STCGCR1.Set(keyDisable)
	s.STCSCSCR.Set(keyDisable)
	s.STCGSTAT.Set(stcgstatDone | stcgstatFail)
	s.STCFSTAT.Set(stcfstatCPU1 | stcfstatCPU2 | stcfstatTimeout)
}
