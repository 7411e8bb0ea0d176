// Package startup brings the device from reset to the application.
//
// The sequence is linear and runs with interrupts masked. Every self-test
// that fails stops the sequence with a *FatalError; the reset entry then
// halts the core. Recoverable conditions, such as a watchdog reset caused by
// a missed service window, are cleared and the sequence continues.
package startup

import (
	"golang.org/x/exp/slices"

	"omibyte.io/hercules/arch/cortexr4"
	"omibyte.io/hercules/tms570"
)

// Application is the entry point of the program, called with the C-style
// argument count and vector.
type Application func(argc int32, argv uintptr)

// ResetHandlerPhases are the phases the reset handler of the target
// completes before the first Go instruction. They rewrite core registers or
// the CPU RAM, which the Go code running the sequence lives in.
var ResetHandlerPhases = []Phase{
	PhaseCoreInit,
	PhaseStack,
	PhasePBISTRAM,
	PhaseMemoryInit,
	PhaseDataSections,
}

// Handlers are the code addresses installed into the interrupt manager.
type Handlers struct {
	// Phantom serves an interrupt request that vanished before it was
	// dispatched. It is vector table entry 0.
	Phantom uint32
	// Fallback is used in place of a vector that failed its parity check.
	Fallback uint32
}

// Sequencer runs the startup sequence on one device.
type Sequencer struct {
	Config   Config
	Chip     *tms570.Chip
	CPU      cortexr4.Processor
	Layout   Layout
	Handlers Handlers
	Entry    Application

	// Prepared lists phases that already ran before the sequencer was
	// started. They are still reported to Observe but not executed again.
	// Memory initialization then covers the peripheral RAMs only.
	Prepared []Phase

	// Observe, when set, is called at the start of every phase.
	Observe func(Phase)

	// Cause is the reset cause recognized by the dispatch.
	Cause tms570.Cause
	// Violation is the watchdog status when the reset came from the
	// watchdog.
	Violation tms570.Violation
}

func (s *Sequencer) enter(p Phase) {
	if s.Observe != nil {
		s.Observe(p)
	}
}

func (s *Sequencer) prepared(p Phase) bool {
	return slices.Contains(s.Prepared, p)
}

func fatal(p Phase, err error) error {
	return &FatalError{Phase: p, Err: err}
}

// Run executes the startup sequence and calls the application. It returns
// only when a fatal error stops the sequence. When the application returns
// the core idles forever.
func (s *Sequencer) Run() error {
	if err := s.Boot(); err != nil {
		return err
	}

	s.enter(PhaseApplication)
	s.Entry(0, 0)

	for {
		s.CPU.WaitForInterrupt()
	}
}

// Boot executes every phase up to, but not including, the application.
func (s *Sequencer) Boot() error {
	chip, cpu, cfg := s.Chip, s.CPU, s.Config

	s.enter(PhaseCoreInit)
	if !s.prepared(PhaseCoreInit) {
		cpu.InitCoreRegisters(cfg.VFP)
	}

	s.enter(PhaseStack)
	if !s.prepared(PhaseStack) {
		cpu.InitStackPointers()
	}

	s.enter(PhaseEventBus)
	cpu.EventBusExport(true)

	s.enter(PhaseErrata)
	if cfg.Errata57 {
		cpu.Errata57()
	}
	if cfg.Errata66 {
		cpu.Errata66()
	}

	s.enter(PhaseResetCause)
	if err := s.dispatch(); err != nil {
		return err
	}

	s.enter(PhaseEFuseAutoload)
	if chip.ESM.ErrorIsSet(tms570.EFuseAutoload) {
		return fatal(PhaseEFuseAutoload, ErrEFuseAutoload)
	}

	// The PLLs lock in the background while the rest of the clock
	// independent setup runs.
	s.enter(PhasePLLSetup)
	chip.Sys.SetupPLL(cfg.Clock.PLLMultiplier)

	s.enter(PhaseEFuseCheck)
	if err := s.checkEFuse(); err != nil {
		return err
	}

	s.enter(PhasePeripherals)
	chip.Sys.EnablePeripherals(false)
	chip.PCR.EnableAll()
	chip.Sys.EnablePeripherals(true)

	s.enter(PhaseFlash)
	chip.Flash.Setup(cfg.Flash.PowerMode(), cfg.Flash.WaitStates, cfg.Flash.AddressWaitState, cfg.Flash.Pipeline)
	chip.Flash.EnableECC()
	cpu.FlashECC(true)

	s.enter(PhaseLPOTrim)
	chip.Sys.TrimLPO(cfg.Clock.LPOFallback)

	s.enter(PhaseClockDomains)
	chip.Sys.ClockDomainEnableAll()

	s.enter(PhasePLLLock)
	chip.Sys.WaitPLLLock()

	s.enter(PhaseClockSource)
	chip.Sys.SetupClockSource(tms570.SourcePLL1, tms570.SourcePLL1, tms570.SourcePLL1)

	s.enter(PhasePeripheralDividers)
	clk := cfg.Clock
	chip.Sys.PeripheralsClockDivider(clk.VCLK1Divider, clk.VCLK2Divider, clk.VCLK3Divider, clk.VCLK4Divider)

	s.enter(PhasePLLDivider)
	chip.Sys.SetPLLDivider(clk.PLL1Divider, clk.PLL2Divider)

	s.enter(PhaseECLK)
	chip.Sys.ECLKFunctionalMode(clk.ECLKDivider, clk.ECLKOscIn)

	s.enter(PhaseClockSupervisor)
	if !chip.Sys.ClockSupervisorTest(chip.ESM) {
		return fatal(PhaseClockSupervisor, ErrClockSupervisor)
	}

	if cfg.PBISTROM {
		s.enter(PhasePBISTROM)
		if !chip.PBIST.SelfTest(cpu, tms570.TripleReadSlow|tms570.TripleReadFast, tms570.MemPBISTROM) {
			return fatal(PhasePBISTROM, ErrPBIST)
		}
		if !chip.PBIST.SelfTest(cpu, tms570.TripleReadSlow|tms570.TripleReadFast, tms570.MemSTCROM) {
			return fatal(PhasePBISTROM, ErrPBIST)
		}
	}

	// The RAM test destroys the RAM content, a debugger session would lose
	// whatever it loaded there.
	if cfg.PBISTRAM && !cfg.Debug {
		s.enter(PhasePBISTRAM)
		if !s.prepared(PhasePBISTRAM) && !chip.PBIST.SelfTest(cpu, tms570.March13NSinglePort, tms570.MemESRAM1) {
			return fatal(PhasePBISTRAM, ErrPBIST)
		}
	}

	s.enter(PhaseRAMECC)
	chip.TCRAM1.EnableECCDetect()
	chip.TCRAM2.EnableECCDetect()
	cpu.RAMECC(true)

	s.enter(PhaseVIMParity)
	chip.VIM.ParityEnable(true)
	chip.VIM.SetFallbackHandler(s.Handlers.Fallback)

	s.enter(PhaseMemoryInit)
	ram := tms570.RAMInternal | tms570.RAMVIM
	if s.prepared(PhaseMemoryInit) {
		ram = tms570.RAMVIM
	}
	chip.Sys.InitMemory(ram)

	// The vector RAM is valid only after its initialization
	s.enter(PhaseVIC)
	chip.VIM.SetPhantomHandler(s.Handlers.Phantom)
	cpu.EnableVIC()
	if cfg.VFP {
		cpu.EnableVFP()
	}

	s.enter(PhaseDataSections)
	if !s.prepared(PhaseDataSections) {
		s.initSections()
	}

	return nil
}

// dispatch recognizes the reset cause and clears exactly the bits it
// handled. Bits left set would be reported again after the next reset.
func (s *Sequencer) dispatch() error {
	chip, exc := s.Chip, s.Chip.SysExc
	causes := exc.Causes()

	switch {
	case causes.Has(tms570.PowerOn):
		// A power-on reset also resets the core.
		s.Cause = tms570.PowerOn | causes&tms570.CPU
		exc.Clear(s.Cause)
		if s.Config.STCSelfCheck {
			// The real self-test follows the reset that ends this run.
			chip.STC.SelfCheck(s.CPU, s.Config.STC.Intervals, true)
			return fatal(PhaseResetCause, ErrSelfTestPending)
		}
		if s.Config.CPUSelfTest {
			return s.runSelfTest()
		}

	case causes.Has(tms570.OscFailure):
		s.Cause = tms570.OscFailure
		exc.Clear(tms570.OscFailure)

	case causes.Has(tms570.WdIcePick):
		s.Cause = tms570.WdIcePick
		if chip.DWD.TimeViolation() {
			// Watchdog reset after a missed service window
			s.Violation = chip.DWD.Status()
			chip.DWD.StatusClear()
		}
		exc.Clear(tms570.WdIcePick)

	case causes.Has(tms570.CPU):
		s.Cause = tms570.CPU
		exc.Clear(tms570.CPU)
		if err := s.checkSelfTest(); err != nil {
			return err
		}

	case causes.Has(tms570.Software):
		s.Cause = tms570.Software
		exc.Clear(tms570.Software)

	case causes.Has(tms570.External):
		s.Cause = tms570.External
		exc.Clear(tms570.External)
	}
	return nil
}

// checkSelfTest evaluates the CPU self-test that caused a CPU reset and runs
// the lockstep compare self-test after it.
func (s *Sequencer) checkSelfTest() error {
	chip := s.Chip
	result := chip.STC.Result()
	if !result.Done {
		// A CPU reset without a self-test, e.g. from a debugger
		return nil
	}

	failed := result.Failed
	selfCheck := chip.STC.SelfCheckActive()
	if selfCheck {
		// The self-check run inserts a fault, it has to fail.
		failed = !result.Failed
	}
	chip.STC.Reset()
	if failed {
		if selfCheck {
			return fatal(PhaseResetCause, ErrSTCSelfCheck)
		}
		return fatal(PhaseResetCause, ErrCPUSelfTest)
	}
	if selfCheck && s.Config.CPUSelfTest {
		return s.runSelfTest()
	}

	if s.Config.CCMSelfTest && !chip.CCM.SelfTest(chip.ESM, chip.VIM) {
		return fatal(PhaseResetCause, ErrLockstep)
	}
	return nil
}

// runSelfTest starts the CPU self-test. A completed run resets the core, so
// it only returns when the controller never ran.
func (s *Sequencer) runSelfTest() error {
	s.Chip.STC.CPUSelfTest(s.CPU, s.Config.STC.Intervals, s.Config.STC.Timeout, true)
	return fatal(PhaseResetCause, ErrSelfTestPending)
}

// checkEFuse runs the eFuse controller self-test.
func (s *Sequencer) checkEFuse() error {
	chip := s.Chip
	result := chip.EFuse.SelfTest(s.CPU)
	if !result.Complete {
		return fatal(PhaseEFuseCheck, ErrEFuseIncomplete)
	}
	if result.Error || chip.ESM.ErrorIsSet(tms570.EFuseSelfTestError) {
		return fatal(PhaseEFuseCheck, ErrEFuseUnreliable)
	}
	return nil
}

// initSections zeroes .bss and copies .data from its load address.
func (s *Sequencer) initSections() {
	bus, l := s.Chip.Bus, s.Layout
	for addr := l.BSSStart; addr < l.BSSEnd; addr += 4 {
		bus.Store(addr, 0)
	}
	src := l.DataLoad
	for addr := l.DataStart; addr < l.DataEnd; addr += 4 {
		bus.Store(addr, bus.Load(src))
		src += 4
	}
}
