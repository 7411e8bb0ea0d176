package tms570

import (
	"omibyte.io/hercules/arch/cortexr4"
	"omibyte.io/hercules/mmio"
)

// Algorithm selects PBIST test algorithms.
type Algorithm uint32

const (
	TripleReadSlow           Algorithm = 0x00000001
	TripleReadFast           Algorithm = 0x00000002
	March13NDualPort         Algorithm = 0x00000004
	March13NSinglePort       Algorithm = 0x00000008
	DownOneDualPort          Algorithm = 0x00000010
	DownOneSinglePort        Algorithm = 0x00000020
	MapColumnDualPort        Algorithm = 0x00000040
	MapColumnSinglePort      Algorithm = 0x00000080
	PreChargeDualPort        Algorithm = 0x00000100
	PreChargeSinglePort      Algorithm = 0x00000200
	DTXNDualPort             Algorithm = 0x00000400
	DTXNSinglePort           Algorithm = 0x00000800
	PMOSOpenDualPort         Algorithm = 0x00001000
	PMOSOpenSinglePort       Algorithm = 0x00002000
	PMOSOpenSlice1DualPort   Algorithm = 0x00004000
	PMOSOpenSlice1SinglePort Algorithm = 0x00008000
	PMOSOpenSlice2DualPort   Algorithm = 0x00010000
	PMOSOpenSlice2SinglePort Algorithm = 0x00020000
	DTXNAlt1DualPort         Algorithm = 0x00040000
	DTXNAlt1SinglePort       Algorithm = 0x00080000
	DTXNAlt2DualPort         Algorithm = 0x00100000
	DTXNAlt2SinglePort       Algorithm = 0x00200000
	IDDQRowStripeDualPort    Algorithm = 0x00400000
	IDDQRowStripeSinglePort  Algorithm = 0x00800000
	IDDQRowStripe2DualPort   Algorithm = 0x01000000
	IDDQRowStripe2SinglePort Algorithm = 0x02000000
)

// Memory selects the memory groups a PBIST run covers.
type Memory uint32

const (
	MemPBISTROM Memory = 1 << 0
	MemSTCROM   Memory = 1 << 1
	MemDCAN1    Memory = 1 << 2
	MemDCAN2    Memory = 1 << 3
	MemDCAN3    Memory = 1 << 4
	MemESRAM1   Memory = 1 << 5
	MemMibSPI1  Memory = 1 << 6
	MemMibSPI3  Memory = 1 << 7
	MemMibSPI5  Memory = 1 << 8
	MemVIM      Memory = 1 << 9
	MemMibADC1  Memory = 1 << 10
	MemDMA      Memory = 1 << 11
	MemN2HET1   Memory = 1 << 12
	MemHETTU1   Memory = 1 << 13
	MemRTP      Memory = 1 << 14
	MemFRAY     Memory = 1 << 15
	MemMibADC2  Memory = 1 << 18
	MemN2HET2   Memory = 1 << 19
	MemHETTU2   Memory = 1 << 20
	MemESRAM5   Memory = 1 << 21
	MemESRAM6   Memory = 1 << 22
	MemETHERNET Memory = 1 << 23
	MemUSB      Memory = 1 << 25
	MemESRAM8   Memory = 1 << 27
)

const (
	pbistClocksOn  = 0x3
	pbistClocksOff = 0x0
	pbistROMBoth   = 0x3
	pbistDLRRun    = 0x14
	pbistSelfTest  = 0x1
)

// PBIST is the programmable built-in self-test controller for the on-chip
// memories.
type PBIST struct {
	mmio.NoCopy

	RAMT    mmio.Register // RAM configuration
	DLR     mmio.Register // datalogger
	PACT    mmio.Register // activate
	PBISTID mmio.Register
	OVER    mmio.Register // override
	FSRF0   mmio.Register // fail status, port 0
	FSRC0   mmio.Register // fail count, port 0
	FSRC1   mmio.Register
	FSRA0   mmio.Register // fail address, port 0
	FSRA1   mmio.Register
	FSRDL0  mmio.Register // fail data, port 0
	FSRDL1  mmio.Register
	ROM     mmio.Register // ROM mask
	ALGO    mmio.Register // algorithm mask
	RINFOL  mmio.Register // RAM info mask, lower
	RINFOU  mmio.Register // RAM info mask, upper

	sys *Sys
}

func newPBIST(bus mmio.Bus, base uintptr, sys *Sys) *PBIST {
	blk := mmio.NewBlock(bus, base)
	return &PBIST{
		RAMT:    blk.Reg(0x00),
		DLR:     blk.Reg(0x04),
		PACT:    blk.Reg(0x20),
		PBISTID: blk.Reg(0x24),
		OVER:    blk.Reg(0x28),
		FSRF0:   blk.Reg(0x30),
		FSRC0:   blk.Reg(0x38),
		FSRC1:   blk.Reg(0x3C),
		FSRA0:   blk.Reg(0x40),
		FSRA1:   blk.Reg(0x44),
		FSRDL0:  blk.Reg(0x48),
		FSRDL1:  blk.Reg(0x50),
		ROM:     blk.Reg(0x60),
		ALGO:    blk.Reg(0x64),
		RINFOL:  blk.Reg(0x68),
		RINFOU:  blk.Reg(0x6C),
		sys:     sys,
	}
}

// Run starts a PBIST run of the algorithms over the memory groups. The run
// proceeds in hardware; poll Completed and check Failed afterwards.
func (p *PBIST) Run(core cortexr4.Core, algo Algorithm, mem Memory) {
	// Disable the PBIST clocks and ROM clock
	p.sys.MemorySelfController(core, false)
	p.sys.MemoryControllerEnable(false)

	// Clear a done status left from a previous run
	p.sys.MSTCGSTAT.Set(mstcgstatMemTestDone)

	// PBIST controller is the target of the memory self-test
	p.sys.MSINENA.Set(pbistSelfTest)

	// Enable the PBIST controller and its clocks
	p.sys.MemorySelfController(core, true)
	p.PACT.Set(pbistClocksOn)

	p.ALGO.Set(uint32(algo))
	p.RINFOL.Set(uint32(mem))
	p.RINFOU.Set(0)
	p.OVER.Set(0)
	p.ROM.Set(pbistROMBoth)

	// Start the run
	p.DLR.Set(pbistDLRRun)
}

// Completed reports whether the run has finished.
func (p *PBIST) Completed() bool {
	return p.sys.MSTCGSTAT.Get()&mstcgstatMemTestDone != 0
}

// WaitCompleted waits for the run to finish.
func (p *PBIST) WaitCompleted() {
	mmio.WaitSet(p.sys.MSTCGSTAT, mstcgstatMemTestDone)
}

// Failed reports whether the finished run found a memory fault.
func (p *PBIST) Failed() bool {
	return p.FSRF0.Get() != 0
}

// Stop turns the PBIST clocks off and disables the controller.
func (p *PBIST) Stop(core cortexr4.Core) {
	p.PACT.Set(pbistClocksOff)
	p.sys.MemorySelfController(core, false)
}

// PBISTFailure is the fail capture of the last run.
type PBISTFailure struct {
	Status  uint32
	Count   uint32
	Address uint32
	Data    uint32
}

// Failure returns the port 0 fail capture.
func (p *PBIST) Failure() PBISTFailure {
	return PBISTFailure{
		Status:  p.FSRF0.Get(),
		Count:   p.FSRC0.Get(),
		Address: p.FSRA0.Get(),
		Data:    p.FSRDL0.Get(),
	}
}

// SelfTest runs the given algorithms over the memory groups to completion
// and reports whether they passed. The controller is stopped in both cases.
func (p *PBIST) SelfTest(core cortexr4.Core, algo Algorithm, mem Memory) bool {
	p.Run(core, algo, mem)
	p.WaitCompleted()
	failed := p.Failed()
	p.Stop(core)
	return !failed
}
