package tms570

import (
	"omibyte.io/hercules/arch/cortexr4"
	"omibyte.io/hercules/mmio"
)

const (
	efcSelfTestCycles    = 600
	efcSelfTestSignature = 0x5362F97F
	efcBoundarySelfTest  = 0x0000200F

	efcPinsSelfTestDone  = 1 << 15
	efcPinsSelfTestError = 1 << 14
	efcErrorCodeMask     = 0x1F
)

// EFuse is the eFuse farm controller. The factory trim and repair data are
// loaded from the fuses at reset; the controller self-test checks the ECC
// logic protecting that load.
type EFuse struct {
	mmio.NoCopy

	BOUNDARY mmio.Register
	PINS     mmio.Register
	ERRSTAT  mmio.Register
	STCYCLES mmio.Register // self-test cycles
	STSIGN   mmio.Register // self-test signature
}

func newEFuse(bus mmio.Bus, base uintptr) *EFuse {
	blk := mmio.NewBlock(bus, base)
	return &EFuse{
		BOUNDARY: blk.Reg(0x1C),
		PINS:     blk.Reg(0x2C),
		ERRSTAT:  blk.Reg(0x3C),
		STCYCLES: blk.Reg(0x48),
		STSIGN:   blk.Reg(0x4C),
	}
}

// EFuseResult is the outcome of the controller self-test.
type EFuseResult struct {
	Complete bool
	Error    bool
	Code     uint32
}

// StartSelfTest starts the controller self-test. Writing the signature
// starts the run.
func (e *EFuse) StartSelfTest() {
	e.STCYCLES.Set(efcSelfTestCycles)
	e.STSIGN.Set(efcSelfTestSignature)
	e.BOUNDARY.Set(efcBoundarySelfTest)
}

// Result reads back the outcome of the self-test.
func (e *EFuse) Result() EFuseResult {
	pins := e.PINS.Get()
	code := e.ERRSTAT.Get() & efcErrorCodeMask
	return EFuseResult{
		Complete: pins&efcPinsSelfTestDone != 0,
		Error:    pins&efcPinsSelfTestError != 0 || code != 0,
		Code:     code,
	}
}

// SelfTest runs the controller self-test and gives it the programmed number
// of cycles to complete before reading the result.
func (e *EFuse) SelfTest(core cortexr4.Core) EFuseResult {
	e.StartSelfTest()
	cortexr4.Cycles(core, efcSelfTestCycles)
	return e.Result()
}
