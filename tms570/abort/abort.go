// Package abort handles data aborts raised by uncorrectable ECC errors.
//
// An uncorrectable error in a RAM bank with ECC protected writes, or in flash
// outside of the flash diagnostic mode, is a genuine memory fault and the
// device halts. Any other uncorrectable error was caused by a diagnostic
// access; it is cleared and execution resumes at the faulting instruction.
//
// The package also serves the two interrupt entries that exist only for
// faults: the phantom interrupt and the VIM parity fallback.
//
// Everything reachable from a handler is nosplit. It runs on the small
// exception mode stacks and cannot grow them.
package abort

import (
	"sync/atomic"

	"omibyte.io/hercules/tms570"
)

// ReturnOffset is subtracted from the abort mode link register to resume at
// the instruction that caused a data abort.
const ReturnOffset = 8

// Action is the outcome of a data abort.
type Action int

const (
	Resume Action = iota
	Halt
)

func (a Action) String() string {
	if a == Halt {
		return "halt"
	}
	return "resume"
}

// Handler decides how a data abort is resolved.
type Handler struct {
	ESM    *tms570.ESM
	TCRAM1 *tms570.TCRAM
	TCRAM2 *tms570.TCRAM
	Flash  *tms570.Flash
	VIM    *tms570.VIM

	// Custom is called after the ECC sources are checked and before
	// resuming. It must not fault itself and must be nosplit.
	Custom func()
}

func NewHandler(chip *tms570.Chip) *Handler {
	return &Handler{
		ESM:    chip.ESM,
		TCRAM1: chip.TCRAM1,
		TCRAM2: chip.TCRAM2,
		Flash:  chip.Flash,
		VIM:    chip.VIM,
	}
}

// DataAbort inspects the ECC error channels and either clears an incidental
// error or reports that the device must halt. Nothing bounds how often the
// same instruction may abort again after resuming.
//
//go:nosplit
func (h *Handler) DataAbort() Action {
	if h.ESM.ErrorIsSet(tms570.RAMEvenUncorrectableECC) {
		if h.TCRAM1.ECCWriteEnabled() {
			return Halt
		}
		h.TCRAM1.ClearError()
		h.ESM.ClearError(tms570.RAMEvenUncorrectableECC)
		h.ESM.ErrorReset()
	}

	if h.ESM.ErrorIsSet(tms570.RAMOddUncorrectableECC) {
		if h.TCRAM2.ECCWriteEnabled() {
			return Halt
		}
		h.TCRAM2.ClearError()
		h.ESM.ClearError(tms570.RAMOddUncorrectableECC)
		h.ESM.ErrorReset()
	}

	if h.ESM.ErrorIsSet(tms570.FMCUncorrectableECC) {
		if !h.Flash.DiagnosticActive() {
			return Halt
		}
		h.Flash.ClearError()
		h.ESM.ClearError(tms570.FMCUncorrectableECC)
		h.ESM.ErrorReset()
	}

	if h.Custom != nil {
		h.Custom()
	}
	return Resume
}

// VIMParity serves a request whose vector failed its parity check and
// returns the channel it released, or -1.
//
//go:nosplit
func (h *Handler) VIMParity() int {
	return h.VIM.ServiceParityError(h.ESM)
}

// ResumeAddress returns the address execution continues at for the abort
// mode link register lr.
//
//go:nosplit
func ResumeAddress(lr uint32) uint32 {
	return lr - ReturnOffset
}

var phantom uint32

// PhantomInterrupt counts a spurious interrupt delivered through vector 0.
//
//go:nosplit
func PhantomInterrupt() {
	atomic.AddUint32(&phantom, 1)
}

// PhantomCount returns the number of phantom interrupts seen.
func PhantomCount() uint32 {
	return atomic.LoadUint32(&phantom)
}
