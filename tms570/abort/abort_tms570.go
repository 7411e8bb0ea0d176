//go:build tms570 && arm

package abort

import "omibyte.io/hercules/arch/cortexr4"

var installed *Handler

// Install makes h the handler of the data abort and parity fallback
// vectors.
func Install(h *Handler) {
	installed = h
}

// DataAbortVector is the data abort exception entry. Its address goes into
// the exception vector table.
func DataAbortVector()

// PhantomVector and FallbackVector are IRQ entries. Their addresses go into
// VIM vector 0 and the parity fallback register.
func PhantomVector()
func FallbackVector()

// dataAbort is called by DataAbortVector with the abort mode link register
// and returns the address to resume at.
//
//go:nosplit
func dataAbort(lr uint32) uint32 {
	if installed == nil || installed.DataAbort() == Halt {
		cortexr4.CPU{}.Halt()
	}
	return ResumeAddress(lr)
}

//go:nosplit
func fallback() {
	if installed != nil {
		installed.VIMParity()
	}
}
