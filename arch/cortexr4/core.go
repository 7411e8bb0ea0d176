// Package cortexr4 exposes the processor operations of the Cortex-R4F core
// that the startup sequence and the fault handlers depend on.
package cortexr4

// Core is the minimal set of instructions a driver may need.
type Core interface {
	// Nop executes a single no-operation instruction.
	Nop()

	// WaitForInterrupt idles the core until an interrupt or a reset.
	WaitForInterrupt()

	// DisableInterrupts masks IRQ and FIQ and returns the previous mask state.
	DisableInterrupts() uint32

	// RestoreInterrupts restores a mask state returned by DisableInterrupts.
	RestoreInterrupts(state uint32)

	// EnableInterrupts unmasks IRQ and FIQ.
	EnableInterrupts()
}

// Processor adds the system control coprocessor operations used once during
// startup.
type Processor interface {
	Core

	// InitCoreRegisters sets every general purpose register of every mode to
	// a known value so that the two lockstep cores start from identical
	// state. The floating point registers are included when vfp is set.
	InitCoreRegisters(vfp bool)

	// InitStackPointers loads the stack pointer of every processor mode.
	InitStackPointers()

	// EventBusExport enables or disables export of processor events to the
	// system event bus.
	EventBusExport(enable bool)

	// Errata57 applies the workaround for ARM erratum 57 (disable
	// out-of-order single precision floating point multiply-accumulate).
	Errata57()

	// Errata66 applies the workaround for ARM erratum 66 (disable
	// out-of-order completion of divide instructions).
	Errata66()

	// RAMECC enables or disables ECC checking on the tightly coupled RAM.
	RAMECC(enable bool)

	// FlashECC enables or disables ECC checking on the flash interface.
	FlashECC(enable bool)

	// EnableVIC switches IRQ dispatch to the vectored interrupt controller
	// port.
	EnableVIC()

	// EnableVFP turns on the floating point unit.
	EnableVFP()

	// Halt masks all interrupts and stops forward progress. It does not
	// return on hardware.
	Halt()
}

// Critical runs fn with interrupts masked and restores the previous mask
// state afterwards.
func Critical(c Core, fn func()) {
	state := c.DisableInterrupts()
	defer c.RestoreInterrupts(state)
	fn()
}

// Cycles busy-waits for n instruction cycles.
func Cycles(c Core, n int) {
	for i := 0; i < n; i++ {
		c.Nop()
	}
}
