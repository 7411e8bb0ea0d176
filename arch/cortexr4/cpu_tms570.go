//go:build tms570 && arm

package cortexr4

// CPU is the core the program is running on.
type CPU struct{}

func nop()
func wfi()
func disableInterrupts() uint32
func restoreInterrupts(state uint32)
func enableInterrupts()
func readPMCR() uint32
func writePMCR(value uint32)
func readACTLR() uint32
func writeACTLR(value uint32)
func readSCTLR() uint32
func writeSCTLR(value uint32)
func readSecondaryACTLR() uint32
func writeSecondaryACTLR(value uint32)
func enableFPU()
func halt()

const (
	pmcrExport         = 0x10
	actlrATCMECC       = 0x02000000
	actlrBTCMECC       = 0x0C000000
	actlrDivOutOfOrder = 0x80
	sctlrVectorPort    = 0x01000000
	secondaryMACFix    = 0x10000
)

func (CPU) Nop()                           { nop() }
func (CPU) WaitForInterrupt()              { wfi() }
func (CPU) DisableInterrupts() uint32      { return disableInterrupts() }
func (CPU) RestoreInterrupts(state uint32) { restoreInterrupts(state) }
func (CPU) EnableInterrupts()              { enableInterrupts() }
func (CPU) EnableVFP()                     { enableFPU() }
func (CPU) Halt()                          { halt() }

// The reset handler initializes the core registers and the stack pointers
// before any Go code runs.
func (CPU) InitCoreRegisters(vfp bool) {}
func (CPU) InitStackPointers()         {}

func (CPU) EventBusExport(enable bool) {
	if enable {
		writePMCR(readPMCR() | pmcrExport)
	} else {
		writePMCR(readPMCR() &^ pmcrExport)
	}
}

func (CPU) Errata57() {
	writeSecondaryACTLR(readSecondaryACTLR() | secondaryMACFix)
}

func (CPU) Errata66() {
	writeACTLR(readACTLR() | actlrDivOutOfOrder)
}

func (CPU) RAMECC(enable bool) {
	if enable {
		writeACTLR(readACTLR() | actlrBTCMECC)
	} else {
		writeACTLR(readACTLR() &^ actlrBTCMECC)
	}
}

func (CPU) FlashECC(enable bool) {
	if enable {
		writeACTLR(readACTLR() | actlrATCMECC)
	} else {
		writeACTLR(readACTLR() &^ actlrATCMECC)
	}
}

func (CPU) EnableVIC() {
	writeSCTLR(readSCTLR() | sctlrVectorPort)
}
