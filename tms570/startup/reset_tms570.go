//go:build tms570 && arm

package startup

import (
	"reflect"
	_ "unsafe"

	"omibyte.io/hercules/arch/cortexr4"
	"omibyte.io/hercules/mmio"
	"omibyte.io/hercules/tms570"
	"omibyte.io/hercules/tms570/abort"
)

//go:linkname main main.main
func main()

//go:linkname initPackages runtime.initPackages
func initPackages()

// ResetHandler is the reset exception entry. Its address goes into the
// exception vector table.
func ResetHandler()

// entry is reached from ResetHandler once the CPU RAM is tested and
// initialized and the data sections are in place.
//
//go:nosplit
func entry() {
	// Call all the package inits before anything else
	initPackages()

	cpu := cortexr4.CPU{}
	chip := tms570.New(mmio.Hardware)
	abort.Install(abort.NewHandler(chip))

	seq := Sequencer{
		Config: DefaultConfig(),
		Chip:   chip,
		CPU:    cpu,
		Handlers: Handlers{
			Phantom:  codeAddr(abort.PhantomVector),
			Fallback: codeAddr(abort.FallbackVector),
		},
		Prepared: ResetHandlerPhases,
		Entry: func(argc int32, argv uintptr) {
			main()
		},
	}
	if err := seq.Run(); err != nil {
		cpu.Halt()
	}

	// Loop forever
	for {
	}
}

func codeAddr(fn func()) uint32 {
	return uint32(reflect.ValueOf(fn).Pointer())
}
