package sim

import (
	"fmt"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"omibyte.io/hercules/tms570"
)

var faultSetters = map[string]func(f *Faults){
	"efuse-autoload":   func(f *Faults) { f.EFuseAutoload = true },
	"efuse-incomplete": func(f *Faults) { f.EFuseIncomplete = true },
	"efuse-selftest":   func(f *Faults) { f.EFuseSelfTest = true },
	"clock-supervisor": func(f *Faults) { f.ClockSupervisor = true },
	"pbist-rom":        func(f *Faults) { f.PBIST |= tms570.MemPBISTROM | tms570.MemSTCROM },
	"pbist-ram":        func(f *Faults) { f.PBIST |= tms570.MemESRAM1 },
	"ccm":              func(f *Faults) { f.CCMSelfTest = true },
	"ccm-forcing":      func(f *Faults) { f.CCMErrorForcing = true },
	"stc":              func(f *Faults) { f.STC = true },
	"vim-parity":       func(f *Faults) { f.VIMParity = true },
}

// FaultNames returns the names accepted by Faults.Set.
func FaultNames() []string {
	names := maps.Keys(faultSetters)
	slices.Sort(names)
	return names
}

// Set enables the fault with the given name.
func (f *Faults) Set(name string) error {
	set, ok := faultSetters[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return fmt.Errorf("unknown fault %q, expected one of %s", name, strings.Join(FaultNames(), ", "))
	}
	set(f)
	return nil
}
