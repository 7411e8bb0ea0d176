package tms570

import (
	"strings"

	"omibyte.io/hercules/mmio"
)

// Cause is the set of reset causes latched by the system exception status
// register. Several bits can be set at once, power-on is always accompanied
// by a CPU reset.
type Cause uint32

const (
	External   Cause = 0x0008
	Software   Cause = 0x0010
	CPU        Cause = 0x0020
	WdIcePick  Cause = 0x2000
	OscFailure Cause = 0x4000
	PowerOn    Cause = 0x8000

	causeAll Cause = 0xFFFF
)

var causeNames = []struct {
	cause Cause
	name  string
}{
	{PowerOn, "power-on"},
	{OscFailure, "oscillator failure"},
	{WdIcePick, "watchdog/icepick"},
	{CPU, "cpu"},
	{Software, "software"},
	{External, "external"},
}

func (c Cause) Has(flag Cause) bool {
	return c&flag != 0
}

func (c Cause) String() string {
	var names []string
	for _, n := range causeNames {
		if c.Has(n.cause) {
			names = append(names, n.name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}

// SystemException is the reset cause register. It keeps its content across
// every reset except power-on, so each recognized cause has to be cleared or
// it is reported again after the next reset.
type SystemException struct {
	mmio.NoCopy
	SYSESR mmio.Register
}

func newSystemException(bus mmio.Bus, addr uintptr) *SystemException {
	return &SystemException{SYSESR: mmio.NewRegister(bus, addr)}
}

// Causes reads the latched reset causes.
func (s *SystemException) Causes() Cause {
	return Cause(s.SYSESR.Get() & uint32(causeAll))
}

func (s *SystemException) PowerOn() bool    { return s.Causes().Has(PowerOn) }
func (s *SystemException) OscFailure() bool { return s.Causes().Has(OscFailure) }
func (s *SystemException) WdIcePick() bool  { return s.Causes().Has(WdIcePick) }
func (s *SystemException) CPU() bool        { return s.Causes().Has(CPU) }
func (s *SystemException) Software() bool   { return s.Causes().Has(Software) }
func (s *SystemException) External() bool   { return s.Causes().Has(External) }

// Clear clears exactly the given cause bits.
func (s *SystemException) Clear(flags Cause) {
	s.SYSESR.Set(uint32(flags))
}

func (s *SystemException) ClearAll() {
	s.SYSESR.Set(uint32(causeAll))
}
