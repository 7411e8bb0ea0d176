// Package sim is a register level model of the device. It implements the
// bus the drivers run on, answers the polls of the startup sequence the way
// the silicon does, records every register write, and can inject the faults
// the self-tests are meant to catch.
package sim

import (
	"github.com/golang/glog"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"omibyte.io/hercules/tms570"
	"omibyte.io/hercules/tms570/startup"
)

// EventKind classifies trace events.
type EventKind int

const (
	EventWrite EventKind = iota
	EventPhase
	EventCPU
	EventReset
)

// Event is one entry of the machine trace.
type Event struct {
	Kind  EventKind
	Addr  uintptr
	Value uint32
	Phase startup.Phase
	Op    string
}

// Faults selects the hardware faults the model injects.
type Faults struct {
	// EFuseAutoload latches the eFuse autoload error at reset.
	EFuseAutoload bool
	// EFuseIncomplete keeps the eFuse self-test from completing.
	EFuseIncomplete bool
	// EFuseSelfTest makes the eFuse self-test report an error.
	EFuseSelfTest bool
	// ClockSupervisor keeps an oscillator failure from reaching the ESM.
	ClockSupervisor bool
	// PBIST lists the memory groups that fail their PBIST run.
	PBIST tms570.Memory
	// CCMSelfTest makes the CCM self-test report an error.
	CCMSelfTest bool
	// CCMErrorForcing keeps a forced compare error from reaching the ESM.
	CCMErrorForcing bool
	// STC makes the CPU self-test fail.
	STC bool
	// VIMParity keeps a vector RAM parity error from reaching the ESM.
	VIMParity bool
}

type writeHook func(old, value uint32) uint32
type readHook func(value uint32) uint32

// Machine is a simulated device.
type Machine struct {
	Chip   *tms570.Chip
	CPU    *CPU
	Faults Faults
	Layout startup.Layout
	// Handlers are installed into the VIM during boot.
	Handlers startup.Handlers
	// Prepared lists the phases a reset handler completed before the
	// sequencer starts, see startup.ResetHandlerPhases.
	Prepared []startup.Phase

	// App is called as the application entry point.
	App func(m *Machine)

	regs   map[uintptr]uint32
	writes map[uintptr]writeHook
	reads  map[uintptr]readHook
	trace  []Event

	stcArmed    bool
	appCalled   bool
	appReturned bool
	pllPending  int
	wdKey       uint32
	psaLow      [2]uint32
	psa         [2]uint64
}

// Default memory layout of the simulated image.
const (
	imageBase = 0x00010000
	ramBase   = 0x08001000
	bssSize   = 0x40
	dataSize  = 0x40

	phantomHandler  = imageBase + 0x20
	fallbackHandler = imageBase + 0x40
)

// New creates a machine in its power-on state.
func New() *Machine {
	m := &Machine{
		regs:   map[uintptr]uint32{},
		writes: map[uintptr]writeHook{},
		reads:  map[uintptr]readHook{},
		Layout: startup.Layout{
			BSSStart:  ramBase,
			BSSEnd:    ramBase + bssSize,
			DataStart: ramBase + bssSize,
			DataEnd:   ramBase + bssSize + dataSize,
			DataLoad:  imageBase,
			HeapStart: ramBase + bssSize + dataSize,
			HeapSize:  0x1000,
		},
		Handlers: startup.Handlers{
			Phantom:  phantomHandler,
			Fallback: fallbackHandler,
		},
	}
	m.Chip = tms570.New(m)
	m.CPU = &CPU{m: m}
	m.install()
	m.powerOn()
	return m
}

// Load implements mmio.Bus.
func (m *Machine) Load(addr uintptr) uint32 {
	value := m.regs[addr]
	if hook, ok := m.reads[addr]; ok {
		value = hook(value)
	}
	return value
}

// Store implements mmio.Bus.
func (m *Machine) Store(addr uintptr, value uint32) {
	glog.V(3).Infof("write %#08x = %#08x", addr, value)
	m.trace = append(m.trace, Event{Kind: EventWrite, Addr: addr, Value: value})
	if hook, ok := m.writes[addr]; ok {
		value = hook(m.regs[addr], value)
	}
	m.regs[addr] = value
}

// Peek reads a register without side effects.
func (m *Machine) Peek(addr uintptr) uint32 {
	return m.regs[addr]
}

// Poke sets a register without side effects and without tracing it.
func (m *Machine) Poke(addr uintptr, value uint32) {
	m.regs[addr] = value
}

// Registers returns the addresses of every register that holds a value, in
// ascending order.
func (m *Machine) Registers() []uintptr {
	addrs := maps.Keys(m.regs)
	slices.Sort(addrs)
	return addrs
}

// Trace returns the recorded events.
func (m *Machine) Trace() []Event {
	return m.trace
}

// ClearTrace drops the recorded events.
func (m *Machine) ClearTrace() {
	m.trace = nil
}

// WritesTo returns the values written to addr, in order.
func (m *Machine) WritesTo(addr uintptr) []uint32 {
	var values []uint32
	for _, ev := range m.trace {
		if ev.Kind == EventWrite && ev.Addr == addr {
			values = append(values, ev.Value)
		}
	}
	return values
}

// Phases returns the startup phases entered since the last reset.
func (m *Machine) Phases() []startup.Phase {
	var phases []startup.Phase
	for _, ev := range m.trace {
		switch ev.Kind {
		case EventReset:
			phases = phases[:0]
		case EventPhase:
			phases = append(phases, ev.Phase)
		}
	}
	return phases
}

// Ops returns the CPU operations recorded in the trace.
func (m *Machine) Ops() []string {
	var ops []string
	for _, ev := range m.trace {
		if ev.Kind == EventCPU {
			ops = append(ops, ev.Op)
		}
	}
	return ops
}

func (m *Machine) phase(p startup.Phase) {
	glog.V(1).Infof("phase %s", p)
	m.trace = append(m.trace, Event{Kind: EventPhase, Phase: p})
}

func (m *Machine) op(name string) {
	m.trace = append(m.trace, Event{Kind: EventCPU, Op: name})
}

// Raise latches an error on an ESM channel the way the hardware does.
// Group 2 and 3 errors drive the error pin, group 2 errors raise the high
// level interrupt, which the VIM reports as FIQ channel 0.
func (m *Machine) Raise(ch tms570.Channel) {
	loc := ch.StatusLocation()
	if !loc.Valid {
		return
	}
	esm := m.Chip.ESM
	reg := esm.SR1[loc.Index]
	if loc.Bank == tms570.BankSR4 {
		reg = esm.SR4[loc.Index]
	}
	m.regs[reg.Addr()] |= 1 << loc.Bit
	if ch.Group == tms570.Group2 {
		m.regs[esm.SSR2.Addr()] |= 1 << loc.Bit
		m.regs[esm.IOFFHR.Addr()] = uint32(ch.Group)*32 + uint32(ch.Number) + 1
		m.regs[m.Chip.VIM.FIQINDEX.Addr()] = 1
	}
	if ch.Group >= tms570.Group2 {
		m.regs[esm.EPSR.Addr()] = 0
	}
}

// SetCause replaces the latched reset causes.
func (m *Machine) SetCause(c tms570.Cause) {
	m.regs[m.Chip.SysExc.SYSESR.Addr()] = uint32(c)
}

// SetWatchdogStatus sets the latched watchdog violation.
func (m *Machine) SetWatchdogStatus(v tms570.Violation) {
	m.regs[m.Chip.DWD.WDSTATUS.Addr()] = uint32(v)
}

// SetLPOTrim sets the OTP LPO trim word; 0xFFFF marks it as not programmed.
func (m *Machine) SetLPOTrim(trim uint16) {
	m.regs[m.Chip.Sys.LPOTRIM.Addr()] = uint32(trim) << 16
}

// LoadImage fills the load image of the data section.
func (m *Machine) LoadImage(words []uint32) {
	for i, w := range words {
		m.regs[m.Layout.DataLoad+uintptr(i)*4] = w
	}
}

// Retained returns the registers that keep their content across a reset
// other than power-on.
func (m *Machine) Retained() []uintptr {
	c := m.Chip
	return []uintptr{
		c.SysExc.SYSESR.Addr(),
		c.Sys.LPOTRIM.Addr(),
		c.DWD.WDSTATUS.Addr(),
		c.STC.STCGSTAT.Addr(),
		c.STC.STCFSTAT.Addr(),
		c.STC.STCSCSCR.Addr(),
		c.ESM.SSR2.Addr(),
	}
}

// powerOn sets the reset values of the modelled registers.
func (m *Machine) powerOn() {
	c := m.Chip
	m.regs[c.ESM.EPSR.Addr()] = 1
	m.regs[c.SysExc.SYSESR.Addr()] = uint32(tms570.PowerOn | tms570.CPU)
	m.regs[c.Sys.CSDIS.Addr()] = 0xCE
	m.regs[c.Sys.GHVSRC.Addr()] = 0x00000000
	m.regs[c.Sys.CLKCNTL.Addr()] = 0x01010000
	m.regs[c.Sys.LPOTRIM.Addr()] = 0x01050000
	m.regs[c.STC.STCSCSCR.Addr()] = 0x5
	m.regs[c.VIM.PARCTL.Addr()] = 0x5
	m.regs[c.DWD.DWDPRLD.Addr()] = 0xFFF
}
