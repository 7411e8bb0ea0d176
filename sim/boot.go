package sim

import (
	"errors"
	"fmt"

	"github.com/golang/glog"

	"omibyte.io/hercules/tms570"
	"omibyte.io/hercules/tms570/startup"
)

// maxBoots bounds the resets of one simulated power cycle.
const maxBoots = 4

var ErrResetLoop = errors.New("device keeps resetting")

// Outcome is how a simulated boot ended.
type Outcome int

const (
	// Idle means the application ran and returned.
	Idle Outcome = iota
	// Halted means the core stopped on a fatal error.
	Halted
)

func (o Outcome) String() string {
	if o == Halted {
		return "halted"
	}
	return "idle"
}

// Result describes a simulated boot.
type Result struct {
	Outcome Outcome
	// Err is the fatal error that halted the core.
	Err error
	// Cause is the reset cause recognized by the last boot.
	Cause     tms570.Cause
	Violation tms570.Violation
	// Resets counts the resets taken before the last boot.
	Resets    int
	AppCalled bool
	Phases    []startup.Phase
}

// Boot runs the startup sequence with cfg until the application returns or
// the core halts. Resets requested by the hardware, such as the end of a
// CPU self-test, restart the sequence.
func (m *Machine) Boot(cfg startup.Config) Result {
	if m.Faults.EFuseAutoload {
		m.Raise(tms570.EFuseAutoload)
	}

	var res Result
	for boot := 0; boot < maxBoots; boot++ {
		seq := &startup.Sequencer{
			Config:   cfg,
			Chip:     m.Chip,
			CPU:      m.CPU,
			Layout:   m.Layout,
			Handlers: m.Handlers,
			Prepared: m.Prepared,
			Entry:    m.entry,
			Observe:  m.phase,
		}

		err, sig := m.run(seq.Run)
		res.Cause, res.Violation = seq.Cause, seq.Violation
		res.AppCalled = m.appCalled
		res.Phases = m.Phases()

		switch sig := sig.(type) {
		case resetSignal:
			glog.Infof("reset: %s", sig.cause)
			m.reset(sig.cause)
			res.Resets++
			continue
		case idleSignal:
			res.Outcome = Idle
			return res
		case haltSignal:
			res.Outcome = Halted
			return res
		}

		// Run only returns on a fatal error; the reset entry halts.
		glog.Errorf("fatal: %v", err)
		res.Outcome, res.Err = Halted, err
		m.op("halt")
		return res
	}
	res.Outcome, res.Err = Halted, ErrResetLoop
	return res
}

// run calls fn and turns the signals raised by the model into a value.
func (m *Machine) run(fn func() error) (err error, sig interface{}) {
	defer func() {
		if r := recover(); r != nil {
			switch r.(type) {
			case resetSignal, haltSignal, idleSignal:
				sig = r
			default:
				panic(r)
			}
		}
	}()
	return fn(), nil
}

// Call runs fn on the machine and reports whether the core halted.
func (m *Machine) Call(fn func()) (halted bool) {
	_, sig := m.run(func() error {
		fn()
		return nil
	})
	_, halted = sig.(haltSignal)
	return halted
}

func (m *Machine) entry(argc int32, argv uintptr) {
	m.appCalled = true
	if m.App != nil {
		m.App(m)
	}
	m.appReturned = true
}

// reset applies a reset that is not a power-on reset.
func (m *Machine) reset(cause tms570.Cause) {
	c := m.Chip
	m.trace = append(m.trace, Event{Kind: EventReset, Op: cause.String()})
	m.regs[c.SysExc.SYSESR.Addr()] |= uint32(cause)

	if m.stcArmed {
		m.stcArmed = false
		m.regs[c.STC.STCGCR1.Addr()] = 0x5
		selfCheck := c.STC.SelfCheckActive()
		// A self-check run fails on purpose unless the compare logic is
		// broken.
		failed := m.Faults.STC != selfCheck
		status := uint32(0x1)
		if failed {
			status |= 0x2
			m.regs[c.STC.STCFSTAT.Addr()] = 0x1
		}
		m.regs[c.STC.STCGSTAT.Addr()] = status
	}
	m.CPU.masked = true
}

// Describe formats a result for display.
func (r Result) Describe() string {
	s := fmt.Sprintf("%s after %d reset(s), cause %s", r.Outcome, r.Resets, r.Cause)
	if r.Err != nil {
		s += fmt.Sprintf(": %v", r.Err)
	}
	return s
}
