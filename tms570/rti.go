package tms570

import (
	"fmt"

	"omibyte.io/hercules/mmio"
)

// Violation is the digital watchdog status.
type Violation uint32

const (
	NoTimeViolation          Violation = 0x00
	KeySeqViolation          Violation = 0x04
	StartTimeWindowViolation Violation = 0x08
	EndTimeWindowViolation   Violation = 0x10
	TimeWindowViolation      Violation = 0x20
)

func (v Violation) String() string {
	switch v {
	case NoTimeViolation:
		return "none"
	case KeySeqViolation:
		return "key sequence"
	case StartTimeWindowViolation:
		return "start time window"
	case EndTimeWindowViolation:
		return "end time window"
	case TimeWindowViolation:
		return "time window"
	}
	return fmt.Sprintf("violation(%#x)", uint32(v))
}

// Reaction is what the windowed watchdog does on a violation.
type Reaction uint32

const (
	ReactionReset Reaction = 0x5
	ReactionNMI   Reaction = 0xA
)

// Window is the size of the open service window relative to the expiration
// time.
type Window uint32

const (
	Window100   Window = 0x00000005
	Window50    Window = 0x00000050
	Window25    Window = 0x00000500
	Window12_5  Window = 0x00005000
	Window6_25  Window = 0x00050000
	Window3_125 Window = 0x00500000
)

const (
	// RTICLK1 is the watchdog clock in MHz.
	RTICLK1 = 80

	// MaxPreload is the largest value the 12 bit preload field takes.
	MaxPreload = 4095

	dwdEnable        = 0xA98559DA
	dwdStatusClear   = 0xFF
	wdKeyFirst       = 0xE51A
	wdKeyService     = 0xA35C
	wdKeySystemReset = 0x2345
)

// Watchdog is the digital windowed watchdog of the real-time interrupt
// module. Once enabled it can only be stopped by a system reset.
type Watchdog struct {
	mmio.NoCopy

	DWDCTRL     mmio.Register // enable
	DWDPRLD     mmio.Register // preload
	WDSTATUS    mmio.Register
	WDKEY       mmio.Register
	DWDCNTR     mmio.Register // down counter
	WWDRXNCTRL  mmio.Register // violation reaction
	WWDSIZECTRL mmio.Register // window size

	clk uint32
}

func newWatchdog(bus mmio.Bus, base uintptr) *Watchdog {
	blk := mmio.NewBlock(bus, base)
	return &Watchdog{
		DWDCTRL:     blk.Reg(0x90),
		DWDPRLD:     blk.Reg(0x94),
		WDSTATUS:    blk.Reg(0x98),
		WDKEY:       blk.Reg(0x9C),
		DWDCNTR:     blk.Reg(0xA0),
		WWDRXNCTRL:  blk.Reg(0xA4),
		WWDSIZECTRL: blk.Reg(0xA8),
		clk:         RTICLK1,
	}
}

// ComputePreload converts an expiration time in microseconds at a watchdog
// clock of clkMHz into the preload value, preload = expire*clk/2^13 - 1.
func ComputePreload(expire uint32, clkMHz uint32) (uint32, error) {
	if clkMHz == 0 {
		return 0, ErrClock
	}
	cycles := uint64(expire) * uint64(clkMHz) >> 13
	if cycles == 0 || cycles-1 >= MaxPreload {
		return 0, &PreloadError{Expire: expire, Preload: int64(cycles) - 1}
	}
	return uint32(cycles - 1), nil
}

// ExpireTime converts a preload value back into the expiration time in
// microseconds. It accepts the preload values ComputePreload produces.
func ExpireTime(preload uint32, clkMHz uint32) (uint32, error) {
	if clkMHz == 0 {
		return 0, ErrClock
	}
	if preload >= MaxPreload {
		return 0, fmt.Errorf("%w: preload %d, want 0..%d", ErrPreloadRange, preload, MaxPreload-1)
	}
	return uint32((uint64(preload) + 1) << 13 / uint64(clkMHz)), nil
}

// Expire programs the expiration time in microseconds. Nothing is written
// when the time does not fit the preload register.
func (w *Watchdog) Expire(expire uint32) error {
	preload, err := ComputePreload(expire, w.clk)
	if err != nil {
		return err
	}
	w.DWDPRLD.Set(preload)
	return nil
}

// Start arms the watchdog: the status is cleared, the expiration time
// programmed and the counter enabled, in that order. The watchdog is left
// disabled when the expiration time is out of range.
func (w *Watchdog) Start(expire uint32) error {
	w.StatusClear()
	if err := w.Expire(expire); err != nil {
		return err
	}
	w.CounterEnable()
	return nil
}

// CounterEnable enables the down counter. There is no way back.
func (w *Watchdog) CounterEnable() {
	w.DWDCTRL.Set(dwdEnable)
}

// Enabled reports whether the counter has been enabled.
func (w *Watchdog) Enabled() bool {
	return w.DWDCTRL.Get() == dwdEnable
}

// Reset services the watchdog and reloads the counter.
func (w *Watchdog) Reset() {
	w.WDKEY.Set(wdKeyFirst)
	w.WDKEY.Set(wdKeyService)
}

// SysReset requests an immediate system reset through the watchdog.
func (w *Watchdog) SysReset() {
	w.WDKEY.Set(wdKeyFirst)
	w.WDKEY.Set(wdKeySystemReset)
}

// Status returns the latched violation.
func (w *Watchdog) Status() Violation {
	return Violation(w.WDSTATUS.Get() & 0xFF)
}

// TimeViolation reports whether the last watchdog reset was caused by a
// missed service window rather than a key sequence error.
func (w *Watchdog) TimeViolation() bool {
	status := w.Status()
	return status != KeySeqViolation && status != NoTimeViolation
}

func (w *Watchdog) StatusClear() {
	w.WDSTATUS.Set(dwdStatusClear)
}

// CountDown returns the current counter value.
func (w *Watchdog) CountDown() uint32 {
	return w.DWDCNTR.Get()
}

// SetReaction selects reset or non-maskable interrupt on violation.
func (w *Watchdog) SetReaction(r Reaction) {
	w.WWDRXNCTRL.Set(uint32(r))
}

// SetWindow selects the size of the service window.
func (w *Watchdog) SetWindow(size Window) {
	w.WWDSIZECTRL.Set(uint32(size))
}
