package mmio

// The waits below spin on a register without any bound. They are
// hardware-blocking: the condition is guaranteed by the silicon, and the only
// way out when it is not met is a watchdog reset. Callers must not use them
// for conditions that can legitimately stay false.

// WaitSet spins until every bit of mask reads back set.
func WaitSet(r Register, mask uint32) {
	for r.Get()&mask != mask {
	}
}

// WaitClear spins until every bit of mask reads back clear.
func WaitClear(r Register, mask uint32) {
	for r.Get()&mask != 0 {
	}
}

// WaitAny spins until at least one bit of mask reads back set.
func WaitAny(r Register, mask uint32) {
	for r.Get()&mask == 0 {
	}
}

// WaitEqual spins until the register reads value.
func WaitEqual(r Register, value uint32) {
	for r.Get() != value {
	}
}

// WaitUntil spins until cond returns true.
func WaitUntil(cond func() bool) {
	for !cond() {
	}
}
