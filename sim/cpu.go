package sim

import "omibyte.io/hercules/tms570"

// Signals unwinding the simulated program on events that stop the core.
type (
	resetSignal struct{ cause tms570.Cause }
	haltSignal  struct{}
	idleSignal  struct{}
)

// CPU is the simulated processor. Operations with an effect on the core
// state are recorded in the machine trace.
type CPU struct {
	m      *Machine
	masked bool

	RAMECCEnabled   bool
	FlashECCEnabled bool
	VICEnabled      bool
	VFPEnabled      bool
}

func (c *CPU) Nop() {}

// WaitForInterrupt idles the core. An armed CPU self-test completes and
// resets the core, an idle core after the application returned stops the
// simulation.
func (c *CPU) WaitForInterrupt() {
	c.m.op("wfi")
	if c.m.stcArmed {
		panic(resetSignal{cause: tms570.CPU})
	}
	if c.m.appReturned {
		panic(idleSignal{})
	}
}

func (c *CPU) DisableInterrupts() uint32 {
	var state uint32
	if c.masked {
		state = 0xC0
	}
	c.masked = true
	return state
}

func (c *CPU) RestoreInterrupts(state uint32) {
	c.masked = state != 0
}

func (c *CPU) EnableInterrupts() {
	c.m.op("enable-interrupts")
	c.masked = false
}

func (c *CPU) InitCoreRegisters(vfp bool) {
	if vfp {
		c.m.op("init-core-registers+vfp")
	} else {
		c.m.op("init-core-registers")
	}
}

func (c *CPU) InitStackPointers() { c.m.op("init-stack-pointers") }

func (c *CPU) EventBusExport(enable bool) {
	if enable {
		c.m.op("event-bus-export")
	}
}

func (c *CPU) Errata57() { c.m.op("errata57") }
func (c *CPU) Errata66() { c.m.op("errata66") }

func (c *CPU) RAMECC(enable bool) {
	c.m.op("ram-ecc")
	c.RAMECCEnabled = enable
}

func (c *CPU) FlashECC(enable bool) {
	c.m.op("flash-ecc")
	c.FlashECCEnabled = enable
}

func (c *CPU) EnableVIC() {
	c.m.op("vic")
	c.VICEnabled = true
}

func (c *CPU) EnableVFP() {
	c.m.op("vfp")
	c.VFPEnabled = true
}

func (c *CPU) Halt() {
	c.m.op("halt")
	c.masked = true
	panic(haltSignal{})
}

// Masked reports whether interrupts are masked.
func (c *CPU) Masked() bool {
	return c.masked
}
