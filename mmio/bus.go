// Package mmio is the register access primitive used by every peripheral
// handle in this module.
//
// A Bus performs the actual 32-bit accesses. Register binds a bus to a fixed
// address and offers the read, write and read-modify-write operations the
// drivers are written against. The hardware bus is the only place in the
// module that turns an integer address into a pointer.
package mmio

// Bus performs ordered 32-bit accesses at absolute addresses.
type Bus interface {
	Load(addr uintptr) uint32
	Store(addr uintptr, value uint32)
}

// Register is a 32-bit register at a fixed address on a bus.
type Register struct {
	bus  Bus
	addr uintptr
}

func NewRegister(bus Bus, addr uintptr) Register {
	return Register{bus: bus, addr: addr}
}

func (r Register) Addr() uintptr {
	return r.addr
}

//go:nosplit
func (r Register) Get() uint32 {
	return r.bus.Load(r.addr)
}

//go:nosplit
func (r Register) Set(value uint32) {
	r.bus.Store(r.addr, value)
}

// Modify performs a read-modify-write of the register. The operation is not
// atomic with respect to interrupts; wrap it in a critical section when an
// interrupt handler writes the same register.
func (r Register) Modify(fn func(value uint32) uint32) {
	r.Set(fn(r.Get()))
}

func (r Register) SetBits(mask uint32) {
	r.Set(r.Get() | mask)
}

func (r Register) ClearBits(mask uint32) {
	r.Set(r.Get() &^ mask)
}

// HasBits reports whether every bit of mask is set.
func (r Register) HasBits(mask uint32) bool {
	return r.Get()&mask == mask
}

// Block is a contiguous register block starting at a base address.
type Block struct {
	bus  Bus
	base uintptr
}

func NewBlock(bus Bus, base uintptr) Block {
	return Block{bus: bus, base: base}
}

func (b Block) Base() uintptr {
	return b.base
}

func (b Block) Bus() Bus {
	return b.bus
}

// Reg returns the register at offset bytes from the block base.
func (b Block) Reg(offset uintptr) Register {
	return Register{bus: b.bus, addr: b.base + offset}
}

// Array fills regs with consecutive registers starting at offset.
func (b Block) Array(offset uintptr, regs []Register) {
	for i := range regs {
		regs[i] = b.Reg(offset + uintptr(i)*4)
	}
}

// NoCopy may be embedded into a peripheral handle to have go vet report
// copies of it. Handles refer to a single hardware instance and are passed
// by pointer.
type NoCopy struct{}

func (*NoCopy) Lock()   {}
func (*NoCopy) Unlock() {}
