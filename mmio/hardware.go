package mmio

import (
	"unsafe"

	"omibyte.io/hercules/volatile"
)

// Hardware is the bus of the running device. Addresses are taken as the
// physical addresses of the memory map; use it only on the target.
var Hardware Bus = hardware{}

type hardware struct{}

//go:nosplit
func (hardware) Load(addr uintptr) uint32 {
	return volatile.LoadUint32((*uint32)(unsafe.Pointer(addr)))
}

//go:nosplit
func (hardware) Store(addr uintptr, value uint32) {
	volatile.StoreUint32((*uint32)(unsafe.Pointer(addr)), value)
}
