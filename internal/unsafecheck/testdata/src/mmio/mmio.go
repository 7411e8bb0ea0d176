package mmio

import "unsafe"

func Load(addr uintptr) uint32 {
	return *(*uint32)(unsafe.Pointer(addr))
}
