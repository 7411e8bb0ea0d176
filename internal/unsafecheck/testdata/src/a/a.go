package a

import "unsafe"

type Addr uintptr

const base = 0xFFFFF500

func load(addr uintptr) uint32 {
	return *(*uint32)(unsafe.Pointer(addr)) // want `conversion of uintptr to unsafe.Pointer outside the register bus`
}

func loadAddr(addr Addr) uint32 {
	return *(*uint32)((unsafe.Pointer)((addr))) // want `conversion of Addr to unsafe.Pointer outside the register bus`
}

func pointer(v *uint32) uintptr {
	return uintptr(unsafe.Pointer(v))
}

func same(p unsafe.Pointer) unsafe.Pointer {
	return unsafe.Pointer(p)
}

var reg = unsafe.Pointer(uintptr(base)) // want `conversion of uintptr to unsafe.Pointer outside the register bus`
