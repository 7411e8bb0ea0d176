// Package volatile provides ordered loads and stores of memory-mapped words.
//
// Every access is a single, non-elided 32-bit operation that the compiler can
// neither merge nor reorder with respect to other accesses in this package.
package volatile

import "sync/atomic"

//go:nosplit
func LoadUint32(addr *uint32) (val uint32) {
	return atomic.LoadUint32(addr)
}

//go:nosplit
func StoreUint32(addr *uint32, val uint32) {
	atomic.StoreUint32(addr, val)
}
