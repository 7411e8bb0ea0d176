package tms570

import "omibyte.io/hercules/mmio"

const (
	VIMChannels = 128

	vimParityEnable  = 0xA
	vimParityDisable = 0x5
	vimParityTest    = 1 << 8
	vimParityFlag    = 0x1

	// Channels 0 and 1 are the ESM high level interrupt and the reserved
	// phantom slot; they cannot be remapped.
	vimFirstUserChannel = 2
)

// VIM is the vectored interrupt manager with its vector RAM and the parity
// RAM protecting it.
type VIM struct {
	mmio.NoCopy

	PARFLG     mmio.Register // parity error flag
	PARCTL     mmio.Register // parity control
	ADDERR     mmio.Register // address of the parity error
	FBPARERR   mmio.Register // fallback handler address
	IRQINDEX   mmio.Register
	FIQINDEX   mmio.Register
	FIRQPR     [4]mmio.Register // FIQ/IRQ program control
	INTREQ     [4]mmio.Register // pending interrupts
	REQENASET  [4]mmio.Register
	REQENACLR  [4]mmio.Register
	WAKEENASET [4]mmio.Register
	WAKEENACLR [4]mmio.Register
	IRQVECREG  mmio.Register
	FIQVECREG  mmio.Register
	CAPEVT     mmio.Register
	CHANCTRL   [32]mmio.Register

	ram    mmio.Block
	parity mmio.Block
}

func newVIM(bus mmio.Bus, parityBase, base, ram, parityRAM uintptr) *VIM {
	par := mmio.NewBlock(bus, parityBase)
	blk := mmio.NewBlock(bus, base)
	vim := &VIM{
		PARFLG:    par.Reg(0x00),
		PARCTL:    par.Reg(0x04),
		ADDERR:    par.Reg(0x08),
		FBPARERR:  par.Reg(0x0C),
		IRQINDEX:  blk.Reg(0x00),
		FIQINDEX:  blk.Reg(0x04),
		IRQVECREG: blk.Reg(0x70),
		FIQVECREG: blk.Reg(0x74),
		CAPEVT:    blk.Reg(0x78),
		ram:       mmio.NewBlock(bus, ram),
		parity:    mmio.NewBlock(bus, parityRAM),
	}
	blk.Array(0x10, vim.FIRQPR[:])
	blk.Array(0x20, vim.INTREQ[:])
	blk.Array(0x30, vim.REQENASET[:])
	blk.Array(0x40, vim.REQENACLR[:])
	blk.Array(0x50, vim.WAKEENASET[:])
	blk.Array(0x60, vim.WAKEENACLR[:])
	blk.Array(0x80, vim.CHANCTRL[:])
	return vim
}

// IRQIndex returns the pending IRQ channel plus one, zero for none.
//
//go:nosplit
func (v *VIM) IRQIndex() uint32 {
	return v.IRQINDEX.Get() & 0xFF
}

// FIQIndex returns the pending FIQ channel plus one, zero for none.
//
//go:nosplit
func (v *VIM) FIQIndex() uint32 {
	return v.FIQINDEX.Get() & 0xFF
}

// Vector returns the vector RAM entry of a channel. Entry 0 is the phantom
// interrupt handler.
func (v *VIM) Vector(entry int) mmio.Register {
	return v.ram.Reg(uintptr(entry) * 4)
}

// SetISR installs the handler address of a channel. The ESM and reserved
// channels are rejected.
func (v *VIM) SetISR(ch int, handler uint32) error {
	if ch < vimFirstUserChannel || ch >= VIMChannels {
		return ErrChannel
	}
	// The vector RAM is offset by one entry for the phantom handler.
	v.Vector(ch + 1).Set(handler)
	return nil
}

//go:nosplit
func request(ch int) (int, uint32) {
	return ch / 32, 1 << uint(ch%32)
}

// SetFIQ routes a channel to FIQ (true) or IRQ (false).
func (v *VIM) SetFIQ(ch int, fiq bool) {
	i, mask := request(ch)
	if fiq {
		v.FIRQPR[i].SetBits(mask)
	} else {
		v.FIRQPR[i].ClearBits(mask)
	}
}

// InterruptEnable enables or disables a channel request.
//
//go:nosplit
func (v *VIM) InterruptEnable(ch int, enable bool) {
	i, mask := request(ch)
	if enable {
		v.REQENASET[i].Set(mask)
	} else {
		v.REQENACLR[i].Set(mask)
	}
}

// ClearESMInterrupt clears the pending ESM high level request.
//
//go:nosplit
func (v *VIM) ClearESMInterrupt() {
	v.INTREQ[0].Set(1)
}

// ParityEnable turns parity checking of the vector RAM on or off.
func (v *VIM) ParityEnable(enable bool) {
	if enable {
		v.PARCTL.Set(vimParityEnable)
	} else {
		v.PARCTL.Set(vimParityDisable)
	}
}

// ParityError reports a latched parity error and the faulting address.
func (v *VIM) ParityError() (bool, uint32) {
	return v.PARFLG.Get()&vimParityFlag != 0, v.ADDERR.Get()
}

//go:nosplit
func (v *VIM) ParityFlagClear() {
	v.PARFLG.Set(vimParityFlag)
}

// SetFallbackHandler sets the handler used in place of a corrupted vector.
func (v *VIM) SetFallbackHandler(addr uint32) {
	v.FBPARERR.Set(addr)
}

// SetPhantomHandler installs the handler of vector 0, which serves requests
// that went away before they were dispatched.
func (v *VIM) SetPhantomHandler(addr uint32) {
	v.Vector(0).Set(addr)
}

// ServiceParityError is the work of the fallback handler without a
// reference table. It clears the parity flag and releases the request that
// hit the corrupted vector: the ESM request is acknowledged together with
// its error, any other channel is disabled and enabled again. It returns the
// channel, or -1 when no request was pending.
//
//go:nosplit
func (v *VIM) ServiceParityError(esm *ESM) int {
	v.ParityFlagClear()

	index := v.FIQIndex()
	if index == 0 {
		index = v.IRQIndex()
	}
	if index == 0 {
		return -1
	}

	ch := int(index - 1)
	if ch == 0 {
		// The ESM request cannot be disabled
		v.ClearESMInterrupt()
		if i, ok := esm.HighLevelInterrupt(); ok {
			if c, ok := ChannelFromIndex(uint8(i)); ok {
				esm.ClearError(c)
			}
		}
		return ch
	}
	v.InterruptEnable(ch, false)
	v.InterruptEnable(ch, true)
	return ch
}

// ParityCheck flips a parity bit of the phantom vector, reads the vector
// back and reports whether the error reached the ESM. The parity bit and
// every flag are restored in both cases.
func (v *VIM) ParityCheck(esm *ESM) bool {
	ctl := v.PARCTL.Get()

	// Parity test mode makes the parity RAM writable
	v.PARCTL.Set(vimParityEnable | vimParityTest)
	bit := v.parity.Reg(0)
	bit.Set(bit.Get() ^ 1)
	v.PARCTL.Set(vimParityEnable)

	_ = v.Vector(0).Get()

	detected := esm.ErrorIsSet(VIMParity)

	v.PARCTL.Set(vimParityEnable | vimParityTest)
	bit.Set(bit.Get() ^ 1)
	v.PARCTL.Set(ctl)

	v.ParityFlagClear()
	esm.ClearError(VIMParity)

	return detected
}

// ParityFallback repairs the vector that failed its parity check from the
// reference table and clears the error. It returns the repaired entry, or
// -1 when the faulting address is outside of the table.
func (v *VIM) ParityFallback(esm *ESM, vectors []uint32) int {
	addr := uintptr(v.ADDERR.Get())
	entry := -1
	if addr >= v.ram.Base() {
		if i := int((addr - v.ram.Base()) / 4); i < len(vectors) {
			v.Vector(i).Set(vectors[i])
			entry = i
		}
	}
	v.ParityFlagClear()
	esm.ClearError(VIMParity)
	return entry
}
