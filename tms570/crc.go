package tms570

import "omibyte.io/hercules/mmio"

// CRCMode is the operating mode of an MCRC channel.
type CRCMode uint32

const (
	CRCDataCapture CRCMode = 0x0
	CRCAuto        CRCMode = 0x1
	CRCSemiCPU     CRCMode = 0x2
	CRCFullCPU     CRCMode = 0x3
)

// CRCInterrupt selects MCRC channel notifications.
type CRCInterrupt uint32

const (
	CRCCompressionComplete CRCInterrupt = 1 << 0
	CRCFail                CRCInterrupt = 1 << 1
	CRCOverrun             CRCInterrupt = 1 << 2
	CRCUnderrun            CRCInterrupt = 1 << 3
	CRCTimeout             CRCInterrupt = 1 << 4
)

// psaPolynomial is x^64 + x^4 + x^3 + x + 1.
const psaPolynomial = 0x000000000000001B

const crcChannels = 2

// CRCChannelRegs are the per channel registers of the MCRC.
type CRCChannelRegs struct {
	PCOUNT   mmio.Register // pattern counter preload
	SCOUNT   mmio.Register // sector counter preload
	CURSEC   mmio.Register // current sector
	WDTOPLD  mmio.Register // watchdog timeout preload
	BCTOPLD  mmio.Register // block complete timeout preload
	PSASIGL  mmio.Register // PSA signature, low word
	PSASIGH  mmio.Register // PSA signature, high word
	REGL     mmio.Register // reference signature, low word
	REGH     mmio.Register // reference signature, high word
	SECSIGL  mmio.Register // sector signature, low word
	SECSIGH  mmio.Register
	RAWDATAL mmio.Register
	RAWDATAH mmio.Register
}

// CRC is the cyclic redundancy check controller. It compresses data with a
// 64 bit parallel signature analysis register.
type CRC struct {
	mmio.NoCopy

	CTRL0  mmio.Register // channel PSA reset
	CTRL1  mmio.Register // power down
	CTRL2  mmio.Register // mode, data trace
	INTS   mmio.Register // interrupt enable set
	INTR   mmio.Register // interrupt enable reset
	STATUS mmio.Register
	OFFSET mmio.Register
	BUSY   mmio.Register
	Ch     [crcChannels]CRCChannelRegs
}

func newCRC(bus mmio.Bus, base uintptr) *CRC {
	blk := mmio.NewBlock(bus, base)
	crc := &CRC{
		CTRL0:  blk.Reg(0x00),
		CTRL1:  blk.Reg(0x08),
		CTRL2:  blk.Reg(0x10),
		INTS:   blk.Reg(0x18),
		INTR:   blk.Reg(0x20),
		STATUS: blk.Reg(0x28),
		OFFSET: blk.Reg(0x30),
		BUSY:   blk.Reg(0x38),
	}
	for i := range crc.Ch {
		off := uintptr(i) * 0x40
		crc.Ch[i] = CRCChannelRegs{
			PCOUNT:   blk.Reg(0x40 + off),
			SCOUNT:   blk.Reg(0x44 + off),
			CURSEC:   blk.Reg(0x48 + off),
			WDTOPLD:  blk.Reg(0x4C + off),
			BCTOPLD:  blk.Reg(0x50 + off),
			PSASIGL:  blk.Reg(0x60 + off),
			PSASIGH:  blk.Reg(0x64 + off),
			REGL:     blk.Reg(0x68 + off),
			REGH:     blk.Reg(0x6C + off),
			SECSIGL:  blk.Reg(0x70 + off),
			SECSIGH:  blk.Reg(0x74 + off),
			RAWDATAL: blk.Reg(0x78 + off),
			RAWDATAH: blk.Reg(0x7C + off),
		}
	}
	return crc
}

// CRCConfig configures one channel.
type CRCConfig struct {
	Channel         int
	Mode            CRCMode
	PatternCount    uint32
	SectorCount     uint32
	WatchdogPreload uint32
	BlockPreload    uint32
}

func chanShift(ch int) uint {
	return uint(ch) * 8
}

// ChannelReset resets the PSA signature of the channel to zero.
func (c *CRC) ChannelReset(ch int) {
	bit := uint32(1) << chanShift(ch)
	c.CTRL0.SetBits(bit)
	c.CTRL0.ClearBits(bit)
}

func (c *CRC) PowerDown(down bool) {
	if down {
		c.CTRL1.SetBits(1)
	} else {
		c.CTRL1.ClearBits(1)
	}
}

// Configure programs the counters of a channel and selects its mode.
func (c *CRC) Configure(cfg CRCConfig) {
	regs := c.Ch[cfg.Channel]
	regs.PCOUNT.Set(cfg.PatternCount)
	regs.SCOUNT.Set(cfg.SectorCount)
	regs.WDTOPLD.Set(cfg.WatchdogPreload)
	regs.BCTOPLD.Set(cfg.BlockPreload)
	c.SetMode(cfg.Channel, cfg.Mode)
}

func (c *CRC) SetMode(ch int, mode CRCMode) {
	shift := chanShift(ch)
	c.CTRL2.Modify(func(v uint32) uint32 {
		return v&^(0x3<<shift) | uint32(mode)<<shift
	})
}

// DataTrace enables or disables data trace mode on both channels.
func (c *CRC) DataTrace(enable bool) {
	if enable {
		c.CTRL2.SetBits(1 << 4)
	} else {
		c.CTRL2.ClearBits(1 << 4)
	}
}

func (c *CRC) Busy(ch int) bool {
	return c.BUSY.Get()&(1<<chanShift(ch)) != 0
}

// EnableNotification enables the given interrupts of a channel.
func (c *CRC) EnableNotification(ch int, flags CRCInterrupt) {
	c.INTS.Set(uint32(flags) << chanShift(ch))
}

func (c *CRC) DisableNotification(ch int, flags CRCInterrupt) {
	c.INTR.Set(uint32(flags) << chanShift(ch))
}

// Status returns the pending notifications of a channel.
func (c *CRC) Status(ch int) CRCInterrupt {
	return CRCInterrupt(c.STATUS.Get()>>chanShift(ch)) & 0x1F
}

// ClearStatus clears notifications of a channel.
func (c *CRC) ClearStatus(ch int, flags CRCInterrupt) {
	c.STATUS.Set(uint32(flags) << chanShift(ch))
}

// Compress feeds data to the PSA register of a channel in full CPU mode.
// The low word is written first, writing the high word compresses the
// 64 bit value.
func (c *CRC) Compress(ch int, data []uint64) {
	regs := c.Ch[ch]
	for _, d := range data {
		regs.PSASIGL.Set(uint32(d))
		regs.PSASIGH.Set(uint32(d >> 32))
	}
}

// Signature reads the PSA signature of a channel.
func (c *CRC) Signature(ch int) uint64 {
	regs := c.Ch[ch]
	return uint64(regs.PSASIGH.Get())<<32 | uint64(regs.PSASIGL.Get())
}

// SetReference programs the reference signature compared in auto and semi
// CPU modes.
func (c *CRC) SetReference(ch int, sig uint64) {
	regs := c.Ch[ch]
	regs.REGL.Set(uint32(sig))
	regs.REGH.Set(uint32(sig >> 32))
}

// PSA compresses one 64 bit word into a signature the way the MCRC does.
func PSA(sig, data uint64) uint64 {
	next := sig << 1
	if sig&(1<<63) != 0 {
		next ^= psaPolynomial
	}
	return next ^ data
}

// PSASignature is the signature of data compressed from a zero signature.
func PSASignature(data []uint64) uint64 {
	var sig uint64
	for _, d := range data {
		sig = PSA(sig, d)
	}
	return sig
}
