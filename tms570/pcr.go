package tms570

import "omibyte.io/hercules/mmio"

// PCR is the peripheral central resource controller. It gates the power
// and clocks of the peripheral frames.
type PCR struct {
	mmio.NoCopy

	PSPWRDWNSET [4]mmio.Register // peripheral select power down set
	PSPWRDWNCLR [4]mmio.Register // peripheral select power down clear
}

func newPCR(bus mmio.Bus, base uintptr) *PCR {
	blk := mmio.NewBlock(bus, base)
	pcr := &PCR{}
	blk.Array(0x80, pcr.PSPWRDWNSET[:])
	blk.Array(0xA0, pcr.PSPWRDWNCLR[:])
	return pcr
}

// EnableAll powers up every peripheral frame.
func (p *PCR) EnableAll() {
	for _, reg := range p.PSPWRDWNCLR {
		reg.Set(0xFFFFFFFF)
	}
}

// Disable powers down the peripheral select given by its frame number.
func (p *PCR) Disable(ps int) {
	p.PSPWRDWNSET[ps/32].Set(1 << uint(ps%32))
}

// Enable powers up the peripheral select given by its frame number.
func (p *PCR) Enable(ps int) {
	p.PSPWRDWNCLR[ps/32].Set(1 << uint(ps%32))
}
