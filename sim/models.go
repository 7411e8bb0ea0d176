package sim

import (
	"omibyte.io/hercules/mmio"
	"omibyte.io/hercules/tms570"
)

// pllLockReads is the number of clock source status reads before a started
// PLL reports lock.
const pllLockReads = 3

const (
	pllSources      = 1<<1 | 1<<6
	oscFail         = 0x1
	supervisorTest  = 0x03000000
	memInitDone     = 0x100
	memTestDone     = 0x1
	ccmSelfTestDone = 1 << 8
	ccmSelfTestErr  = 1 << 0
)

func (m *Machine) onWrite(r mmio.Register, hook writeHook) {
	m.writes[r.Addr()] = hook
}

func (m *Machine) onRead(r mmio.Register, hook readHook) {
	m.reads[r.Addr()] = hook
}

// w1c makes a register write-1-to-clear.
func (m *Machine) w1c(r mmio.Register) {
	m.onWrite(r, func(old, value uint32) uint32 {
		return old &^ value
	})
}

// alias makes set and clr write aliases of reg and mirrors reg on reads of
// both.
func (m *Machine) alias(reg, set, clr mmio.Register, onSet func(value uint32)) {
	addr := reg.Addr()
	m.onWrite(set, func(_, value uint32) uint32 {
		m.regs[addr] |= value
		if onSet != nil {
			onSet(value)
		}
		return m.regs[addr]
	})
	m.onWrite(clr, func(_, value uint32) uint32 {
		m.regs[addr] &^= value
		return m.regs[addr]
	})
	mirror := func(uint32) uint32 { return m.regs[addr] }
	m.onRead(set, mirror)
	m.onRead(clr, mirror)
}

func (m *Machine) install() {
	m.installESM()
	m.installSys()
	m.installSelfTest()
	m.installWatchdog()
	m.installMemories()
	m.installCRC()
}

func (m *Machine) installESM() {
	esm := m.Chip.ESM
	for _, r := range esm.SR1 {
		m.w1c(r)
	}
	for _, r := range esm.SR4 {
		m.w1c(r)
	}
	m.w1c(esm.SSR2)
	m.onWrite(esm.EKR, func(_, value uint32) uint32 {
		if value == 0x5 {
			// Error pin released
			m.regs[esm.EPSR.Addr()] = 1
		}
		return value
	})
	m.w1c(m.Chip.SysExc.SYSESR)
}

func (m *Machine) installSys() {
	sys := m.Chip.Sys

	m.alias(sys.CSDIS, sys.CSDISSET, sys.CSDISCLR, func(value uint32) {
		if value&oscFail != 0 && m.regs[sys.CLKTEST.Addr()]&supervisorTest == supervisorTest {
			m.regs[sys.GBLSTAT.Addr()] |= oscFail
			if !m.Faults.ClockSupervisor {
				m.Raise(tms570.OscFail)
			}
		}
	})
	m.onWrite(sys.CSDISCLR, func(_, value uint32) uint32 {
		addr := sys.CSDIS.Addr()
		if value&pllSources != 0 {
			m.pllPending = pllLockReads
		}
		m.regs[addr] &^= value
		return m.regs[addr]
	})
	m.alias(sys.CDDIS, sys.CDDISSET, sys.CDDISCLR, nil)

	// Every enabled source is valid, a started PLL after a few reads.
	m.onRead(sys.CSVSTAT, func(uint32) uint32 {
		valid := ^m.regs[sys.CSDIS.Addr()] & 0xFF
		if m.pllPending > 0 {
			m.pllPending--
			valid &^= pllSources
		}
		return valid
	})

	m.w1c(sys.GBLSTAT)
	m.w1c(sys.MSTCGSTAT)
	m.onWrite(sys.MSINENA, func(_, value uint32) uint32 {
		if m.regs[sys.MINITGCR.Addr()] == 0xA {
			m.regs[sys.MINISTAT.Addr()] |= value
			m.regs[sys.MSTCGSTAT.Addr()] |= memInitDone
		}
		return value
	})
}

func (m *Machine) installSelfTest() {
	c := m.Chip

	// PBIST run completes as soon as it is started
	m.onWrite(c.PBIST.DLR, func(_, value uint32) uint32 {
		if value == 0x14 {
			failed := tms570.Memory(m.regs[c.PBIST.RINFOL.Addr()])&m.Faults.PBIST != 0
			if failed {
				m.regs[c.PBIST.FSRF0.Addr()] = 1
				m.regs[c.PBIST.FSRC0.Addr()] = 1
				m.regs[c.PBIST.FSRA0.Addr()] = 0x40
				m.regs[c.PBIST.FSRDL0.Addr()] = 0xAAAAAAAA
			} else {
				m.regs[c.PBIST.FSRF0.Addr()] = 0
			}
			m.regs[c.Sys.MSTCGSTAT.Addr()] |= memTestDone
		}
		return value
	})

	m.onWrite(c.CCM.CCMKEYR, func(_, value uint32) uint32 {
		switch tms570.CCMMode(value) {
		case tms570.CCMSelfTest:
			status := uint32(ccmSelfTestDone)
			if m.Faults.CCMSelfTest {
				status |= ccmSelfTestErr
			}
			m.regs[c.CCM.CCMSR.Addr()] |= status
			return uint32(tms570.CCMLockstep)
		case tms570.CCMErrorForcing:
			if !m.Faults.CCMErrorForcing {
				m.Raise(tms570.CCMR4Lockstep)
			}
			return uint32(tms570.CCMLockstep)
		case tms570.CCMSelfTestErrorForcing:
			m.Raise(tms570.CCMR4SelfTest)
			return uint32(tms570.CCMLockstep)
		}
		return value
	})

	m.onWrite(c.STC.STCGCR1, func(_, value uint32) uint32 {
		m.stcArmed = value&0xF == 0xA
		return value
	})
	m.w1c(c.STC.STCGSTAT)
	m.w1c(c.STC.STCFSTAT)

	// Writing the signature starts the eFuse controller self-test
	m.onWrite(c.EFuse.STSIGN, func(_, value uint32) uint32 {
		var pins uint32
		if !m.Faults.EFuseIncomplete {
			pins |= 1 << 15
		}
		if m.Faults.EFuseSelfTest {
			pins |= 1 << 14
			m.regs[c.EFuse.ERRSTAT.Addr()] = 0x15
			m.Raise(tms570.EFuseSelfTestError)
		}
		m.regs[c.EFuse.PINS.Addr()] = pins
		return value
	})
}

func (m *Machine) installWatchdog() {
	dwd := m.Chip.DWD
	m.w1c(dwd.WDSTATUS)
	m.onWrite(dwd.WDKEY, func(_, value uint32) uint32 {
		prev := m.wdKey
		m.wdKey = value
		if prev != 0xE51A {
			return value
		}
		switch value {
		case 0xA35C:
			m.regs[dwd.DWDCNTR.Addr()] = m.regs[dwd.DWDPRLD.Addr()] << 13
		case 0x2345:
			panic(resetSignal{cause: tms570.WdIcePick})
		}
		return value
	})
	m.onWrite(dwd.DWDCTRL, func(_, value uint32) uint32 {
		if value == 0xA98559DA {
			m.regs[dwd.DWDCNTR.Addr()] = m.regs[dwd.DWDPRLD.Addr()] << 13
		}
		return value
	})
}

func (m *Machine) installMemories() {
	c := m.Chip
	m.w1c(c.TCRAM1.RAMERRSTATUS)
	m.w1c(c.TCRAM2.RAMERRSTATUS)
	m.w1c(c.Flash.FEDACSTATUS)
	m.w1c(c.VIM.PARFLG)

	// A vector read checks the parity bit of its entry
	for i := 0; i <= tms570.VIMChannels; i++ {
		entry := c.VIM.Vector(i)
		parity := tms570.VIMParityRAM + uintptr(i)*4
		m.onRead(entry, func(value uint32) uint32 {
			if m.regs[c.VIM.PARCTL.Addr()]&0xF == 0xA && m.regs[parity]&1 != 0 {
				m.regs[c.VIM.PARFLG.Addr()] = 1
				m.regs[c.VIM.ADDERR.Addr()] = uint32(entry.Addr())
				if !m.Faults.VIMParity {
					m.Raise(tms570.VIMParity)
				}
			}
			return value
		})
		// Writing an entry recomputes its parity
		m.onWrite(entry, func(_, value uint32) uint32 {
			m.regs[parity] &^= 1
			return value
		})
	}
}

func (m *Machine) installCRC() {
	crc := m.Chip.CRC
	for i := range crc.Ch {
		ch := i
		regs := crc.Ch[ch]
		m.onWrite(regs.PSASIGL, func(_, value uint32) uint32 {
			m.psaLow[ch] = value
			return uint32(m.psa[ch])
		})
		m.onWrite(regs.PSASIGH, func(_, value uint32) uint32 {
			m.psa[ch] = tms570.PSA(m.psa[ch], uint64(value)<<32|uint64(m.psaLow[ch]))
			m.regs[regs.PSASIGL.Addr()] = uint32(m.psa[ch])
			return uint32(m.psa[ch] >> 32)
		})
	}
	m.onWrite(crc.CTRL0, func(_, value uint32) uint32 {
		for ch := range crc.Ch {
			if value&(1<<(uint(ch)*8)) != 0 {
				m.psa[ch] = 0
				m.regs[crc.Ch[ch].PSASIGL.Addr()] = 0
				m.regs[crc.Ch[ch].PSASIGH.Addr()] = 0
			}
		}
		return value
	})
}
