package tms570_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"omibyte.io/hercules/arch/cortexr4"
	"omibyte.io/hercules/sim"
	"omibyte.io/hercules/tms570"
)

func TestClearErrorIdempotent(t *testing.T) {
	for _, ch := range []tms570.Channel{
		tms570.OscFail,
		tms570.CCMR4SelfTest,
		tms570.DCC2,
		tms570.CCMR4Lockstep,
		tms570.EFuseAutoload,
	} {
		t.Run(ch.String(), func(t *testing.T) {
			m := sim.New()
			esm := m.Chip.ESM
			loc := ch.StatusLocation()
			reg := esm.SR1[loc.Index]
			if loc.Bank == tms570.BankSR4 {
				reg = esm.SR4[loc.Index]
			}

			// A neighbouring error must survive
			other := tms570.Channel{Group: ch.Group, Number: ch.Number ^ 1}
			m.Raise(other)
			before := m.Peek(reg.Addr())

			esm.ClearError(ch)
			require.Equal(t, before, m.Peek(reg.Addr()))
			esm.ClearError(ch)
			require.Equal(t, before, m.Peek(reg.Addr()))
			require.False(t, esm.ErrorIsSet(ch))

			m.Raise(ch)
			require.True(t, esm.ErrorIsSet(ch))
			esm.ClearError(ch)
			esm.ClearError(ch)
			require.False(t, esm.ErrorIsSet(ch))
			require.Equal(t, before, m.Peek(reg.Addr()))

			// Only the channel bit is ever written
			for _, v := range m.WritesTo(reg.Addr()) {
				require.Equal(t, uint32(1)<<loc.Bit, v)
			}
		})
	}
}

func TestClearErrorGroup4(t *testing.T) {
	m := sim.New()
	ch := tms570.Channel{Group: tms570.Group4, Number: 3}
	m.Raise(ch)
	require.False(t, m.Chip.ESM.ErrorIsSet(ch))

	m.ClearTrace()
	m.Chip.ESM.ClearError(ch)
	require.Empty(t, m.Trace())
}

func TestESMInterruptRouting(t *testing.T) {
	tests := []struct {
		ch   tms570.Channel
		reg  func(*tms570.ESM) uintptr
		mask uint32
	}{
		{tms570.DCC1, func(e *tms570.ESM) uintptr { return e.IESR1.Addr() }, 1 << 30},
		{tms570.CCMR4SelfTest, func(e *tms570.ESM) uintptr { return e.IESR1.Addr() }, 1 << 31},
		{tms570.FMCUncorrectableECCBus, func(e *tms570.ESM) uintptr { return e.IESR4.Addr() }, 1 << 4},
		{tms570.DCC2, func(e *tms570.ESM) uintptr { return e.IESR4.Addr() }, 1 << 30},
	}
	for _, tt := range tests {
		t.Run(tt.ch.String(), func(t *testing.T) {
			m := sim.New()
			m.Chip.ESM.EnableInterrupt(tt.ch)
			require.Equal(t, []uint32{tt.mask}, m.WritesTo(tt.reg(m.Chip.ESM)))
		})
	}

	// Only group 1 is routable
	m := sim.New()
	m.ClearTrace()
	m.Chip.ESM.EnableInterrupt(tms570.CCMR4Lockstep)
	require.Empty(t, m.Trace())
}

func TestSetInterruptLevel(t *testing.T) {
	tests := []struct {
		ch   tms570.Channel
		high bool
		reg  func(*tms570.ESM) uintptr
		mask uint32
	}{
		{tms570.DCC1, true, func(e *tms570.ESM) uintptr { return e.ILSR1.Addr() }, 1 << 30},
		{tms570.DCC1, false, func(e *tms570.ESM) uintptr { return e.ILCR1.Addr() }, 1 << 30},
		{tms570.FMCUncorrectableECCBus, true, func(e *tms570.ESM) uintptr { return e.ILSR4.Addr() }, 1 << 4},
		{tms570.DCC2, false, func(e *tms570.ESM) uintptr { return e.ILCR4.Addr() }, 1 << 30},
	}
	for _, tt := range tests {
		t.Run(tt.ch.String(), func(t *testing.T) {
			m := sim.New()
			m.ClearTrace()
			m.Chip.ESM.SetInterruptLevel(tt.ch, tt.high)
			require.Equal(t, []uint32{tt.mask}, m.WritesTo(tt.reg(m.Chip.ESM)))
			require.Len(t, m.Trace(), 1)
		})
	}

	m := sim.New()
	m.ClearTrace()
	m.Chip.ESM.SetInterruptLevel(tms570.CCMR4Lockstep, true)
	require.Empty(t, m.Trace())
}

func TestHighLevelInterrupt(t *testing.T) {
	m := sim.New()
	_, ok := m.Chip.ESM.HighLevelInterrupt()
	require.False(t, ok)

	m.Raise(tms570.CCMR4Lockstep)
	index, ok := m.Chip.ESM.HighLevelInterrupt()
	require.True(t, ok)
	ch, ok := tms570.ChannelFromIndex(uint8(index))
	require.True(t, ok)
	require.Equal(t, tms570.CCMR4Lockstep, ch)
	require.True(t, m.Chip.ESM.ErrorPinActive())

	m.Chip.ESM.ErrorReset()
	require.False(t, m.Chip.ESM.ErrorPinActive())
}

func TestClockSupervisorRestore(t *testing.T) {
	for _, broken := range []bool{false, true} {
		name := "detected"
		if broken {
			name = "missed"
		}
		t.Run(name, func(t *testing.T) {
			m := sim.New()
			m.Faults.ClockSupervisor = broken
			sys := m.Chip.Sys
			sys.SetupClockSource(tms570.SourcePLL1, tms570.SourcePLL1, tms570.SourcePLL1)
			ghvsrc := sys.GHVSRC.Get()
			clktest := sys.CLKTEST.Get()

			detected := sys.ClockSupervisorTest(m.Chip.ESM)
			require.Equal(t, !broken, detected)
			require.Equal(t, ghvsrc, sys.GHVSRC.Get())
			require.Equal(t, clktest, sys.CLKTEST.Get())
			require.False(t, m.Chip.ESM.ErrorIsSet(tms570.OscFail))
			require.Zero(t, sys.CSDIS.Get()&1, "oscillator left disabled")
		})
	}
}

func TestCCMSelfTest(t *testing.T) {
	tests := []struct {
		name   string
		faults sim.Faults
		want   bool
	}{
		{"pass", sim.Faults{}, true},
		{"self-test error", sim.Faults{CCMSelfTest: true}, false},
		{"error forcing lost", sim.Faults{CCMErrorForcing: true}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := sim.New()
			m.Faults = tt.faults
			c := m.Chip
			require.Equal(t, tt.want, c.CCM.SelfTest(c.ESM, c.VIM))
			require.Equal(t, tms570.CCMLockstep, c.CCM.Mode())
			if tt.want {
				require.False(t, c.ESM.ErrorIsSet(tms570.CCMR4SelfTest))
				require.False(t, c.ESM.ErrorIsSet(tms570.CCMR4Lockstep))
				require.False(t, c.ESM.ErrorPinActive())
			}
		})
	}
}

func TestPBISTSelfTest(t *testing.T) {
	tests := []struct {
		name string
		fail tms570.Memory
		mem  tms570.Memory
		want bool
	}{
		{"rom pass", 0, tms570.MemPBISTROM, true},
		{"rom fail", tms570.MemPBISTROM, tms570.MemPBISTROM, false},
		{"other memory failing", tms570.MemESRAM1, tms570.MemSTCROM, true},
		{"ram fail", tms570.MemESRAM1, tms570.MemESRAM1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := sim.New()
			m.Faults.PBIST = tt.fail
			p := m.Chip.PBIST
			require.Equal(t, tt.want, p.SelfTest(m.CPU, tms570.March13NSinglePort, tt.mem))
			require.True(t, p.Completed())
			require.Equal(t, []uint32{uint32(tt.mem)}, m.WritesTo(p.RINFOL.Addr()))
			if !tt.want {
				require.NotZero(t, p.Failure().Status)
			}
		})
	}
}

func TestWatchdogExpire(t *testing.T) {
	m := sim.New()
	dwd := m.Chip.DWD
	reset := dwd.DWDPRLD.Get()

	require.ErrorIs(t, dwd.Expire(500000), tms570.ErrPreloadRange)
	require.ErrorIs(t, dwd.Expire(10), tms570.ErrPreloadRange)
	require.Empty(t, m.WritesTo(dwd.DWDPRLD.Addr()))
	require.Equal(t, reset, dwd.DWDPRLD.Get())

	require.NoError(t, dwd.Expire(1000))
	require.Equal(t, []uint32{8}, m.WritesTo(dwd.DWDPRLD.Addr()))
}

func TestWatchdogStart(t *testing.T) {
	m := sim.New()
	dwd := m.Chip.DWD
	m.SetWatchdogStatus(tms570.EndTimeWindowViolation)

	require.Error(t, dwd.Start(1))
	require.False(t, dwd.Enabled())

	m.ClearTrace()
	require.NoError(t, dwd.Start(100000))
	require.True(t, dwd.Enabled())
	require.Equal(t, tms570.NoTimeViolation, dwd.Status())
	require.Equal(t, uint32(975)<<13, dwd.CountDown())

	// Status clear, preload, enable in that order
	var order []uintptr
	for _, ev := range m.Trace() {
		if ev.Kind == sim.EventWrite {
			order = append(order, ev.Addr)
		}
	}
	require.Equal(t, []uintptr{dwd.WDSTATUS.Addr(), dwd.DWDPRLD.Addr(), dwd.DWDCTRL.Addr()}, order)
}

func TestVIMParity(t *testing.T) {
	tests := []struct {
		name   string
		broken bool
	}{
		{"detected", false},
		{"missed", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := sim.New()
			m.Faults.VIMParity = tt.broken
			vim := m.Chip.VIM
			vim.ParityEnable(true)
			parctl := vim.PARCTL.Get()

			require.Equal(t, !tt.broken, vim.ParityCheck(m.Chip.ESM))
			require.Equal(t, parctl, vim.PARCTL.Get())
			require.Zero(t, m.Peek(tms570.VIMParityRAM)&1)
			require.False(t, m.Chip.ESM.ErrorIsSet(tms570.VIMParity))
			flagged, _ := vim.ParityError()
			require.False(t, flagged)
		})
	}
}

func TestVIMParityFallback(t *testing.T) {
	m := sim.New()
	vim := m.Chip.VIM
	vectors := []uint32{0x100, 0x200, 0x300, 0x400}
	for i, v := range vectors {
		vim.Vector(i).Set(v)
	}
	vim.Vector(2).Set(0xDEAD)
	vim.ParityEnable(true)
	m.Poke(tms570.VIMParityRAM+2*4, 1)

	vim.Vector(2).Get()
	require.True(t, m.Chip.ESM.ErrorIsSet(tms570.VIMParity))

	require.Equal(t, 2, vim.ParityFallback(m.Chip.ESM, vectors))
	require.Equal(t, uint32(0x300), vim.Vector(2).Get())
	require.False(t, m.Chip.ESM.ErrorIsSet(tms570.VIMParity))
}

func TestSetPhantomHandler(t *testing.T) {
	m := sim.New()
	vim := m.Chip.VIM
	vim.SetPhantomHandler(0x8000)
	require.Equal(t, uint32(0x8000), vim.Vector(0).Get())
	vim.SetFallbackHandler(0x9000)
	require.Equal(t, []uint32{0x9000}, m.WritesTo(vim.FBPARERR.Addr()))
}

func TestServiceParityError(t *testing.T) {
	t.Run("esm", func(t *testing.T) {
		m := sim.New()
		m.Raise(tms570.CCMR4Lockstep)
		vim, esm := m.Chip.VIM, m.Chip.ESM

		require.Equal(t, 0, vim.ServiceParityError(esm))
		require.Equal(t, []uint32{1}, m.WritesTo(vim.PARFLG.Addr()))
		require.Equal(t, []uint32{1}, m.WritesTo(vim.INTREQ[0].Addr()))
		require.False(t, esm.ErrorIsSet(tms570.CCMR4Lockstep))
	})

	t.Run("channel", func(t *testing.T) {
		m := sim.New()
		m.Poke(m.Chip.VIM.IRQINDEX.Addr(), 38)
		vim := m.Chip.VIM

		require.Equal(t, 37, vim.ServiceParityError(m.Chip.ESM))
		require.Equal(t, []uint32{1 << 5}, m.WritesTo(vim.REQENACLR[1].Addr()))
		require.Equal(t, []uint32{1 << 5}, m.WritesTo(vim.REQENASET[1].Addr()))
		require.Empty(t, m.WritesTo(vim.INTREQ[0].Addr()))
	})

	t.Run("none pending", func(t *testing.T) {
		m := sim.New()
		vim := m.Chip.VIM
		require.Equal(t, -1, vim.ServiceParityError(m.Chip.ESM))
		require.Equal(t, []uint32{1}, m.WritesTo(vim.PARFLG.Addr()))
	})
}

func TestSetISR(t *testing.T) {
	m := sim.New()
	vim := m.Chip.VIM
	require.ErrorIs(t, vim.SetISR(1, 0x1234), tms570.ErrChannel)
	require.ErrorIs(t, vim.SetISR(tms570.VIMChannels, 0x1234), tms570.ErrChannel)
	require.NoError(t, vim.SetISR(2, 0x1234))
	require.Equal(t, uint32(0x1234), vim.Vector(3).Get())
}

func TestCRCCompress(t *testing.T) {
	m := sim.New()
	crc := m.Chip.CRC
	data := []uint64{0xDEADBEEF00000001, 0x0123456789ABCDEF, 0, 0xFFFFFFFFFFFFFFFF}

	crc.ChannelReset(0)
	crc.SetMode(0, tms570.CRCFullCPU)
	crc.Compress(0, data)
	require.Equal(t, tms570.PSASignature(data), crc.Signature(0))
	require.Zero(t, crc.Signature(1))

	crc.ChannelReset(0)
	require.Zero(t, crc.Signature(0))
}

func TestTrimLPO(t *testing.T) {
	tests := []struct {
		name string
		otp  uint16
		want uint32
	}{
		{"otp", 0x0105, 0x0105},
		{"fallback", 0xFFFF, 0xFF},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := sim.New()
			m.SetLPOTrim(tt.otp)
			require.Equal(t, tt.want, m.Chip.Sys.TrimLPO(0xFF))
		})
	}
}

func TestEFuseSelfTest(t *testing.T) {
	tests := []struct {
		name   string
		faults sim.Faults
		want   tms570.EFuseResult
	}{
		{"pass", sim.Faults{}, tms570.EFuseResult{Complete: true}},
		{"incomplete", sim.Faults{EFuseIncomplete: true}, tms570.EFuseResult{}},
		{"error", sim.Faults{EFuseSelfTest: true}, tms570.EFuseResult{Complete: true, Error: true, Code: 0x15}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := sim.New()
			m.Faults = tt.faults
			require.Equal(t, tt.want, m.Chip.EFuse.SelfTest(m.CPU))
		})
	}
}

func TestClockDomains(t *testing.T) {
	m := sim.New()
	sys := m.Chip.Sys
	sys.ClockDomainEnableAll()
	require.Zero(t, sys.CDDIS.Get())

	sys.ClockDomainDisable(0x12)
	require.Equal(t, uint32(0x12), sys.CDDIS.Get())
	sys.ClockDomainDisable(0x12)
	require.Equal(t, uint32(0x12), sys.CDDIS.Get())

	sys.ClockDomainEnable(0x02)
	require.Equal(t, uint32(0x10), sys.CDDIS.Get())
	require.Equal(t, []uint32{0x02}, m.WritesTo(sys.CDDISCLR.Addr()))
}

func TestTCRAMECCDetect(t *testing.T) {
	m := sim.New()
	tcram := m.Chip.TCRAM1
	m.Poke(tcram.RAMCTRL.Addr(), 0x105)

	tcram.EnableECCDetect()
	require.Equal(t, uint32(0x10A), tcram.RAMCTRL.Get())
	require.True(t, tcram.ECCWriteEnabled())
	require.Zero(t, m.Peek(m.Chip.TCRAM2.RAMCTRL.Addr())&0xF)
}

func TestFlashECC(t *testing.T) {
	m := sim.New()
	flash := m.Chip.Flash
	m.Poke(flash.FEDACCTRL1.Addr(), 0x000A0605)

	flash.EnableECC()
	require.Equal(t, uint32(0x000A060A), flash.FEDACCTRL1.Get())

	var cpu cortexr4.Processor = m.CPU
	cpu.FlashECC(true)
	require.True(t, m.CPU.FlashECCEnabled)
	cpu.FlashECC(false)
	require.False(t, m.CPU.FlashECCEnabled)
	require.Equal(t, []string{"flash-ecc", "flash-ecc"}, m.Ops())
}

func TestSetupPLLMultiplier(t *testing.T) {
	tests := []struct {
		name       string
		multiplier uint32
		want       uint32
	}{
		{"160 MHz", 120, 0x7700},
		{"180 MHz", 135, 0x8600},
		{"220 MHz", 165, 0xA400},
		{"lowest", 1, 0x0000},
		{"highest", 256, 0xFF00},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := sim.New()
			sys := m.Chip.Sys
			sys.SetupPLL(tt.multiplier)
			require.Equal(t, tt.want, sys.PLLCTL1.Get()&0xFFFF)
			require.Equal(t, tt.want, sys.PLLCTL3.Get()&0xFFFF)
		})
	}
}
