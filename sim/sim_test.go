package sim

import (
	"testing"

	"github.com/stretchr/testify/require"

	"omibyte.io/hercules/tms570"
	"omibyte.io/hercules/tms570/startup"
)

func TestPowerOnState(t *testing.T) {
	m := New()
	require.Equal(t, tms570.PowerOn|tms570.CPU, m.Chip.SysExc.Causes())
	require.False(t, m.Chip.ESM.ErrorPinActive())
	require.Empty(t, m.Trace())
	require.True(t, slicesSorted(m.Registers()))
}

func slicesSorted(addrs []uintptr) bool {
	for i := 1; i < len(addrs); i++ {
		if addrs[i-1] >= addrs[i] {
			return false
		}
	}
	return true
}

func TestPLLLock(t *testing.T) {
	m := New()
	sys := m.Chip.Sys
	sys.SetupPLL(120)
	require.Equal(t, uint32(0x7700), sys.PLLCTL1.Get()&0xFFFF)
	require.Equal(t, pllLockReads, m.pllPending)
	require.Zero(t, sys.CSVSTAT.Get()&pllSources)

	sys.WaitPLLLock()
	require.Equal(t, uint32(pllSources), sys.CSVSTAT.Get()&pllSources)
}

func TestWatchdogReset(t *testing.T) {
	m := New()
	dwd := m.Chip.DWD
	require.NoError(t, dwd.Start(1000))
	require.Equal(t, uint32(8)<<13, dwd.CountDown())

	m.Poke(dwd.DWDCNTR.Addr(), 0)
	dwd.Reset()
	require.Equal(t, uint32(8)<<13, dwd.CountDown())

	require.PanicsWithValue(t, resetSignal{cause: tms570.WdIcePick}, dwd.SysReset)
}

func TestBootWatchdogSysReset(t *testing.T) {
	m := New()
	resets := 0
	m.App = func(m *Machine) {
		resets++
		if resets == 1 {
			m.Chip.DWD.SysReset()
		}
	}
	res := m.Boot(startup.DefaultConfig())
	require.Equal(t, Idle, res.Outcome)
	require.Equal(t, 1, res.Resets)
	require.Equal(t, tms570.WdIcePick, res.Cause)
	require.Equal(t, 2, resets)

	var kinds []EventKind
	for _, ev := range m.Trace() {
		if ev.Kind == EventReset {
			kinds = append(kinds, ev.Kind)
		}
	}
	require.Len(t, kinds, 1)
}

func TestBootResetLoop(t *testing.T) {
	m := New()
	m.App = func(m *Machine) {
		m.Chip.DWD.SysReset()
	}
	res := m.Boot(startup.DefaultConfig())
	require.Equal(t, Halted, res.Outcome)
	require.ErrorIs(t, res.Err, ErrResetLoop)
	require.Equal(t, maxBoots, res.Resets)
}

func TestCall(t *testing.T) {
	m := New()
	require.True(t, m.Call(m.CPU.Halt))
	require.False(t, m.Call(func() {}))
	require.Panics(t, func() { m.Call(func() { panic("boom") }) })
}

func TestRaise(t *testing.T) {
	m := New()
	m.Raise(tms570.CCMR4Lockstep)
	require.True(t, m.Chip.ESM.ErrorIsSet(tms570.CCMR4Lockstep))
	require.Equal(t, uint32(1), m.Chip.VIM.FIQIndex())
	require.True(t, m.Chip.ESM.ErrorPinActive())

	m = New()
	m.Raise(tms570.OscFail)
	require.True(t, m.Chip.ESM.ErrorIsSet(tms570.OscFail))
	require.False(t, m.Chip.ESM.ErrorPinActive())
}

func TestFaults(t *testing.T) {
	var f Faults
	for _, name := range []string{"stc", "PBIST-RAM", " vim-parity "} {
		require.NoError(t, f.Set(name))
	}
	require.True(t, f.STC)
	require.True(t, f.VIMParity)
	require.Equal(t, tms570.MemESRAM1, f.PBIST)

	require.Error(t, f.Set("flux-capacitor"))
	require.Contains(t, FaultNames(), "efuse-autoload")
	require.Len(t, FaultNames(), len(faultSetters))
}
