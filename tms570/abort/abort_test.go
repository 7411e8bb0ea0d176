package abort_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"omibyte.io/hercules/sim"
	"omibyte.io/hercules/tms570"
	"omibyte.io/hercules/tms570/abort"
)

func TestDataAbort(t *testing.T) {
	tests := []struct {
		name    string
		raise   tms570.Channel
		prepare func(m *sim.Machine)
		want    abort.Action
		cleared bool
	}{
		{
			name: "no ECC error",
			want: abort.Resume,
		},
		{
			name:    "even bank diagnostic",
			raise:   tms570.RAMEvenUncorrectableECC,
			want:    abort.Resume,
			cleared: true,
		},
		{
			name:  "even bank genuine",
			raise: tms570.RAMEvenUncorrectableECC,
			prepare: func(m *sim.Machine) {
				m.Chip.TCRAM1.RAMCTRL.SetBits(1 << 8)
			},
			want: abort.Halt,
		},
		{
			name:    "odd bank diagnostic",
			raise:   tms570.RAMOddUncorrectableECC,
			want:    abort.Resume,
			cleared: true,
		},
		{
			name:  "odd bank genuine",
			raise: tms570.RAMOddUncorrectableECC,
			prepare: func(m *sim.Machine) {
				m.Chip.TCRAM2.RAMCTRL.SetBits(1 << 8)
			},
			want: abort.Halt,
		},
		{
			name:  "flash diagnostic mode",
			raise: tms570.FMCUncorrectableECC,
			prepare: func(m *sim.Machine) {
				m.Chip.Flash.FDIAGCTRL.Set(0x5 << 16)
			},
			want:    abort.Resume,
			cleared: true,
		},
		{
			name:  "flash genuine",
			raise: tms570.FMCUncorrectableECC,
			want:  abort.Halt,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := sim.New()
			if tt.prepare != nil {
				tt.prepare(m)
			}
			if tt.raise != (tms570.Channel{}) {
				m.Raise(tt.raise)
			}

			custom := 0
			h := abort.NewHandler(m.Chip)
			h.Custom = func() { custom++ }

			require.Equal(t, tt.want, h.DataAbort())
			if tt.want == abort.Halt {
				require.Zero(t, custom)
				require.True(t, m.Chip.ESM.ErrorIsSet(tt.raise))
				return
			}
			require.Equal(t, 1, custom)
			if tt.cleared {
				require.False(t, m.Chip.ESM.ErrorIsSet(tt.raise))
				require.False(t, m.Chip.ESM.ErrorPinActive())
			}
		})
	}
}

func TestDataAbortClearsBank(t *testing.T) {
	m := sim.New()
	tcram := m.Chip.TCRAM1
	m.Poke(tcram.RAMERRSTATUS.Addr(), 0x20)
	m.Raise(tms570.RAMEvenUncorrectableECC)
	require.True(t, tcram.UncorrectableError())

	require.Equal(t, abort.Resume, abort.NewHandler(m.Chip).DataAbort())
	require.False(t, tcram.UncorrectableError())
}

func TestVIMParity(t *testing.T) {
	m := sim.New()
	m.Poke(m.Chip.VIM.IRQINDEX.Addr(), 6)
	require.Equal(t, 5, abort.NewHandler(m.Chip).VIMParity())
	require.Equal(t, []uint32{1}, m.WritesTo(m.Chip.VIM.PARFLG.Addr()))
}

func TestResumeAddress(t *testing.T) {
	require.Equal(t, uint32(0x1000), abort.ResumeAddress(0x1008))
}

func TestPhantomInterrupt(t *testing.T) {
	before := abort.PhantomCount()
	abort.PhantomInterrupt()
	abort.PhantomInterrupt()
	require.Equal(t, before+2, abort.PhantomCount())
}
