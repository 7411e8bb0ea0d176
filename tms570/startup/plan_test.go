package startup

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPlanOrder(t *testing.T) {
	plan := NewPlan()
	order, err := plan.Order()
	require.NoError(t, err)
	require.Len(t, order, int(numPhases))
	require.NoError(t, plan.Verify(order))
	require.NoError(t, plan.Verify(Sequence))
}

func TestPlanRequires(t *testing.T) {
	tests := []struct {
		before, after Phase
		want          bool
	}{
		{PhaseFlash, PhaseClockSource, true},
		{PhaseFlash, PhasePLLDivider, true},
		{PhaseFlash, PhasePeripheralDividers, true},
		{PhaseEFuseAutoload, PhasePLLSetup, true},
		{PhaseClockSupervisor, PhasePBISTROM, true},
		{PhasePBISTROM, PhaseRAMECC, true},
		{PhasePBISTRAM, PhaseVIMParity, true},
		{PhaseCoreInit, PhaseApplication, true},
		{PhaseFlash, PhaseLPOTrim, false},
		{PhaseClockSource, PhaseFlash, false},
		{PhaseFlash, PhaseFlash, false},
	}
	plan := NewPlan()
	for _, tt := range tests {
		t.Run(tt.before.String()+"/"+tt.after.String(), func(t *testing.T) {
			require.Equal(t, tt.want, plan.Requires(tt.before, tt.after))
		})
	}
}

func TestPlanVerify(t *testing.T) {
	tests := []struct {
		name    string
		trace   []Phase
		wantErr bool
	}{
		{"empty", nil, false},
		{"halted early", Sequence[:6], false},
		{"optional phases skipped", []Phase{PhaseClockSupervisor, PhaseRAMECC, PhaseApplication}, false},
		{"independent phases swapped", []Phase{PhaseLPOTrim, PhaseFlash}, false},
		{"clock before flash", []Phase{PhasePLLSetup, PhaseClockSource, PhaseFlash}, true},
		{"ecc before pbist", []Phase{PhaseRAMECC, PhasePBISTROM}, true},
		{"transitive", []Phase{PhaseApplication, PhaseCoreInit}, true},
	}
	plan := NewPlan()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := plan.Verify(tt.trace)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrOrder)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestPhaseString(t *testing.T) {
	require.Equal(t, "flash", PhaseFlash.String())
	require.Equal(t, "application", PhaseApplication.String())
	require.Equal(t, "phase(99)", Phase(99).String())
}
