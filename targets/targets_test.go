package targets

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFind(t *testing.T) {
	tests := []struct {
		name    string
		find    func() (Target, error)
		want    string
		wantErr error
	}{
		{"by name", func() (Target, error) { return All().Find("tms570ls1227") }, "tms570ls1227", nil},
		{"name case", func() (Target, error) { return All().Find("RM48-HDK") }, "rm48-hdk", nil},
		{"by chip", func() (Target, error) { return All().FindByChip("TMS570LS3134") }, "tms570ls3137-hdk", nil},
		{"unknown name", func() (Target, error) { return All().Find("tms470") }, "", ErrTargetNotFound},
		{"unknown chip", func() (Target, error) { return All().FindByChip("stm32f4") }, "", ErrTargetNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target, err := tt.find()
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, target.Name)
		})
	}
}

func TestDefaults(t *testing.T) {
	target, err := All().Find("rm48-hdk")
	require.NoError(t, err)

	// Overridden
	require.True(t, target.Config.Errata57)
	require.EqualValues(t, 4, target.Config.Flash.WaitStates)
	require.True(t, target.Config.Flash.AddressWaitState)

	// Kept from the defaults
	require.True(t, target.Config.VFP)
	require.True(t, target.Config.Flash.Pipeline)
	require.True(t, target.Config.PBISTRAM)
	require.EqualValues(t, 1, target.Config.Clock.VCLK1Divider)
	require.EqualValues(t, 0xFF, target.Config.Clock.LPOFallback)
}

func TestPLLMultiplier(t *testing.T) {
	tests := []struct {
		name string
		want uint32
	}{
		{"tms570ls3137-hdk", 120},
		{"tms570ls1227", 135},
		{"rm48-hdk", 165},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target, err := All().Find(tt.name)
			require.NoError(t, err)
			require.Equal(t, tt.want, target.Config.Clock.PLLMultiplier)
		})
	}
}

func TestParse(t *testing.T) {
	tgts, err := parse([]byte(`
targets:
  - name: a
    config:
      pbist_rom: false
  - name: b
`))
	require.NoError(t, err)
	require.Len(t, tgts, 2)
	require.False(t, tgts[0].Config.PBISTROM)
	require.True(t, tgts[1].Config.PBISTROM)
	require.Equal(t, []string{"a", "b"}, tgts.Names())

	_, err = parse([]byte("targets: [name: x"))
	require.Error(t, err)
}
