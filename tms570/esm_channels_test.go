package tms570

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStatusLocation(t *testing.T) {
	tests := []struct {
		name string
		ch   Channel
		want Location
	}{
		{"G1/30", Channel{Group1, 30}, Location{BankSR1, 0, 30, true}},
		{"G1/31", Channel{Group1, 31}, Location{BankSR4, 0, 31, true}},
		{"G1/32", Channel{Group1, 32}, Location{BankSR4, 0, 0, true}},
		{"G1/62", Channel{Group1, 62}, Location{BankSR4, 0, 30, true}},
		{"G1/63", Channel{Group1, 63}, Location{BankSR4, 0, 31, true}},
		{"G2/0", Channel{Group2, 0}, Location{BankSR1, 1, 0, true}},
		{"G3/31", Channel{Group3, 31}, Location{BankSR4, 2, 31, true}},
		{"G4/0", Channel{Group4, 0}, Location{BankSR1, 3, 0, false}},
		{"flash bus ECC", FMCUncorrectableECCBus, Location{BankSR4, 0, 4, true}},
		{"CCM lockstep", CCMR4Lockstep, Location{BankSR1, 1, 2, true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.ch.StatusLocation())
		})
	}
}

func TestChannelFromIndex(t *testing.T) {
	tests := []struct {
		index uint8
		ch    Channel
		bank  Bank
		bit   uint
		valid bool
	}{
		{30, Channel{Group1, 30}, BankSR1, 30, true},
		{31, Channel{Group1, 31}, BankSR4, 31, true},
		{32, Channel{Group2, 0}, BankSR1, 0, true},
		{62, Channel{Group2, 30}, BankSR1, 30, true},
		{63, Channel{Group2, 31}, BankSR4, 31, true},
		{95, Channel{Group3, 31}, BankSR4, 31, true},
		{96, Channel{Group4, 0}, BankSR1, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.ch.String(), func(t *testing.T) {
			ch, ok := ChannelFromIndex(tt.index)
			require.True(t, ok)
			require.Equal(t, tt.ch, ch)

			loc := ch.StatusLocation()
			require.Equal(t, tt.valid, loc.Valid)
			require.Equal(t, tt.bank, loc.Bank)
			require.Equal(t, tt.bit, loc.Bit)
			require.Equal(t, int(tt.ch.Group), loc.Index)
		})
	}

	_, ok := ChannelFromIndex(128)
	require.False(t, ok)
}

func TestNamedChannels(t *testing.T) {
	channels := Channels()
	require.Len(t, channels, len(channelNames))

	seen := map[Location]Channel{}
	for i, ch := range channels {
		if i > 0 {
			prev := channels[i-1]
			require.True(t, prev.Group < ch.Group || prev.Group == ch.Group && prev.Number < ch.Number, "%s before %s", prev, ch)
		}

		name, ok := ch.Name()
		require.True(t, ok)
		require.NotEmpty(t, name)

		loc := ch.StatusLocation()
		require.True(t, loc.Valid, ch.String())
		require.Less(t, loc.Bit, uint(32))
		other, dup := seen[loc]
		require.False(t, dup, "%s and %s share a status bit", ch, other)
		seen[loc] = ch
	}
}
