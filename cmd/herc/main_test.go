package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"omibyte.io/hercules/tms570"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestParseCause(t *testing.T) {
	tests := []struct {
		in      string
		want    tms570.Cause
		wantErr bool
	}{
		{"power-on", tms570.PowerOn | tms570.CPU, false},
		{"watchdog", tms570.WdIcePick, false},
		{"osc, software", tms570.OscFailure | tms570.Software, false},
		{"brownout", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			cause, err := parseCause(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, cause)
		})
	}
}

func TestFileWords(t *testing.T) {
	require.Empty(t, fileWords(nil))
	require.Equal(t, []uint64{0x0807060504030201, 0x09}, fileWords([]byte{1, 2, 3, 4, 5, 6, 7, 8, 9}))
}

func TestBootCommand(t *testing.T) {
	state := filepath.Join(t.TempDir(), "state.db")

	out, err := run(t, "boot", "--state", state, "--cause", "watchdog", "--watchdog-status", "end")
	require.NoError(t, err)
	require.Contains(t, out, "idle after 0 reset(s), cause watchdog/icepick")
	require.Contains(t, out, "end time window")

	_, err = run(t, "boot", "--state", state, "--cause", "power-on", "--watchdog-status", "", "--fail", "pbist-rom")
	require.ErrorIs(t, err, errHalted)

	out, err = run(t, "history", state)
	require.NoError(t, err)
	require.Contains(t, out, "halted")
	require.Contains(t, out, "memory self-test failed")
}

func TestCRCCommand(t *testing.T) {
	file := filepath.Join(t.TempDir(), "image.bin")
	require.NoError(t, os.WriteFile(file, []byte{1, 2, 3, 4, 5, 6, 7, 8}, 0644))

	out, err := run(t, "crc", file)
	require.NoError(t, err)
	require.Contains(t, out, "0x0807060504030201")
}

func TestDWDCommand(t *testing.T) {
	tests := []struct {
		name string
		args []string
		out  string
		err  error
	}{
		{"expire", []string{"--expire", "1000"}, "needs preload 8", nil},
		{"expire too short", []string{"--expire", "1"}, "", tms570.ErrPreloadRange},
		{"preload", []string{"--preload", "8"}, "preload 8 expires after 921 us", nil},
		{"preload too large", []string{"--preload", "4095"}, "", tms570.ErrPreloadRange},
		{"zero clock", []string{"--preload", "5", "--clk", "0"}, "", tms570.ErrClock},
		{"zero clock expire", []string{"--expire", "1000", "--clk", "0"}, "", tms570.ErrClock},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Flag values persist between executions of the command
			args := append([]string{"dwd", "--expire=1000", "--preload=-1", "--clk=80"}, tt.args...)
			out, err := run(t, args...)
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			require.Contains(t, out, tt.out)
		})
	}
}

func TestChannelsCommand(t *testing.T) {
	out, err := run(t, "channels")
	require.NoError(t, err)
	require.Contains(t, out, "SR4[0].31")
	require.Contains(t, out, "CCM-R4 self-test")
}
