package tms570

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPSA(t *testing.T) {
	tests := []struct {
		name string
		sig  uint64
		data uint64
		want uint64
	}{
		{"zero", 0, 0, 0},
		{"data only", 0, 0x1234, 0x1234},
		{"shift", 0x1, 0, 0x2},
		{"feedback", 1 << 63, 0, psaPolynomial},
		{"feedback and data", 1<<63 | 1, 0xF0, psaPolynomial ^ 0x2 ^ 0xF0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, PSA(tt.sig, tt.data))
		})
	}
}

func TestPSASignature(t *testing.T) {
	require.Zero(t, PSASignature(nil))

	data := []uint64{0x0123456789ABCDEF, 0xFEDCBA9876543210, 0x5555AAAA5555AAAA}
	sig := PSASignature(data)
	require.Equal(t, PSA(PSA(PSA(0, data[0]), data[1]), data[2]), sig)

	// Order matters
	require.NotEqual(t, sig, PSASignature([]uint64{data[1], data[0], data[2]}))
}
