package main

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"omibyte.io/hercules/tms570"
)

var crcCmd = &cobra.Command{
	Use:   "crc <file>",
	Short: "Compute the MCRC signature of a file",
	Long:  "Compute the signature the MCRC produces when the file is compressed as little endian 64 bit words, padded with zeros",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		words := fileWords(data)
		fmt.Fprintf(cmd.OutOrStdout(), "%#016x  %d words  %s\n", tms570.PSASignature(words), len(words), args[0])
		return nil
	},
}

func fileWords(data []byte) []uint64 {
	if rem := len(data) % 8; rem != 0 {
		data = append(data, make([]byte, 8-rem)...)
	}
	words := make([]uint64, len(data)/8)
	for i := range words {
		words[i] = binary.LittleEndian.Uint64(data[i*8:])
	}
	return words
}
