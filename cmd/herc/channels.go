package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"omibyte.io/hercules/tms570"
)

var channelsCmd = &cobra.Command{
	Use:   "channels",
	Short: "List the error signaling channels",
	Long:  "List the named error signaling channels and the status register bit that latches each of them",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
		fmt.Fprintln(w, "GROUP\tCHANNEL\tSTATUS\tNAME")
		for _, ch := range tms570.Channels() {
			name, _ := ch.Name()
			fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", ch.Group, ch.Number, formatLocation(ch.StatusLocation()), name)
		}
		w.Flush()
	},
}

func formatLocation(loc tms570.Location) string {
	if !loc.Valid {
		return "-"
	}
	bank := "SR1"
	if loc.Bank == tms570.BankSR4 {
		bank = "SR4"
	}
	return fmt.Sprintf("%s[%d].%d", bank, loc.Index, loc.Bit)
}
