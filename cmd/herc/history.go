package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"omibyte.io/hercules/sim"
)

var historyCmd = &cobra.Command{
	Use:   "history <state>",
	Short: "List the boots recorded in a state database",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := sim.OpenStore(args[0])
		if err != nil {
			return err
		}
		defer store.Close()

		records, err := store.History()
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
		fmt.Fprintln(w, "SEQ\tTIME\tTARGET\tCAUSE\tOUTCOME\tRESETS\tERROR")
		for _, rec := range records {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%d\t%s\n", rec.Seq, rec.Time.Format("2006-01-02 15:04:05"), rec.Target, rec.Cause, rec.Outcome, rec.Resets, rec.Error)
		}
		return w.Flush()
	},
}
