package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"omibyte.io/hercules/tms570"
)

var (
	dwdOpts = struct {
		expire  uint32
		preload int
		clk     uint32
	}{}

	dwdCmd = &cobra.Command{
		Use:   "dwd",
		Short: "Convert between watchdog expiration times and preload values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if dwdOpts.preload >= 0 {
				expire, err := tms570.ExpireTime(uint32(dwdOpts.preload), dwdOpts.clk)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "preload %d expires after %d us\n", dwdOpts.preload, expire)
				return nil
			}
			preload, err := tms570.ComputePreload(dwdOpts.expire, dwdOpts.clk)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "expiration %d us needs preload %d (%#03x)\n", dwdOpts.expire, preload, preload)
			return nil
		},
	}
)

func init() {
	dwdCmd.Flags().Uint32VarP(&dwdOpts.expire, "expire", "e", 1000, "expiration time in microseconds")
	dwdCmd.Flags().IntVarP(&dwdOpts.preload, "preload", "p", -1, "preload value to convert into an expiration time")
	dwdCmd.Flags().Uint32Var(&dwdOpts.clk, "clk", tms570.RTICLK1, "watchdog clock in MHz")
}
