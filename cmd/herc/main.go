// Command herc runs the startup sequence of a TMS570 device on the register
// level simulator and inspects the tables the sequence is built from.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/golang/glog"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "herc",
	Short:         "TMS570 startup sequence tool",
	Long:          "Boot a simulated TMS570 through the startup sequence, inject faults and inspect the result",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().AddGoFlagSet(flag.CommandLine)
	rootCmd.AddCommand(bootCmd, channelsCmd, dwdCmd, crcCmd, targetsCmd, historyCmd)
}

func main() {
	// glog reads its settings from the standard flag set.
	flag.CommandLine.Parse(nil)
	defer glog.Flush()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "herc:", err)
		glog.Flush()
		os.Exit(1)
	}
}
