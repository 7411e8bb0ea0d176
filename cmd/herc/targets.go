package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"omibyte.io/hercules/targets"
)

var (
	targetsOpts = struct {
		show string
	}{}

	targetsCmd = &cobra.Command{
		Use:   "targets",
		Short: "List the supported targets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if targetsOpts.show != "" {
				target, err := targets.All().Find(targetsOpts.show)
				if err != nil {
					return fmt.Errorf("%w: %s", err, targetsOpts.show)
				}
				enc := yaml.NewEncoder(out)
				enc.SetIndent(2)
				defer enc.Close()
				return enc.Encode(target)
			}

			w := tabwriter.NewWriter(out, 0, 8, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tCHIPS\tDESCRIPTION")
			for _, target := range targets.All() {
				fmt.Fprintf(w, "%s\t%s\t%s\n", target.Name, strings.Join(target.Chips, ","), target.Description)
			}
			return w.Flush()
		},
	}
)

func init() {
	targetsCmd.Flags().StringVar(&targetsOpts.show, "show", "", "print the resolved configuration of a target")
}
