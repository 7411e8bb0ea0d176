package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang/glog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"omibyte.io/hercules/sim"
	"omibyte.io/hercules/targets"
	"omibyte.io/hercules/tms570"
	"omibyte.io/hercules/tms570/startup"
)

var errHalted = errors.New("device halted")

var (
	bootOpts = struct {
		target   string
		cause    causeFlag
		watchdog string
		faults   []string
		state    string
		trace    bool
		debug    bool
	}{}

	bootCmd = &cobra.Command{
		Use:   "boot",
		Short: "Run the startup sequence on a simulated device",
		Long:  "Run the startup sequence of a target on a simulated device and report how it ended",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := targets.All().Find(bootOpts.target)
			if err != nil {
				return fmt.Errorf("%w: %s", err, bootOpts.target)
			}
			cfg := target.Config
			if bootOpts.debug {
				cfg.Debug = true
			}

			cause := tms570.Cause(bootOpts.cause)
			violation, err := parseViolation(bootOpts.watchdog)
			if err != nil {
				return err
			}

			m := sim.New()
			for _, name := range bootOpts.faults {
				if err := m.Faults.Set(name); err != nil {
					return err
				}
			}

			var store *sim.Store
			if bootOpts.state != "" {
				if store, err = sim.OpenStore(bootOpts.state); err != nil {
					return err
				}
				defer store.Close()
				if !cause.Has(tms570.PowerOn) {
					found, err := store.Restore(m)
					if err != nil {
						return err
					}
					glog.V(1).Infof("restored state: %v", found)
				}
			}
			m.SetCause(cause)
			if violation != tms570.NoTimeViolation {
				m.SetWatchdogStatus(violation)
			}

			res := m.Boot(cfg)
			if err := startup.NewPlan().Verify(res.Phases); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if bootOpts.trace {
				printTrace(cmd, m)
			}
			fmt.Fprintf(out, "target:    %s\n", target.Name)
			fmt.Fprintf(out, "outcome:   %s\n", res.Describe())
			if res.Violation != tms570.NoTimeViolation {
				fmt.Fprintf(out, "watchdog:  %s\n", res.Violation)
			}
			fmt.Fprintf(out, "phases:    %s\n", joinPhases(res.Phases))

			if store != nil {
				if err := store.Save(m); err != nil {
					return err
				}
				seq, err := store.Append(sim.NewRecord(target.Name, res))
				if err != nil {
					return err
				}
				glog.V(1).Infof("recorded boot %d", seq)
			}

			if res.Outcome == sim.Halted {
				return errHalted
			}
			return nil
		},
	}
)

func init() {
	bootCmd.Flags().StringVarP(&bootOpts.target, "target", "t", "tms570ls3137-hdk", "target board")
	bootOpts.cause = causeFlag(tms570.PowerOn | tms570.CPU)
	bootCmd.Flags().VarP(&bootOpts.cause, "cause", "c", "reset causes (power-on, osc, watchdog, cpu, software, external)")
	bootCmd.Flags().StringVar(&bootOpts.watchdog, "watchdog-status", "", "latched watchdog violation (key, start, end, window)")
	bootCmd.Flags().StringSliceVarP(&bootOpts.faults, "fail", "f", nil, "faults to inject: "+strings.Join(sim.FaultNames(), ", "))
	bootCmd.Flags().StringVar(&bootOpts.state, "state", "", "database keeping the device state between runs")
	bootCmd.Flags().BoolVar(&bootOpts.trace, "trace", false, "print the register writes")
	bootCmd.Flags().BoolVarP(&bootOpts.debug, "debug", "g", false, "boot as under a debugger")
}

var causeFlags = map[string]tms570.Cause{
	"power-on": tms570.PowerOn | tms570.CPU,
	"osc":      tms570.OscFailure,
	"watchdog": tms570.WdIcePick,
	"cpu":      tms570.CPU,
	"software": tms570.Software,
	"external": tms570.External,
}

// causeFlag is a comma separated list of reset causes.
type causeFlag tms570.Cause

var _ pflag.Value = (*causeFlag)(nil)

func (c *causeFlag) String() string { return tms570.Cause(*c).String() }
func (c *causeFlag) Type() string   { return "causes" }

func (c *causeFlag) Set(s string) error {
	cause, err := parseCause(s)
	if err != nil {
		return err
	}
	*c = causeFlag(cause)
	return nil
}

func parseCause(s string) (tms570.Cause, error) {
	var cause tms570.Cause
	for _, name := range strings.Split(s, ",") {
		c, ok := causeFlags[strings.TrimSpace(name)]
		if !ok {
			return 0, fmt.Errorf("unknown reset cause %q", name)
		}
		cause |= c
	}
	return cause, nil
}

var violationFlags = map[string]tms570.Violation{
	"":       tms570.NoTimeViolation,
	"key":    tms570.KeySeqViolation,
	"start":  tms570.StartTimeWindowViolation,
	"end":    tms570.EndTimeWindowViolation,
	"window": tms570.TimeWindowViolation,
}

func parseViolation(s string) (tms570.Violation, error) {
	v, ok := violationFlags[s]
	if !ok {
		return 0, fmt.Errorf("unknown watchdog violation %q", s)
	}
	return v, nil
}

func joinPhases(phases []startup.Phase) string {
	names := make([]string, len(phases))
	for i, p := range phases {
		names[i] = p.String()
	}
	return strings.Join(names, " ")
}

func printTrace(cmd *cobra.Command, m *sim.Machine) {
	out := cmd.OutOrStdout()
	for _, ev := range m.Trace() {
		switch ev.Kind {
		case sim.EventPhase:
			fmt.Fprintf(out, "-- %s\n", ev.Phase)
		case sim.EventWrite:
			fmt.Fprintf(out, "   %#08x <- %#08x\n", ev.Addr, ev.Value)
		case sim.EventCPU:
			fmt.Fprintf(out, "   cpu %s\n", ev.Op)
		case sim.EventReset:
			fmt.Fprintf(out, "== reset (%s)\n", ev.Op)
		}
	}
}
