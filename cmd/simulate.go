package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kilianp07/liftbank/core/triplog"
	"github.com/kilianp07/liftbank/qa/scenarios"
)

var (
	simTripLog string
	simCheck   bool
	simCharts  string
)

var simulateCmd = &cobra.Command{
	Use:   "simulate <scenario.yaml>...",
	Short: "Replay scenarios on a virtual clock and print a summary",
	Args:  cobra.MinimumNArgs(1),
	RunE:  simulate,
}

func init() {
	simulateCmd.Flags().StringVar(&simTripLog, "trip-log", "", "append completed trips to this log (.db selects SQLite)")
	simulateCmd.Flags().StringVar(&simCharts, "chart-dir", "", "write an HTML chart per scenario into this directory")
	simulateCmd.Flags().BoolVar(&simCheck, "check", false, "fail when a scenario misses its expectations")
	rootCmd.AddCommand(simulateCmd)
}

func simulate(cmd *cobra.Command, args []string) error {
	var opts scenarios.Options
	if simTripLog != "" {
		store, err := triplog.Open(simTripLog, triplog.DefaultOptions())
		if err != nil {
			return fmt.Errorf("trip log: %w", err)
		}
		defer store.Close()
		opts.Sink = triplog.Sink{Store: store}
	}
	out := cmd.OutOrStdout()
	for _, path := range args {
		sc, err := scenarios.Load(path)
		if err != nil {
			return err
		}
		res, err := scenarios.Run(sc, opts)
		if err != nil {
			return err
		}
		res.Print(out)
		if simCharts != "" {
			if err := writeChart(res, filepath.Join(simCharts, sc.Name+".html")); err != nil {
				return err
			}
		}
		if simCheck {
			if err := scenarios.Check(sc, res); err != nil {
				return err
			}
			fmt.Fprintf(out, "scenario %s: expectations met\n", sc.Name)
		}
	}
	return nil
}

func writeChart(res *scenarios.Result, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := res.RenderChart(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
