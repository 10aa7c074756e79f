package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/liftbank/core/triplog"
)

var (
	tripsCar   int
	tripsFloor int
	tripsSince time.Duration
)

var tripsCmd = &cobra.Command{
	Use:   "trips <trips.jsonl|trips.db>",
	Short: "Query a trip log written by the triplog sink",
	Args:  cobra.ExactArgs(1),
	RunE:  queryTrips,
}

func init() {
	tripsCmd.Flags().IntVar(&tripsCar, "car", 0, "only trips of this car")
	tripsCmd.Flags().IntVar(&tripsFloor, "floor", 0, "only trips to this floor")
	tripsCmd.Flags().DurationVar(&tripsSince, "since", 0, "only trips completed within this duration")
	rootCmd.AddCommand(tripsCmd)
}

func queryTrips(cmd *cobra.Command, args []string) error {
	store, err := triplog.Open(args[0], triplog.DefaultOptions())
	if err != nil {
		return err
	}
	defer store.Close()
	q := triplog.Query{CarID: tripsCar, Floor: tripsFloor}
	if tripsSince > 0 {
		q.Start = time.Now().Add(-tripsSince)
	}
	recs, err := store.Query(commandContext(cmd), q)
	if err != nil {
		return fmt.Errorf("query: %w", err)
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	for _, r := range recs {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	return nil
}
