package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/liftbank/config"
	"github.com/kilianp07/liftbank/core/model"
	"github.com/kilianp07/liftbank/infra/mqtt"
)

var (
	callFloor int
	callDir   string
)

var callCmd = &cobra.Command{
	Use:   "call",
	Short: "Press a hall button by publishing a call on the MQTT call topic",
	Args:  cobra.NoArgs,
	RunE:  publishCall,
}

func init() {
	callCmd.Flags().IntVar(&callFloor, "floor", 1, "floor the button is pressed on")
	callCmd.Flags().StringVar(&callDir, "dir", "up", "requested direction: up or down")
	rootCmd.AddCommand(callCmd)
}

func publishCall(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if !cfg.MQTTEnabled() {
		return fmt.Errorf("%w: mqtt.broker is not set", model.ErrInvalidConfiguration)
	}
	dir, err := model.ParseDirection(callDir)
	if err != nil {
		return err
	}
	call := model.Call{Floor: callFloor, Direction: dir}
	if err := call.Validate(cfg.Building.Floors); err != nil {
		return err
	}

	client, err := mqtt.NewPublisher(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("mqtt client: %w", err)
	}
	defer client.Disconnect()
	if err := client.PublishCall(call); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "published %s to %s\n", call, client.CallTopic())
	return nil
}
