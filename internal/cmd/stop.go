package cmd

import (
	"fmt"

	"github.com/fakelit/scalewatch/internal/config"
	"github.com/fakelit/scalewatch/internal/monitor"
	"github.com/spf13/cobra"
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop a running monitor",
	Long:  `Send SIGTERM to the monitor process recorded in the pidfile.`,
	RunE:  runStop,
}

func init() {
	rootCmd.AddCommand(stopCmd)
}

func runStop(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := monitor.SignalStop(cfg.Monitoring.PidPath()); err != nil {
		return err
	}
	fmt.Println("Stop signal sent")
	return nil
}
