package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fakelit/scalewatch/internal/errors"
	"github.com/spf13/cobra"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the capacity monitor",
	Long: `Start the monitor loop. The monitor probes the Cloudways server on the
configured interval and scales it when the capacity threshold is crossed.
Runs in the foreground until interrupted.`,
	RunE: runStart,
}

func init() {
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	rt, err := buildMonitor(cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if addr := cfg.Monitoring.MetricsAddr; addr != "" {
		go func() {
			if err := rt.metrics.Serve(addr); err != nil {
				rt.logger.Error("metrics listener failed", "addr", addr, "error", err)
			}
		}()
	}

	fmt.Printf("Monitoring server %s (threshold %d, target %d units)\n",
		cfg.Cloudways.ServerID, cfg.Scaling.ScalingThreshold, cfg.Scaling.TargetLimit)

	if err := rt.monitor.Run(ctx); err != nil && !errors.Is(err, errors.ErrMonitorStopped) {
		return err
	}
	fmt.Println("Monitor stopped")
	return nil
}
