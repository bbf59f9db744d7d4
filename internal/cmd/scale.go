package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	scaleYes    bool
	scaleTarget int
)

var scaleCmd = &cobra.Command{
	Use:   "scale",
	Short: "Run one scaling operation now",
	Long: `Trigger a scaling operation immediately, without waiting for the
capacity threshold. The full pipeline runs: cost calculation, payment,
spec calculation and the provider resize.`,
	RunE: runScale,
}

func init() {
	scaleCmd.Flags().BoolVarP(&scaleYes, "yes", "y", false, "skip the confirmation prompt")
	scaleCmd.Flags().IntVarP(&scaleTarget, "target", "t", 0, "target unit limit (default scaling.target_limit)")
	rootCmd.AddCommand(scaleCmd)
}

func runScale(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if scaleTarget > 0 {
		cfg.Scaling.TargetLimit = scaleTarget
	}

	rt, err := buildMonitor(cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	// The effective limit may have been advanced past the configured one from
	// a completed scale in the history, so validate against the monitor's
	// restored state rather than the raw config.
	current := rt.monitor.Status().CurrentLimit
	if err := checkScaleTarget(cfg.Scaling.TargetLimit, current); err != nil {
		return err
	}

	if !scaleYes {
		gwCfg, _ := cfg.GatewayConfig(cfg.Gateway())
		fmt.Printf("Scale server %s from %d to %d units", cfg.Cloudways.ServerID,
			current, cfg.Scaling.TargetLimit)
		if cfg.Scaling.RequirePayment {
			fmt.Printf(" (charged via %s in %s)", cfg.Gateway(), gwCfg.Pricing.Currency)
		}
		fmt.Print("? [y/N] ")
		var answer string
		_, _ = fmt.Scanln(&answer)
		if answer != "y" && answer != "Y" && answer != "yes" {
			fmt.Println("Aborted")
			return nil
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := rt.monitor.Trigger(ctx, true); err != nil {
		return err
	}

	status := rt.monitor.Status()
	fmt.Println(okStyle.Render(fmt.Sprintf("Scaled to %d units", status.CurrentLimit)))
	return nil
}

// checkScaleTarget rejects targets at or below the effective unit limit.
func checkScaleTarget(target, currentLimit int) error {
	if target <= currentLimit {
		return fmt.Errorf("target %d must be above the current limit %d", target, currentLimit)
	}
	return nil
}
