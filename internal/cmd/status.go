package cmd

import (
	"fmt"

	"github.com/fakelit/scalewatch/internal/config"
	"github.com/fakelit/scalewatch/internal/history"
	"github.com/fakelit/scalewatch/internal/monitor"
	"github.com/fakelit/scalewatch/internal/payment"
	"github.com/fakelit/scalewatch/internal/util"
	"github.com/spf13/cobra"
)

// alertWidth bounds alert and error lines so long gateway messages do not
// wrap the status table.
const alertWidth = 100

var statusLimit int

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show monitor and scaling history status",
	Long: `Display whether a monitor process is running, the recent scaling
history, recent alerts and the payments audit log. Works without
provider or gateway credentials.`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().IntVarP(&statusLimit, "limit", "n", 5, "number of history entries to show")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	// Credentials are deliberately not validated here: status must work on
	// an unconfigured machine.
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fmt.Println(titleStyle.Render("scalewatch"))

	if pid, ok := monitor.ReadPidFile(cfg.Monitoring.PidPath()); ok {
		fmt.Printf("%s %s\n", labelStyle.Render("Monitor:"), okStyle.Render(fmt.Sprintf("running (pid %d)", pid)))
	} else {
		fmt.Printf("%s %s\n", labelStyle.Render("Monitor:"), mutedStyle.Render("not running"))
	}
	fmt.Printf("%s %s\n", labelStyle.Render("Server:"), cfg.Cloudways.ServerID)
	fmt.Printf("%s %d -> %d units (threshold %d)\n", labelStyle.Render("Scaling:"),
		cfg.Scaling.CurrentLimit, cfg.Scaling.TargetLimit, cfg.Scaling.ScalingThreshold)
	fmt.Printf("%s %s\n", labelStyle.Render("Gateway:"), cfg.Gateway())

	if err := printHistory(cfg); err != nil {
		return err
	}
	if err := printAlerts(cfg); err != nil {
		return err
	}
	return printPayments(cfg)
}

func printHistory(cfg *config.Config) error {
	events, err := history.NewStore(cfg.Monitoring.HistoryPath()).Load()
	if err != nil {
		return fmt.Errorf("loading history: %w", err)
	}

	fmt.Println(sectionStyle.Render("Scaling history"))
	if len(events) == 0 {
		fmt.Println(mutedStyle.Render("  no scaling events"))
		return nil
	}

	for _, ev := range tail(events, statusLimit) {
		line := fmt.Sprintf("  %s  %s  %d -> %d units",
			ev.Timestamp.Format("2006-01-02 15:04:05"),
			statusStyle(ev.Status).Render(fmt.Sprintf("%-11s", ev.Status)),
			ev.CurrentUnits, ev.TargetUnits)
		if ev.Cost.TotalCost > 0 {
			line += fmt.Sprintf("  %.2f %s", ev.Cost.TotalCost, ev.Cost.Currency)
		}
		if ev.Refunded {
			line += warnStyle.Render("  refunded")
		}
		fmt.Println(line)
		if ev.Error != "" {
			fmt.Printf("      %s\n", util.TruncateANSI(errStyle.Render(ev.FailedStep+": "+ev.Error), alertWidth))
		}
	}
	return nil
}

func printAlerts(cfg *config.Config) error {
	alerts, err := history.NewAlertLog(cfg.Monitoring.AlertPath()).Load()
	if err != nil {
		return fmt.Errorf("loading alerts: %w", err)
	}
	if len(alerts) == 0 {
		return nil
	}

	fmt.Println(sectionStyle.Render("Recent alerts"))
	for _, a := range tail(alerts, statusLimit) {
		style := mutedStyle
		switch a.Severity {
		case history.SeverityWarning:
			style = warnStyle
		case history.SeverityCritical:
			style = errStyle
		}
		fmt.Printf("  %s  %s  %s\n",
			a.Timestamp.Format("2006-01-02 15:04:05"),
			style.Render(fmt.Sprintf("%-8s", a.Severity)),
			util.Truncate(a.Message, alertWidth))
	}
	return nil
}

func printPayments(cfg *config.Config) error {
	entries, err := payment.NewLog(cfg.Monitoring.PaymentLogPath()).Load()
	if err != nil {
		return fmt.Errorf("loading payment log: %w", err)
	}
	if len(entries) == 0 {
		return nil
	}

	fmt.Println(sectionStyle.Render("Payments"))
	for _, e := range tail(entries, statusLimit) {
		outcome := okStyle.Render("ok")
		if !e.Success {
			outcome = errStyle.Render("failed")
		}
		fmt.Printf("  %s  %-6s  %8.2f  %s  %s\n",
			e.Timestamp.Format("2006-01-02 15:04:05"),
			e.Type, e.Amount, e.Gateway, outcome)
	}
	return nil
}

// tail returns the last n elements of s.
func tail[T any](s []T, n int) []T {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
