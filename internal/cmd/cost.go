package cmd

import (
	"fmt"

	"github.com/fakelit/scalewatch/internal/config"
	"github.com/fakelit/scalewatch/internal/pricing"
	"github.com/fakelit/scalewatch/internal/sizing"
	"github.com/spf13/cobra"
)

var costCmd = &cobra.Command{
	Use:   "cost",
	Short: "Preview the cost and resources of the configured scale",
	Long: `Calculate the cost and resource spec of scaling from the current to
the target unit limit, without charging or scaling anything.`,
	RunE: runCost,
}

func init() {
	rootCmd.AddCommand(costCmd)
}

func runCost(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	gwCfg, ok := cfg.GatewayConfig(cfg.Gateway())
	if !ok {
		return fmt.Errorf("unknown payment gateway %q", cfg.Gateway())
	}

	cost, err := pricing.NewCalculator(gwCfg.Pricing).Calculate(cfg.Scaling.CurrentLimit, cfg.Scaling.TargetLimit)
	if err != nil {
		return err
	}
	spec := sizing.NewCalculator(sizing.DefaultCoefficients()).Required(cfg.Scaling.TargetLimit)

	fmt.Println(titleStyle.Render(fmt.Sprintf("Scaling %d -> %d units", cost.CurrentUnits, cost.TargetUnits)))
	fmt.Printf("%s %d\n", labelStyle.Render("Additional units:"), cost.AdditionalUnits)
	fmt.Printf("%s %.2f %s\n", labelStyle.Render("Units cost:"), cost.PerUnitCost, cost.Currency)
	fmt.Printf("%s %.2f %s\n", labelStyle.Render("Scaling fee:"), cost.ScalingFee, cost.Currency)
	fmt.Printf("%s %s\n", labelStyle.Render("Total:"),
		okStyle.Render(fmt.Sprintf("%.2f %s", cost.TotalCost, cost.Currency)))
	fmt.Println(sectionStyle.Render("Target server spec"))
	fmt.Printf("  %d GB RAM, %d cores, %d GB storage\n", spec.RAMGB, spec.CPUCores, spec.StorageGB)
	return nil
}
