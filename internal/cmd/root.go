package cmd

import (
	"strings"

	"github.com/fakelit/scalewatch/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "scalewatch",
	Short: "Cloudways capacity monitor and auto-scaler",
	Long: `Scalewatch watches a Cloudways server for application capacity,
and when the configured threshold is crossed it charges the scaling
cost through the configured payment gateway and resizes the server.`,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/scalewatch/config.json)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("json")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath("$HOME/.config/scalewatch")
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("SCALEWATCH")
	// Replace dots with underscores for nested keys in env vars
	// e.g., SCALEWATCH_CLOUDWAYS_API_KEY for cloudways.api_key
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}
