// Package cmd is portalctl, the CLI front end for the portal client
// library, grounded on the teacher's cmd/root.go: persistent flags bound
// to viper keys, cobra.OnInitialize wiring config load and logger init.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	configs "github.com/thirdweb-dev/portal-client/configs"
	customLogger "github.com/thirdweb-dev/portal-client/internal/log"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "portalctl",
	Short: "Stream finalized blockchain history from a thirdweb portal",
	Long:  "portalctl drives the finalized streaming client against a portal server: print the finalized height, stream NDJSON to stdout, or run the debug/metrics server.",
}

// Execute runs the CLI, exiting with status 1 on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./configs/config.yml)")
	rootCmd.PersistentFlags().String("portal-url", "", "Base URL of the portal server")
	rootCmd.PersistentFlags().Int("portal-minBytes", 0, "Block buffer low-water mark in bytes")
	rootCmd.PersistentFlags().Int("portal-maxBytes", 0, "Block buffer high-water mark in bytes")
	rootCmd.PersistentFlags().String("log-level", "", "Log level to use for the application")
	rootCmd.PersistentFlags().Bool("log-pretty", false, "Whether to prettify the log output")

	viper.BindPFlag("portal.url", rootCmd.PersistentFlags().Lookup("portal-url"))
	viper.BindPFlag("portal.minBytes", rootCmd.PersistentFlags().Lookup("portal-minBytes"))
	viper.BindPFlag("portal.maxBytes", rootCmd.PersistentFlags().Lookup("portal-maxBytes"))
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log.pretty", rootCmd.PersistentFlags().Lookup("log-pretty"))

	rootCmd.AddCommand(streamCmd)
	rootCmd.AddCommand(heightCmd)
	rootCmd.AddCommand(serveCmd)
}

func initConfig() {
	if err := configs.LoadConfig(cfgFile); err != nil {
		// config is optional for portalctl — flags and env vars alone
		// are a valid configuration, so a missing file is not fatal.
		_ = err
	}
	customLogger.InitLogger()
}
