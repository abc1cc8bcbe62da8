package main

import (
	"os"

	"github.com/JonMunkholm/fleximart/internal/config"
	"github.com/JonMunkholm/fleximart/internal/logging"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "etl",
	Short: "Load FlexiMart extracts into the relational store",
	Long: `etl reads the customers, products and sales CSV extracts, cleans and
normalizes them, loads customers/products and orders/order_items in two
independent transactions, and writes a key: value data-quality report.

Settings come from an optional YAML file (--config or CONFIG_FILE) with
environment variables taking precedence.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.LoadFile(cfgFile)
		if err != nil {
			return err
		}
		logging.Setup(c.Logging.Level, c.Logging.Format)
		cfg = c
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", os.Getenv(config.EnvConfigFile), "YAML config `file`")
}
