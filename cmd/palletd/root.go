package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "palletd",
	Short:         "palletd runs a modular pallet runtime",
	Long:          `palletd hosts a runtime composed of the system, balances and proof-of-existence pallets and executes the blocks a driver submits to it.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", "palletd.toml", "Path to the TOML configuration file")
}
