package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "flockr",
	Short: "Flockr — team messaging backend",
	Long:  "Flockr is the backend for a team messaging platform, providing account management, channels, messaging with reactions and pins, deferred sends, and channel standups over an HTTP API.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: configs/flockr.yaml)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
