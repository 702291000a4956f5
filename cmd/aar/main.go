package main

import (
	"os"

	"github.com/spf13/cobra"
)

// BuildVersion and BuildDate can be set at build time via ldflags
var (
	BuildVersion = "0.0.1"
	BuildDate    = "unknown"
)

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "aar",
		Short:         "After-action reports for Tacview combat flight logs",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.Version = BuildVersion
	root.SetVersionTemplate("{{.Version}}\n")
	root.PersistentFlags().String("config", ".", "directory holding aar.cfg.json and .env")
	root.AddCommand(resolveCmd())
	root.AddCommand(classifyCmd())
	root.AddCommand(versionCmd())
	return root
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
