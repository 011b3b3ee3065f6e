package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev" // Overwritten at build time

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "resolver",
		Short: "In-product support resolver",
		Long: `resolver diagnoses a user-visible failure against a support knowledge corpus,
attempts a consented remediation and compiles an escalation ticket when it fails.`,
		SilenceUsage: true,
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to configuration file (defaults to $MIRADOR_RESOLVER_CONFIG)")

	rootCmd.AddCommand(
		newServeCmd(&configPath),
		newRunCmd(&configPath),
		newCorpusCmd(&configPath),
		newCallCmd(&configPath),
		newVersionCmd(),
	)
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "resolver %s\n", version)
		},
	}
}
