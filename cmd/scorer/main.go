// Package main provides the scorer CLI, an offline front end to the scoring model.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aristath/stockscorer/internal/version"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "scorer",
		Short: "Score stocks with the Master Scoring Model",
		Long: `Scorer reads company metrics from YAML or JSON files and prints the
weighted score, risk multiplier and grade without contacting any service.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newScoreCmd(),
		newRulesCmd(),
		newVersionCmd(),
	)

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the scorer version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "scorer %s\n", version.Version)
			return err
		},
	}
}
