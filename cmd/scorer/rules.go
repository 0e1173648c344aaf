package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/aristath/stockscorer/internal/modules/scoring"
)

func newRulesCmd() *cobra.Command {
	var outputFmt string

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Print the scoring rule table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRules(cmd.OutOrStdout(), outputFmt)
		},
	}

	cmd.Flags().StringVar(&outputFmt, "output", "text", "Output format: text or json")

	return cmd
}

func runRules(out io.Writer, outputFmt string) error {
	switch outputFmt {
	case "text":
		_, err := io.WriteString(out, scoring.Rules().Text())
		return err
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(scoring.Rules())
	default:
		return fmt.Errorf("unknown output format %q (want text or json)", outputFmt)
	}
}
