package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/aristath/stockscorer/internal/modules/scoring"
	"github.com/aristath/stockscorer/internal/modules/scoring/scorers"
)

type scoreOpts struct {
	metricsPath  string
	weightsPath  string
	targetReturn float64
	outputFmt    string
}

func newScoreCmd() *cobra.Command {
	var opts scoreOpts

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score one stock from a metrics file",
		Long: `Reads a flat map of metrics (and optionally weights) from YAML or JSON files.
Missing or unparseable values fall back to the model defaults. Without
--weights the default weights are used.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScore(cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.metricsPath, "metrics", "", "Path to metrics YAML/JSON file (required)")
	cmd.Flags().StringVar(&opts.weightsPath, "weights", "", "Path to weights YAML/JSON file")
	cmd.Flags().Float64Var(&opts.targetReturn, "target-return", scoring.DefaultTargetReturn, "Target annual return in percent")
	cmd.Flags().StringVar(&opts.outputFmt, "output", "text", "Output format: text or json")
	_ = cmd.MarkFlagRequired("metrics")

	return cmd
}

func runScore(out io.Writer, opts scoreOpts) error {
	if opts.outputFmt != "text" && opts.outputFmt != "json" {
		return fmt.Errorf("unknown output format %q (want text or json)", opts.outputFmt)
	}

	metrics, err := readMap(opts.metricsPath)
	if err != nil {
		return fmt.Errorf("reading metrics: %w", err)
	}

	weights := scoring.DefaultWeights()
	if opts.weightsPath != "" {
		raw, err := readMap(opts.weightsPath)
		if err != nil {
			return fmt.Errorf("reading weights: %w", err)
		}
		weights = scoring.WeightSetFromMap(raw)
	}

	report := scorers.Score(scoring.MetricSetFromMap(metrics), weights, opts.targetReturn)

	if opts.outputFmt == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	_, err = io.WriteString(out, renderReport(report, weights, opts.targetReturn))
	return err
}

// readMap decodes a YAML or JSON document holding a single mapping.
func readMap(path string) (map[string]interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	raw := make(map[string]interface{})
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return raw, nil
}

func renderReport(report scoring.ScoreReport, weights scoring.WeightSet, targetReturn float64) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Final score: %d (Grade %s)\n", report.FinalScore, report.Grade)
	fmt.Fprintf(&b, "Base score:  %.1f\n", report.BaseScore)
	fmt.Fprintf(&b, "Risk:        x%g (%s, target %g%%)\n", report.RiskMult, report.RiskProfile, targetReturn)
	b.WriteString("Sub-scores:\n")
	fmt.Fprintf(&b, "  industry     %3d  weight %g\n", report.RawScores.Industry, weights.Industry)
	fmt.Fprintf(&b, "  profit       %3d  weight %g\n", report.RawScores.Profit, weights.Profit)
	fmt.Fprintf(&b, "  mos          %3d  weight %g\n", report.RawScores.MOS, weights.MOS)
	fmt.Fprintf(&b, "  yield        %3d  weight %g\n", report.RawScores.Yield, weights.YieldVal)
	fmt.Fprintf(&b, "  competition  %3d  weight %g\n", report.RawScores.Competition, weights.Competition)

	return b.String()
}
