package scoring

import (
	"fmt"
	"strings"
)

// Tier is one row of a sub-score rule.
type Tier struct {
	Condition string `json:"condition"`
	Score     int    `json:"score"`
}

// Rule describes how one sub-score is derived.
type Rule struct {
	Name          string  `json:"name"`
	Factor        string  `json:"factor"`
	Input         string  `json:"input"`
	DefaultWeight float64 `json:"default_weight"`
	Tiers         []Tier  `json:"tiers"`
	Note          string  `json:"note,omitempty"`
}

// RiskTier is one row of a risk band's multiplier schedule.
type RiskTier struct {
	Condition  string  `json:"condition"`
	Multiplier float64 `json:"multiplier"`
}

// RiskRule describes the multiplier schedule of one risk band.
type RiskRule struct {
	Band        RiskBand   `json:"band"`
	TargetRange string     `json:"target_range"`
	Tiers       []RiskTier `json:"tiers"`
}

// GradeTier maps a minimum final score to a grade.
type GradeTier struct {
	Grade     string `json:"grade"`
	MinFinal  int    `json:"min_final,omitempty"`
	Otherwise bool   `json:"otherwise,omitempty"`
}

// RuleBook is the complete, human-readable description of the model.
type RuleBook struct {
	SubScores []Rule      `json:"sub_scores"`
	Risk      []RiskRule  `json:"risk"`
	Grades    []GradeTier `json:"grades"`
	Formula   string      `json:"formula"`
}

// Rules renders the model's thresholds. Prompts that ask the oracle to explain
// a score are built from this so the text cannot drift from the constants.
func Rules() RuleBook {
	return RuleBook{
		SubScores: []Rule{
			{
				Name:          RawIndustry,
				Factor:        "Industry growth",
				Input:         KeyIndustryGrowth3yr + " (3yr CAGR %)",
				DefaultWeight: DefaultWeightIndustry,
				Tiers: []Tier{
					{fmt.Sprintf(">= %g", IndustryGrowthStrong), TierMax},
					{fmt.Sprintf(">= %g", IndustryGrowthModerate), TierHigh},
					{fmt.Sprintf(">= %g", IndustryGrowthFlat), TierMid},
					{"otherwise", TierNone},
				},
			},
			{
				Name:          RawProfit,
				Factor:        "Net profit growth",
				Input:         KeyNetProfitGrowth5yr + " (5yr CAGR %)",
				DefaultWeight: DefaultWeightProfit,
				Tiers: []Tier{
					{fmt.Sprintf(">= %g", ProfitGrowthStrong), TierMax},
					{fmt.Sprintf(">= %g", ProfitGrowthModerate), TierHigh},
					{fmt.Sprintf(">= %g", ProfitGrowthLow), TierMid},
					{fmt.Sprintf(">= %g", ProfitGrowthFlat), TierLow},
					{"otherwise", TierNone},
				},
			},
			{
				Name:          RawMOS,
				Factor:        "Margin of safety",
				Input:         "(sector_pe - pe_ratio) / sector_pe",
				DefaultWeight: DefaultWeightMOS,
				Tiers: []Tier{
					{fmt.Sprintf("> %g", MOSDeepDiscount), TierMax},
					{fmt.Sprintf(">= %g", MOSDiscount), TierHigh},
					{fmt.Sprintf(">= %g", MOSFairBand), TierFair},
					{"otherwise", TierNone},
				},
				Note: fmt.Sprintf("without sector P/E: 0 < pe_ratio < %g scores %d, otherwise %d",
					FallbackMaxPE, TierFair, TierNone),
			},
			{
				Name:          RawYield,
				Factor:        "Dividend yield",
				Input:         KeyDividendYield + " (%)",
				DefaultWeight: DefaultWeightYield,
				Tiers: []Tier{
					{fmt.Sprintf(">= %g", DividendYieldHigh), TierMax},
					{fmt.Sprintf(">= %g", DividendYieldGood), TierHigh},
					{fmt.Sprintf(">= %g", DividendYieldModerate), TierMid},
					{"otherwise", TierFloor},
				},
				Note: fmt.Sprintf("fewer than %d consecutive dividend years scores %d",
					MinConsecutiveDivYears, TierNone),
			},
			{
				Name:          RawCompetition,
				Factor:        "Competitiveness",
				Input:         "company_growth_rate - industry_growth_3yr",
				DefaultWeight: DefaultWeightCompetition,
				Tiers: []Tier{
					{fmt.Sprintf(">= %g", CompetitionLeader), TierMax},
					{fmt.Sprintf(">= %g", CompetitionAhead), TierHigh},
					{fmt.Sprintf(">= %g", CompetitionParity), TierFair},
					{"otherwise", TierLaggard},
				},
			},
		},
		Risk: []RiskRule{
			{
				Band:        RiskConservative,
				TargetRange: fmt.Sprintf("< %g%%", ConservativeTargetBelow),
				Tiers: []RiskTier{
					{fmt.Sprintf("beta < %g", ConservativeLowBeta), ConservativeMultLow},
					{fmt.Sprintf("beta <= %g", ConservativeMaxBeta), ConservativeMultMid},
					{"otherwise", ConservativeMultHigh},
				},
			},
			{
				Band:        RiskModerate,
				TargetRange: fmt.Sprintf("%g-%g%%", ConservativeTargetBelow, AggressiveTargetFrom),
				Tiers: []RiskTier{
					{fmt.Sprintf("%g <= beta <= %g", ModerateMinBeta, ModerateMaxBeta), ModerateMultInBand},
					{"otherwise", ModerateMultOutside},
				},
			},
			{
				Band:        RiskAggressive,
				TargetRange: fmt.Sprintf(">= %g%%", AggressiveTargetFrom),
				Tiers: []RiskTier{
					{fmt.Sprintf("%g <= beta <= %g", AggressiveMinBeta, AggressiveMaxBeta), AggressiveMultInBand},
					{fmt.Sprintf("%g <= beta < %g", AggressiveMidBeta, AggressiveMinBeta), AggressiveMultMid},
					{"otherwise", AggressiveMultOutside},
				},
			},
		},
		Grades: []GradeTier{
			{Grade: GradeA, MinFinal: GradeAThreshold},
			{Grade: GradeB, MinFinal: GradeBThreshold},
			{Grade: GradeC, Otherwise: true},
		},
		Formula: "base = sum(tier * weight) / 100; final = trunc(base * risk_multiplier)",
	}
}

// Text renders the rule book as plain text for prompts and the CLI.
func (rb RuleBook) Text() string {
	var b strings.Builder

	b.WriteString("Sub-scores (weights are percent, default in brackets):\n")
	for i, rule := range rb.SubScores {
		fmt.Fprintf(&b, "%d. %s [%g%%] on %s:", i+1, rule.Factor, rule.DefaultWeight, rule.Input)
		for _, tier := range rule.Tiers {
			fmt.Fprintf(&b, " %s=%d;", tier.Condition, tier.Score)
		}
		if rule.Note != "" {
			fmt.Fprintf(&b, " (%s)", rule.Note)
		}
		b.WriteString("\n")
	}

	b.WriteString("Risk multiplier by target return:\n")
	for _, risk := range rb.Risk {
		fmt.Fprintf(&b, "- %s (%s):", risk.Band, risk.TargetRange)
		for _, tier := range risk.Tiers {
			fmt.Fprintf(&b, " %s: x%g;", tier.Condition, tier.Multiplier)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Grades: A if final >= %d, B if final >= %d, otherwise C.\n", GradeAThreshold, GradeBThreshold)
	b.WriteString(rb.Formula)
	b.WriteString("\n")

	return b.String()
}
