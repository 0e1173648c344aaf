// Package scoring holds the data model, thresholds and input coercion for the
// Master Scoring Model. The scoring itself lives in the scorers subpackage.
package scoring

// MetricSet is the per-stock input to the scoring model.
// Growth rates and yields are percentages (12.5 means 12.5%).
type MetricSet struct {
	IndustryGrowth3yr        float64 `json:"industry_growth_3yr" yaml:"industry_growth_3yr"`
	NetProfitGrowth5yr       float64 `json:"net_profit_growth_5yr" yaml:"net_profit_growth_5yr"`
	PERatio                  float64 `json:"pe_ratio" yaml:"pe_ratio"`
	SectorPE                 float64 `json:"sector_pe" yaml:"sector_pe"`
	DividendYield            float64 `json:"dividend_yield" yaml:"dividend_yield"`
	DividendYearsConsecutive int     `json:"dividend_years_consecutive" yaml:"dividend_years_consecutive"`
	CompanyGrowthRate        float64 `json:"company_growth_rate" yaml:"company_growth_rate"`
	Beta                     float64 `json:"beta" yaml:"beta"`
}

// DefaultMetricSet returns the values used for every absent key.
func DefaultMetricSet() MetricSet {
	return MetricSet{Beta: DefaultBeta}
}

// AsMap renders the metric set with its wire keys.
func (m MetricSet) AsMap() map[string]interface{} {
	return map[string]interface{}{
		KeyIndustryGrowth3yr:        m.IndustryGrowth3yr,
		KeyNetProfitGrowth5yr:       m.NetProfitGrowth5yr,
		KeyPERatio:                  m.PERatio,
		KeySectorPE:                 m.SectorPE,
		KeyDividendYield:            m.DividendYield,
		KeyDividendYearsConsecutive: m.DividendYearsConsecutive,
		KeyCompanyGrowthRate:        m.CompanyGrowthRate,
		KeyBeta:                     m.Beta,
	}
}

// WeightSet holds percent-style weights for the five sub-scores.
// They are meant to sum to 100 but are never normalized.
type WeightSet struct {
	Industry    float64 `json:"industry" yaml:"industry"`
	Profit      float64 `json:"profit" yaml:"profit"`
	MOS         float64 `json:"mos" yaml:"mos"`
	YieldVal    float64 `json:"yield_val" yaml:"yield_val"`
	Competition float64 `json:"competition" yaml:"competition"`
}

// DefaultWeights returns the recommended 15/25/25/20/15 split.
func DefaultWeights() WeightSet {
	return WeightSet{
		Industry:    DefaultWeightIndustry,
		Profit:      DefaultWeightProfit,
		MOS:         DefaultWeightMOS,
		YieldVal:    DefaultWeightYield,
		Competition: DefaultWeightCompetition,
	}
}

// Total returns the sum of all weights.
func (w WeightSet) Total() float64 {
	return w.Industry + w.Profit + w.MOS + w.YieldVal + w.Competition
}

// AsMap renders the weight set with its wire keys.
func (w WeightSet) AsMap() map[string]float64 {
	return map[string]float64{
		WeightKeyIndustry:    w.Industry,
		WeightKeyProfit:      w.Profit,
		WeightKeyMOS:         w.MOS,
		WeightKeyYield:       w.YieldVal,
		WeightKeyCompetition: w.Competition,
	}
}

// RawScores are the tier values of the five sub-scores.
type RawScores struct {
	Industry    int `json:"industry"`
	Profit      int `json:"profit"`
	MOS         int `json:"mos"`
	Yield       int `json:"yield"`
	Competition int `json:"competition"`
}

// AsMap renders the raw scores keyed by sub-score name.
func (r RawScores) AsMap() map[string]int {
	return map[string]int{
		RawIndustry:    r.Industry,
		RawProfit:      r.Profit,
		RawMOS:         r.MOS,
		RawYield:       r.Yield,
		RawCompetition: r.Competition,
	}
}

// RiskBand is the investor profile implied by a target return.
type RiskBand string

const (
	RiskConservative RiskBand = "Conservative"
	RiskModerate     RiskBand = "Moderate"
	RiskAggressive   RiskBand = "Aggressive"
)

// RiskBandFor classifies a target return (%) into a risk band.
func RiskBandFor(targetReturn float64) RiskBand {
	switch {
	case targetReturn < ConservativeTargetBelow:
		return RiskConservative
	case targetReturn >= AggressiveTargetFrom:
		return RiskAggressive
	default:
		return RiskModerate
	}
}

// ScoreReport is the output of the scoring model.
type ScoreReport struct {
	BaseScore   float64   `json:"baseScore"`
	FinalScore  int       `json:"finalScore"`
	Grade       string    `json:"grade"`
	RiskMult    float64   `json:"riskMult"`
	RawScores   RawScores `json:"rawScores"`
	RiskProfile RiskBand  `json:"riskProfile"`
}
