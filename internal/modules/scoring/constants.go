package scoring

// Scoring Constants - All thresholds and weights for the Master Scoring Model.
// Growth, yield and return thresholds are expressed in percent (20 means 20%).

// =============================================================================
// Sub-score tiers
// =============================================================================

const (
	TierMax     = 100
	TierHigh    = 80
	TierMid     = 60
	TierFair    = 50
	TierLow     = 40
	TierFloor   = 30
	TierLaggard = 20
	TierNone    = 0
)

// Industry growth (3-year CAGR, %)
const (
	IndustryGrowthStrong   = 20.0
	IndustryGrowthModerate = 10.0
	IndustryGrowthFlat     = 0.0
)

// Net profit growth (5-year CAGR, %)
const (
	ProfitGrowthStrong   = 20.0
	ProfitGrowthModerate = 10.0
	ProfitGrowthLow      = 5.0
	ProfitGrowthFlat     = 0.0
)

// Margin of safety (discount of stock P/E against sector P/E, as a fraction)
const (
	MOSDeepDiscount = 0.20 // strictly greater than
	MOSDiscount     = 0.10
	MOSFairBand     = -0.10

	// Without a sector anchor a P/E in (0, FallbackMaxPE) counts as fair
	FallbackMaxPE = 20.0
)

// Dividend yield (%)
const (
	DividendYieldHigh      = 8.0
	DividendYieldGood      = 5.0
	DividendYieldModerate  = 3.0
	MinConsecutiveDivYears = 5 // Fewer paying years zeroes the yield score
)

// Competitiveness (company growth minus industry growth, percentage points)
const (
	CompetitionLeader = 15.0
	CompetitionAhead  = 5.0
	CompetitionParity = -5.0
)

// =============================================================================
// Risk multiplier
// =============================================================================

const (
	// Target return bands (%)
	ConservativeTargetBelow = 10.0
	AggressiveTargetFrom    = 15.0

	// Conservative: low beta preferred
	ConservativeLowBeta  = 0.8 // strictly below
	ConservativeMaxBeta  = 1.2 // inclusive
	ConservativeMultLow  = 1.0
	ConservativeMultMid  = 0.9
	ConservativeMultHigh = 0.5

	// Aggressive: high beta preferred, but not extreme
	AggressiveMinBeta     = 1.2
	AggressiveMaxBeta     = 2.5
	AggressiveMidBeta     = 0.9
	AggressiveMultInBand  = 1.0
	AggressiveMultMid     = 0.9
	AggressiveMultOutside = 0.6

	// Moderate: market-like beta preferred
	ModerateMinBeta     = 0.7
	ModerateMaxBeta     = 1.5
	ModerateMultInBand  = 1.0
	ModerateMultOutside = 0.8
)

// =============================================================================
// Grades
// =============================================================================

const (
	GradeA = "A"
	GradeB = "B"
	GradeC = "C"

	GradeAThreshold = 80
	GradeBThreshold = 60
)

// =============================================================================
// Defaults
// =============================================================================

const (
	DefaultBeta         = 1.0
	DefaultTargetReturn = 10.0

	DefaultWeightIndustry    = 15.0
	DefaultWeightProfit      = 25.0
	DefaultWeightMOS         = 25.0
	DefaultWeightYield       = 20.0
	DefaultWeightCompetition = 15.0
)

// Recognized MetricSet keys
const (
	KeyIndustryGrowth3yr        = "industry_growth_3yr"
	KeyNetProfitGrowth5yr       = "net_profit_growth_5yr"
	KeyPERatio                  = "pe_ratio"
	KeySectorPE                 = "sector_pe"
	KeyDividendYield            = "dividend_yield"
	KeyDividendYearsConsecutive = "dividend_years_consecutive"
	KeyCompanyGrowthRate        = "company_growth_rate"
	KeyBeta                     = "beta"
)

// Recognized WeightSet keys
const (
	WeightKeyIndustry    = "industry"
	WeightKeyProfit      = "profit"
	WeightKeyMOS         = "mos"
	WeightKeyYield       = "yield_val"
	WeightKeyCompetition = "competition"
)

// Raw score names as reported in ScoreReport.RawScores
const (
	RawIndustry    = "industry"
	RawProfit      = "profit"
	RawMOS         = "mos"
	RawYield       = "yield"
	RawCompetition = "competition"
)
