package clientdata

import "time"

// TTL constants for oracle responses.
// These are added to time.Now() when storing to calculate expires_at.
const (
	// Extracted metrics move with quarterly filings; a day keeps them reasonably current
	TTLMetrics = 24 * time.Hour

	// Suggested weights depend only on the project name and target return
	TTLWeights = 7 * 24 * time.Hour

	// Strategist analyses and verdict narration
	TTLNarrative = 6 * time.Hour
)
