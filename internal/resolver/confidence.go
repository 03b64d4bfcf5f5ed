package resolver

// fallbackCeiling keeps fallback resolutions strictly below the "ok"
// fingerprint tier so link-count heuristics can never read as a match.
const fallbackCeiling = 0.60

// fallbackConfidence maps the number of independently normalized platform
// links to a score. Monotonically increasing in the link count, capped at
// fallbackCeiling.
func fallbackConfidence(linkCount int) float64 {
	if linkCount <= 0 {
		return 0
	}
	c := 0.30 + 0.07*float64(linkCount-1)
	if c > fallbackCeiling {
		c = fallbackCeiling
	}
	return c
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
