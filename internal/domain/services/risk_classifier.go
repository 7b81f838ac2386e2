package services

import (
	"math"

	"fraudlens/internal/domain/models"
)

// Display colors per risk level
const (
	ColorCritical = "#b00020"
	ColorHigh     = "#ff4500"
	ColorModerate = "#ff8c00"
	ColorLow      = "#f2c94c"
	ColorClean    = "#32a852"
)

// ClassifyRisk maps a score to its five-tier risk level and display color
func ClassifyRisk(score int) (models.RiskLevel, string) {
	switch {
	case score >= 90:
		return models.RiskLevelCritical, ColorCritical
	case score >= 70:
		return models.RiskLevelHigh, ColorHigh
	case score >= 45:
		return models.RiskLevelModerate, ColorModerate
	case score >= 20:
		return models.RiskLevelLow, ColorLow
	default:
		return models.RiskLevelClean, ColorClean
	}
}

// VerdictStatus maps a score to the three-tier verdict and status labels.
// It is deliberately independent of ClassifyRisk.
func VerdictStatus(score int) (verdict, status models.Verdict) {
	switch {
	case score >= 80:
		return models.VerdictPotentialFraud, models.VerdictPotentialFraud
	case score >= 40:
		return models.VerdictUnsafe, models.VerdictUnsafe
	default:
		return models.VerdictSafe, models.VerdictSafe
	}
}

// SmallScore compresses a score to the 0-10 display range
func SmallScore(score int) int {
	return int(math.Floor(float64(score)/10 + 0.5))
}

// ClampScore bounds a raw score to [MinScore, MaxScore]
func ClampScore(score int) int {
	switch {
	case score < models.MinScore:
		return models.MinScore
	case score > models.MaxScore:
		return models.MaxScore
	default:
		return score
	}
}
