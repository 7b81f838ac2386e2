package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"fraudlens/internal/domain/models"
)

func TestClassifyRisk(t *testing.T) {
	tests := []struct {
		score int
		level models.RiskLevel
		color string
	}{
		{100, models.RiskLevelCritical, ColorCritical},
		{90, models.RiskLevelCritical, ColorCritical},
		{89, models.RiskLevelHigh, ColorHigh},
		{70, models.RiskLevelHigh, ColorHigh},
		{69, models.RiskLevelModerate, ColorModerate},
		{45, models.RiskLevelModerate, ColorModerate},
		{44, models.RiskLevelLow, ColorLow},
		{20, models.RiskLevelLow, ColorLow},
		{19, models.RiskLevelClean, ColorClean},
		{0, models.RiskLevelClean, ColorClean},
	}

	for _, tt := range tests {
		level, color := ClassifyRisk(tt.score)
		assert.Equal(t, tt.level, level, "score %d", tt.score)
		assert.Equal(t, tt.color, color, "score %d", tt.score)
	}
}

func TestVerdictStatus(t *testing.T) {
	tests := []struct {
		score   int
		verdict models.Verdict
	}{
		{100, models.VerdictPotentialFraud},
		{80, models.VerdictPotentialFraud},
		{79, models.VerdictUnsafe},
		{40, models.VerdictUnsafe},
		{39, models.VerdictSafe},
		{0, models.VerdictSafe},
	}

	for _, tt := range tests {
		verdict, status := VerdictStatus(tt.score)
		assert.Equal(t, tt.verdict, verdict, "score %d", tt.score)
		assert.Equal(t, verdict, status)
	}
}

func TestVerdictIndependentOfRiskLevel(t *testing.T) {
	// 75 is High Risk on the five-tier scale but only UNSAFE as a verdict
	level, _ := ClassifyRisk(75)
	verdict, _ := VerdictStatus(75)
	assert.Equal(t, models.RiskLevelHigh, level)
	assert.Equal(t, models.VerdictUnsafe, verdict)

	// 42 is Low Risk but already UNSAFE
	level, _ = ClassifyRisk(42)
	verdict, _ = VerdictStatus(42)
	assert.Equal(t, models.RiskLevelLow, level)
	assert.Equal(t, models.VerdictUnsafe, verdict)
}

func TestSmallScore(t *testing.T) {
	assert.Equal(t, 0, SmallScore(0))
	assert.Equal(t, 0, SmallScore(4))
	assert.Equal(t, 1, SmallScore(5))
	assert.Equal(t, 6, SmallScore(64))
	assert.Equal(t, 7, SmallScore(65))
	assert.Equal(t, 10, SmallScore(95))
	assert.Equal(t, 10, SmallScore(100))
}

func TestClampScore(t *testing.T) {
	assert.Equal(t, 0, ClampScore(-5))
	assert.Equal(t, 0, ClampScore(0))
	assert.Equal(t, 55, ClampScore(55))
	assert.Equal(t, 100, ClampScore(100))
	assert.Equal(t, 100, ClampScore(143))
}
