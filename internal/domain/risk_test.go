package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name    string
		precip  Measurement
		tide    Measurement
		level   RiskLevel
		points  int
		reasons []string
	}{
		{
			name:    "heavy rain alone is moderate",
			precip:  Measured(35),
			tide:    Measured(0),
			level:   RiskModerate,
			points:  3,
			reasons: []string{"heavy rain: 35mm"},
		},
		{
			name:    "heavy rain with high tide",
			precip:  Measured(35),
			tide:    Measured(2.5),
			level:   RiskHigh,
			points:  7,
			reasons: []string{"heavy rain: 35mm", "high tide: 2.5m", "rain+tide combination"},
		},
		{
			name:    "calm conditions",
			precip:  Measured(5),
			tide:    Measured(0.5),
			level:   RiskLow,
			points:  0,
			reasons: []string{},
		},
		{
			name:    "moderate rain and moderate tide with combination",
			precip:  Measured(15),
			tide:    Measured(1.6),
			level:   RiskModerate,
			points:  4,
			reasons: []string{"moderate rain: 15mm", "moderate tide: 1.6m", "rain+tide combination"},
		},
		{
			name:    "high tide alone",
			precip:  Measured(0),
			tide:    Measured(2.1),
			level:   RiskModerate,
			points:  2,
			reasons: []string{"high tide: 2.1m"},
		},
		{
			name:    "moderate rain and high tide",
			precip:  Measured(12),
			tide:    Measured(2.2),
			level:   RiskHigh,
			points:  5,
			reasons: []string{"moderate rain: 12mm", "high tide: 2.2m", "rain+tide combination"},
		},
		{
			name:    "boundaries are exclusive",
			precip:  Measured(10),
			tide:    Measured(1.5),
			level:   RiskLow,
			points:  0,
			reasons: []string{},
		},
		{
			name:    "upper boundaries fall in the moderate band",
			precip:  Measured(30),
			tide:    Measured(2),
			level:   RiskModerate,
			points:  4,
			reasons: []string{"moderate rain: 30mm", "moderate tide: 2m", "rain+tide combination"},
		},
		{
			name:    "unknown readings count as zero",
			precip:  Unknown(),
			tide:    Unknown(),
			level:   RiskLow,
			points:  0,
			reasons: []string{},
		},
		{
			name:    "unknown rain with high tide",
			precip:  Unknown(),
			tide:    Measured(2.4),
			level:   RiskModerate,
			points:  2,
			reasons: []string{"high tide: 2.4m"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.precip, tt.tide)
			assert.Equal(t, tt.level, got.Level)
			assert.Equal(t, tt.points, got.Points)
			assert.Equal(t, tt.reasons, got.Reasons)
		})
	}
}

func TestScore_Deterministic(t *testing.T) {
	a := Score(Measured(22.5), Measured(1.9))
	b := Score(Measured(22.5), Measured(1.9))
	assert.Equal(t, a, b)
}

func TestRiskAssessment_DisplayReasons(t *testing.T) {
	t.Run("placeholder when empty", func(t *testing.T) {
		r := Score(Measured(5), Measured(0.5))
		assert.Equal(t, []string{NoSignificantFactors}, r.DisplayReasons())
	})

	t.Run("reasons when present", func(t *testing.T) {
		r := Score(Measured(35), Measured(0))
		assert.Equal(t, []string{"heavy rain: 35mm"}, r.DisplayReasons())
	})
}
