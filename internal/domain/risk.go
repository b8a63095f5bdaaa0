package domain

// RiskLevel classifies flood risk.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskModerate RiskLevel = "moderate"
	RiskHigh     RiskLevel = "high"
)

// NoSignificantFactors is displayed when no scoring rule fired.
const NoSignificantFactors = "no significant factors"

// Scoring thresholds. Rain is in mm, tide in m. Each bound is exclusive.
const (
	heavyRainAbove    = 30.0
	moderateRainAbove = 10.0
	highTideAbove     = 2.0
	moderateTideAbove = 1.5

	heavyRainPoints    = 3
	moderateRainPoints = 1
	highTidePoints     = 2
	moderateTidePoints = 1
	combinationPoints  = 2

	highRiskMinPoints     = 5
	moderateRiskMinPoints = 2
)

// RiskAssessment is the outcome of scoring one set of readings. Reasons are
// ordered rain, tide, then combination.
type RiskAssessment struct {
	Level   RiskLevel `json:"level"`
	Points  int       `json:"points"`
	Reasons []string  `json:"reasons"`
}

// Score accumulates risk points from precipitation and tide height. Unknown
// readings count as zero. The rain+tide bonus is added on top of the
// individual rain and tide points.
func Score(precip, tide Measurement) RiskAssessment {
	p := precip.OrZero()
	h := tide.OrZero()

	points := 0
	reasons := make([]string, 0, 3)

	switch {
	case p > heavyRainAbove:
		points += heavyRainPoints
		reasons = append(reasons, "heavy rain: "+formatNumber(p)+"mm")
	case p > moderateRainAbove:
		points += moderateRainPoints
		reasons = append(reasons, "moderate rain: "+formatNumber(p)+"mm")
	}

	switch {
	case h > highTideAbove:
		points += highTidePoints
		reasons = append(reasons, "high tide: "+formatNumber(h)+"m")
	case h > moderateTideAbove:
		points += moderateTidePoints
		reasons = append(reasons, "moderate tide: "+formatNumber(h)+"m")
	}

	if p > moderateRainAbove && h > moderateTideAbove {
		points += combinationPoints
		reasons = append(reasons, "rain+tide combination")
	}

	return RiskAssessment{
		Level:   classify(points),
		Points:  points,
		Reasons: reasons,
	}
}

func classify(points int) RiskLevel {
	switch {
	case points >= highRiskMinPoints:
		return RiskHigh
	case points >= moderateRiskMinPoints:
		return RiskModerate
	default:
		return RiskLow
	}
}

// DisplayReasons returns the reasons, or a single placeholder entry when none fired.
func (r RiskAssessment) DisplayReasons() []string {
	if len(r.Reasons) == 0 {
		return []string{NoSignificantFactors}
	}
	return r.Reasons
}
