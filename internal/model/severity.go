package model

// RiskLevel is the banded interpretation of an aggregate vulnerability score.
//
// Design decision: We use iota-based constants rather than string constants
// for efficiency in comparisons and sorting. The String() method provides
// human-readable output and JSON encoding uses it via MarshalText.
type RiskLevel int

const (
	// RiskLow means only the baseline or little more is covered (score < 45).
	RiskLow RiskLevel = iota

	// RiskMedium means a noticeable part of the catalog is exposed (45-59).
	RiskMedium

	// RiskHigh means a large part of the catalog is exposed (60-79).
	RiskHigh

	// RiskCritical means most of the catalog is exposed (80+).
	RiskCritical
)

// Risk band lower bounds on the 30-100 aggregate scale.
const (
	riskMediumFloor   = 45.0
	riskHighFloor     = 60.0
	riskCriticalFloor = 80.0
)

// String returns a human-readable representation of the risk level.
func (r RiskLevel) String() string {
	switch r {
	case RiskLow:
		return "LOW"
	case RiskMedium:
		return "MEDIUM"
	case RiskHigh:
		return "HIGH"
	case RiskCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (r RiskLevel) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *RiskLevel) UnmarshalText(text []byte) error {
	*r = ParseRiskLevel(string(text))
	return nil
}

// ParseRiskLevel converts a string to RiskLevel. Unknown values map to RiskLow.
func ParseRiskLevel(s string) RiskLevel {
	switch s {
	case "MEDIUM":
		return RiskMedium
	case "HIGH":
		return RiskHigh
	case "CRITICAL":
		return RiskCritical
	default:
		return RiskLow
	}
}

// RiskForScore returns the risk band of an aggregate score.
func RiskForScore(score float64) RiskLevel {
	switch {
	case score >= riskCriticalFloor:
		return RiskCritical
	case score >= riskHighFloor:
		return RiskHigh
	case score >= riskMediumFloor:
		return RiskMedium
	default:
		return RiskLow
	}
}
