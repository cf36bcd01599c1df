package sponsors

import (
	"fmt"
	"math"
	"strings"
)

// Tier is a sponsor's display category. Tiers are ordered so that
// Small < Medium < Large.
type Tier int

const (
	Small Tier = iota
	Medium
	Large
)

// String returns the lower-case tier name used in config files and CSS classes.
func (t Tier) String() string {
	switch t {
	case Small:
		return "small"
	case Medium:
		return "medium"
	case Large:
		return "large"
	default:
		return fmt.Sprintf("tier(%d)", int(t))
	}
}

// ParseTier converts a tier name back to a Tier. Matching ignores case and
// surrounding space.
func ParseTier(s string) (Tier, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "small":
		return Small, nil
	case "medium":
		return Medium, nil
	case "large":
		return Large, nil
	}
	return 0, &ConfigError{Field: "tier", Reason: fmt.Sprintf("unknown tier %q", s)}
}

func (t Tier) MarshalText() ([]byte, error) {
	if t < Small || t > Large {
		return nil, &ConfigError{Field: "tier", Reason: fmt.Sprintf("unknown tier %d", int(t))}
	}
	return []byte(t.String()), nil
}

func (t *Tier) UnmarshalText(text []byte) error {
	parsed, err := ParseTier(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// DefaultTierOrder is the render order used when none is configured.
func DefaultTierOrder() []Tier {
	return []Tier{Large, Medium, Small}
}

// Thresholds are the minimum weights for the large and medium tiers.
// There is no default; callers must always supply both values.
type Thresholds struct {
	Large  float64 `json:"large"`
	Medium float64 `json:"medium"`
}

// Validate requires Large >= Medium >= 0.
func (th Thresholds) Validate() error {
	if math.IsNaN(th.Large) || math.IsNaN(th.Medium) {
		return &ConfigError{Field: "thresholds", Reason: "must be numbers"}
	}
	if th.Medium < 0 {
		return &ConfigError{Field: "thresholds.medium", Reason: fmt.Sprintf("must not be negative, got %g", th.Medium)}
	}
	if th.Large < th.Medium {
		return &ConfigError{Field: "thresholds", Reason: fmt.Sprintf("large (%g) must be >= medium (%g)", th.Large, th.Medium)}
	}
	return nil
}

// Assign returns the tier for a weight. The thresholds are assumed valid.
func (th Thresholds) Assign(weight float64) Tier {
	switch {
	case weight >= th.Large:
		return Large
	case weight >= th.Medium:
		return Medium
	default:
		return Small
	}
}
