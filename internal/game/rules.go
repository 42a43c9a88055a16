package game

import (
	"errors"
	"fmt"
)

// Rules holds every tuning constant the engine reads. Zero values are not
// meaningful; start from DefaultRules.
type Rules struct {
	HandSize        int     `yaml:"hand_size" env:"HAND_SIZE"`
	ClaimPenalty    int     `yaml:"claim_penalty" env:"CLAIM_PENALTY"`
	CategoryPenalty int     `yaml:"category_penalty" env:"CATEGORY_PENALTY"`
	ScaleReference  int     `yaml:"scale_reference" env:"SCALE_REFERENCE"`
	ScaleMin        float64 `yaml:"scale_min" env:"SCALE_MIN"`
	ScaleMax        float64 `yaml:"scale_max" env:"SCALE_MAX"`
	OverkillPercent int     `yaml:"overkill_percent" env:"OVERKILL_PERCENT"`
	LogCapacity     int     `yaml:"log_capacity" env:"LOG_CAPACITY"`
	RosterSize      int     `yaml:"roster_size" env:"ROSTER_SIZE"`
	DraftOffer      int     `yaml:"draft_offer" env:"DRAFT_OFFER"`
	MaxTurns        int     `yaml:"max_turns" env:"MAX_TURNS"`
	MinTeamHP       int     `yaml:"min_team_hp" env:"MIN_TEAM_HP"`
}

// DefaultRules returns the standard tuning.
func DefaultRules() Rules {
	return Rules{
		HandSize:        5,
		ClaimPenalty:    10,
		CategoryPenalty: 5,
		ScaleReference:  500,
		ScaleMin:        0.5,
		ScaleMax:        2.0,
		OverkillPercent: 50,
		LogCapacity:     50,
		RosterSize:      3,
		DraftOffer:      6,
		MaxTurns:        60,
		MinTeamHP:       1,
	}
}

// Validate checks that the rules can drive an encounter.
func (r Rules) Validate() error {
	var errs []error
	if r.HandSize < 1 {
		errs = append(errs, fmt.Errorf("hand_size must be >= 1, got %d", r.HandSize))
	}
	if r.ClaimPenalty < 0 || r.CategoryPenalty < 0 {
		errs = append(errs, errors.New("penalties must be >= 0"))
	}
	if r.ScaleReference <= 0 {
		errs = append(errs, fmt.Errorf("scale_reference must be > 0, got %d", r.ScaleReference))
	}
	if r.ScaleMin <= 0 || r.ScaleMax < r.ScaleMin {
		errs = append(errs, fmt.Errorf("scale bounds must satisfy 0 < min <= max, got %g..%g", r.ScaleMin, r.ScaleMax))
	}
	if r.OverkillPercent < 0 || r.OverkillPercent > 100 {
		errs = append(errs, fmt.Errorf("overkill_percent must be within 0..100, got %d", r.OverkillPercent))
	}
	if r.RosterSize < 1 {
		errs = append(errs, fmt.Errorf("roster_size must be >= 1, got %d", r.RosterSize))
	}
	if r.DraftOffer < r.RosterSize {
		errs = append(errs, fmt.Errorf("draft_offer (%d) must be >= roster_size (%d)", r.DraftOffer, r.RosterSize))
	}
	if r.MaxTurns < 1 {
		errs = append(errs, fmt.Errorf("max_turns must be >= 1, got %d", r.MaxTurns))
	}
	return errors.Join(errs...)
}
