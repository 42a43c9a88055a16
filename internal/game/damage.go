package game

import (
	"fmt"
	"math"
)

// floorTolerance keeps float products like 1.15*20 from flooring to 22.
const floorTolerance = 1e-9

// statBonusTable is the built-in additive team-stat bonus, evaluated before
// any roster ability.
var statBonusTable = []AbilityRule{
	{Kind: RuleAdditive, Match: Match{Categories: []Category{CategoryCost, CategoryCommon}}, Stat: StatAnalysis, Num: 1, Den: 2},
	{Kind: RuleAdditive, Match: Match{Categories: []Category{CategoryCapital}}, Stat: StatData, Num: 1, Den: 1},
	{Kind: RuleAdditive, Match: Match{Categories: []Category{CategoryRevenue}}, Stat: StatData, Num: 1, Den: 2},
	{Kind: RuleAdditive, Match: Match{Traits: []Trait{TraitHearing}}, Stat: StatPersuasion, Num: 1, Den: 2},
	{Kind: RuleAdditive, Match: Match{Traits: []Trait{TraitDocumentary}}, Stat: StatEvidence, Num: 1, Den: 2},
}

// DamageBreakdown records each step of the damage computation.
type DamageBreakdown struct {
	Scale          float64
	ScaledBase     int
	StatBonus      int // built-in team-stat part of Additive
	Additive       int
	SpecialMatched bool
	Multiplier     float64
	Final          int
}

func (d DamageBreakdown) String() string {
	return fmt.Sprintf("scale %.2f → %d, +%d, x%.2f = %d", d.Scale, d.ScaledBase, d.Additive, d.Multiplier, d.Final)
}

// Exposure is the result of applying damage to a tactic.
type Exposure struct {
	Direct    int
	Overkill  int
	ScoreGain int
	Cleared   bool // true only on the play that cleared the tactic
}

// Scale returns the damage scale factor for the current case:
// sqrt(target / reference), clamped to the rules' bounds.
func (b *Battle) Scale() float64 {
	ref := b.Case.Reference
	if ref <= 0 {
		ref = b.Rules.ScaleReference
	}
	s := math.Sqrt(float64(b.Case.Target) / float64(ref))
	return math.Min(math.Max(s, b.Rules.ScaleMin), b.Rules.ScaleMax)
}

// ComputeDamage previews the damage card would deal to t. It has no side
// effects.
func (b *Battle) ComputeDamage(card *CardInstance, t *Tactic) DamageBreakdown {
	c := card.Card
	d := DamageBreakdown{Scale: b.Scale(), Multiplier: 1.0}
	d.ScaledBase = floorf(float64(c.Damage) * d.Scale)

	for _, r := range statBonusTable {
		if r.Match.Card(c) {
			d.StatBonus += r.Additive(b.Stats)
		}
	}
	d.Additive = d.StatBonus
	for _, rr := range rosterRules(b.Team.Roster, RuleAdditive) {
		if rr.Rule.Match.Play(c, t, b.Case) {
			d.Additive += rr.Rule.Additive(b.Stats)
		}
	}

	if c.Bonus != nil && c.Bonus.Method == t.Method {
		d.SpecialMatched = true
		factor := c.Bonus.Multiplier
		for _, rr := range rosterRules(b.Team.Roster, RuleBonusDoubler) {
			if rr.Rule.Match.Play(c, t, b.Case) {
				factor *= 2
			}
		}
		d.Multiplier *= factor
	}
	for _, rr := range rosterRules(b.Team.Roster, RuleMultiplier) {
		if rr.Rule.Match.Play(c, t, b.Case) {
			d.Multiplier *= rr.Rule.Factor
		}
	}

	d.Final = floorf(float64(d.ScaledBase+d.Additive) * d.Multiplier)
	if d.Final < 0 {
		d.Final = 0
	}
	return d
}

// ApplyExposure applies damage to t and folds the score into the case. The
// part of the damage that fits under the threshold scores in full; overkill
// scores at Rules.OverkillPercent, floored.
func (b *Battle) ApplyExposure(t *Tactic, damage int) Exposure {
	direct, overkill, cleared := t.Expose(damage)
	e := Exposure{
		Direct:    direct,
		Overkill:  overkill,
		ScoreGain: direct + overkill*b.Rules.OverkillPercent/100,
		Cleared:   cleared,
	}
	b.Case.Collected += e.ScoreGain
	return e
}

func floorf(v float64) int {
	return int(math.Floor(v + floorTolerance))
}
