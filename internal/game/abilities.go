package game

import (
	"fmt"
	"slices"
)

// AbilityID names a roster ability in AbilityTable.
type AbilityID string

// RuleKind says at which point of the pipeline a rule is evaluated.
type RuleKind int

const (
	RuleCostPercent  RuleKind = iota // cost step (a): reduce by Percent%
	RuleCostFlat                     // cost step (a): reduce by Flat
	RuleFirstCard                    // cost step (b): first paid card of the turn costs Flat less
	RuleTeamDiscount                 // cost step (c): arms a Flat one-shot team discount every turn
	RuleStatBonus                    // battle start: Stat += Flat
	RuleFocusBonus                   // turn start: max focus += Flat
	RuleGrantCard                    // turn start: grant Grant once per battle when Stat >= Threshold
	RuleAdditive                     // damage: + Stat*Num/Den
	RuleBonusDoubler                 // damage: doubles an already matched special bonus
	RuleMultiplier                   // damage: *= Factor
)

func (k RuleKind) String() string {
	switch k {
	case RuleCostPercent:
		return "cost_percent"
	case RuleCostFlat:
		return "cost_flat"
	case RuleFirstCard:
		return "first_card"
	case RuleTeamDiscount:
		return "team_discount"
	case RuleStatBonus:
		return "stat_bonus"
	case RuleFocusBonus:
		return "focus_bonus"
	case RuleGrantCard:
		return "grant_card"
	case RuleAdditive:
		return "additive"
	case RuleBonusDoubler:
		return "bonus_doubler"
	case RuleMultiplier:
		return "multiplier"
	default:
		return "unknown"
	}
}

// Match is a declarative trigger condition. Every non-empty field must be
// satisfied; an empty Match always holds.
type Match struct {
	Traits     []Trait      // card carries any of these
	Categories []Category   // card lists any of these
	Claims     []ClaimType  // target tactic has any of these
	Methods    []MethodType // target tactic's method is one of these
	Sizes      []SizeClass  // case size is one of these
}

// Card checks the card-side conditions only.
func (m Match) Card(c *Card) bool {
	if len(m.Traits) > 0 && !slices.ContainsFunc(m.Traits, c.HasTrait) {
		return false
	}
	if len(m.Categories) > 0 && !slices.ContainsFunc(m.Categories, c.HasCategory) {
		return false
	}
	return true
}

// Play checks both card-side and target-side conditions.
func (m Match) Play(c *Card, t *Tactic, cs *Case) bool {
	if !m.Card(c) {
		return false
	}
	if len(m.Claims) > 0 && !slices.ContainsFunc(m.Claims, func(cl ClaimType) bool {
		return slices.Contains(t.Claims, cl)
	}) {
		return false
	}
	if len(m.Methods) > 0 && !slices.Contains(m.Methods, t.Method) {
		return false
	}
	if len(m.Sizes) > 0 && !slices.Contains(m.Sizes, cs.Size) {
		return false
	}
	return true
}

// AbilityRule is one predicate→effect entry.
type AbilityRule struct {
	Kind      RuleKind
	Match     Match
	Percent   int
	Flat      int
	Stat      Stat
	Num, Den  int
	Factor    float64
	Threshold int
	Grant     string
}

// Additive evaluates a RuleAdditive against team stats.
func (r AbilityRule) Additive(s Stats) int {
	den := r.Den
	if den == 0 {
		den = 1
	}
	return s.Get(r.Stat) * r.Num / den
}

// Ability is a member's passive.
type Ability struct {
	ID    AbilityID
	Name  string
	Text  string
	Rules []AbilityRule
}

// AbilityTable maps ability IDs to their rule lists. Rules fire in roster
// order, then in the order listed here.
var AbilityTable = map[AbilityID]*Ability{
	"ledger_hound": {
		ID: "ledger_hound", Name: "Ledger Hound",
		Text: "Forensic cards cost 50% less. Capital cards gain half of Data.",
		Rules: []AbilityRule{
			{Kind: RuleCostPercent, Match: Match{Traits: []Trait{TraitForensic}}, Percent: 50},
			{Kind: RuleAdditive, Match: Match{Categories: []Category{CategoryCapital}}, Stat: StatData, Num: 1, Den: 2},
		},
	},
	"closing_argument": {
		ID: "closing_argument", Name: "Closing Argument",
		Text: "Hearing cards gain full Persuasion.",
		Rules: []AbilityRule{
			{Kind: RuleAdditive, Match: Match{Traits: []Trait{TraitHearing}}, Stat: StatPersuasion, Num: 1, Den: 1},
		},
	},
	"early_start": {
		ID: "early_start", Name: "Early Start",
		Text: "The first card each turn costs 1 less.",
		Rules: []AbilityRule{
			{Kind: RuleFirstCard, Flat: 1},
		},
	},
	"war_room": {
		ID: "war_room", Name: "War Room",
		Text: "Each turn, the next card the team pays for costs 1 less.",
		Rules: []AbilityRule{
			{Kind: RuleTeamDiscount, Flat: 1},
		},
	},
	"double_check": {
		ID: "double_check", Name: "Double Check",
		Text: "Special bonuses that apply are doubled.",
		Rules: []AbilityRule{
			{Kind: RuleBonusDoubler},
		},
	},
	"big_game": {
		ID: "big_game", Name: "Big Game Hunter",
		Text: "x1.5 damage against large cases and conglomerates.",
		Rules: []AbilityRule{
			{Kind: RuleMultiplier, Match: Match{Sizes: []SizeClass{SizeLarge, SizeConglomerate}}, Factor: 1.5},
		},
	},
	"honest_mistakes": {
		ID: "honest_mistakes", Name: "Honest Mistakes",
		Text: "x1.25 damage against error tactics. Inspection cards gain a third of Analysis.",
		Rules: []AbilityRule{
			{Kind: RuleMultiplier, Match: Match{Methods: []MethodType{MethodError}}, Factor: 1.25},
			{Kind: RuleAdditive, Match: Match{Traits: []Trait{TraitInspection}}, Stat: StatAnalysis, Num: 1, Den: 3},
		},
	},
	"vat_specialist": {
		ID: "vat_specialist", Name: "VAT Specialist",
		Text: "Revenue cards cost 1 less. x1.3 damage against VAT tactics.",
		Rules: []AbilityRule{
			{Kind: RuleCostFlat, Match: Match{Categories: []Category{CategoryRevenue}}, Flat: 1},
			{Kind: RuleMultiplier, Match: Match{Claims: []ClaimType{ClaimVAT}}, Factor: 1.3},
		},
	},
	"deep_reserves": {
		ID: "deep_reserves", Name: "Deep Reserves",
		Text: "+1 focus every turn.",
		Rules: []AbilityRule{
			{Kind: RuleFocusBonus, Flat: 1},
		},
	},
	"data_lake": {
		ID: "data_lake", Name: "Data Lake",
		Text: "+4 Data. Once per case, with 20+ Data, start a turn with a Data Mining Run.",
		Rules: []AbilityRule{
			{Kind: RuleStatBonus, Stat: StatData, Flat: 4},
			{Kind: RuleGrantCard, Stat: StatData, Threshold: 20, Grant: "Data Mining Run"},
		},
	},
	"paper_trail": {
		ID: "paper_trail", Name: "Paper Trail",
		Text: "Documentary cards gain half of Evidence. Once per case, with 15+ Evidence, start a turn with a Subpoena.",
		Rules: []AbilityRule{
			{Kind: RuleAdditive, Match: Match{Traits: []Trait{TraitDocumentary}}, Stat: StatEvidence, Num: 1, Den: 2},
			{Kind: RuleGrantCard, Stat: StatEvidence, Threshold: 15, Grant: "Subpoena"},
		},
	},
}

// LookupAbility returns the ability for id.
func LookupAbility(id AbilityID) (*Ability, error) {
	a, ok := AbilityTable[id]
	if !ok {
		return nil, fmt.Errorf("unknown ability %q", id)
	}
	return a, nil
}

// rosterRule is a rule together with the member it belongs to.
type rosterRule struct {
	Member *Member
	Rule   AbilityRule
	Index  int // position among all rules of the roster, used for once-per-battle tracking
}

// rosterRules returns all rules of the given kind in priority order:
// roster order first, then the ability's own rule order.
func rosterRules(roster []*Member, kind RuleKind) []rosterRule {
	return rosterRulesOf(roster, kind)
}
