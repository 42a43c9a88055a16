package game

import (
	"fmt"
	"slices"
)

// --- Content definitions (static, read-only, supplied by the catalog) ---

// Stats are the four team stats a member contributes to.
type Stats struct {
	Analysis   int `yaml:"analysis" json:"analysis"`
	Data       int `yaml:"data" json:"data"`
	Persuasion int `yaml:"persuasion" json:"persuasion"`
	Evidence   int `yaml:"evidence" json:"evidence"`
}

// Get returns the value of a single stat.
func (s Stats) Get(stat Stat) int {
	switch stat {
	case StatAnalysis:
		return s.Analysis
	case StatData:
		return s.Data
	case StatPersuasion:
		return s.Persuasion
	case StatEvidence:
		return s.Evidence
	}
	return 0
}

// Add returns s with delta added to one stat.
func (s Stats) Add(stat Stat, delta int) Stats {
	switch stat {
	case StatAnalysis:
		s.Analysis += delta
	case StatData:
		s.Data += delta
	case StatPersuasion:
		s.Persuasion += delta
	case StatEvidence:
		s.Evidence += delta
	}
	return s
}

// Plus returns the stat-wise sum.
func (s Stats) Plus(o Stats) Stats {
	return Stats{
		Analysis:   s.Analysis + o.Analysis,
		Data:       s.Data + o.Data,
		Persuasion: s.Persuasion + o.Persuasion,
		Evidence:   s.Evidence + o.Evidence,
	}
}

// Member is a drafted team member template.
type Member struct {
	Name    string    `yaml:"name"`
	Tier    int       `yaml:"tier"`
	Focus   int       `yaml:"focus"`   // action-point capacity
	Stamina int       `yaml:"stamina"` // contribution to team max HP
	Stats   Stats     `yaml:"stats"`
	Ability AbilityID `yaml:"ability"`
}

func (m *Member) String() string {
	return m.Name
}

// SpecialBonus multiplies damage when the target's method type matches.
type SpecialBonus struct {
	Method     MethodType `yaml:"method"`
	Multiplier float64    `yaml:"multiplier"`
}

// CardEffect is a draw or search-and-draw effect.
type CardEffect struct {
	Kind  EffectKind `yaml:"kind"`
	Count int        `yaml:"count"`
	Trait Trait      `yaml:"trait"` // search only
}

// Card is a card template.
type Card struct {
	Name       string        `yaml:"name"`
	Text       string        `yaml:"text"`
	Kind       CardKind      `yaml:"kind"`
	Cost       int           `yaml:"cost"`
	Damage     int           `yaml:"damage"`
	Claims     []ClaimType   `yaml:"claims"`
	Categories []Category    `yaml:"categories"`
	Traits     []Trait       `yaml:"traits"`
	Bonus      *SpecialBonus `yaml:"bonus"`
	Effect     *CardEffect   `yaml:"effect"`
}

func (c *Card) String() string {
	return c.Name
}

// IsUtility reports whether the card resolves without a target.
func (c *Card) IsUtility() bool {
	return c.Kind == CardUtility
}

// HasTrait reports whether the card carries t.
func (c *Card) HasTrait(t Trait) bool {
	return slices.Contains(c.Traits, t)
}

// HasCategory reports whether the card lists cat explicitly.
func (c *Card) HasCategory(cat Category) bool {
	return slices.Contains(c.Categories, cat)
}

// MatchesClaim reports whether the card may be played against a tactic with
// the given claim types.
func (c *Card) MatchesClaim(claims []ClaimType) bool {
	if slices.Contains(c.Claims, ClaimCommon) {
		return true
	}
	for _, cl := range claims {
		if slices.Contains(c.Claims, cl) {
			return true
		}
	}
	return false
}

// MatchesCategory reports whether the card may be played against a tactic of
// the given category.
func (c *Card) MatchesCategory(cat Category) bool {
	return slices.Contains(c.Categories, CategoryCommon) || slices.Contains(c.Categories, cat)
}

// drawsOnArrival reports whether the card resolves automatically on draw.
func (c *Card) drawsOnArrival() bool {
	return c.IsUtility() && c.Effect != nil && c.Effect.Kind == EffectDraw && c.Effect.Count > 0
}

// ObjectiveTemplate is a tactic as written in the catalog.
type ObjectiveTemplate struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Threshold   int         `yaml:"threshold"`
	Claims      []ClaimType `yaml:"claims"`
	Method      MethodType  `yaml:"method"`
	Category    Category    `yaml:"category"`
}

// CaseTemplate is an opposing entity as written in the catalog. It is never
// mutated; encounters work on an Instantiate copy.
type CaseTemplate struct {
	Name       string              `yaml:"name"`
	Size       SizeClass           `yaml:"size"`
	Reference  int                 `yaml:"reference"` // 0 = Rules.ScaleReference
	Target     int                 `yaml:"target"`
	DamageMin  int                 `yaml:"damage_min"`
	DamageMax  int                 `yaml:"damage_max"`
	Objectives []ObjectiveTemplate `yaml:"objectives"`
	Actions    []string            `yaml:"actions"`
}

type ArtifactTrigger int

const (
	TriggerTurnStart ArtifactTrigger = iota
	TriggerBattleStart
	TriggerCost
)

var triggerNames = map[ArtifactTrigger]string{
	TriggerTurnStart:   "turn_start",
	TriggerBattleStart: "battle_start",
	TriggerCost:        "cost",
}

func (t ArtifactTrigger) String() string { return enumString(triggerNames, t) }

func (t ArtifactTrigger) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *ArtifactTrigger) UnmarshalText(b []byte) error {
	return enumParse(triggerNames, "artifact trigger", b, t)
}

type ArtifactKind int

const (
	ArtifactStat ArtifactKind = iota
	ArtifactDraw
	ArtifactFocus
	ArtifactCardCost
)

var artifactKindNames = map[ArtifactKind]string{
	ArtifactStat:     "stat",
	ArtifactDraw:     "draw",
	ArtifactFocus:    "focus",
	ArtifactCardCost: "card_cost",
}

func (k ArtifactKind) String() string { return enumString(artifactKindNames, k) }

func (k ArtifactKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *ArtifactKind) UnmarshalText(b []byte) error {
	return enumParse(artifactKindNames, "artifact kind", b, k)
}

// Artifact is a passive item held by the team.
type Artifact struct {
	Name        string          `yaml:"name"`
	Description string          `yaml:"description"`
	Trigger     ArtifactTrigger `yaml:"trigger"`
	Kind        ArtifactKind    `yaml:"kind"`
	Magnitude   int             `yaml:"magnitude"`
	Stat        Stat            `yaml:"stat"` // ArtifactStat only
	Card        string          `yaml:"card"` // ArtifactCardCost only, exact card name
}

// Valid reports whether the trigger/kind pair is one the engine applies.
func (a *Artifact) Valid() error {
	switch {
	case a.Trigger == TriggerBattleStart && (a.Kind == ArtifactStat || a.Kind == ArtifactDraw):
	case a.Trigger == TriggerTurnStart && (a.Kind == ArtifactFocus || a.Kind == ArtifactDraw):
	case a.Trigger == TriggerCost && a.Kind == ArtifactCardCost:
		if a.Card == "" {
			return fmt.Errorf("artifact %q: card_cost needs a card name", a.Name)
		}
	default:
		return fmt.Errorf("artifact %q: %s trigger cannot carry a %s effect", a.Name, a.Trigger, a.Kind)
	}
	return nil
}

// Catalog is the read-only content set the engine consumes.
type Catalog struct {
	Members   []*Member
	Cards     []*Card
	Cases     []*CaseTemplate
	Artifacts []*Artifact
	// StarterDeck lists card names, with repeats, that make up a new run's deck.
	StarterDeck []string
}

// Card looks up a card template by exact name.
func (c *Catalog) Card(name string) (*Card, error) {
	for _, card := range c.Cards {
		if card.Name == name {
			return card, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownCard, name)
}

// Member looks up a member template by exact name.
func (c *Catalog) Member(name string) (*Member, error) {
	for _, m := range c.Members {
		if m.Name == name {
			return m, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownMember, name)
}

// Case looks up a case template by exact name.
func (c *Catalog) Case(name string) (*CaseTemplate, error) {
	for _, ct := range c.Cases {
		if ct.Name == name {
			return ct, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownCase, name)
}

// Artifact looks up an artifact template by exact name.
func (c *Catalog) Artifact(name string) (*Artifact, error) {
	for _, a := range c.Artifacts {
		if a.Name == name {
			return a, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownArtifact, name)
}
