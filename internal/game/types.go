package game

import "fmt"

// --- Enums ---

type Phase int

const (
	PhaseNone Phase = iota
	PhaseTurnStart
	PhaseAction
	PhaseTurnEnd
	PhaseOpponent
	PhaseEndCheck
	PhaseOver
)

func (p Phase) String() string {
	switch p {
	case PhaseTurnStart:
		return "Turn Start"
	case PhaseAction:
		return "Action"
	case PhaseTurnEnd:
		return "Turn End"
	case PhaseOpponent:
		return "Opponent"
	case PhaseEndCheck:
		return "End Check"
	case PhaseOver:
		return "Closed"
	default:
		return "None"
	}
}

// Outcome is the terminal state of an encounter.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeVictory
	OutcomeDefeat
)

func (o Outcome) String() string {
	switch o {
	case OutcomeVictory:
		return "victory"
	case OutcomeDefeat:
		return "defeat"
	default:
		return "ongoing"
	}
}

// ClaimType is the legal/financial classification of a tactic.
// ClaimCommon on a card matches any claim type.
type ClaimType int

const (
	ClaimCommon ClaimType = iota
	ClaimCorporate
	ClaimIncome
	ClaimVAT
	ClaimWithholding
	ClaimTransferPricing
	ClaimInheritance
)

var claimNames = map[ClaimType]string{
	ClaimCommon:          "common",
	ClaimCorporate:       "corporate",
	ClaimIncome:          "income",
	ClaimVAT:             "vat",
	ClaimWithholding:     "withholding",
	ClaimTransferPricing: "transfer_pricing",
	ClaimInheritance:     "inheritance",
}

func (c ClaimType) String() string { return enumString(claimNames, c) }

func (c ClaimType) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *ClaimType) UnmarshalText(b []byte) error { return enumParse(claimNames, "claim type", b, c) }

// Category is the economic nature of a tactic. CategoryCommon on a card
// matches any category.
type Category int

const (
	CategoryCommon Category = iota
	CategoryCost
	CategoryRevenue
	CategoryCapital
)

var categoryNames = map[Category]string{
	CategoryCommon:  "common",
	CategoryCost:    "cost",
	CategoryRevenue: "revenue",
	CategoryCapital: "capital",
}

func (c Category) String() string { return enumString(categoryNames, c) }

func (c Category) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *Category) UnmarshalText(b []byte) error { return enumParse(categoryNames, "category", b, c) }

// MethodType is how the issue behind a tactic arose.
type MethodType int

const (
	MethodConcealment MethodType = iota
	MethodError
	MethodStructure
)

var methodNames = map[MethodType]string{
	MethodConcealment: "concealment",
	MethodError:       "error",
	MethodStructure:   "structure",
}

func (m MethodType) String() string { return enumString(methodNames, m) }

func (m MethodType) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *MethodType) UnmarshalText(b []byte) error { return enumParse(methodNames, "method type", b, m) }

type SizeClass int

const (
	SizeSmall SizeClass = iota
	SizeMedium
	SizeLarge
	SizeConglomerate
)

var sizeNames = map[SizeClass]string{
	SizeSmall:        "small",
	SizeMedium:       "medium",
	SizeLarge:        "large",
	SizeConglomerate: "conglomerate",
}

func (s SizeClass) String() string { return enumString(sizeNames, s) }

func (s SizeClass) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *SizeClass) UnmarshalText(b []byte) error { return enumParse(sizeNames, "size class", b, s) }

// Trait is an explicit rules tag on a card. Bonus rules key on traits
// instead of card names.
type Trait int

const (
	TraitHearing Trait = iota
	TraitDocumentary
	TraitForensic
	TraitInspection
)

var traitNames = map[Trait]string{
	TraitHearing:     "hearing",
	TraitDocumentary: "documentary",
	TraitForensic:    "forensic",
	TraitInspection:  "inspection",
}

func (t Trait) String() string { return enumString(traitNames, t) }

func (t Trait) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *Trait) UnmarshalText(b []byte) error { return enumParse(traitNames, "trait", b, t) }

// Stat is one of the four aggregated team stats.
type Stat int

const (
	StatAnalysis Stat = iota
	StatData
	StatPersuasion
	StatEvidence
)

var statNames = map[Stat]string{
	StatAnalysis:   "analysis",
	StatData:       "data",
	StatPersuasion: "persuasion",
	StatEvidence:   "evidence",
}

func (s Stat) String() string { return enumString(statNames, s) }

func (s Stat) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Stat) UnmarshalText(b []byte) error { return enumParse(statNames, "stat", b, s) }

type CardKind int

const (
	CardOffensive CardKind = iota
	CardUtility
)

var cardKindNames = map[CardKind]string{
	CardOffensive: "offensive",
	CardUtility:   "utility",
}

func (k CardKind) String() string { return enumString(cardKindNames, k) }

func (k CardKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *CardKind) UnmarshalText(b []byte) error { return enumParse(cardKindNames, "card kind", b, k) }

type EffectKind int

const (
	EffectDraw EffectKind = iota
	EffectSearch
)

var effectKindNames = map[EffectKind]string{
	EffectDraw:   "draw",
	EffectSearch: "search",
}

func (k EffectKind) String() string { return enumString(effectKindNames, k) }

func (k EffectKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *EffectKind) UnmarshalText(b []byte) error { return enumParse(effectKindNames, "effect", b, k) }

func enumString[T comparable](names map[T]string, v T) string {
	if s, ok := names[v]; ok {
		return s
	}
	return "unknown"
}

func enumParse[T comparable](names map[T]string, what string, b []byte, out *T) error {
	for v, s := range names {
		if s == string(b) {
			*out = v
			return nil
		}
	}
	return fmt.Errorf("unknown %s %q", what, string(b))
}

// --- Action types ---

type ActionType int

const (
	ActionSelectCard ActionType = iota
	ActionTarget
	ActionUseUtility
	ActionAutoPlay
	ActionCancel
	ActionEndTurn
)

func (a ActionType) String() string {
	switch a {
	case ActionSelectCard:
		return "Select Card"
	case ActionTarget:
		return "Target"
	case ActionUseUtility:
		return "Use Utility"
	case ActionAutoPlay:
		return "Auto Play"
	case ActionCancel:
		return "Cancel"
	case ActionEndTurn:
		return "End Turn"
	default:
		return "Unknown"
	}
}

// Action represents a team command with all necessary details.
type Action struct {
	Type      ActionType
	HandIndex int // index into the hand for card actions
	Objective int // index into the case's tactics for ActionTarget
	Card      *CardInstance
	Desc      string // human-readable description
}

func (a Action) String() string {
	if a.Desc != "" {
		return a.Desc
	}
	return a.Type.String()
}
