package game

import (
	"context"
	"fmt"
	"testing"

	"github.com/peterkuimelis/casefile/internal/log"
)

// ScriptedController is a TeamController that follows a predefined script of
// actions. Used in tests to deterministically drive a battle.
type ScriptedController struct {
	t       *testing.T
	name    string
	actions []ScriptedAction
	pos     int

	// For ChooseMembers prompts
	members []string
}

type ScriptedAction struct {
	// Match by ActionType; picks the first action of this type
	Type ActionType
	// Optional: match by card name as well
	CardName string
	// Optional: target objective index (ActionTarget only)
	Objective int
}

func NewScriptedController(t *testing.T, name string) *ScriptedController {
	return &ScriptedController{t: t, name: name}
}

func (sc *ScriptedController) AddAction(actionType ActionType, cardName string) *ScriptedController {
	sc.actions = append(sc.actions, ScriptedAction{Type: actionType, CardName: cardName})
	return sc
}

// AddPlay scripts the two-step select → target sequence.
func (sc *ScriptedController) AddPlay(cardName string, objective int) *ScriptedController {
	sc.actions = append(sc.actions,
		ScriptedAction{Type: ActionSelectCard, CardName: cardName},
		ScriptedAction{Type: ActionTarget, CardName: cardName, Objective: objective},
	)
	return sc
}

func (sc *ScriptedController) AddMembers(names ...string) *ScriptedController {
	sc.members = names
	return sc
}

func (sc *ScriptedController) ChooseAction(ctx context.Context, b *Battle, actions []Action) (Action, error) {
	if sc.pos < len(sc.actions) {
		// Peek at next scripted action. Only consume it if it matches an available action.
		// This allows scripts to span multiple turns without scripting every EndTurn.
		scripted := sc.actions[sc.pos]
		for _, a := range actions {
			if a.Type != scripted.Type {
				continue
			}
			if scripted.CardName != "" && (a.Card == nil || a.Card.Card.Name != scripted.CardName) {
				continue
			}
			if scripted.Type == ActionTarget && a.Objective != scripted.Objective {
				continue
			}
			sc.pos++
			return a, nil
		}
	}

	// Default: EndTurn > Cancel > last action
	for _, a := range actions {
		if a.Type == ActionEndTurn {
			return a, nil
		}
	}
	for _, a := range actions {
		if a.Type == ActionCancel {
			return a, nil
		}
	}
	return actions[len(actions)-1], nil
}

func (sc *ScriptedController) ChooseMembers(ctx context.Context, offer []*Member, n int) ([]*Member, error) {
	if len(sc.members) == 0 {
		return offer[:n], nil
	}
	var picked []*Member
	for _, name := range sc.members {
		for _, m := range offer {
			if m.Name == name {
				picked = append(picked, m)
				break
			}
		}
	}
	if len(picked) != n {
		return nil, fmt.Errorf("[%s] member choice: wanted %v but only found %d in offer", sc.name, sc.members, len(picked))
	}
	return picked, nil
}

func (sc *ScriptedController) Notify(ctx context.Context, event log.GameEvent) error {
	return nil
}

// --- Test content helpers ---

func member(name string, focus, stamina int, ability AbilityID) *Member {
	return &Member{Name: name, Tier: 1, Focus: focus, Stamina: stamina, Ability: ability}
}

// clerks is a roster with 3 focus, 30 HP and no abilities or stats.
func clerks() []*Member {
	return []*Member{
		member("Clerk A", 1, 10, ""),
		member("Clerk B", 1, 10, ""),
		member("Clerk C", 1, 10, ""),
	}
}

// offensive creates an offensive card matching any claim type and category.
func offensive(name string, cost, damage int) *Card {
	return &Card{
		Name:       name,
		Kind:       CardOffensive,
		Cost:       cost,
		Damage:     damage,
		Claims:     []ClaimType{ClaimCommon},
		Categories: []Category{CategoryCommon},
	}
}

func tagged(c *Card, claims []ClaimType, cats []Category, traits ...Trait) *Card {
	c.Claims = claims
	c.Categories = cats
	c.Traits = traits
	return c
}

func drawUtility(name string, cost, count int) *Card {
	return &Card{
		Name:       name,
		Kind:       CardUtility,
		Cost:       cost,
		Claims:     []ClaimType{ClaimCommon},
		Categories: []Category{CategoryCommon},
		Effect:     &CardEffect{Kind: EffectDraw, Count: count},
	}
}

func searchUtility(name string, cost, count int, trait Trait) *Card {
	return &Card{
		Name:       name,
		Kind:       CardUtility,
		Cost:       cost,
		Claims:     []ClaimType{ClaimCommon},
		Categories: []Category{CategoryCommon},
		Effect:     &CardEffect{Kind: EffectSearch, Count: count, Trait: trait},
	}
}

// filler is never affordable, so auto-play ignores it.
var filler = offensive("Filler Memo", 99, 0)

func objective(name string, threshold int, claims []ClaimType, method MethodType, cat Category) ObjectiveTemplate {
	return ObjectiveTemplate{Name: name, Threshold: threshold, Claims: claims, Method: method, Category: cat}
}

// caseOf builds a case with scale 1.0 (target 500) that never hits back.
func caseOf(name string, objectives ...ObjectiveTemplate) *CaseTemplate {
	return &CaseTemplate{Name: name, Size: SizeMedium, Target: 500, Objectives: objectives}
}

func incomeCost(name string, threshold int) ObjectiveTemplate {
	return objective(name, threshold, []ClaimType{ClaimIncome}, MethodConcealment, CategoryCost)
}

// makePaddedDeck creates a deck with specified cards on top (drawn first) and
// filler below to reach a minimum size. topCards index 0 is drawn first.
func makePaddedDeck(topCards []*Card, minSize int) []*Card {
	deck := make([]*Card, 0, minSize)
	for i := 0; i < minSize-len(topCards); i++ {
		deck = append(deck, filler)
	}
	for i := len(topCards) - 1; i >= 0; i-- {
		deck = append(deck, topCards[i])
	}
	return deck
}

// newTeam builds a team with the deck placed in the draw pile as given.
func newTeam(roster []*Member, deck []*Card) *Team {
	team := &Team{Roster: roster}
	for _, m := range roster {
		team.MaxHP += m.Stamina
	}
	team.HP = team.MaxHP
	for _, c := range deck {
		team.Piles.Draw = append(team.Piles.Draw, team.NewCard(c))
	}
	return team
}

type battleOpts struct {
	roster    []*Member
	deck      []*Card
	artifacts []*Artifact
	catalog   *Catalog
	rules     *Rules
	seed      uint64
	shuffle   bool
}

// newTestBattle creates and begins a battle with a memory logger. The draw
// pile keeps its order unless shuffle is set.
func newTestBattle(t *testing.T, tmpl *CaseTemplate, o battleOpts) (*Battle, *log.MemoryLogger) {
	t.Helper()
	if o.roster == nil {
		o.roster = clerks()
	}
	rules := DefaultRules()
	if o.rules != nil {
		rules = *o.rules
	}
	cat := o.catalog
	if cat == nil {
		cat = &Catalog{}
	}
	team := newTeam(o.roster, o.deck)
	team.Artifacts = o.artifacts
	logger := log.NewMemoryLogger()
	b := NewBattle(BattleConfig{
		Team:      team,
		Case:      tmpl,
		Catalog:   cat,
		Rules:     rules,
		RNG:       NewRNG(o.seed),
		Logger:    logger,
		NoShuffle: !o.shuffle,
	})
	b.Begin()
	return b, logger
}

func handNames(b *Battle) []string {
	names := make([]string, len(b.Team.Piles.Hand))
	for i, ci := range b.Team.Piles.Hand {
		names[i] = ci.Card.Name
	}
	return names
}

func findInHand(t *testing.T, b *Battle, name string) int {
	t.Helper()
	for i, ci := range b.Team.Piles.Hand {
		if ci.Card.Name == name {
			return i
		}
	}
	t.Fatalf("%s not in hand %v", name, handNames(b))
	return -1
}

// testCatalog is a small content set for run-level tests.
func testCatalog() *Catalog {
	strike := tagged(offensive("Line Item Review", 1, 40), []ClaimType{ClaimCommon}, []Category{CategoryCommon})
	audit := tagged(offensive("Field Audit", 2, 90), []ClaimType{ClaimCorporate, ClaimIncome}, []Category{CategoryCost, CategoryRevenue}, TraitInspection)
	memo := drawUtility("Research Memo", 1, 2)
	return &Catalog{
		Members: []*Member{
			{Name: "Ada", Tier: 1, Focus: 1, Stamina: 30, Stats: Stats{Analysis: 6}},
			{Name: "Bo", Tier: 1, Focus: 1, Stamina: 25, Stats: Stats{Data: 8}, Ability: "deep_reserves"},
			{Name: "Cy", Tier: 2, Focus: 2, Stamina: 20, Stats: Stats{Persuasion: 6}},
			{Name: "Di", Tier: 2, Focus: 1, Stamina: 35, Stats: Stats{Evidence: 4}},
		},
		Cards: []*Card{strike, audit, memo, drawUtility("Data Mining Run", 0, 2)},
		Cases: []*CaseTemplate{
			{
				Name: "Corner Shop", Size: SizeSmall, Target: 150, DamageMin: 3, DamageMax: 8,
				Objectives: []ObjectiveTemplate{
					incomeCost("Cash Skimming", 80),
					objective("Unbooked Sales", 120, []ClaimType{ClaimVAT}, MethodError, CategoryRevenue),
				},
				Actions: []string{"files a late return", "asks for an extension"},
			},
			{
				Name: "Holding Group", Size: SizeLarge, Target: 900, DamageMin: 5, DamageMax: 12,
				Objectives: []ObjectiveTemplate{
					objective("Transfer Pricing Loop", 500, []ClaimType{ClaimTransferPricing, ClaimCorporate}, MethodStructure, CategoryCapital),
					incomeCost("Padded Expenses", 300),
				},
				Actions: []string{"retains outside counsel"},
			},
		},
		Artifacts: []*Artifact{
			{Name: "Coffee Machine", Trigger: TriggerTurnStart, Kind: ArtifactFocus, Magnitude: 1},
			{Name: "Old Ledger", Trigger: TriggerBattleStart, Kind: ArtifactDraw, Magnitude: 2},
		},
		StarterDeck: []string{
			"Line Item Review", "Line Item Review", "Line Item Review", "Line Item Review",
			"Field Audit", "Field Audit", "Field Audit", "Research Memo",
		},
	}
}
