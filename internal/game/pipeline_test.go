package game

import (
	"testing"

	"github.com/peterkuimelis/casefile/internal/log"
)

func withStats(m *Member, s Stats) *Member {
	m.Stats = s
	return m
}

func TestCostOrder(t *testing.T) {
	trace := tagged(offensive("Bank Trace", 5, 10), []ClaimType{ClaimCommon}, []Category{CategoryCommon}, TraitForensic)
	plain := offensive("Plain Memo", 4, 10)
	redTape := &Artifact{Name: "Red Tape", Trigger: TriggerCost, Kind: ArtifactCardCost, Magnitude: 1, Card: "Bank Trace"}

	b, _ := newTestBattle(t, caseOf("Shop", incomeCost("Skim", 1000)), battleOpts{
		roster: []*Member{
			member("Hound", 5, 10, "ledger_hound"),
			member("Early", 5, 10, "early_start"),
			member("Room", 5, 10, "war_room"),
		},
		deck:      makePaddedDeck([]*Card{trace, trace, plain}, 10),
		artifacts: []*Artifact{redTape},
	})
	if b.Focus != 15 {
		t.Fatalf("Expected 15 focus, got %d", b.Focus)
	}

	cb := b.CalculateCost(b.Team.Piles.Hand[0])
	// (a) 5 - floor(5*50/100) = 3, (b) 2, (c) 1, (d) +1 = 2
	if cb.AfterAbilities != 3 || cb.AfterFirstCard != 2 || cb.AfterTeam != 1 || cb.Final != 2 {
		t.Errorf("Expected 3/2/1/2, got %d/%d/%d/%d", cb.AfterAbilities, cb.AfterFirstCard, cb.AfterTeam, cb.Final)
	}
	if !cb.UsesFirstCard || !cb.UsesTeam {
		t.Error("Expected both one-shot flags to be used")
	}

	// Previewing never consumes anything.
	if again := b.CalculateCost(b.Team.Piles.Hand[0]); again.Final != 2 {
		t.Errorf("Expected preview to be repeatable, got %d", again.Final)
	}

	if _, err := b.PlayCard(0, 0); err != nil {
		t.Fatalf("PlayCard: %v", err)
	}
	if b.Focus != 13 {
		t.Errorf("Expected 13 focus after paying 2, got %d", b.Focus)
	}

	second := b.CalculateCost(b.Team.Piles.Hand[findInHand(t, b, "Bank Trace")])
	if second.Final != 4 || second.UsesFirstCard || second.UsesTeam {
		t.Errorf("Expected 4 with flags spent, got %d (first=%v team=%v)", second.Final, second.UsesFirstCard, second.UsesTeam)
	}
	if got := b.CalculateCost(b.Team.Piles.Hand[findInHand(t, b, "Plain Memo")]).Final; got != 4 {
		t.Errorf("Expected Plain Memo at base cost 4, got %d", got)
	}

	// Flags are re-armed next turn.
	if err := b.EndTurn(); err != nil {
		t.Fatalf("EndTurn: %v", err)
	}
	if !b.firstCardArmed || b.teamDiscount != 1 {
		t.Errorf("Expected flags re-armed, got first=%v team=%d", b.firstCardArmed, b.teamDiscount)
	}
}

func TestTeamDiscountSkipsFreeCards(t *testing.T) {
	free := offensive("Freebie", 0, 5)
	plain := offensive("Plain Memo", 2, 5)
	b, _ := newTestBattle(t, caseOf("Shop", incomeCost("Skim", 1000)), battleOpts{
		roster: []*Member{member("Room", 3, 10, "war_room"), member("A", 1, 10, ""), member("B", 1, 10, "")},
		deck:   makePaddedDeck([]*Card{free, plain}, 10),
	})

	if cb := b.CalculateCost(b.Team.Piles.Hand[0]); cb.UsesTeam {
		t.Error("A free card must not claim the team discount")
	}
	if _, err := b.PlayCard(0, 0); err != nil {
		t.Fatalf("PlayCard: %v", err)
	}
	cb := b.CalculateCost(b.Team.Piles.Hand[findInHand(t, b, "Plain Memo")])
	if cb.Final != 1 || !cb.UsesTeam {
		t.Errorf("Expected the discount to still apply (cost 1), got %d", cb.Final)
	}
}

func TestFirstCardDiscountSkipsFreeCards(t *testing.T) {
	free := offensive("Freebie", 0, 5)
	plain := offensive("Plain Memo", 2, 5)
	b, _ := newTestBattle(t, caseOf("Shop", incomeCost("Skim", 1000)), battleOpts{
		roster: []*Member{member("Early", 3, 10, "early_start"), member("A", 1, 10, ""), member("B", 1, 10, "")},
		deck:   makePaddedDeck([]*Card{free, plain}, 10),
	})

	if cb := b.CalculateCost(b.Team.Piles.Hand[0]); cb.UsesFirstCard {
		t.Error("A free card must not claim the first-card discount")
	}
	if _, err := b.PlayCard(0, 0); err != nil {
		t.Fatalf("PlayCard: %v", err)
	}
	if !b.firstCardArmed {
		t.Fatal("Expected the first-card discount to survive a free play")
	}
	cb := b.CalculateCost(b.Team.Piles.Hand[findInHand(t, b, "Plain Memo")])
	if cb.Final != 1 || !cb.UsesFirstCard {
		t.Errorf("Expected the discount to still apply (cost 1), got %d", cb.Final)
	}
}

func TestFirstCardDiscountNeedsMatch(t *testing.T) {
	AbilityTable["forensic_start"] = &Ability{
		ID: "forensic_start", Name: "Forensic Start",
		Rules: []AbilityRule{{Kind: RuleFirstCard, Flat: 1, Match: Match{Traits: []Trait{TraitForensic}}}},
	}
	t.Cleanup(func() { delete(AbilityTable, "forensic_start") })

	trace := tagged(offensive("Bank Trace", 3, 5), []ClaimType{ClaimCommon}, []Category{CategoryCommon}, TraitForensic)
	plain := offensive("Plain Memo", 2, 5)
	b, _ := newTestBattle(t, caseOf("Shop", incomeCost("Skim", 1000)), battleOpts{
		roster: []*Member{member("Sleuth", 3, 10, "forensic_start"), member("A", 1, 10, ""), member("B", 1, 10, "")},
		deck:   makePaddedDeck([]*Card{plain, trace}, 10),
	})

	if cb := b.CalculateCost(b.Team.Piles.Hand[0]); cb.UsesFirstCard || cb.Final != 2 {
		t.Errorf("Expected Plain Memo at 2 without the discount, got %d (first=%v)", cb.Final, cb.UsesFirstCard)
	}
	if _, err := b.PlayCard(0, 0); err != nil {
		t.Fatalf("PlayCard: %v", err)
	}
	if !b.firstCardArmed {
		t.Fatal("An unmatched card must not consume the first-card discount")
	}
	cb := b.CalculateCost(b.Team.Piles.Hand[findInHand(t, b, "Bank Trace")])
	if cb.Final != 2 || !cb.UsesFirstCard {
		t.Errorf("Expected Bank Trace discounted to 2, got %d (first=%v)", cb.Final, cb.UsesFirstCard)
	}
}

func TestMismatchDoesNotSpendFlags(t *testing.T) {
	vatOnly := tagged(offensive("VAT Probe", 2, 5), []ClaimType{ClaimVAT}, []Category{CategoryCommon})
	b, _ := newTestBattle(t, caseOf("Shop", incomeCost("Skim", 1000)), battleOpts{
		roster: []*Member{member("Early", 3, 10, "early_start"), member("A", 1, 10, ""), member("B", 1, 10, "")},
		deck:   makePaddedDeck([]*Card{vatOnly}, 10),
	})
	if _, err := b.PlayCard(0, 0); err != nil {
		t.Fatalf("PlayCard: %v", err)
	}
	if !b.firstCardArmed {
		t.Error("A mismatched play must not consume the first-card discount")
	}
	if b.Focus != 5 {
		t.Errorf("Expected focus untouched at 5, got %d", b.Focus)
	}
}

func TestScaleClamp(t *testing.T) {
	tests := []struct {
		target int
		want   int
	}{
		{500, 10},
		{2000, 20},
		{8000, 20},
		{125, 5},
		{20, 5},
	}
	card := offensive("Probe", 1, 10)
	for _, tt := range tests {
		tmpl := caseOf("Scaled", incomeCost("Skim", 1000))
		tmpl.Target = tt.target
		b, _ := newTestBattle(t, tmpl, battleOpts{deck: makePaddedDeck([]*Card{card}, 10)})
		d := b.ComputeDamage(b.Team.Piles.Hand[0], b.Case.Tactics[0])
		if d.ScaledBase != tt.want {
			t.Errorf("target %d: expected scaled base %d, got %d (scale %.3f)", tt.target, tt.want, d.ScaledBase, d.Scale)
		}
	}
}

func TestScaleReferenceOverride(t *testing.T) {
	tmpl := caseOf("Custom", incomeCost("Skim", 1000))
	tmpl.Reference = 2000
	b, _ := newTestBattle(t, tmpl, battleOpts{deck: makePaddedDeck(nil, 10)})
	if s := b.Scale(); s != 0.5 {
		t.Errorf("Expected scale 0.5 with reference 2000, got %v", s)
	}
}

func TestSpecialBonusFloor(t *testing.T) {
	card := offensive("Cross Check", 1, 20)
	card.Bonus = &SpecialBonus{Method: MethodConcealment, Multiplier: 1.15}
	b, _ := newTestBattle(t, caseOf("Shop", incomeCost("Skim", 1000)), battleOpts{
		deck: makePaddedDeck([]*Card{card}, 10),
	})
	d := b.ComputeDamage(b.Team.Piles.Hand[0], b.Case.Tactics[0])
	if !d.SpecialMatched || d.Final != 23 {
		t.Errorf("Expected 20 x 1.15 = 23, got %d", d.Final)
	}

	b.Case.Tactics[0].Method = MethodError
	if d := b.ComputeDamage(b.Team.Piles.Hand[0], b.Case.Tactics[0]); d.SpecialMatched || d.Final != 20 {
		t.Errorf("Expected no bonus against an error tactic, got %d", d.Final)
	}
}

func TestDamagePipelineStacking(t *testing.T) {
	card := tagged(offensive("Cross Examination", 1, 20), []ClaimType{ClaimCommon}, []Category{CategoryCommon}, TraitHearing)
	card.Bonus = &SpecialBonus{Method: MethodConcealment, Multiplier: 1.15}
	tmpl := caseOf("Holding", incomeCost("Skim", 1000))
	tmpl.Size = SizeLarge

	b, _ := newTestBattle(t, tmpl, battleOpts{
		roster: []*Member{
			withStats(member("Orator", 1, 10, "closing_argument"), Stats{Persuasion: 10}),
			member("Checker", 1, 10, "double_check"),
			member("Hunter", 1, 10, "big_game"),
		},
		deck: makePaddedDeck([]*Card{card}, 10),
	})
	d := b.ComputeDamage(b.Team.Piles.Hand[0], b.Case.Tactics[0])

	// built-in hearing: 10/2 = 5, closing argument: +10
	if d.StatBonus != 5 || d.Additive != 15 {
		t.Errorf("Expected stat bonus 5 and additive 15, got %d and %d", d.StatBonus, d.Additive)
	}
	// 1.15 doubled = 2.3, times 1.5 for a large case
	if d.Multiplier < 3.449 || d.Multiplier > 3.451 {
		t.Errorf("Expected multiplier 3.45, got %v", d.Multiplier)
	}
	// floor((20 + 15) * 3.45) = 120
	if d.Final != 120 {
		t.Errorf("Expected 120 damage, got %d", d.Final)
	}
}

func TestAdditiveBonusesStack(t *testing.T) {
	card := tagged(offensive("Asset Trace", 1, 10), []ClaimType{ClaimCommon}, []Category{CategoryCapital})
	b, _ := newTestBattle(t, caseOf("Shop", objective("Loop", 1000, []ClaimType{ClaimCorporate}, MethodStructure, CategoryCapital)), battleOpts{
		roster: []*Member{
			withStats(member("Hound", 1, 10, "ledger_hound"), Stats{Data: 10}),
			member("A", 1, 10, ""),
			member("B", 1, 10, ""),
		},
		deck: makePaddedDeck([]*Card{card}, 10),
	})
	d := b.ComputeDamage(b.Team.Piles.Hand[0], b.Case.Tactics[0])
	// built-in capital: +Data (10), ledger hound: +Data/2 (5)
	if d.Additive != 15 || d.Final != 25 {
		t.Errorf("Expected additive 15 and damage 25, got %d and %d", d.Additive, d.Final)
	}
}

func TestMultiplierKeyedOnClaimAndMethod(t *testing.T) {
	card := offensive("Probe", 1, 10)
	tmpl := caseOf("Shop",
		objective("Missing VAT", 1000, []ClaimType{ClaimVAT}, MethodError, CategoryRevenue),
		incomeCost("Skim", 1000),
	)
	b, _ := newTestBattle(t, tmpl, battleOpts{
		roster: []*Member{
			member("VAT", 1, 10, "vat_specialist"),
			member("Honest", 1, 10, "honest_mistakes"),
			member("A", 1, 10, ""),
		},
		deck: makePaddedDeck([]*Card{card}, 10),
	})
	// 1.3 * 1.25 = 1.625, floor(10 * 1.625) = 16
	if d := b.ComputeDamage(b.Team.Piles.Hand[0], b.Case.Tactics[0]); d.Final != 16 {
		t.Errorf("Expected 16 against the VAT error tactic, got %d", d.Final)
	}
	if d := b.ComputeDamage(b.Team.Piles.Hand[0], b.Case.Tactics[1]); d.Final != 10 {
		t.Errorf("Expected 10 against the income tactic, got %d", d.Final)
	}
}

func TestOverflowMath(t *testing.T) {
	big := offensive("Big Finding", 1, 30)
	b, _ := newTestBattle(t, caseOf("Shop", incomeCost("Skim", 50)), battleOpts{
		deck: makePaddedDeck([]*Card{big}, 10),
	})
	b.Case.Tactics[0].Exposed = 40

	res, err := b.PlayCard(0, 0)
	if err != nil {
		t.Fatalf("PlayCard: %v", err)
	}
	if res.Outcome != PlayHit {
		t.Fatalf("Expected a hit, got %s", res.Outcome)
	}
	e := res.Exposure
	if e.Direct != 10 || e.Overkill != 20 || e.ScoreGain != 20 {
		t.Errorf("Expected direct 10, overkill 20, gain 20; got %d, %d, %d", e.Direct, e.Overkill, e.ScoreGain)
	}
	if b.Case.Collected != 20 {
		t.Errorf("Expected collected score 20, got %d", b.Case.Collected)
	}
	if !e.Cleared || !b.Case.Tactics[0].Cleared {
		t.Error("Expected the tactic to be cleared")
	}
}

func TestPlayOnClearedTactic(t *testing.T) {
	b, logger := newTestBattle(t, caseOf("Shop", incomeCost("Skim", 10)), battleOpts{
		deck: makePaddedDeck([]*Card{offensive("A", 1, 10), offensive("B", 1, 10)}, 10),
	})
	if _, err := b.PlayCard(0, 0); err != nil {
		t.Fatalf("PlayCard: %v", err)
	}
	res, err := b.PlayCard(0, 0)
	if err != nil {
		t.Fatalf("PlayCard: %v", err)
	}
	if res.Exposure.Direct != 0 || res.Exposure.Overkill != 10 || res.Exposure.ScoreGain != 5 {
		t.Errorf("Expected all overkill on a cleared tactic, got %+v", res.Exposure)
	}
	if n := len(logger.EventsOfType(log.EventCleared)); n != 1 {
		t.Errorf("Expected exactly one cleared event, got %d", n)
	}
}
