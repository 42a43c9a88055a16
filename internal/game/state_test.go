package game

import (
	"testing"
)

func cardNames(cards []*CardInstance) []string {
	names := make([]string, len(cards))
	for i, c := range cards {
		names[i] = c.Card.Name
	}
	return names
}

func uniqueIDs(t *testing.T, p *Piles) map[int]bool {
	t.Helper()
	seen := make(map[int]bool)
	for _, c := range p.All() {
		if seen[c.ID] {
			t.Fatalf("card instance %d (%s) appears twice", c.ID, c.Card.Name)
		}
		seen[c.ID] = true
	}
	return seen
}

func TestReshuffleOnEmptyDraw(t *testing.T) {
	team := newTeam(clerks(), []*Card{
		offensive("A", 1, 1), offensive("B", 1, 1), offensive("C", 1, 1), offensive("D", 1, 1),
	})
	p := &team.Piles
	before := uniqueIDs(t, p)
	p.Discard, p.Draw = p.Draw, nil

	card, reshuffled := p.DrawOne(NewRNG(7))
	if card == nil {
		t.Fatal("Expected a card after reshuffle")
	}
	if reshuffled != 4 {
		t.Errorf("Expected 4 cards reshuffled, got %d", reshuffled)
	}
	if len(p.Draw) != 3 || len(p.Hand) != 1 || len(p.Discard) != 0 {
		t.Errorf("Expected 3/1/0 after draw, got %d/%d/%d", len(p.Draw), len(p.Hand), len(p.Discard))
	}
	after := uniqueIDs(t, p)
	for id := range before {
		if !after[id] {
			t.Errorf("Card instance %d lost in reshuffle", id)
		}
	}
}

// drawCards draws until n cards arrived or both piles are empty.
func drawCards(p *Piles, n int, rng *RNG) []*CardInstance {
	var drawn []*CardInstance
	for len(drawn) < n {
		card, _ := p.DrawOne(rng)
		if card == nil {
			break
		}
		drawn = append(drawn, card)
	}
	return drawn
}

func TestDrawDepletion(t *testing.T) {
	team := newTeam(clerks(), []*Card{offensive("A", 1, 1), offensive("B", 1, 1)})
	drawn := drawCards(&team.Piles, 5, NewRNG(1))
	if len(drawn) != 2 {
		t.Errorf("Expected 2 cards drawn before depletion, got %d", len(drawn))
	}
	if card, _ := team.Piles.DrawOne(NewRNG(1)); card != nil {
		t.Errorf("Expected nothing left to draw, got %s", card)
	}
	if team.Piles.Count() != 2 {
		t.Errorf("Expected 2 cards in total, got %d", team.Piles.Count())
	}
}

func TestPoolConservation(t *testing.T) {
	var deck []*Card
	for i := 0; i < 12; i++ {
		deck = append(deck, offensive("Card", 1, i))
	}
	team := newTeam(clerks(), deck)
	p := &team.Piles
	rng := NewRNG(99)
	ops := NewRNG(3)

	for step := 0; step < 500; step++ {
		switch ops.IntN(4) {
		case 0:
			drawCards(p, ops.IntN(4), rng)
		case 1:
			if len(p.Hand) > 0 {
				if err := p.Play(p.Hand[ops.IntN(len(p.Hand))]); err != nil {
					t.Fatalf("step %d: %v", step, err)
				}
			}
		case 2:
			p.ReturnAll()
		case 3:
			p.Reshuffle(rng)
		}
		if p.Count() != 12 {
			t.Fatalf("step %d: pool size changed to %d", step, p.Count())
		}
	}
	if len(uniqueIDs(t, p)) != 12 {
		t.Error("Expected 12 distinct card instances")
	}
}

func TestPlayNotInHand(t *testing.T) {
	team := newTeam(clerks(), []*Card{offensive("A", 1, 1)})
	if err := team.Piles.Play(team.Piles.Draw[0]); err == nil {
		t.Error("Expected error playing a card that is not in hand")
	}
}

func TestAddAndRemove(t *testing.T) {
	team := newTeam(clerks(), []*Card{offensive("A", 1, 1), offensive("B", 1, 1)})
	p := &team.Piles

	p.Add(team.NewCard(offensive("Reward", 1, 1)))
	if p.Draw[0].Card.Name != "Reward" {
		t.Errorf("Expected added card at the bottom of the draw pile, got %v", cardNames(p.Draw))
	}

	// Same name in hand and discard: discard is searched first.
	drawCards(p, 2, NewRNG(1))
	inHand := p.Hand[0]
	_ = p.Play(p.Hand[1])
	dup := team.NewCard(inHand.Card)
	p.Discard = append(p.Discard, dup)

	removed, ok := p.Remove(inHand.Card.Name)
	if !ok {
		t.Fatal("Expected Remove to find the card")
	}
	if removed.ID != dup.ID {
		t.Errorf("Expected the discard copy to be removed, got instance %d", removed.ID)
	}
	if _, ok := p.Remove("Nope"); ok {
		t.Error("Expected Remove of unknown name to fail")
	}
}

func TestRemoveGenerated(t *testing.T) {
	team := newTeam(clerks(), []*Card{offensive("A", 1, 1), offensive("B", 1, 1)})
	gen := team.NewCard(drawUtility("Granted", 0, 1))
	gen.Generated = true
	team.Piles.Hand = append(team.Piles.Hand, gen)

	if n := team.Piles.RemoveGenerated(); n != 1 {
		t.Errorf("Expected 1 generated card removed, got %d", n)
	}
	if team.Piles.Count() != 2 {
		t.Errorf("Expected 2 cards left, got %d", team.Piles.Count())
	}
}

func TestExposureMonotonic(t *testing.T) {
	tac := &Tactic{Name: "Skim", Threshold: 50}

	direct, overkill, cleared := tac.Expose(30)
	if direct != 30 || overkill != 0 || cleared {
		t.Errorf("first hit: got direct=%d overkill=%d cleared=%v", direct, overkill, cleared)
	}

	direct, overkill, cleared = tac.Expose(30)
	if direct != 20 || overkill != 10 || !cleared {
		t.Errorf("clearing hit: got direct=%d overkill=%d cleared=%v", direct, overkill, cleared)
	}

	direct, overkill, cleared = tac.Expose(5)
	if direct != 0 || overkill != 5 || cleared {
		t.Errorf("hit on cleared tactic: got direct=%d overkill=%d cleared=%v", direct, overkill, cleared)
	}

	if tac.Exposed != 50 {
		t.Errorf("Expected exposure capped at 50, got %d", tac.Exposed)
	}
	if !tac.Cleared {
		t.Error("Expected tactic to stay cleared")
	}
}

func TestInstantiateDeepCopies(t *testing.T) {
	tmpl := caseOf("Shop", incomeCost("Skim", 50))
	tmpl.Actions = []string{"stalls"}

	c := Instantiate(tmpl)
	c.Tactics[0].Claims[0] = ClaimVAT
	c.Tactics[0].Expose(60)
	c.Actions[0] = "changed"

	if tmpl.Objectives[0].Claims[0] != ClaimIncome {
		t.Error("Template claims were mutated")
	}
	if tmpl.Actions[0] != "stalls" {
		t.Error("Template actions were mutated")
	}
	if fresh := Instantiate(tmpl); fresh.Tactics[0].Exposed != 0 || fresh.Tactics[0].Cleared {
		t.Error("Expected a fresh instance to start unexposed")
	}
}
