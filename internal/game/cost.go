package game

// CostBreakdown records each step of the cost calculation. Final is what a
// play would debit from focus.
type CostBreakdown struct {
	Base           int
	AfterAbilities int // step (a)
	AfterFirstCard int // step (b)
	AfterTeam      int // step (c)
	Final          int // step (d): artifact deltas

	UsesFirstCard bool // the first-card discount lowered this cost
	UsesTeam      bool // a paid play consumes the team discount
}

// CalculateCost previews the focus cost of card without consuming anything.
// Steps run in a fixed order and clamp at 0 after each adjustment:
// (a) roster percent/flat reducers, (b) first-card-of-turn discount,
// (c) the one-shot team discount, (d) artifact deltas keyed on card name.
func (b *Battle) CalculateCost(card *CardInstance) CostBreakdown {
	c := card.Card
	cb := CostBreakdown{Base: c.Cost}
	cost := clampCost(c.Cost)

	for _, rr := range rosterRulesOf(b.Team.Roster, RuleCostPercent, RuleCostFlat) {
		if !rr.Rule.Match.Card(c) {
			continue
		}
		switch rr.Rule.Kind {
		case RuleCostPercent:
			cost = clampCost(cost - cost*rr.Rule.Percent/100)
		case RuleCostFlat:
			cost = clampCost(cost - rr.Rule.Flat)
		}
	}
	cb.AfterAbilities = cost

	if b.firstCardArmed {
		before := cost
		for _, rr := range rosterRules(b.Team.Roster, RuleFirstCard) {
			if rr.Rule.Match.Card(c) {
				cost = clampCost(cost - rr.Rule.Flat)
			}
		}
		// Only a card the discount actually lowered spends it.
		cb.UsesFirstCard = cost < before
	}
	cb.AfterFirstCard = cost

	if b.teamDiscount > 0 && cost > 0 {
		cb.UsesTeam = true
		cost = clampCost(cost - b.teamDiscount)
	}
	cb.AfterTeam = cost

	for _, a := range b.Team.Artifacts {
		if a.Trigger == TriggerCost && a.Kind == ArtifactCardCost && a.Card == c.Name {
			cost = clampCost(cost + a.Magnitude)
		}
	}
	cb.Final = cost
	return cb
}

// pay debits focus and consumes the one-shot flags the cost relied on.
func (b *Battle) pay(cb CostBreakdown) {
	b.Focus -= cb.Final
	if cb.UsesFirstCard {
		b.firstCardArmed = false
	}
	if cb.UsesTeam {
		b.teamDiscount = 0
	}
}

// Affordable reports whether card can be paid for with the current focus.
func (b *Battle) Affordable(card *CardInstance) bool {
	return b.CalculateCost(card).Final <= b.Focus
}

func clampCost(c int) int {
	if c < 0 {
		return 0
	}
	return c
}

// rosterRulesOf is rosterRules for several kinds at once, preserving the
// shared priority order.
func rosterRulesOf(roster []*Member, kinds ...RuleKind) []rosterRule {
	var out []rosterRule
	idx := 0
	for _, m := range roster {
		a, ok := AbilityTable[m.Ability]
		if !ok {
			continue
		}
		for _, r := range a.Rules {
			for _, k := range kinds {
				if r.Kind == k {
					out = append(out, rosterRule{Member: m, Rule: r, Index: idx})
					break
				}
			}
			idx++
		}
	}
	return out
}
