package game

import (
	"fmt"

	"github.com/peterkuimelis/casefile/internal/log"
)

// PlayOutcome classifies what a play command did.
type PlayOutcome int

const (
	PlayHit PlayOutcome = iota
	PlayClaimMismatch
	PlayCategoryMismatch
	PlayUnaffordable
	PlayUtility
	PlayNoop
)

func (o PlayOutcome) String() string {
	switch o {
	case PlayHit:
		return "hit"
	case PlayClaimMismatch:
		return "claim_mismatch"
	case PlayCategoryMismatch:
		return "category_mismatch"
	case PlayUnaffordable:
		return "unaffordable"
	case PlayUtility:
		return "utility"
	case PlayNoop:
		return "noop"
	default:
		return "unknown"
	}
}

// PlayResult describes the effect of one play command.
type PlayResult struct {
	Outcome  PlayOutcome
	Card     *CardInstance
	Tactic   *Tactic
	Cost     int
	Penalty  int
	Damage   DamageBreakdown
	Exposure Exposure
}

// PlayCard plays the hand card at handIdx against the tactic at objIdx.
func (b *Battle) PlayCard(handIdx, objIdx int) (PlayResult, error) {
	if err := b.actionPhase(); err != nil {
		return PlayResult{}, err
	}
	if handIdx < 0 || handIdx >= len(b.Team.Piles.Hand) {
		return PlayResult{}, b.invalid(fmt.Sprintf("hand index %d out of range", handIdx))
	}
	return b.PlayCardOn(b.Team.Piles.Hand[handIdx], objIdx)
}

// PlayCardOn plays a specific hand card against the tactic at objIdx.
func (b *Battle) PlayCardOn(card *CardInstance, objIdx int) (PlayResult, error) {
	if err := b.actionPhase(); err != nil {
		return PlayResult{}, err
	}
	if _, err := b.handCard(card); err != nil {
		return PlayResult{}, err
	}
	if objIdx < 0 || objIdx >= len(b.Case.Tactics) {
		return PlayResult{}, b.invalid(fmt.Sprintf("objective index %d out of range", objIdx))
	}
	if card.Card.IsUtility() {
		return PlayResult{}, b.invalid(fmt.Sprintf("%s does not take a target", card.Card.Name))
	}
	return b.attemptPlay(card, b.Case.Tactics[objIdx])
}

// attemptPlay validates the pairing, pays and resolves damage. Mismatches
// are penalties, not errors.
func (b *Battle) attemptPlay(card *CardInstance, t *Tactic) (PlayResult, error) {
	phase := b.Phase.String()
	c := card.Card
	res := PlayResult{Card: card, Tactic: t}

	if !c.MatchesClaim(t.Claims) {
		res.Outcome = PlayClaimMismatch
		res.Penalty = b.Rules.ClaimPenalty
		b.mismatch(card, t, "claim type", res.Penalty)
		return res, nil
	}
	if !c.MatchesCategory(t.Category) {
		res.Outcome = PlayCategoryMismatch
		res.Penalty = b.Rules.CategoryPenalty
		b.mismatch(card, t, "category", res.Penalty)
		return res, nil
	}

	cb := b.CalculateCost(card)
	res.Cost = cb.Final
	if cb.Final > b.Focus {
		res.Outcome = PlayUnaffordable
		b.log(log.NewRejectedEvent(b.Turn, phase, c.Name, cb.Final, b.Focus))
		return res, fmt.Errorf("%w: %s costs %d, %d left", ErrInsufficientFocus, c.Name, cb.Final, b.Focus)
	}

	b.pay(cb)
	b.log(log.NewPlayEvent(b.Turn, phase, c.Name, t.Name, cb.Final))

	res.Outcome = PlayHit
	res.Damage = b.ComputeDamage(card, t)
	b.log(log.NewDamageCalcEvent(b.Turn, phase, c.Name, res.Damage.String()))
	res.Exposure = b.ApplyExposure(t, res.Damage.Final)
	b.log(log.NewExposureEvent(b.Turn, phase, t.Name, res.Exposure.Direct, res.Exposure.Overkill,
		res.Exposure.ScoreGain, t.Exposed, t.Threshold))
	if res.Exposure.Cleared {
		b.log(log.NewClearedEvent(b.Turn, phase, t.Name))
	}

	_ = b.Team.Piles.Play(card)
	b.resolveEffect(card)
	b.endCheck()
	return res, nil
}

// mismatch applies an HP penalty and consumes the card without paying.
func (b *Battle) mismatch(card *CardInstance, t *Tactic, what string, penalty int) {
	phase := b.Phase.String()
	_ = b.Team.Piles.Play(card)
	old := b.Team.Damage(penalty)
	b.log(log.NewMismatchEvent(b.Turn, phase, card.Card.Name, t.Name, what, penalty))
	b.log(log.NewHPChangeEvent(b.Turn, phase, old, b.Team.HP, what+" mismatch"))
	b.endCheck()
}

// UseUtility resolves the utility card at handIdx.
func (b *Battle) UseUtility(handIdx int) (PlayResult, error) {
	if err := b.actionPhase(); err != nil {
		return PlayResult{}, err
	}
	if handIdx < 0 || handIdx >= len(b.Team.Piles.Hand) {
		return PlayResult{}, b.invalid(fmt.Sprintf("hand index %d out of range", handIdx))
	}
	return b.UseCard(b.Team.Piles.Hand[handIdx])
}

// UseCard resolves a utility card from the hand. It bypasses targeting.
func (b *Battle) UseCard(card *CardInstance) (PlayResult, error) {
	if err := b.actionPhase(); err != nil {
		return PlayResult{}, err
	}
	if _, err := b.handCard(card); err != nil {
		return PlayResult{}, err
	}
	c := card.Card
	if !c.IsUtility() {
		return PlayResult{}, b.invalid(fmt.Sprintf("%s needs a target", c.Name))
	}
	phase := b.Phase.String()
	res := PlayResult{Card: card}
	cb := b.CalculateCost(card)
	res.Cost = cb.Final
	if cb.Final > b.Focus {
		res.Outcome = PlayUnaffordable
		b.log(log.NewRejectedEvent(b.Turn, phase, c.Name, cb.Final, b.Focus))
		return res, fmt.Errorf("%w: %s costs %d, %d left", ErrInsufficientFocus, c.Name, cb.Final, b.Focus)
	}

	b.pay(cb)
	b.log(log.NewUtilityEvent(b.Turn, phase, c.Name, fmt.Sprintf("%s used (cost %d)", c.Name, cb.Final)))
	_ = b.Team.Piles.Play(card)
	b.resolveEffect(card)
	res.Outcome = PlayUtility
	b.endCheck()
	return res, nil
}

// AutoPlay picks a card and target greedily and plays them. It is a
// logged no-op when nothing qualifies.
func (b *Battle) AutoPlay() (PlayResult, error) {
	if err := b.actionPhase(); err != nil {
		return PlayResult{}, err
	}
	card, t := b.AutoPick()
	phase := b.Phase.String()
	switch {
	case card == nil:
		b.log(log.NewAutoPlayEvent(b.Turn, phase, "no affordable offensive card"))
		return PlayResult{Outcome: PlayNoop}, nil
	case t == nil:
		b.log(log.NewAutoPlayEvent(b.Turn, phase, fmt.Sprintf("no open objective matches %s", card.Card.Name)))
		return PlayResult{Outcome: PlayNoop, Card: card}, nil
	}
	b.log(log.NewAutoPlayEvent(b.Turn, phase, fmt.Sprintf("%s → %s", card.Card.Name, t.Name)))
	return b.attemptPlay(card, t)
}

// actionPhase guards commands that are only legal in the action loop.
func (b *Battle) actionPhase() error {
	if b.Over() {
		return ErrEncounterOver
	}
	if b.Phase != PhaseAction {
		return b.invalid(fmt.Sprintf("no actions during %s", b.Phase))
	}
	return nil
}
