package game

import (
	"context"

	"github.com/peterkuimelis/casefile/internal/log"
)

// AutoPick returns the card and tactic auto-play would use, without
// changing anything. The card is the affordable offensive card with the
// strictly highest base damage (first in hand order on ties); the tactic is
// the first uncleared one the card matches on both claim type and category.
// Either result may be nil.
func (b *Battle) AutoPick() (*CardInstance, *Tactic) {
	var best *CardInstance
	for _, ci := range b.Team.Piles.Hand {
		if ci.Card.IsUtility() || !b.Affordable(ci) {
			continue
		}
		if best == nil || ci.Card.Damage > best.Card.Damage {
			best = ci
		}
	}
	if best == nil {
		return nil, nil
	}
	for _, t := range b.Case.Tactics {
		if t.Cleared {
			continue
		}
		if best.Card.MatchesClaim(t.Claims) && best.Card.MatchesCategory(t.Category) {
			return best, t
		}
	}
	return best, nil
}

// AutoController plays every turn with the auto-play resolver and ends the
// turn once it stops making progress. It drafts the first n offered members.
type AutoController struct {
	Logger log.EventLogger // optional; receives every notification
}

func (a *AutoController) ChooseAction(_ context.Context, b *Battle, actions []Action) (Action, error) {
	if hasType(actions, ActionAutoPlay) {
		if card, t := b.AutoPick(); card != nil && t != nil {
			return Action{Type: ActionAutoPlay}, nil
		}
	}
	if hasType(actions, ActionEndTurn) {
		return Action{Type: ActionEndTurn}, nil
	}
	// Target prompt after a manual selection: back out.
	return Action{Type: ActionCancel}, nil
}

func (a *AutoController) ChooseMembers(_ context.Context, offer []*Member, n int) ([]*Member, error) {
	if n > len(offer) {
		return nil, ErrRosterSize
	}
	return offer[:n], nil
}

func (a *AutoController) Notify(_ context.Context, event log.GameEvent) error {
	if a.Logger != nil {
		a.Logger.Log(event)
	}
	return nil
}

func hasType(actions []Action, t ActionType) bool {
	for _, a := range actions {
		if a.Type == t {
			return true
		}
	}
	return false
}
