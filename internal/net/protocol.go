package net

import (
	"github.com/peterkuimelis/casefile/internal/game"
	"github.com/peterkuimelis/casefile/internal/log"
)

// ServerMessage is sent from the game server to a client.
type ServerMessage struct {
	Type       string       `json:"type"` // "notify", "choose_action", "choose_members", "run_over"
	Event      *EventView   `json:"event,omitempty"`
	Actions    []ActionView `json:"actions,omitempty"`
	State      *StateView   `json:"state,omitempty"`
	Prompt     string       `json:"prompt,omitempty"`
	Candidates []MemberView `json:"candidates,omitempty"`
	Count      int          `json:"count,omitempty"`
	Results    []ResultView `json:"results,omitempty"`
	TotalScore int          `json:"total_score,omitempty"`
	Result     string       `json:"result,omitempty"`
}

// EventView is a game event as sent over the wire.
type EventView struct {
	Seq      int    `json:"seq"`
	Turn     int    `json:"turn"`
	Phase    string `json:"phase"`
	Type     string `json:"type"`
	Severity string `json:"severity"`
	Card     string `json:"card,omitempty"`
	Details  string `json:"details"`
}

// ActionView is an available action as sent over the wire.
type ActionView struct {
	Index int    `json:"index"`
	Type  string `json:"type"`
	Desc  string `json:"desc"`
}

// MemberView is a draft candidate.
type MemberView struct {
	Index   int        `json:"index"`
	Name    string     `json:"name"`
	Tier    int        `json:"tier"`
	Focus   int        `json:"focus"`
	Stamina int        `json:"stamina"`
	Stats   game.Stats `json:"stats"`
	Ability string     `json:"ability,omitempty"`
}

// CardView is a card in hand, with the cost the team would pay right now.
type CardView struct {
	Index      int      `json:"index"`
	Name       string   `json:"name"`
	Kind       string   `json:"kind"`
	Cost       int      `json:"cost"`
	BaseCost   int      `json:"base_cost"`
	Damage     int      `json:"damage,omitempty"`
	Claims     []string `json:"claims,omitempty"`
	Categories []string `json:"categories,omitempty"`
	Text       string   `json:"text,omitempty"`
	Affordable bool     `json:"affordable"`
}

// TacticView is one case objective with its progress.
type TacticView struct {
	Index     int      `json:"index"`
	Name      string   `json:"name"`
	Exposed   int      `json:"exposed"`
	Threshold int      `json:"threshold"`
	Claims    []string `json:"claims"`
	Method    string   `json:"method"`
	Category  string   `json:"category"`
	Cleared   bool     `json:"cleared"`
}

// StateView is the visible state of the active encounter.
type StateView struct {
	Case         string       `json:"case"`
	Turn         int          `json:"turn"`
	Phase        string       `json:"phase"`
	HP           int          `json:"hp"`
	MaxHP        int          `json:"max_hp"`
	Focus        int          `json:"focus"`
	MaxFocus     int          `json:"max_focus"`
	Stats        game.Stats   `json:"stats"`
	Score        int          `json:"score"`
	Target       int          `json:"target"`
	Scale        float64      `json:"scale"`
	Hand         []CardView   `json:"hand"`
	DrawCount    int          `json:"draw_count"`
	DiscardCount int          `json:"discard_count"`
	Tactics      []TacticView `json:"tactics"`
	Roster       []string     `json:"roster"`
	Artifacts    []string     `json:"artifacts,omitempty"`
	Log          []EventView  `json:"log,omitempty"`
}

// ResultView is one finished encounter.
type ResultView struct {
	Case    string `json:"case"`
	Outcome string `json:"outcome"`
	Score   int    `json:"score"`
	Target  int    `json:"target"`
	Turns   int    `json:"turns"`
	Reason  string `json:"reason,omitempty"`
}

// ClientMessage is sent from a client to the game server.
type ClientMessage struct {
	Type    string `json:"type"` // "join", "action", "members"
	Index   int    `json:"index,omitempty"`
	Indices []int  `json:"indices,omitempty"`
	Name    string `json:"name,omitempty"`
}

// NewEventView converts a log event for the wire.
func NewEventView(e log.GameEvent) EventView {
	return EventView{
		Seq:      e.Seq,
		Turn:     e.Turn,
		Phase:    e.Phase,
		Type:     e.Type.String(),
		Severity: e.Severity.String(),
		Card:     e.Card,
		Details:  e.Details,
	}
}

// NewActionViews numbers actions for the wire.
func NewActionViews(actions []game.Action) []ActionView {
	views := make([]ActionView, len(actions))
	for i, a := range actions {
		views[i] = ActionView{Index: i, Type: a.Type.String(), Desc: a.String()}
	}
	return views
}

// NewMemberViews numbers draft candidates for the wire.
func NewMemberViews(offer []*game.Member) []MemberView {
	views := make([]MemberView, len(offer))
	for i, m := range offer {
		views[i] = MemberView{
			Index:   i,
			Name:    m.Name,
			Tier:    m.Tier,
			Focus:   m.Focus,
			Stamina: m.Stamina,
			Stats:   m.Stats,
			Ability: string(m.Ability),
		}
	}
	return views
}

// NewResultViews converts encounter results for the wire.
func NewResultViews(results []game.EncounterResult) []ResultView {
	views := make([]ResultView, len(results))
	for i, r := range results {
		views[i] = ResultView{
			Case:    r.Case,
			Outcome: r.Outcome.String(),
			Score:   r.Score,
			Target:  r.Target,
			Turns:   r.Turns,
			Reason:  r.Reason,
		}
	}
	return views
}

// BuildStateView creates a StateView of the battle. recent is appended as
// the log tail, newest first.
func BuildStateView(b *game.Battle, recent []log.GameEvent) *StateView {
	sv := &StateView{
		Case:         b.Case.Name,
		Turn:         b.Turn,
		Phase:        b.Phase.String(),
		HP:           b.Team.HP,
		MaxHP:        b.Team.MaxHP,
		Focus:        b.Focus,
		MaxFocus:     b.MaxFocus,
		Stats:        b.Stats,
		Score:        b.Case.Collected,
		Target:       b.Case.Target,
		Scale:        b.Scale(),
		DrawCount:    len(b.Team.Piles.Draw),
		DiscardCount: len(b.Team.Piles.Discard),
	}

	for i, ci := range b.Team.Piles.Hand {
		c := ci.Card
		cost := b.CalculateCost(ci).Final
		sv.Hand = append(sv.Hand, CardView{
			Index:      i,
			Name:       c.Name,
			Kind:       c.Kind.String(),
			Cost:       cost,
			BaseCost:   c.Cost,
			Damage:     c.Damage,
			Claims:     names(c.Claims),
			Categories: names(c.Categories),
			Text:       c.Text,
			Affordable: cost <= b.Focus,
		})
	}

	for i, t := range b.Case.Tactics {
		sv.Tactics = append(sv.Tactics, TacticView{
			Index:     i,
			Name:      t.Name,
			Exposed:   t.Exposed,
			Threshold: t.Threshold,
			Claims:    names(t.Claims),
			Method:    t.Method.String(),
			Category:  t.Category.String(),
			Cleared:   t.Cleared,
		})
	}

	for _, m := range b.Team.Roster {
		sv.Roster = append(sv.Roster, m.Name)
	}
	for _, a := range b.Team.Artifacts {
		sv.Artifacts = append(sv.Artifacts, a.Name)
	}
	for _, e := range recent {
		sv.Log = append(sv.Log, NewEventView(e))
	}
	return sv
}

func names[T interface{ String() string }](vs []T) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.String()
	}
	return out
}
