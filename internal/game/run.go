package game

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/peterkuimelis/casefile/internal/log"
)

// RunConfig holds everything needed to start a run.
type RunConfig struct {
	Catalog   *Catalog
	Rules     Rules
	Seed      uint64
	Logger    log.EventLogger // nil = a BattleLog capped at Rules.LogCapacity
	NoShuffle bool
}

// EncounterResult is what the lifecycle reports upward after an encounter.
type EncounterResult struct {
	Case    string
	Outcome Outcome
	Score   int
	Target  int
	Turns   int
	Reason  string
}

// Run is the explicit run context: it owns the team, the single random
// stream and the score across a series of encounters.
type Run struct {
	ID      string
	Catalog *Catalog
	Rules   Rules
	RNG     *RNG
	Logger  log.EventLogger
	Feed    *log.BattleLog // presentation feed; nil when a custom Logger was given

	Team       *Team
	TotalScore int
	Results    []EncounterResult
	Battle     *Battle // active encounter, nil between encounters
	Over       bool

	noShuffle bool
}

// NewRun creates a run with the catalog's starter deck and no roster.
func NewRun(cfg RunConfig) (*Run, error) {
	if cfg.Catalog == nil {
		return nil, fmt.Errorf("new run: nil catalog")
	}
	if err := cfg.Rules.Validate(); err != nil {
		return nil, fmt.Errorf("new run: %w", err)
	}
	r := &Run{
		ID:        uuid.NewString(),
		Catalog:   cfg.Catalog,
		Rules:     cfg.Rules,
		RNG:       NewRNG(cfg.Seed),
		Logger:    cfg.Logger,
		Team:      &Team{},
		noShuffle: cfg.NoShuffle,
	}
	if r.Logger == nil {
		r.Feed = log.NewBattleLog(cfg.Rules.LogCapacity)
		r.Logger = r.Feed
	}
	for _, name := range cfg.Catalog.StarterDeck {
		if err := r.AddCard(name); err != nil {
			return nil, fmt.Errorf("new run: starter deck: %w", err)
		}
	}
	return r, nil
}

// DraftOptions samples Rules.DraftOffer distinct members from the catalog.
func (r *Run) DraftOptions() []*Member {
	n := min(r.Rules.DraftOffer, len(r.Catalog.Members))
	perm := r.RNG.Perm(len(r.Catalog.Members))
	offer := make([]*Member, 0, n)
	for _, i := range perm[:n] {
		offer = append(offer, r.Catalog.Members[i])
	}
	return offer
}

// Draft fixes the roster for the rest of the run and sets team HP.
func (r *Run) Draft(names ...string) error {
	if len(r.Team.Roster) > 0 {
		return fmt.Errorf("draft: roster already chosen")
	}
	if len(names) != r.Rules.RosterSize {
		return fmt.Errorf("%w: want %d members, got %d", ErrRosterSize, r.Rules.RosterSize, len(names))
	}
	seen := make(map[string]bool, len(names))
	roster := make([]*Member, 0, len(names))
	for _, name := range names {
		if seen[name] {
			return fmt.Errorf("draft: %s picked twice", name)
		}
		seen[name] = true
		m, err := r.Catalog.Member(name)
		if err != nil {
			return fmt.Errorf("draft: %w", err)
		}
		roster = append(roster, m)
	}
	r.Team.Roster = roster
	hp := 0
	for _, m := range roster {
		hp += m.Stamina
	}
	r.Team.MaxHP = max(hp, r.Rules.MinTeamHP)
	r.Team.HP = r.Team.MaxHP
	r.Logger.Log(log.NewDraftEvent(names))
	return nil
}

// GiveArtifact adds a catalog artifact to the team.
func (r *Run) GiveArtifact(name string) error {
	a, err := r.Catalog.Artifact(name)
	if err != nil {
		return err
	}
	r.Team.Artifacts = append(r.Team.Artifacts, a)
	r.Logger.Log(log.NewArtifactEvent(0, "", a.Name, "acquired"))
	return nil
}

// StartEncounter opens a battle against the named case. The caller deals
// the first turn with Battle.Begin, or lets Battle.Run do it.
func (r *Run) StartEncounter(caseName string) (*Battle, error) {
	if r.Over {
		return nil, ErrRunOver
	}
	if len(r.Team.Roster) == 0 {
		return nil, ErrNotDrafted
	}
	if r.Battle != nil {
		return nil, fmt.Errorf("start encounter: %s still in progress", r.Battle.Case.Name)
	}
	tmpl, err := r.Catalog.Case(caseName)
	if err != nil {
		return nil, err
	}
	b := NewBattle(BattleConfig{
		Team:      r.Team,
		Case:      tmpl,
		Catalog:   r.Catalog,
		Rules:     r.Rules,
		RNG:       r.RNG,
		Logger:    r.Logger,
		NoShuffle: r.noShuffle,
	})
	r.Battle = b
	return b, nil
}

// Finish tears down a terminal battle: the score is folded into the run
// total and cards generated during the battle are dropped.
func (r *Run) Finish(b *Battle) (EncounterResult, error) {
	if !b.Over() {
		return EncounterResult{}, fmt.Errorf("finish: %s has no outcome yet", b.Case.Name)
	}
	res := EncounterResult{
		Case:    b.Case.Name,
		Outcome: b.Outcome,
		Score:   b.Case.Collected,
		Target:  b.Case.Target,
		Turns:   b.Turn,
		Reason:  b.Result,
	}
	r.TotalScore += res.Score
	r.Team.Piles.ReturnAll()
	r.Team.Piles.RemoveGenerated()
	for _, ci := range r.Team.Piles.All() {
		ci.JustCreated = false
	}
	r.Results = append(r.Results, res)
	if r.Battle == b {
		r.Battle = nil
	}
	if res.Outcome == OutcomeDefeat {
		r.Over = true
	}
	r.Logger.Log(log.NewEncounterEndEvent(b.Turn, res.Case, res.Outcome.String(), res.Score, res.Target))
	return res, nil
}

// --- Reward hooks ---

// AddCard puts a new instance of a catalog card at the bottom of the draw
// pile.
func (r *Run) AddCard(name string) error {
	card, err := r.Catalog.Card(name)
	if err != nil {
		return err
	}
	r.Team.Piles.Add(r.Team.NewCard(card))
	return nil
}

// Heal restores HP, clamped to max, and returns the amount healed.
func (r *Run) Heal(amount int) int {
	old := r.Team.Heal(amount)
	if r.Team.HP != old {
		r.Logger.Log(log.NewRewardEvent(fmt.Sprintf("healed %d (HP %d → %d)", r.Team.HP-old, old, r.Team.HP)))
	}
	return r.Team.HP - old
}

// RemoveCard deletes one card with the given name from the combined pool.
func (r *Run) RemoveCard(name string) error {
	if _, ok := r.Team.Piles.Remove(name); !ok {
		return fmt.Errorf("%w: %q is not in the deck", ErrUnknownCard, name)
	}
	r.Logger.Log(log.NewRewardEvent("removed " + name))
	return nil
}

// --- Series ---

// PlaySeries drafts a roster through ctrl if none is set, then plays the
// named cases in order until one is lost.
func (r *Run) PlaySeries(ctx context.Context, ctrl TeamController, cases []string) ([]EncounterResult, error) {
	if len(r.Team.Roster) == 0 {
		picked, err := ctrl.ChooseMembers(ctx, r.DraftOptions(), r.Rules.RosterSize)
		if err != nil {
			return nil, fmt.Errorf("draft: %w", err)
		}
		names := make([]string, len(picked))
		for i, m := range picked {
			names[i] = m.Name
		}
		if err := r.Draft(names...); err != nil {
			return nil, err
		}
	}

	var results []EncounterResult
	for _, name := range cases {
		if r.Over {
			break
		}
		b, err := r.StartEncounter(name)
		if err != nil {
			return results, err
		}
		if _, err := b.Run(ctx, ctrl); err != nil {
			return results, fmt.Errorf("%s: %w", name, err)
		}
		res, err := r.Finish(b)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}
