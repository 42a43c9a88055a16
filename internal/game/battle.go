package game

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/peterkuimelis/casefile/internal/log"
)

// TeamController is the interface that every driver of a run implements:
// the terminal client, the MCP agent, the auto-player and test scripts.
type TeamController interface {
	// ChooseAction presents available actions and waits for a pick.
	ChooseAction(ctx context.Context, b *Battle, actions []Action) (Action, error)

	// ChooseMembers asks for exactly n members out of the draft offer.
	ChooseMembers(ctx context.Context, offer []*Member, n int) ([]*Member, error)

	// Notify sends a battle event notification (no response needed).
	Notify(ctx context.Context, event log.GameEvent) error
}

// BattleConfig holds everything needed to open an encounter.
type BattleConfig struct {
	Team      *Team
	Case      *CaseTemplate
	Catalog   *Catalog
	Rules     Rules
	RNG       *RNG
	Logger    log.EventLogger
	NoShuffle bool // keep the draw pile order on Begin (for deterministic tests)
}

// Battle is one encounter against one case. It owns all mutable encounter
// state; every engine operation goes through it.
type Battle struct {
	Team    *Team
	Case    *Case
	Catalog *Catalog
	Rules   Rules
	RNG     *RNG
	Logger  log.EventLogger

	Turn    int
	Phase   Phase
	Outcome Outcome
	Result  string

	Focus    int
	MaxFocus int
	Stats    Stats

	// One-shot flags, armed at turn start and cleared at turn end.
	firstCardArmed bool
	teamDiscount   int

	pendingDraws int          // battle-start draw credit, consumed by the first turn
	granted      map[int]bool // grant rules already fired this battle

	noShuffle bool
	ctx       context.Context
	ctrl      TeamController
}

// NewBattle deep-copies the case template and computes the starting bonuses
// from the roster and held artifacts.
func NewBattle(cfg BattleConfig) *Battle {
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewMemoryLogger()
	}
	rng := cfg.RNG
	if rng == nil {
		rng = NewRNG(0)
	}
	b := &Battle{
		Team:      cfg.Team,
		Case:      Instantiate(cfg.Case),
		Catalog:   cfg.Catalog,
		Rules:     cfg.Rules,
		RNG:       rng,
		Logger:    logger,
		Phase:     PhaseNone,
		granted:   make(map[int]bool),
		noShuffle: cfg.NoShuffle,
		ctx:       context.Background(),
	}

	b.Stats = b.Team.BaseStats()
	for _, rr := range rosterRules(b.Team.Roster, RuleStatBonus) {
		b.Stats = b.Stats.Add(rr.Rule.Stat, rr.Rule.Flat)
	}
	for _, a := range b.Team.Artifacts {
		if a.Trigger != TriggerBattleStart {
			continue
		}
		switch a.Kind {
		case ArtifactStat:
			b.Stats = b.Stats.Add(a.Stat, a.Magnitude)
		case ArtifactDraw:
			b.pendingDraws += a.Magnitude
		}
	}
	return b
}

// Begin resets the pools and starts the first player turn.
func (b *Battle) Begin() {
	b.log(log.NewEncounterStartEvent(b.Case.Name, b.Case.Target, len(b.Case.Tactics)))
	for _, a := range b.Team.Artifacts {
		if a.Trigger == TriggerBattleStart {
			b.log(log.NewArtifactEvent(0, "", a.Name, a.Description))
		}
	}
	if b.noShuffle {
		b.Team.Piles.Draw = b.Team.Piles.All()
		b.Team.Piles.Hand = nil
		b.Team.Piles.Discard = nil
	} else {
		b.Team.Piles.Reset(b.RNG)
		b.log(log.NewShuffleEvent(0, "", len(b.Team.Piles.Draw)))
	}
	b.startTurn()
}

// Over reports whether the encounter has reached a terminal outcome.
func (b *Battle) Over() bool {
	return b.Outcome != OutcomeNone
}

// Run drives the encounter with a controller until it ends.
func (b *Battle) Run(ctx context.Context, ctrl TeamController) (Outcome, error) {
	b.ctx = ctx
	b.ctrl = ctrl
	defer func() { b.ctrl = nil }()

	if b.Phase == PhaseNone {
		b.Begin()
	}
	for !b.Over() {
		if err := ctx.Err(); err != nil {
			return b.Outcome, err
		}
		chosen, err := ctrl.ChooseAction(ctx, b, b.Actions())
		if err != nil {
			return b.Outcome, err
		}
		if err := b.execute(ctx, chosen); err != nil && !recoverable(err) {
			return b.Outcome, err
		}
	}
	return b.Outcome, nil
}

// recoverable errors abort a single command but leave the battle running.
func recoverable(err error) bool {
	return errors.Is(err, ErrInvalidSelection) || errors.Is(err, ErrInsufficientFocus)
}

// execute performs a chosen top-level action.
func (b *Battle) execute(ctx context.Context, a Action) error {
	switch a.Type {
	case ActionSelectCard:
		card := a.Card
		if _, err := b.handCard(card); err != nil {
			return err
		}
		chosen, err := b.ctrl.ChooseAction(ctx, b, b.TargetActions(card))
		if err != nil {
			return err
		}
		if chosen.Type != ActionTarget {
			return nil // cancelled; back to no selection
		}
		_, err = b.PlayCardOn(card, chosen.Objective)
		return err
	case ActionTarget:
		_, err := b.PlayCardOn(a.Card, a.Objective)
		return err
	case ActionUseUtility:
		_, err := b.UseCard(a.Card)
		return err
	case ActionAutoPlay:
		_, err := b.AutoPlay()
		return err
	case ActionEndTurn:
		return b.EndTurn()
	case ActionCancel:
		return nil
	}
	return b.invalid(fmt.Sprintf("unknown action %q", a.Type))
}

// Actions returns the legal top-level actions of the action phase: every
// affordable card, auto-play and end turn.
func (b *Battle) Actions() []Action {
	if b.Over() || b.Phase != PhaseAction {
		return nil
	}
	var actions []Action
	for i, ci := range b.Team.Piles.Hand {
		cost := b.CalculateCost(ci).Final
		if cost > b.Focus {
			continue
		}
		if ci.Card.IsUtility() {
			actions = append(actions, Action{
				Type:      ActionUseUtility,
				HandIndex: i,
				Card:      ci,
				Desc:      fmt.Sprintf("Use %s (cost %d)", ci.Card.Name, cost),
			})
			continue
		}
		actions = append(actions, Action{
			Type:      ActionSelectCard,
			HandIndex: i,
			Card:      ci,
			Desc:      fmt.Sprintf("Select %s (cost %d, damage %d)", ci.Card.Name, cost, ci.Card.Damage),
		})
	}
	actions = append(actions,
		Action{Type: ActionAutoPlay, Desc: "Auto play"},
		Action{Type: ActionEndTurn, Desc: "End turn"},
	)
	return actions
}

// TargetActions lists one target action per tactic for card, plus cancel.
func (b *Battle) TargetActions(card *CardInstance) []Action {
	var actions []Action
	for i, t := range b.Case.Tactics {
		desc := fmt.Sprintf("Play %s → %s (%d/%d)", card.Card.Name, t.Name, t.Exposed, t.Threshold)
		if t.Cleared {
			desc += " [cleared]"
		}
		actions = append(actions, Action{
			Type:      ActionTarget,
			HandIndex: b.Team.Piles.handIndex(card),
			Objective: i,
			Card:      card,
			Desc:      desc,
		})
	}
	actions = append(actions, Action{Type: ActionCancel, Card: card, Desc: "Cancel"})
	return actions
}

// --- Turn phases ---

// startTurn runs the turn-start phase and opens the action phase.
func (b *Battle) startTurn() {
	b.Turn++
	b.Phase = PhaseTurnStart

	b.MaxFocus = b.Team.BaseFocus()
	for _, rr := range rosterRules(b.Team.Roster, RuleFocusBonus) {
		b.MaxFocus += rr.Rule.Flat
	}
	draws := b.Rules.HandSize + b.pendingDraws
	b.pendingDraws = 0
	for _, a := range b.Team.Artifacts {
		if a.Trigger != TriggerTurnStart {
			continue
		}
		switch a.Kind {
		case ArtifactFocus:
			b.MaxFocus += a.Magnitude
		case ArtifactDraw:
			draws += a.Magnitude
		}
	}
	b.Focus = b.MaxFocus
	b.log(log.NewTurnEvent(b.Turn, b.Phase.String(), b.Focus))

	b.grantCards()

	b.firstCardArmed = len(rosterRules(b.Team.Roster, RuleFirstCard)) > 0
	b.teamDiscount = 0
	for _, rr := range rosterRules(b.Team.Roster, RuleTeamDiscount) {
		b.teamDiscount += rr.Rule.Flat
	}

	b.draw(draws)

	b.Phase = PhaseAction
	b.log(log.NewPhaseChangeEvent(b.Turn, b.Phase.String()))
}

// grantCards fires the conditional turn-start generation rules, each at most
// once per battle.
func (b *Battle) grantCards() {
	for _, rr := range rosterRules(b.Team.Roster, RuleGrantCard) {
		if b.granted[rr.Index] || b.Stats.Get(rr.Rule.Stat) < rr.Rule.Threshold {
			continue
		}
		b.granted[rr.Index] = true
		card, err := b.Catalog.Card(rr.Rule.Grant)
		if err != nil {
			b.log(log.NewInvalidEvent(b.Turn, b.Phase.String(), fmt.Sprintf("%s cannot grant: %v", rr.Member.Name, err)))
			continue
		}
		ci := b.Team.NewCard(card)
		ci.Generated = true
		ci.JustCreated = true
		b.Team.Piles.Hand = append(b.Team.Piles.Hand, ci)
		b.log(log.NewCardGrantedEvent(b.Turn, b.Phase.String(), card.Name, rr.Member.Name))
	}
}

// EndTurn closes the action phase, runs the opponent's turn and the end
// check, and opens the next turn unless the encounter ended.
func (b *Battle) EndTurn() error {
	if b.Over() {
		return ErrEncounterOver
	}
	if b.Phase != PhaseAction {
		return b.invalid(fmt.Sprintf("cannot end turn during %s", b.Phase))
	}

	b.Phase = PhaseTurnEnd
	n := b.Team.Piles.ReturnAll()
	b.log(log.NewDiscardHandEvent(b.Turn, b.Phase.String(), n))
	b.firstCardArmed = false
	b.teamDiscount = 0
	for _, ci := range b.Team.Piles.All() {
		ci.JustCreated = false
	}

	b.Phase = PhaseOpponent
	b.opponentTurn()

	if b.endCheck() {
		return nil
	}
	if b.Turn >= b.Rules.MaxTurns {
		b.finish(OutcomeDefeat, fmt.Sprintf("turn limit of %d reached", b.Rules.MaxTurns))
		return nil
	}
	b.startTurn()
	return nil
}

// opponentTurn picks a cosmetic defensive action, then rolls damage. The
// two draws come from the run stream in that order.
func (b *Battle) opponentTurn() {
	phase := b.Phase.String()
	if len(b.Case.Actions) > 0 {
		action := b.Case.Actions[b.RNG.IntN(len(b.Case.Actions))]
		b.log(log.NewOpponentActionEvent(b.Turn, phase, b.Case.Name, action))
	}
	dmg := b.RNG.Between(b.Case.DamageMin, b.Case.DamageMax)
	old := b.Team.Damage(dmg)
	b.log(log.NewHPChangeEvent(b.Turn, phase, old, b.Team.HP, b.Case.Name+" pushes back"))
}

// endCheck evaluates the terminal conditions. Victory takes precedence over
// defeat. Returns true if the encounter is over.
func (b *Battle) endCheck() bool {
	if b.Over() {
		return true
	}
	prev := b.Phase
	b.Phase = PhaseEndCheck
	switch {
	case b.Case.Won():
		b.finish(OutcomeVictory, fmt.Sprintf("score %d reached target %d", b.Case.Collected, b.Case.Target))
	case b.Team.HP <= 0:
		b.Team.HP = 0
		b.finish(OutcomeDefeat, "team HP reached 0")
	default:
		b.Phase = prev
		return false
	}
	return true
}

// finish records a terminal outcome exactly once.
func (b *Battle) finish(o Outcome, reason string) {
	if b.Over() {
		return
	}
	phase := b.Phase.String()
	b.Outcome = o
	b.Result = reason
	b.Phase = PhaseOver
	if o == OutcomeVictory {
		b.log(log.NewVictoryEvent(b.Turn, phase, b.Case.Name, b.Case.Collected, b.Case.Target))
	} else {
		b.log(log.NewDefeatEvent(b.Turn, phase, b.Case.Name, reason))
	}
}

// --- Drawing ---

// draw is a top-level draw request. Draw-effect utility cards resolve as
// they arrive; each card instance resolves at most once per request.
func (b *Battle) draw(n int) {
	b.drawChain(n, make(map[int]bool))
}

func (b *Battle) drawChain(n int, resolved map[int]bool) {
	p := &b.Team.Piles
	for i := 0; i < n; i++ {
		card, reshuffled := p.DrawOne(b.RNG)
		if reshuffled > 0 {
			b.log(log.NewReshuffleEvent(b.Turn, b.Phase.String(), reshuffled))
		}
		if card == nil {
			b.log(log.NewDepletedEvent(b.Turn, b.Phase.String(), n, i))
			return
		}
		b.log(log.NewDrawEvent(b.Turn, b.Phase.String(), card.Card.Name))
		b.arrive(card, resolved)
	}
}

// resolveEffect applies a card's draw or search effect after it was played.
func (b *Battle) resolveEffect(card *CardInstance) {
	eff := card.Card.Effect
	if eff == nil || eff.Count <= 0 {
		return
	}
	switch eff.Kind {
	case EffectDraw:
		b.drawChain(eff.Count, map[int]bool{card.ID: true})
	case EffectSearch:
		b.search(card, eff.Trait, eff.Count)
	}
}

// arrive auto-resolves a draw-effect utility that just landed in hand.
func (b *Battle) arrive(card *CardInstance, resolved map[int]bool) {
	if !card.Card.drawsOnArrival() || card.JustCreated || resolved[card.ID] {
		return
	}
	resolved[card.ID] = true
	_ = b.Team.Piles.Play(card)
	b.log(log.NewAutoResolveEvent(b.Turn, b.Phase.String(), card.Card.Name, card.Card.Effect.Count))
	b.drawChain(card.Card.Effect.Count, resolved)
}

// search moves up to count cards carrying trait from the draw pile (top
// first) into the hand. Found cards arrive like drawn ones.
func (b *Battle) search(source *CardInstance, trait Trait, count int) {
	p := &b.Team.Piles
	var found []*CardInstance
	for i := len(p.Draw) - 1; i >= 0 && len(found) < count; i-- {
		ci := p.Draw[i]
		if !ci.Card.HasTrait(trait) {
			continue
		}
		p.Draw = slices.Delete(p.Draw, i, i+1)
		p.Hand = append(p.Hand, ci)
		found = append(found, ci)
		b.log(log.NewSearchEvent(b.Turn, b.Phase.String(), source.Card.Name, ci.Card.Name))
	}
	resolved := map[int]bool{source.ID: true}
	for _, ci := range found {
		b.arrive(ci, resolved)
	}
	if len(found) == 0 {
		ev := log.NewUtilityEvent(b.Turn, b.Phase.String(), source.Card.Name,
			fmt.Sprintf("%s finds no %s card in the draw pile", source.Card.Name, trait))
		ev.Severity = log.SeverityWarning
		b.log(ev)
	}
}

// --- Helpers ---

// handCard checks that card is still in hand and returns its index.
func (b *Battle) handCard(card *CardInstance) (int, error) {
	if card == nil {
		return -1, b.invalid("no card selected")
	}
	i := b.Team.Piles.handIndex(card)
	if i < 0 {
		return -1, b.invalid(fmt.Sprintf("%s is no longer in hand", card.Card.Name))
	}
	return i, nil
}

// invalid logs an aborted command and returns ErrInvalidSelection.
func (b *Battle) invalid(details string) error {
	b.log(log.NewInvalidEvent(b.Turn, b.Phase.String(), details))
	return fmt.Errorf("%w: %s", ErrInvalidSelection, details)
}

// log emits a battle event through the logger and notifies the controller.
func (b *Battle) log(event log.GameEvent) {
	b.Logger.Log(event)
	if b.ctrl != nil {
		_ = b.ctrl.Notify(b.ctx, event)
	}
}
