package game

import (
	"fmt"
	"slices"
)

// --- CardInstance (runtime card in draw pile/hand/discard) ---

type CardInstance struct {
	Card *Card
	ID   int // unique instance ID within a run

	// JustCreated marks a card granted this turn; it never auto-resolves
	// on arrival. Cleared at turn end.
	JustCreated bool

	// Generated cards were created by an ability during a battle and are
	// removed from the pools when the battle is torn down.
	Generated bool
}

func (ci *CardInstance) String() string {
	if ci == nil {
		return "(none)"
	}
	return ci.Card.Name
}

// --- Piles ---

// Piles is the draw pile / hand / discard cycle. The multiset union of the
// three slices only changes through Add and Remove.
type Piles struct {
	Draw    []*CardInstance // top of the draw pile is the last element
	Hand    []*CardInstance
	Discard []*CardInstance
}

// Count returns the total number of cards across all three piles.
func (p *Piles) Count() int {
	return len(p.Draw) + len(p.Hand) + len(p.Discard)
}

// All returns every card, draw pile first, then hand, then discard.
func (p *Piles) All() []*CardInstance {
	all := make([]*CardInstance, 0, p.Count())
	all = append(all, p.Draw...)
	all = append(all, p.Hand...)
	all = append(all, p.Discard...)
	return all
}

// Reshuffle moves the whole discard pile into the draw pile in a new random
// order. It returns the number of cards moved.
func (p *Piles) Reshuffle(rng *RNG) int {
	n := len(p.Discard)
	if n == 0 {
		return 0
	}
	p.Draw = append(p.Draw, p.Discard...)
	p.Discard = nil
	rng.Shuffle(len(p.Draw), func(i, j int) {
		p.Draw[i], p.Draw[j] = p.Draw[j], p.Draw[i]
	})
	return n
}

// DrawOne moves the top card of the draw pile into the hand, reshuffling the
// discard pile first if the draw pile is empty. It returns the card (nil if
// both piles are empty) and how many cards were reshuffled.
func (p *Piles) DrawOne(rng *RNG) (*CardInstance, int) {
	reshuffled := 0
	if len(p.Draw) == 0 {
		reshuffled = p.Reshuffle(rng)
	}
	if len(p.Draw) == 0 {
		return nil, reshuffled
	}
	card := p.Draw[len(p.Draw)-1]
	p.Draw = p.Draw[:len(p.Draw)-1]
	p.Hand = append(p.Hand, card)
	return card, reshuffled
}

// handIndex returns the index of card in the hand, or -1.
func (p *Piles) handIndex(card *CardInstance) int {
	for i, c := range p.Hand {
		if c.ID == card.ID {
			return i
		}
	}
	return -1
}

// Play moves a card from the hand to the discard pile.
func (p *Piles) Play(card *CardInstance) error {
	i := p.handIndex(card)
	if i < 0 {
		return fmt.Errorf("%w: %s is not in hand", ErrInvalidSelection, card)
	}
	p.Hand = slices.Delete(p.Hand, i, i+1)
	p.Discard = append(p.Discard, card)
	return nil
}

// ReturnAll moves the whole hand to the discard pile and returns how many
// cards moved.
func (p *Piles) ReturnAll() int {
	n := len(p.Hand)
	p.Discard = append(p.Discard, p.Hand...)
	p.Hand = nil
	return n
}

// Reset gathers every card into the draw pile and shuffles it.
func (p *Piles) Reset(rng *RNG) {
	p.Draw = p.All()
	p.Hand = nil
	p.Discard = nil
	rng.Shuffle(len(p.Draw), func(i, j int) {
		p.Draw[i], p.Draw[j] = p.Draw[j], p.Draw[i]
	})
}

// Add puts a card at the bottom of the draw pile.
func (p *Piles) Add(card *CardInstance) {
	p.Draw = slices.Insert(p.Draw, 0, card)
}

// Remove deletes the first card with the given name, searching the draw
// pile, then the discard pile, then the hand.
func (p *Piles) Remove(name string) (*CardInstance, bool) {
	for _, pile := range []*[]*CardInstance{&p.Draw, &p.Discard, &p.Hand} {
		for i, c := range *pile {
			if c.Card.Name == name {
				*pile = slices.Delete(*pile, i, i+1)
				return c, true
			}
		}
	}
	return nil, false
}

// RemoveGenerated deletes every generated card from all piles.
func (p *Piles) RemoveGenerated() int {
	n := p.Count()
	keep := func(c *CardInstance) bool { return c.Generated }
	p.Draw = slices.DeleteFunc(p.Draw, keep)
	p.Hand = slices.DeleteFunc(p.Hand, keep)
	p.Discard = slices.DeleteFunc(p.Discard, keep)
	return n - p.Count()
}

// --- Team ---

// Team is the run-scoped team resource state.
type Team struct {
	Roster    []*Member
	HP        int
	MaxHP     int
	Piles     Piles
	Artifacts []*Artifact

	nextID int
}

// NewCard creates a card instance with a fresh run-unique ID. The caller
// places it in a pile.
func (t *Team) NewCard(card *Card) *CardInstance {
	t.nextID++
	return &CardInstance{Card: card, ID: t.nextID}
}

// BaseStats sums the roster's stats.
func (t *Team) BaseStats() Stats {
	var s Stats
	for _, m := range t.Roster {
		s = s.Plus(m.Stats)
	}
	return s
}

// BaseFocus sums the roster's focus capacity.
func (t *Team) BaseFocus() int {
	total := 0
	for _, m := range t.Roster {
		total += m.Focus
	}
	return total
}

// Damage lowers HP by amount, clamped at 0, and returns the old HP.
func (t *Team) Damage(amount int) int {
	old := t.HP
	t.HP -= amount
	if t.HP < 0 {
		t.HP = 0
	}
	return old
}

// Heal raises HP by amount, clamped at MaxHP, and returns the old HP.
func (t *Team) Heal(amount int) int {
	old := t.HP
	t.HP += amount
	if t.HP > t.MaxHP {
		t.HP = t.MaxHP
	}
	return old
}

// --- Case instance ---

// Tactic is one sub-objective of a case.
type Tactic struct {
	Name        string
	Description string
	Threshold   int
	Exposed     int
	Claims      []ClaimType
	Method      MethodType
	Category    Category
	Cleared     bool
}

// Remaining returns how much exposure is still needed to clear the tactic.
func (t *Tactic) Remaining() int {
	return t.Threshold - t.Exposed
}

// Expose applies damage. Exposure never decreases and never exceeds the
// threshold; cleared reports true only on the call that first reaches it.
func (t *Tactic) Expose(damage int) (direct, overkill int, cleared bool) {
	if damage < 0 {
		damage = 0
	}
	direct = min(damage, t.Remaining())
	if direct < 0 {
		direct = 0
	}
	overkill = damage - direct
	t.Exposed += direct
	if !t.Cleared && t.Exposed >= t.Threshold {
		t.Cleared = true
		cleared = true
	}
	return direct, overkill, cleared
}

func (t *Tactic) String() string {
	return t.Name
}

// Case is a per-encounter copy of a CaseTemplate.
type Case struct {
	Name      string
	Size      SizeClass
	Reference int
	Target    int
	DamageMin int
	DamageMax int
	Collected int
	Tactics   []*Tactic
	Actions   []string
}

// Instantiate deep-copies a template into a mutable case. The template is
// left untouched.
func Instantiate(t *CaseTemplate) *Case {
	c := &Case{
		Name:      t.Name,
		Size:      t.Size,
		Reference: t.Reference,
		Target:    t.Target,
		DamageMin: t.DamageMin,
		DamageMax: t.DamageMax,
		Actions:   slices.Clone(t.Actions),
	}
	for _, o := range t.Objectives {
		c.Tactics = append(c.Tactics, &Tactic{
			Name:        o.Name,
			Description: o.Description,
			Threshold:   o.Threshold,
			Claims:      slices.Clone(o.Claims),
			Method:      o.Method,
			Category:    o.Category,
		})
	}
	return c
}

// Open returns the tactics that are not yet cleared, in list order.
func (c *Case) Open() []*Tactic {
	var open []*Tactic
	for _, t := range c.Tactics {
		if !t.Cleared {
			open = append(open, t)
		}
	}
	return open
}

// Won reports whether the collected score has reached the target.
func (c *Case) Won() bool {
	return c.Collected >= c.Target
}
