// Package catalog loads the static content the engine plays with: team
// members, cards, cases and artifacts.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/peterkuimelis/casefile/internal/game"
)

//go:embed default.yaml
var defaultYAML []byte

// File represents the top-level YAML structure.
type File struct {
	Members     []*game.Member       `yaml:"members"`
	Cards       []*game.Card         `yaml:"cards"`
	Cases       []*game.CaseTemplate `yaml:"cases"`
	Artifacts   []*game.Artifact     `yaml:"artifacts"`
	StarterDeck []CardEntry          `yaml:"starter_deck"`
}

// CardEntry represents a card and its count in a deck.
type CardEntry struct {
	Name  string `yaml:"name"`
	Count int    `yaml:"count"`
}

// Load reads and validates a catalog file.
func Load(path string) (*game.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cat, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cat, nil
}

// Default returns the built-in catalog.
func Default() *game.Catalog {
	cat, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("built-in catalog: %v", err))
	}
	return cat
}

// Parse decodes and validates catalog YAML.
func Parse(data []byte) (*game.Catalog, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog YAML: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f.Catalog(), nil
}

// Catalog converts the file into the engine's read-only content set. The
// starter deck is expanded to one name per copy.
func (f *File) Catalog() *game.Catalog {
	cat := &game.Catalog{
		Members:   f.Members,
		Cards:     f.Cards,
		Cases:     f.Cases,
		Artifacts: f.Artifacts,
	}
	for _, e := range f.StarterDeck {
		for i := 0; i < e.Count; i++ {
			cat.StarterDeck = append(cat.StarterDeck, e.Name)
		}
	}
	return cat
}

// Validate reports every content problem at once.
func (f *File) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	cards := make(map[string]*game.Card, len(f.Cards))
	for i, c := range f.Cards {
		switch {
		case c.Name == "":
			add("cards[%d]: missing name", i)
			continue
		case cards[c.Name] != nil:
			add("card %q: defined twice", c.Name)
		}
		cards[c.Name] = c
		if len(c.Claims) == 0 {
			add("card %q: no claim types", c.Name)
		}
		if len(c.Categories) == 0 {
			add("card %q: no categories", c.Name)
		}
		if c.Cost < 0 || c.Damage < 0 {
			add("card %q: cost and damage must be >= 0", c.Name)
		}
		if c.IsUtility() {
			if c.Effect == nil || c.Effect.Count <= 0 {
				add("card %q: utility cards need an effect with a positive count", c.Name)
			}
			if c.Bonus != nil {
				add("card %q: utility cards carry no special bonus", c.Name)
			}
		}
		if c.Bonus != nil && c.Bonus.Multiplier <= 0 {
			add("card %q: bonus multiplier must be > 0", c.Name)
		}
	}

	members := make(map[string]bool, len(f.Members))
	for i, m := range f.Members {
		if m.Name == "" {
			add("members[%d]: missing name", i)
			continue
		}
		if members[m.Name] {
			add("member %q: defined twice", m.Name)
		}
		members[m.Name] = true
		if m.Focus < 0 || m.Stamina < 0 {
			add("member %q: focus and stamina must be >= 0", m.Name)
		}
		if m.Ability == "" {
			continue
		}
		ability, err := game.LookupAbility(m.Ability)
		if err != nil {
			add("member %q: %v", m.Name, err)
			continue
		}
		for _, r := range ability.Rules {
			if r.Kind == game.RuleGrantCard && cards[r.Grant] == nil {
				add("member %q: ability %s grants unknown card %q", m.Name, ability.ID, r.Grant)
			}
		}
	}

	for i, c := range f.Cases {
		if c.Name == "" {
			add("cases[%d]: missing name", i)
			continue
		}
		if c.Target <= 0 {
			add("case %q: target must be > 0", c.Name)
		}
		if c.DamageMin < 0 || c.DamageMax < c.DamageMin {
			add("case %q: damage range %d..%d is invalid", c.Name, c.DamageMin, c.DamageMax)
		}
		if len(c.Objectives) == 0 {
			add("case %q: no objectives", c.Name)
		}
		for _, o := range c.Objectives {
			if o.Threshold <= 0 {
				add("case %q: objective %q needs a positive threshold", c.Name, o.Name)
			}
			if len(o.Claims) == 0 {
				add("case %q: objective %q has no claim types", c.Name, o.Name)
			}
		}
	}

	for _, a := range f.Artifacts {
		if err := a.Valid(); err != nil {
			errs = append(errs, err)
		}
		if a.Kind == game.ArtifactCardCost && a.Card != "" && cards[a.Card] == nil {
			add("artifact %q: unknown card %q", a.Name, a.Card)
		}
	}

	for _, e := range f.StarterDeck {
		if cards[e.Name] == nil {
			add("starter deck: unknown card %q", e.Name)
		}
		if e.Count < 1 {
			add("starter deck: %q needs a count >= 1", e.Name)
		}
	}
	return errors.Join(errs...)
}
