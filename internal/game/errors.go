package game

import "errors"

var (
	// ErrInvalidSelection aborts a single command that referenced a card or
	// tactic that no longer exists. The battle itself is unaffected.
	ErrInvalidSelection = errors.New("invalid selection")

	// ErrInsufficientFocus rejects a play without changing any state.
	ErrInsufficientFocus = errors.New("insufficient focus")

	// ErrEncounterOver is returned for commands issued after a terminal outcome.
	ErrEncounterOver = errors.New("encounter is over")

	ErrUnknownCard     = errors.New("unknown card")
	ErrUnknownCase     = errors.New("unknown case")
	ErrUnknownMember   = errors.New("unknown member")
	ErrUnknownArtifact = errors.New("unknown artifact")
	ErrRosterSize      = errors.New("wrong roster size")
	ErrNotDrafted      = errors.New("roster not drafted")
	ErrRunOver         = errors.New("run is over")
)
