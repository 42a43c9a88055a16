package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/peterkuimelis/casefile/internal/game"
	"github.com/peterkuimelis/casefile/internal/log"
	casenet "github.com/peterkuimelis/casefile/internal/net"
)

// DecisionType identifies what kind of decision the run is waiting for.
type DecisionType string

const (
	DecisionChooseAction  DecisionType = "choose_action"
	DecisionChooseMembers DecisionType = "choose_members"
	DecisionRunOver       DecisionType = "run_over"
)

// PendingDecision represents a decision the run is waiting for.
type PendingDecision struct {
	Type       DecisionType         `json:"type"`
	State      *casenet.StateView   `json:"state,omitempty"`
	Actions    []casenet.ActionView `json:"actions,omitempty"`
	Prompt     string               `json:"prompt,omitempty"`
	Candidates []casenet.MemberView `json:"candidates,omitempty"`
	Count      int                  `json:"count,omitempty"`
}

// Response types sent back from MCP tools to the controller.

type ActionResponse struct {
	Index int
}

type MembersResponse struct {
	Indices []int
}

// ToolResponse is the JSON envelope returned by all MCP tools.
type ToolResponse struct {
	RunID      string               `json:"run_id"`
	Seed       uint64               `json:"seed"`
	Events     []casenet.EventView  `json:"events"`
	State      *casenet.StateView   `json:"state,omitempty"`
	Pending    *PendingDecision     `json:"pending,omitempty"`
	RunOver    bool                 `json:"run_over"`
	Results    []casenet.ResultView `json:"results,omitempty"`
	TotalScore int                  `json:"total_score"`
	Result     string               `json:"result,omitempty"`
}

// SessionConfig holds what a new run is built from.
type SessionConfig struct {
	Catalog *game.Catalog
	Rules   game.Rules
	Seed    uint64
	Cases   []string
}

// GameSession holds the state of a single MCP run.
type GameSession struct {
	run  *game.Run
	ctrl *MCPController
	feed *log.BattleLog

	cancel context.CancelFunc

	pendingCh      chan *PendingDecision
	currentPending *PendingDecision

	mu      sync.Mutex
	events  []casenet.EventView
	over    bool
	result  string
	results []game.EncounterResult
}

// NewGameSession creates a run and starts playing it in the background.
// The run immediately blocks on the draft decision.
func NewGameSession(cfg SessionConfig) (*GameSession, error) {
	sess := &GameSession{
		feed:      log.NewBattleLog(cfg.Rules.LogCapacity),
		pendingCh: make(chan *PendingDecision, 1),
	}
	run, err := game.NewRun(game.RunConfig{
		Catalog: cfg.Catalog,
		Rules:   cfg.Rules,
		Seed:    cfg.Seed,
		Logger:  log.MultiLogger{sess.feed, sess},
	})
	if err != nil {
		return nil, err
	}
	cases := cfg.Cases
	if len(cases) == 0 {
		for _, c := range cfg.Catalog.Cases {
			cases = append(cases, c.Name)
		}
	}
	for _, name := range cases {
		if _, err := cfg.Catalog.Case(name); err != nil {
			return nil, err
		}
	}

	sess.run = run
	sess.ctrl = NewMCPController(sess)

	ctx, cancel := context.WithCancel(context.Background())
	sess.cancel = cancel

	go func() {
		results, err := run.PlaySeries(ctx, sess.ctrl, cases)
		result := casenet.Summary(run)
		if err != nil {
			result = fmt.Sprintf("error: %v", err)
		}

		sess.mu.Lock()
		sess.over = true
		sess.result = result
		sess.results = results
		sess.mu.Unlock()

		sess.pendingCh <- &PendingDecision{Type: DecisionRunOver}
	}()

	return sess, nil
}

// ID returns the run's identifier.
func (s *GameSession) ID() string {
	return s.run.ID
}

// Close abandons the run.
func (s *GameSession) Close() {
	s.cancel()
}

// Log implements log.EventLogger so the session sees run-level events as
// well as battle events.
func (s *GameSession) Log(event log.GameEvent) {
	s.appendEvent(casenet.NewEventView(event))
}

// Events implements log.EventLogger.
func (s *GameSession) Events() []log.GameEvent {
	return s.feed.Events()
}

// appendEvent adds an event to the session's event buffer. Thread-safe.
func (s *GameSession) appendEvent(ev casenet.EventView) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

// drainEvents returns all accumulated events and clears the buffer.
func (s *GameSession) drainEvents() []casenet.EventView {
	s.mu.Lock()
	defer s.mu.Unlock()
	events := s.events
	s.events = nil
	if events == nil {
		events = []casenet.EventView{}
	}
	return events
}

// respond hands a tool's answer to the waiting controller, then blocks
// until the run asks for the next decision.
func (s *GameSession) respond(resp any) *ToolResponse {
	s.currentPending = nil
	s.ctrl.responseCh <- resp
	return s.waitForPending()
}

// waitForPending blocks until the next decision arrives from the run, then
// builds a ToolResponse with accumulated events and the pending decision.
func (s *GameSession) waitForPending() *ToolResponse {
	pending := <-s.pendingCh
	s.currentPending = nil
	if pending.Type != DecisionRunOver {
		s.currentPending = pending
	}
	return s.snapshot()
}

// snapshot reports the session without waiting.
func (s *GameSession) snapshot() *ToolResponse {
	resp := &ToolResponse{
		RunID:      s.run.ID,
		Seed:       s.run.RNG.Seed(),
		Events:     s.drainEvents(),
		Pending:    s.currentPending,
		TotalScore: s.run.TotalScore,
	}
	if s.currentPending != nil {
		resp.State = s.currentPending.State
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.over {
		resp.RunOver = true
		resp.Result = s.result
		resp.Results = casenet.NewResultViews(s.results)
		resp.TotalScore = s.run.TotalScore
	}
	return resp
}

// respondJSON marshals a ToolResponse to a JSON string.
func respondJSON(resp *ToolResponse) string {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Sprintf(`{"error": "marshal error: %v"}`, err)
	}
	return string(data)
}
