package net

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"sync"

	"github.com/peterkuimelis/casefile/internal/game"
	"github.com/peterkuimelis/casefile/internal/log"
)

// NetworkController implements game.TeamController by sending prompts
// over a connection and waiting for the client's answers.
type NetworkController struct {
	conn net.Conn
	enc  *json.Encoder
	dec  *json.Decoder
	mu   sync.Mutex

	// Feed, when set, supplies the log tail attached to every state view.
	Feed *log.BattleLog
}

// NewNetworkController creates a controller that communicates over conn.
func NewNetworkController(conn net.Conn) *NetworkController {
	return &NetworkController{
		conn: conn,
		enc:  json.NewEncoder(conn),
		dec:  json.NewDecoder(conn),
	}
}

func (nc *NetworkController) send(msg ServerMessage) error {
	nc.mu.Lock()
	defer nc.mu.Unlock()
	return nc.enc.Encode(msg)
}

func (nc *NetworkController) recv() (ClientMessage, error) {
	var msg ClientMessage
	err := nc.dec.Decode(&msg)
	return msg, err
}

// ChooseAction implements game.TeamController. An out-of-range index is
// answered with the last action, which is always end turn or cancel.
func (nc *NetworkController) ChooseAction(ctx context.Context, b *game.Battle, actions []game.Action) (game.Action, error) {
	if len(actions) == 0 {
		return game.Action{}, fmt.Errorf("choose action: no actions")
	}
	var recent []log.GameEvent
	if nc.Feed != nil {
		recent = nc.Feed.Recent()
	}
	if err := nc.send(ServerMessage{
		Type:    "choose_action",
		State:   BuildStateView(b, recent),
		Actions: NewActionViews(actions),
	}); err != nil {
		return game.Action{}, fmt.Errorf("send choose_action: %w", err)
	}

	resp, err := nc.recv()
	if err != nil {
		return game.Action{}, fmt.Errorf("recv action: %w", err)
	}
	if resp.Index < 0 || resp.Index >= len(actions) {
		return actions[len(actions)-1], nil
	}
	return actions[resp.Index], nil
}

// ChooseMembers implements game.TeamController. Duplicate or out-of-range
// picks are dropped; the run rejects a short roster.
func (nc *NetworkController) ChooseMembers(ctx context.Context, offer []*game.Member, n int) ([]*game.Member, error) {
	if err := nc.send(ServerMessage{
		Type:       "choose_members",
		Prompt:     fmt.Sprintf("Pick %d team members", n),
		Candidates: NewMemberViews(offer),
		Count:      n,
	}); err != nil {
		return nil, fmt.Errorf("send choose_members: %w", err)
	}

	resp, err := nc.recv()
	if err != nil {
		return nil, fmt.Errorf("recv members: %w", err)
	}
	return pickMembers(offer, resp.Indices), nil
}

func pickMembers(offer []*game.Member, indices []int) []*game.Member {
	seen := make(map[int]bool)
	var picked []*game.Member
	for _, idx := range indices {
		if idx >= 0 && idx < len(offer) && !seen[idx] {
			seen[idx] = true
			picked = append(picked, offer[idx])
		}
	}
	return picked
}

// Notify implements game.TeamController.
func (nc *NetworkController) Notify(ctx context.Context, event log.GameEvent) error {
	ev := NewEventView(event)
	return nc.send(ServerMessage{Type: "notify", Event: &ev})
}

// SendRunOver tells the client the run has ended.
func (nc *NetworkController) SendRunOver(results []game.EncounterResult, total int, result string) error {
	return nc.send(ServerMessage{
		Type:       "run_over",
		Results:    NewResultViews(results),
		TotalScore: total,
		Result:     result,
	})
}
