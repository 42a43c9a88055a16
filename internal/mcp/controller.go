package mcp

import (
	"context"
	"fmt"

	"github.com/peterkuimelis/casefile/internal/game"
	"github.com/peterkuimelis/casefile/internal/log"
	casenet "github.com/peterkuimelis/casefile/internal/net"
)

// MCPController implements game.TeamController by sending decisions
// to the MCP session's pending channel and blocking on a response channel.
type MCPController struct {
	session    *GameSession
	responseCh chan any
}

// NewMCPController creates a controller for the session.
func NewMCPController(session *GameSession) *MCPController {
	return &MCPController{
		session:    session,
		responseCh: make(chan any),
	}
}

func (c *MCPController) await(ctx context.Context, pending *PendingDecision) (any, error) {
	select {
	case c.session.pendingCh <- pending:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case resp := <-c.responseCh:
		return resp, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// ChooseAction implements game.TeamController.
func (c *MCPController) ChooseAction(ctx context.Context, b *game.Battle, actions []game.Action) (game.Action, error) {
	resp, err := c.await(ctx, &PendingDecision{
		Type:    DecisionChooseAction,
		State:   casenet.BuildStateView(b, c.session.feed.Recent()),
		Actions: casenet.NewActionViews(actions),
	})
	if err != nil {
		return game.Action{}, err
	}
	ar, ok := resp.(ActionResponse)
	if !ok {
		return game.Action{}, fmt.Errorf("choose action: unexpected response %T", resp)
	}
	if ar.Index < 0 || ar.Index >= len(actions) {
		return actions[len(actions)-1], nil
	}
	return actions[ar.Index], nil
}

// ChooseMembers implements game.TeamController.
func (c *MCPController) ChooseMembers(ctx context.Context, offer []*game.Member, n int) ([]*game.Member, error) {
	resp, err := c.await(ctx, &PendingDecision{
		Type:       DecisionChooseMembers,
		Prompt:     fmt.Sprintf("Pick %d team members", n),
		Candidates: casenet.NewMemberViews(offer),
		Count:      n,
	})
	if err != nil {
		return nil, err
	}
	mr, ok := resp.(MembersResponse)
	if !ok {
		return nil, fmt.Errorf("choose members: unexpected response %T", resp)
	}
	var picked []*game.Member
	for _, idx := range mr.Indices {
		if idx >= 0 && idx < len(offer) {
			picked = append(picked, offer[idx])
		}
	}
	return picked, nil
}

// Notify implements game.TeamController. Events already reach the session
// through the run logger.
func (c *MCPController) Notify(ctx context.Context, event log.GameEvent) error {
	return nil
}
