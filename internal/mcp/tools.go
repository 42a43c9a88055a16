package mcp

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/peterkuimelis/casefile/internal/game"
)

// activeSession is the singleton run (one per stdio process).
var activeSession *GameSession

var (
	content *game.Catalog
	rules   = game.DefaultRules()
	seed    uint64
)

// SetCatalog sets the content new runs are built from.
func SetCatalog(c *game.Catalog) {
	content = c
}

// SetRules sets the balance rules new runs use.
func SetRules(r game.Rules) {
	rules = r
}

// SetSeed sets the seed used when start_run gives none. 0 picks a fresh
// clock-derived seed for every run.
func SetSeed(s uint64) {
	seed = s
}

// runSeed resolves the seed of a new run: the tool argument, then the
// configured seed, then the clock.
func runSeed(arg int) uint64 {
	switch {
	case arg > 0:
		return uint64(arg)
	case seed != 0:
		return seed
	default:
		return uint64(time.Now().UnixNano())
	}
}

// RegisterTools adds all run tools to the MCP server.
func RegisterTools(s *server.MCPServer) {
	s.AddTool(startRunTool(), handleStartRun)
	s.AddTool(pickMembersTool(), handlePickMembers)
	s.AddTool(takeActionTool(), handleTakeAction)
	s.AddTool(getStateTool(), handleGetState)
}

// --- Tool definitions ---

func startRunTool() mcp.Tool {
	return mcp.NewTool("start_run",
		mcp.WithDescription("Start a new casefile run: draft a team of auditors, then work through tax cases "+
			"by playing cards against each case's tactics. Returns the first pending decision (the draft)."),
		mcp.WithNumber("seed", mcp.Description("Random seed; the same seed and choices replay the same run (default: the server's seed)")),
		mcp.WithString("cases", mcp.Description("Comma-separated case names to play in order (default: every case)")),
	)
}

func pickMembersTool() mcp.Tool {
	return mcp.NewTool("pick_members",
		mcp.WithDescription("Draft the team. Use this when the pending decision type is 'choose_members'."),
		mcp.WithString("indices", mcp.Required(), mcp.Description("Space-separated 0-based candidate indices (e.g. '0 2 3')")),
	)
}

func takeActionTool() mcp.Tool {
	return mcp.NewTool("take_action",
		mcp.WithDescription("Choose an action from the pending action list. Use this when the pending decision type is 'choose_action'. "+
			"Selecting a card is followed by a second choice of target tactic."),
		mcp.WithNumber("index", mcp.Required(), mcp.Description("0-based index of the action to take from the actions list")),
	)
}

func getStateTool() mcp.Tool {
	return mcp.NewTool("get_state",
		mcp.WithDescription("Get the current state, accumulated events and pending decision without submitting a response. Read-only."),
	)
}

// --- Tool handlers ---

func handleStartRun(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if activeSession != nil {
		return mcp.NewToolResultError("A run is already in progress. Only one run at a time is supported."), nil
	}
	if content == nil {
		return mcp.NewToolResultError("No catalog loaded."), nil
	}

	seedArg := request.GetInt("seed", 0)
	if seedArg < 0 {
		return mcp.NewToolResultError("seed must be >= 0"), nil
	}
	var cases []string
	for _, name := range strings.Split(request.GetString("cases", ""), ",") {
		if name = strings.TrimSpace(name); name != "" {
			cases = append(cases, name)
		}
	}

	sess, err := NewGameSession(SessionConfig{
		Catalog: content,
		Rules:   rules,
		Seed:    runSeed(seedArg),
		Cases:   cases,
	})
	if err != nil {
		return mcp.NewToolResultErrorf("Failed to start run: %v", err), nil
	}
	activeSession = sess

	return finish(sess.waitForPending()), nil
}

func handlePickMembers(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, pending, errResult := pendingOf(DecisionChooseMembers)
	if errResult != nil {
		return errResult, nil
	}

	var indices []int
	seen := make(map[int]bool)
	for _, p := range strings.Fields(request.GetString("indices", "")) {
		idx, err := strconv.Atoi(p)
		if err != nil {
			return mcp.NewToolResultErrorf("Invalid index '%s': must be an integer.", p), nil
		}
		if idx < 0 || idx >= len(pending.Candidates) {
			return mcp.NewToolResultErrorf("Index %d out of range. Must be 0-%d.", idx, len(pending.Candidates)-1), nil
		}
		if seen[idx] {
			return mcp.NewToolResultErrorf("Index %d picked twice.", idx), nil
		}
		seen[idx] = true
		indices = append(indices, idx)
	}
	if len(indices) != pending.Count {
		return mcp.NewToolResultErrorf("Must pick exactly %d member(s), got %d.", pending.Count, len(indices)), nil
	}

	return finish(sess.respond(MembersResponse{Indices: indices})), nil
}

func handleTakeAction(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, pending, errResult := pendingOf(DecisionChooseAction)
	if errResult != nil {
		return errResult, nil
	}

	index := request.GetInt("index", -1)
	if index < 0 || index >= len(pending.Actions) {
		return mcp.NewToolResultErrorf("Invalid index %d. Must be 0-%d.", index, len(pending.Actions)-1), nil
	}

	return finish(sess.respond(ActionResponse{Index: index})), nil
}

func handleGetState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if activeSession == nil {
		return mcp.NewToolResultError("No run is in progress. Use start_run first."), nil
	}
	return mcp.NewToolResultText(respondJSON(activeSession.snapshot())), nil
}

// pendingOf checks that the active session waits for a decision of type t.
func pendingOf(t DecisionType) (*GameSession, *PendingDecision, *mcp.CallToolResult) {
	if activeSession == nil {
		return nil, nil, mcp.NewToolResultError("No run is in progress. Use start_run first.")
	}
	pending := activeSession.currentPending
	if pending == nil {
		return nil, nil, mcp.NewToolResultError("No pending decision.")
	}
	if pending.Type != t {
		return nil, nil, mcp.NewToolResultErrorf("Wrong tool: pending decision is '%s', not '%s'. Use the correct tool.", pending.Type, t)
	}
	return activeSession, pending, nil
}

// finish renders resp and releases the session once the run is over.
func finish(resp *ToolResponse) *mcp.CallToolResult {
	if resp.RunOver {
		activeSession = nil
	}
	return mcp.NewToolResultText(respondJSON(resp))
}
