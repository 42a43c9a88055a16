package net

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"
)

// Client connects to a game server and provides a terminal REPL.
type Client struct {
	conn net.Conn
	in   *bufio.Reader
	out  io.Writer
}

// NewClient creates a REPL over conn reading commands from in.
func NewClient(conn net.Conn, in io.Reader, out io.Writer) *Client {
	return &Client{conn: conn, in: bufio.NewReader(in), out: out}
}

// Connect connects to a server, sends the join message, and runs the REPL
// on this terminal.
func Connect(ctx context.Context, addr, name string) error {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	if err := json.NewEncoder(conn).Encode(ClientMessage{Type: "join", Name: name}); err != nil {
		return fmt.Errorf("send join: %w", err)
	}

	fmt.Println("Connected! Waiting for the run to start...")

	return NewClient(conn, os.Stdin, os.Stdout).RunREPL(ctx)
}

// RunREPL reads server messages and handles them interactively until the
// run is over.
func (c *Client) RunREPL(ctx context.Context) error {
	dec := json.NewDecoder(c.conn)
	enc := json.NewEncoder(c.conn)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		var msg ServerMessage
		if err := dec.Decode(&msg); err != nil {
			return fmt.Errorf("read message: %w", err)
		}

		switch msg.Type {
		case "notify":
			c.renderEvent(msg.Event)

		case "choose_action":
			c.renderState(msg.State)
			c.renderActions(msg.Actions)
			idx, err := c.readChoice(len(msg.Actions))
			if err != nil {
				return err
			}
			if err := enc.Encode(ClientMessage{Type: "action", Index: idx}); err != nil {
				return fmt.Errorf("send action: %w", err)
			}

		case "choose_members":
			c.renderMembers(msg.Prompt, msg.Candidates)
			indices, err := c.readIndices(len(msg.Candidates), msg.Count)
			if err != nil {
				return err
			}
			if err := enc.Encode(ClientMessage{Type: "members", Indices: indices}); err != nil {
				return fmt.Errorf("send members: %w", err)
			}

		case "run_over":
			c.renderRunOver(msg)
			return nil
		}
	}
}

func (c *Client) renderEvent(ev *EventView) {
	if ev == nil {
		return
	}
	// Format like the TextLogger
	phase := ev.Phase
	for len(phase) < 12 {
		phase += " "
	}
	fmt.Fprintf(c.out, "T%-2d %s| %s\n", ev.Turn, phase, ev.Details)
}

func (c *Client) renderState(sv *StateView) {
	if sv == nil {
		return
	}

	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, "╔══════════════════════════════════════════════════════╗")
	fmt.Fprintf(c.out, "║  %s  turn %d  score %d/%d  (scale %.2f)\n", sv.Case, sv.Turn, sv.Score, sv.Target, sv.Scale)
	for _, t := range sv.Tactics {
		mark := " "
		if t.Cleared {
			mark = "✓"
		}
		fmt.Fprintf(c.out, "║   %s %-24s %4d/%-4d %s / %s / %s\n", mark, t.Name, t.Exposed, t.Threshold,
			strings.Join(t.Claims, ","), t.Method, t.Category)
	}
	fmt.Fprintln(c.out, "║──────────────────────────────────────────────────────")
	fmt.Fprintf(c.out, "║  HP %d/%d  Focus %d/%d  Draw %d  Discard %d\n",
		sv.HP, sv.MaxHP, sv.Focus, sv.MaxFocus, sv.DrawCount, sv.DiscardCount)
	fmt.Fprintf(c.out, "║  ANA %d  DAT %d  PER %d  EVI %d\n",
		sv.Stats.Analysis, sv.Stats.Data, sv.Stats.Persuasion, sv.Stats.Evidence)
	if len(sv.Artifacts) > 0 {
		fmt.Fprintf(c.out, "║  Artifacts: %s\n", strings.Join(sv.Artifacts, ", "))
	}
	fmt.Fprintln(c.out, "║  Hand:")
	for _, cv := range sv.Hand {
		fmt.Fprintf(c.out, "║    %s\n", formatCard(cv))
	}
	fmt.Fprintln(c.out, "╚══════════════════════════════════════════════════════╝")
}

func formatCard(cv CardView) string {
	cost := strconv.Itoa(cv.Cost)
	if cv.Cost != cv.BaseCost {
		cost = fmt.Sprintf("%d (base %d)", cv.Cost, cv.BaseCost)
	}
	if cv.Kind == "utility" {
		return fmt.Sprintf("%-24s cost %s  %s", cv.Name, cost, cv.Text)
	}
	return fmt.Sprintf("%-24s cost %s  dmg %d  %s | %s", cv.Name, cost, cv.Damage,
		strings.Join(cv.Claims, ","), strings.Join(cv.Categories, ","))
}

func (c *Client) renderActions(actions []ActionView) {
	fmt.Fprintln(c.out, "\nActions:")
	for _, a := range actions {
		fmt.Fprintf(c.out, "  [%d] %s\n", a.Index, a.Desc)
	}
}

func (c *Client) renderMembers(prompt string, candidates []MemberView) {
	fmt.Fprintf(c.out, "\n%s:\n", prompt)
	for _, m := range candidates {
		fmt.Fprintf(c.out, "  [%d] %-18s tier %d  focus %d  stamina %d  ANA %d DAT %d PER %d EVI %d  %s\n",
			m.Index, m.Name, m.Tier, m.Focus, m.Stamina,
			m.Stats.Analysis, m.Stats.Data, m.Stats.Persuasion, m.Stats.Evidence, m.Ability)
	}
}

func (c *Client) renderRunOver(msg ServerMessage) {
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, "═══════════════════════════════════")
	fmt.Fprintln(c.out, "          RUN OVER")
	fmt.Fprintln(c.out, "═══════════════════════════════════")
	for _, r := range msg.Results {
		fmt.Fprintf(c.out, "%-20s %-8s %d/%d in %d turns\n", r.Case, r.Outcome, r.Score, r.Target, r.Turns)
	}
	fmt.Fprintln(c.out, msg.Result)
	fmt.Fprintln(c.out, "═══════════════════════════════════")
}

func (c *Client) readLine() (string, error) {
	line, err := c.in.ReadString('\n')
	if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func (c *Client) readChoice(count int) (int, error) {
	for {
		fmt.Fprintf(c.out, "Choose [0-%d]: ", count-1)
		line, err := c.readLine()
		if err != nil {
			return 0, err
		}
		idx, err := strconv.Atoi(line)
		if err != nil || idx < 0 || idx >= count {
			fmt.Fprintln(c.out, "Invalid choice, try again.")
			continue
		}
		return idx, nil
	}
}

func (c *Client) readIndices(count, want int) ([]int, error) {
	for {
		fmt.Fprintf(c.out, "Enter %d indices separated by spaces: ", want)
		line, err := c.readLine()
		if err != nil {
			return nil, err
		}
		indices, ok := parseIndices(line, count)
		if !ok || len(indices) != want {
			fmt.Fprintf(c.out, "Pick exactly %d distinct members.\n", want)
			continue
		}
		return indices, nil
	}
}

func parseIndices(line string, count int) ([]int, bool) {
	seen := make(map[int]bool)
	var indices []int
	for _, p := range strings.Fields(line) {
		idx, err := strconv.Atoi(p)
		if err != nil || idx < 0 || idx >= count || seen[idx] {
			return nil, false
		}
		seen[idx] = true
		indices = append(indices, idx)
	}
	return indices, true
}
