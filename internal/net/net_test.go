package net

import (
	"context"
	"encoding/json"
	"net"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peterkuimelis/casefile/internal/catalog"
	"github.com/peterkuimelis/casefile/internal/game"
)

// autoClient answers every prompt on conn: the first n candidates in a
// draft, auto-play while it is offered and end turn otherwise.
func autoClient(t *testing.T, conn net.Conn) <-chan ServerMessage {
	t.Helper()
	done := make(chan ServerMessage, 1)
	go func() {
		defer close(done)
		dec := json.NewDecoder(conn)
		enc := json.NewEncoder(conn)
		lastAuto := -1
		for {
			var msg ServerMessage
			if err := dec.Decode(&msg); err != nil {
				return
			}
			switch msg.Type {
			case "choose_members":
				var idx []int
				for i := 0; i < msg.Count; i++ {
					idx = append(idx, i)
				}
				_ = enc.Encode(ClientMessage{Type: "members", Indices: idx})
			case "choose_action":
				pick := len(msg.Actions) - 1
				for _, a := range msg.Actions {
					if a.Type == game.ActionAutoPlay.String() && msg.State.Focus != lastAuto {
						pick = a.Index
					}
				}
				if msg.Actions[pick].Type == game.ActionAutoPlay.String() {
					lastAuto = msg.State.Focus
				} else {
					lastAuto = -1
				}
				_ = enc.Encode(ClientMessage{Type: "action", Index: pick})
			case "run_over":
				done <- msg
				return
			}
		}
	}()
	return done
}

func TestServerPlaysRunOverConnection(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	done := autoClient(t, client)

	cat := catalog.Default()
	srv := &Server{Catalog: cat, Rules: game.DefaultRules(), Seed: 7, Cases: []string{"Corner Bakery"}}
	run, err := srv.Play(context.Background(), server)
	require.NoError(t, err)

	msg, ok := <-done
	require.True(t, ok, "expected a run_over message")
	require.Len(t, msg.Results, 1)
	assert.Equal(t, "Corner Bakery", msg.Results[0].Case)
	assert.Equal(t, run.TotalScore, msg.TotalScore)
	assert.Equal(t, Summary(run), msg.Result)
	assert.Len(t, run.Team.Roster, 3)
}

func TestServerDefaultsToEveryCase(t *testing.T) {
	srv := &Server{Catalog: catalog.Default()}
	cases := srv.cases()
	require.Len(t, cases, len(srv.Catalog.Cases))
	assert.Equal(t, "Corner Bakery", cases[0])
}

func newBattle(t *testing.T) *game.Battle {
	t.Helper()
	cat := catalog.Default()
	run, err := game.NewRun(game.RunConfig{Catalog: cat, Rules: game.DefaultRules(), Seed: 1, NoShuffle: true})
	require.NoError(t, err)
	require.NoError(t, run.Draft("Mara Lindqvist", "Tomas Reyes", "Ines Okafor"))
	b, err := run.StartEncounter("Corner Bakery")
	require.NoError(t, err)
	b.Begin()
	return b
}

func TestControllerFallsBackToLastAction(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	b := newBattle(t)
	actions := b.Actions()
	require.NotEmpty(t, actions)

	go func() {
		var msg ServerMessage
		if err := json.NewDecoder(client).Decode(&msg); err != nil {
			return
		}
		_ = json.NewEncoder(client).Encode(ClientMessage{Type: "action", Index: 99})
	}()

	nc := NewNetworkController(server)
	got, err := nc.ChooseAction(context.Background(), b, actions)
	require.NoError(t, err)
	assert.Equal(t, game.ActionEndTurn, got.Type)
}

func TestChooseMembersDropsBadPicks(t *testing.T) {
	offer := []*game.Member{{Name: "A"}, {Name: "B"}, {Name: "C"}}
	got := pickMembers(offer, []int{2, 2, -1, 7, 0})
	require.Len(t, got, 2)
	assert.Equal(t, "C", got[0].Name)
	assert.Equal(t, "A", got[1].Name)
}

func TestBuildStateView(t *testing.T) {
	b := newBattle(t)
	sv := BuildStateView(b, nil)

	assert.Equal(t, "Corner Bakery", sv.Case)
	assert.Equal(t, 1, sv.Turn)
	assert.Equal(t, b.Team.HP, sv.HP)
	assert.Equal(t, b.Focus, sv.Focus)
	assert.Len(t, sv.Hand, len(b.Team.Piles.Hand))
	assert.Len(t, sv.Tactics, 2)
	assert.Equal(t, []string{"income", "vat"}, sv.Tactics[0].Claims)
	assert.Equal(t, []string{"Mara Lindqvist", "Tomas Reyes", "Ines Okafor"}, sv.Roster)
	for i, cv := range sv.Hand {
		assert.Equal(t, b.CalculateCost(b.Team.Piles.Hand[i]).Final, cv.Cost)
	}
}

func TestParseIndices(t *testing.T) {
	tests := []struct {
		line string
		want []int
		ok   bool
	}{
		{"0 2 3", []int{0, 2, 3}, true},
		{"", nil, true},
		{"1 1", nil, false},
		{"4", nil, false},
		{"x", nil, false},
	}
	for _, tt := range tests {
		got, ok := parseIndices(tt.line, 4)
		assert.Equal(t, tt.ok, ok, tt.line)
		assert.Equal(t, tt.want, got, tt.line)
	}
}

func TestRunLocalStopsWhenInputEnds(t *testing.T) {
	var out strings.Builder
	srv := &Server{Catalog: catalog.Default(), Rules: game.DefaultRules(), Cases: []string{"Corner Bakery"}}
	err := srv.RunLocal(context.Background(), strings.NewReader(""), &out)
	require.Error(t, err)
	assert.Contains(t, out.String(), "Pick 3 team members")
}
