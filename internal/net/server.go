package net

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"os"

	"github.com/peterkuimelis/casefile/internal/game"
	"github.com/peterkuimelis/casefile/internal/log"
)

// Server hosts a single run for one client.
type Server struct {
	Catalog *game.Catalog
	Rules   game.Rules
	Seed    uint64
	Cases   []string // empty = every catalog case in order
	Port    string

	// Out receives the host-side event log. nil = os.Stdout.
	Out io.Writer
}

// Run starts the server, waits for a client to join, then plays the run
// with the joiner in control.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", ":"+s.Port)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	defer ln.Close()

	fmt.Fprintf(s.out(), "Waiting for a player on port %s...\n", s.Port)

	conn, err := ln.Accept()
	if err != nil {
		return fmt.Errorf("accept: %w", err)
	}
	defer conn.Close()

	var join ClientMessage
	if err := json.NewDecoder(conn).Decode(&join); err != nil {
		return fmt.Errorf("read join message: %w", err)
	}
	if join.Type != "join" {
		return fmt.Errorf("expected join message, got %q", join.Type)
	}
	name := join.Name
	if name == "" {
		name = conn.RemoteAddr().String()
	}
	fmt.Fprintf(s.out(), "%s joined\n", name)

	_, err = s.Play(ctx, conn)
	return err
}

// RunLocal plays the run on this terminal: the REPL talks to the engine
// through an in-memory pipe.
func (s *Server) RunLocal(ctx context.Context, in io.Reader, out io.Writer) error {
	clientConn, serverConn := net.Pipe()

	replErr := make(chan error, 1)
	go func() {
		err := NewClient(clientConn, in, out).RunREPL(ctx)
		clientConn.Close()
		replErr <- err
	}()

	_, err := s.Play(ctx, serverConn)
	serverConn.Close()
	if rerr := <-replErr; rerr != nil && err == nil {
		err = rerr
	}
	return err
}

// Play runs the series over conn, which must already be past the join
// handshake, and finishes with a run_over message.
func (s *Server) Play(ctx context.Context, conn net.Conn) (*game.Run, error) {
	feed := log.NewBattleLog(s.Rules.LogCapacity)
	var logger log.EventLogger = feed
	if s.Out != nil {
		logger = log.MultiLogger{feed, log.NewTextLogger(s.Out)}
	}

	run, err := game.NewRun(game.RunConfig{
		Catalog: s.Catalog,
		Rules:   s.Rules,
		Seed:    s.Seed,
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}

	ctrl := NewNetworkController(conn)
	ctrl.Feed = feed

	results, err := run.PlaySeries(ctx, ctrl, s.cases())
	if err != nil {
		return run, fmt.Errorf("run %s: %w", run.ID, err)
	}
	if err := ctrl.SendRunOver(results, run.TotalScore, Summary(run)); err != nil {
		return run, fmt.Errorf("send run_over: %w", err)
	}
	return run, nil
}

func (s *Server) cases() []string {
	if len(s.Cases) > 0 {
		return s.Cases
	}
	names := make([]string, len(s.Catalog.Cases))
	for i, c := range s.Catalog.Cases {
		names[i] = c.Name
	}
	return names
}

func (s *Server) out() io.Writer {
	if s.Out != nil {
		return s.Out
	}
	return os.Stdout
}

// Summary is the one-line result of a run.
func Summary(r *game.Run) string {
	if n := len(r.Results); r.Over && n > 0 {
		last := r.Results[n-1]
		return fmt.Sprintf("Run lost at %s (%s). %d case(s) played, total score %d.",
			last.Case, last.Reason, n, r.TotalScore)
	}
	return fmt.Sprintf("Run complete. %d case(s) closed, total score %d.", len(r.Results), r.TotalScore)
}
