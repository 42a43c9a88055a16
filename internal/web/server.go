package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"net"
	"net/http"

	"github.com/coder/websocket"

	"github.com/peterkuimelis/casefile/internal/game"
	casenet "github.com/peterkuimelis/casefile/internal/net"
)

//go:embed static
var staticFiles embed.FS

// CardInfo is the JSON representation of a card for the /api/catalog endpoint.
type CardInfo struct {
	Name       string   `json:"name"`
	Text       string   `json:"text,omitempty"`
	Kind       string   `json:"kind"`
	Cost       int      `json:"cost"`
	Damage     int      `json:"damage,omitempty"`
	Claims     []string `json:"claims"`
	Categories []string `json:"categories"`
	Traits     []string `json:"traits,omitempty"`
	Bonus      string   `json:"bonus,omitempty"`
	Effect     string   `json:"effect,omitempty"`
}

// MemberInfo is a draftable team member.
type MemberInfo struct {
	Name    string     `json:"name"`
	Tier    int        `json:"tier"`
	Focus   int        `json:"focus"`
	Stamina int        `json:"stamina"`
	Stats   game.Stats `json:"stats"`
	Ability string     `json:"ability,omitempty"`
	Summary string     `json:"summary,omitempty"`
}

// ObjectiveInfo is one tactic of a case.
type ObjectiveInfo struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Threshold   int      `json:"threshold"`
	Claims      []string `json:"claims"`
	Method      string   `json:"method"`
	Category    string   `json:"category"`
}

// CaseInfo is an opposing entity.
type CaseInfo struct {
	Name       string          `json:"name"`
	Size       string          `json:"size"`
	Target     int             `json:"target"`
	DamageMin  int             `json:"damage_min"`
	DamageMax  int             `json:"damage_max"`
	Objectives []ObjectiveInfo `json:"objectives"`
}

// ArtifactInfo is a passive item.
type ArtifactInfo struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Trigger     string `json:"trigger"`
	Kind        string `json:"kind"`
}

// CatalogInfo is the body of GET /api/catalog.
type CatalogInfo struct {
	Members   []MemberInfo   `json:"members"`
	Cards     []CardInfo     `json:"cards"`
	Cases     []CaseInfo     `json:"cases"`
	Artifacts []ArtifactInfo `json:"artifacts"`
}

// Server is the casefile web UI server.
type Server struct {
	catalog  *game.Catalog
	gameAddr string
	mux      *http.ServeMux
}

// NewServer creates a web server describing cat. Browsers that open /ws are
// bridged to the run hosted at gameAddr.
func NewServer(cat *game.Catalog, gameAddr string) *Server {
	s := &Server{
		catalog:  cat,
		gameAddr: gameAddr,
		mux:      http.NewServeMux(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	staticFS, _ := fs.Sub(staticFiles, "static")

	s.mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		f, err := staticFS.Open("index.html")
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		defer f.Close()
		io.Copy(w, f)
	})
	s.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	s.mux.HandleFunc("GET /api/catalog", s.handleCatalog)

	s.mux.HandleFunc("GET /ws", s.handleWebSocket)
}

// ServeHTTP lets the server be mounted or tested directly.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(describe(s.catalog))
}

func describe(cat *game.Catalog) CatalogInfo {
	var info CatalogInfo
	for _, m := range cat.Members {
		mi := MemberInfo{
			Name:    m.Name,
			Tier:    m.Tier,
			Focus:   m.Focus,
			Stamina: m.Stamina,
			Stats:   m.Stats,
			Ability: string(m.Ability),
		}
		if a, err := game.LookupAbility(m.Ability); err == nil {
			mi.Summary = a.Text
		}
		info.Members = append(info.Members, mi)
	}
	for _, c := range cat.Cards {
		ci := CardInfo{
			Name:       c.Name,
			Text:       c.Text,
			Kind:       c.Kind.String(),
			Cost:       c.Cost,
			Damage:     c.Damage,
			Claims:     labels(c.Claims),
			Categories: labels(c.Categories),
			Traits:     labels(c.Traits),
		}
		if c.Bonus != nil {
			ci.Bonus = fmt.Sprintf("x%.2f vs %s", c.Bonus.Multiplier, c.Bonus.Method)
		}
		if c.Effect != nil {
			ci.Effect = fmt.Sprintf("%s %d", c.Effect.Kind, c.Effect.Count)
		}
		info.Cards = append(info.Cards, ci)
	}
	for _, c := range cat.Cases {
		ci := CaseInfo{
			Name:      c.Name,
			Size:      c.Size.String(),
			Target:    c.Target,
			DamageMin: c.DamageMin,
			DamageMax: c.DamageMax,
		}
		for _, o := range c.Objectives {
			ci.Objectives = append(ci.Objectives, ObjectiveInfo{
				Name:        o.Name,
				Description: o.Description,
				Threshold:   o.Threshold,
				Claims:      labels(o.Claims),
				Method:      o.Method.String(),
				Category:    o.Category.String(),
			})
		}
		info.Cases = append(info.Cases, ci)
	}
	for _, a := range cat.Artifacts {
		info.Artifacts = append(info.Artifacts, ArtifactInfo{
			Name:        a.Name,
			Description: a.Description,
			Trigger:     a.Trigger.String(),
			Kind:        a.Kind.String(),
		})
	}
	return info
}

func labels[T fmt.Stringer](vs []T) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.String()
	}
	return out
}

// handleWebSocket bridges one browser to the hosted run at s.gameAddr. The
// browser only supplies a player name; it never picks the address.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	ws, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Printf("websocket accept: %v", err)
		return
	}
	defer ws.CloseNow()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	name, err := readConnect(ctx, ws)
	if err != nil {
		ws.Close(websocket.StatusPolicyViolation, err.Error())
		return
	}

	upstream, err := s.join(ctx, name)
	if err != nil {
		msg, _ := json.Marshal(casenet.ServerMessage{
			Type:   "error",
			Result: fmt.Sprintf("could not reach the game server: %v", err),
		})
		ws.Write(ctx, websocket.MessageText, msg)
		ws.Close(websocket.StatusTryAgainLater, "game server unavailable")
		return
	}
	defer upstream.Close()

	// Browser replies are JSON values; the game server's decoder reads
	// them straight off the stream.
	go func() {
		defer func() {
			cancel()
			upstream.Close()
		}()
		if _, err := io.Copy(upstream, websocket.NetConn(ctx, ws, websocket.MessageText)); err != nil && ctx.Err() == nil {
			log.Printf("bridge to game: %v", err)
		}
	}()

	if err := relayToBrowser(ctx, upstream, ws); err != nil && ctx.Err() == nil {
		log.Printf("bridge to browser: %v", err)
	}
	ws.Close(websocket.StatusNormalClosure, "run ended")
}

// readConnect waits for the browser's {"type":"connect","name":...} message.
func readConnect(ctx context.Context, ws *websocket.Conn) (string, error) {
	_, data, err := ws.Read(ctx)
	if err != nil {
		return "", err
	}
	var msg struct {
		Type string `json:"type"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &msg); err != nil || msg.Type != "connect" {
		return "", errors.New("expected connect message")
	}
	return msg.Name, nil
}

// join dials the game server and sends the join handshake.
func (s *Server) join(ctx context.Context, name string) (net.Conn, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", s.gameAddr)
	if err != nil {
		return nil, err
	}
	if err := json.NewEncoder(conn).Encode(casenet.ClientMessage{Type: "join", Name: name}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("send join: %w", err)
	}
	return conn, nil
}

// relayToBrowser forwards each server message as one websocket frame until
// the game server hangs up.
func relayToBrowser(ctx context.Context, upstream net.Conn, ws *websocket.Conn) error {
	dec := json.NewDecoder(upstream)
	for {
		var msg json.RawMessage
		if err := dec.Decode(&msg); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if err := ws.Write(ctx, websocket.MessageText, msg); err != nil {
			return err
		}
	}
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s.mux)
}
