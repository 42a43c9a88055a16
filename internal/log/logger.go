package log

import (
	"fmt"
	"io"
	"strings"
)

// DefaultCapacity is the number of entries a BattleLog keeps.
const DefaultCapacity = 50

// EventLogger is the interface for logging battle events.
type EventLogger interface {
	Log(event GameEvent)
	Events() []GameEvent
}

// --- MemoryLogger: stores events in memory for test assertions ---

type MemoryLogger struct {
	events []GameEvent
	seq    int
}

func NewMemoryLogger() *MemoryLogger {
	return &MemoryLogger{}
}

func (l *MemoryLogger) Log(event GameEvent) {
	l.seq++
	event.Seq = l.seq
	l.events = append(l.events, event)
}

func (l *MemoryLogger) Events() []GameEvent {
	return l.events
}

// EventsOfType returns all events matching the given type.
func (l *MemoryLogger) EventsOfType(t EventType) []GameEvent {
	var result []GameEvent
	for _, e := range l.events {
		if e.Type == t {
			result = append(result, e)
		}
	}
	return result
}

// LastEvent returns the most recent event, or a zero event if none.
func (l *MemoryLogger) LastEvent() GameEvent {
	if len(l.events) == 0 {
		return GameEvent{}
	}
	return l.events[len(l.events)-1]
}

// --- TextLogger: writes human-readable lines to an io.Writer ---

type TextLogger struct {
	MemoryLogger
	w io.Writer
}

func NewTextLogger(w io.Writer) *TextLogger {
	return &TextLogger{w: w}
}

func (l *TextLogger) Log(event GameEvent) {
	l.MemoryLogger.Log(event)
	fmt.Fprintln(l.w, FormatEvent(event))
}

// --- BattleLog: the capped feed read by the presentation layer ---

// BattleLog keeps only the most recent entries. Events returns them oldest
// first; Recent returns them most recent first.
type BattleLog struct {
	buf  []GameEvent
	next int
	full bool
	seq  int
}

// NewBattleLog creates a log holding at most capacity entries.
// A non-positive capacity falls back to DefaultCapacity.
func NewBattleLog(capacity int) *BattleLog {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &BattleLog{buf: make([]GameEvent, capacity)}
}

func (l *BattleLog) Log(event GameEvent) {
	l.seq++
	event.Seq = l.seq
	l.buf[l.next] = event
	l.next++
	if l.next == len(l.buf) {
		l.next = 0
		l.full = true
	}
}

// Len returns the number of retained entries.
func (l *BattleLog) Len() int {
	if l.full {
		return len(l.buf)
	}
	return l.next
}

func (l *BattleLog) Events() []GameEvent {
	n := l.Len()
	out := make([]GameEvent, 0, n)
	start := 0
	if l.full {
		start = l.next
	}
	for i := 0; i < n; i++ {
		out = append(out, l.buf[(start+i)%len(l.buf)])
	}
	return out
}

// Recent returns the retained entries, most recent first.
func (l *BattleLog) Recent() []GameEvent {
	events := l.Events()
	for i, j := 0, len(events)-1; i < j; i, j = i+1, j-1 {
		events[i], events[j] = events[j], events[i]
	}
	return events
}

// --- MultiLogger: fans events out to several loggers ---

// MultiLogger forwards every event to each wrapped logger. Events reports the
// first logger's view.
type MultiLogger []EventLogger

func (m MultiLogger) Log(event GameEvent) {
	for _, l := range m {
		l.Log(event)
	}
}

func (m MultiLogger) Events() []GameEvent {
	if len(m) == 0 {
		return nil
	}
	return m[0].Events()
}

// --- Formatting ---

// FormatEvent formats a single event as a human-readable line.
func FormatEvent(e GameEvent) string {
	phase := e.Phase
	if phase == "" {
		phase = "          "
	}
	// Pad phase to 14 chars for alignment
	for len(phase) < 14 {
		phase += " "
	}

	return fmt.Sprintf("T%-2d %s| %-7s | %s", e.Turn, phase, e.Severity, e.Details)
}

// FormatAll formats all events as a multi-line string.
func FormatAll(events []GameEvent) string {
	var sb strings.Builder
	for _, e := range events {
		sb.WriteString(FormatEvent(e))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// --- Helper constructors for common events ---

func NewPhaseChangeEvent(turn int, phase string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Type:    EventPhaseChange,
		Details: fmt.Sprintf("Phase → %s", phase),
	}
}

func NewTurnEvent(turn int, phase string, focus int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Type:    EventNewTurn,
		Details: fmt.Sprintf("=== Turn %d (focus %d) ===", turn, focus),
	}
}

func NewEncounterStartEvent(caseName string, target int, objectives int) GameEvent {
	return GameEvent{
		Type:    EventEncounterStart,
		Card:    caseName,
		Details: fmt.Sprintf("Case opened: %s (target %d, %d tactics)", caseName, target, objectives),
	}
}

func NewEncounterEndEvent(turn int, caseName string, outcome string, score, target int) GameEvent {
	sev := SeverityInfo
	if outcome == "victory" {
		sev = SeveritySuccess
	}
	return GameEvent{
		Turn:     turn,
		Type:     EventEncounterEnd,
		Severity: sev,
		Card:     caseName,
		Details:  fmt.Sprintf("Case closed: %s (%s, %d/%d)", caseName, outcome, score, target),
	}
}

func NewDrawEvent(turn int, phase string, cardName string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Type:    EventDraw,
		Card:    cardName,
		Details: fmt.Sprintf("Team draws %s", cardName),
	}
}

func NewReshuffleEvent(turn int, phase string, count int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Type:    EventReshuffle,
		Details: fmt.Sprintf("Discard pile (%d cards) shuffled back into the draw pile", count),
	}
}

func NewDepletedEvent(turn int, phase string, wanted, got int) GameEvent {
	return GameEvent{
		Turn:     turn,
		Phase:    phase,
		Type:     EventDepleted,
		Severity: SeverityWarning,
		Details:  fmt.Sprintf("No cards left to draw (drew %d of %d)", got, wanted),
	}
}

func NewAutoResolveEvent(turn int, phase string, cardName string, count int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Type:    EventAutoResolve,
		Card:    cardName,
		Details: fmt.Sprintf("%s resolves on draw: draw %d", cardName, count),
	}
}

func NewCardGrantedEvent(turn int, phase string, cardName string, source string) GameEvent {
	return GameEvent{
		Turn:     turn,
		Phase:    phase,
		Type:     EventCardGranted,
		Severity: SeveritySuccess,
		Card:     cardName,
		Details:  fmt.Sprintf("%s grants %s", source, cardName),
	}
}

func NewPlayEvent(turn int, phase string, cardName string, target string, cost int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Type:    EventPlay,
		Card:    cardName,
		Details: fmt.Sprintf("Team plays %s → %s (cost %d)", cardName, target, cost),
	}
}

func NewMismatchEvent(turn int, phase string, cardName string, target string, what string, penalty int) GameEvent {
	return GameEvent{
		Turn:     turn,
		Phase:    phase,
		Type:     EventMismatch,
		Severity: SeverityWarning,
		Card:     cardName,
		Details:  fmt.Sprintf("%s does not fit %s (%s mismatch, -%d HP)", cardName, target, what, penalty),
	}
}

func NewRejectedEvent(turn int, phase string, cardName string, cost, focus int) GameEvent {
	return GameEvent{
		Turn:     turn,
		Phase:    phase,
		Type:     EventRejected,
		Severity: SeverityWarning,
		Card:     cardName,
		Details:  fmt.Sprintf("Not enough focus for %s (cost %d, have %d)", cardName, cost, focus),
	}
}

func NewDamageCalcEvent(turn int, phase string, cardName string, details string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Type:    EventDamageCalc,
		Card:    cardName,
		Details: details,
	}
}

func NewExposureEvent(turn int, phase string, target string, direct, overkill, gain, exposed, threshold int) GameEvent {
	details := fmt.Sprintf("%s exposed +%d (%d/%d), score +%d", target, direct, exposed, threshold, gain)
	if overkill > 0 {
		details += fmt.Sprintf(" (overkill %d)", overkill)
	}
	return GameEvent{
		Turn:     turn,
		Phase:    phase,
		Type:     EventExposure,
		Severity: SeveritySuccess,
		Details:  details,
	}
}

func NewClearedEvent(turn int, phase string, target string) GameEvent {
	return GameEvent{
		Turn:     turn,
		Phase:    phase,
		Type:     EventCleared,
		Severity: SeveritySuccess,
		Details:  fmt.Sprintf("%s fully exposed", target),
	}
}

func NewUtilityEvent(turn int, phase string, cardName string, details string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Type:    EventUtility,
		Card:    cardName,
		Details: details,
	}
}

func NewSearchEvent(turn int, phase string, cardName string, found string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Type:    EventSearch,
		Card:    found,
		Details: fmt.Sprintf("%s finds %s", cardName, found),
	}
}

func NewDiscardHandEvent(turn int, phase string, count int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Type:    EventDiscardHand,
		Details: fmt.Sprintf("Team discards %d cards from hand", count),
	}
}

func NewOpponentActionEvent(turn int, phase string, caseName string, action string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Type:    EventOpponentAction,
		Card:    caseName,
		Details: fmt.Sprintf("%s: %s", caseName, action),
	}
}

func NewHPChangeEvent(turn int, phase string, oldHP, newHP int, reason string) GameEvent {
	sev := SeverityInfo
	if newHP < oldHP {
		sev = SeverityWarning
	}
	return GameEvent{
		Turn:     turn,
		Phase:    phase,
		Type:     EventHPChange,
		Severity: sev,
		Details:  fmt.Sprintf("Team HP: %d → %d (%s)", oldHP, newHP, reason),
	}
}

func NewVictoryEvent(turn int, phase string, caseName string, score, target int) GameEvent {
	return GameEvent{
		Turn:     turn,
		Phase:    phase,
		Type:     EventVictory,
		Severity: SeveritySuccess,
		Card:     caseName,
		Details:  fmt.Sprintf("Case won against %s (%d/%d, excess %d)", caseName, score, target, score-target),
	}
}

func NewDefeatEvent(turn int, phase string, caseName string, reason string) GameEvent {
	return GameEvent{
		Turn:     turn,
		Phase:    phase,
		Type:     EventDefeat,
		Severity: SeverityError,
		Card:     caseName,
		Details:  fmt.Sprintf("Case lost against %s (%s)", caseName, reason),
	}
}

func NewInvalidEvent(turn int, phase string, details string) GameEvent {
	return GameEvent{
		Turn:     turn,
		Phase:    phase,
		Type:     EventInvalid,
		Severity: SeverityError,
		Details:  details,
	}
}

func NewAutoPlayEvent(turn int, phase string, details string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Type:    EventAutoPlay,
		Details: details,
	}
}

func NewDraftEvent(names []string) GameEvent {
	return GameEvent{
		Type:    EventDraft,
		Details: fmt.Sprintf("Roster drafted: %s", strings.Join(names, ", ")),
	}
}

func NewArtifactEvent(turn int, phase string, name string, details string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Type:    EventArtifact,
		Card:    name,
		Details: fmt.Sprintf("%s: %s", name, details),
	}
}

func NewRewardEvent(details string) GameEvent {
	return GameEvent{
		Type:     EventReward,
		Severity: SeveritySuccess,
		Details:  details,
	}
}

func NewShuffleEvent(turn int, phase string, count int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Type:    EventShuffle,
		Details: fmt.Sprintf("Team shuffles %d cards into a fresh draw pile", count),
	}
}
