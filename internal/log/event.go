package log

// EventType enumerates all observable battle events.
type EventType int

const (
	EventPhaseChange EventType = iota
	EventNewTurn
	EventEncounterStart
	EventEncounterEnd
	EventDraw
	EventReshuffle
	EventDepleted
	EventAutoResolve
	EventCardGranted
	EventPlay
	EventMismatch
	EventRejected
	EventDamageCalc
	EventExposure
	EventCleared
	EventUtility
	EventSearch
	EventDiscardHand
	EventOpponentAction
	EventHPChange
	EventVictory
	EventDefeat
	EventInvalid
	EventAutoPlay
	EventDraft
	EventArtifact
	EventReward
	EventShuffle
)

func (e EventType) String() string {
	switch e {
	case EventPhaseChange:
		return "PhaseChange"
	case EventNewTurn:
		return "NewTurn"
	case EventEncounterStart:
		return "EncounterStart"
	case EventEncounterEnd:
		return "EncounterEnd"
	case EventDraw:
		return "Draw"
	case EventReshuffle:
		return "Reshuffle"
	case EventDepleted:
		return "Depleted"
	case EventAutoResolve:
		return "AutoResolve"
	case EventCardGranted:
		return "CardGranted"
	case EventPlay:
		return "Play"
	case EventMismatch:
		return "Mismatch"
	case EventRejected:
		return "Rejected"
	case EventDamageCalc:
		return "DamageCalc"
	case EventExposure:
		return "Exposure"
	case EventCleared:
		return "Cleared"
	case EventUtility:
		return "Utility"
	case EventSearch:
		return "Search"
	case EventDiscardHand:
		return "DiscardHand"
	case EventOpponentAction:
		return "OpponentAction"
	case EventHPChange:
		return "HPChange"
	case EventVictory:
		return "Victory"
	case EventDefeat:
		return "Defeat"
	case EventInvalid:
		return "Invalid"
	case EventAutoPlay:
		return "AutoPlay"
	case EventDraft:
		return "Draft"
	case EventArtifact:
		return "Artifact"
	case EventReward:
		return "Reward"
	case EventShuffle:
		return "Shuffle"
	default:
		return "Unknown"
	}
}

// Severity classifies an event for the presentation layer.
type Severity int

const (
	SeverityInfo Severity = iota
	SeveritySuccess
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeveritySuccess:
		return "success"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "info"
	}
}

// GameEvent represents a single observable event in an encounter.
type GameEvent struct {
	Seq      int       // monotonic sequence number
	Turn     int       // which turn (1-based, 0 before the first turn)
	Phase    string    // current phase name (e.g. "Action")
	Type     EventType // event type
	Severity Severity
	Card     string // card name (if applicable)
	Details  string // human-readable detail string
}
