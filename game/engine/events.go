package engine

import (
	"fmt"
	"time"
)

// EventKind names a notable transition reported to the event sink
type EventKind string

const (
	EventGameStart  EventKind = "GAME START"
	EventGameLoaded EventKind = "GAME LOADED"
	EventRoundBegin EventKind = "ROUND BEGIN"
	EventRoundEnd   EventKind = "ROUND END"
	EventMove       EventKind = "MOVE"
	EventDash       EventKind = "DASH"
	EventScore      EventKind = "SCORE"
	EventCooldown   EventKind = "COOLDOWN"
	EventSkip       EventKind = "SKIP TURN"
	EventGameOver   EventKind = "GAME OVER"
)

// Event is one entry of the game's event log
type Event struct {
	Kind   EventKind `json:"kind"`
	Round  int       `json:"round"`
	Role   Role      `json:"role,omitempty"`
	From   Position  `json:"from"`
	To     Position  `json:"to"`
	Target CellTag   `json:"target,omitempty"`
	Value  int       `json:"value,omitempty"`
	Detail string    `json:"detail,omitempty"`
	Time   time.Time `json:"time"`
}

// String renders the event as a single log line
func (e Event) String() string {
	switch e.Kind {
	case EventGameStart:
		return fmt.Sprintf("%s %s", e.Kind, e.Detail)
	case EventGameLoaded:
		return fmt.Sprintf("%s round=%d turn=%s", e.Kind, e.Round, e.Role)
	case EventRoundBegin:
		return fmt.Sprintf("%s round=%d", e.Kind, e.Round)
	case EventRoundEnd:
		return string(e.Kind)
	case EventMove:
		return fmt.Sprintf("%s role=%s from=%s to=%s target=%s", e.Kind, e.Role, e.From, e.To, e.Target)
	case EventDash:
		return fmt.Sprintf("%s role=%s from=%s to=%s", e.Kind, e.Role, e.From, e.To)
	case EventScore:
		return fmt.Sprintf("%s role=%s delta=%s", e.Kind, e.Role, formatDelta(e.Value))
	case EventCooldown:
		return fmt.Sprintf("%s role=%s set=%d", e.Kind, e.Role, e.Value)
	case EventSkip:
		return fmt.Sprintf("%s role=%s", e.Kind, e.Role)
	case EventGameOver:
		return fmt.Sprintf("%s %s", e.Kind, e.Detail)
	}
	return string(e.Kind)
}

// EventSink receives events as the engine emits them
type EventSink interface {
	Record(Event)
}

// SinkFunc adapts a function to EventSink
type SinkFunc func(Event)

// Record calls f(e)
func (f SinkFunc) Record(e Event) { f(e) }

type nopSink struct{}

func (nopSink) Record(Event) {}

func formatDelta(d int) string {
	if d > 0 {
		return fmt.Sprintf("+%d", d)
	}
	return fmt.Sprintf("%d", d)
}
