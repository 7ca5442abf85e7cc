package engine

type EventType int

const (
	EventOrderFilled EventType = iota
	EventTradeClosed
)

func (t EventType) String() string {
	switch t {
	case EventTradeClosed:
		return "TRADE_CLOSED"
	default:
		return "ORDER_FILLED"
	}
}

// Event is the structured notification emitted by the broker and
// position tracker in place of any in-core printing. The shell decides
// how (and whether) to render them.
type Event struct {
	Ts      int64             `json:"ts"`
	Type    EventType         `json:"type"`
	Symbol  string            `json:"symbol"`
	Details map[string]string `json:"details,omitempty"`
}

type EventLog struct {
	events []Event
}

func (l *EventLog) Append(e Event) { l.events = append(l.events, e) }

func (l *EventLog) Events() []Event { return l.events }
