package scoring

// EventType — тип записи в журнале событий сессии. Журнал append-only,
// по нему восстанавливается состояние и считается статистика.
type EventType string

const (
	EventPoint       EventType = "point"
	EventAce         EventType = "ace"
	EventDoubleFault EventType = "double_fault"
	EventSideOut     EventType = "side_out"
	EventTimeout     EventType = "timeout"
	EventAppealWon   EventType = "appeal_won"
	EventAppealLost  EventType = "appeal_lost"
	EventTechnical   EventType = "technical"
	EventSetWon      EventType = "set_won"
	EventMatchWon    EventType = "match_won"
	EventForfeit     EventType = "forfeit"
)

// RallyEvent reports whether the event type resolves through the normal
// rally transition. Ace and double fault differ from a plain point only
// as recorded statistics.
func (t EventType) RallyEvent() bool {
	switch t {
	case EventPoint, EventAce, EventDoubleFault:
		return true
	}
	return false
}
