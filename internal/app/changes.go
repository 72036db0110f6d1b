package app

import "github.com/evanschultz/kanboard/internal/domain"

// defaultChangeLogLimit bounds the in-memory activity ledger.
const defaultChangeLogLimit = 200

// changeLog retains the most recent applied mutations in sequence order.
type changeLog struct {
	limit  int
	seq    uint64
	events []domain.ChangeEvent
}

// newChangeLog constructs a ledger holding at most limit events.
func newChangeLog(limit int) *changeLog {
	if limit <= 0 {
		limit = defaultChangeLogLimit
	}
	return &changeLog{limit: limit}
}

// append stamps and records one event, evicting the oldest entries beyond the limit.
func (l *changeLog) append(event domain.ChangeEvent) {
	l.seq++
	event.Seq = l.seq
	l.events = append(l.events, event)
	if overflow := len(l.events) - l.limit; overflow > 0 {
		l.events = append([]domain.ChangeEvent(nil), l.events[overflow:]...)
	}
}

// recent returns up to limit events, newest first. A non-positive limit returns everything held.
func (l *changeLog) recent(limit int) []domain.ChangeEvent {
	if limit <= 0 || limit > len(l.events) {
		limit = len(l.events)
	}
	out := make([]domain.ChangeEvent, 0, limit)
	for i := len(l.events) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, l.events[i])
	}
	return out
}
