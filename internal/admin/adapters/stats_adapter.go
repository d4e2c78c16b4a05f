package adapters

// Counter is any store that can report its size.
type Counter interface {
	Len() int
}

// StatsAdapter adapts the session registry and an optional short-link store
// to admin's StatsSource interface.
type StatsAdapter struct {
	sessions Counter
	links    Counter
}

// NewStatsAdapter wraps the session registry. links may be nil when short
// links live in a store that cannot count.
func NewStatsAdapter(sessions Counter, links Counter) *StatsAdapter {
	return &StatsAdapter{sessions: sessions, links: links}
}

func (a *StatsAdapter) PendingSessions() int {
	return a.sessions.Len()
}

func (a *StatsAdapter) LinkCount() (int, bool) {
	if a.links == nil {
		return 0, false
	}
	return a.links.Len(), true
}
