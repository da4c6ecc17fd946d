package newsview

import "github.com/pders01/headlines/internal/news"

// Ticket is a request to fetch Filter. Gen orders tickets; only the
// newest one may update the state.
type Ticket struct {
	Gen    uint64
	Filter news.FilterState
}

// Synchronizer decides when the filter needs fetching and which results
// are still wanted.
type Synchronizer struct {
	last      news.FilterState
	requested bool
	gen       uint64
}

// Sync returns a ticket when f differs from the last requested filter or
// nothing has been requested yet.
func (s *Synchronizer) Sync(f news.FilterState) (Ticket, bool) {
	if s.requested && f == s.last {
		return Ticket{}, false
	}
	return s.issue(f), true
}

// Force always returns a ticket, even for an unchanged filter.
func (s *Synchronizer) Force(f news.FilterState) Ticket {
	return s.issue(f)
}

// Current reports whether t is the latest ticket issued.
func (s *Synchronizer) Current(t Ticket) bool {
	return s.requested && t.Gen == s.gen
}

func (s *Synchronizer) Generation() uint64 {
	return s.gen
}

func (s *Synchronizer) issue(f news.FilterState) Ticket {
	s.gen++
	s.last = f
	s.requested = true
	return Ticket{Gen: s.gen, Filter: f}
}
