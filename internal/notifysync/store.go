package notifysync

import (
	"sync"

	"github.com/petrescue/admin-notifier/pkg/adminapi"
	"github.com/petrescue/admin-notifier/pkg/metrics"
)

// Kind distinguishes the two independently fetched halves of a snapshot.
type Kind string

const (
	KindCount Kind = "count"
	KindList  Kind = "list"
)

// Ticket identifies one issued fetch. Results are applied only while their
// ticket is still the newest for its kind and no local mutation happened
// after it was issued.
type Ticket struct {
	kind  Kind
	seq   uint64
	cycle uint64
}

func (t Ticket) Kind() Kind    { return t.kind }
func (t Ticket) Seq() uint64   { return t.seq }
func (t Ticket) Cycle() uint64 { return t.cycle }

// Snapshot is the client's cached copy of server notification state.
// UnreadCount may disagree with the list; the two are fetched independently.
type Snapshot struct {
	UnreadCount   int
	Notifications []adminapi.Notification
}

// DerivedUnread counts unread entries in the held list.
func (s Snapshot) DerivedUnread() int {
	unread := 0
	for _, n := range s.Notifications {
		if !n.IsRead {
			unread++
		}
	}
	return unread
}

func (s Snapshot) clone() Snapshot {
	out := Snapshot{UnreadCount: s.UnreadCount}
	if s.Notifications != nil {
		out.Notifications = make([]adminapi.Notification, len(s.Notifications))
		copy(out.Notifications, s.Notifications)
	}
	return out
}

// Store owns the snapshot and its reconciliation rules.
type Store struct {
	mu sync.Mutex

	snapshot     Snapshot
	seq          uint64
	cycle        uint64
	latest       map[Kind]uint64
	lastMutation uint64
	// cycle in which a server count was last applied
	countCycle uint64

	metrics *metrics.SyncMetrics
}

// NewStore returns an empty store.
func NewStore(m *metrics.SyncMetrics) *Store {
	return &Store{
		latest:  make(map[Kind]uint64, 2),
		metrics: m,
	}
}

// BeginCycle opens a new refresh cycle. Tickets issued afterwards belong to it.
func (s *Store) BeginCycle() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cycle++
	return s.cycle
}

// Issue hands out the next ticket for a fetch of the given kind.
func (s *Store) Issue(kind Kind) Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.latest[kind] = s.seq
	return Ticket{kind: kind, seq: s.seq, cycle: s.cycle}
}

// ApplyCount overwrites the unread count only. It reports whether the result
// was applied; stale results are discarded.
func (s *Store) ApplyCount(t Ticket, count int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.currentLocked(t, KindCount) {
		return false
	}
	if count < 0 {
		count = 0
	}
	s.snapshot.UnreadCount = count
	s.countCycle = t.cycle
	s.metrics.SetUnread(count)
	return true
}

// ApplyList replaces the held notifications. The count becomes the locally
// derived unread count unless a server count landed in the same cycle.
func (s *Store) ApplyList(t Ticket, items []adminapi.Notification) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.currentLocked(t, KindList) {
		return false
	}
	held := make([]adminapi.Notification, len(items))
	copy(held, items)
	s.snapshot.Notifications = held
	if s.countCycle != t.cycle || t.cycle == 0 {
		s.snapshot.UnreadCount = s.snapshot.DerivedUnread()
		s.metrics.SetUnread(s.snapshot.UnreadCount)
	}
	return true
}

// ApplyMarkRead optimistically marks one held notification read. Absent ids
// and already-read entries leave the snapshot untouched. It reports whether
// the snapshot changed.
func (s *Store) ApplyMarkRead(id adminapi.ID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.snapshot.Notifications {
		n := &s.snapshot.Notifications[i]
		if n.ID != id {
			continue
		}
		if n.IsRead {
			return false
		}
		s.mutateLocked()
		n.IsRead = true
		if s.snapshot.UnreadCount > 0 {
			s.snapshot.UnreadCount--
		}
		s.metrics.SetUnread(s.snapshot.UnreadCount)
		return true
	}
	return false
}

// ApplyMarkAllRead marks every held notification read and zeroes the count.
func (s *Store) ApplyMarkAllRead() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mutateLocked()
	for i := range s.snapshot.Notifications {
		s.snapshot.Notifications[i].IsRead = true
	}
	s.snapshot.UnreadCount = 0
	s.metrics.SetUnread(0)
}

// Reset drops the snapshot. Fetches issued before the reset are discarded
// when they land.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mutateLocked()
	s.snapshot = Snapshot{}
	s.countCycle = 0
	s.metrics.SetUnread(0)
}

// Snapshot returns a copy safe to hand to renderers.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot.clone()
}

// UnreadCount returns the count currently displayed.
func (s *Store) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot.UnreadCount
}

func (s *Store) mutateLocked() {
	s.seq++
	s.lastMutation = s.seq
}

func (s *Store) currentLocked(t Ticket, kind Kind) bool {
	if t.kind != kind || t.seq == 0 || t.seq != s.latest[kind] || t.seq < s.lastMutation {
		s.metrics.IncStale(string(kind))
		return false
	}
	return true
}
