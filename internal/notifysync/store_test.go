package notifysync

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petrescue/admin-notifier/pkg/adminapi"
	"github.com/petrescue/admin-notifier/pkg/enums"
	"github.com/petrescue/admin-notifier/pkg/metrics"
)

var baseTime = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func notification(id string, read bool) adminapi.Notification {
	return adminapi.Notification{
		ID:        adminapi.ID(id),
		Message:   "Report " + id,
		Type:      enums.NotificationTypeLostReport,
		Timestamp: baseTime,
		IsRead:    read,
		RequestID: adminapi.ID("req-" + id),
	}
}

func seededStore(t *testing.T, count int, items ...adminapi.Notification) *Store {
	t.Helper()
	store := NewStore(nil)
	store.BeginCycle()
	countTicket := store.Issue(KindCount)
	listTicket := store.Issue(KindList)
	require.True(t, store.ApplyCount(countTicket, count))
	require.True(t, store.ApplyList(listTicket, items))
	return store
}

func TestStoreApplyMarkReadIsIdempotent(t *testing.T) {
	store := seededStore(t, 2, notification("a", false), notification("b", false))

	assert.True(t, store.ApplyMarkRead("a"))
	once := store.Snapshot()
	assert.False(t, store.ApplyMarkRead("a"))
	twice := store.Snapshot()

	assert.Equal(t, once, twice)
	assert.Equal(t, 1, twice.UnreadCount)
	assert.True(t, twice.Notifications[0].IsRead)
	assert.False(t, twice.Notifications[1].IsRead)
}

func TestStoreApplyMarkReadIgnoresUnknownID(t *testing.T) {
	store := seededStore(t, 1, notification("a", false))

	assert.False(t, store.ApplyMarkRead("missing"))
	assert.Equal(t, 1, store.UnreadCount())
}

func TestStoreApplyMarkReadFloorsCountAtZero(t *testing.T) {
	store := seededStore(t, 0, notification("a", false))

	assert.True(t, store.ApplyMarkRead("a"))
	assert.Equal(t, 0, store.UnreadCount())
}

func TestStoreApplyMarkAllRead(t *testing.T) {
	cases := []struct {
		name  string
		count int
		items []adminapi.Notification
	}{
		{name: "none held", count: 0},
		{name: "some unread", count: 3, items: []adminapi.Notification{
			notification("a", false), notification("b", true), notification("c", false),
		}},
		{name: "count ahead of list", count: 12, items: []adminapi.Notification{notification("a", false)}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := seededStore(t, tc.count, tc.items...)
			store.ApplyMarkAllRead()

			snap := store.Snapshot()
			assert.Equal(t, 0, snap.UnreadCount)
			assert.Len(t, snap.Notifications, len(tc.items))
			for _, n := range snap.Notifications {
				assert.True(t, n.IsRead, "notification %s should be read", n.ID)
			}
		})
	}
}

func TestStoreDiscardsStaleFetch(t *testing.T) {
	reg := prometheus.NewRegistry()
	store := NewStore(metrics.NewSyncMetrics(reg))
	store.BeginCycle()

	older := store.Issue(KindList)
	newer := store.Issue(KindList)
	require.Greater(t, newer.Seq(), older.Seq())

	assert.True(t, store.ApplyList(newer, []adminapi.Notification{notification("new", false)}))
	assert.False(t, store.ApplyList(older, []adminapi.Notification{notification("old", false)}))

	snap := store.Snapshot()
	require.Len(t, snap.Notifications, 1)
	assert.Equal(t, adminapi.ID("new"), snap.Notifications[0].ID)
	assert.Equal(t, float64(1), staleCount(t, reg, KindList))
}

func TestStoreDiscardsFetchIssuedBeforeLocalMutation(t *testing.T) {
	store := seededStore(t, 2, notification("a", false), notification("b", false))

	countTicket := store.Issue(KindCount)
	listTicket := store.Issue(KindList)
	store.ApplyMarkRead("a")

	assert.False(t, store.ApplyCount(countTicket, 2))
	assert.False(t, store.ApplyList(listTicket, []adminapi.Notification{notification("a", false)}))

	snap := store.Snapshot()
	assert.Equal(t, 1, snap.UnreadCount)
	assert.True(t, snap.Notifications[0].IsRead)
}

func TestStoreApplyCountLeavesListUntouched(t *testing.T) {
	store := seededStore(t, 1, notification("a", false))

	store.BeginCycle()
	assert.True(t, store.ApplyCount(store.Issue(KindCount), 9))

	snap := store.Snapshot()
	assert.Equal(t, 9, snap.UnreadCount)
	require.Len(t, snap.Notifications, 1)
	assert.False(t, snap.Notifications[0].IsRead)
}

func TestStoreApplyListPrefersServerCountInSameCycle(t *testing.T) {
	store := NewStore(nil)
	items := []adminapi.Notification{notification("a", false), notification("b", false), notification("c", true)}

	store.BeginCycle()
	countTicket := store.Issue(KindCount)
	listTicket := store.Issue(KindList)
	require.True(t, store.ApplyCount(countTicket, 7))
	require.True(t, store.ApplyList(listTicket, items))
	assert.Equal(t, 7, store.UnreadCount())

	store.BeginCycle()
	require.True(t, store.ApplyList(store.Issue(KindList), items))
	assert.Equal(t, 2, store.UnreadCount(), "without a server count the derived count is shown")
}

func TestStoreSnapshotIsACopy(t *testing.T) {
	store := seededStore(t, 1, notification("a", false))

	snap := store.Snapshot()
	snap.Notifications[0].IsRead = true
	snap.UnreadCount = 0

	fresh := store.Snapshot()
	assert.False(t, fresh.Notifications[0].IsRead)
	assert.Equal(t, 1, fresh.UnreadCount)
}

func TestStoreMarkReadThenMarkAllRead(t *testing.T) {
	store := seededStore(t, 3, notification("A", false), notification("B", false), notification("C", true))

	store.ApplyMarkRead("A")
	snap := store.Snapshot()
	assert.Equal(t, 2, snap.UnreadCount)
	assert.True(t, snap.Notifications[0].IsRead)
	assert.False(t, snap.Notifications[1].IsRead)

	store.ApplyMarkAllRead()
	snap = store.Snapshot()
	assert.Equal(t, 0, snap.UnreadCount)
	for _, n := range snap.Notifications {
		assert.True(t, n.IsRead)
	}
}

func staleCount(t *testing.T, reg *prometheus.Registry, kind Kind) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() != "notification_stale_results_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, label := range m.GetLabel() {
				if label.GetName() == "kind" && label.GetValue() == string(kind) {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestStoreNoOpMarkReadKeepsInFlightFetches(t *testing.T) {
	store := seededStore(t, 1, notification("a", false), notification("b", true))

	store.BeginCycle()
	countTicket := store.Issue(KindCount)
	listTicket := store.Issue(KindList)
	assert.False(t, store.ApplyMarkRead("missing"))
	assert.False(t, store.ApplyMarkRead("b"))

	assert.True(t, store.ApplyCount(countTicket, 3))
	assert.True(t, store.ApplyList(listTicket, []adminapi.Notification{notification("c", false)}))

	snap := store.Snapshot()
	assert.Equal(t, 3, snap.UnreadCount)
	require.Len(t, snap.Notifications, 1)
	assert.Equal(t, adminapi.ID("c"), snap.Notifications[0].ID)
}

func TestStoreResetDiscardsSnapshotAndInFlightFetches(t *testing.T) {
	store := seededStore(t, 2, notification("a", false), notification("b", false))
	pending := store.Issue(KindList)

	store.Reset()

	assert.Equal(t, Snapshot{}, store.Snapshot())
	assert.False(t, store.ApplyList(pending, []adminapi.Notification{notification("a", false)}))
	assert.Equal(t, Snapshot{}, store.Snapshot())
}
