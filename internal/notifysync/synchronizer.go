package notifysync

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/petrescue/admin-notifier/internal/poll"
	"github.com/petrescue/admin-notifier/pkg/adminapi"
	"github.com/petrescue/admin-notifier/pkg/enums"
	pkgerrors "github.com/petrescue/admin-notifier/pkg/errors"
	"github.com/petrescue/admin-notifier/pkg/logger"
	"github.com/petrescue/admin-notifier/pkg/metrics"
)

// JobName is the scheduler job driving count and list refreshes.
const JobName = "notification-sync"

// API is the subset of the notification client the synchronizer depends on.
type API interface {
	UnreadCount(ctx context.Context) (int, error)
	List(ctx context.Context) ([]adminapi.Notification, error)
	MarkRead(ctx context.Context, id adminapi.ID) (adminapi.Confirmation, error)
	MarkAllRead(ctx context.Context) (adminapi.Confirmation, error)
}

// Params wires a Synchronizer.
type Params struct {
	Logger     *logger.Logger
	Client     API
	Renderers  map[enums.Presentation]Renderer
	Metrics    *metrics.SyncMetrics
	JobMetrics *metrics.JobMetrics
	Interval   time.Duration
	Now        func() time.Time
}

// Synchronizer keeps both dropdown presentations in step with the server.
type Synchronizer struct {
	logg      *logger.Logger
	client    API
	store     *Store
	dropdowns map[enums.Presentation]*Dropdown
	metrics   *metrics.SyncMetrics
	scheduler *poll.Scheduler
	now       func() time.Time

	lifecycle sync.Mutex
	cancel    context.CancelFunc
	done      chan struct{}
}

// NewSynchronizer validates its dependencies and builds closed dropdowns for
// every presentation.
func NewSynchronizer(params Params) (*Synchronizer, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Client == nil {
		return nil, fmt.Errorf("notification client required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	s := &Synchronizer{
		logg:      params.Logger,
		client:    params.Client,
		store:     NewStore(params.Metrics),
		dropdowns: make(map[enums.Presentation]*Dropdown, len(enums.Presentations)),
		metrics:   params.Metrics,
		now:       now,
	}
	for _, p := range enums.Presentations {
		s.dropdowns[p] = NewDropdown(p, params.Renderers[p], params.Metrics)
	}
	scheduler, err := poll.NewScheduler(poll.SchedulerParams{
		Logger:   params.Logger,
		Registry: poll.NewRegistry(poll.JobFunc(JobName, s.Tick)),
		Metrics:  params.JobMetrics,
		Interval: params.Interval,
	})
	if err != nil {
		return nil, err
	}
	s.scheduler = scheduler
	return s, nil
}

// Start launches the poll loop. The first tick runs immediately.
func (s *Synchronizer) Start(ctx context.Context) error {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()
	if s.cancel != nil {
		return fmt.Errorf("synchronizer already started")
	}
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done
	go func() {
		defer close(done)
		_ = s.scheduler.Run(runCtx)
	}()
	s.logg.Info(ctx, "notification synchronizer started")
	return nil
}

// Stop cancels the poll loop and waits for it to exit, then closes every
// dropdown and discards the snapshot. In-flight requests are abandoned through
// their context and any result that still lands is dropped as stale.
func (s *Synchronizer) Stop() {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()
	if s.cancel != nil {
		s.cancel()
		<-s.done
		s.cancel = nil
		s.done = nil
	}
	for _, p := range enums.Presentations {
		s.dropdowns[p].close(CloseStopped)
	}
	s.store.Reset()
	s.renderBadges()
}

// State reports the dropdown state of a presentation.
func (s *Synchronizer) State(p enums.Presentation) State {
	d, ok := s.dropdowns[p]
	if !ok {
		return StateClosed
	}
	return d.State()
}

// Snapshot returns a copy of the current notification state.
func (s *Synchronizer) Snapshot() Snapshot {
	return s.store.Snapshot()
}

// Toggle opens a closed dropdown, closes an open one and ignores a dropdown
// whose load is still in flight.
func (s *Synchronizer) Toggle(ctx context.Context, p enums.Presentation) error {
	d, err := s.dropdown(p)
	if err != nil {
		return err
	}
	action, token := d.toggle()
	switch action {
	case toggleLoad:
		s.load(ctx, d, token)
	case toggleClosed:
		s.logg.Debug(s.logg.WithPresentation(ctx, string(p)), "dropdown closed")
	}
	return nil
}

// Open loads and shows the dropdown unless it is already opening or open.
func (s *Synchronizer) Open(ctx context.Context, p enums.Presentation) error {
	d, err := s.dropdown(p)
	if err != nil {
		return err
	}
	if token, ok := d.beginOpen(); ok {
		s.load(ctx, d, token)
	}
	return nil
}

// Close dismisses the dropdown. A load still in flight will not render.
func (s *Synchronizer) Close(p enums.Presentation, reason CloseReason) error {
	d, err := s.dropdown(p)
	if err != nil {
		return err
	}
	d.close(reason)
	return nil
}

func (s *Synchronizer) load(ctx context.Context, d *Dropdown, token uint64) {
	ctx = s.logg.WithPresentation(ctx, string(d.Presentation()))
	if err := s.RefreshList(ctx); err != nil {
		s.logg.WarnErr(ctx, "notification list refresh failed, showing last snapshot", err)
	}
	if !d.finishOpen(token, s.view) {
		s.logg.Debug(ctx, "dropdown dismissed before load completed")
	}
}

// RefreshCount fetches the unread count in its own refresh cycle.
func (s *Synchronizer) RefreshCount(ctx context.Context) error {
	s.store.BeginCycle()
	return s.fetchCount(ctx)
}

// RefreshList fetches the notification list in its own refresh cycle.
func (s *Synchronizer) RefreshList(ctx context.Context) error {
	s.store.BeginCycle()
	return s.fetchList(ctx)
}

// Tick is one poll: the count always, the list only while a dropdown is open.
// Both requests run concurrently inside a single refresh cycle.
func (s *Synchronizer) Tick(ctx context.Context) error {
	s.store.BeginCycle()
	var g errgroup.Group
	g.Go(func() error { return s.fetchCount(ctx) })
	if s.anyOpen() {
		g.Go(func() error { return s.fetchList(ctx) })
	}
	return g.Wait()
}

// MarkRead applies the change locally, redraws, then tells the server. A
// failed server call is logged and the local change is kept; the next count
// refresh corrects any drift.
func (s *Synchronizer) MarkRead(ctx context.Context, id adminapi.ID) error {
	if strings.TrimSpace(id.String()) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification id required")
	}
	ctx = s.logg.WithNotificationID(ctx, id.String())
	s.store.ApplyMarkRead(id)
	s.redraw(nil)

	_, err := s.client.MarkRead(ctx, id)
	s.metrics.ObserveRequest("mark_read", outcomeFor(err))
	if err != nil {
		s.logg.WarnErr(ctx, "mark read failed", err)
		return err
	}
	return nil
}

// MarkAllRead applies the change locally, closes the presentation the action
// came from, redraws the rest, then tells the server. An empty presentation
// closes nothing.
func (s *Synchronizer) MarkAllRead(ctx context.Context, p enums.Presentation) error {
	var origin *Dropdown
	if p != "" {
		d, err := s.dropdown(p)
		if err != nil {
			return err
		}
		origin = d
		ctx = s.logg.WithPresentation(ctx, string(p))
	}
	s.store.ApplyMarkAllRead()
	if origin != nil {
		origin.close(CloseMarkAllRead)
	}
	s.redraw(origin)

	_, err := s.client.MarkAllRead(ctx)
	s.metrics.ObserveRequest("mark_all_read", outcomeFor(err))
	if err != nil {
		s.logg.WarnErr(ctx, "mark all read failed", err)
		return err
	}
	return nil
}

func (s *Synchronizer) fetchCount(ctx context.Context) error {
	ticket := s.store.Issue(KindCount)
	count, err := s.client.UnreadCount(ctx)
	s.metrics.ObserveRequest("unread_count", outcomeFor(err))
	if err != nil {
		return err
	}
	if !s.store.ApplyCount(ticket, count) {
		s.logg.Debug(ctx, "discarded stale unread count")
		return nil
	}
	s.renderBadges()
	return nil
}

func (s *Synchronizer) fetchList(ctx context.Context) error {
	ticket := s.store.Issue(KindList)
	items, err := s.client.List(ctx)
	s.metrics.ObserveRequest("list", outcomeFor(err))
	if err != nil {
		return err
	}
	if !s.store.ApplyList(ticket, items) {
		s.logg.Debug(ctx, "discarded stale notification list")
		return nil
	}
	s.redraw(nil)
	return nil
}

// redraw re-renders every open list except skip, then the badges.
func (s *Synchronizer) redraw(skip *Dropdown) {
	for _, p := range enums.Presentations {
		d := s.dropdowns[p]
		if d == skip {
			continue
		}
		d.refresh(s.view)
	}
	s.renderBadges()
}

func (s *Synchronizer) renderBadges() {
	badge := BadgeText(s.store.UnreadCount())
	for _, p := range enums.Presentations {
		s.dropdowns[p].setBadge(badge)
	}
}

func (s *Synchronizer) view() View {
	return BuildView(s.store.Snapshot(), s.now())
}

func (s *Synchronizer) anyOpen() bool {
	for _, d := range s.dropdowns {
		if d.State() == StateOpen {
			return true
		}
	}
	return false
}

func (s *Synchronizer) dropdown(p enums.Presentation) (*Dropdown, error) {
	d, ok := s.dropdowns[p]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown presentation %q", p))
	}
	return d, nil
}

func outcomeFor(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case pkgerrors.IsCode(err, pkgerrors.CodeParse):
		return metrics.OutcomeParseError
	case pkgerrors.IsCode(err, pkgerrors.CodeValidation):
		return metrics.OutcomeRejected
	default:
		return metrics.OutcomeNetworkError
	}
}
