package notifysync

import (
	"sync"

	"github.com/petrescue/admin-notifier/pkg/enums"
	"github.com/petrescue/admin-notifier/pkg/metrics"
)

// State of one dropdown presentation.
type State int

const (
	StateClosed State = iota
	StateOpening
	StateOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpening:
		return "opening"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// CloseReason records what dismissed a dropdown.
type CloseReason string

const (
	CloseOutsideClick CloseReason = "outside_click"
	CloseEscape       CloseReason = "escape"
	CloseToggle       CloseReason = "toggle"
	CloseMarkAllRead  CloseReason = "mark_all_read"
	CloseStopped      CloseReason = "stopped"
)

// Renderer draws one presentation. Calls for a presentation are serialized.
type Renderer interface {
	RenderList(view View)
	RenderBadge(text string)
	Hide(reason CloseReason)
}

type toggleAction int

const (
	toggleIgnored toggleAction = iota
	toggleLoad
	toggleClosed
)

// Dropdown is the state machine for one presentation.
type Dropdown struct {
	mu           sync.Mutex
	presentation enums.Presentation
	renderer     Renderer
	metrics      *metrics.SyncMetrics

	state State
	// bumped on every open attempt and close so late loads can detect they
	// belong to a dismissed view
	token uint64

	badge      string
	badgeDrawn bool
}

// NewDropdown builds a closed dropdown for the presentation.
func NewDropdown(p enums.Presentation, r Renderer, m *metrics.SyncMetrics) *Dropdown {
	return &Dropdown{presentation: p, renderer: r, metrics: m}
}

func (d *Dropdown) Presentation() enums.Presentation {
	return d.presentation
}

func (d *Dropdown) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// beginOpen moves Closed to Opening. A dropdown already opening or open
// yields ok=false so no second load is started.
func (d *Dropdown) beginOpen() (uint64, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != StateClosed {
		return 0, false
	}
	d.state = StateOpening
	d.token++
	return d.token, true
}

func (d *Dropdown) toggle() (toggleAction, uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch d.state {
	case StateClosed:
		d.state = StateOpening
		d.token++
		return toggleLoad, d.token
	case StateOpen:
		d.closeLocked(CloseToggle)
		return toggleClosed, 0
	default:
		return toggleIgnored, 0
	}
}

// finishOpen completes the load identified by token. Loads belonging to a
// view that was closed (or closed and reopened) meanwhile are dropped.
func (d *Dropdown) finishOpen(token uint64, build func() View) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != StateOpening || d.token != token {
		return false
	}
	d.state = StateOpen
	d.renderLocked(build())
	return true
}

func (d *Dropdown) close(reason CloseReason) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state == StateClosed {
		return false
	}
	d.closeLocked(reason)
	return true
}

func (d *Dropdown) closeLocked(reason CloseReason) {
	d.state = StateClosed
	d.token++
	if d.renderer != nil {
		d.renderer.Hide(reason)
	}
}

// refresh re-renders the list if, and only if, the dropdown is open.
func (d *Dropdown) refresh(build func() View) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != StateOpen {
		return false
	}
	d.renderLocked(build())
	return true
}

func (d *Dropdown) renderLocked(view View) {
	d.metrics.IncRender(string(d.presentation))
	if d.renderer != nil {
		d.renderer.RenderList(view)
	}
}

// setBadge redraws the badge when its text changed.
func (d *Dropdown) setBadge(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.badgeDrawn && d.badge == text {
		return
	}
	d.badge = text
	d.badgeDrawn = true
	if d.renderer != nil {
		d.renderer.RenderBadge(text)
	}
}
