package console

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/petrescue/admin-notifier/internal/notifysync"
	"github.com/petrescue/admin-notifier/pkg/enums"
)

const emptyText = "No notifications yet"

// Renderer draws one dropdown presentation as styled terminal text.
type Renderer struct {
	mu           sync.Mutex
	out          io.Writer
	presentation enums.Presentation
	styles       styles
}

// NewRenderer writes the presentation's dropdown to out. Color output
// follows the terminal capabilities of out.
func NewRenderer(out io.Writer, p enums.Presentation) *Renderer {
	l, ok := layouts[p]
	if !ok {
		l = layouts[enums.PresentationDesktop]
	}
	return &Renderer{
		out:          out,
		presentation: p,
		styles:       newStyles(out, l),
	}
}

// Renderers builds one renderer per presentation sharing out.
func Renderers(out io.Writer) map[enums.Presentation]notifysync.Renderer {
	renderers := make(map[enums.Presentation]notifysync.Renderer, len(enums.Presentations))
	for _, p := range enums.Presentations {
		renderers[p] = NewRenderer(out, p)
	}
	return renderers
}

func (r *Renderer) RenderList(view notifysync.View) {
	var b strings.Builder
	b.WriteString(r.header(view.Badge))
	b.WriteString("\n")
	if view.Empty() {
		b.WriteString(r.styles.Empty.Render(emptyText))
	}
	for i, entry := range view.Entries {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(r.entry(entry))
	}
	r.write(r.styles.Frame.Render(b.String()))
}

func (r *Renderer) RenderBadge(text string) {
	if text == "" {
		r.write(r.styles.Closed.Render(fmt.Sprintf("[%s] no unread notifications", r.presentation)))
		return
	}
	r.write(fmt.Sprintf("[%s] %s unread", r.presentation, r.styles.Badge.Render(text)))
}

func (r *Renderer) Hide(reason notifysync.CloseReason) {
	r.write(r.styles.Closed.Render(fmt.Sprintf("[%s] closed (%s)", r.presentation, reason)))
}

func (r *Renderer) header(badge string) string {
	title := r.styles.Title.Render(fmt.Sprintf("Notifications (%s)", r.presentation))
	if badge == "" {
		return title
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, title, " ", r.styles.Badge.Render(badge))
}

func (r *Renderer) entry(e notifysync.Entry) string {
	kind := r.styles.Found
	if e.Type == enums.NotificationTypeLostReport {
		kind = r.styles.Lost
	}
	text := r.styles.Read
	marker := " "
	if !e.IsRead {
		text = r.styles.Unread
		marker = "•"
	}
	meta := fmt.Sprintf("%s %s %s  %s", marker, kind.Render(e.TypeLabel), r.styles.Age.Render(e.Age), r.styles.Age.Render("#"+e.ID.String()))
	return lipgloss.JoinVertical(lipgloss.Left, meta, text.Inherit(r.styles.Message).Render(e.Message))
}

func (r *Renderer) write(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.out, s)
}
