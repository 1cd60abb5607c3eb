package console

import (
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/petrescue/admin-notifier/pkg/enums"
)

var (
	brand  = lipgloss.Color("#2f6f4f")
	lost   = lipgloss.Color("#c0392b")
	found  = lipgloss.Color("#2471a3")
	muted  = lipgloss.Color("#7f8c8d")
	accent = lipgloss.Color("#f39c12")
)

type styles struct {
	Frame   lipgloss.Style
	Title   lipgloss.Style
	Badge   lipgloss.Style
	Unread  lipgloss.Style
	Read    lipgloss.Style
	Age     lipgloss.Style
	Lost    lipgloss.Style
	Found   lipgloss.Style
	Empty   lipgloss.Style
	Closed  lipgloss.Style
	Message lipgloss.Style
}

// layout per presentation: the desktop dropdown is a bordered panel, the
// mobile one a narrow unframed list.
type layout struct {
	width  int
	border bool
}

var layouts = map[enums.Presentation]layout{
	enums.PresentationDesktop: {width: 64, border: true},
	enums.PresentationMobile:  {width: 38, border: false},
}

func newStyles(out io.Writer, l layout) styles {
	r := lipgloss.NewRenderer(out)
	frame := r.NewStyle().Width(l.width)
	if l.border {
		frame = frame.
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(brand).
			Padding(0, 1)
	}
	return styles{
		Frame: frame,
		Title: r.NewStyle().
			Foreground(brand).
			Bold(true),
		Badge: r.NewStyle().
			Foreground(lipgloss.Color("#ffffff")).
			Background(accent).
			Bold(true).
			Padding(0, 1),
		Unread: r.NewStyle().Bold(true),
		Read:   r.NewStyle().Foreground(muted),
		Age: r.NewStyle().
			Foreground(muted).
			Italic(true),
		Lost:    r.NewStyle().Foreground(lost).Bold(true),
		Found:   r.NewStyle().Foreground(found).Bold(true),
		Empty:   r.NewStyle().Foreground(muted).Italic(true),
		Closed:  r.NewStyle().Foreground(muted),
		Message: r.NewStyle().Width(l.width - 4),
	}
}
