package enums

import (
	"fmt"
	"strings"
)

// Presentation names one rendering of the notification dropdown.
type Presentation string

const (
	PresentationDesktop Presentation = "desktop"
	PresentationMobile  Presentation = "mobile"
)

// Presentations lists every presentation in render order.
var Presentations = []Presentation{PresentationDesktop, PresentationMobile}

func (p Presentation) IsValid() bool {
	return p == PresentationDesktop || p == PresentationMobile
}

// ParsePresentation accepts the canonical names case-insensitively.
func ParsePresentation(value string) (Presentation, error) {
	candidate := Presentation(strings.ToLower(strings.TrimSpace(value)))
	if !candidate.IsValid() {
		return "", fmt.Errorf("invalid presentation %q", value)
	}
	return candidate, nil
}
