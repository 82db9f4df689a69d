package cliui

import (
	"github.com/charmbracelet/glamour"
)

// DefaultWrap is the column answers are wrapped at.
const DefaultWrap = 80

// RenderMarkdown renders markdown content for terminal display using glamour.
// On failure the unrendered content is returned alongside the error so callers
// can print it as is.
func RenderMarkdown(content string, wrap int) (string, error) {
	if wrap <= 0 {
		wrap = DefaultWrap
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		return content, err
	}

	rendered, err := r.Render(content)
	if err != nil {
		return content, err
	}

	return rendered, nil
}
