// Package markdown converts model output to HTML for the chat UI.
package markdown

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Renderer turns markdown source into an HTML fragment.
type Renderer interface {
	Render(source string) (string, error)
}

// GoldmarkRenderer renders GitHub-flavored markdown. Raw HTML embedded in the
// source is dropped and replaced by a "raw HTML omitted" comment.
type GoldmarkRenderer struct {
	md goldmark.Markdown
}

// NewRenderer returns a GFM renderer. Single newlines become <br>, unlike
// CommonMark's default soft breaks.
func NewRenderer() *GoldmarkRenderer {
	return &GoldmarkRenderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
	}
}

// Render implements Renderer.
func (r *GoldmarkRenderer) Render(source string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return buf.String(), nil
}
