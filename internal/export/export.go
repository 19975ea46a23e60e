// Package export renders the assembled markdown blob into the delivered
// artifact formats. A renderer never fails outright: when rendering breaks,
// the artifact's bytes become a human-readable error message so every
// render step still delivers a file.
package export

import (
	"context"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/jonathan/wiki-exporter/internal/model"
)

// Renderer produces the bytes for one export format.
type Renderer interface {
	Format() model.FileFormat
	Filename(repoName string) string
	// Render converts the markdown blob. It always returns usable bytes;
	// internal failures yield degraded or error content.
	Render(ctx context.Context, repoName, content string) []byte
}

// RepoName derives the artifact base name from a repository URL.
func RepoName(repositoryURL string) string {
	trimmed := strings.TrimSuffix(strings.TrimSpace(repositoryURL), "/")
	name := trimmed[strings.LastIndex(trimmed, "/")+1:]
	name = strings.TrimSuffix(name, ".git")
	if name == "" {
		return "repository"
	}
	return name
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// markdownToHTML converts markdown to an HTML fragment.
func markdownToHTML(source string) (string, error) {
	var buf strings.Builder
	if err := markdown.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("failed to convert markdown: %w", err)
	}
	return buf.String(), nil
}

// MarkdownRenderer stores the assembled blob verbatim.
type MarkdownRenderer struct{}

// Format returns the markdown format tag.
func (MarkdownRenderer) Format() model.FileFormat { return model.FormatMarkdown }

// Filename returns <repo>_wiki.md.
func (MarkdownRenderer) Filename(repoName string) string { return repoName + "_wiki.md" }

// Render passes the blob bytes through unchanged.
func (MarkdownRenderer) Render(_ context.Context, _ string, content string) []byte {
	return []byte(content)
}
