package export

import (
	"context"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/wiki-exporter/internal/model"
)

func TestRepoName(t *testing.T) {
	cases := []struct {
		url  string
		want string
	}{
		{"https://github.com/owner/repo", "repo"},
		{"https://github.com/owner/repo.git", "repo"},
		{"https://github.com/owner/repo/", "repo"},
		{"  https://github.com/owner/My-Project  ", "My-Project"},
		{"", "repository"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, RepoName(tc.url), tc.url)
	}
}

func TestMarkdownRendererPassthrough(t *testing.T) {
	r := MarkdownRenderer{}

	assert.Equal(t, model.FormatMarkdown, r.Format())
	assert.Equal(t, "repo_wiki.md", r.Filename("repo"))

	blob := "# Home\n\nWelcome.\n\n---\n\n"
	assert.Equal(t, []byte(blob), r.Render(context.Background(), "repo", blob))
}

func TestPDFRendererHTMLFallback(t *testing.T) {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	r := PDFRenderer{ChromeDisabled: true, Log: log}

	assert.Equal(t, model.FormatPDF, r.Format())
	assert.Equal(t, "repo_wiki.pdf", r.Filename("repo"))

	out := string(r.Render(context.Background(), "repo", "# Home\n\nSome **bold** text."))
	assert.Contains(t, out, "<!DOCTYPE html>")
	assert.Contains(t, out, "<title>repo Wiki</title>")
	assert.Contains(t, out, "<strong>bold</strong>")
	assert.Contains(t, out, "font-family: Arial")
}

func TestSplitChaptersHeadings(t *testing.T) {
	blob := "# Home\n\nWelcome.\n\n---\n\n# Usage\n\nRun it.\n\n---\n\n"
	chapters := SplitChapters(blob, "repo")

	require.Len(t, chapters, 2)
	assert.Equal(t, "Home", chapters[0].Title)
	assert.Equal(t, "home", chapters[0].Slug)
	assert.Contains(t, chapters[0].Body, "Welcome.")
	assert.Equal(t, "Usage", chapters[1].Title)
	assert.Contains(t, chapters[1].Body, "Run it.")
}

func TestSplitChaptersLeadingTextBecomesIntroduction(t *testing.T) {
	blob := "Some preamble.\n\n# First\n\nBody."
	chapters := SplitChapters(blob, "repo")

	require.Len(t, chapters, 2)
	assert.Equal(t, "Introduction", chapters[0].Title)
	assert.Equal(t, "intro", chapters[0].Slug)
	assert.Equal(t, "Some preamble.", chapters[0].Body)
	assert.Equal(t, "First", chapters[1].Title)
}

func TestSplitChaptersNoHeadings(t *testing.T) {
	chapters := SplitChapters("just some text\nwith lines", "repo")

	require.Len(t, chapters, 1)
	assert.Equal(t, "repo", chapters[0].Title)
	assert.Equal(t, "content", chapters[0].Slug)
	assert.Equal(t, "just some text\nwith lines", chapters[0].Body)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "getting_started_", slugify("Getting Started!"))
	assert.Equal(t, "api-reference", slugify("API-Reference"))
}

func TestEPUBRenderer(t *testing.T) {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	r := EPUBRenderer{Log: log}

	assert.Equal(t, model.FormatEPUB, r.Format())
	assert.Equal(t, "repo_wiki.epub", r.Filename("repo"))

	out := r.Render(context.Background(), "repo", "# Home\n\nWelcome.\n\n---\n\n# Usage\n\nRun it.")
	require.NotEmpty(t, out)
	// EPUB files are zip archives; a failure would yield a text message.
	assert.False(t, strings.HasPrefix(string(out), "EPUB generation failed"))
	assert.Equal(t, "PK", string(out[:2]))
}
