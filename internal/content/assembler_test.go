package content

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/wiki-exporter/internal/model"
)

// fakeSource scripts the acquisition ladder for tests.
type fakeSource struct {
	invalidURL bool
	hasWiki    bool
	pages      []model.WikiPage
	content    map[string]string
	readme     string
	readmeErr  error
}

func (f *fakeSource) ExtractRepoInfo(repoURL string) (string, string, error) {
	if f.invalidURL {
		return "", "", errors.New("invalid repository URL")
	}
	return "owner", "repo", nil
}

func (f *fakeSource) HasWiki(context.Context, string, string) bool { return f.hasWiki }

func (f *fakeSource) ListWikiPages(context.Context, string, string) []model.WikiPage {
	return f.pages
}

func (f *fakeSource) GetWikiPageContent(_ context.Context, _, _, path string) string {
	if text, ok := f.content[path]; ok {
		return text
	}
	return fmt.Sprintf("*Could not fetch content for %s*", path)
}

func (f *fakeSource) GetReadme(context.Context, string, string) (string, error) {
	return f.readme, f.readmeErr
}

type checkpoint struct {
	percentage int
	message    string
}

func collectProgress(dst *[]checkpoint) ProgressFunc {
	return func(_ context.Context, percentage int, message string) {
		*dst = append(*dst, checkpoint{percentage, message})
	}
}

func newAssembler(src Source) *Assembler {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return NewAssembler(src, log)
}

func TestAssembleWiki(t *testing.T) {
	src := &fakeSource{
		hasWiki: true,
		pages: []model.WikiPage{
			{Name: "Home", Path: "Home"},
			{Name: "Usage", Path: "Usage"},
		},
		content: map[string]string{
			"Home":  "Welcome.",
			"Usage": "Run it.",
		},
	}

	var checkpoints []checkpoint
	blob, err := newAssembler(src).Assemble(context.Background(), "https://github.com/owner/repo", collectProgress(&checkpoints))
	require.NoError(t, err)

	assert.Equal(t, "# Home\n\nWelcome.\n\n---\n\n# Usage\n\nRun it.\n\n---\n\n", blob)

	// Checkpoint ladder: 5, 10, 20, 25, then per-page interpolation.
	require.GreaterOrEqual(t, len(checkpoints), 6)
	assert.Equal(t, 5, checkpoints[0].percentage)
	assert.Equal(t, 10, checkpoints[1].percentage)
	assert.Equal(t, 20, checkpoints[2].percentage)
	assert.Equal(t, 25, checkpoints[3].percentage)
	assert.Equal(t, checkpoint{25, "Processing page 1/2: Home"}, checkpoints[4])
	assert.Equal(t, checkpoint{42, "Processing page 2/2: Usage"}, checkpoints[5])
}

func TestAssembleMissingPageGetsPlaceholder(t *testing.T) {
	src := &fakeSource{
		hasWiki: true,
		pages:   []model.WikiPage{{Name: "Ghost", Path: "Ghost"}},
	}

	blob, err := newAssembler(src).Assemble(context.Background(), "https://github.com/owner/repo", nil)
	require.NoError(t, err)
	assert.Equal(t, "# Ghost\n\n*Could not fetch content for Ghost*\n\n---\n\n", blob)
}

func TestAssembleReadmeFallback(t *testing.T) {
	src := &fakeSource{hasWiki: false, readme: "# repo\n\nA project."}

	blob, err := newAssembler(src).Assemble(context.Background(), "https://github.com/owner/repo", nil)
	require.NoError(t, err)
	assert.Equal(t, "# repo\n\nA project.", blob)
}

func TestAssembleEmptyWikiListingFallsBackToReadme(t *testing.T) {
	// Wiki enabled but no listable pages behaves exactly like no wiki.
	src := &fakeSource{hasWiki: true, pages: nil, readme: "readme text"}

	blob, err := newAssembler(src).Assemble(context.Background(), "https://github.com/owner/repo", nil)
	require.NoError(t, err)
	assert.Equal(t, "readme text", blob)
}

func TestAssembleNothingFound(t *testing.T) {
	src := &fakeSource{}

	blob, err := newAssembler(src).Assemble(context.Background(), "https://github.com/owner/repo", nil)
	require.NoError(t, err)
	assert.Equal(t, "# repo\n\nNo wiki pages or README found for this repository.", blob)
}

func TestAssembleReadmeErrorPlaceholder(t *testing.T) {
	src := &fakeSource{readmeErr: errors.New("api rate limited")}

	blob, err := newAssembler(src).Assemble(context.Background(), "https://github.com/owner/repo", nil)
	require.NoError(t, err)
	assert.Equal(t, "# repo\n\nError accessing repository: api rate limited", blob)
}

func TestAssembleInvalidURL(t *testing.T) {
	src := &fakeSource{invalidURL: true}

	_, err := newAssembler(src).Assemble(context.Background(), "https://example.com/nope", nil)
	assert.Error(t, err)
}
