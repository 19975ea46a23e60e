// Package content assembles the markdown blob a job's renderers consume.
// Acquisition is modeled as an ordered list of attempts, each returning a
// tagged result, so fallback is explicit control flow rather than error
// propagation.
package content

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/jonathan/wiki-exporter/internal/model"
)

// Source retrieves wiki and README content for a repository. Implemented by
// github.Client.
type Source interface {
	// ExtractRepoInfo fails only on a malformed repository URL.
	ExtractRepoInfo(repoURL string) (owner, repo string, err error)
	// HasWiki is a best-effort hint; it never fails.
	HasWiki(ctx context.Context, owner, repo string) bool
	// ListWikiPages returns pages in order; empty means no wiki pages.
	ListWikiPages(ctx context.Context, owner, repo string) []model.WikiPage
	// GetWikiPageContent never fails; it returns an inline placeholder on error.
	GetWikiPageContent(ctx context.Context, owner, repo, path string) string
	// GetReadme returns ("", nil) when the repository has no README.
	GetReadme(ctx context.Context, owner, repo string) (string, error)
}

// ProgressFunc receives acquisition progress checkpoints. Reporting is
// best-effort; a checkpoint that fails to persist must not abort acquisition.
type ProgressFunc func(ctx context.Context, percentage int, message string)

// result is the tagged outcome of one acquisition attempt.
type result struct {
	text string
	ok   bool
}

func success(text string) result { return result{text: text, ok: true} }

var unavailable = result{}

// Assembler drives the acquisition fallback ladder.
type Assembler struct {
	source Source
	log    *logrus.Logger
}

// NewAssembler creates an assembler over a content source.
func NewAssembler(source Source, log *logrus.Logger) *Assembler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Assembler{source: source, log: log}
}

// Assemble produces the single markdown blob for a repository. The only
// error it can return is an invalid repository URL; every other failure
// degrades toward the best available content.
func (a *Assembler) Assemble(ctx context.Context, repoURL string, report ProgressFunc) (string, error) {
	if report == nil {
		report = func(context.Context, int, string) {}
	}

	report(ctx, 5, fmt.Sprintf("Extracting repository information from URL: %s", repoURL))
	owner, repo, err := a.source.ExtractRepoInfo(repoURL)
	if err != nil {
		return "", err
	}
	report(ctx, 10, fmt.Sprintf("Checking repository %s/%s", owner, repo))

	var readmeErr error
	attempts := []func(context.Context) result{
		func(ctx context.Context) result { return a.tryWiki(ctx, owner, repo, report) },
		func(ctx context.Context) result {
			res, err := a.tryReadme(ctx, owner, repo, report)
			readmeErr = err
			return res
		},
	}
	for _, attempt := range attempts {
		if res := attempt(ctx); res.ok {
			return res.text, nil
		}
	}

	if readmeErr != nil {
		report(ctx, 30, fmt.Sprintf("Error accessing repository: %v", readmeErr))
		return fmt.Sprintf("# %s\n\nError accessing repository: %v", repo, readmeErr), nil
	}
	report(ctx, 30, "No wiki pages or README found")
	return fmt.Sprintf("# %s\n\nNo wiki pages or README found for this repository.", repo), nil
}

// tryWiki assembles the wiki pages into one document. Unavailable when the
// repository has no wiki or no listable pages.
func (a *Assembler) tryWiki(ctx context.Context, owner, repo string, report ProgressFunc) result {
	if !a.source.HasWiki(ctx, owner, repo) {
		report(ctx, 20, "No wiki found for repository, fetching README")
		return unavailable
	}
	report(ctx, 20, "Repository has wiki enabled. Fetching wiki pages...")

	pages := a.source.ListWikiPages(ctx, owner, repo)
	if len(pages) == 0 {
		report(ctx, 25, "No wiki pages found despite wiki being enabled. Falling back to README.")
		return unavailable
	}
	report(ctx, 25, fmt.Sprintf("Found %d wiki pages", len(pages)))

	var blob strings.Builder
	total := len(pages)
	for i, page := range pages {
		// Interpolate page progress across the 25-60% band.
		progress := 25 + (i*35)/total
		report(ctx, progress, fmt.Sprintf("Processing page %d/%d: %s", i+1, total, page.Name))

		pageContent := a.source.GetWikiPageContent(ctx, owner, repo, page.Path)
		fmt.Fprintf(&blob, "# %s\n\n%s\n\n---\n\n", page.Name, pageContent)
	}
	return success(blob.String())
}

// tryReadme falls back to the repository README. The error is handed back so
// the final placeholder can state it.
func (a *Assembler) tryReadme(ctx context.Context, owner, repo string, report ProgressFunc) (result, error) {
	readme, err := a.source.GetReadme(ctx, owner, repo)
	if err != nil {
		a.log.WithError(err).WithField("repo", owner+"/"+repo).Warn("README fetch failed")
		return unavailable, err
	}
	if readme == "" {
		return unavailable, nil
	}
	report(ctx, 30, "Retrieved README content successfully")
	return success(readme), nil
}
