package export

import (
	"context"
	"fmt"
	"html"
	"os"
	"path/filepath"

	epub "github.com/bmaupin/go-epub"
	"github.com/sirupsen/logrus"

	"github.com/jonathan/wiki-exporter/internal/model"
)

// EPUBRenderer splits the blob into chapters and packages them as an EPUB.
// On failure it emits an error-message file under the .epub filename.
type EPUBRenderer struct {
	Log *logrus.Logger
}

// Format returns the EPUB format tag.
func (EPUBRenderer) Format() model.FileFormat { return model.FormatEPUB }

// Filename returns <repo>_wiki.epub.
func (EPUBRenderer) Filename(repoName string) string { return repoName + "_wiki.epub" }

// Render assembles the EPUB artifact.
func (r EPUBRenderer) Render(_ context.Context, repoName, content string) []byte {
	log := r.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	data, err := buildEPUB(repoName, content)
	if err != nil {
		log.WithError(err).Error("EPUB generation failed")
		return []byte(fmt.Sprintf("EPUB generation failed: %v", err))
	}
	return data
}

func buildEPUB(repoName, content string) ([]byte, error) {
	book := epub.NewEpub(repoName + " Wiki")
	book.SetLang("en")
	book.SetDescription(fmt.Sprintf("Exported wiki content for %s", repoName))

	for _, chapter := range SplitChapters(content, repoName) {
		body, err := markdownToHTML(chapter.Body)
		if err != nil {
			return nil, err
		}
		section := fmt.Sprintf("<h1>%s</h1>\n%s", html.EscapeString(chapter.Title), body)
		if _, err := book.AddSection(section, chapter.Title, "chapter_"+chapter.Slug+".xhtml", ""); err != nil {
			return nil, fmt.Errorf("failed to add chapter %q: %w", chapter.Title, err)
		}
	}

	// go-epub writes to a path, so round-trip through a temp file.
	tmpDir, err := os.MkdirTemp("", "wiki-epub-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()

	tmpPath := filepath.Join(tmpDir, "export.epub")
	if err := book.Write(tmpPath); err != nil {
		return nil, fmt.Errorf("failed to write EPUB: %w", err)
	}
	data, err := os.ReadFile(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read EPUB: %w", err)
	}
	return data, nil
}
