// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/wiki-exporter/internal/model"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintJobSummary outputs a human-readable summary of an export job.
func (p *Printer) PrintJobSummary(job *model.Job) {
	if job == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Repository: %s\n", job.RepositoryURL))
	sb.WriteString(fmt.Sprintf("Status:     %s\n", job.Status))
	sb.WriteString(fmt.Sprintf("Progress:   %d%% %s", job.ProgressPercentage, job.ProgressMessage))
	if job.ErrorMessage != "" {
		sb.WriteString(fmt.Sprintf("\nError:      %s", job.ErrorMessage))
	}

	p.printBox("EXPORT JOB", sb.String())
}

// PrintWikiPages outputs the discovered wiki page listing.
func (p *Printer) PrintWikiPages(pages []model.WikiPage) {
	if len(pages) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d pages:\n\n", len(pages)))

	count := min(len(pages), maxItemsToShow)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("  • %s\n", pages[i].Name))
	}
	if len(pages) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(pages)-maxItemsToShow))
	}

	p.printBox("WIKI PAGES", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintExportFiles outputs the rendered artifacts with their sizes.
func (p *Printer) PrintExportFiles(files []*model.ExportFile) {
	if len(files) == 0 {
		return
	}

	var sb strings.Builder
	for i, f := range files {
		sb.WriteString(fmt.Sprintf("%-9s %s (%s)", f.Format, f.Filename, formatSize(f.SizeBytes)))
		if i < len(files)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("EXPORT FILES", sb.String())
}

// formatSize renders a byte count in human-readable units.
func formatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMG"[exp])
}
