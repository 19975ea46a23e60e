package export

import (
	"regexp"
	"strings"
)

// Chapter is one EPUB chapter split out of the assembled blob.
type Chapter struct {
	Title string
	Slug  string
	Body  string
}

var (
	headingPattern = regexp.MustCompile(`^# (.+)$`)
	slugPattern    = regexp.MustCompile(`[^\w-]`)
)

// slugify produces a filesystem-safe identifier from a chapter title.
func slugify(title string) string {
	return slugPattern.ReplaceAllString(strings.ToLower(title), "_")
}

// SplitChapters breaks the blob into chapters at level-1 markdown headings.
// Non-empty text before the first heading becomes an Introduction chapter.
// With no headings at all, the whole blob is a single chapter named after
// the repository.
func SplitChapters(content, repoName string) []Chapter {
	lines := strings.Split(content, "\n")

	var chapters []Chapter
	var current *Chapter
	var leading []string

	flush := func() {
		if current != nil {
			current.Body = strings.TrimSpace(current.Body)
			chapters = append(chapters, *current)
			current = nil
		}
	}

	for _, line := range lines {
		if m := headingPattern.FindStringSubmatch(line); m != nil {
			flush()
			title := strings.TrimSpace(m[1])
			current = &Chapter{Title: title, Slug: slugify(title)}
			continue
		}
		if current != nil {
			current.Body += line + "\n"
		} else {
			leading = append(leading, line)
		}
	}
	flush()

	if len(chapters) == 0 {
		return []Chapter{{Title: repoName, Slug: "content", Body: strings.TrimSpace(content)}}
	}

	if intro := strings.TrimSpace(strings.Join(leading, "\n")); intro != "" {
		chapters = append([]Chapter{{Title: "Introduction", Slug: "intro", Body: intro}}, chapters...)
	}
	return chapters
}
