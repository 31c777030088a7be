package docsearch

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Section is a contiguous span of a document beginning at a heading line and
// extending to the next heading of any level. All heading levels are treated
// as flat, sibling spans: a level-1 heading's section ends at the very next
// heading regardless of level, so nested content is not folded under its
// parent. Consumers rely on this flat shape; do not turn it into a tree.
type Section struct {
	Level   int    `json:"level"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

var (
	// headingStartRe marks lines that open a new section.
	headingStartRe = regexp.MustCompile(`^#{1,6}\s`)

	// headingRe captures the level markers and title of a heading line.
	headingRe = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)

	whitespaceRe = regexp.MustCompile(`\s+`)
	nonWordRe    = regexp.MustCompile(`[^\w-]+`)
	hyphenRunRe  = regexp.MustCompile(`--+`)
)

// SplitSections splits markdown into heading-anchored sections. Content
// before the first heading is dropped, as are heading lines with no title
// text. Section bodies are trimmed of leading and trailing blank lines.
func SplitSections(text string) []Section {
	if text == "" {
		return nil
	}

	lines := strings.Split(text, "\n")

	var bounds []int
	for i, line := range lines {
		if headingStartRe.MatchString(line) {
			bounds = append(bounds, i)
		}
	}

	sections := make([]Section, 0, len(bounds))
	for bi, start := range bounds {
		end := len(lines)
		if bi+1 < len(bounds) {
			end = bounds[bi+1]
		}

		m := headingRe.FindStringSubmatch(lines[start])
		if m == nil {
			continue
		}

		sections = append(sections, Section{
			Level:   len(m[1]),
			Title:   strings.TrimSpace(m[2]),
			Content: strings.TrimSpace(strings.Join(lines[start+1:end], "\n")),
		})
	}

	return sections
}

// Slugify converts a section title to the URL-friendly form used in record
// IDs: lowercase, Unicode NFD normalized, periods stripped, whitespace runs
// collapsed to single hyphens, everything outside word characters and
// hyphens removed, repeated hyphens collapsed.
//
// Record IDs are durable, externally-referenced keys (navigation links are
// built from them), so the transformation order must not change.
func Slugify(text string) string {
	s := strings.ToLower(text)
	s = norm.NFD.String(s)
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ".", "")
	s = whitespaceRe.ReplaceAllString(s, "-")
	s = nonWordRe.ReplaceAllString(s, "")
	return hyphenRunRe.ReplaceAllString(s, "-")
}
