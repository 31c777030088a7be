package docsearch

import (
	"path"
	"regexp"
	"strings"
	"unicode"
)

// Document represents one markdown source file discovered during an indexing
// run. Documents are read once per run and are not persisted by this system;
// the filesystem is the source of truth.
type Document struct {
	// Path is the location of the file on disk.
	Path string `json:"path"`

	// RelPath is the slash-separated site path of the document with the
	// markdown extension stripped. It prefixes every record ID derived
	// from this document.
	RelPath string `json:"relPath"`

	// Title comes from the front matter title field when present,
	// otherwise it is derived from the filename.
	Title string `json:"title"`

	// Content is the raw markdown text.
	Content string `json:"content"`

	// ContentHash is a stable hash of Content, surfaced in progress
	// reporting so operators can compare runs.
	ContentHash string `json:"contentHash"`
}

// frontMatterTitleRe matches a title field inside a leading front matter
// block (--- ... ---).
var frontMatterTitleRe = regexp.MustCompile(`(?s)^---.*?\ntitle:\s*["']?(.*?)["']?\n.*?---`)

var fileNameSeparatorRe = regexp.MustCompile(`[-_]`)

// ExtractTitle returns the document title for the given markdown content.
// A title declared in front matter takes precedence; otherwise the title is
// derived from the filename by splitting on separators and title-casing
// each word.
func ExtractTitle(content, fileName string) string {
	if m := frontMatterTitleRe.FindStringSubmatch(content); m != nil {
		title := strings.NewReplacer(`"`, "", "'", "").Replace(m[1])
		return strings.TrimSpace(title)
	}
	return TitleFromFileName(fileName)
}

// TitleFromFileName derives a display title from a filename, e.g.
// "getting-started.md" becomes "Getting Started".
func TitleFromFileName(fileName string) string {
	base := strings.TrimSuffix(path.Base(fileName), path.Ext(fileName))
	words := fileNameSeparatorRe.Split(base, -1)
	for i, word := range words {
		if word == "" {
			continue
		}
		runes := []rune(strings.ToLower(word))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
