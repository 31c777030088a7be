package docsearch

import "context"

// DefaultNamespace is the vector index namespace used when none is
// configured.
const DefaultNamespace = "docusaurus-ai-search-upstash"

// DefaultTopK is the number of results requested per query when the caller
// does not specify one.
const DefaultTopK = 15

// RecordMetadata is the closed metadata shape stored alongside every index
// record and returned verbatim with search results.
type RecordMetadata struct {
	Title         string `json:"title"`
	Path          string `json:"path"`
	Level         int    `json:"level"`
	Type          string `json:"type"`
	Content       string `json:"content"`
	DocumentTitle string `json:"documentTitle"`
}

// IndexRecord is one indexed, queryable unit, one per document section.
// Records are overwritten on every re-index and removed implicitly by the
// namespace reset that precedes a full re-index.
type IndexRecord struct {
	// ID is "{relPath}#{slug(sectionTitle)}". Unique within a namespace
	// as long as section titles are unique within a document; two
	// same-titled sections in one document collide and the later one
	// wins. Known limitation, kept for link stability.
	ID string `json:"id"`

	// Data is the text that is embedded and matched: the section title
	// and body concatenated.
	Data string `json:"data"`

	Metadata RecordMetadata `json:"metadata"`
}

// SectionID derives the stable record ID for a section of a document.
func SectionID(relPath, sectionTitle string) string {
	return relPath + "#" + Slugify(sectionTitle)
}

// NewIndexRecord builds the index record for one section of a document.
func NewIndexRecord(doc *Document, sec Section) IndexRecord {
	return IndexRecord{
		ID:   SectionID(doc.RelPath, sec.Title),
		Data: sec.Title + "\n\n" + sec.Content,
		Metadata: RecordMetadata{
			Title:         sec.Title,
			Path:          doc.RelPath,
			Level:         sec.Level,
			Type:          "section",
			Content:       sec.Content,
			DocumentTitle: doc.Title,
		},
	}
}

// SearchResult is one ranked retrieval hit. Results are ephemeral; ranking
// is implicit in list order.
type SearchResult struct {
	ID       string         `json:"id"`
	Score    float64        `json:"score"`
	Data     string         `json:"data"`
	Metadata RecordMetadata `json:"metadata"`
}

// SitePath returns the site-relative link for the result, e.g.
// "/docs/getting-started#installation". Record IDs are routable paths by
// construction.
func (r SearchResult) SitePath() string {
	return "/" + r.ID
}

// VectorIndex is the remote vector store, addressed by namespace. The
// namespace is shared between the batch indexer (writer) and online queries
// (reader) with no locking discipline: a re-index running concurrently with
// live queries may serve transiently missing results during the
// reset-then-repopulate window.
type VectorIndex interface {
	// Reset removes every record in the namespace.
	Reset(ctx context.Context, namespace string) error

	// Upsert inserts or overwrites one record in the namespace.
	Upsert(ctx context.Context, namespace string, rec IndexRecord) error

	// Query returns up to topK records ranked by descending similarity.
	// The remote ordering is preserved unmodified and embedding vectors
	// are never requested. Empty or whitespace-only query text returns
	// an empty result list without a remote call.
	Query(ctx context.Context, namespace, query string, topK int) ([]SearchResult, error)
}
