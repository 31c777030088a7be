package docsearch

import (
	"context"
	"iter"
)

// FallbackAnswer is substituted in buffered mode when the model produces no
// output.
const FallbackAnswer = "Sorry, I could not generate a response."

// ContextItem is one retrieved chunk used to ground an answer.
type ContextItem struct {
	Content  string         `json:"content"`
	Metadata RecordMetadata `json:"metadata"`
}

// ContextFromResults converts ranked search results into synthesis context,
// preserving the ranked order.
func ContextFromResults(results []SearchResult) []ContextItem {
	items := make([]ContextItem, len(results))
	for i, r := range results {
		items[i] = ContextItem{
			Content:  r.Metadata.Content,
			Metadata: r.Metadata,
		}
	}
	return items
}

// Synthesizer produces answers grounded in retrieved documentation context.
// Both modes are functionally equivalent in content and differ only in
// delivery.
type Synthesizer interface {
	// Synthesize returns the complete answer as one string.
	Synthesize(ctx context.Context, question string, items []ContextItem) (string, error)

	// SynthesizeStream returns a finite, non-restartable sequence of text
	// increments. Increments arrive in generation order and are never
	// duplicated; concatenating them reconstructs the buffered answer.
	// A failure mid-stream surfaces as the final iteration's error; text
	// already yielded stands and the caller decides whether to keep it.
	SynthesizeStream(ctx context.Context, question string, items []ContextItem) iter.Seq2[string, error]
}
