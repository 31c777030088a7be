package mock

import (
	"context"
	"iter"

	"github.com/upstash/docsearch"
)

var _ docsearch.Synthesizer = (*Synthesizer)(nil)

// Synthesizer is a mock implementation of docsearch.Synthesizer.
type Synthesizer struct {
	SynthesizeFn       func(ctx context.Context, question string, items []docsearch.ContextItem) (string, error)
	SynthesizeStreamFn func(ctx context.Context, question string, items []docsearch.ContextItem) iter.Seq2[string, error]
}

func (s *Synthesizer) Synthesize(ctx context.Context, question string, items []docsearch.ContextItem) (string, error) {
	return s.SynthesizeFn(ctx, question, items)
}

func (s *Synthesizer) SynthesizeStream(ctx context.Context, question string, items []docsearch.ContextItem) iter.Seq2[string, error] {
	return s.SynthesizeStreamFn(ctx, question, items)
}

// StreamOf returns a stream that yields the given chunks then stops. A
// convenience for tests exercising streaming consumers.
func StreamOf(chunks ...string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for _, c := range chunks {
			if !yield(c, nil) {
				return
			}
		}
	}
}

// StreamError returns a stream that yields the given chunks and then fails
// with err, mimicking a mid-stream transport failure.
func StreamError(err error, chunks ...string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for _, c := range chunks {
			if !yield(c, nil) {
				return
			}
		}
		yield("", err)
	}
}
