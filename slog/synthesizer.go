package slog

import (
	"context"
	"iter"
	"log/slog"
	"time"

	"github.com/upstash/docsearch"
)

// Ensure LoggingSynthesizer implements docsearch.Synthesizer.
var _ docsearch.Synthesizer = (*LoggingSynthesizer)(nil)

// LoggingSynthesizer wraps a Synthesizer with timing and volume logs.
type LoggingSynthesizer struct {
	next   docsearch.Synthesizer
	logger *slog.Logger
}

// NewLoggingSynthesizer creates a new LoggingSynthesizer.
func NewLoggingSynthesizer(next docsearch.Synthesizer, logger *slog.Logger) *LoggingSynthesizer {
	return &LoggingSynthesizer{next: next, logger: logger}
}

// Synthesize delegates to the wrapped synthesizer and logs the outcome.
func (l *LoggingSynthesizer) Synthesize(ctx context.Context, question string, items []docsearch.ContextItem) (string, error) {
	begin := time.Now()
	answer, err := l.next.Synthesize(ctx, question, items)
	if err != nil {
		l.logger.Error("synthesis failed",
			"context_items", len(items),
			"duration", time.Since(begin),
			"error", err,
		)
		return "", err
	}
	l.logger.Info("synthesis",
		"context_items", len(items),
		"answer_bytes", len(answer),
		"duration", time.Since(begin),
	)
	return answer, nil
}

// SynthesizeStream delegates to the wrapped synthesizer and logs once the
// stream finishes, including whether it failed mid-stream.
func (l *LoggingSynthesizer) SynthesizeStream(ctx context.Context, question string, items []docsearch.ContextItem) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		begin := time.Now()
		chunks, bytes := 0, 0

		for chunk, err := range l.next.SynthesizeStream(ctx, question, items) {
			if err != nil {
				l.logger.Error("synthesis stream failed",
					"context_items", len(items),
					"chunks", chunks,
					"answer_bytes", bytes,
					"duration", time.Since(begin),
					"error", err,
				)
				yield("", err)
				return
			}
			chunks++
			bytes += len(chunk)
			if !yield(chunk, nil) {
				return
			}
		}

		l.logger.Info("synthesis stream",
			"context_items", len(items),
			"chunks", chunks,
			"answer_bytes", bytes,
			"duration", time.Since(begin),
		)
	}
}
