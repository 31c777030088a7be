// Package slog provides logging decorators for docsearch interfaces.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/upstash/docsearch"
)

// Ensure LoggingIndex implements docsearch.VectorIndex.
var _ docsearch.VectorIndex = (*LoggingIndex)(nil)

// LoggingIndex wraps a VectorIndex with operation timing logs.
type LoggingIndex struct {
	next   docsearch.VectorIndex
	logger *slog.Logger
}

// NewLoggingIndex creates a new LoggingIndex.
func NewLoggingIndex(next docsearch.VectorIndex, logger *slog.Logger) *LoggingIndex {
	return &LoggingIndex{next: next, logger: logger}
}

// Reset delegates to the wrapped index and logs the outcome.
func (l *LoggingIndex) Reset(ctx context.Context, namespace string) error {
	begin := time.Now()
	err := l.next.Reset(ctx, namespace)
	if err != nil {
		l.logger.Error("vector reset failed",
			"namespace", namespace,
			"duration", time.Since(begin),
			"error", err,
		)
		return err
	}
	l.logger.Info("vector reset",
		"namespace", namespace,
		"duration", time.Since(begin),
	)
	return nil
}

// Upsert delegates to the wrapped index and logs at debug level; one log
// line per section would drown out everything else at info.
func (l *LoggingIndex) Upsert(ctx context.Context, namespace string, rec docsearch.IndexRecord) error {
	begin := time.Now()
	err := l.next.Upsert(ctx, namespace, rec)
	if err != nil {
		l.logger.Error("vector upsert failed",
			"namespace", namespace,
			"id", rec.ID,
			"duration", time.Since(begin),
			"error", err,
		)
		return err
	}
	l.logger.Debug("vector upsert",
		"namespace", namespace,
		"id", rec.ID,
		"duration", time.Since(begin),
	)
	return nil
}

// Query delegates to the wrapped index and logs the result count.
func (l *LoggingIndex) Query(ctx context.Context, namespace, query string, topK int) ([]docsearch.SearchResult, error) {
	begin := time.Now()
	results, err := l.next.Query(ctx, namespace, query, topK)
	if err != nil {
		l.logger.Error("vector query failed",
			"namespace", namespace,
			"topK", topK,
			"duration", time.Since(begin),
			"error", err,
		)
		return nil, err
	}
	l.logger.Info("vector query",
		"namespace", namespace,
		"topK", topK,
		"results", len(results),
		"duration", time.Since(begin),
	)
	return results, nil
}
