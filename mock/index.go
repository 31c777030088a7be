package mock

import (
	"context"

	"github.com/upstash/docsearch"
)

var _ docsearch.VectorIndex = (*VectorIndex)(nil)

// VectorIndex is a mock implementation of docsearch.VectorIndex.
type VectorIndex struct {
	ResetFn  func(ctx context.Context, namespace string) error
	UpsertFn func(ctx context.Context, namespace string, rec docsearch.IndexRecord) error
	QueryFn  func(ctx context.Context, namespace, query string, topK int) ([]docsearch.SearchResult, error)
}

func (i *VectorIndex) Reset(ctx context.Context, namespace string) error {
	return i.ResetFn(ctx, namespace)
}

func (i *VectorIndex) Upsert(ctx context.Context, namespace string, rec docsearch.IndexRecord) error {
	return i.UpsertFn(ctx, namespace, rec)
}

func (i *VectorIndex) Query(ctx context.Context, namespace, query string, topK int) ([]docsearch.SearchResult, error) {
	return i.QueryFn(ctx, namespace, query, topK)
}
