package upstash_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upstash/docsearch"
	"github.com/upstash/docsearch/upstash"
)

func TestNewIndex_Validation(t *testing.T) {
	t.Parallel()

	t.Run("requires URL", func(t *testing.T) {
		t.Parallel()

		_, err := upstash.NewIndex(upstash.Config{Token: "tok"})

		require.Error(t, err)
		assert.Equal(t, docsearch.EINVALID, docsearch.ErrorCode(err))
	})

	t.Run("requires token", func(t *testing.T) {
		t.Parallel()

		_, err := upstash.NewIndex(upstash.Config{URL: "https://example.upstash.io"})

		require.Error(t, err)
		assert.Equal(t, docsearch.EINVALID, docsearch.ErrorCode(err))
	})
}

func TestIndex_Query(t *testing.T) {
	t.Parallel()

	t.Run("sends query request and preserves remote order", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/query-data/docs-ns", r.URL.Path)
			assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

			var req map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "how do I install", req["data"])
			assert.Equal(t, float64(15), req["topK"])
			assert.Equal(t, true, req["includeMetadata"])
			assert.Equal(t, true, req["includeData"])
			assert.Equal(t, false, req["includeVectors"])

			_, _ = w.Write([]byte(`{"result":[
				{"id":"docs/install#setup","score":0.92,"data":"Setup\n\nRun it.","metadata":{"title":"Setup","path":"docs/install","level":2,"type":"section","content":"Run it.","documentTitle":"Install"}},
				{"id":"docs/faq#install","score":0.81,"data":"Install\n\nSee FAQ.","metadata":{"title":"Install","path":"docs/faq","level":3,"type":"section","content":"See FAQ.","documentTitle":"FAQ"}}
			]}`))
		}))
		defer server.Close()

		index, err := upstash.NewIndex(upstash.Config{URL: server.URL, Token: "secret"})
		require.NoError(t, err)

		results, err := index.Query(context.Background(), "docs-ns", "how do I install", 0)
		require.NoError(t, err)

		require.Len(t, results, 2)
		assert.Equal(t, "docs/install#setup", results[0].ID)
		assert.InDelta(t, 0.92, results[0].Score, 0.001)
		assert.Equal(t, "Setup", results[0].Metadata.Title)
		assert.Equal(t, "docs/faq#install", results[1].ID)
	})

	t.Run("whitespace query short-circuits without a remote call", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int64
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
		}))
		defer server.Close()

		index, err := upstash.NewIndex(upstash.Config{URL: server.URL, Token: "tok"})
		require.NoError(t, err)

		results, err := index.Query(context.Background(), "ns", "   \t\n", 10)
		require.NoError(t, err)

		assert.Empty(t, results)
		assert.Zero(t, calls.Load())
	})

	t.Run("maps remote errors to EUNAVAILABLE", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"Unauthorized","status":401}`))
		}))
		defer server.Close()

		index, err := upstash.NewIndex(upstash.Config{URL: server.URL, Token: "bad"})
		require.NoError(t, err)

		_, err = index.Query(context.Background(), "ns", "query", 5)

		require.Error(t, err)
		assert.Equal(t, docsearch.EUNAVAILABLE, docsearch.ErrorCode(err))
		assert.Contains(t, docsearch.ErrorMessage(err), "Unauthorized")
	})

	t.Run("requires namespace", func(t *testing.T) {
		t.Parallel()

		index, err := upstash.NewIndex(upstash.Config{URL: "https://example.upstash.io", Token: "tok"})
		require.NoError(t, err)

		_, err = index.Query(context.Background(), "", "query", 5)

		require.Error(t, err)
		assert.Equal(t, docsearch.EINVALID, docsearch.ErrorCode(err))
	})
}

func TestIndex_Upsert(t *testing.T) {
	t.Parallel()

	t.Run("posts record to the namespace", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/upsert-data/docs-ns", r.URL.Path)

			var req map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "docs/intro#setup", req["id"])
			assert.Equal(t, "Setup\n\nRun it.", req["data"])

			meta, ok := req["metadata"].(map[string]any)
			require.True(t, ok)
			assert.Equal(t, "section", meta["type"])

			_, _ = w.Write([]byte(`{"result":"Success"}`))
		}))
		defer server.Close()

		index, err := upstash.NewIndex(upstash.Config{URL: server.URL, Token: "tok"})
		require.NoError(t, err)

		rec := docsearch.IndexRecord{
			ID:   "docs/intro#setup",
			Data: "Setup\n\nRun it.",
			Metadata: docsearch.RecordMetadata{
				Title: "Setup", Path: "docs/intro", Level: 2,
				Type: "section", Content: "Run it.", DocumentTitle: "Intro",
			},
		}

		require.NoError(t, index.Upsert(context.Background(), "docs-ns", rec))
	})

	t.Run("requires record ID", func(t *testing.T) {
		t.Parallel()

		index, err := upstash.NewIndex(upstash.Config{URL: "https://example.upstash.io", Token: "tok"})
		require.NoError(t, err)

		err = index.Upsert(context.Background(), "ns", docsearch.IndexRecord{})

		require.Error(t, err)
		assert.Equal(t, docsearch.EINVALID, docsearch.ErrorCode(err))
	})
}

func TestIndex_Reset(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/reset/docs-ns", r.URL.Path)
		_, _ = w.Write([]byte(`{"result":"Success"}`))
	}))
	defer server.Close()

	index, err := upstash.NewIndex(upstash.Config{URL: server.URL, Token: "tok"})
	require.NoError(t, err)

	require.NoError(t, index.Reset(context.Background(), "docs-ns"))
}
