// Package upstash implements docsearch.VectorIndex against the Upstash
// Vector REST API. Upstash embeds raw text server-side, so records are
// written and queried as text via the data endpoints.
package upstash

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/upstash/docsearch"
)

// DefaultTimeout is the default timeout for REST requests.
const DefaultTimeout = 30 * time.Second

// Ensure Index implements docsearch.VectorIndex at compile time.
var _ docsearch.VectorIndex = (*Index)(nil)

// Config holds the connection settings for an Upstash Vector index.
type Config struct {
	// URL is the index REST URL (required).
	URL string

	// Token is the index REST token (required).
	Token string

	// Timeout is the per-request timeout (default: 30s).
	Timeout time.Duration
}

// Index talks to one Upstash Vector index over REST.
type Index struct {
	client  *http.Client
	baseURL string
	token   string
}

// NewIndex creates a new Index from the given configuration.
func NewIndex(cfg Config) (*Index, error) {
	if cfg.URL == "" {
		return nil, docsearch.Errorf(docsearch.EINVALID, "upstash: index URL required")
	}
	if cfg.Token == "" {
		return nil, docsearch.Errorf(docsearch.EINVALID, "upstash: index token required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Index{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimSuffix(cfg.URL, "/"),
		token:   cfg.Token,
	}, nil
}

// upsertRequest is the /upsert-data request format.
type upsertRequest struct {
	ID       string                   `json:"id"`
	Data     string                   `json:"data"`
	Metadata docsearch.RecordMetadata `json:"metadata"`
}

// queryRequest is the /query-data request format.
type queryRequest struct {
	Data            string `json:"data"`
	TopK            int    `json:"topK"`
	IncludeMetadata bool   `json:"includeMetadata"`
	IncludeData     bool   `json:"includeData"`
	IncludeVectors  bool   `json:"includeVectors"`
}

// envelope is the REST response wrapper: exactly one of Result or Error is
// set.
type envelope struct {
	Result json.RawMessage `json:"result"`
	Error  string          `json:"error"`
	Status int             `json:"status"`
}

// Reset removes every record in the namespace.
func (i *Index) Reset(ctx context.Context, namespace string) error {
	if namespace == "" {
		return docsearch.Errorf(docsearch.EINVALID, "upstash: namespace required")
	}
	return i.do(ctx, "reset/"+url.PathEscape(namespace), nil, nil)
}

// Upsert inserts or overwrites one record in the namespace.
func (i *Index) Upsert(ctx context.Context, namespace string, rec docsearch.IndexRecord) error {
	if namespace == "" {
		return docsearch.Errorf(docsearch.EINVALID, "upstash: namespace required")
	}
	if rec.ID == "" {
		return docsearch.Errorf(docsearch.EINVALID, "upstash: record ID required")
	}

	req := upsertRequest{ID: rec.ID, Data: rec.Data, Metadata: rec.Metadata}
	return i.do(ctx, "upsert-data/"+url.PathEscape(namespace), req, nil)
}

// Query returns up to topK records ranked by descending similarity. The
// remote ordering is preserved; embedding vectors are never requested.
// Empty or whitespace-only query text short-circuits to an empty result
// list without a remote call.
func (i *Index) Query(ctx context.Context, namespace, query string, topK int) ([]docsearch.SearchResult, error) {
	if namespace == "" {
		return nil, docsearch.Errorf(docsearch.EINVALID, "upstash: namespace required")
	}
	if strings.TrimSpace(query) == "" {
		return []docsearch.SearchResult{}, nil
	}
	if topK <= 0 {
		topK = docsearch.DefaultTopK
	}

	req := queryRequest{
		Data:            query,
		TopK:            topK,
		IncludeMetadata: true,
		IncludeData:     true,
		IncludeVectors:  false,
	}

	var results []docsearch.SearchResult
	if err := i.do(ctx, "query-data/"+url.PathEscape(namespace), req, &results); err != nil {
		return nil, err
	}
	if results == nil {
		results = []docsearch.SearchResult{}
	}
	return results, nil
}

// do posts body to path and decodes the result envelope into out, if
// non-nil.
func (i *Index) do(ctx context.Context, path string, body, out any) error {
	var buf io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		buf = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, i.baseURL+"/"+path, buf)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+i.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := i.client.Do(req)
	if err != nil {
		return docsearch.Errorf(docsearch.EUNAVAILABLE, "upstash: request failed: %s", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return docsearch.Errorf(docsearch.EUNAVAILABLE, "upstash: reading response: %s", err)
	}

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return docsearch.Errorf(docsearch.EINTERNAL, "upstash: invalid response (HTTP %d)", resp.StatusCode)
	}

	if resp.StatusCode != http.StatusOK {
		msg := env.Error
		if msg == "" {
			msg = fmt.Sprintf("HTTP %d", resp.StatusCode)
		}
		return docsearch.Errorf(docsearch.EUNAVAILABLE, "upstash: %s", msg)
	}

	if out != nil {
		if err := json.Unmarshal(env.Result, out); err != nil {
			return docsearch.Errorf(docsearch.EINTERNAL, "upstash: decoding result: %s", err)
		}
	}
	return nil
}
