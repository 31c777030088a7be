// Package http exposes the retrieval and synthesis endpoints consumed by
// the documentation site's search widget.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/upstash/docsearch"
)

// DefaultAddr is the listen address used when none is configured.
const DefaultAddr = ":3000"

// Server serves the search API.
type Server struct {
	// Addr is the listen address (default: ":3000").
	Addr string

	// Index serves /api/query-index (required).
	Index docsearch.VectorIndex

	// Synthesizer serves /api/ask-ai (required).
	Synthesizer docsearch.Synthesizer

	// Namespace is the vector namespace queried (default:
	// docsearch.DefaultNamespace).
	Namespace string

	// TopK is the number of results per query (default:
	// docsearch.DefaultTopK).
	TopK int

	// Logger receives access logs and error causes. Optional.
	Logger *slog.Logger
}

// queryRequest is the /api/query-index request body.
type queryRequest struct {
	Query string `json:"query"`
}

// askRequest is the /api/ask-ai request body. Context items arrive in the
// caller's ranked order and are passed through unchanged.
type askRequest struct {
	Question string                  `json:"question"`
	Context  []docsearch.ContextItem `json:"context"`
}

// askResponse is the buffered /api/ask-ai response body.
type askResponse struct {
	Response string `json:"response"`
}

// errorResponse is the error body for every endpoint.
type errorResponse struct {
	Error string `json:"error"`
}

// Handler returns the root handler for the API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/query-index", s.handleQueryIndex)
	mux.HandleFunc("/api/ask-ai", s.handleAskAI)
	return s.withAccessLog(mux)
}

// ListenAndServe serves the API until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr := s.Addr
	if addr == "" {
		addr = DefaultAddr
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// handleQueryIndex serves POST {query} and responds with the ranked result
// list as a JSON array.
func (s *Server) handleQueryIndex(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "Method not allowed"})
		return
	}

	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request body"})
		return
	}

	results, err := s.Index.Query(r.Context(), s.namespace(), req.Query, s.topK())
	if err != nil {
		// The cause is logged, never shown to end users.
		s.logger().Error("search failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Failed to perform search"})
		return
	}

	writeJSON(w, http.StatusOK, results)
}

// handleAskAI serves POST {question, context}. Clients that accept
// text/event-stream receive the answer as incremental SSE chunks; everyone
// else gets the buffered {response} body.
func (s *Server) handleAskAI(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "Method not allowed"})
		return
	}

	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Question) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request body"})
		return
	}

	if acceptsEventStream(r) {
		s.streamAnswer(w, r, req)
		return
	}

	answer, err := s.Synthesizer.Synthesize(r.Context(), req.Question, req.Context)
	if err != nil {
		s.logger().Error("synthesis failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Failed to get AI response"})
		return
	}

	writeJSON(w, http.StatusOK, askResponse{Response: answer})
}

// streamAnswer writes the answer as server-sent events. Each chunk is a
// JSON-encoded string in a data field, so newlines inside chunks survive
// the framing; clients concatenate the decoded chunks in arrival order.
//
// A failure before any output produced a plain 500. A failure mid-stream
// cannot retract delivered text: it is reported as a distinct "error"
// event and the stream ends, leaving the partial answer with the caller.
func (s *Server) streamAnswer(w http.ResponseWriter, r *http.Request, req askRequest) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.logger().Error("streaming unsupported by connection")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Failed to get AI response"})
		return
	}

	started := false
	for chunk, err := range s.Synthesizer.SynthesizeStream(r.Context(), req.Question, req.Context) {
		if err != nil {
			s.logger().Error("synthesis stream failed", "started", started, "error", err)
			if !started {
				writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Failed to get AI response"})
				return
			}
			fmt.Fprint(w, "event: error\ndata: \"Failed to get AI response\"\n\n")
			flusher.Flush()
			return
		}

		if !started {
			w.Header().Set("Content-Type", "text/event-stream")
			w.Header().Set("Cache-Control", "no-cache")
			w.Header().Set("Connection", "keep-alive")
			w.WriteHeader(http.StatusOK)
			started = true
		}

		data, merr := json.Marshal(chunk)
		if merr != nil {
			s.logger().Error("encoding stream chunk", "error", merr)
			return
		}
		fmt.Fprintf(w, "data: %s\n\n", data)
		flusher.Flush()
	}

	if !started {
		// The model finished without producing any output.
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.WriteHeader(http.StatusOK)
	}
}

// withAccessLog tags each request with an ID and logs its outcome.
func (s *Server) withAccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		begin := time.Now()
		requestID := uuid.NewString()
		w.Header().Set("X-Request-Id", requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		s.logger().Info("request",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(begin),
		)
	})
}

// statusRecorder captures the response status for access logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Flush forwards to the underlying writer so SSE works through the
// recorder.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (s *Server) namespace() string {
	if s.Namespace == "" {
		return docsearch.DefaultNamespace
	}
	return s.Namespace
}

func (s *Server) topK() int {
	if s.TopK <= 0 {
		return docsearch.DefaultTopK
	}
	return s.TopK
}

func (s *Server) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.Logger
}

func acceptsEventStream(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/event-stream")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
