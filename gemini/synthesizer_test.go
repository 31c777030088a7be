package gemini_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upstash/docsearch"
	"github.com/upstash/docsearch/gemini"
	"google.golang.org/genai"
)

func TestSynthesizer_Synthesize_ReturnsErrorWhenQuestionEmpty(t *testing.T) {
	t.Parallel()

	s := gemini.NewSynthesizer(nil) // nil client ok for this test

	_, err := s.Synthesize(context.Background(), "   ", nil)

	require.Error(t, err)
	assert.Equal(t, docsearch.EINVALID, docsearch.ErrorCode(err))
	assert.Contains(t, docsearch.ErrorMessage(err), "question required")
}

func TestSynthesizer_SynthesizeStream_ReturnsErrorWhenQuestionEmpty(t *testing.T) {
	t.Parallel()

	s := gemini.NewSynthesizer(nil)

	var chunks []string
	var streamErr error
	for chunk, err := range s.SynthesizeStream(context.Background(), "", nil) {
		if err != nil {
			streamErr = err
			break
		}
		chunks = append(chunks, chunk)
	}

	require.Error(t, streamErr)
	assert.Equal(t, docsearch.EINVALID, docsearch.ErrorCode(streamErr))
	assert.Empty(t, chunks)
}

// newTestSynthesizer builds a Synthesizer backed by a stub HTTP server that
// answers every generateContent call with body.
func newTestSynthesizer(t *testing.T, body string) *gemini.Synthesizer {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  "test-key",
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: srv.URL,
		},
	})
	require.NoError(t, err)

	return gemini.NewSynthesizer(client)
}

func TestSynthesizer_Synthesize_EmptyOutputYieldsFallback(t *testing.T) {
	t.Parallel()

	s := newTestSynthesizer(t, `{"candidates": []}`)

	answer, err := s.Synthesize(context.Background(), "how do I install?", nil)

	require.NoError(t, err)
	assert.Equal(t, docsearch.FallbackAnswer, answer)
}

func TestSynthesizer_Synthesize_ReturnsModelText(t *testing.T) {
	t.Parallel()

	s := newTestSynthesizer(t,
		`{"candidates": [{"content": {"parts": [{"text": "Run the installer."}], "role": "model"}, "finishReason": "STOP"}]}`)

	answer, err := s.Synthesize(context.Background(), "how do I install?", nil)

	require.NoError(t, err)
	assert.Equal(t, "Run the installer.", answer)
}

func TestBuildConfig(t *testing.T) {
	t.Parallel()

	config := gemini.BuildConfig(500, 0.7)

	require.NotNil(t, config.SystemInstruction)
	require.Len(t, config.SystemInstruction.Parts, 1)
	assert.Contains(t, config.SystemInstruction.Parts[0].Text, "actionable instructions")
	assert.Contains(t, config.SystemInstruction.Parts[0].Text, "without referring to the documentation")

	require.NotNil(t, config.Temperature)
	assert.InDelta(t, 0.7, *config.Temperature, 0.001)
	assert.Equal(t, int32(500), config.MaxOutputTokens)
}

func TestBuildUserPrompt(t *testing.T) {
	t.Parallel()

	items := []docsearch.ContextItem{
		{Content: "Run the installer.", Metadata: docsearch.RecordMetadata{Title: "Installation"}},
		{Content: "Set the API key.", Metadata: docsearch.RecordMetadata{Title: "Configuration"}},
	}

	prompt := gemini.BuildUserPrompt("how do I install", items)

	assert.Contains(t, prompt, `Question: "how do I install"`)
	assert.Contains(t, prompt, "Installation:\nRun the installer.\n")
	assert.Contains(t, prompt, "Configuration:\nSet the API key.\n")

	// Ranked order must be preserved in the grounding block.
	assert.Less(t,
		strings.Index(prompt, "Installation:"),
		strings.Index(prompt, "Configuration:"),
	)
}

func TestGroundingBlock(t *testing.T) {
	t.Parallel()

	t.Run("joins items with blank lines", func(t *testing.T) {
		t.Parallel()

		items := []docsearch.ContextItem{
			{Content: "first body", Metadata: docsearch.RecordMetadata{Title: "First"}},
			{Content: "second body", Metadata: docsearch.RecordMetadata{Title: "Second"}},
		}

		block := gemini.GroundingBlock(items)

		assert.Equal(t, "First:\nfirst body\n\nSecond:\nsecond body\n", block)
	})

	t.Run("falls back to document title", func(t *testing.T) {
		t.Parallel()

		items := []docsearch.ContextItem{
			{Content: "body", Metadata: docsearch.RecordMetadata{DocumentTitle: "Guide"}},
		}

		assert.Equal(t, "Guide:\nbody\n", gemini.GroundingBlock(items))
	})

	t.Run("empty context yields empty block", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, gemini.GroundingBlock(nil))
	})
}
