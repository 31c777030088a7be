// Package gemini implements docsearch.Synthesizer using Google Gemini.
package gemini

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"github.com/upstash/docsearch"
	"google.golang.org/genai"
)

// Default generation parameters. All of them are knobs, not constants of
// the system; override with options.
const (
	DefaultModel           = "gemini-2.5-flash"
	DefaultMaxOutputTokens = 500
	DefaultTemperature     = 0.7
)

// Ensure Synthesizer implements docsearch.Synthesizer at compile time.
var _ docsearch.Synthesizer = (*Synthesizer)(nil)

// Synthesizer answers questions grounded in retrieved documentation
// sections.
type Synthesizer struct {
	client          *genai.Client
	model           string
	maxOutputTokens int32
	temperature     float32
}

// Option configures a Synthesizer.
type Option func(*Synthesizer)

// WithModel sets the model name. Defaults to DefaultModel.
func WithModel(model string) Option {
	return func(s *Synthesizer) { s.model = model }
}

// WithMaxOutputTokens bounds the answer length. Defaults to
// DefaultMaxOutputTokens.
func WithMaxOutputTokens(n int32) Option {
	return func(s *Synthesizer) { s.maxOutputTokens = n }
}

// WithTemperature sets generation randomness. Defaults to
// DefaultTemperature.
func WithTemperature(t float32) Option {
	return func(s *Synthesizer) { s.temperature = t }
}

// NewSynthesizer creates a new Synthesizer.
func NewSynthesizer(client *genai.Client, opts ...Option) *Synthesizer {
	s := &Synthesizer{
		client:          client,
		model:           DefaultModel,
		maxOutputTokens: DefaultMaxOutputTokens,
		temperature:     DefaultTemperature,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Synthesize returns the complete answer as one string. Empty model output
// is substituted with docsearch.FallbackAnswer.
func (s *Synthesizer) Synthesize(ctx context.Context, question string, items []docsearch.ContextItem) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", docsearch.Errorf(docsearch.EINVALID, "question required")
	}

	result, err := s.client.Models.GenerateContent(ctx, s.model,
		[]*genai.Content{{
			Parts: []*genai.Part{{Text: BuildUserPrompt(question, items)}},
		}},
		BuildConfig(s.maxOutputTokens, s.temperature),
	)
	if err != nil {
		return "", err
	}
	if result == nil {
		return "", docsearch.Errorf(docsearch.EINTERNAL, "gemini returned nil result")
	}

	text := result.Text()
	if text == "" {
		return docsearch.FallbackAnswer, nil
	}
	return text, nil
}

// SynthesizeStream streams the answer as text increments in generation
// order. A failure before any output surfaces as the first iteration's
// error; a failure mid-stream surfaces as the final iteration's error and
// text already yielded stands.
func (s *Synthesizer) SynthesizeStream(ctx context.Context, question string, items []docsearch.ContextItem) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		if strings.TrimSpace(question) == "" {
			yield("", docsearch.Errorf(docsearch.EINVALID, "question required"))
			return
		}

		contents := []*genai.Content{{
			Parts: []*genai.Part{{Text: BuildUserPrompt(question, items)}},
		}}
		config := BuildConfig(s.maxOutputTokens, s.temperature)

		for resp, err := range s.client.Models.GenerateContentStream(ctx, s.model, contents, config) {
			if err != nil {
				yield("", err)
				return
			}
			text := resp.Text()
			if text == "" {
				continue
			}
			if !yield(text, nil) {
				return
			}
		}
	}
}

// BuildConfig returns the GenerateContentConfig for synthesis calls.
func BuildConfig(maxOutputTokens int32, temperature float32) *genai.GenerateContentConfig {
	temp := temperature
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{
				Text: "You are an AI assistant that provides clear, actionable instructions based on any documentation. Your responses should offer direct recommendations and practical steps without referring to the documentation explicitly. Focus on telling the user what to do or explain what the documentation says.",
			}},
		},
		Temperature:     &temp,
		MaxOutputTokens: maxOutputTokens,
	}
}

// BuildUserPrompt builds the user prompt containing the question and the
// grounding block. Context items are rendered in the caller's order,
// normally the retrieval ranking.
func BuildUserPrompt(question string, items []docsearch.ContextItem) string {
	var sb strings.Builder
	sb.WriteString("Using the provided documentation, answer the question. ")
	sb.WriteString("Ensure that your answer is clear, concise, and provides actionable directives. ")
	sb.WriteString(`Avoid referencing the documentation directly (e.g., do not say "the context shows that..."). `)
	sb.WriteString("Instead, state what should be done. ")
	fmt.Fprintf(&sb, "Question: %q\n\nDocumentation:\n%s", question, GroundingBlock(items))
	return sb.String()
}

// GroundingBlock concatenates context items as "{title}:\n{content}\n"
// entries joined with blank lines.
func GroundingBlock(items []docsearch.ContextItem) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		title := it.Metadata.Title
		if title == "" {
			title = it.Metadata.DocumentTitle
		}
		parts = append(parts, fmt.Sprintf("%s:\n%s\n", title, it.Content))
	}
	return strings.Join(parts, "\n")
}
