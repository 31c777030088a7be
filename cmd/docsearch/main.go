package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/upstash/docsearch"
	"github.com/upstash/docsearch/gemini"
	docsearchslog "github.com/upstash/docsearch/slog"
	"github.com/upstash/docsearch/upstash"
	"google.golang.org/genai"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Services for end-to-end testing. When set, Run uses these instead
	// of constructing clients from the environment.
	Index       docsearch.VectorIndex
	Synthesizer docsearch.Synthesizer
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{}
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	// A missing .env file is fine; the environment may already be set.
	_ = godotenv.Load()

	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("docsearch"),
		kong.Description("Index and search Docusaurus documentation."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'docsearch --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	if fields := strings.Fields(kongCtx.Command()); len(fields) > 0 {
		cmd = fields[0]
	}

	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	deps.Logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	// Every command talks to the vector index.
	index := m.Index
	if index == nil {
		index, err = envIndex(stderr)
		if err != nil {
			return err
		}
	}
	deps.Index = docsearchslog.NewLoggingIndex(index, deps.Logger)

	// Only the answering commands need the model.
	if cmd == "ask" || cmd == "serve" || cmd == "tui" {
		synthesizer := m.Synthesizer
		if synthesizer == nil {
			synthesizer, err = envSynthesizer(ctx, stderr)
			if err != nil {
				return err
			}
		}
		deps.Synthesizer = docsearchslog.NewLoggingSynthesizer(synthesizer, deps.Logger)
	}

	return kongCtx.Run(deps)
}

func envIndex(stderr io.Writer) (docsearch.VectorIndex, error) {
	url := os.Getenv("UPSTASH_VECTOR_REST_URL")
	token := os.Getenv("UPSTASH_VECTOR_REST_TOKEN")
	if url == "" || token == "" {
		fmt.Fprintln(stderr, "Hint: set UPSTASH_VECTOR_REST_URL and UPSTASH_VECTOR_REST_TOKEN, or put them in a .env file")
		return nil, fmt.Errorf("Upstash Vector credentials not set")
	}

	index, err := upstash.NewIndex(upstash.Config{URL: url, Token: token})
	if err != nil {
		return nil, fmt.Errorf("failed to configure vector index: %w", err)
	}
	return index, nil
}

func envSynthesizer(ctx context.Context, stderr io.Writer) (docsearch.Synthesizer, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		fmt.Fprintln(stderr, "GEMINI_API_KEY environment variable not set. Get an API key at https://aistudio.google.com/apikey")
		return nil, fmt.Errorf("GEMINI_API_KEY not set. Get a key at https://aistudio.google.com/apikey")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		fmt.Fprintln(stderr, "Hint: Check your GEMINI_API_KEY is valid")
		return nil, fmt.Errorf("failed to connect to Gemini API: %w", err)
	}

	return gemini.NewSynthesizer(client), nil
}
