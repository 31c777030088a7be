package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/upstash/docsearch"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx         context.Context
	Stdout      io.Writer
	Stderr      io.Writer
	Logger      *slog.Logger
	Index       docsearch.VectorIndex
	Synthesizer docsearch.Synthesizer
}

// namespaceOrDefault resolves an optional namespace flag. Commands that
// talk to the index directly must resolve it themselves; the index adapter
// rejects an empty namespace.
func namespaceOrDefault(ns string) string {
	if ns == "" {
		return docsearch.DefaultNamespace
	}
	return ns
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Verbose bool `short:"v" help:"Enable debug logging"`

	Index  IndexCmd  `cmd:"" help:"Index a Docusaurus docs directory into the vector store"`
	Search SearchCmd `cmd:"" help:"Search the indexed documentation"`
	Ask    AskCmd    `cmd:"" help:"Ask a question grounded on the indexed documentation"`
	Serve  ServeCmd  `cmd:"" help:"Serve the search HTTP API"`
	Tui    TuiCmd    `cmd:"" help:"Open the interactive search terminal"`
}

// IndexCmd is the "index" subcommand.
type IndexCmd struct {
	Dir         string  `arg:"" help:"Docusaurus docs directory"`
	Namespace   string  `short:"n" env:"UPSTASH_VECTOR_INDEX_NAMESPACE" help:"Vector namespace (default: docusaurus-ai-search-upstash)"`
	Concurrency int     `short:"c" default:"10" help:"Concurrent file read limit"`
	Rate        float64 `short:"r" help:"Max upserts per second (0 = unlimited)"`
}

// SearchCmd is the "search" subcommand.
type SearchCmd struct {
	Query     string `arg:"" help:"Search query"`
	Namespace string `short:"n" env:"UPSTASH_VECTOR_INDEX_NAMESPACE" help:"Vector namespace"`
	TopK      int    `short:"k" help:"Number of results (default: 15)"`
	JSON      bool   `help:"Print results as JSON"`
}

// AskCmd is the "ask" subcommand.
type AskCmd struct {
	Question  string `arg:"" help:"Question to ask about the documentation"`
	Namespace string `short:"n" env:"UPSTASH_VECTOR_INDEX_NAMESPACE" help:"Vector namespace"`
	TopK      int    `short:"k" help:"Number of context sections (default: 15)"`
	NoStream  bool   `help:"Wait for the full answer instead of streaming"`
}

// ServeCmd is the "serve" subcommand.
type ServeCmd struct {
	Addr      string `default:":3000" help:"Listen address"`
	Namespace string `short:"n" env:"UPSTASH_VECTOR_INDEX_NAMESPACE" help:"Vector namespace"`
	TopK      int    `short:"k" help:"Number of results per query (default: 15)"`
}

// TuiCmd is the "tui" subcommand.
type TuiCmd struct {
	Namespace string `short:"n" env:"UPSTASH_VECTOR_INDEX_NAMESPACE" help:"Vector namespace"`
	TopK      int    `short:"k" help:"Number of results (default: 15)"`
}
