package main

import (
	"fmt"

	"github.com/upstash/docsearch"
	"github.com/upstash/docsearch/indexer"
	"golang.org/x/time/rate"
)

// Run executes the index command.
func (c *IndexCmd) Run(deps *Dependencies) error {
	idx := &indexer.Indexer{
		Index:       deps.Index,
		RootDir:     c.Dir,
		Logger:      deps.Logger,
		Concurrency: c.Concurrency,
	}
	if c.Rate > 0 {
		idx.Limiter = rate.NewLimiter(rate.Limit(c.Rate), 1)
	}

	progress := func(event indexer.ProgressEvent) {
		switch event.Type {
		case indexer.ProgressReset:
			fmt.Fprintln(deps.Stdout, "Cleared namespace")
		case indexer.ProgressIndexed:
			fmt.Fprintf(deps.Stdout, "  %s (%d sections)\n", event.Document, event.Sections)
		case indexer.ProgressFailed:
			fmt.Fprintf(deps.Stderr, "  skip %s: %s\n", event.Document, docsearch.ErrorMessage(event.Err))
		}
	}

	result, err := idx.IndexAll(deps.Ctx, c.Namespace, progress)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docsearch.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Indexed %d sections from %d documents", result.Sections, result.Documents)
	if result.Failed > 0 {
		fmt.Fprintf(deps.Stdout, " (%d failed)", result.Failed)
	}
	fmt.Fprintln(deps.Stdout)
	return nil
}
