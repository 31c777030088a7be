package main

import (
	"fmt"

	"github.com/upstash/docsearch"
)

// Run executes the ask command.
func (c *AskCmd) Run(deps *Dependencies) error {
	results, err := deps.Index.Query(deps.Ctx, namespaceOrDefault(c.Namespace), c.Question, c.TopK)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docsearch.ErrorMessage(err))
		return err
	}

	items := docsearch.ContextFromResults(results)

	if c.NoStream {
		answer, err := deps.Synthesizer.Synthesize(deps.Ctx, c.Question, items)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", docsearch.ErrorMessage(err))
			return err
		}
		fmt.Fprintln(deps.Stdout, answer)
		return nil
	}

	wrote := false
	for chunk, err := range deps.Synthesizer.SynthesizeStream(deps.Ctx, c.Question, items) {
		if err != nil {
			if wrote {
				fmt.Fprintln(deps.Stdout)
			}
			fmt.Fprintf(deps.Stderr, "error: %s\n", docsearch.ErrorMessage(err))
			return err
		}
		fmt.Fprint(deps.Stdout, chunk)
		wrote = true
	}
	if wrote {
		fmt.Fprintln(deps.Stdout)
	} else {
		fmt.Fprintln(deps.Stdout, docsearch.FallbackAnswer)
	}
	return nil
}
