package main

import (
	"encoding/json"
	"fmt"

	"github.com/upstash/docsearch"
)

// Run executes the search command.
func (c *SearchCmd) Run(deps *Dependencies) error {
	results, err := deps.Index.Query(deps.Ctx, namespaceOrDefault(c.Namespace), c.Query, c.TopK)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docsearch.ErrorMessage(err))
		return err
	}

	if c.JSON {
		enc := json.NewEncoder(deps.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Fprintln(deps.Stdout, "No results.")
		return nil
	}

	for i, r := range results {
		title := r.Metadata.Title
		if title == "" {
			title = r.Metadata.DocumentTitle
		}
		fmt.Fprintf(deps.Stdout, "%2d. %s (%.3f)\n    %s\n", i+1, title, r.Score, r.SitePath())
	}
	return nil
}
