package main

import (
	"fmt"

	docsearchhttp "github.com/upstash/docsearch/http"
)

// Run executes the serve command.
func (c *ServeCmd) Run(deps *Dependencies) error {
	server := &docsearchhttp.Server{
		Addr:        c.Addr,
		Index:       deps.Index,
		Synthesizer: deps.Synthesizer,
		Namespace:   c.Namespace,
		TopK:        c.TopK,
		Logger:      deps.Logger,
	}

	fmt.Fprintf(deps.Stdout, "Listening on %s\n", c.Addr)
	return server.ListenAndServe(deps.Ctx)
}
