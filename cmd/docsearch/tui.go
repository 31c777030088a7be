package main

import (
	"github.com/upstash/docsearch/tui"
)

// Run executes the tui command.
func (c *TuiCmd) Run(deps *Dependencies) error {
	return tui.Run(deps.Ctx, deps.Index, deps.Synthesizer, c.Namespace, c.TopK)
}
