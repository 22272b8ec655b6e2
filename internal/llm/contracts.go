package llm

import "context"

// Request carries the prompt pair for one generation call.
type Request struct {
	System string
	User   string
}

// Generator is the external generation capability the pipeline depends on:
// text in, raw key-value text out. Single-shot, no internal retry; a failure
// surfaces immediately to the caller.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}
