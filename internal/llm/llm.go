// Package llm defines the text generation contract consumed by the query
// router. Concrete providers live in subpackages; the Bedrock chat client
// also satisfies Generator.
package llm

import "context"

// Generator produces answer text for an assembled prompt. A Generator either
// returns text or an error; the router treats generation errors as fatal to
// the request.
type Generator interface {
	Generate(ctx context.Context, prompt string, systemPrompt string) (string, error)
}
