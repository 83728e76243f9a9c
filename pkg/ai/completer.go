// Package ai defines the text-completion port consumed by llm-type swarm
// agents. Concrete model providers implement Completer outside this module;
// the gateway's correctness depends only on this contract.
package ai

import "context"

// Completer is the text-completion interface.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// CompleterFunc adapts a function to the Completer interface.
type CompleterFunc func(ctx context.Context, prompt string) (string, error)

// Complete calls f.
func (f CompleterFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// StaticCompleter returns a fixed response for every prompt (for tests and
// wiring defaults).
type StaticCompleter struct {
	Response string
}

// Complete returns the fixed response.
func (s *StaticCompleter) Complete(_ context.Context, _ string) (string, error) {
	return s.Response, nil
}
