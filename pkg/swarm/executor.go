package swarm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fleetlink/interop-gateway/pkg/ai"
)

// Executor runs a claimed task on a specific agent. Execution latency is the
// caller's to bound: wrap ctx with a deadline if a timeout is wanted.
type Executor interface {
	Execute(ctx context.Context, task *Task, agent *Agent) (json.RawMessage, error)
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(ctx context.Context, task *Task, agent *Agent) (json.RawMessage, error)

// Execute calls f.
func (f ExecutorFunc) Execute(ctx context.Context, task *Task, agent *Agent) (json.RawMessage, error) {
	return f(ctx, task, agent)
}

// EchoExecutor returns the task payload unchanged. It is the default when no
// executor is wired for an agent type.
type EchoExecutor struct{}

// Execute returns the task payload.
func (e *EchoExecutor) Execute(_ context.Context, task *Task, _ *Agent) (json.RawMessage, error) {
	if task.Payload == nil {
		return json.RawMessage(`{}`), nil
	}
	return task.Payload, nil
}

// CompletionExecutor drives llm-type agents through the text-completion port.
type CompletionExecutor struct {
	Completer ai.Completer
}

// Execute builds a prompt from the task and returns the completion as a JSON
// document.
func (e *CompletionExecutor) Execute(ctx context.Context, task *Task, agent *Agent) (json.RawMessage, error) {
	if e.Completer == nil {
		return nil, fmt.Errorf("no completer configured for agent %s", agent.ID)
	}

	prompt := fmt.Sprintf("Task %s (%s): %s", task.ID, task.Type, string(task.Payload))
	text, err := e.Completer.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("completion failed: %w", err)
	}

	out, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return nil, err
	}
	return out, nil
}
