package swarm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fleetlink/interop-gateway/pkg/ai"
)

const logPrefix = "swarm:bridge"

// Bridge distributes decomposed tasks to capability-tagged agents and
// consolidates their results.
type Bridge struct {
	registry  *AgentRegistry
	executors map[AgentType]Executor
	fallback  Executor
}

// NewBridgeParams holds parameters for NewBridge.
type NewBridgeParams struct {
	// Registry is the agent registry; nil creates a fresh one.
	Registry *AgentRegistry
	// Executors maps agent types to executors. Types without an entry use
	// the echo executor.
	Executors map[AgentType]Executor
	// Completer, when set, wires a CompletionExecutor for llm agents unless
	// Executors already binds one.
	Completer ai.Completer
}

// NewBridge creates a Bridge.
func NewBridge(params NewBridgeParams) *Bridge {
	registry := params.Registry
	if registry == nil {
		registry = NewAgentRegistry()
	}

	executors := make(map[AgentType]Executor, len(params.Executors))
	for t, e := range params.Executors {
		executors[t] = e
	}
	if params.Completer != nil {
		if _, ok := executors[AgentLLM]; !ok {
			executors[AgentLLM] = &CompletionExecutor{Completer: params.Completer}
		}
	}

	return &Bridge{
		registry:  registry,
		executors: executors,
		fallback:  &EchoExecutor{},
	}
}

// Registry returns the bridge's agent registry.
func (b *Bridge) Registry() *AgentRegistry { return b.registry }

// RegisterAgent adds an agent to the registry.
func (b *Bridge) RegisterAgent(agent Agent) RegisterResult {
	res := b.registry.Register(agent)
	if res.Success {
		slog.Info(fmt.Sprintf("%s - registered agent %s type=%s capabilities=%v", logPrefix, agent.ID, agent.Type, agent.Capabilities))
	}
	return res
}

// DeregisterAgent removes an agent. Idempotent.
func (b *Bridge) DeregisterAgent(id string) DeregisterResult {
	return b.registry.Deregister(id)
}

// DistributeTask claims a capable agent, runs the task on it, and releases
// the agent. A missing capable agent is an expected, recoverable outcome
// returned as a failed result; any retry policy is the caller's, layered
// above the bridge.
func (b *Bridge) DistributeTask(ctx context.Context, task *Task) *DistributeResult {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	if task.Terminal() {
		return &DistributeResult{
			TaskID: task.ID,
			Error:  fmt.Sprintf("task %s is already %s; retries need a new task", task.ID, task.Status),
		}
	}
	task.Status = TaskPending

	agent, ok := b.registry.Claim(task.RequiredCapabilities)
	if !ok {
		now := time.Now().UTC()
		task.Status = TaskFailed
		task.Error = fmt.Sprintf("No capable agents available for required capabilities %v", task.RequiredCapabilities)
		task.EndTime = &now
		slog.Debug(fmt.Sprintf("%s - no agent for task %s (%v)", logPrefix, task.ID, task.RequiredCapabilities))
		return &DistributeResult{TaskID: task.ID, Error: task.Error}
	}
	defer b.registry.Release(agent.ID)

	task.Status = TaskAssigned
	task.AssignedTo = agent.ID

	start := time.Now().UTC()
	task.StartTime = &start
	task.Status = TaskRunning

	result, err := b.executorFor(agent.Type).Execute(ctx, task, &agent)
	end := time.Now().UTC()
	task.EndTime = &end

	if err != nil {
		task.Status = TaskFailed
		task.Error = err.Error()
		slog.Warn(fmt.Sprintf("%s - task %s failed on agent %s: %v", logPrefix, task.ID, agent.ID, err))
		return &DistributeResult{TaskID: task.ID, AssignedTo: agent.ID, Error: task.Error}
	}

	task.Status = TaskCompleted
	task.Result = result
	slog.Debug(fmt.Sprintf("%s - task %s completed on agent %s in %.2fms", logPrefix, task.ID, agent.ID, task.DurationMs()))
	return &DistributeResult{Success: true, TaskID: task.ID, AssignedTo: agent.ID}
}

// ExecuteParallel fans DistributeTask out across all tasks concurrently. The
// returned slice holds one outcome per input task at the same index, so
// callers correlate 1:1 even when individual tasks fail.
func (b *Bridge) ExecuteParallel(ctx context.Context, tasks []*Task) []TaskOutcome {
	outcomes := make([]TaskOutcome, len(tasks))

	var wg sync.WaitGroup
	for i, task := range tasks {
		wg.Add(1)
		go func(i int, task *Task) {
			defer wg.Done()
			b.DistributeTask(ctx, task)
			outcomes[i] = outcomeOf(task)
		}(i, task)
	}
	wg.Wait()
	return outcomes
}

// ConsolidateResults partitions a batch of tasks into successful and failed
// counts, preserves every per-task outcome, and merges outputs keyed by task
// id with aggregate timing statistics. No input task is dropped.
func (b *Bridge) ConsolidateResults(tasks []*Task) *ConsolidatedResult {
	res := &ConsolidatedResult{
		Results: make([]TaskOutcome, 0, len(tasks)),
		ConsolidatedData: ConsolidatedData{
			Outputs: make(map[string]json.RawMessage),
		},
	}

	timed := 0
	for _, task := range tasks {
		res.Results = append(res.Results, outcomeOf(task))

		if task.Status == TaskCompleted {
			res.Successful++
			if task.Result != nil {
				res.ConsolidatedData.Outputs[task.ID] = task.Result
			}
		} else {
			res.Failed++
		}

		if d := task.DurationMs(); d > 0 {
			res.ConsolidatedData.TotalDurationMs += d
			timed++
		}
	}
	if timed > 0 {
		res.ConsolidatedData.AvgDurationMs = res.ConsolidatedData.TotalDurationMs / float64(timed)
	}
	return res
}

func (b *Bridge) executorFor(t AgentType) Executor {
	if e, ok := b.executors[t]; ok {
		return e
	}
	return b.fallback
}

func outcomeOf(task *Task) TaskOutcome {
	return TaskOutcome{
		TaskID:     task.ID,
		AssignedTo: task.AssignedTo,
		Status:     task.Status,
		Result:     task.Result,
		Error:      task.Error,
		DurationMs: task.DurationMs(),
	}
}
