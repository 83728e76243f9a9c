// Package swarm implements the agent swarm bridge: a registry of
// capability-tagged workers and a task distributor that matches required
// capabilities against registered agents, dispatches singly or in parallel,
// and consolidates completed results.
package swarm

import (
	"encoding/json"
	"time"
)

// AgentType enumerates the kinds of workers the bridge knows how to drive.
type AgentType string

const (
	AgentLLM      AgentType = "llm"
	AgentAnalyzer AgentType = "analyzer"
	AgentExecutor AgentType = "executor"
)

// AgentStatus is the lifecycle state of a registered agent.
type AgentStatus string

const (
	AgentRegistered AgentStatus = "registered"
	AgentActive     AgentStatus = "active"
	AgentBusy       AgentStatus = "busy"
	AgentOffline    AgentStatus = "offline"
)

// Agent is a registered capability provider. Capabilities are capref strings
// ("data-analysis", "data-analysis@1.5.0").
type Agent struct {
	ID           string      `json:"id"`
	Type         AgentType   `json:"type"`
	Name         string      `json:"name"`
	Capabilities []string    `json:"capabilities"`
	Status       AgentStatus `json:"status"`
}

// TaskStatus is the lifecycle state of a task. Terminal states are final; a
// retry creates a new task with a new id.
type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskAssigned  TaskStatus = "assigned"
	TaskRunning   TaskStatus = "running"
	TaskCompleted TaskStatus = "completed"
	TaskFailed    TaskStatus = "failed"
)

// Task is a unit of delegated work.
type Task struct {
	ID                   string          `json:"id"`
	Type                 string          `json:"type"`
	Payload              json.RawMessage `json:"payload,omitempty"`
	RequiredCapabilities []string        `json:"requiredCapabilities,omitempty"`
	Priority             int             `json:"priority"`
	Status               TaskStatus      `json:"status"`
	AssignedTo           string          `json:"assignedTo,omitempty"`
	Result               json.RawMessage `json:"result,omitempty"`
	Error                string          `json:"error,omitempty"`
	StartTime            *time.Time      `json:"startTime,omitempty"`
	EndTime              *time.Time      `json:"endTime,omitempty"`
}

// Terminal reports whether the task has reached a final state.
func (t *Task) Terminal() bool {
	return t.Status == TaskCompleted || t.Status == TaskFailed
}

// DurationMs returns the task's execution time in milliseconds, or 0 when
// timing is incomplete.
func (t *Task) DurationMs() float64 {
	if t.StartTime == nil || t.EndTime == nil {
		return 0
	}
	return float64(t.EndTime.Sub(*t.StartTime).Microseconds()) / 1000.0
}

// RegisterResult is the outcome of RegisterAgent.
type RegisterResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// DeregisterResult is the outcome of DeregisterAgent.
type DeregisterResult struct {
	Success bool `json:"success"`
}

// DistributeResult is the outcome of DistributeTask.
type DistributeResult struct {
	Success    bool   `json:"success"`
	TaskID     string `json:"taskId"`
	AssignedTo string `json:"assignedTo,omitempty"`
	Error      string `json:"error,omitempty"`
}

// TaskOutcome is the per-task entry in ExecuteParallel and consolidation
// results. Outcomes correlate 1:1 with input tasks by position and id.
type TaskOutcome struct {
	TaskID     string          `json:"taskId"`
	AssignedTo string          `json:"assignedTo,omitempty"`
	Status     TaskStatus      `json:"status"`
	Result     json.RawMessage `json:"result,omitempty"`
	Error      string          `json:"error,omitempty"`
	DurationMs float64         `json:"durationMs"`
}

// ConsolidatedData is the merged summary over a batch of tasks.
type ConsolidatedData struct {
	// Outputs maps task id to its result payload.
	Outputs map[string]json.RawMessage `json:"outputs"`
	// TotalDurationMs sums execution time across all timed tasks.
	TotalDurationMs float64 `json:"totalDurationMs"`
	// AvgDurationMs averages execution time over timed tasks.
	AvgDurationMs float64 `json:"avgDurationMs"`
}

// ConsolidatedResult aggregates a batch of tasks. Successful + Failed always
// equals the number of input tasks; no task is dropped.
type ConsolidatedResult struct {
	Successful       int              `json:"successful"`
	Failed           int              `json:"failed"`
	Results          []TaskOutcome    `json:"results"`
	ConsolidatedData ConsolidatedData `json:"consolidatedData"`
}
