package swarm

import (
	"fmt"
	"sort"
	"sync"

	"github.com/fleetlink/interop-gateway/pkg/capref"
)

// AgentRegistry holds registered agents keyed by id. Claim and Release make
// status transitions atomic so two concurrent DistributeTask calls can never
// both select the same agent.
type AgentRegistry struct {
	mu      sync.Mutex
	agents  map[string]*agentEntry
	nextSeq int
}

type agentEntry struct {
	agent Agent
	// seq is the registration order, used as the deterministic tie-break.
	seq int
	// load counts tasks ever assigned to this agent.
	load int
}

// NewAgentRegistry creates an empty registry.
func NewAgentRegistry() *AgentRegistry {
	return &AgentRegistry{agents: make(map[string]*agentEntry)}
}

// Register inserts an agent. A duplicate id is rejected with an error result,
// not a Go error: it is an expected caller condition. A zero status defaults
// to registered.
func (r *AgentRegistry) Register(agent Agent) RegisterResult {
	if agent.ID == "" {
		return RegisterResult{Error: "agent id is required"}
	}
	if agent.Status == "" {
		agent.Status = AgentRegistered
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.agents[agent.ID]; exists {
		return RegisterResult{Error: fmt.Sprintf("agent %s is already registered", agent.ID)}
	}
	r.agents[agent.ID] = &agentEntry{agent: agent, seq: r.nextSeq}
	r.nextSeq++
	return RegisterResult{Success: true}
}

// Deregister removes an agent by id. Removing an absent id still reports
// success: the desired end state is already satisfied.
func (r *AgentRegistry) Deregister(id string) DeregisterResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.agents, id)
	return DeregisterResult{Success: true}
}

// Get returns a copy of the agent with the given id.
func (r *AgentRegistry) Get(id string) (Agent, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.agents[id]
	if !ok {
		return Agent{}, false
	}
	return entry.agent, true
}

// List returns copies of all agents in registration order.
func (r *AgentRegistry) List() []Agent {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := make([]*agentEntry, 0, len(r.agents))
	for _, e := range r.agents {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })

	out := make([]Agent, len(entries))
	for i, e := range entries {
		out[i] = e.agent
	}
	return out
}

// SetStatus administratively overrides an agent's status (e.g. offline).
func (r *AgentRegistry) SetStatus(id string, status AgentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.agents[id]
	if !ok {
		return fmt.Errorf("agent %s is not registered", id)
	}
	entry.agent.Status = status
	return nil
}

// Claim atomically selects an available agent whose capabilities cover the
// required set and marks it busy. Among qualifying agents the lowest load
// wins, then registration order. The bool result is false when no agent
// qualifies.
func (r *AgentRegistry) Claim(required []string) (Agent, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var best *agentEntry
	for _, e := range r.agents {
		if e.agent.Status != AgentRegistered && e.agent.Status != AgentActive {
			continue
		}
		if !capref.MatchSet(e.agent.Capabilities, required) {
			continue
		}
		if best == nil || e.load < best.load || (e.load == best.load && e.seq < best.seq) {
			best = e
		}
	}
	if best == nil {
		return Agent{}, false
	}

	best.agent.Status = AgentBusy
	best.load++
	return best.agent, true
}

// Release returns a claimed agent to active. An agent taken offline or
// deregistered while busy stays as administratively set.
func (r *AgentRegistry) Release(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.agents[id]
	if !ok {
		return
	}
	if entry.agent.Status == AgentBusy {
		entry.agent.Status = AgentActive
	}
}
