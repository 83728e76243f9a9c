// Package bootstrap provides bootstrap configuration loading for the gateway.
package bootstrap

// SeedAgent is an agent entry registered into the swarm bridge at startup.
type SeedAgent struct {
	ID           string   `json:"id"`
	Type         string   `json:"type"`
	Capabilities []string `json:"capabilities"`
	Status       string   `json:"status,omitempty"`
}

// RouteOverrides adjusts the default routing table. Keys in Protocols are
// protocol tags; keys in MethodPrefixes are json-rpc method prefixes.
type RouteOverrides struct {
	Protocols      map[string]string `json:"protocols,omitempty"`
	MethodPrefixes map[string]string `json:"methodPrefixes,omitempty"`
}

// BootstrapConfig is the root bootstrap configuration.
type BootstrapConfig struct {
	Name            string         `json:"name"`
	Version         string         `json:"version"`
	Description     string         `json:"description,omitempty"`
	TrustedSources  []string       `json:"trustedSources,omitempty"`
	BlockedSources  []string       `json:"blockedSources,omitempty"`
	RouteOverrides  RouteOverrides `json:"routeOverrides,omitempty"`
	SeedAgents      []SeedAgent    `json:"seedAgents,omitempty"`
}

// ResolvedBootstrap provides fast lookup of bootstrap trust membership.
type ResolvedBootstrap struct {
	name    string
	version string
	trusted map[string]bool
	blocked map[string]bool
	routes  RouteOverrides
	agents  []SeedAgent
}

// IsTrusted reports whether source is seeded into the whitelist.
func (rb *ResolvedBootstrap) IsTrusted(source string) bool {
	return rb.trusted[source]
}

// IsBlocked reports whether source is seeded into the blacklist.
func (rb *ResolvedBootstrap) IsBlocked(source string) bool {
	return rb.blocked[source]
}

// TrustedSources returns the seeded whitelist entries.
func (rb *ResolvedBootstrap) TrustedSources() []string {
	out := make([]string, 0, len(rb.trusted))
	for s := range rb.trusted {
		out = append(out, s)
	}
	return out
}

// BlockedSources returns the seeded blacklist entries.
func (rb *ResolvedBootstrap) BlockedSources() []string {
	out := make([]string, 0, len(rb.blocked))
	for s := range rb.blocked {
		out = append(out, s)
	}
	return out
}

// Routes returns the routing overrides.
func (rb *ResolvedBootstrap) Routes() RouteOverrides {
	return rb.routes
}

// SeedAgents returns the agents to register at startup.
func (rb *ResolvedBootstrap) SeedAgents() []SeedAgent {
	return rb.agents
}

// Name returns the bootstrap config name.
func (rb *ResolvedBootstrap) Name() string {
	return rb.name
}

// Version returns the bootstrap config version.
func (rb *ResolvedBootstrap) Version() string {
	return rb.version
}
