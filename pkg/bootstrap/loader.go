package bootstrap

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
)

const logPrefix = "bootstrap:loader"

// LoadBootstrapConfig loads bootstrap config from file paths or environment.
// It tries paths in order: first any paths passed in, then INTEROP_BOOTSTRAP_FILE env, then defaults.
// So an explicit path (e.g. from a CLI flag) is tried before the env var.
func LoadBootstrapConfig(paths ...string) (*BootstrapConfig, error) {
	// Build path list: passed paths first, then env, then defaults
	all := make([]string, 0, len(paths)+4)
	for _, p := range paths {
		if p != "" {
			all = append(all, p)
		}
	}
	if envPath := os.Getenv("INTEROP_BOOTSTRAP_FILE"); envPath != "" {
		all = append(all, envPath)
	}
	all = append(all, "config/bootstrap.json", "bootstrap.json")
	paths = all

	for _, p := range paths {
		if p == "" {
			continue
		}

		data, err := os.ReadFile(p)
		if err != nil {
			continue
		}

		var cfg BootstrapConfig
		if err := json.Unmarshal(data, &cfg); err != nil {
			slog.Warn(fmt.Sprintf("%s - Failed to parse bootstrap file %s: %v", logPrefix, p, err))
			continue
		}

		slog.Info(fmt.Sprintf("%s - Loaded bootstrap config from %s", logPrefix, p))
		return &cfg, nil
	}

	slog.Info(fmt.Sprintf("%s - Using default bootstrap config", logPrefix))
	return GetDefaultBootstrapConfig(), nil
}

// GetDefaultBootstrapConfig returns the embedded fallback bootstrap configuration.
func GetDefaultBootstrapConfig() *BootstrapConfig {
	return &BootstrapConfig{
		Name:        "interop-bootstrap",
		Version:     "1.0.0",
		Description: "Default gateway bootstrap configuration",
		TrustedSources: []string{
			"fleet-command",
			"harbor-control",
		},
		BlockedSources: []string{},
		SeedAgents: []SeedAgent{
			{
				ID:           "agent-diagnostics",
				Type:         "executor",
				Capabilities: []string{"diagnostics"},
			},
		},
	}
}

// CreateResolvedBootstrap builds a ResolvedBootstrap for fast lookups.
func CreateResolvedBootstrap(cfg *BootstrapConfig) *ResolvedBootstrap {
	trusted := make(map[string]bool, len(cfg.TrustedSources))
	for _, s := range cfg.TrustedSources {
		trusted[s] = true
	}

	blocked := make(map[string]bool, len(cfg.BlockedSources))
	for _, s := range cfg.BlockedSources {
		blocked[s] = true
	}

	agents := make([]SeedAgent, len(cfg.SeedAgents))
	copy(agents, cfg.SeedAgents)

	return &ResolvedBootstrap{
		name:    cfg.Name,
		version: cfg.Version,
		trusted: trusted,
		blocked: blocked,
		routes:  cfg.RouteOverrides,
		agents:  agents,
	}
}

// MergeBootstrapConfigs merges an override config into a base config.
func MergeBootstrapConfigs(base, override *BootstrapConfig) *BootstrapConfig {
	merged := *base

	merged.TrustedSources = mergeSources(merged.TrustedSources, override.TrustedSources)
	merged.BlockedSources = mergeSources(merged.BlockedSources, override.BlockedSources)

	// Route overrides win per key
	if merged.RouteOverrides.Protocols == nil {
		merged.RouteOverrides.Protocols = make(map[string]string)
	}
	for tag, target := range override.RouteOverrides.Protocols {
		merged.RouteOverrides.Protocols[tag] = target
	}
	if merged.RouteOverrides.MethodPrefixes == nil {
		merged.RouteOverrides.MethodPrefixes = make(map[string]string)
	}
	for prefix, target := range override.RouteOverrides.MethodPrefixes {
		merged.RouteOverrides.MethodPrefixes[prefix] = target
	}

	// Seed agents replace by id
	byID := make(map[string]int, len(merged.SeedAgents))
	for i, a := range merged.SeedAgents {
		byID[a.ID] = i
	}
	for _, a := range override.SeedAgents {
		if i, ok := byID[a.ID]; ok {
			merged.SeedAgents[i] = a
		} else {
			merged.SeedAgents = append(merged.SeedAgents, a)
		}
	}

	return &merged
}

func mergeSources(base, override []string) []string {
	seen := make(map[string]bool, len(base))
	out := make([]string, 0, len(base)+len(override))
	for _, s := range base {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	for _, s := range override {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
