package protocol

import (
	"sort"
	"strings"
)

// DeadLetterHandler is the fallback target for unmapped protocol/method
// combinations. Unroutable messages land here instead of failing.
const DeadLetterHandler = "dead-letter"

// RouteTable maps protocols (and, for json-rpc, method prefixes) to internal
// handler names.
type RouteTable struct {
	// Protocols maps a protocol tag to its handler.
	Protocols map[Tag]string
	// MethodPrefixes maps json-rpc method prefixes to handlers; the longest
	// matching prefix wins.
	MethodPrefixes map[string]string
}

// DefaultRouteTable returns the static routing used by the fleet gateway.
func DefaultRouteTable() *RouteTable {
	return &RouteTable{
		Protocols: map[Tag]string{
			TagGraphQL: "graphql-query",
			TagAIS:     "vessel-tracking",
			TagSTANAG:  "military-messaging",
		},
		MethodPrefixes: map[string]string{
			"vessel.": "vessel-ops",
			"crew.":   "crew-ops",
			"task.":   "swarm-dispatch",
			"test.":   "diagnostics",
		},
	}
}

// Resolve returns the handler name for a validated payload. json-rpc routes
// by method prefix; everything else routes by protocol tag. Unmapped
// combinations resolve to DeadLetterHandler.
func (rt *RouteTable) Resolve(payload Payload) string {
	if p, ok := payload.(*JSONRPCPayload); ok {
		return rt.resolveMethod(p.Method)
	}
	if target, ok := rt.Protocols[payload.ProtocolTag()]; ok {
		return target
	}
	return DeadLetterHandler
}

func (rt *RouteTable) resolveMethod(method string) string {
	// Longest prefix wins so "task.audit." can shadow "task.".
	prefixes := make([]string, 0, len(rt.MethodPrefixes))
	for prefix := range rt.MethodPrefixes {
		prefixes = append(prefixes, prefix)
	}
	sort.Slice(prefixes, func(i, j int) bool { return len(prefixes[i]) > len(prefixes[j]) })

	for _, prefix := range prefixes {
		if strings.HasPrefix(method, prefix) {
			return rt.MethodPrefixes[prefix]
		}
	}
	if target, ok := rt.Protocols[TagJSONRPC]; ok {
		return target
	}
	return DeadLetterHandler
}
