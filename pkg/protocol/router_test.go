package protocol

import "testing"

func TestRouteTable_ResolveByProtocol(t *testing.T) {
	rt := DefaultRouteTable()

	cases := []struct {
		payload Payload
		want    string
	}{
		{&AISPayload{MessageType: 1}, "vessel-tracking"},
		{&STANAGPayload{MessageID: "M1"}, "military-messaging"},
		{&GraphQLPayload{Query: "{ ok }"}, "graphql-query"},
	}
	for _, tc := range cases {
		if got := rt.Resolve(tc.payload); got != tc.want {
			t.Errorf("Resolve(%T) = %s, want %s", tc.payload, got, tc.want)
		}
	}
}

func TestRouteTable_ResolveByMethodPrefix(t *testing.T) {
	rt := DefaultRouteTable()

	cases := []struct {
		method string
		want   string
	}{
		{"vessel.position.update", "vessel-ops"},
		{"crew.payroll.run", "crew-ops"},
		{"task.dispatch", "swarm-dispatch"},
		{"test.method", "diagnostics"},
		{"unmapped.method", DeadLetterHandler},
	}
	for _, tc := range cases {
		got := rt.Resolve(&JSONRPCPayload{Version: "2.0", Method: tc.method})
		if got != tc.want {
			t.Errorf("Resolve(%s) = %s, want %s", tc.method, got, tc.want)
		}
	}
}

func TestRouteTable_LongestPrefixWins(t *testing.T) {
	rt := &RouteTable{
		MethodPrefixes: map[string]string{
			"task.":       "swarm-dispatch",
			"task.audit.": "audit-ops",
		},
	}
	if got := rt.Resolve(&JSONRPCPayload{Method: "task.audit.list"}); got != "audit-ops" {
		t.Errorf("expected audit-ops, got %s", got)
	}
	if got := rt.Resolve(&JSONRPCPayload{Method: "task.dispatch"}); got != "swarm-dispatch" {
		t.Errorf("expected swarm-dispatch, got %s", got)
	}
}

func TestRouteTable_UnmappedProtocolDeadLetters(t *testing.T) {
	rt := &RouteTable{}
	if got := rt.Resolve(&AISPayload{}); got != DeadLetterHandler {
		t.Errorf("expected dead-letter, got %s", got)
	}
}
