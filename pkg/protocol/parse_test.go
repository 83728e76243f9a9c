package protocol

import (
	"encoding/json"
	"strings"
	"testing"
)

func mustMessage(t *testing.T, tag Tag, payload string) *Message {
	t.Helper()
	return &Message{
		Protocol:     tag,
		Direction:    DirectionInbound,
		SourceSystem: "test-source",
		Payload:      json.RawMessage(payload),
	}
}

func TestParse_JSONRPC_Valid(t *testing.T) {
	msg := mustMessage(t, TagJSONRPC, `{"jsonrpc":"2.0","method":"vessel.position","params":{"mmsi":"123"},"id":1}`)

	pr, err := Parse(msg)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if !pr.IsValid {
		t.Fatalf("expected valid, got errors: %v", pr.Errors)
	}
	p, ok := pr.Payload.(*JSONRPCPayload)
	if !ok {
		t.Fatalf("expected *JSONRPCPayload, got %T", pr.Payload)
	}
	if p.Method != "vessel.position" {
		t.Errorf("expected method vessel.position, got %s", p.Method)
	}
	if p.Version != "2.0" {
		t.Errorf("expected version 2.0, got %s", p.Version)
	}
}

func TestParse_JSONRPC_WrongVersion(t *testing.T) {
	msg := mustMessage(t, TagJSONRPC, `{"jsonrpc":"1.0","method":"vessel.position","id":1}`)

	pr, err := Parse(msg)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if pr.IsValid {
		t.Fatal("expected invalid for jsonrpc 1.0")
	}
	if len(pr.Errors) == 0 {
		t.Fatal("expected non-empty errors")
	}
	if pr.Payload != nil {
		t.Error("expected nil payload on parse failure")
	}
}

func TestParse_JSONRPC_MissingMethodAndID(t *testing.T) {
	msg := mustMessage(t, TagJSONRPC, `{"jsonrpc":"2.0"}`)

	pr, _ := Parse(msg)
	if pr.IsValid {
		t.Fatal("expected invalid")
	}
	if len(pr.Errors) != 2 {
		t.Errorf("expected 2 errors (method, id), got %v", pr.Errors)
	}
}

func TestParse_GraphQL(t *testing.T) {
	pr, err := Parse(mustMessage(t, TagGraphQL, `{"query":"query { fleet { vessels } }","variables":{"limit":10}}`))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if !pr.IsValid {
		t.Fatalf("expected valid, got %v", pr.Errors)
	}
	p := pr.Payload.(*GraphQLPayload)
	if p.Variables["limit"] != float64(10) {
		t.Errorf("expected limit variable 10, got %v", p.Variables["limit"])
	}

	pr, _ = Parse(mustMessage(t, TagGraphQL, `{"variables":{}}`))
	if pr.IsValid {
		t.Fatal("expected invalid for missing query")
	}

	pr, _ = Parse(mustMessage(t, TagGraphQL, `{"query":"   "}`))
	if pr.IsValid {
		t.Fatal("expected invalid for blank query")
	}
}

func TestParse_AIS_RequiredFields(t *testing.T) {
	pr, err := Parse(mustMessage(t, TagAIS, `{"messageType":1,"mmsi":"366123456","latitude":47.6,"longitude":-122.3}`))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if !pr.IsValid {
		t.Fatalf("expected valid, got %v", pr.Errors)
	}
	p := pr.Payload.(*AISPayload)
	if p.MMSI != "366123456" {
		t.Errorf("expected mmsi 366123456, got %s", p.MMSI)
	}

	pr, _ = Parse(mustMessage(t, TagAIS, `{"messageType":1,"mmsi":"366123456"}`))
	if pr.IsValid {
		t.Fatal("expected invalid for missing coordinates")
	}
}

func TestParse_AIS_NumericMMSI(t *testing.T) {
	pr, _ := Parse(mustMessage(t, TagAIS, `{"messageType":3,"mmsi":366123456,"latitude":0,"longitude":0}`))
	if !pr.IsValid {
		t.Fatalf("expected valid for numeric mmsi, got %v", pr.Errors)
	}
	if p := pr.Payload.(*AISPayload); p.MMSI != "366123456" {
		t.Errorf("expected normalized mmsi string, got %s", p.MMSI)
	}
}

func TestParse_AIS_OutOfRangeCoordinatesStillParses(t *testing.T) {
	// Structurally complete but out of range: parse succeeds, validation flags it.
	pr, _ := Parse(mustMessage(t, TagAIS, `{"messageType":1,"mmsi":"1","latitude":95.0,"longitude":10.0}`))
	if !pr.IsValid {
		t.Fatalf("expected parse to succeed, got %v", pr.Errors)
	}
}

func TestParse_STANAG(t *testing.T) {
	full := `{"messageId":"MSG-001","classification":"NATO-RESTRICTED","priority":"immediate",
		"originUnit":"HQ-NORTH","destinationUnit":"TF-72","messageType":"SITREP","content":"contact report"}`
	pr, err := Parse(mustMessage(t, TagSTANAG, full))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if !pr.IsValid {
		t.Fatalf("expected valid, got %v", pr.Errors)
	}

	pr, _ = Parse(mustMessage(t, TagSTANAG, `{"messageId":"MSG-001"}`))
	if pr.IsValid {
		t.Fatal("expected invalid for missing fields")
	}
	if len(pr.Errors) != 6 {
		t.Errorf("expected 6 missing-field errors, got %d: %v", len(pr.Errors), pr.Errors)
	}
}

func TestParse_UnknownProtocolIsContractError(t *testing.T) {
	_, err := Parse(mustMessage(t, Tag("carrier-pigeon"), `{}`))
	if err == nil {
		t.Fatal("expected error for unknown protocol tag")
	}
	if !strings.Contains(err.Error(), "carrier-pigeon") {
		t.Errorf("expected tag in error, got %v", err)
	}
}

func TestParse_NonObjectPayload(t *testing.T) {
	pr, err := Parse(mustMessage(t, TagJSONRPC, `"just a string"`))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if pr.IsValid {
		t.Fatal("expected invalid for non-object payload")
	}
}

func TestParseResult_IsValidMatchesErrors(t *testing.T) {
	cases := []struct {
		tag     Tag
		payload string
	}{
		{TagJSONRPC, `{"jsonrpc":"2.0","method":"m","id":1}`},
		{TagJSONRPC, `{"jsonrpc":"3.0","method":"m","id":1}`},
		{TagGraphQL, `{"query":"{ ok }"}`},
		{TagAIS, `{"mmsi":"1"}`},
		{TagSTANAG, `{}`},
	}
	for _, tc := range cases {
		pr, err := Parse(mustMessage(t, tc.tag, tc.payload))
		if err != nil {
			t.Fatalf("Parse(%s) returned error: %v", tc.tag, err)
		}
		if pr.IsValid != (len(pr.Errors) == 0) {
			t.Errorf("%s: IsValid=%v but errors=%v", tc.tag, pr.IsValid, pr.Errors)
		}
	}
}
