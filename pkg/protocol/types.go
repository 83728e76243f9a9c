// Package protocol implements the interoperability protocol adapter: it
// normalizes heterogeneous inbound/outbound wire payloads (JSON-RPC 2.0,
// GraphQL, AIS vessel beacons, NATO STANAG messaging) into a validated
// internal representation and routes them to named internal handlers.
package protocol

import "encoding/json"

// Tag identifies a supported wire protocol. The set is closed; any other
// value is a caller contract violation, not bad external input.
type Tag string

const (
	TagJSONRPC Tag = "json-rpc"
	TagGraphQL Tag = "graphql"
	TagAIS     Tag = "ais"
	TagSTANAG  Tag = "nato-stanag"
)

// Known reports whether t is a member of the closed protocol enumeration.
func (t Tag) Known() bool {
	switch t {
	case TagJSONRPC, TagGraphQL, TagAIS, TagSTANAG:
		return true
	}
	return false
}

// Direction indicates message flow relative to the gateway.
type Direction string

const (
	DirectionInbound  Direction = "inbound"
	DirectionOutbound Direction = "outbound"
)

// Message is the unit of interop traffic. It is constructed by the caller at
// ingress and immutable once created; the payload stays untyped until parse.
type Message struct {
	Protocol     Tag             `json:"protocol"`
	Direction    Direction       `json:"direction"`
	SourceSystem string          `json:"sourceSystem"`
	Payload      json.RawMessage `json:"payload"`
}

// Payload is the tagged union of normalized per-protocol payload views.
type Payload interface {
	ProtocolTag() Tag
}

// JSONRPCPayload is the normalized view of a JSON-RPC 2.0 request.
type JSONRPCPayload struct {
	Version string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
	// ID is kept raw: the spec allows string or number ids.
	ID json.RawMessage `json:"id"`
}

// ProtocolTag implements Payload.
func (p *JSONRPCPayload) ProtocolTag() Tag { return TagJSONRPC }

// GraphQLPayload is the normalized view of a GraphQL request.
type GraphQLPayload struct {
	Query         string                 `json:"query"`
	Variables     map[string]interface{} `json:"variables,omitempty"`
	OperationName string                 `json:"operationName,omitempty"`
}

// ProtocolTag implements Payload.
func (p *GraphQLPayload) ProtocolTag() Tag { return TagGraphQL }

// AISPayload is the normalized view of an AIS vessel-tracking beacon.
type AISPayload struct {
	MessageType int     `json:"messageType"`
	MMSI        string  `json:"mmsi"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

// ProtocolTag implements Payload.
func (p *AISPayload) ProtocolTag() Tag { return TagAIS }

// STANAGPayload is the normalized view of a NATO STANAG message.
type STANAGPayload struct {
	MessageID       string `json:"messageId"`
	Classification  string `json:"classification"`
	Priority        string `json:"priority"`
	OriginUnit      string `json:"originUnit"`
	DestinationUnit string `json:"destinationUnit"`
	MessageType     string `json:"messageType"`
	Content         string `json:"content"`
}

// ProtocolTag implements Payload.
func (p *STANAGPayload) ProtocolTag() Tag { return TagSTANAG }

// ParseResult is the output of Parse. IsValid is true exactly when Errors is
// empty; Payload holds the normalized view and is nil when parsing failed.
type ParseResult struct {
	Protocol Tag      `json:"protocol"`
	IsValid  bool     `json:"isValid"`
	Errors   []string `json:"errors,omitempty"`
	Payload  Payload  `json:"-"`
}

// Status classifies a validated message.
type Status string

const (
	StatusValid   Status = "valid"
	StatusInvalid Status = "invalid"
	StatusSuspect Status = "suspect"
)

// ValidationResult extends ParseResult with a validation status. Only
// StatusValid messages may reach routing.
type ValidationResult struct {
	ParseResult
	Status Status `json:"status"`
}

// ProcessResult is the outcome of ProcessMessage. LatencyMs records elapsed
// wall-clock time for the whole pipeline regardless of outcome.
type ProcessResult struct {
	Success   bool     `json:"success"`
	RoutedTo  string   `json:"routedTo,omitempty"`
	LatencyMs float64  `json:"latencyMs"`
	Errors    []string `json:"errors,omitempty"`
}
