package protocol

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ErrUnknownProtocol is returned when a message carries a tag outside the
// closed protocol enumeration. Unlike structural payload errors this is a
// caller contract violation and propagates as an error.
type ErrUnknownProtocol struct {
	Tag Tag
}

func (e *ErrUnknownProtocol) Error() string {
	return fmt.Sprintf("unknown protocol tag %q", e.Tag)
}

// Parse normalizes a message payload into its protocol-specific view.
// Structural problems (missing fields, wrong versions, non-JSON payloads)
// are reported through ParseResult.Errors, never as a returned error.
func Parse(msg *Message) (*ParseResult, error) {
	if !msg.Protocol.Known() {
		return nil, &ErrUnknownProtocol{Tag: msg.Protocol}
	}

	res := &ParseResult{Protocol: msg.Protocol}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(msg.Payload, &fields); err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("payload is not a JSON object: %v", err))
		return res, nil
	}

	switch msg.Protocol {
	case TagJSONRPC:
		res.Payload, res.Errors = parseJSONRPC(fields)
	case TagGraphQL:
		res.Payload, res.Errors = parseGraphQL(fields)
	case TagAIS:
		res.Payload, res.Errors = parseAIS(fields)
	case TagSTANAG:
		res.Payload, res.Errors = parseSTANAG(fields)
	}

	res.IsValid = len(res.Errors) == 0
	if !res.IsValid {
		res.Payload = nil
	}
	return res, nil
}

func parseJSONRPC(fields map[string]json.RawMessage) (Payload, []string) {
	var errs []string
	p := &JSONRPCPayload{}

	raw, ok := fields["jsonrpc"]
	if !ok {
		errs = append(errs, "json-rpc: missing jsonrpc version field")
	} else if err := json.Unmarshal(raw, &p.Version); err != nil || p.Version != "2.0" {
		errs = append(errs, fmt.Sprintf("json-rpc: unsupported version %s (require \"2.0\")", string(raw)))
	}

	raw, ok = fields["method"]
	if !ok {
		errs = append(errs, "json-rpc: missing method")
	} else if err := json.Unmarshal(raw, &p.Method); err != nil || p.Method == "" {
		errs = append(errs, "json-rpc: method must be a non-empty string")
	}

	id, ok := fields["id"]
	if !ok || string(id) == "null" {
		errs = append(errs, "json-rpc: missing id")
	} else {
		p.ID = id
	}
	p.Params = fields["params"]

	if len(errs) > 0 {
		return nil, errs
	}
	return p, nil
}

func parseGraphQL(fields map[string]json.RawMessage) (Payload, []string) {
	var errs []string
	p := &GraphQLPayload{}

	raw, ok := fields["query"]
	if !ok {
		errs = append(errs, "graphql: missing query")
	} else if err := json.Unmarshal(raw, &p.Query); err != nil || strings.TrimSpace(p.Query) == "" {
		errs = append(errs, "graphql: query must be a non-empty string")
	}

	if raw, ok := fields["variables"]; ok {
		if err := json.Unmarshal(raw, &p.Variables); err != nil {
			errs = append(errs, "graphql: variables must be an object")
		}
	}
	if raw, ok := fields["operationName"]; ok {
		if err := json.Unmarshal(raw, &p.OperationName); err != nil {
			errs = append(errs, "graphql: operationName must be a string")
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return p, nil
}

func parseAIS(fields map[string]json.RawMessage) (Payload, []string) {
	var errs []string
	p := &AISPayload{}

	raw, ok := fields["messageType"]
	if !ok {
		errs = append(errs, "ais: missing messageType")
	} else if err := json.Unmarshal(raw, &p.MessageType); err != nil {
		errs = append(errs, "ais: messageType must be an integer")
	}

	raw, ok = fields["mmsi"]
	if !ok {
		errs = append(errs, "ais: missing mmsi")
	} else {
		// Real beacons emit MMSI as either a string or a bare number.
		if err := json.Unmarshal(raw, &p.MMSI); err != nil {
			var n json.Number
			if err := json.Unmarshal(raw, &n); err != nil {
				errs = append(errs, "ais: mmsi must be a string or number")
			} else {
				p.MMSI = n.String()
			}
		}
	}

	for _, coord := range []struct {
		key  string
		dest *float64
	}{
		{"latitude", &p.Latitude},
		{"longitude", &p.Longitude},
	} {
		raw, ok := fields[coord.key]
		if !ok {
			errs = append(errs, fmt.Sprintf("ais: missing %s", coord.key))
			continue
		}
		if err := json.Unmarshal(raw, coord.dest); err != nil {
			errs = append(errs, fmt.Sprintf("ais: %s must be numeric", coord.key))
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return p, nil
}

// stanagRequired lists the fields every STANAG message must carry, in report order.
var stanagRequired = []string{
	"messageId", "classification", "priority",
	"originUnit", "destinationUnit", "messageType", "content",
}

func parseSTANAG(fields map[string]json.RawMessage) (Payload, []string) {
	var errs []string
	p := &STANAGPayload{}

	dests := map[string]*string{
		"messageId":       &p.MessageID,
		"classification":  &p.Classification,
		"priority":        &p.Priority,
		"originUnit":      &p.OriginUnit,
		"destinationUnit": &p.DestinationUnit,
		"messageType":     &p.MessageType,
		"content":         &p.Content,
	}

	for _, key := range stanagRequired {
		raw, ok := fields[key]
		if !ok {
			errs = append(errs, fmt.Sprintf("nato-stanag: missing %s", key))
			continue
		}
		if err := json.Unmarshal(raw, dests[key]); err != nil || *dests[key] == "" {
			errs = append(errs, fmt.Sprintf("nato-stanag: %s must be a non-empty string", key))
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return p, nil
}
