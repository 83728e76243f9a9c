package protocol

import "fmt"

// Validate applies domain range checks that parsing does not cover. A message
// that parsed cleanly but fails a range check is marked invalid; soft
// irregularities (unknown AIS message types, unrecognized STANAG priorities)
// mark it suspect instead.
func Validate(pr *ParseResult) *ValidationResult {
	vr := &ValidationResult{ParseResult: *pr}

	if !pr.IsValid {
		vr.Status = StatusInvalid
		return vr
	}

	suspect := false
	switch p := pr.Payload.(type) {
	case *AISPayload:
		if p.Latitude < -90 || p.Latitude > 90 {
			vr.Errors = append(vr.Errors, fmt.Sprintf("ais: latitude %v out of range [-90, 90]", p.Latitude))
		}
		if p.Longitude < -180 || p.Longitude > 180 {
			vr.Errors = append(vr.Errors, fmt.Sprintf("ais: longitude %v out of range [-180, 180]", p.Longitude))
		}
		if p.MessageType < 1 || p.MessageType > 27 {
			suspect = true
		}
	case *STANAGPayload:
		if !stanagPriorities[p.Priority] {
			suspect = true
		}
	}

	switch {
	case len(vr.Errors) > 0:
		vr.IsValid = false
		vr.Status = StatusInvalid
	case suspect:
		vr.Status = StatusSuspect
	default:
		vr.Status = StatusValid
	}
	return vr
}

// stanagPriorities holds the recognized STANAG precedence levels.
var stanagPriorities = map[string]bool{
	"routine":   true,
	"priority":  true,
	"immediate": true,
	"flash":     true,
}
