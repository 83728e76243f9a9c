package commsutil

import (
	"fmt"
	"strings"
)

// Default COMMS subjects.
const (
	SubjectGateway    = "interop.gateway.v1"
	SubjectAuditEvent = "interop.audit"
	SubjectAlertEvent = "interop.alerts"
	SubjectDeadLetter = "interop.deadletter"
)

// BuildAuditSubject builds a granular audit event subject for one
// protocol/source pair.
func BuildAuditSubject(protocol, source string) string {
	return fmt.Sprintf("interop.audit.%s.%s", sanitizeToken(protocol), sanitizeToken(source))
}

// BuildAlertSubject builds a granular trust alert subject for a source.
func BuildAlertSubject(source string) string {
	return fmt.Sprintf("interop.alerts.%s", sanitizeToken(source))
}

// BuildAgentSubject builds the COMMS subject a swarm agent listens on.
func BuildAgentSubject(agentType, agentID string) string {
	return fmt.Sprintf("swarm.agent.%s.%s", sanitizeToken(agentType), sanitizeToken(agentID))
}

// sanitizeToken makes an identifier safe for use as a single subject token:
// dots would split tokens and spaces are illegal in subjects.
func sanitizeToken(s string) string {
	s = strings.ReplaceAll(s, ".", "_")
	return strings.ReplaceAll(s, " ", "_")
}
