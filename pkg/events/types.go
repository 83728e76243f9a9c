// Package events defines audit and alert event types and publisher
// interfaces for the interop gateway.
package events

// MessageAuditEvent is emitted after every processed gateway message so
// operators can trace why a message was accepted, dropped, or dead-lettered.
type MessageAuditEvent struct {
	AuditID      string   `json:"auditId"`
	SourceSystem string   `json:"sourceSystem"`
	Protocol     string   `json:"protocol"`
	Direction    string   `json:"direction"`
	Outcome      string   `json:"outcome"`
	RoutedTo     string   `json:"routedTo,omitempty"`
	TrustScore   int      `json:"trustScore"`
	Compliance   string   `json:"compliance"`
	FailedChecks []string `json:"failedChecks,omitempty"`
	Errors       []string `json:"errors,omitempty"`
	LatencyMs    float64  `json:"latencyMs"`
	Timestamp    string   `json:"timestamp"`
}

// TrustAlertEvent is emitted for each alert a trust evaluation raises.
type TrustAlertEvent struct {
	SourceSystem string `json:"sourceSystem"`
	Protocol     string `json:"protocol"`
	Level        string `json:"level"`
	Message      string `json:"message"`
	TrustScore   int    `json:"trustScore"`
	Timestamp    string `json:"timestamp"`
}
