package db

import "time"

// MessageAudit represents a row in the audit_messages table. One row is
// written per message the gateway processed, whatever the outcome.
type MessageAudit struct {
	ID               string    `json:"id"`
	Source           string    `json:"source"`
	Protocol         string    `json:"protocol"`
	Direction        string    `json:"direction"`
	Outcome          string    `json:"outcome"`
	RoutedTo         *string   `json:"routedTo,omitempty"`
	TrustScore       *int      `json:"trustScore,omitempty"`
	ComplianceStatus *string   `json:"complianceStatus,omitempty"`
	FailedChecks     []string  `json:"failedChecks"`
	LatencyMs        float64   `json:"latencyMs"`
	Payload          []byte    `json:"payload,omitempty"`
	Created          time.Time `json:"created"`
}

// TrustAlert represents a row in the trust_alerts table. Rows reference the
// audit row they were raised against.
type TrustAlert struct {
	ID      string    `json:"id"`
	AuditID *string   `json:"auditId,omitempty"`
	Source  string    `json:"source"`
	Level   string    `json:"level"`
	CheckID string    `json:"checkId"`
	Message string    `json:"message"`
	Created time.Time `json:"created"`
}

// OutcomeCount is a per-outcome row count from CountAuditsByOutcome.
type OutcomeCount struct {
	Outcome string `json:"outcome"`
	Count   int    `json:"count"`
}
