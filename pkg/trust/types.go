// Package trust implements the trust and compliance checker that gates every
// inbound message by source reputation and schema conformance before it is
// acted on.
package trust

// ComplianceStatus classifies a source/payload pair after evaluation.
type ComplianceStatus string

const (
	StatusCompliant ComplianceStatus = "compliant"
	StatusSuspect   ComplianceStatus = "suspect"
	StatusBlocked   ComplianceStatus = "blocked"
)

// AlertLevel grades an alert.
type AlertLevel string

const (
	AlertInfo     AlertLevel = "info"
	AlertWarning  AlertLevel = "warning"
	AlertCritical AlertLevel = "critical"
)

// Alert is a single operator-facing finding from an evaluation.
type Alert struct {
	Level   AlertLevel `json:"level"`
	Message string     `json:"message"`
}

// Check identifiers recorded in TrustEvaluation.FailedChecks.
const (
	CheckBlacklist        = "blacklist"
	CheckSchemaValidation = "schema_validation"
	CheckRangeValidation  = "range_validation"
	CheckSuspectContent   = "suspect_content"
)

// TrustEvaluation is the result of evaluating one (source, protocol, payload)
// tuple. TrustScore is an integer in [0, 100]; a blacklisted source is always
// scored 0 and blocked before any other check runs.
type TrustEvaluation struct {
	SourceSystem     string           `json:"sourceSystem"`
	Protocol         string           `json:"protocol"`
	TrustScore       int              `json:"trustScore"`
	ComplianceStatus ComplianceStatus `json:"complianceStatus"`
	FailedChecks     []string         `json:"failedChecks,omitempty"`
	Alerts           []Alert          `json:"alerts,omitempty"`
	Recommendations  []string         `json:"recommendations,omitempty"`
}
