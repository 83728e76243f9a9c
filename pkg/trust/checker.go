package trust

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/fleetlink/interop-gateway/pkg/protocol"
)

const logPrefix = "trust:checker"

// Checker evaluates source trust and payload compliance. Evaluation is a
// pure function of current list membership, protocol, and payload; it never
// mutates registry state, so repeated evaluation of the same input is
// deterministic.
type Checker struct {
	lists  *ListRegistry
	policy Policy
}

// NewCheckerParams holds parameters for NewChecker.
type NewCheckerParams struct {
	// Lists is the registry instance to consult; nil creates a fresh one.
	Lists *ListRegistry
	// Policy holds scoring knobs; zero fields use defaults.
	Policy Policy
}

// NewChecker creates a Checker.
func NewChecker(params NewCheckerParams) *Checker {
	lists := params.Lists
	if lists == nil {
		lists = NewListRegistry()
	}
	return &Checker{
		lists:  lists,
		policy: params.Policy.withDefaults(),
	}
}

// Lists returns the checker's list registry.
func (c *Checker) Lists() *ListRegistry { return c.lists }

// AddToWhitelist inserts source into the whitelist.
func (c *Checker) AddToWhitelist(source string) { c.lists.AddToWhitelist(source) }

// AddToBlacklist inserts source into the blacklist.
func (c *Checker) AddToBlacklist(source string) { c.lists.AddToBlacklist(source) }

// Whitelist returns the current whitelist membership.
func (c *Checker) Whitelist() []string { return c.lists.Whitelist() }

// Blacklist returns the current blacklist membership.
func (c *Checker) Blacklist() []string { return c.lists.Blacklist() }

// EvaluateTrust scores one (source, protocol, payload) tuple.
//
// A blacklisted source short-circuits to score 0 / blocked before any other
// check runs, even when the source is also whitelisted. Otherwise the score
// starts from the whitelist or neutral baseline and is monotonically reduced
// by each failed schema/range check, then clamped to [0, 100]. An unknown
// protocol tag is a caller contract error and is returned as a Go error.
func (c *Checker) EvaluateTrust(source string, tag protocol.Tag, payload json.RawMessage) (*TrustEvaluation, error) {
	if !tag.Known() {
		return nil, &protocol.ErrUnknownProtocol{Tag: tag}
	}

	eval := &TrustEvaluation{
		SourceSystem: source,
		Protocol:     string(tag),
	}

	whitelisted, blacklisted := c.lists.membership(source)
	if blacklisted {
		eval.TrustScore = 0
		eval.ComplianceStatus = StatusBlocked
		eval.FailedChecks = []string{CheckBlacklist}
		eval.Alerts = []Alert{{Level: AlertCritical, Message: fmt.Sprintf("blacklisted source %s", source)}}
		eval.Recommendations = []string{"remove the source from the blacklist before accepting its traffic"}
		slog.Warn(fmt.Sprintf("%s - blocked blacklisted source %s", logPrefix, source))
		return eval, nil
	}

	score := c.policy.BaselineScore
	if whitelisted {
		score = c.policy.WhitelistScore
	}

	// Schema conformance reuses the protocol adapter's parse/validate rules.
	hardBlock := false
	pr, err := protocol.Parse(&protocol.Message{
		Protocol:  tag,
		Direction: protocol.DirectionInbound,
		Payload:   payload,
	})
	if err != nil {
		return nil, err
	}

	switch {
	case !pr.IsValid:
		// Missing required protocol fields block outright.
		eval.FailedChecks = append(eval.FailedChecks, CheckSchemaValidation)
		score -= c.policy.CheckPenalty
		hardBlock = true
	default:
		vr := protocol.Validate(pr)
		switch vr.Status {
		case protocol.StatusInvalid:
			eval.FailedChecks = append(eval.FailedChecks, CheckRangeValidation)
			score -= c.policy.CheckPenalty
		case protocol.StatusSuspect:
			eval.FailedChecks = append(eval.FailedChecks, CheckSuspectContent)
			score -= c.policy.CheckPenalty
		}
	}

	eval.TrustScore = clampScore(score)
	eval.ComplianceStatus = c.deriveStatus(eval.TrustScore, hardBlock)
	c.annotate(eval, whitelisted, hardBlock)

	slog.Debug(fmt.Sprintf("%s - source=%s protocol=%s score=%d status=%s failed=%v",
		logPrefix, source, tag, eval.TrustScore, eval.ComplianceStatus, eval.FailedChecks))
	return eval, nil
}

func (c *Checker) deriveStatus(score int, hardBlock bool) ComplianceStatus {
	switch {
	case hardBlock || score <= c.policy.BlockedFloor:
		return StatusBlocked
	case score >= c.policy.CompliantThreshold:
		return StatusCompliant
	default:
		return StatusSuspect
	}
}

func (c *Checker) annotate(eval *TrustEvaluation, whitelisted, hardBlock bool) {
	switch eval.ComplianceStatus {
	case StatusBlocked:
		reason := "trust score at or below the blocked floor"
		if hardBlock {
			reason = "payload is missing required protocol fields"
		}
		eval.Alerts = append(eval.Alerts, Alert{Level: AlertCritical, Message: reason})
		eval.Recommendations = append(eval.Recommendations,
			fmt.Sprintf("quarantine traffic from %s until its payloads conform to the %s schema", eval.SourceSystem, eval.Protocol))
	case StatusSuspect:
		eval.Alerts = append(eval.Alerts, Alert{Level: AlertWarning,
			Message: fmt.Sprintf("trust score %d below compliant threshold", eval.TrustScore)})
		eval.Recommendations = append(eval.Recommendations,
			fmt.Sprintf("add explicit schema validation for source %s", eval.SourceSystem))
	case StatusCompliant:
		if len(eval.FailedChecks) > 0 {
			eval.Alerts = append(eval.Alerts, Alert{Level: AlertInfo,
				Message: fmt.Sprintf("passed with reduced score %d", eval.TrustScore)})
		}
	}

	if !whitelisted && eval.ComplianceStatus == StatusCompliant {
		eval.Recommendations = append(eval.Recommendations,
			fmt.Sprintf("consider whitelisting %s after a sustained compliant period", eval.SourceSystem))
	}
}
