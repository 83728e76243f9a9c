package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/fleetlink/interop-gateway/pkg/db"
	"github.com/fleetlink/interop-gateway/pkg/dispatcher"
	"github.com/fleetlink/interop-gateway/pkg/events"
	"github.com/fleetlink/interop-gateway/pkg/protocol"
	"github.com/fleetlink/interop-gateway/pkg/swarm"
	"github.com/fleetlink/interop-gateway/pkg/trust"
)

const pipelineLogPrefix = "server:pipeline"

// Audit outcomes.
const (
	outcomeProcessed  = "processed"
	outcomeRejected   = "rejected"
	outcomeBlocked    = "blocked"
	outcomeDeadLetter = "dead-letter"
)

// PipelineResult is the response document for a fully processed inbound
// message: the trust verdict plus, when the message was not blocked, the
// adapter outcome.
type PipelineResult struct {
	AuditID string                  `json:"auditId"`
	Outcome string                  `json:"outcome"`
	Trust   *trust.TrustEvaluation  `json:"trust"`
	Process *protocol.ProcessResult `json:"process,omitempty"`
}

// handleProcessMessage runs the full inbound pipeline: trust evaluation
// gates the message, the adapter parses/validates/routes it, and the outcome
// is audited to events and, when configured, the database.
func (s *Server) handleProcessMessage(ctx context.Context, req *dispatcher.GatewayRequest) *dispatcher.GatewayResponse {
	var msg protocol.Message
	if err := json.Unmarshal(req.Params, &msg); err != nil {
		return &dispatcher.GatewayResponse{
			ID: req.ID,
			Ok: false,
			Error: &dispatcher.ErrorDetail{
				Code:    "INVALID_ARGUMENT",
				Message: "Failed to parse processMessage params",
			},
		}
	}

	result, err := s.processPipeline(ctx, &msg)
	if err != nil {
		return &dispatcher.GatewayResponse{
			ID: req.ID,
			Ok: false,
			Error: &dispatcher.ErrorDetail{
				Code:    "UNSUPPORTED_PROTOCOL",
				Message: err.Error(),
			},
		}
	}
	return &dispatcher.GatewayResponse{ID: req.ID, Ok: true, Result: result}
}

// processPipeline evaluates trust, runs the adapter for non-blocked
// messages, and audits every outcome. Only an unknown protocol tag returns
// an error.
func (s *Server) processPipeline(ctx context.Context, msg *protocol.Message) (*PipelineResult, error) {
	start := time.Now()

	eval, err := s.checker.EvaluateTrust(msg.SourceSystem, msg.Protocol, msg.Payload)
	if err != nil {
		return nil, err
	}

	result := &PipelineResult{
		AuditID: uuid.NewString(),
		Trust:   eval,
	}

	if eval.ComplianceStatus == trust.StatusBlocked {
		result.Outcome = outcomeBlocked
		slog.Info(fmt.Sprintf("%s - blocked message from %s (%s), score=%d",
			pipelineLogPrefix, msg.SourceSystem, msg.Protocol, eval.TrustScore))
	} else {
		pr, err := s.adapter.ProcessMessage(ctx, msg)
		if err != nil {
			return nil, err
		}
		result.Process = pr
		switch {
		case !pr.Success:
			result.Outcome = outcomeRejected
		case pr.RoutedTo == protocol.DeadLetterHandler:
			result.Outcome = outcomeDeadLetter
		default:
			result.Outcome = outcomeProcessed
		}
	}

	s.audit(ctx, msg, result, elapsedMs(start))
	return result, nil
}

// audit publishes the audit event (plus one alert event per trust alert) and
// writes the rows when persistence is enabled. Audit failures are logged,
// never surfaced to the caller.
func (s *Server) audit(ctx context.Context, msg *protocol.Message, result *PipelineResult, latencyMs float64) {
	eval := result.Trust

	event := &events.MessageAuditEvent{
		AuditID:      result.AuditID,
		SourceSystem: msg.SourceSystem,
		Protocol:     string(msg.Protocol),
		Direction:    string(msg.Direction),
		Outcome:      result.Outcome,
		TrustScore:   eval.TrustScore,
		Compliance:   string(eval.ComplianceStatus),
		FailedChecks: eval.FailedChecks,
		LatencyMs:    latencyMs,
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
	}
	if result.Process != nil {
		event.RoutedTo = result.Process.RoutedTo
		event.Errors = result.Process.Errors
	}
	if err := s.publisher.PublishAudit(ctx, event); err != nil {
		slog.Error(fmt.Sprintf("%s - audit publish failed: %v", pipelineLogPrefix, err))
	}

	for _, alert := range eval.Alerts {
		alertEvent := &events.TrustAlertEvent{
			SourceSystem: msg.SourceSystem,
			Protocol:     string(msg.Protocol),
			Level:        string(alert.Level),
			Message:      alert.Message,
			TrustScore:   eval.TrustScore,
			Timestamp:    time.Now().UTC().Format(time.RFC3339),
		}
		if err := s.publisher.PublishAlert(ctx, alertEvent); err != nil {
			slog.Error(fmt.Sprintf("%s - alert publish failed: %v", pipelineLogPrefix, err))
		}
	}

	if s.repo == nil {
		return
	}

	score := eval.TrustScore
	compliance := string(eval.ComplianceStatus)
	params := db.InsertMessageAuditParams{
		Source:           msg.SourceSystem,
		Protocol:         string(msg.Protocol),
		Direction:        string(msg.Direction),
		Outcome:          result.Outcome,
		TrustScore:       &score,
		ComplianceStatus: &compliance,
		FailedChecks:     eval.FailedChecks,
		LatencyMs:        latencyMs,
		Payload:          msg.Payload,
	}
	if result.Process != nil && result.Process.RoutedTo != "" {
		routedTo := result.Process.RoutedTo
		params.RoutedTo = &routedTo
	}

	audit, err := s.repo.InsertMessageAudit(ctx, params)
	if err != nil {
		slog.Error(fmt.Sprintf("%s - audit insert failed: %v", pipelineLogPrefix, err))
		return
	}

	for _, alert := range eval.Alerts {
		checkID := firstFailedCheck(eval.FailedChecks)
		_, err := s.repo.InsertTrustAlert(ctx, db.InsertTrustAlertParams{
			AuditID: &audit.ID,
			Source:  msg.SourceSystem,
			Level:   string(alert.Level),
			CheckID: checkID,
			Message: alert.Message,
		})
		if err != nil {
			slog.Error(fmt.Sprintf("%s - alert insert failed: %v", pipelineLogPrefix, err))
		}
	}
}

func firstFailedCheck(checks []string) string {
	if len(checks) == 0 {
		return ""
	}
	return checks[0]
}

// taskDispatchParams is the json-rpc params shape accepted on task.* methods
// routed to the swarm.
type taskDispatchParams struct {
	Type                 string          `json:"type"`
	Payload              json.RawMessage `json:"payload,omitempty"`
	RequiredCapabilities []string        `json:"requiredCapabilities"`
	Priority             int             `json:"priority,omitempty"`
}

// handleSwarmDispatch hands a routed task.* json-rpc message off to the
// swarm bridge. A capability gap fails the handler so the message is marked
// rejected, not silently dropped.
func (s *Server) handleSwarmDispatch(ctx context.Context, msg *protocol.Message, vr *protocol.ValidationResult) error {
	rpc, ok := vr.Payload.(*protocol.JSONRPCPayload)
	if !ok {
		return fmt.Errorf("swarm dispatch expects a json-rpc payload, got %s", vr.Protocol)
	}

	var params taskDispatchParams
	if len(rpc.Params) > 0 {
		if err := json.Unmarshal(rpc.Params, &params); err != nil {
			return fmt.Errorf("invalid task params: %w", err)
		}
	}

	task := &swarm.Task{
		Type:                 params.Type,
		Payload:              params.Payload,
		RequiredCapabilities: params.RequiredCapabilities,
		Priority:             params.Priority,
	}
	if task.Type == "" {
		task.Type = rpc.Method
	}

	result := s.bridge.DistributeTask(ctx, task)
	if !result.Success {
		return fmt.Errorf("swarm dispatch failed: %s", result.Error)
	}
	slog.Debug(fmt.Sprintf("%s - task %s assigned to %s", pipelineLogPrefix, result.TaskID, result.AssignedTo))
	return nil
}

func elapsedMs(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}
