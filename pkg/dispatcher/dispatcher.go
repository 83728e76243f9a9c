package dispatcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fleetlink/interop-gateway/pkg/protocol"
	"github.com/fleetlink/interop-gateway/pkg/swarm"
	"github.com/fleetlink/interop-gateway/pkg/trust"
)

const logPrefix = "dispatcher:dispatch"

// Dispatcher routes COMMS requests to the gateway's trust, protocol, and
// swarm operations.
type Dispatcher struct {
	trust   *trust.Checker
	adapter *protocol.Adapter
	bridge  *swarm.Bridge
}

// NewDispatcher creates a new Dispatcher.
func NewDispatcher(checker *trust.Checker, adapter *protocol.Adapter, bridge *swarm.Bridge) *Dispatcher {
	return &Dispatcher{trust: checker, adapter: adapter, bridge: bridge}
}

// Dispatch routes a request to the appropriate gateway operation and returns
// a response.
func (d *Dispatcher) Dispatch(ctx context.Context, req *GatewayRequest) *GatewayResponse {
	slog.Debug(fmt.Sprintf("%s - method=%s id=%s", logPrefix, req.Method, req.ID))

	switch req.Method {
	case "processMessage":
		return d.handleProcessMessage(ctx, req)
	case "parse":
		return d.handleParse(req)
	case "validate":
		return d.handleValidate(req)
	case "evaluateTrust":
		return d.handleEvaluateTrust(req)
	case "addToWhitelist":
		return d.handleListMutation(req, d.trust.AddToWhitelist)
	case "addToBlacklist":
		return d.handleListMutation(req, d.trust.AddToBlacklist)
	case "removeFromWhitelist":
		return d.handleListMutation(req, d.trust.Lists().RemoveFromWhitelist)
	case "removeFromBlacklist":
		return d.handleListMutation(req, d.trust.Lists().RemoveFromBlacklist)
	case "getWhitelist":
		return &GatewayResponse{ID: req.ID, Ok: true, Result: map[string][]string{"sources": d.trust.Whitelist()}}
	case "getBlacklist":
		return &GatewayResponse{ID: req.ID, Ok: true, Result: map[string][]string{"sources": d.trust.Blacklist()}}
	case "registerAgent":
		return d.handleRegisterAgent(req)
	case "deregisterAgent":
		return d.handleDeregisterAgent(req)
	case "listAgents":
		return &GatewayResponse{ID: req.ID, Ok: true, Result: map[string][]swarm.Agent{"agents": d.bridge.Registry().List()}}
	case "distributeTask":
		return d.handleDistributeTask(ctx, req)
	case "executeParallel":
		return d.handleExecuteParallel(ctx, req)
	case "consolidateResults":
		return d.handleConsolidateResults(req)
	case "health":
		return &GatewayResponse{ID: req.ID, Ok: true, Result: map[string]string{"status": "healthy"}}
	default:
		return &GatewayResponse{
			ID: req.ID,
			Ok: false,
			Error: &ErrorDetail{
				Code:      "METHOD_NOT_FOUND",
				Message:   fmt.Sprintf("Unknown method: %s", req.Method),
				Retryable: false,
			},
		}
	}
}

func (d *Dispatcher) handleProcessMessage(ctx context.Context, req *GatewayRequest) *GatewayResponse {
	var msg protocol.Message
	if err := json.Unmarshal(req.Params, &msg); err != nil {
		return errorResponse(req.ID, "INVALID_ARGUMENT", "Failed to parse processMessage params", false)
	}

	result, err := d.adapter.ProcessMessage(ctx, &msg)
	if err != nil {
		return protocolErrorToResponse(req.ID, err)
	}
	return &GatewayResponse{ID: req.ID, Ok: true, Result: result}
}

func (d *Dispatcher) handleParse(req *GatewayRequest) *GatewayResponse {
	var msg protocol.Message
	if err := json.Unmarshal(req.Params, &msg); err != nil {
		return errorResponse(req.ID, "INVALID_ARGUMENT", "Failed to parse message params", false)
	}

	result, err := d.adapter.Parse(&msg)
	if err != nil {
		return protocolErrorToResponse(req.ID, err)
	}
	return &GatewayResponse{ID: req.ID, Ok: true, Result: result}
}

func (d *Dispatcher) handleValidate(req *GatewayRequest) *GatewayResponse {
	var msg protocol.Message
	if err := json.Unmarshal(req.Params, &msg); err != nil {
		return errorResponse(req.ID, "INVALID_ARGUMENT", "Failed to parse message params", false)
	}

	pr, err := d.adapter.Parse(&msg)
	if err != nil {
		return protocolErrorToResponse(req.ID, err)
	}
	return &GatewayResponse{ID: req.ID, Ok: true, Result: d.adapter.Validate(pr)}
}

// EvaluateTrustParams holds parameters for the evaluateTrust method.
type EvaluateTrustParams struct {
	Source   string          `json:"source"`
	Protocol string          `json:"protocol"`
	Payload  json.RawMessage `json:"payload"`
}

func (d *Dispatcher) handleEvaluateTrust(req *GatewayRequest) *GatewayResponse {
	var params EvaluateTrustParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return errorResponse(req.ID, "INVALID_ARGUMENT", "Failed to parse evaluateTrust params", false)
	}

	eval, err := d.trust.EvaluateTrust(params.Source, protocol.Tag(params.Protocol), params.Payload)
	if err != nil {
		return protocolErrorToResponse(req.ID, err)
	}
	return &GatewayResponse{ID: req.ID, Ok: true, Result: eval}
}

// ListMutationParams holds parameters for whitelist/blacklist mutations.
type ListMutationParams struct {
	Source string `json:"source"`
}

func (d *Dispatcher) handleListMutation(req *GatewayRequest, mutate func(string)) *GatewayResponse {
	var params ListMutationParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return errorResponse(req.ID, "INVALID_ARGUMENT", "Failed to parse list params", false)
	}
	if params.Source == "" {
		return errorResponse(req.ID, "INVALID_ARGUMENT", "source is required", false)
	}
	mutate(params.Source)
	return &GatewayResponse{ID: req.ID, Ok: true, Result: map[string]bool{"applied": true}}
}

func (d *Dispatcher) handleRegisterAgent(req *GatewayRequest) *GatewayResponse {
	var agent swarm.Agent
	if err := json.Unmarshal(req.Params, &agent); err != nil {
		return errorResponse(req.ID, "INVALID_ARGUMENT", "Failed to parse agent params", false)
	}

	result := d.bridge.RegisterAgent(agent)
	if !result.Success {
		return errorResponse(req.ID, "ALREADY_REGISTERED", result.Error, false)
	}
	return &GatewayResponse{ID: req.ID, Ok: true, Result: result}
}

// DeregisterParams holds parameters for the deregisterAgent method.
type DeregisterParams struct {
	ID string `json:"id"`
}

func (d *Dispatcher) handleDeregisterAgent(req *GatewayRequest) *GatewayResponse {
	var params DeregisterParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return errorResponse(req.ID, "INVALID_ARGUMENT", "Failed to parse deregister params", false)
	}
	return &GatewayResponse{ID: req.ID, Ok: true, Result: d.bridge.DeregisterAgent(params.ID)}
}

func (d *Dispatcher) handleDistributeTask(ctx context.Context, req *GatewayRequest) *GatewayResponse {
	var task swarm.Task
	if err := json.Unmarshal(req.Params, &task); err != nil {
		return errorResponse(req.ID, "INVALID_ARGUMENT", "Failed to parse task params", false)
	}

	// A capability gap is an expected outcome; the envelope stays Ok with
	// the failure detail in the result.
	result := d.bridge.DistributeTask(ctx, &task)
	return &GatewayResponse{ID: req.ID, Ok: true, Result: result}
}

// TaskBatchParams holds parameters for executeParallel and
// consolidateResults.
type TaskBatchParams struct {
	Tasks []*swarm.Task `json:"tasks"`
}

func (d *Dispatcher) handleExecuteParallel(ctx context.Context, req *GatewayRequest) *GatewayResponse {
	var params TaskBatchParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return errorResponse(req.ID, "INVALID_ARGUMENT", "Failed to parse tasks params", false)
	}

	outcomes := d.bridge.ExecuteParallel(ctx, params.Tasks)
	return &GatewayResponse{ID: req.ID, Ok: true, Result: map[string][]swarm.TaskOutcome{"outcomes": outcomes}}
}

func (d *Dispatcher) handleConsolidateResults(req *GatewayRequest) *GatewayResponse {
	var params TaskBatchParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return errorResponse(req.ID, "INVALID_ARGUMENT", "Failed to parse tasks params", false)
	}
	return &GatewayResponse{ID: req.ID, Ok: true, Result: d.bridge.ConsolidateResults(params.Tasks)}
}

func errorResponse(id, code, message string, retryable bool) *GatewayResponse {
	return &GatewayResponse{
		ID: id,
		Ok: false,
		Error: &ErrorDetail{
			Code:      code,
			Message:   message,
			Retryable: retryable,
		},
	}
}

func protocolErrorToResponse(id string, err error) *GatewayResponse {
	var unknown *protocol.ErrUnknownProtocol
	if errors.As(err, &unknown) {
		return errorResponse(id, "UNSUPPORTED_PROTOCOL", err.Error(), false)
	}
	return errorResponse(id, "INTERNAL_ERROR", err.Error(), true)
}
