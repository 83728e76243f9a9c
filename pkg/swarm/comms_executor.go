package swarm

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	comms "github.com/nats-io/nats.go"

	"github.com/fleetlink/interop-gateway/pkg/commsutil"
)

const commsExecutorLogPrefix = "swarm:comms_executor"

const defaultRequestTimeout = 25 * time.Second

// CommsExecutor dispatches tasks to remote agents over COMMS request/reply.
// Each agent listens on its own subject (see commsutil.BuildAgentSubject) and
// replies with the task result document.
type CommsExecutor struct {
	nc *comms.Conn
}

// NewCommsExecutor creates a CommsExecutor on an existing connection.
func NewCommsExecutor(nc *comms.Conn) *CommsExecutor {
	return &CommsExecutor{nc: nc}
}

// Execute sends the task to the agent's subject and waits for the reply,
// bounded by the context deadline (default 25s when none is set).
func (e *CommsExecutor) Execute(ctx context.Context, task *Task, agent *Agent) (json.RawMessage, error) {
	data, err := commsutil.EncodePayload(task)
	if err != nil {
		return nil, fmt.Errorf("%s - failed to encode task %s: %w", commsExecutorLogPrefix, task.ID, err)
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultRequestTimeout)
		defer cancel()
	}

	subject := commsutil.BuildAgentSubject(string(agent.Type), agent.ID)
	msg, err := e.nc.RequestWithContext(ctx, subject, data)
	if err != nil {
		return nil, fmt.Errorf("%s - agent %s did not answer on %s: %w", commsExecutorLogPrefix, agent.ID, subject, err)
	}
	return json.RawMessage(msg.Data), nil
}
