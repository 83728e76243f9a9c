package protocol

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

const logPrefix = "protocol:adapter"

// Handler consumes a validated message after routing. Handler errors mark the
// process outcome failed but do not abort the pipeline.
type Handler func(ctx context.Context, msg *Message, vr *ValidationResult) error

// Adapter is the protocol adapter service. Parse and Validate are pure
// functions of their input; the adapter itself only holds the route table and
// registered handlers, so concurrent ProcessMessage calls need no locking
// once handler registration is done.
type Adapter struct {
	routes   *RouteTable
	handlers map[string]Handler
}

// NewAdapter creates an Adapter. A nil table uses DefaultRouteTable.
func NewAdapter(routes *RouteTable) *Adapter {
	if routes == nil {
		routes = DefaultRouteTable()
	}
	return &Adapter{
		routes:   routes,
		handlers: make(map[string]Handler),
	}
}

// RegisterHandler binds a handler name from the route table to a Handler.
// Registration is not safe for use concurrently with ProcessMessage; wire
// handlers at startup.
func (a *Adapter) RegisterHandler(name string, h Handler) {
	a.handlers[name] = h
}

// Parse normalizes the message payload. Kept as a method so callers wired to
// the adapter see one surface; delegates to the package-level pure function.
func (a *Adapter) Parse(msg *Message) (*ParseResult, error) {
	return Parse(msg)
}

// Validate applies range checks to a parse result.
func (a *Adapter) Validate(pr *ParseResult) *ValidationResult {
	return Validate(pr)
}

// ProcessMessage runs parse → validate → route, short-circuiting at the
// first failing stage. Elapsed wall-clock time is recorded on every outcome.
// Only an unknown protocol tag returns a Go error.
func (a *Adapter) ProcessMessage(ctx context.Context, msg *Message) (*ProcessResult, error) {
	start := time.Now()
	res := &ProcessResult{}

	pr, err := Parse(msg)
	if err != nil {
		return nil, err
	}
	if !pr.IsValid {
		res.Errors = pr.Errors
		res.LatencyMs = elapsedMs(start)
		slog.Debug(fmt.Sprintf("%s - parse failed for %s from %s: %v", logPrefix, msg.Protocol, msg.SourceSystem, pr.Errors))
		return res, nil
	}

	vr := Validate(pr)
	if vr.Status != StatusValid {
		res.Errors = vr.Errors
		if len(res.Errors) == 0 {
			res.Errors = []string{fmt.Sprintf("message is %s, not routable", vr.Status)}
		}
		res.LatencyMs = elapsedMs(start)
		slog.Debug(fmt.Sprintf("%s - validation %s for %s from %s", logPrefix, vr.Status, msg.Protocol, msg.SourceSystem))
		return res, nil
	}

	target := a.routes.Resolve(vr.Payload)
	res.RoutedTo = target
	res.Success = true

	if h, ok := a.handlers[target]; ok {
		if err := h(ctx, msg, vr); err != nil {
			res.Success = false
			res.Errors = append(res.Errors, fmt.Sprintf("handler %s: %v", target, err))
			slog.Warn(fmt.Sprintf("%s - handler %s failed: %v", logPrefix, target, err))
		}
	}

	res.LatencyMs = elapsedMs(start)
	return res, nil
}

func elapsedMs(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}
