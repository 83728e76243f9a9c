package events

import "context"

// EventPublisher is the interface for publishing gateway audit and alert
// events.
type EventPublisher interface {
	PublishAudit(ctx context.Context, event *MessageAuditEvent) error
	PublishAlert(ctx context.Context, event *TrustAlertEvent) error
}

// NoOpPublisher is an EventPublisher that does nothing (for in-process usage
// without events).
type NoOpPublisher struct{}

// PublishAudit is a no-op.
func (p *NoOpPublisher) PublishAudit(_ context.Context, _ *MessageAuditEvent) error { return nil }

// PublishAlert is a no-op.
func (p *NoOpPublisher) PublishAlert(_ context.Context, _ *TrustAlertEvent) error { return nil }

// CallbackPublisher is an EventPublisher that calls callbacks (for testing).
type CallbackPublisher struct {
	auditCallback func(ctx context.Context, event *MessageAuditEvent) error
	alertCallback func(ctx context.Context, event *TrustAlertEvent) error
}

// NewCallbackPublisher creates a new CallbackPublisher. Nil callbacks are
// skipped.
func NewCallbackPublisher(
	onAudit func(ctx context.Context, event *MessageAuditEvent) error,
	onAlert func(ctx context.Context, event *TrustAlertEvent) error,
) *CallbackPublisher {
	return &CallbackPublisher{auditCallback: onAudit, alertCallback: onAlert}
}

// PublishAudit calls the audit callback.
func (p *CallbackPublisher) PublishAudit(ctx context.Context, event *MessageAuditEvent) error {
	if p.auditCallback == nil {
		return nil
	}
	return p.auditCallback(ctx, event)
}

// PublishAlert calls the alert callback.
func (p *CallbackPublisher) PublishAlert(ctx context.Context, event *TrustAlertEvent) error {
	if p.alertCallback == nil {
		return nil
	}
	return p.alertCallback(ctx, event)
}
