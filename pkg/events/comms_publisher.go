package events

import (
	"context"
	"fmt"
	"log/slog"

	comms "github.com/nats-io/nats.go"

	"github.com/fleetlink/interop-gateway/pkg/commsutil"
)

const commsPublisherLogPrefix = "events:comms_publisher"

// CommsPublisherOpts configures CommsPublisher. Nil or zero values use
// defaults.
type CommsPublisherOpts struct {
	// GlobalAuditSubject overrides the global audit subject.
	GlobalAuditSubject string
	// GlobalAlertSubject overrides the global alert subject.
	GlobalAlertSubject string
}

// CommsPublisher publishes gateway events to COMMS subjects: each event goes
// to a granular subject (per protocol/source) and a global one.
type CommsPublisher struct {
	nc           *comms.Conn
	auditSubject string
	alertSubject string
}

// NewCommsPublisher creates a new CommsPublisher. Pass nil for opts to use
// defaults.
func NewCommsPublisher(nc *comms.Conn, opts *CommsPublisherOpts) *CommsPublisher {
	auditSubject := commsutil.SubjectAuditEvent
	alertSubject := commsutil.SubjectAlertEvent
	if opts != nil {
		if opts.GlobalAuditSubject != "" {
			auditSubject = opts.GlobalAuditSubject
		}
		if opts.GlobalAlertSubject != "" {
			alertSubject = opts.GlobalAlertSubject
		}
	}
	return &CommsPublisher{nc: nc, auditSubject: auditSubject, alertSubject: alertSubject}
}

// PublishAudit publishes a MessageAuditEvent to both the granular and global
// audit subjects.
func (p *CommsPublisher) PublishAudit(_ context.Context, event *MessageAuditEvent) error {
	data, err := commsutil.EncodePayload(event)
	if err != nil {
		return fmt.Errorf("%s - failed to encode audit event: %w", commsPublisherLogPrefix, err)
	}

	granular := commsutil.BuildAuditSubject(event.Protocol, event.SourceSystem)
	if err := p.nc.Publish(granular, data); err != nil {
		slog.Error(fmt.Sprintf("%s - failed to publish to %s: %v", commsPublisherLogPrefix, granular, err))
		return err
	}
	if err := p.nc.Publish(p.auditSubject, data); err != nil {
		slog.Error(fmt.Sprintf("%s - failed to publish to %s: %v", commsPublisherLogPrefix, p.auditSubject, err))
		return err
	}

	slog.Debug(fmt.Sprintf("%s - Published audit event for %s/%s", commsPublisherLogPrefix, event.Protocol, event.SourceSystem))
	return nil
}

// PublishAlert publishes a TrustAlertEvent to both the granular and global
// alert subjects.
func (p *CommsPublisher) PublishAlert(_ context.Context, event *TrustAlertEvent) error {
	data, err := commsutil.EncodePayload(event)
	if err != nil {
		return fmt.Errorf("%s - failed to encode alert event: %w", commsPublisherLogPrefix, err)
	}

	granular := commsutil.BuildAlertSubject(event.SourceSystem)
	if err := p.nc.Publish(granular, data); err != nil {
		slog.Error(fmt.Sprintf("%s - failed to publish to %s: %v", commsPublisherLogPrefix, granular, err))
		return err
	}
	if err := p.nc.Publish(p.alertSubject, data); err != nil {
		slog.Error(fmt.Sprintf("%s - failed to publish to %s: %v", commsPublisherLogPrefix, p.alertSubject, err))
		return err
	}

	slog.Debug(fmt.Sprintf("%s - Published %s alert for %s", commsPublisherLogPrefix, event.Level, event.SourceSystem))
	return nil
}
