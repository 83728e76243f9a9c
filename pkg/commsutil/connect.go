// Package commsutil provides COMMS connection helpers and the gateway
// subject scheme.
package commsutil

import (
	"fmt"
	"log/slog"
	"time"

	comms "github.com/nats-io/nats.go"
)

const logPrefix = "commsutil:connect"

// ConnectOpts tunes the COMMS connection. Zero values use defaults.
type ConnectOpts struct {
	// ConnectTimeout bounds the initial dial (default 10s).
	ConnectTimeout time.Duration
	// ReconnectWait is the delay between reconnect attempts (default 2s).
	ReconnectWait time.Duration
	// MaxReconnects caps reconnect attempts (default 60).
	MaxReconnects int
}

// Connect creates a COMMS connection to the given URL with reconnect
// handling wired to the gateway log. Pass nil opts for defaults.
func Connect(url, name string, opts *ConnectOpts) (*comms.Conn, error) {
	o := ConnectOpts{}
	if opts != nil {
		o = *opts
	}
	if o.ConnectTimeout == 0 {
		o.ConnectTimeout = 10 * time.Second
	}
	if o.ReconnectWait == 0 {
		o.ReconnectWait = 2 * time.Second
	}
	if o.MaxReconnects == 0 {
		o.MaxReconnects = 60
	}

	slog.Info(fmt.Sprintf("%s - Connecting to COMMS at %s as %s", logPrefix, url, name))

	nc, err := comms.Connect(url,
		comms.Name(name),
		comms.Timeout(o.ConnectTimeout),
		comms.ReconnectWait(o.ReconnectWait),
		comms.MaxReconnects(o.MaxReconnects),
		comms.DisconnectErrHandler(func(_ *comms.Conn, err error) {
			slog.Warn(fmt.Sprintf("%s - COMMS disconnected: %v", logPrefix, err))
		}),
		comms.ReconnectHandler(func(nc *comms.Conn) {
			slog.Info(fmt.Sprintf("%s - COMMS reconnected to %s", logPrefix, nc.ConnectedUrl()))
		}),
		comms.ClosedHandler(func(_ *comms.Conn) {
			slog.Info(fmt.Sprintf("%s - COMMS connection closed", logPrefix))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("%s - failed to connect to COMMS: %w", logPrefix, err)
	}

	slog.Info(fmt.Sprintf("%s - Connected to COMMS at %s", logPrefix, nc.ConnectedUrl()))
	return nc, nil
}
