package commsutil

import (
	"testing"
	"time"
)

const connectTestPrefix = "commsutil:connect_test"

func TestConnect_InvalidURL(t *testing.T) {
	nc, err := Connect("invalid://not-a-nats-server", "test-client", nil)
	if err == nil {
		if nc != nil {
			nc.Close()
		}
		t.Fatalf("%s - expected error for invalid URL", connectTestPrefix)
	}
	if nc != nil {
		t.Errorf("%s - expected nil connection on error", connectTestPrefix)
	}
}

func TestConnect_UnreachableServer(t *testing.T) {
	opts := &ConnectOpts{ConnectTimeout: 200 * time.Millisecond, MaxReconnects: 1}
	nc, err := Connect("nats://127.0.0.1:1", "test-client", opts)
	if err == nil {
		if nc != nil {
			nc.Close()
		}
		t.Fatalf("%s - expected error for unreachable server", connectTestPrefix)
	}
}
