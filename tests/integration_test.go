//go:build integration

package tests

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	commsserver "github.com/nats-io/nats-server/v2/server"
	comms "github.com/nats-io/nats.go"

	"github.com/fleetlink/interop-gateway/pkg/db"
	"github.com/fleetlink/interop-gateway/pkg/dispatcher"
	"github.com/fleetlink/interop-gateway/pkg/protocol"
	"github.com/fleetlink/interop-gateway/pkg/swarm"
	"github.com/fleetlink/interop-gateway/pkg/trust"
)

const integrationTestPrefix = "tests:integration_test"
const integrationNatsPort = 14241

// Integration tests use DATABASE_URL (e.g. .../gateway_test on platform
// Postgres). Create DBs once: interop-gateway ensure-db gateway_test

func TestIntegration_GatewayWithDB_ProcessAndAudit(t *testing.T) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skipf("%s - DATABASE_URL not set (e.g. .../gateway_test; create with interop-gateway ensure-db), skipping", integrationTestPrefix)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := db.NewPool(ctx, url)
	if err != nil {
		t.Fatalf("%s - NewPool failed: %v", integrationTestPrefix, err)
	}
	defer pool.Close()

	migrationPath := "migrations"
	if _, err := os.Stat(migrationPath); os.IsNotExist(err) {
		migrationPath = filepath.Join("..", "migrations")
	}
	migrationSQL, err := db.LoadMigrationFiles(migrationPath)
	if err != nil {
		t.Fatalf("%s - LoadMigrationFiles failed: %v", integrationTestPrefix, err)
	}
	if err := db.RunMigrations(ctx, pool, migrationSQL); err != nil {
		t.Fatalf("%s - RunMigrations failed: %v", integrationTestPrefix, err)
	}

	opts := &commsserver.Options{
		Host:   "127.0.0.1",
		Port:   integrationNatsPort,
		NoLog:  true,
		NoSigs: true,
	}
	ns, err := commsserver.NewServer(opts)
	if err != nil {
		t.Fatalf("%s - failed to create NATS server: %v", integrationTestPrefix, err)
	}
	go ns.Start()
	if !ns.ReadyForConnections(10 * time.Second) {
		t.Fatalf("%s - NATS server failed to start", integrationTestPrefix)
	}
	defer func() {
		ns.Shutdown()
		ns.WaitForShutdown()
	}()

	nc, err := comms.Connect(ns.ClientURL(), comms.Timeout(5*time.Second))
	if err != nil {
		t.Fatalf("%s - failed to connect to NATS: %v", integrationTestPrefix, err)
	}
	defer nc.Close()

	repo := db.NewAuditRepository(pool)
	checker := trust.NewChecker(trust.NewCheckerParams{})
	checker.AddToBlacklist("int-rogue")
	adapter := protocol.NewAdapter(nil)
	bridge := swarm.NewBridge(swarm.NewBridgeParams{})
	disp := dispatcher.NewDispatcher(checker, adapter, bridge)

	subject := "interop.test.gateway.integration.v1"
	_, err = nc.Subscribe(subject, func(msg *comms.Msg) {
		var req dispatcher.GatewayRequest
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			resp := &dispatcher.GatewayResponse{
				Ok:    false,
				Error: &dispatcher.ErrorDetail{Code: "INVALID_REQUEST", Message: "Failed to decode request"},
			}
			data, _ := json.Marshal(resp)
			msg.Respond(data)
			return
		}
		reqCtx, reqCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer reqCancel()
		resp := disp.Dispatch(reqCtx, &req)
		data, _ := json.Marshal(resp)
		msg.Respond(data)
	})
	if err != nil {
		t.Fatalf("%s - subscribe failed: %v", integrationTestPrefix, err)
	}

	send := func(req *dispatcher.GatewayRequest) *dispatcher.GatewayResponse {
		data, _ := json.Marshal(req)
		msg, err := nc.Request(subject, data, 10*time.Second)
		if err != nil {
			t.Fatalf("%s - request failed: %v", integrationTestPrefix, err)
		}
		var resp dispatcher.GatewayResponse
		if err := json.Unmarshal(msg.Data, &resp); err != nil {
			t.Fatalf("%s - unmarshal response: %v", integrationTestPrefix, err)
		}
		return &resp
	}

	// 1. Process a compliant AIS message over the wire.
	resp := send(&dispatcher.GatewayRequest{
		ID:     "int-process-1",
		Method: "processMessage",
		Params: json.RawMessage(`{
			"protocol": "ais",
			"direction": "inbound",
			"sourceSystem": "int-ship",
			"payload": {"messageType": 1, "mmsi": "366999888", "latitude": 51.5, "longitude": 0.1}
		}`),
	})
	if !resp.Ok {
		t.Fatalf("%s - processMessage failed: %v", integrationTestPrefix, resp.Error)
	}

	// 2. Evaluate trust for the blacklisted source over the wire.
	resp = send(&dispatcher.GatewayRequest{
		ID:     "int-trust-1",
		Method: "evaluateTrust",
		Params: json.RawMessage(`{
			"source": "int-rogue",
			"protocol": "ais",
			"payload": {"messageType": 1, "mmsi": "366999888", "latitude": 51.5, "longitude": 0.1}
		}`),
	})
	if !resp.Ok {
		t.Fatalf("%s - evaluateTrust failed: %v", integrationTestPrefix, resp.Error)
	}
	result, _ := json.Marshal(resp.Result)
	var eval trust.TrustEvaluation
	if err := json.Unmarshal(result, &eval); err != nil {
		t.Fatalf("%s - evaluateTrust result unmarshal: %v", integrationTestPrefix, err)
	}
	if eval.ComplianceStatus != trust.StatusBlocked {
		t.Errorf("%s - status = %q, want blocked", integrationTestPrefix, eval.ComplianceStatus)
	}

	// 3. Persist audit records for both outcomes and read them back.
	score := eval.TrustScore
	compliance := string(eval.ComplianceStatus)
	blocked, err := repo.InsertMessageAudit(ctx, db.InsertMessageAuditParams{
		Source:           "int-rogue",
		Protocol:         "ais",
		Direction:        "inbound",
		Outcome:          "blocked",
		TrustScore:       &score,
		ComplianceStatus: &compliance,
		FailedChecks:     eval.FailedChecks,
		Payload:          json.RawMessage(`{"messageType":1}`),
	})
	if err != nil {
		t.Fatalf("%s - InsertMessageAudit failed: %v", integrationTestPrefix, err)
	}

	_, err = repo.InsertTrustAlert(ctx, db.InsertTrustAlertParams{
		AuditID: &blocked.ID,
		Source:  "int-rogue",
		Level:   "critical",
		CheckID: "blacklist",
		Message: "blacklisted source int-rogue",
	})
	if err != nil {
		t.Fatalf("%s - InsertTrustAlert failed: %v", integrationTestPrefix, err)
	}

	audits, err := repo.ListRecentAudits(ctx, db.ListRecentAuditsParams{Source: "int-rogue", Limit: 10})
	if err != nil {
		t.Fatalf("%s - ListRecentAudits failed: %v", integrationTestPrefix, err)
	}
	if len(audits) < 1 {
		t.Fatalf("%s - expected at least one audit for int-rogue", integrationTestPrefix)
	}
	if audits[0].Outcome != "blocked" {
		t.Errorf("%s - audit outcome = %q, want blocked", integrationTestPrefix, audits[0].Outcome)
	}

	alerts, err := repo.AlertsForSource(ctx, "int-rogue", 10)
	if err != nil {
		t.Fatalf("%s - AlertsForSource failed: %v", integrationTestPrefix, err)
	}
	if len(alerts) < 1 {
		t.Fatalf("%s - expected at least one alert for int-rogue", integrationTestPrefix)
	}
	if alerts[0].CheckID != "blacklist" {
		t.Errorf("%s - alert check = %q, want blacklist", integrationTestPrefix, alerts[0].CheckID)
	}
}
