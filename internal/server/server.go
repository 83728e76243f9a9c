// Package server orchestrates all components: COMMS client, DB, trust
// checker, protocol adapter, swarm bridge, dispatcher, HTTP health.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	comms "github.com/nats-io/nats.go"

	"github.com/fleetlink/interop-gateway/internal/config"
	"github.com/fleetlink/interop-gateway/pkg/bootstrap"
	"github.com/fleetlink/interop-gateway/pkg/commsutil"
	"github.com/fleetlink/interop-gateway/pkg/db"
	"github.com/fleetlink/interop-gateway/pkg/dispatcher"
	"github.com/fleetlink/interop-gateway/pkg/events"
	"github.com/fleetlink/interop-gateway/pkg/protocol"
	"github.com/fleetlink/interop-gateway/pkg/swarm"
	"github.com/fleetlink/interop-gateway/pkg/trust"
)

const logPrefix = "server:server"

// Server is the interop-gateway orchestrator.
type Server struct {
	cfg        *config.Config
	nc         *comms.Conn
	pool       *pgxpool.Pool
	httpServer *http.Server

	checker   *trust.Checker
	adapter   *protocol.Adapter
	bridge    *swarm.Bridge
	repo      *db.AuditRepository
	publisher events.EventPublisher
}

// Run starts the server, blocks until shutdown signal, then cleans up.
func Run() error {
	// Setup structured logging
	var logLevel slog.Level
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("%s - failed to load config: %w", logPrefix, err)
	}

	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info(fmt.Sprintf("%s - Starting interop-gateway", logPrefix))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := &Server{cfg: cfg}

	// Step 1: Load bootstrap config
	bootstrapCfg, err := bootstrap.LoadBootstrapConfig(cfg.BootstrapFile)
	if err != nil {
		return fmt.Errorf("%s - failed to load bootstrap config: %w", logPrefix, err)
	}
	resolved := bootstrap.CreateResolvedBootstrap(bootstrapCfg)

	// Determine gateway subject
	gatewaySubject := cfg.GatewaySubject
	if gatewaySubject == "" {
		gatewaySubject = commsutil.SubjectGateway
	}
	slog.Info(fmt.Sprintf("%s - Gateway subject: %s", logPrefix, gatewaySubject))

	// Step 2: Connect to COMMS
	nc, err := commsutil.Connect(cfg.COMMSURL, cfg.COMMSName, nil)
	if err != nil {
		return fmt.Errorf("%s - failed to connect to COMMS: %w", logPrefix, err)
	}
	s.nc = nc

	// Step 3: Connect to database (optional; empty URL disables audit persistence)
	if cfg.DatabaseURL != "" {
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			nc.Close()
			return fmt.Errorf("%s - failed to connect to database: %w", logPrefix, err)
		}
		s.pool = pool

		if cfg.RunMigrations {
			migrationSQL, err := db.LoadMigrationFiles(cfg.MigrationPath)
			if err != nil {
				pool.Close()
				nc.Close()
				return fmt.Errorf("%s - failed to load migrations: %w", logPrefix, err)
			}
			if err := db.RunMigrations(ctx, pool, migrationSQL); err != nil {
				pool.Close()
				nc.Close()
				return fmt.Errorf("%s - failed to run migrations: %w", logPrefix, err)
			}
		}
		s.repo = db.NewAuditRepository(pool)
	} else {
		slog.Info(fmt.Sprintf("%s - DATABASE_URL not set, audit persistence disabled", logPrefix))
	}

	// Step 4: Build trust checker seeded from bootstrap lists
	lists := trust.NewListRegistry()
	for _, src := range resolved.TrustedSources() {
		lists.AddToWhitelist(src)
	}
	for _, src := range resolved.BlockedSources() {
		lists.AddToBlacklist(src)
	}
	s.checker = trust.NewChecker(trust.NewCheckerParams{
		Lists: lists,
		Policy: trust.Policy{
			BaselineScore:      cfg.TrustNeutralScore,
			WhitelistScore:     cfg.TrustWhitelistScore,
			CheckPenalty:       cfg.TrustCheckPenalty,
			CompliantThreshold: cfg.TrustCompliantThreshold,
			BlockedFloor:       cfg.TrustBlockedThreshold,
		},
	})

	// Step 5: Build protocol adapter with bootstrap route overrides
	routes := protocol.DefaultRouteTable()
	for tag, target := range resolved.Routes().Protocols {
		routes.Protocols[protocol.Tag(tag)] = target
	}
	for prefix, target := range resolved.Routes().MethodPrefixes {
		routes.MethodPrefixes[prefix] = target
	}
	s.adapter = protocol.NewAdapter(routes)

	// Step 6: Build swarm bridge; remote executor-type agents work over COMMS
	s.bridge = swarm.NewBridge(swarm.NewBridgeParams{
		Executors: map[swarm.AgentType]swarm.Executor{
			swarm.AgentExecutor: swarm.NewCommsExecutor(nc),
		},
	})
	for _, seed := range resolved.SeedAgents() {
		result := s.bridge.RegisterAgent(swarm.Agent{
			ID:           seed.ID,
			Type:         swarm.AgentType(seed.Type),
			Capabilities: seed.Capabilities,
			Status:       swarm.AgentStatus(seed.Status),
		})
		if !result.Success {
			slog.Warn(fmt.Sprintf("%s - seed agent %s not registered: %s", logPrefix, seed.ID, result.Error))
		}
	}

	// Routed task.* messages hand off to the swarm
	s.adapter.RegisterHandler("swarm-dispatch", s.handleSwarmDispatch)

	// Step 7: Event publisher
	s.publisher = events.NewCommsPublisher(nc, &events.CommsPublisherOpts{
		GlobalAuditSubject: cfg.AuditEventSubject,
		GlobalAlertSubject: cfg.AlertEventSubject,
	})

	// Step 8: Create dispatcher and subscribe
	disp := dispatcher.NewDispatcher(s.checker, s.adapter, s.bridge)

	requestTimeout := cfg.RequestTimeout
	sub, err := nc.Subscribe(gatewaySubject, func(msg *comms.Msg) {
		var req dispatcher.GatewayRequest
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			slog.Error(fmt.Sprintf("%s - failed to decode request: %v", logPrefix, err))
			resp := &dispatcher.GatewayResponse{
				Ok: false,
				Error: &dispatcher.ErrorDetail{
					Code:    "INVALID_REQUEST",
					Message: "Failed to decode request",
				},
			}
			data, _ := json.Marshal(resp)
			msg.Respond(data)
			return
		}

		// Per-request context with timeout; optionally respect client deadline
		reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
		if req.Ctx != nil && (req.Ctx.DeadlineMs > 0 || req.Ctx.TimeoutMs > 0) {
			ms := req.Ctx.DeadlineMs
			if ms <= 0 {
				ms = req.Ctx.TimeoutMs
			}
			if ms > 0 && time.Duration(ms)*time.Millisecond < requestTimeout {
				reqCtx, cancel = context.WithTimeout(ctx, time.Duration(ms)*time.Millisecond)
			}
		}
		defer cancel()

		// processMessage runs the full audited pipeline here; everything
		// else goes straight to the dispatcher.
		var resp *dispatcher.GatewayResponse
		if req.Method == "processMessage" {
			resp = s.handleProcessMessage(reqCtx, &req)
		} else {
			resp = disp.Dispatch(reqCtx, &req)
		}

		data, err := json.Marshal(resp)
		if err != nil {
			slog.Error(fmt.Sprintf("%s - failed to encode response: %v", logPrefix, err))
			return
		}
		msg.Respond(data)
	})
	if err != nil {
		s.closeResources()
		return fmt.Errorf("%s - failed to subscribe to %s: %w", logPrefix, gatewaySubject, err)
	}
	slog.Info(fmt.Sprintf("%s - Subscribed to %s", logPrefix, gatewaySubject))

	// Step 9: Start HTTP health server
	httpAddr := cfg.HTTPAddr
	if httpAddr == "" {
		httpAddr = fmt.Sprintf(":%d", cfg.HTTPPort)
	}
	s.httpServer = &http.Server{Addr: httpAddr, Handler: s.httpHandler()}
	go func() {
		slog.Info(fmt.Sprintf("%s - HTTP health server listening on %s", logPrefix, httpAddr))
		if err := s.httpServer.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error(fmt.Sprintf("%s - HTTP server error: %v", logPrefix, err))
		}
	}()

	slog.Info(fmt.Sprintf("%s - Interop-gateway is ready", logPrefix))

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	slog.Info(fmt.Sprintf("%s - Received signal %s, shutting down", logPrefix, sig))

	// Graceful shutdown
	sub.Unsubscribe()
	s.httpServer.Shutdown(ctx)
	nc.Drain()
	if s.pool != nil {
		s.pool.Close()
	}

	slog.Info(fmt.Sprintf("%s - Shutdown complete", logPrefix))
	return nil
}

func (s *Server) closeResources() {
	if s.pool != nil {
		s.pool.Close()
	}
	if s.nc != nil {
		s.nc.Close()
	}
}

// httpHandler builds the health/readiness mux served alongside the COMMS
// subscription.
func (s *Server) httpHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		healthCtx, cancel := context.WithTimeout(r.Context(), s.cfg.HealthCheckTimeout)
		defer cancel()
		h := s.health(healthCtx)
		w.Header().Set("Content-Type", "application/json")
		if h.Status != "healthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(h)
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ready"})
	})
	return mux
}

// healthOutput is the /health response document.
type healthOutput struct {
	Status    string          `json:"status"`
	Checks    map[string]bool `json:"checks"`
	Timestamp string          `json:"timestamp"`
}

func (s *Server) health(ctx context.Context) *healthOutput {
	checks := map[string]bool{
		"comms": s.nc != nil && s.nc.IsConnected(),
	}
	if s.repo != nil {
		checks["database"] = s.repo.Health(ctx) == nil
	}

	status := "healthy"
	for _, ok := range checks {
		if !ok {
			status = "unhealthy"
		}
	}
	return &healthOutput{
		Status:    status,
		Checks:    checks,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}
