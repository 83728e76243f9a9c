package swarm

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	commsserver "github.com/nats-io/nats-server/v2/server"
	comms "github.com/nats-io/nats.go"
)

const commsExecutorTestPrefix = "swarm:comms_executor_integration_test"

// startTestServer starts an in-process NATS server for testing.
func startTestServer(t *testing.T, port int) (*comms.Conn, func()) {
	t.Helper()

	opts := &commsserver.Options{
		Host:   "127.0.0.1",
		Port:   port,
		NoLog:  true,
		NoSigs: true,
	}

	ns, err := commsserver.NewServer(opts)
	if err != nil {
		t.Fatalf("%s - failed to create server: %v", commsExecutorTestPrefix, err)
	}

	go ns.Start()
	if !ns.ReadyForConnections(10 * time.Second) {
		t.Fatalf("%s - server failed to start", commsExecutorTestPrefix)
	}

	nc, err := comms.Connect(ns.ClientURL(), comms.Timeout(5*time.Second))
	if err != nil {
		ns.Shutdown()
		t.Fatalf("%s - failed to connect: %v", commsExecutorTestPrefix, err)
	}

	cleanup := func() {
		nc.Close()
		ns.Shutdown()
		ns.WaitForShutdown()
	}

	return nc, cleanup
}

func TestCommsExecutor_RequestReply(t *testing.T) {
	nc, cleanup := startTestServer(t, 14250)
	defer cleanup()

	// Remote agent: echoes the task id back as an analysis result.
	sub, err := nc.Subscribe("swarm.agent.analyzer.remote-1", func(msg *comms.Msg) {
		var task Task
		if err := json.Unmarshal(msg.Data, &task); err != nil {
			t.Errorf("%s - failed to unmarshal task: %v", commsExecutorTestPrefix, err)
			return
		}
		reply, _ := json.Marshal(map[string]string{"analyzed": task.ID})
		msg.Respond(reply)
	})
	if err != nil {
		t.Fatalf("%s - failed to subscribe: %v", commsExecutorTestPrefix, err)
	}
	defer sub.Unsubscribe()

	b := NewBridge(NewBridgeParams{
		Executors: map[AgentType]Executor{AgentAnalyzer: NewCommsExecutor(nc)},
	})
	b.RegisterAgent(Agent{ID: "remote-1", Type: AgentAnalyzer, Status: AgentActive, Capabilities: []string{"data-analysis"}})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	task := &Task{ID: "task-42", Type: "analysis", RequiredCapabilities: []string{"data-analysis"}}
	res := b.DistributeTask(ctx, task)
	if !res.Success {
		t.Fatalf("%s - distribute failed: %s", commsExecutorTestPrefix, res.Error)
	}

	var out map[string]string
	if err := json.Unmarshal(task.Result, &out); err != nil {
		t.Fatalf("%s - result not JSON: %v", commsExecutorTestPrefix, err)
	}
	if out["analyzed"] != "task-42" {
		t.Errorf("%s - unexpected result %v", commsExecutorTestPrefix, out)
	}
}

func TestCommsExecutor_NoListenerFailsTask(t *testing.T) {
	nc, cleanup := startTestServer(t, 14251)
	defer cleanup()

	b := NewBridge(NewBridgeParams{
		Executors: map[AgentType]Executor{AgentAnalyzer: NewCommsExecutor(nc)},
	})
	b.RegisterAgent(Agent{ID: "ghost", Type: AgentAnalyzer, Status: AgentActive, Capabilities: []string{"data-analysis"}})

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	task := &Task{RequiredCapabilities: []string{"data-analysis"}}
	res := b.DistributeTask(ctx, task)
	if res.Success {
		t.Fatalf("%s - expected failure when no agent listens", commsExecutorTestPrefix)
	}
	if task.Status != TaskFailed {
		t.Errorf("%s - expected failed task, got %s", commsExecutorTestPrefix, task.Status)
	}
}
