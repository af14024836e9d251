// ABOUTME: Minimal fake Kumeo runtime for E2E testing — serves the socket protocol locally.
// ABOUTME: Usage: fake-runtime [-socket /tmp/kumeo.sock] [-agents 3] [-event-interval 5s]

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/2389/kumeo-client/internal/fakeruntime"
	"github.com/2389/kumeo-client/protocol"
)

func main() {
	socket := flag.String("socket", "/tmp/kumeo-fake.sock", "Unix socket path to listen on")
	agentCount := flag.Int("agents", 3, "Number of fake agents to advertise")
	eventInterval := flag.Duration("event-interval", 5*time.Second, "Interval between heartbeat events (0 disables)")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := run(*socket, *agentCount, *eventInterval, logger); err != nil {
		logger.Error("fake runtime failed", "error", err)
		os.Exit(1)
	}
}

func run(socket string, agentCount int, eventInterval time.Duration, logger *slog.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	agents := make([]protocol.Agent, agentCount)
	for i := range agents {
		agents[i] = protocol.Agent{
			AgentID:   fmt.Sprintf("fake-agent-%d", i+1),
			AgentType: "echo",
			Status:    "running",
		}
	}

	srv := fakeruntime.New(socket,
		fakeruntime.WithLogger(logger),
		fakeruntime.WithAgents(agents),
	)
	if err := srv.Start(); err != nil {
		return err
	}

	if eventInterval > 0 {
		go heartbeatLoop(ctx, srv, eventInterval)
	}

	<-ctx.Done()
	logger.Info("shutting down")
	return srv.Stop()
}

// heartbeatLoop pushes a periodic EVENT to every connected client.
func heartbeatLoop(ctx context.Context, srv *fakeruntime.Server, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	seq := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			seq++
			srv.Broadcast(protocol.TypeEvent, map[string]any{
				"subject": "runtime.heartbeat",
				"data": map[string]any{
					"sequence":    seq,
					"connections": srv.ConnCount(),
				},
			})
		}
	}
}
