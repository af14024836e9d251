// ABOUTME: End-to-end tests running the full client against the fake runtime.
// ABOUTME: Exercises framing, correlation, and push dispatch over a real Unix socket.

package fakeruntime

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/kumeo-client/client"
	"github.com/2389/kumeo-client/protocol"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startServer(t *testing.T, opts ...Option) (*Server, string) {
	t.Helper()
	socketPath := filepath.Join(t.TempDir(), "runtime.sock")
	opts = append([]Option{WithLogger(quietLogger())}, opts...)
	srv := New(socketPath, opts...)
	require.NoError(t, srv.Start())
	t.Cleanup(func() {
		require.NoError(t, srv.Stop())
	})
	return srv, socketPath
}

func connectClient(t *testing.T, socketPath string) *client.RuntimeClient {
	t.Helper()
	c := client.New(
		client.WithSocketPath(socketPath),
		client.WithTimeout(2*time.Second),
		client.WithLogger(quietLogger()),
	)
	require.NoError(t, c.Connect(context.Background()))
	t.Cleanup(func() {
		require.NoError(t, c.Close())
	})
	return c
}

func TestPingOverSocket(t *testing.T) {
	_, socketPath := startServer(t)
	c := connectClient(t, socketPath)

	rtt, err := c.Ping(context.Background())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, rtt, time.Duration(0))
}

func TestListAgentsOverSocket(t *testing.T) {
	_, socketPath := startServer(t, WithAgents([]protocol.Agent{
		{AgentID: "translator-1", AgentType: "translator", Status: "running"},
		{AgentID: "summarizer-1", AgentType: "summarizer", Status: "idle"},
	}))
	c := connectClient(t, socketPath)

	agents, err := c.ListAgents(context.Background())
	require.NoError(t, err)
	require.Len(t, agents, 2)
	assert.Equal(t, "translator-1", agents[0].AgentID)
	assert.Equal(t, "running", agents[0].Status)
	assert.Equal(t, "summarizer", agents[1].AgentType)
}

func TestCustomResourceOverSocket(t *testing.T) {
	_, socketPath := startServer(t, WithResource("workflow", func(req *protocol.ResourceRequest) *protocol.ResourceResponse {
		return &protocol.ResourceResponse{
			Success:  true,
			Resource: map[string]any{"workflow_id": req.ResourceID, "state": "active"},
		}
	}))
	c := connectClient(t, socketPath)

	resource, err := c.GetResource(context.Background(), &protocol.ResourceRequest{
		ResourceType: "workflow",
		ResourceID:   "wf-42",
	})
	require.NoError(t, err)
	assert.Equal(t, "wf-42", resource["workflow_id"])
	assert.Equal(t, "active", resource["state"])
}

func TestUnknownResourceOverSocket(t *testing.T) {
	_, socketPath := startServer(t)
	c := connectClient(t, socketPath)

	_, err := c.GetResource(context.Background(), &protocol.ResourceRequest{
		ResourceType: "no-such-thing",
	})
	assert.ErrorIs(t, err, client.ErrResourceNotFound)
}

func TestBroadcastReachesHandlers(t *testing.T) {
	srv, socketPath := startServer(t)
	c := connectClient(t, socketPath)

	received := make(chan *protocol.Message, 1)
	c.RegisterHandler(protocol.TypeEvent, func(_ context.Context, msg *protocol.Message) error {
		received <- msg
		return nil
	})

	srv.Broadcast(protocol.TypeEvent, map[string]any{
		"subject": "agent.started",
		"data":    map[string]any{"agent_id": "translator-1"},
	})

	select {
	case msg := <-received:
		payload, ok := msg.Payload.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "agent.started", payload["subject"])
	case <-time.After(2 * time.Second):
		t.Fatal("event never reached the handler")
	}
}

func TestServerSurvivesClientDisconnect(t *testing.T) {
	_, socketPath := startServer(t)

	c := client.New(
		client.WithSocketPath(socketPath),
		client.WithTimeout(2*time.Second),
		client.WithLogger(quietLogger()),
	)
	require.NoError(t, c.Connect(context.Background()))
	require.NoError(t, c.Close())

	// The server keeps accepting after a client drops.
	c2 := connectClient(t, socketPath)
	_, err := c2.Ping(context.Background())
	require.NoError(t, err)
}
