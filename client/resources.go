// ABOUTME: High-level operations built on the request/response primitives.
// ABOUTME: Liveness probe, typed resource fetch with error classification, and agent listing.

package client

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/2389/kumeo-client/protocol"
)

// Ping sends a liveness probe and returns the round-trip time, measured from
// just before the send to response resolution. A reply of any type other
// than PONG is a protocol error.
func (c *RuntimeClient) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()

	resp, err := c.Request(ctx, protocol.TypePing, map[string]any{}, 0)
	if err != nil {
		return 0, err
	}
	if resp.MessageType != protocol.TypePong {
		return 0, &protocol.ProtocolError{
			Reason: fmt.Sprintf("unexpected reply type %s to ping", resp.MessageType),
		}
	}
	return time.Since(start), nil
}

// GetResource fetches a resource from the runtime. The request's Timeout
// field (seconds) overrides the client default for this call. On failure the
// response is classified: a structured code when the runtime provides one,
// otherwise a case-insensitive substring match on the error text, falling
// back to a RuntimeError carrying the message.
func (c *RuntimeClient) GetResource(ctx context.Context, req *protocol.ResourceRequest) (map[string]any, error) {
	if req == nil || req.ResourceType == "" {
		return nil, &protocol.ProtocolError{Reason: "resource request requires a resource type"}
	}

	timeout := time.Duration(req.Timeout * float64(time.Second))
	resp, err := c.Request(ctx, protocol.TypeResourceRequest, req, timeout)
	if err != nil {
		return nil, err
	}

	payload, ok := resp.Payload.(map[string]any)
	if !ok {
		return nil, &protocol.ProtocolError{Reason: "resource response payload is not an object"}
	}
	success, ok := payload["success"].(bool)
	if !ok {
		return nil, &protocol.ProtocolError{Reason: "resource response missing success indicator"}
	}

	if !success {
		message, _ := payload["error"].(string)
		if message == "" {
			message = "unknown error"
		}
		code, _ := payload["code"].(string)
		return nil, classifyResourceError(code, message)
	}

	resource, _ := payload["resource"].(map[string]any)
	if resource == nil {
		resource = map[string]any{}
	}
	return resource, nil
}

// classifyResourceError maps a failed resource response to the error
// taxonomy. The structured code is authoritative when present; the substring
// match on free text is kept for runtimes that predate error codes.
func classifyResourceError(code, message string) error {
	switch code {
	case protocol.CodeNotFound:
		return fmt.Errorf("%w: %s", ErrResourceNotFound, message)
	case protocol.CodePermissionDenied:
		return fmt.Errorf("%w: %s", ErrPermissionDenied, message)
	}

	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "not found"):
		return fmt.Errorf("%w: %s", ErrResourceNotFound, message)
	case strings.Contains(lower, "permission denied"):
		return fmt.Errorf("%w: %s", ErrPermissionDenied, message)
	}
	return &RuntimeError{Message: message}
}

// ListAgents fetches the "agents" resource and maps each record into an
// Agent. agent_id and agent_type are required; status defaults to "unknown"
// and metadata stays nil when absent. Underlying failures propagate
// unchanged.
func (c *RuntimeClient) ListAgents(ctx context.Context) ([]protocol.Agent, error) {
	resource, err := c.GetResource(ctx, &protocol.ResourceRequest{ResourceType: "agents"})
	if err != nil {
		return nil, err
	}

	items, _ := resource["items"].([]any)
	agents := make([]protocol.Agent, 0, len(items))
	for _, item := range items {
		record, ok := item.(map[string]any)
		if !ok {
			return nil, &protocol.ProtocolError{Reason: "agent record is not an object"}
		}
		agentID, ok := record["agent_id"].(string)
		if !ok || agentID == "" {
			return nil, &protocol.ProtocolError{Reason: "agent record missing agent_id"}
		}
		agentType, ok := record["agent_type"].(string)
		if !ok || agentType == "" {
			return nil, &protocol.ProtocolError{Reason: "agent record missing agent_type"}
		}

		status, _ := record["status"].(string)
		if status == "" {
			status = "unknown"
		}
		metadata, _ := record["metadata"].(map[string]any)

		agents = append(agents, protocol.Agent{
			AgentID:   agentID,
			AgentType: agentType,
			Status:    status,
			Metadata:  metadata,
		})
	}
	return agents, nil
}

// EmitEvent publishes a fire-and-forget EVENT envelope on the given subject.
func (c *RuntimeClient) EmitEvent(ctx context.Context, subject string, data map[string]any) error {
	return c.Send(ctx, protocol.TypeEvent, map[string]any{
		"subject": subject,
		"data":    data,
	})
}

// SendCommand sends a fire-and-forget COMMAND envelope to the runtime.
func (c *RuntimeClient) SendCommand(ctx context.Context, name string, args map[string]any) error {
	return c.Send(ctx, protocol.TypeCommand, map[string]any{
		"command": name,
		"args":    args,
	})
}
