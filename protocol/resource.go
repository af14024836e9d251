// ABOUTME: Typed payloads carried inside RESOURCE_REQUEST / RESOURCE_RESPONSE envelopes.
// ABOUTME: Also defines the Agent record derived from the generic agents resource.

package protocol

// Structured error codes carried in a failed ResourceResponse. These are the
// primary classification path; free-text matching on the error message is a
// compatibility fallback only.
const (
	CodeNotFound         = "NOT_FOUND"
	CodePermissionDenied = "PERMISSION_DENIED"
)

// ResourceRequest asks the runtime for a resource. Timeout is an optional
// per-request override in seconds; zero means the client default applies.
type ResourceRequest struct {
	ResourceType string         `json:"resource_type"`
	ResourceID   string         `json:"resource_id,omitempty"`
	Parameters   map[string]any `json:"parameters,omitempty"`
	Timeout      float64        `json:"timeout,omitempty"`
}

// ResourceResponse is the runtime's answer to a ResourceRequest. Resource is
// present iff Success; Error (and optionally Code) iff not.
type ResourceResponse struct {
	Success  bool           `json:"success"`
	Resource map[string]any `json:"resource,omitempty"`
	Error    string         `json:"error,omitempty"`
	Code     string         `json:"code,omitempty"`
}

// Agent describes a registered agent. It is derived client-side from the
// generic "agents" resource listing, not a wire-level type of its own.
type Agent struct {
	AgentID   string         `json:"agent_id"`
	AgentType string         `json:"agent_type"`
	Status    string         `json:"status"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}
