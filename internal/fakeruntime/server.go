// ABOUTME: In-process fake Kumeo runtime for end-to-end tests and local development.
// ABOUTME: Serves the length-prefixed socket protocol: answers pings, resource requests, and pushes events.

package fakeruntime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/2389/kumeo-client/protocol"
)

// ResourceFunc produces the response for one resource type.
type ResourceFunc func(req *protocol.ResourceRequest) *protocol.ResourceResponse

// Server is a scriptable runtime endpoint. It accepts any number of client
// connections on a Unix socket, answers PING with PONG and RESOURCE_REQUEST
// through registered ResourceFuncs, and can push unsolicited envelopes to
// every connected client.
type Server struct {
	socketPath string
	logger     *slog.Logger

	mu        sync.Mutex
	agents    []protocol.Agent
	resources map[string]ResourceFunc
	conns     map[*serverConn]struct{}
	listener  net.Listener

	group  *errgroup.Group
	cancel context.CancelFunc
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the diagnostic logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithAgents sets the static agent set served by the built-in "agents"
// resource.
func WithAgents(agents []protocol.Agent) Option {
	return func(s *Server) { s.agents = agents }
}

// WithResource registers a handler for one resource type, overriding the
// built-ins.
func WithResource(resourceType string, fn ResourceFunc) Option {
	return func(s *Server) { s.resources[resourceType] = fn }
}

// New creates a fake runtime that will listen at socketPath once started.
func New(socketPath string, opts ...Option) *Server {
	s := &Server{
		socketPath: socketPath,
		logger:     slog.Default(),
		resources:  make(map[string]ResourceFunc),
		conns:      make(map[*serverConn]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start binds the Unix socket and begins accepting connections. A stale
// socket file from a previous run is removed first.
func (s *Server) Start() error {
	_ = os.Remove(s.socketPath)

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.socketPath, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	group, ctx := errgroup.WithContext(ctx)

	s.mu.Lock()
	s.listener = listener
	s.group = group
	s.cancel = cancel
	s.mu.Unlock()

	group.Go(func() error { return s.acceptLoop(ctx, listener) })
	s.logger.Info("fake runtime listening", "socket", s.socketPath)
	return nil
}

// Stop closes the listener and every connection, then waits for all serving
// goroutines to finish.
func (s *Server) Stop() error {
	s.mu.Lock()
	listener := s.listener
	cancel := s.cancel
	group := s.group
	conns := make([]*serverConn, 0, len(s.conns))
	for sc := range s.conns {
		conns = append(conns, sc)
	}
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if listener != nil {
		_ = listener.Close()
	}
	for _, sc := range conns {
		_ = sc.conn.Close()
	}
	if group != nil {
		return group.Wait()
	}
	return nil
}

// Broadcast pushes an unsolicited envelope to every connected client.
func (s *Server) Broadcast(t protocol.MessageType, payload any) {
	msg := protocol.NewMessage(t, payload)

	s.mu.Lock()
	conns := make([]*serverConn, 0, len(s.conns))
	for sc := range s.conns {
		conns = append(conns, sc)
	}
	s.mu.Unlock()

	for _, sc := range conns {
		if err := sc.write(msg); err != nil {
			s.logger.Warn("broadcast write failed", "error", err)
		}
	}
}

// ConnCount reports the number of currently connected clients.
func (s *Server) ConnCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

func (s *Server) acceptLoop(ctx context.Context, listener net.Listener) error {
	for {
		conn, err := listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}

		sc := &serverConn{conn: conn}
		s.mu.Lock()
		s.conns[sc] = struct{}{}
		group := s.group
		s.mu.Unlock()

		group.Go(func() error {
			s.serve(sc)
			return nil
		})
	}
}

// serve handles one client connection until it drops.
func (s *Server) serve(sc *serverConn) {
	defer func() {
		s.mu.Lock()
		delete(s.conns, sc)
		s.mu.Unlock()
		_ = sc.conn.Close()
	}()

	for {
		body, err := protocol.ReadFrame(sc.conn, 0)
		if err != nil {
			return
		}
		msg, err := protocol.DecodeMessage(body)
		if err != nil {
			s.logger.Warn("fake runtime dropping frame", "error", err)
			continue
		}

		switch msg.MessageType {
		case protocol.TypePing:
			s.respond(sc, msg, protocol.TypePong, map[string]any{})

		case protocol.TypeResourceRequest:
			req, err := decodeResourceRequest(msg.Payload)
			if err != nil {
				s.respond(sc, msg, protocol.TypeResourceResponse, &protocol.ResourceResponse{
					Success: false,
					Error:   "malformed resource request: " + err.Error(),
				})
				continue
			}
			s.respond(sc, msg, protocol.TypeResourceResponse, s.lookup(req))

		default:
			s.logger.Debug("fake runtime received envelope",
				"message_type", msg.MessageType,
				"message_id", msg.MessageID,
			)
		}
	}
}

// respond answers a request, echoing its message id for correlation.
func (s *Server) respond(sc *serverConn, req *protocol.Message, t protocol.MessageType, payload any) {
	msg := protocol.NewMessage(t, payload)
	msg.MessageID = req.MessageID
	if err := sc.write(msg); err != nil {
		s.logger.Warn("fake runtime write failed", "error", err)
	}
}

// lookup resolves a resource request against registered handlers and the
// built-in agents listing.
func (s *Server) lookup(req *protocol.ResourceRequest) *protocol.ResourceResponse {
	s.mu.Lock()
	fn := s.resources[req.ResourceType]
	agents := s.agents
	s.mu.Unlock()

	if fn != nil {
		return fn(req)
	}
	if req.ResourceType == "agents" {
		items := make([]any, len(agents))
		for i, a := range agents {
			items[i] = a
		}
		return &protocol.ResourceResponse{
			Success:  true,
			Resource: map[string]any{"items": items},
		}
	}
	return &protocol.ResourceResponse{
		Success: false,
		Error:   "resource not found: " + req.ResourceType,
		Code:    protocol.CodeNotFound,
	}
}

func decodeResourceRequest(payload any) (*protocol.ResourceRequest, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	var req protocol.ResourceRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, err
	}
	if req.ResourceType == "" {
		return nil, errors.New("missing resource_type")
	}
	return &req, nil
}

// serverConn serializes frame writes for one client connection.
type serverConn struct {
	conn    net.Conn
	writeMu sync.Mutex
}

func (sc *serverConn) write(msg *protocol.Message) error {
	frame, err := protocol.EncodeFrame(msg)
	if err != nil {
		return err
	}
	sc.writeMu.Lock()
	defer sc.writeMu.Unlock()
	_, err = sc.conn.Write(frame)
	return err
}
