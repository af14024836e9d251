// ABOUTME: Shared command context: socket resolution, config loading, logger setup.
// ABOUTME: Gives every subcommand a connected client through withClient.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/2389/kumeo-client/client"
	"github.com/2389/kumeo-client/internal/config"
)

type commandContext struct {
	socketFlag  *string
	configFlag  *string
	timeoutFlag *string
	verboseFlag *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(socketFlag, configFlag, timeoutFlag *string, verboseFlag *bool) *commandContext {
	return &commandContext{
		socketFlag:  socketFlag,
		configFlag:  configFlag,
		timeoutFlag: timeoutFlag,
		verboseFlag: verboseFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		if path == "" {
			c.config = config.Default()
			return
		}
		cfg, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// socketPath resolves the runtime socket location.
// Priority: --socket flag > KUMEO_SOCKET env var > config file > built-in default.
func (c *commandContext) socketPath() (string, error) {
	if c.socketFlag != nil && strings.TrimSpace(*c.socketFlag) != "" {
		return strings.TrimSpace(*c.socketFlag), nil
	}
	if envPath := os.Getenv("KUMEO_SOCKET"); envPath != "" {
		return envPath, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return "", err
	}
	return cfg.Socket.Path, nil
}

func (c *commandContext) timeout() (time.Duration, error) {
	if c.timeoutFlag != nil && strings.TrimSpace(*c.timeoutFlag) != "" {
		d, err := time.ParseDuration(strings.TrimSpace(*c.timeoutFlag))
		if err != nil {
			return 0, fmt.Errorf("parsing --timeout: %w", err)
		}
		return d, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return 0, err
	}
	return cfg.Socket.Timeout, nil
}

func (c *commandContext) logger() *slog.Logger {
	cfg, err := c.ensureConfig()
	if err != nil {
		cfg = config.Default()
	}

	var level slog.Level
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	if c.verboseFlag != nil && *c.verboseFlag {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Logging.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

// withClient connects to the runtime, runs fn, and always closes the
// connection afterwards.
func (c *commandContext) withClient(ctx context.Context, fn func(*client.RuntimeClient) error) error {
	socket, err := c.socketPath()
	if err != nil {
		return err
	}
	timeout, err := c.timeout()
	if err != nil {
		return err
	}

	rc := client.New(
		client.WithSocketPath(socket),
		client.WithTimeout(timeout),
		client.WithLogger(c.logger()),
	)
	if err := rc.Connect(ctx); err != nil {
		return wrapDialError(err, socket)
	}
	defer rc.Close()
	return fn(rc)
}

func wrapDialError(err error, socket string) error {
	switch {
	case errors.Is(err, syscall.ENOENT) || os.IsNotExist(err):
		return fmt.Errorf("connect to runtime: socket %s not found; is the runtime running?", socket)
	case errors.Is(err, syscall.ECONNREFUSED):
		return fmt.Errorf("connect to runtime: socket %s refused the connection; verify the runtime is running", socket)
	default:
		return fmt.Errorf("connect to runtime: %w", err)
	}
}
