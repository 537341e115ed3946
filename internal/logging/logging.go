package logging

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// LoggerStderr tags subprocess stderr.
	LoggerStderr = "stderr"
	// LoggerApp tags in-process application logs.
	LoggerApp = "app"
)

// Nop returns a logger that discards all output.
func Nop() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// OrNop returns log, or a discarding logger when log is nil.
func OrNop(log *slog.Logger) *slog.Logger {
	if log == nil {
		return Nop()
	}

	return log
}

// Channel is a bounded queue of log notifications. Sends never block: when
// the buffer is full the message is dropped and counted.
type Channel struct {
	mu      sync.RWMutex
	ch      chan *mcp.LoggingMessageParams
	closed  bool
	dropped atomic.Int64
}

// NewChannel creates a channel holding up to buffer pending messages.
func NewChannel(buffer int) *Channel {
	return &Channel{ch: make(chan *mcp.LoggingMessageParams, max(buffer, 1))}
}

// Send enqueues p. It reports false when p was dropped because the
// channel is full or closed.
func (c *Channel) Send(p *mcp.LoggingMessageParams) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return false
	}

	select {
	case c.ch <- p:
		return true
	default:
		c.dropped.Add(1)

		return false
	}
}

// Receive returns the receiving end. It is closed by Close.
func (c *Channel) Receive() <-chan *mcp.LoggingMessageParams {
	return c.ch
}

// Dropped returns the number of messages discarded because the buffer was full.
func (c *Channel) Dropped() int64 {
	return c.dropped.Load()
}

// Close stops accepting messages. Pending messages can still be received.
func (c *Channel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.ch)
	}
}

// Params builds a notification for data.
func Params(level mcp.LoggingLevel, logger string, data any) *mcp.LoggingMessageParams {
	return &mcp.LoggingMessageParams{
		Level:  level,
		Logger: logger,
		Data:   data,
	}
}

// Sink receives forwarded notifications. *mcp.ServerSession implements it.
type Sink interface {
	Log(ctx context.Context, params *mcp.LoggingMessageParams) error
}

// Forward drains c into sink until ctx is done or c is closed. Delivery
// errors are logged and do not stop forwarding.
func Forward(ctx context.Context, c *Channel, sink Sink, log *slog.Logger) error {
	log = OrNop(log).With("component", "log_forwarder")

	for {
		select {
		case <-ctx.Done():
			return nil
		case p, ok := <-c.Receive():
			if !ok {
				return nil
			}

			if err := sink.Log(ctx, p); err != nil {
				log.Debug("Failed to forward log message", "logger", p.Logger, "error", err)
			}
		}
	}
}
