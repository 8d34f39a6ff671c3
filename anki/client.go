package anki

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Client issues envelope calls against one endpoint descriptor. Construct
// with New for an explicit descriptor, or Default for one that follows the
// process-wide connection.
type Client struct {
	conn      *Connection // nil: resolve the process-wide default per call
	transport *httpTransport
	logger    zerolog.Logger
}

// Option configures a Client at construction time.
type Option func(*Client)

// WithLogger attaches a logger; Invoke emits one debug line per call.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithHTTPClient overrides the HTTP client used for round trips, e.g. to set
// a timeout. The protocol layer itself never retries or cancels.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.transport = newHTTPTransport(hc) }
}

// New returns a client bound to one endpoint descriptor.
func New(conn Connection, opts ...Option) *Client {
	c := &Client{
		conn:      &conn,
		transport: newHTTPTransport(nil),
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Default returns a client that resolves the process-wide descriptor on
// every call. Calls made before a successful Connect or TryConnect fail with
// a *CallError wrapping ErrNotConnected.
func Default(opts ...Option) *Client {
	c := &Client{
		transport: newHTTPTransport(nil),
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) connection() (Connection, error) {
	if c.conn != nil {
		return *c.conn, nil
	}
	return Current()
}

// Invoke performs one action round trip and returns the raw result payload.
// It is the single chokepoint every typed operation funnels through:
// connection resolution, transport, decode, and service-reported failures
// all come back as *CallError tagged with the action.
func (c *Client) Invoke(ctx context.Context, action string, params any) (json.RawMessage, error) {
	conn, err := c.connection()
	if err != nil {
		return nil, callErrorf(action, err, "%v", err)
	}
	body, err := encodeRequest(action, conn.Version, params)
	if err != nil {
		return nil, callErrorf(action, err, "encode failure: %v", err)
	}

	start := time.Now()
	reply, err := c.transport.send(ctx, conn.Endpoint(), body)
	if err != nil {
		return nil, callErrorf(action, err, "transport failure: %v", err)
	}
	env, err := decodeResponse(reply)
	if err != nil {
		return nil, callErrorf(action, err, "decode failure: %v", err)
	}
	if env.Error != nil {
		return nil, &CallError{Action: action, Message: *env.Error}
	}

	c.logger.Debug().
		Str("action", action).
		Dur("duration", time.Since(start)).
		Int("result_bytes", len(env.Result)).
		Msg("anki_call")
	return env.Result, nil
}

// invoke runs one action and decodes the result payload into T. A null or
// absent result yields T's zero value.
func invoke[T any](ctx context.Context, c *Client, action string, params any) (T, error) {
	var out T
	raw, err := c.Invoke(ctx, action, params)
	if err != nil {
		return out, err
	}
	if len(raw) == 0 || string(raw) == "null" {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, callErrorf(action, ErrMalformedReply, "decode failure: %v", err)
	}
	return out, nil
}

// invokeNoResult runs one action whose result payload carries no information.
func invokeNoResult(ctx context.Context, c *Client, action string, params any) error {
	_, err := c.Invoke(ctx, action, params)
	return err
}
