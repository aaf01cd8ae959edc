package moonraker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/muurk/neptune-screen/internal/logging"
)

const (
	// DefaultPort is Moonraker's default HTTP/websocket port
	DefaultPort = 7125

	// DefaultDialTimeout bounds the websocket handshake
	DefaultDialTimeout = 10 * time.Second

	// DefaultCallTimeout applies to calls whose context has no deadline
	DefaultCallTimeout = 30 * time.Second

	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next message or pong from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size accepted from Moonraker. File listings can be large.
	maxMessageSize = 8 << 20
)

// NotificationHandler receives server-initiated notifications in arrival
// order. It runs on the read goroutine and must not call back into the
// client synchronously.
type NotificationHandler func(method string, params json.RawMessage)

// Config holds client connection settings
type Config struct {
	Host        string
	Port        int
	DialTimeout time.Duration
	CallTimeout time.Duration
}

// URL returns the websocket endpoint for cfg.
func (cfg Config) URL() string {
	port := cfg.Port
	if port == 0 {
		port = DefaultPort
	}
	u := url.URL{
		Scheme: "ws",
		Host:   net.JoinHostPort(cfg.Host, strconv.Itoa(port)),
		Path:   "/websocket",
	}
	return u.String()
}

// Client is a JSON-RPC 2.0 client for the Moonraker websocket API.
type Client struct {
	config  Config
	dialer  *websocket.Dialer
	handler NotificationHandler

	conn    *websocket.Conn
	writeMu sync.Mutex

	pendingMu sync.Mutex
	pending   map[int64]*pendingCall

	nextID    atomic.Int64
	connected atomic.Bool

	done      chan struct{}
	closeOnce sync.Once
	errMu     sync.Mutex
	err       error
}

// NewClient creates a client; call Connect to open the websocket.
func NewClient(config Config) *Client {
	if config.DialTimeout == 0 {
		config.DialTimeout = DefaultDialTimeout
	}
	if config.CallTimeout == 0 {
		config.CallTimeout = DefaultCallTimeout
	}
	return &Client{
		config:  config,
		dialer:  &websocket.Dialer{HandshakeTimeout: config.DialTimeout},
		pending: make(map[int64]*pendingCall),
		done:    make(chan struct{}),
	}
}

// OnNotification installs the notification handler. Call before Connect.
func (c *Client) OnNotification(h NotificationHandler) {
	c.handler = h
}

// Endpoint returns the websocket URL the client connects to.
func (c *Client) Endpoint() string {
	return c.config.URL()
}

// Connect dials Moonraker and starts the read and keepalive goroutines.
func (c *Client) Connect(ctx context.Context) error {
	endpoint := c.config.URL()

	conn, _, err := c.dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return &ConnectionError{Endpoint: endpoint, Err: err}
	}
	c.conn = conn
	c.connected.Store(true)
	logging.LogConnection(endpoint, "websocket_connected")

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	go c.readPump()
	go c.keepalive()
	return nil
}

// IsConnected reports whether the websocket is open.
func (c *Client) IsConnected() bool {
	return c.connected.Load()
}

// Done is closed when the connection is lost or closed.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Err returns the reason the connection ended, if it has.
func (c *Client) Err() error {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	return c.err
}

// Close closes the websocket. Pending calls fail with ErrConnectionLost.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	c.writeMu.Lock()
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
	c.writeMu.Unlock()
	c.shutdown(ErrClosed)
	return c.conn.Close()
}

// Call invokes method with params and decodes the result into result, which
// may be nil to discard it.
func (c *Client) Call(ctx context.Context, method string, params any, result any) error {
	return c.call(ctx, method, params, result, nil)
}

// pendingCall is a call waiting for its response. A non-nil apply runs on the
// read goroutine before any later message is handled.
type pendingCall struct {
	ch    chan response
	apply func(json.RawMessage) error
}

func (c *Client) call(ctx context.Context, method string, params any, result any, apply func(json.RawMessage) error) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.CallTimeout)
		defer cancel()
	}

	id := c.nextID.Add(1)
	p := &pendingCall{ch: make(chan response, 1), apply: apply}

	c.pendingMu.Lock()
	c.pending[id] = p
	c.pendingMu.Unlock()
	defer func() {
		c.pendingMu.Lock()
		delete(c.pending, id)
		c.pendingMu.Unlock()
	}()

	req := request{JSONRPC: "2.0", Method: method, Params: params, ID: id}
	if err := c.write(req); err != nil {
		return fmt.Errorf("failed to send %s: %w", method, err)
	}
	logging.LogRPC("sent", method, id)

	select {
	case resp := <-p.ch:
		if resp.Error != nil {
			return resp.Error
		}
		if resp.applyErr != nil {
			return fmt.Errorf("failed to apply %s result: %w", method, resp.applyErr)
		}
		if result == nil || len(resp.Result) == 0 {
			return nil
		}
		if err := json.Unmarshal(resp.Result, result); err != nil {
			return fmt.Errorf("failed to decode %s result: %w", method, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", method, ctx.Err())
	case <-c.done:
		return fmt.Errorf("%s: %w", method, ErrConnectionLost)
	}
}

func (c *Client) write(v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(v)
}

// readPump delivers responses to waiting calls and notifications to the
// handler until the connection fails.
func (c *Client) readPump() {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logging.Error("Moonraker websocket read failed", zap.Error(err))
			}
			c.shutdown(fmt.Errorf("%w: %v", ErrConnectionLost, err))
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))

		var env envelope
		if err := json.Unmarshal(data, &env); err != nil {
			logging.Warn("Discarding undecodable Moonraker message",
				zap.Error(err),
				zap.Int("length", len(data)),
			)
			continue
		}

		if env.Method != "" {
			if c.handler != nil {
				c.handler(env.Method, env.Params)
			}
			continue
		}

		if env.ID == nil {
			continue
		}
		logging.LogRPC("received", "", *env.ID)

		c.pendingMu.Lock()
		p, ok := c.pending[*env.ID]
		c.pendingMu.Unlock()
		if !ok {
			continue
		}
		resp := response{Result: env.Result, Error: env.Error}
		if p.apply != nil && resp.Error == nil {
			resp.applyErr = p.apply(env.Result)
		}
		p.ch <- resp
	}
}

func (c *Client) keepalive() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.writeMu.Lock()
			err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
			c.writeMu.Unlock()
			if err != nil {
				c.shutdown(fmt.Errorf("%w: ping: %v", ErrConnectionLost, err))
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *Client) shutdown(reason error) {
	c.closeOnce.Do(func() {
		c.errMu.Lock()
		c.err = reason
		c.errMu.Unlock()
		c.connected.Store(false)
		close(c.done)
		if !errors.Is(reason, ErrClosed) {
			logging.LogConnection(c.config.URL(), "websocket_lost")
		}
	})
}
