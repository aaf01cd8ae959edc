package printer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/muurk/neptune-screen/internal/logging"
	"github.com/muurk/neptune-screen/internal/moonraker"
	"github.com/muurk/neptune-screen/internal/status"
)

// Client is the subset of the Moonraker client the controller drives.
type Client interface {
	OnNotification(h moonraker.NotificationHandler)
	Connect(ctx context.Context) error
	IsConnected() bool
	Done() <-chan struct{}
	Close() error

	ServerInfo(ctx context.Context) (moonraker.ServerInfo, error)
	Subscribe(ctx context.Context, objects map[string][]string, install func(map[string]any)) (map[string]any, error)
	GCode(ctx context.Context, script string) error
	StartPrint(ctx context.Context, filename string) error
	PausePrint(ctx context.Context) error
	ResumePrint(ctx context.Context) error
	CancelPrint(ctx context.Context) error
	EmergencyStop(ctx context.Context) error
	FileRoots(ctx context.Context) ([]moonraker.FileRoot, error)
	ListFiles(ctx context.Context, root string) ([]moonraker.File, error)
	Metadata(ctx context.Context, filename string) (moonraker.Metadata, error)
}

// DefaultObjects are the printer objects the screen subscribes to. A nil
// attribute list means every attribute.
var DefaultObjects = map[string][]string{
	"toolhead":         nil,
	"print_stats":      nil,
	"fan":              nil,
	"gcode_move":       nil,
	"display_status":   nil,
	"extruder":         nil,
	"heater_bed":       nil,
	"heater_bed_outer": nil,
}

// Controller keeps a status.Store in sync with Moonraker and exposes the
// printer actions the views need.
type Controller struct {
	client  Client
	store   *status.Store
	objects map[string][]string

	mu          sync.Mutex
	ctx         context.Context
	klippyState string
	subscribed  bool
	gcodeRoot   string
}

// New creates a controller feeding store from client. The notification
// handler is installed immediately, so New must be called before Connect.
func New(client Client, store *status.Store) *Controller {
	c := &Controller{
		client:    client,
		store:     store,
		objects:   DefaultObjects,
		ctx:       context.Background(),
		gcodeRoot: DefaultGCodeRoot,
	}
	client.OnNotification(c.handleNotification)
	return c
}

// SetGCodeRoot overrides the fallback gcodes root used when Moonraker does
// not report one.
func (c *Controller) SetGCodeRoot(root string) {
	if root == "" {
		return
	}
	c.mu.Lock()
	c.gcodeRoot = root
	c.mu.Unlock()
}

// Start connects to Moonraker and subscribes if Klippy is already ready.
// A Klippy that is still starting is not an error; Ready keeps checking.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	c.ctx = ctx
	c.mu.Unlock()

	if err := c.client.Connect(ctx); err != nil {
		return err
	}

	if _, err := c.refresh(ctx); err != nil {
		logging.Warn("Initial Klippy state query failed", zap.Error(err))
	}
	return nil
}

// Done is closed when the Moonraker connection is lost.
func (c *Controller) Done() <-chan struct{} {
	return c.client.Done()
}

// Close closes the Moonraker connection.
func (c *Controller) Close() error {
	return c.client.Close()
}

// Ready reports whether the printer can drive the screen: connected, Klippy
// ready and at least one status received.
func (c *Controller) Ready(ctx context.Context) bool {
	if !c.client.IsConnected() {
		return false
	}
	ready, err := c.refresh(ctx)
	if err != nil {
		logging.Debug("Readiness check failed", zap.Error(err))
		return false
	}
	return ready && !c.store.Empty()
}

// KlippyState returns the last Klippy state seen.
func (c *Controller) KlippyState() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.klippyState
}

// refresh queries server.info and subscribes once Klippy is ready.
func (c *Controller) refresh(ctx context.Context) (bool, error) {
	info, err := c.client.ServerInfo(ctx)
	if err != nil {
		return false, err
	}
	c.setKlippyState(info.KlippyState)
	if !info.Ready() {
		return false, nil
	}

	c.mu.Lock()
	subscribed := c.subscribed
	c.mu.Unlock()
	if subscribed {
		return true, nil
	}
	if err := c.subscribe(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Controller) subscribe(ctx context.Context) error {
	// The snapshot is installed on the read goroutine so updates that follow
	// the response merge on top of it.
	_, err := c.client.Subscribe(ctx, c.objects, func(tree map[string]any) {
		c.store.Replace(tree)
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to printer objects: %w", err)
	}

	c.mu.Lock()
	c.subscribed = true
	c.mu.Unlock()
	logging.Info("Subscribed to printer status", zap.Int("objects", len(c.objects)))
	return nil
}

func (c *Controller) setKlippyState(state string) {
	c.mu.Lock()
	changed := c.klippyState != state
	c.klippyState = state
	c.mu.Unlock()
	if changed {
		logging.Info("Klippy state changed", zap.String("state", state))
	}
}

// handleNotification runs on the client's read goroutine, so status updates
// are merged in arrival order. It must not issue calls synchronously.
func (c *Controller) handleNotification(method string, params json.RawMessage) {
	switch method {
	case moonraker.NotifyStatusUpdate:
		delta, err := decodeStatusUpdate(params)
		if err != nil {
			logging.Warn("Discarding malformed status update", zap.Error(err))
			return
		}
		c.store.Merge(delta)

	case moonraker.NotifyKlippyReady:
		c.setKlippyState(moonraker.KlippyReady)
		c.mu.Lock()
		c.subscribed = false
		ctx := c.ctx
		c.mu.Unlock()
		go func() {
			if err := c.subscribe(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logging.Warn("Resubscribe after Klippy restart failed", zap.Error(err))
			}
		}()

	case moonraker.NotifyKlippyShutdown:
		c.setKlippyState(moonraker.KlippyShutdown)

	case moonraker.NotifyKlippyDisconnect:
		c.setKlippyState(moonraker.KlippyDisconnected)
		c.mu.Lock()
		c.subscribed = false
		c.mu.Unlock()
	}
}

// decodeStatusUpdate extracts the delta from notify_status_update params,
// which are [status, eventtime].
func decodeStatusUpdate(params json.RawMessage) (status.Tree, error) {
	var args []json.RawMessage
	if err := json.Unmarshal(params, &args); err != nil {
		return nil, err
	}
	if len(args) == 0 {
		return nil, errors.New("status update has no params")
	}
	var delta status.Tree
	if err := json.Unmarshal(args[0], &delta); err != nil {
		return nil, err
	}
	return delta, nil
}

// Status returns the current status snapshot.
func (c *Controller) Status() status.Snapshot {
	return c.store.Snapshot()
}

// Printing reports whether a print is running or paused.
func (c *Controller) Printing() bool {
	state, _ := c.Status().String("print_stats", "state")
	return state == "printing" || state == "paused"
}

// GCode runs a G-code script.
func (c *Controller) GCode(ctx context.Context, script string) error {
	logging.Debug("Sending gcode", zap.String("script", script))
	return c.client.GCode(ctx, script)
}

// StartPrint starts printing filename.
func (c *Controller) StartPrint(ctx context.Context, filename string) error {
	logging.Info("Starting print", zap.String("filename", filename))
	return c.client.StartPrint(ctx, filename)
}

// TogglePause pauses a running print or resumes a paused one.
func (c *Controller) TogglePause(ctx context.Context) error {
	if state, _ := c.Status().String("print_stats", "state"); state == "paused" {
		return c.client.ResumePrint(ctx)
	}
	return c.client.PausePrint(ctx)
}

// CancelPrint cancels the current print.
func (c *Controller) CancelPrint(ctx context.Context) error {
	logging.Info("Cancelling print")
	return c.client.CancelPrint(ctx)
}

// EmergencyStop halts the printer.
func (c *Controller) EmergencyStop(ctx context.Context) error {
	logging.Warn("Emergency stop requested from screen")
	return c.client.EmergencyStop(ctx)
}
