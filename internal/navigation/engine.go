package navigation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/neptune-screen/internal/logging"
	"github.com/muurk/neptune-screen/internal/protocol"
	"github.com/muurk/neptune-screen/internal/routes"
	"github.com/muurk/neptune-screen/internal/status"
)

const (
	// DefaultTickInterval paces projection and input handling
	DefaultTickInterval = 500 * time.Millisecond

	// DefaultReadyPollInterval paces the startup readiness poll
	DefaultReadyPollInterval = time.Second

	// DefaultBootPage is shown while waiting for the printer
	DefaultBootPage = 109

	// DefaultHomePage is the root of the page history
	DefaultHomePage = 1
)

// ErrTransportLost is returned by Run when the display or Moonraker link ends.
var ErrTransportLost = errors.New("transport lost")

// Display is the serial link as seen by the engine.
type Display interface {
	Send(ctx context.Context, commands ...string) error
	TryReceive() (protocol.Event, bool)
	Done() <-chan struct{}
}

// Printer is the status source as seen by the engine.
type Printer interface {
	Status() status.Snapshot
	Done() <-chan struct{}
}

// Dispatcher routes one input event. *routes.Router implements it.
type Dispatcher interface {
	Dispatch(ctx context.Context, ev protocol.Event) error
}

// ReadyFunc reports whether the printer side is ready to drive the screen.
type ReadyFunc func(ctx context.Context) bool

// Config tunes the engine. Zero values take the defaults.
type Config struct {
	TickInterval      time.Duration
	ReadyPollInterval time.Duration
	BootPage          int
	HomePage          int
}

// Engine owns the page history and the outbound stream. Run is its only
// loop; views call back into Navigate, Back and Send from within it.
type Engine struct {
	config  Config
	display Display
	printer Printer
	router  Dispatcher

	mu      sync.Mutex
	history []int
}

// New creates an engine. Bind must be called before Run.
func New(config Config, display Display, printer Printer) *Engine {
	if config.TickInterval <= 0 {
		config.TickInterval = DefaultTickInterval
	}
	if config.ReadyPollInterval <= 0 {
		config.ReadyPollInterval = DefaultReadyPollInterval
	}
	if config.BootPage == 0 {
		config.BootPage = DefaultBootPage
	}
	if config.HomePage == 0 {
		config.HomePage = DefaultHomePage
	}
	return &Engine{
		config:  config,
		display: display,
		printer: printer,
	}
}

// Bind sets the router input events are dispatched to. The router is built
// from views that need the engine, so it cannot be passed to New.
func (e *Engine) Bind(router Dispatcher) {
	e.router = router
}

// Navigate shows page. With record set the page is pushed onto the history
// unless it is already on top. A page frame is sent either way.
func (e *Engine) Navigate(ctx context.Context, page int, record bool) error {
	e.mu.Lock()
	if record && (len(e.history) == 0 || e.history[len(e.history)-1] != page) {
		e.history = append(e.history, page)
	}
	history := append([]int(nil), e.history...)
	e.mu.Unlock()

	logging.LogNavigation(page, record, history)
	return e.display.Send(ctx, protocol.Page(page))
}

// Back pops the current page and shows the one below it without recording.
// At the root it does nothing.
func (e *Engine) Back(ctx context.Context) error {
	e.mu.Lock()
	if len(e.history) <= 1 {
		e.mu.Unlock()
		logging.Debug("Already at the root page")
		return nil
	}
	e.history = e.history[:len(e.history)-1]
	page := e.history[len(e.history)-1]
	e.mu.Unlock()

	return e.Navigate(ctx, page, false)
}

// Send passes commands through to the display.
func (e *Engine) Send(ctx context.Context, commands ...string) error {
	return e.display.Send(ctx, commands...)
}

// History returns a copy of the page history, oldest first.
func (e *Engine) History() []int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]int(nil), e.history...)
}

// Startup shows the boot page, polls ready until it reports true, shows the
// home page and runs the loop. The history is rooted at HomePage even when
// home shows an unrecorded page. The poll gives way to cancellation and to
// transport loss.
func (e *Engine) Startup(ctx context.Context, ready ReadyFunc, home func(ctx context.Context) error) error {
	if err := e.Navigate(ctx, e.config.BootPage, false); err != nil {
		logging.Warn("Failed to show boot page", zap.Error(err))
	}

	if err := e.waitReady(ctx, ready); err != nil {
		return err
	}
	logging.Info("Printer ready")

	if err := home(ctx); err != nil {
		logging.Warn("Failed to show home page", zap.Error(err))
	}

	// Starting during a print rests on an unrecorded status page.
	e.mu.Lock()
	if len(e.history) == 0 {
		e.history = append(e.history, e.config.HomePage)
	}
	e.mu.Unlock()
	return e.Run(ctx)
}

func (e *Engine) waitReady(ctx context.Context, ready ReadyFunc) error {
	if ready(ctx) {
		return nil
	}

	ticker := time.NewTicker(e.config.ReadyPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-e.display.Done():
			return fmt.Errorf("%w: display", ErrTransportLost)
		case <-e.printer.Done():
			return fmt.Errorf("%w: moonraker", ErrTransportLost)
		case <-ticker.C:
			if ready(ctx) {
				return nil
			}
			logging.Debug("Waiting for printer")
		}
	}
}

// Run drives the screen until ctx is cancelled or a transport is lost. Each
// tick projects the status first and then handles at most one queued input.
// Failures of single commands are logged and never end the loop.
func (e *Engine) Run(ctx context.Context) error {
	if e.router == nil {
		return errors.New("navigation: no router bound")
	}

	ticker := time.NewTicker(e.config.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-e.display.Done():
			return fmt.Errorf("%w: display", ErrTransportLost)
		case <-e.printer.Done():
			return fmt.Errorf("%w: moonraker", ErrTransportLost)
		case <-ticker.C:
			e.Tick(ctx)
		}
	}
}

// Tick performs one loop iteration: project, then drain and dispatch one event.
func (e *Engine) Tick(ctx context.Context) {
	if cmds := Project(e.printer.Status()); len(cmds) > 0 {
		if err := e.display.Send(ctx, cmds...); err != nil {
			logging.Warn("Status projection failed", zap.Error(err))
		}
	}

	ev, ok := e.display.TryReceive()
	if !ok {
		return
	}
	logging.Debug("Handling display input", zap.Stringer("event", ev))

	if err := e.router.Dispatch(ctx, ev); err != nil {
		if errors.Is(err, routes.ErrUnmapped) {
			logging.Debug("Ignoring unmapped input", zap.Error(err))
			return
		}
		logging.Warn("Display input failed", zap.Error(err))
	}
}
