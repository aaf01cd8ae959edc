package display

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"go.bug.st/serial"
	"go.uber.org/zap"

	"github.com/muurk/neptune-screen/internal/logging"
	"github.com/muurk/neptune-screen/internal/protocol"
)

const (
	// DefaultDevice is the screen UART on the Neptune 4 mainboard
	DefaultDevice = "/dev/ttyS1"

	// DefaultBaudRate of the TJC screen
	DefaultBaudRate = 115200

	// DefaultQueueSize bounds the inbound event queue
	DefaultQueueSize = 32
)

// ErrClosed is the reason recorded when Close was called.
var ErrClosed = errors.New("display: closed")

// Config holds serial port settings.
type Config struct {
	Device      string
	BaudRate    int
	SettleDelay time.Duration
	QueueSize   int
}

func (c Config) withDefaults() Config {
	if c.Device == "" {
		c.Device = DefaultDevice
	}
	if c.BaudRate == 0 {
		c.BaudRate = DefaultBaudRate
	}
	if c.SettleDelay == 0 {
		c.SettleDelay = protocol.DefaultSettleDelay
	}
	if c.QueueSize <= 0 {
		c.QueueSize = DefaultQueueSize
	}
	return c
}

// Display is the serial link to the touchscreen. Inbound frames are decoded
// on a reader goroutine into a bounded FIFO queue; writes are fire-and-forget
// followed by the settle delay.
type Display struct {
	port   io.ReadWriteCloser
	config Config
	events chan protocol.Event

	writeMu sync.Mutex

	done      chan struct{}
	closeOnce sync.Once
	errMu     sync.Mutex
	err       error
}

// Open opens the serial device and starts reading from it.
func Open(config Config) (*Display, error) {
	config = config.withDefaults()

	port, err := serial.Open(config.Device, &serial.Mode{
		BaudRate: config.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, openError(config.Device, err)
	}

	// The screen misbehaves with RTS asserted.
	if err := port.SetRTS(false); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("failed to clear RTS on %s: %w", config.Device, err)
	}

	logging.LogConnection(config.Device, "serial_opened")
	return NewWithPort(port, config), nil
}

func openError(device string, err error) error {
	if portErrorCode(err) == serial.PortNotFound {
		if ports, listErr := serial.GetPortsList(); listErr == nil && len(ports) > 0 {
			return fmt.Errorf("serial port %s not found (available: %s): %w",
				device, strings.Join(ports, ", "), err)
		}
	}
	return fmt.Errorf("failed to open serial port %s: %w", device, err)
}

// portErrorCode returns the serial error code carried by err, or -1.
func portErrorCode(err error) serial.PortErrorCode {
	var ptr *serial.PortError
	if errors.As(err, &ptr) {
		return ptr.Code()
	}
	var val serial.PortError
	if errors.As(err, &val) {
		return val.Code()
	}
	return -1
}

// IsDisconnect reports whether err means the device went away rather than
// being misconfigured.
func IsDisconnect(err error) bool {
	if err == nil {
		return false
	}
	switch portErrorCode(err) {
	case serial.PortNotFound, serial.PortClosed, serial.InvalidSerialPort:
		return true
	}
	if errors.Is(err, io.EOF) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "input/output error") ||
		strings.Contains(msg, "no such device") ||
		strings.Contains(msg, "broken pipe")
}

// NewWithPort wraps an already open port. Used by Open and by tests.
func NewWithPort(port io.ReadWriteCloser, config Config) *Display {
	config = config.withDefaults()
	d := &Display{
		port:   port,
		config: config,
		events: make(chan protocol.Event, config.QueueSize),
		done:   make(chan struct{}),
	}
	go d.readLoop()
	return d
}

// Send writes commands as one burst and then waits the settle delay. It
// never waits for an acknowledgement from the screen.
func (d *Display) Send(ctx context.Context, commands ...string) error {
	if len(commands) == 0 {
		return nil
	}
	select {
	case <-d.done:
		return fmt.Errorf("display send: %w", d.Err())
	default:
	}

	data := protocol.Encode(commands...)

	d.writeMu.Lock()
	defer d.writeMu.Unlock()

	logging.LogDisplayCommands(commands)
	logging.LogRawBytes("serial_tx", data)
	if _, err := d.port.Write(data); err != nil {
		return fmt.Errorf("display write: %w", err)
	}

	timer := time.NewTimer(d.config.SettleDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Events returns the inbound event queue.
func (d *Display) Events() <-chan protocol.Event {
	return d.events
}

// TryReceive pops the oldest queued event without blocking.
func (d *Display) TryReceive() (protocol.Event, bool) {
	select {
	case ev := <-d.events:
		return ev, true
	default:
		return protocol.Event{}, false
	}
}

// Done is closed when the port fails or is closed.
func (d *Display) Done() <-chan struct{} {
	return d.done
}

// Err returns the reason the link ended, if it has.
func (d *Display) Err() error {
	d.errMu.Lock()
	defer d.errMu.Unlock()
	return d.err
}

// Close closes the port and stops the reader.
func (d *Display) Close() error {
	d.shutdown(ErrClosed)
	return d.port.Close()
}

func (d *Display) readLoop() {
	scanner := bufio.NewScanner(d.port)
	scanner.Split(protocol.ScanFrames)

	for scanner.Scan() {
		frame := scanner.Bytes()
		logging.LogRawBytes("serial_rx", frame)

		ev, err := protocol.Decode(frame)
		if err != nil {
			logging.Warn("Discarding undecodable display frame", zap.Error(err))
			continue
		}
		if ev.IsAck() {
			continue
		}

		select {
		case d.events <- ev:
		default:
			logging.Warn("Display event queue full, dropping input",
				zap.Stringer("event", ev),
				zap.Int("queue_size", cap(d.events)),
			)
		}
	}

	err := scanner.Err()
	if err == nil {
		err = io.EOF
	}
	d.shutdown(fmt.Errorf("display read: %w", err))
}

func (d *Display) shutdown(reason error) {
	d.closeOnce.Do(func() {
		d.errMu.Lock()
		d.err = reason
		d.errMu.Unlock()
		close(d.done)
		if !errors.Is(reason, ErrClosed) {
			logging.Error("Display link lost",
				zap.String("device", d.config.Device),
				zap.Bool("disconnected", IsDisconnect(reason)),
				zap.Error(reason),
			)
		}
	})
}
