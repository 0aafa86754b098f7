package bridge

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/padworks/padlink/internal/broadcast"
	"github.com/padworks/padlink/internal/device"
	"github.com/padworks/padlink/internal/infrastructure/config"
	"github.com/padworks/padlink/internal/infrastructure/logging"
	"github.com/padworks/padlink/internal/parser"
)

// Staged close delays. Bluetooth SPP adapters on some hosts get stuck
// until re-paired when the port is closed abruptly, so the close path
// settles, flushes, drops the handshake lines and settles again.
const (
	closeSettleDelay = 150 * time.Millisecond
	closeLineDelay   = 100 * time.Millisecond
)

// Status describes the current connection.
type Status struct {
	Connected bool
	Port      string
	Baud      int
}

// Deps bundles everything the manager needs to run the read pipeline.
type Deps struct {
	Config  config.SerialConfig
	Logger  *logging.Logger
	Parser  *parser.Parser
	Store   *device.StateStore
	History *device.History
	Hub     *broadcast.Hub

	// Archive persists press/release events; nil disables persistence.
	Archive device.Archive

	// OnStatus receives every connection state transition; nil disables
	// notifications. Invoked outside the manager lock so a slow listener
	// cannot stall connection operations.
	OnStatus func(Status)

	// Open and Enumerate override the host serial layer; nil uses the
	// real one. Tests inject fakes here.
	Open      OpenFunc
	Enumerate EnumerateFunc
}

func (d Deps) validate() error {
	switch {
	case d.Logger == nil:
		return fmt.Errorf("bridge: logger is required")
	case d.Parser == nil:
		return fmt.Errorf("bridge: parser is required")
	case d.Store == nil:
		return fmt.Errorf("bridge: state store is required")
	case d.History == nil:
		return fmt.Errorf("bridge: event history is required")
	case d.Hub == nil:
		return fmt.Errorf("bridge: broadcast hub is required")
	}
	return nil
}

// Manager owns the serial connection lifecycle: it opens the device,
// runs exactly one reader loop per connection, and releases the handle
// through the staged close sequence on every exit path.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
//   - At most one connection handle exists at any time; Connect rejects
//     while one is live.
type Manager struct {
	cfg      config.SerialConfig
	logger   *logging.Logger
	parser   *parser.Parser
	store    *device.StateStore
	history  *device.History
	hub      *broadcast.Hub
	archive  device.Archive
	onStatus func(Status)

	open      OpenFunc
	enumerate EnumerateFunc

	lines  atomic.Uint64
	events atomic.Uint64

	mu         sync.Mutex
	port       Port
	portName   string
	baud       int
	readerDone chan struct{}
}

// New creates a manager in the disconnected state.
func New(deps Deps) (*Manager, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	m := &Manager{
		cfg:       deps.Config,
		logger:    deps.Logger.Component("bridge"),
		parser:    deps.Parser,
		store:     deps.Store,
		history:   deps.History,
		hub:       deps.Hub,
		archive:   deps.Archive,
		onStatus:  deps.OnStatus,
		open:      deps.Open,
		enumerate: deps.Enumerate,
	}
	if m.open == nil {
		m.open = openSerial
	}
	if m.enumerate == nil {
		m.enumerate = enumeratePorts
	}
	return m, nil
}

// Ports lists the serial devices visible to the host.
func (m *Manager) Ports() ([]PortInfo, error) {
	return m.enumerate()
}

// Connect opens a serial device and starts the reader loop. An empty
// port name falls back to the configured default port, a non-positive
// baud to the configured default baud.
//
// Parameters:
//   - portName: Device path to open, or "" for the configured default
//   - baud: Line speed, or <= 0 for the configured default
//
// Returns:
//   - Status: The resulting connection state; on ErrAlreadyConnected it
//     names the port already held
//   - error: ErrAlreadyConnected while a handle exists, ErrNoPort when
//     no port was given or configured, or the open failure
func (m *Manager) Connect(portName string, baud int) (Status, error) {
	m.mu.Lock()

	if portName == "" {
		portName = m.cfg.DefaultPort
	}
	if baud <= 0 {
		baud = m.cfg.DefaultBaud
	}
	if portName == "" {
		m.mu.Unlock()
		return Status{}, ErrNoPort
	}

	if m.port != nil {
		st := m.status()
		m.mu.Unlock()
		return st, ErrAlreadyConnected
	}

	readTimeout := time.Duration(m.cfg.ReadTimeoutMs) * time.Millisecond
	port, err := m.open(portName, baud, readTimeout)
	if err != nil {
		m.mu.Unlock()
		return Status{}, fmt.Errorf("bridge: open %s: %w", portName, err)
	}

	// Drop anything the device queued while unattended.
	if err := port.ResetInputBuffer(); err != nil {
		m.logger.Debug("input buffer flush failed", "error", err)
	}
	if err := port.ResetOutputBuffer(); err != nil {
		m.logger.Debug("output buffer flush failed", "error", err)
	}

	m.port = port
	m.portName = portName
	m.baud = baud
	m.readerDone = make(chan struct{})
	go m.readLoop(port, m.readerDone)
	st := m.status()
	m.mu.Unlock()

	m.notifyStatus(st)
	m.logger.Info("serial port connected", "port", portName, "baud", baud)
	return st, nil
}

// Disconnect takes ownership of the handle, releases it through the
// staged close sequence and waits for the reader loop to exit. It is
// idempotent: disconnecting while disconnected is a no-op.
func (m *Manager) Disconnect() error {
	m.mu.Lock()
	port := m.port
	name := m.portName
	done := m.readerDone
	m.port = nil
	m.portName = ""
	m.baud = 0
	m.readerDone = nil
	m.mu.Unlock()

	if port == nil {
		return nil
	}

	err := m.closePort(port)
	if done != nil {
		<-done
	}
	m.notifyStatus(Status{})
	if err != nil {
		m.logger.Warn("serial port closed with error", "port", name, "error", err)
		return err
	}
	m.logger.Info("serial port disconnected", "port", name)
	return nil
}

// Close releases the device if connected. Process shutdown runs through
// this so an exiting host never leaves the adapter half-open.
func (m *Manager) Close() error {
	return m.Disconnect()
}

// UpdateDefaults replaces the fallback port and baud applied when a
// connect request omits them. An active connection keeps the settings
// it was opened with.
func (m *Manager) UpdateDefaults(cfg config.SerialConfig) {
	m.mu.Lock()
	m.cfg = cfg
	m.mu.Unlock()
}

// Status reports the current connection state.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status()
}

// Counters are cumulative pipeline totals since process start. They
// survive disconnects; a reconnect keeps counting.
type Counters struct {
	// Lines is the number of serial lines the parser recognized.
	Lines uint64

	// Events is the number of events handed to the pipeline.
	Events uint64
}

// Counters reports the pipeline totals.
func (m *Manager) Counters() Counters {
	return Counters{Lines: m.lines.Load(), Events: m.events.Load()}
}

func (m *Manager) status() Status {
	return Status{Connected: m.port != nil, Port: m.portName, Baud: m.baud}
}

// notifyStatus delivers a state transition to the registered listener.
func (m *Manager) notifyStatus(st Status) {
	if m.onStatus != nil {
		m.onStatus(st)
	}
}

// closePort runs the staged shutdown: settle, flush both buffers,
// settle, lower DTR and RTS, pause, close, pause. Every step before the
// close itself is best-effort; a dead handle must still reach Close.
func (m *Manager) closePort(port Port) error {
	time.Sleep(closeSettleDelay)
	if err := port.ResetInputBuffer(); err != nil {
		m.logger.Debug("input buffer flush failed", "error", err)
	}
	if err := port.ResetOutputBuffer(); err != nil {
		m.logger.Debug("output buffer flush failed", "error", err)
	}
	time.Sleep(closeSettleDelay)
	if err := port.SetDTR(false); err != nil {
		m.logger.Debug("lowering DTR failed", "error", err)
	}
	if err := port.SetRTS(false); err != nil {
		m.logger.Debug("lowering RTS failed", "error", err)
	}
	time.Sleep(closeLineDelay)
	err := port.Close()
	time.Sleep(closeLineDelay)
	return err
}
