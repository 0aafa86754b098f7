package bridge

import (
	"bytes"
	"context"
	"errors"
	"strings"

	"github.com/padworks/padlink/internal/device"
)

// readBufferSize is the chunk size for each serial read.
const readBufferSize = 1024

// readLoop pulls bytes off the port, splits them into lines and feeds
// each line through the parse/apply/emit pipeline. It exits when the
// handle it was started with is no longer the manager's current one,
// or when a read fails. Reads time out at the configured interval and
// return (0, nil), so a concurrent disconnect is observed within one
// timeout even on a silent device.
func (m *Manager) readLoop(port Port, done chan struct{}) {
	defer close(done)

	buf := make([]byte, readBufferSize)
	var partial []byte

	for {
		m.mu.Lock()
		current := m.port
		m.mu.Unlock()
		if current != port {
			return
		}

		n, err := port.Read(buf)
		if n > 0 {
			partial = append(partial, buf[:n]...)
			for {
				idx := bytes.IndexByte(partial, '\n')
				if idx < 0 {
					break
				}
				line := string(bytes.ToValidUTF8(partial[:idx], nil))
				partial = partial[idx+1:]
				m.handleLine(strings.TrimSuffix(line, "\r"))
			}
		}
		if err != nil {
			m.handleReadFailure(port, err)
			return
		}
	}
}

// handleReadFailure transitions to disconnected after a failed read.
// When the handle was already taken by Disconnect the failure is just
// the reader observing its own port being closed, and nothing is left
// to do.
func (m *Manager) handleReadFailure(port Port, err error) {
	m.mu.Lock()
	stillOurs := m.port == port
	if stillOurs {
		m.port = nil
		m.portName = ""
		m.baud = 0
		m.readerDone = nil
	}
	m.mu.Unlock()

	if !stillOurs {
		return
	}
	m.logger.Warn("serial read failed, disconnecting", "error", err)
	if cerr := m.closePort(port); cerr != nil {
		m.logger.Debug("close after read failure", "error", cerr)
	}
	m.notifyStatus(Status{})
}

// handleLine runs one parsed line through the pipeline. Direct events
// fold into the stored vector before emission so later full-state
// updates diff against what clients have already seen; state updates
// emit one event per changed index; orientation angles overwrite only
// the fields present.
func (m *Manager) handleLine(line string) {
	upd, ok := m.parser.Parse(line)
	if !ok {
		return
	}
	m.lines.Add(1)

	for _, ev := range upd.Events {
		m.store.RecordEvent(ev)
		m.emit(ev)
	}
	if upd.Buttons != nil {
		for _, change := range m.store.ApplyState(upd.Buttons) {
			m.emit(change.Event())
		}
	}
	if upd.HasOrientation() {
		m.store.ApplyOrientation(upd.Pitch, upd.Roll)
	}
}

// emit records one event into the history ring and hands it to the
// broadcast queue, in that order, then archives it when an archive is
// attached.
func (m *Manager) emit(ev device.Event) {
	m.events.Add(1)
	m.history.Push(ev)
	m.hub.Push(ev)
	if m.archive != nil {
		if err := m.archive.Record(context.Background(), ev); err != nil && !errors.Is(err, device.ErrNotArchivable) {
			m.logger.Debug("event archive write failed", "error", err)
		}
	}
}
