package bridge

import (
	"fmt"
	"strings"
	"time"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// Port is the slice of an open serial connection the bridge relies on,
// narrowed from go.bug.st/serial.Port so tests can substitute a
// scripted fake.
type Port interface {
	Read(p []byte) (int, error)
	ResetInputBuffer() error
	ResetOutputBuffer() error
	SetDTR(dtr bool) error
	SetRTS(rts bool) error
	Close() error
}

// PortInfo describes one enumerable serial device.
type PortInfo struct {
	Device      string `json:"device"`
	Description string `json:"description"`
	HWID        string `json:"hwid"`
}

// OpenFunc opens a serial device at the given baud rate with a bounded
// read timeout. The manager uses openSerial unless a test swaps it out.
type OpenFunc func(name string, baud int, readTimeout time.Duration) (Port, error)

// EnumerateFunc lists the serial devices visible to the host.
type EnumerateFunc func() ([]PortInfo, error)

// openSerial opens a real device in the 8N1 framing the pad speaks.
// The read timeout doubles as the reader loop's poll interval: a read
// that sees no data returns (0, nil) after this long, letting the loop
// recheck the connection handle.
func openSerial(name string, baud int, readTimeout time.Duration) (Port, error) {
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(name, mode)
	if err != nil {
		return nil, err
	}
	if err := port.SetReadTimeout(readTimeout); err != nil {
		port.Close()
		return nil, err
	}
	return port, nil
}

// enumeratePorts lists host serial devices with USB metadata where the
// platform exposes it. Description and HWID stay empty for devices
// without it, matching what clients already expect from the wire shape.
func enumeratePorts() ([]PortInfo, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("list serial ports: %w", err)
	}
	out := make([]PortInfo, 0, len(details))
	for _, d := range details {
		info := PortInfo{Device: d.Name, Description: d.Product}
		if d.IsUSB {
			info.HWID = fmt.Sprintf("USB VID:PID=%s:%s SER=%s",
				strings.ToUpper(d.VID), strings.ToUpper(d.PID), d.SerialNumber)
		}
		out = append(out, info)
	}
	return out, nil
}
