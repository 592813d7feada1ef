package main

import (
	"fmt"
	"time"

	"go.bug.st/serial"

	"github.com/hmolavi/PlantProtector/comm"
)

// serialReadTimeout bounds each port read so status polls return idle
// instead of blocking forever.
const serialReadTimeout = 50 * time.Millisecond

// serialBus adapts a UART to the transport's Bus interface.
//
// The link has no chip-select line, so transfer shapes map to the byte
// stream as follows: frames and control bytes are written verbatim, reply
// frames are read until full, and a status poll reads one byte without
// writing anything — the station pushes its ACK/NACK unsolicited and the
// poll byte stays off the wire. A timed-out read leaves idle 0x00 bytes,
// which the transport treats as "no status yet".
type serialBus struct {
	port serial.Port
}

func openSerialBus(portName string, baudRate int) (*serialBus, error) {
	if portName == "" {
		return nil, fmt.Errorf("serial port not specified (use --port)")
	}

	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("opening serial port %s: %w", portName, err)
	}

	if err := port.SetReadTimeout(serialReadTimeout); err != nil {
		port.Close()

		return nil, fmt.Errorf("configuring serial port %s: %w", portName, err)
	}

	return &serialBus{port: port}, nil
}

var _ comm.Bus = (*serialBus)(nil)

func (b *serialBus) Transfer(tx, rx []byte) error {
	if len(tx) > 0 && len(rx) == 0 {
		if len(tx) == comm.ChunkEncodedSize {
			// A new request frame opens a fresh exchange; anything still
			// buffered is a stale status or reply from an abandoned one.
			if err := b.port.ResetInputBuffer(); err != nil {
				return fmt.Errorf("serial flush: %w", err)
			}
		}
		if _, err := b.port.Write(tx); err != nil {
			return fmt.Errorf("serial write: %w", err)
		}
	}

	if len(rx) > 0 {
		return b.read(rx)
	}

	return nil
}

// read fills rx from the port, stopping early on a read timeout and
// leaving the remainder zeroed.
func (b *serialBus) read(rx []byte) error {
	for i := range rx {
		rx[i] = 0
	}

	for filled := 0; filled < len(rx); {
		n, err := b.port.Read(rx[filled:])
		if err != nil {
			return fmt.Errorf("serial read: %w", err)
		}
		if n == 0 {
			return nil // timeout, leave idle bytes
		}
		filled += n
	}

	return nil
}

func (b *serialBus) Close() error {
	return b.port.Close()
}
