package comm

// Bus is the physical byte-transfer primitive supplied by the platform: a
// synchronous serial exchange framed by a dedicated select line, clocked
// MSB-first in mode 0.
//
// Transfer shifts bytes in both directions for the duration of one
// select-line assertion. tx may be nil to clock out idle bytes while
// reading, and rx may be nil to discard the readback. When both are
// non-nil they must have equal length.
//
// Implementations live at the edges of the system: a serial-adapter bus in
// the plantctl binary and in-memory pairs in tests and examples. A Bus is
// not required to be safe for concurrent use; the transport layers never
// overlap transfers.
type Bus interface {
	Transfer(tx, rx []byte) error
}
