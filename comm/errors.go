package comm

import "errors"

var (
	// ErrInvalidParam indicates a bad command code, a missing payload on a
	// non-read command, or a payload longer than DataLength.
	ErrInvalidParam = errors.New("comm: invalid parameter")

	// ErrEncoding indicates a frame size invariant violation. It should be
	// unreachable given the fixed-size frame types.
	ErrEncoding = errors.New("comm: frame encoding error")

	// ErrChecksum indicates that a decoded frame failed CRC verification
	// after Hamming correction, or that the reply retry budget was
	// exhausted without a valid frame.
	ErrChecksum = errors.New("comm: checksum mismatch")

	// ErrTimeout indicates that no ACK arrived within the wall-clock budget.
	ErrTimeout = errors.New("comm: acknowledgement timeout")

	// ErrBus indicates that the underlying physical transfer primitive
	// reported a failure. Bus errors are never retried by this layer.
	ErrBus = errors.New("comm: bus transfer error")
)
