package comm

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/hmolavi/PlantProtector/internal/pool"
	"github.com/hmolavi/PlantProtector/logger"
)

// Handler executes a validated command on the responder side.
//
// For read-type commands the returned string becomes the reply frame
// payload and must fit in DataLength bytes. For write-type commands the
// returned string is ignored.
type Handler interface {
	HandleCommand(cmd Command, payload string) (string, error)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(cmd Command, payload string) (string, error)

func (f HandlerFunc) HandleCommand(cmd Command, payload string) (string, error) {
	return f(cmd, payload)
}

// Responder drives the bus as the answering side.
//
// Incoming physical-frame bytes arrive through OnByte, which runs in an
// interrupt-like context: it never blocks and only writes into a fixed
// buffer, marking it ready when a full frame has accumulated. Process runs
// in task context: it copies a ready frame out of the buffer, decodes and
// validates it, answers ACK or NACK, and for read-type commands builds and
// transmits the reply frame.
//
// The accumulation buffer is a single slot. If a second frame finishes
// arriving before Process consumes the first, the first is overwritten;
// the half-duplex, blocking initiator makes back-to-back frames impossible
// in normal operation. See the package documentation for the hand-off
// protocol.
type Responder struct {
	bus     Bus
	cfg     *TransportConfig
	handler Handler
	logger  logger.Logger
	metrics TransportMetrics

	// buf and idx are owned by OnByte; ready is the hand-off point.
	buf   [ChunkEncodedSize]byte
	idx   int
	ready atomic.Bool

	// lastReply is retransmitted when the initiator answers NACK.
	lastReply []byte
}

// NewResponder creates a responder answering on the given bus, dispatching
// validated commands to handler. A nil cfg uses the default transport
// configuration.
func NewResponder(bus Bus, handler Handler, cfg *TransportConfig) (*Responder, error) {
	if bus == nil {
		return nil, fmt.Errorf("%w: bus is nil", ErrInvalidParam)
	}
	if handler == nil {
		return nil, fmt.Errorf("%w: handler is nil", ErrInvalidParam)
	}

	if cfg == nil {
		var err error
		cfg, err = NewTransportConfig()
		if err != nil {
			return nil, err
		}
	}

	return &Responder{
		bus:     bus,
		cfg:     cfg,
		handler: handler,
		logger:  cfg.Logger(),
	}, nil
}

// Metrics returns the responder's transport metrics.
func (r *Responder) Metrics() *TransportMetrics {
	return &r.metrics
}

// OnByte accumulates one received byte. It is safe to call from an
// interrupt-like context: no blocking, no allocation. When the fixed
// buffer fills, the frame is marked ready and the index resets for the
// next frame.
func (r *Responder) OnByte(b byte) {
	r.buf[r.idx] = b
	r.idx++
	if r.idx >= ChunkEncodedSize {
		r.idx = 0
		r.ready.Store(true)
	}
}

// OnStatus handles a byte from the initiator while a reply frame awaits
// acknowledgement: NACK retransmits the pending reply, ACK releases it.
// Any other byte also releases it — the initiator has abandoned the
// exchange (its retry budget is finite) and moved on to a new frame.
func (r *Responder) OnStatus(b byte) {
	switch CommandCode(b) {
	case CmdAck:
		r.lastReply = nil

	case CmdNack:
		if r.lastReply == nil {
			return
		}
		r.logger.Debug("comm: retransmitting reply after NACK")
		if err := r.bus.Transfer(r.lastReply, nil); err != nil {
			r.logger.Error("comm: reply retransmit failed", "error", err)
		}

	default:
		if r.lastReply != nil {
			r.logger.Debug("comm: releasing unacknowledged reply",
				"byte", fmt.Sprintf("0x%02X", b),
			)
			r.lastReply = nil
		}
	}
}

// Feed routes one byte arriving on a raw byte stream, where no select
// line separates frames from control bytes. While a reply frame awaits
// acknowledgement, ACK and NACK bytes are controls; any other byte means
// the initiator has moved on, so the held reply is released and the byte
// accumulates toward the next frame.
//
// Feed shares OnByte's single-caller requirement.
func (r *Responder) Feed(b byte) {
	if r.ReplyPending() {
		r.OnStatus(b)
		if CommandCode(b) == CmdAck || CommandCode(b) == CmdNack {
			return
		}
	}

	r.OnByte(b)
}

// Resync drops a partially accumulated frame, reporting whether any bytes
// were discarded. Frames arrive back to back within one exchange, so a
// byte-stream driver that sees the line go idle mid-frame knows the
// accumulator is misaligned and calls Resync to realign on the next frame
// boundary.
//
// Resync shares OnByte's single-caller requirement.
func (r *Responder) Resync() bool {
	if r.idx == 0 {
		return false
	}

	r.logger.Debug("comm: dropping partial frame", "bytes", r.idx)
	r.idx = 0

	return true
}

// Ready reports whether a complete frame is waiting for Process.
func (r *Responder) Ready() bool {
	return r.ready.Load()
}

// ReplyPending reports whether a reply frame is held for retransmission,
// awaiting the initiator's ACK. Byte-stream drivers use it to decide when
// the next inbound byte is a control byte rather than the start of a frame.
func (r *Responder) ReplyPending() bool {
	return r.lastReply != nil
}

// Process consumes a ready frame, if any: decode, answer ACK or NACK, and
// for read-type commands transmit the reply frame.
//
// A corrupt or invalid frame is answered with NACK and reported as an
// error for observability; the responder itself remains usable, so a
// misbehaving initiator cannot wedge it. Process returns nil when no frame
// is ready.
func (r *Responder) Process() error {
	if !r.ready.Load() {
		return nil
	}

	// Copy-then-clear: the copy must complete before the ready flag drops,
	// so a frame arriving mid-Process overwrites buf, not pending.
	var pending [ChunkEncodedSize]byte
	copy(pending[:], r.buf[:])
	r.ready.Store(false)

	chunk, err := DecodeChunk(pending[:])
	if err != nil {
		r.metrics.incChecksumErrCount()
		r.sendStatus(CmdNack)

		return fmt.Errorf("comm: rejecting frame: %w", err)
	}
	r.metrics.incFrameRecvCount()

	cmd, ok := LookupCommand(CommandCode(chunk.Header))
	if !ok || cmd.IsControl() {
		r.sendStatus(CmdNack)

		return fmt.Errorf("%w: unknown command 0x%02X in frame", ErrInvalidParam, chunk.Header)
	}

	r.sendStatus(CmdAck)

	payload := chunk.Payload()
	r.logger.Debug("comm: dispatching command",
		"command", cmd.Name,
		"payloadLen", len(payload),
	)

	reply, err := r.handler.HandleCommand(cmd, payload)
	if err != nil {
		return fmt.Errorf("comm: command %q handler: %w", cmd.Name, err)
	}

	if !cmd.Read {
		return nil
	}

	return r.sendReply(cmd, reply)
}

// sendReply encodes and transmits the reply frame for a read command,
// keeping it for retransmission until the initiator ACKs.
func (r *Responder) sendReply(cmd Command, payload string) error {
	chunk, err := NewChunk(byte(cmd.ReplyCode()), payload)
	if err != nil {
		return fmt.Errorf("comm: reply for %q: %w", cmd.Name, err)
	}

	encoded, err := chunk.Encode()
	if err != nil {
		return err
	}

	r.lastReply = encoded
	if err := r.bus.Transfer(encoded, nil); err != nil {
		return fmt.Errorf("%w: sending reply: %w", ErrBus, err)
	}
	r.metrics.incFrameSendCount()

	return nil
}

// sendStatus queues a single ACK/NACK control byte for the initiator's
// next status read.
func (r *Responder) sendStatus(code CommandCode) {
	if code == CmdNack {
		r.metrics.incNackCount()
	}

	if err := r.bus.Transfer([]byte{byte(code)}, nil); err != nil {
		r.logger.Error("comm: status byte send failed",
			"status", fmt.Sprintf("0x%02X", byte(code)),
			"error", err,
		)
	}
}

// Run polls Process at the configured interval until ctx is cancelled,
// logging rejected frames. It is a convenience loop for responder daemons;
// embedded integrations call Process from their own scheduler instead.
func (r *Responder) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := r.Process(); err != nil {
			r.logger.Warn("comm: frame processing failed", "error", err)
		}

		t := pool.GetTimer(r.cfg.PollInterval())
		select {
		case <-ctx.Done():
			pool.PutTimer(t)
			return ctx.Err()
		case <-t.C:
			pool.PutTimer(t)
		}
	}
}
