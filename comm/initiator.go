package comm

import (
	"fmt"
	"time"

	"github.com/hmolavi/PlantProtector/internal/pool"
	"github.com/hmolavi/PlantProtector/logger"
)

// Initiator drives the bus as the requesting side.
//
// Execute blocks the calling goroutine for the full duration of
// transmission, acknowledgement wait, and (for read commands) reply wait.
// Cancellation is exclusively via the configured timeout and retry
// budgets; every loop has an explicit bound.
//
// An Initiator is NOT goroutine-safe: the link is single-initiator by
// construction, so only one Execute call may be active at a time.
type Initiator struct {
	bus     Bus
	cfg     *TransportConfig
	logger  logger.Logger
	metrics TransportMetrics
}

// NewInitiator creates an initiator driving the given bus. A nil cfg uses
// the default transport configuration.
func NewInitiator(bus Bus, cfg *TransportConfig) (*Initiator, error) {
	if bus == nil {
		return nil, fmt.Errorf("%w: bus is nil", ErrInvalidParam)
	}

	if cfg == nil {
		var err error
		cfg, err = NewTransportConfig()
		if err != nil {
			return nil, err
		}
	}

	return &Initiator{
		bus:    bus,
		cfg:    cfg,
		logger: cfg.Logger(),
	}, nil
}

// Metrics returns the initiator's transport metrics.
func (in *Initiator) Metrics() *TransportMetrics {
	return &in.metrics
}

// Execute sends a command with the given payload to the responder and, for
// read-type commands, returns the reply payload with padding stripped.
//
// Validation failures return ErrInvalidParam: an unknown or reserved
// command code, an empty payload on a non-read command, or a payload
// longer than DataLength bytes.
//
// The encoded frame is retransmitted until the responder answers with the
// ACK code or the wall-clock budget elapses (ErrTimeout). Read replies are
// attempted up to the configured retry budget, answering NACK on each
// checksum failure (ErrChecksum once exhausted). Any bus-level transfer
// failure aborts immediately with ErrBus.
func (in *Initiator) Execute(code CommandCode, payload string) (string, error) {
	cmd, ok := LookupCommand(code)
	if !ok || cmd.IsControl() {
		return "", fmt.Errorf("%w: unknown command 0x%02X", ErrInvalidParam, byte(code))
	}

	if !cmd.Read && payload == "" {
		return "", fmt.Errorf("%w: payload required for non-read command %q", ErrInvalidParam, cmd.Name)
	}

	chunk, err := NewChunk(byte(cmd.Code), payload)
	if err != nil {
		return "", err
	}

	encoded, err := chunk.Encode()
	if err != nil {
		return "", err
	}

	in.logger.Debug("comm: executing command",
		"command", cmd.Name,
		"code", fmt.Sprintf("0x%02X", byte(cmd.Code)),
		"payloadLen", len(payload),
	)

	if err := in.sendAwaitAck(cmd, encoded); err != nil {
		return "", err
	}

	if !cmd.Read {
		return "", nil
	}

	return in.receiveReply(cmd)
}

// statusPollByte is clocked out while reading the responder's status. It
// is deliberately distinct from the ACK/NACK control codes so that a bus
// which puts the poll byte on the wire cannot mimic a control byte.
const statusPollByte byte = 0x00

// sendAwaitAck repeats the send-frame/read-status cycle until the
// responder answers ACK or the wall-clock budget elapses.
func (in *Initiator) sendAwaitAck(cmd Command, encoded []byte) error {
	deadline := time.Now().Add(in.cfg.AckTimeout())

	for {
		if err := in.bus.Transfer(encoded, nil); err != nil {
			return fmt.Errorf("%w: sending frame: %w", ErrBus, err)
		}
		in.metrics.incFrameSendCount()

		var status [1]byte
		if err := in.bus.Transfer([]byte{statusPollByte}, status[:]); err != nil {
			return fmt.Errorf("%w: reading status: %w", ErrBus, err)
		}

		if status[0] == byte(CmdAck) {
			return nil
		}

		if time.Now().After(deadline) {
			in.logger.Debug("comm: no ACK before deadline",
				"command", cmd.Name,
				"lastStatus", fmt.Sprintf("0x%02X", status[0]),
			)

			return fmt.Errorf("%w: no ACK within %s", ErrTimeout, in.cfg.AckTimeout())
		}

		in.metrics.incAckRetryCount()
		in.delay()
	}
}

// receiveReply runs the bounded reply receive loop for a read command:
// read a physical frame, decode it, NACK and retry on checksum failure,
// ACK and return the payload on success.
func (in *Initiator) receiveReply(cmd Command) (string, error) {
	limit := in.cfg.ReplyRetryLimit()

	for attempt := 1; attempt <= limit; attempt++ {
		frame := make([]byte, ChunkEncodedSize)
		if err := in.bus.Transfer(nil, frame); err != nil {
			return "", fmt.Errorf("%w: receiving reply: %w", ErrBus, err)
		}
		in.metrics.incFrameRecvCount()

		reply, err := DecodeChunk(frame)
		if err == nil {
			if reply.Header != byte(cmd.ReplyCode()) {
				in.logger.Debug("comm: unexpected reply header",
					"command", cmd.Name,
					"header", fmt.Sprintf("0x%02X", reply.Header),
				)
			}

			if err := in.bus.Transfer([]byte{byte(CmdAck)}, nil); err != nil {
				return "", fmt.Errorf("%w: sending ACK: %w", ErrBus, err)
			}

			return reply.Payload(), nil
		}

		in.metrics.incChecksumErrCount()
		in.logger.Debug("comm: reply rejected",
			"command", cmd.Name,
			"attempt", attempt,
			"maxAttempts", limit,
			"error", err,
		)

		if err := in.bus.Transfer([]byte{byte(CmdNack)}, nil); err != nil {
			return "", fmt.Errorf("%w: sending NACK: %w", ErrBus, err)
		}
		in.metrics.incNackCount()

		if attempt < limit {
			in.metrics.incReplyRetryCount()
			in.delay()
		}
	}

	return "", fmt.Errorf("%w: no valid reply after %d attempts", ErrChecksum, limit)
}

// delay sleeps for the configured poll interval with a pooled timer.
func (in *Initiator) delay() {
	t := pool.GetTimer(in.cfg.PollInterval())
	<-t.C
	pool.PutTimer(t)
}
