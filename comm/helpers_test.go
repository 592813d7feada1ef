package comm

import (
	"testing"

	"github.com/hmolavi/PlantProtector/internal/util"
)

// newTestConfig creates a TransportConfig with short timeouts suitable for tests.
func newTestConfig(t *testing.T, opts ...TransportOption) *TransportConfig {
	t.Helper()

	defaults := []TransportOption{
		WithAckTimeout(MinAckTimeout),     // 100ms
		WithPollInterval(MinPollInterval), // 1ms
	}

	cfg, err := NewTransportConfig(append(defaults, opts...)...)
	if err != nil {
		t.Fatalf("newTestConfig: %v", err)
	}

	return cfg
}

// mustEncodeFrame encodes a chunk for test fixtures.
func mustEncodeFrame(t *testing.T, header byte, payload string) []byte {
	t.Helper()

	chunk, err := NewChunk(header, payload)
	if err != nil {
		t.Fatalf("mustEncodeFrame: %v", err)
	}

	frame, err := chunk.Encode()
	if err != nil {
		t.Fatalf("mustEncodeFrame: %v", err)
	}

	return frame
}

// fakeBus is a scripted Bus for initiator unit tests: it records sent
// frames and control bytes, and answers status polls and reply reads from
// pre-loaded scripts.
type fakeBus struct {
	statuses []byte   // successive status poll answers
	replies  [][]byte // successive reply frames
	err      error    // when set, every Transfer fails

	sentFrames   [][]byte
	sentControls []byte
	sentPolls    []byte
}

func (b *fakeBus) Transfer(tx, rx []byte) error {
	if b.err != nil {
		return b.err
	}

	switch {
	case len(tx) == ChunkEncodedSize:
		b.sentFrames = append(b.sentFrames, util.CloneSlice(tx, 0))

	case len(rx) == ChunkEncodedSize:
		if len(b.replies) > 0 {
			copy(rx, b.replies[0])
			b.replies = b.replies[1:]
		}

	case len(tx) == 1 && len(rx) == 1:
		b.sentPolls = append(b.sentPolls, tx[0])
		if len(b.statuses) > 0 {
			rx[0] = b.statuses[0]
			b.statuses = b.statuses[1:]
		}

	case len(tx) == 1:
		b.sentControls = append(b.sentControls, tx[0])
	}

	return nil
}

// captureBus records everything a Responder transmits.
type captureBus struct {
	writes [][]byte
	err    error
}

func (b *captureBus) Transfer(tx, _ []byte) error {
	if b.err != nil {
		return b.err
	}

	b.writes = append(b.writes, util.CloneSlice(tx, 0))

	return nil
}

// feedFrame pushes a complete physical frame into the responder.
func feedFrame(r *Responder, frame []byte) {
	for _, b := range frame {
		r.OnByte(b)
	}
}
