package comm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newLinkedTransport builds an initiator/responder pair over an in-process
// bus pair, dispatching to handler on the responder side.
func newLinkedTransport(t *testing.T, handler Handler) (*MemoryBusPair, *Initiator, *Responder) {
	t.Helper()

	pair := NewMemoryBusPair()

	responder, err := NewResponder(pair.ResponderEnd(), handler, newTestConfig(t))
	require.NoError(t, err)
	pair.Attach(responder)

	initiator, err := NewInitiator(pair.InitiatorEnd(), newTestConfig(t))
	require.NoError(t, err)

	return pair, initiator, responder
}

func TestTransport_WriteEndToEnd(t *testing.T) {
	handler := &recordingHandler{}
	_, initiator, responder := newLinkedTransport(t, handler)

	reply, err := initiator.Execute(CmdSDTimestampAppend, "soil=dry pump=on")
	require.NoError(t, err)
	assert.Empty(t, reply)

	require.Len(t, handler.cmds, 1)
	assert.Equal(t, CmdSDTimestampAppend, handler.cmds[0].Code)
	assert.Equal(t, "soil=dry pump=on", handler.payloads[0])

	assert.Equal(t, uint64(1), initiator.Metrics().FrameSendCount.Load())
	assert.Equal(t, uint64(1), responder.Metrics().FrameRecvCount.Load())
	assert.Zero(t, initiator.Metrics().AckRetryCount.Load())
}

func TestTransport_ReadEndToEnd(t *testing.T) {
	handler := &recordingHandler{reply: "2026-08-25 14:03:59"}
	_, initiator, _ := newLinkedTransport(t, handler)

	reply, err := initiator.Execute(CmdRTCRead, "")
	require.NoError(t, err)
	assert.Equal(t, "2026-08-25 14:03:59", reply)

	require.Len(t, handler.cmds, 1)
	assert.Equal(t, CmdRTCRead, handler.cmds[0].Code)
}

func TestTransport_SequentialCommands(t *testing.T) {
	handler := &recordingHandler{reply: "row 47: moisture=51"}
	_, initiator, _ := newLinkedTransport(t, handler)

	_, err := initiator.Execute(CmdRTCSet, "2026-08-25 14:00:00")
	require.NoError(t, err)

	_, err = initiator.Execute(CmdSDAppend, "moisture=51")
	require.NoError(t, err)

	reply, err := initiator.Execute(CmdSDRead, "")
	require.NoError(t, err)
	assert.Equal(t, "row 47: moisture=51", reply)

	require.Len(t, handler.cmds, 3)
	assert.Equal(t, uint64(3), initiator.Metrics().FrameSendCount.Load())
}

func TestTransport_SingleBitNoiseOnRequest(t *testing.T) {
	// A single flipped bit anywhere in the request frame is repaired by the
	// forward error correction, so the command still lands.
	handler := &recordingHandler{}
	pair, initiator, _ := newLinkedTransport(t, handler)

	bit := 0
	pair.FrameNoise = func(frame []byte) []byte {
		frame[bit/8] ^= 1 << (7 - bit%8)
		bit = (bit + 13) % (ChunkEncodedSize * 8)

		return frame
	}

	for i := 0; i < 8; i++ {
		_, err := initiator.Execute(CmdSDAppend, "noisy line")
		require.NoError(t, err, "iteration %d", i)
	}

	require.Len(t, handler.payloads, 8)
	assert.Zero(t, initiator.Metrics().AckRetryCount.Load())
}

func TestTransport_ReplyNackTriggersRetransmission(t *testing.T) {
	handler := &recordingHandler{reply: "last log line"}
	pair, initiator, responder := newLinkedTransport(t, handler)

	// Destroy the first reply in flight; the initiator must NACK and the
	// responder must retransmit the identical frame.
	pair.ReplyNoise = func([]byte) []byte {
		pair.ReplyNoise = nil

		return make([]byte, ChunkEncodedSize)
	}

	reply, err := initiator.Execute(CmdSDRead, "")
	require.NoError(t, err)
	assert.Equal(t, "last log line", reply)

	require.Len(t, handler.cmds, 1, "retransmission must not re-dispatch the command")
	assert.Equal(t, uint64(1), initiator.Metrics().ChecksumErrCount.Load())
	assert.Equal(t, uint64(1), initiator.Metrics().ReplyRetryCount.Load())
	assert.Equal(t, uint64(1), responder.Metrics().FrameSendCount.Load())
}
