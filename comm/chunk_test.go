package comm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hmolavi/PlantProtector/internal/util"
)

// The worked example frame used throughout the error-injection tests.
const (
	exampleHeader  = byte(0xAA)
	examplePayload = "123456789 123456789 12345678"
)

func TestChunkSizing(t *testing.T) {
	// The 7:4 bit expansion must be an exact integer identity.
	require.Zero(t, ChunkSize*7%4)
	assert.Equal(t, 32, ChunkSize)
	assert.Equal(t, 56, ChunkEncodedSize)
}

func TestNewChunk_PadsPayload(t *testing.T) {
	chunk, err := NewChunk(0x11, "hi")
	require.NoError(t, err)

	assert.Equal(t, byte(0x11), chunk.Header)
	assert.Equal(t, "hi"+strings.Repeat(" ", DataLength-2), string(chunk.Data[:]))
	assert.Equal(t, "hi", chunk.Payload())
}

func TestNewChunk_RejectsOversizedPayload(t *testing.T) {
	_, err := NewChunk(0x11, strings.Repeat("x", DataLength+1))
	require.ErrorIs(t, err, ErrInvalidParam)
}

func TestEncodeChunk_FixedSize(t *testing.T) {
	for n := 0; n <= DataLength; n++ {
		chunk, err := NewChunk(0x20, strings.Repeat("a", n))
		require.NoError(t, err)

		encoded, err := chunk.Encode()
		require.NoError(t, err)
		assert.Len(t, encoded, ChunkEncodedSize, "payload length %d", n)
	}
}

func TestChunk_RoundTrip(t *testing.T) {
	payloads := []string{
		"",
		"x",
		"moisture=47",
		"2026-08-25 14:03:59",
		strings.Repeat("~", DataLength),
		examplePayload,
	}
	headers := []byte{0x00, 0x10, 0x21, 0x7F, 0xAA, 0xFF}

	for _, header := range headers {
		for _, payload := range payloads {
			chunk, err := NewChunk(header, payload)
			require.NoError(t, err)

			encoded, err := chunk.Encode()
			require.NoError(t, err)

			decoded, err := DecodeChunk(encoded)
			require.NoError(t, err, "header=0x%02X payload=%q", header, payload)
			assert.Equal(t, header, decoded.Header)
			assert.Equal(t, payload, decoded.Payload())
			assert.Equal(t, chunk.Checksum(), decoded.Checksum())
		}
	}
}

func TestChunk_RoundTripAllHeaders(t *testing.T) {
	for code := 0; code <= 0xFF; code++ {
		chunk, err := NewChunk(byte(code), "header sweep")
		require.NoError(t, err)

		encoded, err := chunk.Encode()
		require.NoError(t, err)

		decoded, err := DecodeChunk(encoded)
		require.NoError(t, err, "header=0x%02X", code)
		assert.Equal(t, byte(code), decoded.Header)
	}
}

func TestDecodeChunk_CorrectsEverySingleBitError(t *testing.T) {
	chunk, err := NewChunk(exampleHeader, examplePayload)
	require.NoError(t, err)

	encoded, err := chunk.Encode()
	require.NoError(t, err)

	for pos := 0; pos < ChunkEncodedSize*8; pos++ {
		corrupted := util.CloneSlice(encoded, 0)
		corrupted[pos/8] ^= 1 << (7 - pos%8)

		decoded, err := DecodeChunk(corrupted)
		require.NoError(t, err, "bit %d", pos)
		assert.Equal(t, exampleHeader, decoded.Header, "bit %d", pos)
		assert.Equal(t, examplePayload, decoded.Payload(), "bit %d", pos)
	}
}

func TestDecodeChunk_DoubleErrorNeverCorruptsSilentlyOrFails(t *testing.T) {
	// Two bit errors in one 7-bit block exceed the code's correction
	// guarantee: decoding either happens to recover the frame or the
	// mis-correction is caught by the CRC. Both outcomes are acceptable;
	// silent corruption is not.
	chunk, err := NewChunk(exampleHeader, examplePayload)
	require.NoError(t, err)

	encoded, err := chunk.Encode()
	require.NoError(t, err)

	for block := 0; block < 8; block++ {
		first := block * 7
		second := first + 3

		corrupted := util.CloneSlice(encoded, 0)
		corrupted[first/8] ^= 1 << (7 - first%8)
		corrupted[second/8] ^= 1 << (7 - second%8)

		decoded, err := DecodeChunk(corrupted)
		if err != nil {
			assert.ErrorIs(t, err, ErrChecksum, "block %d", block)
			continue
		}
		assert.Equal(t, exampleHeader, decoded.Header, "block %d", block)
		assert.Equal(t, examplePayload, decoded.Payload(), "block %d", block)
	}
}

func TestDecodeChunk_RejectsWrongFrameSize(t *testing.T) {
	for _, size := range []int{0, 1, ChunkSize, ChunkEncodedSize - 1, ChunkEncodedSize + 1} {
		_, err := DecodeChunk(make([]byte, size))
		require.ErrorIs(t, err, ErrEncoding, "size %d", size)
	}
}

func TestDecodeChunk_ChecksumMismatchDetail(t *testing.T) {
	// Build a frame whose stored CRC disagrees with its content by
	// encoding a tampered logical frame directly.
	chunk, err := NewChunk(0x10, "garden")
	require.NoError(t, err)

	raw := make([]byte, ChunkSize)
	raw[0] = chunk.Header
	copy(raw[1:], chunk.Data[:])
	// Deliberately wrong CRC bytes.
	raw[ChunkSize-2] = 0xDE
	raw[ChunkSize-1] = 0xAD

	bits, err := Encode74(BytesToBits(raw))
	require.NoError(t, err)

	_, err = DecodeChunk(BitsToBytes(bits))
	require.ErrorIs(t, err, ErrChecksum)
	assert.Contains(t, err.Error(), "wire=0xDEAD")
}
