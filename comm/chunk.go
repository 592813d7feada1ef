package comm

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// Frame sizing. ChunkEncodedSize is the Hamming(7,4) bit expansion of the
// chunk; ChunkSize*7 must divide evenly by 4 for the identity to hold.
const (
	// DataLength is the fixed payload capacity of a chunk in bytes.
	DataLength = 29

	// checksumSize is the size of the trailing CRC-16 in bytes.
	checksumSize = 2

	// ChunkSize is the logical frame size: command byte + payload + CRC.
	ChunkSize = 1 + DataLength + checksumSize

	// ChunkEncodedSize is the physical frame size after Hamming(7,4)
	// encoding: 256 bits * 7/4 = 448 bits = 56 bytes.
	ChunkEncodedSize = ChunkSize * 7 / 4
)

// Chunk is the 32-byte logical frame: a command byte and a fixed-width
// ASCII payload, space-padded on the right. The CRC is computed over
// header plus payload at encode time and verified at decode time; it is
// not stored in the struct.
type Chunk struct {
	Header byte
	Data   [DataLength]byte
}

// NewChunk builds a chunk from a command byte and payload string.
// Payloads shorter than DataLength are right-padded with spaces; longer
// payloads are rejected with ErrInvalidParam.
func NewChunk(header byte, payload string) (*Chunk, error) {
	if len(payload) > DataLength {
		return nil, fmt.Errorf("%w: payload length %d exceeds %d", ErrInvalidParam, len(payload), DataLength)
	}

	c := &Chunk{Header: header}
	for i := range c.Data {
		c.Data[i] = ' '
	}
	copy(c.Data[:], payload)

	return c, nil
}

// Payload returns the chunk data with the right space padding stripped.
func (c *Chunk) Payload() string {
	return strings.TrimRight(string(c.Data[:]), " ")
}

// Checksum computes the CRC-16-CCITT over header plus payload.
func (c *Chunk) Checksum() uint16 {
	buf := make([]byte, 1+DataLength)
	buf[0] = c.Header
	copy(buf[1:], c.Data[:])

	return CRC16(buf)
}

// Encode produces the 56-byte physical frame for the chunk:
// serialize header + payload + big-endian CRC to 256 bits, Hamming(7,4)
// expand to 448 bits, and pack to bytes.
func (c *Chunk) Encode() ([]byte, error) {
	raw := make([]byte, ChunkSize)
	raw[0] = c.Header
	copy(raw[1:], c.Data[:])
	binary.BigEndian.PutUint16(raw[ChunkSize-checksumSize:], c.Checksum())

	encodedBits, err := Encode74(BytesToBits(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncoding, err)
	}

	encoded := BitsToBytes(encodedBits)
	if len(encoded) != ChunkEncodedSize {
		return nil, fmt.Errorf("%w: encoded frame is %d bytes, want %d", ErrEncoding, len(encoded), ChunkEncodedSize)
	}

	return encoded, nil
}

// DecodeChunk reverses Encode: unpack the 56-byte physical frame to bits,
// Hamming-decode each 7-bit codeword (correcting single-bit errors),
// repack to the 32-byte logical frame, and verify the CRC.
//
// A frame that differs from a valid encoding by at most one bit per 7-bit
// block decodes to the original chunk exactly. Heavier corruption is
// reported as ErrChecksum; that is the only irrecoverable-corruption
// signal this layer produces.
func DecodeChunk(encoded []byte) (*Chunk, error) {
	if len(encoded) != ChunkEncodedSize {
		return nil, fmt.Errorf("%w: frame is %d bytes, want %d", ErrEncoding, len(encoded), ChunkEncodedSize)
	}

	decodedBits, err := Decode74(BytesToBits(encoded))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncoding, err)
	}

	raw := BitsToBytes(decodedBits)

	c := &Chunk{Header: raw[0]}
	copy(c.Data[:], raw[1:1+DataLength])

	wireCRC := binary.BigEndian.Uint16(raw[ChunkSize-checksumSize:])
	if calcCRC := c.Checksum(); wireCRC != calcCRC {
		return nil, fmt.Errorf("%w: wire=0x%04X, computed=0x%04X", ErrChecksum, wireCRC, calcCRC)
	}

	return c, nil
}
