// Package comm implements the point-to-point link-layer transport between
// the plant-monitor controller and its companion microcontroller over a
// shared synchronous serial bus.
//
// # Protocol Overview
//
// The link is half-duplex with a single initiator and a single responder.
// Every exchange is built from one fixed-size logical frame (a Chunk):
//
//	[Command(1)][Payload(29, ASCII, space-padded)][CRC-16(2, big-endian)]
//
// The 32-byte chunk is expanded with a Hamming(7,4) code — every 4-bit
// group of the 256-bit chunk becomes a 7-bit codeword — yielding a 56-byte
// physical frame. Any single-bit error per 7-bit block is corrected
// transparently during decode; residual corruption is caught by the
// CRC-16-CCITT checksum computed over command byte plus payload.
//
// Receipt is signalled with single-byte control codes:
//
//   - ACK (0xFD) — frame received and validated
//   - NACK (0xFE) — frame failed validation
//
// # Roles
//
// [Initiator] drives the bus: it encodes a command into a physical frame,
// transmits it, and polls for ACK until a wall-clock budget elapses. For
// read-type commands it then receives the responder's reply frame, with a
// bounded retry loop that answers NACK on checksum failure.
//
// [Responder] answers: bytes arrive through the non-blocking OnByte
// callback (interrupt context) into a single fixed buffer, and Process
// (task context) decodes completed frames, replies ACK or NACK, and for
// read-type commands builds and transmits the reply frame.
//
// # Timeouts and Retries
//
// The initiator bounds every loop explicitly: the acknowledgement wait by
// a wall-clock deadline (default 10 s, polled every 100 ms) and the reply
// receive by a fixed attempt budget (default 5). Bus-level transfer
// failures abort immediately and are never retried by this layer.
package comm
