package comm

// BytesToBits expands data into individual bits, one per element,
// MSB of each byte first.
func BytesToBits(data []byte) []byte {
	bits := make([]byte, len(data)*8)
	for i := range bits {
		bits[i] = (data[i/8] >> (7 - (i % 8))) & 1
	}

	return bits
}

// BitsToBytes packs a bit sequence (one bit per element, MSB first) into
// bytes. A bit count that is not a multiple of 8 leaves the low end of the
// final byte zero.
func BitsToBytes(bits []byte) []byte {
	out := make([]byte, (len(bits)+7)/8)
	for i, b := range bits {
		if b != 0 {
			out[i/8] |= 1 << (7 - (i % 8))
		}
	}

	return out
}
