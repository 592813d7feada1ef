package comm

import (
	"fmt"

	"github.com/hmolavi/PlantProtector/internal/util"
)

// This file implements a general Hamming single-error-correcting code over
// bit slices, plus the (7,4) stream specialization the transport uses.
//
// Codeword layout follows the classic construction: bit positions whose
// 1-based index is a power of two carry parity, the remaining positions
// carry data bits in index order.

// parityCheck computes the parity bit for parity index p (0 for P1, 1 for
// P2, ...) over an n-bit codeword: the XOR of all bits at 1-based positions
// that have bit p set, starting at position 2^p.
func parityCheck(n int, bits []byte, p uint) byte {
	mask := 1 << p
	var sum byte
	for i := mask - 1; i < n; i++ {
		if (i+1)&mask != 0 {
			sum ^= bits[i]
		}
	}

	return sum
}

// HammingEncode encodes data (one bit per element) into a Hamming codeword.
//
// The parity bit count r is the minimal value satisfying 2^r >= k+r+1 for
// k data bits; the codeword is k+r bits with data placed into the
// non-power-of-two-indexed slots in order.
func HammingEncode(data []byte) []byte {
	k := len(data)

	r := 0
	for (1 << r) < (k + r + 1) {
		r++
	}
	n := k + r

	code := make([]byte, n)

	// Place data bits, skipping parity positions (i+1 a power of two).
	j := 0
	for i := 0; i < n && j < k; i++ {
		if i&(i+1) == 0 {
			continue
		}
		code[i] = data[j]
		j++
	}

	for p := uint(0); p < uint(r); p++ {
		parityPos := (1 << p) - 1
		if parityPos < n {
			code[parityPos] = parityCheck(n, code, p)
		}
	}

	return code
}

// CalculateSyndrome computes the error syndrome of a codeword. A zero
// syndrome means no detected error; a nonzero value is the 1-based
// position of the single bit in error.
func CalculateSyndrome(code []byte) int {
	n := len(code)
	syndrome := 0
	for p := uint(0); (1 << p) <= n; p++ {
		parityPos := (1 << p) - 1
		if parityPos >= n {
			break
		}
		syndrome |= int(parityCheck(n, code, p)) << p
	}

	return syndrome
}

// HammingDecode extracts the data bits from a codeword, correcting at most
// one bit error. It reports whether a correction was applied. The input
// slice is not modified.
//
// Two or more bit errors within the same codeword exceed the code's
// correction capability and may decode to the wrong data silently.
func HammingDecode(code []byte) ([]byte, bool) {
	n := len(code)

	corrected := false
	if syndrome := CalculateSyndrome(code); syndrome != 0 {
		errorPos := syndrome - 1
		if errorPos < n {
			code = util.CloneSlice(code, 0)
			code[errorPos] ^= 1
			corrected = true
		}
	}

	r := 0
	for (1 << r) <= n {
		r++
	}

	data := make([]byte, 0, n-r)
	for i := 0; i < n; i++ {
		if i&(i+1) != 0 {
			data = append(data, code[i])
		}
	}

	return data, corrected
}

// Encode74 applies the (7,4) code to a bit stream, encoding each 4-bit
// group into a 7-bit codeword. The bit count must be a multiple of 4.
func Encode74(bits []byte) ([]byte, error) {
	if len(bits)%4 != 0 {
		return nil, fmt.Errorf("comm: bit count %d is not a multiple of 4", len(bits))
	}

	out := make([]byte, 0, len(bits)/4*7)
	for i := 0; i < len(bits); i += 4 {
		out = append(out, HammingEncode(bits[i:i+4])...)
	}

	return out, nil
}

// Decode74 reverses Encode74, correcting up to one bit error per 7-bit
// codeword. The bit count must be a multiple of 7.
func Decode74(bits []byte) ([]byte, error) {
	if len(bits)%7 != 0 {
		return nil, fmt.Errorf("comm: bit count %d is not a multiple of 7", len(bits))
	}

	out := make([]byte, 0, len(bits)/7*4)
	for i := 0; i < len(bits); i += 7 {
		data, _ := HammingDecode(bits[i : i+7])
		out = append(out, data...)
	}

	return out, nil
}
