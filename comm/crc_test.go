package comm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCRC16_KnownVectors(t *testing.T) {
	// CRC-16/CCITT-FALSE check value.
	assert.Equal(t, uint16(0x29B1), CRC16([]byte("123456789")))

	// Empty input leaves the initial value untouched.
	assert.Equal(t, uint16(0xFFFF), CRC16(nil))

	// Single zero byte.
	assert.Equal(t, uint16(0xE1F0), CRC16([]byte{0x00}))
}

func TestCRC16_Deterministic(t *testing.T) {
	data := []byte("plant moisture 47%")
	assert.Equal(t, CRC16(data), CRC16(data))
}

func TestCRC16_SensitiveToChanges(t *testing.T) {
	base := CRC16([]byte("sensor reading"))
	assert.NotEqual(t, base, CRC16([]byte("sensor rEading")))
	assert.NotEqual(t, base, CRC16([]byte("sensor reading ")))
}
