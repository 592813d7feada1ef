package comm

// CRC-16-CCITT parameters used for chunk integrity.
const (
	crcPolynomial uint16 = 0x1021
	crcInitial    uint16 = 0xFFFF
)

// CRC16 computes the CRC-16-CCITT checksum of data: polynomial 0x1021,
// initial value 0xFFFF, MSB-first bit order, no final XOR.
func CRC16(data []byte) uint16 {
	crc := crcInitial
	for _, b := range data {
		crc ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = (crc << 1) ^ crcPolynomial
			} else {
				crc <<= 1
			}
		}
	}

	return crc
}
