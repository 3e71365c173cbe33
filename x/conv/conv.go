// Package conv formats integers into caller-provided buffers without fmt or
// strconv, for log attributes and error messages on MCU builds.
package conv

const hexd = "0123456789abcdef"

// Hex writes v as "0x" followed by exactly digits lowercase hex digits,
// zero-padded and truncated to the low digits nibbles. buf must hold
// digits+2 bytes; otherwise an empty slice is returned.
func Hex(buf []byte, v uint64, digits int) []byte {
	if digits <= 0 || len(buf) < digits+2 {
		return buf[:0]
	}
	i := len(buf)
	for j := 0; j < digits; j++ {
		i--
		buf[i] = hexd[v&0xF]
		v >>= 4
	}
	buf[i-1] = 'x'
	buf[i-2] = '0'
	return buf[i-2:]
}

// Hex8 returns v as "0xNN".
func Hex8(v uint8) string {
	var b [4]byte
	return string(Hex(b[:], uint64(v), 2))
}

// Hex16 returns v as "0xNNNN".
func Hex16(v uint16) string {
	var b [6]byte
	return string(Hex(b[:], uint64(v), 4))
}

// Dec returns the base-10 representation of n.
func Dec(n uint64) string {
	var b [20]byte
	i := len(b)
	for {
		i--
		b[i] = byte('0' + n%10)
		n /= 10
		if n == 0 {
			break
		}
	}
	return string(b[i:])
}
