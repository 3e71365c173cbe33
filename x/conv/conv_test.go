package conv

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHex(t *testing.T) {
	assert.Equal(t, "0x40", Hex8(0x40))
	assert.Equal(t, "0x0a", Hex8(0x0A))
	assert.Equal(t, "0x0331", Hex16(0x0331))
	assert.Equal(t, "0x1d13", Hex16(0x1D13))

	var b [8]byte
	assert.Equal(t, "0x2f", string(Hex(b[:], 0x12F, 2)), "truncated to low nibbles")
	assert.Empty(t, Hex(b[:3], 0x1, 2))
	assert.Empty(t, Hex(b[:], 0x1, 0))
}

func TestDec(t *testing.T) {
	assert.Equal(t, "0", Dec(0))
	assert.Equal(t, "7", Dec(7))
	assert.Equal(t, "1500", Dec(1500))
	assert.Equal(t, "18446744073709551615", Dec(^uint64(0)))
}
