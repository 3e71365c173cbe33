package max96717

// PowerOnDefaults is the documented reset value of every register this driver
// touches. Registers not listed reset to zero.
func PowerOnDefaults() map[uint16]uint8 {
	return map[uint16]uint8{
		regReg0:  0x80, // DEV_ADDR 0x40
		regReg2:  0x43, // VID_TX_EN_Z set
		regReg5:  0x00, // line-fault monitors powered down
		regReg13: IDMAX96717,
		regReg14: 0x04,
		regCtrl3: 0x00, // not locked until the link trains
		regIntr3: 0x00,
		regIntr5: 0x00,
		regLF:    0x22, // both monitors report normal
		regTx3:   0x10, // TX_STR_SEL 0

		regVideoTx2: 0x00,

		regFrontTop0:  0x64, // START_PORTB, CLK_SELZ
		regFrontTop3:  0x00,
		regFrontTop4:  0x00,
		regFrontTop9:  0x40, // START_PORTBZ
		regFrontTop22: 0x00,

		regMIPIRx0: 0x00,
		regMIPIRx1: 0x30, // four lanes
		regMIPIRx2: 0xE0, // PHY1 lanes 2,3
		regMIPIRx3: 0x04, // PHY2 lanes 0,1
		regMIPIRx4: 0x00,
		regMIPIRx5: 0x00,

		regMIPIRxExt11: 0x80, // tunnel mode
	}
}

// CSI-2 data types with a known bit size.
const (
	DTYUV422x8  = 0x1E
	DTYUV422x10 = 0x1F
	DTRGB565    = 0x22
	DTRGB666    = 0x23
	DTRGB888    = 0x24
	DTRAW8      = 0x2A
	DTRAW10     = 0x2B
	DTRAW12     = 0x2C
	DTRAW14     = 0x2D
	DTRAW16     = 0x2E
	DTRAW20     = 0x2F
)

// dataTypeBits maps a data type to its bit size.
var dataTypeBits = map[uint8]uint8{
	DTRAW8:      8,
	DTRAW10:     10,
	DTRAW12:     12,
	DTRAW14:     14,
	DTRAW16:     16,
	DTYUV422x8:  16,
	DTRGB565:    16,
	DTRGB666:    18,
	DTRAW20:     20,
	DTYUV422x10: 20,
	DTRGB888:    24,
}

// DataTypeBits returns the bit size of dt, or false if dt has none.
func DataTypeBits(dt uint8) (uint8, bool) {
	b, ok := dataTypeBits[dt]
	return b, ok
}
