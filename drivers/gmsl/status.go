package gmsl

// Status records returned by the diagnostic checks. Each is produced fresh by
// one call and reflects only the registers that call read.

// Limits shared by all variants.
const (
	MaxStreams           = 16
	MaxLanes             = 4
	MaxPHYs              = 2
	MaxLineFaultMonitors = 2
)

type DeviceIDStatus struct {
	ID   uint8
	Part string // empty when ID is not a known family member
}

type DeviceRevisionStatus struct {
	Revision uint8
}

// LaneConfigStatus describes the CSI lane setup read back from hardware.
// Map, Inverted and PHY hold exactly Lanes entries.
type LaneConfigStatus struct {
	Lanes         uint8 // 1, 2 or 4; 0 when LaneCode is not decodable
	LaneCode      uint8
	Map           []uint8 // sensor lane i -> serializer lane
	Inverted      []bool
	PHY           []uint8 // PHY id carrying sensor lane i
	ClockInverted bool    // polarity of the first PHY read
}

// StreamStatus is one video stream's selector state.
type StreamStatus struct {
	VCEnabled       bool
	DataType        uint8
	DataTypeEnabled bool
}

// CSIConfigStatus captures the CSI part configuration and its pixel-doubling
// consistency.
type CSIConfigStatus struct {
	TunnelMode bool
	Streams    [MaxStreams]StreamStatus
	MinBPP     uint8 // smallest enabled data-type size; 0 when none enabled

	PixelDoubling  bool
	SoftBPPEnabled bool
	SoftBPP        uint8

	DoublingMismatch bool // PixelDoubling != (MinBPP <= 12)
	SoftBPPMismatch  bool // override enabled and SoftBPP != 2*MinBPP
	UnknownDataType  bool // an enabled stream carries a type with no size
}

// DoublingExpected reports whether MinBPP calls for pixel doubling.
func (s CSIConfigStatus) DoublingExpected() bool {
	return s.MinBPP != 0 && s.MinBPP <= 12
}

type PartConfigStatus struct {
	Lanes        LaneConfigStatus
	CSI          CSIConfigStatus
	LaneMismatch bool // hardware lane setup differs from the configured port
}

// ErrorCountStatus is shared by the decode- and idle-error checks. Count is
// read only when Flag is set.
type ErrorCountStatus struct {
	Flag  bool
	Count uint8
}

type LinkLockStatus struct {
	Locked bool
}

// ARQChannel indexes the retransmission channels.
type ARQChannel uint8

const (
	ARQSPI ARQChannel = iota
	ARQGPIO
	ARQPassThrough1
	ARQPassThrough2
	NumARQChannels
)

func (c ARQChannel) String() string {
	switch c {
	case ARQSPI:
		return "spi"
	case ARQGPIO:
		return "gpio"
	case ARQPassThrough1:
		return "pass_through_1"
	case ARQPassThrough2:
		return "pass_through_2"
	default:
		return "unknown"
	}
}

type RetransmissionChannel struct {
	Count    uint8 // 7-bit retransmission count
	Exceeded bool
}

type MaxRetransmissionStatus struct {
	Flag     bool // combined any-channel-exceeded bit
	Channels [NumARQChannels]RetransmissionChannel
}

type MIPIRxErrorStatus struct {
	PHYHighSpeed [MaxPHYs]uint8
	CSI          uint16 // CSI controller error bits, assembled from two halves
}

type PixelClockDriftStatus struct {
	Drift bool
}

// LineState classifies a line-fault monitor status code.
type LineState uint8

const (
	LineNotChecked LineState = iota
	LineShortToBattery
	LineShortToGround
	LineNormal
	LineOpen
)

// DecodeLineState maps a 2-bit monitor status code.
func DecodeLineState(code uint8) LineState {
	switch code {
	case 0:
		return LineShortToBattery
	case 1:
		return LineShortToGround
	case 2:
		return LineNormal
	default:
		return LineOpen
	}
}

func (s LineState) String() string {
	switch s {
	case LineShortToBattery:
		return "short_to_battery"
	case LineShortToGround:
		return "short_to_ground"
	case LineNormal:
		return "normal"
	case LineOpen:
		return "line_open"
	default:
		return "not_checked"
	}
}

type LineFaultMonitor struct {
	Enabled bool
	State   LineState
}

type LineFaultStatus struct {
	Interrupt bool
	Monitors  [MaxLineFaultMonitors]LineFaultMonitor
}

type PixelClockDetectStatus struct {
	Detected bool
}

type VideoOverflowStatus struct {
	Overflow bool
}

type MemoryECCStatus struct {
	Flag  bool
	Count uint8
}

type PHYLowPowerStatus struct {
	PHYLowPower [MaxPHYs]uint8
}

// PacketCountStatus holds counter sums over Samples reads.
type PacketCountStatus struct {
	PipeEnabled   bool
	TunnelMode    bool
	Samples       int
	PHYPackets    uint32
	CSIPackets    uint32
	TunnelPackets uint32
	PHYClocks     uint32
}

type StreamIDStatus struct {
	StreamID uint8
}

type EyeOpeningStatus struct {
	Flag    bool
	Opening uint8
}

type RemoteErrorStatus struct {
	Flag bool
}
