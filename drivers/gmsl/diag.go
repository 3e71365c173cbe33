package gmsl

import (
	"context"
	"log/slog"

	"gmsl-go/errcode"
)

// Check names one slot of the capability table.
type Check uint8

const (
	CheckDeviceID Check = iota
	CheckDeviceRevision
	CheckPartConfig
	CheckLinkDecodeErrors
	CheckLinkIdleErrors
	CheckLinkLock
	CheckLinkMaxRetransmission
	CheckMIPIRxErrors
	CheckPixelClockDrift
	CheckLineFault
	CheckPixelClockDetect
	CheckVideoOverflow
	CheckMemoryECC2Bit
	CheckPHYLowPowerErrors
	CheckMIPIPacketCount
	CheckStreamID
	CheckEyeOpening
	CheckRemoteError
	NumChecks
)

var checkNames = [NumChecks]string{
	"device_id",
	"device_revision",
	"part_config",
	"link_decode_errors",
	"link_idle_errors",
	"link_lock",
	"link_max_retransmission",
	"mipi_rx_errors",
	"pixel_clock_drift",
	"line_fault",
	"pixel_clock_detect",
	"video_overflow",
	"memory_ecc_2bit",
	"phy_low_power_errors",
	"mipi_packet_count",
	"stream_id",
	"eye_opening",
	"remote_error",
}

func (c Check) String() string {
	if c < NumChecks {
		return checkNames[c]
	}
	return "unknown"
}

// Diagnostics is a variant's capability table. A nil slot means the variant
// does not support that check, which is distinct from a supported check that
// found no fault.
//
// Every slot returns (status, fault, err). err reports a transport or
// parameter failure, in which case the result is inconclusive and fault is
// false. fault reports anomalous hardware state that was read successfully.
type Diagnostics struct {
	DeviceID              func(*Device) (DeviceIDStatus, bool, error)
	DeviceRevision        func(*Device) (DeviceRevisionStatus, bool, error)
	PartConfig            func(*Device) (PartConfigStatus, bool, error)
	LinkDecodeErrors      func(*Device) (ErrorCountStatus, bool, error)
	LinkIdleErrors        func(*Device) (ErrorCountStatus, bool, error)
	LinkLock              func(*Device) (LinkLockStatus, bool, error)
	LinkMaxRetransmission func(*Device) (MaxRetransmissionStatus, bool, error)
	MIPIRxErrors          func(*Device) (MIPIRxErrorStatus, bool, error)
	PixelClockDrift       func(*Device) (PixelClockDriftStatus, bool, error)
	LineFault             func(*Device) (LineFaultStatus, bool, error)
	PixelClockDetect      func(*Device) (PixelClockDetectStatus, bool, error)
	VideoOverflow         func(*Device) (VideoOverflowStatus, bool, error)
	MemoryECC2Bit         func(*Device) (MemoryECCStatus, bool, error)
	PHYLowPowerErrors     func(*Device) (PHYLowPowerStatus, bool, error)
	MIPIPacketCount       func(*Device) (PacketCountStatus, bool, error)
	StreamID              func(*Device) (StreamIDStatus, bool, error)
	EyeOpening            func(*Device) (EyeOpeningStatus, bool, error)
	RemoteError           func(*Device) (RemoteErrorStatus, bool, error)
}

type anyCheck func(*Device) (any, bool, error)

func erase[S any](f func(*Device) (S, bool, error)) anyCheck {
	if f == nil {
		return nil
	}
	return func(d *Device) (any, bool, error) {
		s, fault, err := f(d)
		if err != nil {
			return nil, false, err
		}
		return s, fault, nil
	}
}

func (t *Diagnostics) slot(c Check) anyCheck {
	if t == nil {
		return nil
	}
	switch c {
	case CheckDeviceID:
		return erase(t.DeviceID)
	case CheckDeviceRevision:
		return erase(t.DeviceRevision)
	case CheckPartConfig:
		return erase(t.PartConfig)
	case CheckLinkDecodeErrors:
		return erase(t.LinkDecodeErrors)
	case CheckLinkIdleErrors:
		return erase(t.LinkIdleErrors)
	case CheckLinkLock:
		return erase(t.LinkLock)
	case CheckLinkMaxRetransmission:
		return erase(t.LinkMaxRetransmission)
	case CheckMIPIRxErrors:
		return erase(t.MIPIRxErrors)
	case CheckPixelClockDrift:
		return erase(t.PixelClockDrift)
	case CheckLineFault:
		return erase(t.LineFault)
	case CheckPixelClockDetect:
		return erase(t.PixelClockDetect)
	case CheckVideoOverflow:
		return erase(t.VideoOverflow)
	case CheckMemoryECC2Bit:
		return erase(t.MemoryECC2Bit)
	case CheckPHYLowPowerErrors:
		return erase(t.PHYLowPowerErrors)
	case CheckMIPIPacketCount:
		return erase(t.MIPIPacketCount)
	case CheckStreamID:
		return erase(t.StreamID)
	case CheckEyeOpening:
		return erase(t.EyeOpening)
	case CheckRemoteError:
		return erase(t.RemoteError)
	}
	return nil
}

// Supported reports whether slot c is populated.
func (t *Diagnostics) Supported(c Check) bool { return t.slot(c) != nil }

// Checks lists the populated slots in table order.
func (t *Diagnostics) Checks() []Check {
	var out []Check
	for c := Check(0); c < NumChecks; c++ {
		if t.Supported(c) {
			out = append(out, c)
		}
	}
	return out
}

// Report is the outcome of one dispatched check. Status holds the slot's
// concrete status record (nil when Err is set).
type Report struct {
	Check  Check
	Status any
	Fault  bool
	Err    error
}

// Inconclusive reports whether the check failed to read hardware.
func (r Report) Inconclusive() bool { return r.Err != nil }

// Run invokes check c through the handle's table.
func (d *Device) Run(c Check) (any, bool, error) {
	f := d.Diag.slot(c)
	if f == nil {
		return nil, false, &errcode.E{C: errcode.Unsupported, Op: c.String()}
	}
	return f(d)
}

// RunAll invokes every populated slot once, in table order. A failing check
// does not stop the others.
func (d *Device) RunAll() []Report {
	checks := d.Diag.Checks()
	out := make([]Report, 0, len(checks))
	for _, c := range checks {
		st, fault, err := d.Run(c)
		out = append(out, Report{Check: c, Status: st, Fault: fault, Err: err})
	}
	return out
}

// LogDiag logs one check outcome: error level when fault is set, info
// otherwise.
func (d *Device) LogDiag(c Check, fault bool, attrs ...slog.Attr) {
	lvl := slog.LevelInfo
	if fault {
		lvl = slog.LevelError
	}
	all := make([]slog.Attr, 0, len(attrs)+1)
	all = append(all, slog.Bool("fault", fault))
	all = append(all, attrs...)
	d.log.LogAttrs(context.Background(), lvl, "diag "+c.String(), all...)
}
