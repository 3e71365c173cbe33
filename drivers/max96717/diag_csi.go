package max96717

import (
	"log/slog"
	"time"

	"gmsl-go/drivers/gmsl"
	"gmsl-go/x/mathx"
)

const (
	packetSamples  = 4
	packetInterval = 10 * time.Millisecond
)

// PartConfig reads the lane setup and the CSI stream configuration back from
// hardware and cross-checks them. It faults on an undecodable lane count, a
// lane setup that differs from the port last written by ConfigureCSI, an
// enabled data type with no known size, or a pixel-doubling setup that does
// not match the smallest enabled data type.
func PartConfig(d *gmsl.Device) (gmsl.PartConfigStatus, bool, error) {
	var st gmsl.PartConfigStatus
	port := state(d).Port
	lanes, phys, laneFault, err := readLaneConfig(d, port)
	if err != nil {
		return gmsl.PartConfigStatus{}, false, err
	}
	st.Lanes = lanes
	if port != nil && !laneFault {
		st.LaneMismatch = !laneMatches(lanes, phys, *port)
	}

	csi, err := readCSIConfig(d)
	if err != nil {
		return gmsl.PartConfigStatus{}, false, err
	}
	st.CSI = csi

	fault := laneFault || st.LaneMismatch ||
		csi.UnknownDataType || csi.DoublingMismatch || csi.SoftBPPMismatch
	d.LogDiag(gmsl.CheckPartConfig, fault,
		slog.Int("lanes", int(lanes.Lanes)),
		slog.Bool("lane_mismatch", st.LaneMismatch),
		slog.Int("min_bpp", int(csi.MinBPP)),
		slog.Bool("doubling", csi.PixelDoubling),
		slog.Bool("doubling_mismatch", csi.DoublingMismatch),
		slog.Bool("soft_bpp_mismatch", csi.SoftBPPMismatch),
		slog.Bool("unknown_dt", csi.UnknownDataType),
	)
	return st, fault, nil
}

// phyReadback holds the raw lane map and polarity fields of one PHY.
type phyReadback struct {
	read     bool
	lanes    uint8
	polarity uint8
}

// lanePHYs orders the PHYs whose fields are read back: those named by the
// configured port in ID order, then the remaining IDs until every lane has a
// PHY. With no port this is PHY 1 then PHY 2.
func lanePHYs(p *CSIPort, lanes uint8) []uint8 {
	ids := make([]uint8, 0, gmsl.MaxPHYs)
	var named [gmsl.MaxPHYs + 1]bool
	if p != nil {
		for _, ph := range p.PHYs {
			if ph.ID >= 1 && int(ph.ID) <= gmsl.MaxPHYs {
				named[ph.ID] = true
			}
		}
		for id := uint8(1); int(id) <= gmsl.MaxPHYs; id++ {
			if named[id] {
				ids = append(ids, id)
			}
		}
	}
	need := int(lanes+1) / 2
	for id := uint8(1); int(id) <= gmsl.MaxPHYs && len(ids) < need; id++ {
		if !named[id] {
			ids = append(ids, id)
		}
	}
	return ids
}

// readLaneConfig decodes the lane count, lane map and polarity. Logical lane
// i lives in the (i/2)th PHY of lanePHYs at slot i%2. The bool result
// reports an undecodable lane count.
func readLaneConfig(d *gmsl.Device, port *CSIPort) (gmsl.LaneConfigStatus, [gmsl.MaxPHYs]phyReadback, bool, error) {
	var (
		st   gmsl.LaneConfigStatus
		phys [gmsl.MaxPHYs]phyReadback
	)
	code, err := d.Get(fieldNumLanes)
	if err != nil {
		return st, phys, false, err
	}
	st.LaneCode = code
	lanes, ok := decodeLaneCount(code)
	if !ok {
		return st, phys, true, nil
	}
	st.Lanes = lanes

	ids := lanePHYs(port, lanes)
	for _, id := range ids {
		mf, pf, _ := phyFields(id)
		rb := &phys[id-1]
		if rb.lanes, err = d.Get(mf); err != nil {
			return gmsl.LaneConfigStatus{}, phys, false, err
		}
		if rb.polarity, err = d.Get(pf); err != nil {
			return gmsl.LaneConfigStatus{}, phys, false, err
		}
		rb.read = true
	}
	st.Map = make([]uint8, lanes)
	st.Inverted = make([]bool, lanes)
	st.PHY = make([]uint8, lanes)
	for i := range st.Map {
		id, slot := ids[i/2], uint(i%2)
		rb := phys[id-1]
		st.PHY[i] = id
		st.Map[i] = (rb.lanes >> (slot * 2)) & 0x3
		st.Inverted[i] = rb.polarity&(1<<slot) != 0
	}
	st.ClockInverted = phys[ids[0]-1].polarity&0x4 != 0
	return st, phys, false, nil
}

// laneMatches compares the lane count and every configured PHY's raw fields
// with what the port would have written.
func laneMatches(st gmsl.LaneConfigStatus, phys [gmsl.MaxPHYs]phyReadback, p CSIPort) bool {
	if st.Lanes != p.Lanes {
		return false
	}
	for _, ph := range p.PHYs {
		if ph.ID < 1 || int(ph.ID) > gmsl.MaxPHYs {
			return false
		}
		rb := phys[ph.ID-1]
		want, err := EncodeLaneMap(ph.LaneMap)
		if err != nil || !rb.read {
			return false
		}
		if rb.lanes != want || rb.polarity != EncodePolarity(ph.DataInverted, ph.ClockInverted) {
			return false
		}
	}
	return true
}

// readCSIConfig walks the enabled virtual channels, collects their data
// types and checks the pixel-doubling setup against the smallest one.
func readCSIConfig(d *gmsl.Device) (gmsl.CSIConfigStatus, error) {
	var st gmsl.CSIConfigStatus
	var err error
	if st.TunnelMode, err = d.Flag(fieldTunMode); err != nil {
		return gmsl.CSIConfigStatus{}, err
	}
	lo, err := d.Get(fieldVCSelL)
	if err != nil {
		return gmsl.CSIConfigStatus{}, err
	}
	hi, err := d.Get(fieldVCSelH)
	if err != nil {
		return gmsl.CSIConfigStatus{}, err
	}
	vcs := uint16(hi)<<8 | uint16(lo)

	for i := uint8(0); i < gmsl.MaxStreams; i++ {
		if vcs&(1<<i) == 0 {
			continue
		}
		s := &st.Streams[i]
		s.VCEnabled = true
		addr, err := streamReg(i)
		if err != nil {
			return gmsl.CSIConfigStatus{}, err
		}
		raw, err := d.Read(addr, memDTMask|memDTEnMask)
		if err != nil {
			return gmsl.CSIConfigStatus{}, err
		}
		s.DataType = raw & memDTMask
		s.DataTypeEnabled = raw&memDTEnMask != 0
		if !s.DataTypeEnabled {
			continue
		}
		bits, ok := DataTypeBits(s.DataType)
		if !ok {
			st.UnknownDataType = true
			continue
		}
		if st.MinBPP == 0 {
			st.MinBPP = bits
		} else {
			st.MinBPP = mathx.Min(st.MinBPP, bits)
		}
	}

	var dbl gmsl.Field
	switch st.MinBPP {
	case 8:
		dbl = fieldBPP8Dbl
	case 10:
		dbl = fieldBPP10Dbl
	case 12:
		dbl = fieldBPP12Dbl
	default:
		// No doubling class: nothing to read back.
		return st, nil
	}
	if st.PixelDoubling, err = d.Flag(dbl); err != nil {
		return gmsl.CSIConfigStatus{}, err
	}
	st.DoublingMismatch = st.PixelDoubling != st.DoublingExpected()

	if st.SoftBPPEnabled, err = d.Flag(fieldSoftBPPEn); err != nil {
		return gmsl.CSIConfigStatus{}, err
	}
	if !st.SoftBPPEnabled {
		return st, nil
	}
	if st.SoftBPP, err = d.Get(fieldSoftBPP); err != nil {
		return gmsl.CSIConfigStatus{}, err
	}
	st.SoftBPPMismatch = st.SoftBPP != 2*st.MinBPP
	return st, nil
}

// MIPIRxErrors reads the high-speed error byte of every declared PHY and the
// 11-bit CSI controller error word.
func MIPIRxErrors(d *gmsl.Device) (gmsl.MIPIRxErrorStatus, bool, error) {
	var st gmsl.MIPIRxErrorStatus
	hs := [gmsl.MaxPHYs]gmsl.Field{fieldPHY1HSErr, fieldPHY2HSErr}
	fault := false
	for i := 0; i < mathx.Min(int(d.Caps.PHYs), gmsl.MaxPHYs); i++ {
		v, err := d.Get(hs[i])
		if err != nil {
			return gmsl.MIPIRxErrorStatus{}, false, err
		}
		st.PHYHighSpeed[i] = v
		fault = fault || v != 0
	}
	lo, err := d.Get(fieldCSIErrL)
	if err != nil {
		return gmsl.MIPIRxErrorStatus{}, false, err
	}
	hi, err := d.Get(fieldCSIErrH)
	if err != nil {
		return gmsl.MIPIRxErrorStatus{}, false, err
	}
	st.CSI = uint16(hi)<<8 | uint16(lo)
	fault = fault || st.CSI != 0
	d.LogDiag(gmsl.CheckMIPIRxErrors, fault,
		slog.Int("phy1_hs", int(st.PHYHighSpeed[0])),
		slog.Int("phy2_hs", int(st.PHYHighSpeed[1])),
		slog.Int("csi", int(st.CSI)),
	)
	return st, fault, nil
}

// PHYLowPowerErrors reads the low-power error field of every declared PHY.
func PHYLowPowerErrors(d *gmsl.Device) (gmsl.PHYLowPowerStatus, bool, error) {
	var st gmsl.PHYLowPowerStatus
	lp := [gmsl.MaxPHYs]gmsl.Field{fieldPHY1LPErr, fieldPHY2LPErr}
	fault := false
	for i := 0; i < mathx.Min(int(d.Caps.PHYs), gmsl.MaxPHYs); i++ {
		v, err := d.Get(lp[i])
		if err != nil {
			return gmsl.PHYLowPowerStatus{}, false, err
		}
		st.PHYLowPower[i] = v
		fault = fault || v != 0
	}
	d.LogDiag(gmsl.CheckPHYLowPowerErrors, fault,
		slog.Int("phy1_lp", int(st.PHYLowPower[0])),
		slog.Int("phy2_lp", int(st.PHYLowPower[1])),
	)
	return st, fault, nil
}

func PixelClockDrift(d *gmsl.Device) (gmsl.PixelClockDriftStatus, bool, error) {
	drift, err := d.Flag(fieldDriftErr)
	if err != nil {
		return gmsl.PixelClockDriftStatus{}, false, err
	}
	d.LogDiag(gmsl.CheckPixelClockDrift, drift)
	return gmsl.PixelClockDriftStatus{Drift: drift}, drift, nil
}

// PixelClockDetect faults when no pixel clock is detected on the port.
func PixelClockDetect(d *gmsl.Device) (gmsl.PixelClockDetectStatus, bool, error) {
	det, err := d.Flag(fieldPClkDet)
	if err != nil {
		return gmsl.PixelClockDetectStatus{}, false, err
	}
	d.LogDiag(gmsl.CheckPixelClockDetect, !det, slog.Bool("detected", det))
	return gmsl.PixelClockDetectStatus{Detected: det}, !det, nil
}

func VideoOverflow(d *gmsl.Device) (gmsl.VideoOverflowStatus, bool, error) {
	ovf, err := d.Flag(fieldOverflow)
	if err != nil {
		return gmsl.VideoOverflowStatus{}, false, err
	}
	d.LogDiag(gmsl.CheckVideoOverflow, ovf)
	return gmsl.VideoOverflowStatus{Overflow: ovf}, ovf, nil
}

// StreamID reports the stream ID of the pipe. Never faults.
func StreamID(d *gmsl.Device) (gmsl.StreamIDStatus, bool, error) {
	id, err := d.Get(fieldTxStrSel)
	if err != nil {
		return gmsl.StreamIDStatus{}, false, err
	}
	d.LogDiag(gmsl.CheckStreamID, false, slog.Int("stream_id", int(id)))
	return gmsl.StreamIDStatus{StreamID: id}, false, nil
}

// MIPIPacketCount samples the packet and clock counters of an enabled pipe.
// The tunnel packet counter is only sampled in tunnel mode. Faults when a
// sampled counter stays at zero across every sample.
func MIPIPacketCount(d *gmsl.Device) (gmsl.PacketCountStatus, bool, error) {
	var st gmsl.PacketCountStatus
	var err error
	if st.PipeEnabled, err = d.Flag(fieldVidTxEnZ); err != nil {
		return gmsl.PacketCountStatus{}, false, err
	}
	if !st.PipeEnabled {
		d.LogDiag(gmsl.CheckMIPIPacketCount, false, slog.Bool("pipe", false))
		return st, false, nil
	}
	if st.TunnelMode, err = d.Flag(fieldTunMode); err != nil {
		return gmsl.PacketCountStatus{}, false, err
	}

	counters := []struct {
		f   gmsl.Field
		sum *uint32
	}{
		{fieldPHY1PktCnt, &st.PHYPackets},
		{fieldCSI1PktCnt, &st.CSIPackets},
		{fieldTunPktCnt, &st.TunnelPackets},
		{fieldPHYClkCnt, &st.PHYClocks},
	}
	for s := 0; s < packetSamples; s++ {
		d.Sleep(packetInterval)
		for _, c := range counters {
			if c.f == fieldTunPktCnt && !st.TunnelMode {
				continue
			}
			v, err := d.Get(c.f)
			if err != nil {
				return gmsl.PacketCountStatus{}, false, err
			}
			*c.sum += uint32(v)
		}
		st.Samples++
	}

	fault := st.PHYPackets == 0 || st.CSIPackets == 0 || st.PHYClocks == 0 ||
		(st.TunnelMode && st.TunnelPackets == 0)
	d.LogDiag(gmsl.CheckMIPIPacketCount, fault,
		slog.Bool("tunnel", st.TunnelMode),
		slog.Int("phy_pkts", int(st.PHYPackets)),
		slog.Int("csi_pkts", int(st.CSIPackets)),
		slog.Int("tun_pkts", int(st.TunnelPackets)),
		slog.Int("phy_clks", int(st.PHYClocks)),
	)
	return st, fault, nil
}
