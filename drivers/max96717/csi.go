package max96717

import (
	"log/slog"

	"gmsl-go/drivers/gmsl"
	"gmsl-go/errcode"
	"gmsl-go/x/conv"
)

// PHY describes one PHY sub-controller of the CSI port.
type PHY struct {
	ID            uint8    // 1 or 2
	LaneMap       [2]uint8 // serializer lane (0..3) for each of the PHY's sensor lanes
	DataInverted  [2]bool
	ClockInverted bool
}

// CSIPort is the logical description of the CSI-2 input.
type CSIPort struct {
	Lanes      uint8 // 1, 2 or 4
	TunnelMode bool
	PHYs       []PHY // at most two, distinct IDs
}

// Stream selects one virtual channel and its data type.
type Stream struct {
	VC       uint8 // 1..8
	DataType uint8 // 6-bit CSI-2 data type
	Enabled  bool
}

// EncodeLaneCount maps a lane count onto CTRL1_NUM_LANES.
func EncodeLaneCount(n uint8) (uint8, error) {
	switch n {
	case 1:
		return 0, nil
	case 2:
		return 1, nil
	case 4:
		return 3, nil
	}
	return 0, errcode.Invalid("lane count", conv.Dec(uint64(n))+" not in {1,2,4}")
}

// decodeLaneCount is the inverse of EncodeLaneCount.
func decodeLaneCount(code uint8) (uint8, bool) {
	switch code {
	case 0:
		return 1, true
	case 1:
		return 2, true
	case 3:
		return 4, true
	}
	return 0, false
}

// EncodeLaneMap packs two 2-bit serializer lane indices, lane 0 lowest.
func EncodeLaneMap(m [2]uint8) (uint8, error) {
	for i, l := range m {
		if l > 3 {
			return 0, errcode.Invalid("lane map", "lane "+conv.Dec(uint64(i))+" maps to "+conv.Dec(uint64(l)))
		}
	}
	return m[0] | m[1]<<2, nil
}

// EncodePolarity packs lane0, lane1 and clock inversion into 3 bits.
func EncodePolarity(data [2]bool, clock bool) uint8 {
	return b2u(data[0]) | b2u(data[1])<<1 | b2u(clock)<<2
}

// phyFields returns the (lane map, polarity) register pair of a PHY.
func phyFields(id uint8) (gmsl.Field, gmsl.Field, error) {
	switch id {
	case 1:
		return fieldPHY1Map, fieldPHY1Pol, nil
	case 2:
		return fieldPHY2Map, fieldPHY2Pol, nil
	}
	return gmsl.Field{}, gmsl.Field{}, errcode.Invalid("phy", "id "+conv.Dec(uint64(id))+" not in {1,2}")
}

type phyWrite struct {
	mapField, polField gmsl.Field
	mapVal, polVal     uint8
}

type portPlan struct {
	lanes uint8
	phys  []phyWrite
}

// plan validates the port and precomputes every field value.
func (p CSIPort) plan() (portPlan, error) {
	lanes, err := EncodeLaneCount(p.Lanes)
	if err != nil {
		return portPlan{}, err
	}
	if len(p.PHYs) > gmsl.MaxPHYs {
		return portPlan{}, errcode.Invalid("phy", "more than two PHYs")
	}
	out := portPlan{lanes: lanes}
	var seen [gmsl.MaxPHYs + 1]bool
	for _, ph := range p.PHYs {
		mf, pf, err := phyFields(ph.ID)
		if err != nil {
			return portPlan{}, err
		}
		if seen[ph.ID] {
			return portPlan{}, errcode.Invalid("phy", "id "+conv.Dec(uint64(ph.ID))+" given twice")
		}
		seen[ph.ID] = true
		mv, err := EncodeLaneMap(ph.LaneMap)
		if err != nil {
			return portPlan{}, err
		}
		out.phys = append(out.phys, phyWrite{
			mapField: mf, polField: pf,
			mapVal: mv, polVal: EncodePolarity(ph.DataInverted, ph.ClockInverted),
		})
	}
	return out, nil
}

// ConfigureCSI writes the port description. Input is validated before any
// bus traffic. Each write completes before the next is issued:
// disable port and reset clock, tunnel mode, disable pipe output, PHY
// interface 1x4 and lane count, per-PHY lane map and polarity, enable port.
func ConfigureCSI(d *gmsl.Device, p CSIPort) error {
	pl, err := p.plan()
	if err != nil {
		return err
	}
	if len(pl.phys) > int(d.Caps.PHYs) {
		return errcode.Invalid("phy", "device declares "+conv.Dec(uint64(d.Caps.PHYs))+" PHYs")
	}
	log := d.Logger()

	if err := d.Update(regFrontTop0, 0, fieldStartPortB.Mask|fieldClkSelZ.Mask); err != nil {
		return err
	}
	if err := d.SetFlag(fieldTunMode, p.TunnelMode); err != nil {
		return err
	}
	if err := d.SetFlag(fieldStartPortBZ, false); err != nil {
		return err
	}
	if err := d.Set(fieldPHYConfig, phyConfig1x4); err != nil {
		return err
	}
	if err := d.Set(fieldNumLanes, pl.lanes); err != nil {
		return err
	}
	for _, w := range pl.phys {
		if err := d.Set(w.mapField, w.mapVal); err != nil {
			return err
		}
		if err := d.Set(w.polField, w.polVal); err != nil {
			return err
		}
	}
	if err := d.SetFlag(fieldStartPortB, true); err != nil {
		return err
	}

	cp := p
	cp.PHYs = append([]PHY(nil), p.PHYs...)
	state(d).Port = &cp
	log.Debug("csi configured", slog.Int("lanes", int(p.Lanes)), slog.Bool("tunnel", p.TunnelMode), slog.Int("phys", len(p.PHYs)))
	return nil
}

// streamReg returns the data-type selector register of a stream.
func streamReg(stream uint8) (uint16, error) {
	if a, ok := memDTRegs[stream]; ok {
		return a, nil
	}
	return 0, errcode.Invalid("stream", conv.Dec(uint64(stream))+" has no data-type selector")
}

func (s Stream) validate() error {
	if _, err := streamReg(s.VC); err != nil {
		return err
	}
	if s.DataType > memDTMask {
		return errcode.Invalid("stream", "data type exceeds 6 bits")
	}
	return nil
}

// SetStreamDataType writes a stream's data-type selector and its enable bit.
func SetStreamDataType(d *gmsl.Device, stream, dt uint8, enabled bool) error {
	s := Stream{VC: stream, DataType: dt, Enabled: enabled}
	if err := s.validate(); err != nil {
		return err
	}
	addr, _ := streamReg(stream)
	return d.Update(addr, dt|b2u(enabled)<<6, memDTMask|memDTEnMask)
}

// SelectStreams writes the 16-bit virtual-channel enable bitmap as two
// independent 8-bit halves, low half first.
func SelectStreams(d *gmsl.Device, vcs uint16) error {
	for i := 0; i < gmsl.MaxStreams; i++ {
		if vcs&(1<<i) == 0 {
			continue
		}
		if _, err := streamReg(uint8(i)); err != nil {
			return err
		}
	}
	if err := d.Write(fieldVCSelL.Addr, uint8(vcs)); err != nil {
		return err
	}
	return d.Write(fieldVCSelH.Addr, uint8(vcs>>8))
}
