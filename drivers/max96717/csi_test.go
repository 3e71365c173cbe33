package max96717

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gmsl-go/drivers/gmsl/gmsltest"
	"gmsl-go/errcode"
)

func TestEncodeLaneCount(t *testing.T) {
	for n, want := range map[uint8]uint8{1: 0, 2: 1, 4: 3} {
		got, err := EncodeLaneCount(n)
		require.NoError(t, err)
		assert.Equal(t, want, got, "lanes %d", n)

		back, ok := decodeLaneCount(got)
		assert.True(t, ok)
		assert.Equal(t, n, back)
	}
	for _, n := range []uint8{0, 3, 5, 8} {
		_, err := EncodeLaneCount(n)
		assert.True(t, errors.Is(err, errcode.InvalidParams), "lanes %d", n)
	}
	_, ok := decodeLaneCount(2)
	assert.False(t, ok)
}

func TestEncodeLaneMap(t *testing.T) {
	v, err := EncodeLaneMap([2]uint8{2, 3})
	require.NoError(t, err)
	assert.Equal(t, uint8(0x0E), v)

	v, err = EncodeLaneMap([2]uint8{0, 0})
	require.NoError(t, err)
	assert.Zero(t, v)

	_, err = EncodeLaneMap([2]uint8{0, 4})
	assert.True(t, errors.Is(err, errcode.InvalidParams))
}

func TestEncodePolarity(t *testing.T) {
	assert.Equal(t, uint8(0), EncodePolarity([2]bool{}, false))
	assert.Equal(t, uint8(0x1), EncodePolarity([2]bool{true, false}, false))
	assert.Equal(t, uint8(0x2), EncodePolarity([2]bool{false, true}, false))
	assert.Equal(t, uint8(0x7), EncodePolarity([2]bool{true, true}, true))
}

func TestPHYFields(t *testing.T) {
	m, p, err := phyFields(1)
	require.NoError(t, err)
	assert.Equal(t, fieldPHY1Map, m)
	assert.Equal(t, fieldPHY1Pol, p)

	m, p, err = phyFields(2)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0333), m.Addr)
	assert.Equal(t, uint16(0x0335), p.Addr)

	for _, id := range []uint8{0, 3} {
		_, _, err := phyFields(id)
		assert.True(t, errors.Is(err, errcode.InvalidParams))
	}
}

func TestConfigureCSIWriteOrder(t *testing.T) {
	d, regs, _ := newTestDevice(t, nil)
	port := CSIPort{
		Lanes: 4,
		PHYs: []PHY{
			{ID: 1, LaneMap: [2]uint8{0, 1}, DataInverted: [2]bool{true, false}, ClockInverted: true},
			{ID: 2, LaneMap: [2]uint8{2, 3}},
		},
	}
	require.NoError(t, ConfigureCSI(d, port))

	assert.Equal(t, []gmsltest.Access{
		{Addr: regFrontTop0, Value: 0x40},   // port disabled, clock reset
		{Addr: regMIPIRxExt11, Value: 0x00}, // tunnel off
		{Addr: regFrontTop9, Value: 0x00},   // pipe output off
		{Addr: regMIPIRx0, Value: 0x00},     // 1x4
		{Addr: regMIPIRx1, Value: 0x30},     // four lanes
		{Addr: regMIPIRx2, Value: 0x40},
		{Addr: regMIPIRx4, Value: 0x50},
		{Addr: regMIPIRx3, Value: 0x0E},
		{Addr: regMIPIRx5, Value: 0x00},
		{Addr: regFrontTop0, Value: 0x60}, // port enabled
	}, regs.Writes())

	st, fault, err := PartConfig(d)
	require.NoError(t, err)
	assert.False(t, fault)
	assert.Equal(t, []uint8{0, 1, 2, 3}, st.Lanes.Map)
	assert.Equal(t, []bool{true, false, false, false}, st.Lanes.Inverted)
	assert.True(t, st.Lanes.ClockInverted)
}

func TestPartConfigDetectsLaneDrift(t *testing.T) {
	d, regs, _ := newTestDevice(t, nil)
	require.NoError(t, ConfigureCSI(d, CSIPort{
		Lanes: 2,
		PHYs:  []PHY{{ID: 1, LaneMap: [2]uint8{0, 1}}},
	}))

	regs.Set(regMIPIRx2, 0x10) // lanes swapped behind the driver's back
	st, fault, err := PartConfig(d)
	require.NoError(t, err)
	assert.True(t, fault)
	assert.True(t, st.LaneMismatch)

	regs.Set(regMIPIRx2, 0x40)
	regs.Set(regMIPIRx1, 0x30) // four lanes instead of two
	st, fault, err = PartConfig(d)
	require.NoError(t, err)
	assert.True(t, fault)
	assert.True(t, st.LaneMismatch)
}

func TestPartConfigReadsBackPHY2OnlyPort(t *testing.T) {
	d, regs, _ := newTestDevice(t, nil)
	require.NoError(t, ConfigureCSI(d, CSIPort{
		Lanes: 2,
		PHYs:  []PHY{{ID: 2, LaneMap: [2]uint8{1, 0}, DataInverted: [2]bool{true, false}}},
	}))
	assert.Equal(t, uint8(0x01), regs.Get(regMIPIRx3))
	assert.Equal(t, uint8(0x01), regs.Get(regMIPIRx5))

	regs.Reset()
	st, fault, err := PartConfig(d)
	require.NoError(t, err)
	assert.False(t, fault)
	assert.False(t, st.LaneMismatch)
	assert.Equal(t, []uint8{1, 0}, st.Lanes.Map)
	assert.Equal(t, []bool{true, false}, st.Lanes.Inverted)
	assert.Equal(t, []uint8{2, 2}, st.Lanes.PHY)
	assert.False(t, st.Lanes.ClockInverted)
	assert.Zero(t, regs.ReadCount(regMIPIRx2))
	assert.Zero(t, regs.ReadCount(regMIPIRx4))

	regs.Set(regMIPIRx3, 0x04) // PHY2 lane map changed behind the driver's back
	st, fault, err = PartConfig(d)
	require.NoError(t, err)
	assert.True(t, fault)
	assert.True(t, st.LaneMismatch)

	regs.Set(regMIPIRx3, 0x01)
	regs.Set(regMIPIRx5, 0x05) // PHY2 clock inverted
	st, fault, err = PartConfig(d)
	require.NoError(t, err)
	assert.True(t, fault)
	assert.True(t, st.LaneMismatch)
	assert.True(t, st.Lanes.ClockInverted)
}

func TestPartConfigComparesEveryConfiguredPHY(t *testing.T) {
	d, regs, _ := newTestDevice(t, nil)
	require.NoError(t, ConfigureCSI(d, CSIPort{
		Lanes: 2,
		PHYs: []PHY{
			{ID: 1, LaneMap: [2]uint8{0, 1}},
			{ID: 2, LaneMap: [2]uint8{2, 3}},
		},
	}))
	_, fault, err := PartConfig(d)
	require.NoError(t, err)
	assert.False(t, fault)

	regs.Set(regMIPIRx5, 0x02) // PHY2 carries no lanes but still drifted
	st, fault, err := PartConfig(d)
	require.NoError(t, err)
	assert.True(t, fault)
	assert.True(t, st.LaneMismatch)
	assert.Equal(t, []uint8{1, 1}, st.Lanes.PHY)
}

func TestConfigureCSITunnelMode(t *testing.T) {
	d, regs, _ := newTestDevice(t, map[uint16]uint8{regMIPIRxExt11: 0x00})
	require.NoError(t, ConfigureCSI(d, CSIPort{Lanes: 1, TunnelMode: true}))
	assert.Equal(t, uint8(0x80), regs.Get(regMIPIRxExt11))
	assert.Equal(t, uint8(0x00), regs.Get(regMIPIRx1))
}

func TestConfigureCSIRejectsBeforeBusTraffic(t *testing.T) {
	cases := map[string]CSIPort{
		"lane count":   {Lanes: 3},
		"phy id":       {Lanes: 2, PHYs: []PHY{{ID: 3}}},
		"duplicate":    {Lanes: 4, PHYs: []PHY{{ID: 1}, {ID: 1}}},
		"lane index":   {Lanes: 2, PHYs: []PHY{{ID: 2, LaneMap: [2]uint8{4, 0}}}},
		"three phys":   {Lanes: 4, PHYs: []PHY{{ID: 1}, {ID: 2}, {ID: 2}}},
		"zero phy id":  {Lanes: 1, PHYs: []PHY{{ID: 0}}},
		"no lanes set": {},
	}
	for name, port := range cases {
		t.Run(name, func(t *testing.T) {
			d, regs, _ := newTestDevice(t, nil)
			err := ConfigureCSI(d, port)
			assert.True(t, errors.Is(err, errcode.InvalidParams), err)
			assert.Zero(t, regs.TotalReads())
			assert.Empty(t, regs.Writes())
			assert.Nil(t, d.State.(*State).Port)
		})
	}
}

func TestConfigureCSIStopsOnTransportError(t *testing.T) {
	d, regs, _ := newTestDevice(t, nil)
	regs.FailOn(regMIPIRx1, gmsltest.ErrNack)
	err := ConfigureCSI(d, CSIPort{Lanes: 2})
	assert.True(t, errors.Is(err, errcode.Transport))

	w := regs.Writes()
	require.Len(t, w, 4)
	assert.Equal(t, uint16(regMIPIRx0), w[3].Addr)
	assert.Nil(t, d.State.(*State).Port)
}

func TestConfigurePipeWriteOrder(t *testing.T) {
	d, regs, _ := newTestDevice(t, nil)
	require.NoError(t, ConfigurePipe(d, Pipe{DoubleBPP8: true, SoftBPP: 16, StreamID: 2}))

	assert.Equal(t, []gmsltest.Access{
		{Addr: regFrontTop9, Value: 0x40},
		{Addr: regFrontTop10, Value: 0x04},
		{Addr: regFrontTop11, Value: 0x00},
		{Addr: regFrontTop23, Value: 0x00},
		{Addr: regFrontTop22, Value: 0x30},
		{Addr: regTx3, Value: 0x12},
		{Addr: regReg2, Value: 0x43},
	}, regs.Writes())

	st, _, err := StreamID(d)
	require.NoError(t, err)
	assert.Equal(t, uint8(2), st.StreamID)
}

func TestConfigurePipeClearsOverride(t *testing.T) {
	d, regs, _ := newTestDevice(t, map[uint16]uint8{regFrontTop22: 0x30})
	require.NoError(t, ConfigurePipe(d, Pipe{}))
	assert.Zero(t, regs.Get(regFrontTop22))
}

func TestConfigurePipeRejectsBeforeBusTraffic(t *testing.T) {
	for _, p := range []Pipe{{StreamID: 4}, {SoftBPP: 0x20}} {
		d, regs, _ := newTestDevice(t, nil)
		assert.True(t, errors.Is(ConfigurePipe(d, p), errcode.InvalidParams))
		assert.Zero(t, regs.TotalReads())
		assert.Empty(t, regs.Writes())
	}
}

func TestSelectStreams(t *testing.T) {
	d, regs, _ := newTestDevice(t, nil)
	require.NoError(t, SelectStreams(d, 1<<8|1<<3))
	assert.Equal(t, []gmsltest.Access{
		{Addr: regFrontTop3, Value: 0x08},
		{Addr: regFrontTop4, Value: 0x01},
	}, regs.Writes())
	assert.Zero(t, regs.TotalReads())

	regs.Reset()
	for _, vcs := range []uint16{1 << 0, 1 << 9, 1 << 15, 1<<1 | 1<<9} {
		assert.True(t, errors.Is(SelectStreams(d, vcs), errcode.InvalidParams))
	}
	assert.Empty(t, regs.Writes())

	for vc := uint8(1); vc <= 8; vc++ {
		assert.NoError(t, SelectStreams(d, 1<<vc), "vc %d", vc)
	}
}

func TestSetStreamDataType(t *testing.T) {
	d, regs, _ := newTestDevice(t, map[uint16]uint8{regExtMemDT7: 0x80})
	require.NoError(t, SetStreamDataType(d, 7, DTRAW12, true))
	assert.Equal(t, uint8(0x80|0x40|DTRAW12), regs.Get(regExtMemDT7))

	require.NoError(t, SetStreamDataType(d, 7, DTRAW12, false))
	assert.Equal(t, uint8(0x80|DTRAW12), regs.Get(regExtMemDT7))

	regs.Reset()
	for _, s := range []uint8{0, 9, 15} {
		assert.True(t, errors.Is(SetStreamDataType(d, s, DTRAW8, true), errcode.InvalidParams))
	}
	assert.True(t, errors.Is(SetStreamDataType(d, 1, 0x40, true), errcode.InvalidParams))
	assert.Zero(t, regs.TotalReads())
}
