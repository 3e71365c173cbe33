package max96717

import (
	"log/slog"

	"gmsl-go/drivers/gmsl"
	"gmsl-go/errcode"
)

// Pipe is the video pipe (Z) setup written by ConfigurePipe.
type Pipe struct {
	DoubleBPP8  bool
	DoubleBPP10 bool
	DoubleBPP12 bool
	SoftBPP     uint8 // override value, 0 disables the override
	StreamID    uint8 // 0..3
}

func (p Pipe) validate() error {
	if p.SoftBPP > fieldSoftBPP.Mask {
		return errcode.Invalid("pipe", "soft bpp exceeds 5 bits")
	}
	if p.StreamID > fieldTxStrSel.Mask {
		return errcode.Invalid("pipe", "stream id must be 0..3")
	}
	return nil
}

// ConfigurePipe enables pipe output, writes the doubling classes, the soft
// BPP override and the stream ID, then asserts the pipe enable last.
func ConfigurePipe(d *gmsl.Device, p Pipe) error {
	if err := p.validate(); err != nil {
		return err
	}
	if err := d.SetFlag(fieldStartPortBZ, true); err != nil {
		return err
	}
	for _, w := range [...]struct {
		f  gmsl.Field
		on bool
	}{
		{fieldBPP8Dbl, p.DoubleBPP8},
		{fieldBPP10Dbl, p.DoubleBPP10},
		{fieldBPP12Dbl, p.DoubleBPP12},
	} {
		if err := d.SetFlag(w.f, w.on); err != nil {
			return err
		}
	}
	// Value and enable share one register; write both in a single update.
	soft := p.SoftBPP | b2u(p.SoftBPP != 0)<<5
	if err := d.Update(regFrontTop22, soft, fieldSoftBPP.Mask|fieldSoftBPPEn.Mask); err != nil {
		return err
	}
	if err := d.Set(fieldTxStrSel, p.StreamID); err != nil {
		return err
	}
	if err := d.SetFlag(fieldVidTxEnZ, true); err != nil {
		return err
	}

	cp := p
	state(d).Pipe = &cp
	d.Logger().Debug("pipe configured",
		slog.Int("soft_bpp", int(p.SoftBPP)),
		slog.Int("stream_id", int(p.StreamID)),
	)
	return nil
}
