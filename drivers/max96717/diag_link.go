package max96717

import (
	"log/slog"

	"gmsl-go/drivers/gmsl"
	"gmsl-go/x/mathx"
)

// errorCount reads flag and, only when it is set, the matching counter.
func errorCount(d *gmsl.Device, c gmsl.Check, flag, count gmsl.Field) (gmsl.ErrorCountStatus, bool, error) {
	set, err := d.Flag(flag)
	if err != nil {
		return gmsl.ErrorCountStatus{}, false, err
	}
	st := gmsl.ErrorCountStatus{Flag: set}
	if set {
		if st.Count, err = d.Get(count); err != nil {
			return gmsl.ErrorCountStatus{}, false, err
		}
	}
	d.LogDiag(c, set, slog.Int("count", int(st.Count)))
	return st, set, nil
}

// LinkDecodeErrors reports the link A decode error counter.
func LinkDecodeErrors(d *gmsl.Device) (gmsl.ErrorCountStatus, bool, error) {
	return errorCount(d, gmsl.CheckLinkDecodeErrors, fieldDecErrFlagA, fieldDecErrA)
}

// LinkIdleErrors reports the idle-word error counter.
func LinkIdleErrors(d *gmsl.Device) (gmsl.ErrorCountStatus, bool, error) {
	return errorCount(d, gmsl.CheckLinkIdleErrors, fieldIdleErrFlag, fieldIdleErr)
}

func LinkLock(d *gmsl.Device) (gmsl.LinkLockStatus, bool, error) {
	locked, err := d.Flag(fieldLocked)
	if err != nil {
		return gmsl.LinkLockStatus{}, false, err
	}
	d.LogDiag(gmsl.CheckLinkLock, !locked, slog.Bool("locked", locked))
	return gmsl.LinkLockStatus{Locked: locked}, !locked, nil
}

// LinkMaxRetransmission reads the combined MAX_RT flag. The per-channel ARQ
// registers are read only when it is set.
func LinkMaxRetransmission(d *gmsl.Device) (gmsl.MaxRetransmissionStatus, bool, error) {
	var st gmsl.MaxRetransmissionStatus
	flag, err := d.Flag(fieldMaxRTFlag)
	if err != nil {
		return st, false, err
	}
	st.Flag = flag
	if !flag {
		d.LogDiag(gmsl.CheckLinkMaxRetransmission, false)
		return st, false, nil
	}

	fault := false
	attrs := make([]slog.Attr, 0, gmsl.NumARQChannels)
	for ch := gmsl.ARQChannel(0); ch < gmsl.NumARQChannels; ch++ {
		raw, err := d.Read(arqRegs[ch], 0xFF)
		if err != nil {
			return gmsl.MaxRetransmissionStatus{}, false, err
		}
		c := gmsl.RetransmissionChannel{
			Count:    raw & arqRTCntMask,
			Exceeded: raw&arqMaxErrMask != 0,
		}
		st.Channels[ch] = c
		fault = fault || c.Exceeded
		attrs = append(attrs, slog.Group(ch.String(),
			slog.Int("count", int(c.Count)),
			slog.Bool("exceeded", c.Exceeded),
		))
	}
	d.LogDiag(gmsl.CheckLinkMaxRetransmission, fault, attrs...)
	return st, fault, nil
}

// LineFault reads the monitor enables, then the line-fault interrupt, then
// both monitor status codes from their shared register in one access. Each
// stage stops early when there is nothing further to report. Only enabled
// monitors can fault; disabled ones are still classified.
func LineFault(d *gmsl.Device) (gmsl.LineFaultStatus, bool, error) {
	var st gmsl.LineFaultStatus
	en, err := d.Get(fieldPULF)
	if err != nil {
		return st, false, err
	}
	n := mathx.Min(int(d.Caps.LineFaultMonitors), gmsl.MaxLineFaultMonitors)
	enabled := false
	for i := 0; i < n; i++ {
		st.Monitors[i].Enabled = en&(1<<i) != 0
		enabled = enabled || st.Monitors[i].Enabled
	}
	if !enabled {
		d.LogDiag(gmsl.CheckLineFault, false, slog.Bool("enabled", false))
		return st, false, nil
	}

	if st.Interrupt, err = d.Flag(fieldLFltInt); err != nil {
		return gmsl.LineFaultStatus{}, false, err
	}
	if !st.Interrupt {
		d.LogDiag(gmsl.CheckLineFault, false, slog.Bool("interrupt", false))
		return st, false, nil
	}

	raw, err := d.Read(regLF, fieldLF0.Mask|fieldLF1.Mask)
	if err != nil {
		return gmsl.LineFaultStatus{}, false, err
	}
	fault := false
	codes := [gmsl.MaxLineFaultMonitors]gmsl.Field{fieldLF0, fieldLF1}
	attrs := make([]slog.Attr, 0, n)
	for i := 0; i < n; i++ {
		m := &st.Monitors[i]
		m.State = gmsl.DecodeLineState((raw & codes[i].Mask) >> codes[i].Pos())
		if m.Enabled && m.State != gmsl.LineNormal {
			fault = true
		}
		attrs = append(attrs, slog.String("lmn"+string(rune('0'+i)), m.State.String()))
	}
	d.LogDiag(gmsl.CheckLineFault, fault, attrs...)
	return st, fault, nil
}

// EyeOpening reads the EOM error flag and the current eye opening.
func EyeOpening(d *gmsl.Device) (gmsl.EyeOpeningStatus, bool, error) {
	flag, err := d.Flag(fieldEOMErrFlagA)
	if err != nil {
		return gmsl.EyeOpeningStatus{}, false, err
	}
	eom, err := d.Get(fieldEOMA)
	if err != nil {
		return gmsl.EyeOpeningStatus{}, false, err
	}
	d.LogDiag(gmsl.CheckEyeOpening, flag, slog.Int("eom", int(eom)))
	return gmsl.EyeOpeningStatus{Flag: flag, Opening: eom}, flag, nil
}
