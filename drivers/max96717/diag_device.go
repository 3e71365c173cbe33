package max96717

import (
	"log/slog"

	"gmsl-go/drivers/gmsl"
)

var partNames = map[uint8]string{
	IDMAX96717:  "max96717",
	IDMAX96717F: "max96717f",
	IDMAX96717R: "max96717r",
}

// DeviceID reads DEV_ID. Faults when the ID is not a family member.
func DeviceID(d *gmsl.Device) (gmsl.DeviceIDStatus, bool, error) {
	id, err := d.Get(fieldDevID)
	if err != nil {
		return gmsl.DeviceIDStatus{}, false, err
	}
	st := gmsl.DeviceIDStatus{ID: id, Part: partNames[id]}
	fault := st.Part == ""
	d.LogDiag(gmsl.CheckDeviceID, fault, slog.Int("id", int(id)), slog.String("part", st.Part))
	return st, fault, nil
}

// DeviceRevision never faults.
func DeviceRevision(d *gmsl.Device) (gmsl.DeviceRevisionStatus, bool, error) {
	rev, err := d.Get(fieldDevRev)
	if err != nil {
		return gmsl.DeviceRevisionStatus{}, false, err
	}
	d.LogDiag(gmsl.CheckDeviceRevision, false, slog.Int("rev", int(rev)))
	return gmsl.DeviceRevisionStatus{Revision: rev}, false, nil
}

func RemoteError(d *gmsl.Device) (gmsl.RemoteErrorStatus, bool, error) {
	flag, err := d.Flag(fieldRemErrFlag)
	if err != nil {
		return gmsl.RemoteErrorStatus{}, false, err
	}
	d.LogDiag(gmsl.CheckRemoteError, flag)
	return gmsl.RemoteErrorStatus{Flag: flag}, flag, nil
}

// MemoryECC2Bit reads the uncorrectable ECC interrupt; the counter is read
// only when it is set.
func MemoryECC2Bit(d *gmsl.Device) (gmsl.MemoryECCStatus, bool, error) {
	var st gmsl.MemoryECCStatus
	flag, err := d.Flag(fieldMemECCErr2Int)
	if err != nil {
		return gmsl.MemoryECCStatus{}, false, err
	}
	st.Flag = flag
	if flag {
		if st.Count, err = d.Get(fieldMemECCErr2Cnt); err != nil {
			return gmsl.MemoryECCStatus{}, false, err
		}
	}
	d.LogDiag(gmsl.CheckMemoryECC2Bit, flag, slog.Int("count", int(st.Count)))
	return st, flag, nil
}
