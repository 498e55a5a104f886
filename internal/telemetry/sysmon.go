package telemetry

import (
	"codeberg.org/mutker/platformstats/internal/logger"
	"codeberg.org/mutker/platformstats/internal/sysfs"
)

// SysmonSensorName is the hwmon name of the on-chip analog monitor.
const SysmonSensorName = "ams"

const milliDegreesPerDegree = 1000

// SysmonReading holds one reading of the on-chip analog monitor:
// temperatures in millidegrees Celsius and voltage rails in millivolts.
type SysmonReading struct {
	LPDTemp int64
	FPDTemp int64
	PLTemp  int64

	VCCPsPLL    int64
	PLVCCInt    int64
	VCCPsDDR    int64
	VCCPsIntFP  int64
	VCCPsFPD    int64
	PSIOBank500 int64
	VCCPsGTR    int64
	VTTPsGTR    int64
}

// CelsiusFromMilli converts a temperature channel reading for display.
func CelsiusFromMilli(milli int64) int64 {
	return milli / milliDegreesPerDegree
}

// Sysmon reads the ams analog monitor. The hwmon id is resolved once at
// construction.
type Sysmon struct {
	base string
	id   int
}

// NewSysmon locates the analog monitor under root. A missing sensor surfaces
// as a device_not_found error, checkable via sysfs.IsNotFound.
func NewSysmon(root string) (*Sysmon, error) {
	id, err := sysfs.ResolveID(root, SysmonSensorName)
	if err != nil {
		return nil, err
	}

	logger.Debug().Str("sensor", SysmonSensorName).Int("hwmon_id", id).Msg("Resolved analog monitor")

	return &Sysmon{base: root + "/hwmon", id: id}, nil
}

// Read reads every temperature and voltage channel of the monitor.
func (s *Sysmon) Read() (SysmonReading, error) {
	var reading SysmonReading

	channels := []struct {
		suffix string
		dst    *int64
	}{
		{"/temp1_input", &reading.LPDTemp},
		{"/temp2_input", &reading.FPDTemp},
		{"/temp3_input", &reading.PLTemp},
		{"/in1_input", &reading.VCCPsPLL},
		{"/in3_input", &reading.PLVCCInt},
		{"/in6_input", &reading.VCCPsDDR},
		{"/in7_input", &reading.VCCPsIntFP},
		{"/in9_input", &reading.VCCPsFPD},
		{"/in13_input", &reading.PSIOBank500},
		{"/in16_input", &reading.VCCPsGTR},
		{"/in17_input", &reading.VTTPsGTR},
	}

	for _, ch := range channels {
		val, err := sysfs.ReadInt(s.base, ch.suffix, s.id)
		if err != nil {
			return SysmonReading{}, err
		}
		*ch.dst = val
	}

	return reading, nil
}
