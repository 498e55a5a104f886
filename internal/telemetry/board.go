// Package telemetry samples board power and thermal sensors through the
// kernel hwmon class and smooths power channels with moving averages.
package telemetry

import (
	"codeberg.org/mutker/platformstats/internal/logger"
	"codeberg.org/mutker/platformstats/internal/sysfs"
)

// BoardSensorName is the hwmon name of the SOM power monitor.
const BoardSensorName = "ina260_u14"

const microWattsPerMilliWatt = 1000

// PowerSample is one reading of the board power sensor together with the
// window averages after this sample was folded in.
type PowerSample struct {
	Power   int64 // mW
	Current int64 // mA
	Voltage int64 // mV

	AveragePower   int64 // mW
	AverageCurrent int64 // mA
	AverageVoltage int64 // mV
}

// BoardPower polls the ina260 power sensor. The hwmon id is resolved once at
// construction; hwmon topology is static after boot.
type BoardPower struct {
	base    string
	id      int
	power   *MovingAverage
	current *MovingAverage
	voltage *MovingAverage
}

// NewBoardPower locates the board power sensor under root and prepares one
// moving-average window of the given size per channel. A missing sensor
// surfaces as a device_not_found error, checkable via sysfs.IsNotFound.
func NewBoardPower(root string, window int) (*BoardPower, error) {
	id, err := sysfs.ResolveID(root, BoardSensorName)
	if err != nil {
		return nil, err
	}

	logger.Debug().Str("sensor", BoardSensorName).Int("hwmon_id", id).Msg("Resolved board power sensor")

	power, err := NewMovingAverage(window)
	if err != nil {
		return nil, err
	}
	current, err := NewMovingAverage(window)
	if err != nil {
		return nil, err
	}
	voltage, err := NewMovingAverage(window)
	if err != nil {
		return nil, err
	}

	return &BoardPower{
		base:    root + "/hwmon",
		id:      id,
		power:   power,
		current: current,
		voltage: voltage,
	}, nil
}

// Sample reads the instantaneous power, current and voltage channels and
// pushes each through its moving average. Power is reported by the kernel in
// microwatts and converted to milliwatts.
func (b *BoardPower) Sample() (PowerSample, error) {
	power, err := sysfs.ReadInt(b.base, "/power1_input", b.id)
	if err != nil {
		return PowerSample{}, err
	}
	power /= microWattsPerMilliWatt

	current, err := sysfs.ReadInt(b.base, "/curr1_input", b.id)
	if err != nil {
		return PowerSample{}, err
	}

	voltage, err := sysfs.ReadInt(b.base, "/in1_input", b.id)
	if err != nil {
		return PowerSample{}, err
	}

	return PowerSample{
		Power:          power,
		Current:        current,
		Voltage:        voltage,
		AveragePower:   b.power.Push(power),
		AverageCurrent: b.current.Push(current),
		AverageVoltage: b.voltage.Push(voltage),
	}, nil
}
