package cpu

import (
	"codeberg.org/mutker/platformstats/internal/sysfs"
)

const kiloHertzPerMegaHertz = 1000

// Frequency returns the current frequency of the given CPU in kHz, read from
// base + id + "/cpufreq/cpuinfo_cur_freq".
func Frequency(base string, cpuID int) (float64, error) {
	if base == "" {
		base = "/sys/devices/system/cpu/cpu"
	}

	return sysfs.ReadFloat(base, "/cpufreq/cpuinfo_cur_freq", cpuID)
}

// FrequencyMHz converts a cpufreq reading from kHz to MHz for display.
func FrequencyMHz(freqKHz float64) float64 {
	return freqKHz / kiloHertzPerMegaHertz
}
