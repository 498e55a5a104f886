package sysfs

import (
	"os"
	"strings"

	"codeberg.org/mutker/platformstats/internal/errors"
)

// DefaultHwmonRoot is where the kernel registers hwmon devices.
const DefaultHwmonRoot = "/sys/class/hwmon"

// CountDevices returns the number of hwmon device directories under root.
func CountDevices(root string) (int, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return 0, errors.New().Wrap(errors.ErrIOUnavailable, err)
	}

	count := 0
	for _, entry := range entries {
		if strings.Contains(entry.Name(), "hwmon") {
			count++
		}
	}

	return count, nil
}

// ResolveID scans hwmon devices under root and returns the numeric id of the
// first device whose name file matches targetName exactly. Resolution is an
// O(n) scan over the registered devices; hwmon topology is static after boot,
// so callers resolve once and keep the id.
func ResolveID(root, targetName string) (int, error) {
	count, err := CountDevices(root)
	if err != nil {
		return -1, err
	}

	base := root + "/hwmon"
	for id := 0; id < count; id++ {
		name, err := ReadString(base, "/name", id)
		if err != nil {
			// A device without a readable name file cannot match; keep scanning.
			continue
		}
		if name == targetName {
			return id, nil
		}
	}

	return -1, errors.New().WithData(errors.ErrDeviceNotFound, targetName)
}
