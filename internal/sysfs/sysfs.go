// Package sysfs reads scalar values from kernel pseudo-files laid out as
// numbered device directories (hwmon, cpufreq). Paths are assembled as
// base + id + suffix, e.g. "/sys/class/hwmon/hwmon" + 3 + "/power1_input".
package sysfs

import (
	"os"
	"strconv"
	"strings"

	"codeberg.org/mutker/platformstats/internal/errors"
)

// ReadInt reads a single integer value from base + id + suffix.
func ReadInt(base, suffix string, id int) (int64, error) {
	token, path, err := readToken(base, suffix, id)
	if err != nil {
		return 0, err
	}

	val, err := strconv.ParseInt(token, 10, 64)
	if err != nil {
		return 0, errors.New().WithData(errors.ErrParseFailed, path)
	}

	return val, nil
}

// ReadFloat reads a single float value from base + id + suffix.
func ReadFloat(base, suffix string, id int) (float64, error) {
	token, path, err := readToken(base, suffix, id)
	if err != nil {
		return 0, err
	}

	val, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0, errors.New().WithData(errors.ErrParseFailed, path)
	}

	return val, nil
}

// ReadString reads the first whitespace-delimited token from base + id + suffix.
func ReadString(base, suffix string, id int) (string, error) {
	token, _, err := readToken(base, suffix, id)
	if err != nil {
		return "", err
	}

	return token, nil
}

func readToken(base, suffix string, id int) (token, path string, err error) {
	errFactory := errors.New()

	if id < 0 {
		return "", "", errFactory.WithData(errors.ErrInvalidArgument, id)
	}

	path = base + strconv.Itoa(id) + suffix

	data, err := os.ReadFile(path)
	if err != nil {
		return "", path, errFactory.Wrap(errors.ErrIOUnavailable, err)
	}

	fields := strings.Fields(string(data))
	if len(fields) == 0 {
		return "", path, errFactory.WithData(errors.ErrParseFailed, path)
	}

	return fields[0], path, nil
}

// IsUnavailable reports whether err means the pseudo-file could not be opened.
func IsUnavailable(err error) bool {
	return errors.HasCode(err, errors.ErrIOUnavailable)
}

// IsNotFound reports whether err means no hwmon device matched.
func IsNotFound(err error) bool {
	return errors.HasCode(err, errors.ErrDeviceNotFound)
}
