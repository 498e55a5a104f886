// Package memory extracts RAM, swap and CMA figures from /proc/meminfo.
//
// The board tooling this probe replaces located fields by line offset, which
// silently breaks when a kernel reorders or inserts fields. The reader here
// parses the whole file once into a label-keyed map instead; the exposed
// field set and kilobyte units are unchanged.
package memory

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"codeberg.org/mutker/platformstats/internal/errors"
)

// Info holds the extracted meminfo fields, all in kilobytes.
type Info struct {
	MemTotal     uint64
	MemFree      uint64
	MemAvailable uint64
	SwapTotal    uint64
	SwapFree     uint64
	CmaTotal     uint64
	CmaFree      uint64

	fields map[string]uint64
}

// Field returns the value of an arbitrary meminfo label and whether the
// kernel exposed it. CMA fields are absent on kernels built without CMA.
func (i *Info) Field(label string) (uint64, bool) {
	v, ok := i.fields[label]
	return v, ok
}

// Reader parses the memory-info pseudo-file.
type Reader struct {
	procMeminfo string
}

func NewReader(procMeminfo string) *Reader {
	if procMeminfo == "" {
		procMeminfo = "/proc/meminfo"
	}

	return &Reader{procMeminfo: procMeminfo}
}

// Read parses the file in a single pass and returns the documented fields.
func (r *Reader) Read() (*Info, error) {
	errFactory := errors.New()

	f, err := os.Open(r.procMeminfo)
	if err != nil {
		return nil, errFactory.Wrap(errors.ErrIOUnavailable, err)
	}
	defer f.Close()

	fields := make(map[string]uint64)

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}

		label, value, err := parseLine(line, r.procMeminfo)
		if err != nil {
			return nil, err
		}
		fields[label] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, errFactory.Wrap(errors.ErrIOUnavailable, err)
	}

	return &Info{
		MemTotal:     fields["MemTotal"],
		MemFree:      fields["MemFree"],
		MemAvailable: fields["MemAvailable"],
		SwapTotal:    fields["SwapTotal"],
		SwapFree:     fields["SwapFree"],
		CmaTotal:     fields["CmaTotal"],
		CmaFree:      fields["CmaFree"],
		fields:       fields,
	}, nil
}

// parseLine splits "<Label>: <value> kB" into label and integer value. The
// unit suffix is optional; some fields (HugePages counts) omit it.
func parseLine(line, path string) (string, uint64, error) {
	errFactory := errors.New()

	label, rest, found := strings.Cut(line, ":")
	if !found {
		return "", 0, errFactory.WithData(errors.ErrParseFailed, path)
	}

	tokens := strings.Fields(rest)
	if len(tokens) == 0 {
		return "", 0, errFactory.WithData(errors.ErrParseFailed, path)
	}

	value, err := strconv.ParseUint(tokens[0], 10, 64)
	if err != nil {
		return "", 0, errFactory.WithData(errors.ErrParseFailed, path)
	}

	return strings.TrimSpace(label), value, nil
}
