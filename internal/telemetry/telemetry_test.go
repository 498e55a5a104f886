package telemetry_test

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"codeberg.org/mutker/platformstats/internal/sysfs"
	"codeberg.org/mutker/platformstats/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type hwmonDevice struct {
	name  string
	files map[string]string
}

func newHwmonRoot(t *testing.T, devices ...hwmonDevice) string {
	t.Helper()
	root := t.TempDir()
	for i, dev := range devices {
		dir := filepath.Join(root, "hwmon"+strconv.Itoa(i))
		require.NoError(t, os.MkdirAll(dir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "name"), []byte(dev.name+"\n"), 0o644))
		for file, content := range dev.files {
			require.NoError(t, os.WriteFile(filepath.Join(dir, file), []byte(content), 0o644))
		}
	}
	return root
}

func writeChannel(t *testing.T, root string, id int, file, content string) {
	t.Helper()
	path := filepath.Join(root, "hwmon"+strconv.Itoa(id), file)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestBoardPowerSample(t *testing.T) {
	root := newHwmonRoot(t,
		hwmonDevice{name: "foo"},
		hwmonDevice{name: "ina260_u14", files: map[string]string{
			"power1_input": "5000000\n", // 5000000 µW = 5000 mW
			"curr1_input":  "980\n",
			"in1_input":    "5100\n",
		}},
	)

	board, err := telemetry.NewBoardPower(root, 3)
	require.NoError(t, err)

	sample, err := board.Sample()
	require.NoError(t, err)

	assert.Equal(t, int64(5000), sample.Power)
	assert.Equal(t, int64(980), sample.Current)
	assert.Equal(t, int64(5100), sample.Voltage)
	assert.Equal(t, int64(5000), sample.AveragePower)
	assert.Equal(t, int64(980), sample.AverageCurrent)
	assert.Equal(t, int64(5100), sample.AverageVoltage)
}

func TestBoardPowerAveraging(t *testing.T) {
	root := newHwmonRoot(t,
		hwmonDevice{name: "ina260_u14", files: map[string]string{
			"power1_input": "4000000\n",
			"curr1_input":  "800\n",
			"in1_input":    "5000\n",
		}},
	)

	board, err := telemetry.NewBoardPower(root, 4)
	require.NoError(t, err)

	_, err = board.Sample()
	require.NoError(t, err)

	writeChannel(t, root, 0, "power1_input", "6000000\n")
	writeChannel(t, root, 0, "curr1_input", "1200\n")

	sample, err := board.Sample()
	require.NoError(t, err)

	assert.Equal(t, int64(6000), sample.Power)
	assert.Equal(t, int64(5000), sample.AveragePower, "average of 4000 and 6000 mW")
	assert.Equal(t, int64(1000), sample.AverageCurrent, "average of 800 and 1200 mA")
	assert.Equal(t, int64(5000), sample.AverageVoltage)
}

func TestBoardPowerNotFound(t *testing.T) {
	root := newHwmonRoot(t, hwmonDevice{name: "foo"})

	_, err := telemetry.NewBoardPower(root, 3)
	require.Error(t, err)
	assert.True(t, sysfs.IsNotFound(err))
}

func TestBoardPowerChannelUnavailable(t *testing.T) {
	root := newHwmonRoot(t, hwmonDevice{name: "ina260_u14", files: map[string]string{
		"power1_input": "4000000\n",
		// curr1_input missing: driver without current reporting.
	}})

	board, err := telemetry.NewBoardPower(root, 3)
	require.NoError(t, err)

	_, err = board.Sample()
	require.Error(t, err)
	assert.True(t, sysfs.IsUnavailable(err))
}

func TestSysmonRead(t *testing.T) {
	root := newHwmonRoot(t,
		hwmonDevice{name: "ina260_u14"},
		hwmonDevice{name: "ams", files: map[string]string{
			"temp1_input": "35500\n",
			"temp2_input": "36250\n",
			"temp3_input": "34875\n",
			"in1_input":   "1196\n",
			"in3_input":   "849\n",
			"in6_input":   "1202\n",
			"in7_input":   "851\n",
			"in9_input":   "1798\n",
			"in13_input":  "1800\n",
			"in16_input":  "845\n",
			"in17_input":  "1195\n",
		}},
	)

	sysmon, err := telemetry.NewSysmon(root)
	require.NoError(t, err)

	reading, err := sysmon.Read()
	require.NoError(t, err)

	assert.Equal(t, int64(35500), reading.LPDTemp)
	assert.Equal(t, int64(35), telemetry.CelsiusFromMilli(reading.LPDTemp))
	assert.Equal(t, int64(36250), reading.FPDTemp)
	assert.Equal(t, int64(34875), reading.PLTemp)
	assert.Equal(t, int64(1196), reading.VCCPsPLL)
	assert.Equal(t, int64(849), reading.PLVCCInt)
	assert.Equal(t, int64(1202), reading.VCCPsDDR)
	assert.Equal(t, int64(851), reading.VCCPsIntFP)
	assert.Equal(t, int64(1798), reading.VCCPsFPD)
	assert.Equal(t, int64(1800), reading.PSIOBank500)
	assert.Equal(t, int64(845), reading.VCCPsGTR)
	assert.Equal(t, int64(1195), reading.VTTPsGTR)
}

func TestSysmonNotFound(t *testing.T) {
	root := newHwmonRoot(t, hwmonDevice{name: "ina260_u14"})

	_, err := telemetry.NewSysmon(root)
	require.Error(t, err)
	assert.True(t, sysfs.IsNotFound(err))
}
