package memory_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"codeberg.org/mutker/platformstats/internal/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Fixture mirrors a real embedded-board /proc/meminfo: MemTotal on line 0,
// MemFree on line 2, MemAvailable on line 4, SwapTotal/SwapFree on lines
// 14/16, CmaTotal/CmaFree on lines 41/43.
const meminfoFixture = `MemTotal:        4045276 kB
Buffers:           52604 kB
MemFree:         2817884 kB
Cached:           507824 kB
MemAvailable:    3376700 kB
SwapCached:            0 kB
Active:           420204 kB
Inactive:         275264 kB
Active(anon):     135628 kB
Inactive(anon):    21304 kB
Active(file):     284576 kB
Inactive(file):   253960 kB
Unevictable:           0 kB
Mlocked:               0 kB
SwapTotal:        524284 kB
Dirty:                12 kB
SwapFree:         524284 kB
Writeback:             0 kB
AnonPages:        135064 kB
Mapped:            97024 kB
Shmem:             21884 kB
KReclaimable:      37056 kB
Slab:              77812 kB
SReclaimable:      37056 kB
SUnreclaim:        40756 kB
KernelStack:        2512 kB
PageTables:         3824 kB
NFS_Unstable:          0 kB
Bounce:                0 kB
WritebackTmp:          0 kB
CommitLimit:     2546920 kB
Committed_AS:    1003292 kB
VmallocTotal:   262930368 kB
VmallocUsed:       14724 kB
VmallocChunk:          0 kB
Percpu:             1472 kB
HardwareCorrupted:     0 kB
AnonHugePages:     75776 kB
ShmemHugePages:        0 kB
ShmemPmdMapped:        0 kB
HugePages_Total:       0
CmaTotal:        1000000 kB
HugePages_Free:        0
CmaFree:          985584 kB
`

func writeMeminfo(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "meminfo")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRead(t *testing.T) {
	reader := memory.NewReader(writeMeminfo(t, meminfoFixture))

	info, err := reader.Read()
	require.NoError(t, err)

	assert.Equal(t, uint64(4045276), info.MemTotal)
	assert.Equal(t, uint64(2817884), info.MemFree)
	assert.Equal(t, uint64(3376700), info.MemAvailable)
	assert.Equal(t, uint64(524284), info.SwapTotal)
	assert.Equal(t, uint64(524284), info.SwapFree)
	assert.Equal(t, uint64(1000000), info.CmaTotal)
	assert.Equal(t, uint64(985584), info.CmaFree)
}

func TestReadSurvivesFieldReordering(t *testing.T) {
	lines := strings.Split(strings.TrimSpace(meminfoFixture), "\n")
	for i, j := 0, len(lines)-1; i < j; i, j = i+1, j-1 {
		lines[i], lines[j] = lines[j], lines[i]
	}
	reader := memory.NewReader(writeMeminfo(t, strings.Join(lines, "\n")+"\n"))

	info, err := reader.Read()
	require.NoError(t, err)

	// Label-keyed lookup is immune to kernel field reordering.
	assert.Equal(t, uint64(4045276), info.MemTotal)
	assert.Equal(t, uint64(985584), info.CmaFree)
}

func TestReadFieldLookup(t *testing.T) {
	reader := memory.NewReader(writeMeminfo(t, meminfoFixture))

	info, err := reader.Read()
	require.NoError(t, err)

	slab, ok := info.Field("Slab")
	assert.True(t, ok)
	assert.Equal(t, uint64(77812), slab)

	_, ok = info.Field("NoSuchField")
	assert.False(t, ok)
}

func TestReadMissingCma(t *testing.T) {
	fixture := "MemTotal:  4045276 kB\nMemFree:   2817884 kB\nMemAvailable: 3376700 kB\n"
	reader := memory.NewReader(writeMeminfo(t, fixture))

	info, err := reader.Read()
	require.NoError(t, err)

	assert.Zero(t, info.CmaTotal)
	_, ok := info.Field("CmaTotal")
	assert.False(t, ok, "absent label must report as absent")
}

func TestReadMalformedValue(t *testing.T) {
	reader := memory.NewReader(writeMeminfo(t, "MemTotal: lots kB\n"))

	_, err := reader.Read()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token shape")
}

func TestReadMissingFile(t *testing.T) {
	reader := memory.NewReader(filepath.Join(t.TempDir(), "nope"))

	_, err := reader.Read()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not be opened")
}
