package telemetry_test

import (
	"testing"

	"codeberg.org/mutker/platformstats/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMovingAverageRollingWindow(t *testing.T) {
	buf, err := telemetry.NewMovingAverage(3)
	require.NoError(t, err)

	pushes := []int64{10, 20, 30, 40}
	want := []int64{10, 15, 20, 30}

	for i, v := range pushes {
		assert.Equal(t, want[i], buf.Push(v), "average after pushing %d", v)
	}
}

func TestMovingAveragePartialWindow(t *testing.T) {
	buf, err := telemetry.NewMovingAverage(10)
	require.NoError(t, err)

	// Average divides by the live length, not the capacity.
	assert.Equal(t, int64(100), buf.Push(100))
	assert.Equal(t, int64(150), buf.Push(200))
	assert.Equal(t, 2, buf.Len())
}

func TestMovingAverageTruncatingDivision(t *testing.T) {
	buf, err := telemetry.NewMovingAverage(2)
	require.NoError(t, err)

	buf.Push(1)
	assert.Equal(t, int64(1), buf.Push(2), "3/2 truncates to 1")
}

func TestMovingAverageEviction(t *testing.T) {
	buf, err := telemetry.NewMovingAverage(2)
	require.NoError(t, err)

	buf.Push(1000)
	buf.Push(1000)
	buf.Push(2)
	// 1000 evicted; window is [1000, 2].
	assert.Equal(t, int64(501), buf.Average())

	buf.Push(4)
	// Both initial samples evicted; window is [2, 4].
	assert.Equal(t, int64(3), buf.Average())
}

func TestMovingAverageZeroCapacity(t *testing.T) {
	_, err := telemetry.NewMovingAverage(0)
	require.Error(t, err, "capacity 0 must fail at construction, not first push")
	assert.Contains(t, err.Error(), "Invalid state")

	_, err = telemetry.NewMovingAverage(-5)
	require.Error(t, err)
}

func TestMovingAverageEmpty(t *testing.T) {
	buf, err := telemetry.NewMovingAverage(4)
	require.NoError(t, err)

	assert.Zero(t, buf.Average())
	assert.Zero(t, buf.Len())
}
