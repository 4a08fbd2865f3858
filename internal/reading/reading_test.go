package reading

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRound2HalfAwayFromZero(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{1013.254, 1013.25},
		{1013.256, 1013.26},
		{0.125, 0.13},
		{-0.125, -0.13},
		{-2.344, -2.34},
		{0, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Round2(tt.in), "Round2(%v)", tt.in)
	}
}

func TestNewRoundsAndStamps(t *testing.T) {
	ts := time.Date(2025, 6, 1, 14, 3, 7, 123456789, time.Local)
	r := New(ts, Measurement{
		PressureMbar: 1013.2512,
		PressurePSI:  14.695949,
		TemperatureC: 20.0049,
		TemperatureF: 68.00882,
		DepthM:       -0.00111,
	})

	assert.Equal(t, "2025-06-01 14:03:07.123", r.Timestamp)
	assert.Equal(t, 1013.25, r.PressureMbar)
	assert.Equal(t, 14.70, r.PressurePSI)
	assert.Equal(t, 20.00, r.TemperatureC)
	assert.Equal(t, 68.01, r.TemperatureF)
	assert.Equal(t, 0.0, r.DepthM)
	assert.False(t, r.IsEmpty())
}

func TestRecordMatchesHeader(t *testing.T) {
	r := Reading{
		Timestamp:    "2025-06-01 14:03:07.123",
		PressureMbar: 1013.25,
		PressurePSI:  14.7,
		TemperatureC: 20,
		TemperatureF: 68,
		DepthM:       1.5,
	}
	rec := r.Record()
	assert.Len(t, rec, len(Header))
	assert.Equal(t, []string{"2025-06-01 14:03:07.123", "1013.25", "14.70", "20.00", "68.00", "1.50"}, rec)
}

func TestEmptySentinelRecord(t *testing.T) {
	assert.True(t, Empty.IsEmpty())
	assert.Equal(t, []string{"", "0.00", "0.00", "0.00", "0.00", "0.00"}, Empty.Record())
}

func TestTimeRoundTrip(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 30, 45, 123_000_000, time.Local)
	got, err := New(at, Measurement{}).Time()
	require.NoError(t, err)
	assert.True(t, at.Equal(got))

	_, err = Empty.Time()
	assert.Error(t, err)
}
