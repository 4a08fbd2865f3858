package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/depth_logger/internal/metrics"
	"github.com/relabs-tech/depth_logger/internal/reading"
	"github.com/relabs-tech/depth_logger/internal/recordfile"
	"github.com/relabs-tech/depth_logger/internal/store"
)

func TestRecorderWriteFailureRecovers(t *testing.T) {
	dir := t.TempDir()
	blocked := filepath.Join(dir, "records")
	require.NoError(t, os.WriteFile(blocked, []byte("not a directory"), 0o644))

	st := store.NewSampleStore()
	st.Set(reading.New(fixedNow, surface()))
	file := recordfile.New(filepath.Join(blocked, "sensor_data.csv"), false)
	defer file.Close()
	r := NewRecorder(st, store.NewLoggingFlag(true), file, time.Millisecond)

	before := testutil.ToFloat64(metrics.RecordWriteErrors)
	require.Error(t, r.Tick())
	require.Error(t, r.Tick())
	assert.Equal(t, before+2, testutil.ToFloat64(metrics.RecordWriteErrors))

	require.NoError(t, os.Remove(blocked))
	require.NoError(t, r.Tick())
	assert.Equal(t, before+2, testutil.ToFloat64(metrics.RecordWriteErrors))

	rows := readRows(t, file.Path())
	require.Len(t, rows, 2, "header plus one row")
	assert.Equal(t, reading.Header, rows[0])
	assert.Equal(t, "1013.25", rows[1][1])
}

func TestSamplerRunSamplesImmediately(t *testing.T) {
	st := store.NewSampleStore()
	s := NewSampler(&fakePort{m: surface()}, st, time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.NoError(t, s.Run(ctx))

	assert.False(t, st.Get().IsEmpty(), "first sample is taken before the first tick")
}

func TestSamplerRunKeepsPollingAfterFailures(t *testing.T) {
	port := &fakePort{m: surface(), err: errors.New("i2c nack")}
	st := store.NewSampleStore()
	s := NewSampler(port, st, 2*time.Millisecond)
	before := testutil.ToFloat64(metrics.SensorReads.WithLabelValues("error"))

	ctx, cancel := context.WithTimeout(context.Background(), 80*time.Millisecond)
	defer cancel()
	go func() {
		time.Sleep(20 * time.Millisecond)
		port.fail(nil)
	}()
	require.NoError(t, s.Run(ctx))

	assert.Greater(t, testutil.ToFloat64(metrics.SensorReads.WithLabelValues("error")), before)
	assert.Equal(t, 1013.25, st.Get().PressureMbar)
	assert.Equal(t, 0, s.streak)
}

func TestRecorderRunAppendsUntilCancelled(t *testing.T) {
	st := store.NewSampleStore()
	st.Set(reading.New(fixedNow, surface()))
	file := recordfile.New(filepath.Join(t.TempDir(), "sensor_data.csv"), false)
	r := NewRecorder(st, store.NewLoggingFlag(true), file, 2*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 40*time.Millisecond)
	defer cancel()
	require.NoError(t, r.Run(ctx))

	rows := readRows(t, file.Path())
	require.Greater(t, len(rows), 2)
	assert.Equal(t, reading.Header, rows[0])

	_, size, err := file.Stat()
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)
	_, after, err := file.Stat()
	require.NoError(t, err)
	assert.Equal(t, size, after, "no writes after Run returns")

	// The file stays usable after Run released it.
	require.NoError(t, file.Remove())
	require.NoError(t, file.Append(st.Get()))
	assert.Len(t, readRows(t, file.Path()), 2)
}
