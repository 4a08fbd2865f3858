package recordfile

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/depth_logger/internal/reading"
)

var sample = reading.Reading{
	Timestamp:    "2025-06-01 14:03:07.123",
	PressureMbar: 1013.25,
	PressurePSI:  14.7,
	TemperatureC: 20,
	TemperatureF: 68,
	DepthM:       0.01,
}

func readRows(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestAppendCreatesFileWithHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sensor_data.csv")
	rf := New(path, true)
	defer rf.Close()

	require.NoError(t, rf.Append(sample))
	require.NoError(t, rf.Append(sample))

	rows := readRows(t, path)
	require.Len(t, rows, 3)
	assert.Equal(t, reading.Header, rows[0])
	assert.Equal(t, sample.Record(), rows[1])
	assert.Equal(t, sample.Record(), rows[2])
}

func TestAppendToExistingFileSkipsHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sensor_data.csv")

	first := New(path, false)
	require.NoError(t, first.Append(sample))
	require.NoError(t, first.Close())

	second := New(path, false)
	require.NoError(t, second.Append(sample))
	require.NoError(t, second.Close())

	rows := readRows(t, path)
	require.Len(t, rows, 3)
	assert.Equal(t, reading.Header, rows[0])
	assert.Equal(t, sample.Record(), rows[2])
}

func TestAppendToEmptyFileWritesHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sensor_data.csv")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	rf := New(path, false)
	defer rf.Close()
	require.NoError(t, rf.Append(sample))

	rows := readRows(t, path)
	require.Len(t, rows, 2)
	assert.Equal(t, reading.Header, rows[0])
}

func TestRemoveThenAppendRecreates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sensor_data.csv")
	rf := New(path, true)
	defer rf.Close()

	require.NoError(t, rf.Append(sample))
	require.NoError(t, rf.Append(sample))
	require.NoError(t, rf.Remove())

	exists, _, err := rf.Stat()
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, rf.Append(sample))
	rows := readRows(t, path)
	require.Len(t, rows, 2)
	assert.Equal(t, reading.Header, rows[0])
	assert.Equal(t, sample.Record(), rows[1])
}

func TestRemoveMissing(t *testing.T) {
	rf := New(filepath.Join(t.TempDir(), "nope.csv"), false)
	assert.ErrorIs(t, rf.Remove(), ErrNotFound)
}

func TestOpenMissing(t *testing.T) {
	rf := New(filepath.Join(t.TempDir(), "nope.csv"), false)
	_, err := rf.Open()
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOpenReturnsContents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "sensor_data.csv")
	rf := New(path, false)
	defer rf.Close()
	require.NoError(t, rf.Append(sample))

	rc, err := rf.Open()
	require.NoError(t, err)
	defer rc.Close()
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t,
		"Timestamp,Pressure (mbar),Pressure (psi),Temperature (C),Temperature (F),Depth (m)\n"+
			"2025-06-01 14:03:07.123,1013.25,14.70,20.00,68.00,0.01\n",
		string(b))

	exists, size, err := rf.Stat()
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, int64(len(b)), size)
}

func TestAppendDropsPartialRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sensor_data.csv")
	full := strings.Join(reading.Header, ",") + "\n" + strings.Join(sample.Record(), ",") + "\n"
	require.NoError(t, os.WriteFile(path, []byte(full+"2025-06-01 14:03:07.223,1013.2"), 0o644))

	rf := New(path, false)
	defer rf.Close()
	require.NoError(t, rf.Append(sample))

	rows := readRows(t, path)
	require.Len(t, rows, 3)
	assert.Equal(t, reading.Header, rows[0])
	assert.Equal(t, sample.Record(), rows[1])
	assert.Equal(t, sample.Record(), rows[2])
}

func TestAppendAfterPartialHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sensor_data.csv")
	require.NoError(t, os.WriteFile(path, []byte("Timestamp,Pressu"), 0o644))

	rf := New(path, false)
	defer rf.Close()
	require.NoError(t, rf.Append(sample))

	rows := readRows(t, path)
	require.Len(t, rows, 2)
	assert.Equal(t, reading.Header, rows[0])
	assert.Equal(t, sample.Record(), rows[1])
}

func TestAppendTerminatesLongPartialLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sensor_data.csv")
	header := strings.Join(reading.Header, ",") + "\n"
	junk := strings.Repeat("x", tailWindow+10)
	require.NoError(t, os.WriteFile(path, []byte(header+junk), 0o644))

	rf := New(path, false)
	defer rf.Close()
	require.NoError(t, rf.Append(sample))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(b), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, junk, lines[1])
	assert.Equal(t, strings.Join(sample.Record(), ","), lines[2])
}
