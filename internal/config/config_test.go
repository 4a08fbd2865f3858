package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/depth_logger/internal/logging"
)

func TestParseEmptyYieldsDefaults(t *testing.T) {
	cfg, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 100, cfg.SampleInterval)
	assert.Equal(t, 9123, cfg.WebServerPort)
	assert.True(t, cfg.LoggingOnStart)
}

func TestParseValues(t *testing.T) {
	in := `
# sensor
SENSOR_TYPE=simulation
I2C_BUS=2
MS5837_I2C_ADDR=0x76
TSYS01_I2C_ADDR=119
FLUID_DENSITY=1029

SAMPLE_INTERVAL=50
RECORD_FILE=/var/lib/depth_logger/dive.csv
RECORD_FSYNC=false
LOGGING_ON_START=false
LED_PIN=none
WEB_SERVER_PORT=8080
MQTT_BROKER=tcp://localhost:1883
DISPLAY_ENABLED=true
`
	cfg, err := Parse(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, SensorSimulation, cfg.SensorType)
	assert.Equal(t, "2", cfg.I2CBus)
	assert.Equal(t, uint16(0x76), cfg.MS5837I2CAddr)
	assert.Equal(t, uint16(0x77), cfg.TSYS01I2CAddr)
	assert.Equal(t, 1029.0, cfg.FluidDensity)
	assert.Equal(t, 50, cfg.SampleInterval)
	assert.Equal(t, "/var/lib/depth_logger/dive.csv", cfg.RecordFile)
	assert.False(t, cfg.RecordFsync)
	assert.False(t, cfg.LoggingOnStart)
	assert.Equal(t, "none", cfg.LEDPin)
	assert.Equal(t, 8080, cfg.WebServerPort)
	assert.Equal(t, "tcp://localhost:1883", cfg.MQTTBroker)
	assert.True(t, cfg.DisplayEnabled)
}

func TestParseRejectsBadValues(t *testing.T) {
	tests := []string{
		"NOT_A_KEY=1",
		"SENSOR_TYPE=bmp999",
		"SAMPLE_INTERVAL=0",
		"SAMPLE_INTERVAL=fast",
		"MS5837_I2C_ADDR=0x80",
		"FLUID_DENSITY=1",
		"WEB_SERVER_PORT=70000",
		"RECORD_FSYNC=maybe",
		"LOG_LEVEL=trace",
		"LED_ON_MS=3000",
		"INFLUX_URL=http://localhost:8086",
		"DISPLAY_I2C_ADDR=0x3C",
		`MQTT_PASSWORD="pa$word"`,
	}
	for _, in := range tests {
		_, err := Parse(strings.NewReader(in))
		assert.Error(t, err, in)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "depth_logger.conf")
	require.NoError(t, os.WriteFile(path, []byte("WEB_SERVER_PORT=8080\nLOG_LEVEL=debug\n"), 0o644))

	t.Setenv("WEB_SERVER_PORT", "9000")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.WebServerPort)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.conf"))
	assert.Error(t, err)
}

func TestSampleConfigMatchesDefaults(t *testing.T) {
	f, err := os.Open(filepath.Join("..", "..", "depth_logger.conf"))
	require.NoError(t, err)
	defer f.Close()

	cfg, err := Parse(f)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParseKeepsDollarLiteral(t *testing.T) {
	t.Setenv("HOME", "/root")
	t.Setenv("en", "EXPANDED")

	in := `MQTT_PASSWORD=pa$$w0rd$HOME
MQTT_USERNAME=diver$1 # field unit
INFLUX_TOKEN='tok$en=='
`
	cfg, err := Parse(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, "pa$$w0rd$HOME", cfg.MQTTPassword)
	assert.Equal(t, "diver$1", cfg.MQTTUsername)
	assert.Equal(t, "tok$en==", cfg.InfluxToken)
}

func TestLoadValidatesAfterEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "depth_logger.conf")
	require.NoError(t, os.WriteFile(path, []byte("LED_ON_MS=3000\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)

	t.Setenv("LED_PERIOD_MS", "5000")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.LEDOnMS)
	assert.Equal(t, 5000, cfg.LEDPeriodMS)
}

func TestLoggingOptions(t *testing.T) {
	cfg, err := Parse(strings.NewReader("LOG_LEVEL=warn\nLOG_FORMAT=json\nLOG_FILE=/var/log/depth_logger.log\n"))
	require.NoError(t, err)

	opts := cfg.LoggingOptions()
	assert.Equal(t, logging.LevelWarn, opts.Level)
	assert.Equal(t, "json", opts.Format)
	assert.Equal(t, "/var/log/depth_logger.log", opts.File)
}
