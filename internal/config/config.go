// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/relabs-tech/depth_logger/internal/logging"
)

// Sensor backends.
const (
	SensorMS5837     = "ms5837"
	SensorBME280     = "bme280"
	SensorSimulation = "simulation"
)

// Config holds all application configuration values.
type Config struct {
	// Sensor
	SensorType    string
	I2CBus        string // "" selects the first registered bus
	MS5837I2CAddr uint16
	TSYS01I2CAddr uint16
	BME280I2CAddr uint16
	FluidDensity  float64 // kg/m³, 997 freshwater, 1029 seawater

	// Timing (milliseconds)
	SampleInterval int
	LogInterval    int

	// Record file
	RecordFile     string
	RecordFsync    bool
	LoggingOnStart bool

	// Indicator LED
	LEDPin        string // periph pin name, "none" disables the LED
	LEDOnMS       int
	LEDPeriodMS   int
	LEDIdlePollMS int

	// Web Server
	WebServerPort int

	// Logging
	LogLevel  string
	LogFormat string
	LogFile   string

	// MQTT mirror (disabled when MQTTBroker is empty)
	MQTTBroker        string
	MQTTClientID      string
	MQTTUsername      string
	MQTTPassword      string
	TopicReading      string
	TelemetryInterval int // milliseconds

	// InfluxDB mirror (disabled when InfluxURL is empty)
	InfluxURL    string
	InfluxToken  string
	InfluxOrg    string
	InfluxBucket string

	// Display
	DisplayEnabled        bool
	DisplayUpdateInterval int // milliseconds
}

// keys lists every accepted key, used for environment overrides.
var keys = []string{
	"SENSOR_TYPE", "I2C_BUS", "MS5837_I2C_ADDR", "TSYS01_I2C_ADDR", "BME280_I2C_ADDR", "FLUID_DENSITY",
	"SAMPLE_INTERVAL", "LOG_INTERVAL",
	"RECORD_FILE", "RECORD_FSYNC", "LOGGING_ON_START",
	"LED_PIN", "LED_ON_MS", "LED_PERIOD_MS", "LED_IDLE_POLL_MS",
	"WEB_SERVER_PORT",
	"LOG_LEVEL", "LOG_FORMAT", "LOG_FILE",
	"MQTT_BROKER", "MQTT_CLIENT_ID", "MQTT_USERNAME", "MQTT_PASSWORD", "TOPIC_READING", "TELEMETRY_INTERVAL",
	"INFLUX_URL", "INFLUX_TOKEN", "INFLUX_ORG", "INFLUX_BUCKET",
	"DISPLAY_ENABLED", "DISPLAY_UPDATE_INTERVAL",
}

// Default returns the configuration used when a key is not set.
func Default() *Config {
	return &Config{
		SensorType:    SensorMS5837,
		I2CBus:        "1",
		MS5837I2CAddr: 0x76,
		TSYS01I2CAddr: 0x77,
		BME280I2CAddr: 0x76,
		FluidDensity:  997,

		SampleInterval: 100,
		LogInterval:    100,

		RecordFile:     "sensor_data.csv",
		RecordFsync:    true,
		LoggingOnStart: true,

		LEDPin:        "GPIO17",
		LEDOnMS:       250,
		LEDPeriodMS:   3000,
		LEDIdlePollMS: 1000,

		WebServerPort: 9123,

		LogLevel:  "info",
		LogFormat: "text",

		MQTTClientID:      "depth-logger",
		TopicReading:      "depth_logger/reading",
		TelemetryInterval: 1000,

		DisplayUpdateInterval: 500,
	}
}

// Load reads the configuration file and applies environment overrides.
// A missing file is an error; an empty file yields the defaults. Cross-field
// checks run once, after the overrides.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg, err := parse(file)
	if err != nil {
		return nil, err
	}

	for _, key := range keys {
		if value, ok := os.LookupEnv(key); ok {
			if err := cfg.setValue(key, strings.TrimSpace(value)); err != nil {
				return nil, fmt.Errorf("env %s: %w", key, err)
			}
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse reads KEY=VALUE lines on top of the defaults and validates the
// result. It does not consult the environment.
func Parse(r io.Reader) (*Config, error) {
	cfg, err := parse(r)
	if err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parse(r io.Reader) (*Config, error) {
	src, err := literalDollars(r)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}
	values, err := godotenv.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	cfg := Default()
	for key, value := range values {
		if err := cfg.setValue(strings.TrimSpace(key), strings.TrimSpace(value)); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
	}
	return cfg, nil
}

// literalDollars keeps '$' literal. godotenv expands $VAR in unquoted and
// double-quoted values, so unquoted values containing '$' are single-quoted
// before parsing and double-quoted ones are rejected.
func literalDollars(r io.Reader) (io.Reader, error) {
	var out strings.Builder
	sc := bufio.NewScanner(r)
	for n := 1; sc.Scan(); n++ {
		line := sc.Text()
		key, value, ok := strings.Cut(line, "=")
		value = strings.TrimSpace(value)
		if !ok || strings.HasPrefix(strings.TrimSpace(key), "#") || !strings.Contains(value, "$") {
			out.WriteString(line + "\n")
			continue
		}

		switch {
		case strings.HasPrefix(value, "'"):
		case strings.HasPrefix(value, `"`):
			return nil, fmt.Errorf("line %d: use single quotes for values containing $", n)
		default:
			if i := strings.Index(value, " #"); i >= 0 {
				value = strings.TrimSpace(value[:i])
			}
			if strings.Contains(value, "'") {
				return nil, fmt.Errorf("line %d: value containing both $ and ' is not supported", n)
			}
			line = key + "='" + value + "'"
		}
		out.WriteString(line + "\n")
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return strings.NewReader(out.String()), nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	switch key {
	// Sensor
	case "SENSOR_TYPE":
		switch value {
		case SensorMS5837, SensorBME280, SensorSimulation:
			c.SensorType = value
		default:
			return fmt.Errorf("SENSOR_TYPE must be %s, %s or %s, got %q", SensorMS5837, SensorBME280, SensorSimulation, value)
		}
	case "I2C_BUS":
		c.I2CBus = value
	case "MS5837_I2C_ADDR":
		addr, err := parseAddr(key, value)
		if err != nil {
			return err
		}
		c.MS5837I2CAddr = addr
	case "TSYS01_I2C_ADDR":
		addr, err := parseAddr(key, value)
		if err != nil {
			return err
		}
		c.TSYS01I2CAddr = addr
	case "BME280_I2C_ADDR":
		addr, err := parseAddr(key, value)
		if err != nil {
			return err
		}
		c.BME280I2CAddr = addr
	case "FLUID_DENSITY":
		d, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid FLUID_DENSITY %q: %w", value, err)
		}
		if d < 900 || d > 1100 {
			return fmt.Errorf("FLUID_DENSITY must be 900-1100 kg/m³, got %g", d)
		}
		c.FluidDensity = d

	// Timing
	case "SAMPLE_INTERVAL":
		return parsePositiveInt(key, value, &c.SampleInterval)
	case "LOG_INTERVAL":
		return parsePositiveInt(key, value, &c.LogInterval)

	// Record file
	case "RECORD_FILE":
		c.RecordFile = value
	case "RECORD_FSYNC":
		return parseBool(key, value, &c.RecordFsync)
	case "LOGGING_ON_START":
		return parseBool(key, value, &c.LoggingOnStart)

	// Indicator LED
	case "LED_PIN":
		c.LEDPin = value
	case "LED_ON_MS":
		return parsePositiveInt(key, value, &c.LEDOnMS)
	case "LED_PERIOD_MS":
		return parsePositiveInt(key, value, &c.LEDPeriodMS)
	case "LED_IDLE_POLL_MS":
		return parsePositiveInt(key, value, &c.LEDIdlePollMS)

	// Web Server
	case "WEB_SERVER_PORT":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid WEB_SERVER_PORT %q: %w", value, err)
		}
		if port < 1 || port > 65535 {
			return fmt.Errorf("WEB_SERVER_PORT must be 1-65535, got %d", port)
		}
		c.WebServerPort = port

	// Logging
	case "LOG_LEVEL":
		if !logging.Level(value).IsValid() {
			return fmt.Errorf("LOG_LEVEL must be debug, info, warn or error, got %q", value)
		}
		c.LogLevel = value
	case "LOG_FORMAT":
		if value != "text" && value != "json" {
			return fmt.Errorf("LOG_FORMAT must be text or json, got %q", value)
		}
		c.LogFormat = value
	case "LOG_FILE":
		c.LogFile = value

	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID":
		c.MQTTClientID = value
	case "MQTT_USERNAME":
		c.MQTTUsername = value
	case "MQTT_PASSWORD":
		c.MQTTPassword = value
	case "TOPIC_READING":
		c.TopicReading = value
	case "TELEMETRY_INTERVAL":
		return parsePositiveInt(key, value, &c.TelemetryInterval)

	// InfluxDB
	case "INFLUX_URL":
		c.InfluxURL = value
	case "INFLUX_TOKEN":
		c.InfluxToken = value
	case "INFLUX_ORG":
		c.InfluxOrg = value
	case "INFLUX_BUCKET":
		c.InfluxBucket = value

	// Display
	case "DISPLAY_ENABLED":
		return parseBool(key, value, &c.DisplayEnabled)
	case "DISPLAY_UPDATE_INTERVAL":
		return parsePositiveInt(key, value, &c.DisplayUpdateInterval)

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return nil
}

// LoggingOptions returns the logging settings every binary starts with.
func (c *Config) LoggingOptions() logging.Options {
	return logging.Options{
		Level:  logging.Level(c.LogLevel),
		Format: c.LogFormat,
		File:   c.LogFile,
	}
}

// validate checks cross-field constraints.
func (c *Config) validate() error {
	if c.RecordFile == "" {
		return fmt.Errorf("RECORD_FILE is required")
	}
	if c.LEDOnMS >= c.LEDPeriodMS {
		return fmt.Errorf("LED_ON_MS (%d) must be shorter than LED_PERIOD_MS (%d)", c.LEDOnMS, c.LEDPeriodMS)
	}
	if c.MQTTBroker != "" && c.TopicReading == "" {
		return fmt.Errorf("TOPIC_READING is required when MQTT_BROKER is set")
	}
	if c.InfluxURL != "" && (c.InfluxOrg == "" || c.InfluxBucket == "") {
		return fmt.Errorf("INFLUX_ORG and INFLUX_BUCKET are required when INFLUX_URL is set")
	}
	return nil
}

func parseAddr(key, value string) (uint16, error) {
	addr, err := strconv.ParseUint(value, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	if addr > 0x7F {
		return 0, fmt.Errorf("%s must be a 7-bit address, got 0x%X", key, addr)
	}
	return uint16(addr), nil
}

func parsePositiveInt(key, value string, dst *int) error {
	v, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	if v <= 0 {
		return fmt.Errorf("%s must be > 0, got %d", key, v)
	}
	*dst = v
	return nil
}

func parseBool(key, value string, dst *bool) error {
	v, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	*dst = v
	return nil
}
