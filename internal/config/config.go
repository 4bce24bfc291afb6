// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"

	"github.com/sally-golding/stepsmart/internal/gait"
	"github.com/sally-golding/stepsmart/internal/gps"
)

// DefaultPath is the config file the binaries read when no -config flag
// is given.
const DefaultPath = "stepsmart_config.txt"

// Config holds all application configuration values.
type Config struct {
	// MQTT
	MQTTBroker           string
	MQTTClientIDTracker  string
	MQTTClientIDGPS      string
	MQTTClientIDProducer string
	MQTTClientIDConsole  string
	MQTTClientIDWeb      string
	MQTTClientIDDisplay  string

	// Topics
	TopicPressure       string
	TopicAccel          string
	TopicGyro           string
	TopicGPS            string
	TopicMetrics        string
	TopicSessionControl string
	TopicSessionSummary string

	// GPS
	GPSSerialPort string
	GPSBaudRate   int
	GPSUERE       float64 // metres per unit of HDOP

	// Speed filter
	SpeedAlpha       float64
	SpeedDeadband    float64 // m/s
	SpeedMaxAccuracy float64 // m

	// Gait
	PressureThreshold float64
	StepEdge          gait.StepEdge
	StrideModel       gait.StrideModel
	HeightFeet        float64
	HeightInches      float64

	// Session history
	SessionDBPath string

	// Web Server
	WebServerPort int

	// Display
	DisplayI2CBus         string // "" opens the first bus
	DisplayUpdateInterval int    // milliseconds

	// Mock insole producer
	ProducerInterval int     // milliseconds between pressure samples
	ProducerCadence  float64 // steps/min
	ProducerSpeed    float64 // m/s reported by the mock GPS, 0 disables it
}

var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Default returns the configuration used for keys the file leaves out.
func Default() *Config {
	return &Config{
		MQTTBroker:           "tcp://localhost:1883",
		MQTTClientIDTracker:  "stepsmart-tracker",
		MQTTClientIDGPS:      "stepsmart-gps",
		MQTTClientIDProducer: "stepsmart-producer",
		MQTTClientIDConsole:  "stepsmart-console",
		MQTTClientIDWeb:      "stepsmart-web",
		MQTTClientIDDisplay:  "stepsmart-display",

		TopicPressure:       "stepsmart/insole/pressure",
		TopicAccel:          "stepsmart/insole/accel",
		TopicGyro:           "stepsmart/insole/gyro",
		TopicGPS:            "stepsmart/gps",
		TopicMetrics:        "stepsmart/metrics",
		TopicSessionControl: "stepsmart/session/control",
		TopicSessionSummary: "stepsmart/session/summary",

		GPSSerialPort: "/dev/serial0",
		GPSBaudRate:   9600,
		GPSUERE:       gps.DefaultUERE,

		SpeedAlpha:       gps.DefaultAlpha,
		SpeedDeadband:    gps.DefaultDeadband,
		SpeedMaxAccuracy: gps.DefaultMaxAccuracy,

		PressureThreshold: gait.DefaultThreshold,
		StepEdge:          gait.EdgeRelease,
		StrideModel:       gait.StrideFromSpeed,

		SessionDBPath: "stepsmart.db",

		WebServerPort: 8080,

		DisplayUpdateInterval: 500,

		ProducerInterval: 20,
		ProducerCadence:  165,
		ProducerSpeed:    3.0,
	}
}

// Load reads the configuration file on top of Default and returns the
// result.
func Load(configPath string) (*Config, error) {
	values, err := godotenv.Read(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()

	// sorted so the first bad key reported is deterministic
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if err := cfg.setValue(key, values[key]); err != nil {
			return nil, fmt.Errorf("config %s: %w", configPath, err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	var err error
	switch key {
	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_TRACKER":
		c.MQTTClientIDTracker = value
	case "MQTT_CLIENT_ID_GPS":
		c.MQTTClientIDGPS = value
	case "MQTT_CLIENT_ID_PRODUCER":
		c.MQTTClientIDProducer = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_WEB":
		c.MQTTClientIDWeb = value
	case "MQTT_CLIENT_ID_DISPLAY":
		c.MQTTClientIDDisplay = value

	// Topics
	case "TOPIC_PRESSURE":
		c.TopicPressure = value
	case "TOPIC_ACCEL":
		c.TopicAccel = value
	case "TOPIC_GYRO":
		c.TopicGyro = value
	case "TOPIC_GPS":
		c.TopicGPS = value
	case "TOPIC_METRICS":
		c.TopicMetrics = value
	case "TOPIC_SESSION_CONTROL":
		c.TopicSessionControl = value
	case "TOPIC_SESSION_SUMMARY":
		c.TopicSessionSummary = value

	// GPS
	case "GPS_SERIAL_PORT":
		c.GPSSerialPort = value
	case "GPS_BAUD_RATE":
		c.GPSBaudRate, err = parseInt(key, value)
	case "GPS_UERE_METERS":
		c.GPSUERE, err = parseFloat(key, value)

	// Speed filter
	case "SPEED_ALPHA":
		c.SpeedAlpha, err = parseFloat(key, value)
		if err == nil && (c.SpeedAlpha <= 0 || c.SpeedAlpha > 1) {
			err = fmt.Errorf("SPEED_ALPHA must be in (0, 1], got %v", c.SpeedAlpha)
		}
	case "SPEED_DEADBAND":
		c.SpeedDeadband, err = parseFloat(key, value)
	case "SPEED_MAX_ACCURACY":
		c.SpeedMaxAccuracy, err = parseFloat(key, value)

	// Gait
	case "PRESSURE_THRESHOLD":
		c.PressureThreshold, err = parseFloat(key, value)
	case "STEP_EDGE":
		switch value {
		case "release":
			c.StepEdge = gait.EdgeRelease
		case "strike":
			c.StepEdge = gait.EdgeStrike
		default:
			err = fmt.Errorf("STEP_EDGE must be release or strike, got %q", value)
		}
	case "STRIDE_MODEL":
		switch value {
		case "speed":
			c.StrideModel = gait.StrideFromSpeed
		case "height":
			c.StrideModel = gait.StrideFromHeight
		default:
			err = fmt.Errorf("STRIDE_MODEL must be speed or height, got %q", value)
		}
	case "HEIGHT_FEET":
		c.HeightFeet, err = parseFloat(key, value)
	case "HEIGHT_INCHES":
		c.HeightInches, err = parseFloat(key, value)
		if err == nil && c.HeightInches >= 12 {
			err = fmt.Errorf("HEIGHT_INCHES must be below 12, got %v", c.HeightInches)
		}

	// Session history
	case "SESSION_DB_PATH":
		c.SessionDBPath = value

	// Web Server
	case "WEB_SERVER_PORT":
		c.WebServerPort, err = parseInt(key, value)
		if err == nil && (c.WebServerPort < 1 || c.WebServerPort > 65535) {
			err = fmt.Errorf("WEB_SERVER_PORT must be 1-65535, got %d", c.WebServerPort)
		}

	// Display
	case "DISPLAY_I2C_BUS":
		c.DisplayI2CBus = value
	case "DISPLAY_UPDATE_INTERVAL":
		c.DisplayUpdateInterval, err = parseInt(key, value)

	// Mock insole producer
	case "PRODUCER_INTERVAL":
		c.ProducerInterval, err = parseInt(key, value)
	case "PRODUCER_CADENCE":
		c.ProducerCadence, err = parseFloat(key, value)
	case "PRODUCER_SPEED":
		c.ProducerSpeed, err = parseFloat(key, value)

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}
	return err
}

func parseInt(key, value string) (int, error) {
	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	if v < 0 {
		return 0, fmt.Errorf("%s must not be negative, got %d", key, v)
	}
	return v, nil
}

func parseFloat(key, value string) (float64, error) {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%s must be a non-negative number, got %q", key, value)
	}
	return v, nil
}

// validate checks that all required fields are set.
func (c *Config) validate() error {
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required")
	}
	if c.TopicPressure == "" || c.TopicMetrics == "" {
		return fmt.Errorf("TOPIC_PRESSURE and TOPIC_METRICS are required")
	}
	if c.GPSBaudRate == 0 {
		return fmt.Errorf("GPS_BAUD_RATE is required")
	}
	if c.PressureThreshold == 0 {
		return fmt.Errorf("PRESSURE_THRESHOLD must be positive")
	}
	if c.StrideModel == gait.StrideFromHeight && c.HeightFeet == 0 && c.HeightInches == 0 {
		return fmt.Errorf("STRIDE_MODEL=height needs HEIGHT_FEET or HEIGHT_INCHES")
	}
	if c.SessionDBPath == "" {
		return fmt.Errorf("SESSION_DB_PATH is required")
	}
	if c.ProducerInterval == 0 {
		return fmt.Errorf("PRODUCER_INTERVAL must be positive")
	}
	if c.DisplayUpdateInterval == 0 {
		return fmt.Errorf("DISPLAY_UPDATE_INTERVAL must be positive")
	}
	return nil
}

// GaitOptions returns the estimator options this configuration selects.
func (c *Config) GaitOptions() []gait.Option {
	opts := []gait.Option{
		gait.WithThreshold(c.PressureThreshold),
		gait.WithStepEdge(c.StepEdge),
		gait.WithStrideModel(c.StrideModel),
	}
	if c.HeightFeet > 0 || c.HeightInches > 0 {
		opts = append(opts, gait.WithHeight(c.HeightFeet, c.HeightInches))
	}
	return opts
}

// SpeedFilter returns a fresh speed filter with the configured parameters.
func (c *Config) SpeedFilter() *gps.SpeedFilter {
	return gps.NewSpeedFilter(c.SpeedAlpha, c.SpeedDeadband, c.SpeedMaxAccuracy)
}

// Interval converts a millisecond setting to a duration.
func Interval(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// InitGlobal initializes the global configuration from file. Only the
// first call loads; later calls return nil.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance, or nil before
// InitGlobal has succeeded.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
