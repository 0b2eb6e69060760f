package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

// Config holds all controller configuration values.
type Config struct {
	// GPIO pin names (periph gpioreg names, e.g. "GPIO23")
	UltrasonicTrigPin string
	UltrasonicEchoPin string
	HX711DTPin        string
	HX711SCKPin       string
	FloatSwitchPin    string

	// L298N paddle motor driver
	Motor1IN1Pin string
	Motor1IN2Pin string
	Motor1ENAPin string
	Motor2IN3Pin string
	Motor2IN4Pin string
	Motor2ENBPin string

	// TB6600 stepper driver (conveyor)
	StepperPULPin string
	StepperDIRPin string
	StepperENAPin string

	// I2C device addresses
	TCS34725Addr uint16
	MPU6050Addr  uint16

	// GPS
	GPSSerialPort    string
	GPSBaudRate      int
	GPSMinFixQuality int
	GPSMinSatellites int
	GPSMaxFixAgeMS   int

	// Classifier
	ClassifierURL       string // empty = mock classifier
	ClassifierTimeoutMS int
	ConfidenceThreshold float64

	// Vision
	FrameSourceDir string // empty = static frame source

	// Timing (milliseconds)
	ScanIntervalMS       int
	CollectionDurationMS int
	BinFullCooldownMS    int
	FaultBackoffMS       int
	DetectionPauseMS     int
	ObstacleTurnMS       int
	UltrasonicTimeoutMS  int
	I2CRetryBackoffMS    int

	// Motors
	PWMFrequencyHz int
	DefaultSpeed   int
	TurnSpeed      int
	StepperRate    int // conveyor steps per second

	// Sensors
	HX711CalibrationFactor float64 // raw counts per gram
	HX711Samples           int
	UltrasonicMaxCm        float64
	MinDistanceCm          float64

	// Persistence
	LogFilePath string

	// Display
	DisplayMode         string // "console" or "oled"
	DisplayAlertDwellMS int

	// Telemetry / monitoring (MQTT broker empty = telemetry disabled)
	MQTTBroker          string
	MQTTClientIDRobot   string
	MQTTClientIDConsole string
	MQTTClientIDWeb     string
	TopicStatus         string
	TopicSnapshot       string
	TopicCollections    string
	WebAddr             string
}

// Package-level unexported variables for the singleton: globalConfig is
// only reachable through InitGlobal and Get, configOnce makes repeated
// InitGlobal calls harmless, and configMu allows concurrent readers.
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Default returns a Config populated with the stock AMLAC wiring and
// timing values. Load starts from these, so a config file only needs to
// state what differs from the standard build.
func Default() *Config {
	return &Config{
		UltrasonicTrigPin: "GPIO23",
		UltrasonicEchoPin: "GPIO24",
		HX711DTPin:        "GPIO5",
		HX711SCKPin:       "GPIO6",
		FloatSwitchPin:    "GPIO17",

		Motor1IN1Pin: "GPIO12",
		Motor1IN2Pin: "GPIO13",
		Motor1ENAPin: "GPIO19",
		Motor2IN3Pin: "GPIO16",
		Motor2IN4Pin: "GPIO26",
		Motor2ENBPin: "GPIO20",

		StepperPULPin: "GPIO22",
		StepperDIRPin: "GPIO27",
		StepperENAPin: "GPIO18",

		TCS34725Addr: 0x29,
		MPU6050Addr:  0x68,

		GPSSerialPort:    "/dev/serial0",
		GPSBaudRate:      9600,
		GPSMinFixQuality: 1,
		GPSMinSatellites: 3,
		GPSMaxFixAgeMS:   5000,

		ClassifierTimeoutMS: 500,
		ConfidenceThreshold: 0.70,

		ScanIntervalMS:       2000,
		CollectionDurationMS: 5000,
		BinFullCooldownMS:    10000,
		FaultBackoffMS:       5000,
		DetectionPauseMS:     1000,
		ObstacleTurnMS:       2000,
		UltrasonicTimeoutMS:  30,
		I2CRetryBackoffMS:    10,

		PWMFrequencyHz: 1000,
		DefaultSpeed:   50,
		TurnSpeed:      40,
		StepperRate:    1000,

		HX711CalibrationFactor: 2280,
		HX711Samples:           5,
		UltrasonicMaxCm:        400,
		MinDistanceCm:          10,

		LogFilePath: "collection_log.csv",

		DisplayMode:         "console",
		DisplayAlertDwellMS: 3000,

		MQTTClientIDRobot:   "amlac-robot",
		MQTTClientIDConsole: "amlac-console",
		MQTTClientIDWeb:     "amlac-web",
		TopicStatus:         "amlac/status",
		TopicSnapshot:       "amlac/snapshot",
		TopicCollections:    "amlac/collections",
		WebAddr:             ":8080",
	}
}

// Load reads the configuration file and returns a Config struct.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := Default()
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) setInt(dst *int, key, value string) error {
	v, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	*dst = v
	return nil
}

func (c *Config) setFloat(dst *float64, key, value string) error {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	*dst = v
	return nil
}

func (c *Config) setAddr(dst *uint16, key, value string) error {
	v, err := strconv.ParseUint(value, 0, 16)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	*dst = uint16(v)
	return nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	switch key {
	// Pins
	case "ULTRASONIC_TRIG_PIN":
		c.UltrasonicTrigPin = value
	case "ULTRASONIC_ECHO_PIN":
		c.UltrasonicEchoPin = value
	case "HX711_DT_PIN":
		c.HX711DTPin = value
	case "HX711_SCK_PIN":
		c.HX711SCKPin = value
	case "FLOAT_SWITCH_PIN":
		c.FloatSwitchPin = value
	case "MOTOR1_IN1_PIN":
		c.Motor1IN1Pin = value
	case "MOTOR1_IN2_PIN":
		c.Motor1IN2Pin = value
	case "MOTOR1_ENA_PIN":
		c.Motor1ENAPin = value
	case "MOTOR2_IN3_PIN":
		c.Motor2IN3Pin = value
	case "MOTOR2_IN4_PIN":
		c.Motor2IN4Pin = value
	case "MOTOR2_ENB_PIN":
		c.Motor2ENBPin = value
	case "STEPPER_PUL_PIN":
		c.StepperPULPin = value
	case "STEPPER_DIR_PIN":
		c.StepperDIRPin = value
	case "STEPPER_ENA_PIN":
		c.StepperENAPin = value

	// I2C addresses
	case "TCS34725_I2C_ADDR":
		return c.setAddr(&c.TCS34725Addr, key, value)
	case "MPU6050_I2C_ADDR":
		return c.setAddr(&c.MPU6050Addr, key, value)

	// GPS
	case "GPS_SERIAL_PORT":
		c.GPSSerialPort = value
	case "GPS_BAUD_RATE":
		return c.setInt(&c.GPSBaudRate, key, value)
	case "GPS_MIN_FIX_QUALITY":
		return c.setInt(&c.GPSMinFixQuality, key, value)
	case "GPS_MIN_SATELLITES":
		return c.setInt(&c.GPSMinSatellites, key, value)
	case "GPS_MAX_FIX_AGE_MS":
		return c.setInt(&c.GPSMaxFixAgeMS, key, value)

	// Classifier
	case "CLASSIFIER_URL":
		c.ClassifierURL = value
	case "CLASSIFIER_TIMEOUT_MS":
		return c.setInt(&c.ClassifierTimeoutMS, key, value)
	case "CONFIDENCE_THRESHOLD":
		return c.setFloat(&c.ConfidenceThreshold, key, value)

	// Vision
	case "FRAME_SOURCE_DIR":
		c.FrameSourceDir = value

	// Timing
	case "SCAN_INTERVAL_MS":
		return c.setInt(&c.ScanIntervalMS, key, value)
	case "COLLECTION_DURATION_MS":
		return c.setInt(&c.CollectionDurationMS, key, value)
	case "BIN_FULL_COOLDOWN_MS":
		return c.setInt(&c.BinFullCooldownMS, key, value)
	case "FAULT_BACKOFF_MS":
		return c.setInt(&c.FaultBackoffMS, key, value)
	case "DETECTION_PAUSE_MS":
		return c.setInt(&c.DetectionPauseMS, key, value)
	case "OBSTACLE_TURN_MS":
		return c.setInt(&c.ObstacleTurnMS, key, value)
	case "ULTRASONIC_TIMEOUT_MS":
		return c.setInt(&c.UltrasonicTimeoutMS, key, value)
	case "I2C_RETRY_BACKOFF_MS":
		return c.setInt(&c.I2CRetryBackoffMS, key, value)

	// Motors
	case "PWM_FREQUENCY_HZ":
		return c.setInt(&c.PWMFrequencyHz, key, value)
	case "DEFAULT_SPEED":
		return c.setInt(&c.DefaultSpeed, key, value)
	case "TURN_SPEED":
		return c.setInt(&c.TurnSpeed, key, value)
	case "STEPPER_RATE":
		return c.setInt(&c.StepperRate, key, value)

	// Sensors
	case "HX711_CALIBRATION_FACTOR":
		return c.setFloat(&c.HX711CalibrationFactor, key, value)
	case "HX711_SAMPLES":
		return c.setInt(&c.HX711Samples, key, value)
	case "ULTRASONIC_MAX_CM":
		return c.setFloat(&c.UltrasonicMaxCm, key, value)
	case "MIN_DISTANCE_CM":
		return c.setFloat(&c.MinDistanceCm, key, value)

	// Persistence
	case "LOG_FILE_PATH":
		c.LogFilePath = value

	// Display
	case "DISPLAY_MODE":
		if value != "console" && value != "oled" {
			return fmt.Errorf("DISPLAY_MODE must be \"console\" or \"oled\", got %q", value)
		}
		c.DisplayMode = value
	case "DISPLAY_ALERT_DWELL_MS":
		return c.setInt(&c.DisplayAlertDwellMS, key, value)

	// Telemetry / monitoring
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_ROBOT":
		c.MQTTClientIDRobot = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_WEB":
		c.MQTTClientIDWeb = value
	case "TOPIC_STATUS":
		c.TopicStatus = value
	case "TOPIC_SNAPSHOT":
		c.TopicSnapshot = value
	case "TOPIC_COLLECTIONS":
		c.TopicCollections = value
	case "WEB_ADDR":
		c.WebAddr = value

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return nil
}

// validate checks ranges on the values that can silently misbehave.
func (c *Config) validate() error {
	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1 {
		return fmt.Errorf("CONFIDENCE_THRESHOLD must be in [0,1], got %g", c.ConfidenceThreshold)
	}
	if c.DefaultSpeed < 0 || c.DefaultSpeed > 100 {
		return fmt.Errorf("DEFAULT_SPEED must be 0-100, got %d", c.DefaultSpeed)
	}
	if c.TurnSpeed < 0 || c.TurnSpeed > 100 {
		return fmt.Errorf("TURN_SPEED must be 0-100, got %d", c.TurnSpeed)
	}
	if c.ScanIntervalMS <= 0 {
		return fmt.Errorf("SCAN_INTERVAL_MS must be positive, got %d", c.ScanIntervalMS)
	}
	if c.CollectionDurationMS <= 0 {
		return fmt.Errorf("COLLECTION_DURATION_MS must be positive, got %d", c.CollectionDurationMS)
	}
	if c.HX711Samples <= 0 {
		return fmt.Errorf("HX711_SAMPLES must be positive, got %d", c.HX711Samples)
	}
	if c.HX711CalibrationFactor == 0 {
		return fmt.Errorf("HX711_CALIBRATION_FACTOR must be non-zero")
	}
	if c.LogFilePath == "" {
		return fmt.Errorf("LOG_FILE_PATH is required")
	}
	return nil
}

// InitGlobal initializes the global configuration from file. Uses
// sync.Once so repeated calls are harmless; this is the only function
// that can set globalConfig.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance. InitGlobal must be
// called first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
