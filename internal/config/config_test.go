package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "amlac_config.txt")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
# test config
CONFIDENCE_THRESHOLD = 0.85
SCAN_INTERVAL_MS=1000
MQTT_BROKER=tcp://localhost:1883
TCS34725_I2C_ADDR=0x39
ULTRASONIC_TRIG_PIN=GPIO8
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.InDelta(t, 0.85, cfg.ConfidenceThreshold, 1e-9)
	assert.Equal(t, 1000, cfg.ScanIntervalMS)
	assert.Equal(t, "tcp://localhost:1883", cfg.MQTTBroker)
	assert.Equal(t, uint16(0x39), cfg.TCS34725Addr)
	assert.Equal(t, "GPIO8", cfg.UltrasonicTrigPin)

	// Untouched keys keep the stock wiring.
	assert.Equal(t, "GPIO24", cfg.UltrasonicEchoPin)
	assert.Equal(t, 5000, cfg.CollectionDurationMS)
	assert.Equal(t, "/dev/serial0", cfg.GPSSerialPort)
}

func TestLoadEmptyFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "\n# nothing but comments\n"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadRejectsUnknownKey(t *testing.T) {
	_, err := Load(writeConfig(t, "NO_SUCH_KEY=1\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown config key")
}

func TestLoadRejectsMalformedLine(t *testing.T) {
	_, err := Load(writeConfig(t, "JUST_A_KEY\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config line")
}

func TestLoadRejectsOutOfRangeThreshold(t *testing.T) {
	_, err := Load(writeConfig(t, "CONFIDENCE_THRESHOLD=1.5\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CONFIDENCE_THRESHOLD")
}

func TestLoadRejectsBadDisplayMode(t *testing.T) {
	_, err := Load(writeConfig(t, "DISPLAY_MODE=lcd\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DISPLAY_MODE")
}

func TestLoadRejectsBadInt(t *testing.T) {
	_, err := Load(writeConfig(t, "SCAN_INTERVAL_MS=soon\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SCAN_INTERVAL_MS")
}
