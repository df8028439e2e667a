package config

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/procon.go/pkg/console"
)

func TestLoad(t *testing.T) {
	conf := Defaults()
	err := conf.Load(strings.NewReader(`
source: tcp://bridge:2000
read_timeout: 250ms
mqtt:
  url: mqtt://broker:1883/lab
  device_id: bench
`))
	require.NoError(t, err)
	require.Equal(t, Config{
		Source:      "tcp://bridge:2000",
		Baud:        115200,
		ReadTimeout: 250 * time.Millisecond,
		Mode:        "both",
		MQTT:        MQTTConfig{URL: "mqtt://broker:1883/lab", DeviceID: "bench"},
	}, conf)
	require.NoError(t, conf.Validate())

	require.NoError(t, conf.Load(strings.NewReader("")))
	require.Equal(t, "tcp://bridge:2000", conf.Source)

	require.Error(t, conf.Load(strings.NewReader("sources: /dev/ttyUSB0\n")))
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name   string
		modify func(*Config)
		ok     bool
	}{
		{"valid", func(c *Config) {}, true},
		{"no source", func(c *Config) { c.Source = "" }, false},
		{"bad baud", func(c *Config) { c.Baud = 0 }, false},
		{"bad timeout", func(c *Config) { c.ReadTimeout = -time.Second }, false},
		{"bad mode", func(c *Config) { c.Mode = "json" }, false},
		{"bad scheme", func(c *Config) { c.Source = "http://x" }, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			conf := Defaults()
			conf.Source = "/dev/ttyUSB0"
			tc.modify(&conf)
			err := conf.Validate()
			if tc.ok {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	vars := map[string]string{
		EnvSource:      "COM6",
		EnvBaud:        "921600",
		EnvReadTimeout: "2s",
		EnvMode:        "hex",
		EnvMQTTURL:     "mqtt://localhost",
	}
	conf := Defaults()
	require.NoError(t, ApplyEnv(&conf, func(key string) (string, bool) {
		val, ok := vars[key]
		return val, ok
	}))
	require.Equal(t, "COM6", conf.Source)
	require.Equal(t, 921600, conf.Baud)
	require.Equal(t, 2*time.Second, conf.ReadTimeout)
	require.Equal(t, console.ModeHex, conf.OutputMode())
	require.Equal(t, "mqtt://localhost", conf.MQTT.URL)

	vars[EnvBaud] = "fast"
	require.Error(t, ApplyEnv(&conf, func(key string) (string, bool) {
		val, ok := vars[key]
		return val, ok
	}))
}

func TestApplyEnvFiles(t *testing.T) {
	dir, err := ioutil.TempDir("", "procon")
	require.NoError(t, err)
	defer os.RemoveAll(dir)
	fn := filepath.Join(dir, ".env")
	require.NoError(t, ioutil.WriteFile(fn, []byte("PROCON_SOURCE=/dev/ttyACM0\nPROCON_DEVICE_ID=desk\n"), 0644))

	conf := Defaults()
	require.NoError(t, ApplyEnvFiles(&conf, fn))
	require.Equal(t, "/dev/ttyACM0", conf.Source)
	require.Equal(t, "desk", conf.MQTT.DeviceID)

	require.Error(t, ApplyEnvFiles(&conf, filepath.Join(dir, "missing.env")))
}

func TestLoadFile(t *testing.T) {
	dir, err := ioutil.TempDir("", "procon")
	require.NoError(t, err)
	defer os.RemoveAll(dir)
	fn := filepath.Join(dir, "procon.yaml")
	require.NoError(t, ioutil.WriteFile(fn, []byte("source: file:///tmp/x.bin\nmode: decode\n"), 0644))

	conf := Defaults()
	require.NoError(t, conf.LoadFile(fn))
	require.Equal(t, console.ModeDecode, conf.OutputMode())
	require.Error(t, conf.LoadFile(filepath.Join(dir, "nope.yaml")))
}
