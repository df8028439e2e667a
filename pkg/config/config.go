// Package config provides the common options of the capture programs.
//
// Settings are taken, from lowest to highest precedence, from built-in
// defaults, the environment (including .env files), a YAML file given by
// -config, and explicitly set command line flags.
package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/robotalks/procon.go/pkg/console"
	"github.com/robotalks/procon.go/pkg/source"
)

// Environment variables.
const (
	EnvSource      = "PROCON_SOURCE"
	EnvBaud        = "PROCON_BAUD"
	EnvReadTimeout = "PROCON_READ_TIMEOUT"
	EnvMode        = "PROCON_MODE"
	EnvMQTTURL     = "PROCON_MQTT_URL"
	EnvDeviceID    = "PROCON_DEVICE_ID"
)

// MQTTConfig configures telemetry publishing.
type MQTTConfig struct {
	// URL of the broker, e.g. mqtt://host:1883/topic-prefix.
	// Publishing is disabled when empty.
	URL      string `yaml:"url"`
	DeviceID string `yaml:"device_id"`
}

// Config is the capture configuration.
type Config struct {
	// Source is the URL of the byte stream, see package source.
	Source      string        `yaml:"source"`
	Baud        int           `yaml:"baud"`
	ReadTimeout time.Duration `yaml:"read_timeout"`
	Mode        string        `yaml:"mode"`
	MQTT        MQTTConfig    `yaml:"mqtt"`
}

// Defaults returns the built-in defaults.
func Defaults() Config {
	return Config{
		Baud:        source.DefaultBaud,
		ReadTimeout: source.DefaultTimeout,
		Mode:        string(console.ModeBoth),
	}
}

var (
	baseConfig = Defaults()
	flagConfig Config
	configFile string
)

func init() {
	// .env doesn't override variables already in the environment.
	godotenv.Load()
	if err := ApplyEnv(&baseConfig, os.LookupEnv); err != nil {
		fmt.Fprintf(os.Stderr, "ignore environment: %v\n", err)
		baseConfig = Defaults()
	}
	flagConfig = baseConfig
}

// flagSetters copy a flag value from the flag bound config when the
// flag is set on command line.
var flagSetters = map[string]func(dst, src *Config){
	"source":    func(dst, src *Config) { dst.Source = src.Source },
	"baud":      func(dst, src *Config) { dst.Baud = src.Baud },
	"timeout":   func(dst, src *Config) { dst.ReadTimeout = src.ReadTimeout },
	"mode":      func(dst, src *Config) { dst.Mode = src.Mode },
	"mqtt":      func(dst, src *Config) { dst.MQTT.URL = src.MQTT.URL },
	"device-id": func(dst, src *Config) { dst.MQTT.DeviceID = src.MQTT.DeviceID },
}

// SetupFlags sets up command line flags.
func SetupFlags() {
	flag.StringVar(&configFile, "config", "", "YAML config file")
	flag.StringVar(&flagConfig.Source, "source", flagConfig.Source, "Byte stream URL, e.g. /dev/ttyUSB0, COM6, tcp://host:port, file:///capture.bin, -")
	flag.IntVar(&flagConfig.Baud, "baud", flagConfig.Baud, "Serial baud rate")
	flag.DurationVar(&flagConfig.ReadTimeout, "timeout", flagConfig.ReadTimeout, "Read timeout")
	flag.StringVar(&flagConfig.Mode, "mode", flagConfig.Mode, "Output mode: hex, decode or both")
	flag.StringVar(&flagConfig.MQTT.URL, "mqtt", flagConfig.MQTT.URL, "MQTT broker URL to publish telemetry")
	flag.StringVar(&flagConfig.MQTT.DeviceID, "device-id", flagConfig.MQTT.DeviceID, "Device ID used in MQTT topics")
}

// NewConfig creates a Config from defaults, environment, the config file
// and command line flags. It must be called after flag.Parse.
func NewConfig() (*Config, error) {
	conf := baseConfig
	if configFile != "" {
		if err := conf.LoadFile(configFile); err != nil {
			return nil, err
		}
	}
	flag.Visit(func(f *flag.Flag) {
		if setter := flagSetters[f.Name]; setter != nil {
			setter(&conf, &flagConfig)
		}
	})
	return &conf, nil
}

// ApplyEnv overrides conf with environment variables.
func ApplyEnv(conf *Config, lookup func(string) (string, bool)) error {
	if val, ok := lookup(EnvSource); ok && val != "" {
		conf.Source = val
	}
	if val, ok := lookup(EnvBaud); ok && val != "" {
		baud, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("%s: %v", EnvBaud, err)
		}
		conf.Baud = baud
	}
	if val, ok := lookup(EnvReadTimeout); ok && val != "" {
		timeout, err := time.ParseDuration(val)
		if err != nil {
			return fmt.Errorf("%s: %v", EnvReadTimeout, err)
		}
		conf.ReadTimeout = timeout
	}
	if val, ok := lookup(EnvMode); ok && val != "" {
		conf.Mode = val
	}
	if val, ok := lookup(EnvMQTTURL); ok {
		conf.MQTT.URL = val
	}
	if val, ok := lookup(EnvDeviceID); ok && val != "" {
		conf.MQTT.DeviceID = val
	}
	return nil
}

// ApplyEnvFiles overrides conf with variables from .env style files.
func ApplyEnvFiles(conf *Config, files ...string) error {
	vars, err := godotenv.Read(files...)
	if err != nil {
		return err
	}
	return ApplyEnv(conf, func(key string) (string, bool) {
		val, ok := vars[key]
		return val, ok
	})
}

// LoadFile overrides conf with the fields present in a YAML file.
func (c *Config) LoadFile(fn string) error {
	f, err := os.Open(fn)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := c.Load(f); err != nil {
		return fmt.Errorf("config %s: %v", fn, err)
	}
	return nil
}

// Load overrides conf with the fields present in YAML from r.
// Unknown fields are rejected.
func (c *Config) Load(r io.Reader) error {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(c); err != nil && err != io.EOF {
		return err
	}
	return nil
}

// Validate checks the configuration without mutating it.
func (c *Config) Validate() error {
	if c.Source == "" {
		return fmt.Errorf("source must be specified (-source or %s)", EnvSource)
	}
	if c.Baud <= 0 {
		return fmt.Errorf("invalid baud rate %d", c.Baud)
	}
	if c.ReadTimeout <= 0 {
		return fmt.Errorf("invalid read timeout %s", c.ReadTimeout)
	}
	if _, err := console.ParseMode(c.Mode); err != nil {
		return err
	}
	if _, err := source.ParseURL(c.Source, c.SourceOptions()); err != nil {
		return fmt.Errorf("invalid source: %v", err)
	}
	return nil
}

// SourceOptions returns the options to open the source.
func (c *Config) SourceOptions() source.Options {
	return source.Options{Baud: c.Baud, Timeout: c.ReadTimeout}
}

// OutputMode returns the parsed output mode, ModeBoth if invalid.
func (c *Config) OutputMode() console.Mode {
	mode, err := console.ParseMode(c.Mode)
	if err != nil {
		return console.ModeBoth
	}
	return mode
}
