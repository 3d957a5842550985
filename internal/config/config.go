package config

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"buffdev/bufdev"
)

// EnvPrefix for environment overrides, e.g. BUFFDEV_DEVICE_PAGES
const EnvPrefix = "BUFFDEV"

// Config is the application configuration
type Config struct {
	Device  DeviceConfig  `mapstructure:"device"`
	Log     LogConfig     `mapstructure:"log"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// DeviceConfig sizes and names the buffer device
type DeviceConfig struct {
	Name     string `mapstructure:"name"`
	Pages    int    `mapstructure:"pages"`
	PageSize int    `mapstructure:"pageSize"`
	SeekEnd  string `mapstructure:"seekEnd"` // reference | conventional
}

// LogConfig - level is one of zerolog's level names
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// MetricsConfig - empty Addr disables the /metrics endpoint
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// Capacity of the device region in bytes
func (c *Config) Capacity() int64 {
	return int64(c.Device.Pages) * int64(c.Device.PageSize)
}

// SeekEndMode parses Device.SeekEnd
func (c *Config) SeekEndMode() bufdev.SeekEndMode {
	mode, _ := bufdev.ParseSeekEndMode(c.Device.SeekEnd)
	return mode
}

// New returns a viper instance with defaults and env binding applied
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("device.name", bufdev.DefaultName)
	v.SetDefault("device.pages", bufdev.Pages)
	v.SetDefault("device.pageSize", bufdev.PageSize)
	v.SetDefault("device.seekEnd", bufdev.SeekEndReference.String())
	v.SetDefault("log.level", "info")
	v.SetDefault("metrics.addr", "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads configFile (optional) into a fresh viper instance
func Load(configFile string) (*Config, error) {
	v := New()
	if err := ReadFile(v, configFile); err != nil {
		return nil, err
	}
	return Decode(v)
}

// ReadFile merges a YAML config file into v. An empty path is a no-op.
func ReadFile(v *viper.Viper, configFile string) error {
	if configFile == "" {
		return nil
	}
	v.SetConfigFile(configFile)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// Decode unmarshals and validates v
func Decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Device.Pages <= 0 {
		return fmt.Errorf("device.pages must be positive, got %d", cfg.Device.Pages)
	}
	if cfg.Device.PageSize <= 0 {
		return fmt.Errorf("device.pageSize must be positive, got %d", cfg.Device.PageSize)
	}
	if _, ok := bufdev.ParseSeekEndMode(cfg.Device.SeekEnd); !ok {
		return fmt.Errorf("device.seekEnd must be reference or conventional, got %q", cfg.Device.SeekEnd)
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(cfg.Log.Level)); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}
