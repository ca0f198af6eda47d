// Package config loads daemon configuration from an optional YAML file,
// environment variables and built-in defaults, via viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/aaronkirschen/mistFan/internal/gpio"
)

// Cycle is a mist on/off cadence from config.
type Cycle struct {
	On  time.Duration `mapstructure:"on"`
	Off time.Duration `mapstructure:"off"`
}

// Pins holds GPIO line offsets on the default gpiochip.
type Pins struct {
	ButtonOne   int `mapstructure:"button_one"`
	ButtonTwo   int `mapstructure:"button_two"`
	ButtonThree int `mapstructure:"button_three"`
	Mist        int `mapstructure:"mist"`
}

// PWM holds fan PWM parameters.
type PWM struct {
	Chip          int    `mapstructure:"chip"`
	Channel       int    `mapstructure:"channel"`
	FrequencyHz   uint32 `mapstructure:"frequency_hz"`
	PrecisionBits uint32 `mapstructure:"precision_bits"`
}

// Gesture holds button gesture recognition timings.
type Gesture struct {
	Debounce     time.Duration `mapstructure:"debounce"`
	ClickWindow  time.Duration `mapstructure:"click_window"`
	PressStart   time.Duration `mapstructure:"press_start"`
	HeldInterval time.Duration `mapstructure:"held_interval"`
}

// Presets holds the mist cycle assigned to each click count on button one.
type Presets struct {
	PulseOn     time.Duration `mapstructure:"pulse_on"`
	DoubleClick Cycle         `mapstructure:"double_click"`
	TripleClick Cycle         `mapstructure:"triple_click"`
	QuadClick   Cycle         `mapstructure:"quad_click"`
	QuintClick  Cycle         `mapstructure:"quint_click"`
}

// Config is the full daemon configuration.
type Config struct {
	Poll     time.Duration `mapstructure:"poll"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Broker   string        `mapstructure:"broker"`
	HTTPAddr string        `mapstructure:"http_addr"`
	LogLevel string        `mapstructure:"log_level"`
	Pins     Pins          `mapstructure:"pins"`
	PWM      PWM           `mapstructure:"pwm"`
	Gesture  Gesture       `mapstructure:"gesture"`
	Presets  Presets       `mapstructure:"presets"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("poll", "5ms")
	v.SetDefault("timeout", "2h")
	v.SetDefault("broker", "tcp://localhost:1883")
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("log_level", "info")

	v.SetDefault("pins.button_one", gpio.DefaultPinButtonOne)
	v.SetDefault("pins.button_two", gpio.DefaultPinButtonTwo)
	v.SetDefault("pins.button_three", gpio.DefaultPinButtonThree)
	v.SetDefault("pins.mist", gpio.DefaultPinMist)

	v.SetDefault("pwm.chip", gpio.DefaultPWMChip)
	v.SetDefault("pwm.channel", gpio.DefaultPWMChannel)
	v.SetDefault("pwm.frequency_hz", gpio.DefaultPWMFrequency)
	v.SetDefault("pwm.precision_bits", gpio.DefaultPWMPrecision)

	v.SetDefault("gesture.debounce", "50ms")
	v.SetDefault("gesture.click_window", "400ms")
	v.SetDefault("gesture.press_start", "800ms")
	v.SetDefault("gesture.held_interval", "0s")

	v.SetDefault("presets.pulse_on", "1s")
	v.SetDefault("presets.double_click.on", "1s")
	v.SetDefault("presets.double_click.off", "30s")
	v.SetDefault("presets.triple_click.on", "1s")
	v.SetDefault("presets.triple_click.off", "15s")
	v.SetDefault("presets.quad_click.on", "3s")
	v.SetDefault("presets.quad_click.off", "30s")
	v.SetDefault("presets.quint_click.on", "3s")
	v.SetDefault("presets.quint_click.off", "15s")
}

// Load reads configuration from the given file path. An empty path loads
// defaults only. A missing file at the default search path is not an error;
// an explicitly named file must exist.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("MISTFAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("mistfan")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/mistfan")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Poll <= 0 {
		return fmt.Errorf("poll must be positive, got %v", c.Poll)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}
	if c.PWM.PrecisionBits < 1 || c.PWM.PrecisionBits > 16 {
		return fmt.Errorf("pwm.precision_bits must be 1..16, got %d", c.PWM.PrecisionBits)
	}
	if c.PWM.FrequencyHz == 0 {
		return errors.New("pwm.frequency_hz must be positive")
	}
	if c.Gesture.Debounce < 0 || c.Gesture.ClickWindow <= 0 || c.Gesture.PressStart <= 0 {
		return errors.New("gesture timings must be positive")
	}
	return nil
}
