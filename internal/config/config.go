package config

import (
	"context"
	"fmt"
	"os"

	"github.com/sethvargo/go-envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "PIXELRING_"

type SPI struct {
	Dev string `yaml:"dev" env:"SPI_DEV,overwrite"` // e.g. /dev/spidev0.0, "" for the first port
}

type MQTT struct {
	Broker   string `yaml:"broker" env:"MQTT_BROKER,overwrite"` // e.g. tcp://localhost:1883, empty disables
	Topic    string `yaml:"topic" env:"MQTT_TOPIC,overwrite"`
	ClientID string `yaml:"client_id,omitempty" env:"MQTT_CLIENT_ID,overwrite"`
}

type Buttons struct {
	Enabled  bool `yaml:"enabled" env:"BUTTONS_ENABLED,overwrite"`
	ScenePin int  `yaml:"scene_pin" env:"BUTTONS_SCENE_PIN,overwrite"` // BCM numbering
	PowerPin int  `yaml:"power_pin" env:"BUTTONS_POWER_PIN,overwrite"`
	HoldMs   int  `yaml:"hold_ms" env:"BUTTONS_HOLD_MS,overwrite"`
	PollMs   int  `yaml:"poll_ms" env:"BUTTONS_POLL_MS,overwrite"`
}

type Knob struct {
	Enabled bool   `yaml:"enabled" env:"KNOB_ENABLED,overwrite"`
	Bus     string `yaml:"bus" env:"KNOB_BUS,overwrite"` // e.g. I2C1
	Address uint16 `yaml:"address" env:"KNOB_ADDRESS,overwrite"`
	PollMs  int    `yaml:"poll_ms" env:"KNOB_POLL_MS,overwrite"`
}

type Config struct {
	Driver     string `yaml:"driver" env:"DRIVER,overwrite"` // "spi" | "stream" | "sim"
	Pixels     int    `yaml:"pixels" env:"PIXELS,overwrite"`
	GPIO       string `yaml:"gpio" env:"GPIO,overwrite"` // pin name for the stream driver
	Brightness int    `yaml:"brightness" env:"BRIGHTNESS,overwrite"`
	FPS        int    `yaml:"fps" env:"FPS,overwrite"`
	Scene      string `yaml:"scene" env:"SCENE,overwrite"`
	Addr       string `yaml:"addr" env:"ADDR,overwrite"`
	Program    string `yaml:"program,omitempty" env:"PROGRAM,overwrite"`

	SPI     SPI     `yaml:"spi,omitempty"`
	MQTT    MQTT    `yaml:"mqtt,omitempty"`
	Buttons Buttons `yaml:"buttons,omitempty"`
	Knob    Knob    `yaml:"knob,omitempty"`
}

// Default is a 24 pixel ring on the simulator.
func Default() *Config {
	return &Config{
		Driver:     "sim",
		Pixels:     24,
		GPIO:       "GPIO18",
		Brightness: 100,
		FPS:        100,
		Scene:      "Rainbow",
		Addr:       ":8080",
		MQTT:       MQTT{Topic: "PIXELRING"},
		Buttons:    Buttons{ScenePin: 17, PowerPin: 27, HoldMs: 2000, PollMs: 30},
		Knob:       Knob{Bus: "I2C1", Address: 0x48, PollMs: 50},
	}
}

// Load reads a YAML file on top of Default.
func Load(path string) (*Config, error) {
	c := Default()
	if err := Overlay(path, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Overlay reads a YAML file on top of c; keys missing from the file keep
// their current values.
func Overlay(path string, c *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

// ApplyEnv overrides c with any PIXELRING_* variables that are set.
func ApplyEnv(ctx context.Context, c *Config) error {
	return applyEnv(ctx, c, envconfig.OsLookuper())
}

func applyEnv(ctx context.Context, c *Config, l envconfig.Lookuper) error {
	if err := envconfig.ProcessWith(ctx, c, envconfig.PrefixLookuper(EnvPrefix, l)); err != nil {
		return fmt.Errorf("env: %w", err)
	}
	return nil
}
