// Package config loads daemon settings from defaults, an optional YAML file,
// BUTTON_* environment variables and command-line flags, in increasing order
// of precedence.
package config

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sweeney/button-sensor/internal/button"
	"github.com/sweeney/button-sensor/internal/gpio"
)

// EnvPrefix prefixes every environment variable, e.g. BUTTON_HOLD_AFTER.
const EnvPrefix = "BUTTON"

// Keys shared by flags, environment and config file.
const (
	KeyConfig     = "config"
	KeyChip       = "chip"
	KeyPin        = "pin"
	KeyDebounce   = "debounce"
	KeyHoldAfter  = "hold-after"
	KeyScan       = "scan"
	KeyPoll       = "poll"
	KeyBroker     = "broker"
	KeyClientID   = "client-id"
	KeyHeartbeat  = "heartbeat"
	KeyHTTP       = "http"
	KeyPrintState = "print-state"
	KeyLogLevel   = "log-level"
)

// Config holds the resolved daemon settings.
type Config struct {
	Chip       string
	Pin        int
	Debounce   time.Duration
	HoldAfter  time.Duration
	Scan       time.Duration
	Poll       time.Duration
	Broker     string
	ClientID   string
	Heartbeat  time.Duration
	HTTPAddr   string
	PrintState bool
	LogLevel   string
}

// DebounceMs returns the debounce time in whole milliseconds.
func (c Config) DebounceMs() uint32 { return uint32(c.Debounce.Milliseconds()) }

// HoldAfterMs returns the hold threshold in whole milliseconds.
func (c Config) HoldAfterMs() uint32 { return uint32(c.HoldAfter.Milliseconds()) }

// Flags returns the daemon flag set.
func Flags(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.String(KeyConfig, "", "Optional YAML config file")
	fs.String(KeyChip, gpio.DefaultChip, "GPIO chip name")
	fs.Int(KeyPin, gpio.DefaultPin, "BCM line number the button is wired to")
	fs.Duration(KeyDebounce, button.DefaultDebounceMs*time.Millisecond, "Debounce time (0 disables)")
	fs.Duration(KeyHoldAfter, button.DefaultHoldAfterMs*time.Millisecond, "Press duration after which HOLD fires")
	fs.Duration(KeyScan, time.Millisecond, "Pin scan interval")
	fs.Duration(KeyPoll, 10*time.Millisecond, "Event poll interval")
	fs.String(KeyBroker, "tcp://192.168.1.200:1883", "MQTT broker address")
	fs.String(KeyClientID, "button-sensor", "MQTT client ID")
	fs.Duration(KeyHeartbeat, 15*time.Minute, "Heartbeat interval (0 to disable)")
	fs.String(KeyHTTP, ":80", "HTTP status address (empty to disable)")
	fs.Bool(KeyPrintState, false, "Print the raw pin level and exit")
	fs.String(KeyLogLevel, "info", "Log level (debug, info, warn, error)")
	return fs
}

// Load parses args against fs and resolves the final configuration.
func Load(fs *pflag.FlagSet, args []string) (Config, error) {
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return Config{}, fmt.Errorf("bind flags: %w", err)
	}

	if path := v.GetString(KeyConfig); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	c := Config{
		Chip:       v.GetString(KeyChip),
		Pin:        v.GetInt(KeyPin),
		Debounce:   v.GetDuration(KeyDebounce),
		HoldAfter:  v.GetDuration(KeyHoldAfter),
		Scan:       v.GetDuration(KeyScan),
		Poll:       v.GetDuration(KeyPoll),
		Broker:     v.GetString(KeyBroker),
		ClientID:   v.GetString(KeyClientID),
		Heartbeat:  v.GetDuration(KeyHeartbeat),
		HTTPAddr:   v.GetString(KeyHTTP),
		PrintState: v.GetBool(KeyPrintState),
		LogLevel:   v.GetString(KeyLogLevel),
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks the settings the daemon cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Scan <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %v", KeyScan, c.Scan))
	}
	if c.Poll <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %v", KeyPoll, c.Poll))
	}
	if c.Pin < 0 {
		errs = append(errs, fmt.Errorf("%s must not be negative, got %d", KeyPin, c.Pin))
	}
	for key, d := range map[string]time.Duration{KeyDebounce: c.Debounce, KeyHoldAfter: c.HoldAfter} {
		if d < 0 || d.Milliseconds() > math.MaxUint32 {
			errs = append(errs, fmt.Errorf("%s out of range: %v", key, d))
		}
	}
	return errors.Join(errs...)
}
