package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	c, err := Load(Flags("test"), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if c.Chip != "gpiochip0" {
		t.Errorf("Chip: got %q, want gpiochip0", c.Chip)
	}
	if c.Pin != 26 {
		t.Errorf("Pin: got %d, want 26", c.Pin)
	}
	if c.DebounceMs() != 20 {
		t.Errorf("DebounceMs: got %d, want 20", c.DebounceMs())
	}
	if c.HoldAfterMs() != 1000 {
		t.Errorf("HoldAfterMs: got %d, want 1000", c.HoldAfterMs())
	}
	if c.Scan != time.Millisecond {
		t.Errorf("Scan: got %v, want 1ms", c.Scan)
	}
	if c.Heartbeat != 15*time.Minute {
		t.Errorf("Heartbeat: got %v, want 15m", c.Heartbeat)
	}
	if c.LogLevel != "info" {
		t.Errorf("LogLevel: got %q, want info", c.LogLevel)
	}
}

func TestLoadFlags(t *testing.T) {
	c, err := Load(Flags("test"), []string{"--pin=17", "--debounce=50ms", "--hold-after=2s", "--print-state"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if c.Pin != 17 {
		t.Errorf("Pin: got %d, want 17", c.Pin)
	}
	if c.DebounceMs() != 50 {
		t.Errorf("DebounceMs: got %d, want 50", c.DebounceMs())
	}
	if c.HoldAfterMs() != 2000 {
		t.Errorf("HoldAfterMs: got %d, want 2000", c.HoldAfterMs())
	}
	if !c.PrintState {
		t.Error("expected PrintState=true")
	}
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("BUTTON_HOLD_AFTER", "3s")
	t.Setenv("BUTTON_BROKER", "tcp://broker.lan:1883")

	c, err := Load(Flags("test"), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.HoldAfter != 3*time.Second {
		t.Errorf("HoldAfter: got %v, want 3s", c.HoldAfter)
	}
	if c.Broker != "tcp://broker.lan:1883" {
		t.Errorf("Broker: got %q", c.Broker)
	}
}

func TestLoadFlagBeatsEnv(t *testing.T) {
	t.Setenv("BUTTON_PIN", "5")

	c, err := Load(Flags("test"), []string{"--pin=6"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Pin != 6 {
		t.Errorf("Pin: got %d, want 6", c.Pin)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "button.yaml")
	content := "pin: 21\ndebounce: 35ms\nhttp: \":8080\"\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	c, err := Load(Flags("test"), []string{"--config=" + path, "--debounce=40ms"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Pin != 21 {
		t.Errorf("Pin: got %d, want 21 from file", c.Pin)
	}
	if c.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr: got %q, want :8080 from file", c.HTTPAddr)
	}
	if c.DebounceMs() != 40 {
		t.Errorf("DebounceMs: got %d, want 40 from flag", c.DebounceMs())
	}
}

func TestLoadMissingConfigFile(t *testing.T) {
	_, err := Load(Flags("test"), []string{"--config=" + filepath.Join(t.TempDir(), "missing.yaml")})
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoadUnknownFlag(t *testing.T) {
	fs := Flags("test")
	fs.SetOutput(new(strings.Builder))
	if _, err := Load(fs, []string{"--bogus"}); err == nil {
		t.Fatal("expected error for unknown flag")
	}
}

func TestValidate(t *testing.T) {
	base := Config{Scan: time.Millisecond, Poll: 10 * time.Millisecond, Pin: 26}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"ok", func(*Config) {}, ""},
		{"zero debounce ok", func(c *Config) { c.Debounce = 0 }, ""},
		{"zero scan", func(c *Config) { c.Scan = 0 }, "scan"},
		{"negative poll", func(c *Config) { c.Poll = -time.Second }, "poll"},
		{"negative pin", func(c *Config) { c.Pin = -1 }, "pin"},
		{"negative debounce", func(c *Config) { c.Debounce = -time.Millisecond }, "debounce"},
		{"huge hold", func(c *Config) { c.HoldAfter = 60 * 24 * time.Hour }, "hold-after"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error: got %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}
