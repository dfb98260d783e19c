package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sweeney/lambda-display/internal/display"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", p, err)
	}
	return p
}

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

// ---- load ----

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Display.DecimalPlaces != 2 || !cfg.Display.Blinking || cfg.Display.UpdateIntervalMs != 1500 {
		t.Errorf("display defaults: got %+v", cfg.Display)
	}
	if cfg.MQTT.TopicPrefix != "mama" {
		t.Errorf("topic prefix: got %q", cfg.MQTT.TopicPrefix)
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("defaults must validate: %v", err)
	}
}

func TestLoad_OverlaysDefaults(t *testing.T) {
	p := writeFile(t, "config.yaml", `
display:
  decimal_places: 3
  blinking: false
mqtt:
  broker: tcp://10.0.0.5:1883
led:
  pin: 21
console: true
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Display.DecimalPlaces != 3 || cfg.Display.Blinking {
		t.Errorf("display: got %+v", cfg.Display)
	}
	if cfg.Display.UpdateIntervalMs != 1500 {
		t.Errorf("unset update_interval_ms should keep default, got %d", cfg.Display.UpdateIntervalMs)
	}
	if cfg.MQTT.Broker != "tcp://10.0.0.5:1883" || cfg.MQTT.ClientID != "lambda-display" {
		t.Errorf("mqtt: got %+v", cfg.MQTT)
	}
	if cfg.LED.Pin != 21 || !cfg.Console {
		t.Errorf("led/console: got %+v %v", cfg.LED, cfg.Console)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoad_BadYAML(t *testing.T) {
	p := writeFile(t, "bad.yaml", "display: [1, 2\n")
	_, err := Load(p)
	if err == nil || !strings.Contains(err.Error(), "parse config") {
		t.Errorf("expected parse error, got %v", err)
	}
}

// ---- env ----

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	ApplyEnv(cfg, env(map[string]string{
		EnvBroker:   " tcp://broker:1883 ",
		EnvHTTPAddr: ":8080",
	}))
	if cfg.MQTT.Broker != "tcp://broker:1883" {
		t.Errorf("broker: got %q", cfg.MQTT.Broker)
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Errorf("http addr: got %q", cfg.HTTP.Addr)
	}
}

func TestApplyEnv_DatabaseURL(t *testing.T) {
	cfg := Default()
	ApplyEnv(cfg, env(map[string]string{EnvDatabaseURL: " postgres://u:p@db/mama "}))
	if cfg.History.DSN != "postgres://u:p@db/mama" {
		t.Errorf("dsn: got %q", cfg.History.DSN)
	}
	if cfg.History.RetentionDays != 30 {
		t.Errorf("retention: got %d", cfg.History.RetentionDays)
	}
}

func TestApplyEnv_OffDisablesHTTP(t *testing.T) {
	cfg := Default()
	ApplyEnv(cfg, env(map[string]string{EnvHTTPAddr: "off"}))
	if cfg.HTTP.Addr != "" {
		t.Errorf("expected empty http addr, got %q", cfg.HTTP.Addr)
	}
}

func TestApplyEnv_UnsetKeepsValues(t *testing.T) {
	cfg := Default()
	ApplyEnv(cfg, env(nil))
	if *cfg != *Default() {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestPath(t *testing.T) {
	if got := Path(env(map[string]string{EnvConfig: "/etc/mama.yaml"})); got != "/etc/mama.yaml" {
		t.Errorf("got %q", got)
	}
}

func TestLoadDotEnv(t *testing.T) {
	p := writeFile(t, ".env", "MAMA_TEST_DOTENV=from-file\n")
	t.Setenv("MAMA_TEST_PRESET", "kept")
	p2 := writeFile(t, ".env2", "MAMA_TEST_PRESET=overwritten\n")

	if err := LoadDotEnv(p, p2, filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("MAMA_TEST_DOTENV") })

	if got := os.Getenv("MAMA_TEST_DOTENV"); got != "from-file" {
		t.Errorf("got %q", got)
	}
	if got := os.Getenv("MAMA_TEST_PRESET"); got != "kept" {
		t.Errorf("existing variable should win, got %q", got)
	}
}

// ---- validate ----

func TestValidate_DecimalPlaces(t *testing.T) {
	for _, n := range []int{-1, display.MaxDecimalPlaces + 1} {
		cfg := Default()
		cfg.Display.DecimalPlaces = n
		if err := Validate(cfg); err == nil {
			t.Errorf("decimal_places=%d: expected error", n)
		}
	}
	for n := 0; n <= display.MaxDecimalPlaces; n++ {
		cfg := Default()
		cfg.Display.DecimalPlaces = n
		if err := Validate(cfg); err != nil {
			t.Errorf("decimal_places=%d: unexpected error: %v", n, err)
		}
	}
}

func TestValidate_UpdateInterval(t *testing.T) {
	for _, ms := range []int64{0, -1500} {
		cfg := Default()
		cfg.Display.UpdateIntervalMs = ms
		if err := Validate(cfg); err == nil {
			t.Errorf("update_interval_ms=%d: expected error", ms)
		}
	}
}

func TestValidate_Broker(t *testing.T) {
	for _, b := range []string{"", "localhost", "://x"} {
		cfg := Default()
		cfg.MQTT.Broker = b
		if err := Validate(cfg); err == nil {
			t.Errorf("broker=%q: expected error", b)
		}
	}
}

func TestValidate_Negatives(t *testing.T) {
	cfg := Default()
	cfg.MQTT.BufferSize = -1
	if err := Validate(cfg); err == nil {
		t.Error("negative buffer_size: expected error")
	}

	cfg = Default()
	cfg.LED.Pin = -3
	if err := Validate(cfg); err == nil {
		t.Error("negative led pin: expected error")
	}
}

func TestValidate_HistoryRetention(t *testing.T) {
	cfg := Default()
	cfg.History.RetentionDays = 0
	if err := Validate(cfg); err != nil {
		t.Errorf("retention is unused without a dsn: %v", err)
	}
	cfg.History.DSN = "postgres://localhost/mama"
	if err := Validate(cfg); err == nil {
		t.Error("retention_days=0 with a dsn: expected error")
	}
	cfg.History.RetentionDays = 30
	if err := Validate(cfg); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidate_Nil(t *testing.T) {
	if err := Validate(nil); err == nil {
		t.Error("expected error for nil config")
	}
}

func TestValidate_DoesNotMutate(t *testing.T) {
	cfg := Default()
	cfg.MQTT.TopicPrefix = "/mama/"
	before := *cfg
	_ = Validate(cfg)
	if *cfg != before {
		t.Error("Validate mutated config")
	}
}

// ---- normalize ----

func TestNormalize(t *testing.T) {
	cfg := Default()
	cfg.MQTT.TopicPrefix = "/site/mama/"
	cfg.MQTT.ClientID = ""
	Normalize(cfg)
	if cfg.MQTT.TopicPrefix != "site/mama" {
		t.Errorf("prefix: got %q", cfg.MQTT.TopicPrefix)
	}
	if cfg.MQTT.ClientID != "lambda-display" {
		t.Errorf("client id: got %q", cfg.MQTT.ClientID)
	}

	cfg.MQTT.TopicPrefix = "//"
	Normalize(cfg)
	if cfg.MQTT.TopicPrefix != "mama" {
		t.Errorf("empty prefix should fall back, got %q", cfg.MQTT.TopicPrefix)
	}

	Normalize(nil)
}

// ---- save ----

func TestSaveSettings_KeepsOtherKeys(t *testing.T) {
	p := writeFile(t, "config.yaml", `# lambda display
display:
  decimal_places: 2 # places after the point
  update_interval_ms: 1000
mqtt:
  broker: tcp://10.0.0.5:1883
`)
	if err := SaveSettings(p, Settings{DecimalPlaces: 1, Blinking: false}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if cfg.Display.DecimalPlaces != 1 || cfg.Display.Blinking {
		t.Errorf("display: got %+v", cfg.Display)
	}
	if cfg.Display.UpdateIntervalMs != 1000 || cfg.MQTT.Broker != "tcp://10.0.0.5:1883" {
		t.Errorf("other keys lost: %+v", cfg)
	}

	data, _ := os.ReadFile(p)
	if !strings.Contains(string(data), "# lambda display") {
		t.Errorf("comments lost:\n%s", data)
	}
}

func TestSaveSettings_AddsDisplaySection(t *testing.T) {
	p := writeFile(t, "config.yaml", "console: true\n")
	if err := SaveSettings(p, Settings{DecimalPlaces: 3, Blinking: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !cfg.Console || cfg.Display.DecimalPlaces != 3 || !cfg.Display.Blinking {
		t.Errorf("got %+v", cfg)
	}
}

func TestSaveSettings_MissingOrEmptyFile(t *testing.T) {
	for _, create := range []bool{false, true} {
		dir := t.TempDir()
		p := filepath.Join(dir, "config.yaml")
		if create {
			if err := os.WriteFile(p, nil, 0o644); err != nil {
				t.Fatal(err)
			}
		}
		if err := SaveSettings(p, Settings{DecimalPlaces: 0, Blinking: false}); err != nil {
			t.Fatalf("empty file exists=%v: unexpected error: %v", create, err)
		}
		cfg, err := Load(p)
		if err != nil {
			t.Fatalf("reload: %v", err)
		}
		if cfg.Display.DecimalPlaces != 0 || cfg.Display.Blinking {
			t.Errorf("display: got %+v", cfg.Display)
		}
		entries, _ := os.ReadDir(dir)
		if len(entries) != 1 {
			t.Errorf("temporary files left behind: %v", entries)
		}
	}
}

func TestSaveSettings_RejectsNonMapping(t *testing.T) {
	p := writeFile(t, "config.yaml", "- a\n- b\n")
	if err := SaveSettings(p, Settings{}); err == nil {
		t.Error("expected error for a list document")
	}
}
