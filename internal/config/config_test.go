package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := load(viper.New())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.PollInterval != 10*time.Minute {
		t.Fatalf("unexpected poll interval %v", cfg.PollInterval)
	}
	if cfg.ReplyDelay != 3*time.Second {
		t.Fatalf("unexpected reply delay %v", cfg.ReplyDelay)
	}
	if cfg.PullCount != 20 || cfg.IdealBufferLen != 100 {
		t.Fatalf("unexpected buffer settings pull=%d ideal=%d", cfg.PullCount, cfg.IdealBufferLen)
	}
	if cfg.LedgerType != "file" {
		t.Fatalf("unexpected ledger type %q", cfg.LedgerType)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]any{
		"poll_interval":    0,
		"page_timeout":     -1,
		"reply_delay_ms":   -5,
		"poll_jitter":      1.5,
		"pull_count":       0,
		"ideal_buffer_len": -1,
	}
	for key, val := range cases {
		v := viper.New()
		v.Set(key, val)
		if _, err := load(v); err == nil {
			t.Fatalf("expected error for %s=%v", key, val)
		}
	}
}

func TestRedactedHidesPassword(t *testing.T) {
	cfg := Config{SiteUsername: "me", SitePassword: "secret"}
	red := cfg.Redacted()
	if red.SitePassword == "secret" {
		t.Fatalf("password not redacted")
	}
	if cfg.SitePassword != "secret" {
		t.Fatalf("original config mutated")
	}
}
