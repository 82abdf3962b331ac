package config

import (
	"testing"
	"time"
)

func TestParse_Defaults(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "token")

	cfg, err := Parse()
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.ProxyHookName != "Tupperhook" {
		t.Errorf("ProxyHookName = %q, want Tupperhook", cfg.ProxyHookName)
	}
	if cfg.CommandPrefix != ";;" {
		t.Errorf("CommandPrefix = %q, want ;;", cfg.CommandPrefix)
	}
	if cfg.EditTimeout != 300*time.Second {
		t.Errorf("EditTimeout = %v, want 300s", cfg.EditTimeout)
	}
	if cfg.ProbeTimeout != 10*time.Second {
		t.Errorf("ProbeTimeout = %v, want 10s", cfg.ProbeTimeout)
	}
	if cfg.RelayHookName != "" {
		t.Errorf("RelayHookName = %q, want empty", cfg.RelayHookName)
	}
	if cfg.HistoryWorkers != 2 || cfg.HistoryAttempts != 2 {
		t.Errorf("history pool = %d workers / %d attempts, want 2/2", cfg.HistoryWorkers, cfg.HistoryAttempts)
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "missing token",
			env:  map[string]string{"DISCORD_TOKEN": ""},
		},
		{
			name: "bad log level",
			env:  map[string]string{"DISCORD_TOKEN": "token", "LOG_LEVEL": "verbose"},
		},
		{
			name: "bad duration",
			env:  map[string]string{"DISCORD_TOKEN": "token", "EDIT_TIMEOUT": "soon"},
		},
		{
			name: "zero workers",
			env:  map[string]string{"DISCORD_TOKEN": "token", "HISTORY_WORKERS": "0"},
		},
		{
			name: "non-numeric bot id",
			env:  map[string]string{"DISCORD_TOKEN": "token", "PROXY_BOT_ID": "tupper"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Parse(); err == nil {
				t.Error("Parse() error = nil, want error")
			}
		})
	}
}

func TestParse_Overrides(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "token")
	t.Setenv("RELAY_HOOK_NAME", "Rollhook")
	t.Setenv("EDIT_TIMEOUT", "2m")
	t.Setenv("METRICS_ADDR", "127.0.0.1:9100")

	cfg, err := Parse()
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.RelayHookName != "Rollhook" {
		t.Errorf("RelayHookName = %q", cfg.RelayHookName)
	}
	if cfg.EditTimeout != 2*time.Minute {
		t.Errorf("EditTimeout = %v, want 2m", cfg.EditTimeout)
	}
	if cfg.MetricsAddr != "127.0.0.1:9100" {
		t.Errorf("MetricsAddr = %q", cfg.MetricsAddr)
	}
}
