package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func TestCustomFormatter(t *testing.T) {
	at := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)

	tests := []struct {
		name string
		data logrus.Fields
		want string
	}{
		{
			name: "with module",
			data: logrus.Fields{"module": "Relay"},
			want: "2024-03-09 14:05:07 (info) [Relay]: hello\n",
		},
		{
			name: "without module",
			data: logrus.Fields{},
			want: "2024-03-09 14:05:07 (info) [Система]: hello\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := &logrus.Entry{Time: at, Level: logrus.InfoLevel, Message: "hello", Data: tt.data}
			got, err := (&CustomFormatter{}).Format(entry)
			if err != nil {
				t.Fatalf("Format() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("Format() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSetLevel(t *testing.T) {
	defer SetLevel("info")

	tests := map[string]logrus.Level{
		"debug":   logrus.DebugLevel,
		"WARN":    logrus.WarnLevel,
		"error":   logrus.ErrorLevel,
		"info":    logrus.InfoLevel,
		"unknown": logrus.InfoLevel,
	}
	for name, want := range tests {
		SetLevel(name)
		if got := log.GetLevel(); got != want {
			t.Errorf("SetLevel(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestSetupLoggerCreatesDailyFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	defer log.SetOutput(os.Stderr)
	defer SetLevel("info")

	SetupLogger(dir, "debug")
	Log("Test", logrus.InfoLevel, "запись")

	data, err := os.ReadFile(filepath.Join(dir, "log-"+time.Now().Format("2006-01-02")+".log"))
	if err != nil {
		t.Fatalf("daily log file: %v", err)
	}
	if !strings.Contains(string(data), "[Test]: запись") {
		t.Errorf("log file = %q, want entry for module Test", data)
	}
}

func TestReconfigure(t *testing.T) {
	first := t.TempDir()
	second := filepath.Join(t.TempDir(), "moved")
	defer log.SetOutput(os.Stderr)
	defer SetLevel("info")
	daily := "log-" + time.Now().Format("2006-01-02") + ".log"

	SetupLogger(first, "info")
	Log("Система", logrus.WarnLevel, "до конфигурации")

	Reconfigure(first, "debug")
	if got := log.GetLevel(); got != logrus.DebugLevel {
		t.Errorf("level = %v, want debug", got)
	}
	if logDirInUse != first {
		t.Errorf("log dir = %q, want %q kept", logDirInUse, first)
	}

	Reconfigure(second, "warn")
	Log("Система", logrus.WarnLevel, "после конфигурации")

	before, err := os.ReadFile(filepath.Join(first, daily))
	if err != nil {
		t.Fatalf("first log file: %v", err)
	}
	if !strings.Contains(string(before), "[Система]: до конфигурации") {
		t.Errorf("first log file = %q, want the early entry formatted", before)
	}
	after, err := os.ReadFile(filepath.Join(second, daily))
	if err != nil {
		t.Fatalf("second log file: %v", err)
	}
	if !strings.Contains(string(after), "после конфигурации") || log.GetLevel() != logrus.WarnLevel {
		t.Errorf("second log file = %q, level = %v", after, log.GetLevel())
	}
}
