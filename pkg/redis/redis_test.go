package redis

import (
	"context"
	"testing"
	"time"

	"github.com/wonny/analyst/pkg/config"
)

func TestNewClient_Disabled(t *testing.T) {
	cfg := &config.Config{
		Redis: config.RedisConfig{
			Enabled: false,
		},
	}

	client, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if client.Enabled() {
		t.Error("Expected client to be disabled")
	}
}

func TestDisabledHelpersAreNoOps(t *testing.T) {
	client, _ := New(context.Background(), &config.Config{})
	ctx := context.Background()

	created, err := client.SetOnce(ctx, Key("timegate", "2024-01-02", "nightly_review"), time.Hour)
	if err != nil {
		t.Fatalf("SetOnce() error = %v", err)
	}
	if created {
		t.Error("Expected SetOnce to report false when Redis disabled")
	}

	exists, err := client.Exists(ctx, "whatever")
	if err != nil {
		t.Fatalf("Exists() error = %v", err)
	}
	if exists {
		t.Error("Expected Exists to report false when Redis disabled")
	}

	if err := client.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestKey(t *testing.T) {
	tests := []struct {
		name     string
		parts    []string
		expected string
	}{
		{"single", []string{"health"}, "analyst:health"},
		{"timegate", []string{"timegate", "2024-01-02", "morning_scan"}, "analyst:timegate:2024-01-02:morning_scan"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Key(tt.parts...); got != tt.expected {
				t.Errorf("got %q, want %q", got, tt.expected)
			}
		})
	}
}
