package config_test

import (
	"testing"
	"time"

	"github.com/lh/pagedeck/internal/config"
)

func TestClipboardConfig_Defaults(t *testing.T) {
	cfg := &config.ClipboardConfig{}

	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	if cfg.HardPageLimit != 200 {
		t.Errorf("HardPageLimit = %d, want 200", cfg.HardPageLimit)
	}
	if cfg.ChunkPageThreshold != 50 {
		t.Errorf("ChunkPageThreshold = %d, want 50", cfg.ChunkPageThreshold)
	}
	if cfg.PayloadTTLDuration() != time.Hour {
		t.Errorf("PayloadTTLDuration() = %v, want 1h", cfg.PayloadTTLDuration())
	}
	if cfg.Mirror != config.MirrorFilesystem {
		t.Errorf("Mirror = %q, want %q", cfg.Mirror, config.MirrorFilesystem)
	}
	if cfg.MirrorKey == "" {
		t.Error("MirrorKey is empty")
	}
}

func TestClipboardConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.ClipboardConfig
		wantErr bool
	}{
		{
			"valid",
			config.ClipboardConfig{HardPageLimit: 100, ChunkPageThreshold: 25, PayloadTTL: "30m", Mirror: config.MirrorRedis},
			false,
		},
		{
			"chunk threshold above hard limit",
			config.ClipboardConfig{HardPageLimit: 10, ChunkPageThreshold: 20, PayloadTTL: "1h"},
			true,
		},
		{
			"invalid ttl",
			config.ClipboardConfig{PayloadTTL: "soon"},
			true,
		},
		{
			"unknown mirror",
			config.ClipboardConfig{Mirror: "carrier-pigeon"},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Finalize()
			if (err != nil) != tt.wantErr {
				t.Errorf("Finalize() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestClipboardConfig_Merge(t *testing.T) {
	base := config.ClipboardConfig{}
	if err := base.Finalize(); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	base.Merge(&config.ClipboardConfig{
		HardPageLimit: 500,
		Mirror:        config.MirrorRedis,
		Redis:         config.RedisConfig{Host: "cache.internal"},
	})

	if base.HardPageLimit != 500 {
		t.Errorf("HardPageLimit = %d, want 500", base.HardPageLimit)
	}
	if base.Mirror != config.MirrorRedis {
		t.Errorf("Mirror = %q, want %q", base.Mirror, config.MirrorRedis)
	}
	if base.Redis.Host != "cache.internal" {
		t.Errorf("Redis.Host = %q, want cache.internal", base.Redis.Host)
	}

	// Untouched fields keep their previous values.
	if base.ChunkPageThreshold != 50 {
		t.Errorf("ChunkPageThreshold = %d, want 50", base.ChunkPageThreshold)
	}
}
