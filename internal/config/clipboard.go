package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Environment variable names for clipboard configuration.
const (
	EnvClipboardMirror     = "CLIPBOARD_MIRROR"
	EnvClipboardPayloadTTL = "CLIPBOARD_PAYLOAD_TTL"
	EnvClipboardRedisHost  = "CLIPBOARD_REDIS_HOST"
	EnvClipboardRedisPort  = "CLIPBOARD_REDIS_PORT"
)

// Mirror backend names for the system-level shared clipboard.
const (
	MirrorFilesystem = "filesystem"
	MirrorRedis      = "redis"
)

// ClipboardConfig contains page transfer station configuration. The hard page
// limit, chunk threshold, and payload TTL are deliberately configuration
// rather than fixed behavior.
type ClipboardConfig struct {
	// HardPageLimit is the maximum page count accepted into a single payload.
	HardPageLimit int `toml:"hard_page_limit"`

	// ChunkPageThreshold is the page count above which payload encoding is
	// performed in bounded chunks. Output is byte-identical either way.
	ChunkPageThreshold int `toml:"chunk_page_threshold"`

	// PayloadTTL is the duration after which a stored payload reads as absent.
	PayloadTTL string `toml:"payload_ttl"`

	// Mirror selects the shared store backend: "filesystem" or "redis".
	Mirror string `toml:"mirror"`

	// MirrorKey is the storage key / redis key the serialized payload is
	// mirrored under.
	MirrorKey string `toml:"mirror_key"`

	Redis RedisConfig `toml:"redis"`
}

// RedisConfig contains connection settings for the redis clipboard mirror.
type RedisConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// Addr returns the redis address in host:port form.
func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// PayloadTTLDuration parses and returns the payload TTL as a time.Duration.
func (c *ClipboardConfig) PayloadTTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.PayloadTTL)
	return d
}

// Finalize applies defaults, loads environment overrides, and validates the configuration.
func (c *ClipboardConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge applies values from overlay configuration that differ from zero values.
func (c *ClipboardConfig) Merge(overlay *ClipboardConfig) {
	if overlay.HardPageLimit != 0 {
		c.HardPageLimit = overlay.HardPageLimit
	}
	if overlay.ChunkPageThreshold != 0 {
		c.ChunkPageThreshold = overlay.ChunkPageThreshold
	}
	if overlay.PayloadTTL != "" {
		c.PayloadTTL = overlay.PayloadTTL
	}
	if overlay.Mirror != "" {
		c.Mirror = overlay.Mirror
	}
	if overlay.MirrorKey != "" {
		c.MirrorKey = overlay.MirrorKey
	}
	if overlay.Redis.Host != "" {
		c.Redis.Host = overlay.Redis.Host
	}
	if overlay.Redis.Port != 0 {
		c.Redis.Port = overlay.Redis.Port
	}
	if overlay.Redis.Username != "" {
		c.Redis.Username = overlay.Redis.Username
	}
	if overlay.Redis.Password != "" {
		c.Redis.Password = overlay.Redis.Password
	}
	if overlay.Redis.DB != 0 {
		c.Redis.DB = overlay.Redis.DB
	}
}

func (c *ClipboardConfig) loadDefaults() {
	if c.HardPageLimit == 0 {
		c.HardPageLimit = 200
	}
	if c.ChunkPageThreshold == 0 {
		c.ChunkPageThreshold = 50
	}
	if c.PayloadTTL == "" {
		c.PayloadTTL = "1h"
	}
	if c.Mirror == "" {
		c.Mirror = MirrorFilesystem
	}
	if c.MirrorKey == "" {
		c.MirrorKey = "clipboard/payload"
	}
	if c.Redis.Host == "" {
		c.Redis.Host = "localhost"
	}
	if c.Redis.Port == 0 {
		c.Redis.Port = 6379
	}
}

func (c *ClipboardConfig) loadEnv() {
	if v := os.Getenv(EnvClipboardMirror); v != "" {
		c.Mirror = v
	}
	if v := os.Getenv(EnvClipboardPayloadTTL); v != "" {
		c.PayloadTTL = v
	}
	if v := os.Getenv(EnvClipboardRedisHost); v != "" {
		c.Redis.Host = v
	}
	if v := os.Getenv(EnvClipboardRedisPort); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Redis.Port = port
		}
	}
}

func (c *ClipboardConfig) validate() error {
	if c.HardPageLimit < 1 {
		return fmt.Errorf("hard_page_limit must be positive")
	}
	if c.ChunkPageThreshold < 1 {
		return fmt.Errorf("chunk_page_threshold must be positive")
	}
	if c.ChunkPageThreshold > c.HardPageLimit {
		return fmt.Errorf("chunk_page_threshold (%d) exceeds hard_page_limit (%d)", c.ChunkPageThreshold, c.HardPageLimit)
	}
	if d, err := time.ParseDuration(c.PayloadTTL); err != nil || d <= 0 {
		return fmt.Errorf("invalid payload_ttl: %s", c.PayloadTTL)
	}
	switch c.Mirror {
	case MirrorFilesystem, MirrorRedis:
	default:
		return fmt.Errorf("invalid mirror: %s (must be filesystem or redis)", c.Mirror)
	}
	return nil
}
