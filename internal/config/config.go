package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const (
	DefaultMayaHost = "127.0.0.1"
	DefaultMayaPort = 7821
)

// MayaConfig describes how the daemon reaches the listener script inside a
// running Maya session.
type MayaConfig struct {
	Host           string
	Port           int
	ConnectTimeout time.Duration
	RequestTimeout time.Duration
	// SettleDelay adds fixed pacing after every settle barrier for hosts
	// whose viewport refresh is not synchronous. Zero means barrier only.
	SettleDelay time.Duration
	// DryRun swaps the live session for the in-memory scene.
	DryRun bool
}

type Config struct {
	HomeDir        string
	InstanceID     string
	InstanceDir    string
	SocketPath     string
	PIDFilePath    string
	LockFilePath   string
	LogLevel       string
	LogFormat      string
	MaxConnections int
	Maya           MayaConfig
}

func Load() (*Config, error) {
	return LoadWithInstance("")
}

// LoadWithInstance resolves defaults, applies MAYARIG_* environment
// overrides, and roots all runtime files under the per-instance directory.
func LoadWithInstance(instanceID string) (*Config, error) {
	homeDir := os.Getenv("MAYARIG_HOME")
	if homeDir == "" {
		userHome, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		homeDir = filepath.Join(userHome, ".mayarig")
	}

	instanceDir := homeDir
	if instanceID != "" {
		instanceDir = filepath.Join(homeDir, "instances", instanceID)
	}

	cfg := &Config{
		HomeDir:        homeDir,
		InstanceID:     instanceID,
		InstanceDir:    instanceDir,
		SocketPath:     filepath.Join(instanceDir, "daemon.sock"),
		PIDFilePath:    filepath.Join(instanceDir, "daemon.pid"),
		LockFilePath:   filepath.Join(instanceDir, "daemon.lock"),
		LogLevel:       envString("MAYARIG_LOG_LEVEL", "info"),
		LogFormat:      envString("MAYARIG_LOG_FORMAT", "text"),
		MaxConnections: envInt("MAYARIG_MAX_CONNECTIONS", 16),
		Maya: MayaConfig{
			Host:           envString("MAYARIG_MAYA_HOST", DefaultMayaHost),
			Port:           envInt("MAYARIG_MAYA_PORT", DefaultMayaPort),
			ConnectTimeout: envDuration("MAYARIG_MAYA_CONNECT_TIMEOUT", 5*time.Second),
			RequestTimeout: envDuration("MAYARIG_MAYA_REQUEST_TIMEOUT", 30*time.Second),
			SettleDelay:    envDuration("MAYARIG_SETTLE_DELAY", 0),
			DryRun:         envBool("MAYARIG_DRY_RUN", false),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Maya.Port < 1 || c.Maya.Port > 65535 {
		return fmt.Errorf("maya port %d out of range", c.Maya.Port)
	}
	if c.MaxConnections < 1 {
		return fmt.Errorf("max connections must be positive, got %d", c.MaxConnections)
	}
	if c.Maya.SettleDelay < 0 {
		return fmt.Errorf("settle delay must not be negative, got %v", c.Maya.SettleDelay)
	}
	if c.Maya.ConnectTimeout <= 0 || c.Maya.RequestTimeout <= 0 {
		return fmt.Errorf("maya timeouts must be positive")
	}
	return nil
}

func (c *Config) EnsureDirectories() error {
	return os.MkdirAll(c.InstanceDir, 0700)
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
