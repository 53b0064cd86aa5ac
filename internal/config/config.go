package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.postProcess(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a runnable configuration for deployments without a
// config file.
func Default() *Config {
	var cfg Config
	_ = cfg.postProcess()
	return &cfg
}

func (cfg *Config) postProcess() error {
	if cfg.Responder.Name == "" {
		cfg.Responder.Name = "captive-responder"
	}
	if cfg.Responder.Bind.Host == "" {
		cfg.Responder.Bind.Host = "0.0.0.0"
	}
	if cfg.Responder.Bind.Port == 0 {
		cfg.Responder.Bind.Port = 8000
	}
	if cfg.Responder.WebRoot == "" {
		cfg.Responder.WebRoot = "./web"
	}
	if cfg.Responder.ExternalHost == "" {
		cfg.Responder.ExternalHost = fmt.Sprintf("%s:%d", outboundIPv4(), cfg.Responder.Bind.Port)
	}
	if cfg.Store.Backend == "" {
		cfg.Store.Backend = "memory"
	}
	if cfg.Store.Backend != "memory" && cfg.Store.Backend != "redis" {
		return fmt.Errorf("store.backend must be memory or redis, got %q", cfg.Store.Backend)
	}
	if cfg.Redis.Prefix == "" {
		cfg.Redis.Prefix = "accept:"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Mongo.DB == "" {
		cfg.Mongo.DB = "captive"
	}
	if cfg.Mongo.Collection == "" {
		cfg.Mongo.Collection = "portal_requests"
	}

	if cfg.Log.LevelString == "" {
		cfg.Log.LevelString = "info"
	}
	level, err := logrus.ParseLevel(cfg.Log.LevelString)
	if err != nil {
		return fmt.Errorf("unable to parse log level: %w", err)
	}
	cfg.Log.Level = level

	return nil
}

// ResolveSecret resolves "env:NAME" references to their value; anything
// else is returned as-is.
func ResolveSecret(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", errors.New("empty secret_ref")
	}
	if strings.HasPrefix(ref, "env:") {
		key := strings.TrimPrefix(ref, "env:")
		v := os.Getenv(key)
		if v == "" {
			return "", fmt.Errorf("env %s is empty", key)
		}
		return v, nil
	}
	// future extension: file:/path, vault:...
	return ref, nil
}

// outboundIPv4 finds the server's first non-loopback IPv4 address, used
// as the portal URL host for clients that omit the Host header.
func outboundIPv4() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "127.0.0.1"
	}
	for _, a := range addrs {
		ipnet, ok := a.(*net.IPNet)
		if !ok || ipnet.IP.IsLoopback() {
			continue
		}
		if v4 := ipnet.IP.To4(); v4 != nil {
			return v4.String()
		}
	}
	return "127.0.0.1"
}
