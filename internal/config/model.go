package config

import "github.com/sirupsen/logrus"

type Config struct {
	Responder Responder `yaml:"responder"`
	Store     StoreCfg  `yaml:"store"`
	Redis     Redis     `yaml:"redis"`
	Mongo     Mongo     `yaml:"mongo"`
	Log       Log       `yaml:"log"`
	Metrics   Metrics   `yaml:"metrics"`
}

type Responder struct {
	Name string `yaml:"name"`
	Bind struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
	} `yaml:"bind"`

	// ExternalHost is the host[:port] used to build portal URLs when a
	// request carries no Host header. Auto-detected when empty.
	ExternalHost string `yaml:"external_host"`

	// TrustForwarded trusts the first X-Forwarded-For hop when the
	// responder sits behind a reverse proxy.
	TrustForwarded bool `yaml:"trust_forwarded"`

	// WebRoot holds the portal UI document and static assets.
	WebRoot string `yaml:"web_root"`

	Audit struct {
		Enabled   bool   `yaml:"enabled"`
		SecretRef string `yaml:"secret_ref"`
	} `yaml:"audit"`
}

type StoreCfg struct {
	Backend string `yaml:"backend"` // memory | redis

	// TTLSeconds bounds acceptance lifetime. 0 keeps the original
	// behavior: acceptance never lapses while the process runs.
	TTLSeconds int `yaml:"ttl_seconds"`
}

type Redis struct {
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
	DB      int    `yaml:"db"`
	Prefix  string `yaml:"prefix"`
	AuthRef string `yaml:"auth_ref"`
}

type Mongo struct {
	URI        string `yaml:"uri"`
	DB         string `yaml:"db"`
	Collection string `yaml:"collection"`
}

type Log struct {
	LevelString string `yaml:"level"`

	Level logrus.Level `yaml:"-"`
}

type Metrics struct {
	Enabled bool `yaml:"enabled"`
}
