package config

import (
	"fmt"
	"time"
)

// File represents the structure of the .philowalk configuration file.
// Every field is optional; unset fields leave the current value alone.
type File struct {
	// Samples is the number of counted runs per session.
	Samples *int `yaml:"samples,omitempty"`

	// Workers is the number of concurrent runs.
	Workers *int `yaml:"workers,omitempty"`

	// Timeout is a Go duration string such as "5s".
	Timeout string `yaml:"timeout,omitempty"`

	// Retries is the number of retries after a failed fetch.
	Retries *int `yaml:"retries,omitempty"`

	// Delay is a Go duration string such as "1s".
	Delay string `yaml:"delay,omitempty"`

	// MaxDiscards is the consecutive discard bound.
	MaxDiscards *int `yaml:"maxDiscards,omitempty"`

	// SeedURL is the random-article entry point.
	SeedURL string `yaml:"seedURL,omitempty"`

	// TargetURL is the article walks try to reach.
	TargetURL string `yaml:"targetURL,omitempty"`

	// UserAgent is the User-Agent header.
	UserAgent string `yaml:"userAgent,omitempty"`

	// MaxBodySize is the response body limit in bytes.
	MaxBodySize *int64 `yaml:"maxBodySize,omitempty"`

	// Proxy is an optional SOCKS5 proxy address ("host:port").
	Proxy string `yaml:"proxy,omitempty"`

	// DBDir is the session history directory.
	DBDir string `yaml:"dbDir,omitempty"`

	// Save controls whether sessions are written to the history database.
	Save *bool `yaml:"save,omitempty"`
}

// Apply copies every set field of the file onto cfg.
// It returns an error if a duration cannot be parsed.
func (f *File) Apply(cfg *Config) error {
	if f.Samples != nil {
		cfg.Samples = *f.Samples
	}
	if f.Workers != nil {
		cfg.Workers = *f.Workers
	}
	if f.Timeout != "" {
		d, err := time.ParseDuration(f.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout %q in config file: %w", f.Timeout, err)
		}
		cfg.Timeout = d
	}
	if f.Retries != nil {
		cfg.MaxRetries = *f.Retries
	}
	if f.Delay != "" {
		d, err := time.ParseDuration(f.Delay)
		if err != nil {
			return fmt.Errorf("invalid delay %q in config file: %w", f.Delay, err)
		}
		cfg.Delay = d
	}
	if f.MaxDiscards != nil {
		cfg.MaxConsecutiveDiscards = *f.MaxDiscards
	}
	if f.SeedURL != "" {
		cfg.SeedURL = f.SeedURL
	}
	if f.TargetURL != "" {
		cfg.TargetURL = f.TargetURL
	}
	if f.UserAgent != "" {
		cfg.UserAgent = f.UserAgent
	}
	if f.MaxBodySize != nil {
		cfg.MaxBodySize = *f.MaxBodySize
	}
	if f.Proxy != "" {
		cfg.ProxyAddress = f.Proxy
	}
	if f.DBDir != "" {
		cfg.DBDir = f.DBDir
	}
	if f.Save != nil {
		cfg.SaveToDB = *f.Save
	}
	return nil
}
