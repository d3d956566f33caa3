package jwtkit

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/cybergodev/jwtkit/internal/core"
)

const (
	minMaxTokenSize = 64
	maxMaxTokenSize = 1 << 20
)

// Config represents Factory configuration
type Config struct {
	// SigningKeyFile is read at construction when set: an HMAC secret or a PEM RSA private key
	SigningKeyFile string `yaml:"signing_key_file" json:"signing_key_file" mapstructure:"signing_key_file"`

	// VerificationKeyFile is read at construction when set: an HMAC secret or a PEM RSA public key
	VerificationKeyFile string `yaml:"verification_key_file" json:"verification_key_file" mapstructure:"verification_key_file"`

	// AllowedAlgorithms restricts accepted alg values; empty accepts every supported algorithm
	AllowedAlgorithms []string `yaml:"allowed_algorithms" json:"allowed_algorithms" mapstructure:"allowed_algorithms"`

	// MaxTokenSize bounds the compact form in characters; zero uses the default
	MaxTokenSize int `yaml:"max_token_size" json:"max_token_size" mapstructure:"max_token_size"`

	// WarnWeakKeys logs a warning when a short or low-entropy HMAC secret is installed
	WarnWeakKeys bool `yaml:"warn_weak_keys" json:"warn_weak_keys" mapstructure:"warn_weak_keys"`

	// LogLevel of the default logger (logrus level names); ignored when WithLogger is used
	LogLevel string `yaml:"log_level" json:"log_level" mapstructure:"log_level"`
}

// DefaultConfig returns a configuration accepting every supported algorithm
func DefaultConfig() Config {
	return Config{
		AllowedAlgorithms: SupportedAlgorithms(),
		MaxTokenSize:      core.DefaultMaxTokenSize,
		WarnWeakKeys:      true,
		LogLevel:          logrus.WarnLevel.String(),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	if c == nil {
		return ErrInvalidConfig
	}

	for _, alg := range c.AllowedAlgorithms {
		if !IsSupportedAlgorithm(alg) {
			return fmt.Errorf("%w: unsupported algorithm %q in allowed_algorithms", ErrInvalidConfig, alg)
		}
	}

	if c.MaxTokenSize != 0 && (c.MaxTokenSize < minMaxTokenSize || c.MaxTokenSize > maxMaxTokenSize) {
		return fmt.Errorf("%w: max_token_size must be between %d and %d, got %d",
			ErrInvalidConfig, minMaxTokenSize, maxMaxTokenSize, c.MaxTokenSize)
	}

	if c.LogLevel != "" {
		if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	}

	return nil
}

func (c *Config) maxTokenSize() int {
	if c.MaxTokenSize == 0 {
		return core.DefaultMaxTokenSize
	}
	return c.MaxTokenSize
}
