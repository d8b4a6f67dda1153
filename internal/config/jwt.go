package config

import (
	"errors"
	"time"
)

// ErrAuthDisabled is returned by MetricsAuth when no secret is configured.
var ErrAuthDisabled = errors.New("metrics authentication disabled: JWT_SECRET is not set")

// MetricsAuth is the signing secret and token lifetime for metrics access tokens.
type MetricsAuth struct {
	Secret string
	TTL    time.Duration
}

// NewMetricsAuth builds token settings from a secret and a lifetime in hours.
// Zero hours means DefaultJWTExpirationHours.
func NewMetricsAuth(secret string, hours int) (*MetricsAuth, error) {
	if secret == "" {
		return nil, &ValidationError{Field: "JWT_SECRET", Message: "cannot be empty"}
	}
	if hours == 0 {
		hours = DefaultJWTExpirationHours
	}
	if hours < 1 {
		return nil, &ValidationError{Field: "JWT_EXPIRATION_HOURS", Message: "must be at least 1"}
	}
	return &MetricsAuth{Secret: secret, TTL: time.Duration(hours) * time.Hour}, nil
}

// MetricsAuth returns the metrics token settings, or ErrAuthDisabled when
// JWT_SECRET is unset.
func (c *Config) MetricsAuth() (*MetricsAuth, error) {
	if c.JWTSecret == "" {
		return nil, ErrAuthDisabled
	}
	return NewMetricsAuth(c.JWTSecret, c.JWTExpirationHours)
}
