package adminauth

import (
	"errors"
	"time"
)

// Config carries every tunable of the engine. It is copied at Build time;
// later mutation of the caller's value has no effect on a built [Engine].
type Config struct {
	JWT          JWTConfig
	Redis        RedisConfig
	Verification VerificationConfig
	Metrics      MetricsConfig
}

// JWTConfig configures the token codec. Secret is the raw HMAC key shared by
// access and refresh tokens; it is injected here rather than read from any
// process-wide state so tests can run multiple independently keyed engines.
type JWTConfig struct {
	Secret     []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// RedisConfig configures the refresh-token slot.
type RedisConfig struct {
	// KeyPrefix namespaces slot keys, "<prefix>:<accountID>".
	KeyPrefix string
	// OpTimeout bounds each Redis round-trip. Expiry of this deadline is an
	// infrastructure failure, never a token-validity verdict.
	OpTimeout time.Duration
}

// VerificationConfig configures the registration mail.
type VerificationConfig struct {
	// LinkBase is the externally reachable server origin embedded in the
	// verification link, e.g. "https://moviebox.example.com".
	LinkBase string
	// MailSubject is the subject line of the verification mail.
	MailSubject string
}

// MetricsConfig toggles the in-process counters.
type MetricsConfig struct {
	Enabled bool
}

const (
	defaultAccessTTL  = 30 * time.Minute
	defaultRefreshTTL = 30 * 24 * time.Hour
	defaultOpTimeout  = 3 * time.Second
	minSecretLen      = 32
)

// DefaultConfig returns the design defaults: 30 minute access tokens,
// 30 day refresh tokens. The secret has no default and must be set.
func DefaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			AccessTTL:  defaultAccessTTL,
			RefreshTTL: defaultRefreshTTL,
		},
		Redis: RedisConfig{
			KeyPrefix: "RT",
			OpTimeout: defaultOpTimeout,
		},
		Verification: VerificationConfig{
			MailSubject: "moviebox email verification",
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Validate reports the first configuration problem, or nil.
func (c Config) Validate() error {
	if len(c.JWT.Secret) < minSecretLen {
		return errors.New("jwt secret must be at least 32 bytes")
	}
	if c.JWT.AccessTTL <= 0 {
		return errors.New("access TTL must be positive")
	}
	if c.JWT.RefreshTTL <= 0 {
		return errors.New("refresh TTL must be positive")
	}
	if c.JWT.RefreshTTL <= c.JWT.AccessTTL {
		return errors.New("refresh TTL must exceed access TTL")
	}
	if c.Redis.KeyPrefix == "" {
		return errors.New("redis key prefix must not be empty")
	}
	if c.Redis.OpTimeout <= 0 {
		return errors.New("redis op timeout must be positive")
	}
	if c.Verification.LinkBase == "" {
		return errors.New("verification link base must be set")
	}
	return nil
}

func cloneConfig(c Config) Config {
	out := c
	out.JWT.Secret = cloneBytes(c.JWT.Secret)
	return out
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
