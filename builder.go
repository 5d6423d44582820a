package adminauth

import (
	"errors"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/moviebox/adminauth/internal/stores"
	"github.com/moviebox/adminauth/jwt"
	"github.com/moviebox/adminauth/password"
)

// Builder assembles an [Engine]. Construction is allocation-only; no I/O
// happens until the engine's methods are called.
type Builder struct {
	config   Config
	redis    redis.UniversalClient
	provider AccountProvider
	mailer   MailSender
	hasher   password.Hasher
	logger   *zerolog.Logger

	built bool
}

// New returns a Builder preloaded with [DefaultConfig].
func New() *Builder {
	return &Builder{config: DefaultConfig()}
}

// WithConfig replaces the builder's configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis sets the client backing the refresh-token slot.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithAccountProvider sets the credential store adapter.
func (b *Builder) WithAccountProvider(p AccountProvider) *Builder {
	b.provider = p
	return b
}

// WithMailSender sets the outbound mail transport.
func (b *Builder) WithMailSender(m MailSender) *Builder {
	b.mailer = m
	return b
}

// WithHasher overrides the password hasher. Defaults to bcrypt at the
// library's default cost.
func (b *Builder) WithHasher(h password.Hasher) *Builder {
	b.hasher = h
	return b
}

// WithLogger sets the engine logger. Defaults to a no-op logger.
func (b *Builder) WithLogger(l zerolog.Logger) *Builder {
	b.logger = &l
	return b
}

// Build validates the configuration and wires the engine. A builder can be
// used once.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if b.redis == nil {
		return nil, errors.New("redis client required")
	}
	if b.provider == nil {
		return nil, errors.New("account provider required")
	}
	if b.mailer == nil {
		return nil, errors.New("mail sender required")
	}

	hasher := b.hasher
	if hasher == nil {
		bc, err := password.NewBcrypt(0)
		if err != nil {
			return nil, err
		}
		hasher = bc
	}

	logger := zerolog.Nop()
	if b.logger != nil {
		logger = *b.logger
	}

	jm, err := jwt.NewManager(jwt.Config{
		Secret:     cloneBytes(cfg.JWT.Secret),
		AccessTTL:  cfg.JWT.AccessTTL,
		RefreshTTL: cfg.JWT.RefreshTTL,
	})
	if err != nil {
		return nil, err
	}

	engine := &Engine{
		config:       cfg,
		logger:       logger,
		provider:     b.provider,
		hasher:       hasher,
		mailer:       b.mailer,
		jwtManager:   jm,
		refreshStore: stores.NewRefreshTokenStore(b.redis, cfg.Redis.KeyPrefix, cfg.Redis.OpTimeout),
		metrics:      newMetrics(cfg.Metrics),
	}

	b.built = true
	return engine, nil
}
