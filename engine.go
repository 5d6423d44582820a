package adminauth

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/moviebox/adminauth/internal/stores"
	"github.com/moviebox/adminauth/jwt"
	"github.com/moviebox/adminauth/password"
)

// Engine orchestrates the account and token flows. Construct it through
// [Builder.Build]; a built Engine is immutable and safe for concurrent use.
type Engine struct {
	config       Config
	logger       zerolog.Logger
	provider     AccountProvider
	hasher       password.Hasher
	mailer       MailSender
	jwtManager   *jwt.Manager
	refreshStore *stores.RefreshTokenStore
	metrics      *Metrics
}

// MetricsSnapshot returns a copy of the engine's counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	e.metrics.Inc(id)
}

// issuePair is the token issuer: it mints the access/refresh pair and
// persists the refresh half. Rotation and login both come through here, so
// the refresh slot has a single writer.
func (e *Engine) issuePair(ctx context.Context, accountID int64) (*TokenPair, error) {
	access, err := e.jwtManager.CreateAccess(accountID)
	if err != nil {
		return nil, errStorageUnavailable(err)
	}
	refresh, err := e.jwtManager.CreateRefresh()
	if err != nil {
		return nil, errStorageUnavailable(err)
	}

	if err := e.refreshStore.Put(ctx, accountID, refresh, e.config.JWT.RefreshTTL); err != nil {
		e.logger.Error().Err(err).Int64("account_id", accountID).Msg("refresh slot write failed")
		return nil, errStorageUnavailable(err)
	}

	return &TokenPair{
		TokenType:    "Bearer",
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}
