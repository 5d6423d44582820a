package adminauth

import (
	"context"
	"crypto/subtle"
	"errors"

	"github.com/moviebox/adminauth/internal/stores"
)

// Reissue exchanges a presented access/refresh pair for a brand-new one and
// invalidates the old refresh token.
//
// The checks run fail-fast in a fixed order; each narrows what the next may
// assume:
//
//  1. refresh token signature + expiry
//  2. access token signature + structure — expiry exempt, because the whole
//     point of reissue is to replace an access token that has expired
//  3. subject extraction and account lookup
//  4. currency check against the refresh slot: absent or byte-unequal means
//     the presented refresh token was superseded (or TTL-evicted) — this is
//     the replay detector
//  5. rotation through the issuer, which overwrites the slot
//
// Two legitimate concurrent reissues for the same account race at step 4/5:
// one wins, the other fails with EXPIRED_REFRESH_TOKEN. That is accepted
// behavior — serializing them would blunt replay detection.
func (e *Engine) Reissue(ctx context.Context, accessToken, refreshToken string) (*TokenPair, error) {
	if _, err := e.jwtManager.Parse(refreshToken); err != nil {
		e.metricInc(MetricReissueFailure)
		e.logger.Debug().Err(err).Msg("reissue rejected: refresh token invalid")
		return nil, errInvalidRefreshToken()
	}

	claims, err := e.jwtManager.ParseUnsafeExpiry(accessToken)
	if err != nil {
		e.metricInc(MetricReissueFailure)
		e.logger.Debug().Err(err).Msg("reissue rejected: access token invalid")
		return nil, errInvalidAccessToken()
	}

	accountID, err := claims.AccountID()
	if err != nil {
		e.metricInc(MetricReissueFailure)
		return nil, errInvalidAccessToken()
	}

	if _, err := e.provider.FindByID(ctx, accountID); err != nil {
		e.metricInc(MetricReissueFailure)
		if errors.Is(err, ErrAccountNotFound) {
			return nil, errUserNotFoundByID()
		}
		return nil, errStorageUnavailable(err)
	}

	current, err := e.refreshStore.Get(ctx, accountID)
	switch {
	case errors.Is(err, stores.ErrRefreshAbsent):
		e.metricInc(MetricReissueFailure)
		return nil, errExpiredRefreshToken()
	case err != nil:
		return nil, errStorageUnavailable(err)
	}

	if subtle.ConstantTimeCompare([]byte(current), []byte(refreshToken)) != 1 {
		// Structurally valid refresh token that is not the slot's current
		// value: it was rotated away. Reuse of a consumed token is the
		// theft signal.
		e.metricInc(MetricReissueFailure)
		e.metricInc(MetricReplayDetected)
		e.logger.Warn().Int64("account_id", accountID).Msg("stale refresh token presented")
		return nil, errExpiredRefreshToken()
	}

	pair, err := e.issuePair(ctx, accountID)
	if err != nil {
		return nil, err
	}

	e.metricInc(MetricReissueSuccess)
	e.logger.Info().Int64("account_id", accountID).Msg("token pair rotated")
	return pair, nil
}
