package adminauth

import (
	"context"
	"errors"
)

// Login checks credentials and issues a fresh token pair. An unverified
// account is rejected before the password is checked; a wrong password is
// reported with the same not-found kind as an unknown email so callers
// cannot probe which of the two failed.
func (e *Engine) Login(ctx context.Context, email, plainPassword string) (*TokenPair, error) {
	account, err := e.provider.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, ErrAccountNotFound):
		e.metricInc(MetricLoginFailure)
		return nil, errUserNotFoundByEmail()
	case err != nil:
		return nil, errStorageUnavailable(err)
	}

	if !account.EmailVerified {
		e.metricInc(MetricLoginFailure)
		return nil, errEmailNotVerifiedYet()
	}

	if !e.hasher.Verify(plainPassword, account.PasswordHash) {
		e.metricInc(MetricLoginFailure)
		e.logger.Debug().Int64("account_id", account.ID).Msg("login rejected: password mismatch")
		return nil, errUserNotFoundByPassword()
	}

	pair, err := e.issuePair(ctx, account.ID)
	if err != nil {
		return nil, err
	}

	e.metricInc(MetricLoginSuccess)
	e.logger.Info().Int64("account_id", account.ID).Msg("login succeeded")
	return pair, nil
}
