package adminauth

import (
	"context"
	"errors"
	"time"
)

// VerifyEmail consumes a verification key. The key is single-use: a second
// verification of the same account is rejected, never treated as an
// idempotent success, and the verified flag never reverts once set.
func (e *Engine) VerifyEmail(ctx context.Context, key string) error {
	if key == "" {
		return errEmailAuthKeyInvalid()
	}

	account, err := e.provider.FindByAuthKey(ctx, key)
	switch {
	case errors.Is(err, ErrAccountNotFound):
		e.metricInc(MetricVerificationFailure)
		return errEmailAuthKeyInvalid()
	case err != nil:
		return errStorageUnavailable(err)
	}

	if account.EmailVerified {
		e.metricInc(MetricVerificationFailure)
		return errAlreadyCompleteAuthentication()
	}

	// The provider applies the flag, timestamp, and already-verified check
	// as one unit, so of two racing verifications exactly one succeeds.
	err = e.provider.MarkEmailVerified(ctx, account.ID, time.Now())
	switch {
	case errors.Is(err, ErrAlreadyVerified):
		e.metricInc(MetricVerificationFailure)
		return errAlreadyCompleteAuthentication()
	case err != nil:
		return errStorageUnavailable(err)
	}

	e.metricInc(MetricVerificationSuccess)
	e.logger.Info().Int64("account_id", account.ID).Msg("email verified")
	return nil
}
