package adminauth

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/google/uuid"
)

var emailPattern = regexp.MustCompile(`^[_a-z0-9-]+(\.[_a-z0-9-]+)*@(\w+\.)+\w+$`)

// Register creates an unverified admin account and triggers the
// verification mail. The email-format check runs before the uniqueness
// check, so a malformed address never causes a store round-trip.
//
// Mail delivery is best-effort: a failed send is logged and counted but does
// not roll back the created account, so the caller can offer a resend path.
func (e *Engine) Register(ctx context.Context, email, plainPassword string) (int64, error) {
	if !emailPattern.MatchString(email) {
		return 0, errEmailFormatInvalid(email)
	}
	if plainPassword == "" {
		return 0, newError(KindInvalidInput, CodeInvalidInput, "password is required")
	}

	_, err := e.provider.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return 0, errEmailAlreadyExist()
	case !errors.Is(err, ErrAccountNotFound):
		return 0, errStorageUnavailable(err)
	}

	hash, err := e.hasher.Hash(plainPassword)
	if err != nil {
		return 0, errStorageUnavailable(err)
	}

	account, err := e.provider.Create(ctx, CreateAccountInput{
		Email:        email,
		PasswordHash: hash,
		Role:         RoleAdmin,
		EmailAuthKey: uuid.NewString(),
	})
	switch {
	case errors.Is(err, ErrDuplicateEmail):
		// Lost the race against a concurrent registration between the
		// existence check and the insert.
		return 0, errEmailAlreadyExist()
	case err != nil:
		return 0, errStorageUnavailable(err)
	}

	e.sendVerificationMail(ctx, account)

	e.metricInc(MetricRegisterSuccess)
	e.logger.Info().Int64("account_id", account.ID).Msg("admin account registered")
	return account.ID, nil
}

func (e *Engine) sendVerificationMail(ctx context.Context, account *Account) {
	link := fmt.Sprintf("%s/api/admin/email-auth?key=%s", e.config.Verification.LinkBase, account.EmailAuthKey)
	body := "<p>Welcome to the moviebox admin program.</p>" +
		"<p>Click the button below to verify your email address.</p>" +
		"<div><a href='" + link + "'>Verify</a></div>"

	if err := e.mailer.Send(ctx, account.Email, e.config.Verification.MailSubject, body); err != nil {
		e.metricInc(MetricMailFailure)
		e.logger.Warn().Err(err).Int64("account_id", account.ID).Msg("verification mail failed to send")
	}
}
