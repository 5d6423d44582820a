package adminauth

import (
	"context"
	"errors"
	"time"
)

// Role is the binary role tag attached to an account.
type Role string

const (
	// RoleAdmin is assigned to accounts created through Register.
	RoleAdmin Role = "ADMIN"
	// RoleUser is reserved for non-admin accounts managed elsewhere.
	RoleUser Role = "USER"
)

// Account is the identity record managed through an [AccountProvider]. The
// password hash never crosses the provider boundary in API responses; it is
// consumed only by the engine's credential check.
type Account struct {
	ID              int64
	Email           string
	PasswordHash    string
	Role            Role
	EmailVerified   bool
	EmailAuthKey    string
	EmailVerifiedAt *time.Time
	CreatedAt       time.Time
}

// TokenPair is the result of issuance and reissuance. TokenType is always
// "Bearer".
type TokenPair struct {
	TokenType    string `json:"token_type"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// CreateAccountInput is the record handed to [AccountProvider.Create]. The
// engine fills every field; providers assign the ID.
type CreateAccountInput struct {
	Email        string
	PasswordHash string
	Role         Role
	EmailAuthKey string
}

// Sentinel errors that [AccountProvider] implementations must return so the
// engine can distinguish misses and conflicts from infrastructure failures.
var (
	// ErrAccountNotFound is returned by the Find methods on a miss.
	ErrAccountNotFound = errors.New("account not found")
	// ErrDuplicateEmail is returned by Create when the email is taken.
	ErrDuplicateEmail = errors.New("duplicate email")
	// ErrAlreadyVerified is returned by MarkEmailVerified when the account's
	// verification flag is already set.
	ErrAlreadyVerified = errors.New("account already verified")
)

// AccountProvider is the credential-store contract callers implement to
// integrate adminauth with their database. pgstore ships the PostgreSQL
// implementation; tests use an in-memory one.
//
// MarkEmailVerified must apply the read-check-write as a single unit so a
// concurrent caller can never observe a verified account without its
// timestamp, and so exactly one of two racing verifications succeeds.
type AccountProvider interface {
	Create(ctx context.Context, input CreateAccountInput) (*Account, error)
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByID(ctx context.Context, id int64) (*Account, error)
	FindByAuthKey(ctx context.Context, key string) (*Account, error)
	MarkEmailVerified(ctx context.Context, id int64, at time.Time) error
}

// MailSender delivers a single HTML mail. Implementations are fire-and-forget
// from the engine's point of view: a failed send never rolls back the
// operation that triggered it.
type MailSender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}
