// Package pgstore implements the engine's account provider on PostgreSQL.
package pgstore

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/moviebox/adminauth"
)

//go:embed schema.sql
var schemaSQL string

// DB is the subset of pgxpool.Pool the store needs. pgxmock satisfies it.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// AccountStore is a PostgreSQL-backed [adminauth.AccountProvider].
type AccountStore struct {
	db DB
}

// NewAccountStore wraps db. The caller owns the pool's lifecycle.
func NewAccountStore(db DB) *AccountStore {
	return &AccountStore{db: db}
}

// Migrate applies the embedded schema. Idempotent.
func (s *AccountStore) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("pgstore: migrate: %w", err)
	}
	return nil
}

// Create inserts the account and returns it with the generated id. A unique
// violation on the email column maps to [adminauth.ErrDuplicateEmail], which
// is how concurrent registrations of the same address resolve to one winner.
func (s *AccountStore) Create(ctx context.Context, input adminauth.CreateAccountInput) (*adminauth.Account, error) {
	row := s.db.QueryRow(ctx, `
		INSERT INTO admin_accounts (email, password_hash, role, email_auth_key)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, input.Email, input.PasswordHash, string(input.Role), input.EmailAuthKey)

	account := &adminauth.Account{
		Email:        input.Email,
		PasswordHash: input.PasswordHash,
		Role:         input.Role,
		EmailAuthKey: input.EmailAuthKey,
	}
	if err := row.Scan(&account.ID, &account.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, adminauth.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("pgstore: create account: %w", err)
	}
	return account, nil
}

// FindByEmail returns the account with the given email.
func (s *AccountStore) FindByEmail(ctx context.Context, email string) (*adminauth.Account, error) {
	return s.findBy(ctx, "email = $1", email)
}

// FindByID returns the account with the given id.
func (s *AccountStore) FindByID(ctx context.Context, id int64) (*adminauth.Account, error) {
	return s.findBy(ctx, "id = $1", id)
}

// FindByAuthKey returns the account holding the given verification key.
func (s *AccountStore) FindByAuthKey(ctx context.Context, key string) (*adminauth.Account, error) {
	return s.findBy(ctx, "email_auth_key = $1", key)
}

func (s *AccountStore) findBy(ctx context.Context, where string, arg any) (*adminauth.Account, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, email, password_hash, role, email_verified, email_auth_key,
		       email_verified_at, created_at
		FROM admin_accounts
		WHERE `+where, arg)

	var (
		account adminauth.Account
		role    string
	)
	err := row.Scan(
		&account.ID,
		&account.Email,
		&account.PasswordHash,
		&role,
		&account.EmailVerified,
		&account.EmailAuthKey,
		&account.EmailVerifiedAt,
		&account.CreatedAt,
	)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return nil, adminauth.ErrAccountNotFound
	case err != nil:
		return nil, fmt.Errorf("pgstore: find account: %w", err)
	}
	account.Role = adminauth.Role(role)
	return &account, nil
}

// MarkEmailVerified flips the verified flag exactly once. The conditional
// UPDATE makes the read-check-write race safe without an explicit
// transaction: of two concurrent calls for the same account, one matches
// zero rows and reports [adminauth.ErrAlreadyVerified].
func (s *AccountStore) MarkEmailVerified(ctx context.Context, id int64, at time.Time) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE admin_accounts
		SET email_verified = TRUE, email_verified_at = $2
		WHERE id = $1 AND NOT email_verified
	`, id, at)
	if err != nil {
		return fmt.Errorf("pgstore: mark verified: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	// Zero rows: either the account is gone or it was already verified.
	if _, err := s.FindByID(ctx, id); err != nil {
		return err
	}
	return adminauth.ErrAlreadyVerified
}

var _ adminauth.AccountProvider = (*AccountStore)(nil)
