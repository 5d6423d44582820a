package jwt

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Verification failure causes. Callers other than the reissue path treat all
// three identically; the distinction exists for logging and for the reissue
// protocol's expired-access-token exemption.
var (
	// ErrTokenMalformed reports a token that is not three base64url segments
	// or whose payload does not decode.
	ErrTokenMalformed = errors.New("token malformed")
	// ErrTokenExpired reports a structurally valid, correctly signed token
	// whose exp claim is not in the future. A token expiring exactly now is
	// expired.
	ErrTokenExpired = errors.New("token expired")
	// ErrSignatureInvalid reports a signature that does not verify under the
	// configured secret, including tokens signed with a different algorithm.
	ErrSignatureInvalid = errors.New("token signature invalid")
)

// Config holds the codec inputs. The secret is passed in explicitly; the
// codec never reads process-wide state.
type Config struct {
	Secret     []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Manager signs and verifies tokens. It is immutable after NewManager and
// safe for concurrent use.
type Manager struct {
	config Config
}

// Claims is the decoded payload of either token flavor. Access tokens carry
// the account id in Subject; refresh tokens leave it empty — their subject
// binding is established only through the server-side slot keyed by account
// id.
type Claims struct {
	jwt.RegisteredClaims
}

// AccountID decodes the numeric subject of an access token.
func (c *Claims) AccountID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrTokenMalformed
	}
	return id, nil
}

// NewManager validates cfg and returns a codec.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("jwt: secret required")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("jwt: invalid TTL configuration")
	}
	return &Manager{config: cfg}, nil
}

// CreateAccess mints an access token: sub = accountID, iat = now,
// exp = now + AccessTTL.
func (m *Manager) CreateAccess(accountID int64) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(accountID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.config.AccessTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.config.Secret)
}

// CreateRefresh mints a refresh token: jti = random uuid, iat = now,
// exp = now + RefreshTTL, no subject. The jti keeps tokens minted within the
// same second distinct, which rotation supersession depends on.
func (m *Manager) CreateRefresh() (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.config.RefreshTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.config.Secret)
}

// Parse verifies signature and expiry and returns the claims. The returned
// error is always one of the three causes above.
func (m *Manager) Parse(tokenStr string) (*Claims, error) {
	return m.parse(tokenStr, false)
}

// ParseUnsafeExpiry verifies signature and payload structure but exempts the
// exp claim. It exists for one caller: the reissue protocol, whose purpose is
// to exchange an access token that may already have expired. Session
// validity is then decided by the refresh slot, not by this parse.
func (m *Manager) ParseUnsafeExpiry(tokenStr string) (*Claims, error) {
	return m.parse(tokenStr, true)
}

func (m *Manager) parse(tokenStr string, skipExpiry bool) (*Claims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	}
	if skipExpiry {
		options = append(options, jwt.WithoutClaimsValidation())
	} else {
		options = append(options, jwt.WithExpirationRequired())
	}

	parser := jwt.NewParser(options...)
	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return m.config.Secret, nil
	})
	if err != nil {
		return nil, classify(err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenMalformed
	}
	if claims.ExpiresAt == nil {
		// WithoutClaimsValidation skips the presence check too.
		return nil, ErrTokenMalformed
	}
	return claims, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrSignatureInvalid
	default:
		return ErrTokenMalformed
	}
}
