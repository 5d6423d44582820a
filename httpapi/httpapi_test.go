package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moviebox/adminauth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubService scripts one response per operation.
type stubService struct {
	registerID  int64
	registerErr error
	verifyErr   error
	loginPair   *adminauth.TokenPair
	loginErr    error
	reissuePair *adminauth.TokenPair
	reissueErr  error

	gotEmail    string
	gotPassword string
	gotKey      string
	gotAccess   string
	gotRefresh  string
}

func (s *stubService) Register(_ context.Context, email, password string) (int64, error) {
	s.gotEmail, s.gotPassword = email, password
	return s.registerID, s.registerErr
}

func (s *stubService) VerifyEmail(_ context.Context, key string) error {
	s.gotKey = key
	return s.verifyErr
}

func (s *stubService) Login(_ context.Context, email, password string) (*adminauth.TokenPair, error) {
	s.gotEmail, s.gotPassword = email, password
	return s.loginPair, s.loginErr
}

func (s *stubService) Reissue(_ context.Context, accessToken, refreshToken string) (*adminauth.TokenPair, error) {
	s.gotAccess, s.gotRefresh = accessToken, refreshToken
	return s.reissuePair, s.reissueErr
}

func serve(t *testing.T, svc *stubService, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	router := NewHandler(svc, zerolog.Nop()).Router()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestRegister(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		svc := &stubService{registerID: 1}
		w := serve(t, svc, http.MethodPost, "/api/admin/register",
			`{"email":"admin@moviebox.io","password":"opensesame1!"}`)

		assert.Equal(t, http.StatusCreated, w.Code)
		env := decode(t, w)
		assert.True(t, env.Success)
		assert.Nil(t, env.Error)
		assert.Equal(t, "admin@moviebox.io", svc.gotEmail)
		assert.Equal(t, "opensesame1!", svc.gotPassword)
	})

	t.Run("missing fields rejected before the service", func(t *testing.T) {
		svc := &stubService{}
		w := serve(t, svc, http.MethodPost, "/api/admin/register", `{"email":"a@b.io"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decode(t, w)
		assert.False(t, env.Success)
		require.NotNil(t, env.Error)
		assert.Equal(t, adminauth.CodeInvalidInput, env.Error.Code)
		assert.Empty(t, svc.gotEmail, "service must not be called on bind failure")
	})

	t.Run("duplicate email is a 400 with its code", func(t *testing.T) {
		svc := &stubService{registerErr: duplicateEmailErr(t)}
		w := serve(t, svc, http.MethodPost, "/api/admin/register",
			`{"email":"admin@moviebox.io","password":"opensesame1!"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decode(t, w)
		require.NotNil(t, env.Error)
		assert.Equal(t, adminauth.CodeEmailAlreadyExist, env.Error.Code)
	})
}

func TestEmailAuth(t *testing.T) {
	t.Run("plain text confirmation", func(t *testing.T) {
		svc := &stubService{}
		w := serve(t, svc, http.MethodGet, "/api/admin/email-auth?key=key-1", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "verification completed")
		assert.Equal(t, "key-1", svc.gotKey)
	})

	t.Run("invalid key", func(t *testing.T) {
		svc := &stubService{verifyErr: invalidKeyErr(t)}
		w := serve(t, svc, http.MethodGet, "/api/admin/email-auth?key=bogus", "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decode(t, w)
		require.NotNil(t, env.Error)
		assert.Equal(t, adminauth.CodeEmailAuthKeyInvalid, env.Error.Code)
	})
}

func TestLogin(t *testing.T) {
	pair := &adminauth.TokenPair{TokenType: "Bearer", AccessToken: "acc", RefreshToken: "ref"}

	t.Run("issues token pair", func(t *testing.T) {
		svc := &stubService{loginPair: pair}
		w := serve(t, svc, http.MethodPost, "/api/admin/login",
			`{"email":"admin@moviebox.io","password":"opensesame1!"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		env := decode(t, w)
		assert.True(t, env.Success)

		data, err := json.Marshal(env.Data)
		require.NoError(t, err)
		var tok tokenResponse
		require.NoError(t, json.Unmarshal(data, &tok))
		assert.Equal(t, "Bearer", tok.GrantType)
		assert.Equal(t, "acc", tok.AccessToken)
		assert.Equal(t, "ref", tok.RefreshToken)
	})

	t.Run("unknown email is a 404", func(t *testing.T) {
		svc := &stubService{loginErr: notFoundErr(t)}
		w := serve(t, svc, http.MethodPost, "/api/admin/login",
			`{"email":"nobody@moviebox.io","password":"x1"}`)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestReissue(t *testing.T) {
	pair := &adminauth.TokenPair{TokenType: "Bearer", AccessToken: "acc2", RefreshToken: "ref2"}

	t.Run("rotates pair", func(t *testing.T) {
		svc := &stubService{reissuePair: pair}
		w := serve(t, svc, http.MethodPost, "/api/token/reissue",
			`{"accessToken":"acc1","refreshToken":"ref1"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "acc1", svc.gotAccess)
		assert.Equal(t, "ref1", svc.gotRefresh)
	})

	t.Run("superseded refresh token is a 401", func(t *testing.T) {
		svc := &stubService{reissueErr: expiredRefreshErr(t)}
		w := serve(t, svc, http.MethodPost, "/api/token/reissue",
			`{"accessToken":"acc1","refreshToken":"stale"}`)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		env := decode(t, w)
		require.NotNil(t, env.Error)
		assert.Equal(t, adminauth.CodeExpiredRefreshToken, env.Error.Code)
	})

	t.Run("infrastructure failure masks detail", func(t *testing.T) {
		svc := &stubService{reissueErr: errors.New("redis: connection pool exhausted")}
		w := serve(t, svc, http.MethodPost, "/api/token/reissue",
			`{"accessToken":"acc1","refreshToken":"ref1"}`)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		env := decode(t, w)
		require.NotNil(t, env.Error)
		assert.Equal(t, "internal error", env.Error.Message)
		assert.NotContains(t, w.Body.String(), "connection pool")
	})
}

func TestHealth(t *testing.T) {
	w := serve(t, &stubService{}, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

// Representative tagged failures, built directly rather than provoked
// through a full engine.

func duplicateEmailErr(t *testing.T) error {
	t.Helper()
	return &adminauth.Error{Kind: adminauth.KindConflict, Code: adminauth.CodeEmailAlreadyExist, Message: "email is already registered"}
}

func invalidKeyErr(t *testing.T) error {
	t.Helper()
	return &adminauth.Error{Kind: adminauth.KindInvalidInput, Code: adminauth.CodeEmailAuthKeyInvalid, Message: "email verification key is not valid"}
}

func notFoundErr(t *testing.T) error {
	t.Helper()
	return &adminauth.Error{Kind: adminauth.KindNotFound, Code: adminauth.CodeUserNotFoundByEmail, Message: "no account with that email"}
}

func expiredRefreshErr(t *testing.T) error {
	t.Helper()
	return &adminauth.Error{Kind: adminauth.KindUnauthenticated, Code: adminauth.CodeExpiredRefreshToken, Message: "refresh token has expired"}
}
