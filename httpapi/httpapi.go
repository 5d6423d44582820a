// Package httpapi exposes the engine over HTTP.
//
// Every JSON endpoint answers with the same envelope:
//
//	{"success": bool, "data": ..., "error": {"code": ..., "message": ...}}
//
// except GET /api/admin/email-auth, which returns plain text because its
// audience is a person clicking a mail link, not an API client.
package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/moviebox/adminauth"
)

// Service is the engine surface the handlers call.
type Service interface {
	Register(ctx context.Context, email, password string) (int64, error)
	VerifyEmail(ctx context.Context, key string) error
	Login(ctx context.Context, email, password string) (*adminauth.TokenPair, error)
	Reissue(ctx context.Context, accessToken, refreshToken string) (*adminauth.TokenPair, error)
}

// Handler holds the route handlers.
type Handler struct {
	service Service
	logger  zerolog.Logger
}

// NewHandler returns a Handler over service.
func NewHandler(service Service, logger zerolog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Router builds a gin engine with all routes registered.
func (h *Handler) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	h.RegisterRoutes(r)
	return r
}

// RegisterRoutes attaches the API routes to r.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	admin := r.Group("/api/admin")
	{
		admin.POST("/register", h.register)
		admin.GET("/email-auth", h.emailAuth)
		admin.POST("/login", h.login)
	}
	r.POST("/api/token/reissue", h.reissue)
	r.GET("/health", h.health)
}

type envelope struct {
	Success bool      `json:"success"`
	Data    any       `json:"data"`
	Error   *apiError `json:"error"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type credentialsRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type reissueRequest struct {
	AccessToken  string `json:"accessToken" binding:"required"`
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// tokenResponse is the wire shape of an issued pair.
type tokenResponse struct {
	GrantType    string `json:"grantType"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func newTokenResponse(pair *adminauth.TokenPair) tokenResponse {
	return tokenResponse{
		GrantType:    pair.TokenType,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}
}

func (h *Handler) register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeBindError(c, err)
		return
	}

	if _, err := h.service.Register(c.Request.Context(), req.Email, req.Password); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, envelope{Success: true})
}

func (h *Handler) emailAuth(c *gin.Context) {
	key := c.Query("key")
	if err := h.service.VerifyEmail(c.Request.Context(), key); err != nil {
		h.writeError(c, err)
		return
	}
	c.String(http.StatusOK, "email verification completed")
}

func (h *Handler) login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeBindError(c, err)
		return
	}

	pair, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, envelope{Success: true, Data: newTokenResponse(pair)})
}

func (h *Handler) reissue(c *gin.Context) {
	var req reissueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeBindError(c, err)
		return
	}

	pair, err := h.service.Reissue(c.Request.Context(), req.AccessToken, req.RefreshToken)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, envelope{Success: true, Data: newTokenResponse(pair)})
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) writeBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, envelope{Error: &apiError{
		Code:    adminauth.CodeInvalidInput,
		Message: err.Error(),
	}})
}

// writeError maps an engine failure to a status and the error envelope.
// Infrastructure details stay out of the response body.
func (h *Handler) writeError(c *gin.Context, err error) {
	var authErr *adminauth.Error
	if !errors.As(err, &authErr) {
		h.logger.Error().Err(err).Str("path", c.FullPath()).Msg("unclassified failure")
		c.JSON(http.StatusInternalServerError, envelope{Error: &apiError{
			Code:    adminauth.CodeStorageUnavailable,
			Message: "internal error",
		}})
		return
	}

	status := statusFor(authErr.Kind)
	if status == http.StatusInternalServerError {
		h.logger.Error().Err(err).Str("path", c.FullPath()).Msg("infrastructure failure")
		c.JSON(status, envelope{Error: &apiError{
			Code:    authErr.Code,
			Message: "internal error",
		}})
		return
	}
	c.JSON(status, envelope{Error: &apiError{
		Code:    authErr.Code,
		Message: authErr.Message,
	}})
}

func statusFor(kind adminauth.Kind) int {
	switch kind {
	case adminauth.KindInvalidInput, adminauth.KindConflict, adminauth.KindAlreadyDone:
		return http.StatusBadRequest
	case adminauth.KindUnauthenticated:
		return http.StatusUnauthorized
	case adminauth.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
