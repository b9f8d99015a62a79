// Package rest is the HTTP/JSON transport of the auth service, built on gin.
package rest

import (
	"context"
	"math"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
	"github.com/dmitrijs2005/authkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/ratelimit"
	"github.com/gin-gonic/gin"
)

// AuthService is the business API the handlers call.
type AuthService interface {
	Signup(ctx context.Context, name, email, password string, role models.Role) (*models.PublicUser, error)
	Login(ctx context.Context, email, password string) (*models.AuthResponse, error)
	GetSelf(ctx context.Context, claims *models.TokenClaims) (*models.PublicUser, error)
}

type Handler struct {
	users   AuthService
	guard   *ratelimit.LoginGuard
	metrics *metrics.Metrics
}

func NewHandler(users AuthService, guard *ratelimit.LoginGuard, m *metrics.Metrics) *Handler {
	return &Handler{users: users, guard: guard, metrics: m}
}

func (h *Handler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, common.NewValidationError("body", "Request body must be valid JSON"))
		return
	}

	user, err := h.users.Signup(c.Request.Context(), req.Name, req.Email, req.Password, models.Role(req.Role))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, signupResponse{Message: "User created successfully", User: user})
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, common.NewValidationError("body", "Request body must be valid JSON"))
		return
	}

	ctx := c.Request.Context()
	client := c.ClientIP()

	if h.guard != nil {
		if retry := h.guard.Allow(ctx, client); retry > 0 {
			h.metrics.Login(metrics.ResultThrottled)
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(retry.Seconds()))))
			writeError(c, common.ErrTooManyAttempts)
			return
		}
	}

	resp, err := h.users.Login(ctx, req.Email, req.Password)
	if h.guard != nil {
		h.guard.Record(ctx, client, err)
	}
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, loginResponse{
		Token: resp.Token,
		User:  resp.User,
	})
}

func (h *Handler) Me(c *gin.Context) {
	claims, ok := auth.ClaimsFromContext(c.Request.Context())
	if !ok {
		writeError(c, common.ErrorUnauthorized)
		return
	}

	user, err := h.users.GetSelf(c.Request.Context(), claims)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, meResponse{User: user})
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, healthResponse{Status: "ok"})
}
