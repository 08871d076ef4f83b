package http

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/dmitrijs2005/memberkeeper/internal/common"
	"github.com/dmitrijs2005/memberkeeper/internal/server/models"
	"github.com/dmitrijs2005/memberkeeper/internal/server/services"
	"github.com/gin-gonic/gin"
)

type AccountService interface {
	Register(ctx context.Context, f models.RegistrationFields) (*services.AuthResult, error)
	Authenticate(ctx context.Context, email, password string) (*services.AuthResult, error)
}

type AccessGate interface {
	Resolve(ctx context.Context, authorization string) (*models.Account, error)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	User  models.AccountView `json:"user"`
	Token string             `json:"token"`
}

type MeResponse struct {
	User models.AccountView `json:"user"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

type Handler struct {
	accounts AccountService
}

func NewHandler(accounts AccountService) *Handler {
	return &Handler{accounts: accounts}
}

// Signup handles POST /api/users/signup.
func (h *Handler) Signup(c *gin.Context) {
	var req models.RegistrationFields
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.accounts.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, AuthResponse{User: res.Account.View(), Token: res.Token})
}

// Login handles POST /api/users/login.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.accounts.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, AuthResponse{User: res.Account.View(), Token: res.Token})
}

// Me handles GET /api/users/me. RequireAuth must run first.
func (h *Handler) Me(c *gin.Context) {
	account, ok := services.AccountFromContext(c.Request.Context())
	if !ok {
		respondError(c, common.ErrAuthorizationRequired)
		return
	}
	c.JSON(http.StatusOK, MeResponse{User: account.View()})
}

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// bindJSON decodes the body into dst. An empty body leaves dst zero-valued so
// the service reports which fields are missing.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		respondError(c, errInvalidBody)
		return false
	}
	return true
}
