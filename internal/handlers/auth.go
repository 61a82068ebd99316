package handlers

import (
	"net/http"
	"time"

	"github.com/alienworld1/data-dex/internal/middleware"
	"github.com/alienworld1/data-dex/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AuthHandler handles account registration and login.
type AuthHandler struct {
	accounts  *services.AccountService
	jwtConfig middleware.JWTConfig
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(accounts *services.AccountService, jwtSecret string) *AuthHandler {
	return &AuthHandler{
		accounts: accounts,
		jwtConfig: middleware.JWTConfig{
			Secret:     jwtSecret,
			Expiration: 24 * time.Hour,
		},
	}
}

// Register handles account registration.
func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	user, err := h.accounts.Register(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, Envelope{Success: false, Error: "invalid_input", Message: err.Error()})
		return
	}

	token, err := middleware.GenerateToken(user.ID.String(), user.Email, user.Address, user.IsAdmin, h.jwtConfig)
	if err != nil {
		c.JSON(http.StatusInternalServerError, Envelope{Success: false, Error: "internal", Message: "failed to generate token"})
		return
	}

	respond(c, http.StatusCreated, services.AuthResponse{
		UserID:  user.ID.String(),
		Email:   user.Email,
		Address: user.Address,
		Token:   token,
	}, "account created")
}

// Login handles account login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	user, err := h.accounts.Login(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusUnauthorized, Envelope{Success: false, Error: "unauthorized", Message: err.Error()})
		return
	}

	token, err := middleware.GenerateToken(user.ID.String(), user.Email, user.Address, user.IsAdmin, h.jwtConfig)
	if err != nil {
		c.JSON(http.StatusInternalServerError, Envelope{Success: false, Error: "internal", Message: "failed to generate token"})
		return
	}

	respond(c, http.StatusOK, services.AuthResponse{
		UserID:  user.ID.String(),
		Email:   user.Email,
		Address: user.Address,
		Token:   token,
	}, "")
}

// Profile returns the authenticated account.
func (h *AuthHandler) Profile(c *gin.Context) {
	userID, err := uuid.Parse(middleware.GetUserID(c))
	if err != nil {
		respondBadRequest(c, "invalid user id")
		return
	}

	user, err := h.accounts.GetUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusNotFound, Envelope{Success: false, Error: "not_found", Message: err.Error()})
		return
	}
	respond(c, http.StatusOK, user, "")
}
