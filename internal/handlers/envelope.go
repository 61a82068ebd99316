package handlers

import (
	"errors"
	"net/http"

	"github.com/alienworld1/data-dex/internal/models"
	"github.com/gin-gonic/gin"
)

// Envelope is the response shape every gateway endpoint returns.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

func respond(c *gin.Context, status int, data interface{}, message string) {
	c.JSON(status, Envelope{Success: true, Data: data, Message: message})
}

// respondError maps a ledger failure kind onto a transport status so clients
// can branch on both.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	kind := "internal"

	switch {
	case errors.Is(err, models.ErrInvalidInput):
		status, kind = http.StatusBadRequest, "invalid_input"
	case errors.Is(err, models.ErrUnauthorized):
		status, kind = http.StatusForbidden, "unauthorized"
	case errors.Is(err, models.ErrNotFound):
		status, kind = http.StatusNotFound, "not_found"
	case errors.Is(err, models.ErrAlreadyPurchased):
		status, kind = http.StatusConflict, "already_purchased"
	case errors.Is(err, models.ErrAlreadyInitialized):
		status, kind = http.StatusConflict, "already_initialized"
	case errors.Is(err, models.ErrInsufficientFunds):
		status, kind = http.StatusPaymentRequired, "insufficient_funds"
	}

	c.JSON(status, Envelope{Success: false, Error: kind, Message: err.Error()})
}

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Envelope{Success: false, Error: "invalid_input", Message: message})
}
