package restapi

import (
	"errors"
	"net/http"

	"soroban_portfolio/internal/domain/entity"

	"github.com/gin-gonic/gin"
)

// APIResponse is the envelope of every JSON response.
type APIResponse struct {
	Data          any    `json:"data,omitempty"`
	Error         string `json:"error,omitempty"`
	TxHash        string `json:"tx_hash,omitempty"`
	StatusMessage string `json:"status_message"`
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, entity.ErrInvalidAddress), errors.Is(err, entity.ErrInvalidAmount):
		return http.StatusBadRequest
	case errors.Is(err, entity.ErrUnknownToken), errors.Is(err, entity.ErrNotFound), errors.Is(err, entity.ErrAccountNotFound):
		return http.StatusNotFound
	case errors.Is(err, entity.ErrSigningRejected), errors.Is(err, entity.ErrNoSignerConfigured):
		return http.StatusForbidden
	case errors.Is(err, entity.ErrTimeout):
		return http.StatusGatewayTimeout
	default:
		// NoBalancesAvailable, connectivity, simulation and submission failures.
		return http.StatusBadGateway
	}
}

func respondError(c *gin.Context, err error, message string) {
	resp := APIResponse{Error: err.Error(), StatusMessage: message}
	var le *entity.LedgerError
	if errors.As(err, &le) {
		resp.TxHash = le.TxHash
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(statusFor(err), resp)
}

func badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, APIResponse{Error: message, StatusMessage: "Invalid request."})
}

func ok(c *gin.Context, data any, message string) {
	c.JSON(http.StatusOK, APIResponse{Data: data, StatusMessage: message})
}
