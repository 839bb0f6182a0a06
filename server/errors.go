package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskflow/plan"
)

// Error codes surfaced in API responses
const (
	codeValidation         = "validation_error"
	codeNotFound           = "not_found"
	codeTimeframeViolation = "timeframe_violation"
	codeRateLimited        = "rate_limit_exceeded"
	codeLLMError           = "llm_error"
	codeInternal           = "internal_error"
)

func apiError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{"error": message, "error_code": code})
}

func badRequest(c *gin.Context, message string) {
	apiError(c, http.StatusBadRequest, codeValidation, message)
}

// writeError maps domain errors to HTTP responses: missing resources to
// 404, timeframe violations to 422 with suggestions, everything else to
// 500.
func writeError(c *gin.Context, err error) {
	var nf *plan.NotFoundError
	if errors.As(err, &nf) {
		apiError(c, http.StatusNotFound, codeNotFound, nf.Error())
		return
	}
	var ce *plan.ComplianceError
	if errors.As(err, &ce) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":           ce.Error(),
			"error_code":      codeTimeframeViolation,
			"total_hours":     ce.TotalHours,
			"available_hours": ce.AvailableHours,
			"suggestions":     ce.Suggestions,
		})
		return
	}
	apiError(c, http.StatusInternalServerError, codeInternal, err.Error())
}
