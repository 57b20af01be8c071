package utils

import (
	"github.com/gin-gonic/gin"

	"github.com/cppla/gymcheckin/domain"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	OK                bool        `json:"ok"`
	Error             string      `json:"error"`
	Kind              domain.Kind `json:"kind"`
	RetryAfterSeconds int64       `json:"retryAfterSeconds,omitempty"`
}

// Success writes 200 with payload merged next to "ok": true.
func Success(ctx *gin.Context, payload gin.H) {
	body := gin.H{"ok": true}
	for k, v := range payload {
		body[k] = v
	}
	ctx.JSON(200, body)
}

// Error writes a failure body with the given status.
func Error(ctx *gin.Context, status int, kind domain.Kind, message string) {
	ctx.JSON(status, ErrorResponse{Error: message, Kind: kind})
}

// Respond writes an already built failure body.
func Respond(ctx *gin.Context, status int, body ErrorResponse) {
	body.OK = false
	ctx.JSON(status, body)
}
