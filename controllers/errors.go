package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cppla/gymcheckin/domain"
	"github.com/cppla/gymcheckin/utils"
)

const unexpectedMessage = "Unexpected server error."

// statusFor maps an error kind onto its HTTP status.
func statusFor(kind domain.Kind) int {
	switch kind {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindCooldown, domain.KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// writeError converts err into the uniform failure body. failureMessage is what
// callers see for store failures; internal detail is only logged.
func writeError(ctx *gin.Context, err error, failureMessage string) {
	kind := domain.KindOf(err)
	body := utils.ErrorResponse{Kind: kind}

	var (
		ve *domain.ValidationError
		cd *domain.CooldownError
	)
	switch {
	case errors.As(err, &ve):
		body.Error = ve.Message
	case kind == domain.KindNotFound:
		body.Error = "Member ID not found."
	case errors.As(err, &cd):
		body.Error = fmt.Sprintf("You just checked in. Please wait %d seconds before checking in again.", cd.RetryAfterSeconds())
		body.RetryAfterSeconds = cd.RetryAfterSeconds()
		ctx.Header("Retry-After", fmt.Sprint(cd.RetryAfterSeconds()))
	case kind == domain.KindStoreFailure:
		body.Error = failureMessage
	case kind == domain.KindConfiguration:
		body.Error = "Missing AWS env vars."
	case kind == domain.KindGeneration:
		body.Error = "Failed to generate insights."
	default:
		body.Error = unexpectedMessage
	}

	status := statusFor(kind)
	if status >= http.StatusInternalServerError {
		utils.Logger.Error("request failed",
			zap.String("path", ctx.FullPath()),
			zap.String("kind", string(kind)),
			zap.String("request_id", ctx.GetString(utils.RequestIDKey)),
			zap.Error(err))
	}
	utils.Respond(ctx, status, body)
}
