package controllers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/cppla/gymcheckin/domain"
	"github.com/cppla/gymcheckin/models"
	"github.com/cppla/gymcheckin/utils"
)

// Submitter records a check-in for a raw member id.
type Submitter interface {
	Submit(ctx context.Context, rawID string) (models.Member, error)
}

// CheckinController handles the public check-in endpoint.
type CheckinController struct {
	svc Submitter
}

// NewCheckinController creates a new controller instance.
func NewCheckinController(svc Submitter) *CheckinController {
	return &CheckinController{svc: svc}
}

type checkinRequest struct {
	MemberID string `json:"memberId"`
}

// Submit handles POST /api/checkin.
func (c *CheckinController) Submit(ctx *gin.Context) {
	var req checkinRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		writeError(ctx, domain.NewValidationError("body", "Invalid request body."), "")
		return
	}

	member, err := c.svc.Submit(ctx.Request.Context(), req.MemberID)
	if err != nil {
		writeError(ctx, err, "Failed to record check-in.")
		return
	}

	payload := gin.H{"memberId": member.MemberID}
	if name := member.DisplayName(); name != "" {
		payload["memberName"] = name
	}
	utils.Success(ctx, payload)
}
