package waitlist

import (
	"fmt"
	"net/http"

	"gymflow/internal/shared/apperror"
	"gymflow/internal/shared/middleware"
	"gymflow/internal/shared/utils/response"
	"gymflow/internal/shared/validation"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Controller struct {
	service Service
	log     *zap.Logger
}

func NewController(service Service, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{
		service: service,
		log:     log,
	}
}

// ListEntries handles GET /api/v1/class-waitlist
func (c *Controller) ListEntries(ctx *gin.Context) {
	var query ListWaitlistQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		response.HandleError(ctx, c.log, validation.Malformed(err))
		return
	}
	if !c.checkOrganization(ctx, query.OrganizationID) {
		return
	}

	entries, err := c.service.ListEntries(ctx.Request.Context(), &query)
	if err != nil {
		response.HandleError(ctx, c.log, err)
		return
	}

	response.RespondJSON(ctx, http.StatusOK, "", entries)
}

// AddToWaitlist handles POST /api/v1/class-waitlist
func (c *Controller) AddToWaitlist(ctx *gin.Context) {
	var req AddToWaitlistRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.HandleError(ctx, c.log, validation.Malformed(err))
		return
	}
	if !c.checkOrganization(ctx, req.OrganizationID) {
		return
	}

	entry, err := c.service.AddToWaitlist(ctx.Request.Context(), &req)
	if err != nil {
		response.HandleError(ctx, c.log, err)
		return
	}

	response.RespondJSON(ctx, http.StatusCreated, "Successfully joined waitlist", entry)
}

// UpdateEntry handles PUT /api/v1/class-waitlist
func (c *Controller) UpdateEntry(ctx *gin.Context) {
	var req UpdateWaitlistRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.HandleError(ctx, c.log, validation.Malformed(err))
		return
	}
	req.OrgScope, _ = middleware.OrganizationFromContext(ctx)

	entry, err := c.service.UpdateEntry(ctx.Request.Context(), &req)
	if err != nil {
		response.HandleError(ctx, c.log, err)
		return
	}

	response.RespondJSON(ctx, http.StatusOK, "Waitlist entry updated", entry)
}

// RemoveEntry handles DELETE /api/v1/class-waitlist?waitlist_id=
func (c *Controller) RemoveEntry(ctx *gin.Context) {
	var req RemoveWaitlistRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		response.HandleError(ctx, c.log, validation.Malformed(err))
		return
	}
	req.OrgScope, _ = middleware.OrganizationFromContext(ctx)

	processed, err := c.service.RemoveEntry(ctx.Request.Context(), &req)
	if err != nil {
		response.HandleError(ctx, c.log, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success":           true,
		"processed_entries": processed,
	})
}

// ProcessWaitlist handles PATCH /api/v1/class-waitlist. schedule_id may come
// from the query string or the JSON body.
func (c *Controller) ProcessWaitlist(ctx *gin.Context) {
	var req ProcessWaitlistRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		response.HandleError(ctx, c.log, validation.Malformed(err))
		return
	}
	if req.ScheduleID == "" && ctx.Request.ContentLength != 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			response.HandleError(ctx, c.log, validation.Malformed(err))
			return
		}
	}
	req.OrgScope, _ = middleware.OrganizationFromContext(ctx)

	processed, err := c.service.ProcessWaitlist(ctx.Request.Context(), &req)
	if err != nil {
		response.HandleError(ctx, c.log, err)
		return
	}

	response.RespondJSON(ctx, http.StatusOK, fmt.Sprintf("Processed %d waitlist entries", len(processed)), processed)
}

// GetStats handles GET /api/v1/class-waitlist/stats
func (c *Controller) GetStats(ctx *gin.Context) {
	var query StatsQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		response.HandleError(ctx, c.log, validation.Malformed(err))
		return
	}
	if !c.checkOrganization(ctx, query.OrganizationID) {
		return
	}

	stats, err := c.service.GetStats(ctx.Request.Context(), &query)
	if err != nil {
		response.HandleError(ctx, c.log, err)
		return
	}

	response.RespondJSON(ctx, http.StatusOK, "", stats)
}

// checkOrganization rejects requests naming another organization than the
// caller's token. Unauthenticated deployments carry no organization and pass.
func (c *Controller) checkOrganization(ctx *gin.Context, requested string) bool {
	tokenOrg, ok := middleware.OrganizationFromContext(ctx)
	if !ok {
		return true
	}
	requestedID, err := uuid.Parse(requested)
	if err != nil {
		// Left to request validation.
		return true
	}
	if requestedID != tokenOrg {
		response.HandleError(ctx, c.log, apperror.Forbidden(msgOrganizationDenied))
		return false
	}
	return true
}
