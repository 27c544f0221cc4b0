package bookings

import (
	"net/http"

	"gymflow/internal/shared/middleware"
	"gymflow/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Controller struct {
	service Service
	log     *zap.Logger
}

func NewController(service Service, log *zap.Logger) *Controller {
	return &Controller{service: service, log: log}
}

// GetBooking handles GET /api/v1/bookings/:id
func (c *Controller) GetBooking(ctx *gin.Context) {
	bookingID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondError(ctx, http.StatusBadRequest, "Invalid booking ID", nil)
		return
	}

	orgScope, _ := middleware.OrganizationFromContext(ctx)
	booking, err := c.service.GetBooking(ctx.Request.Context(), bookingID, orgScope)
	if err != nil {
		response.HandleError(ctx, c.log, err)
		return
	}

	response.RespondJSON(ctx, http.StatusOK, "", booking.ToResponse())
}

// CancelBooking handles POST /api/v1/bookings/:id/cancel
func (c *Controller) CancelBooking(ctx *gin.Context) {
	bookingID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondError(ctx, http.StatusBadRequest, "Invalid booking ID", nil)
		return
	}

	orgScope, _ := middleware.OrganizationFromContext(ctx)
	booking, err := c.service.CancelBooking(ctx.Request.Context(), bookingID, orgScope)
	if err != nil {
		response.HandleError(ctx, c.log, err)
		return
	}

	response.RespondJSON(ctx, http.StatusOK, "Booking cancelled successfully", booking.ToResponse())
}
