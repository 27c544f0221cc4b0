package bookings

import (
	"github.com/gin-gonic/gin"
)

// SetupBookingRoutes configures all booking-related routes. Authentication
// middleware, when enabled, is attached to rg by the caller.
func SetupBookingRoutes(rg *gin.RouterGroup, controller *Controller) {
	bookings := rg.Group("/bookings")
	{
		bookings.GET("/:id", controller.GetBooking)            // GET /api/v1/bookings/:id
		bookings.POST("/:id/cancel", controller.CancelBooking) // POST /api/v1/bookings/:id/cancel
	}
}

// Route definitions for reference:
//
// GET    /api/v1/bookings/:id          - Get a booking
// POST   /api/v1/bookings/:id/cancel   - Cancel a confirmed booking
//
// Cancellation flow:
// 1. Booking status moves to cancelled and the schedule's current_bookings drops by one
// 2. A capacity released event goes to the schedule-capacity topic (or straight to the waitlist without Kafka)
// 3. The waitlist processes the schedule and auto-books or notifies the next entrants
