package waitlist

import (
	"github.com/gin-gonic/gin"
)

// SetupWaitlistRoutes configures the class waitlist routes. Authentication
// middleware, when enabled, is attached to rg by the caller.
func SetupWaitlistRoutes(rg *gin.RouterGroup, controller *Controller) {
	waitlist := rg.Group("/class-waitlist")
	{
		waitlist.GET("", controller.ListEntries)       // List entries
		waitlist.POST("", controller.AddToWaitlist)    // Join waitlist
		waitlist.PUT("", controller.UpdateEntry)       // Update entry
		waitlist.DELETE("", controller.RemoveEntry)    // Remove entry, then fill open spots
		waitlist.PATCH("", controller.ProcessWaitlist) // Process capacity release
		waitlist.GET("/stats", controller.GetStats)    // Counts and capacity snapshot
	}
}
