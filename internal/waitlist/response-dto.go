package waitlist

import (
	"time"

	"gymflow/internal/bookings"
	"gymflow/internal/clients"

	"github.com/google/uuid"
)

// ProcessedEntry is one outcome of a capacity release pass. Booking is nil
// for notification-only entries.
type ProcessedEntry struct {
	Booking          *bookings.ClassBooking `json:"booking"`
	WaitlistEntry    *WaitlistEntry         `json:"waitlist_entry"`
	Client           *clients.Client        `json:"client"`
	NotificationOnly bool                   `json:"notification_only,omitempty"`
}

type WaitlistStatsResponse struct {
	OrganizationID  uuid.UUID `json:"organization_id"`
	ScheduleID      uuid.UUID `json:"schedule_id"`
	MaxCapacity     int       `json:"max_capacity"`
	CurrentBookings int       `json:"current_bookings"`
	AvailableSpots  int       `json:"available_spots"`
	WaitlistEnabled bool      `json:"waitlist_enabled"`
	TotalEntries    int64     `json:"total_entries"`
	WaitingCount    int64     `json:"waiting_count"`
	ConvertedCount  int64     `json:"converted_count"`
	ExpiredCount    int64     `json:"expired_count"`
	GeneratedAt     time.Time `json:"generated_at"`
}
