package notifications

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationTypeWaitlistJoined        NotificationType = "WAITLIST_JOINED"
	NotificationTypeWaitlistSpotAvailable NotificationType = "WAITLIST_SPOT_AVAILABLE"
	NotificationTypeWaitlistAutoBooked    NotificationType = "WAITLIST_AUTO_BOOKED"
	NotificationTypeWaitlistConverted     NotificationType = "WAITLIST_CONVERTED"
	NotificationTypeWaitlistExpired       NotificationType = "WAITLIST_EXPIRED"
)

func (t NotificationType) IsValid() bool {
	switch t {
	case NotificationTypeWaitlistJoined,
		NotificationTypeWaitlistSpotAvailable,
		NotificationTypeWaitlistAutoBooked,
		NotificationTypeWaitlistConverted,
		NotificationTypeWaitlistExpired:
		return true
	}
	return false
}

type NotificationPriority string

const (
	NotificationPriorityLow    NotificationPriority = "LOW"
	NotificationPriorityMedium NotificationPriority = "MEDIUM"
	NotificationPriorityHigh   NotificationPriority = "HIGH"
)

// WaitlistNotification is the message handed to the delivery service.
// Delivery itself (email, SMS, push) happens downstream of Kafka.
type WaitlistNotification struct {
	ID       uuid.UUID            `json:"id"`
	Type     NotificationType     `json:"type"`
	Priority NotificationPriority `json:"priority"`

	OrganizationID  uuid.UUID  `json:"organization_id"`
	ScheduleID      uuid.UUID  `json:"schedule_id"`
	WaitlistEntryID uuid.UUID  `json:"waitlist_entry_id"`
	BookingID       *uuid.UUID `json:"booking_id,omitempty"`
	Position        int        `json:"position,omitempty"`

	ClientID       uuid.UUID `json:"client_id"`
	RecipientEmail string    `json:"recipient_email,omitempty"`
	RecipientName  string    `json:"recipient_name,omitempty"`

	ScheduleName string     `json:"schedule_name,omitempty"`
	StartsAt     *time.Time `json:"starts_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

type NotificationBuilder struct {
	notification *WaitlistNotification
}

func NewNotificationBuilder(now time.Time) *NotificationBuilder {
	return &NotificationBuilder{
		notification: &WaitlistNotification{
			ID:        uuid.New(),
			Priority:  NotificationPriorityMedium,
			CreatedAt: now,
		},
	}
}

func (nb *NotificationBuilder) WithType(notType NotificationType) *NotificationBuilder {
	nb.notification.Type = notType
	nb.notification.Priority = GetDefaultPriority(notType)
	return nb
}

func (nb *NotificationBuilder) WithRecipient(clientID uuid.UUID, email, name string) *NotificationBuilder {
	nb.notification.ClientID = clientID
	nb.notification.RecipientEmail = email
	nb.notification.RecipientName = name
	return nb
}

func (nb *NotificationBuilder) WithWaitlistContext(orgID, scheduleID, entryID uuid.UUID, position int) *NotificationBuilder {
	nb.notification.OrganizationID = orgID
	nb.notification.ScheduleID = scheduleID
	nb.notification.WaitlistEntryID = entryID
	nb.notification.Position = position
	return nb
}

func (nb *NotificationBuilder) WithBookingContext(bookingID *uuid.UUID) *NotificationBuilder {
	nb.notification.BookingID = bookingID
	return nb
}

func (nb *NotificationBuilder) WithSchedule(name string, startsAt time.Time) *NotificationBuilder {
	nb.notification.ScheduleName = name
	if !startsAt.IsZero() {
		nb.notification.StartsAt = &startsAt
	}
	return nb
}

func (nb *NotificationBuilder) Build() *WaitlistNotification {
	return nb.notification
}

// GetDefaultPriority ranks notifications that need a client decision highest.
func GetDefaultPriority(notType NotificationType) NotificationPriority {
	switch notType {
	case NotificationTypeWaitlistSpotAvailable:
		return NotificationPriorityHigh
	case NotificationTypeWaitlistAutoBooked, NotificationTypeWaitlistConverted, NotificationTypeWaitlistExpired:
		return NotificationPriorityMedium
	default:
		return NotificationPriorityLow
	}
}

// GetPartitionKey keeps every message for one client on one partition.
func (n *WaitlistNotification) GetPartitionKey() string {
	return n.ClientID.String()
}

func (n *WaitlistNotification) ToJSON() ([]byte, error) {
	return json.Marshal(n)
}

// CapacityReleasedEvent announces that spots opened up in a schedule.
type CapacityReleasedEvent struct {
	ID             uuid.UUID  `json:"id"`
	OrganizationID uuid.UUID  `json:"organization_id"`
	ScheduleID     uuid.UUID  `json:"schedule_id"`
	BookingID      *uuid.UUID `json:"booking_id,omitempty"`
	FreedSpots     int        `json:"freed_spots"`
	OccurredAt     time.Time  `json:"occurred_at"`
}

func (e *CapacityReleasedEvent) GetPartitionKey() string {
	return e.ScheduleID.String()
}

func (e *CapacityReleasedEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}
