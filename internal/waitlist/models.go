package waitlist

import (
	"time"

	"gymflow/internal/clients"
	"gymflow/internal/notifications"
	"gymflow/internal/schedules"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// WaitlistStatus represents the status of a waitlist entry
type WaitlistStatus string

const (
	WaitlistStatusWaiting   WaitlistStatus = "waiting"
	WaitlistStatusConverted WaitlistStatus = "converted"
	WaitlistStatusExpired   WaitlistStatus = "expired"
)

// IsValid checks if the waitlist status is valid
func (ws WaitlistStatus) IsValid() bool {
	switch ws {
	case WaitlistStatusWaiting, WaitlistStatusConverted, WaitlistStatusExpired:
		return true
	default:
		return false
	}
}

// NotificationTypeFor returns what a client should hear about after moving to ws.
func (ws WaitlistStatus) NotificationTypeFor() notifications.NotificationType {
	switch ws {
	case WaitlistStatusConverted:
		return notifications.NotificationTypeWaitlistConverted
	case WaitlistStatusExpired:
		return notifications.NotificationTypeWaitlistExpired
	default:
		return notifications.NotificationTypeWaitlistJoined
	}
}

// WaitlistEntry is a client's place in line for a full class.
// Only one waiting entry per schedule and client is allowed, enforced by a partial unique index.
type WaitlistEntry struct {
	ID               uuid.UUID                      `json:"id" gorm:"type:uuid;primaryKey"`
	OrganizationID   uuid.UUID                      `json:"organization_id" gorm:"type:uuid;not null;index"`
	ScheduleID       uuid.UUID                      `json:"schedule_id" gorm:"type:uuid;not null;index:idx_class_waitlist_schedule_status;uniqueIndex:idx_class_waitlist_waiting_client,where:status = 'waiting'"`
	ClientID         uuid.UUID                      `json:"client_id" gorm:"type:uuid;not null;index;uniqueIndex:idx_class_waitlist_waiting_client,where:status = 'waiting'"`
	Position         int                            `json:"position" gorm:"not null"`
	PriorityScore    int                            `json:"priority_score" gorm:"not null;default:0"`
	AutoBook         bool                           `json:"auto_book" gorm:"not null"`
	Status           WaitlistStatus                 `json:"status" gorm:"type:varchar(20);not null;index:idx_class_waitlist_schedule_status"`
	JoinedAt         time.Time                      `json:"joined_at" gorm:"not null"`
	ExpiresAt        *time.Time                     `json:"expires_at,omitempty"`
	NotificationSent bool                           `json:"notification_sent" gorm:"not null;index"`
	NotificationType notifications.NotificationType `json:"notification_type,omitempty" gorm:"type:varchar(40)"`
	Metadata         datatypes.JSONMap              `json:"metadata,omitempty"`
	CreatedAt        time.Time                      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt        time.Time                      `json:"updated_at" gorm:"autoUpdateTime"`

	Client   *clients.Client          `json:"client,omitempty" gorm:"foreignKey:ClientID"`
	Schedule *schedules.ClassSchedule `json:"schedule,omitempty" gorm:"foreignKey:ScheduleID"`
}

// TableName sets the table name for WaitlistEntry
func (WaitlistEntry) TableName() string {
	return "class_waitlist"
}

func (e *WaitlistEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

func (e *WaitlistEntry) IsWaiting() bool {
	return e.Status == WaitlistStatusWaiting
}
