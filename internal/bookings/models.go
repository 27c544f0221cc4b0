package bookings

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NoteAutoBooked annotates bookings created from a waitlist entry.
const NoteAutoBooked = "Auto-booked from waitlist"

// ClassBooking is a client's seat in a class schedule.
type ClassBooking struct {
	ID              uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	OrganizationID  uuid.UUID     `gorm:"type:uuid;index;not null" json:"organization_id"`
	ScheduleID      uuid.UUID     `gorm:"type:uuid;index:idx_class_bookings_schedule_client;not null" json:"schedule_id"`
	ClientID        uuid.UUID     `gorm:"type:uuid;index:idx_class_bookings_schedule_client;not null" json:"client_id"`
	Status          Status        `gorm:"type:varchar(20);not null" json:"status"`
	PaymentStatus   PaymentStatus `gorm:"type:varchar(20);not null" json:"payment_status"`
	PaymentAmount   float64       `gorm:"not null;default:0" json:"payment_amount"`
	Notes           string        `gorm:"type:text" json:"notes,omitempty"`
	WaitlistEntryID *uuid.UUID    `gorm:"type:uuid;index" json:"waitlist_entry_id,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
	CancelledAt     *time.Time    `json:"cancelled_at,omitempty"`
}

// TableName sets the table name for ClassBooking
func (ClassBooking) TableName() string {
	return "class_bookings"
}

func (b *ClassBooking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

func (b *ClassBooking) IsConfirmed() bool {
	return b.Status == StatusConfirmed
}

// NewWaitlistBooking builds the confirmed, already-paid booking created when
// a waitlist entry is converted.
func NewWaitlistBooking(orgID, scheduleID, clientID, entryID uuid.UUID) *ClassBooking {
	return &ClassBooking{
		OrganizationID:  orgID,
		ScheduleID:      scheduleID,
		ClientID:        clientID,
		Status:          StatusConfirmed,
		PaymentStatus:   PaymentStatusSucceeded,
		PaymentAmount:   0,
		Notes:           NoteAutoBooked,
		WaitlistEntryID: &entryID,
	}
}
