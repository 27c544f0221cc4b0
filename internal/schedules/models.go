package schedules

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ClassSchedule is one occurrence of a class with a fixed capacity.
type ClassSchedule struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OrganizationID  uuid.UUID `gorm:"type:uuid;index;not null" json:"organization_id"`
	Name            string    `gorm:"type:varchar(255);not null" json:"name"`
	StartsAt        time.Time `gorm:"not null" json:"starts_at"`
	MaxCapacity     int       `gorm:"not null" json:"max_capacity"`
	CurrentBookings int       `gorm:"not null;default:0" json:"current_bookings"`
	WaitlistEnabled bool      `gorm:"not null" json:"waitlist_enabled"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TableName sets the table name for ClassSchedule
func (ClassSchedule) TableName() string {
	return "class_schedules"
}

func (s *ClassSchedule) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// IsFull reports whether every spot is taken.
func (s *ClassSchedule) IsFull() bool {
	return s.CurrentBookings >= s.MaxCapacity
}

// AvailableSpots returns the number of free spots, never negative.
func (s *ClassSchedule) AvailableSpots() int {
	if s.IsFull() {
		return 0
	}
	return s.MaxCapacity - s.CurrentBookings
}
