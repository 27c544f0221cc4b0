package waitlist

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AddToWaitlistRequest is the POST body. Omitted auto_book means true.
type AddToWaitlistRequest struct {
	OrganizationID string            `json:"organization_id" validate:"required,uuid"`
	ScheduleID     string            `json:"schedule_id" validate:"required,uuid"`
	ClientID       string            `json:"client_id" validate:"required,uuid"`
	AutoBook       *bool             `json:"auto_book,omitempty"`
	PriorityScore  *int              `json:"priority_score,omitempty" validate:"omitempty,min=0"`
	ExpiresAt      *time.Time        `json:"expires_at,omitempty"`
	Metadata       datatypes.JSONMap `json:"metadata,omitempty"`
}

// UpdateWaitlistRequest is the PUT body. Nil fields are left unchanged.
type UpdateWaitlistRequest struct {
	WaitlistID    string  `json:"waitlist_id" validate:"required,uuid"`
	AutoBook      *bool   `json:"auto_book,omitempty"`
	PriorityScore *int    `json:"priority_score,omitempty" validate:"omitempty,min=0"`
	Status        *string `json:"status,omitempty" validate:"omitempty,oneof=waiting converted expired"`

	// OrgScope limits the lookup to one organization when set.
	OrgScope uuid.UUID `json:"-"`
}

type RemoveWaitlistRequest struct {
	WaitlistID string    `form:"waitlist_id" validate:"required,uuid"`
	OrgScope   uuid.UUID `json:"-" form:"-"`
}

// ProcessWaitlistRequest accepts schedule_id from either the body or the query string.
type ProcessWaitlistRequest struct {
	ScheduleID string    `json:"schedule_id" form:"schedule_id" validate:"required,uuid"`
	OrgScope   uuid.UUID `json:"-" form:"-"`
}

type ListWaitlistQuery struct {
	OrganizationID string `form:"organization_id" validate:"required,uuid"`
	ScheduleID     string `form:"schedule_id" validate:"omitempty,uuid"`
	ClientID       string `form:"client_id" validate:"omitempty,uuid"`
	Status         string `form:"status" validate:"omitempty,oneof=waiting converted expired"`
}

type StatsQuery struct {
	OrganizationID string `form:"organization_id" validate:"required,uuid"`
	ScheduleID     string `form:"schedule_id" validate:"required,uuid"`
}

// ListFilter is the parsed form of ListWaitlistQuery.
type ListFilter struct {
	OrganizationID uuid.UUID
	ScheduleID     *uuid.UUID
	ClientID       *uuid.UUID
	Status         *WaitlistStatus
}
