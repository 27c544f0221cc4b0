package bookings

import "time"

type BookingResponse struct {
	ID              string     `json:"id"`
	OrganizationID  string     `json:"organization_id"`
	ScheduleID      string     `json:"schedule_id"`
	ClientID        string     `json:"client_id"`
	Status          string     `json:"status"`
	PaymentStatus   string     `json:"payment_status"`
	PaymentAmount   float64    `json:"payment_amount"`
	Notes           string     `json:"notes,omitempty"`
	WaitlistEntryID *string    `json:"waitlist_entry_id,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	CancelledAt     *time.Time `json:"cancelled_at,omitempty"`
}

func (b *ClassBooking) ToResponse() BookingResponse {
	resp := BookingResponse{
		ID:             b.ID.String(),
		OrganizationID: b.OrganizationID.String(),
		ScheduleID:     b.ScheduleID.String(),
		ClientID:       b.ClientID.String(),
		Status:         b.Status.String(),
		PaymentStatus:  string(b.PaymentStatus),
		PaymentAmount:  b.PaymentAmount,
		Notes:          b.Notes,
		CreatedAt:      b.CreatedAt,
		CancelledAt:    b.CancelledAt,
	}
	if b.WaitlistEntryID != nil {
		id := b.WaitlistEntryID.String()
		resp.WaitlistEntryID = &id
	}
	return resp
}
