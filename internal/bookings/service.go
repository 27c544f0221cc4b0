package bookings

import (
	"context"
	"errors"

	"gymflow/internal/notifications"
	"gymflow/internal/shared/apperror"
	"gymflow/internal/shared/clock"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CapacityPublisher announces freed capacity (interface to avoid coupling to the transport)
type CapacityPublisher interface {
	PublishCapacityReleased(ctx context.Context, event *notifications.CapacityReleasedEvent) error
}

// Service interface defines the contract for booking business logic
type Service interface {
	GetBooking(ctx context.Context, bookingID, orgScope uuid.UUID) (*ClassBooking, error)
	// CancelBooking cancels a confirmed booking and publishes a capacity released event.
	// orgScope restricts the lookup to one organization; uuid.Nil disables the check.
	CancelBooking(ctx context.Context, bookingID, orgScope uuid.UUID) (*ClassBooking, error)
}

type service struct {
	repo      Repository
	publisher CapacityPublisher
	clock     clock.Clock
	log       *zap.Logger
}

func NewService(repo Repository, publisher CapacityPublisher, clk clock.Clock, log *zap.Logger) Service {
	if clk == nil {
		clk = clock.New()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &service{
		repo:      repo,
		publisher: publisher,
		clock:     clk,
		log:       log,
	}
}

func (s *service) GetBooking(ctx context.Context, bookingID, orgScope uuid.UUID) (*ClassBooking, error) {
	booking, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, ErrBookingNotFound) {
			return nil, apperror.NotFound("Booking not found")
		}
		return nil, apperror.Store("failed to load booking", err)
	}
	if orgScope != uuid.Nil && booking.OrganizationID != orgScope {
		return nil, apperror.NotFound("Booking not found")
	}
	return booking, nil
}

func (s *service) CancelBooking(ctx context.Context, bookingID, orgScope uuid.UUID) (*ClassBooking, error) {
	existing, err := s.GetBooking(ctx, bookingID, orgScope)
	if err != nil {
		return nil, err
	}
	if !existing.Status.CanBeCancelled() {
		return nil, apperror.Conflict("Booking is already cancelled")
	}

	cancelled, err := s.repo.Cancel(ctx, bookingID, s.clock.Now())
	if err != nil {
		switch {
		case errors.Is(err, ErrAlreadyCancelled):
			return nil, apperror.Conflict("Booking is already cancelled")
		case errors.Is(err, ErrBookingNotFound):
			return nil, apperror.NotFound("Booking not found")
		default:
			return nil, apperror.Store("failed to cancel booking", err)
		}
	}

	s.log.Info("booking cancelled",
		zap.String("booking_id", cancelled.ID.String()),
		zap.String("schedule_id", cancelled.ScheduleID.String()),
	)

	if s.publisher == nil {
		return cancelled, nil
	}

	bookingID = cancelled.ID
	event := &notifications.CapacityReleasedEvent{
		ID:             uuid.New(),
		OrganizationID: cancelled.OrganizationID,
		ScheduleID:     cancelled.ScheduleID,
		BookingID:      &bookingID,
		FreedSpots:     1,
		OccurredAt:     s.clock.Now(),
	}
	// The cancellation is committed; a lost event only delays the waitlist until the next trigger.
	if err := s.publisher.PublishCapacityReleased(ctx, event); err != nil {
		s.log.Error("failed to publish capacity released event",
			zap.String("schedule_id", cancelled.ScheduleID.String()),
			zap.Error(err),
		)
	}

	return cancelled, nil
}
