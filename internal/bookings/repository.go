package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gymflow/internal/schedules"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrBookingNotFound  = errors.New("booking not found")
	ErrAlreadyCancelled = errors.New("booking is already cancelled")
)

// Repository interface defines the contract for booking data operations
type Repository interface {
	Create(ctx context.Context, booking *ClassBooking) error
	GetByID(ctx context.Context, id uuid.UUID) (*ClassBooking, error)
	HasConfirmedBooking(ctx context.Context, scheduleID, clientID uuid.UUID) (bool, error)
	CountConfirmed(ctx context.Context, scheduleID uuid.UUID) (int64, error)

	// Cancel marks the booking cancelled and frees its spot in one transaction.
	Cancel(ctx context.Context, id uuid.UUID, at time.Time) (*ClassBooking, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository accepts either a pool or a transaction handle.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, booking *ClassBooking) error {
	if err := r.db.WithContext(ctx).Create(booking).Error; err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*ClassBooking, error) {
	var booking ClassBooking
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&booking).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &booking, nil
}

func (r *repository) HasConfirmedBooking(ctx context.Context, scheduleID, clientID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&ClassBooking{}).
		Where("schedule_id = ? AND client_id = ? AND status = ?", scheduleID, clientID, StatusConfirmed).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check booking: %w", err)
	}
	return count > 0, nil
}

func (r *repository) CountConfirmed(ctx context.Context, scheduleID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&ClassBooking{}).
		Where("schedule_id = ? AND status = ?", scheduleID, StatusConfirmed).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return count, nil
}

func (r *repository) Cancel(ctx context.Context, id uuid.UUID, at time.Time) (*ClassBooking, error) {
	var cancelled ClassBooking

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&ClassBooking{}).
			Where("id = ? AND status = ?", id, StatusConfirmed).
			Updates(map[string]interface{}{
				"status":       StatusCancelled,
				"cancelled_at": at,
				"updated_at":   at,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to cancel booking: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			if err := tx.Where("id = ?", id).First(&cancelled).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrBookingNotFound
				}
				return fmt.Errorf("failed to get booking: %w", err)
			}
			return ErrAlreadyCancelled
		}

		if err := tx.Where("id = ?", id).First(&cancelled).Error; err != nil {
			return fmt.Errorf("failed to reload booking: %w", err)
		}

		return schedules.NewRepository(tx).ReleaseSpot(ctx, cancelled.ScheduleID)
	})
	if err != nil {
		return nil, err
	}

	return &cancelled, nil
}
