package schedules

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrScheduleNotFound = errors.New("schedule not found")
	ErrScheduleFull     = errors.New("schedule is at capacity")
)

// Repository defines the data operations on class schedules
type Repository interface {
	Create(ctx context.Context, schedule *ClassSchedule) error
	GetByID(ctx context.Context, id uuid.UUID) (*ClassSchedule, error)
	GetByIDForOrganization(ctx context.Context, orgID, id uuid.UUID) (*ClassSchedule, error)

	// Capacity counters. Both are guarded in SQL so concurrent callers cannot overshoot.
	ReserveSpot(ctx context.Context, id uuid.UUID) error
	ReleaseSpot(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository accepts either a pool or a transaction handle.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, schedule *ClassSchedule) error {
	if err := r.db.WithContext(ctx).Create(schedule).Error; err != nil {
		return fmt.Errorf("failed to create schedule: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*ClassSchedule, error) {
	var schedule ClassSchedule
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&schedule).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleNotFound
		}
		return nil, fmt.Errorf("failed to get schedule: %w", err)
	}
	return &schedule, nil
}

func (r *repository) GetByIDForOrganization(ctx context.Context, orgID, id uuid.UUID) (*ClassSchedule, error) {
	var schedule ClassSchedule
	err := r.db.WithContext(ctx).
		Where("id = ? AND organization_id = ?", id, orgID).
		First(&schedule).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleNotFound
		}
		return nil, fmt.Errorf("failed to get schedule: %w", err)
	}
	return &schedule, nil
}

// ReserveSpot increments current_bookings, failing with ErrScheduleFull when no spot is left.
func (r *repository) ReserveSpot(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&ClassSchedule{}).
		Where("id = ? AND current_bookings < max_capacity", id).
		UpdateColumn("current_bookings", gorm.Expr("current_bookings + 1"))
	if result.Error != nil {
		return fmt.Errorf("failed to reserve spot: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrScheduleFull
	}
	return nil
}

// ReleaseSpot decrements current_bookings. A counter already at zero is left alone.
func (r *repository) ReleaseSpot(ctx context.Context, id uuid.UUID) error {
	err := r.db.WithContext(ctx).
		Model(&ClassSchedule{}).
		Where("id = ? AND current_bookings > 0", id).
		UpdateColumn("current_bookings", gorm.Expr("current_bookings - 1")).Error
	if err != nil {
		return fmt.Errorf("failed to release spot: %w", err)
	}
	return nil
}
