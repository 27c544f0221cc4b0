package waitlist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gymflow/internal/bookings"
	"gymflow/internal/notifications"
	"gymflow/internal/schedules"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrEntryNotFound   = errors.New("waitlist entry not found")
	ErrEntryNotWaiting = errors.New("waitlist entry is no longer waiting")
)

// canonicalOrder is the queue order. The id tie-break keeps it total.
const canonicalOrder = "priority_score DESC, joined_at ASC, id ASC"

// Repository interface defines the contract for waitlist data operations
type Repository interface {
	// Entry operations
	CreateEntry(ctx context.Context, entry *WaitlistEntry) error
	GetEntryByID(ctx context.Context, id uuid.UUID) (*WaitlistEntry, error)
	ListEntries(ctx context.Context, filter ListFilter) ([]WaitlistEntry, error)
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	DeleteEntry(ctx context.Context, id uuid.UUID) error

	// Queue operations
	HasWaitingEntry(ctx context.Context, scheduleID, clientID uuid.UUID) (bool, error)
	MaxWaitingPosition(ctx context.Context, scheduleID uuid.UUID) (int, error)
	ListWaiting(ctx context.Context, scheduleID uuid.UUID, limit int) ([]WaitlistEntry, error)
	ReorderPositions(ctx context.Context, scheduleID uuid.UUID, at time.Time) (int, error)

	// ConvertToBooking reserves a spot, inserts the booking and converts the entry atomically.
	ConvertToBooking(ctx context.Context, entry *WaitlistEntry, booking *bookings.ClassBooking, at time.Time) error
	MarkNotificationPending(ctx context.Context, id uuid.UUID, notType notifications.NotificationType, at time.Time) error

	// Batch operations
	ListPendingNotifications(ctx context.Context, limit int) ([]WaitlistEntry, error)
	MarkNotificationSent(ctx context.Context, id uuid.UUID, notType notifications.NotificationType) error
	ListOverdue(ctx context.Context, now time.Time, limit int) ([]WaitlistEntry, error)
	ExpireEntries(ctx context.Context, ids []uuid.UUID, at time.Time) (int64, error)

	// Analytics
	CountByStatus(ctx context.Context, scheduleID uuid.UUID) (map[WaitlistStatus]int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new waitlist repository
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateEntry(ctx context.Context, entry *WaitlistEntry) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to create waitlist entry: %w", err)
	}
	return nil
}

func (r *repository) GetEntryByID(ctx context.Context, id uuid.UUID) (*WaitlistEntry, error) {
	var entry WaitlistEntry
	err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Schedule").
		Where("id = ?", id).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, fmt.Errorf("failed to get waitlist entry: %w", err)
	}
	return &entry, nil
}

func (r *repository) ListEntries(ctx context.Context, filter ListFilter) ([]WaitlistEntry, error) {
	query := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Schedule").
		Where("organization_id = ?", filter.OrganizationID)

	if filter.ScheduleID != nil {
		query = query.Where("schedule_id = ?", *filter.ScheduleID)
	}
	if filter.ClientID != nil {
		query = query.Where("client_id = ?", *filter.ClientID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	var entries []WaitlistEntry
	if err := query.Order("position ASC").Order(canonicalOrder).Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to list waitlist entries: %w", err)
	}
	return entries, nil
}

func (r *repository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	result := r.db.WithContext(ctx).
		Model(&WaitlistEntry{}).
		Where("id = ?", id).
		Updates(fields)
	if result.Error != nil {
		return fmt.Errorf("failed to update waitlist entry: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrEntryNotFound
	}
	return nil
}

func (r *repository) DeleteEntry(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&WaitlistEntry{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete waitlist entry: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrEntryNotFound
	}
	return nil
}

func (r *repository) HasWaitingEntry(ctx context.Context, scheduleID, clientID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&WaitlistEntry{}).
		Where("schedule_id = ? AND client_id = ? AND status = ?", scheduleID, clientID, WaitlistStatusWaiting).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check waitlist entry: %w", err)
	}
	return count > 0, nil
}

func (r *repository) MaxWaitingPosition(ctx context.Context, scheduleID uuid.UUID) (int, error) {
	var highest int
	err := r.db.WithContext(ctx).
		Model(&WaitlistEntry{}).
		Select("COALESCE(MAX(position), 0)").
		Where("schedule_id = ? AND status = ?", scheduleID, WaitlistStatusWaiting).
		Scan(&highest).Error
	if err != nil {
		return 0, fmt.Errorf("failed to get max waitlist position: %w", err)
	}
	return highest, nil
}

// ListWaiting returns up to limit waiting entries in queue order, with clients loaded.
func (r *repository) ListWaiting(ctx context.Context, scheduleID uuid.UUID, limit int) ([]WaitlistEntry, error) {
	var entries []WaitlistEntry
	err := r.db.WithContext(ctx).
		Preload("Client").
		Where("schedule_id = ? AND status = ?", scheduleID, WaitlistStatusWaiting).
		Order(canonicalOrder).
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list waiting entries: %w", err)
	}
	return entries, nil
}

// ReorderPositions renumbers waiting entries 1..N in queue order and
// returns how many rows actually moved.
func (r *repository) ReorderPositions(ctx context.Context, scheduleID uuid.UUID, at time.Time) (int, error) {
	changed := 0

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var entries []WaitlistEntry
		err := tx.Select("id", "position").
			Where("schedule_id = ? AND status = ?", scheduleID, WaitlistStatusWaiting).
			Order(canonicalOrder).
			Find(&entries).Error
		if err != nil {
			return fmt.Errorf("failed to load waiting entries: %w", err)
		}

		for i, entry := range entries {
			position := i + 1
			if entry.Position == position {
				continue
			}
			err := tx.Model(&WaitlistEntry{}).
				Where("id = ?", entry.ID).
				Updates(map[string]interface{}{"position": position, "updated_at": at}).Error
			if err != nil {
				return fmt.Errorf("failed to update position: %w", err)
			}
			changed++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return changed, nil
}

func (r *repository) ConvertToBooking(ctx context.Context, entry *WaitlistEntry, booking *bookings.ClassBooking, at time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := schedules.NewRepository(tx).ReserveSpot(ctx, entry.ScheduleID); err != nil {
			return err
		}

		if err := bookings.NewRepository(tx).Create(ctx, booking); err != nil {
			return err
		}

		result := tx.Model(&WaitlistEntry{}).
			Where("id = ? AND status = ?", entry.ID, WaitlistStatusWaiting).
			Updates(map[string]interface{}{
				"status":            WaitlistStatusConverted,
				"notification_sent": false,
				"notification_type": notifications.NotificationTypeWaitlistAutoBooked,
				"updated_at":        at,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to convert waitlist entry: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrEntryNotWaiting
		}
		return nil
	})
}

func (r *repository) MarkNotificationPending(ctx context.Context, id uuid.UUID, notType notifications.NotificationType, at time.Time) error {
	return r.UpdateFields(ctx, id, map[string]interface{}{
		"notification_sent": false,
		"notification_type": notType,
		"updated_at":        at,
	})
}

// ListPendingNotifications returns entries whose latest transition has not been published yet.
func (r *repository) ListPendingNotifications(ctx context.Context, limit int) ([]WaitlistEntry, error) {
	var entries []WaitlistEntry
	err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Schedule").
		Where("notification_sent = ? AND notification_type IS NOT NULL AND notification_type <> ''", false).
		Order("updated_at ASC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list pending notifications: %w", err)
	}
	return entries, nil
}

// MarkNotificationSent only flips the flag if no newer transition replaced notType meanwhile.
func (r *repository) MarkNotificationSent(ctx context.Context, id uuid.UUID, notType notifications.NotificationType) error {
	err := r.db.WithContext(ctx).
		Model(&WaitlistEntry{}).
		Where("id = ? AND notification_type = ?", id, notType).
		UpdateColumn("notification_sent", true).Error
	if err != nil {
		return fmt.Errorf("failed to mark notification sent: %w", err)
	}
	return nil
}

func (r *repository) ListOverdue(ctx context.Context, now time.Time, limit int) ([]WaitlistEntry, error) {
	var entries []WaitlistEntry
	err := r.db.WithContext(ctx).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at <= ?", WaitlistStatusWaiting, now).
		Order("expires_at ASC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list overdue entries: %w", err)
	}
	return entries, nil
}

func (r *repository) ExpireEntries(ctx context.Context, ids []uuid.UUID, at time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Model(&WaitlistEntry{}).
		Where("id IN ? AND status = ?", ids, WaitlistStatusWaiting).
		Updates(map[string]interface{}{
			"status":            WaitlistStatusExpired,
			"notification_sent": false,
			"notification_type": notifications.NotificationTypeWaitlistExpired,
			"updated_at":        at,
		})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to expire entries: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *repository) CountByStatus(ctx context.Context, scheduleID uuid.UUID) (map[WaitlistStatus]int64, error) {
	var rows []struct {
		Status WaitlistStatus
		Count  int64
	}
	err := r.db.WithContext(ctx).
		Model(&WaitlistEntry{}).
		Select("status, COUNT(*) AS count").
		Where("schedule_id = ?", scheduleID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count waitlist entries: %w", err)
	}

	counts := make(map[WaitlistStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
