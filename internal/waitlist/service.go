package waitlist

import (
	"context"
	"errors"
	"time"

	"gymflow/internal/bookings"
	"gymflow/internal/notifications"
	"gymflow/internal/schedules"
	"gymflow/internal/shared/apperror"
	"gymflow/internal/shared/clock"
	"gymflow/internal/shared/constants"
	"gymflow/internal/shared/validation"
	"gymflow/pkg/cache"
	"gymflow/pkg/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	msgClassNotFound      = "Class not found"
	msgSpotsAvailable     = "Class still has available spots"
	msgWaitlistDisabled   = "Waitlist is not enabled for this class"
	msgAlreadyOnWaitlist  = "Client is already on waitlist"
	msgAlreadyBooked      = "Client is already booked for this class"
	msgEntryNotFound      = "Waitlist entry not found"
	msgOrganizationDenied = "Access denied for this organization"
)

// NotificationPublisher hands waitlist notifications to the delivery pipeline
type NotificationPublisher interface {
	PublishWaitlistNotification(ctx context.Context, notification *notifications.WaitlistNotification) error
}

// Service interface defines the contract for waitlist business operations
type Service interface {
	// Queue operations
	NextPosition(ctx context.Context, scheduleID uuid.UUID) (int, error)
	AddToWaitlist(ctx context.Context, req *AddToWaitlistRequest) (*WaitlistEntry, error)
	ReorderPositions(ctx context.Context, scheduleID uuid.UUID) error

	// ProcessWaitlistForSchedule fills freed spots from the head of the queue.
	ProcessWaitlistForSchedule(ctx context.Context, scheduleID uuid.UUID) ([]ProcessedEntry, error)
	ProcessWaitlist(ctx context.Context, req *ProcessWaitlistRequest) ([]ProcessedEntry, error)

	// Entry operations
	ListEntries(ctx context.Context, query *ListWaitlistQuery) ([]WaitlistEntry, error)
	UpdateEntry(ctx context.Context, req *UpdateWaitlistRequest) (*WaitlistEntry, error)
	RemoveEntry(ctx context.Context, req *RemoveWaitlistRequest) ([]ProcessedEntry, error)
	GetStats(ctx context.Context, query *StatsQuery) (*WaitlistStatsResponse, error)

	// Event-triggered operations
	HandleCapacityReleased(ctx context.Context, event *notifications.CapacityReleasedEvent) error

	// Background job operations
	DispatchPendingNotifications(ctx context.Context, limit int) (int, error)
	ExpireOverdueEntries(ctx context.Context, limit int) (int, error)
}

// ServiceConfig contains configuration for the waitlist service
type ServiceConfig struct {
	StatsTTL time.Duration
}

// DefaultServiceConfig returns default service configuration
func DefaultServiceConfig() *ServiceConfig {
	return &ServiceConfig{
		StatsTTL: constants.TTL_WAITLIST_STATS,
	}
}

// Dependencies groups what the service needs. Cache, Publisher and Metrics may be nil.
type Dependencies struct {
	Repository Repository
	Schedules  schedules.Repository
	Bookings   bookings.Repository
	Locker     Locker
	Cache      cache.Service
	Publisher  NotificationPublisher
	Clock      clock.Clock
	Logger     *zap.Logger
	Metrics    *metrics.WaitlistMetrics
	Config     *ServiceConfig
}

type service struct {
	repo      Repository
	schedules schedules.Repository
	bookings  bookings.Repository
	locker    Locker
	cache     cache.Service
	publisher NotificationPublisher
	clock     clock.Clock
	log       *zap.Logger
	metrics   *metrics.WaitlistMetrics
	config    *ServiceConfig
}

// NewService creates a new waitlist service
func NewService(deps Dependencies) Service {
	s := &service{
		repo:      deps.Repository,
		schedules: deps.Schedules,
		bookings:  deps.Bookings,
		locker:    deps.Locker,
		cache:     deps.Cache,
		publisher: deps.Publisher,
		clock:     deps.Clock,
		log:       deps.Logger,
		metrics:   deps.Metrics,
		config:    deps.Config,
	}
	if s.locker == nil {
		s.locker = NewLocalLocker()
	}
	if s.clock == nil {
		s.clock = clock.New()
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.config == nil {
		s.config = DefaultServiceConfig()
	}
	return s
}

// NextPosition returns the position a new entry would take at the back of the queue.
func (s *service) NextPosition(ctx context.Context, scheduleID uuid.UUID) (int, error) {
	highest, err := s.repo.MaxWaitingPosition(ctx, scheduleID)
	if err != nil {
		return 0, apperror.Store("failed to compute next position", err)
	}
	return highest + 1, nil
}

// AddToWaitlist puts a client in line for a full class
func (s *service) AddToWaitlist(ctx context.Context, req *AddToWaitlistRequest) (*WaitlistEntry, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	orgID := uuid.MustParse(req.OrganizationID)
	scheduleID := uuid.MustParse(req.ScheduleID)
	clientID := uuid.MustParse(req.ClientID)

	schedule, err := s.schedules.GetByIDForOrganization(ctx, orgID, scheduleID)
	if err != nil {
		if errors.Is(err, schedules.ErrScheduleNotFound) {
			return nil, apperror.NotFound(msgClassNotFound)
		}
		return nil, apperror.Store("failed to load schedule", err)
	}
	if !schedule.IsFull() {
		return nil, apperror.Conflict(msgSpotsAvailable)
	}
	if !schedule.WaitlistEnabled {
		return nil, apperror.Conflict(msgWaitlistDisabled)
	}

	unlock, err := s.lock(ctx, scheduleID)
	if err != nil {
		return nil, err
	}

	entry, err := s.addLocked(ctx, req, orgID, scheduleID, clientID)
	unlock()
	if err != nil {
		return nil, err
	}

	s.invalidateStats(ctx, scheduleID)
	s.metrics.EntryCreated()
	s.log.Info("client joined waitlist",
		zap.String("schedule_id", scheduleID.String()),
		zap.String("client_id", clientID.String()),
		zap.Int("position", entry.Position),
	)

	loaded, err := s.repo.GetEntryByID(ctx, entry.ID)
	if err != nil {
		s.log.Warn("failed to reload waitlist entry", zap.String("entry_id", entry.ID.String()), zap.Error(err))
		return entry, nil
	}
	return loaded, nil
}

func (s *service) addLocked(ctx context.Context, req *AddToWaitlistRequest, orgID, scheduleID, clientID uuid.UUID) (*WaitlistEntry, error) {
	waiting, err := s.repo.HasWaitingEntry(ctx, scheduleID, clientID)
	if err != nil {
		return nil, apperror.Store("failed to check waitlist", err)
	}
	if waiting {
		return nil, apperror.Conflict(msgAlreadyOnWaitlist)
	}

	booked, err := s.bookings.HasConfirmedBooking(ctx, scheduleID, clientID)
	if err != nil {
		return nil, apperror.Store("failed to check bookings", err)
	}
	if booked {
		return nil, apperror.Conflict(msgAlreadyBooked)
	}

	position, err := s.NextPosition(ctx, scheduleID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	entry := &WaitlistEntry{
		OrganizationID:   orgID,
		ScheduleID:       scheduleID,
		ClientID:         clientID,
		Position:         position,
		AutoBook:         true,
		Status:           WaitlistStatusWaiting,
		JoinedAt:         now,
		ExpiresAt:        req.ExpiresAt,
		NotificationType: notifications.NotificationTypeWaitlistJoined,
		Metadata:         req.Metadata,
	}
	if req.AutoBook != nil {
		entry.AutoBook = *req.AutoBook
	}
	if req.PriorityScore != nil {
		entry.PriorityScore = *req.PriorityScore
	}
	if entry.ExpiresAt != nil {
		expiresAt := entry.ExpiresAt.UTC()
		entry.ExpiresAt = &expiresAt
	}

	if err := s.repo.CreateEntry(ctx, entry); err != nil {
		return nil, apperror.Store("failed to create waitlist entry", err)
	}

	if entry.PriorityScore > 0 {
		if err := s.reorderLocked(ctx, scheduleID); err != nil {
			s.log.Error("failed to reorder after join", zap.String("schedule_id", scheduleID.String()), zap.Error(err))
		}
	}

	return entry, nil
}

// ReorderPositions renumbers the waiting queue of a schedule
func (s *service) ReorderPositions(ctx context.Context, scheduleID uuid.UUID) error {
	unlock, err := s.lock(ctx, scheduleID)
	if err != nil {
		return err
	}
	defer unlock()

	if err := s.reorderLocked(ctx, scheduleID); err != nil {
		return apperror.Store("failed to reorder waitlist", err)
	}
	s.invalidateStats(ctx, scheduleID)
	return nil
}

func (s *service) reorderLocked(ctx context.Context, scheduleID uuid.UUID) error {
	start := time.Now()
	changed, err := s.repo.ReorderPositions(ctx, scheduleID, s.clock.Now())
	if err != nil {
		return err
	}
	s.metrics.ObserveReorder(time.Since(start).Seconds())
	if changed > 0 {
		s.log.Debug("waitlist reordered",
			zap.String("schedule_id", scheduleID.String()),
			zap.Int("moved", changed),
		)
	}
	return nil
}

func (s *service) ProcessWaitlistForSchedule(ctx context.Context, scheduleID uuid.UUID) ([]ProcessedEntry, error) {
	unlock, err := s.lock(ctx, scheduleID)
	if err != nil {
		return nil, err
	}

	processed, err := s.processLocked(ctx, scheduleID)
	unlock()
	if err != nil {
		return nil, err
	}

	if len(processed) > 0 {
		s.invalidateStats(ctx, scheduleID)
	}
	return processed, nil
}

// ProcessWaitlist is the request-driven entry point of ProcessWaitlistForSchedule.
func (s *service) ProcessWaitlist(ctx context.Context, req *ProcessWaitlistRequest) ([]ProcessedEntry, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	scheduleID := uuid.MustParse(req.ScheduleID)

	if req.OrgScope != uuid.Nil {
		if _, err := s.schedules.GetByIDForOrganization(ctx, req.OrgScope, scheduleID); err != nil {
			if errors.Is(err, schedules.ErrScheduleNotFound) {
				return nil, apperror.NotFound(msgClassNotFound)
			}
			return nil, apperror.Store("failed to load schedule", err)
		}
	}

	return s.ProcessWaitlistForSchedule(ctx, scheduleID)
}

func (s *service) processLocked(ctx context.Context, scheduleID uuid.UUID) ([]ProcessedEntry, error) {
	processed := make([]ProcessedEntry, 0)

	schedule, err := s.schedules.GetByID(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, schedules.ErrScheduleNotFound) {
			return processed, nil
		}
		return nil, apperror.Store("failed to load schedule", err)
	}
	available := schedule.AvailableSpots()
	if available <= 0 {
		return processed, nil
	}

	entries, err := s.repo.ListWaiting(ctx, scheduleID, available)
	if err != nil {
		return nil, apperror.Store("failed to load waiting entries", err)
	}
	if len(entries) == 0 {
		return processed, nil
	}

	for i := range entries {
		entry := &entries[i]
		now := s.clock.Now()

		if !entry.AutoBook {
			err := s.repo.MarkNotificationPending(ctx, entry.ID, notifications.NotificationTypeWaitlistSpotAvailable, now)
			if err != nil {
				s.log.Error("failed to flag spot available notification",
					zap.String("entry_id", entry.ID.String()),
					zap.Error(err),
				)
				continue
			}
			entry.NotificationSent = false
			entry.NotificationType = notifications.NotificationTypeWaitlistSpotAvailable
			entry.UpdatedAt = now
			processed = append(processed, ProcessedEntry{
				WaitlistEntry:    entry,
				Client:           entry.Client,
				NotificationOnly: true,
			})
			s.metrics.Processed(metrics.OutcomeNotificationOnly)
			continue
		}

		booking := bookings.NewWaitlistBooking(entry.OrganizationID, entry.ScheduleID, entry.ClientID, entry.ID)
		if err := s.repo.ConvertToBooking(ctx, entry, booking, now); err != nil {
			s.log.Error("failed to auto-book waitlist entry",
				zap.String("entry_id", entry.ID.String()),
				zap.String("schedule_id", scheduleID.String()),
				zap.Error(err),
			)
			s.metrics.Processed(metrics.OutcomeBookingFailed)
			continue
		}

		entry.Status = WaitlistStatusConverted
		entry.NotificationSent = false
		entry.NotificationType = notifications.NotificationTypeWaitlistAutoBooked
		entry.UpdatedAt = now
		processed = append(processed, ProcessedEntry{
			Booking:       booking,
			WaitlistEntry: entry,
			Client:        entry.Client,
		})
		s.metrics.Processed(metrics.OutcomeAutoBooked)
	}

	if err := s.reorderLocked(ctx, scheduleID); err != nil {
		s.log.Error("failed to reorder after processing", zap.String("schedule_id", scheduleID.String()), zap.Error(err))
	}

	s.log.Info("waitlist processed",
		zap.String("schedule_id", scheduleID.String()),
		zap.Int("available", available),
		zap.Int("processed", len(processed)),
	)
	return processed, nil
}

func (s *service) ListEntries(ctx context.Context, query *ListWaitlistQuery) ([]WaitlistEntry, error) {
	if err := validation.Struct(query); err != nil {
		return nil, err
	}

	filter := ListFilter{OrganizationID: uuid.MustParse(query.OrganizationID)}
	if query.ScheduleID != "" {
		id := uuid.MustParse(query.ScheduleID)
		filter.ScheduleID = &id
	}
	if query.ClientID != "" {
		id := uuid.MustParse(query.ClientID)
		filter.ClientID = &id
	}
	if query.Status != "" {
		status := WaitlistStatus(query.Status)
		filter.Status = &status
	}

	entries, err := s.repo.ListEntries(ctx, filter)
	if err != nil {
		return nil, apperror.Store("failed to list waitlist", err)
	}
	return entries, nil
}

func (s *service) UpdateEntry(ctx context.Context, req *UpdateWaitlistRequest) (*WaitlistEntry, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	entry, err := s.getScopedEntry(ctx, uuid.MustParse(req.WaitlistID), req.OrgScope)
	if err != nil {
		return nil, err
	}

	unlock, err := s.lock(ctx, entry.ScheduleID)
	if err != nil {
		return nil, err
	}

	err = s.updateLocked(ctx, entry, req)
	unlock()
	if err != nil {
		return nil, err
	}

	s.invalidateStats(ctx, entry.ScheduleID)

	updated, err := s.repo.GetEntryByID(ctx, entry.ID)
	if err != nil {
		if errors.Is(err, ErrEntryNotFound) {
			return nil, apperror.NotFound(msgEntryNotFound)
		}
		return nil, apperror.Store("failed to reload waitlist entry", err)
	}
	return updated, nil
}

func (s *service) updateLocked(ctx context.Context, entry *WaitlistEntry, req *UpdateWaitlistRequest) error {
	now := s.clock.Now()
	fields := make(map[string]interface{})
	needsReorder := false

	if req.AutoBook != nil && *req.AutoBook != entry.AutoBook {
		fields["auto_book"] = *req.AutoBook
	}
	if req.PriorityScore != nil && *req.PriorityScore != entry.PriorityScore {
		fields["priority_score"] = *req.PriorityScore
		needsReorder = true
	}
	if req.Status != nil && WaitlistStatus(*req.Status) != entry.Status {
		status := WaitlistStatus(*req.Status)

		if status == WaitlistStatusWaiting {
			// Back in line: the one-waiting-entry rule still applies.
			waiting, err := s.repo.HasWaitingEntry(ctx, entry.ScheduleID, entry.ClientID)
			if err != nil {
				return apperror.Store("failed to check waitlist", err)
			}
			if waiting {
				return apperror.Conflict(msgAlreadyOnWaitlist)
			}
			position, err := s.NextPosition(ctx, entry.ScheduleID)
			if err != nil {
				return err
			}
			fields["position"] = position
		}

		fields["status"] = status
		fields["notification_sent"] = false
		fields["notification_type"] = status.NotificationTypeFor()
		needsReorder = true
	}

	if len(fields) == 0 {
		return nil
	}
	fields["updated_at"] = now

	if err := s.repo.UpdateFields(ctx, entry.ID, fields); err != nil {
		if errors.Is(err, ErrEntryNotFound) {
			return apperror.NotFound(msgEntryNotFound)
		}
		return apperror.Store("failed to update waitlist entry", err)
	}

	if needsReorder {
		if err := s.reorderLocked(ctx, entry.ScheduleID); err != nil {
			s.log.Error("failed to reorder after update", zap.String("schedule_id", entry.ScheduleID.String()), zap.Error(err))
		}
	}
	return nil
}

// RemoveEntry deletes an entry and lets the queue fill any open spots.
// Anything that fails after the delete is logged and yields an empty result.
func (s *service) RemoveEntry(ctx context.Context, req *RemoveWaitlistRequest) ([]ProcessedEntry, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	entry, err := s.getScopedEntry(ctx, uuid.MustParse(req.WaitlistID), req.OrgScope)
	if err != nil {
		return nil, err
	}

	unlock, err := s.lock(ctx, entry.ScheduleID)
	if err != nil {
		return nil, err
	}
	defer func() {
		unlock()
		s.invalidateStats(ctx, entry.ScheduleID)
	}()

	if err := s.repo.DeleteEntry(ctx, entry.ID); err != nil {
		if errors.Is(err, ErrEntryNotFound) {
			return nil, apperror.NotFound(msgEntryNotFound)
		}
		return nil, apperror.Store("failed to delete waitlist entry", err)
	}
	s.metrics.EntryRemoved()

	if err := s.reorderLocked(ctx, entry.ScheduleID); err != nil {
		s.log.Error("failed to reorder after removal", zap.String("schedule_id", entry.ScheduleID.String()), zap.Error(err))
	}

	processed, err := s.processLocked(ctx, entry.ScheduleID)
	if err != nil {
		s.log.Error("failed to process waitlist after removal", zap.String("schedule_id", entry.ScheduleID.String()), zap.Error(err))
		return []ProcessedEntry{}, nil
	}
	return processed, nil
}

func (s *service) GetStats(ctx context.Context, query *StatsQuery) (*WaitlistStatsResponse, error) {
	if err := validation.Struct(query); err != nil {
		return nil, err
	}
	orgID := uuid.MustParse(query.OrganizationID)
	scheduleID := uuid.MustParse(query.ScheduleID)

	schedule, err := s.schedules.GetByIDForOrganization(ctx, orgID, scheduleID)
	if err != nil {
		if errors.Is(err, schedules.ErrScheduleNotFound) {
			return nil, apperror.NotFound(msgClassNotFound)
		}
		return nil, apperror.Store("failed to load schedule", err)
	}

	build := func() (interface{}, error) {
		return s.buildStats(ctx, schedule)
	}

	if s.cache == nil {
		stats, err := s.buildStats(ctx, schedule)
		if err != nil {
			return nil, apperror.Store("failed to build waitlist stats", err)
		}
		return stats, nil
	}

	var stats WaitlistStatsResponse
	key := constants.BuildWaitlistStatsKey(scheduleID.String())
	if err := s.cache.GetOrSet(ctx, key, s.config.StatsTTL, build, &stats); err != nil {
		return nil, apperror.Store("failed to build waitlist stats", err)
	}
	return &stats, nil
}

func (s *service) buildStats(ctx context.Context, schedule *schedules.ClassSchedule) (*WaitlistStatsResponse, error) {
	counts, err := s.repo.CountByStatus(ctx, schedule.ID)
	if err != nil {
		return nil, err
	}

	stats := &WaitlistStatsResponse{
		OrganizationID:  schedule.OrganizationID,
		ScheduleID:      schedule.ID,
		MaxCapacity:     schedule.MaxCapacity,
		CurrentBookings: schedule.CurrentBookings,
		AvailableSpots:  schedule.AvailableSpots(),
		WaitlistEnabled: schedule.WaitlistEnabled,
		WaitingCount:    counts[WaitlistStatusWaiting],
		ConvertedCount:  counts[WaitlistStatusConverted],
		ExpiredCount:    counts[WaitlistStatusExpired],
		GeneratedAt:     s.clock.Now(),
	}
	for _, n := range counts {
		stats.TotalEntries += n
	}
	return stats, nil
}

// HandleCapacityReleased runs the capacity release pass for the schedule named in event.
func (s *service) HandleCapacityReleased(ctx context.Context, event *notifications.CapacityReleasedEvent) error {
	processed, err := s.ProcessWaitlistForSchedule(ctx, event.ScheduleID)
	if err != nil {
		return err
	}
	s.log.Info("capacity release handled",
		zap.String("event_id", event.ID.String()),
		zap.String("schedule_id", event.ScheduleID.String()),
		zap.Int("freed_spots", event.FreedSpots),
		zap.Int("processed", len(processed)),
	)
	return nil
}

// DispatchPendingNotifications publishes unsent notifications and returns how many went out.
// Entries that fail to publish stay pending for the next run.
func (s *service) DispatchPendingNotifications(ctx context.Context, limit int) (int, error) {
	if s.publisher == nil {
		return 0, nil
	}

	entries, err := s.repo.ListPendingNotifications(ctx, limit)
	if err != nil {
		return 0, apperror.Store("failed to load pending notifications", err)
	}

	sent := 0
	for i := range entries {
		entry := &entries[i]
		notification := s.buildNotification(entry)

		if err := s.publisher.PublishWaitlistNotification(ctx, notification); err != nil {
			s.log.Warn("failed to publish waitlist notification",
				zap.String("entry_id", entry.ID.String()),
				zap.String("type", string(entry.NotificationType)),
				zap.Error(err),
			)
			continue
		}

		if err := s.repo.MarkNotificationSent(ctx, entry.ID, entry.NotificationType); err != nil {
			s.log.Error("failed to mark notification sent", zap.String("entry_id", entry.ID.String()), zap.Error(err))
			continue
		}
		sent++
	}

	return sent, nil
}

func (s *service) buildNotification(entry *WaitlistEntry) *notifications.WaitlistNotification {
	builder := notifications.NewNotificationBuilder(s.clock.Now()).
		WithType(entry.NotificationType).
		WithWaitlistContext(entry.OrganizationID, entry.ScheduleID, entry.ID, entry.Position)

	if entry.Client != nil {
		builder.WithRecipient(entry.ClientID, entry.Client.Email, entry.Client.FullName())
	} else {
		builder.WithRecipient(entry.ClientID, "", "")
	}
	if entry.Schedule != nil {
		builder.WithSchedule(entry.Schedule.Name, entry.Schedule.StartsAt)
	}
	return builder.Build()
}

// ExpireOverdueEntries expires waiting entries past expires_at, one schedule at a time.
func (s *service) ExpireOverdueEntries(ctx context.Context, limit int) (int, error) {
	overdue, err := s.repo.ListOverdue(ctx, s.clock.Now(), limit)
	if err != nil {
		return 0, apperror.Store("failed to load overdue entries", err)
	}

	bySchedule := make(map[uuid.UUID][]uuid.UUID)
	var order []uuid.UUID
	for _, entry := range overdue {
		if _, ok := bySchedule[entry.ScheduleID]; !ok {
			order = append(order, entry.ScheduleID)
		}
		bySchedule[entry.ScheduleID] = append(bySchedule[entry.ScheduleID], entry.ID)
	}

	total := 0
	for _, scheduleID := range order {
		n, err := s.expireSchedule(ctx, scheduleID, bySchedule[scheduleID])
		if err != nil {
			s.log.Error("failed to expire waitlist entries", zap.String("schedule_id", scheduleID.String()), zap.Error(err))
			continue
		}
		total += n
	}

	if total > 0 {
		s.metrics.EntriesExpired(total)
		s.log.Info("expired waitlist entries", zap.Int("count", total))
	}
	return total, nil
}

func (s *service) expireSchedule(ctx context.Context, scheduleID uuid.UUID, ids []uuid.UUID) (int, error) {
	unlock, err := s.lock(ctx, scheduleID)
	if err != nil {
		return 0, err
	}
	defer unlock()

	n, err := s.repo.ExpireEntries(ctx, ids, s.clock.Now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		if err := s.reorderLocked(ctx, scheduleID); err != nil {
			s.log.Error("failed to reorder after expiry", zap.String("schedule_id", scheduleID.String()), zap.Error(err))
		}
		s.invalidateStats(ctx, scheduleID)
	}
	return int(n), nil
}

func (s *service) getScopedEntry(ctx context.Context, id, orgScope uuid.UUID) (*WaitlistEntry, error) {
	entry, err := s.repo.GetEntryByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrEntryNotFound) {
			return nil, apperror.NotFound(msgEntryNotFound)
		}
		return nil, apperror.Store("failed to load waitlist entry", err)
	}
	if orgScope != uuid.Nil && entry.OrganizationID != orgScope {
		return nil, apperror.NotFound(msgEntryNotFound)
	}
	return entry, nil
}

func (s *service) lock(ctx context.Context, scheduleID uuid.UUID) (func(), error) {
	unlock, err := s.locker.Lock(ctx, scheduleID)
	if err != nil {
		return nil, apperror.Store("failed to lock schedule", err)
	}
	return unlock, nil
}

func (s *service) invalidateStats(ctx context.Context, scheduleID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, constants.BuildWaitlistStatsKey(scheduleID.String())); err != nil {
		s.log.Warn("failed to invalidate waitlist stats", zap.String("schedule_id", scheduleID.String()), zap.Error(err))
	}
}
