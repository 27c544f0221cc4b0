package constants

import (
	"time"
)

// Redis key configuration
// Pattern: gymflow:{module}:{operation}:{identifier}

// ================== TTL DURATIONS ==================

const (
	TTL_REALTIME_MEDIUM = 1 * time.Minute  // waitlist stats
	TTL_REALTIME_SHORT  = 10 * time.Second // schedule locks
)

// ================== REDIS KEY PREFIXES ==================

const (
	CACHE_PREFIX = "gymflow"
)

// ================== WAITLIST MODULE ==================

const (
	CACHE_KEY_WAITLIST_STATS = CACHE_PREFIX + ":waitlist:stats:schedule:" // + schedule-id
	LOCK_KEY_WAITLIST        = CACHE_PREFIX + ":waitlist:lock:"           // + schedule-id
)

const (
	TTL_WAITLIST_STATS = TTL_REALTIME_MEDIUM
	TTL_WAITLIST_LOCK  = TTL_REALTIME_SHORT
)

// ================== INVALIDATION PATTERNS ==================

const (
	PATTERN_INVALIDATE_WAITLIST_STATS = CACHE_PREFIX + ":waitlist:stats:*"
)

// ================== HELPER FUNCTIONS ==================

func BuildWaitlistStatsKey(scheduleID string) string {
	return CACHE_KEY_WAITLIST_STATS + scheduleID
}

func BuildWaitlistLockKey(scheduleID string) string {
	return LOCK_KEY_WAITLIST + scheduleID
}
