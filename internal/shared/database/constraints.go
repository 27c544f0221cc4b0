package database

import (
	"fmt"

	"gorm.io/gorm"
)

type checkConstraint struct {
	table string
	name  string
	expr  string
}

var checkConstraints = []checkConstraint{
	{"class_schedules", "chk_class_schedules_capacity", "current_bookings >= 0 AND current_bookings <= max_capacity"},
	{"class_waitlist", "chk_class_waitlist_status", "status IN ('waiting', 'converted', 'expired')"},
	{"class_waitlist", "chk_class_waitlist_priority", "priority_score >= 0"},
	{"class_waitlist", "chk_class_waitlist_position", "position > 0"},
	{"class_bookings", "chk_class_bookings_status", "status IN ('confirmed', 'cancelled')"},
}

// MigrateConstraints adds CHECK constraints that AutoMigrate cannot express.
// PostgreSQL has no ADD CONSTRAINT IF NOT EXISTS, so each one is guarded by a catalog lookup.
func MigrateConstraints(db *gorm.DB) error {
	if db.Dialector.Name() != "postgres" {
		return nil
	}

	for _, c := range checkConstraints {
		stmt := fmt.Sprintf(`
			DO $$
			BEGIN
				IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = '%s') THEN
					ALTER TABLE %s ADD CONSTRAINT %s CHECK (%s);
				END IF;
			END $$;`, c.name, c.table, c.name, c.expr)
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to add constraint %s: %w", c.name, err)
		}
	}

	return nil
}
