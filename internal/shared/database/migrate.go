package database

import (
	"gymflow/internal/bookings"
	"gymflow/internal/clients"
	"gymflow/internal/schedules"
	"gymflow/internal/waitlist"

	"gorm.io/gorm"
)

// Models lists every table owned by the service, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&schedules.ClassSchedule{},
		&clients.Client{},
		&bookings.ClassBooking{},
		&waitlist.WaitlistEntry{},
	}
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
