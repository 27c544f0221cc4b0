package database

import (
	"fmt"
	"testing"

	"gymflow/internal/waitlist"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{DisableForeignKeyConstraintWhenMigrating: true})
	require.NoError(t, err)
	return db
}

func TestMigrateCreatesTables(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, Migrate(db))
	// Running twice is a no-op.
	require.NoError(t, Migrate(db))

	for _, table := range []string{"class_schedules", "clients", "class_bookings", "class_waitlist"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
	assert.True(t, db.Migrator().HasIndex(&waitlist.WaitlistEntry{}, "idx_class_waitlist_waiting_client"))
}

func TestMigrateConstraintsSkipsNonPostgres(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, Migrate(db))

	assert.NoError(t, MigrateConstraints(db))
}
