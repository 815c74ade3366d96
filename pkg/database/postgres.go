package database

import (
	"log"

	"github.com/moveos/scheduling-service/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewPostgresDB(dsn string) *gorm.DB {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Tenant{},
		&models.SessionType{},
		&models.Location{},
		&models.SessionInstance{},
		&models.Booking{},
		&models.WaitlistEntry{},
		&models.MovementEvent{},
	); err != nil {
		log.Fatalf("failed to auto-migrate: %v", err)
	}

	ApplyConstraints(db)

	return db
}

// ApplyConstraints installs the indexes AutoMigrate cannot express. The
// partial unique index is the storage-level backstop for the one-active-
// booking-per-member invariant; the service check alone would race.
func ApplyConstraints(db *gorm.DB) {
	db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_booking_active
		ON bookings (tenant_id, session_instance_id, member_id)
		WHERE status <> 'cancelled'
	`)
	db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_waitlist_member
		ON waitlist_entries (tenant_id, session_instance_id, member_id)
	`)
}
