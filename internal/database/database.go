package database

import (
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"

	// registers the pure-Go "sqlite" driver used for local and test DSNs
	_ "modernc.org/sqlite"

	"rentalhub/internal/domain"
)

func Connect(dsn string) (*gorm.DB, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		logrus.Info("connecting to PostgreSQL")
		return gorm.Open(postgres.Open(dsn), &gorm.Config{})
	}

	logrus.WithField("dsn", dsn).Info("using SQLite")

	return gorm.Open(
		gormsqlite.New(gormsqlite.Config{
			DriverName: "sqlite",
			DSN:        dsn,
		}),
		&gorm.Config{},
	)
}

// Migrate applies the schema for every model the service persists. On
// Postgres it also installs the exclusion constraint that rejects
// overlapping active bookings, the cross-instance half of the
// double-booking guard. SQLite has no equivalent; there the repository's
// transactional re-check is the only storage-level guard.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&domain.User{},
		&domain.Brand{},
		&domain.Product{},
		&domain.Booking{},
	); err != nil {
		return err
	}

	if db.Dialector.Name() == "postgres" {
		return applyBookingExclusion(db)
	}
	return nil
}

// ADD CONSTRAINT has no IF NOT EXISTS, hence the DO block.
const bookingExclusionDDL = `
DO $$
BEGIN
	IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'idx_no_double_booking') THEN
		ALTER TABLE bookings
			ADD CONSTRAINT idx_no_double_booking
			EXCLUDE USING gist (
				product_id WITH =,
				tstzrange(start_date, end_date, '[]') WITH &&
			)
			WHERE (status IN ('PENDING', 'CONFIRMED'));
	END IF;
END
$$;`

func applyBookingExclusion(db *gorm.DB) error {
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS btree_gist").Error; err != nil {
		return err
	}
	return db.Exec(bookingExclusionDDL).Error
}
