package db

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"fablab-reservation-backend/config"
	"fablab-reservation-backend/internal/model"
)

// Init initializes the database connection and runs migrations.
func Init(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)

	log.Println("Running database migrations...")
	if err := db.AutoMigrate(
		&model.Machine{},
		&model.Reservation{},
		&model.TimeSlot{},
		&model.StatusChange{},
		&model.BlockedDate{},
		&model.PushSubscription{},
	); err != nil {
		return nil, fmt.Errorf("automigrate failed: %w", err)
	}

	if cfg.ApplyPostgresDDL {
		log.Println("Applying postgres-specific DDL...")
		if err := applyPostgresDDL(db); err != nil {
			log.Printf("Warning: failed to apply some postgres DDL: %v. Continuing without them.", err)
		}
	}

	log.Println("Database initialization complete.")
	return db, nil
}

// applyPostgresDDL creates indexes that AutoMigrate cannot express. These
// only make sense on postgres; sqlite callers should leave the flag off.
func applyPostgresDDL(db *gorm.DB) error {
	ddls := []string{
		"CREATE EXTENSION IF NOT EXISTS btree_gist;",

		// Range queries over a reservation's occupied intervals.
		"CREATE INDEX IF NOT EXISTS idx_time_slots_period ON time_slots " +
			"USING GIST (reservation_id, tstzrange(start_time, end_time, '[)'));",

		// The availability scan always filters on date plus live statuses.
		"CREATE INDEX IF NOT EXISTS idx_reservations_live ON reservations (date) " +
			"WHERE status IN ('Pending', 'Approved', 'Ongoing');",

		"ALTER TABLE time_slots " +
			"ADD CONSTRAINT time_slots_interval_valid CHECK (start_time < end_time);",
	}

	for _, ddl := range ddls {
		if err := db.Exec(ddl).Error; err != nil {
			return fmt.Errorf("DDL failed on %q: %w", ddl, err)
		}
	}
	return nil
}
