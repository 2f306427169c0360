package main

import (
	"context"
	"os"
	"time"

	"github.com/tarslive/waitlist-api/config"
	"github.com/tarslive/waitlist-api/domain/waitlist"
	"github.com/tarslive/waitlist-api/internal/log"
	"github.com/tarslive/waitlist-api/internal/models"
)

// sampleEntries returns development fixtures with staggered join
// dates. The oldest entry is admin-flagged so the dashboard can be
// exercised locally.
func sampleEntries(now time.Time) []*models.WaitlistEntry {
	day := 24 * time.Hour

	return []*models.WaitlistEntry{
		{Email: "alice1@gmail.com", Name: "Alice", IsAdmin: true, CreatedAt: now.Add(-5 * day)},
		{Email: "bob2@gmail.com", Name: "Bob", CreatedAt: now.Add(-4 * day)},
		{Email: "carol3@gmail.com", Name: "Carol", CreatedAt: now.Add(-3 * day)},
		{Email: "dave4@gmail.com", Name: "Dave", CreatedAt: now.Add(-2 * day)},
		{Email: "eve5@gmail.com", Name: "Eve", CreatedAt: now.Add(-1 * day)},
	}
}

func runSeed(logger *log.Logger) {
	appEnv := config.GetAppEnv()
	if err := config.ValidateAutoMigrateAllowed(appEnv); err != nil {
		logger.Error("Seeding is restricted to development environments", "app_env", appEnv)
		os.Exit(1)
	}

	dbCfg := &config.DBConfig{}
	db, err := config.NewDatabase(logger, dbCfg)
	if err != nil {
		logger.Error("Failed to connect to database for seeding", "error", err.Error())
		os.Exit(1)
	}
	defer config.CloseDatabase(db, logger)

	if err := config.AutoMigrate(logger, db, models.ModelRegistry...); err != nil {
		logger.Error("Failed to migrate schema before seeding", "error", err.Error())
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	repository := waitlist.NewWaitlistRepository(db)
	if err := repository.ResetWithSeedEntries(ctx, sampleEntries(time.Now())); err != nil {
		logger.Error("Failed to seed waitlist entries", "error", err.Error())
		os.Exit(1)
	}

	logger.Info("Seeded waitlist entries")
}
