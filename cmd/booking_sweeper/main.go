package main

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"rentalhub/internal/config"
	"rentalhub/internal/database"
	"rentalhub/internal/repository"
)

// Marks confirmed bookings whose end date has passed as completed. Run from
// cron.
func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logrus.Fatalf("db connect: %v", err)
	}

	bookings := repository.NewBookingRepository(db)

	n, err := bookings.CompleteFinished(context.Background(), time.Now().UTC())
	if err != nil {
		logrus.Fatalf("sweep failed: %v", err)
	}
	logrus.WithField("completed", n).Info("booking sweep finished")
}
