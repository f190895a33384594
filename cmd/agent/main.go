// The agent is the device-side half of Quench: it keeps the plant list in
// memory, schedules watering reminders, and periodically resyncs with its
// persistence backend.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/quenchapp/quench/internal/config"
	"github.com/quenchapp/quench/internal/models"
	"github.com/quenchapp/quench/internal/notify"
	"github.com/quenchapp/quench/internal/plantlist"
	"github.com/quenchapp/quench/internal/status"
	"github.com/quenchapp/quench/internal/store"
)

func main() {
	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	notifier := buildNotifier(cfg)
	scheduler := notify.NewScheduler(notifier)

	plantStore, err := buildStore(cfg)
	if err != nil {
		slog.Error("configuring plant store", "error", err)
		os.Exit(1)
	}

	manager := plantlist.NewManager(plantStore, scheduler)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if scheduler.RequestPermission() {
		slog.Info("watering reminders enabled")
	} else {
		slog.Info("watering reminders disabled, list operations unaffected")
	}

	if err := manager.Load(ctx); err != nil {
		slog.Error("initial load", "error", err)
	} else {
		slog.Info("plant list loaded", "plants", len(manager.Plants()))
	}

	jobs := cron.New()
	if _, err := jobs.AddFunc(cfg.ResyncSchedule, func() {
		if err := manager.Load(context.Background()); err != nil {
			slog.Error("resyncing plant list", "error", err)
		}
	}); err != nil {
		slog.Error("scheduling resync job", "schedule", cfg.ResyncSchedule, "error", err)
		os.Exit(1)
	}
	if _, err := jobs.AddFunc(cfg.DigestSchedule, func() {
		sendOverdueDigest(manager, notifier)
	}); err != nil {
		slog.Error("scheduling digest job", "schedule", cfg.DigestSchedule, "error", err)
		os.Exit(1)
	}
	jobs.Start()

	<-ctx.Done()
	slog.Info("shutting down")

	cronCtx := jobs.Stop()
	<-cronCtx.Done()
	scheduler.CancelAll()
}

func setupLogging(level string) {
	logLevel := slog.LevelInfo
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))
}

func buildNotifier(cfg config.Config) notify.Notifier {
	if len(cfg.ShoutrrrURLs) == 0 {
		return notify.NoopNotifier{}
	}
	notifier, err := notify.NewShoutrrrNotifier(cfg.ShoutrrrURLs, 10*time.Second)
	if err != nil {
		slog.Error("configuring notifier, falling back to no notifications", "error", err)
		return notify.NoopNotifier{}
	}
	return notifier
}

func buildStore(cfg config.Config) (store.Store, error) {
	switch cfg.StoreBackend {
	case config.StoreBackendAPI:
		return store.NewAPIStore(cfg.APIBaseURL, cfg.APIToken), nil
	default:
		return store.NewFileStore(cfg.PlantsFile), nil
	}
}

// sendOverdueDigest reports every overdue plant in one notification.
// Scheduled reminders fire at the due instant; the digest catches plants
// that were already overdue when the agent started.
func sendOverdueDigest(manager *plantlist.Manager, notifier notify.Notifier) {
	if !notifier.Enabled() {
		return
	}

	now := time.Now()
	var lines []string
	for _, plant := range manager.Plants() {
		info := status.ForPlant(plant, now)
		if info.Type == models.StatusOverdue {
			lines = append(lines, plant.Name+" ("+info.CountdownLabel+" overdue)")
		}
	}
	if len(lines) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	message := "Needs watering: " + strings.Join(lines, ", ")
	if err := notifier.Send(ctx, "Overdue plants", message); err != nil {
		slog.Warn("sending overdue digest", "error", err)
	}
}
