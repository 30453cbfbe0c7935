package workers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"job-tracker-system/models"
	"job-tracker-system/services"

	"gorm.io/gorm"
)

// GhostWatcher sweeps applications that have seen no activity for a while
// and moves them to Ghosted. Transitions go through the regular engine so
// every sweep leaves an audit row and a ledger event like any manual change.
// Ghosted is reachable from every non-terminal status, so a sweep can never
// hit an illegal transition.
type GhostWatcher struct {
	DB    *gorm.DB
	Apps  *services.ApplicationService
	After time.Duration // inactivity window before an application counts as ghosted
}

func NewGhostWatcher(db *gorm.DB, apps *services.ApplicationService, afterDays int) *GhostWatcher {
	return &GhostWatcher{
		DB:    db,
		Apps:  apps,
		After: time.Duration(afterDays) * 24 * time.Hour,
	}
}

// PollStale runs the sweep on a fixed interval until ctx is cancelled.
func PollStale(ctx context.Context, w *GhostWatcher, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Printf("Starting ghost watcher (inactivity window %s, every %s)", w.After, interval)

	for {
		select {
		case <-ctx.Done():
			log.Println("Ghost watcher stopped")
			return
		case <-ticker.C:
			if err := w.SweepOnce(); err != nil {
				log.Printf("[GhostWatcher] sweep failed: %v", err)
			}
		}
	}
}

// SweepOnce ghosts every stale application. Per-application failures are
// logged and skipped so one bad row doesn't stall the sweep.
func (w *GhostWatcher) SweepOnce() error {
	cutoff := time.Now().Add(-w.After)

	terminal := []models.ApplicationStatus{models.StatusRejected, models.StatusGhosted}
	var stale []models.Application
	if err := w.DB.Where("status NOT IN ? AND updated_at < ?", terminal, cutoff).
		Find(&stale).Error; err != nil {
		return err
	}

	for _, app := range stale {
		days := int(w.After.Hours() / 24)
		note := fmt.Sprintf("No activity for %d days", days)
		if _, _, err := w.Apps.UpdateStatus(app.UserID, app.ID, models.StatusGhosted, &note); err != nil {
			var transitionErr *services.InvalidTransitionError
			if errors.As(err, &transitionErr) {
				// raced with a concurrent change into a terminal state
				continue
			}
			log.Printf("[GhostWatcher] failed to ghost application %s: %v", app.ID, err)
			continue
		}
		log.Printf("👻 Ghosted stale application %s (%s / %s)", app.ID, app.CompanyName, app.PositionTitle)
	}
	return nil
}
