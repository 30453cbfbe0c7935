// services/scheduler.go
package services

import (
	"log"
	"time"

	"job-tracker-system/models"

	"github.com/go-co-op/gocron/v2"
)

// StartReconcileScheduler periodically verifies every user's cached point
// counter against the ledger sum and repairs drift. The ledger is the
// source of truth; the counter is only a cache.
func (s *GamificationService) StartReconcileScheduler(interval time.Duration) {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			var userIDs []string
			if err := s.DB.Model(&models.User{}).Pluck("id", &userIDs).Error; err != nil {
				log.Printf("[Reconcile] DB error listing users: %v", err)
				return
			}

			repairedCount := 0
			for _, id := range userIDs {
				repaired, err := s.Reconcile(id)
				if err != nil {
					log.Printf("[Reconcile] failed for user %s: %v", id, err)
					continue
				}
				if repaired {
					repairedCount++
				}
			}
			if repairedCount > 0 {
				log.Printf("[Reconcile] repaired point drift for %d user(s)", repairedCount)
			}
		}),
	)
}
