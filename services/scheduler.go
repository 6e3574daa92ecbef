// services/scheduler.go
package services

import (
	"log"
	"time"

	"volunteer-hub-system/models"

	"github.com/go-co-op/gocron/v2"
)

// StartMissionScheduler closes published missions past their end date every
// few minutes so attendance confirmation opens without admin intervention.
func (s *MissionService) StartMissionScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(10*time.Minute),
		gocron.NewTask(func() {
			closed, err := s.CloseExpiredMissions()
			if err != nil {
				log.Printf("[Scheduler] Failed to close expired missions: %v", err)
				return
			}
			if closed > 0 {
				log.Printf("✅ Auto-closed %d expired mission(s)", closed)
			}
		}),
	)
}

// StartReconciliationScheduler rebuilds denormalized point totals nightly for
// users awarded in the last 35 days. This is what rolls monthly_points over
// at the calendar-month boundary.
func (s *PointsService) StartReconciliationScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(0, 5, 0))),
		gocron.NewTask(func() {
			since := time.Now().AddDate(0, 0, -35)
			var userIDs []string
			err := s.DB.Model(&models.VolunteerPoint{}).
				Where("created_at >= ?", since).
				Distinct("user_id").
				Pluck("user_id", &userIDs).Error
			if err != nil {
				log.Printf("[Scheduler] Reconciliation query failed: %v", err)
				return
			}
			var failed int
			for _, id := range userIDs {
				if err := s.RecomputeTotals(id); err != nil {
					failed++
					log.Printf("[Scheduler] Failed to recompute totals for %s: %v", id, err)
				}
			}
			log.Printf("✅ Nightly totals reconciliation: %d user(s), %d failure(s)", len(userIDs), failed)
		}),
	)
}
