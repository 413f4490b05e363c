// services/scheduler.go
package services

import (
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

func (s *LeaderboardService) StartRecomputeScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	// Every 5 minutes: rebuild the leaderboard from approved deposits
	_, _ = sched.NewJob(
		gocron.DurationJob(5*time.Minute),
		gocron.NewTask(func() {
			if err := s.Recompute(); err != nil {
				log.Printf("[Scheduler] Leaderboard recompute failed: %v", err)
				return
			}
			log.Println("✅ Leaderboard recomputed")
		}),
	)
}
