// services/scheduler.go
package services

import (
	"errors"
	"log"
	"time"

	"support-exchange-system/models"

	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
)

// ExpirySweeper force-resolves pending interactions and admin actions whose
// approval window has elapsed. It goes through the same Resolve transition
// as manual approval, so a sweep racing a manual accept can only land once —
// the loser simply observes AlreadyResolved.
type ExpirySweeper struct {
	DB           *gorm.DB
	Interactions *InteractionService
	Admin        *AdminService
	Cfg          *Config
}

func NewExpirySweeper(db *gorm.DB, interactions *InteractionService, admin *AdminService, cfg *Config) *ExpirySweeper {
	return &ExpirySweeper{DB: db, Interactions: interactions, Admin: admin, Cfg: cfg}
}

// Start schedules the periodic sweep.
func (s *ExpirySweeper) Start() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(s.Cfg.SweepInterval),
		gocron.NewTask(func() {
			s.SweepOnce(time.Now())
		}),
	)
}

// SweepOnce resolves everything pending past its deadline as of now.
// Exposed separately from the schedule so it can be driven directly.
func (s *ExpirySweeper) SweepOnce(now time.Time) {
	var interactions []models.Interaction
	if err := s.DB.Where("status = ? AND expires_at <= ?", models.StatusPending, now).
		Find(&interactions).Error; err != nil {
		log.Printf("[Sweeper] DB error listing interactions: %v", err)
	} else {
		for _, inter := range interactions {
			_, err := s.Interactions.Resolve(inter.ID, models.StatusAutoAccepted, SystemResolver)
			switch {
			case errors.Is(err, models.ErrAlreadyResolved):
				log.Printf("[Sweeper] Interaction %s resolved elsewhere first", inter.ID)
			case err != nil:
				log.Printf("[Sweeper] Failed to auto-accept interaction %s: %v", inter.ID, err)
			default:
				log.Printf("✅ Auto-accepted expired interaction %s", inter.ID)
			}
		}
	}

	var actions []models.AdminAction
	if err := s.DB.Where("status = ? AND expires_at <= ?", models.StatusPending, now).
		Find(&actions).Error; err != nil {
		log.Printf("[Sweeper] DB error listing admin actions: %v", err)
		return
	}
	for _, action := range actions {
		_, err := s.Admin.Resolve(action.ID, models.StatusAutoAccepted, SystemResolver)
		switch {
		case errors.Is(err, models.ErrAlreadyResolved):
			log.Printf("[Sweeper] Admin action %s resolved elsewhere first", action.ID)
		case err != nil:
			log.Printf("[Sweeper] Failed to auto-accept admin action %s: %v", action.ID, err)
		default:
			log.Printf("✅ Auto-accepted expired admin action %s", action.ID)
		}
	}
}
