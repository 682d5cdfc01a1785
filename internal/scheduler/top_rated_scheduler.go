package scheduler

import (
	"github.com/avdbroek/plekwijzer-backend/internal/app/service"
	"github.com/avdbroek/plekwijzer-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// TopRatedScheduler keeps the cached top-rated ranking warm. Reviews
// invalidate the cache immediately; this job repopulates it so the first
// reader after an invalidation doesn't pay for the recompute.
type TopRatedScheduler struct {
	cron            *cron.Cron
	locationService service.LocationService
}

func NewTopRatedScheduler(locationService service.LocationService) *TopRatedScheduler {
	return &TopRatedScheduler{
		cron:            cron.New(),
		locationService: locationService,
	}
}

func (s *TopRatedScheduler) Start() error {
	_, err := s.cron.AddFunc("*/5 * * * *", func() {
		if err := s.locationService.RefreshTopRated(); err != nil {
			logger.Error("Failed to refresh top rated cache", err)
			return
		}
		logger.Debug("Top rated cache refreshed", nil)
	})
	if err != nil {
		logger.Error("Failed to schedule top rated refresh", err)
		return err
	}

	s.cron.Start()
	logger.Info("Top rated scheduler started (every 5 minutes)", nil)
	return nil
}

func (s *TopRatedScheduler) Stop() {
	s.cron.Stop()
	logger.Info("Top rated scheduler stopped", nil)
}
