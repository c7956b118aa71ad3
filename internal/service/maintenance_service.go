package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/syntheses-api/internal/session"
)

type tempSweeper interface {
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

// MaintenanceService holds the periodic housekeeping tasks.
type MaintenanceService struct {
	sessions session.Store
	temp     tempSweeper
	tempTTL  time.Duration
	metrics  *MetricsService
	logger   *zap.Logger
}

// NewMaintenanceService constructs a MaintenanceService.
func NewMaintenanceService(sessions session.Store, temp tempSweeper, tempTTL time.Duration, metrics *MetricsService, logger *zap.Logger) *MaintenanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if tempTTL <= 0 {
		tempTTL = time.Hour
	}
	return &MaintenanceService{sessions: sessions, temp: temp, tempTTL: tempTTL, metrics: metrics, logger: logger}
}

// SweepSessions drops expired admin sessions and refreshes the active gauge.
func (s *MaintenanceService) SweepSessions(ctx context.Context) error {
	removed, err := s.sessions.SweepExpired(ctx)
	if err != nil {
		return err
	}
	if removed > 0 {
		s.logger.Info("expired sessions swept", zap.Int("count", removed))
	}
	active, err := s.sessions.Count(ctx)
	if err != nil {
		return err
	}
	s.metrics.SetActiveSessions(active)
	return nil
}

// SweepTemp removes temp parts left behind by interrupted uploads.
func (s *MaintenanceService) SweepTemp(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	removed, err := s.temp.CleanupOlderThan(s.tempTTL)
	if len(removed) > 0 {
		s.metrics.AddTempSwept(len(removed))
		s.logger.Info("stale temp files removed", zap.Int("count", len(removed)))
	}
	return err
}
