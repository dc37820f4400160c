// Package scheduler runs the housekeeping jobs of the register on cron specs.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"foodtruck/pos/domain"
	"foodtruck/pos/internal/service"
)

// Jobs is the part of the service the scheduler drives.
type Jobs interface {
	CloseShift(ctx context.Context) (*domain.Shift, error)
	SweepLowStock(ctx context.Context) ([]domain.StockItem, error)
}

type Scheduler struct {
	cron *cron.Cron
	jobs Jobs
	log  *zap.Logger
}

// New registers the jobs whose spec is non-empty. Specs accept the standard
// five cron fields and descriptors such as "@every 30m".
func New(jobs Jobs, loc *time.Location, autoCloseSpec, lowStockSpec string, log *zap.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron: cron.New(cron.WithLocation(loc)),
		jobs: jobs,
		log:  log.Named("scheduler"),
	}
	if autoCloseSpec != "" {
		if _, err := s.cron.AddFunc(autoCloseSpec, s.autoClose); err != nil {
			return nil, fmt.Errorf("invalid shift auto-close schedule %q: %w", autoCloseSpec, err)
		}
	}
	if lowStockSpec != "" {
		if _, err := s.cron.AddFunc(lowStockSpec, s.lowStock); err != nil {
			return nil, fmt.Errorf("invalid low stock schedule %q: %w", lowStockSpec, err)
		}
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

func (s *Scheduler) autoClose() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	shift, err := s.jobs.CloseShift(ctx)
	switch {
	case errors.Is(err, service.ErrNoOpenShift):
		s.log.Debug("auto-close skipped, no open shift")
	case err != nil:
		s.log.Error("auto-close failed", zap.Error(err))
	default:
		s.log.Info("shift auto-closed", zap.String("name", shift.Name), zap.Float64("sales", shift.TotalSales))
	}
}

func (s *Scheduler) lowStock() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	items, err := s.jobs.SweepLowStock(ctx)
	if err != nil {
		s.log.Error("low stock sweep failed", zap.Error(err))
		return
	}
	s.log.Debug("low stock sweep", zap.Int("items", len(items)))
}
