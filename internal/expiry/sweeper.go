/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package expiry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"bank-cards-go/internal/store"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const DefaultSchedule = "@daily"

// SweeperConfig contains configuration for Sweeper
type SweeperConfig struct {
	Store    store.CardStore
	Schedule string
	Now      func() time.Time
}

// Sweeper moves ACTIVE cards past their expiry date to EXPIRED on a cron schedule
type Sweeper struct {
	store    store.CardStore
	schedule string
	now      func() time.Time

	cron *cron.Cron

	mutex     sync.Mutex
	lastRun   time.Time
	lastCount int
	totalRuns int
}

// NewSweeper validates the schedule and creates a stopped sweeper
func NewSweeper(cfg SweeperConfig) (*Sweeper, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("card store is required")
	}
	schedule := cfg.Schedule
	if schedule == "" {
		schedule = DefaultSchedule
	}
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("invalid expiry schedule %q: %w", schedule, err)
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Sweeper{
		store:    cfg.Store,
		schedule: schedule,
		now:      now,
		cron:     cron.New(),
	}, nil
}

// Start registers the sweep job and starts the scheduler.
// A first sweep runs immediately to catch up after downtime.
func (s *Sweeper) Start(ctx context.Context) error {
	zap.L().Info("Starting expiry sweeper", zap.String("schedule", s.schedule))

	if _, err := s.RunOnce(ctx); err != nil {
		return fmt.Errorf("startup sweep failed: %w", err)
	}

	if _, err := s.cron.AddFunc(s.schedule, func() {
		if _, err := s.RunOnce(ctx); err != nil {
			zap.L().Error("Expiry sweep failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule expiry sweep: %w", err)
	}

	s.cron.Start()
	zap.L().Info("Expiry sweeper started")
	return nil
}

// Stop halts the scheduler and waits for a running sweep to finish
func (s *Sweeper) Stop() {
	zap.L().Info("Stopping expiry sweeper")
	<-s.cron.Stop().Done()
	zap.L().Info("Expiry sweeper stopped")
}

// RunOnce expires every ACTIVE card whose expiry date is before today.
func (s *Sweeper) RunOnce(ctx context.Context) (int, error) {
	asOf := s.now()
	count, err := s.store.ExpireCards(ctx, asOf)
	if err != nil {
		return 0, err
	}

	s.mutex.Lock()
	s.lastRun = asOf
	s.lastCount = count
	s.totalRuns++
	s.mutex.Unlock()

	if count > 0 {
		zap.L().Info("Expiry sweep completed", zap.Int("expired", count), zap.Time("as_of", asOf))
	} else {
		zap.L().Debug("Expiry sweep found nothing to expire", zap.Time("as_of", asOf))
	}
	return count, nil
}

// Stats reports the last sweep time, how many cards it expired and the run count.
func (s *Sweeper) Stats() (time.Time, int, int) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.lastRun, s.lastCount, s.totalRuns
}
