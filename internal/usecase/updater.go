package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/itsmeyessir/itsmeyessir/internal/config"
	"github.com/itsmeyessir/itsmeyessir/internal/domain"
	"github.com/itsmeyessir/itsmeyessir/internal/gateway"
	"github.com/itsmeyessir/itsmeyessir/internal/store"
	"github.com/itsmeyessir/itsmeyessir/internal/svg"
)

// Result is what a run rendered into the targets.
type Result struct {
	Stats  domain.AccountStats `json:"stats"`
	Loc    domain.LocTotals    `json:"loc"`
	Uptime string              `json:"uptime"`
}

// Updater runs one refresh: fetch stats, aggregate lines of code, patch every target.
type Updater struct {
	cfg     *config.Config
	stats   *StatsFetcher
	loc     *LocAggregator
	store   store.LocStore
	patcher *svg.Patcher
	now     func() time.Time
	logger  *zap.Logger
}

// Option customizes an Updater.
type Option func(*Updater)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(u *Updater) {
		u.now = now
	}
}

// NewUpdater wires the use cases around the given capabilities.
func NewUpdater(cfg *config.Config, fetcher gateway.Fetcher, locStore store.LocStore, patcher *svg.Patcher, logger *zap.Logger, opts ...Option) *Updater {
	u := &Updater{
		cfg:     cfg,
		store:   locStore,
		patcher: patcher,
		now:     time.Now,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(u)
	}
	u.stats = NewStatsFetcher(fetcher, cfg.Concurrency, u.now, logger)
	u.loc = NewLocAggregator(fetcher, cfg.Concurrency, logger)
	return u
}

// Run performs the refresh. Targets are only written once every stat is known,
// so a failed fetch or cache save leaves them untouched. A failing target does
// not stop the others; their errors are joined.
func (u *Updater) Run(ctx context.Context) (*Result, error) {
	if u.cfg.Token == "" {
		return nil, fmt.Errorf("%w: GITHUB_TOKEN is not set", domain.ErrAuth)
	}

	profile, err := u.stats.Fetch(ctx, u.cfg.Login)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch stats: %w", err)
	}

	cache := domain.LocCache{}
	if u.cfg.Refresh {
		u.logger.Info("Refresh requested, ignoring cached line counts")
	} else if loaded, err := u.store.Load(ctx); err != nil {
		u.logger.Warn("Ignoring unreadable line count cache", zap.Error(err))
	} else if loaded != nil {
		cache = loaded
	}

	totals, err := u.loc.Aggregate(ctx, profile.Account, profile.Repositories, cache)
	if err != nil {
		return nil, err
	}
	if err := u.store.Save(ctx, cache); err != nil {
		return nil, fmt.Errorf("failed to save line count cache: %w", err)
	}

	result := &Result{
		Stats:  profile.Stats,
		Loc:    totals,
		Uptime: domain.Elapsed(u.cfg.StartDate.Time, u.now()).String(),
	}
	display := profile.Stats.Display(totals)

	var errs []error
	for _, target := range u.cfg.Targets {
		if err := u.patcher.Patch(target, display, result.Uptime); err != nil {
			u.logger.Error("Failed to patch target", zap.String("file", target), zap.Error(err))
			errs = append(errs, err)
		}
	}
	return result, errors.Join(errs...)
}
