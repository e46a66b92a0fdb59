// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/itsmeyessir/itsmeyessir/internal/domain"
	"github.com/itsmeyessir/itsmeyessir/internal/gateway"
)

// StatsFetcher builds the account's aggregate record from yearly contribution windows.
type StatsFetcher struct {
	fetcher     gateway.Fetcher
	concurrency int
	now         func() time.Time
	logger      *zap.Logger
}

// NewStatsFetcher creates a new StatsFetcher instance.
func NewStatsFetcher(fetcher gateway.Fetcher, concurrency int, now func() time.Time, logger *zap.Logger) *StatsFetcher {
	return &StatsFetcher{
		fetcher:     fetcher,
		concurrency: concurrency,
		now:         now,
		logger:      logger,
	}
}

// Fetch queries every yearly window between the account's creation and now, plus
// the owned repositories, and sums the windows into one record.
// Any failure aborts the fetch.
func (f *StatsFetcher) Fetch(ctx context.Context, login string) (*domain.Profile, error) {
	account, err := f.fetcher.FetchAccount(ctx, login)
	if err != nil {
		return nil, err
	}
	windows := domain.YearlyWindows(account.CreatedAt, f.now())
	if len(windows) == 0 {
		return nil, fmt.Errorf("%w: account %s has no activity range before now", domain.ErrRemote, login)
	}
	f.logger.Info("Fetching contribution windows",
		zap.String("login", account.Login),
		zap.Int("windows", len(windows)))

	results := make([]domain.WindowStats, len(windows))
	var repos []domain.Repository

	// Use an errgroup to fetch all windows and the repository list concurrently.
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(max(f.concurrency, 1))

	eg.Go(func() error {
		var err error
		repos, err = f.fetcher.ListRepositories(egCtx, login)
		return err
	})
	for i, w := range windows {
		i, w := i, w
		eg.Go(func() error {
			s, err := f.fetcher.QueryUserStats(egCtx, login, w)
			if err != nil {
				return err
			}
			results[i] = *s
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	stats := domain.SumWindows(results)
	f.logger.Info("Fetched account stats",
		zap.Int("repositories", len(repos)),
		zap.Int("total_contributions", stats.TotalContributions))
	return &domain.Profile{
		Account:      *account,
		Stats:        stats,
		Repositories: repos,
	}, nil
}
