package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/itsmeyessir/itsmeyessir/internal/domain"
	"github.com/itsmeyessir/itsmeyessir/internal/gateway"
)

// LocAggregator sums lines added and deleted by the account across its repositories.
// Repositories already present in the cache are never walked again.
type LocAggregator struct {
	fetcher     gateway.Fetcher
	concurrency int
	logger      *zap.Logger
}

// NewLocAggregator creates a new LocAggregator instance.
func NewLocAggregator(fetcher gateway.Fetcher, concurrency int, logger *zap.Logger) *LocAggregator {
	return &LocAggregator{
		fetcher:     fetcher,
		concurrency: concurrency,
		logger:      logger,
	}
}

type repoCount struct {
	entry    domain.LocEntry
	complete bool
}

// Aggregate walks the history of every repository missing from cache, stores each
// complete count in cache and returns the totals over all cache entries.
//
// A repository whose history walk fails part way is counted with its partial sum
// for this run but is not cached, so a later run walks it again. Only a cancelled
// ctx makes Aggregate fail. cache must not be nil.
func (a *LocAggregator) Aggregate(ctx context.Context, account domain.Account, repos []domain.Repository, cache domain.LocCache) (domain.LocTotals, error) {
	var pending []domain.Repository
	queued := make(map[string]bool)
	for _, repo := range repos {
		key := repo.Key()
		if _, ok := cache[key]; ok || queued[key] {
			continue
		}
		queued[key] = true
		pending = append(pending, repo)
	}
	a.logger.Info("Aggregating lines of code",
		zap.Int("repositories", len(repos)),
		zap.Int("cached", len(repos)-len(pending)))

	counts := make([]repoCount, len(pending))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(max(a.concurrency, 1))
	for i, repo := range pending {
		i, repo := i, repo
		eg.Go(func() error {
			entry, err := a.countRepository(egCtx, account, repo)
			counts[i] = repoCount{entry: entry, complete: err == nil}
			if err == nil {
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			a.logger.Warn("History walk stopped early, not caching repository",
				zap.String("repository", repo.Key()),
				zap.Int64("partial_additions", entry.Additions),
				zap.Int64("partial_deletions", entry.Deletions),
				zap.Error(err))
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return domain.LocTotals{}, fmt.Errorf("line count aggregation cancelled: %w", err)
	}

	// Single writer: the cache is only touched after every walk has finished.
	var partial domain.LocTotals
	for i, c := range counts {
		if c.complete {
			cache[pending[i].Key()] = c.entry
			continue
		}
		partial.Add(c.entry)
	}
	totals := cache.Totals()
	totals.Additions += partial.Additions
	totals.Deletions += partial.Deletions

	a.logger.Info("Aggregation complete",
		zap.Int64("additions", totals.Additions),
		zap.Int64("deletions", totals.Deletions))
	return totals, nil
}

// countRepository pages through the default branch history and sums the commits
// authored by the account. On error it returns the sum so far.
func (a *LocAggregator) countRepository(ctx context.Context, account domain.Account, repo domain.Repository) (domain.LocEntry, error) {
	var (
		entry  domain.LocEntry
		cursor string
	)
	for {
		page, err := a.fetcher.QueryRepositoryCommitHistory(ctx, repo.Owner, repo.Name, cursor)
		if err != nil {
			return entry, err
		}
		for _, c := range page.Commits {
			if account.Authored(c) {
				entry.Additions += int64(c.Additions)
				entry.Deletions += int64(c.Deletions)
			}
		}
		if !page.HasNextPage {
			a.logger.Debug("Counted repository",
				zap.String("repository", repo.Key()),
				zap.Int64("additions", entry.Additions),
				zap.Int64("deletions", entry.Deletions))
			return entry, nil
		}
		if page.EndCursor == "" {
			return entry, errors.New("history page has a next page but no cursor")
		}
		cursor = page.EndCursor
	}
}
