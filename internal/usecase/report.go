package usecase

import (
	"sort"

	"github.com/montanaflynn/stats"

	"github.com/itsmeyessir/itsmeyessir/internal/domain"
)

// CacheSummary describes the distribution of cached net line counts.
type CacheSummary struct {
	Repositories int              `json:"repositories"`
	Totals       domain.LocTotals `json:"totals"`
	Net          int64            `json:"net"`
	MeanNet      float64          `json:"mean_net"`
	MedianNet    float64          `json:"median_net"`
	MaxNet       float64          `json:"max_net"`
	Largest      string           `json:"largest,omitempty"`
}

// SummarizeCache computes a CacheSummary. An empty cache yields zero values.
func SummarizeCache(cache domain.LocCache) (*CacheSummary, error) {
	totals := cache.Totals()
	summary := &CacheSummary{
		Repositories: len(cache),
		Totals:       totals,
		Net:          totals.Net(),
	}
	if len(cache) == 0 {
		return summary, nil
	}

	keys := make([]string, 0, len(cache))
	for key := range cache {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	nets := make(stats.Float64Data, 0, len(keys))
	var largest int64
	for i, key := range keys {
		e := cache[key]
		net := e.Additions - e.Deletions
		nets = append(nets, float64(net))
		if i == 0 || net > largest {
			largest = net
			summary.Largest = key
		}
	}

	var err error
	if summary.MeanNet, err = stats.Mean(nets); err != nil {
		return nil, err
	}
	if summary.MedianNet, err = stats.Median(nets); err != nil {
		return nil, err
	}
	if summary.MaxNet, err = stats.Max(nets); err != nil {
		return nil, err
	}
	return summary, nil
}
