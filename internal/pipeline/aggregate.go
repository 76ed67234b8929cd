package pipeline

import (
	"context"

	"github.com/pbaille/toolscout/internal/domain"
	"github.com/pbaille/toolscout/internal/store"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// existenceConcurrency bounds in-flight catalog reads during filtering
const existenceConcurrency = 10

// Dedup keeps the first candidate for each case-insensitive name, in
// first-seen order. Candidates with blank names are dropped.
func Dedup(cands []domain.Candidate) []domain.Candidate {
	seen := make(map[string]bool, len(cands))
	out := make([]domain.Candidate, 0, len(cands))
	for _, c := range cands {
		key := c.Key()
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
	}
	return out
}

// FilterNew drops candidates the catalog already holds. Checks run
// concurrently. A nil catalog keeps everything, and a failed check keeps
// that candidate.
func FilterNew(ctx context.Context, catalog store.Catalog, cands []domain.Candidate, logger *zap.Logger) []domain.Candidate {
	if catalog == nil {
		return cands
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	known := make([]bool, len(cands))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(existenceConcurrency)
	for i, c := range cands {
		g.Go(func() error {
			exists, err := catalog.Exists(gCtx, c.Name)
			if err != nil {
				logger.Warn("existence check failed, treating as new",
					zap.String("name", c.Name), zap.Error(err))
				return nil
			}
			known[i] = exists
			return nil
		})
	}
	_ = g.Wait()

	out := make([]domain.Candidate, 0, len(cands))
	for i, c := range cands {
		if !known[i] {
			out = append(out, c)
		}
	}
	return out
}
