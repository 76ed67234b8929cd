// Package classifier assigns category, difficulty, pricing and relevance to
// tool candidates, through a generative model when one is configured and a
// keyword heuristic otherwise.
package classifier

import (
	"context"
	"time"

	"github.com/pbaille/toolscout/internal/config"
	"github.com/pbaille/toolscout/internal/domain"
	"go.uber.org/zap"
)

// Classification is the label set for one candidate
type Classification struct {
	Category   domain.Category
	Difficulty domain.Difficulty
	Pricing    domain.Pricing
	IsRelevant bool
}

// Strategy classifies one batch. The result is keyed by position in the
// batch and may be partial.
type Strategy interface {
	ClassifyBatch(ctx context.Context, batch []domain.Candidate) (map[int]Classification, error)
}

// Completer is a single-shot text generation call
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Batcher splits candidates into fixed-size batches and runs them through a
// strategy one batch at a time. Classify always yields exactly one result per
// candidate, each with a canonical category.
type Batcher struct {
	strategy Strategy
	size     int
	delay    time.Duration
	logger   *zap.Logger
}

// NewBatcher wraps a strategy. A non-positive size means 15.
func NewBatcher(strategy Strategy, size int, delay time.Duration, logger *zap.Logger) *Batcher {
	if size <= 0 {
		size = 15
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Batcher{strategy: strategy, size: size, delay: delay, logger: logger}
}

// NewFromConfig returns a model-backed batcher with heuristic fallback when a
// model key is configured, and a heuristic-only batcher otherwise
func NewFromConfig(ctx context.Context, cfg *config.Config, logger *zap.Logger) *Batcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	heuristicOnly := NewBatcher(Heuristic{}, cfg.Pipeline.BatchSize, 0, logger)
	if !cfg.ModelConfigured() {
		return heuristicOnly
	}

	var llm Completer
	switch cfg.Model.Provider {
	case "anthropic":
		llm = NewAnthropic(cfg.Model.APIKey, cfg.Model.Name, cfg.Model.Timeout)
	default:
		g, err := NewGemini(ctx, cfg.Model.APIKey, cfg.Model.Name, cfg.Model.Timeout)
		if err != nil {
			logger.Warn("model client unavailable, using heuristic classification", zap.Error(err))
			return heuristicOnly
		}
		llm = g
	}

	model := NewModelBacked(llm, logger)
	return NewBatcher(NewFallback(model, Heuristic{}, logger), cfg.Pipeline.BatchSize, cfg.Pipeline.BatchDelay, logger)
}

// Classify labels every candidate, in input order
func (b *Batcher) Classify(ctx context.Context, candidates []domain.Candidate) []domain.ClassifiedCandidate {
	out := make([]domain.ClassifiedCandidate, 0, len(candidates))

	for start, n := 0, 0; start < len(candidates); start, n = start+b.size, n+1 {
		if n > 0 && b.delay > 0 {
			sleep(ctx, b.delay)
		}

		end := min(start+b.size, len(candidates))
		batch := candidates[start:end]

		results, err := b.strategy.ClassifyBatch(ctx, batch)
		if err != nil {
			b.logger.Warn("batch classification failed, using heuristic",
				zap.Int("batch", n), zap.Int("size", len(batch)), zap.Error(err))
			results = nil
		}

		for i, cand := range batch {
			c, ok := results[i]
			if !ok {
				c = heuristic(cand)
			} else if cat, valid := domain.ParseCategory(string(c.Category)); valid {
				c.Category = cat
			} else {
				c.Category = HeuristicCategory(cand)
			}
			out = append(out, domain.ClassifiedCandidate{
				Candidate:  cand,
				Category:   c.Category,
				Difficulty: c.Difficulty,
				Pricing:    c.Pricing,
				IsRelevant: c.IsRelevant,
			})
		}
	}

	return out
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
