package classifier

import (
	"context"

	"github.com/pbaille/toolscout/internal/domain"
	"go.uber.org/zap"
)

// Fallback tries a primary strategy and fills every gap from a secondary one:
// a failed call, an index the primary did not answer, or a category outside
// the canonical set (only the category is replaced in that case).
type Fallback struct {
	primary   Strategy
	secondary Strategy
	logger    *zap.Logger
}

// NewFallback composes two strategies. The secondary must be total.
func NewFallback(primary, secondary Strategy, logger *zap.Logger) *Fallback {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fallback{primary: primary, secondary: secondary, logger: logger}
}

func (f *Fallback) ClassifyBatch(ctx context.Context, batch []domain.Candidate) (map[int]Classification, error) {
	backup, err := f.secondary.ClassifyBatch(ctx, batch)
	if err != nil {
		return nil, err
	}

	primary, err := f.primary.ClassifyBatch(ctx, batch)
	if err != nil {
		f.logger.Warn("primary classification failed, using fallback for batch",
			zap.Int("batch_size", len(batch)), zap.Error(err))
		return backup, nil
	}

	out := make(map[int]Classification, len(batch))
	remapped, filled := 0, 0
	for i := range batch {
		c, ok := primary[i]
		if !ok {
			out[i] = backup[i]
			filled++
			continue
		}
		if cat, valid := domain.ParseCategory(string(c.Category)); valid {
			c.Category = cat
		} else {
			c.Category = backup[i].Category
			remapped++
		}
		out[i] = c
	}

	if remapped > 0 || filled > 0 {
		f.logger.Debug("fallback filled gaps", zap.Int("missing", filled), zap.Int("remapped_categories", remapped))
	}
	return out, nil
}
