package classifier

import (
	"context"
	"fmt"

	"github.com/pbaille/toolscout/internal/domain"
	"go.uber.org/zap"
)

// ModelBacked asks a generative model to classify a whole batch in one call.
// Categories are passed through as the model wrote them; callers remap
// anything non-canonical.
type ModelBacked struct {
	llm    Completer
	logger *zap.Logger
}

// NewModelBacked creates a model-backed strategy
func NewModelBacked(llm Completer, logger *zap.Logger) *ModelBacked {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ModelBacked{llm: llm, logger: logger}
}

// ClassifyBatch returns only the indices the model answered for. An
// unparseable response yields an empty result, not an error.
func (m *ModelBacked) ClassifyBatch(ctx context.Context, batch []domain.Candidate) (map[int]Classification, error) {
	text, err := m.llm.Complete(ctx, buildPrompt(batch))
	if err != nil {
		return nil, fmt.Errorf("model call: %w", err)
	}

	raw, ok := parseClassifications(text)
	if !ok {
		m.logger.Warn("could not parse model response", zap.Int("batch_size", len(batch)), zap.String("response", truncate(text, 300)))
		return map[int]Classification{}, nil
	}

	out := make(map[int]Classification, len(batch))
	for _, r := range raw {
		if r.Index == nil || *r.Index < 0 || *r.Index >= len(batch) {
			continue
		}
		if _, dup := out[*r.Index]; dup {
			continue
		}

		difficulty, ok := domain.ParseDifficulty(r.Difficulty)
		if !ok {
			difficulty = domain.Beginner
		}
		pricing, ok := domain.ParsePricing(r.Pricing)
		if !ok {
			pricing = domain.PricingUnknown
		}
		out[*r.Index] = Classification{
			Category:   domain.Category(r.Category),
			Difficulty: difficulty,
			Pricing:    pricing,
			IsRelevant: r.IsRelevant == nil || *r.IsRelevant,
		}
	}

	m.logger.Debug("model classified batch", zap.Int("batch_size", len(batch)), zap.Int("answered", len(out)))
	return out, nil
}

// truncate cuts s to at most max runes, marking the cut with "..."
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
