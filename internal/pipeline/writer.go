package pipeline

import (
	"context"
	"errors"
	"math/rand/v2"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/pbaille/toolscout/internal/domain"
	"github.com/pbaille/toolscout/internal/store"
	"go.uber.org/zap"
)

// Palette is the set of display colors assigned to new catalog entries
var Palette = []string{"bg-phoenix", "bg-chartreuse", "bg-cornflower", "bg-lavender", "bg-magnolia"}

const (
	minNameLen        = 2
	maxNameLen        = 100
	minDescriptionLen = 10
)

// Writer validates classified candidates and persists the accepted ones.
// Candidates are handled one at a time so the existence re-check and the
// insert never race within a run.
type Writer struct {
	catalog store.Catalog
	logger  *zap.Logger
	color   func() string
}

// NewWriter creates a writer. A nil catalog skips every candidate.
func NewWriter(catalog store.Catalog, logger *zap.Logger) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{
		catalog: catalog,
		logger:  logger,
		color:   func() string { return Palette[rand.IntN(len(Palette))] },
	}
}

// Write returns the number saved and a skip reason for every other candidate
func (w *Writer) Write(ctx context.Context, cands []domain.ClassifiedCandidate) (int, []domain.SkipReason) {
	skips := []domain.SkipReason{}

	if w.catalog == nil {
		for _, c := range cands {
			skips = append(skips, domain.SkipReason{Name: c.Name, Reason: domain.ReasonCatalogNotConfigured})
		}
		return 0, skips
	}

	saved := 0
	for _, c := range cands {
		if reason := validate(c); reason != "" {
			w.logger.Debug("candidate rejected", zap.String("name", c.Name), zap.String("reason", reason))
			skips = append(skips, domain.SkipReason{Name: c.Name, Reason: reason})
			continue
		}

		name := strings.TrimSpace(c.Name)
		exists, err := w.catalog.Exists(ctx, name)
		if err != nil {
			// the unique index still rejects a duplicate insert
			w.logger.Warn("existence re-check failed", zap.String("name", name), zap.Error(err))
		}
		if exists {
			skips = append(skips, domain.SkipReason{Name: c.Name, Reason: domain.ReasonAlreadyExists})
			continue
		}

		tool := &domain.Tool{
			Name:        name,
			Description: strings.TrimSpace(c.Description),
			Website:     strings.TrimSpace(c.Website),
			Category:    c.Category,
			Difficulty:  c.Difficulty,
			Pricing:     c.Pricing,
			Color:       w.color(),
			Source:      c.Source,
			Votes:       c.Votes,
		}
		err = w.catalog.Insert(ctx, tool)
		switch {
		case errors.Is(err, store.ErrExists):
			skips = append(skips, domain.SkipReason{Name: c.Name, Reason: domain.ReasonAlreadyExists})
		case err != nil:
			w.logger.Warn("insert failed", zap.String("name", name), zap.Error(err))
			skips = append(skips, domain.SkipReason{Name: c.Name, Reason: domain.ReasonInsertError + ":" + err.Error()})
		default:
			saved++
		}
	}

	return saved, skips
}

// validate returns the first failing gate's reason, or "" when the candidate
// may be written
func validate(c domain.ClassifiedCandidate) string {
	if !c.IsRelevant {
		return domain.ReasonNotRelevant
	}
	if n := utf8.RuneCountInString(strings.TrimSpace(c.Name)); n < minNameLen || n > maxNameLen {
		return domain.ReasonInvalidName
	}
	if utf8.RuneCountInString(strings.TrimSpace(c.Description)) < minDescriptionLen {
		return domain.ReasonDescriptionTooShort
	}
	if !validURL(c.Website) {
		return domain.ReasonInvalidURL
	}
	return ""
}

func validURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
