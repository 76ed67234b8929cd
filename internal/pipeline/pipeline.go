// Package pipeline runs tool discovery end to end: fetch from the source
// adapters, dedup, drop known tools, classify, and write to the catalog.
package pipeline

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/pbaille/toolscout/internal/config"
	"github.com/pbaille/toolscout/internal/domain"
	"github.com/pbaille/toolscout/internal/sources"
	"github.com/pbaille/toolscout/internal/store"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// maxInspectCandidates caps the raw candidates returned by Inspect
const maxInspectCandidates = 50

// ErrUnknownSource is returned when a requested source has no adapter
var ErrUnknownSource = eris.New("unknown source")

// Classifier labels candidates. It must return one result per input, in order.
type Classifier interface {
	Classify(ctx context.Context, cands []domain.Candidate) []domain.ClassifiedCandidate
}

// Result is the outcome of one discovery run
type Result struct {
	Success     bool                         `json:"success"`
	Discovered  int                          `json:"discovered"`
	Unique      int                          `json:"unique"`
	New         int                          `json:"new"`
	Saved       int                          `json:"saved"`
	Skipped     int                          `json:"skipped"`
	SkipReasons []domain.SkipReason          `json:"skipReasons"`
	Tools       []domain.ClassifiedCandidate `json:"tools"`
	Message     string                       `json:"message,omitempty"`
	Duration    string                       `json:"duration"`
}

// Inspection is the raw fetch output, before any dedup or classification
type Inspection struct {
	Debug      bool                  `json:"debug"`
	Discovered int                   `json:"discovered"`
	BySource   map[domain.Source]int `json:"bySource"`
	Candidates []domain.Candidate    `json:"candidates"`
}

// Status reports what is configured without calling anything
type Status struct {
	Configured        map[string]bool         `json:"configured"`
	QualityThresholds config.ThresholdsConfig `json:"qualityThresholds"`
	Categories        []domain.Category       `json:"categories"`
	BatchSize         int                     `json:"batchSize"`
}

// Pipeline wires the adapters, classifier and catalog together
type Pipeline struct {
	cfg        *config.Config
	adapters   []sources.Adapter
	catalog    store.Catalog
	classifier Classifier
	writer     *Writer
	logger     *zap.Logger
}

// New creates a pipeline. A nil catalog means the catalog is not configured:
// nothing is filtered as known and every write is skipped.
func New(cfg *config.Config, adapters []sources.Adapter, catalog store.Catalog, classifier Classifier, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		cfg:        cfg,
		adapters:   adapters,
		catalog:    catalog,
		classifier: classifier,
		writer:     NewWriter(catalog, logger),
		logger:     logger,
	}
}

// Discover runs one full pass over the requested sources. Empty means all.
// Per-source and per-candidate failures are reported in the result, never
// returned as errors.
func (p *Pipeline) Discover(ctx context.Context, names []domain.Source) (*Result, error) {
	start := time.Now()
	log := p.logger.With(zap.String("run", "discover"))

	fetched, err := p.fetch(ctx, names)
	if err != nil {
		return nil, err
	}

	var all []domain.Candidate
	for _, f := range fetched {
		all = append(all, f.items...)
	}
	unique := Dedup(all)
	fresh := FilterNew(ctx, p.catalog, unique, log)

	log.Info("candidates collected",
		zap.Int("discovered", len(all)),
		zap.Int("unique", len(unique)),
		zap.Int("new", len(fresh)),
	)

	result := &Result{
		Success:     true,
		Discovered:  len(all),
		Unique:      len(unique),
		New:         len(fresh),
		SkipReasons: []domain.SkipReason{},
		Tools:       []domain.ClassifiedCandidate{},
	}

	if len(fresh) == 0 {
		result.Message = "no new tools found"
		result.Duration = time.Since(start).Round(time.Millisecond).String()
		return result, nil
	}

	classified := p.classifier.Classify(ctx, fresh)
	if len(classified) != len(fresh) {
		return nil, eris.Errorf("pipeline: classifier returned %d results for %d candidates", len(classified), len(fresh))
	}

	saved, skips := p.writer.Write(ctx, classified)
	result.Saved = saved
	result.Skipped = len(skips)
	result.SkipReasons = skips
	for _, c := range classified {
		if c.IsRelevant {
			result.Tools = append(result.Tools, c)
		}
	}
	result.Duration = time.Since(start).Round(time.Millisecond).String()

	log.Info("discovery complete",
		zap.Int("saved", result.Saved),
		zap.Int("skipped", result.Skipped),
		zap.String("duration", result.Duration),
	)
	return result, nil
}

// Inspect fetches from the requested sources and returns per-source counts
// and the first raw candidates. Nothing is classified or written.
func (p *Pipeline) Inspect(ctx context.Context, names []domain.Source) (*Inspection, error) {
	fetched, err := p.fetch(ctx, names)
	if err != nil {
		return nil, err
	}

	insp := &Inspection{
		Debug:      true,
		BySource:   make(map[domain.Source]int, len(fetched)),
		Candidates: []domain.Candidate{},
	}
	for _, f := range fetched {
		insp.BySource[f.source] = len(f.items)
		insp.Discovered += len(f.items)
		for _, c := range f.items {
			if len(insp.Candidates) < maxInspectCandidates {
				insp.Candidates = append(insp.Candidates, c)
			}
		}
	}
	return insp, nil
}

// Status reports which adapters and integrations are configured
func (p *Pipeline) Status() Status {
	configured := make(map[string]bool, len(p.adapters)+2)
	for _, a := range p.adapters {
		configured[string(a.Name())] = a.Configured()
	}
	configured["model"] = p.cfg.ModelConfigured()
	configured["catalog"] = p.catalog != nil

	return Status{
		Configured:        configured,
		QualityThresholds: p.cfg.Thresholds,
		Categories:        domain.AllCategories(),
		BatchSize:         p.cfg.Pipeline.BatchSize,
	}
}

type fetchResult struct {
	source domain.Source
	items  []domain.Candidate
}

// fetch runs the selected adapters concurrently. Results keep adapter order.
func (p *Pipeline) fetch(ctx context.Context, names []domain.Source) ([]fetchResult, error) {
	selected, err := p.selectAdapters(names)
	if err != nil {
		return nil, err
	}

	results := make([]fetchResult, len(selected))
	g, gCtx := errgroup.WithContext(ctx)
	for i, a := range selected {
		g.Go(func() error {
			items := a.Fetch(gCtx)
			p.logger.Debug("source fetched", zap.String("source", string(a.Name())), zap.Int("count", len(items)))
			results[i] = fetchResult{source: a.Name(), items: items}
			return nil
		})
	}
	_ = g.Wait()

	return results, nil
}

func (p *Pipeline) selectAdapters(names []domain.Source) ([]sources.Adapter, error) {
	if len(names) == 0 {
		return p.adapters, nil
	}

	want := make(map[domain.Source]bool, len(names))
	for _, n := range names {
		want[n] = true
	}

	var selected []sources.Adapter
	for _, a := range p.adapters {
		if want[a.Name()] {
			selected = append(selected, a)
			delete(want, a.Name())
		}
	}
	if len(want) > 0 {
		var unknown []string
		for n := range want {
			unknown = append(unknown, string(n))
		}
		sort.Strings(unknown)
		return nil, eris.Wrapf(ErrUnknownSource, "%s", strings.Join(unknown, ", "))
	}
	return selected, nil
}
