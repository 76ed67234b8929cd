package pipeline

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/pbaille/toolscout/internal/domain"
	"github.com/pbaille/toolscout/internal/store"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeAdapter struct {
	name       domain.Source
	configured bool
	items      []domain.Candidate
	calls      atomic.Int32
}

func (f *fakeAdapter) Name() domain.Source { return f.name }
func (f *fakeAdapter) Configured() bool    { return f.configured }
func (f *fakeAdapter) Fetch(context.Context) []domain.Candidate {
	f.calls.Add(1)
	return f.items
}

// countingClassifier records how many candidates it was asked to label
type countingClassifier struct {
	inner Classifier
	calls atomic.Int32
	seen  atomic.Int32
}

func (c *countingClassifier) Classify(ctx context.Context, cands []domain.Candidate) []domain.ClassifiedCandidate {
	c.calls.Add(1)
	c.seen.Add(int32(len(cands)))
	return c.inner.Classify(ctx, cands)
}

// fakeCatalog is an in-memory catalog with injectable failures
type fakeCatalog struct {
	mu        sync.Mutex
	tools     map[string]domain.Tool
	existsErr error
	insertErr error
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{tools: map[string]domain.Tool{}}
}

func (f *fakeCatalog) Exists(_ context.Context, name string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.existsErr != nil {
		return false, f.existsErr
	}
	_, ok := f.tools[domain.NameKey(name)]
	return ok, nil
}

func (f *fakeCatalog) Insert(_ context.Context, t *domain.Tool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	if _, ok := f.tools[domain.NameKey(t.Name)]; ok {
		return store.ErrExists
	}
	f.tools[domain.NameKey(t.Name)] = *t
	return nil
}

func (f *fakeCatalog) List(context.Context, store.Filter) ([]domain.Tool, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeCatalog) Close() error { return nil }

func candidate(name string, src domain.Source, votes int) domain.Candidate {
	return domain.Candidate{
		Name:        name,
		Description: "Generate music and voice overs from text prompts",
		Website:     "https://" + name + ".example.com",
		Source:      src,
		Votes:       votes,
	}
}
