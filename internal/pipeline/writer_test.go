package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/pbaille/toolscout/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func classified(name string) domain.ClassifiedCandidate {
	return domain.ClassifiedCandidate{
		Candidate:  candidate(name, domain.SourceGitHub, 10),
		Category:   domain.CategoryAudio,
		Difficulty: domain.Beginner,
		Pricing:    domain.PricingFree,
		IsRelevant: true,
	}
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name     string
		mutate   func(c *domain.ClassifiedCandidate)
		expected string
	}{
		{"valid", func(c *domain.ClassifiedCandidate) {}, ""},
		{"not relevant", func(c *domain.ClassifiedCandidate) { c.IsRelevant = false }, domain.ReasonNotRelevant},
		{"not relevant wins over bad name", func(c *domain.ClassifiedCandidate) {
			c.IsRelevant = false
			c.Name = "x"
		}, domain.ReasonNotRelevant},
		{"one char name", func(c *domain.ClassifiedCandidate) { c.Name = "x" }, domain.ReasonInvalidName},
		{"blank name", func(c *domain.ClassifiedCandidate) { c.Name = "   " }, domain.ReasonInvalidName},
		{"long name", func(c *domain.ClassifiedCandidate) { c.Name = strings.Repeat("a", 101) }, domain.ReasonInvalidName},
		{"max name", func(c *domain.ClassifiedCandidate) { c.Name = strings.Repeat("a", 100) }, ""},
		{"short description", func(c *domain.ClassifiedCandidate) { c.Description = "hi" }, domain.ReasonDescriptionTooShort},
		{"missing description", func(c *domain.ClassifiedCandidate) { c.Description = "" }, domain.ReasonDescriptionTooShort},
		{"not a url", func(c *domain.ClassifiedCandidate) { c.Website = "not-a-url" }, domain.ReasonInvalidURL},
		{"ftp url", func(c *domain.ClassifiedCandidate) { c.Website = "ftp://files.example.com" }, domain.ReasonInvalidURL},
		{"no host", func(c *domain.ClassifiedCandidate) { c.Website = "https://" }, domain.ReasonInvalidURL},
		{"empty url", func(c *domain.ClassifiedCandidate) { c.Website = "" }, domain.ReasonInvalidURL},
		{"http url", func(c *domain.ClassifiedCandidate) { c.Website = "http://tool.dev/path?q=1" }, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := classified("Tool")
			tc.mutate(&c)
			assert.Equal(t, tc.expected, validate(c))
		})
	}
}

func TestWriter_SavesAndSkips(t *testing.T) {
	ctx := context.Background()
	catalog := newFakeCatalog()
	w := NewWriter(catalog, nil)

	short := classified("Short")
	short.Description = "hi"
	irrelevant := classified("Paper")
	irrelevant.IsRelevant = false

	saved, skips := w.Write(ctx, []domain.ClassifiedCandidate{
		classified("Narrate"),
		short,
		irrelevant,
		classified("narrate"),
		classified("Mixer"),
	})

	assert.Equal(t, 2, saved)
	assert.Equal(t, []domain.SkipReason{
		{Name: "Short", Reason: domain.ReasonDescriptionTooShort},
		{Name: "Paper", Reason: domain.ReasonNotRelevant},
		{Name: "narrate", Reason: domain.ReasonAlreadyExists},
	}, skips)

	tool := catalog.tools["narrate"]
	assert.Equal(t, "Narrate", tool.Name)
	assert.Equal(t, domain.CategoryAudio, tool.Category)
	assert.Equal(t, domain.SourceGitHub, tool.Source)
	assert.Contains(t, Palette, tool.Color)
}

func TestWriter_NoCatalog(t *testing.T) {
	w := NewWriter(nil, nil)

	saved, skips := w.Write(context.Background(), []domain.ClassifiedCandidate{classified("A1"), classified("x")})
	assert.Zero(t, saved)
	require.Len(t, skips, 2)
	for _, s := range skips {
		assert.Equal(t, domain.ReasonCatalogNotConfigured, s.Reason)
	}
}

func TestWriter_InsertError(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.insertErr = errors.New("permission denied for table tools")
	w := NewWriter(catalog, nil)

	saved, skips := w.Write(context.Background(), []domain.ClassifiedCandidate{classified("Narrate"), classified("Mixer")})
	assert.Zero(t, saved)
	require.Len(t, skips, 2)
	assert.Equal(t, "insert_error:permission denied for table tools", skips[0].Reason)
	assert.Equal(t, "Mixer", skips[1].Name)
}

func TestWriter_ExistenceErrorFallsThroughToInsert(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.existsErr = errors.New("timeout")
	w := NewWriter(catalog, nil)

	saved, skips := w.Write(context.Background(), []domain.ClassifiedCandidate{classified("Narrate"), classified("NARRATE")})
	assert.Equal(t, 1, saved)
	assert.Equal(t, []domain.SkipReason{{Name: "NARRATE", Reason: domain.ReasonAlreadyExists}}, skips)
}
