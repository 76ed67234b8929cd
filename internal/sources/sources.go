// Package sources fetches tool candidates from external feeds. Every adapter
// swallows its own failures: Fetch returns whatever it collected, possibly
// nothing, and logs the cause.
package sources

import (
	"context"
	"net/http"
	"time"

	"github.com/pbaille/toolscout/internal/config"
	"github.com/pbaille/toolscout/internal/domain"
	"go.uber.org/zap"
)

// Adapter is one upstream feed
type Adapter interface {
	Name() domain.Source
	// Configured reports whether the credentials the feed needs are present
	Configured() bool
	// Fetch never fails; errors degrade to an empty or partial result
	Fetch(ctx context.Context) []domain.Candidate
}

// Options are shared by every adapter
type Options struct {
	UserAgent  string
	Timeout    time.Duration // per Fetch call
	QueryDelay time.Duration // pause between queries of multi-query adapters
	HTTPClient *http.Client
	Logger     *zap.Logger
	Now        func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = 10 * time.Second
	}
	if o.HTTPClient == nil {
		o.HTTPClient = &http.Client{}
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

func (o Options) client() *client {
	return &client{http: o.HTTPClient, userAgent: o.UserAgent}
}

// FromConfig builds all five adapters in canonical order
func FromConfig(cfg *config.Config, logger *zap.Logger) []Adapter {
	opts := Options{
		UserAgent:  cfg.Sources.UserAgent,
		Timeout:    cfg.Sources.Timeout,
		QueryDelay: cfg.Pipeline.QueryDelay,
		Logger:     logger,
	}
	return []Adapter{
		NewProductHunt(cfg.Sources.ProductHuntURL, cfg.Sources.ProductHuntToken, opts),
		NewGitHub(cfg.Sources.GitHubURL, cfg.Sources.GitHubToken, cfg.Thresholds.GitHubMinStars, opts),
		NewHackerNews(cfg.Sources.HackerNewsURL, cfg.Thresholds.HackerNewsMinPoints, opts),
		NewReddit(cfg.Sources.RedditURL, cfg.Thresholds.RedditMinScore, opts),
		NewDevHunt(cfg.Sources.DevHuntURL, opts),
	}
}

// collector accumulates candidates, dropping case-insensitive name repeats,
// up to a cap
type collector struct {
	max   int
	seen  map[string]bool
	items []domain.Candidate
}

func newCollector(max int) *collector {
	return &collector{max: max, seen: make(map[string]bool)}
}

// add reports false once the cap is reached
func (c *collector) add(cand domain.Candidate) bool {
	if c.full() {
		return false
	}
	key := cand.Key()
	if key == "" || c.seen[key] {
		return true
	}
	c.seen[key] = true
	c.items = append(c.items, cand)
	return !c.full()
}

func (c *collector) full() bool {
	return len(c.items) >= c.max
}

// pause waits d or until ctx is done, reporting whether to continue
func pause(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
