package sources

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/pbaille/toolscout/internal/domain"
	"go.uber.org/zap"
)

var hackerNewsQueries = []string{"AI tool", "AI app", "open source AI"}

const hackerNewsCap = 20

type hackerNewsResponse struct {
	Hits []struct {
		Title  string `json:"title"`
		URL    string `json:"url"`
		Points int    `json:"points"`
	} `json:"hits"`
}

// HackerNews searches "Show HN" posts through the Algolia API
type HackerNews struct {
	baseURL   string
	minPoints int
	opts      Options
}

// NewHackerNews creates the link-aggregator adapter
func NewHackerNews(baseURL string, minPoints int, opts Options) *HackerNews {
	return &HackerNews{
		baseURL:   strings.TrimRight(baseURL, "/"),
		minPoints: minPoints,
		opts:      opts.withDefaults(),
	}
}

func (h *HackerNews) Name() domain.Source { return domain.SourceHackerNews }

func (h *HackerNews) Configured() bool { return true }

func (h *HackerNews) Fetch(ctx context.Context) []domain.Candidate {
	log := h.opts.Logger.With(zap.String("source", string(h.Name())))

	ctx, cancel := context.WithTimeout(ctx, h.opts.Timeout)
	defer cancel()

	col := newCollector(hackerNewsCap)
	for _, q := range hackerNewsQueries {
		params := url.Values{}
		params.Set("query", q)
		params.Set("tags", "show_hn")
		params.Set("hitsPerPage", "20")
		params.Set("numericFilters", fmt.Sprintf("points>=%d", h.minPoints))

		var resp hackerNewsResponse
		if err := h.opts.client().getJSON(ctx, h.baseURL+"/search?"+params.Encode(), nil, &resp); err != nil {
			log.Warn("query failed", zap.String("query", q), zap.Error(err))
			if ctx.Err() != nil {
				break
			}
			continue
		}

		for _, hit := range resp.Hits {
			if hit.URL == "" || hit.Points < h.minPoints {
				continue
			}
			col.add(domain.Candidate{
				Name:        ExtractToolName(hit.Title),
				Description: strings.TrimSpace(hit.Title),
				Website:     hit.URL,
				Source:      domain.SourceHackerNews,
				Votes:       hit.Points,
				Topics:      []string{},
			})
		}
		if col.full() {
			break
		}
	}

	log.Debug("fetched", zap.Int("kept", len(col.items)))
	return col.items
}
