package sources

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/pbaille/toolscout/internal/domain"
	"go.uber.org/zap"
)

// gitHubQueries are the topic pairs searched, in order
var gitHubQueries = []string{
	"topic:ai topic:tool",
	"topic:ai topic:design",
	"topic:ai topic:video",
	"topic:ai topic:audio",
	"topic:llm topic:developer-tools",
}

const gitHubCap = 20

type gitHubSearchResponse struct {
	Items []gitHubRepo `json:"items"`
}

type gitHubRepo struct {
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	HTMLURL         string   `json:"html_url"`
	Homepage        string   `json:"homepage"`
	StargazersCount int      `json:"stargazers_count"`
	Topics          []string `json:"topics"`
}

// GitHub searches recently created repositories by topic
type GitHub struct {
	baseURL  string
	token    string
	minStars int
	opts     Options
}

// NewGitHub creates the code-host adapter. The token is optional and only
// raises the rate limit.
func NewGitHub(baseURL, token string, minStars int, opts Options) *GitHub {
	return &GitHub{
		baseURL:  strings.TrimRight(baseURL, "/"),
		token:    token,
		minStars: minStars,
		opts:     opts.withDefaults(),
	}
}

func (g *GitHub) Name() domain.Source { return domain.SourceGitHub }

func (g *GitHub) Configured() bool { return true }

// Fetch runs the topic queries one after another. A 403 ends the run early
// with whatever was already collected.
func (g *GitHub) Fetch(ctx context.Context) []domain.Candidate {
	log := g.opts.Logger.With(zap.String("source", string(g.Name())))

	ctx, cancel := context.WithTimeout(ctx, g.opts.Timeout)
	defer cancel()

	header := http.Header{"Accept": {"application/vnd.github+json"}}
	if g.token != "" {
		header.Set("Authorization", "token "+g.token)
	}
	since := g.opts.Now().AddDate(0, -1, 0).UTC().Format("2006-01-02")

	col := newCollector(gitHubCap)
	for i, q := range gitHubQueries {
		if i > 0 && !pause(ctx, g.opts.QueryDelay) {
			log.Warn("timed out between queries", zap.Int("collected", len(col.items)))
			break
		}

		params := url.Values{}
		params.Set("q", q+" created:>"+since)
		params.Set("sort", "stars")
		params.Set("order", "desc")
		params.Set("per_page", "15")

		var resp gitHubSearchResponse
		err := g.opts.client().getJSON(ctx, g.baseURL+"/search/repositories?"+params.Encode(), header, &resp)
		if err != nil {
			if rateLimited(err) {
				log.Warn("rate limited, stopping", zap.String("query", q), zap.Int("collected", len(col.items)))
				break
			}
			log.Warn("query failed", zap.String("query", q), zap.Error(err))
			if ctx.Err() != nil {
				break
			}
			continue
		}

		for _, repo := range resp.Items {
			if repo.StargazersCount < g.minStars || strings.TrimSpace(repo.Description) == "" {
				continue
			}
			website := repo.Homepage
			if website == "" {
				website = repo.HTMLURL
			}
			col.add(domain.Candidate{
				Name:        repo.Name,
				Description: strings.TrimSpace(repo.Description),
				Website:     website,
				Source:      domain.SourceGitHub,
				Votes:       repo.StargazersCount,
				Topics:      repo.Topics,
			})
		}
		if col.full() {
			break
		}
	}

	log.Debug("fetched", zap.Int("kept", len(col.items)))
	return col.items
}
