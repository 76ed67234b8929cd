package sources

import (
	"context"
	"net/url"
	"strings"

	"github.com/pbaille/toolscout/internal/domain"
	"go.uber.org/zap"
)

type redditQuery struct {
	subreddit string
	query     string
}

var redditQueries = []redditQuery{
	{"ArtificialIntelligence", "tool"},
	{"SideProject", "AI"},
	{"InternetIsBeautiful", "AI"},
}

const redditCap = 15

type redditListing struct {
	Data struct {
		Children []struct {
			Data struct {
				Title  string `json:"title"`
				URL    string `json:"url"`
				Score  int    `json:"score"`
				IsSelf bool   `json:"is_self"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// Reddit searches a few subreddits for link posts about tools
type Reddit struct {
	baseURL  string
	minScore int
	opts     Options
}

// NewReddit creates the forum adapter
func NewReddit(baseURL string, minScore int, opts Options) *Reddit {
	return &Reddit{
		baseURL:  strings.TrimRight(baseURL, "/"),
		minScore: minScore,
		opts:     opts.withDefaults(),
	}
}

func (r *Reddit) Name() domain.Source { return domain.SourceReddit }

func (r *Reddit) Configured() bool { return true }

func (r *Reddit) Fetch(ctx context.Context) []domain.Candidate {
	log := r.opts.Logger.With(zap.String("source", string(r.Name())))

	ctx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	defer cancel()

	col := newCollector(redditCap)
	for _, q := range redditQueries {
		params := url.Values{}
		params.Set("q", q.query)
		params.Set("restrict_sr", "1")
		params.Set("sort", "top")
		params.Set("t", "week")
		params.Set("limit", "25")

		var listing redditListing
		endpoint := r.baseURL + "/r/" + q.subreddit + "/search.json?" + params.Encode()
		if err := r.opts.client().getJSON(ctx, endpoint, nil, &listing); err != nil {
			log.Warn("query failed", zap.String("subreddit", q.subreddit), zap.Error(err))
			if ctx.Err() != nil {
				break
			}
			continue
		}

		for _, child := range listing.Data.Children {
			post := child.Data
			if post.IsSelf || !externalLink(post.URL) || post.Score < r.minScore {
				continue
			}
			col.add(domain.Candidate{
				Name:        ExtractToolName(post.Title),
				Description: strings.TrimSpace(post.Title),
				Website:     post.URL,
				Source:      domain.SourceReddit,
				Votes:       post.Score,
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

// externalLink rejects empty links and links back into reddit itself
func externalLink(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}
	host := strings.ToLower(u.Host)
	return !strings.HasSuffix(host, "reddit.com") && !strings.HasSuffix(host, "redd.it")
}
