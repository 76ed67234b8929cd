package sources

import (
	"context"
	"net/http"
	"strings"

	"github.com/pbaille/toolscout/internal/domain"
	"go.uber.org/zap"
)

// productHuntTopics is the allow-list a post's topics must intersect
var productHuntTopics = map[string]bool{
	"artificial intelligence": true,
	"ai":                      true,
	"design":                  true,
	"design tools":            true,
	"no-code":                 true,
	"developer tools":         true,
	"creative":                true,
	"video":                   true,
	"audio":                   true,
	"productivity":            true,
	"writing":                 true,
}

const productHuntQuery = `
query RecentTopPosts($postedAfter: DateTime!) {
  posts(first: 20, order: RANKING, postedAfter: $postedAfter) {
    edges {
      node {
        name
        tagline
        description
        url
        website
        votesCount
        topics { edges { node { name } } }
      }
    }
  }
}`

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type productHuntResponse struct {
	Data struct {
		Posts struct {
			Edges []struct {
				Node productHuntPost `json:"node"`
			} `json:"edges"`
		} `json:"posts"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

type productHuntPost struct {
	Name        string `json:"name"`
	Tagline     string `json:"tagline"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Website     string `json:"website"`
	VotesCount  int    `json:"votesCount"`
	Topics      struct {
		Edges []struct {
			Node struct {
				Name string `json:"name"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"topics"`
}

// ProductHunt reads recent top-ranked launches from the curated launch board
type ProductHunt struct {
	endpoint string
	token    string
	opts     Options
}

// NewProductHunt creates the curated-board adapter. It needs a developer token.
func NewProductHunt(endpoint, token string, opts Options) *ProductHunt {
	return &ProductHunt{endpoint: endpoint, token: token, opts: opts.withDefaults()}
}

func (p *ProductHunt) Name() domain.Source { return domain.SourceProductHunt }

func (p *ProductHunt) Configured() bool { return p.token != "" }

// Fetch runs the single GraphQL query
func (p *ProductHunt) Fetch(ctx context.Context) []domain.Candidate {
	log := p.opts.Logger.With(zap.String("source", string(p.Name())))
	if !p.Configured() {
		log.Debug("token not configured, skipping")
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, p.opts.Timeout)
	defer cancel()

	req := graphQLRequest{
		Query: productHuntQuery,
		Variables: map[string]any{
			"postedAfter": p.opts.Now().AddDate(0, 0, -7).UTC().Format("2006-01-02T15:04:05Z"),
		},
	}
	header := http.Header{"Authorization": {"Bearer " + p.token}}

	var resp productHuntResponse
	if err := p.opts.client().postJSON(ctx, p.endpoint, header, req, &resp); err != nil {
		log.Warn("fetch failed", zap.Error(err))
		return nil
	}
	if len(resp.Errors) > 0 {
		log.Warn("graphql errors", zap.String("first", resp.Errors[0].Message), zap.Int("count", len(resp.Errors)))
	}

	var out []domain.Candidate
	for _, edge := range resp.Data.Posts.Edges {
		post := edge.Node
		topics := make([]string, 0, len(post.Topics.Edges))
		relevant := false
		for _, t := range post.Topics.Edges {
			topics = append(topics, t.Node.Name)
			if productHuntTopics[strings.ToLower(t.Node.Name)] {
				relevant = true
			}
		}
		if !relevant {
			continue
		}

		description := post.Tagline
		if description == "" {
			description = post.Description
		}
		website := post.Website
		if website == "" {
			website = post.URL
		}

		out = append(out, domain.Candidate{
			Name:        strings.TrimSpace(post.Name),
			Description: cleanText(description),
			Website:     website,
			Source:      domain.SourceProductHunt,
			Votes:       max(post.VotesCount, 0),
			Topics:      topics,
		})
	}

	log.Debug("fetched", zap.Int("posts", len(resp.Data.Posts.Edges)), zap.Int("kept", len(out)))
	return out
}
