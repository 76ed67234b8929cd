package sources

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/pbaille/toolscout/internal/domain"
	"go.uber.org/zap"
)

const (
	devHuntCap            = 15
	devHuntMaxDescription = 300
)

type devHuntTool struct {
	Name        string      `json:"name"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Tagline     string      `json:"tagline"`
	Slogan      string      `json:"slogan"`
	Website     string      `json:"website"`
	URL         string      `json:"url"`
	DemoURL     string      `json:"demo_url"`
	Votes       flexInt     `json:"votes"`
	Upvotes     flexInt     `json:"upvotes"`
	VotesCount  flexInt     `json:"votes_count"`
	Tags        flexStrings `json:"tags"`
	Topics      flexStrings `json:"topics"`
}

// flexStrings accepts ["a","b"] as well as [{"name":"a"},{"name":"b"}]
type flexStrings []string

func (f *flexStrings) UnmarshalJSON(b []byte) error {
	var plain []string
	if err := json.Unmarshal(b, &plain); err == nil {
		*f = plain
		return nil
	}
	var named []struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(b, &named); err != nil {
		// Unknown tag shape; drop tags rather than the whole tool
		*f = nil
		return nil
	}
	out := make([]string, 0, len(named))
	for _, n := range named {
		if n.Name != "" {
			out = append(out, n.Name)
		}
	}
	*f = out
	return nil
}

// flexInt accepts 12, 12.0 and "12". Anything else reads as zero.
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	var n float64
	if err := json.Unmarshal(b, &n); err == nil {
		*f = flexInt(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if n, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			*f = flexInt(n)
			return nil
		}
	}
	*f = 0
	return nil
}

func (t devHuntTool) candidate() (domain.Candidate, bool) {
	name := strings.TrimSpace(firstNonEmpty(t.Name, t.Title))
	website := strings.TrimSpace(firstNonEmpty(t.Website, t.URL, t.DemoURL))
	if name == "" || website == "" {
		return domain.Candidate{}, false
	}

	votes := int(max(t.Votes, t.Upvotes, t.VotesCount, 0))
	topics := append([]string{}, t.Tags...)
	topics = append(topics, t.Topics...)

	return domain.Candidate{
		Name:        name,
		Description: truncateRunes(cleanText(firstNonEmpty(t.Description, t.Tagline, t.Slogan)), devHuntMaxDescription),
		Website:     website,
		Source:      domain.SourceDevHunt,
		Votes:       votes,
		Topics:      topics,
	}, true
}

// shapeMatcher tries to read tools out of one known response layout
type shapeMatcher func(raw json.RawMessage) ([]devHuntTool, bool)

// devHuntShapes lists the layouts the feed has been seen in, most specific
// first. The first matcher that yields tools wins.
var devHuntShapes = []shapeMatcher{
	weeksShape,
	flatShape,
	keyedShape("products"),
	keyedShape("tools"),
	keyedShape("data"),
}

// weeksShape: [{"week": ..., "products": [...]}, ...]
func weeksShape(raw json.RawMessage) ([]devHuntTool, bool) {
	var weeks []struct {
		Products []devHuntTool `json:"products"`
		Tools    []devHuntTool `json:"tools"`
	}
	if err := json.Unmarshal(raw, &weeks); err != nil {
		return nil, false
	}
	var out []devHuntTool
	for _, w := range weeks {
		out = append(out, w.Products...)
		out = append(out, w.Tools...)
	}
	return out, len(out) > 0
}

// flatShape: [{"name": ...}, ...]
func flatShape(raw json.RawMessage) ([]devHuntTool, bool) {
	var tools []devHuntTool
	if err := json.Unmarshal(raw, &tools); err != nil {
		return nil, false
	}
	for _, t := range tools {
		if t.Name != "" || t.Title != "" {
			return tools, true
		}
	}
	return nil, false
}

// keyedShape: {"<key>": [...]}
func keyedShape(key string) shapeMatcher {
	return func(raw json.RawMessage) ([]devHuntTool, bool) {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil {
			return nil, false
		}
		inner, ok := obj[key]
		if !ok {
			return nil, false
		}
		var tools []devHuntTool
		if err := json.Unmarshal(inner, &tools); err != nil {
			return nil, false
		}
		return tools, len(tools) > 0
	}
}

// matchShape returns the tools of the first matching layout
func matchShape(raw json.RawMessage, shapes []shapeMatcher) ([]devHuntTool, bool) {
	for _, match := range shapes {
		if tools, ok := match(raw); ok {
			return tools, true
		}
	}
	return nil, false
}

// DevHunt reads the dev-tool board's past-week feed. The feed is
// pre-curated, so nothing is filtered by keyword.
type DevHunt struct {
	endpoint string
	opts     Options
}

// NewDevHunt creates the dev-board adapter
func NewDevHunt(endpoint string, opts Options) *DevHunt {
	return &DevHunt{endpoint: endpoint, opts: opts.withDefaults()}
}

func (d *DevHunt) Name() domain.Source { return domain.SourceDevHunt }

func (d *DevHunt) Configured() bool { return true }

func (d *DevHunt) Fetch(ctx context.Context) []domain.Candidate {
	log := d.opts.Logger.With(zap.String("source", string(d.Name())))

	ctx, cancel := context.WithTimeout(ctx, d.opts.Timeout)
	defer cancel()

	var raw json.RawMessage
	if err := d.opts.client().getJSON(ctx, d.endpoint, nil, &raw); err != nil {
		log.Warn("fetch failed", zap.Error(err))
		return nil
	}

	tools, ok := matchShape(raw, devHuntShapes)
	if !ok {
		log.Warn("unrecognized response shape", zap.String("body", snippet(raw, 200)))
		return nil
	}

	col := newCollector(devHuntCap)
	for _, t := range tools {
		cand, ok := t.candidate()
		if !ok {
			continue
		}
		if !col.add(cand) {
			break
		}
	}

	log.Debug("fetched", zap.Int("tools", len(tools)), zap.Int("kept", len(col.items)))
	return col.items
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
