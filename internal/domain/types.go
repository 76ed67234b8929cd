package domain

import (
	"strings"
	"time"
)

// Source identifies the upstream feed a candidate came from
type Source string

const (
	SourceProductHunt Source = "producthunt" // curated launch board
	SourceGitHub      Source = "github"      // code-hosting trending search
	SourceHackerNews  Source = "hackernews"  // link aggregator "Show" posts
	SourceReddit      Source = "reddit"      // subreddit-scoped forum search
	SourceDevHunt     Source = "devhunt"     // dev-tool board
)

// AllSources returns every adapter name in canonical order
func AllSources() []Source {
	return []Source{SourceProductHunt, SourceGitHub, SourceHackerNews, SourceReddit, SourceDevHunt}
}

// ParseSource maps a wire name to a Source
func ParseSource(s string) (Source, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, src := range AllSources() {
		if string(src) == s {
			return src, true
		}
	}
	return "", false
}

// Candidate is a normalized, not-yet-classified tool record
type Candidate struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Website     string   `json:"website"`
	Source      Source   `json:"source"`
	Votes       int      `json:"votes"`
	Topics      []string `json:"topics"`
}

// Key is the case-insensitive identity used for dedup and existence checks
func (c Candidate) Key() string {
	return NameKey(c.Name)
}

// NameKey folds a tool name for case-insensitive comparison
func NameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// ClassifiedCandidate is a candidate with its assigned labels
type ClassifiedCandidate struct {
	Candidate
	Category   Category   `json:"category"`
	Difficulty Difficulty `json:"difficulty"`
	Pricing    Pricing    `json:"pricing"`
	IsRelevant bool       `json:"isRelevant"`
}

// Tool is a persistent catalog entry
type Tool struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Website     string     `json:"website"`
	Category    Category   `json:"category"`
	Difficulty  Difficulty `json:"difficulty"`
	Pricing     Pricing    `json:"pricing"`
	Color       string     `json:"color"`
	Source      Source     `json:"source,omitempty"`
	Votes       int        `json:"votes"`
	CreatedAt   time.Time  `json:"created_at"`
}

// SkipReason records why a candidate was not written to the catalog
type SkipReason struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// Skip reasons produced by the catalog writer
const (
	ReasonNotRelevant          = "not_relevant"
	ReasonInvalidName          = "invalid_name"
	ReasonDescriptionTooShort  = "description_too_short"
	ReasonInvalidURL           = "invalid_url"
	ReasonAlreadyExists        = "already_exists"
	ReasonInsertError          = "insert_error"
	ReasonCatalogNotConfigured = "supabase_not_configured"
)
