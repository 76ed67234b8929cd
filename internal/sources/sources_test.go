package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pbaille/toolscout/internal/config"
	"github.com/pbaille/toolscout/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cand(name string) domain.Candidate {
	return domain.Candidate{Name: name, Website: "https://example.com/" + name}
}

func testOptions() Options {
	return Options{
		Timeout: 2 * time.Second,
		Now:     func() time.Time { return time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC) },
	}
}

func serveJSON(t *testing.T, handler func(r *http.Request) (int, any)) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		status, body := handler(r)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestFromConfig(t *testing.T) {
	cfg := config.Default()
	adapters := FromConfig(cfg, nil)

	require.Len(t, adapters, 5)
	for i, src := range domain.AllSources() {
		assert.Equal(t, src, adapters[i].Name())
	}
	assert.False(t, adapters[0].Configured(), "product hunt needs a token")

	cfg.Sources.ProductHuntToken = "tok"
	assert.True(t, FromConfig(cfg, nil)[0].Configured())
}

func TestProductHunt(t *testing.T) {
	srv, calls := serveJSON(t, func(r *http.Request) (int, any) {
		assert.Equal(t, "Bearer ph-token", r.Header.Get("Authorization"))
		assert.Equal(t, http.MethodPost, r.Method)

		var req graphQLRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "2026-10-11T12:00:00Z", req.Variables["postedAfter"])

		return http.StatusOK, map[string]any{
			"data": map[string]any{"posts": map[string]any{"edges": []any{
				phPost("Sketchy", "AI sketches to UI", "", "https://sketchy.app", 120, "Design Tools", "Artificial Intelligence"),
				phPost("Cookbook", "Recipes", "", "https://cook.example", 300, "Food"),
				phPost("Voicer", "", "<p>Clone <b>voices</b></p>", "", 40, "Audio"),
			}}},
		}
	})

	ph := NewProductHunt(srv.URL, "ph-token", testOptions())
	got := ph.Fetch(context.Background())

	require.Len(t, got, 2)
	assert.Equal(t, "Sketchy", got[0].Name)
	assert.Equal(t, "AI sketches to UI", got[0].Description)
	assert.Equal(t, domain.SourceProductHunt, got[0].Source)
	assert.Equal(t, 120, got[0].Votes)
	assert.Equal(t, []string{"Design Tools", "Artificial Intelligence"}, got[0].Topics)

	assert.Equal(t, "Voicer", got[1].Name)
	assert.Equal(t, "Clone voices", got[1].Description)
	assert.Equal(t, "https://www.producthunt.com/posts/voicer", got[1].Website)
	assert.EqualValues(t, 1, atomic.LoadInt32(calls))
}

func phPost(name, tagline, description, website string, votes int, topics ...string) map[string]any {
	edges := make([]any, 0, len(topics))
	for _, tp := range topics {
		edges = append(edges, map[string]any{"node": map[string]any{"name": tp}})
	}
	return map[string]any{"node": map[string]any{
		"name":        name,
		"tagline":     tagline,
		"description": description,
		"url":         "https://www.producthunt.com/posts/" + strings.ToLower(name),
		"website":     website,
		"votesCount":  votes,
		"topics":      map[string]any{"edges": edges},
	}}
}

func TestProductHunt_NoTokenSkipsRequest(t *testing.T) {
	srv, calls := serveJSON(t, func(r *http.Request) (int, any) {
		return http.StatusOK, map[string]any{}
	})

	ph := NewProductHunt(srv.URL, "", testOptions())
	assert.Empty(t, ph.Fetch(context.Background()))
	assert.EqualValues(t, 0, atomic.LoadInt32(calls))
}

func TestProductHunt_ServerErrorIsEmpty(t *testing.T) {
	srv, _ := serveJSON(t, func(r *http.Request) (int, any) {
		return http.StatusInternalServerError, map[string]string{"error": "boom"}
	})

	ph := NewProductHunt(srv.URL, "tok", testOptions())
	assert.Empty(t, ph.Fetch(context.Background()))
}

func ghRepo(name, description string, stars int) map[string]any {
	return map[string]any{
		"name":             name,
		"description":      description,
		"html_url":         "https://github.com/acme/" + name,
		"homepage":         "",
		"stargazers_count": stars,
		"topics":           []string{"ai"},
	}
}

func TestGitHub_FiltersAndDedups(t *testing.T) {
	srv, calls := serveJSON(t, func(r *http.Request) (int, any) {
		q := r.URL.Query().Get("q")
		assert.Contains(t, q, "created:>2026-09-18")
		assert.Equal(t, "/search/repositories", r.URL.Path)
		return http.StatusOK, map[string]any{"items": []any{
			ghRepo("shared-repo", "An AI tool shared across queries", 500),
			ghRepo("tiny", "Too few stars", 3),
			ghRepo("nodesc", "", 900),
			ghRepo("q-"+strings.Fields(q)[1], "Unique per query", 80),
		}}
	})

	gh := NewGitHub(srv.URL, "", 50, testOptions())
	got := gh.Fetch(context.Background())

	assert.EqualValues(t, len(gitHubQueries), atomic.LoadInt32(calls))

	names := make([]string, len(got))
	for i, c := range got {
		names[i] = c.Name
		assert.GreaterOrEqual(t, c.Votes, 50)
		assert.NotEmpty(t, c.Description)
		assert.Equal(t, domain.SourceGitHub, c.Source)
	}
	assert.Equal(t, "shared-repo", names[0])
	assert.NotContains(t, names, "tiny")
	assert.NotContains(t, names, "nodesc")
	assert.Equal(t, "https://github.com/acme/shared-repo", got[0].Website)
}

func TestGitHub_StopsOnForbidden(t *testing.T) {
	var n int32
	srv, calls := serveJSON(t, func(r *http.Request) (int, any) {
		if atomic.AddInt32(&n, 1) == 1 {
			return http.StatusOK, map[string]any{"items": []any{ghRepo("first", "Found before the limit", 100)}}
		}
		return http.StatusForbidden, map[string]string{"message": "API rate limit exceeded"}
	})

	gh := NewGitHub(srv.URL, "gh-token", 50, testOptions())
	got := gh.Fetch(context.Background())

	require.Len(t, got, 1)
	assert.Equal(t, "first", got[0].Name)
	assert.EqualValues(t, 2, atomic.LoadInt32(calls), "no queries after the 403")
}

func TestGitHub_CapsResults(t *testing.T) {
	var n int32
	srv, _ := serveJSON(t, func(r *http.Request) (int, any) {
		batch := atomic.AddInt32(&n, 1)
		items := make([]any, 0, 15)
		for i := 0; i < 15; i++ {
			items = append(items, ghRepo(fmt.Sprintf("repo-%d-%d", batch, i), "Some description", 100))
		}
		return http.StatusOK, map[string]any{"items": items}
	})

	gh := NewGitHub(srv.URL, "", 50, testOptions())
	got := gh.Fetch(context.Background())

	assert.Len(t, got, gitHubCap)
	assert.EqualValues(t, 2, atomic.LoadInt32(&n), "stops querying once the cap is reached")
}

func TestHackerNews(t *testing.T) {
	srv, calls := serveJSON(t, func(r *http.Request) (int, any) {
		assert.Equal(t, "show_hn", r.URL.Query().Get("tags"))
		return http.StatusOK, map[string]any{"hits": []any{
			map[string]any{"title": "Show HN: Glint – AI photo retouching", "url": "https://glint.dev", "points": 88},
			map[string]any{"title": "Show HN: NoLink – text only", "url": "", "points": 300},
			map[string]any{"title": "Show HN: Meh – low points", "url": "https://meh.dev", "points": 2},
		}}
	})

	hn := NewHackerNews(srv.URL, 10, testOptions())
	got := hn.Fetch(context.Background())

	require.Len(t, got, 1)
	assert.Equal(t, "Glint", got[0].Name)
	assert.Equal(t, "Show HN: Glint – AI photo retouching", got[0].Description)
	assert.Equal(t, 88, got[0].Votes)
	assert.NotNil(t, got[0].Topics)
	assert.EqualValues(t, 3, atomic.LoadInt32(calls))
}

func TestHackerNews_PartialOnTimeout(t *testing.T) {
	var n int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&n, 1) == 1 {
			json.NewEncoder(w).Encode(map[string]any{"hits": []any{
				map[string]any{"title": "Fastool: quick", "url": "https://fast.dev", "points": 50},
			}})
			return
		}
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	opts := testOptions()
	opts.Timeout = 150 * time.Millisecond

	start := time.Now()
	got := NewHackerNews(srv.URL, 10, opts).Fetch(context.Background())

	require.Len(t, got, 1)
	assert.Equal(t, "Fastool", got[0].Name)
	assert.Less(t, time.Since(start), time.Second)
}

func TestReddit(t *testing.T) {
	srv, _ := serveJSON(t, func(r *http.Request) (int, any) {
		assert.True(t, strings.HasPrefix(r.URL.Path, "/r/"))
		assert.Equal(t, "1", r.URL.Query().Get("restrict_sr"))
		return http.StatusOK, map[string]any{"data": map[string]any{"children": []any{
			redditPost("Beatbox: AI music stems", "https://beatbox.fm", 120, false),
			redditPost("What tool do you use?", "https://www.reddit.com/r/x/comments/1", 500, true),
			redditPost("Gallery post", "https://i.redd.it/abc.png", 500, false),
			redditPost("Lowscore - meh", "https://low.dev", 1, false),
		}}}
	})

	rd := NewReddit(srv.URL, 20, testOptions())
	got := rd.Fetch(context.Background())

	require.Len(t, got, 1)
	assert.Equal(t, "Beatbox", got[0].Name)
	assert.Equal(t, domain.SourceReddit, got[0].Source)
}

func redditPost(title, link string, score int, self bool) map[string]any {
	return map[string]any{"data": map[string]any{
		"title": title, "url": link, "score": score, "is_self": self,
	}}
}

func TestExternalLink(t *testing.T) {
	assert.True(t, externalLink("https://tool.dev/x"))
	assert.False(t, externalLink(""))
	assert.False(t, externalLink("https://old.reddit.com/r/foo"))
	assert.False(t, externalLink("https://v.redd.it/xyz"))
}

func devTools(n int) []map[string]any {
	out := make([]map[string]any, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, map[string]any{
			"name":        fmt.Sprintf("Tool %d", i),
			"description": "A developer tool for testing things",
			"website":     fmt.Sprintf("https://tool%d.dev", i),
			"upvotes":     i,
		})
	}
	return out
}

func TestDevHunt_Shapes(t *testing.T) {
	testCases := []struct {
		name string
		body any
		want int
	}{
		{"weeks with products", []any{
			map[string]any{"week": "2026-41", "products": devTools(4)},
			map[string]any{"week": "2026-42", "products": devTools(3)[:1]},
		}, 4},
		{"flat array", devTools(6), 6},
		{"products key", map[string]any{"products": devTools(2)}, 2},
		{"tools key", map[string]any{"tools": devTools(20)}, devHuntCap},
		{"data key", map[string]any{"data": devTools(3)}, 3},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv, _ := serveJSON(t, func(r *http.Request) (int, any) {
				return http.StatusOK, tc.body
			})

			got := NewDevHunt(srv.URL, testOptions()).Fetch(context.Background())

			require.Len(t, got, tc.want)
			assert.Equal(t, "Tool 0", got[0].Name)
			assert.Equal(t, domain.SourceDevHunt, got[0].Source)
		})
	}
}

func TestDevHunt_UnknownShape(t *testing.T) {
	srv, _ := serveJSON(t, func(r *http.Request) (int, any) {
		return http.StatusOK, map[string]any{"items": devTools(3)}
	})

	assert.Empty(t, NewDevHunt(srv.URL, testOptions()).Fetch(context.Background()))
}

func TestDevHunt_NormalizesFields(t *testing.T) {
	long := strings.Repeat("x", 400)
	srv, _ := serveJSON(t, func(r *http.Request) (int, any) {
		return http.StatusOK, []any{
			map[string]any{"title": "Titled", "tagline": long, "url": "https://titled.dev", "votes_count": 7,
				"tags": []any{map[string]any{"name": "cli"}, map[string]any{"name": "ai"}}},
			map[string]any{"name": "NoSite", "description": "has no website"},
		}
	})

	got := NewDevHunt(srv.URL, testOptions()).Fetch(context.Background())

	require.Len(t, got, 1)
	assert.Equal(t, "Titled", got[0].Name)
	assert.Equal(t, "https://titled.dev", got[0].Website)
	assert.Equal(t, 7, got[0].Votes)
	assert.Len(t, got[0].Description, devHuntMaxDescription)
	assert.Equal(t, []string{"cli", "ai"}, got[0].Topics)
}

func TestDevHunt_LenientVotes(t *testing.T) {
	srv, _ := serveJSON(t, func(r *http.Request) (int, any) {
		return http.StatusOK, []any{
			map[string]any{"name": "Quoted", "website": "https://quoted.dev", "votes": "12"},
			map[string]any{"name": "Garbled", "website": "https://garbled.dev", "upvotes": map[string]any{"n": 3}},
			map[string]any{"name": "Nulled", "website": "https://nulled.dev", "votes_count": nil},
			map[string]any{"name": "Plain", "website": "https://plain.dev", "upvotes": 9.0},
		}
	})

	got := NewDevHunt(srv.URL, testOptions()).Fetch(context.Background())

	require.Len(t, got, 4)
	votes := map[string]int{}
	for _, c := range got {
		votes[c.Name] = c.Votes
	}
	assert.Equal(t, map[string]int{"Quoted": 12, "Garbled": 0, "Nulled": 0, "Plain": 9}, votes)
}

func TestDevHunt_TimeoutIsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	opts := testOptions()
	opts.Timeout = 50 * time.Millisecond

	assert.Empty(t, NewDevHunt(srv.URL, opts).Fetch(context.Background()))
}
