package classifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func anthropicServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "sk-test", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))

		var req apiRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "claude-test", req.Model)
		if assert.Len(t, req.Messages, 1) {
			assert.Equal(t, "classify me", req.Messages[0].Content)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestAnthropic_Complete(t *testing.T) {
	srv := anthropicServer(t, http.StatusOK, `{"content":[{"type":"text","text":"[{\"index\":0}]"}]}`)
	a := NewAnthropic("sk-test", "claude-test", 5*time.Second)
	a.endpoint = srv.URL

	text, err := a.Complete(context.Background(), "classify me")
	require.NoError(t, err)
	assert.Equal(t, `[{"index":0}]`, text)
}

func TestAnthropic_Errors(t *testing.T) {
	testCases := []struct {
		name   string
		status int
		body   string
	}{
		{"http status", http.StatusTooManyRequests, `{"error":{"message":"rate limited"}}`},
		{"api error", http.StatusOK, `{"error":{"message":"overloaded"}}`},
		{"no text block", http.StatusOK, `{"content":[{"type":"tool_use"}]}`},
		{"bad json", http.StatusOK, `not json`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv := anthropicServer(t, tc.status, tc.body)
			a := NewAnthropic("sk-test", "claude-test", 5*time.Second)
			a.endpoint = srv.URL

			_, err := a.Complete(context.Background(), "classify me")
			assert.Error(t, err)
		})
	}
}

func TestAnthropic_NoKey(t *testing.T) {
	_, err := NewAnthropic("", "", time.Second).Complete(context.Background(), "x")
	assert.Error(t, err)
}
