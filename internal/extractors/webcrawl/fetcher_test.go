package webcrawl

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corpuslabs/corpusd/internal/core/domain"
)

const testPage = `<!DOCTYPE html>
<html>
<head>
  <title>  Release Notes  </title>
  <link rel="canonical" href="https://docs.example.com/releases"/>
  <meta name="description" content="What changed in each release."/>
  <meta name="keywords" content="releases, changelog"/>
</head>
<body>
  <h1>Release Notes</h1>
  <p>Version 2.0 ships faster indexing.</p>
</body>
</html>`

func TestFetchExtractsTextAndMetadata(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Write([]byte(testPage))
	}))
	defer srv.Close()

	fetcher := New(WithRequestsPerSecond(1000))
	extraction, err := fetcher.Fetch(context.Background(), srv.URL+"/releases")
	require.NoError(t, err)

	assert.Equal(t, "Release Notes\n\nVersion 2.0 ships faster indexing.", extraction.Text)
	assert.Equal(t, srv.URL+"/releases", extraction.Metadata[domain.MetaSourceURL])
	assert.Equal(t, "Release Notes", extraction.Metadata[domain.MetaPageTitle])
	assert.Equal(t, "https://docs.example.com/releases", extraction.Metadata[domain.MetaCanonicalURL])
	assert.Equal(t, "What changed in each release.", extraction.Metadata[domain.MetaDescription])
	assert.Equal(t, "releases, changelog", extraction.Metadata[domain.MetaKeywords])
}

func TestFetchHonorsRobotsDisallow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			w.Write([]byte("User-agent: *\nDisallow: /private/\n"))
			return
		}
		w.Write([]byte(testPage))
	}))
	defer srv.Close()

	fetcher := New(WithRequestsPerSecond(1000))

	_, err := fetcher.Fetch(context.Background(), srv.URL+"/private/page")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTextExtraction)
	assert.Contains(t, err.Error(), "robots.txt")

	// Paths outside the disallowed prefix still crawl.
	extraction, err := fetcher.Fetch(context.Background(), srv.URL+"/public/page")
	require.NoError(t, err)
	assert.NotEmpty(t, extraction.Text)
}

func TestFetchFailsOpenWhenRobotsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(testPage))
	}))
	defer srv.Close()

	fetcher := New(WithRequestsPerSecond(1000))
	extraction, err := fetcher.Fetch(context.Background(), srv.URL+"/anything")
	require.NoError(t, err)
	assert.NotEmpty(t, extraction.Text)
}

func TestFetchSkipsRobotsWhenDisabled(t *testing.T) {
	var robotsFetched bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			robotsFetched = true
			w.Write([]byte("User-agent: *\nDisallow: /\n"))
			return
		}
		w.Write([]byte(testPage))
	}))
	defer srv.Close()

	fetcher := New(WithRespectRobots(false), WithRequestsPerSecond(1000))
	_, err := fetcher.Fetch(context.Background(), srv.URL+"/page")
	require.NoError(t, err)
	assert.False(t, robotsFetched)
}

func TestFetchRejectsInvalidURL(t *testing.T) {
	fetcher := New()

	for _, raw := range []string{"", "ftp://example.com/file", "not a url at all\x00"} {
		_, err := fetcher.Fetch(context.Background(), raw)
		require.Error(t, err, raw)
		assert.ErrorIs(t, err, domain.ErrValidation, raw)
	}
}

func TestFetchRejectsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	fetcher := New(WithRequestsPerSecond(1000))
	_, err := fetcher.Fetch(context.Background(), srv.URL+"/missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTextExtraction)
}

func TestParseRobots(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		userAgent string
		path      string
		allowed   bool
	}{
		{
			name:      "wildcard disallow",
			body:      "User-agent: *\nDisallow: /admin/",
			userAgent: "corpusd-crawler/1.0",
			path:      "/admin/users",
			allowed:   false,
		},
		{
			name:      "specific group overrides wildcard",
			body:      "User-agent: *\nDisallow: /\n\nUser-agent: corpusd-crawler\nDisallow: /private/",
			userAgent: "corpusd-crawler/1.0",
			path:      "/public",
			allowed:   true,
		},
		{
			name:      "empty disallow permits everything",
			body:      "User-agent: *\nDisallow:",
			userAgent: "corpusd-crawler/1.0",
			path:      "/anything",
			allowed:   true,
		},
		{
			name:      "comments ignored",
			body:      "# deny crawlers\nUser-agent: * # all\nDisallow: /secret",
			userAgent: "corpusd-crawler/1.0",
			path:      "/secret/file",
			allowed:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rules := parseRobots(tt.body, tt.userAgent)
			assert.Equal(t, tt.allowed, rules.allows(tt.path))
		})
	}
}
