package github

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/wiki-exporter/internal/model"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func testClient(api, raw, web *httptest.Server) *Client {
	opts := ClientOptions{Log: quietLogger()}
	if api != nil {
		opts.APIBaseURL = api.URL
	}
	if raw != nil {
		opts.RawBaseURL = raw.URL
	}
	if web != nil {
		opts.WebBaseURL = web.URL
	}
	return NewClient(opts)
}

func TestExtractRepoInfo(t *testing.T) {
	c := NewClient(ClientOptions{Log: quietLogger()})

	cases := []struct {
		url   string
		owner string
		repo  string
	}{
		{"https://github.com/golang/go", "golang", "go"},
		{"https://github.com/golang/go.git", "golang", "go"},
		{"https://github.com/golang/go/wiki/Home", "golang", "go"},
		{"https://www.github.com/golang/go", "golang", "go"},
	}
	for _, tc := range cases {
		owner, repo, err := c.ExtractRepoInfo(tc.url)
		require.NoError(t, err, tc.url)
		assert.Equal(t, tc.owner, owner)
		assert.Equal(t, tc.repo, repo)
	}
}

func TestExtractRepoInfoInvalid(t *testing.T) {
	c := NewClient(ClientOptions{Log: quietLogger()})

	for _, u := range []string{
		"https://gitlab.com/owner/repo",
		"https://github.com/",
		"https://github.com/only-owner",
		"https://evilgithub.com/owner/repo",
		"not a url at all ://",
	} {
		_, _, err := c.ExtractRepoInfo(u)
		assert.ErrorIs(t, err, ErrInvalidRepository, u)
	}
}

func TestHasWikiFlag(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/repos/owner/repo" {
			fmt.Fprint(w, `{"has_wiki": true}`)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer api.Close()

	c := testClient(api, nil, nil)
	assert.True(t, c.HasWiki(context.Background(), "owner", "repo"))
}

func TestHasWikiProbeOverridesStaleFlag(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/repos/owner/repo":
			fmt.Fprint(w, `{"has_wiki": false}`)
		case "/repos/owner/repo/wiki/pages":
			fmt.Fprint(w, `[{"title": "Home", "path": "Home"}]`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer api.Close()

	c := testClient(api, nil, nil)
	assert.True(t, c.HasWiki(context.Background(), "owner", "repo"))
}

func TestHasWikiDegradesToFalse(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer api.Close()

	c := testClient(api, nil, nil)
	assert.False(t, c.HasWiki(context.Background(), "owner", "repo"))
}

func TestListWikiPagesAPI(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/repos/owner/repo/wiki/pages" {
			fmt.Fprint(w, `[{"title": "Home", "path": "Home"}, {"title": "Getting Started", "path": "Getting-Started"}]`)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer api.Close()

	c := testClient(api, nil, nil)
	pages := c.ListWikiPages(context.Background(), "owner", "repo")
	require.Len(t, pages, 2)
	assert.Equal(t, model.WikiPage{Name: "Home", Path: "Home"}, pages[0])
	assert.Equal(t, model.WikiPage{Name: "Getting Started", Path: "Getting-Started"}, pages[1])
}

func TestListWikiPagesScrapeFallback(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer api.Close()

	web := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/owner/repo/wiki" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprint(w, `<html><body>
			<a href="/owner/repo/wiki/Home">Home</a>
			<a href="/owner/repo/wiki/Usage">Usage</a>
			<a href="/owner/repo/wiki/Usage">Usage duplicate</a>
			<a href="/owner/repo/wiki/_Sidebar">_Sidebar</a>
			<a href="/owner/repo/wiki/Usage/_history">history</a>
			<a href="/owner/other/wiki/Elsewhere">Elsewhere</a>
		</body></html>`)
	}))
	defer web.Close()

	raw := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer raw.Close()

	c := testClient(api, raw, web)
	pages := c.ListWikiPages(context.Background(), "owner", "repo")
	require.Len(t, pages, 2)
	assert.Equal(t, "Home", pages[0].Path)
	assert.Equal(t, "Usage", pages[1].Path)
}

func TestListWikiPagesProbeFallback(t *testing.T) {
	notFound := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer notFound.Close()

	raw := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/wiki/owner/repo/Home.md", "/wiki/owner/repo/Getting-Started.md":
			fmt.Fprint(w, "content")
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer raw.Close()

	c := testClient(notFound, raw, notFound)
	pages := c.ListWikiPages(context.Background(), "owner", "repo")
	require.Len(t, pages, 2)
	assert.Equal(t, "Home", pages[0].Name)
	assert.Equal(t, "Getting Started", pages[1].Name)
	assert.Equal(t, "Getting-Started", pages[1].Path)
}

func TestListWikiPagesEmpty(t *testing.T) {
	notFound := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer notFound.Close()

	c := testClient(notFound, notFound, notFound)
	assert.Empty(t, c.ListWikiPages(context.Background(), "owner", "repo"))
}

func TestGetWikiPageContentRaw(t *testing.T) {
	raw := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/wiki/owner/repo/Home.md" {
			fmt.Fprint(w, "# Home\n\nWelcome.")
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer raw.Close()

	c := testClient(nil, raw, nil)
	content := c.GetWikiPageContent(context.Background(), "owner", "repo", "Home")
	assert.Equal(t, "# Home\n\nWelcome.", content)
}

func TestGetWikiPageContentWebFallback(t *testing.T) {
	raw := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer raw.Close()

	web := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body><div class="markdown-body">Rendered page text</div></body></html>`)
	}))
	defer web.Close()

	c := testClient(nil, raw, web)
	content := c.GetWikiPageContent(context.Background(), "owner", "repo", "Home")
	assert.Equal(t, "Rendered page text", content)
}

func TestGetWikiPageContentPlaceholder(t *testing.T) {
	notFound := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer notFound.Close()

	c := testClient(nil, notFound, notFound)
	content := c.GetWikiPageContent(context.Background(), "owner", "repo", "Missing-Page")
	assert.Equal(t, "*Could not fetch content for Missing-Page*", content)
}

func TestGetReadme(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/repos/owner/repo/readme" {
			assert.Equal(t, "application/vnd.github.raw+json", r.Header.Get("Accept"))
			fmt.Fprint(w, "# repo\n\nA project.")
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer api.Close()

	c := testClient(api, nil, nil)
	readme, err := c.GetReadme(context.Background(), "owner", "repo")
	require.NoError(t, err)
	assert.Equal(t, "# repo\n\nA project.", readme)
}

func TestGetReadmeMissingIsNotAnError(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer api.Close()

	c := testClient(api, nil, nil)
	readme, err := c.GetReadme(context.Background(), "owner", "repo")
	require.NoError(t, err)
	assert.Empty(t, readme)
}

func TestAuthorizationHeader(t *testing.T) {
	var gotAuth string
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		fmt.Fprint(w, `{"has_wiki": true}`)
	}))
	defer api.Close()

	c := NewClient(ClientOptions{Token: "secret", APIBaseURL: api.URL, Log: quietLogger()})
	c.HasWiki(context.Background(), "owner", "repo")
	assert.Equal(t, "token secret", gotAuth)
}
