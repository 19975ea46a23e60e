// Package github implements the content source for repository wikis and
// READMEs. Every operation except URL parsing is best-effort: failures
// degrade toward "no content" instead of propagating.
package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"github.com/jonathan/wiki-exporter/internal/fetch"
	"github.com/jonathan/wiki-exporter/internal/model"
)

// ErrInvalidRepository is returned when a URL is not a recognizable GitHub
// repository reference.
var ErrInvalidRepository = errors.New("not a valid GitHub repository URL")

// conventionalPages are wiki page names probed as a last resort when neither
// the API nor sidebar scraping yields a page list.
var conventionalPages = []string{
	"Getting-Started", "Installation", "Usage", "Configuration",
	"FAQ", "Troubleshooting", "Documentation", "Projects",
}

// Client talks to the GitHub API, the raw content host and the wiki web
// pages. Base URLs are configurable so tests can point it at a local server.
type Client struct {
	httpClient *http.Client
	token      string
	apiBase    string
	rawBase    string
	webBase    string
	log        *logrus.Logger
}

// ClientOptions configures a Client. Zero values select production defaults.
type ClientOptions struct {
	Token      string
	HTTPClient *http.Client
	APIBaseURL string
	RawBaseURL string
	WebBaseURL string
	Log        *logrus.Logger
}

// NewClient builds a content source client.
func NewClient(opts ClientOptions) *Client {
	c := &Client{
		httpClient: opts.HTTPClient,
		token:      opts.Token,
		apiBase:    opts.APIBaseURL,
		rawBase:    opts.RawBaseURL,
		webBase:    opts.WebBaseURL,
		log:        opts.Log,
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: fetch.DefaultTimeout}
	}
	if c.apiBase == "" {
		c.apiBase = "https://api.github.com"
	}
	if c.rawBase == "" {
		c.rawBase = "https://raw.githubusercontent.com"
	}
	if c.webBase == "" {
		c.webBase = "https://github.com"
	}
	if c.log == nil {
		c.log = logrus.StandardLogger()
	}
	return c
}

// ExtractRepoInfo parses owner and repository name from a GitHub URL. This
// is the only hard failure in the content source.
func (c *Client) ExtractRepoInfo(repoURL string) (string, string, error) {
	parsed, err := url.Parse(repoURL)
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", repoURL, ErrInvalidRepository)
	}
	host := parsed.Hostname()
	if host != "github.com" && !strings.HasSuffix(host, ".github.com") {
		return "", "", fmt.Errorf("%s: %w", repoURL, ErrInvalidRepository)
	}
	parts := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%s: %w", repoURL, ErrInvalidRepository)
	}
	return parts[0], strings.TrimSuffix(parts[1], ".git"), nil
}

// HasWiki reports whether the repository appears to have a wiki. The API
// flag is treated as a hint: when it says no, a direct probe of the wiki
// pages endpoint gets the final word. Query failures degrade to false.
func (c *Client) HasWiki(ctx context.Context, owner, repo string) bool {
	result, err := c.get(ctx, fmt.Sprintf("%s/repos/%s/%s", c.apiBase, owner, repo))
	if err != nil {
		c.log.WithError(err).WithField("repo", owner+"/"+repo).Warn("repository lookup failed, assuming no wiki")
		return false
	}

	var meta struct {
		HasWiki bool `json:"has_wiki"`
	}
	if err := json.Unmarshal([]byte(result.Body), &meta); err != nil {
		c.log.WithError(err).Warn("could not decode repository metadata, assuming no wiki")
		return false
	}
	if meta.HasWiki {
		return true
	}

	// The has_wiki flag can be stale; probe the wiki pages endpoint directly.
	if probe, err := c.get(ctx, fmt.Sprintf("%s/repos/%s/%s/wiki/pages", c.apiBase, owner, repo)); err == nil && probe.StatusCode == http.StatusOK {
		c.log.WithField("repo", owner+"/"+repo).Info("wiki pages exist despite has_wiki=false")
		return true
	}
	return false
}

// ListWikiPages returns the wiki's pages in order. It tries the structured
// API first, then scrapes the wiki sidebar, then probes conventionally-named
// pages. An empty result means "no wiki pages", never an error.
func (c *Client) ListWikiPages(ctx context.Context, owner, repo string) []model.WikiPage {
	if pages := c.listPagesAPI(ctx, owner, repo); len(pages) > 0 {
		return pages
	}
	if pages := c.listPagesScrape(ctx, owner, repo); len(pages) > 0 {
		return pages
	}
	return c.listPagesProbe(ctx, owner, repo)
}

func (c *Client) listPagesAPI(ctx context.Context, owner, repo string) []model.WikiPage {
	result, err := c.get(ctx, fmt.Sprintf("%s/repos/%s/%s/wiki/pages", c.apiBase, owner, repo))
	if err != nil {
		c.log.WithError(err).Debug("wiki pages API unavailable")
		return nil
	}

	var raw []struct {
		Title string `json:"title"`
		Path  string `json:"path"`
	}
	if err := json.Unmarshal([]byte(result.Body), &raw); err != nil {
		c.log.WithError(err).Debug("could not decode wiki pages listing")
		return nil
	}
	pages := make([]model.WikiPage, 0, len(raw))
	for _, p := range raw {
		pages = append(pages, model.WikiPage{Name: p.Title, Path: p.Path})
	}
	return pages
}

// listPagesScrape derives a page list from the wiki sidebar markup.
func (c *Client) listPagesScrape(ctx context.Context, owner, repo string) []model.WikiPage {
	result, err := c.get(ctx, fmt.Sprintf("%s/%s/%s/wiki", c.webBase, owner, repo))
	if err != nil {
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(result.Body))
	if err != nil {
		return nil
	}

	wikiPrefix := fmt.Sprintf("/%s/%s/wiki/", owner, repo)
	seen := make(map[string]bool)
	var pages []model.WikiPage
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if !strings.HasPrefix(href, wikiPrefix) {
			return
		}
		path := strings.TrimPrefix(href, wikiPrefix)
		// _Footer and _Sidebar are layout pages, not content.
		if path == "" || strings.HasPrefix(path, "_") || strings.Contains(path, "/") {
			return
		}
		name := strings.TrimSpace(sel.Text())
		if name == "" || seen[path] {
			return
		}
		seen[path] = true
		pages = append(pages, model.WikiPage{Name: name, Path: path})
	})
	if len(pages) > 0 {
		c.log.WithField("count", len(pages)).Info("found wiki pages by scraping sidebar")
	}
	return pages
}

// listPagesProbe checks Home plus a fixed set of conventional page names.
func (c *Client) listPagesProbe(ctx context.Context, owner, repo string) []model.WikiPage {
	var pages []model.WikiPage
	probe := append([]string{"Home"}, conventionalPages...)
	for _, path := range probe {
		result, err := c.get(ctx, fmt.Sprintf("%s/wiki/%s/%s/%s.md", c.rawBase, owner, repo, path))
		if err != nil || result.StatusCode != http.StatusOK {
			continue
		}
		pages = append(pages, model.WikiPage{Name: strings.ReplaceAll(path, "-", " "), Path: path})
	}
	if len(pages) > 0 {
		c.log.WithField("count", len(pages)).Info("found wiki pages via individual probes")
	}
	return pages
}

// GetWikiPageContent fetches one page's markdown. It tries raw-host URL
// variants first, then extracts the rendered body from the wiki web page.
// It never fails: the fallback is an inline error placeholder.
func (c *Client) GetWikiPageContent(ctx context.Context, owner, repo, pagePath string) string {
	encoded := pagePath
	if !strings.Contains(pagePath, "%") {
		encoded = url.PathEscape(strings.ReplaceAll(pagePath, " ", "-"))
	}

	variants := []string{
		fmt.Sprintf("%s/wiki/%s/%s/%s.md", c.rawBase, owner, repo, encoded),
		fmt.Sprintf("%s/wiki/%s/%s/%s", c.rawBase, owner, repo, encoded),
	}
	if encoded != pagePath {
		variants = append(variants,
			fmt.Sprintf("%s/wiki/%s/%s/%s.md", c.rawBase, owner, repo, pagePath),
			fmt.Sprintf("%s/wiki/%s/%s/%s", c.rawBase, owner, repo, pagePath),
		)
	}
	for _, u := range variants {
		if result, err := c.get(ctx, u); err == nil {
			return result.Body
		}
	}

	// Last resort: pull the rendered markup from the wiki web page.
	if result, err := c.get(ctx, fmt.Sprintf("%s/%s/%s/wiki/%s", c.webBase, owner, repo, encoded)); err == nil {
		if text := extractMarkdownBody(result.Body); text != "" {
			return text
		}
	}

	c.log.WithField("page", pagePath).Warn("all attempts to fetch wiki page content failed")
	return fmt.Sprintf("*Could not fetch content for %s*", pagePath)
}

// extractMarkdownBody pulls the text of the markdown-body container out of a
// rendered wiki page.
func extractMarkdownBody(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	body := doc.Find(".markdown-body").First()
	if body.Length() == 0 {
		return ""
	}
	return strings.TrimSpace(body.Text())
}

// GetReadme fetches the repository README as raw markdown. An empty string
// with nil error means the repository has no README.
func (c *Client) GetReadme(ctx context.Context, owner, repo string) (string, error) {
	result, err := fetch.URL(ctx, fmt.Sprintf("%s/repos/%s/%s/readme", c.apiBase, owner, repo), &fetch.Options{
		Client:  c.httpClient,
		Headers: c.headers(map[string]string{"Accept": "application/vnd.github.raw+json"}),
	})
	if err != nil {
		if result != nil && result.StatusCode == http.StatusNotFound {
			return "", nil
		}
		return "", fmt.Errorf("failed to fetch README for %s/%s: %w", owner, repo, err)
	}
	return result.Body, nil
}

func (c *Client) get(ctx context.Context, u string) (*fetch.Result, error) {
	return fetch.URL(ctx, u, &fetch.Options{Client: c.httpClient, Headers: c.headers(nil)})
}

func (c *Client) headers(extra map[string]string) map[string]string {
	headers := make(map[string]string, len(extra)+1)
	if c.token != "" {
		headers["Authorization"] = "token " + c.token
	}
	for k, v := range extra {
		headers[k] = v
	}
	return headers
}
