// Package github implements the remote API and web page sources on top of go-github.
package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v62/github"
	"github.com/huangsam/repometrics/internal/contract"
	"github.com/huangsam/repometrics/schema"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

// Client serves both the RepoSource and PageSource ports.
type Client struct {
	api    *gh.Client
	pages  *http.Client
	logger *logrus.Logger
}

var (
	_ contract.RepoSource = &Client{} // Compile-time check
	_ contract.PageSource = &Client{} // Compile-time check
)

// ClientOption allows configuring the client.
type ClientOption func(*Client)

// WithPageClient replaces the HTTP client used for web pages.
func WithPageClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.pages = hc
	}
}

// NewClient builds a client against cfg.APIURL. A non-empty token is sent as a
// bearer token on API calls only; web pages are fetched anonymously.
func NewClient(cfg *contract.Config, logger *logrus.Logger, opts ...ClientOption) (*Client, error) {
	apiHTTP := &http.Client{}
	if cfg.Token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
		apiHTTP = oauth2.NewClient(context.Background(), ts)
	}
	apiHTTP.Timeout = cfg.HTTPTimeout

	api := gh.NewClient(apiHTTP)
	base, err := url.Parse(strings.TrimRight(cfg.APIURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("invalid api url %q: %w", cfg.APIURL, err)
	}
	api.BaseURL = base

	if logger == nil {
		logger = contract.Logger
	}
	c := &Client{
		api:    api,
		pages:  &http.Client{Timeout: cfg.HTTPTimeout},
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// GetRepository implements the RepoSource interface.
func (c *Client) GetRepository(ctx context.Context, owner, name string) (schema.RepositoryInfo, error) {
	source := endpoint("repos", owner, name)
	repo, resp, err := c.api.Repositories.Get(ctx, owner, name)
	c.logCall(source, resp, err)
	if err != nil {
		return schema.RepositoryInfo{}, classify(source, resp, err)
	}
	if repo.CreatedAt == nil || repo.CreatedAt.IsZero() {
		return schema.RepositoryInfo{}, contract.NewShapeError(source, "repository has no created_at", nil)
	}
	return schema.RepositoryInfo{
		FullName:  repo.GetFullName(),
		CreatedAt: repo.GetCreatedAt().Time,
	}, nil
}

// ListLanguages implements the RepoSource interface.
func (c *Client) ListLanguages(ctx context.Context, owner, name string) (schema.LanguageBreakdown, error) {
	source := endpoint("repos", owner, name, "languages")
	langs, resp, err := c.api.Repositories.ListLanguages(ctx, owner, name)
	c.logCall(source, resp, err)
	if err != nil {
		return nil, classify(source, resp, err)
	}
	out := make(schema.LanguageBreakdown, len(langs))
	for lang, n := range langs {
		if n < 0 {
			return nil, contract.NewShapeError(source, fmt.Sprintf("negative byte count for %s", lang), nil)
		}
		out[lang] = int64(n)
	}
	return out, nil
}

// ListCommits implements the RepoSource interface. Only the newest commit is requested.
func (c *Client) ListCommits(ctx context.Context, owner, name string) ([]schema.CommitInfo, error) {
	source := endpoint("repos", owner, name, "commits")
	opts := &gh.CommitsListOptions{ListOptions: gh.ListOptions{PerPage: 1}}
	commits, resp, err := c.api.Repositories.ListCommits(ctx, owner, name, opts)
	c.logCall(source, resp, err)
	if err != nil {
		return nil, classify(source, resp, err)
	}
	out := make([]schema.CommitInfo, 0, len(commits))
	for _, rc := range commits {
		if rc == nil || rc.Commit == nil || rc.Commit.Committer == nil || rc.Commit.Committer.Date == nil {
			return nil, contract.NewShapeError(source, "commit entry has no committer date", nil)
		}
		out = append(out, schema.CommitInfo{
			SHA:           rc.GetSHA(),
			CommitterDate: rc.Commit.Committer.GetDate().Time,
		})
	}
	return out, nil
}

// ListContributorStats implements the RepoSource interface.
func (c *Client) ListContributorStats(ctx context.Context, owner, name string) ([]schema.ContributorStat, error) {
	source := endpoint("repos", owner, name, "stats", "contributors")
	stats, resp, err := c.api.Repositories.ListContributorsStats(ctx, owner, name)
	c.logCall(source, resp, err)
	if err != nil {
		return nil, classify(source, resp, err)
	}
	// A null body or a 204 decodes to a nil slice without error.
	if stats == nil {
		return nil, contract.NewShapeError(source, "contributor statistics are not a list", nil)
	}
	out := make([]schema.ContributorStat, 0, len(stats))
	for _, s := range stats {
		if s == nil || s.Author == nil || s.Author.Login == nil || s.Total == nil {
			return nil, contract.NewShapeError(source, "contributor entry has no author login or total", nil)
		}
		out = append(out, schema.ContributorStat{Login: s.Author.GetLogin(), Total: s.GetTotal()})
	}
	return out, nil
}

// FetchPage implements the PageSource interface.
func (c *Client) FetchPage(ctx context.Context, pageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, contract.NewTransportError(pageURL, 0, err)
	}
	req.Header.Set("Accept", "text/html")

	start := time.Now()
	resp, err := c.pages.Do(req)
	if err != nil {
		c.logger.WithFields(logrus.Fields{"url": pageURL, "error": err}).Debug("page fetch failed")
		return nil, contract.NewTransportError(pageURL, 0, err)
	}
	defer func() { _ = resp.Body.Close() }()
	c.logger.WithFields(logrus.Fields{
		"url":      pageURL,
		"status":   resp.StatusCode,
		"duration": time.Since(start),
	}).Debug("page fetched")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, contract.NewTransportError(pageURL, resp.StatusCode, errors.New(http.StatusText(resp.StatusCode)))
	}
	mediaType, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil || mediaType != "text/html" {
		return nil, contract.NewShapeError(pageURL, fmt.Sprintf("expected text/html, got %q", resp.Header.Get("Content-Type")), nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, contract.NewTransportError(pageURL, resp.StatusCode, err)
	}
	return body, nil
}

// classify maps go-github failures onto the collection error taxonomy.
func classify(source string, resp *gh.Response, err error) error {
	var accepted *gh.AcceptedError
	if errors.As(err, &accepted) {
		return contract.NewShapeError(source, "statistics are still being computed", err)
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return contract.NewShapeError(source, "unexpected response body", err)
	}

	status := 0
	var errResp *gh.ErrorResponse
	var rateErr *gh.RateLimitError
	switch {
	case errors.As(err, &errResp) && errResp.Response != nil:
		status = errResp.Response.StatusCode
	case errors.As(err, &rateErr) && rateErr.Response != nil:
		status = rateErr.Response.StatusCode
	case resp != nil && resp.Response != nil:
		status = resp.StatusCode
	}
	return contract.NewTransportError(source, status, err)
}

func (c *Client) logCall(source string, resp *gh.Response, err error) {
	fields := logrus.Fields{"endpoint": source}
	if resp != nil && resp.Response != nil {
		fields["status"] = resp.StatusCode
		fields["rate_remaining"] = resp.Rate.Remaining
	}
	if err != nil {
		fields["error"] = err
	}
	c.logger.WithFields(fields).Debug("api call")
}

func endpoint(parts ...string) string {
	return "/" + strings.Join(parts, "/")
}
