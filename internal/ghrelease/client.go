// Package ghrelease attaches build artifacts to GitHub release tags.
package ghrelease

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/go-github/v57/github"
	"github.com/ternarybob/arbor"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout is the default HTTP timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRateLimit is the default rate limit (requests per second).
	DefaultRateLimit = 5
)

// Client wraps the GitHub API for resolving releases and uploading assets.
type Client struct {
	gh         *github.Client
	httpClient *http.Client
	logger     arbor.ILogger
	limiter    *rate.Limiter
	apiURL     string
	uploadURL  string
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets a logger.
func WithLogger(logger arbor.ILogger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets a custom rate limit.
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithBaseURLs points the client at a custom API and upload endpoint
// instead of api.github.com. Used for GitHub Enterprise and for tests.
func WithBaseURLs(apiURL, uploadURL string) ClientOption {
	return func(c *Client) {
		c.apiURL = apiURL
		c.uploadURL = uploadURL
	}
}

// NewClient creates a GitHub client authenticated with the given token.
func NewClient(token string, opts ...ClientOption) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("github token is required")
	}

	c := &Client{
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
	}

	for _, opt := range opts {
		opt(c)
	}

	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, c.httpClient)
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)
	// oauth2.NewClient does not carry the base client's timeout over.
	tc.Timeout = c.httpClient.Timeout

	c.gh = github.NewClient(tc)

	if c.apiURL != "" {
		base, err := url.Parse(ensureTrailingSlash(c.apiURL))
		if err != nil {
			return nil, fmt.Errorf("invalid API base URL: %w", err)
		}
		c.gh.BaseURL = base
	}
	if c.uploadURL != "" {
		upload, err := url.Parse(ensureTrailingSlash(c.uploadURL))
		if err != nil {
			return nil, fmt.Errorf("invalid upload base URL: %w", err)
		}
		c.gh.UploadURL = upload
	}

	return c, nil
}

func ensureTrailingSlash(s string) string {
	if !strings.HasSuffix(s, "/") {
		return s + "/"
	}
	return s
}

// SplitRepo splits an "owner/name" repository identifier.
func SplitRepo(repo string) (owner, name string, err error) {
	parts := strings.Split(repo, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repository '%s', expected owner/name", repo)
	}
	return parts[0], parts[1], nil
}

// Login verifies the token works by fetching the authenticated user.
func (c *Client) Login(ctx context.Context) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit exceeded: %w", err)
	}

	user, _, err := c.gh.Users.Get(ctx, "")
	if err != nil {
		return "", fmt.Errorf("github login failed: %w", err)
	}
	return user.GetLogin(), nil
}

// ResolveRelease resolves the named repository, then the release tagged
// tag within it.
func (c *Client) ResolveRelease(ctx context.Context, owner, name, tag string) (*github.RepositoryRelease, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit exceeded: %w", err)
	}

	if c.logger != nil {
		c.logger.Debug().
			Str("repo", owner+"/"+name).
			Msg("Resolving repository")
	}

	if _, _, err := c.gh.Repositories.Get(ctx, owner, name); err != nil {
		return nil, fmt.Errorf("failed to resolve repository %s/%s: %w", owner, name, err)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit exceeded: %w", err)
	}

	if c.logger != nil {
		c.logger.Debug().
			Str("repo", owner+"/"+name).
			Str("tag", tag).
			Msg("Resolving release")
	}

	release, _, err := c.gh.Repositories.GetReleaseByTag(ctx, owner, name, tag)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve release '%s' in %s/%s: %w", tag, owner, name, err)
	}
	return release, nil
}

// UploadAsset attaches the local file at path to the given release. The
// asset is named after the file's base name.
func (c *Client) UploadAsset(ctx context.Context, owner, name string, releaseID int64, path string) (*github.ReleaseAsset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open asset file: %w", err)
	}
	defer file.Close()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit exceeded: %w", err)
	}

	if c.logger != nil {
		c.logger.Debug().
			Str("file", path).
			Int64("release_id", releaseID).
			Msg("Uploading release asset")
	}

	opts := &github.UploadOptions{Name: filepath.Base(path)}
	asset, _, err := c.gh.Repositories.UploadReleaseAsset(ctx, owner, name, releaseID, opts, file)
	if err != nil {
		return nil, fmt.Errorf("failed to upload '%s': %w", path, err)
	}
	return asset, nil
}

// UploadReleaseAsset resolves repo and tag, then uploads the file at path
// as an asset of that release. No retries; a conflict with an existing
// asset of the same name surfaces as an API error.
func (c *Client) UploadReleaseAsset(ctx context.Context, repo, tag, path string) (*github.ReleaseAsset, error) {
	owner, name, err := SplitRepo(repo)
	if err != nil {
		return nil, err
	}

	release, err := c.ResolveRelease(ctx, owner, name, tag)
	if err != nil {
		return nil, err
	}

	return c.UploadAsset(ctx, owner, name, release.GetID(), path)
}
