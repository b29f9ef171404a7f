// Package evernote provides a signed HTTP client for the note provider's
// OAuth 1.0a endpoints and note-store read API
package evernote

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"notegate/internal/core/oauthsig"
	perr "notegate/internal/platform/errors"
	"notegate/internal/platform/logger"
)

const (
	baseURLDefault = "https://www.evernote.com"
	defaultTimeout = 15 * time.Second
	defaultUA      = "notegate"

	requestTokenPath = "/oauth"
	accessTokenPath  = "/oauth"
	authorizePath    = "/OAuth.action"
)

// Options configures the Client
type Options struct {
	BaseURL        string
	ConsumerKey    string
	ConsumerSecret string
	CallbackURL    string
	UserAgent      string
	Timeout        time.Duration
}

// Client signs and issues requests against the provider.
// One instance serves the whole process; it holds no per-user state
type Client struct {
	http *http.Client
	opts Options
	log  logger.Logger
	now  func() time.Time
}

// New creates a Client with sane defaults
func New(o Options) *Client {
	if o.BaseURL == "" {
		o.BaseURL = baseURLDefault
	}
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	return &Client{
		http: &http.Client{Timeout: o.Timeout},
		opts: o,
		log:  *logger.Named("evernote"),
		now:  time.Now,
	}
}

// ConsumerConfigured reports whether real consumer credentials are present.
// Placeholder values from a template .env count as unconfigured
func (c *Client) ConsumerConfigured() bool {
	return !isPlaceholder(c.opts.ConsumerKey) && !isPlaceholder(c.opts.ConsumerSecret)
}

func isPlaceholder(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	switch v {
	case "", "your-consumer-key", "your-consumer-secret", "changeme", "xxx":
		return true
	}
	return false
}

// signedGet issues a GET with the oauth_* params plus extra query params,
// all signed, attached to the query string. Returns the raw response body
func (c *Client) signedGet(ctx context.Context, rawURL string, extra map[string]string, ap oauthsig.AuthParams, tokenSecret string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeUnknown, "bad provider url %q", rawURL)
	}
	base := u.Scheme + "://" + u.Host + u.Path

	params := ap.Build()
	for k, v := range extra {
		params[k] = v
	}
	sig := oauthsig.Sign(http.MethodGet, base, params, c.opts.ConsumerSecret, tokenSecret)
	params["oauth_signature"] = sig

	// stable query ordering keeps request logs diffable
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	q := url.Values{}
	for _, k := range keys {
		q.Set(k, params[k])
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"?"+q.Encode(), nil)
	if err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeUnknown, "provider new request failed")
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)

	start := c.now()
	resp, err := c.http.Do(req)
	lat := c.now().Sub(start)
	if err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeNetwork, "provider unreachable")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeNetwork, "reading provider response failed")
	}

	c.log.Debug().
		Str("path", u.Path).
		Int("status", resp.StatusCode).
		Dur("latency", lat).
		Msg("provider http response")

	switch {
	case resp.StatusCode == http.StatusOK:
		return string(body), nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", perr.AuthRequiredf("provider rejected credentials (status %d)", resp.StatusCode)
	case resp.StatusCode == http.StatusNotFound:
		return "", perr.NotFoundf("provider resource not found")
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", perr.QuotaExceededf("provider rate limit reached")
	default:
		return "", perr.Protocolf(resp.StatusCode, tail(string(body)), "provider returned status %d", resp.StatusCode)
	}
}

// tail keeps a short body excerpt for diagnostics
func tail(s string) string {
	const max = 2048
	if len(s) > max {
		return s[:max]
	}
	return s
}
