package evernote

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"notegate/internal/core/oauthsig"
	perr "notegate/internal/platform/errors"
)

// secretPlaceholder is the literal some provider responses carry instead
// of an empty oauth_token_secret; it means "no secret"
const secretPlaceholder = "null"

// Credential is an authorized session with the provider.
// Replaced wholesale on re-authentication, never mutated in place
type Credential struct {
	AccessToken     string `json:"accessToken"`
	TokenSecret     string `json:"tokenSecret,omitempty"`
	ShardID         string `json:"shardId,omitempty"`
	UserID          string `json:"userId,omitempty"`
	ExpiresAt       int64  `json:"expiresAt,omitempty"` // epoch milliseconds, 0 = provider gave no expiry
	NoteStoreURL    string `json:"noteStoreUrl,omitempty"`
	WebAPIURLPrefix string `json:"webApiUrlPrefix,omitempty"`
}

// Normalize maps the provider's empty-secret placeholder to an actual
// empty string so signing uses the right key
func (c Credential) Normalize() Credential {
	if strings.EqualFold(strings.TrimSpace(c.TokenSecret), secretPlaceholder) {
		c.TokenSecret = ""
	}
	return c
}

// Expired reports whether the credential is past its expiry.
// A missing expiry means valid indefinitely
func (c Credential) Expired(now time.Time) bool {
	if c.ExpiresAt == 0 {
		return false
	}
	return now.UnixMilli() > c.ExpiresAt
}

// RequestTokenResult is the short-lived state from the first OAuth leg
type RequestTokenResult struct {
	Token       string
	TokenSecret string
}

// RequestToken performs the unauthenticated leg: a signed GET carrying the
// callback, no token. Both token fields are required in the response
func (c *Client) RequestToken(ctx context.Context) (RequestTokenResult, error) {
	body, err := c.signedGet(ctx, c.opts.BaseURL+requestTokenPath, nil, oauthsig.AuthParams{
		ConsumerKey: c.opts.ConsumerKey,
		Callback:    c.opts.CallbackURL,
	}, "")
	if err != nil {
		return RequestTokenResult{}, err
	}

	vals, err := url.ParseQuery(body)
	if err != nil {
		return RequestTokenResult{}, perr.Wrapf(err, perr.ErrorCodeMalformedResponse, "request token response not form-encoded")
	}
	tok := vals.Get("oauth_token")
	sec := vals.Get("oauth_token_secret")
	if tok == "" || sec == "" {
		return RequestTokenResult{}, perr.MalformedResponsef("request token response missing oauth_token or oauth_token_secret")
	}
	c.log.Info().Msg("request token obtained")
	return RequestTokenResult{Token: tok, TokenSecret: sec}, nil
}

// AuthorizeURL is where the user's browser grants access to the request token
func (c *Client) AuthorizeURL(requestToken string) string {
	return c.opts.BaseURL + authorizePath + "?oauth_token=" + url.QueryEscape(requestToken)
}

// ExchangeToken performs the final leg: trades an authorized request token
// plus verifier for a durable credential. The provider legitimately returns
// an empty secret on this leg, so only the primary token is required
func (c *Client) ExchangeToken(ctx context.Context, requestToken, requestTokenSecret, verifier string) (Credential, error) {
	body, err := c.signedGet(ctx, c.opts.BaseURL+accessTokenPath, nil, oauthsig.AuthParams{
		ConsumerKey: c.opts.ConsumerKey,
		Token:       requestToken,
		Verifier:    verifier,
	}, requestTokenSecret)
	if err != nil {
		return Credential{}, err
	}

	vals, err := url.ParseQuery(body)
	if err != nil {
		return Credential{}, perr.Wrapf(err, perr.ErrorCodeMalformedResponse, "access token response not form-encoded")
	}
	tok := vals.Get("oauth_token")
	if tok == "" {
		return Credential{}, perr.MalformedResponsef("access token response missing oauth_token")
	}

	cred := Credential{
		AccessToken:     tok,
		TokenSecret:     vals.Get("oauth_token_secret"),
		ShardID:         vals.Get("edam_shard"),
		UserID:          vals.Get("edam_userId"),
		NoteStoreURL:    vals.Get("edam_noteStoreUrl"),
		WebAPIURLPrefix: vals.Get("edam_webApiUrlPrefix"),
	}
	// edam_expires is epoch milliseconds as observed from live responses;
	// do not scale it
	if raw := vals.Get("edam_expires"); raw != "" {
		ms, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Credential{}, perr.MalformedResponsef("access token response has non-numeric edam_expires %q", raw)
		}
		cred.ExpiresAt = ms
	}
	cred = cred.Normalize()
	c.log.Info().Str("shard", cred.ShardID).Str("user_id", cred.UserID).Msg("access token obtained")
	return cred, nil
}
