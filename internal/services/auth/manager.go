package auth

import (
	"context"
	"fmt"
	"time"

	"notegate/internal/adapters/evernote"
	perr "notegate/internal/platform/errors"
	"notegate/internal/platform/logger"
)

// Manager orchestrates the three-legged flow and the credential lifecycle.
// All state lives in the injected store and txn store so tests and future
// multi-context use stay clean
type Manager struct {
	client *evernote.Client
	store  Store
	txns   *TxnStore
	log    logger.Logger

	openURL func(string) error // seam for tests
	now     func() time.Time
}

// Option customizes a Manager
type Option func(*Manager)

// WithBrowserOpener overrides how the authorize URL reaches the user.
// Headless deployments can log the URL instead of spawning a browser
func WithBrowserOpener(fn func(string) error) Option {
	return func(m *Manager) { m.openURL = fn }
}

// NewManager wires a Manager
func NewManager(client *evernote.Client, store Store, txns *TxnStore, opts ...Option) *Manager {
	m := &Manager{
		client:  client,
		store:   store,
		txns:    txns,
		log:     *logger.Named("auth"),
		openURL: openBrowser,
		now:     time.Now,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Pending is returned when the user still has to approve access in the
// browser; the dispatch layer holds it until the callback arrives
type Pending struct {
	AuthorizeURL string `json:"authorizeUrl"`
	RequestToken string `json:"requestToken"`
}

// Status is the answer to "am I logged in"
type Status struct {
	HasCredential bool   `json:"hasCredential"`
	IsExpired     bool   `json:"isExpired"`
	Message       string `json:"message"`
}

// Credential returns the stored credential if present and unexpired
func (m *Manager) Credential() (evernote.Credential, error) {
	cred, ok, err := m.store.Load()
	if err != nil {
		return evernote.Credential{}, err
	}
	if !ok {
		return evernote.Credential{}, perr.AuthRequiredf("not authenticated; run the login flow")
	}
	if cred.Expired(m.now()) {
		return evernote.Credential{}, perr.AuthRequiredf("stored credential expired; re-authenticate")
	}
	return cred, nil
}

// Authenticate returns the stored credential when one is valid, otherwise
// starts the OAuth flow: request token, browser launch, pending state.
// Configuration problems fail fast and never crash the process
func (m *Manager) Authenticate(ctx context.Context) (evernote.Credential, *Pending, error) {
	cred, ok, err := m.store.Load()
	if err != nil {
		return evernote.Credential{}, nil, err
	}
	if ok && !cred.Expired(m.now()) {
		return cred, nil, nil
	}

	if !m.client.ConsumerConfigured() {
		return evernote.Credential{}, nil, perr.Configf(
			"consumer key/secret not configured; set EVERNOTE_CONSUMER_KEY and EVERNOTE_CONSUMER_SECRET")
	}

	rt, err := m.client.RequestToken(ctx)
	if err != nil {
		return evernote.Credential{}, nil, err
	}
	m.txns.Put(Txn{RequestToken: rt.Token, RequestTokenSecret: rt.TokenSecret})

	authURL := m.client.AuthorizeURL(rt.Token)
	if err := m.openURL(authURL); err != nil {
		// the URL still reaches the user through the pending payload
		m.log.Warn().Err(err).Msg("could not launch browser; user must open the URL manually")
	}
	m.log.Info().Msg("authorization pending; waiting for callback")
	return evernote.Credential{}, &Pending{AuthorizeURL: authURL, RequestToken: rt.Token}, nil
}

// CompleteAuthentication consumes the pending transaction for token,
// exchanges it using the verifier, and persists the resulting credential
func (m *Manager) CompleteAuthentication(ctx context.Context, token, verifier string) (evernote.Credential, error) {
	txn, ok := m.txns.Take(token)
	if !ok {
		return evernote.Credential{}, perr.Conflictf("no pending authorization for this token; restart the login flow")
	}
	cred, err := m.client.ExchangeToken(ctx, txn.RequestToken, txn.RequestTokenSecret, verifier)
	if err != nil {
		return evernote.Credential{}, err
	}
	if err := m.store.Persist(cred); err != nil {
		return evernote.Credential{}, err
	}
	m.log.Info().Str("user_id", cred.UserID).Msg("authenticated and persisted")
	return cred, nil
}

// CheckExpiration reports credential presence and validity without
// touching the network
func (m *Manager) CheckExpiration() (Status, error) {
	cred, ok, err := m.store.Load()
	if err != nil {
		return Status{}, err
	}
	if !ok {
		return Status{Message: "no stored credential; authentication required"}, nil
	}
	if cred.ExpiresAt == 0 {
		return Status{
			HasCredential: true,
			Message:       "credential has no expiry; assumed valid",
		}, nil
	}
	exp := time.UnixMilli(cred.ExpiresAt)
	if cred.Expired(m.now()) {
		return Status{
			HasCredential: true,
			IsExpired:     true,
			Message:       fmt.Sprintf("credential expired at %s; re-authenticate", exp.Format(time.RFC3339)),
		}, nil
	}
	return Status{
		HasCredential: true,
		Message:       fmt.Sprintf("credential valid until %s", exp.Format(time.RFC3339)),
	}, nil
}

// Logout clears the stored credential so the next operation re-runs the flow
func (m *Manager) Logout() error {
	return m.store.Clear()
}
