package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	perr "notegate/internal/platform/errors"
	"notegate/internal/platform/logger"
	phttp "notegate/internal/platform/net/http"
	"notegate/internal/services/auth"
	"notegate/internal/services/notes"
)

// Deps carries the services the surface dispatches into
type Deps struct {
	Auth    *auth.Manager
	Notes   *notes.Service
	Version string
}

// Mount attaches every route to the router
func Mount(r phttp.Router, d Deps) {
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.Handle("/metrics", promhttp.Handler())

	manifest := BuildManifest(d.Version)
	phttp.GetJSON(r, "/manifest", func(*http.Request) (any, error) {
		return manifest, nil
	})

	r.Route("/tools", func(r phttp.Router) {
		phttp.PostJSON(r, "/search", func(req *http.Request, in notes.SearchInput) (any, error) {
			return d.Notes.Search(req.Context(), in)
		})
		phttp.PostJSON(r, "/get_search", func(req *http.Request, in notes.GetSearchInput) (any, error) {
			return d.Notes.GetSearch(req.Context(), in)
		})
		phttp.PostJSON(r, "/get_note_metadata", func(req *http.Request, in notes.MetadataInput) (any, error) {
			return d.Notes.GetNoteMetadata(req.Context(), in)
		})
		phttp.PostJSON(r, "/get_note_content", func(req *http.Request, in notes.ContentInput) (any, error) {
			return d.Notes.GetNoteContent(req.Context(), in)
		})
	})

	r.Route("/auth", func(r phttp.Router) {
		r.Post("/login", loginHandler(d))
		phttp.GetJSON(r, "/status", func(*http.Request) (any, error) {
			return d.Auth.CheckExpiration()
		})
		r.Post("/logout", phttp.Handle(func(*http.Request) phttp.Response {
			if err := d.Auth.Logout(); err != nil {
				return phttp.Error(err)
			}
			return phttp.OK(map[string]string{"status": "logged out"})
		}))
	})

	r.Get("/oauth/callback", callbackHandler(d))
}

// loginResult is the /auth/login payload: either an established credential
// summary or the pending authorization the user must approve
type loginResult struct {
	Authenticated bool          `json:"authenticated"`
	UserID        string        `json:"userId,omitempty"`
	Pending       *auth.Pending `json:"pending,omitempty"`
}

func loginHandler(d Deps) phttp.Handler {
	return phttp.Handle(func(r *http.Request) phttp.Response {
		cred, pending, err := d.Auth.Authenticate(r.Context())
		if err != nil {
			return phttp.Error(err)
		}
		if pending != nil {
			return phttp.OK(loginResult{Pending: pending})
		}
		return phttp.OK(loginResult{Authenticated: true, UserID: cred.UserID})
	})
}

// callbackHandler completes the three-legged flow. The response renders as
// a tiny HTML page because the provider redirects the user's browser here,
// not an API client
func callbackHandler(d Deps) phttp.Handler {
	log := logger.Named("api")
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		token := q.Get("oauth_token")
		verifier := q.Get("oauth_verifier")
		if token == "" {
			phttp.RespondError(w, r, perr.Validationf("callback missing oauth_token"))
			return
		}
		if verifier == "" {
			// the user declined authorization on the provider's page
			phttp.RespondError(w, r, perr.AuthRequiredf("authorization was declined; run the login flow again"))
			return
		}
		cred, err := d.Auth.CompleteAuthentication(r.Context(), token, verifier)
		if err != nil {
			log.Error().Err(err).Msg("callback exchange failed")
			phttp.RespondError(w, r, err)
			return
		}
		log.Info().Str("user_id", cred.UserID).Msg("authorization completed")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<!doctype html><html><body>" +
			"<p>Authentication complete. You can close this window.</p>" +
			"</body></html>"))
	}
}
