package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"notegate/internal/adapters/evernote"
	perr "notegate/internal/platform/errors"
	phttp "notegate/internal/platform/net/http"
	"notegate/internal/services/auth"
	"notegate/internal/services/notes"
)

// backend fakes the provider: oauth legs plus a note store
func backend(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/oauth"):
			if r.URL.Query().Get("oauth_token") == "" {
				_, _ = w.Write([]byte("oauth_token=rt-1&oauth_token_secret=rts-1"))
				return
			}
			_, _ = w.Write([]byte("oauth_token=at-1&oauth_token_secret=&edam_shard=s1&edam_userId=7" +
				"&edam_noteStoreUrl=https%3A%2F%2Fexample.com%2Fns"))
		case r.URL.Path == "/notes/search":
			_, _ = w.Write([]byte(`{"totalNotes":1,"startIndex":0,"notes":[{"guid":"n-1","title":"Hull fix"}]}`))
		case r.URL.Path == "/notes/n-1/content":
			_, _ = w.Write([]byte(`{"guid":"n-1","title":"Hull fix","content":"<en-note>Fix the <b>hull</b></en-note>"}`))
		case r.URL.Path == "/notes/n-1":
			_, _ = w.Write([]byte(`{"guid":"n-1","title":"Hull fix","notebookGuid":"nb-1"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestSurface(t *testing.T, seedCredential bool) (*httptest.Server, *auth.Manager) {
	t.Helper()
	be := backend(t)

	client := evernote.New(evernote.Options{
		BaseURL:        be.URL,
		ConsumerKey:    "test-key",
		ConsumerSecret: "test-secret",
	})
	store, err := auth.NewFileStore(filepath.Join(t.TempDir(), "credential.json"))
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if seedCredential {
		err := store.Persist(evernote.Credential{AccessToken: "at-1", NoteStoreURL: be.URL})
		if err != nil {
			t.Fatalf("seed credential: %v", err)
		}
	}
	mgr := auth.NewManager(client, store, auth.NewTxnStore(),
		auth.WithBrowserOpener(func(string) error { return nil }))
	svc := notes.NewService(client, mgr, notes.NewCache(time.Hour))

	mux := chi.NewRouter()
	Mount(phttp.AdaptChi(mux), Deps{Auth: mgr, Notes: svc, Version: "test"})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, mgr
}

func getEnvelope(t *testing.T, srv *httptest.Server, path string) (int, phttp.Envelope, []byte) {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	var env phttp.Envelope
	raw := json.RawMessage{}
	env.Data = &raw
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return resp.StatusCode, env, raw
}

func postEnvelope(t *testing.T, srv *httptest.Server, path, body string) (int, phttp.Envelope, []byte) {
	t.Helper()
	resp, err := http.Post(srv.URL+path, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	defer resp.Body.Close()
	var env phttp.Envelope
	raw := json.RawMessage{}
	env.Data = &raw
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return resp.StatusCode, env, raw
}

func TestManifestListsEveryTool(t *testing.T) {
	srv, _ := newTestSurface(t, false)
	status, _, data := getEnvelope(t, srv, "/manifest")
	if status != http.StatusOK {
		t.Fatalf("status %d", status)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("decode manifest: %v", err)
	}
	want := map[string]bool{"search": false, "get_search": false, "get_note_metadata": false, "get_note_content": false}
	for _, tool := range m.Tools {
		if _, ok := want[tool.Name]; !ok {
			t.Errorf("unexpected tool %q", tool.Name)
		}
		want[tool.Name] = true
	}
	for name, seen := range want {
		if !seen {
			t.Errorf("tool %q missing from manifest", name)
		}
	}
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestSurface(t, false)
	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("status %d", resp.StatusCode)
	}
}

func TestSearchToolEndToEnd(t *testing.T) {
	srv, _ := newTestSurface(t, true)
	status, env, data := postEnvelope(t, srv, "/tools/search", `{"query":"boat"}`)
	if status != http.StatusOK || env.Error != "" {
		t.Fatalf("status=%d env=%+v", status, env)
	}
	var out notes.SearchOutput
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.SearchID == "" || out.Result.TotalNotes != 1 {
		t.Fatalf("search output %+v", out)
	}

	// replay through get_search with the returned id
	status, _, data = postEnvelope(t, srv, "/tools/get_search", `{"searchId":"`+out.SearchID+`"}`)
	if status != http.StatusOK {
		t.Fatalf("get_search status %d", status)
	}
	var replay notes.SearchOutput
	if err := json.Unmarshal(data, &replay); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !replay.FromCache || replay.Result.TotalNotes != 1 {
		t.Fatalf("replay %+v", replay)
	}
}

func TestContentToolFormats(t *testing.T) {
	srv, _ := newTestSurface(t, true)
	status, _, data := postEnvelope(t, srv, "/tools/get_note_content", `{"noteGuid":"n-1"}`)
	if status != http.StatusOK {
		t.Fatalf("status %d", status)
	}
	var out notes.ContentOutput
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Content != "Fix the hull" || out.Format != notes.FormatText {
		t.Fatalf("content %+v", out)
	}
}

func TestErrorEnvelopeCarriesWireCode(t *testing.T) {
	srv, _ := newTestSurface(t, true)

	// no search criterion at all
	status, env, _ := postEnvelope(t, srv, "/tools/search", `{"maxResults":5}`)
	if status != http.StatusBadRequest || env.Code != perr.ErrorCodeValidation {
		t.Fatalf("status=%d env=%+v", status, env)
	}

	// invalid JSON body
	status, env, _ = postEnvelope(t, srv, "/tools/search", `{"query":`)
	if status != http.StatusBadRequest || env.Code != perr.ErrorCodeJSON {
		t.Fatalf("status=%d env=%+v", status, env)
	}
}

func TestToolsRequireAuthentication(t *testing.T) {
	srv, _ := newTestSurface(t, false)
	status, env, _ := postEnvelope(t, srv, "/tools/search", `{"query":"boat"}`)
	if status != http.StatusUnauthorized || env.Code != perr.ErrorCodeAuthRequired {
		t.Fatalf("status=%d env=%+v", status, env)
	}
}

func TestAuthStatusAndLogout(t *testing.T) {
	srv, _ := newTestSurface(t, true)

	status, _, data := getEnvelope(t, srv, "/auth/status")
	if status != http.StatusOK {
		t.Fatalf("status %d", status)
	}
	var st auth.Status
	if err := json.Unmarshal(data, &st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !st.HasCredential || st.IsExpired {
		t.Fatalf("status %+v", st)
	}

	if code, _, _ := postEnvelope(t, srv, "/auth/logout", ""); code != http.StatusOK {
		t.Fatalf("logout status %d", code)
	}

	_, _, data = getEnvelope(t, srv, "/auth/status")
	st = auth.Status{}
	if err := json.Unmarshal(data, &st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if st.HasCredential {
		t.Fatalf("credential survived logout: %+v", st)
	}
}

func TestOAuthCallbackCompletesLogin(t *testing.T) {
	srv, mgr := newTestSurface(t, false)

	// start the flow so a pending transaction exists
	_, pending, err := mgr.Authenticate(context.Background())
	if err != nil || pending == nil {
		t.Fatalf("Authenticate: pending=%+v err=%v", pending, err)
	}

	resp, err := http.Get(srv.URL + "/oauth/callback?oauth_token=" + pending.RequestToken + "&oauth_verifier=v-1")
	if err != nil {
		t.Fatalf("callback: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("callback status %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("callback content type %q", ct)
	}

	if _, err := mgr.Credential(); err != nil {
		t.Fatalf("credential not persisted after callback: %v", err)
	}
}

func TestOAuthCallbackRejectsDecline(t *testing.T) {
	srv, _ := newTestSurface(t, false)
	resp, err := http.Get(srv.URL + "/oauth/callback?oauth_token=rt-1")
	if err != nil {
		t.Fatalf("callback: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("declined callback status %d", resp.StatusCode)
	}
}
