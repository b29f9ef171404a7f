package auth

import (
	"os"
	"path/filepath"
	"testing"

	"notegate/internal/adapters/evernote"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "credential.json")
	s, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	if _, ok, err := s.Load(); err != nil || ok {
		t.Fatalf("fresh store should be empty, got ok=%v err=%v", ok, err)
	}

	want := evernote.Credential{
		AccessToken:  "at-1",
		TokenSecret:  "ts-1",
		ShardID:      "s1",
		UserID:       "42",
		ExpiresAt:    1893456000000,
		NoteStoreURL: "https://example.com/shard/s1/notestore",
	}
	if err := s.Persist(want); err != nil {
		t.Fatalf("Persist: %v", err)
	}

	// a new store instance over the same path sees the credential,
	// mirroring a process restart
	s2, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	got, ok, err := s2.Load()
	if err != nil || !ok {
		t.Fatalf("Load after restart: ok=%v err=%v", ok, err)
	}
	if got != want {
		t.Fatalf("round trip mismatch: %+v vs %+v", got, want)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("credential file mode = %o, want 600", perm)
	}
}

func TestFileStorePersistReplacesWholesale(t *testing.T) {
	s, err := NewFileStore(filepath.Join(t.TempDir(), "credential.json"))
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	first := evernote.Credential{AccessToken: "old", ShardID: "s1", ExpiresAt: 123}
	if err := s.Persist(first); err != nil {
		t.Fatalf("Persist: %v", err)
	}
	second := evernote.Credential{AccessToken: "new"}
	if err := s.Persist(second); err != nil {
		t.Fatalf("Persist: %v", err)
	}
	got, _, _ := s.Load()
	if got.ShardID != "" || got.ExpiresAt != 0 || got.AccessToken != "new" {
		t.Fatalf("stale fields survived replacement: %+v", got)
	}
}

func TestFileStoreNormalizesPlaceholderSecret(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credential.json")
	// written by an older build that stored the provider's literal placeholder
	if err := os.WriteFile(path, []byte(`{"accessToken":"at","tokenSecret":"null"}`), 0o600); err != nil {
		t.Fatalf("seed: %v", err)
	}
	s, _ := NewFileStore(path)
	got, ok, err := s.Load()
	if err != nil || !ok {
		t.Fatalf("Load: ok=%v err=%v", ok, err)
	}
	if got.TokenSecret != "" {
		t.Fatalf("placeholder secret not normalized: %q", got.TokenSecret)
	}
}

func TestFileStoreClear(t *testing.T) {
	s, _ := NewFileStore(filepath.Join(t.TempDir(), "credential.json"))
	if err := s.Clear(); err != nil {
		t.Fatalf("Clear on empty store should be a no-op: %v", err)
	}
	_ = s.Persist(evernote.Credential{AccessToken: "at"})
	if err := s.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, ok, _ := s.Load(); ok {
		t.Fatalf("credential survived Clear")
	}
}

func TestEnvStore(t *testing.T) {
	empty := &EnvStore{}
	if _, ok, _ := empty.Load(); ok {
		t.Fatalf("empty EnvStore should report absent")
	}

	s := &EnvStore{Token: "at-env", NoteStoreURL: "https://example.com/ns"}
	cred, ok, err := s.Load()
	if err != nil || !ok || cred.AccessToken != "at-env" {
		t.Fatalf("Load: %+v ok=%v err=%v", cred, ok, err)
	}
	if err := s.Persist(cred); err == nil {
		t.Fatalf("Persist must be rejected on EnvStore")
	}
	if err := s.Clear(); err == nil {
		t.Fatalf("Clear must be rejected on EnvStore")
	}
}

func TestTxnStoreSingleUse(t *testing.T) {
	ts := NewTxnStore()
	ts.Put(Txn{RequestToken: "rt-1", RequestTokenSecret: "rts-1"})
	ts.Put(Txn{RequestToken: "rt-2", RequestTokenSecret: "rts-2"})
	if ts.Len() != 2 {
		t.Fatalf("Len = %d", ts.Len())
	}

	got, ok := ts.Take("rt-1")
	if !ok || got.RequestTokenSecret != "rts-1" {
		t.Fatalf("Take: %+v ok=%v", got, ok)
	}
	if _, ok := ts.Take("rt-1"); ok {
		t.Fatalf("transaction must be single-use")
	}
	if ts.Len() != 1 {
		t.Fatalf("Len after take = %d", ts.Len())
	}
}
