// Package auth owns the credential lifecycle: durable storage, pending
// OAuth transactions, expiry checks, and flow orchestration
package auth

import (
	"encoding/json"
	"os"
	"path/filepath"

	"notegate/internal/adapters/evernote"
	perr "notegate/internal/platform/errors"
)

// Store persists exactly one credential. After Persist, a Load in a new
// process returns an equivalent credential; writes are all-or-nothing
type Store interface {
	// Persist replaces the stored credential wholesale
	Persist(cred evernote.Credential) error
	// Load returns the stored credential; ok is false when none exists
	Load() (cred evernote.Credential, ok bool, err error)
	// Clear removes the credential entirely
	Clear() error
}

// FileStore keeps the credential as a JSON file with owner-only permissions
type FileStore struct {
	path string
}

// NewFileStore creates a FileStore at path, creating parent directories
func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "creating credential dir failed")
	}
	return &FileStore{path: path}, nil
}

// Persist writes to a temp file in the same directory then renames it over
// the target so a crash never leaves a partial credential on disk
func (s *FileStore) Persist(cred evernote.Credential) error {
	data, err := json.MarshalIndent(cred, "", "  ")
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnknown, "encoding credential failed")
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".credential-*")
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnknown, "creating credential temp file failed")
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return perr.Wrapf(err, perr.ErrorCodeUnknown, "restricting credential permissions failed")
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return perr.Wrapf(err, perr.ErrorCodeUnknown, "writing credential failed")
	}
	if err := tmp.Close(); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnknown, "closing credential temp file failed")
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnknown, "committing credential failed")
	}
	return nil
}

// Load reads and normalizes the stored credential
func (s *FileStore) Load() (evernote.Credential, bool, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return evernote.Credential{}, false, nil
	}
	if err != nil {
		return evernote.Credential{}, false, perr.Wrapf(err, perr.ErrorCodeUnknown, "reading credential failed")
	}
	var cred evernote.Credential
	if err := json.Unmarshal(data, &cred); err != nil {
		return evernote.Credential{}, false, perr.Wrapf(err, perr.ErrorCodeUnknown, "credential file corrupt")
	}
	if cred.AccessToken == "" {
		return evernote.Credential{}, false, nil
	}
	return cred.Normalize(), true, nil
}

// Clear removes the credential file; absent is not an error
func (s *FileStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return perr.Wrapf(err, perr.ErrorCodeUnknown, "removing credential failed")
	}
	return nil
}

// EnvStore is a read-only backend for deployments that inject the token
// through the environment. Persist and Clear are rejected so the injected
// credential is never shadowed by local state
type EnvStore struct {
	Token        string
	NoteStoreURL string
}

// Persist is not supported on an env-injected credential
func (s *EnvStore) Persist(evernote.Credential) error {
	return perr.Configf("credential is injected via environment; unset it to use the OAuth flow")
}

// Load returns the injected credential when a token is present
func (s *EnvStore) Load() (evernote.Credential, bool, error) {
	if s.Token == "" {
		return evernote.Credential{}, false, nil
	}
	return evernote.Credential{
		AccessToken:  s.Token,
		NoteStoreURL: s.NoteStoreURL,
	}.Normalize(), true, nil
}

// Clear is not supported on an env-injected credential
func (s *EnvStore) Clear() error {
	return perr.Configf("credential is injected via environment; unset it instead")
}
