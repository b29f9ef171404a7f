package evernote

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"notegate/internal/core/oauthsig"
	perr "notegate/internal/platform/errors"
)

// NoteMetadata is the provider's per-note header block
type NoteMetadata struct {
	GUID         string   `json:"guid"`
	Title        string   `json:"title"`
	NotebookGUID string   `json:"notebookGuid,omitempty"`
	Created      int64    `json:"created,omitempty"` // epoch milliseconds
	Updated      int64    `json:"updated,omitempty"` // epoch milliseconds
	TagGUIDs     []string `json:"tagGuids,omitempty"`
}

// SearchResult is one page of note headers for a query
type SearchResult struct {
	TotalNotes int            `json:"totalNotes"`
	StartIndex int            `json:"startIndex"`
	Notes      []NoteMetadata `json:"notes"`
}

// Note is metadata plus the raw ENML body
type Note struct {
	NoteMetadata
	Content string `json:"content"`
}

// noteStoreGet issues a signed GET against the credential's note store
func (c *Client) noteStoreGet(ctx context.Context, cred Credential, path string, extra map[string]string) (string, error) {
	if cred.AccessToken == "" {
		return "", perr.AuthRequiredf("no access token; authenticate first")
	}
	base := strings.TrimRight(cred.NoteStoreURL, "/")
	if base == "" {
		return "", perr.AuthRequiredf("credential has no note store URL; re-authenticate")
	}
	return c.signedGet(ctx, base+path, extra, oauthsig.AuthParams{
		ConsumerKey: c.opts.ConsumerKey,
		Token:       cred.AccessToken,
	}, cred.TokenSecret)
}

// FindSpec is one search request against the note store.
// The query string carries the grammar; notebook GUID scoping and paging
// are filter parameters outside the grammar
type FindSpec struct {
	Query        string
	NotebookGUID string
	Offset       int
	Max          int
}

// FindNotes runs a note search in the provider's query grammar
func (c *Client) FindNotes(ctx context.Context, cred Credential, spec FindSpec) (SearchResult, error) {
	params := map[string]string{
		"query":  spec.Query,
		"offset": strconv.Itoa(spec.Offset),
		"max":    strconv.Itoa(spec.Max),
	}
	if spec.NotebookGUID != "" {
		params["notebookGuid"] = spec.NotebookGUID
	}
	body, err := c.noteStoreGet(ctx, cred, "/notes/search", params)
	if err != nil {
		return SearchResult{}, err
	}

	var res SearchResult
	if err := json.Unmarshal([]byte(body), &res); err != nil {
		return SearchResult{}, perr.Wrapf(err, perr.ErrorCodeMalformedResponse, "search response not valid JSON")
	}
	// parse, don't validate downstream: every note needs its identity
	for i, n := range res.Notes {
		if n.GUID == "" {
			return SearchResult{}, perr.MalformedResponsef("search response note %d missing guid", i)
		}
	}
	return res, nil
}

// GetNoteMetadata fetches one note's header block
func (c *Client) GetNoteMetadata(ctx context.Context, cred Credential, guid string) (NoteMetadata, error) {
	body, err := c.noteStoreGet(ctx, cred, "/notes/"+guid, nil)
	if err != nil {
		return NoteMetadata{}, err
	}
	var md NoteMetadata
	if err := json.Unmarshal([]byte(body), &md); err != nil {
		return NoteMetadata{}, perr.Wrapf(err, perr.ErrorCodeMalformedResponse, "note metadata response not valid JSON")
	}
	if md.GUID == "" {
		return NoteMetadata{}, perr.MalformedResponsef("note metadata response missing guid")
	}
	return md, nil
}

// GetNoteContent fetches one note with its raw ENML body
func (c *Client) GetNoteContent(ctx context.Context, cred Credential, guid string) (Note, error) {
	body, err := c.noteStoreGet(ctx, cred, "/notes/"+guid+"/content", nil)
	if err != nil {
		return Note{}, err
	}
	var n Note
	if err := json.Unmarshal([]byte(body), &n); err != nil {
		return Note{}, perr.Wrapf(err, perr.ErrorCodeMalformedResponse, "note content response not valid JSON")
	}
	if n.GUID == "" {
		return Note{}, perr.MalformedResponsef("note content response missing guid")
	}
	return n, nil
}
