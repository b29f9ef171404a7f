package notes

import (
	"context"
	"strings"

	"notegate/internal/adapters/evernote"
	"notegate/internal/core/enml"
	"notegate/internal/core/query"
	perr "notegate/internal/platform/errors"
	"notegate/internal/platform/logger"
	"notegate/internal/platform/net/http/bind"
	"notegate/internal/platform/net/middleware"
)

// CredentialSource yields the current access credential or an auth error
type CredentialSource interface {
	Credential() (evernote.Credential, error)
}

// Provider is the slice of the note store client the service needs
type Provider interface {
	FindNotes(ctx context.Context, cred evernote.Credential, spec evernote.FindSpec) (evernote.SearchResult, error)
	GetNoteMetadata(ctx context.Context, cred evernote.Credential, guid string) (evernote.NoteMetadata, error)
	GetNoteContent(ctx context.Context, cred evernote.Credential, guid string) (evernote.Note, error)
}

// Service executes the read-side tools: search, cached replay, metadata,
// and content retrieval with format conversion
type Service struct {
	provider Provider
	creds    CredentialSource
	cache    *Cache
	log      logger.Logger
}

// NewService wires a Service
func NewService(provider Provider, creds CredentialSource, cache *Cache) *Service {
	return &Service{
		provider: provider,
		creds:    creds,
		cache:    cache,
		log:      *logger.Named("notes"),
	}
}

func (s *Service) normalize(in SearchInput) SearchInput {
	in.Query = strings.TrimSpace(in.Query)
	in.NotebookName = strings.TrimSpace(in.NotebookName)
	in.NotebookGUID = strings.TrimSpace(in.NotebookGUID)
	if in.MaxResults == 0 {
		in.MaxResults = DefaultPageSize
	}
	return in
}

// Search validates the filters, answers from the cache when the identical
// search is still fresh, and otherwise runs it upstream and caches the page
func (s *Service) Search(ctx context.Context, in SearchInput) (SearchOutput, error) {
	if err := bind.Struct(in); err != nil {
		return SearchOutput{}, err
	}
	in = s.normalize(in)

	fl := query.Filters{
		Query:        in.Query,
		NotebookName: in.NotebookName,
		Tags:         in.Tags,
		CreatedAfter: in.CreatedAfter,
		UpdatedAfter: in.UpdatedAfter,
	}
	// a notebook GUID is a criterion of its own, carried outside the grammar
	if in.NotebookGUID == "" {
		if err := fl.Validate(); err != nil {
			return SearchOutput{}, err
		}
	}
	built := fl.Build()

	id := CacheID(in)
	if e, ok := s.cache.Get(id); ok {
		return SearchOutput{
			SearchID:  e.ID,
			Query:     e.Query,
			Result:    e.Result,
			FromCache: true,
			ExpiresAt: e.ExpiresAt,
		}, nil
	}

	cred, err := s.creds.Credential()
	if err != nil {
		return SearchOutput{}, err
	}
	res, err := s.provider.FindNotes(ctx, cred, evernote.FindSpec{
		Query:        built,
		NotebookGUID: in.NotebookGUID,
		Offset:       in.Offset,
		Max:          in.MaxResults,
	})
	middleware.ObserveUpstream("find_notes", outcome(err))
	if err != nil {
		return SearchOutput{}, err
	}

	e := s.cache.Put(id, built, res)
	s.log.Debug().
		Str("search_id", id).
		Int("total", res.TotalNotes).
		Msg("search executed")
	return SearchOutput{
		SearchID:  e.ID,
		Query:     e.Query,
		Result:    e.Result,
		ExpiresAt: e.ExpiresAt,
	}, nil
}

// GetSearch replays a previously executed search from the cache.
// Expired or unknown identifiers are NotFound so the caller re-runs Search
func (s *Service) GetSearch(_ context.Context, in GetSearchInput) (SearchOutput, error) {
	if err := bind.Struct(in); err != nil {
		return SearchOutput{}, err
	}
	e, ok := s.cache.Get(in.SearchID)
	if !ok {
		return SearchOutput{}, perr.NotFoundf("no cached search %q; it may have expired", in.SearchID)
	}
	return SearchOutput{
		SearchID:  e.ID,
		Query:     e.Query,
		Result:    e.Result,
		FromCache: true,
		ExpiresAt: e.ExpiresAt,
	}, nil
}

// GetNoteMetadata fetches one note's header block by GUID
func (s *Service) GetNoteMetadata(ctx context.Context, in MetadataInput) (evernote.NoteMetadata, error) {
	if err := bind.Struct(in); err != nil {
		return evernote.NoteMetadata{}, err
	}
	cred, err := s.creds.Credential()
	if err != nil {
		return evernote.NoteMetadata{}, err
	}
	md, err := s.provider.GetNoteMetadata(ctx, cred, in.NoteGUID)
	middleware.ObserveUpstream("get_note_metadata", outcome(err))
	return md, err
}

// GetNoteContent fetches one note and renders its body in the requested
// format: plain text (default), sanitized HTML, or the raw ENML
func (s *Service) GetNoteContent(ctx context.Context, in ContentInput) (ContentOutput, error) {
	if err := bind.Struct(in); err != nil {
		return ContentOutput{}, err
	}
	if in.Format == "" {
		in.Format = FormatText
	}
	cred, err := s.creds.Credential()
	if err != nil {
		return ContentOutput{}, err
	}
	note, err := s.provider.GetNoteContent(ctx, cred, in.NoteGUID)
	middleware.ObserveUpstream("get_note_content", outcome(err))
	if err != nil {
		return ContentOutput{}, err
	}

	out := ContentOutput{GUID: note.GUID, Title: note.Title, Format: in.Format}
	switch in.Format {
	case FormatHTML:
		out.Content = enml.ToHTML(note.Content)
	case FormatENML:
		out.Content = note.Content
	default:
		out.Content = enml.ToPlainText(note.Content)
	}
	return out, nil
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
