package notes

import (
	"time"

	"notegate/internal/adapters/evernote"
)

// paging defaults for search
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// SearchInput is the tool-facing search request.
// Every filter is optional on its own, but at least one of query,
// notebookName, notebookGuid, or tags must be present
type SearchInput struct {
	Query        string   `json:"query,omitempty"`
	MaxResults   int      `json:"maxResults,omitempty" validate:"omitempty,min=1,max=100"`
	Offset       int      `json:"offset,omitempty" validate:"omitempty,min=0"`
	NotebookName string   `json:"notebookName,omitempty"`
	NotebookGUID string   `json:"notebookGuid,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	CreatedAfter string   `json:"createdAfter,omitempty" validate:"omitempty,datetime=2006-01-02"`
	UpdatedAfter string   `json:"updatedAfter,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// GetSearchInput replays a cached search by its identifier
type GetSearchInput struct {
	SearchID string `json:"searchId" validate:"required"`
}

// MetadataInput fetches one note's header block
type MetadataInput struct {
	NoteGUID string `json:"noteGuid" validate:"required"`
}

// content formats
const (
	FormatText = "text"
	FormatHTML = "html"
	FormatENML = "enml"
)

// ContentInput fetches one note's body in the requested rendering
type ContentInput struct {
	NoteGUID string `json:"noteGuid" validate:"required"`
	Format   string `json:"format,omitempty" validate:"omitempty,oneof=text html enml"`
}

// SearchOutput is the answer to a search or a cached replay
type SearchOutput struct {
	SearchID  string                `json:"searchId"`
	Query     string                `json:"query"`
	Result    evernote.SearchResult `json:"result"`
	FromCache bool                  `json:"fromCache"`
	ExpiresAt time.Time             `json:"expiresAt"`
}

// ContentOutput is one note body after format conversion
type ContentOutput struct {
	GUID    string `json:"guid"`
	Title   string `json:"title"`
	Format  string `json:"format"`
	Content string `json:"content"`
}
