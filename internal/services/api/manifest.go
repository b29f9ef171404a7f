// Package api is the local tool-dispatch surface: it exposes the manifest,
// the tool endpoints, and the OAuth callback over loopback HTTP
package api

// Arg describes one tool argument in the manifest
type Arg struct {
	Type        string `json:"type"`
	Required    bool   `json:"required,omitempty"`
	Default     any    `json:"default,omitempty"`
	Description string `json:"description"`
}

// Tool is one entry in the manifest
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Args        map[string]Arg `json:"args"`
}

// Manifest is the self-description served at GET /manifest so a client can
// discover the tools without out-of-band documentation
type Manifest struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Tools   []Tool `json:"tools"`
}

// BuildManifest returns the static tool manifest
func BuildManifest(version string) Manifest {
	return Manifest{
		Name:    "notegate",
		Version: version,
		Tools: []Tool{
			{
				Name:        "search",
				Description: "Search notes by free text, notebook, tags, and date filters. Returns a page of note headers plus a searchId for cached replay.",
				Args: map[string]Arg{
					"query":        {Type: "string", Description: "Free-text query in the provider's search grammar."},
					"maxResults":   {Type: "integer", Default: 20, Description: "Page size, 1 to 100."},
					"offset":       {Type: "integer", Default: 0, Description: "Zero-based index of the first result."},
					"notebookName": {Type: "string", Description: "Restrict to the notebook with this name."},
					"notebookGuid": {Type: "string", Description: "Restrict to the notebook with this GUID."},
					"tags":         {Type: "array[string]", Description: "Require every listed tag."},
					"createdAfter": {Type: "string", Description: "Only notes created on or after this date, YYYY-MM-DD."},
					"updatedAfter": {Type: "string", Description: "Only notes updated on or after this date, YYYY-MM-DD."},
				},
			},
			{
				Name:        "get_search",
				Description: "Replay a previous search from the result cache by its searchId.",
				Args: map[string]Arg{
					"searchId": {Type: "string", Required: true, Description: "Identifier returned by a prior search."},
				},
			},
			{
				Name:        "get_note_metadata",
				Description: "Fetch one note's header block: title, notebook, tags, timestamps.",
				Args: map[string]Arg{
					"noteGuid": {Type: "string", Required: true, Description: "GUID of the note."},
				},
			},
			{
				Name:        "get_note_content",
				Description: "Fetch one note's body rendered as plain text, HTML, or the raw ENML.",
				Args: map[string]Arg{
					"noteGuid": {Type: "string", Required: true, Description: "GUID of the note."},
					"format":   {Type: "string", Default: "text", Description: "One of text, html, enml."},
				},
			},
		},
	}
}
