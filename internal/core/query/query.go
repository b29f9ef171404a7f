// Package query translates structured search filters into the note
// provider's free-text search grammar
package query

import (
	"strings"
	"time"

	perr "notegate/internal/platform/errors"
)

// DateLayout is the wire format for created/updated filters
const DateLayout = "2006-01-02"

// Filters is the normalized input to the grammar.
// Tags keep caller order; clause order in the output is fixed
type Filters struct {
	Query        string
	NotebookName string
	Tags         []string
	CreatedAfter string // YYYY-MM-DD
	UpdatedAfter string // YYYY-MM-DD
}

// Validate enforces that at least one discriminating criterion is present
// and that date filters parse as YYYY-MM-DD
func (f Filters) Validate() error {
	if strings.TrimSpace(f.Query) == "" && strings.TrimSpace(f.NotebookName) == "" && len(f.Tags) == 0 {
		return perr.Validationf("search requires at least one of query, notebookName, or tags")
	}
	for _, d := range []struct{ name, val string }{
		{"createdAfter", f.CreatedAfter},
		{"updatedAfter", f.UpdatedAfter},
	} {
		if d.val == "" {
			continue
		}
		if _, err := time.Parse(DateLayout, d.val); err != nil {
			return perr.WithField(perr.Validationf("%s must be YYYY-MM-DD", d.name), d.name)
		}
	}
	return nil
}

// Build renders the grammar string. Clause order is fixed: free text,
// notebook, one tag clause per tag in input order, created, updated.
// Paging is not part of the grammar; callers carry offset/size separately
func (f Filters) Build() string {
	clauses := make([]string, 0, 4+len(f.Tags))
	if q := strings.TrimSpace(f.Query); q != "" {
		clauses = append(clauses, q)
	}
	if nb := strings.TrimSpace(f.NotebookName); nb != "" {
		clauses = append(clauses, `notebook:"`+nb+`"`)
	}
	for _, tag := range f.Tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			clauses = append(clauses, `tag:"`+tag+`"`)
		}
	}
	if f.CreatedAfter != "" {
		clauses = append(clauses, "created:"+f.CreatedAfter)
	}
	if f.UpdatedAfter != "" {
		clauses = append(clauses, "updated:"+f.UpdatedAfter)
	}
	return strings.Join(clauses, " ")
}
