package enml

import (
	"regexp"
	"strings"
)

// HTML output building blocks. The root wrapper is generically classed so
// render-side styling stays out of this package
const (
	htmlRootOpen  = `<div class="note-content">`
	htmlRootClose = `</div>`
	htmlImgStyle  = `max-width: 100%;`
)

var (
	reRootOpen  = regexp.MustCompile(`(?is)<en-note[^>]*>`)
	reRootClose = regexp.MustCompile(`(?is)</en-note>`)
)

// ToHTML converts an ENML document to a sanitized HTML fragment.
// Unlike the plain text path, generic markup is preserved; only the
// provider-specific elements are rewritten. Empty input yields ""
func ToHTML(enml string) string {
	if strings.TrimSpace(enml) == "" {
		return ""
	}
	s := enml

	s = reProlog.ReplaceAllString(s, "")
	s = reRootOpen.ReplaceAllString(s, htmlRootOpen)
	s = reRootClose.ReplaceAllString(s, htmlRootClose)

	// media: images become real img tags, everything else a placeholder
	s = reMedia.ReplaceAllStringFunc(s, func(tag string) string {
		alt := ""
		if m := reAlt.FindStringSubmatch(tag); m != nil {
			alt = m[1]
		}
		if m := reType.FindStringSubmatch(tag); m != nil && strings.HasPrefix(strings.ToLower(m[1]), "image/") {
			if alt == "" {
				alt = "Image"
			}
			return `<img alt="` + alt + `" style="` + htmlImgStyle + `">`
		}
		return `<div class="media-placeholder">` + AttachmentText + `</div>`
	})
	s = reMediaEnd.ReplaceAllString(s, "")

	s = reCrypt.ReplaceAllString(s, `<div class="encrypted-placeholder">`+EncryptedText+`</div>`)

	s = reTodo.ReplaceAllStringFunc(s, func(tag string) string {
		if reChecked.MatchString(tag) {
			return `<input type="checkbox" checked disabled>`
		}
		return `<input type="checkbox" disabled>`
	})

	return strings.TrimSpace(decodeEntities(s))
}
