// Package enml converts the note provider's constrained XML dialect into
// plain text or a sanitized HTML fragment.
// Plain text pipeline order
// 1 strip XML prolog and doctype
// 2 unwrap the en-note root
// 3 media elements become their alt text or [Media]
// 4 encrypted sections and their content become [Encrypted Content]
// 5 todo markers become a checked or unchecked checkbox glyph
// 6 structural tags map to whitespace, list items gain a bullet, cells a tab
// 7 strip every remaining tag
// 8 decode the standard entity escapes
// 9 collapse blank-line runs, collapse space runs, trim
package enml

import (
	"regexp"
	"strings"
)

// placeholders surfaced to the reader in plain text output
const (
	MediaPlaceholder = "[Media]"
	AttachmentText   = "[Media Attachment]"
	EncryptedText    = "[Encrypted Content]"
	CheckedGlyph     = "☑ "
	UncheckedGlyph   = "☐ "
)

var (
	reProlog   = regexp.MustCompile(`(?is)<\?xml[^>]*\?>|<!DOCTYPE[^>]*>`)
	reRoot     = regexp.MustCompile(`(?is)</?en-note[^>]*>`)
	reMedia    = regexp.MustCompile(`(?is)<en-media\b[^>]*/?>`)
	reMediaEnd = regexp.MustCompile(`(?is)</en-media>`)
	reCrypt    = regexp.MustCompile(`(?is)<en-crypt\b[^>]*>.*?</en-crypt>|<en-crypt\b[^>]*/>`)
	reTodo     = regexp.MustCompile(`(?is)<en-todo\b[^>]*/?>`)
	reAlt      = regexp.MustCompile(`(?is)\balt\s*=\s*"([^"]*)"`)
	reType     = regexp.MustCompile(`(?is)\btype\s*=\s*"([^"]*)"`)
	reChecked  = regexp.MustCompile(`(?is)\bchecked\s*(=\s*"?(true|checked)"?)?(\s|/|>)`)

	reBr       = regexp.MustCompile(`(?is)<br\s*/?>`)
	rePClose   = regexp.MustCompile(`(?is)</p>`)
	reDivClose = regexp.MustCompile(`(?is)</(?:div|blockquote)>`)
	reHClose   = regexp.MustCompile(`(?is)</h[1-6]>`)
	reLiOpen   = regexp.MustCompile(`(?is)<li\b[^>]*>`)
	reLiClose  = regexp.MustCompile(`(?is)</li>`)
	reTrClose  = regexp.MustCompile(`(?is)</tr>`)
	reTdClose  = regexp.MustCompile(`(?is)</t[dh]>`)

	reAnyTag = regexp.MustCompile(`(?s)<[^>]*>`)

	reBlankRuns = regexp.MustCompile(`\n{3,}`)
	reSpaceRuns = regexp.MustCompile(`[ \t]{2,}`)
)

// ToPlainText converts an ENML document to readable plain text.
// Empty input yields an empty string. Malformed markup degrades to a
// partial conversion rather than an error; input is trusted to come
// from the provider
func ToPlainText(enml string) string {
	if strings.TrimSpace(enml) == "" {
		return ""
	}
	s := enml

	// 1-2 document scaffolding
	s = reProlog.ReplaceAllString(s, "")
	s = reRoot.ReplaceAllString(s, "")

	// 3 media: alt text when present, placeholder otherwise
	s = reMedia.ReplaceAllStringFunc(s, func(tag string) string {
		if m := reAlt.FindStringSubmatch(tag); m != nil && strings.TrimSpace(m[1]) != "" {
			return m[1]
		}
		return MediaPlaceholder
	})
	s = reMediaEnd.ReplaceAllString(s, "")

	// 4 encrypted sections drop their payload entirely
	s = reCrypt.ReplaceAllString(s, EncryptedText)

	// 5 checklist markers
	s = reTodo.ReplaceAllStringFunc(s, func(tag string) string {
		if reChecked.MatchString(tag) {
			return CheckedGlyph
		}
		return UncheckedGlyph
	})

	// 6 structure to whitespace; opening tags vanish in step 7
	s = reBr.ReplaceAllString(s, "\n")
	s = rePClose.ReplaceAllString(s, "\n\n")
	s = reHClose.ReplaceAllString(s, "\n\n")
	s = reDivClose.ReplaceAllString(s, "\n")
	s = reLiOpen.ReplaceAllString(s, "• ")
	s = reLiClose.ReplaceAllString(s, "\n")
	s = reTrClose.ReplaceAllString(s, "\n")
	s = reTdClose.ReplaceAllString(s, "\t")

	// 7 everything else
	s = reAnyTag.ReplaceAllString(s, "")

	// 8 entities
	s = decodeEntities(s)

	// 9 whitespace cleanup
	s = reBlankRuns.ReplaceAllString(s, "\n\n")
	s = reSpaceRuns.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// decodeEntities handles the five standard escapes plus both apostrophe
// forms. Ampersand goes last so encoded entities are not double-decoded
func decodeEntities(s string) string {
	r := strings.NewReplacer(
		"&nbsp;", " ",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
		"&apos;", "'",
	)
	s = r.Replace(s)
	return strings.ReplaceAll(s, "&amp;", "&")
}
