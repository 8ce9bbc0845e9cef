// Package content derives the computed fields of an article from its title
// and body: slug, excerpt, read time and rendered HTML.
package content

import (
	"bytes"
	"fmt"
	"html"
	"math"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	ExcerptLength  = 200
	WordsPerMinute = 200
	fallbackSlug   = "article"
)

var (
	nonWord   = regexp.MustCompile(`[^\w ]+`)
	spaceRuns = regexp.MustCompile(` +`)
	stripTags = bluemonday.StrictPolicy()
	safeHTML  = bluemonday.UGCPolicy()
	markdown  = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
	)
)

// Slugify lowercases the title, folds accented letters to ASCII, strips
// everything that is not a word character or a space and joins words with
// hyphens.
func Slugify(title string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, title)
	if err != nil {
		folded = title
	}

	s := strings.ToLower(folded)
	s = nonWord.ReplaceAllString(s, "")
	s = spaceRuns.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// UniqueSlug appends the creation time in milliseconds to the title slug.
func UniqueSlug(title string, createdAt time.Time) string {
	base := Slugify(title)
	if base == "" {
		base = fallbackSlug
	}
	return fmt.Sprintf("%s-%d", base, createdAt.UnixMilli())
}

// StripHTML returns the text content of an HTML fragment.
func StripHTML(s string) string {
	return html.UnescapeString(stripTags.Sanitize(s))
}

// Excerpt builds the automatic summary: the first ExcerptLength characters of
// the tag-free content followed by an ellipsis.
func Excerpt(body string) string {
	plain := []rune(StripHTML(body))
	if len(plain) > ExcerptLength {
		plain = plain[:ExcerptLength]
	}
	return string(plain) + "..."
}

// ReadTime estimates reading minutes at WordsPerMinute, never below one.
func ReadTime(body string) int {
	words := len(strings.Fields(body))
	return max(1, int(math.Ceil(float64(words)/WordsPerMinute)))
}

// RenderHTML converts markdown (which may embed raw HTML) into sanitised HTML.
func RenderHTML(body string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(body), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return safeHTML.Sanitize(buf.String()), nil
}
