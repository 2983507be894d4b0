// Package markup reduces chat message HTML to plain text.
//
// Stripping is best effort: the tokenizer never rejects input, so malformed
// markup degrades to whatever text it can recover instead of failing.
package markup

import (
	"errors"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Options controls Strip.
type Options struct {
	// MentionText, when non-empty, replaces the text of <at> mention
	// elements (Teams @-mentions carry the mentioned user's name).
	MentionText string
}

// elements whose boundaries separate words in the rendered text.
var breakingElements = map[string]struct{}{
	"br": {}, "p": {}, "div": {}, "li": {}, "tr": {}, "td": {}, "th": {},
	"h1": {}, "h2": {}, "h3": {}, "h4": {}, "h5": {}, "h6": {},
	"blockquote": {}, "pre": {}, "hr": {},
}

// Strip removes tags, decodes entities, and collapses whitespace.
func Strip(content string, opts Options) string {
	if !strings.ContainsAny(content, "<&") {
		return collapse(content)
	}

	z := html.NewTokenizer(strings.NewReader(content))
	var sb strings.Builder
	mentionDepth := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				return collapse(sb.String())
			}
			return content
		case html.TextToken:
			if mentionDepth > 0 && opts.MentionText != "" {
				continue
			}
			sb.Write(z.Text())
		case html.StartTagToken, html.SelfClosingTagToken:
			tt := z.Token()
			tag := tt.Data
			if tag == "at" && opts.MentionText != "" {
				if tt.Type == html.StartTagToken {
					mentionDepth++
				}
				sb.WriteString(opts.MentionText)
				continue
			}
			if _, ok := breakingElements[tag]; ok {
				sb.WriteByte(' ')
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if tag == "at" && mentionDepth > 0 {
				mentionDepth--
				continue
			}
			if _, ok := breakingElements[tag]; ok {
				sb.WriteByte(' ')
			}
		}
	}
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
