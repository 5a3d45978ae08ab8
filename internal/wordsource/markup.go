package wordsource

import (
	"strings"

	"golang.org/x/net/html"
)

// blockTags separate the text on either side of them.
var blockTags = map[string]bool{"br": true, "p": true, "div": true, "li": true, "tr": true, "td": true}

// PlainText strips HTML markup from a meaning. Entities are decoded,
// block tags become spaces and whitespace is folded.
func PlainText(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}

	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(b.String()), " ")
		case html.TextToken:
			b.Write(z.Text())
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			if blockTags[string(name)] {
				b.WriteByte(' ')
			}
		}
	}
}
