// Package parser derives the text corpus and page signals from raw HTML
// with a streaming tokenizer. No document tree is built, so malformed or
// truncated markup never fails extraction.
package parser

import (
	"bytes"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"

	"irps-content-analyzer/internal/models"
)

const (
	MaxImages = 15
	MaxLinks  = 25
)

type Parser struct {
	maxImages int
	maxLinks  int
}

func New() *Parser { return &Parser{maxImages: MaxImages, maxLinks: MaxLinks} }

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	entityRe     = regexp.MustCompile(`&(#[0-9]+|#[xX][0-9a-fA-F]+|[a-zA-Z][a-zA-Z0-9]*);`)
)

// dropped wholesale, tag and contents
var skippedElements = map[string]bool{"script": true, "style": true, "noscript": true}

// Extract turns a fetched page into ScrapedContent. It has no hidden state:
// the same RawPage always yields the same result.
func (p *Parser) Extract(raw models.RawPage) models.ScrapedContent {
	if raw.Degraded {
		return models.ScrapedContent{
			Content:  raw.URL,
			Images:   []string{},
			Links:    []string{},
			Degraded: true,
		}
	}

	var (
		body      strings.Builder
		extras    []string
		title     string
		inTitle   bool
		titleSeen bool
		desc      string
		descSeen  bool
		keywords  string
		kwSeen    bool
		skip      string
		anchor    strings.Builder
		inAnchor  bool
	)
	out := models.ScrapedContent{Images: []string{}, Links: []string{}}

	flushAnchor := func() {
		if t := collapse(anchor.String()); t != "" {
			extras = append(extras, t)
		}
		anchor.Reset()
		inAnchor = false
	}

	z := html.NewTokenizer(bytes.NewReader(toUTF8(raw.Body, raw.ContentType)))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		switch tt {
		case html.CommentToken, html.DoctypeToken:
			continue

		case html.TextToken:
			if skip != "" {
				continue
			}
			text := string(z.Raw())
			if inTitle && !titleSeen {
				title = collapse(html.UnescapeString(text))
			}
			text = entityRe.ReplaceAllString(text, " ")
			body.WriteString(text)
			body.WriteByte(' ')
			if inAnchor {
				anchor.WriteString(text)
				anchor.WriteByte(' ')
			}

		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			tag := string(name)
			attrs := map[string]string{}
			for hasAttr {
				var k, v []byte
				k, v, hasAttr = z.TagAttr()
				key := string(k)
				if _, dup := attrs[key]; !dup {
					attrs[key] = string(v)
				}
			}
			body.WriteByte(' ')
			if skip != "" {
				continue
			}
			switch {
			case skippedElements[tag]:
				skip = tag
			case tag == "title":
				inTitle = !titleSeen && tt == html.StartTagToken
			case tag == "meta":
				switch strings.ToLower(strings.TrimSpace(attrs["name"])) {
				case "description":
					if !descSeen {
						desc, descSeen = collapse(attrs["content"]), true
					}
				case "keywords":
					if !kwSeen {
						keywords, kwSeen = collapse(attrs["content"]), true
					}
				}
			case tag == "img":
				if src, ok := attrs["src"]; ok {
					out.TotalImages++
					if len(out.Images) < p.maxImages {
						out.Images = append(out.Images, src)
					}
				}
				if alt := collapse(attrs["alt"]); alt != "" {
					extras = append(extras, alt)
				}
			case tag == "a":
				if href, ok := attrs["href"]; ok && len(out.Links) < p.maxLinks {
					out.Links = append(out.Links, href)
				}
				if inAnchor {
					flushAnchor()
				}
				inAnchor = tt == html.StartTagToken
			}

		case html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			body.WriteByte(' ')
			if skip != "" {
				if tag == skip {
					skip = ""
				}
				continue
			}
			switch tag {
			case "title":
				if inTitle {
					inTitle, titleSeen = false, true
				}
			case "a":
				if inAnchor {
					flushAnchor()
				}
			}
		}
	}
	if inAnchor {
		flushAnchor()
	}

	out.Title = title
	out.Description = desc
	out.Keywords = keywords

	parts := []string{title, desc, keywords, collapse(body.String())}
	parts = append(parts, extras...)
	out.Content = joinNonEmpty(parts)
	if out.Content == "" {
		// content is never empty; an empty page classifies on its URL
		out.Content = raw.URL
	}
	return out
}

// toUTF8 normalizes the body to UTF-8 using the declared or sniffed charset.
// Sniffing only looks at the first 1024 bytes, so an uncertain guess never
// overrides a body that is already valid UTF-8.
func toUTF8(data []byte, contentType string) []byte {
	enc, name, certain := charset.DetermineEncoding(data, contentType)
	if name == "utf-8" || (!certain && utf8.Valid(data)) {
		return data
	}
	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		// fallback: if already utf-8, continue
		if utf8.Valid(data) {
			return data
		}
		return bytes.ToValidUTF8(data, []byte(" "))
	}
	return decoded
}

func collapse(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

func joinNonEmpty(parts []string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}
