package classifier

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	ahocorasick "github.com/cloudflare/ahocorasick"

	"irps-content-analyzer/internal/models"
)

// Dictionary is the uncompiled threat policy. Swapping it changes what the
// classifier detects without touching the pipeline.
type Dictionary struct {
	AntiIslamic    map[models.Language][]string
	Categories     []CategorySpec
	URLKeywords    []string
	ImageKeywords  []string
	SuspiciousTLDs []string
}

type CategorySpec struct {
	Name     string
	Patterns []string
}

type category struct {
	name     string
	patterns []*regexp.Regexp
}

// Ruleset is a compiled Dictionary. It is immutable after Compile and safe
// for concurrent use by any number of classifications.
type Ruleset struct {
	antiIslamic    map[models.Language][]*regexp.Regexp
	categories     []category
	urlKeywords    *ahocorasick.Matcher
	imageKeywords  *ahocorasick.Matcher
	suspiciousTLDs []string
}

// Arabic and Urdu share a script. A phrase written only in shared letters
// is detected as arabic, so each list is followed by the other's.
var scriptSiblings = map[models.Language]models.Language{
	models.Arabic: models.Urdu,
	models.Urdu:   models.Arabic,
}

var (
	ipv4Re      = regexp.MustCompile(`\d+\.\d+\.\d+\.\d+`)
	randomRunRe = regexp.MustCompile(`[a-z0-9]{20,}`)
)

var defaultRuleset = sync.OnceValue(func() *Ruleset {
	rs, err := Compile(DefaultDictionary())
	if err != nil {
		panic(fmt.Sprintf("classifier: built-in dictionary does not compile: %v", err))
	}
	return rs
})

// DefaultRuleset returns the process-wide compiled built-in dictionary.
func DefaultRuleset() *Ruleset { return defaultRuleset() }

func Compile(d Dictionary) (*Ruleset, error) {
	if len(d.AntiIslamic[models.English]) == 0 {
		return nil, errors.New("anti-islamic dictionary needs an english list")
	}
	rs := &Ruleset{antiIslamic: make(map[models.Language][]*regexp.Regexp, len(d.AntiIslamic))}
	for lang, pats := range d.AntiIslamic {
		compiled, err := compileAll(pats)
		if err != nil {
			return nil, fmt.Errorf("antiIslamic/%s: %w", lang, err)
		}
		rs.antiIslamic[lang] = compiled
	}
	rs.antiIslamic = withSiblings(rs.antiIslamic)
	seen := map[string]bool{models.CategoryAntiIslamic: true}
	for _, c := range d.Categories {
		if c.Name == "" || seen[c.Name] {
			return nil, fmt.Errorf("category name %q is empty or duplicated", c.Name)
		}
		seen[c.Name] = true
		compiled, err := compileAll(c.Patterns)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", c.Name, err)
		}
		rs.categories = append(rs.categories, category{name: c.Name, patterns: compiled})
	}
	rs.urlKeywords = newMatcher(d.URLKeywords)
	rs.imageKeywords = newMatcher(d.ImageKeywords)
	for _, tld := range d.SuspiciousTLDs {
		rs.suspiciousTLDs = append(rs.suspiciousTLDs, "."+strings.TrimPrefix(strings.ToLower(tld), "."))
	}
	return rs, nil
}

// AntiIslamicFor returns the list for lang, or the english list when lang
// has no dedicated one. Arabic and Urdu lists include their sibling's
// patterns.
func (rs *Ruleset) AntiIslamicFor(lang models.Language) []*regexp.Regexp {
	if pats, ok := rs.antiIslamic[lang]; ok && len(pats) > 0 {
		return pats
	}
	return rs.antiIslamic[models.English]
}

func withSiblings(lists map[models.Language][]*regexp.Regexp) map[models.Language][]*regexp.Regexp {
	out := make(map[models.Language][]*regexp.Regexp, len(lists))
	for lang, own := range lists {
		merged := append([]*regexp.Regexp(nil), own...)
		seen := make(map[string]bool, len(own))
		for _, re := range own {
			seen[re.String()] = true
		}
		if sib, ok := scriptSiblings[lang]; ok {
			for _, re := range lists[sib] {
				if !seen[re.String()] {
					seen[re.String()] = true
					merged = append(merged, re)
				}
			}
		}
		out[lang] = merged
	}
	return out
}

func compileAll(patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, err
		}
		out = append(out, re)
	}
	return out, nil
}

func newMatcher(keywords []string) *ahocorasick.Matcher {
	normalized := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
			normalized = append(normalized, kw)
		}
	}
	if len(normalized) == 0 {
		return nil
	}
	return ahocorasick.NewStringMatcher(normalized)
}

func countMatches(patterns []*regexp.Regexp, haystack string) int {
	n := 0
	for _, re := range patterns {
		n += len(re.FindAllStringIndex(haystack, -1))
	}
	return n
}
