package classifier

import (
	"net/url"
	"strings"

	ahocorasick "github.com/cloudflare/ahocorasick"
)

// URLSuspicious flags dotted-quad hosts, long random-looking runs,
// throwaway TLDs and adult keywords anywhere in the URL.
func (rs *Ruleset) URLSuspicious(rawURL string) bool {
	if ipv4Re.MatchString(rawURL) || randomRunRe.MatchString(rawURL) {
		return true
	}
	lower := strings.ToLower(rawURL)
	host := lower
	if u, err := url.Parse(lower); err == nil && u.Hostname() != "" {
		host = u.Hostname()
	}
	for _, tld := range rs.suspiciousTLDs {
		if strings.HasSuffix(host, tld) || strings.HasSuffix(lower, tld) {
			return true
		}
	}
	return containsAny(rs.urlKeywords, lower)
}

// SuspiciousImageCount counts image URLs carrying adult keywords.
func (rs *Ruleset) SuspiciousImageCount(images []string) int {
	n := 0
	for _, img := range images {
		if containsAny(rs.imageKeywords, strings.ToLower(img)) {
			n++
		}
	}
	return n
}

// Matcher.Match mutates the automaton; a Ruleset is shared across
// goroutines so only MatchThreadSafe is used.
func containsAny(m *ahocorasick.Matcher, s string) bool {
	if m == nil || s == "" {
		return false
	}
	return len(m.MatchThreadSafe([]byte(s))) > 0
}
