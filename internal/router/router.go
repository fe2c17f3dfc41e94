// Package router maps a classification onto a disposition and tags the
// submitted URL with the kind of site it points at.
package router

import (
	"net/url"
	"strings"

	"irps-content-analyzer/internal/models"
)

// socialHosts are registrable domains of the platforms treated as social media.
var socialHosts = []string{
	"facebook.com", "fb.com",
	"twitter.com", "x.com",
	"instagram.com",
	"tiktok.com",
	"youtube.com", "youtu.be",
	"linkedin.com",
	"reddit.com",
	"snapchat.com",
}

// Route decides the disposition from the risk tier alone. Medium risk is
// not queued for review.
func Route(res models.AnalysisResult) models.Disposition {
	switch res.RiskLevel {
	case models.RiskCritical:
		return models.Blocked
	case models.RiskHigh:
		return models.Waiting
	default:
		return models.Safe
	}
}

// SiteType reports social_media when the URL host is one of the known
// platforms or a subdomain of one.
func SiteType(rawURL string) models.SiteType {
	host := hostOf(rawURL)
	if host == "" {
		return models.Website
	}
	for _, d := range socialHosts {
		if host == d || strings.HasSuffix(host, "."+d) {
			return models.SocialMedia
		}
	}
	return models.Website
}

func hostOf(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	return strings.TrimSuffix(strings.ToLower(u.Hostname()), ".")
}
