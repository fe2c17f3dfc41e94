// Package classifier scores scraped pages against weighted threat
// dictionaries and buckets the score into a risk tier.
package classifier

import (
	"math"
	"strings"
	"unicode/utf8"

	"irps-content-analyzer/internal/models"
)

// Scoring weights. The anti-Islamic and explicit bonuses stack on top of the
// same matches' density and breadth contributions.
const (
	antiIslamicWeight = 3

	densityWeight        = 35.0
	uniqueCategoryWeight = 20.0
	suspiciousURLBonus   = 25.0
	suspiciousImageBonus = 10.0
	antiIslamicBonus     = 30.0
	explicitBonus        = 25.0
	manyImagesBonus      = 15.0
	manyImagesThreshold  = 30

	// never report certainty
	maxConfidence = 98

	criticalThreshold = 85
	highThreshold     = 65
	mediumThreshold   = 35
)

// display priority for contentCategory
var categoryPriority = []string{
	models.CategoryAntiIslamic,
	models.CategoryExplicit,
	models.CategoryViolence,
	models.CategoryHate,
	models.CategoryScam,
	models.CategoryMalware,
}

type Classifier struct {
	rules *Ruleset
}

func New() *Classifier { return &Classifier{rules: DefaultRuleset()} }

// NewWithRuleset injects a custom policy.
func NewWithRuleset(rs *Ruleset) *Classifier {
	if rs == nil {
		rs = DefaultRuleset()
	}
	return &Classifier{rules: rs}
}

// Classify is a pure function of its inputs. lang selects the
// anti-Islamic list and is echoed as DetectedLanguage.
func (c *Classifier) Classify(sc models.ScrapedContent, rawURL string, lang models.Language) models.AnalysisResult {
	haystack := strings.ToLower(sc.Title + " " + sc.Description + " " + sc.Content)

	detected := make([]string, 0, len(categoryPriority))
	perCategory := map[string]int{}
	total := 0

	if n := countMatches(c.rules.AntiIslamicFor(lang), haystack) * antiIslamicWeight; n > 0 {
		perCategory[models.CategoryAntiIslamic] = n
		total += n
		detected = append(detected, models.CategoryAntiIslamic)
	}
	for _, cat := range c.rules.categories {
		if n := countMatches(cat.patterns, haystack); n > 0 {
			perCategory[cat.name] = n
			total += n
			detected = append(detected, cat.name)
		}
	}

	length := utf8.RuneCountInString(haystack)
	density := 0.0
	if length > 0 {
		density = float64(total) / float64(length) * 1000
	}
	urlSuspicious := c.rules.URLSuspicious(rawURL)
	suspiciousImages := c.rules.SuspiciousImageCount(sc.Images)

	_, anti := perCategory[models.CategoryAntiIslamic]
	_, explicit := perCategory[models.CategoryExplicit]

	score := density*densityWeight + float64(len(detected))*uniqueCategoryWeight
	if urlSuspicious {
		score += suspiciousURLBonus
	}
	score += float64(suspiciousImages) * suspiciousImageBonus
	if anti {
		score += antiIslamicBonus
	}
	if explicit {
		score += explicitBonus
	}
	if sc.TotalImages > manyImagesThreshold {
		score += manyImagesBonus
	}
	confidence := clampScore(score)

	return models.AnalysisResult{
		DetectedThreats:  detected,
		ConfidenceScore:  confidence,
		RiskLevel:        riskLevel(confidence, anti, explicit),
		DetectedLanguage: lang,
		ContentCategory:  contentCategory(perCategory, detected),
		Details: models.AnalysisDetails{
			TotalMatches:     total,
			CategoryMatches:  perCategory,
			ThreatDensity:    math.Round(density*100) / 100,
			UniqueThreats:    len(detected),
			URLSuspicious:    urlSuspicious,
			SuspiciousImages: suspiciousImages,
			ContentLength:    length,
			ImageCount:       len(sc.Images),
			LinkCount:        len(sc.Links),
			TotalImages:      sc.TotalImages,
			Degraded:         sc.Degraded,
		},
	}
}

func clampScore(score float64) int {
	score = math.Max(0, math.Min(maxConfidence, score))
	return int(math.Round(score))
}

// riskLevel applies the tier rules in order; the category overrides win
// over the numeric score.
func riskLevel(confidence int, antiIslamic, explicit bool) models.RiskLevel {
	switch {
	case antiIslamic || confidence >= criticalThreshold:
		return models.RiskCritical
	case explicit || confidence >= highThreshold:
		return models.RiskHigh
	case confidence >= mediumThreshold:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}

func contentCategory(perCategory map[string]int, detected []string) string {
	for _, name := range categoryPriority {
		if perCategory[name] > 0 {
			return name
		}
	}
	// categories from an injected dictionary rank after the built-in ones
	if len(detected) > 0 {
		return detected[0]
	}
	return models.CategoryGeneral
}
