package classifier

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"irps-content-analyzer/internal/language"
	"irps-content-analyzer/internal/models"
)

const neutralURL = "https://shop.example.com/"

// 10800 characters that match no dictionary entry
var filler = strings.Repeat("lorem ipsum dolor sit amet ", 400)

func content(text string) models.ScrapedContent {
	return models.ScrapedContent{Content: text, Images: []string{}, Links: []string{}}
}

func TestClassifyNeutralPageIsSafe(t *testing.T) {
	res := New().Classify(content("Welcome to our shop, buy now!"), neutralURL, models.English)
	assert.Empty(t, res.DetectedThreats)
	assert.Equal(t, 0, res.ConfidenceScore)
	assert.Equal(t, models.RiskLow, res.RiskLevel)
	assert.Equal(t, models.CategoryGeneral, res.ContentCategory)
	assert.Equal(t, models.English, res.DetectedLanguage)
}

func TestClassifySuspiciousIPURLAddsFlatBonus(t *testing.T) {
	res := New().Classify(content("A quiet page about gardening and roses"), "http://192.168.1.1/page", models.English)
	assert.Empty(t, res.DetectedThreats)
	assert.True(t, res.Details.URLSuspicious)
	assert.Equal(t, 25, res.ConfidenceScore)
	assert.Equal(t, models.RiskLow, res.RiskLevel)
}

func TestClassifyExplicitText(t *testing.T) {
	res := New().Classify(content("xxx adult content"), "https://example.com/gallery", models.English)
	assert.Equal(t, []string{models.CategoryExplicit}, res.DetectedThreats)
	assert.Equal(t, 2, res.Details.CategoryMatches[models.CategoryExplicit])
	assert.Contains(t, []models.RiskLevel{models.RiskHigh, models.RiskCritical}, res.RiskLevel)
	assert.Equal(t, models.CategoryExplicit, res.ContentCategory)
}

func TestAntiIslamicOverridesScoreToCritical(t *testing.T) {
	res := New().Classify(content(filler+"ban all muslims"), neutralURL, models.English)
	require.Equal(t, []string{models.CategoryAntiIslamic}, res.DetectedThreats)
	assert.Equal(t, 3, res.Details.TotalMatches, "anti-islamic matches count triple")
	assert.Equal(t, 60, res.ConfidenceScore)
	assert.Less(t, res.ConfidenceScore, criticalThreshold)
	assert.Equal(t, models.RiskCritical, res.RiskLevel)
}

func TestExplicitOverridesScoreToHigh(t *testing.T) {
	res := New().Classify(content(filler+"xxx"), neutralURL, models.English)
	require.Equal(t, []string{models.CategoryExplicit}, res.DetectedThreats)
	assert.Equal(t, 48, res.ConfidenceScore)
	assert.Equal(t, models.RiskHigh, res.RiskLevel)
}

func TestAntiIslamicListIsLanguageKeyed(t *testing.T) {
	cases := []struct {
		lang models.Language
		text string
	}{
		{models.Arabic, "حرق المصحف"},
		{models.Urdu, "یہ قرآن جلانا ہے"},
		{models.Hindi, "मुसलमानों को मारो"},
		{models.English, "stop islamophobia now"},
	}
	c := New()
	for _, tc := range cases {
		t.Run(string(tc.lang), func(t *testing.T) {
			res := c.Classify(content(tc.text), neutralURL, tc.lang)
			assert.Contains(t, res.DetectedThreats, models.CategoryAntiIslamic)
			assert.Equal(t, models.RiskCritical, res.RiskLevel)
			assert.Equal(t, tc.lang, res.DetectedLanguage)
		})
	}

	// the arabic phrase is invisible to the english list
	res := c.Classify(content("حرق المصحف"), neutralURL, models.English)
	assert.NotContains(t, res.DetectedThreats, models.CategoryAntiIslamic)
}

func TestUrduPhrasesReachCritical(t *testing.T) {
	tests := []struct {
		text string
		lang models.Language
	}{
		// farsi yeh marks the text as urdu
		{"اسلاموفوبیا", models.Urdu},
		// only letters shared with arabic; the urdu list still runs
		{"اسلام دشمن", models.Arabic},
		{"یہ اسلام دشمن ویب سائٹ ہے", models.Urdu},
	}
	c := New()
	for _, tc := range tests {
		t.Run(tc.text, func(t *testing.T) {
			lang := language.Detect(tc.text)
			require.Equal(t, tc.lang, lang)

			res := c.Classify(content(tc.text), neutralURL, lang)
			assert.Equal(t, []string{models.CategoryAntiIslamic}, res.DetectedThreats)
			assert.Equal(t, models.RiskCritical, res.RiskLevel)
		})
	}
}

func TestArabicAndUrduListsShareMatchesOnce(t *testing.T) {
	d := DefaultDictionary()
	d.AntiIslamic[models.Urdu] = append(d.AntiIslamic[models.Urdu], d.AntiIslamic[models.Arabic][1])
	rs, err := Compile(d)
	require.NoError(t, err)

	res := NewWithRuleset(rs).Classify(content("حرق المصحف"), neutralURL, models.Urdu)
	assert.Equal(t, 3, res.Details.CategoryMatches[models.CategoryAntiIslamic])
}

func TestAntiIslamicFallsBackToEnglishList(t *testing.T) {
	d := DefaultDictionary()
	delete(d.AntiIslamic, models.Hindi)
	rs, err := Compile(d)
	require.NoError(t, err)

	res := NewWithRuleset(rs).Classify(content("stop islamophobia now"), neutralURL, models.Hindi)
	assert.Contains(t, res.DetectedThreats, models.CategoryAntiIslamic)
}

func TestDetectedThreatsFollowDictionaryOrder(t *testing.T) {
	res := New().Classify(content("download the virus, then kill the fake account"), neutralURL, models.English)
	assert.Equal(t, []string{models.CategoryViolence, models.CategoryScam, models.CategoryMalware}, res.DetectedThreats)
	assert.Equal(t, models.CategoryViolence, res.ContentCategory)
}

func TestContentCategoryUsesPriorityNotCounts(t *testing.T) {
	res := New().Classify(content("fake fake fake fraud scam murder"), neutralURL, models.English)
	assert.Equal(t, 5, res.Details.CategoryMatches[models.CategoryScam])
	assert.Equal(t, 1, res.Details.CategoryMatches[models.CategoryViolence])
	assert.Equal(t, models.CategoryViolence, res.ContentCategory)
}

func TestHaystackIncludesTitleAndDescription(t *testing.T) {
	sc := content("nothing to see")
	sc.Title = "Porn Tube"
	res := New().Classify(sc, neutralURL, models.English)
	assert.Contains(t, res.DetectedThreats, models.CategoryExplicit)
}

func TestImageSignals(t *testing.T) {
	sc := content(filler)
	sc.Images = []string{"/img/Nude1.jpg", "/a.png", "/XXX.png"}
	sc.TotalImages = 31
	res := New().Classify(sc, neutralURL, models.English)
	assert.Equal(t, 2, res.Details.SuspiciousImages)
	assert.Equal(t, 3, res.Details.ImageCount)
	assert.Equal(t, 31, res.Details.TotalImages)
	// 2 suspicious images and the many-images bonus
	assert.Equal(t, 20+15, res.ConfidenceScore)
	assert.Equal(t, models.RiskMedium, res.RiskLevel)
}

func TestConfidenceIsClamped(t *testing.T) {
	inputs := []struct {
		text string
		url  string
	}{
		{"", neutralURL},
		{"porn xxx kill hate scam malware islamophobia", "http://10.0.0.1/xxx"},
		{strings.Repeat("porn ", 1000), "https://free.tk"},
		{filler, "https://aaaaaaaaaaaaaaaaaaaaaaaaa.ml"},
	}
	for i, in := range inputs {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			sc := content(in.text)
			sc.Images = []string{"nude.jpg", "xxx.jpg", "porn.jpg"}
			sc.TotalImages = 100
			res := New().Classify(sc, in.url, models.English)
			assert.GreaterOrEqual(t, res.ConfidenceScore, 0)
			assert.LessOrEqual(t, res.ConfidenceScore, maxConfidence)
		})
	}

	res := New().Classify(content("porn xxx kill hate scam malware islamophobia"), "http://10.0.0.1/xxx", models.English)
	assert.Equal(t, maxConfidence, res.ConfidenceScore)
}

func TestRiskLevelTiers(t *testing.T) {
	assert.Equal(t, models.RiskLow, riskLevel(34, false, false))
	assert.Equal(t, models.RiskMedium, riskLevel(35, false, false))
	assert.Equal(t, models.RiskHigh, riskLevel(65, false, false))
	assert.Equal(t, models.RiskCritical, riskLevel(85, false, false))
	assert.Equal(t, models.RiskHigh, riskLevel(0, false, true))
	assert.Equal(t, models.RiskCritical, riskLevel(0, true, false))
	assert.Equal(t, models.RiskCritical, riskLevel(90, false, true))
}

func TestURLSuspicious(t *testing.T) {
	rs := DefaultRuleset()
	tests := map[string]bool{
		"http://192.168.1.1/page":                 true,
		"https://abcdefghijklmnopqrstuvwxyz.com":  true,
		"https://free-stuff.tk":                   true,
		"https://free-stuff.tk/landing":           true,
		"https://example.cc":                      true,
		"https://ADULT-site.com":                  true,
		"https://www.sussex.ac.uk":                true,
		"https://example.com/about":               false,
		"https://EXAMPLE.COM/ABCDEFGHIJKLMNOPQRS": false,
		"https://tickets.example.com":             false,
	}
	for u, want := range tests {
		assert.Equal(t, want, rs.URLSuspicious(u), u)
	}
}

func TestCompileRejectsBadDictionaries(t *testing.T) {
	_, err := Compile(Dictionary{})
	assert.Error(t, err)

	d := DefaultDictionary()
	d.Categories = append(d.Categories, CategorySpec{Name: models.CategoryScam, Patterns: []string{`x`}})
	_, err = Compile(d)
	assert.Error(t, err)

	d = DefaultDictionary()
	d.Categories[0].Patterns = []string{`(`}
	_, err = Compile(d)
	assert.Error(t, err)
}

func TestCustomCategoryFromInjectedDictionary(t *testing.T) {
	d := DefaultDictionary()
	d.Categories = append(d.Categories, CategorySpec{Name: "gambling", Patterns: []string{`\bcasino\b`}})
	rs, err := Compile(d)
	require.NoError(t, err)

	res := NewWithRuleset(rs).Classify(content("best casino bonus"), neutralURL, models.English)
	assert.Equal(t, []string{"gambling"}, res.DetectedThreats)
	assert.Equal(t, "gambling", res.ContentCategory)
}

func TestClassifyConcurrentUse(t *testing.T) {
	c := New()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sc := content("xxx adult content")
			sc.Images = []string{"nude.jpg"}
			res := c.Classify(sc, "https://adult.example.tk", models.English)
			assert.True(t, res.Details.URLSuspicious)
			assert.Equal(t, 1, res.Details.SuspiciousImages)
		}()
	}
	wg.Wait()
}
