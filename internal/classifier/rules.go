package classifier

import "irps-content-analyzer/internal/models"

// Patterns run against a lower-cased haystack, so English alternatives are
// written in lower case. RE2's \b is ASCII-only and never matches next to
// Arabic or Devanagari letters, so the non-Latin lists use plain phrases.

var antiIslamicPatterns = map[models.Language][]string{
	models.English: {
		`\b(islamophob\w*|anti[- ]?islam\w*|anti[- ]?muslim\w*)\b`,
		`\b(ban|deport|kill|exterminate|expel) (all )?(the )?muslims\b`,
		`\b(burn|burning|burned|desecrate|desecrating|destroy) (the |a )?(quran|koran)\b`,
		`\bmuslims are (terrorists|animals|savages|vermin|invaders)\b`,
		`\b(islam|muslims?) (is|are) (a )?(cancer|disease|plague|evil)\b`,
		`\b(mock|mocking|insult|insulting) (the )?prophet\b`,
	},
	models.Arabic: {
		`إهانة (الإسلام|الدين الإسلامي|القرآن|النبي)`,
		`حرق (المصحف|القرآن)`,
		`الإسلاموفوبيا`,
		`(الإسلام|المسلمين|المسلمون) (إرهاب|إرهابيون|سرطان)`,
		`الإساءة (للإسلام|للنبي|للرسول)`,
		`معاداة الإسلام`,
	},
	models.Urdu: {
		`توہین (اسلام|قرآن|رسالت|مذہب)`,
		`قرآن (جلانا|جلاؤ|نذر آتش)`,
		`اسلام (دشمن|مخالف)`,
		`مسلمان (دہشت گرد|دشمن) ہیں`,
		`اسلاموفوبیا`,
	},
	models.Hindi: {
		`इस्लाम (विरोधी|का अपमान)`,
		`(कुरान|क़ुरान) (जलाओ|जलाना|का अपमान)`,
		`मुसलमानों को (मारो|भगाओ|निकालो)`,
		`मुसलमान (आतंकवादी|गद्दार) (हैं|है)`,
		`इस्लामोफोबिया`,
	},
}

// Language-agnostic categories in dictionary iteration order.
var categoryPatterns = []CategorySpec{
	{Name: models.CategoryExplicit, Patterns: []string{
		`\b(porn|xxx|adult|nude|naked|sex|sexual|erotic)\b`,
		`\b(orgasm|masturbat\w*|fuck|dick|cock|pussy|tits|ass)\b`,
	}},
	{Name: models.CategoryViolence, Patterns: []string{
		`\b(kill|murder|violence|blood|gore|torture|abuse)\b`,
		`\b(weapon|gun|knife|bomb|terror|shoot|stab)\b`,
	}},
	{Name: models.CategoryHate, Patterns: []string{
		`\b(hate|racist|nazi|supremacist|discrimination)\b`,
		`\b(slur|offensive|bigot|prejudice)\b`,
	}},
	{Name: models.CategoryScam, Patterns: []string{
		`\b(scam|fraud|phishing|fake|illegal|stolen)\b`,
		`\b(click here|urgent|limited time|act now)\b`,
	}},
	{Name: models.CategoryMalware, Patterns: []string{
		`\b(malware|virus|trojan|spyware|ransomware)\b`,
		`\b(download|install|exe|suspicious|unsafe)\b`,
	}},
}

var (
	urlKeywords   = []string{"adult", "xxx", "porn", "sex"}
	imageKeywords = []string{"adult", "xxx", "porn", "sex", "nude", "naked"}

	suspiciousTLDs = []string{"tk", "ml", "ga", "cf", "cc"}
)

// DefaultDictionary returns a copy of the compiled-in pattern lists.
func DefaultDictionary() Dictionary {
	anti := make(map[models.Language][]string, len(antiIslamicPatterns))
	for lang, pats := range antiIslamicPatterns {
		anti[lang] = append([]string(nil), pats...)
	}
	cats := make([]CategorySpec, len(categoryPatterns))
	for i, c := range categoryPatterns {
		cats[i] = CategorySpec{Name: c.Name, Patterns: append([]string(nil), c.Patterns...)}
	}
	return Dictionary{
		AntiIslamic:    anti,
		Categories:     cats,
		URLKeywords:    append([]string(nil), urlKeywords...),
		ImageKeywords:  append([]string(nil), imageKeywords...),
		SuspiciousTLDs: append([]string(nil), suspiciousTLDs...),
	}
}
