package models

import "time"

type Language string

const (
	English Language = "english"
	Arabic  Language = "arabic"
	Urdu    Language = "urdu"
	Hindi   Language = "hindi"
)

// RiskLevel is ordered: low < medium < high < critical.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

type Disposition string

const (
	Blocked Disposition = "blocked"
	Waiting Disposition = "waiting"
	Safe    Disposition = "safe"
)

type SiteType string

const (
	Website     SiteType = "website"
	SocialMedia SiteType = "social_media"
)

// Threat category labels, in dictionary iteration order.
const (
	CategoryAntiIslamic = "antiIslamic"
	CategoryExplicit    = "explicit"
	CategoryViolence    = "violence"
	CategoryHate        = "hate"
	CategoryScam        = "scam"
	CategoryMalware     = "malware"
	CategoryGeneral     = "general"
)

const ModelVersion = "IRPS_RealScraper_v2.0"

// RawPage is what the fetcher hands to the extractor. A degraded page
// carries the input URL as its body.
type RawPage struct {
	URL           string        `json:"url"`
	FinalURL      string        `json:"finalUrl"`
	ContentType   string        `json:"contentType,omitempty"`
	Body          []byte        `json:"-"`
	StatusCode    int           `json:"statusCode,omitempty"`
	FetchDuration time.Duration `json:"fetchDuration"`
	Degraded      bool          `json:"degraded"`
	FailureReason string        `json:"failureReason,omitempty"`
	FailureKind   string        `json:"failureKind,omitempty"`
}

type ScrapedContent struct {
	Content     string   `json:"content"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Keywords    string   `json:"keywords"`
	Images      []string `json:"images"`
	Links       []string `json:"links"`
	TotalImages int      `json:"totalImages"`
	Degraded    bool     `json:"degraded"`
}

type AnalysisDetails struct {
	TotalMatches     int            `json:"totalMatches"`
	CategoryMatches  map[string]int `json:"categoryMatches"`
	ThreatDensity    float64        `json:"threatDensity"`
	UniqueThreats    int            `json:"uniqueThreats"`
	URLSuspicious    bool           `json:"urlSuspicious"`
	SuspiciousImages int            `json:"suspiciousImages"`
	ContentLength    int            `json:"contentLength"`
	ImageCount       int            `json:"imageCount"`
	LinkCount        int            `json:"linkCount"`
	TotalImages      int            `json:"totalImages"`
	Degraded         bool           `json:"degraded"`
}

type AnalysisResult struct {
	DetectedThreats  []string        `json:"detectedThreats"`
	ConfidenceScore  int             `json:"confidenceScore"`
	RiskLevel        RiskLevel       `json:"riskLevel"`
	DetectedLanguage Language        `json:"detectedLanguage"`
	ContentCategory  string          `json:"contentCategory"`
	Details          AnalysisDetails `json:"details"`
}

// AnalysisLog is one audit row. Degraded rows were classified on the URL
// text alone; FetchFailure says why.
type AnalysisLog struct {
	ID               string      `json:"id"`
	URL              string      `json:"url"`
	AnalysisResult   Disposition `json:"analysisResult"`
	ConfidenceScore  int         `json:"confidenceScore"`
	DetectedKeywords []string    `json:"detectedKeywords"`
	ProcessingTimeMs int64       `json:"processingTimeMs"`
	ModelVersion     string      `json:"modelVersion"`
	Degraded         bool        `json:"degraded"`
	FetchFailure     string      `json:"fetchFailure,omitempty"`
	AnalyzedAt       time.Time   `json:"analyzedAt"`
}

// QueueRecord is one row of blocked_sites or waiting_list.
type QueueRecord struct {
	ID               string         `json:"id"`
	URL              string         `json:"url"`
	DetectedContent  []string       `json:"detectedContent"`
	ConfidenceScore  int            `json:"confidenceScore"`
	SiteType         SiteType       `json:"siteType"`
	DetectedLanguage Language       `json:"detectedLanguage"`
	ContentCategory  string         `json:"contentCategory"`
	AnalysisDetails  map[string]any `json:"analysisDetails"`
	CreatedAt        time.Time      `json:"createdAt"`
}

type ScrapedSummary struct {
	Title         string `json:"title"`
	ContentLength int    `json:"contentLength"`
	ImageCount    int    `json:"imageCount"`
	LinkCount     int    `json:"linkCount"`
}

// Result is the bundle returned to callers of analyze.
type Result struct {
	Success          bool            `json:"success"`
	AnalysisID       string          `json:"analysisId"`
	URL              string          `json:"url"`
	Status           Disposition     `json:"status"`
	Confidence       int             `json:"confidence"`
	DetectedContent  []string        `json:"detectedContent"`
	RiskLevel        RiskLevel       `json:"riskLevel"`
	DetectedLanguage Language        `json:"detectedLanguage"`
	ContentCategory  string          `json:"contentCategory"`
	SiteType         SiteType        `json:"siteType"`
	Details          AnalysisDetails `json:"details"`
	FetchFailure     string          `json:"fetchFailure,omitempty"`
	ScrapedData      ScrapedSummary  `json:"scrapedData"`
	ProcessingTimeMs int64           `json:"processingTimeMs"`
	AnalyzedAt       time.Time       `json:"analyzedAt"`
}

type ErrorOutcome struct {
	Success   bool    `json:"success"`
	Error     string  `json:"error"`
	Timestamp string  `json:"timestamp"`
	Analysis  *Result `json:"analysis,omitempty"`
}
