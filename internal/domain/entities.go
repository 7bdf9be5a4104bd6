// Package domain holds the core entities and sentinel errors shared across
// the crawl engine, storage layer, and admin surface.
package domain

import "time"

// Queue item lifecycle states.
const (
	QueueStatusPending    = "pending"
	QueueStatusInProgress = "in_progress"
	QueueStatusDone       = "done"
	QueueStatusFailed     = "failed"
)

// Run lifecycle states.
const (
	RunStatusRunning = "running"
	RunStatusDone    = "done"
	RunStatusFailed  = "failed"
)

// MaxErrorLen is the clip length applied to any persisted error message.
const MaxErrorLen = 2000

// CrawlerConfig is the singleton configuration row the engine reads at the
// start of every run. It is created with defaults on first access and is
// otherwise read-only to the engine; the admin surface owns writes.
type CrawlerConfig struct {
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time

	LLMEnabled         bool
	LLMProvider        string
	LLMModel           string
	LLMBaseURL         string
	LLMAPIKey          string
	LLMTemperature     float64
	LLMMaxOutputTokens int

	MaxContextChars     int
	MaxNextURLs         int
	MaxArticles         int
	MaxArticleChars     int
	MaxPagesPerRun      int
	MaxDepth            int
	RequestDelaySeconds float64
	UserAgent           string
	AllowExternalDomain bool

	// ClaimTTL bounds how long a queue item may sit in_progress before a
	// later claim treats it as an orphaned claim (crashed worker, killed
	// run) and reclaims it for another attempt.
	ClaimTTL time.Duration

	PromptTemplate string
}

// DefaultPromptTemplate mirrors the original system's default prompt
// instructions, asking the model for next-hop URLs and extracted articles
// in one shot.
const DefaultPromptTemplate = `You are a high-precision news extraction and URL selection system.
Task: From the combined context of multiple seed pages, extract news items and select the best next URLs.
Seed/Current URLs:
{seed_urls}

Context (cleaned text from all pages):
{context}

Candidate URLs by seed:
{candidate_urls}

Return ONLY valid JSON with this schema:
{
  "next_urls_by_seed": [
    {
      "seed_url": "https://seed.example",
      "next_url": "https://next.example"
    }
  ],
  "articles": [
    {
      "url": "https://...",
      "title": "...",
      "published_at": "ISO-8601 timestamp if present",
      "source": "example.com",
      "body": "full article text from the context"
    }
  ]
}

Rules:
- Choose one next_url per seed_url when possible.
- Extract up to {max_articles} articles.
- Keep each body under ~{max_article_chars} characters.
- Do not invent facts, URLs, or timestamps.
`

// DefaultUserAgent matches the original system's crawler identification string.
const DefaultUserAgent = "nousnews-crawler/1.0 (+https://crawler.miyangroup.com)"

// NewDefaultCrawlerConfig returns the config row inserted the first time the
// engine reads an absent CrawlerConfig singleton.
func NewDefaultCrawlerConfig() CrawlerConfig {
	return CrawlerConfig{
		LLMEnabled:          true,
		LLMProvider:         "openai",
		LLMModel:            "gpt-4o-mini",
		LLMTemperature:      0.1,
		LLMMaxOutputTokens:  1400,
		MaxContextChars:     12000,
		MaxNextURLs:         10,
		MaxArticles:         20,
		MaxArticleChars:     2000,
		MaxPagesPerRun:      50,
		MaxDepth:            3,
		RequestDelaySeconds: 1.0,
		UserAgent:           DefaultUserAgent,
		AllowExternalDomain: false,
		ClaimTTL:            5 * time.Minute,
		PromptTemplate:      DefaultPromptTemplate,
	}
}

// CrawlSeed is a root URL the engine crawls from.
type CrawlSeed struct {
	ID            string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	URL           string
	ConfigID      string // empty means "applies under any config"
	IsActive      bool
	LastFetchedAt *time.Time
	LastError     string
}

// CrawlQueueItem is one URL in the crawl frontier.
type CrawlQueueItem struct {
	ID             string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	URL            string
	SeedID         string // empty if the owning seed row was deleted
	SeedURL        string
	Depth          int
	Status         string
	DiscoveredAt   time.Time
	LastAttemptAt  *time.Time
	Attempts       int
	LastError      string
}

// CrawlRun is one execution of the engine.
type CrawlRun struct {
	ID              string
	Status          string
	Objective       string
	UseLLMFiltering bool
	StartedAt       time.Time
	EndedAt         *time.Time
	PagesProcessed  int
	ArticlesCreated int
	QueuedURLs      int
	LastError       string
}

// Article is a deduplicated piece of extracted content, keyed by URL.
type Article struct {
	ID          string
	URL         string
	Source      string
	PublishedAt time.Time
	FetchedAt   time.Time
	Title       string
	Body        string
	Language    string
}

// ClipError truncates an error message to MaxErrorLen, matching the
// engine's "first 2000 chars" persistence rule for last_error fields.
// Truncation is rune-based, not byte-based: error messages can carry
// non-ASCII URLs or HTML snippets, and slicing by byte count can split a
// multi-byte UTF-8 sequence and leave invalid UTF-8 in last_error.
func ClipError(msg string) string {
	runes := []rune(msg)
	if len(runes) <= MaxErrorLen {
		return msg
	}

	return string(runes[:MaxErrorLen])
}
