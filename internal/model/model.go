// Package model defines the domain types used across the application.
package model

import "time"

// SourceKind identifies where a raw item came from.
type SourceKind string

// Supported source kinds.
const (
	SourceRSS        SourceKind = "rss"
	SourceSocialPage SourceKind = "social_page"
)

// Source is a tracked feed or page the crawler pulls from.
type Source struct {
	ID        int64
	Kind      SourceKind
	Name      string
	Endpoint  string
	IsActive  bool
	CreatedAt time.Time
}

// FilterKind defines the type of source filter rule.
type FilterKind string

// Supported filter kinds.
const (
	FilterInclude   FilterKind = "include"
	FilterExclude   FilterKind = "exclude"
	FilterIncludeRe FilterKind = "include_re"
	FilterExcludeRe FilterKind = "exclude_re"
)

// FilterScope defines which part of a candidate item a filter matches against.
type FilterScope string

// Supported filter scopes.
const (
	ScopeTitle   FilterScope = "title"
	ScopeContent FilterScope = "content"
	ScopeAll     FilterScope = "all"
)

// Filter is a keyword rule attached to a source, applied before insert.
type Filter struct {
	ID       int64
	SourceID int64
	Kind     FilterKind
	Scope    FilterScope
	Value    string
}

// Engagement holds the counters a social source reports for an item.
// RSS items carry all zeroes.
type Engagement struct {
	Likes     int `json:"likes"`
	Shares    int `json:"shares"`
	Comments  int `json:"comments"`
	Reactions int `json:"reactions"`
}

// RawItem is one ingested news item prior to any AI processing.
// Uniqueness is (Kind, NativeID); the crawler never inserts duplicates.
type RawItem struct {
	ID          int64
	Kind        SourceKind
	NativeID    string
	Title       string
	Content     string
	PublishedAt time.Time
	SourceName  string
	OriginURL   string
	Engagement  Engagement
	FetchedAt   time.Time
}

// Summary is the AI-rewritten form of a RawItem, one-to-one by ID.
type Summary struct {
	ID          int64
	Title       string
	Bullets     []string
	Entities    []string
	TimeContext string
	CreatedAt   time.Time
}

// Analysis holds the AI scores for a Summary, one-to-one by ID.
// Scores are on a 1..10 scale; missing model output defaults to 5.
type Analysis struct {
	ID          int64
	Importance  int
	Impact      int
	SocialTrend int
	Urgency     int
	MisreadRisk int
	Category    string
	Insight     string
	CreatedAt   time.Time
}

// RankedEntry is one position in a day's ranking. Title, Importance and
// Insight are merged back from the analysis input, not taken from the model.
type RankedEntry struct {
	ID         int64  `json:"id"`
	Reason     string `json:"reason"`
	Title      string `json:"title"`
	Importance int    `json:"importance_score"`
	Insight    string `json:"insight"`
}

// DailyRanking is one day's full ordered ranking plus named subsets.
// At most one row exists per calendar date.
type DailyRanking struct {
	RankDate     string
	Ranked       []RankedEntry
	TopIDs       []int64
	TrendingIDs  []int64
	HiddenGemIDs []int64
	CreatedAt    time.Time
}

// Post variants the generator knows how to draft.
const (
	VariantDailyTop = "daily_top5"
	VariantTrending = "trending_now"
)

// PostStatus is the lifecycle state of a draft post.
type PostStatus string

// Draft post lifecycle states.
const (
	StatusDraft    PostStatus = "draft"
	StatusApproved PostStatus = "approved"
	StatusPosted   PostStatus = "posted"
)

// DraftPost is a generated, not-yet-published social post.
type DraftPost struct {
	ID             int64
	Variant        string
	Content        string
	ImageURL       string
	Status         PostStatus
	ScheduledAt    *time.Time
	PlatformPostID string
	PostedAt       *time.Time
	CreatedAt      time.Time
}
