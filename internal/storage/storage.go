// Package storage defines the persistence interface and its implementations.
package storage

import (
	"context"
	"errors"
	"time"

	"newsdesk/internal/model"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Storage is the interface for all persistence operations. It deliberately
// exposes only filtered/ordered/limited selects, id-list membership selects,
// inserts and keyed upserts; anti-joins are computed by callers.
type Storage interface {
	CreateSource(ctx context.Context, s *model.Source) error
	GetSource(ctx context.Context, id int64) (*model.Source, error)
	ListSources(ctx context.Context) ([]model.Source, error)
	ListActiveSources(ctx context.Context) ([]model.Source, error)
	UpdateSource(ctx context.Context, s *model.Source) error
	DeleteSource(ctx context.Context, id int64) error

	ListFilters(ctx context.Context, sourceID int64) ([]model.Filter, error)
	CreateFilter(ctx context.Context, f *model.Filter) error
	DeleteFilter(ctx context.Context, id int64) error

	RawItemExists(ctx context.Context, kind model.SourceKind, nativeID string) (bool, error)
	CreateRawItem(ctx context.Context, item *model.RawItem) error
	ListRecentRawItems(ctx context.Context, limit int) ([]model.RawItem, error)
	ListRawItemsByIDs(ctx context.Context, ids []int64) ([]model.RawItem, error)

	CreateSummary(ctx context.Context, s *model.Summary) error
	ListSummaryIDs(ctx context.Context, ids []int64) ([]int64, error)
	ListRecentSummaries(ctx context.Context, limit int) ([]model.Summary, error)
	ListSummariesByIDs(ctx context.Context, ids []int64) ([]model.Summary, error)

	UpsertAnalysis(ctx context.Context, a *model.Analysis) error
	ListAnalysesSince(ctx context.Context, since time.Time) ([]model.Analysis, error)

	UpsertDailyRanking(ctx context.Context, r *model.DailyRanking) error
	GetDailyRanking(ctx context.Context, rankDate string) (*model.DailyRanking, error)

	CreateDraftPost(ctx context.Context, p *model.DraftPost) error
	GetDraftPost(ctx context.Context, id int64) (*model.DraftPost, error)
	ListDraftPosts(ctx context.Context, status model.PostStatus) ([]model.DraftPost, error)
	UpdateDraftPostStatus(ctx context.Context, id int64, status model.PostStatus) error
	MarkDraftPosted(ctx context.Context, id int64, platformPostID string, postedAt time.Time) error
	DeleteDraftPost(ctx context.Context, id int64) error

	Close() error
}
