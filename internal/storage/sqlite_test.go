package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"newsdesk/internal/model"
)

var ignoreSourceTS = cmpopts.IgnoreFields(model.Source{}, "CreatedAt")
var ignoreSummaryTS = cmpopts.IgnoreFields(model.Summary{}, "CreatedAt")
var ignoreAnalysisTS = cmpopts.IgnoreFields(model.Analysis{}, "CreatedAt")
var ignoreRankingTS = cmpopts.IgnoreFields(model.DailyRanking{}, "CreatedAt")

func newTestDB(t *testing.T) *SQLite {
	t.Helper()
	s, err := NewSQLite(":memory:")
	if err != nil {
		t.Fatalf("new sqlite: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSourceCRUD(t *testing.T) {
	ctx := context.Background()
	s := newTestDB(t)

	tests := []struct {
		name string
		src  model.Source
	}{
		{
			name: "rss source",
			src: model.Source{
				Kind:     model.SourceRSS,
				Name:     "Example Feed",
				Endpoint: "https://example.com/rss",
				IsActive: true,
			},
		},
		{
			name: "inactive social page",
			src: model.Source{
				Kind:     model.SourceSocialPage,
				Name:     "Example Page",
				Endpoint: "https://facebook.com/example",
				IsActive: false,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := tt.src
			if err := s.CreateSource(ctx, &src); err != nil {
				t.Fatalf("create: %v", err)
			}
			if src.ID == 0 {
				t.Fatal("expected non-zero ID")
			}

			got, err := s.GetSource(ctx, src.ID)
			if err != nil {
				t.Fatalf("get: %v", err)
			}

			want := tt.src
			want.ID = src.ID
			if diff := cmp.Diff(want, *got, ignoreSourceTS); diff != "" {
				t.Errorf("GetSource mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestGetSourceNotFound(t *testing.T) {
	s := newTestDB(t)
	if _, err := s.GetSource(context.Background(), 42); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListActiveSources(t *testing.T) {
	ctx := context.Background()
	s := newTestDB(t)

	sources := []model.Source{
		{Kind: model.SourceRSS, Name: "Active", Endpoint: "https://a.com/rss", IsActive: true},
		{Kind: model.SourceRSS, Name: "Disabled", Endpoint: "https://b.com/rss", IsActive: false},
		{Kind: model.SourceSocialPage, Name: "Page", Endpoint: "https://facebook.com/c", IsActive: true},
	}
	for i := range sources {
		if err := s.CreateSource(ctx, &sources[i]); err != nil {
			t.Fatalf("create source %d: %v", i, err)
		}
	}

	got, err := s.ListActiveSources(ctx)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 active sources, got %d", len(got))
	}
	for _, src := range got {
		if !src.IsActive {
			t.Errorf("source %q is not active", src.Name)
		}
	}

	all, err := s.ListSources(ctx)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 sources in total, got %d", len(all))
	}
}

func TestUpdateSource(t *testing.T) {
	ctx := context.Background()
	s := newTestDB(t)

	src := model.Source{Kind: model.SourceRSS, Name: "Old", Endpoint: "https://old.com/rss", IsActive: true}
	if err := s.CreateSource(ctx, &src); err != nil {
		t.Fatalf("create: %v", err)
	}

	src.Name = "New"
	src.IsActive = false
	if err := s.UpdateSource(ctx, &src); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := s.GetSource(ctx, src.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "New" || got.IsActive {
		t.Errorf("update not persisted: %+v", got)
	}
}

func TestDeleteSourceRemovesFilters(t *testing.T) {
	ctx := context.Background()
	s := newTestDB(t)

	src := model.Source{Kind: model.SourceRSS, Name: "Feed", Endpoint: "https://a.com/rss", IsActive: true}
	if err := s.CreateSource(ctx, &src); err != nil {
		t.Fatalf("create source: %v", err)
	}
	f := model.Filter{SourceID: src.ID, Kind: model.FilterInclude, Scope: model.ScopeTitle, Value: "news"}
	if err := s.CreateFilter(ctx, &f); err != nil {
		t.Fatalf("create filter: %v", err)
	}

	if err := s.DeleteSource(ctx, src.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := s.GetSource(ctx, src.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	filters, err := s.ListFilters(ctx, src.ID)
	if err != nil {
		t.Fatalf("list filters: %v", err)
	}
	if len(filters) != 0 {
		t.Errorf("expected orphaned filters removed, got %d", len(filters))
	}
}

func TestRawItemDedup(t *testing.T) {
	ctx := context.Background()
	s := newTestDB(t)

	item := model.RawItem{
		Kind:        model.SourceRSS,
		NativeID:    "https://example.com/1",
		Title:       "Story",
		Content:     "Body",
		PublishedAt: time.Date(2025, 5, 31, 10, 0, 0, 0, time.UTC),
		SourceName:  "Feed",
		OriginURL:   "https://example.com/1",
	}

	exists, err := s.RawItemExists(ctx, item.Kind, item.NativeID)
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if exists {
		t.Fatal("item must not exist before insert")
	}

	if err := s.CreateRawItem(ctx, &item); err != nil {
		t.Fatalf("create: %v", err)
	}

	exists, err = s.RawItemExists(ctx, item.Kind, item.NativeID)
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if !exists {
		t.Error("item must exist after insert")
	}

	// Same native ID under a different kind is a different item.
	exists, err = s.RawItemExists(ctx, model.SourceSocialPage, item.NativeID)
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if exists {
		t.Error("identity must be scoped by kind")
	}
}

func TestListRawItemsByIDs(t *testing.T) {
	ctx := context.Background()
	s := newTestDB(t)

	var ids []int64
	for _, nativeID := range []string{"a", "b", "c"} {
		item := model.RawItem{
			Kind:        model.SourceSocialPage,
			NativeID:    nativeID,
			Title:       "Post " + nativeID,
			Content:     "Text",
			PublishedAt: time.Now(),
			Engagement:  model.Engagement{Likes: 1, Reactions: 2},
		}
		if err := s.CreateRawItem(ctx, &item); err != nil {
			t.Fatalf("create %s: %v", nativeID, err)
		}
		ids = append(ids, item.ID)
	}

	got, err := s.ListRawItemsByIDs(ctx, ids[:2])
	if err != nil {
		t.Fatalf("list by ids: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 items, got %d", len(got))
	}

	empty, err := s.ListRawItemsByIDs(ctx, nil)
	if err != nil {
		t.Fatalf("list by empty ids: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("expected no items for empty id list, got %d", len(empty))
	}
}

func TestSummaryRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestDB(t)

	item := model.RawItem{Kind: model.SourceRSS, NativeID: "x", Title: "T", Content: "C", PublishedAt: time.Now()}
	if err := s.CreateRawItem(ctx, &item); err != nil {
		t.Fatalf("create raw item: %v", err)
	}

	sum := model.Summary{
		ID:          item.ID,
		Title:       "Rewritten title",
		Bullets:     []string{"first point", "second point"},
		Entities:    []string{"ACME Corp"},
		TimeContext: "published this morning",
	}
	if err := s.CreateSummary(ctx, &sum); err != nil {
		t.Fatalf("create summary: %v", err)
	}

	got, err := s.ListSummariesByIDs(ctx, []int64{item.ID})
	if err != nil {
		t.Fatalf("list summaries: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 summary, got %d", len(got))
	}
	if diff := cmp.Diff(sum, got[0], ignoreSummaryTS); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}
}

func TestListSummaryIDs(t *testing.T) {
	ctx := context.Background()
	s := newTestDB(t)

	var ids []int64
	for i, nativeID := range []string{"a", "b", "c"} {
		item := model.RawItem{Kind: model.SourceRSS, NativeID: nativeID, Title: "T", Content: "C", PublishedAt: time.Now()}
		if err := s.CreateRawItem(ctx, &item); err != nil {
			t.Fatalf("create raw item: %v", err)
		}
		ids = append(ids, item.ID)
		if i < 2 {
			sum := model.Summary{ID: item.ID, Title: "S"}
			if err := s.CreateSummary(ctx, &sum); err != nil {
				t.Fatalf("create summary: %v", err)
			}
		}
	}

	got, err := s.ListSummaryIDs(ctx, ids)
	if err != nil {
		t.Fatalf("list summary ids: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 summarized ids out of 3, got %d", len(got))
	}
}

func TestUpsertAnalysis(t *testing.T) {
	ctx := context.Background()
	s := newTestDB(t)

	a := model.Analysis{
		ID:          1,
		Importance:  7,
		Impact:      6,
		SocialTrend: 4,
		Urgency:     5,
		MisreadRisk: 2,
		Category:    "Politics",
		Insight:     "Matters for the upcoming vote",
	}
	if err := s.UpsertAnalysis(ctx, &a); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	a.Importance = 9
	a.Insight = "Escalated overnight"
	if err := s.UpsertAnalysis(ctx, &a); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	since := time.Now().Add(-time.Hour)
	got, err := s.ListAnalysesSince(ctx, since)
	if err != nil {
		t.Fatalf("list since: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("upsert must not create a second row, got %d", len(got))
	}
	if diff := cmp.Diff(a, got[0], ignoreAnalysisTS); diff != "" {
		t.Errorf("analysis mismatch (-want +got):\n%s", diff)
	}

	future, err := s.ListAnalysesSince(ctx, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("list future: %v", err)
	}
	if len(future) != 0 {
		t.Errorf("expected no analyses in the future window, got %d", len(future))
	}
}

func TestDailyRankingUpsert(t *testing.T) {
	ctx := context.Background()
	s := newTestDB(t)

	r := model.DailyRanking{
		RankDate: "2025-06-10",
		Ranked: []model.RankedEntry{
			{ID: 2, Reason: "biggest story", Title: "Two", Importance: 9, Insight: "major"},
			{ID: 1, Reason: "runner up", Title: "One", Importance: 7, Insight: "minor"},
		},
		TopIDs:       []int64{2, 1},
		TrendingIDs:  []int64{1},
		HiddenGemIDs: []int64{},
	}
	if err := s.UpsertDailyRanking(ctx, &r); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	// Re-ranking the same day replaces the row.
	r.Ranked = r.Ranked[:1]
	r.TopIDs = []int64{2}
	if err := s.UpsertDailyRanking(ctx, &r); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	got, err := s.GetDailyRanking(ctx, "2025-06-10")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if diff := cmp.Diff(r, *got, ignoreRankingTS); diff != "" {
		t.Errorf("ranking mismatch (-want +got):\n%s", diff)
	}

	if _, err := s.GetDailyRanking(ctx, "2025-06-11"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing date, got %v", err)
	}
}

func TestDraftPostLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newTestDB(t)

	p := model.DraftPost{
		Variant:  model.VariantDailyTop,
		Content:  "Today's top stories...",
		ImageURL: "https://cdn.example.com/info.png",
	}
	if err := s.CreateDraftPost(ctx, &p); err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.Status != model.StatusDraft {
		t.Errorf("new post must default to draft, got %q", p.Status)
	}

	if err := s.UpdateDraftPostStatus(ctx, p.ID, model.StatusApproved); err != nil {
		t.Fatalf("approve: %v", err)
	}

	postedAt := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	if err := s.MarkDraftPosted(ctx, p.ID, "page_123_456", postedAt); err != nil {
		t.Fatalf("mark posted: %v", err)
	}

	got, err := s.GetDraftPost(ctx, p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != model.StatusPosted {
		t.Errorf("expected posted status, got %q", got.Status)
	}
	if got.PlatformPostID != "page_123_456" {
		t.Errorf("platform post id not stored: %q", got.PlatformPostID)
	}
	if got.PostedAt == nil || !got.PostedAt.Equal(postedAt) {
		t.Errorf("posted_at mismatch: %v", got.PostedAt)
	}

	drafts, err := s.ListDraftPosts(ctx, model.StatusDraft)
	if err != nil {
		t.Fatalf("list drafts: %v", err)
	}
	if len(drafts) != 0 {
		t.Errorf("expected no drafts after publish, got %d", len(drafts))
	}
	posted, err := s.ListDraftPosts(ctx, model.StatusPosted)
	if err != nil {
		t.Fatalf("list posted: %v", err)
	}
	if len(posted) != 1 {
		t.Errorf("expected 1 posted, got %d", len(posted))
	}

	if err := s.DeleteDraftPost(ctx, p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.GetDraftPost(ctx, p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestUpdateDraftPostStatusMissing(t *testing.T) {
	s := newTestDB(t)
	err := s.UpdateDraftPostStatus(context.Background(), 99, model.StatusApproved)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
