package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite" // SQLite driver registration.

	"newsdesk/internal/model"
	"newsdesk/migrations"
)

const timeLayout = "2006-01-02T15:04:05Z"

// SQLite implements Storage backed by a SQLite database.
type SQLite struct {
	db *sql.DB
	sb sq.StatementBuilderType
}

// NewSQLite opens a SQLite database at dsn and runs pending migrations.
func NewSQLite(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db, sb: sq.StatementBuilder.PlaceholderFormat(sq.Question)}, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// CreateSource inserts a new tracked source and populates its ID and CreatedAt.
func (s *SQLite) CreateSource(ctx context.Context, src *model.Source) error {
	now := time.Now().UTC().Format(timeLayout)
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO sources (kind, name, endpoint, is_active, created_at) VALUES (?, ?, ?, ?, ?)`,
		string(src.Kind), src.Name, src.Endpoint, boolToInt(src.IsActive), now,
	)
	if err != nil {
		return fmt.Errorf("insert source: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	src.ID = id
	src.CreatedAt, _ = time.Parse(timeLayout, now)
	return nil
}

// GetSource returns a single source by its ID.
func (s *SQLite) GetSource(ctx context.Context, id int64) (*model.Source, error) {
	query, args, err := s.sb.Select("id", "kind", "name", "endpoint", "is_active", "created_at").
		From("sources").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	src, err := scanSource(s.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return src, err
}

// ListSources returns every tracked source.
func (s *SQLite) ListSources(ctx context.Context) ([]model.Source, error) {
	return s.listSources(ctx, sq.Eq{})
}

// ListActiveSources returns the sources the crawler should pull from.
func (s *SQLite) ListActiveSources(ctx context.Context) ([]model.Source, error) {
	return s.listSources(ctx, sq.Eq{"is_active": 1})
}

func (s *SQLite) listSources(ctx context.Context, where sq.Eq) ([]model.Source, error) {
	query, args, err := s.sb.Select("id", "kind", "name", "endpoint", "is_active", "created_at").
		From("sources").Where(where).OrderBy("id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sources: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var sources []model.Source
	for rows.Next() {
		src, err := scanSource(rows)
		if err != nil {
			return nil, err
		}
		sources = append(sources, *src)
	}
	return sources, rows.Err()
}

// UpdateSource persists changes to an existing source.
func (s *SQLite) UpdateSource(ctx context.Context, src *model.Source) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE sources SET kind = ?, name = ?, endpoint = ?, is_active = ? WHERE id = ?`,
		string(src.Kind), src.Name, src.Endpoint, boolToInt(src.IsActive), src.ID,
	)
	if err != nil {
		return fmt.Errorf("update source: %w", err)
	}
	return nil
}

// DeleteSource removes a source and its filters.
func (s *SQLite) DeleteSource(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM source_filters WHERE source_id = ?`, id); err != nil {
		return fmt.Errorf("delete source filters: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM sources WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete source: %w", err)
	}
	return tx.Commit()
}

// ListFilters returns all filter rules for the given source.
func (s *SQLite) ListFilters(ctx context.Context, sourceID int64) ([]model.Filter, error) {
	query, args, err := s.sb.Select("id", "source_id", "kind", "scope", "value").
		From("source_filters").Where(sq.Eq{"source_id": sourceID}).OrderBy("id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query filters: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var filters []model.Filter
	for rows.Next() {
		var f model.Filter
		var kind, scope string
		if err := rows.Scan(&f.ID, &f.SourceID, &kind, &scope, &f.Value); err != nil {
			return nil, fmt.Errorf("scan filter: %w", err)
		}
		f.Kind = model.FilterKind(kind)
		f.Scope = model.FilterScope(scope)
		filters = append(filters, f)
	}
	return filters, rows.Err()
}

// CreateFilter inserts a new filter rule and populates its ID.
func (s *SQLite) CreateFilter(ctx context.Context, f *model.Filter) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO source_filters (source_id, kind, scope, value) VALUES (?, ?, ?, ?)`,
		f.SourceID, string(f.Kind), string(f.Scope), f.Value,
	)
	if err != nil {
		return fmt.Errorf("insert filter: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	f.ID = id
	return nil
}

// DeleteFilter removes a filter rule by its ID.
func (s *SQLite) DeleteFilter(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM source_filters WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete filter: %w", err)
	}
	return nil
}

// RawItemExists reports whether an item with the given source identity is stored.
func (s *SQLite) RawItemExists(ctx context.Context, kind model.SourceKind, nativeID string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM raw_items WHERE kind = ? AND native_id = ?`,
		string(kind), nativeID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check raw item: %w", err)
	}
	return count > 0, nil
}

// CreateRawItem inserts a new raw item and populates its ID and FetchedAt.
func (s *SQLite) CreateRawItem(ctx context.Context, item *model.RawItem) error {
	now := time.Now().UTC().Format(timeLayout)
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO raw_items
		   (kind, native_id, title, content, published_at, source_name, origin_url,
		    likes, shares, comments, reactions, fetched_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(item.Kind), item.NativeID, item.Title, item.Content,
		item.PublishedAt.UTC().Format(timeLayout), item.SourceName, item.OriginURL,
		item.Engagement.Likes, item.Engagement.Shares, item.Engagement.Comments,
		item.Engagement.Reactions, now,
	)
	if err != nil {
		return fmt.Errorf("insert raw item: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	item.ID = id
	item.FetchedAt, _ = time.Parse(timeLayout, now)
	return nil
}

// ListRecentRawItems returns the newest raw items, most recent first.
func (s *SQLite) ListRecentRawItems(ctx context.Context, limit int) ([]model.RawItem, error) {
	query, args, err := s.rawItemSelect().
		OrderBy("fetched_at DESC", "id DESC").Limit(uint64(limit)).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	return s.queryRawItems(ctx, query, args)
}

// ListRawItemsByIDs returns the raw items whose IDs are in the given list.
func (s *SQLite) ListRawItemsByIDs(ctx context.Context, ids []int64) ([]model.RawItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := s.rawItemSelect().Where(sq.Eq{"id": ids}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	return s.queryRawItems(ctx, query, args)
}

func (s *SQLite) rawItemSelect() sq.SelectBuilder {
	return s.sb.Select("id", "kind", "native_id", "title", "content", "published_at",
		"source_name", "origin_url", "likes", "shares", "comments", "reactions", "fetched_at").
		From("raw_items")
}

func (s *SQLite) queryRawItems(ctx context.Context, query string, args []any) ([]model.RawItem, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query raw items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var items []model.RawItem
	for rows.Next() {
		var item model.RawItem
		var kind, published, fetched string
		err := rows.Scan(&item.ID, &kind, &item.NativeID, &item.Title, &item.Content,
			&published, &item.SourceName, &item.OriginURL,
			&item.Engagement.Likes, &item.Engagement.Shares, &item.Engagement.Comments,
			&item.Engagement.Reactions, &fetched)
		if err != nil {
			return nil, fmt.Errorf("scan raw item: %w", err)
		}
		item.Kind = model.SourceKind(kind)
		item.PublishedAt, _ = time.Parse(timeLayout, published)
		item.FetchedAt, _ = time.Parse(timeLayout, fetched)
		items = append(items, item)
	}
	return items, rows.Err()
}

// CreateSummary inserts a summary row keyed by its raw item ID.
func (s *SQLite) CreateSummary(ctx context.Context, sum *model.Summary) error {
	now := time.Now().UTC().Format(timeLayout)
	bullets, err := json.Marshal(sum.Bullets)
	if err != nil {
		return fmt.Errorf("marshal bullets: %w", err)
	}
	entities, err := json.Marshal(sum.Entities)
	if err != nil {
		return fmt.Errorf("marshal entities: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO summaries (id, title, bullets, entities, time_context, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		sum.ID, sum.Title, string(bullets), string(entities), sum.TimeContext, now,
	)
	if err != nil {
		return fmt.Errorf("insert summary: %w", err)
	}
	sum.CreatedAt, _ = time.Parse(timeLayout, now)
	return nil
}

// ListSummaryIDs returns which of the given IDs already have a summary row.
func (s *SQLite) ListSummaryIDs(ctx context.Context, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := s.sb.Select("id").From("summaries").Where(sq.Eq{"id": ids}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query summary ids: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan summary id: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// ListRecentSummaries returns the newest summaries, most recent first.
func (s *SQLite) ListRecentSummaries(ctx context.Context, limit int) ([]model.Summary, error) {
	query, args, err := s.summarySelect().
		OrderBy("created_at DESC", "id DESC").Limit(uint64(limit)).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	return s.querySummaries(ctx, query, args)
}

// ListSummariesByIDs returns the summaries whose IDs are in the given list.
func (s *SQLite) ListSummariesByIDs(ctx context.Context, ids []int64) ([]model.Summary, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := s.summarySelect().Where(sq.Eq{"id": ids}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	return s.querySummaries(ctx, query, args)
}

func (s *SQLite) summarySelect() sq.SelectBuilder {
	return s.sb.Select("id", "title", "bullets", "entities", "time_context", "created_at").
		From("summaries")
}

func (s *SQLite) querySummaries(ctx context.Context, query string, args []any) ([]model.Summary, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query summaries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var sums []model.Summary
	for rows.Next() {
		var sum model.Summary
		var bullets, entities, created string
		if err := rows.Scan(&sum.ID, &sum.Title, &bullets, &entities, &sum.TimeContext, &created); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		if err := json.Unmarshal([]byte(bullets), &sum.Bullets); err != nil {
			return nil, fmt.Errorf("unmarshal bullets: %w", err)
		}
		if err := json.Unmarshal([]byte(entities), &sum.Entities); err != nil {
			return nil, fmt.Errorf("unmarshal entities: %w", err)
		}
		sum.CreatedAt, _ = time.Parse(timeLayout, created)
		sums = append(sums, sum)
	}
	return sums, rows.Err()
}

// UpsertAnalysis inserts or replaces the analysis row for an item.
func (s *SQLite) UpsertAnalysis(ctx context.Context, a *model.Analysis) error {
	now := time.Now().UTC().Format(timeLayout)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO analyses
		   (id, importance, impact, social_trend, urgency, misread_risk, category, insight, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		   importance = excluded.importance,
		   impact = excluded.impact,
		   social_trend = excluded.social_trend,
		   urgency = excluded.urgency,
		   misread_risk = excluded.misread_risk,
		   category = excluded.category,
		   insight = excluded.insight,
		   created_at = excluded.created_at`,
		a.ID, a.Importance, a.Impact, a.SocialTrend, a.Urgency, a.MisreadRisk,
		a.Category, a.Insight, now,
	)
	if err != nil {
		return fmt.Errorf("upsert analysis: %w", err)
	}
	a.CreatedAt, _ = time.Parse(timeLayout, now)
	return nil
}

// ListAnalysesSince returns analyses created at or after the given instant.
func (s *SQLite) ListAnalysesSince(ctx context.Context, since time.Time) ([]model.Analysis, error) {
	query, args, err := s.sb.Select("id", "importance", "impact", "social_trend",
		"urgency", "misread_risk", "category", "insight", "created_at").
		From("analyses").
		Where(sq.GtOrEq{"created_at": since.UTC().Format(timeLayout)}).
		OrderBy("created_at DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query analyses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.Analysis
	for rows.Next() {
		var a model.Analysis
		var created string
		err := rows.Scan(&a.ID, &a.Importance, &a.Impact, &a.SocialTrend,
			&a.Urgency, &a.MisreadRisk, &a.Category, &a.Insight, &created)
		if err != nil {
			return nil, fmt.Errorf("scan analysis: %w", err)
		}
		a.CreatedAt, _ = time.Parse(timeLayout, created)
		out = append(out, a)
	}
	return out, rows.Err()
}

// UpsertDailyRanking inserts or replaces the ranking row for a date.
func (s *SQLite) UpsertDailyRanking(ctx context.Context, r *model.DailyRanking) error {
	now := time.Now().UTC().Format(timeLayout)
	ranked, err := json.Marshal(r.Ranked)
	if err != nil {
		return fmt.Errorf("marshal ranked list: %w", err)
	}
	top, err := json.Marshal(r.TopIDs)
	if err != nil {
		return fmt.Errorf("marshal top ids: %w", err)
	}
	trending, err := json.Marshal(r.TrendingIDs)
	if err != nil {
		return fmt.Errorf("marshal trending ids: %w", err)
	}
	gems, err := json.Marshal(r.HiddenGemIDs)
	if err != nil {
		return fmt.Errorf("marshal hidden gem ids: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO daily_rankings (rank_date, ranked, top_ids, trending_ids, hidden_gem_ids, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (rank_date) DO UPDATE SET
		   ranked = excluded.ranked,
		   top_ids = excluded.top_ids,
		   trending_ids = excluded.trending_ids,
		   hidden_gem_ids = excluded.hidden_gem_ids,
		   created_at = excluded.created_at`,
		r.RankDate, string(ranked), string(top), string(trending), string(gems), now,
	)
	if err != nil {
		return fmt.Errorf("upsert daily ranking: %w", err)
	}
	r.CreatedAt, _ = time.Parse(timeLayout, now)
	return nil
}

// GetDailyRanking returns the ranking for a date, or ErrNotFound.
func (s *SQLite) GetDailyRanking(ctx context.Context, rankDate string) (*model.DailyRanking, error) {
	query, args, err := s.sb.Select("rank_date", "ranked", "top_ids", "trending_ids", "hidden_gem_ids", "created_at").
		From("daily_rankings").Where(sq.Eq{"rank_date": rankDate}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var r model.DailyRanking
	var ranked, top, trending, gems, created string
	err = s.db.QueryRowContext(ctx, query, args...).
		Scan(&r.RankDate, &ranked, &top, &trending, &gems, &created)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan daily ranking: %w", err)
	}
	if err := json.Unmarshal([]byte(ranked), &r.Ranked); err != nil {
		return nil, fmt.Errorf("unmarshal ranked list: %w", err)
	}
	if err := json.Unmarshal([]byte(top), &r.TopIDs); err != nil {
		return nil, fmt.Errorf("unmarshal top ids: %w", err)
	}
	if err := json.Unmarshal([]byte(trending), &r.TrendingIDs); err != nil {
		return nil, fmt.Errorf("unmarshal trending ids: %w", err)
	}
	if err := json.Unmarshal([]byte(gems), &r.HiddenGemIDs); err != nil {
		return nil, fmt.Errorf("unmarshal hidden gem ids: %w", err)
	}
	r.CreatedAt, _ = time.Parse(timeLayout, created)
	return &r, nil
}

// CreateDraftPost inserts a generated post in draft state.
func (s *SQLite) CreateDraftPost(ctx context.Context, p *model.DraftPost) error {
	now := time.Now().UTC().Format(timeLayout)
	if p.Status == "" {
		p.Status = model.StatusDraft
	}
	var scheduled *string
	if p.ScheduledAt != nil {
		v := p.ScheduledAt.UTC().Format(timeLayout)
		scheduled = &v
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO draft_posts (variant, content, image_url, status, scheduled_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		p.Variant, p.Content, p.ImageURL, string(p.Status), scheduled, now,
	)
	if err != nil {
		return fmt.Errorf("insert draft post: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	p.ID = id
	p.CreatedAt, _ = time.Parse(timeLayout, now)
	return nil
}

// GetDraftPost returns a single post by its ID, or ErrNotFound.
func (s *SQLite) GetDraftPost(ctx context.Context, id int64) (*model.DraftPost, error) {
	query, args, err := s.draftPostSelect().Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	p, err := scanDraftPost(s.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return p, err
}

// ListDraftPosts returns posts, optionally restricted to one status, newest first.
func (s *SQLite) ListDraftPosts(ctx context.Context, status model.PostStatus) ([]model.DraftPost, error) {
	builder := s.draftPostSelect().OrderBy("created_at DESC", "id DESC")
	if status != "" {
		builder = builder.Where(sq.Eq{"status": string(status)})
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query draft posts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var posts []model.DraftPost
	for rows.Next() {
		p, err := scanDraftPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *p)
	}
	return posts, rows.Err()
}

// UpdateDraftPostStatus moves a post to a new lifecycle state.
func (s *SQLite) UpdateDraftPostStatus(ctx context.Context, id int64, status model.PostStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE draft_posts SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return fmt.Errorf("update post status: %w", err)
	}
	return requireRow(res)
}

// MarkDraftPosted records a successful publish.
func (s *SQLite) MarkDraftPosted(ctx context.Context, id int64, platformPostID string, postedAt time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE draft_posts SET status = ?, platform_post_id = ?, posted_at = ? WHERE id = ?`,
		string(model.StatusPosted), platformPostID, postedAt.UTC().Format(timeLayout), id)
	if err != nil {
		return fmt.Errorf("mark posted: %w", err)
	}
	return requireRow(res)
}

// DeleteDraftPost removes a post by its ID.
func (s *SQLite) DeleteDraftPost(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM draft_posts WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete draft post: %w", err)
	}
	return nil
}

func (s *SQLite) draftPostSelect() sq.SelectBuilder {
	return s.sb.Select("id", "variant", "content", "image_url", "status",
		"scheduled_at", "platform_post_id", "posted_at", "created_at").
		From("draft_posts")
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanSource(row scannable) (*model.Source, error) {
	var src model.Source
	var kind, created string
	var isActive int
	if err := row.Scan(&src.ID, &kind, &src.Name, &src.Endpoint, &isActive, &created); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scan source: %w", err)
	}
	src.Kind = model.SourceKind(kind)
	src.IsActive = isActive == 1
	src.CreatedAt, _ = time.Parse(timeLayout, created)
	return &src, nil
}

func scanDraftPost(row scannable) (*model.DraftPost, error) {
	var p model.DraftPost
	var status, created string
	var scheduled, posted sql.NullString
	err := row.Scan(&p.ID, &p.Variant, &p.Content, &p.ImageURL, &status,
		&scheduled, &p.PlatformPostID, &posted, &created)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scan draft post: %w", err)
	}
	p.Status = model.PostStatus(status)
	if scheduled.Valid {
		t, _ := time.Parse(timeLayout, scheduled.String)
		p.ScheduledAt = &t
	}
	if posted.Valid {
		t, _ := time.Parse(timeLayout, posted.String)
		p.PostedAt = &t
	}
	p.CreatedAt, _ = time.Parse(timeLayout, created)
	return &p, nil
}
