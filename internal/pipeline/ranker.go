package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"newsdesk/internal/llm"
	"newsdesk/internal/model"
	"newsdesk/internal/prompts"
	"newsdesk/internal/storage"
)

const (
	rankBatchCeiling = 100
	rankDateLayout   = "2006-01-02"
	unknownTitle     = "Untitled News"
)

// RankResult reports one ranking run.
type RankResult struct {
	Date        string  `json:"date,omitempty"`
	RankedCount int     `json:"ranked_count"`
	TopIDs      []int64 `json:"top_ids,omitempty"`
	Message     string  `json:"message,omitempty"`
}

// Ranker produces the single daily ranking from all of today's analyses in
// one batched LLM call. An unparseable ranking fails the stage outright; a
// corrupt ranking is worse than none.
type Ranker struct {
	store storage.Storage
	llm   llm.Client
	log   *slog.Logger
	now   func() time.Time
}

// NewRanker creates the ranking stage.
func NewRanker(store storage.Storage, client llm.Client, log *slog.Logger) *Ranker {
	return &Ranker{store: store, llm: client, log: log, now: time.Now}
}

type rankCandidate struct {
	ID     int64          `json:"id"`
	Title  string         `json:"title"`
	Scores map[string]int `json:"scores"`
	// Insight is passed to the model and also kept as the authoritative
	// value merged back into the persisted entry.
	Insight string `json:"insight"`
}

// Run ranks everything analyzed since local midnight and upserts the day's
// ranking row. With no analyses for today it returns an informational no-op.
func (r *Ranker) Run(ctx context.Context) (*RankResult, error) {
	today := r.now()
	startOfDay := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())

	analyses, err := r.store.ListAnalysesSince(ctx, startOfDay)
	if err != nil {
		return nil, err
	}
	if len(analyses) == 0 {
		return &RankResult{Message: "no analyzed news found for today"}, nil
	}
	if len(analyses) > rankBatchCeiling {
		analyses = analyses[:rankBatchCeiling]
	}

	// Titles live on the summary; second batched fetch instead of a join.
	ids := make([]int64, len(analyses))
	for i, a := range analyses {
		ids[i] = a.ID
	}
	summaries, err := r.store.ListSummariesByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	titles := make(map[int64]string, len(summaries))
	for _, s := range summaries {
		titles[s.ID] = s.Title
	}

	candidates := make([]rankCandidate, len(analyses))
	byID := make(map[int64]rankCandidate, len(analyses))
	for i, a := range analyses {
		title := titles[a.ID]
		if title == "" {
			title = unknownTitle
		}
		c := rankCandidate{
			ID:    a.ID,
			Title: title,
			Scores: map[string]int{
				"importance": a.Importance,
				"impact":     a.Impact,
				"trend":      a.SocialTrend,
			},
			Insight: a.Insight,
		}
		candidates[i] = c
		byID[a.ID] = c
	}

	payload, err := json.MarshalIndent(candidates, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal candidates: %w", err)
	}

	prompt, err := prompts.Get("ranker", map[string]string{
		"news_items_with_scores_json": string(payload),
	})
	if err != nil {
		return nil, err
	}

	r.log.Info("ranking", "candidates", len(candidates))

	text, err := r.llm.Complete(ctx, llm.Request{
		Model:       prompt.Model,
		System:      prompt.System,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: prompt.User}},
		Temperature: prompt.Temperature,
		MaxTokens:   prompt.MaxTokens,
		JSONMode:    true,
	})
	if err != nil {
		return nil, err
	}

	raw, err := llm.ExtractJSON(text)
	if err != nil {
		return nil, fmt.Errorf("parse ranking response: %w", err)
	}

	var parsed struct {
		Ranked []struct {
			ID     int64  `json:"id"`
			Reason string `json:"reason"`
		} `json:"ranked"`
		TopIDs       []int64 `json:"top5_ids"`
		TrendingIDs  []int64 `json:"trending_ids"`
		HiddenGemIDs []int64 `json:"hidden_gem_ids"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("decode ranking response: %w", err)
	}

	// The model is not trusted to echo titles or scores faithfully; merge
	// the authoritative values back from the candidate set.
	enriched := make([]model.RankedEntry, 0, len(parsed.Ranked))
	for _, entry := range parsed.Ranked {
		e := model.RankedEntry{ID: entry.ID, Reason: entry.Reason, Title: unknownTitle}
		if c, ok := byID[entry.ID]; ok {
			e.Title = c.Title
			e.Importance = c.Scores["importance"]
			e.Insight = c.Insight
		}
		enriched = append(enriched, e)
	}

	ranking := &model.DailyRanking{
		RankDate:     today.Format(rankDateLayout),
		Ranked:       enriched,
		TopIDs:       parsed.TopIDs,
		TrendingIDs:  parsed.TrendingIDs,
		HiddenGemIDs: parsed.HiddenGemIDs,
	}
	if err := r.store.UpsertDailyRanking(ctx, ranking); err != nil {
		return nil, err
	}

	return &RankResult{
		Date:        ranking.RankDate,
		RankedCount: len(enriched),
		TopIDs:      parsed.TopIDs,
	}, nil
}
