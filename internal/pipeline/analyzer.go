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
	analyzeWindow  = 50
	analyzeDelay   = 2 * time.Second
	neutralScore   = 5
	defaultCategory = "General"
	defaultInsight = "No insight provided"
)

// AnalyzeResult reports one analysis run.
type AnalyzeResult struct {
	Processed int    `json:"processed"`
	Failed    int    `json:"failed"`
	Message   string `json:"message,omitempty"`
}

// Analyzer scores summarized stories against their engagement metrics.
// It deliberately reprocesses its whole fetch window on every run and
// upserts, so older items pick up fresh engagement-driven scores.
type Analyzer struct {
	store storage.Storage
	llm   llm.Client
	log   *slog.Logger

	Delay time.Duration
}

// NewAnalyzer creates the analysis stage.
func NewAnalyzer(store storage.Storage, client llm.Client, log *slog.Logger) *Analyzer {
	return &Analyzer{store: store, llm: client, log: log, Delay: analyzeDelay}
}

// Run scores the most recent summaries. JSON parse failures skip the item;
// missing or out-of-range score fields default to the neutral mid-range.
func (a *Analyzer) Run(ctx context.Context) (*AnalyzeResult, error) {
	summaries, err := a.store.ListRecentSummaries(ctx, analyzeWindow)
	if err != nil {
		return nil, err
	}
	if len(summaries) == 0 {
		return &AnalyzeResult{Message: "no summaries to analyze"}, nil
	}

	// Engagement lives on the raw item; a second batched fetch routes
	// around the store's lack of joins.
	ids := make([]int64, len(summaries))
	for i, s := range summaries {
		ids[i] = s.ID
	}
	rawItems, err := a.store.ListRawItemsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	engagement := make(map[int64]model.Engagement, len(rawItems))
	for _, item := range rawItems {
		engagement[item.ID] = item.Engagement
	}

	a.log.Info("analyzing", "window", len(summaries))

	res := &AnalyzeResult{}
	for _, sum := range summaries {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		if err := a.analyzeItem(ctx, sum, engagement[sum.ID]); err != nil {
			a.log.Error("analyze item", "id", sum.ID, "error", err)
			res.Failed++
		} else {
			res.Processed++
		}
		sleep(ctx, a.Delay)
	}
	return res, nil
}

func (a *Analyzer) analyzeItem(ctx context.Context, sum model.Summary, eng model.Engagement) error {
	normalized, err := json.MarshalIndent(map[string]any{
		"title":        sum.Title,
		"summary":      sum.Bullets,
		"entities":     sum.Entities,
		"time_context": sum.TimeContext,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	metrics, err := json.MarshalIndent(eng, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal metrics: %w", err)
	}

	prompt, err := prompts.Get("analyzer", map[string]string{
		"normalized_news_json": string(normalized),
		"metrics_json":         string(metrics),
	})
	if err != nil {
		return err
	}

	text, err := a.llm.Complete(ctx, llm.Request{
		Model:       prompt.Model,
		System:      prompt.System,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: prompt.User}},
		Temperature: prompt.Temperature,
		MaxTokens:   prompt.MaxTokens,
		JSONMode:    true,
	})
	if err != nil {
		return err
	}

	raw, err := llm.ExtractJSON(text)
	if err != nil {
		return err
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return err
	}

	return a.store.UpsertAnalysis(ctx, &model.Analysis{
		ID:          sum.ID,
		Importance:  scoreField(fields, "importance_score"),
		Impact:      scoreField(fields, "impact_score"),
		SocialTrend: scoreField(fields, "social_trend_score"),
		Urgency:     scoreField(fields, "urgency_score"),
		MisreadRisk: scoreField(fields, "risk_of_misunderstanding"),
		Category:    stringField(fields, "category", defaultCategory),
		Insight:     stringField(fields, "short_insight", defaultInsight),
	})
}

// scoreField coerces a model-supplied score to an int in 1..10, defaulting
// to the neutral mid-range when the field is missing or unusable.
func scoreField(fields map[string]any, key string) int {
	v, ok := fields[key].(float64)
	if !ok {
		return neutralScore
	}
	n := int(v)
	if n < 1 || n > 10 {
		return neutralScore
	}
	return n
}

func stringField(fields map[string]any, key, fallback string) string {
	if s, ok := fields[key].(string); ok && s != "" {
		return s
	}
	return fallback
}
