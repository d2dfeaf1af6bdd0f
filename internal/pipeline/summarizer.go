package pipeline

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"newsdesk/internal/llm"
	"newsdesk/internal/model"
	"newsdesk/internal/prompts"
	"newsdesk/internal/storage"
)

const (
	summarizeWindow = 20
	summarizeDelay  = 2 * time.Second
)

// SummarizeResult reports one summarization run.
type SummarizeResult struct {
	Processed int    `json:"processed"`
	Failed    int    `json:"failed"`
	Checked   int    `json:"total_checked"`
	Message   string `json:"message,omitempty"`
}

// Summarizer turns raw items without a summary into Summary rows, one LLM
// call per item.
type Summarizer struct {
	store storage.Storage
	llm   llm.Client
	tone  string
	log   *slog.Logger

	// Delay enforced after every item, success or failure.
	Delay time.Duration
}

// NewSummarizer creates the summarization stage.
func NewSummarizer(store storage.Storage, client llm.Client, tone string, log *slog.Logger) *Summarizer {
	return &Summarizer{store: store, llm: client, tone: tone, log: log, Delay: summarizeDelay}
}

// Run fetches the most recent raw items, computes the subset lacking a
// summary, and summarizes each pending item. Per-item failures are counted
// and never abort the loop.
func (s *Summarizer) Run(ctx context.Context) (*SummarizeResult, error) {
	recent, err := s.store.ListRecentRawItems(ctx, summarizeWindow)
	if err != nil {
		return nil, err
	}
	if len(recent) == 0 {
		return &SummarizeResult{Message: "no raw items to summarize"}, nil
	}

	ids := make([]int64, len(recent))
	byID := make(map[int64]model.RawItem, len(recent))
	for i, item := range recent {
		ids[i] = item.ID
		byID[item.ID] = item
	}

	existing, err := s.store.ListSummaryIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	pending := PendingIDs(ids, existing)
	res := &SummarizeResult{Checked: len(recent)}
	if len(pending) == 0 {
		res.Message = "no pending raw items"
		return res, nil
	}

	s.log.Info("summarizing", "pending", len(pending), "checked", len(recent))

	for _, id := range pending {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		if err := s.summarizeItem(ctx, byID[id]); err != nil {
			s.log.Error("summarize item", "id", id, "error", err)
			res.Failed++
		} else {
			res.Processed++
		}
		sleep(ctx, s.Delay)
	}
	return res, nil
}

func (s *Summarizer) summarizeItem(ctx context.Context, item model.RawItem) error {
	prompt, err := prompts.Get("summarizer", map[string]string{
		"news_content": item.Content,
		"news_source":  item.SourceName,
		"tone":         s.tone,
	})
	if err != nil {
		return err
	}

	text, err := s.llm.Complete(ctx, llm.Request{
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

	var parsed struct {
		Title       string   `json:"title_rewritten"`
		Bullets     []string `json:"bullets"`
		Entities    []string `json:"entities"`
		TimeContext string   `json:"time_context"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return err
	}
	if parsed.Title == "" {
		parsed.Title = item.Title
	}

	return s.store.CreateSummary(ctx, &model.Summary{
		ID:          item.ID,
		Title:       parsed.Title,
		Bullets:     parsed.Bullets,
		Entities:    parsed.Entities,
		TimeContext: parsed.TimeContext,
	})
}
