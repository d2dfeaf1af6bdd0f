package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"newsdesk/internal/llm"
	"newsdesk/internal/model"
	"newsdesk/internal/prompts"
	"newsdesk/internal/render"
	"newsdesk/internal/storage"
)

const generateDelay = 3 * time.Second

// GenerateResult reports one post generation run.
type GenerateResult struct {
	Created int    `json:"created"`
	Errors  int    `json:"errors"`
	Message string `json:"message,omitempty"`
}

// Generator drafts social posts from today's ranking, one per variant.
// Infographic rendering is best effort; a draft without an image is still a
// draft.
type Generator struct {
	store    storage.Storage
	llm      llm.Client
	renderer render.Renderer
	tone     string
	log      *slog.Logger
	now      func() time.Time

	// Delay throttles consecutive variant calls. Tests set it to zero.
	Delay time.Duration
}

// NewGenerator creates the post generation stage. renderer may be nil when no
// infographic service is configured.
func NewGenerator(store storage.Storage, client llm.Client, renderer render.Renderer, tone string, log *slog.Logger) *Generator {
	return &Generator{
		store:    store,
		llm:      client,
		renderer: renderer,
		tone:     tone,
		log:      log,
		now:      time.Now,
		Delay:    generateDelay,
	}
}

var defaultVariants = []string{model.VariantDailyTop, model.VariantTrending}

// Run drafts posts for the given variants from today's ranking. With no
// variants it drafts all known ones. Variants whose subset of the ranking is
// empty are skipped silently.
func (g *Generator) Run(ctx context.Context, variants ...string) (*GenerateResult, error) {
	if len(variants) == 0 {
		variants = defaultVariants
	}

	date := g.now().Format(rankDateLayout)
	ranking, err := g.store.GetDailyRanking(ctx, date)
	if errors.Is(err, storage.ErrNotFound) {
		return &GenerateResult{Message: "no ranking for today, run the ranking stage first"}, nil
	}
	if err != nil {
		return nil, err
	}

	res := &GenerateResult{}
	for _, variant := range variants {
		created, err := g.generateVariant(ctx, ranking, variant)
		if err != nil {
			res.Errors++
			g.log.Error("generate post", "variant", variant, "error", err)
		} else if created {
			res.Created++
		}
		sleep(ctx, g.Delay)
	}
	if res.Created == 0 && res.Errors == 0 {
		res.Message = "no posts generated, ranking subsets were empty"
	}
	return res, nil
}

func (g *Generator) generateVariant(ctx context.Context, ranking *model.DailyRanking, variant string) (bool, error) {
	var subset []int64
	var promptVar string
	switch variant {
	case model.VariantDailyTop:
		subset = ranking.TopIDs
		promptVar = "ranked_news_detail_json"
	case model.VariantTrending:
		subset = ranking.TrendingIDs
		promptVar = "trending_news_detail_json"
	default:
		return false, fmt.Errorf("unknown post variant %q", variant)
	}

	items := selectRanked(ranking.Ranked, subset)
	if len(items) == 0 {
		g.log.Info("skipping variant, no ranked items in subset", "variant", variant)
		return false, nil
	}

	payload, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return false, fmt.Errorf("marshal ranked items: %w", err)
	}

	prompt, err := prompts.GetVariant("post_generator", variant, map[string]string{
		promptVar: string(payload),
		"tone":    g.tone,
	})
	if err != nil {
		return false, err
	}

	content, err := g.llm.Complete(ctx, llm.Request{
		Model:       prompt.Model,
		System:      prompt.System,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: prompt.User}},
		Temperature: prompt.Temperature,
		MaxTokens:   prompt.MaxTokens,
	})
	if err != nil {
		return false, err
	}

	var imageURL string
	if g.renderer != nil {
		imageURL, err = g.renderer.Render(ctx, variant, items)
		if err != nil {
			g.log.Warn("render infographic", "variant", variant, "error", err)
			imageURL = ""
		}
	}

	post := &model.DraftPost{
		Variant:  variant,
		Content:  content,
		ImageURL: imageURL,
		Status:   model.StatusDraft,
	}
	if err := g.store.CreateDraftPost(ctx, post); err != nil {
		return false, fmt.Errorf("save draft post: %w", err)
	}

	g.log.Info("draft post created", "variant", variant, "id", post.ID, "has_image", imageURL != "")
	return true, nil
}

// selectRanked keeps the entries whose ID is in ids, preserving the ranking
// order.
func selectRanked(ranked []model.RankedEntry, ids []int64) []model.RankedEntry {
	want := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	var out []model.RankedEntry
	for _, e := range ranked {
		if _, ok := want[e.ID]; ok {
			out = append(out, e)
		}
	}
	return out
}
