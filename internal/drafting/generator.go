// Package drafting produces the internal decline memo and the external
// decline letter for a proposal summary.
package drafting

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/joshuamtm/nyct-no-writer-mvp/internal/llm"
	"github.com/joshuamtm/nyct-no-writer-mvp/internal/metrics"
	"github.com/joshuamtm/nyct-no-writer-mvp/internal/prompts"
	"github.com/joshuamtm/nyct-no-writer-mvp/internal/types"
)

// ProviderTemplate is recorded as the provider when no model wrote either text.
const ProviderTemplate = "template"

const (
	memoTemperature   = 0.3
	letterTemperature = 0.4
	draftMaxTokens    = 300
)

// Generator drafts decline texts. A nil client selects the template path.
type Generator struct {
	client   llm.Client
	recorder *metrics.Recorder
	logger   *zap.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the logger used to report provider fallbacks.
func WithLogger(logger *zap.Logger) Option {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithRecorder sets where generation events are recorded.
func WithRecorder(r *metrics.Recorder) Option {
	return func(g *Generator) { g.recorder = r }
}

// NewGenerator creates a Generator. client may be nil.
func NewGenerator(client llm.Client, opts ...Option) *Generator {
	g := &Generator{
		client: client,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// AIEnabled reports whether drafts go through a provider.
func (g *Generator) AIEnabled() bool {
	return g.client != nil
}

// draft is one generated text and whether a provider wrote it.
type draft struct {
	text   string
	viaLLM bool
}

// Generate drafts the memo and the letter concurrently. It never fails:
// provider errors degrade to the templates. One generation event is recorded
// unless ctx was cancelled.
func (g *Generator) Generate(ctx context.Context, summary types.ProposalSummary, reason types.DeclineReason, specificReasons, sessionID string) types.GeneratedOutput {
	start := time.Now()

	var memo, letter draft
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		memo = g.memo(egCtx, summary, reason, specificReasons)
		return nil
	})
	eg.Go(func() error {
		letter = g.letter(egCtx, summary, reason, specificReasons)
		return nil
	})
	_ = eg.Wait()

	elapsed := time.Since(start)
	out := types.GeneratedOutput{
		InternalRationale: memo.text,
		ExternalReply:     letter.text,
		GenerationTimeMS:  elapsed.Milliseconds(),
	}

	if ctx.Err() != nil {
		g.logger.Info("drafting.generate.canceled", zap.Error(ctx.Err()))
		return out
	}

	provider := ProviderTemplate
	if memo.viaLLM || letter.viaLLM {
		provider = string(g.client.Name())
	}
	g.recorder.Record(ctx, metrics.Event{
		Type:             metrics.EventGeneration,
		OrganizationName: types.ValueOr(summary.OrganizationName, ""),
		DeclineReason:    string(reason),
		ProcessingTimeMS: float64(elapsed.Microseconds()) / 1000,
		SessionID:        sessionID,
		LLMProvider:      provider,
	})
	return out
}

func (g *Generator) memo(ctx context.Context, summary types.ProposalSummary, reason types.DeclineReason, specificReasons string) draft {
	if g.client == nil {
		return draft{text: TemplateMemo(summary, reason, specificReasons)}
	}

	summaryJSON, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		g.logger.Warn("drafting.memo.fallback", zap.Error(err))
		return draft{text: TemplateMemo(summary, reason, specificReasons)}
	}

	prompt, err := prompts.Render(prompts.DraftingFile, prompts.MemoUser,
		memoPromptValues(summary, reason, specificReasons, string(summaryJSON)))
	if err != nil {
		g.logger.Warn("drafting.memo.fallback", zap.Error(err))
		return draft{text: TemplateMemo(summary, reason, specificReasons)}
	}
	text, err := g.client.Complete(ctx, prompts.MustGet(prompts.DraftingFile, prompts.MemoSystem), prompt, llm.Options{
		Temperature: memoTemperature,
		MaxTokens:   draftMaxTokens,
	})
	if err != nil {
		g.logger.Warn("drafting.memo.fallback",
			zap.String("provider", string(g.client.Name())),
			zap.Error(err),
		)
		return draft{text: TemplateMemo(summary, reason, specificReasons)}
	}
	return draft{text: text, viaLLM: true}
}

func (g *Generator) letter(ctx context.Context, summary types.ProposalSummary, reason types.DeclineReason, specificReasons string) draft {
	organization := types.ValueOr(summary.OrganizationName, DefaultAddressee)
	if g.client == nil {
		return draft{text: TemplateLetter(organization)}
	}

	prompt, err := prompts.Render(prompts.DraftingFile, prompts.LetterUser, map[string]string{
		"OrganizationName": organization,
	})
	if err != nil {
		g.logger.Warn("drafting.letter.fallback", zap.Error(err))
		return draft{text: TemplateLetter(organization)}
	}
	text, err := g.client.Complete(ctx, prompts.MustGet(prompts.DraftingFile, prompts.LetterSystem), prompt, llm.Options{
		Temperature: letterTemperature,
		MaxTokens:   draftMaxTokens,
	})
	if err != nil {
		g.logger.Warn("drafting.letter.fallback",
			zap.String("provider", string(g.client.Name())),
			zap.Error(err),
		)
		return draft{text: TemplateLetter(organization)}
	}

	if leaked := leakedPhrases(text, internalPhrases(reason, specificReasons)); len(leaked) > 0 {
		g.logger.Warn("drafting.letter.leak",
			zap.String("provider", string(g.client.Name())),
			zap.Int("phrases", len(leaked)),
		)
		return draft{text: TemplateLetter(organization)}
	}
	return draft{text: text, viaLLM: true}
}
