package drafting

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/joshuamtm/nyct-no-writer-mvp/internal/llm"
	"github.com/joshuamtm/nyct-no-writer-mvp/internal/metrics"
	"github.com/joshuamtm/nyct-no-writer-mvp/internal/types"
)

// routedClient answers memo and letter requests separately.
type routedClient struct {
	memo, letter       string
	memoErr, letterErr error
	delay              time.Duration

	mu      sync.Mutex
	prompts map[string]string
	opts    map[string]llm.Options
	active  atomic.Int32
	peak    atomic.Int32
}

func (c *routedClient) Complete(ctx context.Context, system, prompt string, opts llm.Options) (string, error) {
	n := c.active.Add(1)
	defer c.active.Add(-1)
	for {
		p := c.peak.Load()
		if n <= p || c.peak.CompareAndSwap(p, n) {
			break
		}
	}
	if c.delay > 0 {
		select {
		case <-time.After(c.delay):
		case <-ctx.Done():
			return "", &llm.ProviderError{Provider: llm.ProviderAnthropic, Kind: llm.KindCanceled, Cause: ctx.Err()}
		}
	}

	kind := "letter"
	if strings.Contains(system, "internal memos") {
		kind = "memo"
	}
	c.mu.Lock()
	if c.prompts == nil {
		c.prompts = map[string]string{}
		c.opts = map[string]llm.Options{}
	}
	c.prompts[kind] = prompt
	c.opts[kind] = opts
	c.mu.Unlock()

	if kind == "memo" {
		return c.memo, c.memoErr
	}
	return c.letter, c.letterErr
}

func (c *routedClient) Name() llm.Provider { return llm.ProviderAnthropic }
func (c *routedClient) Close() error       { return nil }

type failingSink struct{}

func (failingSink) Record(context.Context, metrics.Event) error {
	return errors.New("metrics database unavailable")
}

type panickingSink struct{}

func (panickingSink) Record(context.Context, metrics.Event) error { panic("boom") }

func TestGenerate_TemplatesWithAllFieldsAbsent(t *testing.T) {
	g := NewGenerator(nil)
	assert.False(t, g.AIEnabled())

	out := g.Generate(context.Background(), types.ProposalSummary{}, types.ReasonHigherMerit, "", "")

	require.NotEmpty(t, out.InternalRationale)
	require.NotEmpty(t, out.ExternalReply)
	assert.Contains(t, out.InternalRationale, "The organization")
	assert.Contains(t, out.InternalRationale, "requested funding")
	assert.Contains(t, out.InternalRationale, "their proposed project")
	assert.True(t, strings.HasPrefix(out.ExternalReply, "Dear Applicant,"))
	assert.GreaterOrEqual(t, out.GenerationTimeMS, int64(0))
}

func TestGenerate_AIPath(t *testing.T) {
	client := &routedClient{memo: "AI memo text", letter: "Dear Astoria Cat Rescue, thank you."}
	sink := metrics.NewMemorySink()
	g := NewGenerator(client, WithRecorder(metrics.NewRecorder(sink)))
	assert.True(t, g.AIEnabled())

	out := g.Generate(context.Background(), fullSummary(), types.ReasonGeographicScope, "Serves Westchester only.", "session-9")

	assert.Equal(t, "AI memo text", out.InternalRationale)
	assert.Equal(t, "Dear Astoria Cat Rescue, thank you.", out.ExternalReply)

	assert.Contains(t, client.prompts["memo"], "declined for Geographic Scope Limitation. Serves Westchester only.")
	assert.Contains(t, client.prompts["memo"], `"grantAmount": "$12,500"`)
	assert.Contains(t, client.prompts["letter"], "from Astoria Cat Rescue")
	assert.NotContains(t, client.prompts["letter"], "Geographic Scope Limitation")
	assert.NotContains(t, client.prompts["letter"], "Westchester")
	assert.Equal(t, llm.Options{Temperature: 0.3, MaxTokens: 300}, client.opts["memo"])
	assert.Equal(t, llm.Options{Temperature: 0.4, MaxTokens: 300}, client.opts["letter"])

	events := sink.Events()
	require.Len(t, events, 1)
	e := events[0]
	assert.Equal(t, metrics.EventGeneration, e.Type)
	assert.Equal(t, "Astoria Cat Rescue", e.OrganizationName)
	assert.Equal(t, "geographic_scope", e.DeclineReason)
	assert.Equal(t, "session-9", e.SessionID)
	assert.Equal(t, "anthropic", e.LLMProvider)
}

func TestGenerate_RunsDraftsConcurrently(t *testing.T) {
	client := &routedClient{memo: "m", letter: "l", delay: 50 * time.Millisecond}
	NewGenerator(client).Generate(context.Background(), fullSummary(), types.ReasonHigherMerit, "", "")
	assert.Equal(t, int32(2), client.peak.Load())
}

func TestGenerate_ProviderErrorsFallBack(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	client := &routedClient{
		memoErr:   &llm.ProviderError{Provider: llm.ProviderAnthropic, Kind: llm.KindRateLimit},
		letterErr: &llm.ProviderError{Provider: llm.ProviderAnthropic, Kind: llm.KindNetwork},
	}
	sink := metrics.NewMemorySink()
	g := NewGenerator(client, WithLogger(zap.New(core)), WithRecorder(metrics.NewRecorder(sink)))

	out := g.Generate(context.Background(), fullSummary(), types.ReasonSustainability, "", "s")

	assert.Equal(t, TemplateMemo(fullSummary(), types.ReasonSustainability, ""), out.InternalRationale)
	assert.Equal(t, TemplateLetter("Astoria Cat Rescue"), out.ExternalReply)
	assert.Equal(t, 1, logs.FilterMessage("drafting.memo.fallback").Len())
	assert.Equal(t, 1, logs.FilterMessage("drafting.letter.fallback").Len())

	require.Len(t, sink.Events(), 1)
	assert.Equal(t, ProviderTemplate, sink.Events()[0].LLMProvider)
}

func TestGenerate_LetterLeakFallsBackToTemplate(t *testing.T) {
	specific := "The budget narrative is missing."
	tests := []struct {
		name   string
		letter string
	}{
		{"label", "Dear Acme, unfortunately due to incomplete proposal issues we cannot fund you."},
		{"code", "Dear Acme, reason: INCOMPLETE_PROPOSAL."},
		{"specific reasons", "Dear Acme, the budget narrative is missing. Please reapply."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zap.WarnLevel)
			client := &routedClient{memo: "memo", letter: tt.letter}
			g := NewGenerator(client, WithLogger(zap.New(core)))

			out := g.Generate(context.Background(), fullSummary(), types.ReasonIncompleteProposal, specific, "")

			assert.Equal(t, TemplateLetter("Astoria Cat Rescue"), out.ExternalReply)
			assert.Equal(t, "memo", out.InternalRationale)
			assert.Equal(t, 1, logs.FilterMessage("drafting.letter.leak").Len())
		})
	}
}

func TestGenerate_ExternalReplyIsolatedForEveryReason(t *testing.T) {
	specific := "Board prioritized early childhood literacy this cycle."
	summary := fullSummary()
	for _, opt := range types.AllReasons() {
		t.Run(string(opt.Value), func(t *testing.T) {
			out := NewGenerator(nil).Generate(context.Background(), summary, opt.Value, specific, "")

			lower := strings.ToLower(out.ExternalReply)
			assert.NotContains(t, lower, strings.ToLower(opt.Label))
			assert.NotContains(t, lower, strings.ToLower(specific))
			assert.Contains(t, out.InternalRationale, specific)
			assert.Contains(t, out.InternalRationale, "Rationale: "+opt.Label)
		})
	}
}

func TestGenerate_SinkFailuresDoNotFailGeneration(t *testing.T) {
	for name, sink := range map[string]metrics.Sink{"error": failingSink{}, "panic": panickingSink{}} {
		t.Run(name, func(t *testing.T) {
			core, logs := observer.New(zap.WarnLevel)
			recorder := metrics.NewRecorder(sink, metrics.WithLogger(zap.New(core)))
			g := NewGenerator(nil, WithRecorder(recorder))

			var out types.GeneratedOutput
			require.NotPanics(t, func() {
				out = g.Generate(context.Background(), fullSummary(), types.ReasonHigherMerit, "", "s")
			})
			assert.NotEmpty(t, out.InternalRationale)
			assert.NotEmpty(t, out.ExternalReply)
			assert.Equal(t, 1, logs.FilterMessage("metrics.record.failed").Len())
		})
	}
}

func TestGenerate_CanceledContextRecordsNothing(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := &routedClient{memo: "m", letter: "l", delay: time.Second}
	sink := metrics.NewMemorySink()
	g := NewGenerator(client, WithRecorder(metrics.NewRecorder(sink)))

	out := g.Generate(ctx, fullSummary(), types.ReasonHigherMerit, "", "s")

	assert.NotEmpty(t, out.InternalRationale, "still returns the template drafts")
	assert.Equal(t, TemplateLetter("Astoria Cat Rescue"), out.ExternalReply)
	assert.Empty(t, sink.Events())
}

func TestGenerate_UnknownReason(t *testing.T) {
	out := NewGenerator(nil).Generate(context.Background(), types.ProposalSummary{}, types.DeclineReason("mystery"), "", "")
	assert.Contains(t, out.InternalRationale, "Rationale: Decline Reason")
}

func TestGenerate_MemoPromptFollowsPresentFacts(t *testing.T) {
	client := &routedClient{memo: "m", letter: "Dear Astoria Cat Rescue,"}
	NewGenerator(client).Generate(context.Background(), fullSummary(), types.ReasonHigherMerit, "", "")

	prompt := client.prompts["memo"]
	assert.Contains(t, prompt, "[Organization name], founded in [year], [mission/description].")
	assert.Contains(t, prompt, "(2009)")
	assert.Contains(t, prompt, "The project budget is [project budget]. The organization's current operating budget is [current budget].")
	assert.Contains(t, prompt, "Include a sentence for the project budget and the current operating budget")
	assert.NotContains(t, prompt, "additional relevant details")
}

func TestGenerate_MemoPromptOmitsAbsentFacts(t *testing.T) {
	summary := fullSummary()
	summary.FoundingYear = nil
	summary.ProjectBudget = nil
	summary.CurrentBudget = nil

	client := &routedClient{memo: "m", letter: "Dear Astoria Cat Rescue,"}
	NewGenerator(client).Generate(context.Background(), summary, types.ReasonHigherMerit, "", "")

	prompt := client.prompts["memo"]
	assert.Contains(t, prompt, "[Organization name] [mission/description].")
	assert.NotContains(t, prompt, ", founded in [year],")
	assert.Contains(t, prompt, `Leave out the "founded in" clause entirely and do not guess a year.`)
	assert.NotContains(t, prompt, "[project budget]")
	assert.NotContains(t, prompt, "[current budget]")
	assert.Contains(t, prompt, "The summary has no budget figures. Do not write any budget sentence.")
}

func TestBudgetRule(t *testing.T) {
	assert.Equal(t,
		"Include a sentence for the project budget, using the summary's figures. The summary has no current operating budget, so do not mention one.",
		budgetRule([]string{"project budget"}, []string{"current operating budget"}))
}

func TestGenerate_ShortInputsDoNotForceTemplateLetter(t *testing.T) {
	letter := "Dear Astoria Cat Rescue, thank you for applying. We are unable to fund your request at this time."
	client := &routedClient{memo: "memo", letter: letter}

	out := NewGenerator(client).Generate(context.Background(), fullSummary(), types.DeclineReason("a"), ".", "")

	assert.Equal(t, letter, out.ExternalReply)
}
