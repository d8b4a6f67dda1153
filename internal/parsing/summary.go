// Package parsing turns cleaned proposal text into a structured ProposalSummary,
// through a generative provider when one is configured and through text
// heuristics otherwise.
package parsing

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/joshuamtm/nyct-no-writer-mvp/internal/llm"
	"github.com/joshuamtm/nyct-no-writer-mvp/internal/prompts"
	"github.com/joshuamtm/nyct-no-writer-mvp/internal/schemas"
	"github.com/joshuamtm/nyct-no-writer-mvp/internal/types"
)

const (
	// MaxInputChars caps the proposal text sent to the provider.
	MaxInputChars = 8000

	extractionTemperature = 0.1
	extractionMaxTokens   = 1500
)

// Summarizer extracts proposal summaries. A nil client selects the heuristic path.
type Summarizer struct {
	client   llm.Client
	logger   *zap.Logger
	maxInput int
}

// Option configures a Summarizer.
type Option func(*Summarizer)

// WithLogger sets the logger used to report provider fallbacks.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Summarizer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMaxInputChars overrides the input truncation bound.
func WithMaxInputChars(n int) Option {
	return func(s *Summarizer) {
		if n > 0 {
			s.maxInput = n
		}
	}
}

// NewSummarizer creates a Summarizer. client may be nil.
func NewSummarizer(client llm.Client, opts ...Option) *Summarizer {
	s := &Summarizer{
		client:   client,
		logger:   zap.NewNop(),
		maxInput: MaxInputChars,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AIEnabled reports whether summaries go through a provider.
func (s *Summarizer) AIEnabled() bool {
	return s.client != nil
}

// Provider names the provider in use, or "" for the heuristic path.
func (s *Summarizer) Provider() string {
	if s.client == nil {
		return ""
	}
	return string(s.client.Name())
}

// Summarize never fails: provider errors and unusable responses degrade to
// HeuristicSummary.
func (s *Summarizer) Summarize(ctx context.Context, text string) types.ProposalSummary {
	if s.client == nil {
		return HeuristicSummary(text)
	}

	start := time.Now()
	summary, err := s.summarizeWithProvider(ctx, text)
	if err != nil {
		s.logger.Warn("parsing.summary.fallback",
			zap.String("provider", s.Provider()),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return HeuristicSummary(text)
	}

	s.logger.Debug("parsing.summary.extracted",
		zap.String("provider", s.Provider()),
		zap.Int("fields", summary.PresentFields()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return summary
}

func (s *Summarizer) summarizeWithProvider(ctx context.Context, text string) (types.ProposalSummary, error) {
	prompt := BuildPrompt(truncateRunes(text, s.maxInput))
	system := prompts.MustGet(prompts.SummaryFile, prompts.ExtractionSystem)

	response, err := s.client.Complete(ctx, system, prompt, llm.Options{
		Temperature: extractionTemperature,
		MaxTokens:   extractionMaxTokens,
		JSONMode:    true,
	})
	if err != nil {
		return types.ProposalSummary{}, &ExtractionCallError{Provider: string(s.client.Name()), Cause: err}
	}

	summary, dropped, err := ParseSummary(response)
	if err != nil {
		return types.ProposalSummary{}, err
	}
	if len(dropped) > 0 {
		s.logger.Info("parsing.summary.fields_dropped", zap.Strings("fields", dropped))
	}
	return summary, nil
}

// BuildPrompt constructs the extraction prompt for a proposal.
func BuildPrompt(text string) string {
	return llm.ProposalSummaryRequest().Prompt(text)
}

// ParseSummary decodes a provider response into a ProposalSummary.
//
// Fields are checked against the proposal summary schema one by one: a field
// that violates it is coerced when it is a plain number and dropped otherwise.
// Missing and null fields are absent; unknown fields are ignored. The names of
// dropped fields are returned for logging.
func ParseSummary(response string) (types.ProposalSummary, []string, error) {
	cleaned := llm.CleanJSONBlock(response)

	dec := json.NewDecoder(strings.NewReader(cleaned))
	dec.UseNumber()
	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return types.ProposalSummary{}, nil, malformed("not a JSON object", cleaned, err)
	}
	if doc == nil {
		return types.ProposalSummary{}, nil, malformed("null", cleaned, nil)
	}

	invalid := invalidFields(cleaned)

	var summary types.ProposalSummary
	var dropped []string
	for name, target := range stringFields(&summary) {
		v, ok := doc[name]
		if !ok || v == nil {
			continue
		}
		*target = asString(v)
		if invalid[name] && *target == nil {
			dropped = append(dropped, name)
		}
	}
	for name, target := range listFields(&summary) {
		v, ok := doc[name]
		if !ok || v == nil {
			continue
		}
		*target = asList(v)
		if invalid[name] && *target == nil {
			dropped = append(dropped, name)
		}
	}
	sort.Strings(dropped)

	return summary.Compact(), dropped, nil
}

// invalidFields returns the top-level fields the schema rejects.
func invalidFields(doc string) map[string]bool {
	out := map[string]bool{}
	err := schemas.ValidateProposalSummary(doc)
	var serr *schemas.SummaryError
	if !errors.As(err, &serr) {
		return out
	}
	for _, field := range serr.Fields() {
		out[field] = true
	}
	return out
}

func stringFields(s *types.ProposalSummary) map[string]**string {
	return map[string]**string{
		"organizationName":    &s.OrganizationName,
		"organizationMission": &s.OrganizationMission,
		"foundingYear":        &s.FoundingYear,
		"grantAmount":         &s.GrantAmount,
		"projectDescription":  &s.ProjectDescription,
		"targetPopulation":    &s.TargetPopulation,
		"geographicScope":     &s.GeographicScope,
		"currentBudget":       &s.CurrentBudget,
		"projectBudget":       &s.ProjectBudget,
		"peopleServed":        &s.PeopleServed,
		"timeline":            &s.Timeline,
		"evaluationMethods":   &s.EvaluationMethods,
	}
}

func listFields(s *types.ProposalSummary) map[string]*[]string {
	return map[string]*[]string{
		"keyDeliverables": &s.KeyDeliverables,
		"keyPartners":     &s.KeyPartners,
	}
}

func asString(v any) *string {
	switch val := v.(type) {
	case string:
		return types.StringPtr(val)
	case json.Number:
		return types.StringPtr(val.String())
	default:
		return nil
	}
}

func asList(v any) []string {
	switch val := v.(type) {
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s := asString(item); s != nil {
				out = append(out, *s)
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out
	case string:
		// a lone string is a one-item list
		if s := types.StringPtr(val); s != nil {
			return []string{*s}
		}
		return nil
	default:
		return nil
	}
}

