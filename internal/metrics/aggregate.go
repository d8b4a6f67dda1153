package metrics

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"
)

const (
	topReasonsLimit = 5
	dayLayout       = "2006-01-02"
)

// ReasonCount is a decline reason with its number of generations.
type ReasonCount struct {
	Reason string `json:"reason"`
	Count  int    `json:"count"`
}

// Summary holds the headline numbers for a reporting period.
type Summary struct {
	PeriodDays              int           `json:"period_days"`
	TotalUploads            int           `json:"total_uploads"`
	TotalGenerations        int           `json:"total_generations"`
	UniqueSessions          int           `json:"unique_sessions"`
	AverageAnalysisTimeMS   float64       `json:"average_analysis_time_ms"`
	AverageGenerationTimeMS float64       `json:"average_generation_time_ms"`
	TopDeclineReasons       []ReasonCount `json:"top_decline_reasons"`
	ErrorCount              int           `json:"error_count"`
	ErrorRate               float64       `json:"error_rate"`
}

// DailyStat holds per-day activity.
type DailyStat struct {
	Date        string `json:"date"`
	UniqueUsers int    `json:"unique_users"`
	Uploads     int    `json:"uploads"`
	Generations int    `json:"generations"`
}

// Aggregator is the read side of the event log.
type Aggregator struct {
	source EventSource
	now    func() time.Time
}

// NewAggregator creates an Aggregator over source.
func NewAggregator(source EventSource) *Aggregator {
	return &Aggregator{source: source, now: time.Now}
}

func (a *Aggregator) eventsFor(ctx context.Context, days int) ([]Event, error) {
	if days < 1 {
		return nil, fmt.Errorf("days must be positive, got %d", days)
	}
	since := a.now().UTC().Add(-time.Duration(days) * 24 * time.Hour)
	events, err := a.source.EventsSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("failed to load events: %w", err)
	}
	return events, nil
}

// Summary aggregates the last days days of events.
func (a *Aggregator) Summary(ctx context.Context, days int) (Summary, error) {
	events, err := a.eventsFor(ctx, days)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(events, days), nil
}

// Daily returns per-day activity for the last days days, newest first.
func (a *Aggregator) Daily(ctx context.Context, days int) ([]DailyStat, error) {
	events, err := a.eventsFor(ctx, days)
	if err != nil {
		return nil, err
	}
	return DailyBreakdown(events), nil
}

// Summarize computes a Summary from events already filtered to the period.
func Summarize(events []Event, days int) Summary {
	s := Summary{PeriodDays: days, TopDeclineReasons: []ReasonCount{}}

	sessions := map[string]bool{}
	reasons := map[string]int{}
	var analysisTotal, generationTotal float64
	var analysisCount int

	for _, e := range events {
		if e.SessionID != "" {
			sessions[e.SessionID] = true
		}
		switch {
		case e.Type == EventUpload:
			s.TotalUploads++
		case e.Type == EventAnalysis:
			analysisCount++
			analysisTotal += e.ProcessingTimeMS
		case e.Type == EventGeneration:
			s.TotalGenerations++
			generationTotal += e.ProcessingTimeMS
			if e.DeclineReason != "" {
				reasons[e.DeclineReason]++
			}
		case e.Type.IsError():
			s.ErrorCount++
		}
	}

	s.UniqueSessions = len(sessions)
	if analysisCount > 0 {
		s.AverageAnalysisTimeMS = round2(analysisTotal / float64(analysisCount))
	}
	if s.TotalGenerations > 0 {
		s.AverageGenerationTimeMS = round2(generationTotal / float64(s.TotalGenerations))
	}
	s.ErrorRate = round2(float64(s.ErrorCount) / float64(s.TotalUploads+1) * 100)

	for reason, count := range reasons {
		s.TopDeclineReasons = append(s.TopDeclineReasons, ReasonCount{Reason: reason, Count: count})
	}
	sort.Slice(s.TopDeclineReasons, func(i, j int) bool {
		a, b := s.TopDeclineReasons[i], s.TopDeclineReasons[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Reason < b.Reason
	})
	if len(s.TopDeclineReasons) > topReasonsLimit {
		s.TopDeclineReasons = s.TopDeclineReasons[:topReasonsLimit]
	}
	return s
}

// DailyBreakdown groups events by UTC day, newest first.
func DailyBreakdown(events []Event) []DailyStat {
	byDay := map[string]*DailyStat{}
	users := map[string]map[string]bool{}

	for _, e := range events {
		day := e.Timestamp.UTC().Format(dayLayout)
		stat, ok := byDay[day]
		if !ok {
			stat = &DailyStat{Date: day}
			byDay[day] = stat
			users[day] = map[string]bool{}
		}
		if e.SessionID != "" {
			users[day][e.SessionID] = true
		}
		switch e.Type {
		case EventUpload:
			stat.Uploads++
		case EventGeneration:
			stat.Generations++
		}
	}

	out := make([]DailyStat, 0, len(byDay))
	for day, stat := range byDay {
		stat.UniqueUsers = len(users[day])
		out = append(out, *stat)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
