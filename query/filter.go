// Package query derives read-only views from the analysis history:
// filtered lists for the history page and summaries for the dashboard.
package query

import (
	"strings"
	"time"

	"aquagrade/models"
)

// Criteria narrows a history list. Every field is optional; a nil pointer or
// empty search text leaves that dimension unfiltered. Active fields combine
// with AND.
type Criteria struct {
	SearchText string
	Species    *string
	Grade      *string
	Feedback   *models.FeedbackStatus
	DateFrom   *time.Time
	DateTo     *time.Time
}

// Active reports whether any criterion is set.
func (c Criteria) Active() bool {
	return strings.TrimSpace(c.SearchText) != "" ||
		c.Species != nil || c.Grade != nil || c.Feedback != nil ||
		c.DateFrom != nil || c.DateTo != nil
}

// Filter returns the entries matching c in their original order.
// The input slice is never modified.
func Filter(entries []models.HistoryEntry, c Criteria) []models.HistoryEntry {
	search := strings.ToLower(strings.TrimSpace(c.SearchText))

	var until time.Time
	if c.DateTo != nil {
		until = EndOfDay(*c.DateTo)
	}

	out := make([]models.HistoryEntry, 0, len(entries))
	for _, e := range entries {
		if search != "" && !strings.Contains(strings.ToLower(e.Species), search) {
			continue
		}
		if c.Species != nil && e.Species != *c.Species {
			continue
		}
		if c.Grade != nil && e.QualityGrade != *c.Grade {
			continue
		}
		if c.Feedback != nil && e.FeedbackStatus != *c.Feedback {
			continue
		}
		if c.DateFrom != nil && e.Timestamp.Before(*c.DateFrom) {
			continue
		}
		if c.DateTo != nil && e.Timestamp.After(until) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// EndOfDay is the last instant of t's calendar day in t's location.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

// DistinctSpecies lists species names in first-seen order.
func DistinctSpecies(entries []models.HistoryEntry) []string {
	return distinct(entries, func(e models.HistoryEntry) string { return e.Species })
}

// DistinctGrades lists quality grades in first-seen order.
func DistinctGrades(entries []models.HistoryEntry) []string {
	return distinct(entries, func(e models.HistoryEntry) string { return e.QualityGrade })
}

func distinct(entries []models.HistoryEntry, key func(models.HistoryEntry) string) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, e := range entries {
		k := key(e)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}
