package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"aquagrade/query"
)

type DashboardData struct {
	Summary  query.Summary         `json:"summary"`
	Feedback query.FeedbackSummary `json:"feedback"`
	Species  []string              `json:"species"`
	Grades   []string              `json:"grades"`
}

// Dashboard summarizes the whole history and lists the filter choices.
func (h *Handler) Dashboard(c *gin.Context) {
	entries := h.history.All()

	c.JSON(http.StatusOK, DashboardData{
		Summary:  query.Summarize(entries),
		Feedback: query.SummarizeFeedback(entries),
		Species:  query.DistinctSpecies(entries),
		Grades:   query.DistinctGrades(entries),
	})
}

type StatsData struct {
	Filtered bool                  `json:"filtered"`
	Summary  query.Summary         `json:"summary"`
	Feedback query.FeedbackSummary `json:"feedback"`
}

// Stats summarizes the entries matching the request filters.
func (h *Handler) Stats(c *gin.Context) {
	crit, err := h.criteria(c)
	if err != nil {
		h.fail(c, http.StatusBadRequest, err.Error(), errBadParam)
		return
	}
	entries := query.Filter(h.history.All(), crit)

	c.JSON(http.StatusOK, StatsData{
		Filtered: crit.Active(),
		Summary:  query.Summarize(entries),
		Feedback: query.SummarizeFeedback(entries),
	})
}
