package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"aquagrade/query"
	"aquagrade/store"
)

// ListHistory returns the filtered history, newest first.
func (h *Handler) ListHistory(c *gin.Context) {
	all := h.history.All()
	crit, err := h.criteria(c)
	if err != nil {
		h.fail(c, http.StatusBadRequest, err.Error(), errBadParam)
		return
	}
	entries := query.Filter(all, crit)

	c.JSON(http.StatusOK, gin.H{
		"entries": entries,
		"count":   len(entries),
		"total":   len(all),
	})
}

func (h *Handler) GetEntry(c *gin.Context) {
	entry, ok := h.history.Get(c.Param("id"))
	if !ok {
		h.fail(c, http.StatusNotFound, "history entry not found", nil)
		return
	}
	c.JSON(http.StatusOK, entry)
}

type feedbackRequest struct {
	Correct *bool `json:"correct" binding:"required"`
}

// SubmitFeedback records whether a prediction was correct.
func (h *Handler) SubmitFeedback(c *gin.Context) {
	id := c.Param("id")

	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, http.StatusBadRequest, `body must be {"correct": true|false}`, err)
		return
	}
	if _, ok := h.history.Get(id); !ok {
		h.fail(c, http.StatusNotFound, "history entry not found", nil)
		return
	}

	err := h.history.UpdateFeedback(c.Request.Context(), id, *req.Correct)
	switch {
	case errors.Is(err, store.ErrFeedbackLocked):
		h.fail(c, http.StatusConflict, "feedback already recorded for this entry", err)
		return
	case err != nil && !errors.Is(err, store.ErrPersist):
		h.fail(c, http.StatusInternalServerError, "failed to record feedback", err)
		return
	}
	if err != nil {
		h.logger.Warn("feedback recorded in memory only", zap.String("id", id), zap.Error(err))
	}

	entry, _ := h.history.Get(id)
	c.JSON(http.StatusOK, gin.H{"entry": entry, "persisted": err == nil})
}
