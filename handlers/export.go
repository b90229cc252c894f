package handlers

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"

	"aquagrade/export"
)

// ExportCSV downloads the filtered history as CSV.
func (h *Handler) ExportCSV(c *gin.Context) {
	entries, ok := h.filtered(c)
	if !ok {
		return
	}
	if err := export.Validate(entries); err != nil {
		h.fail(c, http.StatusBadRequest, err.Error(), err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, entries); err != nil {
		h.fail(c, http.StatusInternalServerError, "failed to build CSV", err)
		return
	}
	h.attachment(c, export.CSVFilename(h.now()), "text/csv; charset=utf-8", buf.Bytes())
}

// ExportPDF downloads the filtered history as a PDF table.
func (h *Handler) ExportPDF(c *gin.Context) {
	entries, ok := h.filtered(c)
	if !ok {
		return
	}
	if err := export.Validate(entries); err != nil {
		h.fail(c, http.StatusBadRequest, err.Error(), err)
		return
	}

	now := h.now()
	var buf bytes.Buffer
	if err := export.WriteHistoryPDF(&buf, entries, now); err != nil {
		h.fail(c, http.StatusInternalServerError, "failed to build PDF", err)
		return
	}
	h.attachment(c, export.HistoryPDFFilename(now), "application/pdf", buf.Bytes())
}

// EntryReport downloads the single-prediction report for one entry.
func (h *Handler) EntryReport(c *gin.Context) {
	entry, ok := h.history.Get(c.Param("id"))
	if !ok {
		h.fail(c, http.StatusNotFound, "history entry not found", nil)
		return
	}

	now := h.now()
	var buf bytes.Buffer
	if err := export.WriteReportPDF(&buf, entry, now); err != nil {
		h.fail(c, http.StatusInternalServerError, "failed to build PDF", err)
		return
	}
	h.attachment(c, export.ReportPDFFilename(entry.Species, now), "application/pdf", buf.Bytes())
}

func (h *Handler) attachment(c *gin.Context, filename, contentType string, body []byte) {
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, body)
}
