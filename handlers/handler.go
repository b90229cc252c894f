package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"aquagrade/analyzer"
	"aquagrade/models"
	"aquagrade/query"
	"aquagrade/store"
)

const dateParamLayout = "2006-01-02"

// Options tunes the HTTP layer.
type Options struct {
	// UploadDir receives analyzed images, served under /images. Empty
	// disables image storage.
	UploadDir      string
	MaxUploadBytes int64
	// Location interprets date_from and date_to. Defaults to time.Local.
	Location *time.Location
}

// Handler serves the aquagrade HTTP API.
type Handler struct {
	history  store.Store
	api      analyzer.API
	recorder *analyzer.Recorder
	opts     Options
	logger   *zap.Logger
	now      func() time.Time
}

func New(history store.Store, api analyzer.API, recorder *analyzer.Recorder, opts Options, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 10 << 20
	}
	return &Handler{
		history:  history,
		api:      api,
		recorder: recorder,
		opts:     opts,
		logger:   logger,
		now:      time.Now,
	}
}

// Register mounts every route on r.
func (h *Handler) Register(r *gin.Engine) {
	r.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/api/dashboard")
	})

	if h.opts.UploadDir != "" {
		r.Static("/images", h.opts.UploadDir)
	}

	api := r.Group("/api")
	{
		api.GET("/dashboard", h.Dashboard)
		api.GET("/stats", h.Stats)

		api.GET("/history", h.ListHistory)
		api.GET("/history/:id", h.GetEntry)
		api.POST("/history/:id/feedback", h.SubmitFeedback)
		api.GET("/history/:id/report.pdf", h.EntryReport)

		api.POST("/analyze", h.Analyze)

		api.GET("/export/csv", h.ExportCSV)
		api.GET("/export/pdf", h.ExportPDF)

		api.GET("/species", h.Species)
		api.GET("/market-data", h.MarketData)
		api.GET("/health", h.Health)
	}
}

func (h *Handler) fail(c *gin.Context, status int, msg string, err error) {
	if err != nil {
		_ = c.Error(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error(msg, zap.String("path", c.Request.URL.Path), zap.Error(err))
		}
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

var errBadParam = errors.New("invalid query parameter")

// criteria reads the history filters from the query string. Empty
// parameters are treated as absent.
func (h *Handler) criteria(c *gin.Context) (query.Criteria, error) {
	crit := query.Criteria{
		SearchText: c.Query("q"),
		Species:    optional(c, "species"),
		Grade:      optional(c, "grade"),
	}

	if v := optional(c, "feedback"); v != nil {
		fs, ok := models.ParseFeedbackStatus(*v)
		if !ok {
			return crit, errors.New("feedback must be unreviewed, correct or incorrect")
		}
		crit.Feedback = &fs
	}

	var err error
	if crit.DateFrom, err = h.date(c, "date_from"); err != nil {
		return crit, err
	}
	if crit.DateTo, err = h.date(c, "date_to"); err != nil {
		return crit, err
	}
	return crit, nil
}

func (h *Handler) date(c *gin.Context, key string) (*time.Time, error) {
	v := optional(c, key)
	if v == nil {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateParamLayout, *v, h.opts.Location)
	if err != nil {
		return nil, errors.New(key + " must be YYYY-MM-DD")
	}
	return &t, nil
}

func optional(c *gin.Context, key string) *string {
	v := strings.TrimSpace(c.Query(key))
	if v == "" {
		return nil
	}
	return &v
}

// filtered applies the request's criteria to the current history.
func (h *Handler) filtered(c *gin.Context) ([]models.HistoryEntry, bool) {
	crit, err := h.criteria(c)
	if err != nil {
		h.fail(c, http.StatusBadRequest, err.Error(), errBadParam)
		return nil, false
	}
	return query.Filter(h.history.All(), crit), true
}
