package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"aquagrade/analyzer"
	"aquagrade/store"
)

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".gif": true, ".bmp": true,
}

// Analyze accepts a multipart "image" upload, sends it to the analysis API
// and records the result in the history.
func (h *Handler) Analyze(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.opts.MaxUploadBytes)

	file, err := c.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.fail(c, http.StatusRequestEntityTooLarge, fmt.Sprintf("image exceeds %d bytes", h.opts.MaxUploadBytes), err)
			return
		}
		h.fail(c, http.StatusBadRequest, `multipart field "image" is required`, err)
		return
	}

	f, err := file.Open()
	if err != nil {
		h.fail(c, http.StatusBadRequest, "failed to read image", err)
		return
	}
	data, err := io.ReadAll(f)
	f.Close()
	if err != nil {
		h.fail(c, http.StatusBadRequest, "failed to read image", err)
		return
	}
	if len(data) == 0 {
		h.fail(c, http.StatusBadRequest, "image is empty", analyzer.ErrEmptyImage)
		return
	}

	imageRef, path, err := h.saveImage(file.Filename, data)
	if err != nil {
		h.fail(c, http.StatusInternalServerError, "failed to store image", err)
		return
	}

	res, entry, err := h.recorder.Record(c.Request.Context(), data, imageRef)
	if err != nil && !errors.Is(err, store.ErrPersist) {
		if path != "" {
			_ = os.Remove(path)
		}
		h.analysisFailed(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"entry":     entry,
		"analysis":  res,
		"persisted": err == nil,
	})
}

func (h *Handler) analysisFailed(c *gin.Context, err error) {
	var apiErr *analyzer.APIError
	switch {
	case errors.Is(err, context.Canceled):
		h.logger.Info("analysis request canceled by client")
		c.Abort()
	case errors.Is(err, analyzer.ErrEmptyImage):
		h.fail(c, http.StatusBadRequest, "image is empty", err)
	case errors.As(err, &apiErr):
		h.fail(c, http.StatusBadGateway, apiErr.Error(), err)
	case errors.Is(err, analyzer.ErrInvalidResult):
		h.fail(c, http.StatusBadGateway, "analysis API returned an unusable result", err)
	case errors.Is(err, store.ErrInvalidEntry), errors.Is(err, store.ErrDuplicateID):
		h.fail(c, http.StatusInternalServerError, "failed to record analysis", err)
	default:
		h.fail(c, http.StatusBadGateway, "analysis API unavailable", err)
	}
}

// saveImage writes the upload under UploadDir with a fresh name. It returns
// the URL path the image is served from and its location on disk.
func (h *Handler) saveImage(original string, data []byte) (ref, path string, err error) {
	if h.opts.UploadDir == "" {
		return "", "", nil
	}

	ext := strings.ToLower(filepath.Ext(original))
	if !imageExtensions[ext] {
		ext = ".jpg"
	}
	name := uuid.NewString() + ext

	if err := os.MkdirAll(h.opts.UploadDir, 0o755); err != nil {
		return "", "", err
	}
	path = filepath.Join(h.opts.UploadDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", "", err
	}
	h.logger.Debug("image stored", zap.String("path", path), zap.Int("bytes", len(data)))
	return "/images/" + name, path, nil
}
