package handlers

import (
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	apperrors "khata/internal/errors"
	"khata/internal/logger"
	"khata/internal/trace"
)

// TraceHandler serves accumulated decision trace files.
type TraceHandler struct {
	traceDir string
}

// NewTraceHandler creates a new TraceHandler.
func NewTraceHandler(traceDir string) *TraceHandler {
	return &TraceHandler{traceDir: traceDir}
}

// ExportTraces streams every trace file as one NDJSON body, oldest first.
// Files that disappear mid-export are skipped rather than aborting the stream.
func (h *TraceHandler) ExportTraces(c *gin.Context) {
	files, err := trace.ListFiles(h.traceDir)
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}
	if len(files) == 0 {
		respondWithError(c, apperrors.ErrTraceExportEmpty)
		return
	}

	c.Header("Content-Type", "application/x-ndjson")
	c.Status(http.StatusOK)
	for _, path := range files {
		f, err := os.Open(path)
		if err != nil {
			logger.Get().Warnw("skipping unreadable trace file", "error", err, "file", path)
			continue
		}
		if _, err := io.Copy(c.Writer, f); err != nil {
			f.Close()
			logger.Get().Errorw("trace export interrupted", "error", err, "file", path)
			return
		}
		f.Close()
	}
}

// ListTraceFiles returns the names of available trace files.
func (h *TraceHandler) ListTraceFiles(c *gin.Context) {
	files, err := trace.ListFiles(h.traceDir)
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}
	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, filepath.Base(f))
	}
	c.JSON(http.StatusOK, gin.H{"files": names})
}
