package api

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"

	"leaddistributor/internal/ingest"
)

// SubmitUpload accepts one tabular file plus the submitting
// administrator's identity and runs the ingestion pipeline
// synchronously. The whole file is parsed, validated, distributed, and
// materialized before the response is written.
// (POST /api/v1/uploads)
func (h *Handler) SubmitUpload(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return respondError(c, http.StatusBadRequest, "no file provided", nil)
	}
	if fileHeader.Size > h.maxBytes {
		return respondError(c, http.StatusBadRequest,
			fmt.Sprintf("file exceeds maximum size of %d bytes", h.maxBytes), nil)
	}

	mediaType := fileHeader.Header.Get("Content-Type")
	if i := strings.Index(mediaType, ";"); i >= 0 {
		mediaType = strings.TrimSpace(mediaType[:i])
	}
	if !ingest.SupportedMediaType(mediaType, fileHeader.Filename) {
		return respondError(c, http.StatusBadRequest,
			"unsupported media type: expected CSV or Excel", nil)
	}

	uploadedBy := c.FormValue("uploadedBy")
	if uploadedBy == "" {
		uploadedBy = "admin"
	}

	stagingPath, err := h.stage(fileHeader)
	if err != nil {
		h.logger.Error("failed to stage upload", "file", fileHeader.Filename, "error", err)
		return respondError(c, http.StatusInternalServerError, "failed to stage uploaded file", nil)
	}

	summary, err := h.pipeline.Run(c.Request().Context(), ingest.Upload{
		StagingPath: stagingPath,
		FileName:    fileHeader.Filename,
		MediaType:   mediaType,
		UploadedBy:  uploadedBy,
	})
	if err != nil {
		return h.uploadError(c, err)
	}

	message := fmt.Sprintf("created %d tasks across %d agents", summary.TotalTasks, summary.AgentsCount)
	return respond(c, http.StatusOK, message, summary)
}

// stage copies the multipart payload to a temp file for the pipeline,
// which owns its removal from here on.
func (h *Handler) stage(fileHeader *multipart.FileHeader) (string, error) {
	src, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("open multipart file: %w", err)
	}
	defer src.Close()

	tmp, err := os.CreateTemp("", "upload-*"+filepath.Ext(fileHeader.Filename))
	if err != nil {
		return "", fmt.Errorf("create staging file: %w", err)
	}
	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("write staging file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("close staging file: %w", err)
	}
	return tmp.Name(), nil
}

// uploadError maps pipeline failures onto the response contract:
// parse, validation, and empty-roster conditions are expected 400s
// with a readable error list; persistence and unknown failures are 500s.
func (h *Handler) uploadError(c echo.Context, err error) error {
	var vErr *ingest.ValidationError
	if errors.As(err, &vErr) {
		return respondError(c, http.StatusBadRequest, "file validation failed", vErr.Errors)
	}
	var pErr *ingest.ParseError
	if errors.As(err, &pErr) {
		return respondError(c, http.StatusBadRequest, "unable to parse uploaded file", []string{pErr.Error()})
	}
	if errors.Is(err, ingest.ErrNoActiveAgents) {
		return respondError(c, http.StatusBadRequest, "no active agents available", []string{err.Error()})
	}
	var perErr *ingest.PersistError
	if errors.As(err, &perErr) {
		h.logger.Error("upload partially materialized", "created", perErr.Created, "error", err)
		return respondError(c, http.StatusInternalServerError,
			fmt.Sprintf("task creation failed partway; %d task(s) were created and remain", perErr.Created),
			[]string{perErr.Error()})
	}
	h.logger.Error("upload failed unexpectedly", "error", err)
	return respondError(c, http.StatusInternalServerError, "unexpected error processing upload", []string{err.Error()})
}

// UploadHistory returns per-upload cohort statistics reconstructed
// from task provenance tags.
// (GET /api/v1/uploads/history)
func (h *Handler) UploadHistory(c echo.Context) error {
	reports, err := h.reports.UploadHistory(c.Request().Context())
	if err != nil {
		h.logger.Error("failed to build upload history", "error", err)
		return respondError(c, http.StatusInternalServerError, "failed to build upload history", nil)
	}
	return respond(c, http.StatusOK, "upload history retrieved", reports)
}

// UploadTasks returns the ordered task list for one uploaded file name.
// (GET /api/v1/uploads/:fileName/tasks)
func (h *Handler) UploadTasks(c echo.Context) error {
	fileName := filepath.Base(c.Param("fileName"))
	tasks, err := h.reports.UploadDetail(c.Request().Context(), fileName)
	if err != nil {
		h.logger.Error("failed to list upload tasks", "file", fileName, "error", err)
		return respondError(c, http.StatusInternalServerError, "failed to list upload tasks", nil)
	}
	return respond(c, http.StatusOK, "tasks retrieved", tasks)
}
