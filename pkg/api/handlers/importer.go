package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	apierrors "github.com/callforge/callforge/pkg/api/errors"
	"github.com/callforge/callforge/pkg/importer"
	"github.com/callforge/callforge/pkg/leads"
	"github.com/callforge/callforge/pkg/metrics"
	"github.com/callforge/callforge/pkg/storage"
)

// ImportHandler handles lead file imports and the template download
type ImportHandler struct {
	importService *importer.Service
	leadService   *leads.Service
	archiver      storage.Archiver
	metrics       *metrics.Metrics
}

// NewImportHandler creates a new import handler
func NewImportHandler(importService *importer.Service, leadService *leads.Service, archiver storage.Archiver, m *metrics.Metrics) *ImportHandler {
	if archiver == nil {
		archiver = storage.NewNoopArchiver()
	}
	return &ImportHandler{
		importService: importService,
		leadService:   leadService,
		archiver:      archiver,
		metrics:       m,
	}
}

// ImportResponse reports the outcome of one file import
type ImportResponse struct {
	Imported  int    `json:"imported"`
	TotalRows int    `json:"total_rows"`
	Skipped   int    `json:"skipped"`
	Format    string `json:"format"`
}

// Upload parses an uploaded CSV/XLSX file and persists the resulting
// leads under the importing operator
func (h *ImportHandler) Upload(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok {
		return apierrors.UnauthorizedError(c, "missing user")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return apierrors.BadRequestError(c, "A file upload is required under the 'file' field")
	}
	if fileHeader.Size > importer.MaxFileSize {
		return apierrors.BadRequestError(c, importer.ErrFileTooLarge.Error())
	}

	src, err := fileHeader.Open()
	if err != nil {
		return apierrors.InternalError(c, err)
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, importer.MaxFileSize+1))
	if err != nil {
		return apierrors.InternalError(c, err)
	}

	result, err := h.importService.ParseFile(fileHeader.Filename, data, userID)
	switch {
	case errors.Is(err, importer.ErrInvalidFileType),
		errors.Is(err, importer.ErrFileTooLarge),
		errors.Is(err, importer.ErrEmptyFile),
		errors.Is(err, importer.ErrMalformedFile):
		return apierrors.BadRequestError(c, err.Error())
	case err != nil:
		return apierrors.InternalError(c, err)
	}

	imported, err := h.leadService.CreateBatch(c.Request().Context(), result.Leads)
	if err != nil {
		return apierrors.DatabaseError(c, err)
	}
	h.leadService.InvalidateList(c.Request().Context(), userID)

	if h.metrics != nil {
		h.metrics.RecordLeadsImported(result.Format, imported)
	}

	// Archive the raw upload for audit; failures only cost the audit copy
	go func(filename string, body []byte) {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := h.archiver.ArchiveImportFile(ctx, userID, filename, body); err != nil {
			log.Printf("⚠️  Import archive failed: %v", err)
		}
	}(fileHeader.Filename, data)

	return c.JSON(http.StatusOK, ImportResponse{
		Imported:  imported,
		TotalRows: result.TotalRows,
		Skipped:   result.Skipped,
		Format:    result.Format,
	})
}

// DownloadTemplate serves the CSV import template with two example rows
func (h *ImportHandler) DownloadTemplate(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%q", "leads_template.csv"))
	return c.Blob(http.StatusOK, "text/csv", []byte(importer.TemplateCSV))
}
