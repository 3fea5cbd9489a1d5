package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"winelist/internal/export"
	"winelist/internal/service"
)

// ImportHandler handles OCR wine-list import endpoints.
type ImportHandler struct {
	importService service.ImportService
}

// NewImportHandler creates a new ImportHandler.
func NewImportHandler(importService service.ImportService) *ImportHandler {
	return &ImportHandler{importService: importService}
}

// Import handles POST /ocr-wine-import
// @Summary Import a wine list
// @Description Runs OCR on an uploaded wine list and extracts its entries
// @Tags import
// @Accept json
// @Produce json
// @Param body body ImportRequest true "Source file location"
// @Success 200 {object} ImportResponse
// @Failure 400 {string} string "Missing or invalid parameters"
// @Failure 401 {string} string "Unauthorized"
// @Failure 402 {string} string "Subscription required"
// @Failure 403 {string} string "Not the restaurant owner"
// @Failure 404 {string} string "Restaurant not found"
// @Failure 500 {string} string "Internal error"
// @Security BearerAuth
// @Router /ocr-wine-import [post]
func (h *ImportHandler) Import(c *gin.Context) {
	userID, ok := userFromContext(c)
	if !ok {
		return
	}

	var req ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.RistoranteID) == "" || strings.TrimSpace(req.StorageBucket) == "" || strings.TrimSpace(req.StoragePath) == "" {
		RespondError(c, http.StatusBadRequest, "missing params: ristorante_id, storage_bucket and storage_path are required")
		return
	}
	restaurantID, err := uuid.Parse(strings.TrimSpace(req.RistoranteID))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid ristorante_id")
		return
	}

	result, err := h.importService.Import(c.Request.Context(), service.ImportInput{
		UserID:       userID,
		RestaurantID: restaurantID,
		Bucket:       strings.TrimSpace(req.StorageBucket),
		Path:         strings.TrimSpace(req.StoragePath),
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, result)
}

// GetJob handles GET /ocr-wine-import/jobs/:id
// @Summary Get an import job
// @Description Returns the job status and its persisted rows
// @Tags import
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} service.JobDetail
// @Failure 400 {string} string "Invalid job ID"
// @Failure 401 {string} string "Unauthorized"
// @Failure 403 {string} string "Not the restaurant owner"
// @Failure 404 {string} string "Job not found"
// @Security BearerAuth
// @Router /ocr-wine-import/jobs/{id} [get]
func (h *ImportHandler) GetJob(c *gin.Context) {
	userID, ok := userFromContext(c)
	if !ok {
		return
	}
	jobID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	detail, err := h.importService.GetJob(c.Request.Context(), userID, jobID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, detail)
}

// Export handles GET /ocr-wine-import/jobs/:id/export
// @Summary Export an import job
// @Description Renders the job's rows as a spreadsheet and returns a presigned download URL
// @Tags import
// @Produce json
// @Param id path string true "Job ID"
// @Param format query string false "xlsx or csv" default(xlsx)
// @Success 200 {object} ExportResponse
// @Failure 400 {string} string "Invalid job ID, format, or job not finished"
// @Failure 401 {string} string "Unauthorized"
// @Failure 403 {string} string "Not the restaurant owner"
// @Failure 404 {string} string "Job not found"
// @Security BearerAuth
// @Router /ocr-wine-import/jobs/{id}/export [get]
func (h *ImportHandler) Export(c *gin.Context) {
	userID, ok := userFromContext(c)
	if !ok {
		return
	}
	jobID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "unsupported export format; allowed: xlsx, csv")
		return
	}

	result, err := h.importService.ExportJob(c.Request.Context(), userID, jobID, format)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, result)
}
