package handler

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	importapp "github.com/sicua/backend/internal/application/import"
	"github.com/sicua/backend/internal/domain/bulk"
	fileimport "github.com/sicua/backend/internal/infrastructure/import"
	"github.com/sicua/backend/internal/infrastructure/logger"
	"github.com/sicua/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

const (
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ImportLimits bounds what the import endpoints accept
type ImportLimits struct {
	MaxFileSize int64
	MaxRows     int
}

// ImportHandler handles bulk import and catalog export endpoints
type ImportHandler struct {
	BaseHandler
	runs    *importapp.ImportRunService
	exports *importapp.ExportService
	limits  ImportLimits
}

// NewImportHandler creates a new ImportHandler
func NewImportHandler(runs *importapp.ImportRunService, exports *importapp.ExportService, limits ImportLimits) *ImportHandler {
	return &ImportHandler{
		runs:    runs,
		exports: exports,
		limits:  limits,
	}
}

// ImportRowsRequest carries rows submitted directly as JSON
type ImportRowsRequest struct {
	Rows []bulk.RawRow `json:"rows" binding:"required"`
}

// ImportFile handles POST /imports/products with a multipart "file" field.
// The format follows the file extension. Files of a known format that
// cannot be read at all are rejected as a whole and leave a failed run in
// the history.
func (h *ImportHandler) ImportFile(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		h.BadRequest(c, "A file must be uploaded in the \"file\" field")
		return
	}

	source, err := fileimport.SourceForFile(header.Filename)
	if err != nil {
		h.ErrorWithCode(c, dto.ErrCodeUnsupportedFile, err.Error())
		return
	}
	if h.limits.MaxFileSize > 0 && header.Size > h.limits.MaxFileSize {
		h.rejectFile(c, source, header.Filename, header.Size,
			fmt.Errorf("%w (%d bytes)", fileimport.ErrFileTooLarge, h.limits.MaxFileSize))
		return
	}

	file, err := header.Open()
	if err != nil {
		h.InternalError(c, "Failed to open uploaded file")
		return
	}
	defer file.Close()

	rows, err := fileimport.ReadLimited(source, file, h.limits.MaxFileSize, fileimport.Options{MaxRows: h.limits.MaxRows})
	if err != nil {
		h.rejectFile(c, source, header.Filename, header.Size, err)
		return
	}

	resp, err := h.runs.Run(c.Request.Context(), importapp.RunRequest{
		Source:   source,
		FileName: header.Filename,
		FileSize: header.Size,
		Rows:     rows,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// ImportRows handles POST /imports/products/rows
func (h *ImportHandler) ImportRows(c *gin.Context) {
	var req ImportRowsRequest
	if !h.BindJSON(c, &req) {
		return
	}
	if h.limits.MaxRows > 0 && len(req.Rows) > h.limits.MaxRows {
		h.BadRequest(c, fmt.Sprintf("At most %d rows can be imported at once", h.limits.MaxRows))
		return
	}

	resp, err := h.runs.Run(c.Request.Context(), importapp.RunRequest{
		Source: bulk.ImportSourceAPI,
		Rows:   req.Rows,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// ListRuns handles GET /imports
func (h *ImportHandler) ListRuns(c *gin.Context) {
	var query struct {
		Page     int `form:"page" binding:"omitempty,min=1"`
		PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
	}
	if !h.BindQuery(c, &query) {
		return
	}

	runs, total, err := h.runs.ListRuns(c.Request.Context(), query.Page, query.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	page, pageSize := pageParams(query.Page, query.PageSize)
	h.SuccessWithMeta(c, runs, total, page, pageSize)
}

// GetRun handles GET /imports/:id
func (h *ImportHandler) GetRun(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid import run ID format")
		return
	}

	run, err := h.runs.GetRun(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, run)
}

// ExportProducts handles GET /exports/products?format=csv|xlsx
func (h *ImportHandler) ExportProducts(c *gin.Context) {
	format := c.DefaultQuery("format", "csv")
	var (
		write       func(w io.Writer, records []fileimport.ProductRecord) error
		contentType string
	)
	switch format {
	case "csv":
		write = fileimport.WriteCSV
		contentType = contentTypeCSV
	case "xlsx":
		write = fileimport.WriteXLSX
		contentType = contentTypeXLSX
	default:
		h.BadRequest(c, "format must be csv or xlsx")
		return
	}

	records, err := h.exports.ExportProducts(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := write(&buf, records); err != nil {
		_ = c.Error(err)
		h.InternalError(c, "Failed to write export")
		return
	}

	fileName := fmt.Sprintf("products-%s.%s", time.Now().Format("20060102"), format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

// rejectFile records a failed run for input that produced no rows and
// answers with the matching error code.
func (h *ImportHandler) rejectFile(c *gin.Context, source bulk.ImportSource, fileName string, size int64, cause error) {
	h.runs.RecordUnreadable(c.Request.Context(), source, fileName, size, cause)
	logger.GetGinLogger(c).Info("Rejected import file",
		zap.String("file_name", fileName),
		zap.Int64("file_size", size),
		zap.Error(cause))

	switch {
	case errors.Is(cause, fileimport.ErrUnsupportedFormat):
		h.ErrorWithCode(c, dto.ErrCodeUnsupportedFile, cause.Error())
	case errors.Is(cause, fileimport.ErrFileTooLarge):
		h.ErrorWithCode(c, dto.ErrCodeRequestTooLarge, cause.Error())
	case fileimport.IsUnreadable(cause):
		h.ErrorWithCode(c, dto.ErrCodeUnreadableFile, cause.Error())
	default:
		_ = c.Error(cause)
		h.InternalError(c, "Failed to read uploaded file")
	}
}
