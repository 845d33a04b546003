package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/stocksense/backend-go/internal/domain"
	"github.com/andresuchdata/stocksense/backend-go/internal/ingest"
	"github.com/andresuchdata/stocksense/backend-go/internal/pipeline/stock_health"
	"github.com/andresuchdata/stocksense/backend-go/internal/service"
	"github.com/andresuchdata/stocksense/backend-go/internal/storage"
)

// Error codes returned in the "code" field of error responses.
const (
	CodeColumnMapping     = "COLUMN_MAPPING"
	CodeInvertedInput     = "INVERTED_INPUT"
	CodeUnrecognizedInput = "UNRECOGNIZED_INPUT"
	CodeUnsupportedFormat = "UNSUPPORTED_FORMAT"
	CodeInvalidFile       = "INVALID_FILE"
	CodeMissingFiles      = "MISSING_FILES"
	CodePayloadTooLarge   = "PAYLOAD_TOO_LARGE"
	CodeBadRequest        = "BAD_REQUEST"
	CodeNotFound          = "NOT_FOUND"
	CodeInternal          = "INTERNAL"
)

// multipartMemory is how much of a multipart body is kept in memory before
// spilling file parts to disk.
const multipartMemory = 32 << 20

var (
	salesFields = []string{"vendas", "sales"}
	stockFields = []string{"estoque", "stock"}
)

// StockHealthService is what the handler needs from the service layer.
type StockHealthService interface {
	Process(ctx context.Context, sales, stock service.UploadedFile) (*domain.DashboardSnapshot, error)
	Demo(ctx context.Context) (*domain.DashboardSnapshot, error)
	GetDashboard(ctx context.Context, id string) (*domain.DashboardSnapshot, error)
	ListRuns(ctx context.Context, limit int) ([]domain.AnalysisRun, error)
	StockItems(ctx context.Context, status domain.StockStatus) ([]domain.ClassifiedStockItem, error)
}

type StockHealthHandler struct {
	service StockHealthService
}

func NewStockHealthHandler(service StockHealthService) *StockHealthHandler {
	return &StockHealthHandler{service: service}
}

// Process analyzes an uploaded sales/stock pair.
func (h *StockHealthHandler) Process(c *gin.Context) {
	if err := c.Request.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{
				"error": fmt.Sprintf("upload exceeds the %d byte limit", tooLarge.Limit),
				"code":  CodePayloadTooLarge,
			})
			return
		}
	}

	sales, salesErr := readUpload(c, salesFields)
	stock, stockErr := readUpload(c, stockFields)
	if salesErr != nil || stockErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "both files are required: send the sales file as 'vendas' and the stock file as 'estoque'",
			"code":  CodeMissingFiles,
		})
		return
	}

	snapshot, err := h.service.Process(c.Request.Context(), sales, stock)
	if err != nil {
		respondError(c, err, "failed to process files")
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// Mock analyzes the stored demo fixtures.
func (h *StockHealthHandler) Mock(c *gin.Context) {
	snapshot, err := h.service.Demo(c.Request.Context())
	if err != nil {
		respondError(c, err, "failed to build demo dashboard")
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

func (h *StockHealthHandler) GetDashboard(c *gin.Context) {
	snapshot, err := h.service.GetDashboard(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "failed to fetch dashboard")
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

func (h *StockHealthHandler) ListRuns(c *gin.Context) {
	limit := 20
	if v, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil && v > 0 {
		limit = v
	}
	if limit > 100 {
		limit = 100
	}

	runs, err := h.service.ListRuns(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err, "failed to fetch runs")
		return
	}

	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

func (h *StockHealthHandler) StockItems(c *gin.Context) {
	var status domain.StockStatus
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		parsed, ok := domain.ParseStockStatus(raw)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": fmt.Sprintf("unknown status %q", raw),
				"code":  CodeBadRequest,
			})
			return
		}
		status = parsed
	}

	items, err := h.service.StockItems(c.Request.Context(), status)
	if err != nil {
		respondError(c, err, "failed to fetch stock items")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"total": len(items),
	})
}

// readUpload reads the first present multipart field among names.
func readUpload(c *gin.Context, names []string) (service.UploadedFile, error) {
	var header *multipart.FileHeader
	for _, name := range names {
		if fh, err := c.FormFile(name); err == nil {
			header = fh
			break
		}
	}
	if header == nil {
		return service.UploadedFile{}, fmt.Errorf("missing file field %s", strings.Join(names, "/"))
	}

	f, err := header.Open()
	if err != nil {
		return service.UploadedFile{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return service.UploadedFile{}, err
	}
	return service.UploadedFile{Name: header.Filename, Data: data}, nil
}

// respondError maps domain errors to status codes and stable error codes.
func respondError(c *gin.Context, err error, fallback string) {
	_ = c.Error(err)

	var (
		schemaErr    *stock_health.SchemaResolutionError
		invertedErr  *stock_health.InvertedInputError
		unrecognized *stock_health.UnrecognizedInputError
		inputFileErr *service.InputFileError
		status       = http.StatusBadRequest
		code         string
		message      = err.Error()
	)

	switch {
	case errors.As(err, &schemaErr):
		code = CodeColumnMapping
	case errors.As(err, &invertedErr):
		code = CodeInvertedInput
	case errors.As(err, &unrecognized):
		code = CodeUnrecognizedInput
	case errors.As(err, &inputFileErr) && errors.Is(err, ingest.ErrUnsupportedFormat):
		code = CodeUnsupportedFormat
	case errors.As(err, &inputFileErr):
		code = CodeInvalidFile
	case errors.Is(err, service.ErrDashboardNotFound), errors.Is(err, storage.ErrNotFound):
		status, code = http.StatusNotFound, CodeNotFound
	default:
		log.Error().Err(err).Msg(fallback)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   fallback,
			"code":    CodeInternal,
			"details": err.Error(),
		})
		return
	}

	c.JSON(status, gin.H{"error": message, "code": code})
}
