package handlers

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/openlearnhq/enterprise-catalog/app/dto"
	"github.com/openlearnhq/enterprise-catalog/app/services"
	businessflow "github.com/openlearnhq/enterprise-catalog/business_flow"
)

// ExportHandlerInterface defines the contract for search export handlers
type ExportHandlerInterface interface {
	ExportSearchResults(c fiber.Ctx) error
}

// ExportHandler handles search-result export HTTP requests
type ExportHandler struct {
	exportFlow businessflow.ExportFlow
}

// NewExportHandler creates a new export handler
func NewExportHandler(exportFlow businessflow.ExportFlow) *ExportHandler {
	return &ExportHandler{exportFlow: exportFlow}
}

func (h *ExportHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

// ExportSearchResults streams the requested search results as a CSV or
// Excel download. Every query parameter other than the format and the
// free-text query is treated as a facet filter.
func (h *ExportHandler) ExportSearchResults(c fiber.Ctx) error {
	facets := url.Values{}
	c.RequestCtx().QueryArgs().VisitAll(func(key, value []byte) {
		facets.Add(string(key), string(value))
	})

	format := "csv"
	if v := facets.Get("format"); v != "" {
		format = v
	}
	facets.Del("format")

	query := services.FacetsToQuery(facets)

	if invalidFacets := services.ValidateQueryFacets(facets); len(invalidFacets) > 0 {
		return h.ErrorResponse(c, fiber.StatusBadRequest,
			fmt.Sprintf("Invalid facet(s): %v", invalidFacets), "INVALID_FACETS", invalidFacets)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()
	ctx = context.WithValue(ctx, businessflow.RequestIDKey, c.Get("X-Request-ID"))

	var filename string
	var data []byte
	var contentType string
	var err error

	switch format {
	case "csv":
		filename, data, err = h.exportFlow.DownloadSearchResultsCSV(ctx, query, facets)
		contentType = "text/csv"
	case "xlsx":
		filename, data, err = h.exportFlow.DownloadSearchResultsExcel(ctx, query, facets)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Unsupported export format", "UNSUPPORTED_EXPORT_FORMAT", format)
	}
	if err != nil {
		log.Println("Search export failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Search export failed", "EXPORT_FAILED", nil)
	}

	c.Set("Content-Type", contentType)
	c.Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(data)
}
