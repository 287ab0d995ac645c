package handlers

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/openlearnhq/enterprise-catalog/app/dto"
	businessflow "github.com/openlearnhq/enterprise-catalog/business_flow"
)

// CatalogHandlerInterface defines the contract for enterprise catalog handlers
type CatalogHandlerInterface interface {
	CreateCatalog(c fiber.Ctx) error
	UpdateCatalog(c fiber.Ctx) error
	GetCatalog(c fiber.Ctx) error
	GetCatalogContent(c fiber.Ctx) error
}

// CatalogHandler handles enterprise catalog HTTP requests
type CatalogHandler struct {
	catalogFlow businessflow.CatalogFlow
	validator   *validator.Validate
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalogFlow businessflow.CatalogFlow) *CatalogHandler {
	return &CatalogHandler{
		catalogFlow: catalogFlow,
		validator:   validator.New(),
	}
}

func (h *CatalogHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *CatalogHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func (h *CatalogHandler) createRequestContext(c fiber.Ctx) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	ctx = context.WithValue(ctx, businessflow.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, businessflow.CancelFuncKey, cancel)
	return ctx
}

// CreateCatalog handles the enterprise catalog creation process
func (h *CatalogHandler) CreateCatalog(c fiber.Ctx) error {
	var req dto.CreateEnterpriseCatalogRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	result, err := h.catalogFlow.CreateCatalog(h.createRequestContext(c), &req)
	if err != nil {
		return h.catalogErrorResponse(c, err, "Catalog creation failed", "CATALOG_CREATION_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Catalog created successfully", result)
}

// UpdateCatalog handles enterprise catalog updates
func (h *CatalogHandler) UpdateCatalog(c fiber.Ctx) error {
	var req dto.UpdateEnterpriseCatalogRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	req.UUID = c.Params("uuid")

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	result, err := h.catalogFlow.UpdateCatalog(h.createRequestContext(c), &req)
	if err != nil {
		return h.catalogErrorResponse(c, err, "Catalog update failed", "CATALOG_UPDATE_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Catalog updated successfully", result)
}

// GetCatalog returns the detail representation of one catalog
func (h *CatalogHandler) GetCatalog(c fiber.Ctx) error {
	result, err := h.catalogFlow.GetCatalog(h.createRequestContext(c), c.Params("uuid"))
	if err != nil {
		return h.catalogErrorResponse(c, err, "Catalog lookup failed", "CATALOG_LOOKUP_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Catalog retrieved successfully", result)
}

// GetCatalogContent returns the paginated, enriched content of one catalog
func (h *CatalogHandler) GetCatalogContent(c fiber.Ctx) error {
	req := dto.GetCatalogContentRequest{UUID: c.Params("uuid")}
	if v := c.Query("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid page parameter", "INVALID_REQUEST", nil)
		}
		req.Page = page
	}
	if v := c.Query("page_size"); v != "" {
		pageSize, err := strconv.Atoi(v)
		if err != nil {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid page_size parameter", "INVALID_REQUEST", nil)
		}
		req.PageSize = pageSize
	}

	result, err := h.catalogFlow.GetCatalogContent(h.createRequestContext(c), &req)
	if err != nil {
		return h.catalogErrorResponse(c, err, "Catalog content lookup failed", "CATALOG_CONTENT_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Catalog content retrieved successfully", result)
}

func (h *CatalogHandler) catalogErrorResponse(c fiber.Ctx, err error, genericMessage, genericCode string) error {
	if businessflow.IsCatalogNotFound(err) {
		return h.ErrorResponse(c, fiber.StatusNotFound, "Enterprise catalog not found", "CATALOG_NOT_FOUND", nil)
	}
	if businessflow.IsContentFilterRequired(err) {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "A content filter is required", "CONTENT_FILTER_REQUIRED", nil)
	}
	if businessflow.IsCatalogQueryNotUnique(err) {
		var details any
		if businessErr, ok := err.(*businessflow.BusinessError); ok {
			details = businessErr.Message
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Catalog query is not unique", "CATALOG_QUERY_NOT_UNIQUE", details)
	}
	if businessErr, ok := err.(*businessflow.BusinessError); ok {
		switch businessErr.Code {
		case "CATALOG_UUID_INVALID", "CATALOG_QUERY_UUID_INVALID", "ENTERPRISE_UUID_INVALID":
			return h.ErrorResponse(c, fiber.StatusBadRequest, businessErr.Message, businessErr.Code, nil)
		}
	}

	log.Println(genericMessage, err)
	return h.ErrorResponse(c, fiber.StatusInternalServerError, genericMessage, genericCode, nil)
}
