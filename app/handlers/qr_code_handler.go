package handlers

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/forze-dev/QRHUB-Server/app/dto"
	businessflow "github.com/forze-dev/QRHUB-Server/business_flow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// QRCodeHandlerInterface defines the authenticated management surface
type QRCodeHandlerInterface interface {
	Create(c fiber.Ctx) error
	List(c fiber.Ctx) error
	Get(c fiber.Ctx) error
	UpdateStatus(c fiber.Ctx) error
	Delete(c fiber.Ctx) error
	Analytics(c fiber.Ctx) error
	ExportAnalytics(c fiber.Ctx) error
}

type QRCodeHandler struct {
	qrCodeFlow    businessflow.QRCodeFlow
	analyticsFlow businessflow.AnalyticsFlow
	validator     *validator.Validate
}

// NewQRCodeHandler creates a new QR code management handler
func NewQRCodeHandler(qrCodeFlow businessflow.QRCodeFlow, analyticsFlow businessflow.AnalyticsFlow) QRCodeHandlerInterface {
	return &QRCodeHandler{
		qrCodeFlow:    qrCodeFlow,
		analyticsFlow: analyticsFlow,
		validator:     validator.New(),
	}
}

func (h *QRCodeHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *QRCodeHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Create issues a new QR code for one of the business's websites
func (h *QRCodeHandler) Create(c fiber.Ctx) error {
	var req dto.CreateQRCodeRequest
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

	businessID, ok := c.Locals("business_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Business ID not found in context", "MISSING_BUSINESS_ID", nil)
	}
	req.BusinessID = businessID

	result, err := h.qrCodeFlow.Create(h.createRequestContext(c, "/api/v1/qrcodes"), &req)
	if err != nil {
		if businessflow.IsWebsiteNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Website not found", "WEBSITE_NOT_FOUND", nil)
		}
		if businessflow.IsActiveQRCodeExists(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Website already has an active QR code", "ACTIVE_QR_CODE_EXISTS", nil)
		}
		if businessflow.IsInvalidTargetURL(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Target URL must be an absolute http(s) URL", "INVALID_TARGET_URL", nil)
		}
		if businessflow.IsInvalidShortCode(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Short code may only contain letters, digits and dashes", "INVALID_SHORT_CODE", nil)
		}
		if businessflow.IsWebsiteInactive(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Website is not active", "WEBSITE_INACTIVE", nil)
		}
		if businessflow.IsBusinessNotFound(err) || businessflow.IsBusinessInactive(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Business account is not active", "BUSINESS_INACTIVE", nil)
		}

		log.Println("QR code creation failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "QR code creation failed", "QR_CODE_CREATION_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "QR code created successfully", result)
}

// List returns the business's QR codes with pagination
func (h *QRCodeHandler) List(c fiber.Ctx) error {
	businessID, ok := c.Locals("business_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Business ID not found in context", "MISSING_BUSINESS_ID", nil)
	}

	req := dto.ListQRCodesRequest{
		BusinessID: businessID,
		Limit:      parseIntQuery(c, "limit", 50),
		Offset:     parseIntQuery(c, "offset", 0),
	}
	if v := c.Query("website_uuid"); v != "" {
		req.WebsiteUUID = &v
	}
	if v := c.Query("status"); v != "" {
		req.Status = &v
	}

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	result, err := h.qrCodeFlow.List(h.createRequestContext(c, "/api/v1/qrcodes"), &req)
	if err != nil {
		if businessflow.IsWebsiteNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Website not found", "WEBSITE_NOT_FOUND", nil)
		}
		log.Println("QR code listing failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "QR code listing failed", "QR_CODE_LIST_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "QR codes retrieved successfully", result)
}

// Get returns one QR code including its cached scan counters
func (h *QRCodeHandler) Get(c fiber.Ctx) error {
	businessID, ok := c.Locals("business_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Business ID not found in context", "MISSING_BUSINESS_ID", nil)
	}

	qrUUID := c.Params("uuid")
	result, err := h.qrCodeFlow.Get(h.createRequestContext(c, "/api/v1/qrcodes/"+qrUUID), businessID, qrUUID)
	if err != nil {
		if businessflow.IsQRCodeNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "QR code not found", "QR_CODE_NOT_FOUND", nil)
		}
		log.Println("QR code retrieval failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "QR code retrieval failed", "QR_CODE_GET_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "QR code retrieved successfully", result)
}

// UpdateStatus activates, deactivates or archives a QR code
func (h *QRCodeHandler) UpdateStatus(c fiber.Ctx) error {
	var req dto.UpdateQRCodeStatusRequest
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

	businessID, ok := c.Locals("business_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Business ID not found in context", "MISSING_BUSINESS_ID", nil)
	}
	req.BusinessID = businessID
	req.UUID = c.Params("uuid")

	result, err := h.qrCodeFlow.UpdateStatus(h.createRequestContext(c, "/api/v1/qrcodes/"+req.UUID+"/status"), &req)
	if err != nil {
		if businessflow.IsQRCodeNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "QR code not found", "QR_CODE_NOT_FOUND", nil)
		}
		log.Println("QR code status update failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "QR code status update failed", "QR_CODE_UPDATE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "QR code status updated successfully", result)
}

// Delete soft-deletes a QR code; its scan history is retained
func (h *QRCodeHandler) Delete(c fiber.Ctx) error {
	businessID, ok := c.Locals("business_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Business ID not found in context", "MISSING_BUSINESS_ID", nil)
	}

	qrUUID := c.Params("uuid")
	err := h.qrCodeFlow.Delete(h.createRequestContext(c, "/api/v1/qrcodes/"+qrUUID), businessID, qrUUID)
	if err != nil {
		if businessflow.IsQRCodeNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "QR code not found", "QR_CODE_NOT_FOUND", nil)
		}
		log.Println("QR code deletion failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "QR code deletion failed", "QR_CODE_DELETE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "QR code deleted successfully", nil)
}

// Analytics returns aggregated scan analytics for one QR code
func (h *QRCodeHandler) Analytics(c fiber.Ctx) error {
	req, err := h.analyticsRequest(c)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), "INVALID_REQUEST", nil)
	}
	if req == nil {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Business ID not found in context", "MISSING_BUSINESS_ID", nil)
	}

	result, err := h.analyticsFlow.Summary(h.createRequestContext(c, "/api/v1/qrcodes/"+req.UUID+"/analytics"), req)
	if err != nil {
		if businessflow.IsQRCodeNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "QR code not found", "QR_CODE_NOT_FOUND", nil)
		}
		log.Println("Analytics retrieval failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Analytics retrieval failed", "ANALYTICS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Analytics retrieved successfully", result)
}

// ExportAnalytics streams the raw scan log of one QR code as xlsx
func (h *QRCodeHandler) ExportAnalytics(c fiber.Ctx) error {
	req, err := h.analyticsRequest(c)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), "INVALID_REQUEST", nil)
	}
	if req == nil {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Business ID not found in context", "MISSING_BUSINESS_ID", nil)
	}

	filename, content, err := h.analyticsFlow.Export(h.createRequestContext(c, "/api/v1/qrcodes/"+req.UUID+"/analytics/export"), req)
	if err != nil {
		if businessflow.IsQRCodeNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "QR code not found", "QR_CODE_NOT_FOUND", nil)
		}
		log.Println("Analytics export failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Analytics export failed", "ANALYTICS_EXPORT_FAILED", nil)
	}

	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Status(fiber.StatusOK).Send(content)
}

// analyticsRequest builds the shared analytics request from path,
// query and auth context. A nil request with nil error means the auth
// context is missing.
func (h *QRCodeHandler) analyticsRequest(c fiber.Ctx) (*dto.AnalyticsRequest, error) {
	businessID, ok := c.Locals("business_id").(uint)
	if !ok {
		return nil, nil
	}

	req := &dto.AnalyticsRequest{
		UUID:       c.Params("uuid"),
		BusinessID: businessID,
	}
	if v := c.Query("from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return nil, fmt.Errorf("from must be a YYYY-MM-DD date")
		}
		req.From = &t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return nil, fmt.Errorf("to must be a YYYY-MM-DD date")
		}
		// Inclusive end of day.
		end := t.Add(24*time.Hour - time.Nanosecond)
		req.To = &end
	}
	return req, nil
}

func (h *QRCodeHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return createRequestContextWithTimeout(c, endpoint, 15*time.Second)
}

func parseIntQuery(c fiber.Ctx, key string, fallback int) int {
	v := c.Query(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
