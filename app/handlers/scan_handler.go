package handlers

import (
	"context"
	"log"
	"time"

	"github.com/forze-dev/QRHUB-Server/app/dto"
	businessflow "github.com/forze-dev/QRHUB-Server/business_flow"
	"github.com/forze-dev/QRHUB-Server/utils"
	"github.com/gofiber/fiber/v3"
)

// notFoundPage is served for every rejected scan. All rejection causes
// render the same page so short codes cannot be probed for state.
const notFoundPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>QR code not found</title>
<style>
body{margin:0;font-family:-apple-system,BlinkMacSystemFont,"Segoe UI",Roboto,sans-serif;background:#f5f6fa;color:#2d3436;display:flex;align-items:center;justify-content:center;min-height:100vh}
.card{background:#fff;border-radius:12px;box-shadow:0 4px 24px rgba(0,0,0,.08);padding:48px 40px;max-width:420px;text-align:center}
h1{font-size:22px;margin:0 0 12px}
p{font-size:15px;line-height:1.5;color:#636e72;margin:0}
.code{font-size:56px;margin-bottom:16px}
</style>
</head>
<body>
<div class="card">
<div class="code">&#128269;</div>
<h1>QR code not found or inactive</h1>
<p>This QR code does not exist, has been deactivated, or is temporarily unavailable. Please contact the business that issued it.</p>
</div>
</body>
</html>`

// ScanHandlerInterface defines the public scan surface
type ScanHandlerInterface interface {
	Redirect(c fiber.Ctx) error
	Preview(c fiber.Ctx) error
	Health(c fiber.Ctx) error
}

type ScanHandler struct {
	scanFlow          businessflow.ScanFlow
	previewRedirectIn time.Duration
}

func NewScanHandler(scanFlow businessflow.ScanFlow, previewRedirectIn time.Duration) ScanHandlerInterface {
	return &ScanHandler{scanFlow: scanFlow, previewRedirectIn: previewRedirectIn}
}

// Redirect resolves a short code, records the scan and issues a 302.
// Every rejection renders the same branded 404 page.
func (h *ScanHandler) Redirect(c fiber.Ctx) error {
	result, err := h.scan(c)
	if err != nil {
		if !businessflow.IsQRCodeNotFound(err) && !businessflow.IsScanRateLimited(err) {
			log.Println("Scan processing failed", err)
		}
		c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
		return c.Status(fiber.StatusNotFound).SendString(notFoundPage)
	}
	c.Redirect().Status(fiber.StatusFound).To(result.TargetURL)
	return nil
}

// Preview runs the same scan pipeline but answers with JSON instead of
// redirecting.
func (h *ScanHandler) Preview(c fiber.Ctx) error {
	result, err := h.scan(c)
	if err != nil {
		if !businessflow.IsQRCodeNotFound(err) && !businessflow.IsScanRateLimited(err) {
			log.Println("Scan preview failed", err)
		}
		return c.Status(fiber.StatusNotFound).JSON(dto.APIResponse{
			Success: false,
			Message: "QR code not found or inactive",
			Error:   dto.ErrorDetail{Code: "QR_CODE_NOT_FOUND"},
		})
	}

	qr := result.QRCode
	return c.Status(fiber.StatusOK).JSON(dto.APIResponse{
		Success: true,
		Message: "QR code resolved",
		Data: fiber.Map{
			"qr_code": dto.ScanPreviewResponse{
				ShortCode:       qr.ShortCode,
				Name:            qr.Name,
				TargetURL:       qr.TargetURL,
				PrimaryColor:    qr.PrimaryColor,
				BackgroundColor: qr.BackgroundColor,
				RedirectIn:      int(h.previewRedirectIn.Seconds()),
			},
			"target_url": result.TargetURL,
			"scan": fiber.Map{
				"is_unique":  result.IsUnique,
				"scanned_at": result.Event.ScannedAt,
				"device":     result.Event.Device,
				"country":    result.Event.Country,
			},
			"redirect_in": int(h.previewRedirectIn.Seconds()),
		},
	})
}

// Health answers the scan edge's liveness probe.
func (h *ScanHandler) Health(c fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":  "ok",
		"service": "qrhub-scan",
	})
}

func (h *ScanHandler) scan(c fiber.Ctx) (*businessflow.ScanResult, error) {
	shortCode := c.Params("shortCode")
	req := &businessflow.ScanRequest{
		ShortCode: shortCode,
		Metadata: &businessflow.ClientMetadata{
			IP:        c.IP(),
			UserAgent: c.Get("User-Agent"),
			RequestID: c.Get("X-Request-ID"),
			Referrer:  c.Get("Referer"),
		},
		UTMSource:   c.Query("utm_source"),
		UTMMedium:   c.Query("utm_medium"),
		UTMCampaign: c.Query("utm_campaign"),
	}
	return h.scanFlow.Scan(h.createRequestContext(c, "/s/"+shortCode), req)
}

func (h *ScanHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return createRequestContextWithTimeout(c, endpoint, 10*time.Second)
}

func createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
