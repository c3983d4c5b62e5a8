package businessflow

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/forze-dev/QRHUB-Server/app/services"
	"github.com/forze-dev/QRHUB-Server/models"
	"github.com/forze-dev/QRHUB-Server/repository"
	"github.com/forze-dev/QRHUB-Server/utils"
)

// ScanRequest carries everything the pipeline needs about one inbound
// scan. UTM values come from the redirect URL's query string.
type ScanRequest struct {
	ShortCode   string
	Metadata    *ClientMetadata
	UTMSource   string
	UTMMedium   string
	UTMCampaign string
}

// ScanResult is the outcome of an accepted scan.
type ScanResult struct {
	QRCode    *models.QRCode    `json:"qr_code"`
	Event     *models.ScanEvent `json:"event"`
	TargetURL string            `json:"target_url"`
	IsUnique  bool              `json:"is_unique"`
}

// ScanFlow runs the scan pipeline: resolve the short code, apply the
// per-client rate limit, enrich and persist the event, then update the
// cached counters. Only code resolution, rate limiting and event
// persistence can reject a scan; enrichment and counter updates
// degrade without failing the redirect.
type ScanFlow interface {
	Scan(ctx context.Context, req *ScanRequest) (*ScanResult, error)
}

type ScanFlowImpl struct {
	qrRepo      repository.QRCodeRepository
	scanRepo    repository.ScanEventRepository
	classifier  services.DeviceClassifier
	geo         services.GeolocationService
	fingerprint services.FingerprintService
	limiter     services.ScanRateLimiter
	logger      *log.Logger

	// Now supplies the pipeline's notion of current time. Tests swap it
	// to cross day boundaries without waiting for them.
	Now func() time.Time
}

func NewScanFlow(
	qrRepo repository.QRCodeRepository,
	scanRepo repository.ScanEventRepository,
	classifier services.DeviceClassifier,
	geo services.GeolocationService,
	fingerprint services.FingerprintService,
	limiter services.ScanRateLimiter,
	logger *log.Logger,
) ScanFlow {
	return &ScanFlowImpl{
		qrRepo:      qrRepo,
		scanRepo:    scanRepo,
		classifier:  classifier,
		geo:         geo,
		fingerprint: fingerprint,
		limiter:     limiter,
		logger:      logger,
		Now:         utils.UTCNow,
	}
}

func (f *ScanFlowImpl) Scan(ctx context.Context, req *ScanRequest) (*ScanResult, error) {
	shortCode := strings.TrimSpace(req.ShortCode)
	if !utils.IsValidShortCode(shortCode) {
		scansRejected.WithLabelValues(rejectNotFound).Inc()
		return nil, NewBusinessError("QR_CODE_NOT_FOUND", "QR code not found", ErrQRCodeNotFound)
	}

	qr, err := f.qrRepo.FindActiveByShortCode(ctx, shortCode)
	if err != nil {
		scansRejected.WithLabelValues(rejectStoreError).Inc()
		f.logger.Printf("ERROR: scan lookup failed for code %q: %v", shortCode, err)
		return nil, NewBusinessError("SCAN_STORE_ERROR", "scan could not be processed", ErrScanStoreUnavailable)
	}
	if qr == nil {
		scansRejected.WithLabelValues(rejectNotFound).Inc()
		return nil, NewBusinessError("QR_CODE_NOT_FOUND", "QR code not found", ErrQRCodeNotFound)
	}

	meta := req.Metadata
	if meta == nil {
		meta = &ClientMetadata{}
	}

	if !f.limiter.Allow(ctx, meta.IP, qr.ID) {
		scansRejected.WithLabelValues(rejectRateLimited).Inc()
		f.logger.Printf("WARN: scan rate limited for code %s from %s", qr.ShortCode, services.MaskIP(meta.IP))
		return nil, NewBusinessError("SCAN_RATE_LIMITED", "too many scans from this client", ErrScanRateLimited)
	}

	event, err := f.recordScan(ctx, qr, req, meta)
	if err != nil {
		scansRejected.WithLabelValues(rejectStoreError).Inc()
		f.logger.Printf("ERROR: scan event persist failed for code %s: %v", qr.ShortCode, err)
		return nil, NewBusinessError("SCAN_STORE_ERROR", "scan could not be recorded", ErrScanStoreUnavailable)
	}

	// Counters are a cache over scan_events; a failed update is logged
	// and repaired by the reconciliation job, never surfaced to the
	// scanning client.
	if err := f.qrRepo.IncrementScans(ctx, qr.ID, event.IsUnique, event.ScannedAt); err != nil {
		counterUpdateFailures.Inc()
		f.logger.Printf("ERROR: counter update failed for qr %d: %v", qr.ID, err)
	} else {
		qr.TotalScans++
		if event.IsUnique {
			qr.UniqueScans++
		}
		qr.LastScanAt = &event.ScannedAt
	}

	scansAccepted.WithLabelValues(string(event.Device)).Inc()
	if event.IsUnique {
		uniqueScans.Inc()
	}

	return &ScanResult{
		QRCode:    qr,
		Event:     event,
		TargetURL: qr.TargetURL,
		IsUnique:  event.IsUnique,
	}, nil
}

// recordScan enriches the raw request and appends the event row. Every
// enrichment step has a non-failing fallback; only the final insert
// can return an error.
func (f *ScanFlowImpl) recordScan(ctx context.Context, qr *models.QRCode, req *ScanRequest, meta *ClientMetadata) (*models.ScanEvent, error) {
	now := f.Now().UTC()

	device := f.classifier.Classify(meta.UserAgent)
	location := f.geo.Resolve(ctx, meta.IP)
	digest := f.fingerprint.Derive(meta.IP, meta.UserAgent, now, services.BucketDaily)

	seen, err := f.scanRepo.ExistsTodayFor(ctx, qr.ID, digest, now)
	if err != nil {
		// Degrade to non-unique rather than losing the scan.
		f.logger.Printf("WARN: uniqueness check failed for qr %d: %v", qr.ID, err)
		seen = true
	}

	event := &models.ScanEvent{
		QRCodeID:    qr.ID,
		BusinessID:  qr.BusinessID,
		WebsiteID:   qr.WebsiteID,
		ScannedAt:   now,
		Country:     location.Country,
		City:        location.City,
		Region:      location.Region,
		IPAddress:   meta.IP,
		Device:      device.Device,
		Browser:     device.Browser,
		OS:          device.OS,
		UserAgent:   meta.UserAgent,
		Fingerprint: digest,
		IsUnique:    !seen,
		Referrer:    optional(meta.Referrer),
		UTMSource:   optional(req.UTMSource),
		UTMMedium:   optional(req.UTMMedium),
		UTMCampaign: optional(req.UTMCampaign),
	}

	if err := f.scanRepo.Save(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
