package businessflow

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/forze-dev/QRHUB-Server/app/dto"
	"github.com/forze-dev/QRHUB-Server/models"
	"github.com/forze-dev/QRHUB-Server/repository"
	"github.com/forze-dev/QRHUB-Server/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// shortCodeAttempts bounds collision retries during issuance.
const shortCodeAttempts = 5

// QRCodeFlow covers the management lifecycle of QR codes: issuance,
// listing, status changes and soft deletion. Scanning lives in
// ScanFlow.
type QRCodeFlow interface {
	Create(ctx context.Context, req *dto.CreateQRCodeRequest) (*dto.QRCodeResponse, error)
	List(ctx context.Context, req *dto.ListQRCodesRequest) (*dto.ListQRCodesResponse, error)
	Get(ctx context.Context, businessID uint, qrUUID string) (*dto.QRCodeResponse, error)
	UpdateStatus(ctx context.Context, req *dto.UpdateQRCodeStatusRequest) (*dto.QRCodeResponse, error)
	Delete(ctx context.Context, businessID uint, qrUUID string) error
}

type QRCodeFlowImpl struct {
	db           *gorm.DB
	qrRepo       repository.QRCodeRepository
	websiteRepo  repository.WebsiteRepository
	businessRepo repository.BusinessRepository
	publicHost   string
	logger       *log.Logger
}

func NewQRCodeFlow(
	db *gorm.DB,
	qrRepo repository.QRCodeRepository,
	websiteRepo repository.WebsiteRepository,
	businessRepo repository.BusinessRepository,
	publicHost string,
	logger *log.Logger,
) QRCodeFlow {
	return &QRCodeFlowImpl{
		db:           db,
		qrRepo:       qrRepo,
		websiteRepo:  websiteRepo,
		businessRepo: businessRepo,
		publicHost:   publicHost,
		logger:       logger,
	}
}

func (f *QRCodeFlowImpl) Create(ctx context.Context, req *dto.CreateQRCodeRequest) (*dto.QRCodeResponse, error) {
	if !models.IsValidTargetURL(req.TargetURL) {
		return nil, NewBusinessError("INVALID_TARGET_URL", "target URL must be absolute http(s)", ErrInvalidTargetURL)
	}

	// Tokens outlive account state changes, so issuance re-checks the
	// account on every call.
	business, err := f.businessRepo.ByID(ctx, req.BusinessID)
	if err != nil {
		return nil, fmt.Errorf("business lookup: %w", err)
	}
	if business == nil {
		return nil, NewBusinessError("BUSINESS_NOT_FOUND", "business account not found", ErrBusinessNotFound)
	}
	if !utils.IsTrue(business.IsActive) {
		return nil, NewBusinessError("BUSINESS_INACTIVE", "business account is not active", ErrBusinessInactive)
	}

	websiteUUID, err := uuid.Parse(req.WebsiteUUID)
	if err != nil {
		return nil, NewBusinessError("WEBSITE_NOT_FOUND", "website not found", ErrWebsiteNotFound)
	}
	website, err := f.websiteRepo.ByUUID(ctx, websiteUUID)
	if err != nil {
		return nil, fmt.Errorf("website lookup: %w", err)
	}
	if website == nil || website.BusinessID != req.BusinessID {
		return nil, NewBusinessError("WEBSITE_NOT_FOUND", "website not found", ErrWebsiteNotFound)
	}
	if !utils.IsTrue(website.IsActive) {
		return nil, NewBusinessError("WEBSITE_INACTIVE", "website is not active", ErrWebsiteInactive)
	}

	qr := &models.QRCode{
		UUID:            uuid.New(),
		BusinessID:      req.BusinessID,
		WebsiteID:       website.ID,
		Name:            strings.TrimSpace(req.Name),
		Description:     req.Description,
		TargetURL:       req.TargetURL,
		PrimaryColor:    req.PrimaryColor,
		BackgroundColor: req.BackgroundColor,
		Status:          models.QRCodeStatusActive,
		IsActive:        utils.ToPtr(true),
	}

	if req.ShortCode != nil {
		code := strings.TrimSpace(*req.ShortCode)
		if !utils.IsValidShortCode(code) {
			return nil, NewBusinessError("INVALID_SHORT_CODE", "short code contains invalid characters", ErrInvalidShortCode)
		}
		qr.ShortCode = code
		if err := f.createInTx(ctx, qr); err != nil {
			return nil, err
		}
		return f.toResponse(qr, req.WebsiteUUID), nil
	}

	// Generated codes retry on unique-index collisions; with the code
	// space in use the first attempt wins essentially always.
	var lastErr error
	for i := 0; i < shortCodeAttempts; i++ {
		code, err := utils.GenerateShortCode(utils.ShortCodeDefaultLength)
		if err != nil {
			return nil, fmt.Errorf("short code generation: %w", err)
		}
		qr.ShortCode = code
		lastErr = f.createInTx(ctx, qr)
		if lastErr == nil {
			return f.toResponse(qr, req.WebsiteUUID), nil
		}
		if !isDuplicateShortCode(lastErr) {
			return nil, lastErr
		}
	}
	f.logger.Printf("ERROR: short code allocation exhausted for business %d: %v", req.BusinessID, lastErr)
	return nil, NewBusinessError("SHORT_CODE_EXHAUSTED", "could not allocate short code", ErrShortCodeExhausted)
}

// createInTx enforces the one-active-code-per-website cap and inserts
// inside one transaction so concurrent issuance cannot slip past the
// cap check.
func (f *QRCodeFlowImpl) createInTx(ctx context.Context, qr *models.QRCode) error {
	return repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		active, err := f.qrRepo.CountActiveByWebsite(txCtx, qr.WebsiteID)
		if err != nil {
			return fmt.Errorf("active code count: %w", err)
		}
		if active > 0 {
			return NewBusinessError("ACTIVE_QR_CODE_EXISTS", "website already has an active QR code", ErrActiveQRCodeExists)
		}
		return f.qrRepo.Save(txCtx, qr)
	})
}

func isDuplicateShortCode(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "uk_qr_codes_short_code")
}

func (f *QRCodeFlowImpl) List(ctx context.Context, req *dto.ListQRCodesRequest) (*dto.ListQRCodesResponse, error) {
	filter := models.QRCodeFilter{BusinessID: &req.BusinessID}
	if req.WebsiteUUID != nil {
		websiteUUID, err := uuid.Parse(*req.WebsiteUUID)
		if err != nil {
			return nil, NewBusinessError("WEBSITE_NOT_FOUND", "website not found", ErrWebsiteNotFound)
		}
		website, err := f.websiteRepo.ByUUID(ctx, websiteUUID)
		if err != nil {
			return nil, fmt.Errorf("website lookup: %w", err)
		}
		if website == nil || website.BusinessID != req.BusinessID {
			return nil, NewBusinessError("WEBSITE_NOT_FOUND", "website not found", ErrWebsiteNotFound)
		}
		filter.WebsiteID = &website.ID
	}
	if req.Status != nil {
		status := models.QRCodeStatus(*req.Status)
		filter.Status = &status
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}

	total, err := f.qrRepo.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("qr code count: %w", err)
	}
	codes, err := f.qrRepo.ByFilter(ctx, filter, "created_at DESC", limit, req.Offset)
	if err != nil {
		return nil, fmt.Errorf("qr code listing: %w", err)
	}

	items := make([]dto.QRCodeResponse, 0, len(codes))
	for _, qr := range codes {
		items = append(items, *f.toResponse(qr, ""))
	}
	return &dto.ListQRCodesResponse{Items: items, Total: total}, nil
}

func (f *QRCodeFlowImpl) Get(ctx context.Context, businessID uint, qrUUID string) (*dto.QRCodeResponse, error) {
	qr, err := f.owned(ctx, businessID, qrUUID)
	if err != nil {
		return nil, err
	}
	return f.toResponse(qr, ""), nil
}

func (f *QRCodeFlowImpl) UpdateStatus(ctx context.Context, req *dto.UpdateQRCodeStatusRequest) (*dto.QRCodeResponse, error) {
	qr, err := f.owned(ctx, req.BusinessID, req.UUID)
	if err != nil {
		return nil, err
	}

	status := models.QRCodeStatus(req.Status)
	if !status.Valid() {
		return nil, NewBusinessError("INVALID_STATUS", "unknown QR code status", ErrQRCodeNotFound)
	}
	isActive := status == models.QRCodeStatusActive
	if err := f.qrRepo.UpdateStatus(ctx, qr.ID, status, isActive); err != nil {
		return nil, fmt.Errorf("status update: %w", err)
	}
	qr.Status = status
	qr.IsActive = utils.ToPtr(isActive)
	return f.toResponse(qr, ""), nil
}

func (f *QRCodeFlowImpl) Delete(ctx context.Context, businessID uint, qrUUID string) error {
	qr, err := f.owned(ctx, businessID, qrUUID)
	if err != nil {
		return err
	}
	if err := f.qrRepo.SoftDelete(ctx, qr.ID); err != nil {
		return fmt.Errorf("qr code delete: %w", err)
	}
	return nil
}

// owned fetches a QR code by UUID and checks it belongs to the caller.
// Foreign codes report not-found rather than forbidden so UUIDs are
// not probeable.
func (f *QRCodeFlowImpl) owned(ctx context.Context, businessID uint, qrUUID string) (*models.QRCode, error) {
	id, err := uuid.Parse(qrUUID)
	if err != nil {
		return nil, NewBusinessError("QR_CODE_NOT_FOUND", "QR code not found", ErrQRCodeNotFound)
	}
	qr, err := f.qrRepo.ByUUID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("qr code lookup: %w", err)
	}
	if qr == nil || qr.BusinessID != businessID {
		return nil, NewBusinessError("QR_CODE_NOT_FOUND", "QR code not found", ErrQRCodeNotFound)
	}
	return qr, nil
}

func (f *QRCodeFlowImpl) toResponse(qr *models.QRCode, websiteUUID string) *dto.QRCodeResponse {
	return &dto.QRCodeResponse{
		UUID:            qr.UUID.String(),
		WebsiteUUID:     websiteUUID,
		Name:            qr.Name,
		Description:     qr.Description,
		TargetURL:       qr.TargetURL,
		ShortCode:       qr.ShortCode,
		ScanURL:         fmt.Sprintf("%s/s/%s", strings.TrimRight(f.publicHost, "/"), qr.ShortCode),
		ImageURL:        qr.ImageURL,
		PrimaryColor:    qr.PrimaryColor,
		BackgroundColor: qr.BackgroundColor,
		Status:          qr.Status.String(),
		IsActive:        utils.IsTrue(qr.IsActive),
		TotalScans:      qr.TotalScans,
		UniqueScans:     qr.UniqueScans,
		LastScanAt:      qr.LastScanAt,
		CreatedAt:       qr.CreatedAt,
	}
}
