package businessflow

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/forze-dev/QRHUB-Server/app/dto"
	"github.com/forze-dev/QRHUB-Server/models"
	"github.com/forze-dev/QRHUB-Server/repository"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

// AnalyticsFlow aggregates the scan event log for one QR code.
type AnalyticsFlow interface {
	Summary(ctx context.Context, req *dto.AnalyticsRequest) (*dto.AnalyticsResponse, error)
	// Export renders the raw event log of one code as an xlsx workbook
	// and returns the suggested filename plus the file bytes.
	Export(ctx context.Context, req *dto.AnalyticsRequest) (string, []byte, error)
}

type AnalyticsFlowImpl struct {
	qrRepo   repository.QRCodeRepository
	scanRepo repository.ScanEventRepository
	logger   *log.Logger
}

func NewAnalyticsFlow(
	qrRepo repository.QRCodeRepository,
	scanRepo repository.ScanEventRepository,
	logger *log.Logger,
) AnalyticsFlow {
	return &AnalyticsFlowImpl{qrRepo: qrRepo, scanRepo: scanRepo, logger: logger}
}

func (f *AnalyticsFlowImpl) Summary(ctx context.Context, req *dto.AnalyticsRequest) (*dto.AnalyticsResponse, error) {
	qr, filter, err := f.scoped(ctx, req)
	if err != nil {
		return nil, err
	}

	byDay, err := f.scanRepo.AggregateByDay(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("daily aggregation: %w", err)
	}
	byCountry, err := f.scanRepo.AggregateByDimension(ctx, filter, "country")
	if err != nil {
		return nil, fmt.Errorf("country aggregation: %w", err)
	}
	byCity, err := f.scanRepo.AggregateByDimension(ctx, filter, "city")
	if err != nil {
		return nil, fmt.Errorf("city aggregation: %w", err)
	}
	byDevice, err := f.scanRepo.AggregateByDimension(ctx, filter, "device")
	if err != nil {
		return nil, fmt.Errorf("device aggregation: %w", err)
	}

	resp := &dto.AnalyticsResponse{
		UUID:        qr.UUID.String(),
		ShortCode:   qr.ShortCode,
		TotalScans:  qr.TotalScans,
		UniqueScans: qr.UniqueScans,
		LastScanAt:  qr.LastScanAt,
		ByDay:       make([]dto.DailyBucket, 0, len(byDay)),
		ByCountry:   toBuckets(byCountry),
		ByCity:      toBuckets(byCity),
		ByDevice:    toBuckets(byDevice),
	}
	for _, d := range byDay {
		resp.ByDay = append(resp.ByDay, dto.DailyBucket{
			Day:         d.Day.UTC().Format("2006-01-02"),
			TotalScans:  d.TotalScans,
			UniqueScans: d.UniqueScans,
		})
	}
	return resp, nil
}

func (f *AnalyticsFlowImpl) Export(ctx context.Context, req *dto.AnalyticsRequest) (string, []byte, error) {
	qr, filter, err := f.scoped(ctx, req)
	if err != nil {
		return "", nil, err
	}

	events, err := f.scanRepo.ByFilter(ctx, filter, "scanned_at ASC", 0, 0)
	if err != nil {
		return "", nil, fmt.Errorf("event export query: %w", err)
	}

	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	sheet := "scans"
	xl.SetSheetName(xl.GetSheetName(0), sheet)

	header := []string{"scanned_at", "country", "city", "region", "device", "browser", "os", "is_unique", "referrer", "utm_source", "utm_medium", "utm_campaign"}
	_ = xl.SetSheetRow(sheet, "A1", &header)

	for i, ev := range events {
		record := []string{
			ev.ScannedAt.UTC().Format(time.RFC3339),
			ev.Country,
			ev.City,
			ev.Region,
			string(ev.Device),
			ev.Browser,
			ev.OS,
			strconv.FormatBool(ev.IsUnique),
			deref(ev.Referrer),
			deref(ev.UTMSource),
			deref(ev.UTMMedium),
			deref(ev.UTMCampaign),
		}
		cellRef, _ := excelize.CoordinatesToCellName(1, i+2)
		_ = xl.SetSheetRow(sheet, cellRef, &record)
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", "failed to write export file", err)
	}
	filename := fmt.Sprintf("qr_scans_%s.xlsx", qr.ShortCode)
	return filename, buf.Bytes(), nil
}

// scoped resolves the code, checks ownership and builds the event
// filter with the optional date range applied.
func (f *AnalyticsFlowImpl) scoped(ctx context.Context, req *dto.AnalyticsRequest) (*models.QRCode, models.ScanEventFilter, error) {
	qr, err := f.ownedQRCode(ctx, req.BusinessID, req.UUID)
	if err != nil {
		return nil, models.ScanEventFilter{}, err
	}
	filter := models.ScanEventFilter{
		QRCodeID:      &qr.ID,
		ScannedAfter:  req.From,
		ScannedBefore: req.To,
	}
	return qr, filter, nil
}

func (f *AnalyticsFlowImpl) ownedQRCode(ctx context.Context, businessID uint, qrUUID string) (*models.QRCode, error) {
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

func toBuckets(counts []repository.DimensionCount) []dto.DimensionBucket {
	out := make([]dto.DimensionBucket, 0, len(counts))
	for _, c := range counts {
		out = append(out, dto.DimensionBucket{Value: c.Value, Count: c.Count})
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
