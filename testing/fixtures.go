// Package testing provides test utilities and database setup for testing the scan pipeline
package testing

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/forze-dev/QRHUB-Server/models"
	"github.com/forze-dev/QRHUB-Server/utils"
	"github.com/google/uuid"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestBusiness creates an active business account
func (tf *TestFixtures) CreateTestBusiness() (*models.Business, error) {
	suffix := fmt.Sprintf("%09d", rand.Intn(900000000)+100000000)

	business := &models.Business{
		UUID:     uuid.New(),
		Name:     "Test Business " + suffix,
		Email:    fmt.Sprintf("owner.%s@example.com", suffix),
		IsActive: utils.ToPtr(true),
	}

	if err := tf.DB.DB.Create(business).Error; err != nil {
		return nil, fmt.Errorf("failed to create test business: %w", err)
	}
	return business, nil
}

// CreateTestWebsite creates an active website owned by the business
func (tf *TestFixtures) CreateTestWebsite(businessID uint) (*models.Website, error) {
	suffix := fmt.Sprintf("%06d", rand.Intn(900000)+100000)

	website := &models.Website{
		UUID:       uuid.New(),
		BusinessID: businessID,
		Slug:       "test-site-" + suffix,
		Type:       models.WebsiteTypeBusinessCard,
		PublicURL:  fmt.Sprintf("https://site-%s.example.com", suffix),
		IsActive:   utils.ToPtr(true),
	}

	if err := tf.DB.DB.Create(website).Error; err != nil {
		return nil, fmt.Errorf("failed to create test website: %w", err)
	}
	return website, nil
}

// CreateTestQRCode creates an active scannable QR code for a website
func (tf *TestFixtures) CreateTestQRCode(businessID, websiteID uint) (*models.QRCode, error) {
	shortCode, err := utils.GenerateShortCode(utils.ShortCodeDefaultLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate short code: %w", err)
	}

	qr := &models.QRCode{
		UUID:       uuid.New(),
		BusinessID: businessID,
		WebsiteID:  websiteID,
		Name:       "Test QR Code",
		TargetURL:  "https://example.com/landing",
		ShortCode:  shortCode,
		Status:     models.QRCodeStatusActive,
		IsActive:   utils.ToPtr(true),
	}

	if err := tf.DB.DB.Create(qr).Error; err != nil {
		return nil, fmt.Errorf("failed to create test qr code: %w", err)
	}
	return qr, nil
}

// CreateTestScanEvent appends a scan event for a QR code
func (tf *TestFixtures) CreateTestScanEvent(qr *models.QRCode, fingerprint string, isUnique bool, scannedAt time.Time) (*models.ScanEvent, error) {
	event := &models.ScanEvent{
		QRCodeID:    qr.ID,
		BusinessID:  qr.BusinessID,
		WebsiteID:   qr.WebsiteID,
		ScannedAt:   scannedAt,
		Country:     "Germany",
		City:        "Berlin",
		Region:      "Berlin",
		IPAddress:   "203.0.113.10",
		Device:      models.DeviceIOS,
		Browser:     "Safari",
		OS:          "iOS",
		UserAgent:   "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X)",
		Fingerprint: fingerprint,
		IsUnique:    isUnique,
	}

	if err := tf.DB.DB.Create(event).Error; err != nil {
		return nil, fmt.Errorf("failed to create test scan event: %w", err)
	}
	return event, nil
}

// CreateScannableSetup creates a business, website and active QR code in one call
func (tf *TestFixtures) CreateScannableSetup() (*models.Business, *models.Website, *models.QRCode, error) {
	business, err := tf.CreateTestBusiness()
	if err != nil {
		return nil, nil, nil, err
	}
	website, err := tf.CreateTestWebsite(business.ID)
	if err != nil {
		return nil, nil, nil, err
	}
	qr, err := tf.CreateTestQRCode(business.ID, website.ID)
	if err != nil {
		return nil, nil, nil, err
	}
	return business, website, qr, nil
}
