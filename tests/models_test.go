// Package tests contains test cases for models and repository packages to avoid circular imports
package tests

import (
	"testing"
	"time"

	"github.com/forze-dev/QRHUB-Server/models"
	testingutil "github.com/forze-dev/QRHUB-Server/testing"
	"github.com/forze-dev/QRHUB-Server/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQRCodeModel(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)

		t.Run("StatusConstants", func(t *testing.T) {
			assert.True(t, models.QRCodeStatusActive.Valid())
			assert.True(t, models.QRCodeStatusInactive.Valid())
			assert.True(t, models.QRCodeStatusArchived.Valid())
			assert.False(t, models.QRCodeStatus("deleted").Valid())
		})

		t.Run("TableName", func(t *testing.T) {
			assert.Equal(t, "qr_codes", models.QRCode{}.TableName())
			assert.Equal(t, "scan_events", models.ScanEvent{}.TableName())
			assert.Equal(t, "businesses", models.Business{}.TableName())
			assert.Equal(t, "websites", models.Website{}.TableName())
		})

		t.Run("CreateQRCode", func(t *testing.T) {
			business, website, qr, err := fixtures.CreateScannableSetup()
			require.NoError(t, err)
			assert.NotZero(t, qr.ID)
			assert.Equal(t, business.ID, qr.BusinessID)
			assert.Equal(t, website.ID, qr.WebsiteID)
			assert.True(t, qr.Scannable())
			assert.Zero(t, qr.TotalScans)
			assert.Zero(t, qr.UniqueScans)
			assert.Nil(t, qr.LastScanAt)
		})

		t.Run("ScannableReflectsStatus", func(t *testing.T) {
			qr := &models.QRCode{
				Status:   models.QRCodeStatusActive,
				IsActive: utils.ToPtr(true),
			}
			assert.True(t, qr.Scannable())

			qr.Status = models.QRCodeStatusInactive
			assert.False(t, qr.Scannable())

			qr.Status = models.QRCodeStatusActive
			qr.IsActive = utils.ToPtr(false)
			assert.False(t, qr.Scannable())
		})

		t.Run("ShortCodeUniqueness", func(t *testing.T) {
			business, website, qr, err := fixtures.CreateScannableSetup()
			require.NoError(t, err)

			dup := &models.QRCode{
				UUID:       qr.UUID,
				BusinessID: business.ID,
				WebsiteID:  website.ID,
				Name:       "Duplicate",
				TargetURL:  "https://example.com",
				ShortCode:  qr.ShortCode,
				Status:     models.QRCodeStatusActive,
				IsActive:   utils.ToPtr(true),
			}
			err = testDB.DB.Create(dup).Error
			assert.Error(t, err)
		})

		t.Run("AppendScanEvent", func(t *testing.T) {
			_, _, qr, err := fixtures.CreateScannableSetup()
			require.NoError(t, err)

			event, err := fixtures.CreateTestScanEvent(qr, "fp-model-test", true, utils.UTCNow())
			require.NoError(t, err)
			assert.NotZero(t, event.ID)
			assert.Equal(t, qr.BusinessID, event.BusinessID)
			assert.Equal(t, qr.WebsiteID, event.WebsiteID)
			assert.True(t, event.IsUnique)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestTargetURLValidation(t *testing.T) {
	valid := []string{
		"https://example.com",
		"http://example.com/path?q=1",
		"https://sub.example.co.uk/deep/path",
	}
	for _, u := range valid {
		assert.True(t, models.IsValidTargetURL(u), u)
	}

	invalid := []string{
		"",
		"example.com",
		"ftp://example.com",
		"javascript:alert(1)",
		"//example.com",
	}
	for _, u := range invalid {
		assert.False(t, models.IsValidTargetURL(u), u)
	}
}

func TestDeviceClassValues(t *testing.T) {
	assert.Equal(t, models.DeviceClass("iOS"), models.DeviceIOS)
	assert.Equal(t, models.DeviceClass("Android"), models.DeviceAndroid)
	assert.Equal(t, models.DeviceClass("Desktop"), models.DeviceDesktop)
	assert.Equal(t, models.DeviceClass("Other"), models.DeviceOther)
}

func TestScanEventScannedAtDefaults(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)

		_, _, qr, err := fixtures.CreateScannableSetup()
		require.NoError(t, err)

		scannedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		event, err := fixtures.CreateTestScanEvent(qr, "fp-ts", false, scannedAt)
		require.NoError(t, err)

		var stored models.ScanEvent
		require.NoError(t, testDB.DB.First(&stored, event.ID).Error)
		assert.Equal(t, scannedAt.Unix(), stored.ScannedAt.UTC().Unix())

		return nil
	})
	require.NoError(t, err)
}
