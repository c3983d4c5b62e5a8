package tests

import (
	"strings"
	"testing"
	"time"

	"github.com/forze-dev/QRHUB-Server/models"
	"github.com/forze-dev/QRHUB-Server/repository"
	testingutil "github.com/forze-dev/QRHUB-Server/testing"
	"github.com/forze-dev/QRHUB-Server/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQRCodeRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		repo := repository.NewQRCodeRepository(testDB.DB)
		ctx := testingutil.CreateTestContext()

		t.Run("FindActiveByShortCode", func(t *testing.T) {
			_, _, qr, err := fixtures.CreateScannableSetup()
			require.NoError(t, err)

			found, err := repo.FindActiveByShortCode(ctx, qr.ShortCode)
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, qr.ID, found.ID)
		})

		t.Run("LookupIsCaseInsensitive", func(t *testing.T) {
			_, _, qr, err := fixtures.CreateScannableSetup()
			require.NoError(t, err)

			upper, err := repo.FindActiveByShortCode(ctx, strings.ToUpper(qr.ShortCode))
			require.NoError(t, err)
			require.NotNil(t, upper)
			assert.Equal(t, qr.ID, upper.ID)
		})

		t.Run("UnknownCodeReturnsNil", func(t *testing.T) {
			found, err := repo.FindActiveByShortCode(ctx, "zzzz9999")
			require.NoError(t, err)
			assert.Nil(t, found)
		})

		t.Run("DeactivatedCodeBehavesLikeMissing", func(t *testing.T) {
			_, _, qr, err := fixtures.CreateScannableSetup()
			require.NoError(t, err)

			require.NoError(t, repo.UpdateStatus(ctx, qr.ID, models.QRCodeStatusInactive, false))

			found, err := repo.FindActiveByShortCode(ctx, qr.ShortCode)
			require.NoError(t, err)
			assert.Nil(t, found)
		})

		t.Run("SoftDeletedCodeBehavesLikeMissing", func(t *testing.T) {
			_, _, qr, err := fixtures.CreateScannableSetup()
			require.NoError(t, err)

			require.NoError(t, repo.SoftDelete(ctx, qr.ID))

			found, err := repo.FindActiveByShortCode(ctx, qr.ShortCode)
			require.NoError(t, err)
			assert.Nil(t, found)

			// The row itself survives for historical events.
			var count int64
			require.NoError(t, testDB.DB.Unscoped().Model(&models.QRCode{}).Where("id = ?", qr.ID).Count(&count).Error)
			assert.Equal(t, int64(1), count)
		})

		t.Run("IncrementScans", func(t *testing.T) {
			_, _, qr, err := fixtures.CreateScannableSetup()
			require.NoError(t, err)

			now := utils.UTCNow()
			require.NoError(t, repo.IncrementScans(ctx, qr.ID, true, now))
			require.NoError(t, repo.IncrementScans(ctx, qr.ID, false, now.Add(time.Second)))

			reloaded, err := repo.ByID(ctx, qr.ID)
			require.NoError(t, err)
			require.NotNil(t, reloaded)
			assert.Equal(t, int64(2), reloaded.TotalScans)
			assert.Equal(t, int64(1), reloaded.UniqueScans)
			require.NotNil(t, reloaded.LastScanAt)
		})

		t.Run("CountActiveByWebsite", func(t *testing.T) {
			_, website, qr, err := fixtures.CreateScannableSetup()
			require.NoError(t, err)

			count, err := repo.CountActiveByWebsite(ctx, website.ID)
			require.NoError(t, err)
			assert.Equal(t, int64(1), count)

			require.NoError(t, repo.UpdateStatus(ctx, qr.ID, models.QRCodeStatusArchived, false))

			count, err = repo.CountActiveByWebsite(ctx, website.ID)
			require.NoError(t, err)
			assert.Zero(t, count)
		})

		t.Run("ByUUID", func(t *testing.T) {
			_, _, qr, err := fixtures.CreateScannableSetup()
			require.NoError(t, err)

			found, err := repo.ByUUID(ctx, qr.UUID)
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, qr.ShortCode, found.ShortCode)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestScanEventRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		repo := repository.NewScanEventRepository(testDB.DB)
		ctx := testingutil.CreateTestContext()

		t.Run("CountRecent", func(t *testing.T) {
			_, _, qr, err := fixtures.CreateScannableSetup()
			require.NoError(t, err)

			now := utils.UTCNow()
			for i := 0; i < 3; i++ {
				_, err := fixtures.CreateTestScanEvent(qr, "fp-recent", false, now.Add(-time.Duration(i)*10*time.Second))
				require.NoError(t, err)
			}
			_, err = fixtures.CreateTestScanEvent(qr, "fp-recent", false, now.Add(-10*time.Minute))
			require.NoError(t, err)

			count, err := repo.CountRecent(ctx, qr.ID, "203.0.113.10", now.Add(-time.Minute))
			require.NoError(t, err)
			assert.Equal(t, int64(3), count)

			count, err = repo.CountRecent(ctx, qr.ID, "198.51.100.1", now.Add(-time.Minute))
			require.NoError(t, err)
			assert.Zero(t, count)
		})

		t.Run("ExistsTodayFor", func(t *testing.T) {
			_, _, qr, err := fixtures.CreateScannableSetup()
			require.NoError(t, err)

			now := utils.UTCNow()

			seen, err := repo.ExistsTodayFor(ctx, qr.ID, "fp-today", now)
			require.NoError(t, err)
			assert.False(t, seen)

			_, err = fixtures.CreateTestScanEvent(qr, "fp-today", true, now)
			require.NoError(t, err)

			seen, err = repo.ExistsTodayFor(ctx, qr.ID, "fp-today", now)
			require.NoError(t, err)
			assert.True(t, seen)

			// A different fingerprint on the same code is still unseen.
			seen, err = repo.ExistsTodayFor(ctx, qr.ID, "fp-other", now)
			require.NoError(t, err)
			assert.False(t, seen)
		})

		t.Run("YesterdayDoesNotCount", func(t *testing.T) {
			_, _, qr, err := fixtures.CreateScannableSetup()
			require.NoError(t, err)

			now := utils.UTCNow()
			yesterday := utils.DayStartUTC(now).Add(-time.Hour)
			_, err = fixtures.CreateTestScanEvent(qr, "fp-yesterday", true, yesterday)
			require.NoError(t, err)

			seen, err := repo.ExistsTodayFor(ctx, qr.ID, "fp-yesterday", now)
			require.NoError(t, err)
			assert.False(t, seen)
		})

		t.Run("AggregateByDimension", func(t *testing.T) {
			_, _, qr, err := fixtures.CreateScannableSetup()
			require.NoError(t, err)

			now := utils.UTCNow()
			for i := 0; i < 2; i++ {
				_, err := fixtures.CreateTestScanEvent(qr, "fp-dim", i == 0, now)
				require.NoError(t, err)
			}

			filter := models.ScanEventFilter{QRCodeID: &qr.ID}
			byCountry, err := repo.AggregateByDimension(ctx, filter, "country")
			require.NoError(t, err)
			require.Len(t, byCountry, 1)
			assert.Equal(t, "Germany", byCountry[0].Value)
			assert.Equal(t, int64(2), byCountry[0].Count)

			byDevice, err := repo.AggregateByDimension(ctx, filter, "device")
			require.NoError(t, err)
			require.Len(t, byDevice, 1)
			assert.Equal(t, "iOS", byDevice[0].Value)

			_, err = repo.AggregateByDimension(ctx, filter, "ip_address")
			assert.Error(t, err)
		})

		t.Run("AggregateByDay", func(t *testing.T) {
			_, _, qr, err := fixtures.CreateScannableSetup()
			require.NoError(t, err)

			day1 := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
			day2 := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)

			_, err = fixtures.CreateTestScanEvent(qr, "fp-d1", true, day1)
			require.NoError(t, err)
			_, err = fixtures.CreateTestScanEvent(qr, "fp-d1", false, day1.Add(time.Hour))
			require.NoError(t, err)
			_, err = fixtures.CreateTestScanEvent(qr, "fp-d2", true, day2)
			require.NoError(t, err)

			rows, err := repo.AggregateByDay(ctx, models.ScanEventFilter{QRCodeID: &qr.ID})
			require.NoError(t, err)
			require.Len(t, rows, 2)
			assert.Equal(t, int64(2), rows[0].TotalScans)
			assert.Equal(t, int64(1), rows[0].UniqueScans)
			assert.Equal(t, int64(1), rows[1].TotalScans)
			assert.True(t, rows[0].Day.Before(rows[1].Day))
		})

		return nil
	})
	require.NoError(t, err)
}
