package tests

import (
	"context"
	"log"
	"os"
	"testing"

	"github.com/forze-dev/QRHUB-Server/app/dto"
	businessflow "github.com/forze-dev/QRHUB-Server/business_flow"
	"github.com/forze-dev/QRHUB-Server/models"
	"github.com/forze-dev/QRHUB-Server/repository"
	testingutil "github.com/forze-dev/QRHUB-Server/testing"
	"github.com/forze-dev/QRHUB-Server/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newQRCodeFlow(testDB *testingutil.TestDB) businessflow.QRCodeFlow {
	logger := log.New(os.Stdout, "", log.LstdFlags)
	return businessflow.NewQRCodeFlow(
		testDB.DB,
		repository.NewQRCodeRepository(testDB.DB),
		repository.NewWebsiteRepository(testDB.DB),
		repository.NewBusinessRepository(testDB.DB),
		"https://qrhub.io",
		logger,
	)
}

func TestQRCodeFlowCreate(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		flow := newQRCodeFlow(testDB)
		ctx := context.Background()

		t.Run("GeneratesShortCode", func(t *testing.T) {
			business, err := fixtures.CreateTestBusiness()
			require.NoError(t, err)
			website, err := fixtures.CreateTestWebsite(business.ID)
			require.NoError(t, err)

			resp, err := flow.Create(ctx, &dto.CreateQRCodeRequest{
				BusinessID:  business.ID,
				WebsiteUUID: website.UUID.String(),
				Name:        "Shop window",
				TargetURL:   "https://example.com/shop",
			})
			require.NoError(t, err)
			assert.NotEmpty(t, resp.UUID)
			assert.Len(t, resp.ShortCode, 8)
			assert.Equal(t, "active", resp.Status)
			assert.True(t, resp.IsActive)
			assert.Contains(t, resp.ScanURL, "https://qrhub.io/s/"+resp.ShortCode)
		})

		t.Run("CarriesCustomColors", func(t *testing.T) {
			business, err := fixtures.CreateTestBusiness()
			require.NoError(t, err)
			website, err := fixtures.CreateTestWebsite(business.ID)
			require.NoError(t, err)

			resp, err := flow.Create(ctx, &dto.CreateQRCodeRequest{
				BusinessID:      business.ID,
				WebsiteUUID:     website.UUID.String(),
				Name:            "Branded",
				TargetURL:       "https://example.com/branded",
				PrimaryColor:    utils.ToPtr("#1A2B3C"),
				BackgroundColor: utils.ToPtr("#FAFAFA"),
			})
			require.NoError(t, err)

			fetched, err := flow.Get(ctx, business.ID, resp.UUID)
			require.NoError(t, err)
			require.NotNil(t, fetched.PrimaryColor)
			assert.Equal(t, "#1A2B3C", *fetched.PrimaryColor)
			require.NotNil(t, fetched.BackgroundColor)
			assert.Equal(t, "#FAFAFA", *fetched.BackgroundColor)
		})

		t.Run("AcceptsCustomShortCode", func(t *testing.T) {
			business, err := fixtures.CreateTestBusiness()
			require.NoError(t, err)
			website, err := fixtures.CreateTestWebsite(business.ID)
			require.NoError(t, err)

			code := "my-custom-code"
			resp, err := flow.Create(ctx, &dto.CreateQRCodeRequest{
				BusinessID:  business.ID,
				WebsiteUUID: website.UUID.String(),
				Name:        "Custom",
				TargetURL:   "https://example.com",
				ShortCode:   &code,
			})
			require.NoError(t, err)
			assert.Equal(t, code, resp.ShortCode)
		})

		t.Run("EnforcesOneActivePerWebsite", func(t *testing.T) {
			business, err := fixtures.CreateTestBusiness()
			require.NoError(t, err)
			website, err := fixtures.CreateTestWebsite(business.ID)
			require.NoError(t, err)

			req := &dto.CreateQRCodeRequest{
				BusinessID:  business.ID,
				WebsiteUUID: website.UUID.String(),
				Name:        "First",
				TargetURL:   "https://example.com",
			}
			_, err = flow.Create(ctx, req)
			require.NoError(t, err)

			_, err = flow.Create(ctx, req)
			assert.True(t, businessflow.IsActiveQRCodeExists(err))
		})

		t.Run("RejectsInvalidTargetURL", func(t *testing.T) {
			business, err := fixtures.CreateTestBusiness()
			require.NoError(t, err)
			website, err := fixtures.CreateTestWebsite(business.ID)
			require.NoError(t, err)

			for _, u := range []string{"example.com", "ftp://example.com", "javascript:alert(1)"} {
				_, err = flow.Create(ctx, &dto.CreateQRCodeRequest{
					BusinessID:  business.ID,
					WebsiteUUID: website.UUID.String(),
					Name:        "Bad",
					TargetURL:   u,
				})
				assert.True(t, businessflow.IsInvalidTargetURL(err), u)
			}
		})

		t.Run("RejectsInactiveBusiness", func(t *testing.T) {
			business, err := fixtures.CreateTestBusiness()
			require.NoError(t, err)
			website, err := fixtures.CreateTestWebsite(business.ID)
			require.NoError(t, err)
			require.NoError(t, testDB.DB.Model(&models.Business{}).Where("id = ?", business.ID).
				Update("is_active", false).Error)

			_, err = flow.Create(ctx, &dto.CreateQRCodeRequest{
				BusinessID:  business.ID,
				WebsiteUUID: website.UUID.String(),
				Name:        "Suspended",
				TargetURL:   "https://example.com",
			})
			require.Error(t, err)
			assert.ErrorIs(t, err, businessflow.ErrBusinessInactive)
		})

		t.Run("RejectsForeignWebsite", func(t *testing.T) {
			business, err := fixtures.CreateTestBusiness()
			require.NoError(t, err)
			otherBusiness, err := fixtures.CreateTestBusiness()
			require.NoError(t, err)
			otherWebsite, err := fixtures.CreateTestWebsite(otherBusiness.ID)
			require.NoError(t, err)

			_, err = flow.Create(ctx, &dto.CreateQRCodeRequest{
				BusinessID:  business.ID,
				WebsiteUUID: otherWebsite.UUID.String(),
				Name:        "Foreign",
				TargetURL:   "https://example.com",
			})
			assert.True(t, businessflow.IsWebsiteNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestQRCodeFlowLifecycle(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		flow := newQRCodeFlow(testDB)
		ctx := context.Background()

		business, _, qr, err := fixtures.CreateScannableSetup()
		require.NoError(t, err)

		t.Run("GetOwned", func(t *testing.T) {
			resp, err := flow.Get(ctx, business.ID, qr.UUID.String())
			require.NoError(t, err)
			assert.Equal(t, qr.ShortCode, resp.ShortCode)
		})

		t.Run("GetForeignReportsNotFound", func(t *testing.T) {
			other, err := fixtures.CreateTestBusiness()
			require.NoError(t, err)

			_, err = flow.Get(ctx, other.ID, qr.UUID.String())
			assert.True(t, businessflow.IsQRCodeNotFound(err))
		})

		t.Run("GetUnknownUUID", func(t *testing.T) {
			_, err := flow.Get(ctx, business.ID, uuid.NewString())
			assert.True(t, businessflow.IsQRCodeNotFound(err))

			_, err = flow.Get(ctx, business.ID, "not-a-uuid")
			assert.True(t, businessflow.IsQRCodeNotFound(err))
		})

		t.Run("List", func(t *testing.T) {
			resp, err := flow.List(ctx, &dto.ListQRCodesRequest{BusinessID: business.ID})
			require.NoError(t, err)
			assert.Equal(t, int64(1), resp.Total)
			require.Len(t, resp.Items, 1)
			assert.Equal(t, qr.ShortCode, resp.Items[0].ShortCode)
		})

		t.Run("UpdateStatusDeactivates", func(t *testing.T) {
			resp, err := flow.UpdateStatus(ctx, &dto.UpdateQRCodeStatusRequest{
				UUID:       qr.UUID.String(),
				BusinessID: business.ID,
				Status:     "inactive",
			})
			require.NoError(t, err)
			assert.Equal(t, "inactive", resp.Status)
			assert.False(t, resp.IsActive)

			found, err := repository.NewQRCodeRepository(testDB.DB).FindActiveByShortCode(ctx, qr.ShortCode)
			require.NoError(t, err)
			assert.Nil(t, found)
		})

		t.Run("DeleteSoftDeletes", func(t *testing.T) {
			require.NoError(t, flow.Delete(ctx, business.ID, qr.UUID.String()))

			_, err := flow.Get(ctx, business.ID, qr.UUID.String())
			assert.True(t, businessflow.IsQRCodeNotFound(err))

			var count int64
			require.NoError(t, testDB.DB.Unscoped().Model(&models.QRCode{}).Where("id = ?", qr.ID).Count(&count).Error)
			assert.Equal(t, int64(1), count)
		})

		return nil
	})
	require.NoError(t, err)
}
