package downloadrequest

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/corpsite/corpsite/internal/db/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err, "failed to create test database")
	require.NoError(t, db.AutoMigrate(&models.DownloadRequest{}), "failed to migrate test database")

	return db
}

func request(ref, status string, at time.Time) *models.DownloadRequest {
	return &models.DownloadRequest{
		Reference:     ref,
		Kind:          "tender",
		ResourceID:    "T-2024-001",
		ResourceTitle: "Supply of Industrial Boilers",
		CompanyName:   "Acme Ltd",
		ContactPerson: "Jane Doe",
		Email:         "jane@acme.test",
		Phone:         "+1 555 0100",
		Address:       "1 Main St",
		Notification:  status,
		CreatedAt:     at,
	}
}

func TestCreate(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	testCases := []struct {
		name    string
		db      *gorm.DB
		req     *models.DownloadRequest
		wantErr error
	}{
		{name: "nil database", req: request("A", "delivered", time.Now()), wantErr: ErrDBNil},
		{name: "empty reference", db: db, req: request("", "delivered", time.Now()), wantErr: ErrReferenceEmpty},
		{name: "stored", db: db, req: request("ABCDEFGH23", "delivered", time.Now())},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := Create(ctx, tc.db, tc.req)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}

			require.NoError(t, err)
			assert.NotZero(t, tc.req.ID)
		})
	}

	require.Error(t, Create(ctx, db, request("ABCDEFGH23", "failed", time.Now())), "reference is unique")
}

func TestGetByReference(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, Create(ctx, db, request("REF2345678", "failed", time.Now())))

	got, err := GetByReference(ctx, db, "REF2345678")
	require.NoError(t, err)
	assert.Equal(t, "Acme Ltd", got.CompanyName)
	assert.Equal(t, "failed", got.Notification)

	_, err = GetByReference(ctx, db, "NOPE")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = GetByReference(ctx, db, "")
	require.ErrorIs(t, err, ErrReferenceEmpty)

	_, err = GetByReference(ctx, nil, "REF2345678")
	require.ErrorIs(t, err, ErrDBNil)
}

func TestRecentNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, ref := range []string{"R1", "R2", "R3"} {
		require.NoError(t, Create(ctx, db, request(ref, "delivered", base.Add(time.Duration(i)*time.Minute))))
	}

	got, err := Recent(ctx, db, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "R3", got[0].Reference)
	assert.Equal(t, "R2", got[1].Reference)

	all, err := Recent(ctx, db, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestSummary(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	now := time.Date(2024, 3, 2, 12, 0, 0, 0, time.UTC)

	require.NoError(t, Create(ctx, db, request("S1", "delivered", now.Add(-time.Hour))))
	require.NoError(t, Create(ctx, db, request("S2", "failed", now.Add(-2*time.Hour))))
	require.NoError(t, Create(ctx, db, request("S3", "delivered", now.Add(-48*time.Hour))))

	stats, err := Summary(ctx, db, now)
	require.NoError(t, err)
	assert.Equal(t, Stats{Total: 3, Delivered: 2, Failed: 1, Last24h: 2}, stats)

	_, err = Summary(ctx, nil, now)
	require.ErrorIs(t, err, ErrDBNil)
}
