package source

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

var creatorColumns = []string{
	"user_id", "phone_raw", "tiktok_username", "real_first_name",
	"agency_status", "role_tag", "group_raw", "manager_raw",
	"tier_tag", "profile_pic_url", "stats_as_of",
	"diamonds_mtd", "valid_days_mtd", "live_duration_mtd_hours",
	"lifecycle",
}

func TestListCreators(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	statsAsOf := time.Date(2026, time.August, 3, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT user_id").
		WithArgs(500).
		WillReturnRows(pgxmock.NewRows(creatorColumns).
			AddRow(int64(5), "+447000000001", "creator_one", "Amira",
				"in_agency", "role_creator", "Alpha (Team Red)", "manager@agency.com",
				"Tier 1", "https://cdn.example.com/p.jpg", &statsAsOf,
				250000.0, 20.0, 41.5, "active").
			AddRow(int64(9), "447000000002", "", "",
				"", "", "", "",
				"", "", (*time.Time)(nil),
				0.0, 0.0, 0.0, ""))

	provider := NewPostgresFromPool(mock)
	creators, err := provider.ListCreators(context.Background(), 500)
	require.NoError(t, err)
	require.Len(t, creators, 2)

	assert.Equal(t, int64(5), creators[0].UserID)
	assert.Equal(t, "creator_one", creators[0].TikTokUsername)
	assert.Equal(t, "in_agency", creators[0].AgencyStatus)
	assert.Equal(t, statsAsOf, creators[0].StatsAsOf)
	assert.Equal(t, 250000.0, creators[0].DiamondsMTD)

	assert.Equal(t, int64(9), creators[1].UserID)
	assert.True(t, creators[1].StatsAsOf.IsZero())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListCreatorsQueryError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT user_id").
		WithArgs(10).
		WillReturnError(assert.AnError)

	provider := NewPostgresFromPool(mock)
	_, err = provider.ListCreators(context.Background(), 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list creators")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigratePostgres(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS creators").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, MigratePostgres(context.Background(), mock))
	assert.NoError(t, mock.ExpectationsWereMet())
}
