package source

import (
	"context"
	"database/sql"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/talentops/creator-sync/internal/model"
)

// SQLite implements Provider on a local SQLite file, used for development
// and one-off runs against an exported snapshot.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens the database at the given DSN and configures WAL mode.
func NewSQLite(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "source: open sqlite")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "source: exec %s", pragma)
		}
	}
	return &SQLite{db: db}, nil
}

// DB exposes the underlying handle for migrations and tests.
func (s *SQLite) DB() *sql.DB {
	return s.db
}

const listCreatorsSQLite = `
SELECT user_id,
       COALESCE(phone_raw, ''),
       COALESCE(tiktok_username, ''),
       COALESCE(real_first_name, ''),
       COALESCE(agency_status, ''),
       COALESCE(role_tag, ''),
       COALESCE(group_raw, ''),
       COALESCE(manager_raw, ''),
       COALESCE(tier_tag, ''),
       COALESCE(profile_pic_url, ''),
       stats_as_of,
       COALESCE(diamonds_mtd, 0),
       COALESCE(valid_days_mtd, 0),
       COALESCE(live_duration_mtd_hours, 0),
       COALESCE(lifecycle, '')
FROM creators
ORDER BY user_id ASC
LIMIT ?`

// ListCreators reads one bounded snapshot ordered by user ID.
func (s *SQLite) ListCreators(ctx context.Context, limit int) ([]model.Creator, error) {
	rows, err := s.db.QueryContext(ctx, listCreatorsSQLite, limit)
	if err != nil {
		return nil, eris.Wrap(err, "source: list creators")
	}
	defer rows.Close() //nolint:errcheck

	var creators []model.Creator
	for rows.Next() {
		var c model.Creator
		var statsAsOf sql.NullString
		if err := rows.Scan(
			&c.UserID, &c.PhoneRaw, &c.TikTokUsername, &c.RealFirstName,
			&c.AgencyStatus, &c.RoleTag, &c.GroupRaw, &c.ManagerRaw,
			&c.TierTag, &c.ProfilePicURL, &statsAsOf,
			&c.DiamondsMTD, &c.ValidDaysMTD, &c.LiveDurationMTDHours,
			&c.Lifecycle,
		); err != nil {
			return nil, eris.Wrap(err, "source: scan creator")
		}
		if statsAsOf.Valid {
			if ts, err := parseSQLiteTime(statsAsOf.String); err == nil {
				c.StatsAsOf = ts
			}
		}
		creators = append(creators, c)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "source: iterate creators")
	}
	return creators, nil
}

// parseSQLiteTime accepts the formats SQLite commonly stores timestamps in.
func parseSQLiteTime(s string) (time.Time, error) {
	for _, layout := range []string{
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02",
	} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, eris.Errorf("source: unparsable timestamp %q", s)
}

// Close releases the database handle.
func (s *SQLite) Close() error {
	return s.db.Close()
}
