package source

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/talentops/creator-sync/internal/model"
)

// Postgres implements Provider on a pgx connection pool.
type Postgres struct {
	pool Pool
}

// NewPostgres connects a pool to the given DSN and verifies it with a ping.
func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, eris.Wrap(err, "source: parse postgres config")
	}
	cfg.MaxConns = 4
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, eris.Wrap(err, "source: create postgres pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "source: ping postgres")
	}
	return &Postgres{pool: pool}, nil
}

// NewPostgresFromPool wraps an existing pool (tests use pgxmock here).
func NewPostgresFromPool(pool Pool) *Postgres {
	return &Postgres{pool: pool}
}

// Pool exposes the underlying pool for subsystems that share the
// connection, such as the run log.
func (p *Postgres) Pool() Pool {
	return p.pool
}

const listCreatorsSQL = `
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
LIMIT $1`

// ListCreators reads one bounded snapshot ordered by user ID.
func (p *Postgres) ListCreators(ctx context.Context, limit int) ([]model.Creator, error) {
	rows, err := p.pool.Query(ctx, listCreatorsSQL, limit)
	if err != nil {
		return nil, eris.Wrap(err, "source: list creators")
	}
	defer rows.Close()

	var creators []model.Creator
	for rows.Next() {
		var c model.Creator
		var statsAsOf *time.Time
		if err := rows.Scan(
			&c.UserID, &c.PhoneRaw, &c.TikTokUsername, &c.RealFirstName,
			&c.AgencyStatus, &c.RoleTag, &c.GroupRaw, &c.ManagerRaw,
			&c.TierTag, &c.ProfilePicURL, &statsAsOf,
			&c.DiamondsMTD, &c.ValidDaysMTD, &c.LiveDurationMTDHours,
			&c.Lifecycle,
		); err != nil {
			return nil, eris.Wrap(err, "source: scan creator")
		}
		if statsAsOf != nil {
			c.StatsAsOf = *statsAsOf
		}
		creators = append(creators, c)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "source: iterate creators")
	}
	return creators, nil
}

// Close releases the pool.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}
