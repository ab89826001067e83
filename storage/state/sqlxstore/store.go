package sqlxstore

import (
	"context"
	"database/sql"
	"embed"
	"net/url"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/skillforge/gateway/core"
	"github.com/skillforge/gateway/storage/state"
)

//go:embed migrations/*.sql
var Migrations embed.FS

// Store is a Postgres-backed state store with lazy expiry on read.
type Store struct {
	db *sqlx.DB

	NowFunc func() time.Time // mockable
}

var _ state.Store = (*Store)(nil)

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db, NowFunc: time.Now}
}

// Open connects to the state database and waits for it to be ready.
func Open(conf core.DatabaseConfig) (*sqlx.DB, error) {
	sslMode := "require"
	if conf.DisableTLS {
		sslMode = "disable"
	}
	q := make(url.Values)
	q.Set("sslmode", sslMode)
	q.Set("timezone", "utc")

	u := url.URL{
		Scheme:   conf.Engine,
		User:     url.UserPassword(conf.User, conf.Password),
		Host:     conf.Address(),
		Path:     conf.Name,
		RawQuery: q.Encode(),
	}
	db, err := sqlx.Open(conf.Engine, u.String())
	if err != nil {
		return nil, errors.Wrap(err, "opening state database")
	}
	if err = ping(db); err != nil {
		return nil, err
	}
	return db, nil
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(db *sqlx.DB) error {
	var err error
	maxAttempts := 30
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		err = db.Ping()
		if err == nil {
			break
		}
		time.Sleep(time.Duration(attempts) * 100 * time.Millisecond)
	}
	return errors.Wrap(err, "DB ping timeout")
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var row struct {
		Value     []byte       `db:"value"`
		ExpiresAt sql.NullTime `db:"expires_at"`
	}
	err := s.db.GetContext(ctx, &row,
		`SELECT value, expires_at FROM state_entries WHERE key = $1`, key)
	if err == sql.ErrNoRows {
		return nil, state.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "reading state entry")
	}
	if row.ExpiresAt.Valid && !s.NowFunc().Before(row.ExpiresAt.Time) {
		// expired; reap lazily
		_, _ = s.db.ExecContext(ctx, `DELETE FROM state_entries WHERE key = $1`, key)
		return nil, state.ErrNotFound
	}
	return row.Value, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	var expiresAt sql.NullTime
	if ttl > 0 {
		expiresAt = sql.NullTime{Time: s.NowFunc().Add(ttl), Valid: true}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO state_entries (key, value, expires_at) VALUES ($1, $2, $3)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, expires_at = EXCLUDED.expires_at`,
		key, value, expiresAt)
	return errors.Wrap(err, "writing state entry")
}

func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM state_entries WHERE key = $1`, key)
	return errors.Wrap(err, "deleting state entry")
}
