package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	"github.com/sethvargo/go-retry"
	"go.uber.org/multierr"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var ErrRevealed = errors.New("store: seed pair already revealed")

const (
	busyRetries   = 5
	busyBaseDelay = 10 * time.Millisecond
)

// SQLiteDB persists seed pairs and scan runs in a single SQLite file.
type SQLiteDB struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies all
// pending migrations.
func Open(ctx context.Context, path string) (*SQLiteDB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("store: database path is required")
	}
	dsn := "file:" + filepath.Clean(path) +
		"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_pragma=synchronous(NORMAL)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, multierr.Append(fmt.Errorf("ping sqlite db: %w", err), db.Close())
	}

	s := &SQLiteDB{db: db}
	if err := s.Migrate(ctx); err != nil {
		return nil, multierr.Append(err, db.Close())
	}
	return s, nil
}

// Migrate applies pending migrations. Running it again is a no-op.
func (s *SQLiteDB) Migrate(ctx context.Context) error {
	sub, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("migrations fs: %w", err)
	}
	provider, err := goose.NewProvider(goose.DialectSQLite3, s.db, sub)
	if err != nil {
		return fmt.Errorf("migration provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// Ping reports whether the database is reachable.
func (s *SQLiteDB) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close checkpoints the WAL and closes the database.
func (s *SQLiteDB) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	_, cerr := s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
	return multierr.Combine(cerr, s.db.Close())
}

// withRetry runs fn, retrying with exponential backoff while SQLite reports
// the database as busy or locked.
func (s *SQLiteDB) withRetry(ctx context.Context, fn func(context.Context) error) error {
	backoff := retry.WithMaxRetries(busyRetries, retry.NewExponential(busyBaseDelay))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := fn(ctx)
		if isBusy(err) {
			return retry.RetryableError(err)
		}
		return err
	})
}

func isBusy(err error) bool {
	var serr *sqlite.Error
	if !errors.As(err, &serr) {
		return false
	}
	code := serr.Code() & 0xff
	return code == sqlite3.SQLITE_BUSY || code == sqlite3.SQLITE_LOCKED
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

type rowScanner interface {
	Scan(dest ...any) error
}

// CreateSeedPair inserts p, assigning an id and creation time when unset.
func (s *SQLiteDB) CreateSeedPair(ctx context.Context, p *SeedPair) error {
	if p.Commitment == "" {
		return errors.New("store: commitment is required")
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	return s.withRetry(ctx, func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO seed_pairs (id, client_seed, commitment, nonce, created_at) VALUES (?, ?, ?, ?, ?)`,
			p.ID, p.ClientSeed, p.Commitment, p.Nonce, toMillis(p.CreatedAt))
		if err != nil {
			return fmt.Errorf("insert seed pair: %w", err)
		}
		return nil
	})
}

const seedPairColumns = `id, client_seed, commitment, nonce, server_seed, created_at, revealed_at`

func scanSeedPair(row rowScanner) (SeedPair, error) {
	var (
		p          SeedPair
		serverSeed sql.NullString
		created    int64
		revealed   sql.NullInt64
	)
	if err := row.Scan(&p.ID, &p.ClientSeed, &p.Commitment, &p.Nonce, &serverSeed, &created, &revealed); err != nil {
		return SeedPair{}, err
	}
	p.ServerSeed = serverSeed.String
	p.CreatedAt = fromMillis(created)
	if revealed.Valid {
		t := fromMillis(revealed.Int64)
		p.RevealedAt = &t
	}
	return p, nil
}

// GetSeedPair loads a seed pair by id.
func (s *SQLiteDB) GetSeedPair(ctx context.Context, id string) (*SeedPair, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+seedPairColumns+` FROM seed_pairs WHERE id = ?`, id)
	p, err := scanSeedPair(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get seed pair: %w", err)
	}
	return &p, nil
}

// IncrementNonce atomically claims the next nonce of an unrevealed pair and
// returns it. The first bet on a pair uses nonce 0.
func (s *SQLiteDB) IncrementNonce(ctx context.Context, id string) (uint64, error) {
	var nonce uint64
	err := s.withRetry(ctx, func(ctx context.Context) error {
		err := s.db.QueryRowContext(ctx,
			`UPDATE seed_pairs SET nonce = nonce + 1
			 WHERE id = ? AND revealed_at IS NULL
			 RETURNING nonce - 1`, id).Scan(&nonce)
		if errors.Is(err, sql.ErrNoRows) {
			return s.missingOrRevealed(ctx, id)
		}
		if err != nil {
			return fmt.Errorf("increment nonce: %w", err)
		}
		return nil
	})
	return nonce, err
}

// RevealSeedPair records the server seed of a pair and marks it revealed.
func (s *SQLiteDB) RevealSeedPair(ctx context.Context, id, serverSeed string) error {
	return s.withRetry(ctx, func(ctx context.Context) error {
		res, err := s.db.ExecContext(ctx,
			`UPDATE seed_pairs SET server_seed = ?, revealed_at = ?
			 WHERE id = ? AND revealed_at IS NULL`,
			serverSeed, toMillis(time.Now()), id)
		if err != nil {
			return fmt.Errorf("reveal seed pair: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("reveal seed pair: %w", err)
		}
		if n == 0 {
			return s.missingOrRevealed(ctx, id)
		}
		return nil
	})
}

// DeleteSeedPair removes a pair that was never revealed. Revealed pairs
// are history and stay.
func (s *SQLiteDB) DeleteSeedPair(ctx context.Context, id string) error {
	return s.withRetry(ctx, func(ctx context.Context) error {
		res, err := s.db.ExecContext(ctx,
			`DELETE FROM seed_pairs WHERE id = ? AND revealed_at IS NULL`, id)
		if err != nil {
			return fmt.Errorf("delete seed pair: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("delete seed pair: %w", err)
		}
		if n == 0 {
			return s.missingOrRevealed(ctx, id)
		}
		return nil
	})
}

func (s *SQLiteDB) missingOrRevealed(ctx context.Context, id string) error {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM seed_pairs WHERE id = ?`, id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("lookup seed pair: %w", err)
	}
	return ErrRevealed
}

// ListSeedPairs returns seed pairs newest first.
func (s *SQLiteDB) ListSeedPairs(ctx context.Context, page Page) (*SeedPairsList, error) {
	page = page.normalize(50)

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM seed_pairs`).Scan(&total); err != nil {
		return nil, fmt.Errorf("count seed pairs: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+seedPairColumns+` FROM seed_pairs ORDER BY created_at DESC, id LIMIT ? OFFSET ?`,
		page.PerPage, page.offset())
	if err != nil {
		return nil, fmt.Errorf("query seed pairs: %w", err)
	}
	defer rows.Close()

	pairs := []SeedPair{}
	for rows.Next() {
		p, err := scanSeedPair(rows)
		if err != nil {
			return nil, fmt.Errorf("scan seed pair: %w", err)
		}
		pairs = append(pairs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate seed pairs: %w", err)
	}

	return &SeedPairsList{
		SeedPairs:  pairs,
		TotalCount: total,
		Page:       page.Page,
		PerPage:    page.PerPage,
		TotalPages: totalPages(total, page.PerPage),
	}, nil
}
