package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SaveRun stores a finished scan run and its hits in one transaction.
func (s *SQLiteDB) SaveRun(ctx context.Context, run *Run, hits []Hit) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	if run.ConfigJSON == "" {
		run.ConfigJSON = "{}"
	}
	return s.withRetry(ctx, func(ctx context.Context) error {
		return s.saveRunTx(ctx, run, hits)
	})
}

func (s *SQLiteDB) saveRunTx(ctx context.Context, run *Run, hits []Hit) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin run write: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO runs (
		id, game, server_seed_hash, client_seed, nonce_start, nonce_end,
		config_json, target_op, target_val, target_val2, tolerance, filter, hit_limit, timed_out,
		hit_count, total_evaluated, summary_min, summary_max, summary_sum, summary_count,
		engine_version, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Game, run.ServerSeedHash, run.ClientSeed, run.NonceStart, run.NonceEnd,
		run.ConfigJSON, run.TargetOp, run.TargetVal, run.TargetVal2, run.Tolerance, run.Filter,
		run.HitLimit, run.TimedOut, run.HitCount, run.TotalEvaluated,
		run.SummaryMin, run.SummaryMax, run.SummarySum, run.SummaryCount,
		run.EngineVersion, toMillis(run.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	if len(hits) > 0 {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO hits (run_id, nonce, metric, details) VALUES (?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare hits: %w", err)
		}
		defer stmt.Close()
		for _, h := range hits {
			if _, err := stmt.ExecContext(ctx, run.ID, h.Nonce, h.Metric, h.Details); err != nil {
				return fmt.Errorf("insert hit %d: %w", h.Nonce, err)
			}
		}
	}
	return tx.Commit()
}

const runColumns = `id, game, server_seed_hash, client_seed, nonce_start, nonce_end,
	config_json, target_op, target_val, target_val2, tolerance, filter, hit_limit, timed_out,
	hit_count, total_evaluated, summary_min, summary_max, summary_sum, summary_count,
	engine_version, created_at`

func scanRun(row rowScanner) (Run, error) {
	var (
		run                    Run
		summaryMin, summaryMax sql.NullFloat64
		summarySum             sql.NullFloat64
		created                int64
	)
	err := row.Scan(
		&run.ID, &run.Game, &run.ServerSeedHash, &run.ClientSeed, &run.NonceStart, &run.NonceEnd,
		&run.ConfigJSON, &run.TargetOp, &run.TargetVal, &run.TargetVal2, &run.Tolerance, &run.Filter,
		&run.HitLimit, &run.TimedOut, &run.HitCount, &run.TotalEvaluated,
		&summaryMin, &summaryMax, &summarySum, &run.SummaryCount,
		&run.EngineVersion, &created,
	)
	if err != nil {
		return Run{}, err
	}
	if summaryMin.Valid {
		run.SummaryMin = &summaryMin.Float64
	}
	if summaryMax.Valid {
		run.SummaryMax = &summaryMax.Float64
	}
	if summarySum.Valid {
		run.SummarySum = &summarySum.Float64
	}
	run.CreatedAt = fromMillis(created)
	return run, nil
}

// GetRun loads a scan run by id.
func (s *SQLiteDB) GetRun(ctx context.Context, id string) (*Run, error) {
	run, err := scanRun(s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return &run, nil
}

// ListRuns returns scan runs newest first, optionally filtered by game.
func (s *SQLiteDB) ListRuns(ctx context.Context, q RunsQuery) (*RunsList, error) {
	page := q.Page.normalize(50)

	where := ""
	args := []any{}
	if q.Game != "" {
		where = " WHERE game = ?"
		args = append(args, q.Game)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs`+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count runs: %w", err)
	}

	args = append(args, page.PerPage, page.offset())
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs`+where+` ORDER BY created_at DESC, id LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	return &RunsList{
		Runs:       runs,
		TotalCount: total,
		Page:       page.Page,
		PerPage:    page.PerPage,
		TotalPages: totalPages(total, page.PerPage),
	}, nil
}

// GetRunHits returns one page of hits ordered by nonce, each with the nonce
// distance to the hit before it (across page boundaries).
func (s *SQLiteDB) GetRunHits(ctx context.Context, runID string, page Page) (*HitsPage, error) {
	page = page.normalize(100)

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM hits WHERE run_id = ?`, runID).Scan(&total); err != nil {
		return nil, fmt.Errorf("count hits: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_id, nonce, metric, details FROM hits WHERE run_id = ? ORDER BY nonce LIMIT ? OFFSET ?`,
		runID, page.PerPage, page.offset())
	if err != nil {
		return nil, fmt.Errorf("query hits: %w", err)
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		var h Hit
		if err := rows.Scan(&h.ID, &h.RunID, &h.Nonce, &h.Metric, &h.Details); err != nil {
			return nil, fmt.Errorf("scan hit: %w", err)
		}
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate hits: %w", err)
	}

	out := make([]HitWithDelta, len(hits))
	for i, h := range hits {
		out[i] = HitWithDelta{Hit: h}
		switch {
		case i > 0:
			d := h.Nonce - hits[i-1].Nonce
			out[i].DeltaNonce = &d
		case page.Page > 1:
			var prev uint64
			err := s.db.QueryRowContext(ctx,
				`SELECT nonce FROM hits WHERE run_id = ? AND nonce < ? ORDER BY nonce DESC LIMIT 1`,
				runID, h.Nonce).Scan(&prev)
			if err == nil {
				d := h.Nonce - prev
				out[i].DeltaNonce = &d
			} else if !errors.Is(err, sql.ErrNoRows) {
				return nil, fmt.Errorf("previous hit: %w", err)
			}
		}
	}

	return &HitsPage{
		Hits:       out,
		TotalCount: total,
		Page:       page.Page,
		PerPage:    page.PerPage,
		TotalPages: totalPages(total, page.PerPage),
	}, nil
}
