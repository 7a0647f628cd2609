package store

import (
	"database/sql"
	"fmt"
	"time"
)

const runColumns = `id, duration, started_at, ended_at, elapsed, status`

func (s *Store) BeginRun(duration int64, startedAt time.Time) (*Run, error) {
	res, err := s.db.Exec(
		`INSERT INTO runs (duration, started_at, status) VALUES (?, ?, ?)`,
		duration, startedAt.UTC().Format(time.RFC3339), StatusRunning,
	)
	if err != nil {
		return nil, fmt.Errorf("begin run: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.GetRun(id)
}

func (s *Store) GetRun(id int64) (*Run, error) {
	row := s.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	r, err := scanRun(row)
	if err != nil {
		return nil, fmt.Errorf("get run %d: %w", id, err)
	}
	return r, nil
}

// UpdateRunStatus changes the status of an open run.
func (s *Store) UpdateRunStatus(id int64, status string) error {
	res, err := s.db.Exec(
		`UPDATE runs SET status = ? WHERE id = ? AND ended_at IS NULL`, status, id,
	)
	if err != nil {
		return fmt.Errorf("update run %d: %w", id, err)
	}
	return expectOneRow(res, id)
}

// FinishRun closes a run with a terminal status.
func (s *Store) FinishRun(id int64, status string, endedAt time.Time, elapsed int64) error {
	res, err := s.db.Exec(
		`UPDATE runs SET status = ?, ended_at = ?, elapsed = ? WHERE id = ? AND ended_at IS NULL`,
		status, endedAt.UTC().Format(time.RFC3339), elapsed, id,
	)
	if err != nil {
		return fmt.Errorf("finish run %d: %w", id, err)
	}
	return expectOneRow(res, id)
}

func (s *Store) ListRuns(f RunFilter) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE 1=1`
	var args []any

	if f.Status != "" {
		query += ` AND status = ?`
		args = append(args, f.Status)
	}
	if f.From != nil {
		query += ` AND started_at >= ?`
		args = append(args, f.From.UTC().Format(time.RFC3339))
	}
	if f.To != nil {
		query += ` AND started_at < ?`
		args = append(args, f.To.UTC().Format(time.RFC3339))
	}
	query += ` ORDER BY started_at DESC, id DESC`
	if f.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, f.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}

// CompletedCount counts runs that completed and started in [from, to).
func (s *Store) CompletedCount(from, to time.Time) (int, error) {
	var n int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM runs
		WHERE status = ? AND started_at >= ? AND started_at < ?`,
		StatusCompleted, from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("completed count: %w", err)
	}
	return n, nil
}

// DailyCompleted returns one bucket per local day for the days ending on
// the day containing last, oldest first.
func (s *Store) DailyCompleted(last time.Time, days int) ([]DayCount, error) {
	if days <= 0 {
		return nil, nil
	}
	y, m, d := last.Date()
	end := time.Date(y, m, d, 0, 0, 0, 0, last.Location()).AddDate(0, 0, 1)
	start := end.AddDate(0, 0, -days)

	runs, err := s.ListRuns(RunFilter{Status: StatusCompleted, From: &start, To: &end})
	if err != nil {
		return nil, fmt.Errorf("daily completed: %w", err)
	}

	const dayKey = "2006-01-02"
	buckets := make([]DayCount, days)
	index := make(map[string]int, days)
	for i := range buckets {
		buckets[i].Date = start.AddDate(0, 0, i)
		index[buckets[i].Date.Format(dayKey)] = i
	}
	for _, r := range runs {
		if i, ok := index[r.StartedAt.In(last.Location()).Format(dayKey)]; ok {
			buckets[i].Count++
		}
	}
	return buckets, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*Run, error) {
	r := &Run{}
	var startedAt string
	var endedAt sql.NullString
	if err := sc.Scan(&r.ID, &r.Duration, &startedAt, &endedAt, &r.Elapsed, &r.Status); err != nil {
		return nil, err
	}
	r.StartedAt, _ = time.Parse(time.RFC3339, startedAt)
	if endedAt.Valid {
		t, _ := time.Parse(time.RFC3339, endedAt.String)
		r.EndedAt = &t
	}
	return r, nil
}

func expectOneRow(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("run %d: %w", id, ErrRunClosed)
	}
	return nil
}
