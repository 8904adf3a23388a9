package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ayusman/nayana/internal/stats"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// Session is a persisted run of the frame loop.
// EndedAt is zero and Reason empty while the session is still running.
type Session struct {
	ID        string    `json:"id"`
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	Pointer   string    `json:"pointer,omitempty"`
}

// Running reports whether the session has not been finished.
func (s *Session) Running() bool {
	return s.EndedAt.IsZero()
}

// SessionRepository provides access to sessions and their statistics.
type SessionRepository struct {
	db *sql.DB
}

// Sessions returns the session repository for this store.
func (s *Store) Sessions() *SessionRepository {
	return &SessionRepository{db: s.db}
}

// Create inserts a new session.
func (r *SessionRepository) Create(sess *Session) error {
	if sess.StartedAt.IsZero() {
		sess.StartedAt = time.Now()
	}

	_, err := r.db.Exec(
		`INSERT INTO sessions (id, started_at, pointer) VALUES (?, ?, ?)`,
		sess.ID, sess.StartedAt.UTC(), sess.Pointer,
	)
	if err != nil {
		return fmt.Errorf("create session %s: %w", sess.ID, err)
	}
	return nil
}

// Finish records the end time and termination reason of a session.
func (r *SessionRepository) Finish(id, reason string, endedAt time.Time) error {
	result, err := r.db.Exec(
		`UPDATE sessions SET ended_at = ?, reason = ? WHERE id = ?`,
		endedAt.UTC(), reason, id,
	)
	if err != nil {
		return fmt.Errorf("finish session %s: %w", id, err)
	}
	return expectRow(result)
}

// SaveStats writes a checkpoint of the per-kind counters, replacing the previous one.
func (r *SessionRepository) SaveStats(id string, snapshot []stats.KindStats, at time.Time) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM sessions WHERE id = ?`, id).Scan(&exists); err != nil {
		return err
	}
	if exists == 0 {
		return ErrNotFound
	}

	stmt, err := tx.Prepare(
		`INSERT INTO session_stats (session_id, kind, attempts, successes, cumulative_ms, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(session_id, kind) DO UPDATE SET
			attempts = excluded.attempts,
			successes = excluded.successes,
			cumulative_ms = excluded.cumulative_ms,
			updated_at = excluded.updated_at`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, ks := range snapshot {
		if !ks.Kind.Valid() {
			continue
		}
		if _, err := stmt.Exec(id, ks.Kind.String(), ks.Attempts, ks.Successes, ks.CumulativeResponseMs, at.UTC()); err != nil {
			return fmt.Errorf("save %s stats: %w", ks.Kind, err)
		}
	}

	return tx.Commit()
}

// Get retrieves a session by its ID.
func (r *SessionRepository) Get(id string) (*Session, error) {
	row := r.db.QueryRow(
		`SELECT id, started_at, ended_at, reason, pointer FROM sessions WHERE id = ?`,
		id,
	)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return sess, err
}

// List returns the most recent sessions first. A limit of zero or less returns all.
func (r *SessionRepository) List(limit int) ([]*Session, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := r.db.Query(
		`SELECT id, started_at, ended_at, reason, pointer FROM sessions
		 ORDER BY started_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}

	return sessions, rows.Err()
}

// Stats returns the last checkpoint of a session in report order.
// Kinds never checkpointed are reported with zero counters.
func (r *SessionRepository) Stats(id string) ([]stats.KindStats, error) {
	if _, err := r.Get(id); err != nil {
		return nil, err
	}

	rows, err := r.db.Query(
		`SELECT kind, attempts, successes, cumulative_ms FROM session_stats WHERE session_id = ?`,
		id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byKind := make(map[stats.Kind]stats.Counters)
	for rows.Next() {
		var (
			label string
			c     stats.Counters
		)
		if err := rows.Scan(&label, &c.Attempts, &c.Successes, &c.CumulativeResponseMs); err != nil {
			return nil, err
		}
		kind, err := stats.ParseKind(label)
		if err != nil {
			continue
		}
		byKind[kind] = c
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]stats.KindStats, 0, len(stats.Kinds()))
	for _, k := range stats.Kinds() {
		out = append(out, stats.KindStats{Kind: k, Counters: byKind[k]})
	}
	return out, nil
}

// Delete removes a session and its statistics.
func (r *SessionRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectRow(result)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (*Session, error) {
	sess := &Session{}
	var ended sql.NullTime
	if err := row.Scan(&sess.ID, &sess.StartedAt, &ended, &sess.Reason, &sess.Pointer); err != nil {
		return nil, err
	}
	if ended.Valid {
		sess.EndedAt = ended.Time
	}
	return sess, nil
}

func expectRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
