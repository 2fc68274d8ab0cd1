// Package persistence provides SQLite-based storage for the current run,
// its event log, the run history and the cross-run profile.
package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/Kalaith/last-hope/internal/engine"
	"github.com/Kalaith/last-hope/internal/meta"
)

// ErrNoSave is returned when no run has been saved.
var ErrNoSave = errors.New("no saved run")

const progressKey = "progress"

// DB wraps a SQLite connection.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS state_sections (
		section TEXT PRIMARY KEY,
		data TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		seq INTEGER PRIMARY KEY,
		day INTEGER NOT NULL,
		description TEXT NOT NULL,
		category TEXT NOT NULL,
		meta_json TEXT
	);

	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		ended_at TEXT NOT NULL,
		background TEXT NOT NULL,
		ending TEXT NOT NULL,
		days INTEGER NOT NULL,
		soil REAL NOT NULL,
		record_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS world_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_day ON events(day);
	CREATE INDEX IF NOT EXISTS idx_runs_ending ON runs(ending);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveState writes the run state, one row per top-level section (full replace).
func (db *DB) SaveState(st *engine.WorldState) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	var sections map[string]json.RawMessage
	if err := json.Unmarshal(raw, &sections); err != nil {
		return fmt.Errorf("split state: %w", err)
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM state_sections"); err != nil {
		return err
	}
	stmt, err := tx.Preparex("INSERT INTO state_sections (section, data) VALUES (?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for name, data := range sections {
		if _, err := stmt.Exec(name, string(data)); err != nil {
			return fmt.Errorf("insert section %s: %w", name, err)
		}
	}
	return tx.Commit()
}

// LoadState reassembles the saved run. Sections missing from the save are
// filled from the starting template.
func (db *DB) LoadState() (*engine.WorldState, error) {
	var rows []struct {
		Section string `db:"section"`
		Data    string `db:"data"`
	}
	if err := db.conn.Select(&rows, "SELECT section, data FROM state_sections"); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoSave
	}
	sections := make(map[string]json.RawMessage, len(rows))
	for _, r := range rows {
		sections[r.Section] = json.RawMessage(r.Data)
	}
	raw, err := json.Marshal(sections)
	if err != nil {
		return nil, err
	}
	st, err := engine.DecodeState(raw)
	if err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	return st, nil
}

// ClearRun drops the saved state and its event log, ready for a new run.
func (db *DB) ClearRun() error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, q := range []string{"DELETE FROM state_sections", "DELETE FROM events"} {
		if _, err := tx.Exec(q); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// SaveEvents appends events. Events already stored are skipped.
func (db *DB) SaveEvents(events []engine.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, e := range events {
		var metaJSON sql.NullString
		if len(e.Meta) > 0 {
			b, err := json.Marshal(e.Meta)
			if err != nil {
				return fmt.Errorf("encode event %d meta: %w", e.Seq, err)
			}
			metaJSON = sql.NullString{String: string(b), Valid: true}
		}
		_, err := tx.Exec(
			"INSERT OR IGNORE INTO events (seq, day, description, category, meta_json) VALUES (?, ?, ?, ?, ?)",
			e.Seq, e.Day, e.Description, e.Category, metaJSON,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// LastEventSeq returns the sequence of the newest stored event, 0 when none.
func (db *DB) LastEventSeq() (uint64, error) {
	var seq sql.NullInt64
	if err := db.conn.Get(&seq, "SELECT MAX(seq) FROM events"); err != nil {
		return 0, err
	}
	return uint64(seq.Int64), nil
}

type eventRow struct {
	Seq         uint64         `db:"seq"`
	Day         int            `db:"day"`
	Description string         `db:"description"`
	Category    string         `db:"category"`
	Meta        sql.NullString `db:"meta_json"`
}

// RecentEvents returns the most recent N events, oldest first.
func (db *DB) RecentEvents(limit int) ([]engine.Event, error) {
	var rows []eventRow
	err := db.conn.Select(&rows,
		"SELECT seq, day, description, category, meta_json FROM events ORDER BY seq DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, err
	}
	events := make([]engine.Event, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		r := rows[i]
		e := engine.Event{Seq: r.Seq, Day: r.Day, Description: r.Description, Category: r.Category}
		if r.Meta.Valid {
			if err := json.Unmarshal([]byte(r.Meta.String), &e.Meta); err != nil {
				slog.Warn("skipping unreadable event meta", "seq", r.Seq, "error", err)
			}
		}
		events = append(events, e)
	}
	return events, nil
}

// SaveRun records a finished run. Saving the same run twice replaces it.
func (db *DB) SaveRun(rec meta.RunRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode run: %w", err)
	}
	_, err = db.conn.Exec(
		`INSERT OR REPLACE INTO runs (id, ended_at, background, ending, days, soil, record_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.EndedAt.UTC().Format(time.RFC3339Nano), rec.Background, string(rec.Ending),
		rec.DaysSurvived, rec.FinalEcosystem.SoilHealth, string(data),
	)
	return err
}

// Runs returns up to limit runs, newest first. A limit of 0 returns all.
func (db *DB) Runs(limit int) ([]meta.RunRecord, error) {
	q := "SELECT record_json FROM runs ORDER BY id DESC"
	args := []any{}
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}
	var rows []string
	if err := db.conn.Select(&rows, q, args...); err != nil {
		return nil, err
	}
	out := make([]meta.RunRecord, 0, len(rows))
	for _, data := range rows {
		var rec meta.RunRecord
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			return nil, fmt.Errorf("decode run: %w", err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// History returns every recorded run, oldest first.
func (db *DB) History() ([]meta.RunRecord, error) {
	runs, err := db.Runs(0)
	if err != nil {
		return nil, err
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].ID < runs[j].ID })
	return runs, nil
}

// SaveMeta stores a key-value pair in world metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM world_meta WHERE key = ?", key)
	return value, err
}

// SaveProgress stores the cross-run profile.
func (db *DB) SaveProgress(p meta.Progress) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode progress: %w", err)
	}
	return db.SaveMeta(progressKey, string(data))
}

// LoadProgress returns the stored profile, or a fresh one on first launch.
func (db *DB) LoadProgress() (meta.Progress, error) {
	data, err := db.GetMeta(progressKey)
	if errors.Is(err, sql.ErrNoRows) {
		return meta.NewProgress(), nil
	}
	if err != nil {
		return meta.Progress{}, err
	}
	p := meta.NewProgress()
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return meta.Progress{}, fmt.Errorf("decode progress: %w", err)
	}
	return p, nil
}

// SaveWorldState performs a full save of the session: state, new events and
// the day it was taken on.
func (db *DB) SaveWorldState(sim *engine.Simulation) error {
	st := sim.Snapshot()
	slog.Info("saving world state", "day", st.Day, "plants", len(st.Ecosystem.Plants))

	if err := db.SaveState(st); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	last, err := db.LastEventSeq()
	if err != nil {
		return fmt.Errorf("read event cursor: %w", err)
	}
	if err := db.SaveEvents(sim.EventsAfter(last)); err != nil {
		return fmt.Errorf("save events: %w", err)
	}
	if err := db.SaveMeta("last_day", strconv.Itoa(st.Day)); err != nil {
		return fmt.Errorf("save meta: %w", err)
	}

	slog.Info("world state saved")
	return nil
}
