package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"bunasiem/pkg/models"
)

// PostgresConfig configures the relational backing store.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	Capacity int
}

// PostgresStore implements the backing-store contract over a
// security_logs table. The truncation policy matches the in-memory
// store: when an append would exceed capacity, only the most recent
// capacity/2 rows are kept before the new row is inserted.
type PostgresStore struct {
	db       *sql.DB
	capacity int
}

// NewPostgresStore opens the database, verifies connectivity and
// ensures the schema exists.
func NewPostgresStore(cfg PostgresConfig) (*PostgresStore, error) {
	if cfg.SSLMode == "" {
		cfg.SSLMode = "disable"
	}
	if cfg.Port == 0 {
		cfg.Port = 5432
	}
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultCapacity
	}

	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	s := &PostgresStore{db: db, capacity: cfg.Capacity}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) ensureSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS security_logs (
			id                BIGINT PRIMARY KEY,
			source            TEXT NOT NULL,
			event_type        TEXT NOT NULL DEFAULT '',
			event_time        TIMESTAMPTZ NOT NULL,
			source_ip         TEXT,
			username          TEXT,
			bytes_transferred BIGINT NOT NULL DEFAULT 0,
			error_message     TEXT,
			location          TEXT,
			severity          TEXT NOT NULL DEFAULT 'low',
			ingested_at       TIMESTAMPTZ NOT NULL,
			has_alert         BOOLEAN NOT NULL DEFAULT FALSE,
			alert             JSONB
		)
	`)
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Append inserts one record, trimming older rows first when the insert
// would exceed capacity.
func (s *PostgresStore) Append(rec *models.LogRecord) error {
	if rec == nil {
		return fmt.Errorf("nil log record")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin append: %w", err)
	}
	defer tx.Rollback()

	var count int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM security_logs`).Scan(&count); err != nil {
		return fmt.Errorf("count logs: %w", err)
	}
	if count+1 > s.capacity {
		keep := s.capacity / 2
		_, err := tx.Exec(`
			DELETE FROM security_logs
			WHERE id NOT IN (SELECT id FROM security_logs ORDER BY id DESC LIMIT $1)
		`, keep)
		if err != nil {
			return fmt.Errorf("trim logs: %w", err)
		}
	}

	var alertJSON interface{}
	if rec.Alert != nil {
		raw, err := json.Marshal(rec.Alert)
		if err != nil {
			return fmt.Errorf("marshal alert: %w", err)
		}
		alertJSON = raw
	}

	_, err = tx.Exec(`
		INSERT INTO security_logs
			(id, source, event_type, event_time, source_ip, username,
			 bytes_transferred, error_message, location, severity,
			 ingested_at, has_alert, alert)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`,
		rec.ID, rec.Source, rec.EventType, rec.EventTime,
		nullable(rec.SourceIP), nullable(rec.User),
		rec.BytesTransferred, nullable(rec.ErrorMessage), nullable(rec.Location),
		rec.Severity, rec.IngestedAt, rec.HasAlert, alertJSON,
	)
	if err != nil {
		return fmt.Errorf("insert log: %w", err)
	}
	return tx.Commit()
}

// Query returns matching records newest-ingested-first plus the total
// matched count.
func (s *PostgresStore) Query(f Filter) ([]*models.LogRecord, int, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = DefaultQueryLimit
	}

	where := "WHERE TRUE"
	args := []interface{}{}
	if f.Source != "" {
		args = append(args, f.Source)
		where += fmt.Sprintf(" AND source = $%d", len(args))
	}
	if f.Severity != "" {
		args = append(args, f.Severity)
		where += fmt.Sprintf(" AND severity = $%d", len(args))
	}
	if f.HasAlert != nil {
		args = append(args, *f.HasAlert)
		where += fmt.Sprintf(" AND has_alert = $%d", len(args))
	}

	var total int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM security_logs `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count matches: %w", err)
	}

	args = append(args, limit)
	rows, err := s.db.Query(`
		SELECT id, source, event_type, event_time, source_ip, username,
		       bytes_transferred, error_message, location, severity,
		       ingested_at, has_alert, alert
		FROM security_logs `+where+fmt.Sprintf(`
		ORDER BY ingested_at DESC, id DESC
		LIMIT $%d`, len(args)), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query logs: %w", err)
	}
	defer rows.Close()

	var out []*models.LogRecord
	for rows.Next() {
		rec, err := scanLogRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate logs: %w", err)
	}
	return out, total, nil
}

// Stats summarizes the table with grouped counts.
func (s *PostgresStore) Stats() (*models.LogStats, error) {
	stats := &models.LogStats{
		BySource:    make(map[string]int),
		ByEventType: make(map[string]int),
	}

	err := s.db.QueryRow(`
		SELECT COUNT(*), COUNT(*) FILTER (WHERE has_alert)
		FROM security_logs
	`).Scan(&stats.TotalLogs, &stats.AlertCount)
	if err != nil {
		return nil, fmt.Errorf("count totals: %w", err)
	}

	rows, err := s.db.Query(`SELECT source, COUNT(*) FROM security_logs GROUP BY source`)
	if err != nil {
		return nil, fmt.Errorf("group by source: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return nil, fmt.Errorf("scan source count: %w", err)
		}
		if key == "" {
			key = models.SourceUnknown
		}
		stats.BySource[key] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate source counts: %w", err)
	}

	typeRows, err := s.db.Query(`SELECT event_type, COUNT(*) FROM security_logs GROUP BY event_type`)
	if err != nil {
		return nil, fmt.Errorf("group by event type: %w", err)
	}
	defer typeRows.Close()
	for typeRows.Next() {
		var key string
		var n int
		if err := typeRows.Scan(&key, &n); err != nil {
			return nil, fmt.Errorf("scan event type count: %w", err)
		}
		if key == "" {
			key = models.SourceUnknown
		}
		stats.ByEventType[key] = n
	}
	if err := typeRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate event type counts: %w", err)
	}

	return stats, nil
}

// Count returns the number of retained rows.
func (s *PostgresStore) Count() (int, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM security_logs`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count logs: %w", err)
	}
	return count, nil
}

// Reset clears the table. Test hook only.
func (s *PostgresStore) Reset() error {
	if _, err := s.db.Exec(`TRUNCATE security_logs`); err != nil {
		return fmt.Errorf("truncate logs: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func scanLogRecord(rows *sql.Rows) (*models.LogRecord, error) {
	var rec models.LogRecord
	var sourceIP, user, errorMessage, location sql.NullString
	var alertRaw []byte

	err := rows.Scan(
		&rec.ID, &rec.Source, &rec.EventType, &rec.EventTime,
		&sourceIP, &user, &rec.BytesTransferred, &errorMessage, &location,
		&rec.Severity, &rec.IngestedAt, &rec.HasAlert, &alertRaw,
	)
	if err != nil {
		return nil, fmt.Errorf("scan log: %w", err)
	}

	rec.SourceIP = sourceIP.String
	rec.User = user.String
	rec.ErrorMessage = errorMessage.String
	rec.Location = location.String

	if len(alertRaw) > 0 {
		var alert models.Alert
		if err := json.Unmarshal(alertRaw, &alert); err != nil {
			return nil, fmt.Errorf("unmarshal alert: %w", err)
		}
		rec.Alert = &alert
	}
	return &rec, nil
}

func nullable(v string) interface{} {
	if v == "" {
		return nil
	}
	return v
}
