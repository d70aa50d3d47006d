package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"FinResearch/internal/domain/models"
	"FinResearch/internal/domain/repository"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const reportsTable = "research_reports"

// Dialect captures what differs between the SQL backends.
type Dialect struct {
	Name string
	// Numbered marks $1-style placeholders.
	Numbered bool
	// Affected marks backends that report affected rows on DELETE.
	Affected bool
	Schema   []string
}

var (
	PostgresDialect = Dialect{
		Name:     "postgres",
		Numbered: true,
		Affected: true,
		Schema: []string{
			`CREATE TABLE IF NOT EXISTS research_reports (
				id TEXT PRIMARY KEY,
				owner TEXT NOT NULL,
				company_name TEXT NOT NULL,
				ticker TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMPTZ NOT NULL,
				degraded BOOLEAN NOT NULL DEFAULT FALSE,
				payload TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS research_reports_owner_created ON research_reports (owner, created_at DESC)`,
		},
	}
	SQLiteDialect = Dialect{
		Name:     "sqlite3",
		Affected: true,
		Schema: []string{
			`CREATE TABLE IF NOT EXISTS research_reports (
				id TEXT PRIMARY KEY,
				owner TEXT NOT NULL,
				company_name TEXT NOT NULL,
				ticker TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMP NOT NULL,
				degraded BOOLEAN NOT NULL DEFAULT 0,
				payload TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS research_reports_owner_created ON research_reports (owner, created_at)`,
		},
	}
	ClickHouseDialect = Dialect{
		Name: "clickhouse",
		Schema: []string{
			`CREATE TABLE IF NOT EXISTS research_reports (
				id String,
				owner String,
				company_name String,
				ticker String,
				created_at DateTime64(3, 'UTC'),
				degraded Bool,
				payload String
			) ENGINE = MergeTree ORDER BY (owner, created_at, id)`,
		},
	}
)

// SQLReportStore persists reports as JSON payloads with summary columns for listing.
type SQLReportStore struct {
	db      *sql.DB
	dialect Dialect
	owned   bool
}

// NewSQLReportStore uses an existing pool; Close leaves it open.
func NewSQLReportStore(db *sql.DB, d Dialect) *SQLReportStore {
	return &SQLReportStore{db: db, dialect: d}
}

// OpenSQLReportStore opens a postgres or sqlite3 pool owned by the store.
func OpenSQLReportStore(driver, dsn string) (*SQLReportStore, error) {
	var d Dialect
	switch driver {
	case "postgres":
		d = PostgresDialect
	case "sqlite3":
		d = SQLiteDialect
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("%s open: %w", driver, err)
	}
	if driver == "sqlite3" {
		// one connection keeps :memory: databases shared and serializes writes
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}
	return &SQLReportStore{db: db, dialect: d, owned: true}, nil
}

func (s *SQLReportStore) Init(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%s ping: %w", s.dialect.Name, err)
	}
	for _, stmt := range s.dialect.Schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

// bind rewrites ? placeholders for dialects that number them.
func (s *SQLReportStore) bind(q string) string {
	if !s.dialect.Numbered {
		return q
	}
	var sb strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func (s *SQLReportStore) Save(ctx context.Context, owner string, r models.ResearchReport) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	q := s.bind("INSERT INTO " + reportsTable + " (id, owner, company_name, ticker, created_at, degraded, payload) VALUES (?, ?, ?, ?, ?, ?, ?)")
	_, err = s.db.ExecContext(ctx, q,
		r.ID,
		owner,
		r.CompanyName,
		r.Ticker,
		r.Timestamp.UTC(),
		r.Degradation.Degraded(),
		string(payload),
	)
	return err
}

func (s *SQLReportStore) List(ctx context.Context, owner string, limit int) ([]models.ReportSummary, error) {
	q := s.bind("SELECT id, company_name, ticker, created_at, degraded FROM " + reportsTable +
		" WHERE owner = ? ORDER BY created_at DESC, id DESC LIMIT ?")
	rows, err := s.db.QueryContext(ctx, q, owner, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.ReportSummary{}
	for rows.Next() {
		var sum models.ReportSummary
		if err := rows.Scan(&sum.ID, &sum.CompanyName, &sum.Ticker, &sum.Timestamp, &sum.Degraded); err != nil {
			return nil, err
		}
		sum.Timestamp = sum.Timestamp.UTC()
		out = append(out, sum)
	}
	return out, rows.Err()
}

func (s *SQLReportStore) Get(ctx context.Context, owner, id string) (models.ResearchReport, error) {
	q := s.bind("SELECT payload FROM " + reportsTable + " WHERE owner = ? AND id = ?")
	var payload string
	err := s.db.QueryRowContext(ctx, q, owner, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ResearchReport{}, models.ErrReportNotFound
	}
	if err != nil {
		return models.ResearchReport{}, err
	}
	var r models.ResearchReport
	if err := json.Unmarshal([]byte(payload), &r); err != nil {
		return models.ResearchReport{}, fmt.Errorf("decode report %s: %w", id, err)
	}
	return r, nil
}

func (s *SQLReportStore) Delete(ctx context.Context, owner, id string) error {
	if !s.dialect.Affected {
		if _, err := s.Get(ctx, owner, id); err != nil {
			return err
		}
	}
	res, err := s.db.ExecContext(ctx, s.bind("DELETE FROM "+reportsTable+" WHERE owner = ? AND id = ?"), owner, id)
	if err != nil {
		return err
	}
	if s.dialect.Affected {
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return models.ErrReportNotFound
		}
	}
	return nil
}

func (s *SQLReportStore) Close() error {
	if s.owned && s.db != nil {
		return s.db.Close()
	}
	return nil
}

var _ repository.ReportStore = (*SQLReportStore)(nil)
