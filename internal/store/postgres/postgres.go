// Package postgres is the alternate store backend on database/sql with the
// pgx stdlib driver.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/pulseboard/pulseboard/internal/model"
	"github.com/pulseboard/pulseboard/internal/store"
)

// Open opens a PostgreSQL connection using the pgx stdlib driver and verifies
// connectivity.
func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// NewWithDB constructs a Postgres store backed directly by database/sql.
func NewWithDB(db *sql.DB) store.Store { return &pgStore{db: db} }

type pgStore struct{ db *sql.DB }

func (s *pgStore) Members() store.Members         { return &members{db: s.db} }
func (s *pgStore) Identifiers() store.Identifiers { return &identifiers{db: s.db} }
func (s *pgStore) Activities() store.Activities   { return &activities{db: s.db} }

// HealthPing implements health.HealthPinger.
func (s *pgStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// EnsureSchema creates the tables and indexes if missing. An internal tool
// does not carry a migration pipeline; idempotent DDL at startup is enough.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS members (
            member_id     TEXT PRIMARY KEY,
            name          TEXT NOT NULL,
            role          TEXT,
            creation_time TIMESTAMPTZ NOT NULL DEFAULT now(),
            update_time   TIMESTAMPTZ
        )`,
		`CREATE TABLE IF NOT EXISTS member_identifiers (
            identifier_id TEXT PRIMARY KEY,
            member_id     TEXT NOT NULL,
            member_name   TEXT NOT NULL,
            source        TEXT NOT NULL,
            type          TEXT NOT NULL,
            value         TEXT NOT NULL,
            creation_time TIMESTAMPTZ NOT NULL DEFAULT now()
        )`,
		`CREATE INDEX IF NOT EXISTS idx_identifiers_member ON member_identifiers (member_id)`,
		`CREATE INDEX IF NOT EXISTS idx_identifiers_source_value ON member_identifiers (source, value)`,
		`CREATE TABLE IF NOT EXISTS activities (
            activity_id   TEXT PRIMARY KEY,
            source        TEXT NOT NULL,
            activity_type TEXT,
            actor_id      TEXT,
            actor_email   TEXT,
            actor_name    TEXT,
            raw_timestamp TEXT,
            occurred_at   TIMESTAMPTZ,
            target_date   TEXT,
            metadata      JSONB
        )`,
		`CREATE INDEX IF NOT EXISTS idx_activities_source_time ON activities (source, occurred_at DESC)`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// --- Members ---

type members struct{ db *sql.DB }

func (m *members) Create(ctx context.Context, in *model.Member) (*model.Member, error) {
	id := in.MemberID
	if id == "" {
		id = uuid.New().String()
	}
	var created time.Time
	row := m.db.QueryRowContext(ctx, `
        INSERT INTO members (member_id, name, role)
        VALUES ($1,$2,$3)
        RETURNING creation_time
    `, id, in.Name, in.Role)
	if err := row.Scan(&created); err != nil {
		return nil, err
	}
	return &model.Member{MemberID: id, Name: in.Name, Role: in.Role, CreationTime: created}, nil
}

func (m *members) Get(ctx context.Context, memberID string) (*model.Member, error) {
	var out model.Member
	row := m.db.QueryRowContext(ctx, `
        SELECT member_id, name, role, creation_time, update_time
        FROM members WHERE member_id=$1
    `, memberID)
	if err := row.Scan(&out.MemberID, &out.Name, &out.Role, &out.CreationTime, &out.UpdateTime); err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}

func (m *members) List(ctx context.Context) ([]*model.Member, error) {
	rows, err := m.db.QueryContext(ctx, `
        SELECT member_id, name, role, creation_time, update_time
        FROM members ORDER BY name
    `)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []*model.Member
	for rows.Next() {
		var mm model.Member
		if err := rows.Scan(&mm.MemberID, &mm.Name, &mm.Role, &mm.CreationTime, &mm.UpdateTime); err != nil {
			return nil, err
		}
		out = append(out, &mm)
	}
	return out, rows.Err()
}

func (m *members) Rename(ctx context.Context, memberID, name string) (*model.Member, error) {
	tx, err := m.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var out model.Member
	row := tx.QueryRowContext(ctx, `
        UPDATE members SET name=$1, update_time=now() WHERE member_id=$2
        RETURNING member_id, name, role, creation_time, update_time
    `, name, memberID)
	if err := row.Scan(&out.MemberID, &out.Name, &out.Role, &out.CreationTime, &out.UpdateTime); err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE member_identifiers SET member_name=$1 WHERE member_id=$2`, name, memberID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &out, nil
}

func (m *members) Delete(ctx context.Context, memberID string) error {
	tx, err := m.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM member_identifiers WHERE member_id=$1`, memberID); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM members WHERE member_id=$1`, memberID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.ErrNotFound
	}
	return tx.Commit()
}

// --- Identifiers ---

type identifiers struct{ db *sql.DB }

func (i *identifiers) List(ctx context.Context) ([]*model.Identifier, error) {
	return i.query(ctx, `
        SELECT identifier_id, member_id, member_name, source, type, value, creation_time
        FROM member_identifiers
    `)
}

func (i *identifiers) ListByMember(ctx context.Context, memberID string) ([]*model.Identifier, error) {
	return i.query(ctx, `
        SELECT identifier_id, member_id, member_name, source, type, value, creation_time
        FROM member_identifiers WHERE member_id=$1
    `, memberID)
}

func (i *identifiers) query(ctx context.Context, q string, args ...interface{}) ([]*model.Identifier, error) {
	rows, err := i.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []*model.Identifier
	for rows.Next() {
		var id model.Identifier
		if err := rows.Scan(&id.IdentifierID, &id.MemberID, &id.MemberName, &id.Source, &id.Type, &id.Value, &id.CreationTime); err != nil {
			return nil, err
		}
		out = append(out, &id)
	}
	return out, rows.Err()
}

func (i *identifiers) Create(ctx context.Context, in *model.Identifier) (*model.Identifier, error) {
	id := uuid.New().String()
	var created time.Time
	row := i.db.QueryRowContext(ctx, `
        INSERT INTO member_identifiers (identifier_id, member_id, member_name, source, type, value)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING creation_time
    `, id, in.MemberID, in.MemberName, in.Source, in.Type, in.Value)
	if err := row.Scan(&created); err != nil {
		return nil, err
	}
	out := *in
	out.IdentifierID = id
	out.CreationTime = created
	return &out, nil
}

func (i *identifiers) Upsert(ctx context.Context, in *model.Identifier) (*model.Identifier, error) {
	var existing string
	err := i.db.QueryRowContext(ctx, `
        SELECT identifier_id FROM member_identifiers
        WHERE member_id=$1 AND source=$2 AND type=$3
    `, in.MemberID, in.Source, in.Type).Scan(&existing)
	if err == sql.ErrNoRows {
		return i.Create(ctx, in)
	}
	if err != nil {
		return nil, err
	}
	var out model.Identifier
	row := i.db.QueryRowContext(ctx, `
        UPDATE member_identifiers SET value=$1, member_name=$2
        WHERE identifier_id=$3
        RETURNING identifier_id, member_id, member_name, source, type, value, creation_time
    `, in.Value, in.MemberName, existing)
	if err := row.Scan(&out.IdentifierID, &out.MemberID, &out.MemberName, &out.Source, &out.Type, &out.Value, &out.CreationTime); err != nil {
		return nil, err
	}
	return &out, nil
}

func (i *identifiers) Delete(ctx context.Context, identifierID string) error {
	res, err := i.db.ExecContext(ctx, `DELETE FROM member_identifiers WHERE identifier_id=$1`, identifierID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.ErrNotFound
	}
	return nil
}
