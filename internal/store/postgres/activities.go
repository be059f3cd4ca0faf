package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pulseboard/pulseboard/internal/model"
)

const defaultFetchCap = 1000

type activities struct{ db *sql.DB }

func (a *activities) Insert(ctx context.Context, rec *model.RawActivity) error {
	id := rec.ID
	if id == "" {
		id = uuid.New().String()
	}
	metaJSON, _ := json.Marshal(rec.Metadata)
	_, err := a.db.ExecContext(ctx, `
        INSERT INTO activities (activity_id, source, activity_type, actor_id, actor_email, actor_name,
                                raw_timestamp, occurred_at, target_date, metadata)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        ON CONFLICT (activity_id) DO NOTHING
    `, id, rec.Source, rec.ActivityType, nullIfEmpty(rec.Actor.ID), nullIfEmpty(rec.Actor.Email), nullIfEmpty(rec.Actor.Name),
		nullIfEmpty(rec.Timestamp), rec.OccurredAt, nullIfEmpty(rec.TargetDate), nullIfEmptyBytes(metaJSON))
	return err
}

func (a *activities) ListBySource(ctx context.Context, src model.Source, f model.ActivityFilter, limit int) ([]*model.RawActivity, error) {
	query := `SELECT activity_id, activity_type, actor_id, actor_email, actor_name,
                     raw_timestamp, occurred_at, target_date, metadata
              FROM activities WHERE source=$1`
	args := []interface{}{src}

	if clause, extra := identifierClause(f, len(args)); clause != "" {
		query += " AND (" + clause + ")"
		args = append(args, extra...)
	}
	if f.From != nil {
		args = append(args, *f.From)
		query += fmt.Sprintf(" AND occurred_at >= $%d", len(args))
	}
	if f.To != nil {
		args = append(args, *f.To)
		query += fmt.Sprintf(" AND occurred_at <= $%d", len(args))
	}

	// target_date keeps daily-analysis rows without a timestamp in calendar
	// order.
	query += " ORDER BY occurred_at DESC NULLS LAST, target_date DESC NULLS LAST"
	if limit <= 0 || limit > defaultFetchCap {
		limit = defaultFetchCap
	}
	query += fmt.Sprintf(" LIMIT %d", limit)

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []*model.RawActivity
	for rows.Next() {
		var (
			rec                        model.RawActivity
			actorID, email, name       sql.NullString
			rawTS, targetDate, metaRaw sql.NullString
			occurred                   sql.NullTime
		)
		if err := rows.Scan(&rec.ID, &rec.ActivityType, &actorID, &email, &name, &rawTS, &occurred, &targetDate, &metaRaw); err != nil {
			return nil, err
		}
		rec.Source = src
		rec.Actor = model.ActorRef{ID: actorID.String, Email: email.String, Name: name.String}
		rec.Timestamp = rawTS.String
		rec.TargetDate = targetDate.String
		if occurred.Valid {
			t := occurred.Time
			rec.OccurredAt = &t
		}
		if metaRaw.Valid {
			_ = json.Unmarshal([]byte(metaRaw.String), &rec.Metadata)
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}

// identifierClause builds the OR filter across raw identifiers plus the
// display-name prefix catch-all. argOffset is the number of placeholders
// already consumed.
func identifierClause(f model.ActivityFilter, argOffset int) (string, []interface{}) {
	var parts []string
	var args []interface{}
	n := argOffset
	for _, id := range f.Identifiers {
		n++
		parts = append(parts, fmt.Sprintf("actor_id = $%d OR actor_email = $%d", n, n))
		args = append(args, id)
	}
	if f.MemberName != "" {
		n++
		parts = append(parts, fmt.Sprintf("actor_name ILIKE $%d", n))
		args = append(args, likePrefix(f.MemberName))
	}
	return strings.Join(parts, " OR "), args
}

func likePrefix(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s) + "%"
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullIfEmptyBytes(b []byte) interface{} {
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	return b
}
