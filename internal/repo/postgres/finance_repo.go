package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/leolynk/leolynk/internal/domain/finance"
	"github.com/leolynk/leolynk/internal/observability"
)

type FinanceRepo struct {
	base
}

func NewFinanceRepo(db DB, prom *observability.Prom) *FinanceRepo {
	return &FinanceRepo{base{db: db, prom: prom}}
}

const recordColumns = `id, club_id, type, status, category, amount::float8, description, date,
	project_id::text, receipt, COALESCE(created_by::text, ''), created_at, updated_at`

func scanRecord(row scanner) (finance.Record, error) {
	var rec finance.Record

	err := row.Scan(
		&rec.ID, &rec.ClubID, &rec.Type, &rec.Status, &rec.Category, &rec.Amount, &rec.Description, &rec.Date,
		&rec.ProjectID, &rec.Receipt, &rec.CreatedBy, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return finance.Record{}, err
	}
	return rec, nil
}

func (r *FinanceRepo) Create(ctx context.Context, rec finance.Record) (finance.Record, error) {
	err := r.observe("financial_records.create", func() error {
		_, err := r.db.Exec(ctx, `
			INSERT INTO financial_records (id, club_id, type, status, category, amount, description, date,
				project_id, receipt, created_by, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,NULLIF($11,'')::uuid,$12,$13)`,
			rec.ID, rec.ClubID, rec.Type, rec.Status, rec.Category, rec.Amount, rec.Description, rec.Date,
			rec.ProjectID, rec.Receipt, rec.CreatedBy, rec.CreatedAt, rec.UpdatedAt,
		)
		return err
	})
	if err != nil {
		return finance.Record{}, err
	}
	return rec, nil
}

func (r *FinanceRepo) GetByID(ctx context.Context, id string) (finance.Record, error) {
	var rec finance.Record

	err := r.observe("financial_records.get", func() error {
		var err error
		rec, err = scanRecord(r.db.QueryRow(ctx, `SELECT `+recordColumns+` FROM financial_records WHERE id = $1`, id))
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return finance.Record{}, finance.ErrNotFound
		}
		return finance.Record{}, err
	}
	return rec, nil
}

func (r *FinanceRepo) List(ctx context.Context, f finance.ListRecordsFilter) ([]finance.Record, *string, bool, error) {
	var w where
	if f.ClubID != nil {
		w.add("club_id = $%d", *f.ClubID)
	}
	if f.Type != nil {
		w.add("type = $%d", *f.Type)
	}
	if f.Status != nil {
		w.add("status = $%d", *f.Status)
	}
	if f.Category != nil {
		w.add("category = $%d", *f.Category)
	}
	if f.ProjectID != nil {
		w.add("project_id = $%d", *f.ProjectID)
	}
	if f.From != nil {
		w.add("date >= $%d", *f.From)
	}
	if f.To != nil {
		w.add("date <= $%d", *f.To)
	}
	w.keyset("date", f.AfterDate, f.AfterID)

	q := `SELECT ` + recordColumns + ` FROM financial_records` + w.sql() + ` ORDER BY date DESC, id DESC` + w.limit(f.Limit+1)

	var rows pgx.Rows
	err := r.observe("financial_records.list", func() error {
		var err error
		rows, err = r.db.Query(ctx, q, w.args...)
		return err
	})
	if err != nil {
		return nil, nil, false, err
	}
	defer rows.Close()

	out := make([]finance.Record, 0, f.Limit)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, nil, false, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, false, err
	}

	return page(out, f.Limit, func(rec finance.Record) (time.Time, string) { return rec.Date, rec.ID })
}

// Update applies a partial update; project_id and receipt are cleared by an empty string.
func (r *FinanceRepo) Update(ctx context.Context, id string, req finance.UpdateRecordRequest) (finance.Record, error) {
	var rec finance.Record

	err := r.observe("financial_records.update", func() error {
		var err error
		rec, err = scanRecord(r.db.QueryRow(ctx, `
			UPDATE financial_records SET
				type = COALESCE($2, type),
				status = COALESCE($3, status),
				category = COALESCE($4, category),
				amount = COALESCE($5, amount),
				description = COALESCE($6, description),
				date = COALESCE($7, date),
				project_id = CASE WHEN $8::text IS NULL THEN project_id ELSE NULLIF($8::text, '')::uuid END,
				receipt = CASE WHEN $9::text IS NULL THEN receipt ELSE NULLIF($9::text, '') END,
				updated_at = NOW()
			WHERE id = $1
			RETURNING `+recordColumns,
			id, req.Type, req.Status, req.Category, req.Amount, req.Description, req.Date,
			req.ProjectID, req.Receipt,
		))
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return finance.Record{}, finance.ErrNotFound
		}
		return finance.Record{}, err
	}
	return rec, nil
}

func (r *FinanceRepo) Delete(ctx context.Context, id string) error {
	var affected int64

	err := r.observe("financial_records.delete", func() error {
		tag, err := r.db.Exec(ctx, `DELETE FROM financial_records WHERE id = $1`, id)
		affected = tag.RowsAffected()
		return err
	})
	if err != nil {
		return err
	}
	if affected == 0 {
		return finance.ErrNotFound
	}
	return nil
}
