package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"rentalshop-backend/internal/domain"
	"rentalshop-backend/internal/repository"
)

type ledgerRepository struct {
	db *sql.DB
}

func NewLedgerRepository(db *sql.DB) repository.LedgerRepository {
	return &ledgerRepository{db: db}
}

const ledgerDayColumns = `id, date, is_closed, closed_at,
	closing_cash_paise, closing_upi_paise, closing_total_paise,
	opening_cash_paise, opening_upi_paise, opening_total_paise,
	COALESCE(opening_carried_from, ''), created_on`

func scanDay(row *sql.Row) (*domain.LedgerDay, error) {
	d := &domain.LedgerDay{}
	err := row.Scan(&d.ID, &d.Date, &d.IsClosed, &d.ClosedAt,
		&d.ClosingCashPaise, &d.ClosingUPIPaise, &d.ClosingTotalPaise,
		&d.OpeningCashPaise, &d.OpeningUPIPaise, &d.OpeningTotalPaise,
		&d.OpeningCarriedFrom, &d.CreatedOn)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (r *ledgerRepository) GetDay(ctx context.Context, date domain.DateKey) (*domain.LedgerDay, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+ledgerDayColumns+` FROM ledger_days WHERE date = $1`, date)
	d, err := scanDay(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundf("no ledger record for %s", date)
	}
	if err != nil {
		return nil, domain.NewStorageError("get ledger day", err)
	}
	if err := r.loadEntries(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (r *ledgerRepository) GetOrCreateDay(ctx context.Context, date domain.DateKey) (*domain.LedgerDay, error) {
	_, err := r.db.ExecContext(ctx, `INSERT INTO ledger_days (date, created_on) VALUES ($1, $2) ON CONFLICT (date) DO NOTHING`,
		date, time.Now())
	if err != nil {
		return nil, domain.NewStorageError("create ledger day", err)
	}
	return r.GetDay(ctx, date)
}

func (r *ledgerRepository) loadEntries(ctx context.Context, d *domain.LedgerDay) error {
	rows, err := r.db.QueryContext(ctx, `SELECT id, rental_id, customer_id, amount_paise, kind, payment_method,
	          COALESCE(category,''), description, COALESCE(notes,''), created_on
	          FROM ledger_entries WHERE day_id = $1 ORDER BY id`, d.ID)
	if err != nil {
		return domain.NewStorageError("get ledger entries", err)
	}
	defer rows.Close()
	for rows.Next() {
		var e domain.LedgerEntry
		if err := rows.Scan(&e.ID, &e.RentalID, &e.CustomerID, &e.AmountPaise, &e.Kind, &e.PaymentMethod,
			&e.Category, &e.Description, &e.Notes, &e.CreatedOn); err != nil {
			return domain.NewStorageError("scan ledger entry", err)
		}
		d.Entries = append(d.Entries, e)
	}
	return nil
}

func (r *ledgerRepository) AppendEntries(ctx context.Context, date domain.DateKey, entries []domain.LedgerEntry) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.NewStorageError("begin append entries", err)
	}
	defer tx.Rollback()

	now := time.Now()
	var dayID int64
	err = tx.QueryRowContext(ctx, `INSERT INTO ledger_days (date, created_on) VALUES ($1, $2)
	          ON CONFLICT (date) DO UPDATE SET date = EXCLUDED.date RETURNING id`, date, now).Scan(&dayID)
	if err != nil {
		return domain.NewStorageError("upsert ledger day", err)
	}

	if err := insertEntries(ctx, tx, dayID, entries, now); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return domain.NewStorageError("commit append entries", err)
	}
	return nil
}

func insertEntries(ctx context.Context, tx *sql.Tx, dayID int64, entries []domain.LedgerEntry, now time.Time) error {
	for i := range entries {
		e := &entries[i]
		// intent_id is unique when present, so replaying a ledger intent
		// cannot insert the same entry twice.
		query := `INSERT INTO ledger_entries (day_id, intent_id, rental_id, customer_id, amount_paise, kind, payment_method, category, description, notes, created_on)
		          VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7, NULLIF($8, ''), $9, $10, $11)
		          ON CONFLICT (intent_id) DO NOTHING RETURNING id`
		err := tx.QueryRowContext(ctx, query, dayID, e.IntentID, e.RentalID, e.CustomerID, e.AmountPaise, e.Kind, e.PaymentMethod,
			e.Category, e.Description, e.Notes, now).Scan(&e.ID)
		if errors.Is(err, sql.ErrNoRows) {
			continue // already applied by an earlier attempt
		}
		if err != nil {
			return domain.NewStorageError("insert ledger entry", err)
		}
		e.CreatedOn = now
	}
	return nil
}

func (r *ledgerRepository) SaveClose(ctx context.Context, d *domain.LedgerDay) error {
	query := `UPDATE ledger_days SET is_closed=$1, closed_at=$2,
	          closing_cash_paise=$3, closing_upi_paise=$4, closing_total_paise=$5 WHERE id=$6`
	res, err := r.db.ExecContext(ctx, query, d.IsClosed, d.ClosedAt,
		d.ClosingCashPaise, d.ClosingUPIPaise, d.ClosingTotalPaise, d.ID)
	if err != nil {
		return domain.NewStorageError("save day close", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundf("no ledger record for %s", d.Date)
	}
	return nil
}

func (r *ledgerRepository) SaveOpening(ctx context.Context, d *domain.LedgerDay, entries []domain.LedgerEntry) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.NewStorageError("begin save opening", err)
	}
	defer tx.Rollback()

	query := `UPDATE ledger_days SET opening_cash_paise=$1, opening_upi_paise=$2,
	          opening_total_paise=$3, opening_carried_from=$4 WHERE id=$5`
	res, err := tx.ExecContext(ctx, query, d.OpeningCashPaise, d.OpeningUPIPaise,
		d.OpeningTotalPaise, d.OpeningCarriedFrom, d.ID)
	if err != nil {
		return domain.NewStorageError("save day opening", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundf("no ledger record for %s", d.Date)
	}

	if err := insertEntries(ctx, tx, d.ID, entries, time.Now()); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return domain.NewStorageError("commit save opening", err)
	}
	return nil
}
