package postgres

import (
	"context"
	"database/sql"
	"time"

	"rentalshop-backend/internal/domain"
	"rentalshop-backend/internal/repository"
)

type outboxRepository struct {
	db *sql.DB
}

func NewOutboxRepository(db *sql.DB) repository.OutboxRepository {
	return &outboxRepository{db: db}
}

func (r *outboxRepository) Create(ctx context.Context, in *domain.LedgerIntent) error {
	query := `INSERT INTO ledger_intents (id, day_date, rental_id, customer_id, amount_paise, kind, payment_method, category, description, notes, status, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), $9, $10, $11, $12)`
	now := time.Now()
	_, err := r.db.ExecContext(ctx, query, in.ID, in.DayDate,
		in.Entry.RentalID, in.Entry.CustomerID, in.Entry.AmountPaise, in.Entry.Kind,
		in.Entry.PaymentMethod, in.Entry.Category, in.Entry.Description, in.Entry.Notes,
		domain.IntentStatusPending, now)
	if err != nil {
		return domain.NewStorageError("create ledger intent", err)
	}
	in.Status = domain.IntentStatusPending
	in.CreatedOn = now
	return nil
}

func (r *outboxRepository) Confirm(ctx context.Context, id string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `UPDATE ledger_intents SET status=$1, confirmed_on=$2 WHERE id=$3`,
		domain.IntentStatusConfirmed, at, id)
	if err != nil {
		return domain.NewStorageError("confirm ledger intent", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundf("ledger intent %s not found", id)
	}
	return nil
}

func (r *outboxRepository) ListPendingBefore(ctx context.Context, cutoff time.Time) ([]domain.LedgerIntent, error) {
	query := `SELECT id, day_date, rental_id, customer_id, amount_paise, kind, payment_method,
	          COALESCE(category,''), description, COALESCE(notes,''), status, created_on, confirmed_on
	          FROM ledger_intents WHERE status = $1 AND created_on < $2 ORDER BY created_on`
	rows, err := r.db.QueryContext(ctx, query, domain.IntentStatusPending, cutoff)
	if err != nil {
		return nil, domain.NewStorageError("list pending intents", err)
	}
	defer rows.Close()

	var intents []domain.LedgerIntent
	for rows.Next() {
		var in domain.LedgerIntent
		if err := rows.Scan(&in.ID, &in.DayDate, &in.Entry.RentalID, &in.Entry.CustomerID,
			&in.Entry.AmountPaise, &in.Entry.Kind, &in.Entry.PaymentMethod,
			&in.Entry.Category, &in.Entry.Description, &in.Entry.Notes,
			&in.Status, &in.CreatedOn, &in.ConfirmedOn); err != nil {
			return nil, domain.NewStorageError("scan ledger intent", err)
		}
		in.Entry.IntentID = in.ID
		intents = append(intents, in)
	}
	return intents, nil
}
