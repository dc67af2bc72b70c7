package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"rentalshop-backend/internal/domain"
	"rentalshop-backend/internal/repository"
)

type rentalRepository struct {
	db *sql.DB
}

func NewRentalRepository(db *sql.DB) repository.RentalRepository {
	return &rentalRepository{db: db}
}

func (r *rentalRepository) Create(ctx context.Context, rt *domain.Rental) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.NewStorageError("begin create rental", err)
	}
	defer tx.Rollback()

	now := time.Now()
	query := `INSERT INTO rentals (customer_id, initial_amount_paise, total_amount_paise, status, created_on)
	          VALUES ($1, $2, $3, $4, $5) RETURNING id`
	if err := tx.QueryRowContext(ctx, query, rt.CustomerID, rt.InitialAmountPaise, rt.TotalAmountPaise, rt.Status, now).Scan(&rt.ID); err != nil {
		return domain.NewStorageError("insert rental", err)
	}
	rt.CreatedOn = now

	for i := range rt.Items {
		item := &rt.Items[i]
		itemQuery := `INSERT INTO rental_items (rental_id, tool_id, tool_name, category, price_paise, count, returned_count, rental_date)
		              VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
		if err := tx.QueryRowContext(ctx, itemQuery, rt.ID, item.ToolID, item.ToolName, item.Category, item.PricePaise,
			item.Count, item.ReturnedCount, item.RentalDate).Scan(&item.ID); err != nil {
			return domain.NewStorageError("insert rental item", err)
		}
	}

	for i := range rt.Notes {
		note := &rt.Notes[i]
		noteQuery := `INSERT INTO rental_notes (rental_id, text, created_on) VALUES ($1, $2, $3) RETURNING id`
		if err := tx.QueryRowContext(ctx, noteQuery, rt.ID, note.Text, now).Scan(&note.ID); err != nil {
			return domain.NewStorageError("insert rental note", err)
		}
		note.CreatedOn = now
	}

	if err := tx.Commit(); err != nil {
		return domain.NewStorageError("commit create rental", err)
	}
	return nil
}

func (r *rentalRepository) GetByID(ctx context.Context, id int64) (*domain.Rental, error) {
	rt := &domain.Rental{}
	query := `SELECT id, customer_id, initial_amount_paise, total_amount_paise, status, created_on FROM rentals WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&rt.ID, &rt.CustomerID, &rt.InitialAmountPaise, &rt.TotalAmountPaise, &rt.Status, &rt.CreatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundf("rental %d not found", id)
	}
	if err != nil {
		return nil, domain.NewStorageError("get rental", err)
	}
	if err := r.loadChildren(ctx, rt); err != nil {
		return nil, err
	}
	return rt, nil
}

func (r *rentalRepository) loadChildren(ctx context.Context, rt *domain.Rental) error {
	items, err := r.db.QueryContext(ctx, `SELECT id, tool_id, tool_name, category, price_paise, count, returned_count, rental_date
	          FROM rental_items WHERE rental_id = $1 ORDER BY id`, rt.ID)
	if err != nil {
		return domain.NewStorageError("get rental items", err)
	}
	defer items.Close()
	for items.Next() {
		var it domain.RentalItem
		if err := items.Scan(&it.ID, &it.ToolID, &it.ToolName, &it.Category, &it.PricePaise, &it.Count, &it.ReturnedCount, &it.RentalDate); err != nil {
			return domain.NewStorageError("scan rental item", err)
		}
		rt.Items = append(rt.Items, it)
	}

	events, err := r.db.QueryContext(ctx, `SELECT e.id, e.item_id, e.count, e.date
	          FROM rental_return_events e JOIN rental_items i ON e.item_id = i.id
	          WHERE i.rental_id = $1 ORDER BY e.id`, rt.ID)
	if err != nil {
		return domain.NewStorageError("get return events", err)
	}
	defer events.Close()
	for events.Next() {
		var ev domain.ReturnEvent
		var itemID int64
		if err := events.Scan(&ev.ID, &itemID, &ev.Count, &ev.Date); err != nil {
			return domain.NewStorageError("scan return event", err)
		}
		for i := range rt.Items {
			if rt.Items[i].ID == itemID {
				rt.Items[i].ReturnEvents = append(rt.Items[i].ReturnEvents, ev)
				break
			}
		}
	}

	adjustments, err := r.db.QueryContext(ctx, `SELECT id, kind, tool_id, amount_paise, event_date, COALESCE(note,''), created_on
	          FROM rental_adjustments WHERE rental_id = $1 ORDER BY id`, rt.ID)
	if err != nil {
		return domain.NewStorageError("get adjustments", err)
	}
	defer adjustments.Close()
	for adjustments.Next() {
		var a domain.Adjustment
		var kind string
		if err := adjustments.Scan(&a.ID, &kind, &a.ToolID, &a.AmountPaise, &a.EventDate, &a.Note, &a.CreatedOn); err != nil {
			return domain.NewStorageError("scan adjustment", err)
		}
		if kind == adjustmentKindDiscount {
			rt.Discounts = append(rt.Discounts, a)
		} else {
			rt.Credits = append(rt.Credits, a)
		}
	}

	notes, err := r.db.QueryContext(ctx, `SELECT id, text, created_on FROM rental_notes WHERE rental_id = $1 ORDER BY id`, rt.ID)
	if err != nil {
		return domain.NewStorageError("get rental notes", err)
	}
	defer notes.Close()
	for notes.Next() {
		var n domain.RentalNote
		if err := notes.Scan(&n.ID, &n.Text, &n.CreatedOn); err != nil {
			return domain.NewStorageError("scan rental note", err)
		}
		rt.Notes = append(rt.Notes, n)
	}
	return nil
}

const (
	adjustmentKindDiscount = "DISCOUNT"
	adjustmentKindCredit   = "CREDIT"
)

func (r *rentalRepository) Update(ctx context.Context, rt *domain.Rental) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.NewStorageError("begin update rental", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `UPDATE rentals SET total_amount_paise=$1, status=$2 WHERE id=$3`,
		rt.TotalAmountPaise, rt.Status, rt.ID)
	if err != nil {
		return domain.NewStorageError("update rental", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundf("rental %d not found", rt.ID)
	}

	now := time.Now()
	for i := range rt.Items {
		item := &rt.Items[i]
		if _, err := tx.ExecContext(ctx, `UPDATE rental_items SET returned_count=$1 WHERE id=$2`, item.ReturnedCount, item.ID); err != nil {
			return domain.NewStorageError("update rental item", err)
		}
		for j := range item.ReturnEvents {
			ev := &item.ReturnEvents[j]
			if ev.ID != 0 {
				continue
			}
			query := `INSERT INTO rental_return_events (item_id, count, date) VALUES ($1, $2, $3) RETURNING id`
			if err := tx.QueryRowContext(ctx, query, item.ID, ev.Count, ev.Date).Scan(&ev.ID); err != nil {
				return domain.NewStorageError("insert return event", err)
			}
		}
	}

	insertAdjustment := func(kind string, a *domain.Adjustment) error {
		query := `INSERT INTO rental_adjustments (rental_id, kind, tool_id, amount_paise, event_date, note, created_on)
		          VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
		if err := tx.QueryRowContext(ctx, query, rt.ID, kind, a.ToolID, a.AmountPaise, a.EventDate, a.Note, now).Scan(&a.ID); err != nil {
			return domain.NewStorageError(fmt.Sprintf("insert %s", kind), err)
		}
		a.CreatedOn = now
		return nil
	}
	for i := range rt.Discounts {
		if rt.Discounts[i].ID == 0 {
			if err := insertAdjustment(adjustmentKindDiscount, &rt.Discounts[i]); err != nil {
				return err
			}
		}
	}
	for i := range rt.Credits {
		if rt.Credits[i].ID == 0 {
			if err := insertAdjustment(adjustmentKindCredit, &rt.Credits[i]); err != nil {
				return err
			}
		}
	}

	for i := range rt.Notes {
		note := &rt.Notes[i]
		if note.ID != 0 {
			continue
		}
		query := `INSERT INTO rental_notes (rental_id, text, created_on) VALUES ($1, $2, $3) RETURNING id`
		if err := tx.QueryRowContext(ctx, query, rt.ID, note.Text, now).Scan(&note.ID); err != nil {
			return domain.NewStorageError("insert rental note", err)
		}
		note.CreatedOn = now
	}

	if err := tx.Commit(); err != nil {
		return domain.NewStorageError("commit update rental", err)
	}
	return nil
}

func (r *rentalRepository) List(ctx context.Context, search, status string, page, pageSize int32) ([]domain.Rental, int32, error) {
	query := `SELECT DISTINCT r.id, r.customer_id, r.initial_amount_paise, r.total_amount_paise, r.status, r.created_on
	          FROM rentals r
	          JOIN customers c ON r.customer_id = c.id
	          LEFT JOIN rental_items i ON i.rental_id = r.id
	          WHERE 1=1`
	args := []interface{}{}
	argIdx := 1
	if search != "" {
		query += fmt.Sprintf(" AND (c.name ILIKE $%d OR i.tool_name ILIKE $%d)", argIdx, argIdx)
		args = append(args, "%"+search+"%")
		argIdx++
	}
	if status != "" {
		query += fmt.Sprintf(" AND r.status = $%d", argIdx)
		args = append(args, status)
		argIdx++
	}

	var count int32
	countQuery := "SELECT count(*) FROM (" + query + ") AS sub"
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&count); err != nil {
		return nil, 0, domain.NewStorageError("count rentals", err)
	}

	offset := (page - 1) * pageSize
	query += fmt.Sprintf(" ORDER BY r.created_on DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, pageSize, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, domain.NewStorageError("list rentals", err)
	}
	defer rows.Close()

	var rentals []domain.Rental
	for rows.Next() {
		var rt domain.Rental
		if err := rows.Scan(&rt.ID, &rt.CustomerID, &rt.InitialAmountPaise, &rt.TotalAmountPaise, &rt.Status, &rt.CreatedOn); err != nil {
			return nil, 0, domain.NewStorageError("scan rental", err)
		}
		rentals = append(rentals, rt)
	}
	if err := rows.Close(); err != nil {
		return nil, 0, domain.NewStorageError("list rentals", err)
	}

	for i := range rentals {
		if err := r.loadChildren(ctx, &rentals[i]); err != nil {
			return nil, 0, err
		}
	}
	return rentals, count, nil
}

func (r *rentalRepository) ListOpenBefore(ctx context.Context, cutoff time.Time) ([]domain.Rental, error) {
	query := `SELECT id, customer_id, initial_amount_paise, total_amount_paise, status, created_on
	          FROM rentals WHERE status IN ($1, $2) AND created_on < $3 ORDER BY created_on`
	rows, err := r.db.QueryContext(ctx, query, domain.RentalStatusRented, domain.RentalStatusPartialReturn, cutoff)
	if err != nil {
		return nil, domain.NewStorageError("list open rentals", err)
	}
	defer rows.Close()

	var rentals []domain.Rental
	for rows.Next() {
		var rt domain.Rental
		if err := rows.Scan(&rt.ID, &rt.CustomerID, &rt.InitialAmountPaise, &rt.TotalAmountPaise, &rt.Status, &rt.CreatedOn); err != nil {
			return nil, domain.NewStorageError("scan rental", err)
		}
		rentals = append(rentals, rt)
	}
	if err := rows.Close(); err != nil {
		return nil, domain.NewStorageError("list open rentals", err)
	}

	for i := range rentals {
		if err := r.loadChildren(ctx, &rentals[i]); err != nil {
			return nil, err
		}
	}
	return rentals, nil
}
