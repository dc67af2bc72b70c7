package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"rentalshop-backend/internal/domain"
	"rentalshop-backend/internal/repository"
)

type customerRepository struct {
	db *sql.DB
}

func NewCustomerRepository(db *sql.DB) repository.CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) Create(ctx context.Context, c *domain.Customer) error {
	query := `INSERT INTO customers (name, address, phone, aadhar, profession, total_credit_paise, created_on)
	          VALUES ($1, $2, $3, $4, $5, 0, $6) RETURNING id`
	now := time.Now()
	err := r.db.QueryRowContext(ctx, query, c.Name, c.Address, c.Phone, c.Aadhar, c.Profession, now).Scan(&c.ID)
	if err != nil {
		return domain.NewStorageError("create customer", err)
	}
	c.CreatedOn = now
	return nil
}

func (r *customerRepository) GetByID(ctx context.Context, id int64) (*domain.Customer, error) {
	c := &domain.Customer{}
	query := `SELECT id, name, COALESCE(address,''), phone, COALESCE(aadhar,''), COALESCE(profession,''), total_credit_paise, created_on
	          FROM customers WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Name, &c.Address, &c.Phone, &c.Aadhar, &c.Profession, &c.TotalCreditPaise, &c.CreatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundf("customer %d not found", id)
	}
	if err != nil {
		return nil, domain.NewStorageError("get customer", err)
	}

	history, err := r.db.QueryContext(ctx, `SELECT rental_id FROM customer_order_history WHERE customer_id = $1 ORDER BY created_on`, id)
	if err != nil {
		return nil, domain.NewStorageError("get order history", err)
	}
	defer history.Close()
	for history.Next() {
		var rentalID int64
		if err := history.Scan(&rentalID); err != nil {
			return nil, domain.NewStorageError("scan order history", err)
		}
		c.OrderHistory = append(c.OrderHistory, rentalID)
	}

	credits, err := r.db.QueryContext(ctx, `SELECT id, rental_id, amount_paise, COALESCE(note,''), created_on
	          FROM customer_credit_entries WHERE customer_id = $1 ORDER BY created_on`, id)
	if err != nil {
		return nil, domain.NewStorageError("get credit entries", err)
	}
	defer credits.Close()
	for credits.Next() {
		var e domain.CreditEntry
		if err := credits.Scan(&e.ID, &e.RentalID, &e.AmountPaise, &e.Note, &e.CreatedOn); err != nil {
			return nil, domain.NewStorageError("scan credit entry", err)
		}
		c.Credits = append(c.Credits, e)
	}
	return c, nil
}

func (r *customerRepository) Update(ctx context.Context, c *domain.Customer) error {
	query := `UPDATE customers SET name=$1, address=$2, phone=$3, aadhar=$4, profession=$5 WHERE id=$6`
	res, err := r.db.ExecContext(ctx, query, c.Name, c.Address, c.Phone, c.Aadhar, c.Profession, c.ID)
	if err != nil {
		return domain.NewStorageError("update customer", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundf("customer %d not found", c.ID)
	}
	return nil
}

func (r *customerRepository) List(ctx context.Context, search string, page, pageSize int32) ([]domain.Customer, int32, error) {
	where := ``
	args := []interface{}{}
	if search != "" {
		where = ` WHERE name ILIKE $1 OR phone LIKE $1`
		args = append(args, "%"+search+"%")
	}

	var count int32
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM customers`+where, args...).Scan(&count); err != nil {
		return nil, 0, domain.NewStorageError("count customers", err)
	}

	offset := (page - 1) * pageSize
	query := `SELECT id, name, COALESCE(address,''), phone, COALESCE(aadhar,''), COALESCE(profession,''), total_credit_paise, created_on
	          FROM customers` + where
	if search != "" {
		query += ` ORDER BY name LIMIT $2 OFFSET $3`
	} else {
		query += ` ORDER BY name LIMIT $1 OFFSET $2`
	}
	args = append(args, pageSize, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, domain.NewStorageError("list customers", err)
	}
	defer rows.Close()

	var customers []domain.Customer
	for rows.Next() {
		var c domain.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Address, &c.Phone, &c.Aadhar, &c.Profession, &c.TotalCreditPaise, &c.CreatedOn); err != nil {
			return nil, 0, domain.NewStorageError("scan customer", err)
		}
		customers = append(customers, c)
	}
	return customers, count, nil
}

func (r *customerRepository) AppendOrderHistory(ctx context.Context, customerID, rentalID int64) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO customer_order_history (customer_id, rental_id, created_on) VALUES ($1, $2, $3)`,
		customerID, rentalID, time.Now())
	if err != nil {
		return domain.NewStorageError("append order history", err)
	}
	return nil
}

func (r *customerRepository) AppendCredit(ctx context.Context, customerID int64, e *domain.CreditEntry) error {
	query := `INSERT INTO customer_credit_entries (customer_id, rental_id, amount_paise, note, created_on)
	          VALUES ($1, $2, $3, $4, $5) RETURNING id`
	now := time.Now()
	err := r.db.QueryRowContext(ctx, query, customerID, e.RentalID, e.AmountPaise, e.Note, now).Scan(&e.ID)
	if err != nil {
		return domain.NewStorageError("append credit entry", err)
	}
	e.CreatedOn = now
	return nil
}

func (r *customerRepository) RemoveCreditsByRental(ctx context.Context, customerID, rentalID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM customer_credit_entries WHERE customer_id = $1 AND rental_id = $2`,
		customerID, rentalID)
	if err != nil {
		return domain.NewStorageError("remove credit entries", err)
	}
	return nil
}

func (r *customerRepository) ClearCredits(ctx context.Context, customerID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM customer_credit_entries WHERE customer_id = $1`, customerID)
	if err != nil {
		return domain.NewStorageError("clear credit entries", err)
	}
	return nil
}

func (r *customerRepository) SetTotalCredit(ctx context.Context, customerID, totalPaise int64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE customers SET total_credit_paise = $1 WHERE id = $2`, totalPaise, customerID)
	if err != nil {
		return domain.NewStorageError("set total credit", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundf("customer %d not found", customerID)
	}
	return nil
}
