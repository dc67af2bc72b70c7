package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"rentalshop-backend/internal/domain"
	"rentalshop-backend/internal/repository"
)

type toolRepository struct {
	db *sql.DB
}

func NewToolRepository(db *sql.DB) repository.ToolRepository {
	return &toolRepository{db: db}
}

func (r *toolRepository) Create(ctx context.Context, t *domain.Tool) error {
	query := `INSERT INTO tools (name, category, price_paise, available_count, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	now := time.Now()
	err := r.db.QueryRowContext(ctx, query, t.Name, t.Category, t.PricePaise, t.AvailableCount, now, now).Scan(&t.ID)
	if err != nil {
		return domain.NewStorageError("create tool", err)
	}
	t.CreatedOn = now
	t.UpdatedOn = now
	return nil
}

func (r *toolRepository) GetByID(ctx context.Context, id int64) (*domain.Tool, error) {
	t := &domain.Tool{}
	query := `SELECT id, name, category, price_paise, available_count, created_on, updated_on FROM tools WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&t.ID, &t.Name, &t.Category, &t.PricePaise, &t.AvailableCount, &t.CreatedOn, &t.UpdatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundf("tool %d not found", id)
	}
	if err != nil {
		return nil, domain.NewStorageError("get tool", err)
	}
	return t, nil
}

func (r *toolRepository) Update(ctx context.Context, t *domain.Tool) error {
	query := `UPDATE tools SET name=$1, category=$2, price_paise=$3, available_count=$4, updated_on=$5 WHERE id=$6`
	res, err := r.db.ExecContext(ctx, query, t.Name, t.Category, t.PricePaise, t.AvailableCount, time.Now(), t.ID)
	if err != nil {
		return domain.NewStorageError("update tool", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundf("tool %d not found", t.ID)
	}
	return nil
}

func (r *toolRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tools WHERE id = $1`, id)
	if err != nil {
		return domain.NewStorageError("delete tool", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundf("tool %d not found", id)
	}
	return nil
}

func (r *toolRepository) List(ctx context.Context, page, pageSize int32) ([]domain.Tool, int32, error) {
	var count int32
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM tools`).Scan(&count); err != nil {
		return nil, 0, domain.NewStorageError("count tools", err)
	}

	offset := (page - 1) * pageSize
	query := `SELECT id, name, category, price_paise, available_count, created_on, updated_on
	          FROM tools ORDER BY name LIMIT $1 OFFSET $2`
	rows, err := r.db.QueryContext(ctx, query, pageSize, offset)
	if err != nil {
		return nil, 0, domain.NewStorageError("list tools", err)
	}
	defer rows.Close()

	var tools []domain.Tool
	for rows.Next() {
		var t domain.Tool
		if err := rows.Scan(&t.ID, &t.Name, &t.Category, &t.PricePaise, &t.AvailableCount, &t.CreatedOn, &t.UpdatedOn); err != nil {
			return nil, 0, domain.NewStorageError("scan tool", err)
		}
		tools = append(tools, t)
	}
	return tools, count, nil
}

func (r *toolRepository) AdjustAvailableCount(ctx context.Context, toolID int64, delta int32) error {
	query := `UPDATE tools SET available_count = available_count + $1, updated_on = $2
	          WHERE id = $3 AND available_count + $1 >= 0`
	res, err := r.db.ExecContext(ctx, query, delta, time.Now(), toolID)
	if err != nil {
		return domain.NewStorageError("adjust tool count", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.NewStorageError("adjust tool count", err)
	}
	if n == 0 {
		return domain.Conflictf("tool %d: adjusting available count by %d would make it negative, or tool is gone", toolID, delta)
	}
	return nil
}
