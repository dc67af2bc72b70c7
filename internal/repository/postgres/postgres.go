package postgres

import (
	"database/sql"

	"rentalshop-backend/internal/repository"

	_ "github.com/lib/pq"
)

type Store struct {
	db *sql.DB
	repository.CustomerRepository
	repository.ToolRepository
	repository.RentalRepository
	repository.LedgerRepository
	repository.OutboxRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                 db,
		CustomerRepository: NewCustomerRepository(db),
		ToolRepository:     NewToolRepository(db),
		RentalRepository:   NewRentalRepository(db),
		LedgerRepository:   NewLedgerRepository(db),
		OutboxRepository:   NewOutboxRepository(db),
	}
}
