package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"rentalshop-backend/internal/service"
)

// Services bundles everything the router needs.
type Services struct {
	Rentals   service.RentalService
	Ledger    service.LedgerService
	Customers service.CustomerService
	Tools     service.ToolService
}

// NewRouter builds the full API router.
func NewRouter(svcs Services) *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods("GET")

	RegisterRentalRoutes(router, svcs.Rentals)
	RegisterLedgerRoutes(router, svcs.Ledger)
	RegisterCustomerRoutes(router, svcs.Customers)
	RegisterToolRoutes(router, svcs.Tools)
	return router
}
