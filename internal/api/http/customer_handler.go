package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"rentalshop-backend/internal/domain"
	"rentalshop-backend/internal/service"
)

// CustomerHandler exposes customer records and credit repayment over HTTP
type CustomerHandler struct {
	customers service.CustomerService
}

func NewCustomerHandler(customers service.CustomerService) *CustomerHandler {
	return &CustomerHandler{customers: customers}
}

type customerRequest struct {
	Name       string `json:"name"`
	Address    string `json:"address,omitempty"`
	Phone      string `json:"phone"`
	Aadhar     string `json:"aadhar,omitempty"`
	Profession string `json:"profession,omitempty"`
}

func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}
	customer := &domain.Customer{
		Name:       req.Name,
		Address:    req.Address,
		Phone:      req.Phone,
		Aadhar:     req.Aadhar,
		Profession: req.Profession,
	}
	if err := h.customers.CreateCustomer(r.Context(), customer); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, customer)
}

func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	customer, err := h.customers.GetCustomer(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, customer)
}

func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	var req customerRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}
	customer, err := h.customers.GetCustomer(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	customer.Name = req.Name
	customer.Address = req.Address
	customer.Phone = req.Phone
	customer.Aadhar = req.Aadhar
	customer.Profession = req.Profession
	if err := h.customers.UpdateCustomer(r.Context(), customer); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, customer)
}

func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	page := queryInt32(r, "page", 1)
	pageSize := queryInt32(r, "page_size", 10)
	customers, total, err := h.customers.ListCustomers(r.Context(), r.URL.Query().Get("search"), page, pageSize)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, pagedResponse{Items: customers, Total: total, Page: page, PageSize: pageSize})
}

type repayCreditRequest struct {
	RentalID      *int64 `json:"rental_id,omitempty"`
	PaymentMethod string `json:"payment_method"`
}

func (h *CustomerHandler) RepayCredit(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	var req repayCreditRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}
	customer, err := h.customers.RepayCredit(r.Context(), service.RepayCreditInput{
		CustomerID:    id,
		RentalID:      req.RentalID,
		PaymentMethod: domain.PaymentMethod(req.PaymentMethod),
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, customer)
}

// RegisterCustomerRoutes registers the customer endpoints
func RegisterCustomerRoutes(router *mux.Router, customers service.CustomerService) {
	h := NewCustomerHandler(customers)
	router.HandleFunc("/api/v1/customers", h.Create).Methods("POST")
	router.HandleFunc("/api/v1/customers", h.List).Methods("GET")
	router.HandleFunc("/api/v1/customers/{id}", h.Get).Methods("GET")
	router.HandleFunc("/api/v1/customers/{id}", h.Update).Methods("PUT")
	router.HandleFunc("/api/v1/customers/{id}/repay-credit", h.RepayCredit).Methods("POST")
}
