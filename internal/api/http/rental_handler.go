package http

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"rentalshop-backend/internal/domain"
	"rentalshop-backend/internal/service"
)

// RentalHandler exposes the rental billing operations over HTTP
type RentalHandler struct {
	rentals service.RentalService
}

func NewRentalHandler(rentals service.RentalService) *RentalHandler {
	return &RentalHandler{rentals: rentals}
}

type createRentalRequest struct {
	CustomerID int64 `json:"customer_id"`
	Items      []struct {
		ToolID int64 `json:"tool_id"`
		Count  int32 `json:"count"`
	} `json:"items"`
	Notes                  []string `json:"notes"`
	AccessoryPaymentMethod string   `json:"accessory_payment_method"`
}

func (h *RentalHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRentalRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}
	in := service.CreateRentalInput{
		CustomerID:             req.CustomerID,
		Notes:                  req.Notes,
		AccessoryPaymentMethod: domain.PaymentMethod(req.AccessoryPaymentMethod),
	}
	for _, item := range req.Items {
		in.Items = append(in.Items, service.RentalItemInput{ToolID: item.ToolID, Count: item.Count})
	}
	rental, err := h.rentals.CreateRental(r.Context(), in)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, rental)
}

func (h *RentalHandler) Track(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	projection, err := h.rentals.TrackRental(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, projection)
}

type markReturnRequest struct {
	ToolID        int64  `json:"tool_id"`
	Count         int32  `json:"count"`
	ReturnDate    string `json:"return_date,omitempty"` // RFC 3339; empty means now
	DiscountPaise int64  `json:"discount_paise"`
	CreditPaise   int64  `json:"credit_paise"`
	PaymentMethod string `json:"payment_method"`
	Note          string `json:"note,omitempty"`
}

func parseReturnDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		// Accept a bare date too.
		key, derr := domain.ParseDateKey(raw)
		if derr != nil {
			return nil, domain.Validationf("invalid return date %q", raw)
		}
		t = key.Time()
	}
	return &t, nil
}

func (h *RentalHandler) MarkReturn(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	var req markReturnRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}
	returnDate, err := parseReturnDate(req.ReturnDate)
	if err != nil {
		respondError(w, err)
		return
	}
	projection, err := h.rentals.MarkReturn(r.Context(), service.MarkReturnInput{
		RentalID:      id,
		ToolID:        req.ToolID,
		Count:         req.Count,
		ReturnDate:    returnDate,
		DiscountPaise: req.DiscountPaise,
		CreditPaise:   req.CreditPaise,
		PaymentMethod: domain.PaymentMethod(req.PaymentMethod),
		Note:          req.Note,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, projection)
}

type markAllReturnedRequest struct {
	ReturnDate    string `json:"return_date,omitempty"`
	DiscountPaise int64  `json:"discount_paise"`
	CreditPaise   int64  `json:"credit_paise"`
	PaymentMethod string `json:"payment_method"`
	Note          string `json:"note,omitempty"`
}

func (h *RentalHandler) MarkAllReturned(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	var req markAllReturnedRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}
	returnDate, err := parseReturnDate(req.ReturnDate)
	if err != nil {
		respondError(w, err)
		return
	}
	projection, err := h.rentals.MarkAllReturned(r.Context(), service.MarkAllReturnedInput{
		RentalID:      id,
		ReturnDate:    returnDate,
		DiscountPaise: req.DiscountPaise,
		CreditPaise:   req.CreditPaise,
		PaymentMethod: domain.PaymentMethod(req.PaymentMethod),
		Note:          req.Note,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, projection)
}

func (h *RentalHandler) List(w http.ResponseWriter, r *http.Request) {
	page := queryInt32(r, "page", 1)
	pageSize := queryInt32(r, "page_size", 10)
	rentals, total, err := h.rentals.ListRentals(r.Context(),
		r.URL.Query().Get("search"), r.URL.Query().Get("status"), page, pageSize)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, pagedResponse{Items: rentals, Total: total, Page: page, PageSize: pageSize})
}

// RegisterRentalRoutes registers the rental endpoints
func RegisterRentalRoutes(router *mux.Router, rentals service.RentalService) {
	h := NewRentalHandler(rentals)
	router.HandleFunc("/api/v1/rentals", h.Create).Methods("POST")
	router.HandleFunc("/api/v1/rentals", h.List).Methods("GET")
	router.HandleFunc("/api/v1/rentals/{id}", h.Track).Methods("GET")
	router.HandleFunc("/api/v1/rentals/{id}/return", h.MarkReturn).Methods("POST")
	router.HandleFunc("/api/v1/rentals/{id}/return-all", h.MarkAllReturned).Methods("POST")
}
