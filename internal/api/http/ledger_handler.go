package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"rentalshop-backend/internal/domain"
	"rentalshop-backend/internal/service"
)

// LedgerHandler exposes the daily ledger operations over HTTP
type LedgerHandler struct {
	ledger service.LedgerService
}

func NewLedgerHandler(ledger service.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledger: ledger}
}

// queryDate reads the optional date parameter; empty means today.
func queryDate(r *http.Request) (domain.DateKey, error) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		return "", nil
	}
	return domain.ParseDateKey(raw)
}

func (h *LedgerHandler) GetDay(w http.ResponseWriter, r *http.Request) {
	date, err := queryDate(r)
	if err != nil {
		respondError(w, err)
		return
	}
	day, err := h.ledger.GetDay(r.Context(), date)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dayView(day))
}

type entryRequest struct {
	AmountPaise   int64  `json:"amount_paise"`
	PaymentMethod string `json:"payment_method"`
	Category      string `json:"category,omitempty"`
	Description   string `json:"description,omitempty"`
	Notes         string `json:"notes,omitempty"`
	Date          string `json:"date,omitempty"`
}

func (req entryRequest) toInput() service.EntryInput {
	return service.EntryInput{
		AmountPaise:   req.AmountPaise,
		PaymentMethod: domain.PaymentMethod(req.PaymentMethod),
		Category:      req.Category,
		Description:   req.Description,
		Notes:         req.Notes,
		Date:          domain.DateKey(req.Date),
	}
}

func (h *LedgerHandler) AddDebit(w http.ResponseWriter, r *http.Request) {
	var req entryRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}
	day, err := h.ledger.AddDebit(r.Context(), req.toInput())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, dayView(day))
}

func (h *LedgerHandler) AddCredit(w http.ResponseWriter, r *http.Request) {
	var req entryRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}
	day, err := h.ledger.AddCredit(r.Context(), req.toInput())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, dayView(day))
}

type transferRequest struct {
	AmountPaise int64  `json:"amount_paise"`
	From        string `json:"from"`
	To          string `json:"to"`
	Notes       string `json:"notes,omitempty"`
	Date        string `json:"date,omitempty"`
}

func (h *LedgerHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}
	day, err := h.ledger.Transfer(r.Context(), service.TransferInput{
		AmountPaise: req.AmountPaise,
		From:        domain.PaymentMethod(req.From),
		To:          domain.PaymentMethod(req.To),
		Notes:       req.Notes,
		Date:        domain.DateKey(req.Date),
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, dayView(day))
}

type dayActionRequest struct {
	Date string `json:"date,omitempty"`
}

func (h *LedgerHandler) dayAction(w http.ResponseWriter, r *http.Request,
	fn func(r *http.Request, date domain.DateKey) (*domain.LedgerDay, error)) {
	var req dayActionRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}
	day, err := fn(r, domain.DateKey(req.Date))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dayView(day))
}

func (h *LedgerHandler) CloseDay(w http.ResponseWriter, r *http.Request) {
	h.dayAction(w, r, func(r *http.Request, date domain.DateKey) (*domain.LedgerDay, error) {
		return h.ledger.CloseDay(r.Context(), date)
	})
}

func (h *LedgerHandler) UndoClose(w http.ResponseWriter, r *http.Request) {
	h.dayAction(w, r, func(r *http.Request, date domain.DateKey) (*domain.LedgerDay, error) {
		return h.ledger.UndoClose(r.Context(), date)
	})
}

func (h *LedgerHandler) SetOpeningBalance(w http.ResponseWriter, r *http.Request) {
	h.dayAction(w, r, func(r *http.Request, date domain.DateKey) (*domain.LedgerDay, error) {
		return h.ledger.SetOpeningBalance(r.Context(), date)
	})
}

func (h *LedgerHandler) Categories(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"categories": domain.ExpenseCategories})
}

// ledgerDayResponse is a ledger day plus its computed running balances.
type ledgerDayResponse struct {
	*domain.LedgerDay
	CashBalancePaise      int64 `json:"cash_balance_paise"`
	UPIBalancePaise       int64 `json:"upi_balance_paise"`
	AvailableBalancePaise int64 `json:"available_balance_paise"`
}

func dayView(day *domain.LedgerDay) ledgerDayResponse {
	return ledgerDayResponse{
		LedgerDay:             day,
		CashBalancePaise:      day.Balance(domain.PaymentMethodCash),
		UPIBalancePaise:       day.Balance(domain.PaymentMethodUPI),
		AvailableBalancePaise: day.AvailableBalance(),
	}
}

// RegisterLedgerRoutes registers the daily ledger endpoints
func RegisterLedgerRoutes(router *mux.Router, ledger service.LedgerService) {
	h := NewLedgerHandler(ledger)
	router.HandleFunc("/api/v1/ledger", h.GetDay).Methods("GET")
	router.HandleFunc("/api/v1/ledger/categories", h.Categories).Methods("GET")
	router.HandleFunc("/api/v1/ledger/debit", h.AddDebit).Methods("POST")
	router.HandleFunc("/api/v1/ledger/credit", h.AddCredit).Methods("POST")
	router.HandleFunc("/api/v1/ledger/transfer", h.Transfer).Methods("POST")
	router.HandleFunc("/api/v1/ledger/close", h.CloseDay).Methods("POST")
	router.HandleFunc("/api/v1/ledger/undo-close", h.UndoClose).Methods("POST")
	router.HandleFunc("/api/v1/ledger/opening-balance", h.SetOpeningBalance).Methods("POST")
}
