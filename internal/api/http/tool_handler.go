package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"rentalshop-backend/internal/domain"
	"rentalshop-backend/internal/service"
)

// ToolHandler exposes the tool catalog over HTTP
type ToolHandler struct {
	tools service.ToolService
}

func NewToolHandler(tools service.ToolService) *ToolHandler {
	return &ToolHandler{tools: tools}
}

type toolRequest struct {
	Name           string `json:"name"`
	Category       string `json:"category"`
	PricePaise     int64  `json:"price_paise"`
	AvailableCount int32  `json:"available_count"`
}

func (h *ToolHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req toolRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}
	tool := &domain.Tool{
		Name:           req.Name,
		Category:       domain.ToolCategory(req.Category),
		PricePaise:     req.PricePaise,
		AvailableCount: req.AvailableCount,
	}
	if err := h.tools.AddTool(r.Context(), tool); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, tool)
}

func (h *ToolHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	tool, err := h.tools.GetTool(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, tool)
}

func (h *ToolHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	var req toolRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}
	tool, err := h.tools.GetTool(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	tool.Name = req.Name
	tool.Category = domain.ToolCategory(req.Category)
	tool.PricePaise = req.PricePaise
	tool.AvailableCount = req.AvailableCount
	if err := h.tools.UpdateTool(r.Context(), tool); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, tool)
}

func (h *ToolHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	if err := h.tools.DeleteTool(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (h *ToolHandler) List(w http.ResponseWriter, r *http.Request) {
	page := queryInt32(r, "page", 1)
	pageSize := queryInt32(r, "page_size", 10)
	tools, total, err := h.tools.ListTools(r.Context(), page, pageSize)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, pagedResponse{Items: tools, Total: total, Page: page, PageSize: pageSize})
}

// RegisterToolRoutes registers the tool catalog endpoints
func RegisterToolRoutes(router *mux.Router, tools service.ToolService) {
	h := NewToolHandler(tools)
	router.HandleFunc("/api/v1/tools", h.Create).Methods("POST")
	router.HandleFunc("/api/v1/tools", h.List).Methods("GET")
	router.HandleFunc("/api/v1/tools/{id}", h.Get).Methods("GET")
	router.HandleFunc("/api/v1/tools/{id}", h.Update).Methods("PUT")
	router.HandleFunc("/api/v1/tools/{id}", h.Delete).Methods("DELETE")
}
