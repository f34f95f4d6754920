package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rl1809/inventory-store/internal/core/domain"
	"github.com/rl1809/inventory-store/internal/core/service"
)

type HTTPHandler struct {
	inventoryService *service.InventoryService
}

type TotalRequest struct {
	Total *uint64 `json:"total"`
}

type DeductRequest struct {
	Count *uint64 `json:"count"`
}

type IncreaseRequest struct {
	By *uint64 `json:"by"`
}

type ReturnRequest struct {
	Amount *uint64 `json:"amount"`
}

type InventoryResponse struct {
	Total   uint32 `json:"total"`
	Current uint32 `json:"current"`
}

type CurrentResponse struct {
	Current uint32 `json:"current"`
}

type MemoryUsageResponse struct {
	Bytes int `json:"bytes"`
}

type SnapshotResponse struct {
	ID      string `json:"id"`
	Records int    `json:"records"`
}

type ErrorResponse struct {
	Message string `json:"message"`
}

func NewHTTPHandler(inventoryService *service.InventoryService) *HTTPHandler {
	return &HTTPHandler{inventoryService: inventoryService}
}

// Routes registers every endpoint on mux.
func (h *HTTPHandler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.HealthCheck)
	mux.HandleFunc("PUT /api/inventory/{key}", h.Set)
	mux.HandleFunc("POST /api/inventory/{key}", h.SetNX)
	mux.HandleFunc("GET /api/inventory/{key}", h.Get)
	mux.HandleFunc("DELETE /api/inventory/{key}", h.Delete)
	mux.HandleFunc("POST /api/inventory/{key}/deduct", h.Deduct)
	mux.HandleFunc("POST /api/inventory/{key}/increase", h.Increase)
	mux.HandleFunc("POST /api/inventory/{key}/return", h.Return)
	mux.HandleFunc("GET /api/inventory/{key}/memory", h.MemoryUsage)
	mux.HandleFunc("POST /api/snapshot", h.Snapshot)
}

func (h *HTTPHandler) Set(w http.ResponseWriter, r *http.Request) {
	var req TotalRequest
	if !decode(w, r, &req) || !required(w, "total", req.Total) {
		return
	}
	if err := h.inventoryService.Set(r.Context(), r.PathValue("key"), *req.Total); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) SetNX(w http.ResponseWriter, r *http.Request) {
	var req TotalRequest
	if !decode(w, r, &req) || !required(w, "total", req.Total) {
		return
	}
	if err := h.inventoryService.SetNX(r.Context(), r.PathValue("key"), *req.Total); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	inv, found, err := h.inventoryService.Get(r.Context(), r.PathValue("key"))
	writeInventory(w, inv, found, err)
}

func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	inv, found, err := h.inventoryService.Delete(r.Context(), r.PathValue("key"))
	writeInventory(w, inv, found, err)
}

func (h *HTTPHandler) Deduct(w http.ResponseWriter, r *http.Request) {
	var req DeductRequest
	if r.ContentLength != 0 && !decode(w, r, &req) {
		return
	}
	count := uint64(service.DefaultDeduction)
	if req.Count != nil {
		count = *req.Count
	}
	current, found, err := h.inventoryService.Deduct(r.Context(), r.PathValue("key"), count)
	writeCurrent(w, current, found, err)
}

func (h *HTTPHandler) Increase(w http.ResponseWriter, r *http.Request) {
	var req IncreaseRequest
	if !decode(w, r, &req) || !required(w, "by", req.By) {
		return
	}
	inv, found, err := h.inventoryService.Increase(r.Context(), r.PathValue("key"), *req.By)
	writeInventory(w, inv, found, err)
}

func (h *HTTPHandler) Return(w http.ResponseWriter, r *http.Request) {
	var req ReturnRequest
	if !decode(w, r, &req) || !required(w, "amount", req.Amount) {
		return
	}
	current, found, err := h.inventoryService.Return(r.Context(), r.PathValue("key"), *req.Amount)
	writeCurrent(w, current, found, err)
}

func (h *HTTPHandler) MemoryUsage(w http.ResponseWriter, r *http.Request) {
	size, found, err := h.inventoryService.MemoryUsage(r.Context(), r.PathValue("key"))
	switch {
	case err != nil:
		writeError(w, err)
	case !found:
		writeJSON(w, http.StatusNotFound, ErrorResponse{Message: "no value"})
	default:
		writeJSON(w, http.StatusOK, MemoryUsageResponse{Bytes: size})
	}
}

func (h *HTTPHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := h.inventoryService.Snapshot(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SnapshotResponse{ID: snap.ID, Records: len(snap.Entries)})
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: "invalid request body"})
		return false
	}
	return true
}

func required(w http.ResponseWriter, field string, v *uint64) bool {
	if v == nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: "missing " + field})
		return false
	}
	return true
}

func writeInventory(w http.ResponseWriter, inv domain.Inventory, found bool, err error) {
	switch {
	case err != nil:
		writeError(w, err)
	case !found:
		writeJSON(w, http.StatusNotFound, ErrorResponse{Message: "no value"})
	default:
		writeJSON(w, http.StatusOK, InventoryResponse{Total: inv.Total(), Current: inv.Current()})
	}
}

func writeCurrent(w http.ResponseWriter, current uint32, found bool, err error) {
	switch {
	case err != nil:
		writeError(w, err)
	case !found:
		writeJSON(w, http.StatusNotFound, ErrorResponse{Message: "no value"})
	default:
		writeJSON(w, http.StatusOK, CurrentResponse{Current: current})
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	switch {
	case errors.Is(err, service.ErrOutOfRange), errors.Is(err, service.ErrKeyTooLong):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrExists):
		status, message = http.StatusConflict, err.Error()
	case errors.Is(err, service.ErrShortage):
		status, message = http.StatusGone, err.Error()
	case errors.Is(err, service.ErrOverReturn), errors.Is(err, service.ErrIncreaseOverflow):
		status, message = http.StatusConflict, err.Error()
	case errors.Is(err, service.ErrNoSnapshotStore):
		status, message = http.StatusServiceUnavailable, err.Error()
	}

	writeJSON(w, status, ErrorResponse{Message: message})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
