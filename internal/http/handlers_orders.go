package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"padaria/internal/core"
	"padaria/internal/listing"
	applog "padaria/internal/log"
	"padaria/internal/store"
)

const maxBodyBytes = 1 << 20 // 1 MiB covers any realistic backup file

// handleListOrders returns one page of the order history. Query parameters:
// search, sort (clientName|requestDate), dir (asc|desc), page, pageSize.
func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := s.backend.ListOrders(r.Context())
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "List orders error", "error", err)
		writeError(w, http.StatusInternalServerError, "erro ao carregar pedidos")
		return
	}

	page := listing.Apply(orders, s.listingQuery(r))
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) listingQuery(r *http.Request) listing.Query {
	q := listing.Query{
		Search:   sanitizeInput(r.URL.Query().Get("search")),
		Key:      listing.SortKey(r.URL.Query().Get("sort")),
		PageSize: s.opts.PageSize,
	}

	switch strings.ToLower(r.URL.Query().Get("dir")) {
	case "asc":
		q.Direction = listing.Ascending
	case "desc":
		q.Direction = listing.Descending
	}

	if v := r.URL.Query().Get("page"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			q.Page = p
		}
	}
	if v := r.URL.Query().Get("pageSize"); v != "" {
		if ps, err := strconv.Atoi(v); err == nil && ps > 0 && ps <= 500 {
			q.PageSize = ps
		}
	}
	return q
}

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	order, ok := s.readOrder(w, r)
	if !ok {
		return
	}

	created, err := s.backend.CreateOrder(r.Context(), order)
	if err != nil {
		s.writeOrderError(w, r, err)
		return
	}

	s.invalidateViews()
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateOrder(w http.ResponseWriter, r *http.Request) {
	order, ok := s.readOrder(w, r)
	if !ok {
		return
	}
	order.ID = r.PathValue("id")

	if err := s.backend.UpdateOrder(r.Context(), order); err != nil {
		s.writeOrderError(w, r, err)
		return
	}

	s.invalidateViews()
	writeJSON(w, http.StatusOK, order)
}

func (s *Server) handleDeleteOrder(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := s.backend.DeleteOrder(r.Context(), id); err != nil {
		s.writeOrderError(w, r, err)
		return
	}

	s.invalidateViews()
	w.WriteHeader(http.StatusNoContent)
}

// handleImportOrders restores orders from an uploaded backup. The payload
// must be a JSON array; malformed records are dropped, not rejected.
func (s *Server) handleImportOrders(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "arquivo muito grande")
		return
	}

	var records []map[string]any
	if err := json.Unmarshal(body, &records); err != nil {
		// Not an array of records: nothing to accept.
		writeJSON(w, http.StatusOK, map[string]int{"accepted": 0, "total": 0})
		return
	}

	accepted, err := s.backend.ImportOrders(r.Context(), records)
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Import orders error", "error", err)
		writeError(w, http.StatusInternalServerError, "erro ao importar pedidos")
		return
	}

	s.invalidateViews()
	writeJSON(w, http.StatusOK, map[string]int{"accepted": accepted, "total": len(records)})
}

// handleExportOrders streams the full order set as a downloadable JSON backup.
func (s *Server) handleExportOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := s.backend.ListOrders(r.Context())
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Export orders error", "error", err)
		writeError(w, http.StatusInternalServerError, "erro ao exportar pedidos")
		return
	}

	payload, err := json.MarshalIndent(orders, "", "  ")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "erro ao serializar pedidos")
		return
	}

	filename := fmt.Sprintf("backup_pedidos_%s.json", core.FormatDay(time.Now()))
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}

// readOrder decodes and sanitizes an order from the request body.
func (s *Server) readOrder(w http.ResponseWriter, r *http.Request) (core.Order, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "corpo da requisição muito grande")
		return core.Order{}, false
	}

	var order core.Order
	if err := json.Unmarshal(body, &order); err != nil {
		switch {
		case errors.Is(err, core.ErrEmptyClientName):
			writeError(w, http.StatusUnprocessableEntity, "nome do cliente é obrigatório")
		case errors.Is(err, core.ErrInvalidDate):
			writeError(w, http.StatusUnprocessableEntity, "data do pedido inválida")
		default:
			writeError(w, http.StatusBadRequest, "JSON inválido")
		}
		return core.Order{}, false
	}

	order.ClientName = sanitizeInput(order.ClientName)
	return order, true
}

func (s *Server) writeOrderError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrOrderNotFound):
		writeError(w, http.StatusNotFound, "pedido não encontrado")
	case errors.Is(err, core.ErrEmptyClientName):
		writeError(w, http.StatusUnprocessableEntity, "nome do cliente é obrigatório")
	case errors.Is(err, core.ErrInvalidDate):
		writeError(w, http.StatusUnprocessableEntity, "data do pedido inválida")
	case errors.Is(err, core.ErrInvalidAmount):
		writeError(w, http.StatusUnprocessableEntity, "quantidade inválida")
	default:
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Order operation error", "error", err)
		writeError(w, http.StatusInternalServerError, "erro interno")
	}
}
