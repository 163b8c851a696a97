package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"padaria/internal/core"
	applog "padaria/internal/log"
	"padaria/internal/store"
)

func (s *Server) handleListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := s.backend.ListClients(r.Context())
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "List clients error", "error", err)
		writeError(w, http.StatusInternalServerError, "erro ao carregar clientes")
		return
	}
	if clients == nil {
		clients = []core.Client{}
	}
	writeJSON(w, http.StatusOK, clients)
}

func (s *Server) handleCreateClient(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "JSON inválido")
		return
	}

	client, err := s.backend.CreateClient(r.Context(), sanitizeInput(body.Name))
	switch {
	case errors.Is(err, core.ErrEmptyClientName):
		writeError(w, http.StatusUnprocessableEntity, "nome do cliente é obrigatório")
		return
	case errors.Is(err, store.ErrClientExists):
		writeError(w, http.StatusConflict, "cliente já cadastrado")
		return
	case err != nil:
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Create client error", "error", err)
		writeError(w, http.StatusInternalServerError, "erro ao cadastrar cliente")
		return
	}

	writeJSON(w, http.StatusCreated, client)
}
