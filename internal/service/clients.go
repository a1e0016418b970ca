package service

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/atomtax/backoffice/internal/model"
	"github.com/atomtax/backoffice/internal/numbering"
)

// handleListClients lists the roster. ?terminated=true restricts to
// terminated clients, ?terminated=false to active ones; absent means
// everyone.
func (s *Service) handleListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := s.store.ListClients(r.Context())
	if err != nil {
		s.respondError(w, err)
		return
	}

	if filter := r.URL.Query().Get("terminated"); filter != "" {
		want := filter == "true"
		filtered := clients[:0]
		for _, c := range clients {
			if c.IsTerminated == want {
				filtered = append(filtered, c)
			}
		}
		clients = filtered
	}

	s.respondJSON(w, http.StatusOK, clients)
}

func (s *Service) handleGetClient(w http.ResponseWriter, r *http.Request) {
	client, err := s.store.GetClient(r.Context(), chi.URLParam(r, "clientID"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, client)
}

// handleCreateClient assigns the lowest free client number when the
// request leaves it blank, and re-validates immediately before the
// write so a concurrent create cannot slip in a duplicate.
func (s *Service) handleCreateClient(w http.ResponseWriter, r *http.Request) {
	var client model.Client
	if err := json.NewDecoder(r.Body).Decode(&client); err != nil {
		s.badRequest(w, "malformed client payload: "+err.Error())
		return
	}
	client.ID = ""

	clients, err := s.store.ListClients(r.Context())
	if err != nil {
		s.respondError(w, err)
		return
	}

	client.Number = strings.TrimSpace(client.Number)
	if client.Number == "" {
		client.Number = strconv.Itoa(numbering.NextAvailable(clients))
	}
	if numbering.IsDuplicate(client.Number, "", clients) {
		s.respondError(w, numbering.Duplicate(client.Number))
		return
	}

	if err := s.store.CreateClient(r.Context(), &client); err != nil {
		s.respondError(w, err)
		return
	}
	s.log.Infow("client created", "id", client.ID, "number", client.Number, "company", client.CompanyName)
	s.respondJSON(w, http.StatusCreated, &client)
}

func (s *Service) handleUpdateClient(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "clientID")

	var client model.Client
	if err := json.NewDecoder(r.Body).Decode(&client); err != nil {
		s.badRequest(w, "malformed client payload: "+err.Error())
		return
	}
	client.ID = clientID
	client.Number = strings.TrimSpace(client.Number)

	clients, err := s.store.ListClients(r.Context())
	if err != nil {
		s.respondError(w, err)
		return
	}
	if client.Number != "" && numbering.IsDuplicate(client.Number, clientID, clients) {
		s.respondError(w, numbering.Duplicate(client.Number))
		return
	}

	if err := s.store.UpdateClient(r.Context(), &client); err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, &client)
}

func (s *Service) handleDeleteClient(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteClient(r.Context(), chi.URLParam(r, "clientID")); err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusNoContent, nil)
}
