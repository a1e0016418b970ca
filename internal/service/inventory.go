package service

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/atomtax/backoffice/internal/dateutil"
	"github.com/atomtax/backoffice/internal/inventory"
	"github.com/atomtax/backoffice/internal/ledger"
	"github.com/atomtax/backoffice/internal/model"
	"github.com/atomtax/backoffice/internal/tax"
)

func (s *Service) handleListInventory(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "clientID")
	if _, err := s.store.GetClient(r.Context(), clientID); err != nil {
		s.respondError(w, err)
		return
	}
	items, err := s.store.ListInventory(r.Context(), clientID)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, items)
}

// handleAddInventoryItem appends a blank property row named after its
// position in the client's list.
func (s *Service) handleAddInventoryItem(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "clientID")
	if _, err := s.store.GetClient(r.Context(), clientID); err != nil {
		s.respondError(w, err)
		return
	}
	existing, err := s.store.ListInventory(r.Context(), clientID)
	if err != nil {
		s.respondError(w, err)
		return
	}

	item := inventory.NewItem(clientID, len(existing)+1)
	if err := s.store.SaveInventoryItem(r.Context(), &item); err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, &item)
}

// itemResponse pairs the record with its materialized ten-slot expense
// grid so the detail view renders without a second round trip.
type itemResponse struct {
	Item        *model.InventoryItem `json:"item"`
	ExpenseGrid []model.ExpenseRow   `json:"expenseGrid"`
}

func (s *Service) handleGetInventoryItem(w http.ResponseWriter, r *http.Request) {
	item, err := s.store.GetInventoryItem(r.Context(), chi.URLParam(r, "itemID"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, itemResponse{
		Item:        item,
		ExpenseGrid: ledger.Materialize(item.Expenses),
	})
}

type patchRequest struct {
	Field string          `json:"field"`
	Value json.RawMessage `json:"value"`
}

// handlePatchInventoryItem applies one typed field edit. Derived
// fields recompute on every edit; a rejected date clears the field and
// that cleared state is persisted before the 422 goes out.
func (s *Service) handlePatchInventoryItem(w http.ResponseWriter, r *http.Request) {
	item, err := s.store.GetInventoryItem(r.Context(), chi.URLParam(r, "itemID"))
	if err != nil {
		s.respondError(w, err)
		return
	}

	var req patchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.badRequest(w, "malformed patch payload: "+err.Error())
		return
	}

	mutation, err := inventory.Decode(req.Field, req.Value)
	if err != nil {
		s.unprocessable(w, err)
		return
	}

	if err := inventory.Apply(item, mutation); err != nil {
		if errors.Is(err, dateutil.ErrInvalidDate) {
			// The field was cleared; keep the record consistent.
			if saveErr := s.store.SaveInventoryItem(r.Context(), item); saveErr != nil {
				s.respondError(w, saveErr)
				return
			}
		}
		s.unprocessable(w, err)
		return
	}

	if err := s.store.SaveInventoryItem(r.Context(), item); err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, item)
}

func (s *Service) handleDeleteInventoryItem(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteInventoryItem(r.Context(), chi.URLParam(r, "itemID")); err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusNoContent, nil)
}

type expensesResponse struct {
	Item   *model.InventoryItem `json:"item"`
	Totals ledger.Totals        `json:"totals"`
}

// handleSaveExpenses is the ledger save path: blank rows drop, the
// approval-gated totals land on the record, transfer income rederives.
func (s *Service) handleSaveExpenses(w http.ResponseWriter, r *http.Request) {
	item, err := s.store.GetInventoryItem(r.Context(), chi.URLParam(r, "itemID"))
	if err != nil {
		s.respondError(w, err)
		return
	}

	var rows []model.ExpenseRow
	if err := json.NewDecoder(r.Body).Decode(&rows); err != nil {
		s.badRequest(w, "malformed expense rows: "+err.Error())
		return
	}
	if len(rows) > ledger.SlotCount {
		s.badRequest(w, "expense ledger holds at most 10 rows")
		return
	}

	inventory.SaveExpenses(item, rows)
	if err := s.store.SaveInventoryItem(r.Context(), item); err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, expensesResponse{
		Item:   item,
		Totals: ledger.Totals{Acquisition: item.AcquisitionValue, OtherExpense: item.OtherExpenses},
	})
}

type taxResponse struct {
	tax.Result
	TransferIncome int64 `json:"transferIncome"`
	Persisted      bool  `json:"persisted"`
}

// handleComputeTax returns the progressive tax figures for the item.
// With ?persist=true the figures are written into the prepaid fields,
// which stay editable afterwards.
func (s *Service) handleComputeTax(w http.ResponseWriter, r *http.Request) {
	item, err := s.store.GetInventoryItem(r.Context(), chi.URLParam(r, "itemID"))
	if err != nil {
		s.respondError(w, err)
		return
	}

	result, err := tax.Compute(item.TransferIncome, item.ComparativeTax)
	if err != nil {
		s.respondError(w, err)
		return
	}

	persist := r.URL.Query().Get("persist") == "true"
	if persist {
		item.PrepaidIncomeTax = result.IncomeTax
		item.PrepaidLocalTax = result.LocalTax
		if err := s.store.SaveInventoryItem(r.Context(), item); err != nil {
			s.respondError(w, err)
			return
		}
	}

	s.respondJSON(w, http.StatusOK, taxResponse{
		Result:         result,
		TransferIncome: item.TransferIncome,
		Persisted:      persist,
	})
}
