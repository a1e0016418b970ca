package service

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/atomtax/backoffice/internal/extraction"
	"github.com/atomtax/backoffice/internal/inventory"
	"github.com/atomtax/backoffice/internal/model"
	"github.com/atomtax/backoffice/internal/spreadsheet"
)

const maxUploadBytes = 32 << 20 // 32MB per request

type importResponse struct {
	Items             []model.InventoryItem `json:"items"`
	Merged            int                   `json:"merged"`
	Added             int                   `json:"added"`
	Skipped           int                   `json:"skipped"`
	DuplicateExpenses int                   `json:"duplicateExpenses"`
	SkippedExpenses   int                   `json:"skippedExpenses"`
	UnmatchedExpenses int                   `json:"unmatchedExpenses"`
}

// handleImportInventory takes a two-sheet workbook upload and folds it
// into the client's inventory. Malformed rows are skipped and counted,
// never fatal to the batch.
func (s *Service) handleImportInventory(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "clientID")
	client, err := s.store.GetClient(r.Context(), clientID)
	if err != nil {
		s.respondError(w, err)
		return
	}

	file, _, err := openUpload(r, "file")
	if err != nil {
		s.badRequest(w, err.Error())
		return
	}
	defer file.Close()

	parsed, err := spreadsheet.Parse(file, client.CompanyName)
	if err != nil {
		s.unprocessable(w, err)
		return
	}

	existing, err := s.store.ListInventory(r.Context(), clientID)
	if err != nil {
		s.respondError(w, err)
		return
	}

	merged, stats := inventory.MergeSpreadsheet(existing, parsed.Items)
	stats.Skipped += parsed.SkippedProperties
	for i := range merged {
		merged[i].ClientID = clientID
		if err := s.store.SaveInventoryItem(r.Context(), &merged[i]); err != nil {
			s.respondError(w, err)
			return
		}
	}

	s.log.Infow("inventory imported",
		"client", clientID,
		"merged", stats.Merged,
		"added", stats.Added,
		"skipped", stats.Skipped)
	s.respondJSON(w, http.StatusOK, importResponse{
		Items:             merged,
		Merged:            stats.Merged,
		Added:             stats.Added,
		Skipped:           stats.Skipped,
		DuplicateExpenses: stats.DuplicateExpenses,
		SkippedExpenses:   parsed.SkippedExpenses,
		UnmatchedExpenses: parsed.UnmatchedExpenses,
	})
}

// handleTemplate streams the blank entry workbook.
func (s *Service) handleTemplate(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="trader-inventory-template.xlsx"`)
	if err := spreadsheet.WriteTemplate(w); err != nil {
		s.log.Errorw("write template", "error", err)
	}
}

type documentsResponse struct {
	Item              *model.InventoryItem `json:"item"`
	Recognized        int                  `json:"recognized"`
	Archived          int                  `json:"archived"`
	Unrecognized      []string             `json:"unrecognized,omitempty"`
	Unreadable        []string             `json:"unreadable,omitempty"`
	DuplicateExpenses int                  `json:"duplicateExpenses"`
}

// handleUploadDocuments archives the uploaded originals, runs the
// deterministic extractor over the batch and merges the distilled
// fields into the open item. Archive failures are logged, never fatal.
func (s *Service) handleUploadDocuments(w http.ResponseWriter, r *http.Request) {
	item, err := s.store.GetInventoryItem(r.Context(), chi.URLParam(r, "itemID"))
	if err != nil {
		s.respondError(w, err)
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.badRequest(w, "malformed multipart request: "+err.Error())
		return
	}
	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		s.badRequest(w, "no files in upload")
		return
	}

	var unreadable []string
	archived := 0
	docs := make([]extraction.Document, 0, len(headers))
	for _, h := range headers {
		data, err := readUpload(h)
		if err != nil {
			s.log.Warnw("uploaded document unreadable", "document", h.Filename, "error", err)
			unreadable = append(unreadable, h.Filename)
			continue
		}
		if s.archive != nil {
			objectName := fmt.Sprintf("inventory/%s/%s", item.ID, h.Filename)
			if err := s.archive.Save(r.Context(), objectName, data); err != nil {
				s.log.Warnw("document archive failed", "object", objectName, "error", err)
			} else {
				archived++
			}
		}
		docs = append(docs, extraction.Bytes(h.Filename, data))
	}
	if len(docs) == 0 {
		s.respondJSON(w, http.StatusOK, documentsResponse{Item: item, Unreadable: unreadable})
		return
	}

	result, err := s.extractor.ExtractAll(r.Context(), docs)
	if err != nil {
		s.unprocessable(w, err)
		return
	}

	dups := inventory.MergeExtracted(item, result.Item)
	if err := s.store.SaveInventoryItem(r.Context(), item); err != nil {
		s.respondError(w, err)
		return
	}

	s.log.Infow("documents merged",
		"item", item.ID,
		"recognized", result.Recognized,
		"archived", archived,
		"duplicateExpenses", dups)
	s.respondJSON(w, http.StatusOK, documentsResponse{
		Item:              item,
		Recognized:        result.Recognized,
		Archived:          archived,
		Unrecognized:      result.Unrecognized,
		Unreadable:        append(unreadable, result.Unreadable...),
		DuplicateExpenses: dups,
	})
}

func readUpload(h *multipart.FileHeader) ([]byte, error) {
	f, err := h.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func openUpload(r *http.Request, field string) (multipart.File, *multipart.FileHeader, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, nil, fmt.Errorf("malformed multipart request: %w", err)
	}
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, nil, fmt.Errorf("missing %q upload", field)
	}
	return file, header, nil
}
