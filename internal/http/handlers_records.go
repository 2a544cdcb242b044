package http

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"fleetledger/internal/core"
)

// vehicleScope reads the optional ?vehicle= query parameter. Empty means
// the whole fleet.
func vehicleScope(r *http.Request) string {
	return sanitizeInput(r.URL.Query().Get("vehicle"))
}

// Fuel

func (s *Server) handleListFuel(w http.ResponseWriter, r *http.Request) {
	records, err := s.backend.ListFuel(r.Context(), vehicleScope(r))
	if err != nil {
		writeStorageError(w, r, err, "fuel records")
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleCreateFuel(w http.ResponseWriter, r *http.Request) {
	var rec core.FuelRecord
	if err := decodeBody(w, r, &rec); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if rec.Invalid {
		writeError(w, http.StatusUnprocessableEntity, "record is missing required fields")
		return
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	if err := s.backend.CreateFuel(r.Context(), rec); err != nil {
		if verr := rec.Validate(); verr != nil {
			writeError(w, http.StatusUnprocessableEntity, verr.Error())
			return
		}
		slog.ErrorContext(r.Context(), "Fuel record create failed", "record_id", rec.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create fuel record")
		return
	}

	s.invalidateAnalytics()
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleDeleteFuel(w http.ResponseWriter, r *http.Request) {
	if err := s.backend.DeleteFuel(r.Context(), r.PathValue("id")); err != nil {
		writeStorageError(w, r, err, "fuel record")
		return
	}
	s.invalidateAnalytics()
	writeJSON(w, http.StatusNoContent, nil)
}

// Expenses

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	records, err := s.backend.ListExpenses(r.Context(), vehicleScope(r))
	if err != nil {
		writeStorageError(w, r, err, "expense records")
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var rec core.ExpenseRecord
	if err := decodeBody(w, r, &rec); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if rec.Invalid {
		writeError(w, http.StatusUnprocessableEntity, "record is missing required fields")
		return
	}
	rec.Category = sanitizeInput(rec.Category)
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	if err := s.backend.CreateExpense(r.Context(), rec); err != nil {
		if verr := rec.Validate(); verr != nil {
			writeError(w, http.StatusUnprocessableEntity, verr.Error())
			return
		}
		slog.ErrorContext(r.Context(), "Expense record create failed", "record_id", rec.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create expense record")
		return
	}

	s.invalidateAnalytics()
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := s.backend.DeleteExpense(r.Context(), r.PathValue("id")); err != nil {
		writeStorageError(w, r, err, "expense record")
		return
	}
	s.invalidateAnalytics()
	writeJSON(w, http.StatusNoContent, nil)
}

// Income

func (s *Server) handleListIncome(w http.ResponseWriter, r *http.Request) {
	records, err := s.backend.ListIncome(r.Context(), vehicleScope(r))
	if err != nil {
		writeStorageError(w, r, err, "income records")
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleCreateIncome(w http.ResponseWriter, r *http.Request) {
	var rec core.IncomeRecord
	if err := decodeBody(w, r, &rec); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if rec.Invalid {
		writeError(w, http.StatusUnprocessableEntity, "record is missing required fields")
		return
	}
	rec.Source = sanitizeInput(rec.Source)
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	if err := s.backend.CreateIncome(r.Context(), rec); err != nil {
		if verr := rec.Validate(); verr != nil {
			writeError(w, http.StatusUnprocessableEntity, verr.Error())
			return
		}
		slog.ErrorContext(r.Context(), "Income record create failed", "record_id", rec.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create income record")
		return
	}

	s.invalidateAnalytics()
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleDeleteIncome(w http.ResponseWriter, r *http.Request) {
	if err := s.backend.DeleteIncome(r.Context(), r.PathValue("id")); err != nil {
		writeStorageError(w, r, err, "income record")
		return
	}
	s.invalidateAnalytics()
	writeJSON(w, http.StatusNoContent, nil)
}
