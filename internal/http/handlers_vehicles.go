package http

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"fleetledger/internal/core"
)

func (s *Server) handleListVehicles(w http.ResponseWriter, r *http.Request) {
	vehicles, err := s.backend.ListVehicles(r.Context())
	if err != nil {
		writeStorageError(w, r, err, "vehicles")
		return
	}
	writeJSON(w, http.StatusOK, vehicles)
}

func (s *Server) handleGetVehicle(w http.ResponseWriter, r *http.Request) {
	v, err := s.backend.GetVehicle(r.Context(), r.PathValue("id"))
	if err != nil {
		writeStorageError(w, r, err, "vehicle")
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleCreateVehicle(w http.ResponseWriter, r *http.Request) {
	var v core.Vehicle
	if err := decodeBody(w, r, &v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	v.Name = sanitizeInput(v.Name)
	v.Make = sanitizeInput(v.Make)
	v.Model = sanitizeInput(v.Model)

	if err := v.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := s.backend.CreateVehicle(r.Context(), v); err != nil {
		slog.ErrorContext(r.Context(), "Vehicle create failed", "vehicle_id", v.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create vehicle")
		return
	}

	writeJSON(w, http.StatusCreated, v)
}

func (s *Server) handleDeleteVehicle(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.backend.DeleteVehicle(r.Context(), id); err != nil {
		writeStorageError(w, r, err, "vehicle")
		return
	}
	s.invalidateAnalytics()
	writeJSON(w, http.StatusNoContent, nil)
}
