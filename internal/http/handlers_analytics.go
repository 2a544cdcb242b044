package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"fleetledger/internal/core"
)

// collections holds the three record sets the analytics engine consumes.
type collections struct {
	fuel     []core.FuelRecord
	expenses []core.ExpenseRecord
	income   []core.IncomeRecord
}

// fetchCollections loads all three record kinds concurrently.
func (s *Server) fetchCollections(ctx context.Context, vehicleID string) (collections, error) {
	ctx, cancel := context.WithTimeout(ctx, 7*time.Second)
	defer cancel()

	var c collections
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		c.fuel, err = s.backend.ListFuel(ctx, vehicleID)
		return err
	})
	g.Go(func() error {
		var err error
		c.expenses, err = s.backend.ListExpenses(ctx, vehicleID)
		return err
	})
	g.Go(func() error {
		var err error
		c.income, err = s.backend.ListIncome(ctx, vehicleID)
		return err
	})

	if err := g.Wait(); err != nil {
		return collections{}, err
	}
	return c, nil
}

func (s *Server) handleAnalyticsSummary(w http.ResponseWriter, r *http.Request) {
	vehicleID := vehicleScope(r)
	cacheKey := "summary:" + vehicleID

	if cached, found := s.summaryCache.Get(cacheKey); found {
		slog.DebugContext(r.Context(), "Summary cache hit", "vehicle_id", vehicleID)
		writeJSON(w, http.StatusOK, cached)
		return
	}

	c, err := s.fetchCollections(r.Context(), vehicleID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load records for summary",
			"vehicle_id", vehicleID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load records")
		return
	}

	totals := core.ComputeTotals(c.fuel, c.expenses, c.income, vehicleID)
	analysis := core.Analyze(totals)

	resp := summaryResponse{
		VehicleID:      vehicleID,
		Totals:         totals,
		Analysis:       analysis,
		Classification: analysis.Classification(),
	}
	if vehicleID != "" {
		resp.Efficiency = core.ComputeEfficiency(vehicleID, c.fuel, c.expenses, c.income)
	}

	s.summaryCache.Set(cacheKey, resp)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAnalyticsTrends(w http.ResponseWriter, r *http.Request) {
	vehicleID := vehicleScope(r)
	cacheKey := "trends:" + vehicleID

	if cached, found := s.trendsCache.Get(cacheKey); found {
		slog.DebugContext(r.Context(), "Trends cache hit", "vehicle_id", vehicleID)
		writeJSON(w, http.StatusOK, cached)
		return
	}

	c, err := s.fetchCollections(r.Context(), vehicleID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load records for trends",
			"vehicle_id", vehicleID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load records")
		return
	}

	resp := trendsResponse{
		VehicleID:  vehicleID,
		Currencies: core.BuildCurrencyTrends(c.fuel, c.expenses, c.income),
	}

	s.trendsCache.Set(cacheKey, resp)
	writeJSON(w, http.StatusOK, resp)
}
