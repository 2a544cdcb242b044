package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"fleetledger/internal/core"
	"fleetledger/internal/memory"
)

func newTestServer(t *testing.T) (*Server, *memory.Store) {
	t.Helper()
	store := memory.New()
	srv := NewServer("127.0.0.1:0", store, Options{RateLimitPerMinute: 10000})
	t.Cleanup(func() {
		if err := srv.Shutdown(context.Background()); err != nil {
			t.Errorf("Shutdown() error = %v", err)
		}
	})
	return srv, store
}

func doRequest(srv *Server, method, target string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			_ = json.NewEncoder(&buf).Encode(body)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	return rec
}

func seedScenario(t *testing.T, store *memory.Store) {
	t.Helper()
	ctx := context.Background()

	if err := store.CreateVehicle(ctx, core.Vehicle{ID: "v-1", Name: "Panel Van"}); err != nil {
		t.Fatalf("CreateVehicle() error = %v", err)
	}

	fuel := []core.FuelRecord{
		{ID: "f-1", VehicleID: "v-1", Cost: 100, Currency: "EUR", Date: "2024-01-05", Volume: 40, Unit: core.Liters, Odometer: 1000},
		{ID: "f-2", VehicleID: "v-1", Cost: 200, Currency: "EUR", Date: "2024-02-05", Volume: 50, Unit: core.Liters, Odometer: 2000},
	}
	for _, r := range fuel {
		if err := store.CreateFuel(ctx, r); err != nil {
			t.Fatalf("CreateFuel(%s) error = %v", r.ID, err)
		}
	}
	if err := store.CreateExpense(ctx, core.ExpenseRecord{
		ID: "e-1", VehicleID: "v-1", Amount: 150, Currency: "EUR", Date: "2024-01-20", Category: "insurance",
	}); err != nil {
		t.Fatalf("CreateExpense() error = %v", err)
	}
	if err := store.CreateIncome(ctx, core.IncomeRecord{
		ID: "i-1", VehicleID: "v-1", Amount: 100, Currency: "EUR", Date: "2024-02-10", Source: "delivery",
	}); err != nil {
		t.Fatalf("CreateIncome() error = %v", err)
	}
}

func TestHealthEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(srv, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("GET /healthz status = %d, want %d", rec.Code, http.StatusOK)
	}

	rec = doRequest(srv, http.MethodGet, "/readyz", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("GET /readyz status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got := rec.Body.String(); got != "ready" {
		t.Errorf("GET /readyz body = %q, want %q", got, "ready")
	}
}

func TestVehicleCRUD(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(srv, http.MethodPost, "/api/vehicles", core.Vehicle{Name: "City Car", Make: "Fiat"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /api/vehicles status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var created core.Vehicle
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created vehicle: %v", err)
	}
	if created.ID == "" {
		t.Error("created vehicle has empty generated ID")
	}

	rec = doRequest(srv, http.MethodGet, "/api/vehicles", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/vehicles status = %d, want %d", rec.Code, http.StatusOK)
	}
	var listed []core.Vehicle
	if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode vehicle list: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("len(vehicles) = %d, want 1", len(listed))
	}

	rec = doRequest(srv, http.MethodGet, "/api/vehicles/"+created.ID, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("GET /api/vehicles/{id} status = %d, want %d", rec.Code, http.StatusOK)
	}

	rec = doRequest(srv, http.MethodDelete, "/api/vehicles/"+created.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("DELETE /api/vehicles/{id} status = %d, want %d", rec.Code, http.StatusNoContent)
	}

	rec = doRequest(srv, http.MethodGet, "/api/vehicles/"+created.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("GET deleted vehicle status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestCreateVehicle_Invalid(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(srv, http.MethodPost, "/api/vehicles", core.Vehicle{Make: "Fiat"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("POST nameless vehicle status = %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}
}

func TestCreateFuel(t *testing.T) {
	srv, store := newTestServer(t)
	if err := store.CreateVehicle(context.Background(), core.Vehicle{ID: "v-1", Name: "Van"}); err != nil {
		t.Fatalf("CreateVehicle() error = %v", err)
	}

	t.Run("generates id for valid record", func(t *testing.T) {
		body := `{"vehicleId":"v-1","cost":55.5,"currency":"EUR","date":"2024-03-01","volume":42,"volumeUnit":"liters","odometerReading":12000}`
		rec := doRequest(srv, http.MethodPost, "/api/fuel", body)
		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
		}
		var created core.FuelRecord
		if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
			t.Fatalf("decode created record: %v", err)
		}
		if created.ID == "" {
			t.Error("created record has empty generated ID")
		}
		if created.Cost != 55.5 {
			t.Errorf("Cost = %v, want 55.5", created.Cost)
		}
	})

	t.Run("accepts string amounts", func(t *testing.T) {
		body := `{"vehicleId":"v-1","cost":"62.5","currency":"EUR","date":"2024-03-02","volume":"45","volumeUnit":"liters","odometerReading":12500}`
		rec := doRequest(srv, http.MethodPost, "/api/fuel", body)
		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
		}
		var created core.FuelRecord
		if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
			t.Fatalf("decode created record: %v", err)
		}
		if created.Cost != 62.5 {
			t.Errorf("Cost = %v, want 62.5", created.Cost)
		}
	})

	t.Run("rejects malformed amount", func(t *testing.T) {
		body := `{"vehicleId":"v-1","cost":"n/a","currency":"EUR","date":"2024-03-03","volume":40,"volumeUnit":"liters"}`
		rec := doRequest(srv, http.MethodPost, "/api/fuel", body)
		if rec.Code != http.StatusUnprocessableEntity {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusUnprocessableEntity)
		}
	})

	t.Run("rejects invalid json", func(t *testing.T) {
		rec := doRequest(srv, http.MethodPost, "/api/fuel", `{"vehicleId":`)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
		}
	})

	t.Run("rejects trailing garbage", func(t *testing.T) {
		body := `{"vehicleId":"v-1","cost":10,"currency":"EUR","date":"2024-03-04","volume":10,"volumeUnit":"liters"} {"second":true}`
		rec := doRequest(srv, http.MethodPost, "/api/fuel", body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
		}
	})
}

func TestDeleteRecord_NotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(srv, http.MethodDelete, "/api/expenses/no-such-id", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("DELETE missing expense status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestAnalyticsSummary_FleetLoss(t *testing.T) {
	srv, store := newTestServer(t)
	seedScenario(t, store)

	rec := doRequest(srv, http.MethodGet, "/api/analytics/summary", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var resp summaryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode summary: %v", err)
	}

	if resp.Totals.TotalFuelCost != 300 {
		t.Errorf("TotalFuelCost = %v, want 300", resp.Totals.TotalFuelCost)
	}
	if resp.Analysis.TotalCosts != 450 {
		t.Errorf("TotalCosts = %v, want 450", resp.Analysis.TotalCosts)
	}
	if resp.Analysis.NetProfit != -350 {
		t.Errorf("NetProfit = %v, want -350", resp.Analysis.NetProfit)
	}
	if resp.Classification != "loss" {
		t.Errorf("Classification = %q, want %q", resp.Classification, "loss")
	}
	if resp.Efficiency.TotalDistance != 0 {
		t.Errorf("fleet-wide Efficiency.TotalDistance = %v, want 0", resp.Efficiency.TotalDistance)
	}
}

func TestAnalyticsSummary_VehicleScope(t *testing.T) {
	srv, store := newTestServer(t)
	seedScenario(t, store)

	rec := doRequest(srv, http.MethodGet, "/api/analytics/summary?vehicle=v-1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp summaryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode summary: %v", err)
	}

	if resp.VehicleID != "v-1" {
		t.Errorf("VehicleID = %q, want %q", resp.VehicleID, "v-1")
	}
	if resp.Efficiency.TotalDistance != 1000 {
		t.Errorf("TotalDistance = %v, want 1000", resp.Efficiency.TotalDistance)
	}
	if resp.Efficiency.CostPerDistance != 0.45 {
		t.Errorf("CostPerDistance = %v, want 0.45", resp.Efficiency.CostPerDistance)
	}
	if resp.Efficiency.ProfitPerDistance != -0.35 {
		t.Errorf("ProfitPerDistance = %v, want -0.35", resp.Efficiency.ProfitPerDistance)
	}
}

func TestAnalyticsTrends(t *testing.T) {
	srv, store := newTestServer(t)
	seedScenario(t, store)

	rec := doRequest(srv, http.MethodGet, "/api/analytics/trends", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp trendsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode trends: %v", err)
	}

	eur, ok := resp.Currencies["EUR"]
	if !ok {
		t.Fatalf("Currencies missing EUR, got keys %v", keysOf(resp.Currencies))
	}
	if len(eur.Monthly) != 2 {
		t.Fatalf("len(Monthly) = %d, want 2", len(eur.Monthly))
	}
	jan := eur.Monthly[0]
	if jan.Month != "2024-01" || jan.TotalCost != 250 || jan.FillUpCount != 1 {
		t.Errorf("January point = %+v, want month 2024-01 total 250 fillUps 1", jan)
	}
	if len(eur.FuelPrices) != 2 {
		t.Fatalf("len(FuelPrices) = %d, want 2", len(eur.FuelPrices))
	}
	if eur.FuelPrices[0].PricePerLiter != 2.5 {
		t.Errorf("PricePerLiter = %v, want 2.5", eur.FuelPrices[0].PricePerLiter)
	}
}

func TestAnalyticsCache_PurgedOnWrite(t *testing.T) {
	srv, store := newTestServer(t)
	seedScenario(t, store)

	rec := doRequest(srv, http.MethodGet, "/api/analytics/summary", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("first summary status = %d, want %d", rec.Code, http.StatusOK)
	}

	body := `{"vehicleId":"v-1","amount":50,"currency":"EUR","date":"2024-03-15","category":"repair"}`
	if rec = doRequest(srv, http.MethodPost, "/api/expenses", body); rec.Code != http.StatusCreated {
		t.Fatalf("POST expense status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}

	rec = doRequest(srv, http.MethodGet, "/api/analytics/summary", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("second summary status = %d, want %d", rec.Code, http.StatusOK)
	}
	var resp summaryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if resp.Analysis.TotalCosts != 500 {
		t.Errorf("TotalCosts after write = %v, want 500", resp.Analysis.TotalCosts)
	}
}

func TestSecurityHeaders(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(srv, http.MethodGet, "/healthz", nil)

	want := map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Referrer-Policy":        "no-referrer",
	}
	for header, value := range want {
		if got := rec.Header().Get(header); got != value {
			t.Errorf("header %s = %q, want %q", header, got, value)
		}
	}
	if csp := rec.Header().Get("Content-Security-Policy"); !strings.Contains(csp, "default-src 'none'") {
		t.Errorf("Content-Security-Policy = %q, missing default-src 'none'", csp)
	}
}

func keysOf[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}
