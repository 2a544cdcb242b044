package core

import "sort"

type (
	// CurrencyTrendPoint is one month of cost activity within one currency.
	CurrencyTrendPoint struct {
		Month       string  `json:"month"` // YYYY-MM
		FuelCost    float64 `json:"fuelCost"`
		ExpenseCost float64 `json:"expenseCost"`
		TotalCost   float64 `json:"totalCost"`
		FillUpCount int     `json:"fillUpCount"`
	}

	// FuelPricePoint is the per-liter price derived from a single fill-up.
	FuelPricePoint struct {
		Date          string  `json:"date"`
		PricePerLiter float64 `json:"pricePerLiter"`
		Currency      string  `json:"currency"`
	}

	// CurrencyTrends bundles the trend views for one currency.
	CurrencyTrends struct {
		Monthly    []CurrencyTrendPoint `json:"monthly"`
		FuelPrices []FuelPricePoint     `json:"fuelPrices"`
	}
)

// SegmentByCurrency partitions records by their 3-letter currency code.
// No conversion exists in this system, so every monetary rollup beyond the
// single-currency case must be partitioned here, at the boundary, before
// any amounts are mixed. Records without a currency are dropped: an
// aggregate in an unknown currency is meaningless.
func SegmentByCurrency[T interface{ CurrencyCode() string }](records []T) map[string][]T {
	out := make(map[string][]T)
	for _, r := range records {
		code := r.CurrencyCode()
		if code == "" {
			continue
		}
		out[code] = append(out[code], r)
	}
	return out
}

// monthKey buckets an ISO date by its YYYY-MM prefix. Lexicographic order
// of these keys is also chronological order.
func monthKey(date string) (string, bool) {
	if len(date) < 7 {
		return "", false
	}
	return date[:7], true
}

// MonthlyTrend accumulates fuel and expense costs into per-month buckets,
// sorted ascending by month. Callers are expected to pass records of a
// single currency; use SegmentByCurrency first when several may be present.
func MonthlyTrend(fuel []FuelRecord, expenses []ExpenseRecord) []CurrencyTrendPoint {
	buckets := make(map[string]*CurrencyTrendPoint)

	bucket := func(month string) *CurrencyTrendPoint {
		b, ok := buckets[month]
		if !ok {
			b = &CurrencyTrendPoint{Month: month}
			buckets[month] = b
		}
		return b
	}

	for _, r := range fuel {
		if r.Invalid {
			continue
		}
		month, ok := monthKey(r.Date)
		if !ok {
			continue
		}
		b := bucket(month)
		b.FuelCost += r.Cost
		b.FillUpCount++
	}
	for _, r := range expenses {
		if r.Invalid {
			continue
		}
		month, ok := monthKey(r.Date)
		if !ok {
			continue
		}
		bucket(month).ExpenseCost += r.Amount
	}

	months := make([]string, 0, len(buckets))
	for m := range buckets {
		months = append(months, m)
	}
	sort.Strings(months)

	points := make([]CurrencyTrendPoint, 0, len(months))
	for _, m := range months {
		b := buckets[m]
		points = append(points, CurrencyTrendPoint{
			Month:       m,
			FuelCost:    Round2(b.FuelCost),
			ExpenseCost: Round2(b.ExpenseCost),
			TotalCost:   Round2(b.FuelCost + b.ExpenseCost),
			FillUpCount: b.FillUpCount,
		})
	}
	return points
}

// FuelPriceTrend derives one per-liter price point per fill-up, ordered by
// date. Volumes recorded in gallons are normalized to liters first.
// Records with zero or invalid volume are skipped, not zero-filled, so a
// bad row cannot inject a spurious zero price into a chart.
func FuelPriceTrend(fuel []FuelRecord) []FuelPricePoint {
	points := make([]FuelPricePoint, 0, len(fuel))
	for _, r := range fuel {
		if r.Invalid {
			continue
		}
		volume := r.Volume
		if r.Unit == Gallons {
			volume *= LitersPerGallon
		}
		if volume <= 0 {
			continue
		}
		points = append(points, FuelPricePoint{
			Date:          r.Date,
			PricePerLiter: Round4(r.Cost / volume),
			Currency:      r.Currency,
		})
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].Date < points[j].Date })
	return points
}

// BuildCurrencyTrends partitions all three collections by currency and
// derives the monthly cost trend and fuel price trend for each. The key
// set is the union of currencies seen anywhere, so a currency appearing
// only in income records still gets an (empty-trend) entry and callers can
// enumerate every currency in play.
func BuildCurrencyTrends(fuel []FuelRecord, expenses []ExpenseRecord, income []IncomeRecord) map[string]CurrencyTrends {
	fuelByCur := SegmentByCurrency(fuel)
	expensesByCur := SegmentByCurrency(expenses)
	incomeByCur := SegmentByCurrency(income)

	out := make(map[string]CurrencyTrends)
	for cur := range fuelByCur {
		out[cur] = CurrencyTrends{}
	}
	for cur := range expensesByCur {
		out[cur] = CurrencyTrends{}
	}
	for cur := range incomeByCur {
		out[cur] = CurrencyTrends{}
	}

	for cur := range out {
		out[cur] = CurrencyTrends{
			Monthly:    MonthlyTrend(fuelByCur[cur], expensesByCur[cur]),
			FuelPrices: FuelPriceTrend(fuelByCur[cur]),
		}
	}
	return out
}
