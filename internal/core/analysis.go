package core

import "math"

// breakEvenBand is the net-profit magnitude, in units of the scope's
// currency, under which a scope counts as break-even.
const breakEvenBand = 1.0

// FinancialAnalysis is the break-even and profitability view of one scope.
type FinancialAnalysis struct {
	TotalIncome      float64 `json:"totalIncome"`
	TotalCosts       float64 `json:"totalCosts"`
	NetProfit        float64 `json:"netProfit"`
	ProfitMarginPct  float64 `json:"profitMarginPct"`
	ROIPct           float64 `json:"roiPct"`
	BreakEvenSurplus float64 `json:"breakEvenSurplus"`
	BreakEvenDeficit float64 `json:"breakEvenDeficit"`
	IsBreakEven      bool    `json:"isBreakEven"`
	IsProfitable     bool    `json:"isProfitable"`
}

// Classification returns the tri-state label. IsProfitable, IsBreakEven,
// and loss partition every (income, costs) pair exhaustively and
// exclusively.
func (a FinancialAnalysis) Classification() string {
	switch {
	case a.IsBreakEven:
		return "break_even"
	case a.IsProfitable:
		return "profitable"
	default:
		return "loss"
	}
}

// Analyze derives net profit, margin, ROI, and the break-even state from
// aggregated totals. It never fails: zero-valued totals produce a
// deterministic zero, break-even result, and zero income or zero costs
// report 0% margin/ROI instead of dividing by zero.
func Analyze(t AggregateTotals) FinancialAnalysis {
	costs := t.TotalFuelCost + t.TotalExpenseCost
	net := t.TotalIncome - costs

	var marginPct, roiPct float64
	if t.TotalIncome > 0 {
		marginPct = net / t.TotalIncome * 100
	}
	if costs > 0 {
		roiPct = net / costs * 100
	}

	breakEven := math.Abs(net) < breakEvenBand

	return FinancialAnalysis{
		TotalIncome:      Round2(t.TotalIncome),
		TotalCosts:       Round2(costs),
		NetProfit:        Round2(net),
		ProfitMarginPct:  Round2(marginPct),
		ROIPct:           Round2(roiPct),
		BreakEvenSurplus: Round2(math.Max(0, t.TotalIncome-costs)),
		BreakEvenDeficit: Round2(math.Max(0, costs-t.TotalIncome)),
		IsBreakEven:      breakEven,
		IsProfitable:     net > 0 && !breakEven,
	}
}
