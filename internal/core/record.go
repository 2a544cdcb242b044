// Package core implements the financial analytics engine: aggregation,
// break-even and profitability analysis, per-distance efficiency, and
// currency-segmented trends over vehicle fuel, expense, and income records.
//
// Every function in this package is pure. Inputs are already-fetched,
// in-memory collections; outputs are freshly constructed values. Nothing
// is mutated in place and nothing depends on the wall clock, so calling
// any entry point twice with the same inputs yields the same result.
package core

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"
)

const (
	Liters  VolumeUnit = "liters"
	Gallons VolumeUnit = "gallons"
)

// RecordKind tags the three financial record variants.
const (
	KindFuel    RecordKind = "fuel"
	KindExpense RecordKind = "expense"
	KindIncome  RecordKind = "income"
)

// LitersPerGallon converts US gallons to liters for fuel price normalization.
const LitersPerGallon = 3.78541

type (
	VolumeUnit string

	RecordKind string

	// FuelRecord is one fill-up. The monetary field is named Cost to match
	// the upstream data shape; analytics treat it like any other amount.
	FuelRecord struct {
		ID        string     `json:"id"`
		VehicleID string     `json:"vehicleId"`
		Cost      float64    `json:"cost"`
		Currency  string     `json:"currency"`
		Date      string     `json:"date"` // ISO 8601, YYYY-MM-DD
		Volume    float64    `json:"volume"`
		Unit      VolumeUnit `json:"volumeUnit"`
		Odometer  int64      `json:"odometerReading"`

		// Invalid is set by the decode-time normalizer when the record is
		// malformed (missing/non-numeric amount, missing date or vehicle
		// reference). Invalid records are excluded from every aggregation
		// instead of being zero-filled or raising an error.
		Invalid bool `json:"-"`
	}

	ExpenseRecord struct {
		ID        string  `json:"id"`
		VehicleID string  `json:"vehicleId"`
		Amount    float64 `json:"amount"`
		Currency  string  `json:"currency"`
		Date      string  `json:"date"`
		Category  string  `json:"category,omitempty"`

		Invalid bool `json:"-"`
	}

	IncomeRecord struct {
		ID        string  `json:"id"`
		VehicleID string  `json:"vehicleId"`
		Amount    float64 `json:"amount"`
		Currency  string  `json:"currency"`
		Date      string  `json:"date"`
		Source    string  `json:"source,omitempty"`

		Invalid bool `json:"-"`
	}

	// Vehicle carries display metadata only; analytics use nothing beyond ID.
	Vehicle struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		Make     string `json:"make,omitempty"`
		Model    string `json:"model,omitempty"`
		Year     int    `json:"year,omitempty"`
		PhotoURL string `json:"photoUrl,omitempty"`
	}
)

var (
	ErrEmptyID        = errors.New("empty record id")
	ErrEmptyVehicleID = errors.New("empty vehicle id")
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrInvalidDate    = errors.New("invalid date")
	ErrEmptyCurrency  = errors.New("invalid currency code")
	ErrInvalidVolume  = errors.New("invalid volume")
	ErrUnknownUnit    = errors.New("unknown volume unit")
)

// flexString decodes a JSON string, number, or null into a trimmed string.
// Upstream exports represent identifiers inconsistently (numeric in some
// collections, string in others); this is where that is absorbed.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	tok := strings.TrimSpace(string(data))
	if tok == "" || tok == "null" {
		*s = ""
		return nil
	}
	if tok[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = flexString(strings.TrimSpace(v))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*s = flexString(n.String())
	return nil
}

// flexAmount decodes a JSON number or numeric string. A missing, null, or
// non-numeric value leaves ok false rather than producing an error, so a
// single malformed record cannot abort a whole collection decode.
type flexAmount struct {
	value float64
	ok    bool
}

func (a *flexAmount) UnmarshalJSON(data []byte) error {
	tok := strings.TrimSpace(string(data))
	if tok == "" || tok == "null" {
		return nil
	}
	if tok[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return nil
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil
		}
		a.value, a.ok = f, true
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return nil
	}
	a.value, a.ok = f, true
	return nil
}

// canonicalID picks the primary identifier field, falling back to the
// storage-layer alias when the primary is absent.
func canonicalID(id, alt flexString) string {
	if id != "" {
		return string(id)
	}
	return string(alt)
}

func (r *FuelRecord) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID       flexString `json:"id"`
		AltID    flexString `json:"_id"`
		Vehicle  flexString `json:"vehicleId"`
		Cost     flexAmount `json:"cost"`
		Amount   flexAmount `json:"amount"`
		Currency string     `json:"currency"`
		Date     string     `json:"date"`
		Volume   flexAmount `json:"volume"`
		Unit     VolumeUnit `json:"volumeUnit"`
		Odometer flexAmount `json:"odometerReading"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	cost := raw.Cost
	if !cost.ok {
		cost = raw.Amount
	}
	*r = FuelRecord{
		ID:        canonicalID(raw.ID, raw.AltID),
		VehicleID: string(raw.Vehicle),
		Cost:      cost.value,
		Currency:  strings.TrimSpace(raw.Currency),
		Date:      strings.TrimSpace(raw.Date),
		Volume:    raw.Volume.value,
		Unit:      raw.Unit,
		Odometer:  int64(raw.Odometer.value),
	}
	r.Invalid = !cost.ok || cost.value < 0 || r.Date == "" || r.VehicleID == ""
	return nil
}

func (r *ExpenseRecord) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID       flexString `json:"id"`
		AltID    flexString `json:"_id"`
		Vehicle  flexString `json:"vehicleId"`
		Amount   flexAmount `json:"amount"`
		Currency string     `json:"currency"`
		Date     string     `json:"date"`
		Category string     `json:"category"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = ExpenseRecord{
		ID:        canonicalID(raw.ID, raw.AltID),
		VehicleID: string(raw.Vehicle),
		Amount:    raw.Amount.value,
		Currency:  strings.TrimSpace(raw.Currency),
		Date:      strings.TrimSpace(raw.Date),
		Category:  raw.Category,
	}
	r.Invalid = !raw.Amount.ok || raw.Amount.value < 0 || r.Date == "" || r.VehicleID == ""
	return nil
}

func (r *IncomeRecord) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID       flexString `json:"id"`
		AltID    flexString `json:"_id"`
		Vehicle  flexString `json:"vehicleId"`
		Amount   flexAmount `json:"amount"`
		Currency string     `json:"currency"`
		Date     string     `json:"date"`
		Source   string     `json:"source"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = IncomeRecord{
		ID:        canonicalID(raw.ID, raw.AltID),
		VehicleID: string(raw.Vehicle),
		Amount:    raw.Amount.value,
		Currency:  strings.TrimSpace(raw.Currency),
		Date:      strings.TrimSpace(raw.Date),
		Source:    raw.Source,
	}
	r.Invalid = !raw.Amount.ok || raw.Amount.value < 0 || r.Date == "" || r.VehicleID == ""
	return nil
}

func (v *Vehicle) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID       flexString `json:"id"`
		AltID    flexString `json:"_id"`
		Name     string     `json:"name"`
		Make     string     `json:"make"`
		Model    string     `json:"model"`
		Year     int        `json:"year"`
		PhotoURL string     `json:"photoUrl"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*v = Vehicle{
		ID:       canonicalID(raw.ID, raw.AltID),
		Name:     strings.TrimSpace(raw.Name),
		Make:     raw.Make,
		Model:    raw.Model,
		Year:     raw.Year,
		PhotoURL: raw.PhotoURL,
	}
	return nil
}

// CurrencyCode implements the currency partition key for SegmentByCurrency.
func (r FuelRecord) CurrencyCode() string    { return r.Currency }
func (r ExpenseRecord) CurrencyCode() string { return r.Currency }
func (r IncomeRecord) CurrencyCode() string  { return r.Currency }

func validDate(date string) bool {
	_, err := time.Parse("2006-01-02", date)
	return err == nil
}

func validCurrency(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// Validate checks the record against the input contract. It is used on the
// write path; analytics never call it and tolerate malformed records via
// the Invalid flag instead.
func (r FuelRecord) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return ErrEmptyID
	}
	if strings.TrimSpace(r.VehicleID) == "" {
		return ErrEmptyVehicleID
	}
	if r.Cost < 0 {
		return ErrInvalidAmount
	}
	if !validCurrency(r.Currency) {
		return ErrEmptyCurrency
	}
	if !validDate(r.Date) {
		return ErrInvalidDate
	}
	if r.Volume <= 0 {
		return ErrInvalidVolume
	}
	if r.Unit != Liters && r.Unit != Gallons {
		return ErrUnknownUnit
	}
	if r.Odometer < 0 {
		return errors.New("negative odometer reading")
	}
	return nil
}

func (r ExpenseRecord) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return ErrEmptyID
	}
	if strings.TrimSpace(r.VehicleID) == "" {
		return ErrEmptyVehicleID
	}
	if r.Amount < 0 {
		return ErrInvalidAmount
	}
	if !validCurrency(r.Currency) {
		return ErrEmptyCurrency
	}
	if !validDate(r.Date) {
		return ErrInvalidDate
	}
	return nil
}

func (r IncomeRecord) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return ErrEmptyID
	}
	if strings.TrimSpace(r.VehicleID) == "" {
		return ErrEmptyVehicleID
	}
	if r.Amount < 0 {
		return ErrInvalidAmount
	}
	if !validCurrency(r.Currency) {
		return ErrEmptyCurrency
	}
	if !validDate(r.Date) {
		return ErrInvalidDate
	}
	return nil
}

func (v Vehicle) Validate() error {
	if strings.TrimSpace(v.ID) == "" {
		return ErrEmptyID
	}
	if strings.TrimSpace(v.Name) == "" {
		return errors.New("empty vehicle name")
	}
	return nil
}
