package models

import (
	"encoding/json"
	"time"
)

// DayRecord is the computed availability status and price of one property on
// one calendar date. It is derived on every read from bookings and manual
// blocks and is never stored, so it cannot drift from the booking table.
//
// Invariants: Booked implies !Available and Blocked implies !Available. A
// date covered by no booking and no block is available at the property's
// nightly price unless a per-day override exists.
type DayRecord struct {
	Date      time.Time `json:"date"`
	Available bool      `json:"available"`
	Price     float64   `json:"price"`
	Booked    bool      `json:"booked"`
	Blocked   bool      `json:"blocked"`
}

// MarshalJSON renders the date as "2006-01-02"; day records carry no
// time-of-day component.
func (d DayRecord) MarshalJSON() ([]byte, error) {
	type Alias DayRecord
	return json.Marshal(&struct {
		Date string `json:"date"`
		Alias
	}{
		Date:  d.Date.Format("2006-01-02"),
		Alias: (Alias)(d),
	})
}

// UnmarshalJSON accepts the "2006-01-02" wire format.
func (d *DayRecord) UnmarshalJSON(data []byte) error {
	type Alias DayRecord
	aux := &struct {
		Date string `json:"date"`
		*Alias
	}{Alias: (*Alias)(d)}
	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}
	t, err := time.Parse("2006-01-02", aux.Date)
	if err != nil {
		return err
	}
	d.Date = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return nil
}
