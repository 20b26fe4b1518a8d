package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Status is the lifecycle state of a material in the catalog.
type Status string

const (
	StatusActive   Status = "activo"
	StatusObsolete Status = "obsoleto"
	StatusOnHold   Status = "en espera"
)

// Statuses lists the accepted status values in display order.
var Statuses = []Status{StatusActive, StatusObsolete, StatusOnHold}

// ParseStatus lowercases s and reports whether it names a known status.
func ParseStatus(s string) (Status, bool) {
	st := Status(strings.ToLower(s))
	for _, known := range Statuses {
		if st == known {
			return st, true
		}
	}
	return "", false
}

// DateLayout is the wire and file format of calendar dates.
const DateLayout = "2006-01-02"

// Date is a calendar day without time of day, encoded as "YYYY-MM-DD".
type Date struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar day of t in t's own location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{t}, nil
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Material represents a material record in the inventory catalog.
// Optional fields are pointers so they are persisted as null when unset.
type Material struct {
	ID           int      `json:"id"`
	Name         string   `json:"name"`
	Category     string   `json:"category"`
	Quantity     float64  `json:"quantity"`
	Unit         string   `json:"unit"`
	UnitPrice    float64  `json:"unit_price"`
	Supplier     string   `json:"supplier"`
	Description  *string  `json:"description"`
	MinimumStock *float64 `json:"minimum_stock"`
	Location     *string  `json:"location"`
	Project      *string  `json:"project"`
	Responsible  *string  `json:"responsible"`
	SKU          *string  `json:"sku"`
	EntryDate    *Date    `json:"entry_date"`
	Status       Status   `json:"status"`
}

// LowStock reports whether the quantity dropped below the configured minimum.
func (m Material) LowStock() bool {
	return m.MinimumStock != nil && m.Quantity < *m.MinimumStock
}

// Clone returns a copy that shares no pointers with m.
func (m Material) Clone() Material {
	c := m
	c.Description = clonePtr(m.Description)
	c.MinimumStock = clonePtr(m.MinimumStock)
	c.Location = clonePtr(m.Location)
	c.Project = clonePtr(m.Project)
	c.Responsible = clonePtr(m.Responsible)
	c.SKU = clonePtr(m.SKU)
	c.EntryDate = clonePtr(m.EntryDate)
	return c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
