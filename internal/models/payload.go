package models

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

// MaterialPayload is the raw, presence-aware body of a create or update
// request. It is turned into a Material or a MaterialPatch by the Validator.
type MaterialPayload struct {
	Name         Optional[string]  `json:"name,omitzero"`
	Category     Optional[string]  `json:"category,omitzero"`
	Quantity     Optional[float64] `json:"quantity,omitzero"`
	Unit         Optional[string]  `json:"unit,omitzero"`
	UnitPrice    Optional[float64] `json:"unit_price,omitzero"`
	Supplier     Optional[string]  `json:"supplier,omitzero"`
	Description  Optional[string]  `json:"description,omitzero"`
	MinimumStock Optional[float64] `json:"minimum_stock,omitzero"`
	Location     Optional[string]  `json:"location,omitzero"`
	Project      Optional[string]  `json:"project,omitzero"`
	Responsible  Optional[string]  `json:"responsible,omitzero"`
	SKU          Optional[string]  `json:"sku,omitzero"`
	EntryDate    Optional[Date]    `json:"entry_date,omitzero"`
	Status       Optional[string]  `json:"status,omitzero"`

	// decodeErrors holds per-field type errors found while decoding.
	decodeErrors []FieldError
}

type payloadField struct {
	name    string
	dst     json.Unmarshaler
	errType string
	message string
}

func (p *MaterialPayload) fields() []payloadField {
	const (
		stringMsg = "Input should be a valid string"
		numberMsg = "Input should be a valid number"
	)
	return []payloadField{
		{"name", &p.Name, TypeString, stringMsg},
		{"category", &p.Category, TypeString, stringMsg},
		{"quantity", &p.Quantity, TypeFloat, numberMsg},
		{"unit", &p.Unit, TypeString, stringMsg},
		{"unit_price", &p.UnitPrice, TypeFloat, numberMsg},
		{"supplier", &p.Supplier, TypeString, stringMsg},
		{"description", &p.Description, TypeString, stringMsg},
		{"minimum_stock", &p.MinimumStock, TypeFloat, numberMsg},
		{"location", &p.Location, TypeString, stringMsg},
		{"project", &p.Project, TypeString, stringMsg},
		{"responsible", &p.Responsible, TypeString, stringMsg},
		{"sku", &p.SKU, TypeString, stringMsg},
		{"entry_date", &p.EntryDate, TypeDate, "Input should be a valid date in YYYY-MM-DD format"},
		{"status", &p.Status, TypeString, stringMsg},
	}
}

// failed reports whether field could not be decoded.
func (p MaterialPayload) failed(field string) bool {
	for _, fe := range p.decodeErrors {
		if fe.Field == field {
			return true
		}
	}
	return false
}

// DecodeMaterialPayload parses a JSON object into a MaterialPayload. A body
// that is not a JSON object fails with a json_invalid ValidationError. Fields
// holding a value of the wrong JSON type are recorded and reported by the
// Validator together with every other violation. Unknown keys are ignored.
func DecodeMaterialPayload(data []byte) (MaterialPayload, error) {
	var p MaterialPayload

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil || raw == nil {
		msg := "body must be a JSON object"
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			msg = "JSON decode error: " + syntaxErr.Error()
		}
		return p, &ValidationError{Errors: []FieldError{{
			Field:   "",
			Message: msg,
			Type:    TypeJSONInvalid,
		}}}
	}

	for _, f := range p.fields() {
		value, ok := raw[f.name]
		if !ok {
			continue
		}
		if err := f.dst.UnmarshalJSON(value); err != nil {
			p.decodeErrors = append(p.decodeErrors, FieldError{
				Field:   f.name,
				Message: f.message,
				Type:    f.errType,
			})
		}
	}

	return p, nil
}

// MaterialPatch is a validated partial update. Only fields with Set == true
// are applied; Null clears an optional field.
type MaterialPatch struct {
	Name         Optional[string]
	Category     Optional[string]
	Quantity     Optional[float64]
	Unit         Optional[string]
	UnitPrice    Optional[float64]
	Supplier     Optional[string]
	Description  Optional[string]
	MinimumStock Optional[float64]
	Location     Optional[string]
	Project      Optional[string]
	Responsible  Optional[string]
	SKU          Optional[string]
	EntryDate    Optional[Date]
	Status       Optional[Status]
}

// Apply returns m with the supplied fields of the patch merged over it.
func (p MaterialPatch) Apply(m Material) Material {
	out := m.Clone()
	if p.Name.HasValue() {
		out.Name = p.Name.Value
	}
	if p.Category.HasValue() {
		out.Category = p.Category.Value
	}
	if p.Quantity.HasValue() {
		out.Quantity = p.Quantity.Value
	}
	if p.Unit.HasValue() {
		out.Unit = p.Unit.Value
	}
	if p.UnitPrice.HasValue() {
		out.UnitPrice = p.UnitPrice.Value
	}
	if p.Supplier.HasValue() {
		out.Supplier = p.Supplier.Value
	}
	if p.Status.HasValue() {
		out.Status = p.Status.Value
	}
	applyOptional(&out.Description, p.Description)
	applyOptional(&out.MinimumStock, p.MinimumStock)
	applyOptional(&out.Location, p.Location)
	applyOptional(&out.Project, p.Project)
	applyOptional(&out.Responsible, p.Responsible)
	applyOptional(&out.SKU, p.SKU)
	applyOptional(&out.EntryDate, p.EntryDate)
	return out
}

func applyOptional[T any](dst **T, o Optional[T]) {
	if o.Set {
		*dst = o.Ptr()
	}
}

// IsEmpty reports whether the patch changes nothing.
func (p MaterialPatch) IsEmpty() bool {
	return !(p.Name.Set || p.Category.Set || p.Quantity.Set || p.Unit.Set ||
		p.UnitPrice.Set || p.Supplier.Set || p.Description.Set ||
		p.MinimumStock.Set || p.Location.Set || p.Project.Set ||
		p.Responsible.Set || p.SKU.Set || p.EntryDate.Set || p.Status.Set)
}

// PayloadFromStrings builds a payload from textual cells, such as a CSV row
// keyed by column name. Empty cells are treated as absent. Cells that do not
// parse as the field's type are reported by the Validator.
func PayloadFromStrings(cells map[string]string) MaterialPayload {
	var p MaterialPayload
	for _, f := range p.fields() {
		cell, ok := cells[f.name]
		if !ok || strings.TrimSpace(cell) == "" {
			continue
		}

		var err error
		switch dst := f.dst.(type) {
		case *Optional[string]:
			*dst = Some(cell)
		case *Optional[float64]:
			var v float64
			v, err = strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err == nil && (math.IsNaN(v) || math.IsInf(v, 0)) {
				err = errors.New("not a finite number")
			}
			*dst = Optional[float64]{Set: true, Value: v}
		case *Optional[Date]:
			var d Date
			d, err = ParseDate(strings.TrimSpace(cell))
			*dst = Optional[Date]{Set: true, Value: d}
		}
		if err != nil {
			p.decodeErrors = append(p.decodeErrors, FieldError{
				Field:   f.name,
				Message: f.message,
				Type:    f.errType,
			})
		}
	}
	return p
}
