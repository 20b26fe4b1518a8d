package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Error types reported in FieldError.Type.
const (
	TypeMissing        = "missing"
	TypeNullNotAllowed = "null_not_allowed"
	TypeTooShort       = "string_too_short"
	TypeTooLong        = "string_too_long"
	TypeNegative       = "greater_than_equal"
	TypeValue          = "value_error"
	TypeEnum           = "enum"
	TypeFutureDate     = "date_from_future"
	TypeString         = "string_type"
	TypeFloat          = "float_type"
	TypeDate           = "date_parsing"
	TypeJSONInvalid    = "json_invalid"
)

// FieldError describes one violated rule on one field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

// ValidationError carries every violation found in a single validation pass.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		if fe.Field == "" {
			parts = append(parts, fe.Message)
			continue
		}
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Has reports whether field has at least one violation.
func (e *ValidationError) Has(field string) bool {
	for _, fe := range e.Errors {
		if fe.Field == field {
			return true
		}
	}
	return false
}

type textRule struct {
	field string
	min   int
	max   int
	trim  bool
}

var (
	nameRule        = textRule{field: "name", min: 1, max: 200, trim: true}
	categoryRule    = textRule{field: "category", min: 1, max: 100, trim: true}
	unitRule        = textRule{field: "unit", min: 1, max: 20}
	supplierRule    = textRule{field: "supplier", min: 1, max: 150}
	descriptionRule = textRule{field: "description", max: 1000}
	locationRule    = textRule{field: "location", max: 100}
	projectRule     = textRule{field: "project", max: 150}
	responsibleRule = textRule{field: "responsible", max: 100}
	skuRule         = textRule{field: "sku", max: 50}
	statusRule      = textRule{field: "status", max: 20}
)

func (r textRule) check(value string) (string, *FieldError) {
	n := utf8.RuneCountInString(value)
	if n < r.min {
		return "", &FieldError{r.field, fmt.Sprintf("String should have at least %d character", r.min), TypeTooShort}
	}
	if n > r.max {
		return "", &FieldError{r.field, fmt.Sprintf("String should have at most %d characters", r.max), TypeTooLong}
	}
	if r.trim {
		value = strings.TrimSpace(value)
		if value == "" {
			return "", &FieldError{r.field, fmt.Sprintf("%s cannot be empty or only whitespace", r.field), TypeValue}
		}
	}
	return value, nil
}

// Validator enforces field constraints on material payloads.
type Validator struct {
	// Now is the clock used to reject entry dates in the future.
	Now func() time.Time
}

func NewValidator() *Validator {
	return &Validator{Now: time.Now}
}

func (v *Validator) today() Date {
	if v.Now == nil {
		return DateOf(time.Now())
	}
	return DateOf(v.Now())
}

// pass accumulates violations for one payload.
type pass struct {
	payload MaterialPayload
	errs    []FieldError
}

func (ps *pass) add(fe *FieldError) {
	if fe != nil {
		ps.errs = append(ps.errs, *fe)
	}
}

// usable reports whether field carries a decodable value, recording a
// violation when a required field is absent or null.
func (ps *pass) usable(field string, set, null, required bool) bool {
	if ps.payload.failed(field) {
		return false
	}
	if !set {
		if required {
			ps.add(&FieldError{field, "Field required", TypeMissing})
		}
		return false
	}
	if null {
		if required {
			ps.add(&FieldError{field, "Field cannot be null", TypeNullNotAllowed})
		}
		return false
	}
	return true
}

func (ps *pass) text(r textRule, o Optional[string], required bool) Optional[string] {
	if !ps.usable(r.field, o.Set, o.Null, required) {
		if o.Set && o.Null && !required && !ps.payload.failed(r.field) {
			return Null[string]()
		}
		return Optional[string]{}
	}
	value, fe := r.check(o.Value)
	if fe != nil {
		ps.add(fe)
		return Optional[string]{}
	}
	return Some(value)
}

func (ps *pass) nonNegative(field string, o Optional[float64], required bool) Optional[float64] {
	if !ps.usable(field, o.Set, o.Null, required) {
		if o.Set && o.Null && !required && !ps.payload.failed(field) {
			return Null[float64]()
		}
		return Optional[float64]{}
	}
	if o.Value < 0 {
		ps.add(&FieldError{field, "Input should be greater than or equal to 0", TypeNegative})
		return Optional[float64]{}
	}
	return Some(o.Value)
}

func (ps *pass) entryDate(o Optional[Date], today Date) Optional[Date] {
	if !ps.usable("entry_date", o.Set, o.Null, false) {
		if o.Set && o.Null && !ps.payload.failed("entry_date") {
			return Null[Date]()
		}
		return Optional[Date]{}
	}
	if o.Value.After(today.Time) {
		ps.add(&FieldError{"entry_date", "entry date cannot be in the future", TypeFutureDate})
		return Optional[Date]{}
	}
	return Some(o.Value)
}

func (ps *pass) status(o Optional[string], required bool) Optional[Status] {
	raw := ps.text(statusRule, o, required)
	if !raw.HasValue() {
		return Optional[Status]{}
	}
	st, ok := ParseStatus(raw.Value)
	if !ok {
		names := make([]string, len(Statuses))
		for i, s := range Statuses {
			names[i] = string(s)
		}
		ps.add(&FieldError{"status", "status must be one of: " + strings.Join(names, ", "), TypeEnum})
		return Optional[Status]{}
	}
	return Some(st)
}

func (ps *pass) result() error {
	if len(ps.errs) == 0 {
		return nil
	}
	return &ValidationError{Errors: ps.errs}
}

// ValidateCreate checks a create payload and returns the sanitized material
// without an ID. Every violation is reported at once.
func (v *Validator) ValidateCreate(p MaterialPayload) (Material, error) {
	ps := &pass{payload: p, errs: append([]FieldError(nil), p.decodeErrors...)}

	name := ps.text(nameRule, p.Name, true)
	category := ps.text(categoryRule, p.Category, true)
	quantity := ps.nonNegative("quantity", p.Quantity, true)
	unit := ps.text(unitRule, p.Unit, true)
	unitPrice := ps.nonNegative("unit_price", p.UnitPrice, true)
	supplier := ps.text(supplierRule, p.Supplier, true)
	description := ps.text(descriptionRule, p.Description, false)
	minimumStock := ps.nonNegative("minimum_stock", p.MinimumStock, false)
	location := ps.text(locationRule, p.Location, false)
	project := ps.text(projectRule, p.Project, false)
	responsible := ps.text(responsibleRule, p.Responsible, false)
	sku := ps.text(skuRule, p.SKU, false)
	entryDate := ps.entryDate(p.EntryDate, v.today())

	status := Some(StatusActive)
	if p.Status.HasValue() || p.failed("status") {
		status = ps.status(p.Status, false)
	}

	if err := ps.result(); err != nil {
		return Material{}, err
	}

	return Material{
		Name:         name.Value,
		Category:     category.Value,
		Quantity:     quantity.Value,
		Unit:         unit.Value,
		UnitPrice:    unitPrice.Value,
		Supplier:     supplier.Value,
		Description:  description.Ptr(),
		MinimumStock: minimumStock.Ptr(),
		Location:     location.Ptr(),
		Project:      project.Ptr(),
		Responsible:  responsible.Ptr(),
		SKU:          sku.Ptr(),
		EntryDate:    entryDate.Ptr(),
		Status:       status.Value,
	}, nil
}

// ValidateUpdate checks only the fields present in p and returns them as a
// patch. Null clears optional fields and is rejected on required ones.
func (v *Validator) ValidateUpdate(p MaterialPayload) (MaterialPatch, error) {
	ps := &pass{payload: p, errs: append([]FieldError(nil), p.decodeErrors...)}

	var patch MaterialPatch
	if p.Name.Set {
		patch.Name = ps.text(nameRule, p.Name, true)
	}
	if p.Category.Set {
		patch.Category = ps.text(categoryRule, p.Category, true)
	}
	if p.Quantity.Set {
		patch.Quantity = ps.nonNegative("quantity", p.Quantity, true)
	}
	if p.Unit.Set {
		patch.Unit = ps.text(unitRule, p.Unit, true)
	}
	if p.UnitPrice.Set {
		patch.UnitPrice = ps.nonNegative("unit_price", p.UnitPrice, true)
	}
	if p.Supplier.Set {
		patch.Supplier = ps.text(supplierRule, p.Supplier, true)
	}
	if p.Status.Set {
		patch.Status = ps.status(p.Status, true)
	}
	patch.Description = ps.text(descriptionRule, p.Description, false)
	patch.MinimumStock = ps.nonNegative("minimum_stock", p.MinimumStock, false)
	patch.Location = ps.text(locationRule, p.Location, false)
	patch.Project = ps.text(projectRule, p.Project, false)
	patch.Responsible = ps.text(responsibleRule, p.Responsible, false)
	patch.SKU = ps.text(skuRule, p.SKU, false)
	patch.EntryDate = ps.entryDate(p.EntryDate, v.today())

	if err := ps.result(); err != nil {
		return MaterialPatch{}, err
	}
	return patch, nil
}
