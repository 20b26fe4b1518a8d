package handlers

import (
	"github.com/rogerio-castellano/inventory-catalog/internal/models"
)

// validationItems flattens a ValidationError into envelope items whose field
// is prefixed with loc, e.g. "body -> name".
func validationItems(loc string, verr *models.ValidationError) []ValidationErrorItem {
	items := make([]ValidationErrorItem, 0, len(verr.Errors))
	for _, fe := range verr.Errors {
		field := loc
		if fe.Field != "" {
			field = loc + " -> " + fe.Field
		}
		items = append(items, ValidationErrorItem{Field: field, Message: fe.Message, Type: fe.Type})
	}
	return items
}
