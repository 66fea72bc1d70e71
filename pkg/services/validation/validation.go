// Package validation maps quotation and item field values to human-readable
// error strings. Invalid input is represented, never raised: no function here
// returns an error.
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/qb-tools/quote-forge/pkg/models/domain"
)

// NoItem marks a quotation-level field check.
const NoItem = -1

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^[+]?[1-9]\d{0,15}$`)
	phoneSep     = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "")
)

// Errors maps field keys to messages. Item-level keys are prefixed
// "item_<index>_" so they can never collide with quotation-level keys.
type Errors map[string]string

func (e Errors) Clone() Errors {
	out := make(Errors, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// FieldKey builds the error-map key for a field, item-scoped when
// itemIndex >= 0.
func FieldKey(field string, itemIndex int) string {
	if itemIndex >= 0 {
		return fmt.Sprintf("item_%d_%s", itemIndex, field)
	}
	return field
}

// Result is the outcome of a form-level validation pass.
type Result struct {
	IsValid bool
	Errors  Errors
}

// ValidateField checks a single field value and returns an updated copy of
// prev plus whether the field passed. prev is never mutated.
func ValidateField(field string, value interface{}, itemIndex int, prev Errors) (Errors, bool) {
	errs := prev.Clone()
	key := FieldKey(field, itemIndex)

	switch field {
	case "client":
		if isAbsent(value) {
			errs[key] = "Client selection is required"
		} else {
			delete(errs, key)
		}
	case "name":
		if s, _ := value.(string); strings.TrimSpace(s) == "" {
			errs[key] = "Item name is required"
		} else {
			delete(errs, key)
		}
	case "length", "width", "height":
		if toFloat(value) <= 0 {
			errs[key] = fmt.Sprintf("%s must be greater than 0", capitalize(field))
		} else {
			delete(errs, key)
		}
	case "quantity":
		if toFloat(value) <= 0 {
			errs[key] = "Quantity must be at least 1"
		} else {
			delete(errs, key)
		}
	case "labourRate":
		if toFloat(value) < 0 {
			errs[key] = "Labour rate cannot be negative"
		} else {
			delete(errs, key)
		}
	case "email":
		if s, _ := value.(string); s != "" && !emailPattern.MatchString(s) {
			errs[key] = "Please enter a valid email address"
		} else {
			delete(errs, key)
		}
	case "phone":
		if s, _ := value.(string); s != "" && !phonePattern.MatchString(phoneSep.Replace(s)) {
			errs[key] = "Please enter a valid phone number"
		} else {
			delete(errs, key)
		}
	}

	_, failed := errs[key]
	return errs, !failed
}

// ValidateForm checks the whole quotation: the client once, contact fields
// when present, then name/length/width/quantity for every item by index.
func ValidateForm(q domain.Quotation) Result {
	valid := true
	errs := Errors{}

	check := func(field string, value interface{}, itemIndex int) {
		var ok bool
		errs, ok = ValidateField(field, value, itemIndex, errs)
		if !ok {
			valid = false
		}
	}

	check("client", clientValue(q.Client), NoItem)
	if q.Email != "" {
		check("email", q.Email, NoItem)
	}
	if q.Phone != "" {
		check("phone", q.Phone, NoItem)
	}

	for i, item := range q.Items {
		check("name", item.Name, i)
		check("length", item.Length, i)
		check("width", item.Width, i)
		check("quantity", item.Quantity, i)
	}

	return Result{IsValid: valid, Errors: errs}
}

// FieldError returns the message for a field, or "" when it is clean.
func FieldError(errs Errors, field string, itemIndex int) string {
	return errs[FieldKey(field, itemIndex)]
}

func HasFieldError(errs Errors, field string, itemIndex int) bool {
	return FieldError(errs, field, itemIndex) != ""
}

func clientValue(c *domain.ClientRef) interface{} {
	if c == nil {
		return nil
	}
	return c
}

func isAbsent(value interface{}) bool {
	if value == nil {
		return true
	}
	if c, ok := value.(*domain.ClientRef); ok {
		return c == nil
	}
	return false
}

func toFloat(value interface{}) float64 {
	switch v := value.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
