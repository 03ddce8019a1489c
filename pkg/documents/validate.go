package documents

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Shared validator instances: presence reads `validate` tags, strict
// reads the registry format rules from `strict` tags.
var (
	presence = newValidator("validate")
	strict   = newValidator("strict")
)

func newValidator(tagName string) *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.SetTagName(tagName)

	// Report wire names instead of Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	mustRegister(v, "inn", validateINN)
	mustRegister(v, "isodate", validateISODate)
	mustRegister(v, "doctype", validateDocType)

	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("failed to register %s validator: %v", tag, err))
	}
}

// validateINN accepts 10-digit (legal entity) and 12-digit (individual)
// taxpayer numbers.
func validateINN(fl validator.FieldLevel) bool {
	return IsValidINN(fl.Field().String())
}

func validateISODate(fl validator.FieldLevel) bool {
	_, err := time.Parse(DateLayout, fl.Field().String())
	return err == nil
}

func validateDocType(fl validator.FieldLevel) bool {
	return fl.Field().String() == DocTypeIntroduceGoods
}

// IsValidINN reports whether s is a 10 or 12 digit taxpayer number.
func IsValidINN(s string) bool {
	if len(s) != 10 && len(s) != 12 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// FieldError is a single validation failure.
type FieldError struct {
	// Field is the dotted wire path, e.g. "products[0].tnved_code".
	Field string

	// Tag is the failed rule ("required", "inn", "isodate", ...).
	Tag string

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError aggregates every field error of a document.
type ValidationError struct {
	DocID  string
	Fields []FieldError
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if len(e.Fields) == 1 {
		return fmt.Sprintf("document %q is invalid: %s", e.DocID, e.Fields[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("document %q is invalid (%d errors):", e.DocID, len(e.Fields)))
	for _, f := range e.Fields {
		sb.WriteString("\n  - ")
		sb.WriteString(f.Error())
	}
	return sb.String()
}

// Validate checks that doc carries every required field and at least one
// product with a TN VED code. Values are not otherwise interpreted.
// It returns nil or a *ValidationError listing every violation.
func Validate(doc *Document) error {
	return check(doc, presence)
}

// ValidateStrict runs Validate and additionally checks the registry's
// formats: 10 or 12 digit INNs, YYYY-MM-DD dates, the LP_INTRODUCE_GOODS
// document type and a UIT or UITU code on every product.
func ValidateStrict(doc *Document) error {
	return check(doc, presence, strict)
}

func check(doc *Document, validators ...*validator.Validate) error {
	if doc == nil {
		return &ValidationError{Fields: []FieldError{{Field: "document", Tag: "required", Message: "document is required"}}}
	}

	out := &ValidationError{DocID: doc.DocID}
	for _, v := range validators {
		err := v.Struct(doc)
		if err == nil {
			continue
		}

		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("failed to validate document: %w", err)
		}
		for _, fe := range verrs {
			out.Fields = append(out.Fields, FieldError{
				Field:   fieldPath(fe.Namespace()),
				Tag:     fe.Tag(),
				Message: describe(fe),
			})
		}
	}

	if len(out.Fields) == 0 {
		return nil
	}
	return out
}

// fieldPath drops the root type name from a validator namespace.
func fieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "required_without":
		return "is required when the alternative code is empty"
	case "min":
		return fmt.Sprintf("must contain at least %s entries", fe.Param())
	case "inn":
		return fmt.Sprintf("%q is not a 10 or 12 digit INN", fe.Value())
	case "isodate":
		return fmt.Sprintf("%q is not a YYYY-MM-DD date", fe.Value())
	case "doctype":
		return fmt.Sprintf("%q is not supported, expected %s", fe.Value(), DocTypeIntroduceGoods)
	default:
		return fmt.Sprintf("failed %q rule", fe.Tag())
	}
}
