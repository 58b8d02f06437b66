package validation

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	once sync.Once
	v    *validator.Validate
)

// Validator devuelve la instancia compartida (validator cachea metadata por tipo).
func Validator() *validator.Validate {
	once.Do(func() {
		v = validator.New(validator.WithRequiredStructEnabled())
	})
	return v
}

// Struct valida s y traduce el primer fallo a un mensaje legible ("owner.phone is required").
// Devuelve "" si s es válido.
func Struct(s any) (string, error) {
	err := Validator().Struct(s)
	if err == nil {
		return "", nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "", err
	}

	fe := verrs[0]
	field := fieldPath(fe.StructNamespace())
	switch fe.Tag() {
	case "required":
		return field + " is required", nil
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", ")), nil
	case "min", "gte":
		return fmt.Sprintf("%s must be >= %s", field, fe.Param()), nil
	default:
		return fmt.Sprintf("%s is invalid", field), nil
	}
}

// "CreateInput.Owner.Phone" -> "owner.phone"
func fieldPath(ns string) string {
	parts := strings.Split(ns, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	for i, p := range parts {
		parts[i] = lowerFirst(p)
	}
	return strings.Join(parts, ".")
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
