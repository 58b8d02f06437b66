package pets

import (
	"errors"
	"fmt"

	"vet-clinic-records/internal/ports/storage"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrNotFound          = errors.New("pet not found")
	ErrTreatmentNotFound = errors.New("treatment not found")
	ErrNameTaken         = errors.New("pet name already exists")
	ErrConcurrentUpdate  = errors.New("pet was modified concurrently")

	errMissingAppended = errors.New("stored pet has no treatments after append")
)

// ValidationError lleva el mensaje que ve el cliente; errors.Is(err, ErrInvalidInput) es true.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }
func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

func invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// translate mapea errores de storage a errores de dominio. op se usa para envolver los inesperados.
func translate(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, storage.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, storage.ErrDuplicateKey):
		return ErrNameTaken
	case errors.Is(err, storage.ErrVersionConflict):
		return ErrConcurrentUpdate
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
