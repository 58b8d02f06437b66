package storage

import "errors"

// Errores estables que exponen todos los adapters de storage.
// Los services los traducen a errores de dominio; nunca inspeccionan códigos del driver.
var (
	ErrNotFound = errors.New("storage: not found")

	// ErrDuplicateKey: se violó un índice único (p.ej. pets.name).
	ErrDuplicateKey = errors.New("storage: duplicate key")

	// ErrVersionConflict: el documento cambió desde que se leyó (versión optimista).
	ErrVersionConflict = errors.New("storage: version conflict")
)
