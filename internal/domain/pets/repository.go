package pets

import "context"

// Repository es el document store de pets.
// Errores: storage.ErrNotFound, storage.ErrDuplicateKey (índice único sobre name),
// storage.ErrVersionConflict (Update con Version desactualizada).
type Repository interface {
	// Create asigna ID y Version y devuelve el documento guardado.
	Create(ctx context.Context, p Pet) (Pet, error)
	GetByID(ctx context.Context, id string) (Pet, error)
	// List no pagina ni filtra.
	List(ctx context.Context) ([]Pet, error)
	// ExistsByName busca name exacto ignorando excludeID ("" = no excluir).
	ExistsByName(ctx context.Context, name, excludeID string) (bool, error)
	// Update reemplaza el documento completo si p.Version coincide con la guardada.
	// Asigna ID a los treatments/vaccinations nuevos (ID vacío) y devuelve el documento guardado.
	Update(ctx context.Context, p Pet) (Pet, error)
	Delete(ctx context.Context, id string) error
	// GetTreatments es una proyección: solo trae pet.treatments.
	GetTreatments(ctx context.Context, petID string) ([]Treatment, error)
}
