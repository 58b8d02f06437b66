package appointments

import "context"

// Repository devuelve storage.ErrNotFound cuando el id no existe.
type Repository interface {
	Create(ctx context.Context, a Appointment) (Appointment, error)
	GetByID(ctx context.Context, id string) (Appointment, error)
	ListByUser(ctx context.Context, userID string) ([]Appointment, error)
	Update(ctx context.Context, a Appointment) (Appointment, error)
	Delete(ctx context.Context, id string) error
}
