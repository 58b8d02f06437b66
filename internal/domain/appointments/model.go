package appointments

import "time"

// Appointment es un agregado independiente, sin sub-documentos. PetName/OwnerName son texto libre,
// no referencian un Pet.
type Appointment struct {
	ID     string
	UserID string // dueño; siempre sale del caller autenticado

	PetName    string
	OwnerName  string
	OwnerPhone string
	Date       time.Time

	Description string
}
