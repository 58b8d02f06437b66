package pets

import "time"

// Gender define el sexo de la mascota.
// @Enum Female, Male
type Gender string

const (
	GenderFemale Gender = "Female"
	GenderMale   Gender = "Male"
)

// Owner es un value object: vive dentro del Pet, sin identidad propia.
type Owner struct {
	Name  string `validate:"required"`
	Phone string `validate:"required"`
	Email string
}

// Treatment es un sub-documento de Pet. El ID lo asigna el storage al persistir.
// TotalCost se calcula una sola vez al crear y queda guardado.
type Treatment struct {
	ID          string
	Date        time.Time
	Description string
	Vet         string

	TreatmentCost float64
	MedicineCost  float64
	TotalCost     float64
}

// Vaccination existe en el documento pero no tiene operaciones propias.
type Vaccination struct {
	ID         string
	Name       string
	Date       time.Time
	ExpiryDate *time.Time
}

// Pet es la raíz del agregado. Name es único globalmente (match exacto).
type Pet struct {
	ID string

	Name    string
	Age     *int
	Gender  Gender // "" = sin informar
	Species string
	Breed   string

	Owner Owner

	Treatments   []Treatment
	Vaccinations []Vaccination

	// Version es la versión optimista del documento; el storage la incrementa en cada Update.
	Version int
}
