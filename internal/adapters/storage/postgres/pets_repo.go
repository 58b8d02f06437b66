package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"slices"
	"strings"
	"time"

	"vet-clinic-records/internal/domain/pets"
	"vet-clinic-records/internal/ports/storage"

	"github.com/google/uuid"
)

type ownerJSON struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email,omitempty"`
}

type treatmentJSON struct {
	ID            string    `json:"_id"`
	Date          time.Time `json:"date"`
	Description   string    `json:"description"`
	Vet           string    `json:"vet"`
	TreatmentCost float64   `json:"treatmentCost"`
	MedicineCost  float64   `json:"medicineCost"`
	TotalCost     float64   `json:"totalCost"`
}

type vaccinationJSON struct {
	ID         string     `json:"_id"`
	Name       string     `json:"name,omitempty"`
	Date       time.Time  `json:"date"`
	ExpiryDate *time.Time `json:"expiryDate,omitempty"`
}

const petColumns = `id, name, age, gender, species, breed, owner, treatments, vaccinations, version`

type PetsRepo struct {
	db *sql.DB
}

func NewPetsRepo(db *sql.DB) *PetsRepo {
	return &PetsRepo{db: db}
}

func (r *PetsRepo) Create(ctx context.Context, p pets.Pet) (pets.Pet, error) {
	p.ID = uuid.NewString()
	p.Version = 0
	assignSubIDs(&p)

	owner, treatments, vaccinations, err := encodeJSONColumns(p)
	if err != nil {
		return pets.Pet{}, err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO pets (`+petColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`,
		p.ID,
		p.Name,
		toNullInt(p.Age),
		string(p.Gender),
		p.Species,
		p.Breed,
		owner,
		treatments,
		vaccinations,
		p.Version,
	)
	if err != nil {
		return pets.Pet{}, mapErr(err)
	}
	return p, nil
}

func (r *PetsRepo) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return pets.Pet{}, storage.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `SELECT `+petColumns+` FROM pets WHERE id = $1`, id)
	p, err := scanPet(row)
	if err != nil {
		return pets.Pet{}, mapErr(err)
	}
	return p, nil
}

func (r *PetsRepo) List(ctx context.Context) ([]pets.Pet, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+petColumns+` FROM pets ORDER BY seq ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]pets.Pet, 0)
	for rows.Next() {
		p, err := scanPet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PetsRepo) ExistsByName(ctx context.Context, name, excludeID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM pets WHERE name = $1 AND id <> $2)
	`, name, excludeID).Scan(&exists)
	return exists, err
}

// Update: WHERE version = $n. 0 filas => borrado (NotFound) o conflicto de versión.
func (r *PetsRepo) Update(ctx context.Context, p pets.Pet) (pets.Pet, error) {
	assignSubIDs(&p)
	owner, treatments, vaccinations, err := encodeJSONColumns(p)
	if err != nil {
		return pets.Pet{}, err
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE pets
		SET
			name = $2,
			age = $3,
			gender = $4,
			species = $5,
			breed = $6,
			owner = $7,
			treatments = $8,
			vaccinations = $9,
			version = version + 1
		WHERE id = $1 AND version = $10
	`,
		p.ID,
		p.Name,
		toNullInt(p.Age),
		string(p.Gender),
		p.Species,
		p.Breed,
		owner,
		treatments,
		vaccinations,
		p.Version,
	)
	if err != nil {
		return pets.Pet{}, mapErr(err)
	}

	n, _ := res.RowsAffected()
	if n == 0 {
		var exists bool
		if err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM pets WHERE id = $1)`, p.ID).Scan(&exists); err != nil {
			return pets.Pet{}, err
		}
		if !exists {
			return pets.Pet{}, storage.ErrNotFound
		}
		return pets.Pet{}, storage.ErrVersionConflict
	}

	p.Version++
	return p, nil
}

func (r *PetsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM pets WHERE id = $1`, strings.TrimSpace(id))
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (r *PetsRepo) GetTreatments(ctx context.Context, petID string) ([]pets.Treatment, error) {
	var raw []byte
	err := r.db.QueryRowContext(ctx, `SELECT treatments FROM pets WHERE id = $1`, strings.TrimSpace(petID)).Scan(&raw)
	if err != nil {
		return nil, mapErr(err)
	}
	return decodeTreatments(raw)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPet(s rowScanner) (pets.Pet, error) {
	var (
		p                               pets.Pet
		age                             sql.NullInt32
		gender                          string
		owner, treatments, vaccinations []byte
	)
	if err := s.Scan(
		&p.ID,
		&p.Name,
		&age,
		&gender,
		&p.Species,
		&p.Breed,
		&owner,
		&treatments,
		&vaccinations,
		&p.Version,
	); err != nil {
		return pets.Pet{}, err
	}

	if age.Valid {
		a := int(age.Int32)
		p.Age = &a
	}
	p.Gender = pets.Gender(gender)

	var o ownerJSON
	if err := json.Unmarshal(owner, &o); err != nil {
		return pets.Pet{}, err
	}
	p.Owner = pets.Owner{Name: o.Name, Phone: o.Phone, Email: o.Email}

	var err error
	if p.Treatments, err = decodeTreatments(treatments); err != nil {
		return pets.Pet{}, err
	}

	var vs []vaccinationJSON
	if err := json.Unmarshal(vaccinations, &vs); err != nil {
		return pets.Pet{}, err
	}
	p.Vaccinations = make([]pets.Vaccination, 0, len(vs))
	for _, v := range vs {
		p.Vaccinations = append(p.Vaccinations, pets.Vaccination{
			ID:         v.ID,
			Name:       v.Name,
			Date:       v.Date,
			ExpiryDate: v.ExpiryDate,
		})
	}
	return p, nil
}

func decodeTreatments(raw []byte) ([]pets.Treatment, error) {
	var ts []treatmentJSON
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &ts); err != nil {
			return nil, err
		}
	}
	out := make([]pets.Treatment, 0, len(ts))
	for _, t := range ts {
		out = append(out, pets.Treatment{
			ID:            t.ID,
			Date:          t.Date,
			Description:   t.Description,
			Vet:           t.Vet,
			TreatmentCost: t.TreatmentCost,
			MedicineCost:  t.MedicineCost,
			TotalCost:     t.TotalCost,
		})
	}
	return out, nil
}

func encodeJSONColumns(p pets.Pet) (owner, treatments, vaccinations []byte, err error) {
	owner, err = json.Marshal(ownerJSON{Name: p.Owner.Name, Phone: p.Owner.Phone, Email: p.Owner.Email})
	if err != nil {
		return nil, nil, nil, err
	}

	ts := make([]treatmentJSON, 0, len(p.Treatments))
	for _, t := range p.Treatments {
		ts = append(ts, treatmentJSON{
			ID:            t.ID,
			Date:          t.Date,
			Description:   t.Description,
			Vet:           t.Vet,
			TreatmentCost: t.TreatmentCost,
			MedicineCost:  t.MedicineCost,
			TotalCost:     t.TotalCost,
		})
	}
	if treatments, err = json.Marshal(ts); err != nil {
		return nil, nil, nil, err
	}

	vs := make([]vaccinationJSON, 0, len(p.Vaccinations))
	for _, v := range p.Vaccinations {
		vs = append(vs, vaccinationJSON{ID: v.ID, Name: v.Name, Date: v.Date, ExpiryDate: v.ExpiryDate})
	}
	if vaccinations, err = json.Marshal(vs); err != nil {
		return nil, nil, nil, err
	}
	return owner, treatments, vaccinations, nil
}

// assignSubIDs copia los slices antes de asignar para no mutar el pet del caller.
func assignSubIDs(p *pets.Pet) {
	p.Treatments = slices.Clone(p.Treatments)
	p.Vaccinations = slices.Clone(p.Vaccinations)
	for i := range p.Treatments {
		if p.Treatments[i].ID == "" {
			p.Treatments[i].ID = uuid.NewString()
		}
	}
	for i := range p.Vaccinations {
		if p.Vaccinations[i].ID == "" {
			p.Vaccinations[i].ID = uuid.NewString()
		}
	}
}

func toNullInt(v *int) sql.NullInt32 {
	if v == nil {
		return sql.NullInt32{Valid: false}
	}
	return sql.NullInt32{Int32: int32(*v), Valid: true}
}
