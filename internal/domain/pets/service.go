package pets

import (
	"context"
	"math"
	"strings"

	"vet-clinic-records/internal/platform/httpjson"
	"vet-clinic-records/internal/platform/validation"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateInput struct {
	Name    string
	Age     httpjson.Number
	Gender  string
	Species string
	Breed   string
	Owner   Owner
}

// UpdateInput: punteros nil / Age sin Present = no tocar.
type UpdateInput struct {
	Name    *string
	Age     httpjson.Number
	Gender  *string
	Species *string
	Breed   *string
	Owner   *OwnerPatch
}

// petRules son las invariantes de esquema que se chequean antes de escribir.
type petRules struct {
	Name    string `validate:"required"`
	Gender  string `validate:"omitempty,oneof=Female Male"`
	Species string `validate:"required"`
	Owner   Owner
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Pet, error) {
	name := strings.TrimSpace(in.Name)

	// Primero unicidad (como el flujo original), después esquema.
	if name != "" {
		taken, err := s.repo.ExistsByName(ctx, name, "")
		if err != nil {
			return Pet{}, translate("check pet name", err)
		}
		if taken {
			return Pet{}, ErrNameTaken
		}
	}

	age, err := parseAge(in.Age)
	if err != nil {
		return Pet{}, err
	}

	p := Pet{
		Name:    name,
		Age:     age,
		Gender:  Gender(strings.TrimSpace(in.Gender)),
		Species: strings.TrimSpace(in.Species),
		Breed:   strings.TrimSpace(in.Breed),
		Owner: Owner{
			Name:  strings.TrimSpace(in.Owner.Name),
			Phone: strings.TrimSpace(in.Owner.Phone),
			Email: strings.TrimSpace(in.Owner.Email),
		},
		Treatments:   []Treatment{},
		Vaccinations: []Vaccination{},
	}
	if err := validatePet(p); err != nil {
		return Pet{}, err
	}

	// El índice único del storage es la garantía real; el pre-check de arriba puede perder una carrera.
	created, err := s.repo.Create(ctx, p)
	if err != nil {
		return Pet{}, translate("create pet", err)
	}
	return created, nil
}

// List devuelve todos los pets, sin paginación.
func (s *Service) List(ctx context.Context) ([]Pet, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, translate("list pets", err)
	}
	if items == nil {
		items = []Pet{}
	}
	return items, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Pet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Pet{}, ErrNotFound
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Pet{}, translate("get pet", err)
	}
	return p, nil
}

// Update aplica un patch parcial. owner se mergea campo por campo.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Pet, error) {
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return Pet{}, err
	}

	if in.Name != nil {
		newName := strings.TrimSpace(*in.Name)
		if newName != "" && newName != p.Name {
			taken, err := s.repo.ExistsByName(ctx, newName, p.ID)
			if err != nil {
				return Pet{}, translate("check pet name", err)
			}
			if taken {
				return Pet{}, ErrNameTaken
			}
			p.Name = newName
		}
	}

	if in.Age.Present {
		age, err := parseAge(in.Age)
		if err != nil {
			return Pet{}, err
		}
		p.Age = age
	}
	if in.Gender != nil {
		p.Gender = Gender(strings.TrimSpace(*in.Gender))
	}
	if in.Species != nil {
		p.Species = strings.TrimSpace(*in.Species)
	}
	if in.Breed != nil {
		p.Breed = strings.TrimSpace(*in.Breed)
	}
	if in.Owner != nil {
		p.Owner = MergeOwner(p.Owner, *in.Owner)
	}

	if err := validatePet(p); err != nil {
		return Pet{}, err
	}

	updated, err := s.repo.Update(ctx, p)
	if err != nil {
		return Pet{}, translate("update pet", err)
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrNotFound
	}
	return translate("delete pet", s.repo.Delete(ctx, id))
}

func validatePet(p Pet) error {
	msg, err := validation.Struct(petRules{
		Name:    p.Name,
		Gender:  string(p.Gender),
		Species: p.Species,
		Owner:   p.Owner,
	})
	if err != nil {
		return err
	}
	if msg != "" {
		return invalid("%s", msg)
	}
	return nil
}

// parseAge: ausente, null o "" => sin edad. Debe ser entero >= 0.
func parseAge(n httpjson.Number) (*int, error) {
	if !n.Present || n.Empty {
		return nil, nil
	}
	if !n.Valid || n.Value < 0 || n.Value != math.Trunc(n.Value) || n.Value > math.MaxInt32 {
		return nil, invalid("age must be a non-negative integer")
	}
	age := int(n.Value)
	return &age, nil
}
