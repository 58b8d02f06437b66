package appointments

import (
	"context"
	"strings"

	"vet-clinic-records/internal/platform/dates"
	"vet-clinic-records/internal/platform/validation"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateInput struct {
	PetName     string
	OwnerName   string
	OwnerPhone  string
	Date        string
	Description string
}

// UpdateInput: un valor vacío (o ausente) conserva el valor guardado.
type UpdateInput struct {
	PetName     string
	OwnerName   string
	OwnerPhone  string
	Date        string
	Description string
}

type appointmentRules struct {
	PetName    string `validate:"required"`
	OwnerName  string `validate:"required"`
	OwnerPhone string `validate:"required"`
	Date       string `validate:"required"`
}

// List devuelve solo los turnos del caller.
func (s *Service) List(ctx context.Context, callerID string) ([]Appointment, error) {
	callerID = strings.TrimSpace(callerID)
	if callerID == "" {
		return nil, ErrUnauthorized
	}
	items, err := s.repo.ListByUser(ctx, callerID)
	if err != nil {
		return nil, translate("list appointments", err)
	}
	if items == nil {
		items = []Appointment{}
	}
	return items, nil
}

func (s *Service) Create(ctx context.Context, callerID string, in CreateInput) (Appointment, error) {
	callerID = strings.TrimSpace(callerID)
	if callerID == "" {
		return Appointment{}, ErrUnauthorized
	}

	in.PetName = strings.TrimSpace(in.PetName)
	in.OwnerName = strings.TrimSpace(in.OwnerName)
	in.OwnerPhone = strings.TrimSpace(in.OwnerPhone)
	in.Date = strings.TrimSpace(in.Date)

	msg, err := validation.Struct(appointmentRules{
		PetName:    in.PetName,
		OwnerName:  in.OwnerName,
		OwnerPhone: in.OwnerPhone,
		Date:       in.Date,
	})
	if err != nil {
		return Appointment{}, err
	}
	if msg != "" {
		return Appointment{}, &ValidationError{Message: msg}
	}

	date, err := dates.Parse(in.Date)
	if err != nil {
		return Appointment{}, &ValidationError{Message: "date is invalid"}
	}

	created, err := s.repo.Create(ctx, Appointment{
		UserID:      callerID,
		PetName:     in.PetName,
		OwnerName:   in.OwnerName,
		OwnerPhone:  in.OwnerPhone,
		Date:        date,
		Description: strings.TrimSpace(in.Description),
	})
	if err != nil {
		return Appointment{}, translate("create appointment", err)
	}
	return created, nil
}

// Update busca solo por id, sin chequear UserID (mismo alcance que Delete).
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Appointment, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Appointment{}, ErrNotFound
	}
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Appointment{}, translate("get appointment", err)
	}

	a.PetName = orOld(in.PetName, a.PetName)
	a.OwnerName = orOld(in.OwnerName, a.OwnerName)
	a.OwnerPhone = orOld(in.OwnerPhone, a.OwnerPhone)
	a.Description = orOld(in.Description, a.Description)
	if d := strings.TrimSpace(in.Date); d != "" {
		parsed, err := dates.Parse(d)
		if err != nil {
			return Appointment{}, &ValidationError{Message: "date is invalid"}
		}
		a.Date = parsed
	}

	updated, err := s.repo.Update(ctx, a)
	if err != nil {
		return Appointment{}, translate("update appointment", err)
	}
	return updated, nil
}

// Delete busca solo por id, sin chequear UserID.
func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrNotFound
	}
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return translate("get appointment", err)
	}
	return translate("delete appointment", s.repo.Delete(ctx, id))
}

func orOld(v, old string) string {
	if strings.TrimSpace(v) == "" {
		return old
	}
	return strings.TrimSpace(v)
}
