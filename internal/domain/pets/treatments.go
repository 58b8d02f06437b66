package pets

import (
	"context"
	"math"
	"strings"

	"vet-clinic-records/internal/platform/dates"
	"vet-clinic-records/internal/platform/httpjson"
)

const (
	msgTreatmentRequired = "date, description, vet, treatmentCost are required."
	msgTreatmentCost     = "treatmentCost must be a non-negative number"
	msgMedicineCost      = "medicineCost must be a non-negative number"
)

type AddTreatmentInput struct {
	Date          string
	Description   string
	Vet           string
	TreatmentCost httpjson.Number
	MedicineCost  httpjson.Number
}

// ListTreatments devuelve solo pet.treatments (proyección), nunca nil.
func (s *Service) ListTreatments(ctx context.Context, petID string) ([]Treatment, error) {
	petID = strings.TrimSpace(petID)
	if petID == "" {
		return nil, ErrNotFound
	}
	items, err := s.repo.GetTreatments(ctx, petID)
	if err != nil {
		return nil, translate("list treatments", err)
	}
	if items == nil {
		items = []Treatment{}
	}
	return items, nil
}

// AddTreatment agrega al final de pet.treatments y devuelve solo el sub-documento agregado.
func (s *Service) AddTreatment(ctx context.Context, petID string, in AddTreatmentInput) (Treatment, error) {
	p, err := s.GetByID(ctx, petID)
	if err != nil {
		return Treatment{}, err
	}

	description := strings.TrimSpace(in.Description)
	vet := strings.TrimSpace(in.Vet)
	if strings.TrimSpace(in.Date) == "" || description == "" || vet == "" ||
		!in.TreatmentCost.Present || in.TreatmentCost.Empty {
		return Treatment{}, invalid(msgTreatmentRequired)
	}

	date, err := dates.Parse(in.Date)
	if err != nil {
		return Treatment{}, invalid("date is invalid")
	}
	cost := in.TreatmentCost.Ptr()
	if cost == nil || !validCost(*cost) {
		return Treatment{}, invalid(msgTreatmentCost)
	}

	// medicineCost ausente, null o "" => 0
	medicine := 0.0
	if in.MedicineCost.Invalid() {
		return Treatment{}, invalid(msgMedicineCost)
	}
	if m := in.MedicineCost.Ptr(); m != nil {
		if !validCost(*m) {
			return Treatment{}, invalid(msgMedicineCost)
		}
		medicine = *m
	}

	total := *cost + medicine
	if !validCost(total) {
		return Treatment{}, invalid(msgTreatmentCost)
	}

	p.Treatments = append(p.Treatments, Treatment{
		Date:          date,
		Description:   description,
		Vet:           vet,
		TreatmentCost: *cost,
		MedicineCost:  medicine,
		TotalCost:     total,
	})

	updated, err := s.repo.Update(ctx, p)
	if err != nil {
		return Treatment{}, translate("add treatment", err)
	}
	if len(updated.Treatments) == 0 {
		return Treatment{}, translate("add treatment", errMissingAppended)
	}
	return updated.Treatments[len(updated.Treatments)-1], nil
}

// RemoveTreatment filtra el treatment por id, persiste el pet y devuelve la lista resultante.
func (s *Service) RemoveTreatment(ctx context.Context, petID, treatmentID string) ([]Treatment, error) {
	p, err := s.GetByID(ctx, petID)
	if err != nil {
		return nil, err
	}

	treatmentID = strings.TrimSpace(treatmentID)
	kept := make([]Treatment, 0, len(p.Treatments))
	found := false
	for _, t := range p.Treatments {
		if !found && t.ID == treatmentID && treatmentID != "" {
			found = true
			continue
		}
		kept = append(kept, t)
	}
	if !found {
		return nil, ErrTreatmentNotFound
	}
	p.Treatments = kept

	updated, err := s.repo.Update(ctx, p)
	if err != nil {
		return nil, translate("remove treatment", err)
	}
	if updated.Treatments == nil {
		updated.Treatments = []Treatment{}
	}
	return updated.Treatments, nil
}

// validCost: finito y >= 0 (NaN no pasa la comparación).
func validCost(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0)
}
