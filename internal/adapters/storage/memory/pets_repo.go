package memory

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"

	"vet-clinic-records/internal/domain/pets"
	"vet-clinic-records/internal/ports/storage"

	"github.com/google/uuid"
)

type petEntry struct {
	pet pets.Pet
	seq int64
}

type petRepo struct {
	mu     sync.RWMutex
	byID   map[string]petEntry
	byName map[string]string // name -> id (índice único)
	seq    int64
}

func NewPetRepo() pets.Repository {
	return &petRepo{
		byID:   make(map[string]petEntry),
		byName: make(map[string]string),
	}
}

func (r *petRepo) Create(ctx context.Context, p pets.Pet) (pets.Pet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byName[p.Name]; taken {
		return pets.Pet{}, storage.ErrDuplicateKey
	}

	p = clonePet(p)
	p.ID = uuid.NewString()
	p.Version = 0
	assignSubIDs(&p)

	r.seq++
	r.byID[p.ID] = petEntry{pet: p, seq: r.seq}
	r.byName[p.Name] = p.ID
	return clonePet(p), nil
}

func (r *petRepo) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.byID[strings.TrimSpace(id)]
	if !ok {
		return pets.Pet{}, storage.ErrNotFound
	}
	return clonePet(e.pet), nil
}

func (r *petRepo) List(ctx context.Context) ([]pets.Pet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]petEntry, 0, len(r.byID))
	for _, e := range r.byID {
		entries = append(entries, e)
	}
	// Orden de inserción, como el orden natural de la colección
	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })

	out := make([]pets.Pet, 0, len(entries))
	for _, e := range entries {
		out = append(out, clonePet(e.pet))
	}
	return out, nil
}

func (r *petRepo) ExistsByName(ctx context.Context, name, excludeID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byName[name]
	if !ok {
		return false, nil
	}
	return excludeID == "" || id != excludeID, nil
}

func (r *petRepo) Update(ctx context.Context, p pets.Pet) (pets.Pet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.byID[p.ID]
	if !ok {
		return pets.Pet{}, storage.ErrNotFound
	}
	if cur.pet.Version != p.Version {
		return pets.Pet{}, storage.ErrVersionConflict
	}
	if owner, taken := r.byName[p.Name]; taken && owner != p.ID {
		return pets.Pet{}, storage.ErrDuplicateKey
	}

	p = clonePet(p)
	p.Version++
	assignSubIDs(&p)

	if cur.pet.Name != p.Name {
		delete(r.byName, cur.pet.Name)
		r.byName[p.Name] = p.ID
	}
	r.byID[p.ID] = petEntry{pet: p, seq: cur.seq}
	return clonePet(p), nil
}

func (r *petRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.byID[strings.TrimSpace(id)]
	if !ok {
		return storage.ErrNotFound
	}
	delete(r.byID, e.pet.ID)
	delete(r.byName, e.pet.Name)
	return nil
}

func (r *petRepo) GetTreatments(ctx context.Context, petID string) ([]pets.Treatment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.byID[strings.TrimSpace(petID)]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return slices.Clone(e.pet.Treatments), nil
}

func assignSubIDs(p *pets.Pet) {
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

// clonePet copia slices y punteros para que el caller no mute el estado guardado.
func clonePet(p pets.Pet) pets.Pet {
	if p.Age != nil {
		age := *p.Age
		p.Age = &age
	}
	p.Treatments = slices.Clone(p.Treatments)
	if p.Treatments == nil {
		p.Treatments = []pets.Treatment{}
	}
	vacc := make([]pets.Vaccination, 0, len(p.Vaccinations))
	for _, v := range p.Vaccinations {
		if v.ExpiryDate != nil {
			exp := *v.ExpiryDate
			v.ExpiryDate = &exp
		}
		vacc = append(vacc, v)
	}
	p.Vaccinations = vacc
	return p
}
