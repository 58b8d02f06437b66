package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"vet-clinic-records/internal/domain/appointments"
	"vet-clinic-records/internal/ports/storage"

	"github.com/google/uuid"
)

type appointmentEntry struct {
	a   appointments.Appointment
	seq int64
}

type appointmentRepo struct {
	mu   sync.RWMutex
	byID map[string]appointmentEntry
	seq  int64
}

func NewAppointmentRepo() appointments.Repository {
	return &appointmentRepo{
		byID: make(map[string]appointmentEntry),
	}
}

func (r *appointmentRepo) Create(ctx context.Context, a appointments.Appointment) (appointments.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a.ID = uuid.NewString()
	r.seq++
	r.byID[a.ID] = appointmentEntry{a: a, seq: r.seq}
	return a, nil
}

func (r *appointmentRepo) GetByID(ctx context.Context, id string) (appointments.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.byID[strings.TrimSpace(id)]
	if !ok {
		return appointments.Appointment{}, storage.ErrNotFound
	}
	return e.a, nil
}

func (r *appointmentRepo) ListByUser(ctx context.Context, userID string) ([]appointments.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]appointmentEntry, 0)
	for _, e := range r.byID {
		if e.a.UserID == userID {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })

	out := make([]appointments.Appointment, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.a)
	}
	return out, nil
}

func (r *appointmentRepo) Update(ctx context.Context, a appointments.Appointment) (appointments.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.byID[a.ID]
	if !ok {
		return appointments.Appointment{}, storage.ErrNotFound
	}
	r.byID[a.ID] = appointmentEntry{a: a, seq: cur.seq}
	return a, nil
}

func (r *appointmentRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id = strings.TrimSpace(id)
	if _, ok := r.byID[id]; !ok {
		return storage.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}
