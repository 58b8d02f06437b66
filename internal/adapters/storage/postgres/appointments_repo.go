package postgres

import (
	"context"
	"database/sql"
	"strings"

	"vet-clinic-records/internal/domain/appointments"
	"vet-clinic-records/internal/ports/storage"

	"github.com/google/uuid"
)

const appointmentColumns = `id, user_id, pet_name, owner_name, owner_phone, date, description`

type AppointmentsRepo struct {
	db *sql.DB
}

func NewAppointmentsRepo(db *sql.DB) *AppointmentsRepo {
	return &AppointmentsRepo{db: db}
}

func (r *AppointmentsRepo) Create(ctx context.Context, a appointments.Appointment) (appointments.Appointment, error) {
	a.ID = uuid.NewString()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO appointments (`+appointmentColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`,
		a.ID,
		a.UserID,
		a.PetName,
		a.OwnerName,
		a.OwnerPhone,
		a.Date,
		a.Description,
	)
	if err != nil {
		return appointments.Appointment{}, mapErr(err)
	}
	return a, nil
}

func (r *AppointmentsRepo) GetByID(ctx context.Context, id string) (appointments.Appointment, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+appointmentColumns+` FROM appointments WHERE id = $1`, strings.TrimSpace(id))
	a, err := scanAppointment(row)
	if err != nil {
		return appointments.Appointment{}, mapErr(err)
	}
	return a, nil
}

func (r *AppointmentsRepo) ListByUser(ctx context.Context, userID string) ([]appointments.Appointment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE user_id = $1
		ORDER BY seq ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]appointments.Appointment, 0)
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *AppointmentsRepo) Update(ctx context.Context, a appointments.Appointment) (appointments.Appointment, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE appointments
		SET
			pet_name = $2,
			owner_name = $3,
			owner_phone = $4,
			date = $5,
			description = $6
		WHERE id = $1
	`,
		a.ID,
		a.PetName,
		a.OwnerName,
		a.OwnerPhone,
		a.Date,
		a.Description,
	)
	if err != nil {
		return appointments.Appointment{}, mapErr(err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return appointments.Appointment{}, storage.ErrNotFound
	}
	return a, nil
}

func (r *AppointmentsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM appointments WHERE id = $1`, strings.TrimSpace(id))
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func scanAppointment(s rowScanner) (appointments.Appointment, error) {
	var a appointments.Appointment
	err := s.Scan(
		&a.ID,
		&a.UserID,
		&a.PetName,
		&a.OwnerName,
		&a.OwnerPhone,
		&a.Date,
		&a.Description,
	)
	return a, err
}
