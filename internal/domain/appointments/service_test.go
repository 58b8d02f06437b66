package appointments_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"vet-clinic-records/internal/adapters/storage/memory"
	"vet-clinic-records/internal/domain/appointments"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() appointments.CreateInput {
	return appointments.CreateInput{
		PetName:    "Milo",
		OwnerName:  "Ana",
		OwnerPhone: "111",
		Date:       "2024-05-10T10:00:00Z",
	}
}

func TestCreate_SetsCallerAsOwner(t *testing.T) {
	svc := appointments.NewService(memory.NewAppointmentRepo())

	a, err := svc.Create(context.Background(), "user-a", validInput())
	require.NoError(t, err)

	assert.NotEmpty(t, a.ID)
	assert.Equal(t, "user-a", a.UserID)
	assert.Equal(t, time.Date(2024, 5, 10, 10, 0, 0, 0, time.UTC), a.Date)
	assert.Empty(t, a.Description)
}

func TestCreate_RequiredFields(t *testing.T) {
	svc := appointments.NewService(memory.NewAppointmentRepo())

	cases := map[string]struct {
		mutate func(*appointments.CreateInput)
		want   string
	}{
		"petName":    {func(in *appointments.CreateInput) { in.PetName = "" }, "petName is required"},
		"ownerName":  {func(in *appointments.CreateInput) { in.OwnerName = " " }, "ownerName is required"},
		"ownerPhone": {func(in *appointments.CreateInput) { in.OwnerPhone = "" }, "ownerPhone is required"},
		"date":       {func(in *appointments.CreateInput) { in.Date = "" }, "date is required"},
		"bad date":   {func(in *appointments.CreateInput) { in.Date = "mañana" }, "date is invalid"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			in := validInput()
			tc.mutate(&in)

			_, err := svc.Create(context.Background(), "user-a", in)
			require.ErrorIs(t, err, appointments.ErrInvalidInput)

			var ve *appointments.ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tc.want, ve.Message)
		})
	}
}

func TestCreate_RequiresCaller(t *testing.T) {
	svc := appointments.NewService(memory.NewAppointmentRepo())

	_, err := svc.Create(context.Background(), "", validInput())
	assert.ErrorIs(t, err, appointments.ErrUnauthorized)

	_, err = svc.List(context.Background(), " ")
	assert.ErrorIs(t, err, appointments.ErrUnauthorized)
}

func TestList_ScopedByCaller(t *testing.T) {
	svc := appointments.NewService(memory.NewAppointmentRepo())
	ctx := context.Background()

	first, err := svc.Create(ctx, "user-a", validInput())
	require.NoError(t, err)
	second, err := svc.Create(ctx, "user-a", validInput())
	require.NoError(t, err)
	_, err = svc.Create(ctx, "user-b", validInput())
	require.NoError(t, err)

	items, err := svc.List(ctx, "user-a")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, first.ID, items[0].ID)
	assert.Equal(t, second.ID, items[1].ID)

	none, err := svc.List(ctx, "user-c")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestUpdate_EmptyValuesKeepStored(t *testing.T) {
	svc := appointments.NewService(memory.NewAppointmentRepo())
	ctx := context.Background()

	in := validInput()
	in.Description = "control"
	a, err := svc.Create(ctx, "user-a", in)
	require.NoError(t, err)

	updated, err := svc.Update(ctx, a.ID, appointments.UpdateInput{
		OwnerPhone: "999",
		Date:       "2024-06-01",
	})
	require.NoError(t, err)

	assert.Equal(t, "Milo", updated.PetName)
	assert.Equal(t, "Ana", updated.OwnerName)
	assert.Equal(t, "999", updated.OwnerPhone)
	assert.Equal(t, "control", updated.Description)
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), updated.Date)
	assert.Equal(t, "user-a", updated.UserID)
}

func TestUpdate_Errors(t *testing.T) {
	svc := appointments.NewService(memory.NewAppointmentRepo())
	ctx := context.Background()

	_, err := svc.Update(ctx, "missing", appointments.UpdateInput{PetName: "x"})
	assert.ErrorIs(t, err, appointments.ErrNotFound)

	a, err := svc.Create(ctx, "user-a", validInput())
	require.NoError(t, err)
	_, err = svc.Update(ctx, a.ID, appointments.UpdateInput{Date: "31/12/2024"})
	assert.ErrorIs(t, err, appointments.ErrInvalidInput)
}

// Update/Delete buscan solo por id: otro usuario puede modificar el turno.
func TestMutations_NotScopedByOwner(t *testing.T) {
	svc := appointments.NewService(memory.NewAppointmentRepo())
	ctx := context.Background()

	a, err := svc.Create(ctx, "user-a", validInput())
	require.NoError(t, err)

	updated, err := svc.Update(ctx, a.ID, appointments.UpdateInput{PetName: "Rex"})
	require.NoError(t, err)
	assert.Equal(t, "user-a", updated.UserID, "update never changes the owner")

	require.NoError(t, svc.Delete(ctx, a.ID))
	assert.ErrorIs(t, svc.Delete(ctx, a.ID), appointments.ErrNotFound)
}

type failingRepo struct {
	appointments.Repository
	err error
}

func (r failingRepo) ListByUser(ctx context.Context, userID string) ([]appointments.Appointment, error) {
	return nil, r.err
}

func TestList_StoreErrorIsWrapped(t *testing.T) {
	boom := errors.New("no reachable servers")
	svc := appointments.NewService(failingRepo{err: boom})

	_, err := svc.List(context.Background(), "user-a")
	require.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, appointments.ErrNotFound)
	assert.Contains(t, err.Error(), "list appointments")
}
