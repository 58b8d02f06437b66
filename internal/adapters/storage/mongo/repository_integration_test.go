//go:build integration

package mongo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcmongo "github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/mongo"

	"vet-clinic-records/internal/domain/appointments"
	"vet-clinic-records/internal/domain/pets"
	"vet-clinic-records/internal/ports/storage"
)

func setupMongoContainer(t *testing.T) (*mongo.Database, func()) {
	ctx := context.Background()

	container, err := tcmongo.Run(ctx, "mongo:7")
	require.NoError(t, err)

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	client, db, err := Open(ctx, uri, "vetclinic_test")
	require.NoError(t, err)
	require.NoError(t, EnsureIndexes(ctx, db))

	cleanup := func() {
		_ = client.Disconnect(ctx)
		_ = container.Terminate(ctx)
	}
	return db, cleanup
}

func TestPetsRepo_Document(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupMongoContainer(t)
	defer cleanup()

	repo := NewPetsRepo(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, pets.Pet{
		Name:    "Milo",
		Species: "Dog",
		Owner:   pets.Owner{Name: "Ana", Phone: "111"},
	})
	require.NoError(t, err)
	assert.Len(t, created.ID, 24, "ObjectID hex")

	_, err = repo.Create(ctx, pets.Pet{Name: "Milo", Species: "Cat", Owner: pets.Owner{Name: "B", Phone: "2"}})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	created.Treatments = append(created.Treatments, pets.Treatment{
		Date:          time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Description:   "Checkup",
		Vet:           "Dr. Who",
		TreatmentCost: 50,
		TotalCost:     50,
	})
	updated, err := repo.Update(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.Version)
	require.Len(t, updated.Treatments, 1)
	assert.Len(t, updated.Treatments[0].ID, 24)

	_, err = repo.Update(ctx, created)
	assert.ErrorIs(t, err, storage.ErrVersionConflict)

	ts, err := repo.GetTreatments(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, ts, 1)
	assert.Equal(t, updated.Treatments[0].ID, ts[0].ID)

	// ids que no son ObjectID no existen
	_, err = repo.GetByID(ctx, "not-an-object-id")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	taken, err := repo.ExistsByName(ctx, "Milo", "")
	require.NoError(t, err)
	assert.True(t, taken)
	taken, err = repo.ExistsByName(ctx, "Milo", created.ID)
	require.NoError(t, err)
	assert.False(t, taken)

	require.NoError(t, repo.Delete(ctx, created.ID))
	assert.ErrorIs(t, repo.Delete(ctx, created.ID), storage.ErrNotFound)
	_, err = repo.Update(ctx, updated)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestAppointmentsRepo_ScopedList(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupMongoContainer(t)
	defer cleanup()

	repo := NewAppointmentsRepo(db)
	ctx := context.Background()

	a, err := repo.Create(ctx, appointments.Appointment{
		UserID: "user-a", PetName: "Milo", OwnerName: "Ana", OwnerPhone: "111",
		Date: time.Date(2024, 5, 10, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	mine, err := repo.ListByUser(ctx, "user-a")
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	others, err := repo.ListByUser(ctx, "user-b")
	require.NoError(t, err)
	assert.Empty(t, others)

	require.NoError(t, repo.Delete(ctx, a.ID))
	_, err = repo.GetByID(ctx, a.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
