package mongo

import (
	"context"
	"errors"
	"strings"
	"time"

	"vet-clinic-records/internal/domain/appointments"
	"vet-clinic-records/internal/ports/storage"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type appointmentDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	UserID      string             `bson:"userId"`
	PetName     string             `bson:"petName"`
	OwnerName   string             `bson:"ownerName"`
	OwnerPhone  string             `bson:"ownerPhone"`
	Date        time.Time          `bson:"date"`
	Description string             `bson:"description,omitempty"`
}

type AppointmentsRepo struct {
	coll *mongo.Collection
}

func NewAppointmentsRepo(db *mongo.Database) *AppointmentsRepo {
	return &AppointmentsRepo{coll: db.Collection(appointmentsCollection)}
}

func (r *AppointmentsRepo) Create(ctx context.Context, a appointments.Appointment) (appointments.Appointment, error) {
	doc := toAppointmentDoc(a)
	doc.ID = primitive.NewObjectID()
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return appointments.Appointment{}, err
	}
	return fromAppointmentDoc(doc), nil
}

func (r *AppointmentsRepo) GetByID(ctx context.Context, id string) (appointments.Appointment, error) {
	oid, ok := objectID(strings.TrimSpace(id))
	if !ok {
		return appointments.Appointment{}, storage.ErrNotFound
	}
	var doc appointmentDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return appointments.Appointment{}, storage.ErrNotFound
		}
		return appointments.Appointment{}, err
	}
	return fromAppointmentDoc(doc), nil
}

func (r *AppointmentsRepo) ListByUser(ctx context.Context, userID string) ([]appointments.Appointment, error) {
	cur, err := r.coll.Find(ctx, bson.M{"userId": userID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []appointmentDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]appointments.Appointment, 0, len(docs))
	for _, d := range docs {
		out = append(out, fromAppointmentDoc(d))
	}
	return out, nil
}

func (r *AppointmentsRepo) Update(ctx context.Context, a appointments.Appointment) (appointments.Appointment, error) {
	oid, ok := objectID(a.ID)
	if !ok {
		return appointments.Appointment{}, storage.ErrNotFound
	}
	doc := toAppointmentDoc(a)
	doc.ID = oid

	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": oid}, doc)
	if err != nil {
		return appointments.Appointment{}, err
	}
	if res.MatchedCount == 0 {
		return appointments.Appointment{}, storage.ErrNotFound
	}
	return fromAppointmentDoc(doc), nil
}

func (r *AppointmentsRepo) Delete(ctx context.Context, id string) error {
	oid, ok := objectID(strings.TrimSpace(id))
	if !ok {
		return storage.ErrNotFound
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func toAppointmentDoc(a appointments.Appointment) appointmentDoc {
	return appointmentDoc{
		UserID:      a.UserID,
		PetName:     a.PetName,
		OwnerName:   a.OwnerName,
		OwnerPhone:  a.OwnerPhone,
		Date:        a.Date,
		Description: a.Description,
	}
}

func fromAppointmentDoc(d appointmentDoc) appointments.Appointment {
	return appointments.Appointment{
		ID:          d.ID.Hex(),
		UserID:      d.UserID,
		PetName:     d.PetName,
		OwnerName:   d.OwnerName,
		OwnerPhone:  d.OwnerPhone,
		Date:        d.Date,
		Description: d.Description,
	}
}
