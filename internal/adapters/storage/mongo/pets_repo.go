package mongo

import (
	"context"
	"errors"
	"strings"
	"time"

	"vet-clinic-records/internal/domain/pets"
	"vet-clinic-records/internal/ports/storage"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ownerDoc struct {
	Name  string `bson:"name"`
	Phone string `bson:"phone"`
	Email string `bson:"email,omitempty"`
}

type treatmentDoc struct {
	ID            primitive.ObjectID `bson:"_id"`
	Date          time.Time          `bson:"date"`
	Description   string             `bson:"description"`
	Vet           string             `bson:"vet"`
	TreatmentCost float64            `bson:"treatmentCost"`
	MedicineCost  float64            `bson:"medicineCost"`
	TotalCost     float64            `bson:"totalCost"`
}

type vaccinationDoc struct {
	ID         primitive.ObjectID `bson:"_id"`
	Name       string             `bson:"name,omitempty"`
	Date       time.Time          `bson:"date"`
	ExpiryDate *time.Time         `bson:"expiryDate,omitempty"`
}

type petDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Name         string             `bson:"name"`
	Age          *int               `bson:"age,omitempty"`
	Gender       string             `bson:"gender,omitempty"`
	Species      string             `bson:"species"`
	Breed        string             `bson:"breed,omitempty"`
	Owner        ownerDoc           `bson:"owner"`
	Treatments   []treatmentDoc     `bson:"treatments"`
	Vaccinations []vaccinationDoc   `bson:"vaccinations"`
	Version      int                `bson:"__v"`
}

type PetsRepo struct {
	coll *mongo.Collection
}

func NewPetsRepo(db *mongo.Database) *PetsRepo {
	return &PetsRepo{coll: db.Collection(petsCollection)}
}

func (r *PetsRepo) Create(ctx context.Context, p pets.Pet) (pets.Pet, error) {
	p.Version = 0
	doc := toPetDoc(p)
	doc.ID = primitive.NewObjectID()

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return pets.Pet{}, storage.ErrDuplicateKey
		}
		return pets.Pet{}, err
	}
	return fromPetDoc(doc), nil
}

func (r *PetsRepo) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	oid, ok := objectID(strings.TrimSpace(id))
	if !ok {
		return pets.Pet{}, storage.ErrNotFound
	}

	var doc petDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return pets.Pet{}, storage.ErrNotFound
		}
		return pets.Pet{}, err
	}
	return fromPetDoc(doc), nil
}

func (r *PetsRepo) List(ctx context.Context) ([]pets.Pet, error) {
	cur, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]pets.Pet, 0)
	for cur.Next(ctx) {
		var doc petDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, fromPetDoc(doc))
	}
	return out, cur.Err()
}

func (r *PetsRepo) ExistsByName(ctx context.Context, name, excludeID string) (bool, error) {
	filter := bson.M{"name": name}
	if excludeID != "" {
		if oid, ok := objectID(excludeID); ok {
			filter["_id"] = bson.M{"$ne": oid}
		}
	}

	n, err := r.coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Update reemplaza el documento solo si __v coincide. MatchedCount 0 puede ser borrado o conflicto.
func (r *PetsRepo) Update(ctx context.Context, p pets.Pet) (pets.Pet, error) {
	oid, ok := objectID(p.ID)
	if !ok {
		return pets.Pet{}, storage.ErrNotFound
	}

	expected := p.Version
	p.Version++
	doc := toPetDoc(p)
	doc.ID = oid

	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": oid, "__v": expected}, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return pets.Pet{}, storage.ErrDuplicateKey
		}
		return pets.Pet{}, err
	}
	if res.MatchedCount == 0 {
		n, err := r.coll.CountDocuments(ctx, bson.M{"_id": oid}, options.Count().SetLimit(1))
		if err != nil {
			return pets.Pet{}, err
		}
		if n == 0 {
			return pets.Pet{}, storage.ErrNotFound
		}
		return pets.Pet{}, storage.ErrVersionConflict
	}
	return fromPetDoc(doc), nil
}

func (r *PetsRepo) Delete(ctx context.Context, id string) error {
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

func (r *PetsRepo) GetTreatments(ctx context.Context, petID string) ([]pets.Treatment, error) {
	oid, ok := objectID(strings.TrimSpace(petID))
	if !ok {
		return nil, storage.ErrNotFound
	}

	var doc struct {
		Treatments []treatmentDoc `bson:"treatments"`
	}
	opts := options.FindOne().SetProjection(bson.M{"treatments": 1, "_id": 0})
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	return fromTreatmentDocs(doc.Treatments), nil
}

// toPetDoc asigna ObjectID a sub-documentos nuevos (ID vacío).
func toPetDoc(p pets.Pet) petDoc {
	doc := petDoc{
		Name:    p.Name,
		Age:     p.Age,
		Gender:  string(p.Gender),
		Species: p.Species,
		Breed:   p.Breed,
		Owner: ownerDoc{
			Name:  p.Owner.Name,
			Phone: p.Owner.Phone,
			Email: p.Owner.Email,
		},
		Treatments:   make([]treatmentDoc, 0, len(p.Treatments)),
		Vaccinations: make([]vaccinationDoc, 0, len(p.Vaccinations)),
		Version:      p.Version,
	}
	for _, t := range p.Treatments {
		doc.Treatments = append(doc.Treatments, treatmentDoc{
			ID:            subID(t.ID),
			Date:          t.Date,
			Description:   t.Description,
			Vet:           t.Vet,
			TreatmentCost: t.TreatmentCost,
			MedicineCost:  t.MedicineCost,
			TotalCost:     t.TotalCost,
		})
	}
	for _, v := range p.Vaccinations {
		doc.Vaccinations = append(doc.Vaccinations, vaccinationDoc{
			ID:         subID(v.ID),
			Name:       v.Name,
			Date:       v.Date,
			ExpiryDate: v.ExpiryDate,
		})
	}
	return doc
}

func fromPetDoc(doc petDoc) pets.Pet {
	p := pets.Pet{
		ID:      doc.ID.Hex(),
		Name:    doc.Name,
		Age:     doc.Age,
		Gender:  pets.Gender(doc.Gender),
		Species: doc.Species,
		Breed:   doc.Breed,
		Owner: pets.Owner{
			Name:  doc.Owner.Name,
			Phone: doc.Owner.Phone,
			Email: doc.Owner.Email,
		},
		Treatments:   fromTreatmentDocs(doc.Treatments),
		Vaccinations: make([]pets.Vaccination, 0, len(doc.Vaccinations)),
		Version:      doc.Version,
	}
	for _, v := range doc.Vaccinations {
		p.Vaccinations = append(p.Vaccinations, pets.Vaccination{
			ID:         v.ID.Hex(),
			Name:       v.Name,
			Date:       v.Date,
			ExpiryDate: v.ExpiryDate,
		})
	}
	return p
}

func fromTreatmentDocs(docs []treatmentDoc) []pets.Treatment {
	out := make([]pets.Treatment, 0, len(docs))
	for _, t := range docs {
		out = append(out, pets.Treatment{
			ID:            t.ID.Hex(),
			Date:          t.Date,
			Description:   t.Description,
			Vet:           t.Vet,
			TreatmentCost: t.TreatmentCost,
			MedicineCost:  t.MedicineCost,
			TotalCost:     t.TotalCost,
		})
	}
	return out
}

func subID(id string) primitive.ObjectID {
	if oid, ok := objectID(id); ok {
		return oid
	}
	return primitive.NewObjectID()
}
