package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	authjwt "vet-clinic-records/internal/adapters/auth/jwt"
	"vet-clinic-records/internal/bootstrap"
	"vet-clinic-records/internal/config"
	"vet-clinic-records/internal/domain/appointments"
	"vet-clinic-records/internal/domain/pets"
	"vet-clinic-records/internal/platform/httpjson"
	"vet-clinic-records/internal/platform/logger"
)

var species = []string{"Dog", "Cat", "Rabbit", "Bird", "Hamster", "Turtle"}

func main() {
	petCount := flag.Int("pets", 20, "mascotas a crear")
	treatmentsPerPet := flag.Int("treatments", 3, "tratamientos máximos por mascota")
	apptCount := flag.Int("appointments", 10, "turnos a crear")
	userID := flag.String("user", "seed-user", "dueño de los turnos creados")
	flag.Parse()

	if err := run(*petCount, *treatmentsPerPet, *apptCount, *userID); err != nil {
		fmt.Fprintf(os.Stderr, "seed: %v\n", err)
		os.Exit(1)
	}
}

func run(petCount, treatmentsPerPet, apptCount int, userID string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config load: %w", err)
	}
	log, err := logger.NewFromEnv()
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	stores, err := bootstrap.OpenStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = stores.Close(context.Background()) }()

	gofakeit.Seed(time.Now().UnixNano())

	petsSvc := pets.NewService(stores.Pets)
	apptSvc := appointments.NewService(stores.Appointments)

	created, err := seedPets(ctx, petsSvc, petCount, treatmentsPerPet)
	if err != nil {
		return fmt.Errorf("seed pets: %w", err)
	}
	log.Info("pets seeded", map[string]any{"count": created})

	if err := seedAppointments(ctx, apptSvc, userID, apptCount); err != nil {
		return fmt.Errorf("seed appointments: %w", err)
	}
	log.Info("appointments seeded", map[string]any{"count": apptCount, "user_id": userID})

	// con AUTH_MODE=jwt imprimimos un token para probar la API como el usuario sembrado
	if cfg.AuthMode == config.AuthJWT {
		v, err := authjwt.NewVerifier(cfg.JWTSecret)
		if err != nil {
			return err
		}
		token, err := v.Sign(userID, 24*time.Hour)
		if err != nil {
			return err
		}
		fmt.Println(token)
	}
	return nil
}

func seedPets(ctx context.Context, svc *pets.Service, count, maxTreatments int) (int, error) {
	created := 0
	for i := 0; i < count; i++ {
		gender := string(pets.GenderFemale)
		if gofakeit.Bool() {
			gender = string(pets.GenderMale)
		}

		p, err := svc.Create(ctx, pets.CreateInput{
			// sufijo para no chocar con el índice único de name
			Name:    fmt.Sprintf("%s-%d", gofakeit.PetName(), gofakeit.Number(1000, 9999)),
			Age:     number(float64(gofakeit.Number(0, 18))),
			Gender:  gender,
			Species: gofakeit.RandomString(species),
			Breed:   gofakeit.AnimalType(),
			Owner: pets.Owner{
				Name:  gofakeit.Name(),
				Phone: gofakeit.Phone(),
				Email: gofakeit.Email(),
			},
		})
		if err != nil {
			if errors.Is(err, pets.ErrNameTaken) {
				continue
			}
			return created, err
		}
		created++

		for j := 0; j < gofakeit.Number(0, maxTreatments); j++ {
			_, err := svc.AddTreatment(ctx, p.ID, pets.AddTreatmentInput{
				Date:          gofakeit.DateRange(time.Now().AddDate(-2, 0, 0), time.Now()).Format(time.RFC3339),
				Description:   description(),
				Vet:           "Dr. " + gofakeit.LastName(),
				TreatmentCost: number(float64(gofakeit.Number(10, 300))),
				MedicineCost:  number(float64(gofakeit.Number(0, 80))),
			})
			if err != nil {
				return created, err
			}
		}
	}
	return created, nil
}

func seedAppointments(ctx context.Context, svc *appointments.Service, userID string, count int) error {
	for i := 0; i < count; i++ {
		_, err := svc.Create(ctx, userID, appointments.CreateInput{
			PetName:     gofakeit.PetName(),
			OwnerName:   gofakeit.Name(),
			OwnerPhone:  gofakeit.Phone(),
			Date:        gofakeit.DateRange(time.Now(), time.Now().AddDate(0, 2, 0)).UTC().Format(time.RFC3339),
			Description: description(),
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func number(v float64) httpjson.Number {
	return httpjson.Number{Present: true, Valid: true, Value: v}
}

var visitKinds = []string{"Control", "Vacuna", "Desparasitación", "Cirugía", "Limpieza dental", "Análisis"}

func description() string {
	return gofakeit.RandomString(visitKinds) + " " + gofakeit.Adjective()
}
