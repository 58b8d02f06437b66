package bootstrap

import (
	"context"
	"fmt"
	"time"

	authjwt "vet-clinic-records/internal/adapters/auth/jwt"
	"vet-clinic-records/internal/adapters/auth/remote"
	mem "vet-clinic-records/internal/adapters/storage/memory"
	mgo "vet-clinic-records/internal/adapters/storage/mongo"
	pg "vet-clinic-records/internal/adapters/storage/postgres"
	"vet-clinic-records/internal/config"
	"vet-clinic-records/internal/domain/appointments"
	"vet-clinic-records/internal/domain/pets"
	"vet-clinic-records/internal/platform/logger"
	"vet-clinic-records/internal/ports/auth"
)

// Stores agrupa los repos elegidos por STORE y cómo liberarlos.
type Stores struct {
	Pets         pets.Repository
	Appointments appointments.Repository

	Ready func(ctx context.Context) error
	Close func(ctx context.Context) error
}

// OpenStores conecta el backend configurado y deja índices/esquema listos.
func OpenStores(ctx context.Context, cfg config.Config, log logger.Logger) (Stores, error) {
	switch cfg.Store {
	case config.StoreMongo:
		client, db, err := mgo.Open(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return Stores{}, err
		}
		if err := mgo.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(context.Background())
			return Stores{}, err
		}
		log.Info("connected to mongo", map[string]any{"database": cfg.MongoDatabase})
		return Stores{
			Pets:         mgo.NewPetsRepo(db),
			Appointments: mgo.NewAppointmentsRepo(db),
			Ready:        mgo.Ping(client),
			Close:        client.Disconnect,
		}, nil

	case config.StorePostgres:
		db, err := pg.Open(ctx, cfg.PostgresDSN, pg.DefaultPool)
		if err != nil {
			return Stores{}, fmt.Errorf("postgres open: %w", err)
		}
		if err := pg.EnsureSchema(ctx, db); err != nil {
			_ = db.Close()
			return Stores{}, fmt.Errorf("postgres schema: %w", err)
		}
		log.Info("connected to postgres", nil)
		return Stores{
			Pets:         pg.NewPetsRepo(db),
			Appointments: pg.NewAppointmentsRepo(db),
			Ready:        db.PingContext,
			Close:        func(context.Context) error { return db.Close() },
		}, nil

	default:
		log.Warn("using in-memory store; data is lost on restart", nil)
		return Stores{
			Pets:         mem.NewPetRepo(),
			Appointments: mem.NewAppointmentRepo(),
			Close:        func(context.Context) error { return nil },
		}, nil
	}
}

// Verifier devuelve nil en modo dev (AuthContext usa X-Debug-User-ID).
func Verifier(cfg config.Config) (auth.AuthVerifier, error) {
	switch cfg.AuthMode {
	case config.AuthJWT:
		v, err := authjwt.NewVerifier(cfg.JWTSecret)
		if err != nil {
			return nil, err
		}
		return v, nil
	case config.AuthRemote:
		client, err := remote.NewClient(remote.Config{
			BaseURL: cfg.AuthBaseURL,
			APIKey:  cfg.AuthAPIKey,
			Timeout: 5 * time.Second,
		})
		if err != nil {
			return nil, err
		}
		return remote.NewVerifier(client), nil
	default:
		return nil, nil
	}
}
