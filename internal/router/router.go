package router

import (
	"context"
	"net/http"
	"time"

	mem "vet-clinic-records/internal/adapters/storage/memory"
	"vet-clinic-records/internal/docs"
	"vet-clinic-records/internal/domain/appointments"
	"vet-clinic-records/internal/domain/pets"
	"vet-clinic-records/internal/middleware"
	"vet-clinic-records/internal/platform/httpjson"
	"vet-clinic-records/internal/platform/logger"
	"vet-clinic-records/internal/ports/auth"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Opcionales: si no vienen, in-memory.
	PetRepo         pets.Repository
	AppointmentRepo appointments.Repository

	Logger logger.Logger

	// BasePath es el prefijo de todas las rutas ("/api"); "" monta en la raíz.
	BasePath    string
	CORSOrigins []string

	// Ready lo usa /health/ready; nil => siempre listo.
	Ready func(ctx context.Context) error
}

func NewRouter(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}

	petRepo := opts.PetRepo
	if petRepo == nil {
		petRepo = mem.NewPetRepo()
	}
	apptRepo := opts.AppointmentRepo
	if apptRepo == nil {
		apptRepo = mem.NewAppointmentRepo()
	}

	// Services por módulo
	petsSvc := pets.NewService(petRepo)
	apptSvc := appointments.NewService(apptRepo)

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(log))
	r.Use(chimw.Recoverer)
	if len(opts.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   opts.CORSOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.DebugUserHeader},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	mount := func(api chi.Router) {
		api.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			httpjson.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
		api.Get("/health/ready", readyHandler(opts.Ready, log))

		api.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("doc.json")))

		api.Group(func(pr chi.Router) {
			pr.Use(middleware.AuthContext(opts.AuthVerifier))
			pr.Use(middleware.RequireAuth)

			// Rutas por módulo
			pets.RegisterRoutes(pr, petsSvc, log)
			appointments.RegisterRoutes(pr, apptSvc, log)
		})
	}

	docs.SwaggerInfo.BasePath = opts.BasePath
	if opts.BasePath == "" || opts.BasePath == "/" {
		docs.SwaggerInfo.BasePath = "/"
		mount(r)
	} else {
		r.Route(opts.BasePath, mount)
	}

	return r
}

func readyHandler(ready func(ctx context.Context) error, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ready != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := ready(ctx); err != nil {
				log.Warn("readiness check failed", map[string]any{"error": err})
				httpjson.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		httpjson.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
