package appointments

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"vet-clinic-records/internal/middleware"
	"vet-clinic-records/internal/platform/httpjson"
	"vet-clinic-records/internal/platform/logger"

	"github.com/go-chi/chi/v5"
)

const (
	msgNotFound     = "Appointment not found"
	msgDeleted      = "Appointment deleted"
	msgUnauthorized = "Not authorized, no token"
	msgInvalidJSON  = "invalid json"
)

func RegisterRoutes(r chi.Router, svc *Service, log logger.Logger) {
	if log == nil {
		log = logger.NewNop()
	}
	log = log.With(map[string]any{"module": "appointments"})

	r.Route("/appointments", func(ar chi.Router) {
		ar.Get("/", listAppointmentsHandler(svc, log))
		ar.Post("/", createAppointmentHandler(svc, log))
		ar.Put("/{appointmentID}", updateAppointmentHandler(svc, log))
		ar.Delete("/{appointmentID}", deleteAppointmentHandler(svc, log))
	})
}

// appointmentRequest se usa para create y update. En update, los campos vacíos conservan el valor anterior.
type appointmentRequest struct {
	PetName     string `json:"petName"`
	OwnerName   string `json:"ownerName"`
	OwnerPhone  string `json:"ownerPhone"`
	Date        string `json:"date"` // RFC3339 o YYYY-MM-DD
	Description string `json:"description"`
}

type appointmentResponse struct {
	ID          string    `json:"_id"`
	UserID      string    `json:"userId"`
	PetName     string    `json:"petName"`
	OwnerName   string    `json:"ownerName"`
	OwnerPhone  string    `json:"ownerPhone"`
	Date        time.Time `json:"date"`
	Description string    `json:"description,omitempty"`
}

// listAppointmentsHandler godoc
// @Summary Listar turnos
// @Description Devuelve los turnos del usuario autenticado.
// @Tags appointments
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Success 200 {array} appointmentResponse
// @Failure 401 {object} httpjson.Message
// @Failure 500 {object} httpjson.Message
// @Router /appointments [get]
func listAppointmentsHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			httpjson.WriteMessage(w, http.StatusUnauthorized, msgUnauthorized)
			return
		}

		items, err := svc.List(r.Context(), claims.UserID)
		if err != nil {
			writeError(w, log, "list appointments", err)
			return
		}

		out := make([]appointmentResponse, 0, len(items))
		for _, a := range items {
			out = append(out, toResponse(a))
		}
		httpjson.WriteJSON(w, http.StatusOK, out)
	}
}

// createAppointmentHandler godoc
// @Summary Crear turno
// @Description El userId se toma del caller autenticado, nunca del body.
// @Tags appointments
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param payload body appointmentRequest true "petName, ownerName, ownerPhone y date son obligatorios"
// @Success 201 {object} appointmentResponse
// @Failure 400 {object} httpjson.Message
// @Failure 401 {object} httpjson.Message
// @Failure 500 {object} httpjson.Message
// @Router /appointments [post]
func createAppointmentHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			httpjson.WriteMessage(w, http.StatusUnauthorized, msgUnauthorized)
			return
		}

		var req appointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpjson.WriteMessage(w, http.StatusBadRequest, msgInvalidJSON)
			return
		}

		a, err := svc.Create(r.Context(), claims.UserID, CreateInput{
			PetName:     req.PetName,
			OwnerName:   req.OwnerName,
			OwnerPhone:  req.OwnerPhone,
			Date:        req.Date,
			Description: req.Description,
		})
		if err != nil {
			writeError(w, log, "create appointment", err)
			return
		}
		httpjson.WriteJSON(w, http.StatusCreated, toResponse(a))
	}
}

// updateAppointmentHandler godoc
// @Summary Actualizar turno
// @Description Cada campo enviado reemplaza al guardado salvo que venga vacío.
// @Tags appointments
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param appointmentID path string true "ID del turno"
// @Param payload body appointmentRequest true "Campos a modificar"
// @Success 200 {object} appointmentResponse
// @Failure 400 {object} httpjson.Message
// @Failure 404 {object} httpjson.Message "Appointment not found"
// @Failure 500 {object} httpjson.Message
// @Router /appointments/{appointmentID} [put]
func updateAppointmentHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req appointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpjson.WriteMessage(w, http.StatusBadRequest, msgInvalidJSON)
			return
		}

		a, err := svc.Update(r.Context(), chi.URLParam(r, "appointmentID"), UpdateInput{
			PetName:     req.PetName,
			OwnerName:   req.OwnerName,
			OwnerPhone:  req.OwnerPhone,
			Date:        req.Date,
			Description: req.Description,
		})
		if err != nil {
			writeError(w, log, "update appointment", err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, toResponse(a))
	}
}

// deleteAppointmentHandler godoc
// @Summary Eliminar turno
// @Tags appointments
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param appointmentID path string true "ID del turno"
// @Success 200 {object} httpjson.Message "Appointment deleted"
// @Failure 404 {object} httpjson.Message "Appointment not found"
// @Failure 500 {object} httpjson.Message
// @Router /appointments/{appointmentID} [delete]
func deleteAppointmentHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), chi.URLParam(r, "appointmentID")); err != nil {
			writeError(w, log, "delete appointment", err)
			return
		}
		httpjson.WriteMessage(w, http.StatusOK, msgDeleted)
	}
}

func writeError(w http.ResponseWriter, log logger.Logger, op string, err error) {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		httpjson.WriteMessage(w, http.StatusBadRequest, ve.Message)
	case errors.Is(err, ErrNotFound):
		httpjson.WriteMessage(w, http.StatusNotFound, msgNotFound)
	case errors.Is(err, ErrUnauthorized):
		httpjson.WriteMessage(w, http.StatusUnauthorized, msgUnauthorized)
	default:
		log.Error("request failed", map[string]any{"op": op, "error": err})
		httpjson.WriteMessage(w, http.StatusInternalServerError, err.Error())
	}
}

func toResponse(a Appointment) appointmentResponse {
	return appointmentResponse{
		ID:          a.ID,
		UserID:      a.UserID,
		PetName:     a.PetName,
		OwnerName:   a.OwnerName,
		OwnerPhone:  a.OwnerPhone,
		Date:        a.Date,
		Description: a.Description,
	}
}
