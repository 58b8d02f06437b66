package pets

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"vet-clinic-records/internal/platform/httpjson"
	"vet-clinic-records/internal/platform/logger"

	"github.com/go-chi/chi/v5"
)

const (
	msgPetNotFound       = "Pet not found"
	msgTreatmentNotFound = "Treatment not found"
	msgNameTaken         = "Pet name already exists."
	msgConcurrentUpdate  = "Pet was modified concurrently, retry."
	msgPetDeleted        = "Pet deleted"
	msgInvalidJSON       = "invalid json"
)

// RegisterRoutes monta /pets y /pets/{petID}/treatment. La autenticación la resuelve el router
// (RequireAuth) antes de llegar acá.
func RegisterRoutes(r chi.Router, svc *Service, log logger.Logger) {
	if log == nil {
		log = logger.NewNop()
	}
	log = log.With(map[string]any{"module": "pets"})

	r.Route("/pets", func(pr chi.Router) {
		pr.Get("/", listPetsHandler(svc, log))
		pr.Post("/", createPetHandler(svc, log))

		pr.Get("/{petID}", getPetHandler(svc, log))
		pr.Put("/{petID}", updatePetHandler(svc, log))
		pr.Delete("/{petID}", deletePetHandler(svc, log))

		// Treatments (sub-documentos del pet)
		pr.Get("/{petID}/treatment", listTreatmentsHandler(svc, log))
		pr.Post("/{petID}/treatment", addTreatmentHandler(svc, log))
		pr.Delete("/{petID}/treatment/{treatmentID}", removeTreatmentHandler(svc, log))
	})
}

type ownerRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// createPetRequest es el cuerpo para registrar una mascota. age acepta número o string numérico.
type createPetRequest struct {
	Name    string          `json:"name"`
	Age     httpjson.Number `json:"age" swaggertype:"number"`
	Gender  string          `json:"gender" enums:"Female,Male"`
	Species string          `json:"species"`
	Breed   string          `json:"breed"`
	Owner   ownerRequest    `json:"owner"`
}

type ownerPatchRequest struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
	Email *string `json:"email"`
}

// updatePetRequest: campos ausentes no se tocan; owner se mergea campo por campo.
type updatePetRequest struct {
	Name    *string            `json:"name"`
	Age     httpjson.Number    `json:"age" swaggertype:"number"`
	Gender  *string            `json:"gender" enums:"Female,Male"`
	Species *string            `json:"species"`
	Breed   *string            `json:"breed"`
	Owner   *ownerPatchRequest `json:"owner"`
}

// addTreatmentRequest: date, description, vet y treatmentCost son obligatorios.
type addTreatmentRequest struct {
	Date          string          `json:"date"`
	Description   string          `json:"description"`
	Vet           string          `json:"vet"`
	TreatmentCost httpjson.Number `json:"treatmentCost" swaggertype:"number"`
	MedicineCost  httpjson.Number `json:"medicineCost" swaggertype:"number"`
}

type ownerResponse struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email,omitempty"`
}

type treatmentResponse struct {
	ID            string    `json:"_id"`
	Date          time.Time `json:"date"`
	Description   string    `json:"description"`
	Vet           string    `json:"vet"`
	TreatmentCost float64   `json:"treatmentCost"`
	MedicineCost  float64   `json:"medicineCost"`
	TotalCost     float64   `json:"totalCost"`
}

type vaccinationResponse struct {
	ID         string     `json:"_id"`
	Name       string     `json:"name,omitempty"`
	Date       time.Time  `json:"date"`
	ExpiryDate *time.Time `json:"expiryDate,omitempty"`
}

// petResponse representa el documento Pet devuelto por la API.
type petResponse struct {
	ID           string                `json:"_id"`
	Name         string                `json:"name"`
	Age          *int                  `json:"age,omitempty"`
	Gender       Gender                `json:"gender,omitempty"`
	Species      string                `json:"species"`
	Breed        string                `json:"breed,omitempty"`
	Owner        ownerResponse         `json:"owner"`
	Treatments   []treatmentResponse   `json:"treatments"`
	Vaccinations []vaccinationResponse `json:"vaccinations"`
	Version      int                   `json:"__v"`
}

// removeTreatmentResponse mantiene el formato que consume el cliente web (res.data.treatments).
type removeTreatmentResponse struct {
	Treatments []treatmentResponse `json:"treatments"`
}

// listPetsHandler godoc
// @Summary Listar mascotas
// @Description Devuelve todas las mascotas registradas, sin filtros ni paginación.
// @Tags pets
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Success 200 {array} petResponse
// @Failure 401 {object} httpjson.Message
// @Failure 500 {object} httpjson.Message
// @Router /pets [get]
func listPetsHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.List(r.Context())
		if err != nil {
			writeError(w, log, "list pets", err, http.StatusConflict)
			return
		}

		out := make([]petResponse, 0, len(items))
		for _, p := range items {
			out = append(out, toPetResponse(p))
		}
		httpjson.WriteJSON(w, http.StatusOK, out)
	}
}

// createPetHandler godoc
// @Summary Crear mascota
// @Description Registra una mascota. El nombre es único en todo el sistema.
// @Tags pets
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param payload body createPetRequest true "name, species, owner.name y owner.phone son obligatorios"
// @Success 201 {object} petResponse
// @Failure 400 {object} httpjson.Message "Pet name already exists. / campos inválidos"
// @Failure 401 {object} httpjson.Message
// @Failure 500 {object} httpjson.Message
// @Router /pets [post]
func createPetHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createPetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpjson.WriteMessage(w, http.StatusBadRequest, msgInvalidJSON)
			return
		}

		p, err := svc.Create(r.Context(), CreateInput{
			Name:    req.Name,
			Age:     req.Age,
			Gender:  req.Gender,
			Species: req.Species,
			Breed:   req.Breed,
			Owner: Owner{
				Name:  req.Owner.Name,
				Phone: req.Owner.Phone,
				Email: req.Owner.Email,
			},
		})
		if err != nil {
			// en create, nombre duplicado es 400 (contrato del cliente)
			writeError(w, log, "create pet", err, http.StatusBadRequest)
			return
		}

		httpjson.WriteJSON(w, http.StatusCreated, toPetResponse(p))
	}
}

// getPetHandler godoc
// @Summary Obtener mascota
// @Tags pets
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param petID path string true "ID de la mascota"
// @Success 200 {object} petResponse
// @Failure 404 {object} httpjson.Message "Pet not found"
// @Failure 500 {object} httpjson.Message
// @Router /pets/{petID} [get]
func getPetHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := svc.GetByID(r.Context(), chi.URLParam(r, "petID"))
		if err != nil {
			writeError(w, log, "get pet", err, http.StatusConflict)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, toPetResponse(p))
	}
}

// updatePetHandler godoc
// @Summary Actualizar mascota
// @Description Update parcial: solo se tocan los campos enviados. owner se mergea campo por campo.
// @Tags pets
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param petID path string true "ID de la mascota"
// @Param payload body updatePetRequest true "Campos a modificar"
// @Success 200 {object} petResponse
// @Failure 400 {object} httpjson.Message
// @Failure 404 {object} httpjson.Message "Pet not found"
// @Failure 409 {object} httpjson.Message "Pet name already exists."
// @Failure 500 {object} httpjson.Message
// @Router /pets/{petID} [put]
func updatePetHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updatePetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpjson.WriteMessage(w, http.StatusBadRequest, msgInvalidJSON)
			return
		}

		in := UpdateInput{
			Name:    req.Name,
			Age:     req.Age,
			Gender:  req.Gender,
			Species: req.Species,
			Breed:   req.Breed,
		}
		if req.Owner != nil {
			in.Owner = &OwnerPatch{
				Name:  req.Owner.Name,
				Phone: req.Owner.Phone,
				Email: req.Owner.Email,
			}
		}

		updated, err := svc.Update(r.Context(), chi.URLParam(r, "petID"), in)
		if err != nil {
			writeError(w, log, "update pet", err, http.StatusConflict)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, toPetResponse(updated))
	}
}

// deletePetHandler godoc
// @Summary Eliminar mascota
// @Tags pets
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param petID path string true "ID de la mascota"
// @Success 200 {object} httpjson.Message "Pet deleted"
// @Failure 404 {object} httpjson.Message "Pet not found"
// @Failure 500 {object} httpjson.Message
// @Router /pets/{petID} [delete]
func deletePetHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), chi.URLParam(r, "petID")); err != nil {
			writeError(w, log, "delete pet", err, http.StatusConflict)
			return
		}
		httpjson.WriteMessage(w, http.StatusOK, msgPetDeleted)
	}
}

// listTreatmentsHandler godoc
// @Summary Listar tratamientos de una mascota
// @Tags treatments
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param petID path string true "ID de la mascota"
// @Success 200 {array} treatmentResponse
// @Failure 404 {object} httpjson.Message "Pet not found"
// @Failure 500 {object} httpjson.Message
// @Router /pets/{petID}/treatment [get]
func listTreatmentsHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListTreatments(r.Context(), chi.URLParam(r, "petID"))
		if err != nil {
			writeError(w, log, "list treatments", err, http.StatusConflict)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, toTreatmentResponses(items))
	}
}

// addTreatmentHandler godoc
// @Summary Agregar tratamiento
// @Description Agrega un tratamiento al final de la lista. totalCost = treatmentCost + medicineCost (0 si no viene).
// @Tags treatments
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param petID path string true "ID de la mascota"
// @Param payload body addTreatmentRequest true "Datos del tratamiento"
// @Success 201 {object} treatmentResponse
// @Failure 400 {object} httpjson.Message "date, description, vet, treatmentCost are required."
// @Failure 404 {object} httpjson.Message "Pet not found"
// @Failure 500 {object} httpjson.Message
// @Router /pets/{petID}/treatment [post]
func addTreatmentHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req addTreatmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpjson.WriteMessage(w, http.StatusBadRequest, msgInvalidJSON)
			return
		}

		t, err := svc.AddTreatment(r.Context(), chi.URLParam(r, "petID"), AddTreatmentInput{
			Date:          req.Date,
			Description:   req.Description,
			Vet:           req.Vet,
			TreatmentCost: req.TreatmentCost,
			MedicineCost:  req.MedicineCost,
		})
		if err != nil {
			writeError(w, log, "add treatment", err, http.StatusConflict)
			return
		}
		httpjson.WriteJSON(w, http.StatusCreated, toTreatmentResponse(t))
	}
}

// removeTreatmentHandler godoc
// @Summary Eliminar tratamiento
// @Description Elimina un tratamiento y devuelve la lista resultante.
// @Tags treatments
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param petID path string true "ID de la mascota"
// @Param treatmentID path string true "ID del tratamiento"
// @Success 200 {object} removeTreatmentResponse
// @Failure 404 {object} httpjson.Message "Pet not found / Treatment not found"
// @Failure 500 {object} httpjson.Message
// @Router /pets/{petID}/treatment/{treatmentID} [delete]
func removeTreatmentHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.RemoveTreatment(r.Context(), chi.URLParam(r, "petID"), chi.URLParam(r, "treatmentID"))
		if err != nil {
			writeError(w, log, "remove treatment", err, http.StatusConflict)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, removeTreatmentResponse{Treatments: toTreatmentResponses(items)})
	}
}

// writeError traduce errores de dominio a status + {"message"}. nameTakenStatus difiere entre
// create (400) y update (409).
func writeError(w http.ResponseWriter, log logger.Logger, op string, err error, nameTakenStatus int) {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		httpjson.WriteMessage(w, http.StatusBadRequest, ve.Message)
	case errors.Is(err, ErrNotFound):
		httpjson.WriteMessage(w, http.StatusNotFound, msgPetNotFound)
	case errors.Is(err, ErrTreatmentNotFound):
		httpjson.WriteMessage(w, http.StatusNotFound, msgTreatmentNotFound)
	case errors.Is(err, ErrNameTaken):
		httpjson.WriteMessage(w, nameTakenStatus, msgNameTaken)
	case errors.Is(err, ErrConcurrentUpdate):
		httpjson.WriteMessage(w, http.StatusConflict, msgConcurrentUpdate)
	default:
		log.Error("request failed", map[string]any{"op": op, "error": err})
		httpjson.WriteMessage(w, http.StatusInternalServerError, err.Error())
	}
}

func toPetResponse(p Pet) petResponse {
	vacc := make([]vaccinationResponse, 0, len(p.Vaccinations))
	for _, v := range p.Vaccinations {
		vacc = append(vacc, vaccinationResponse{
			ID:         v.ID,
			Name:       v.Name,
			Date:       v.Date,
			ExpiryDate: v.ExpiryDate,
		})
	}

	return petResponse{
		ID:      p.ID,
		Name:    p.Name,
		Age:     p.Age,
		Gender:  p.Gender,
		Species: p.Species,
		Breed:   p.Breed,
		Owner: ownerResponse{
			Name:  p.Owner.Name,
			Phone: p.Owner.Phone,
			Email: p.Owner.Email,
		},
		Treatments:   toTreatmentResponses(p.Treatments),
		Vaccinations: vacc,
		Version:      p.Version,
	}
}

func toTreatmentResponses(items []Treatment) []treatmentResponse {
	out := make([]treatmentResponse, 0, len(items))
	for _, t := range items {
		out = append(out, toTreatmentResponse(t))
	}
	return out
}

func toTreatmentResponse(t Treatment) treatmentResponse {
	return treatmentResponse{
		ID:            t.ID,
		Date:          t.Date,
		Description:   t.Description,
		Vet:           t.Vet,
		TreatmentCost: t.TreatmentCost,
		MedicineCost:  t.MedicineCost,
		TotalCost:     t.TotalCost,
	}
}
