package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	authjwt "vet-clinic-records/internal/adapters/auth/jwt"
	"vet-clinic-records/internal/router"
)

const basePath = "/api"

func newServer(t *testing.T, opts router.Options) *httptest.Server {
	t.Helper()
	opts.BasePath = basePath
	ts := httptest.NewServer(router.NewRouter(opts))
	t.Cleanup(ts.Close)
	return ts
}

func TestHTTP_EndToEnd_PetAndTreatments(t *testing.T) {
	ts := newServer(t, router.Options{})
	userID := "vet-1"

	// 1) Crear mascota
	petID := createPet(t, ts.URL, userID, map[string]any{
		"name":    "Milo",
		"species": "Dog",
		"gender":  "Male",
		"owner":   map[string]any{"name": "Ana", "phone": "111"},
	})

	// 2) Mismo nombre => 400 en create
	{
		st, body := doReq(t, ts.URL, "POST", "/pets", userID, map[string]any{
			"name":    "Milo",
			"species": "Cat",
			"owner":   map[string]any{"name": "Otro", "phone": "222"},
		})
		if st != http.StatusBadRequest {
			t.Fatalf("expected 400 duplicate name, got %d body=%s", st, string(body))
		}
		if msg := message(t, body); msg != "Pet name already exists." {
			t.Fatalf("unexpected message %q", msg)
		}
	}

	// 3) Agregar tratamiento: totalCost = 50 + 10
	var treatmentID string
	{
		st, body := doReq(t, ts.URL, "POST", "/pets/"+petID+"/treatment", userID, map[string]any{
			"date":          "2024-03-01",
			"description":   "Checkup",
			"vet":           "Dr. Who",
			"treatmentCost": 50,
			"medicineCost":  10,
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 add treatment, got %d body=%s", st, string(body))
		}
		var out map[string]any
		mustUnmarshal(t, body, &out)
		if out["totalCost"] != float64(60) {
			t.Fatalf("expected totalCost 60, got %v", out["totalCost"])
		}
		treatmentID, _ = out["_id"].(string)
		if treatmentID == "" {
			t.Fatalf("add treatment: missing _id body=%s", string(body))
		}
	}

	// 4) Borrar treatment inexistente => 404 y la lista no cambia
	{
		st, body := doReq(t, ts.URL, "DELETE", "/pets/"+petID+"/treatment/does-not-exist", userID, nil)
		if st != http.StatusNotFound {
			t.Fatalf("expected 404 missing treatment, got %d body=%s", st, string(body))
		}
		if msg := message(t, body); msg != "Treatment not found" {
			t.Fatalf("unexpected message %q", msg)
		}
		if n := len(listTreatments(t, ts.URL, userID, petID)); n != 1 {
			t.Fatalf("expected 1 treatment after failed delete, got %d", n)
		}
	}

	// 5) Borrar el treatment real => {"treatments": []}
	{
		st, body := doReq(t, ts.URL, "DELETE", "/pets/"+petID+"/treatment/"+treatmentID, userID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 remove treatment, got %d body=%s", st, string(body))
		}
		var out struct {
			Treatments []map[string]any `json:"treatments"`
		}
		mustUnmarshal(t, body, &out)
		if out.Treatments == nil || len(out.Treatments) != 0 {
			t.Fatalf("expected empty treatments array, got %s", string(body))
		}
	}

	// 6) PUT {age: 5} solo toca age
	{
		st, body := doReq(t, ts.URL, "PUT", "/pets/"+petID, userID, map[string]any{"age": 5})
		if st != http.StatusOK {
			t.Fatalf("expected 200 update age, got %d body=%s", st, string(body))
		}
		p := decodePet(t, body)
		if p.Age == nil || *p.Age != 5 || p.Name != "Milo" || p.Species != "Dog" || p.Owner.Phone != "111" {
			t.Fatalf("unexpected pet after age update: %s", string(body))
		}
	}

	// 7) owner se mergea campo por campo
	{
		st, body := doReq(t, ts.URL, "PUT", "/pets/"+petID, userID, map[string]any{
			"owner": map[string]any{"phone": "999"},
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 update owner, got %d body=%s", st, string(body))
		}
		p := decodePet(t, body)
		if p.Owner.Name != "Ana" || p.Owner.Phone != "999" {
			t.Fatalf("owner not merged: %s", string(body))
		}
	}

	// 8) Delete + delete repetido
	{
		st, body := doReq(t, ts.URL, "DELETE", "/pets/"+petID, userID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 delete pet, got %d body=%s", st, string(body))
		}
		st, body = doReq(t, ts.URL, "DELETE", "/pets/"+petID, userID, nil)
		if st != http.StatusNotFound {
			t.Fatalf("expected 404 second delete, got %d body=%s", st, string(body))
		}
		if msg := message(t, body); msg != "Pet not found" {
			t.Fatalf("unexpected message %q", msg)
		}
	}
}

func TestHTTP_UpdatePet_NameConflictIs409(t *testing.T) {
	ts := newServer(t, router.Options{})
	userID := "vet-1"

	createPet(t, ts.URL, userID, map[string]any{
		"name": "Luna", "species": "Cat",
		"owner": map[string]any{"name": "Ana", "phone": "111"},
	})
	rexID := createPet(t, ts.URL, userID, map[string]any{
		"name": "Rex", "species": "Dog",
		"owner": map[string]any{"name": "Bob", "phone": "222"},
	})

	st, body := doReq(t, ts.URL, "PUT", "/pets/"+rexID, userID, map[string]any{"name": "Luna"})
	if st != http.StatusConflict {
		t.Fatalf("expected 409 rename to taken name, got %d body=%s", st, string(body))
	}

	// Renombrar a su propio nombre no es conflicto
	st, body = doReq(t, ts.URL, "PUT", "/pets/"+rexID, userID, map[string]any{"name": "Rex"})
	if st != http.StatusOK {
		t.Fatalf("expected 200 rename to own name, got %d body=%s", st, string(body))
	}
}

func TestHTTP_CreatePet_ValidationAndAge(t *testing.T) {
	ts := newServer(t, router.Options{})
	userID := "vet-1"

	st, body := doReq(t, ts.URL, "POST", "/pets", userID, map[string]any{
		"name": "Kiwi", "species": "Bird",
		"owner": map[string]any{"name": "Ana"},
	})
	if st != http.StatusBadRequest {
		t.Fatalf("expected 400 missing owner.phone, got %d body=%s", st, string(body))
	}
	if msg := message(t, body); msg != "owner.phone is required" {
		t.Fatalf("unexpected message %q", msg)
	}

	// age como string numérico
	st, body = doReq(t, ts.URL, "POST", "/pets", userID, map[string]any{
		"name": "Kiwi", "species": "Bird", "age": "3",
		"owner": map[string]any{"name": "Ana", "phone": "111"},
	})
	if st != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", st, string(body))
	}
	p := decodePet(t, body)
	if p.Age == nil || *p.Age != 3 {
		t.Fatalf("expected age 3, got %s", string(body))
	}
	if p.Treatments == nil || p.Vaccinations == nil || p.Version != 0 {
		t.Fatalf("expected empty arrays and __v 0, got %s", string(body))
	}
}

func TestHTTP_AddTreatment_Errors(t *testing.T) {
	ts := newServer(t, router.Options{})
	userID := "vet-1"

	petID := createPet(t, ts.URL, userID, map[string]any{
		"name": "Milo", "species": "Dog",
		"owner": map[string]any{"name": "Ana", "phone": "111"},
	})

	st, body := doReq(t, ts.URL, "POST", "/pets/"+petID+"/treatment", userID, map[string]any{
		"description": "Checkup", "vet": "Dr. Who", "treatmentCost": 50,
	})
	if st != http.StatusBadRequest {
		t.Fatalf("expected 400 missing date, got %d body=%s", st, string(body))
	}
	if msg := message(t, body); msg != "date, description, vet, treatmentCost are required." {
		t.Fatalf("unexpected message %q", msg)
	}

	st, body = doReq(t, ts.URL, "POST", "/pets/unknown/treatment", userID, map[string]any{})
	if st != http.StatusNotFound {
		t.Fatalf("expected 404 pet not found, got %d body=%s", st, string(body))
	}

	st, body = doReq(t, ts.URL, "GET", "/pets/unknown/treatment", userID, nil)
	if st != http.StatusNotFound {
		t.Fatalf("expected 404 list treatments of missing pet, got %d body=%s", st, string(body))
	}
}

func TestHTTP_AddTreatment_NonFiniteCostsRejected(t *testing.T) {
	ts := newServer(t, router.Options{})
	userID := "vet-1"

	petID := createPet(t, ts.URL, userID, map[string]any{
		"name": "Milo", "species": "Dog",
		"owner": map[string]any{"name": "Ana", "phone": "111"},
	})

	bodies := []map[string]any{
		{"treatmentCost": "NaN"},
		{"treatmentCost": "Inf"},
		{"treatmentCost": "-Inf"},
		{"treatmentCost": 10, "medicineCost": "Infinity"},
		{"treatmentCost": 1e308, "medicineCost": 1e308},
	}
	for _, extra := range bodies {
		in := map[string]any{"date": "2024-03-01", "description": "Checkup", "vet": "Dr. Who"}
		for k, v := range extra {
			in[k] = v
		}
		st, body := doReq(t, ts.URL, "POST", "/pets/"+petID+"/treatment", userID, in)
		if st != http.StatusBadRequest {
			t.Fatalf("expected 400 for %v, got %d body=%s", extra, st, string(body))
		}
		if msg := message(t, body); msg != "treatmentCost must be a non-negative number" &&
			msg != "medicineCost must be a non-negative number" {
			t.Fatalf("unexpected message %q for %v", msg, extra)
		}
	}

	st, body := doReq(t, ts.URL, "GET", "/pets", userID, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 list pets, got %d body=%s", st, string(body))
	}
	var list []map[string]any
	if err := json.Unmarshal(body, &list); err != nil {
		t.Fatalf("list pets not decodable: %v body=%s", err, string(body))
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 pet, got %d", len(list))
	}

	st, body = doReq(t, ts.URL, "GET", "/pets/"+petID+"/treatment", userID, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 list treatments, got %d body=%s", st, string(body))
	}
	var treatments []map[string]any
	if err := json.Unmarshal(body, &treatments); err != nil {
		t.Fatalf("list treatments not decodable: %v body=%s", err, string(body))
	}
	if len(treatments) != 0 {
		t.Fatalf("expected no stored treatments, got %d", len(treatments))
	}
}

func TestHTTP_RequiresAuth(t *testing.T) {
	ts := newServer(t, router.Options{})

	st, body := doReq(t, ts.URL, "GET", "/pets", "", nil)
	if st != http.StatusUnauthorized {
		t.Fatalf("expected 401 without credentials, got %d", st)
	}
	if msg := message(t, body); msg != "Not authorized, no token" {
		t.Fatalf("unexpected message %q", msg)
	}

	// health no exige auth
	st, _ = doReq(t, ts.URL, "GET", "/health", "", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 health, got %d", st)
	}
	st, _ = doReq(t, ts.URL, "GET", "/health/ready", "", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 ready, got %d", st)
	}
}

func TestHTTP_JWTAuth(t *testing.T) {
	v, err := authjwt.NewVerifier("test-secret")
	if err != nil {
		t.Fatalf("new verifier: %v", err)
	}
	ts := newServer(t, router.Options{AuthVerifier: v})

	// en modo jwt el header de debug no alcanza
	st, _ := doReq(t, ts.URL, "GET", "/appointments", "user-1", nil)
	if st != http.StatusUnauthorized {
		t.Fatalf("expected 401 with debug header in jwt mode, got %d", st)
	}

	st, body := doBearer(t, ts.URL, "GET", "/appointments", "not-a-jwt")
	if st != http.StatusUnauthorized {
		t.Fatalf("expected 401 bad token, got %d", st)
	}
	if msg := message(t, body); msg != "Not authorized, token failed" {
		t.Fatalf("unexpected message %q", msg)
	}

	token, err := v.Sign("user-1", time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	st, body = doBearer(t, ts.URL, "GET", "/appointments", token)
	if st != http.StatusOK {
		t.Fatalf("expected 200 with valid token, got %d body=%s", st, string(body))
	}
}

func TestHTTP_Appointments_ScopedList(t *testing.T) {
	ts := newServer(t, router.Options{})

	apptID := createAppointment(t, ts.URL, "user-a", map[string]any{
		"petName":    "Milo",
		"ownerName":  "Ana",
		"ownerPhone": "111",
		"date":       "2024-05-10T10:00:00Z",
	})

	if n := len(listAppointments(t, ts.URL, "user-a")); n != 1 {
		t.Fatalf("expected 1 appointment for owner, got %d", n)
	}
	if n := len(listAppointments(t, ts.URL, "user-b")); n != 0 {
		t.Fatalf("expected 0 appointments for other user, got %d", n)
	}

	// update con valores vacíos conserva lo guardado
	st, body := doReq(t, ts.URL, "PUT", "/appointments/"+apptID, "user-a", map[string]any{
		"petName": "", "description": "vacuna",
	})
	if st != http.StatusOK {
		t.Fatalf("expected 200 update, got %d body=%s", st, string(body))
	}
	var out map[string]any
	mustUnmarshal(t, body, &out)
	if out["petName"] != "Milo" || out["description"] != "vacuna" || out["userId"] != "user-a" {
		t.Fatalf("unexpected appointment after update: %s", string(body))
	}

	st, body = doReq(t, ts.URL, "POST", "/appointments", "user-a", map[string]any{"petName": "Milo"})
	if st != http.StatusBadRequest {
		t.Fatalf("expected 400 missing fields, got %d body=%s", st, string(body))
	}
}

// Update/Delete de turnos no validan el dueño: cualquier usuario autenticado con el id puede modificarlos.
func TestHTTP_Appointments_MutationsAreNotOwnerScoped(t *testing.T) {
	ts := newServer(t, router.Options{})

	apptID := createAppointment(t, ts.URL, "user-a", map[string]any{
		"petName":    "Milo",
		"ownerName":  "Ana",
		"ownerPhone": "111",
		"date":       "2024-05-10",
	})

	st, body := doReq(t, ts.URL, "PUT", "/appointments/"+apptID, "user-b", map[string]any{"ownerPhone": "999"})
	if st != http.StatusOK {
		t.Fatalf("expected 200 update by other user, got %d body=%s", st, string(body))
	}

	st, body = doReq(t, ts.URL, "DELETE", "/appointments/"+apptID, "user-b", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 delete by other user, got %d body=%s", st, string(body))
	}
	if msg := message(t, body); msg != "Appointment deleted" {
		t.Fatalf("unexpected message %q", msg)
	}

	st, body = doReq(t, ts.URL, "DELETE", "/appointments/"+apptID, "user-a", nil)
	if st != http.StatusNotFound {
		t.Fatalf("expected 404 second delete, got %d body=%s", st, string(body))
	}
	if msg := message(t, body); msg != "Appointment not found" {
		t.Fatalf("unexpected message %q", msg)
	}
}

type petBody struct {
	ID      string `json:"_id"`
	Name    string `json:"name"`
	Age     *int   `json:"age"`
	Species string `json:"species"`
	Owner   struct {
		Name  string `json:"name"`
		Phone string `json:"phone"`
	} `json:"owner"`
	Treatments   []map[string]any `json:"treatments"`
	Vaccinations []map[string]any `json:"vaccinations"`
	Version      int              `json:"__v"`
}

func decodePet(t *testing.T, body []byte) petBody {
	t.Helper()
	var p petBody
	mustUnmarshal(t, body, &p)
	return p
}

func createPet(t *testing.T, baseURL, userID string, payload map[string]any) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/pets", userID, payload)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create pet, got %d body=%s", st, string(body))
	}
	p := decodePet(t, body)
	if p.ID == "" {
		t.Fatalf("create pet: missing _id body=%s", string(body))
	}
	return p.ID
}

func listTreatments(t *testing.T, baseURL, userID, petID string) []map[string]any {
	t.Helper()

	st, body := doReq(t, baseURL, "GET", "/pets/"+petID+"/treatment", userID, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 list treatments, got %d body=%s", st, string(body))
	}
	var out []map[string]any
	mustUnmarshal(t, body, &out)
	return out
}

func createAppointment(t *testing.T, baseURL, userID string, payload map[string]any) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/appointments", userID, payload)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create appointment, got %d body=%s", st, string(body))
	}
	var out map[string]any
	mustUnmarshal(t, body, &out)
	id, _ := out["_id"].(string)
	if id == "" {
		t.Fatalf("create appointment: missing _id body=%s", string(body))
	}
	return id
}

func listAppointments(t *testing.T, baseURL, userID string) []map[string]any {
	t.Helper()

	st, body := doReq(t, baseURL, "GET", "/appointments", userID, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 list appointments, got %d body=%s", st, string(body))
	}
	var out []map[string]any
	mustUnmarshal(t, body, &out)
	return out
}

func message(t *testing.T, body []byte) string {
	t.Helper()
	var m struct {
		Message string `json:"message"`
	}
	mustUnmarshal(t, body, &m)
	return m.Message
}

func mustUnmarshal(t *testing.T, body []byte, v any) {
	t.Helper()
	if err := json.Unmarshal(body, v); err != nil {
		t.Fatalf("json unmarshal: %v body=%s", err, string(body))
	}
}

func doBearer(t *testing.T, baseURL, method, path, token string) (int, []byte) {
	t.Helper()

	req, err := http.NewRequest(method, baseURL+basePath+path, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return send(t, req)
}

func doReq(t *testing.T, baseURL, method, path, debugUserID string, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+basePath+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if debugUserID != "" {
		req.Header.Set("X-Debug-User-ID", debugUserID)
	}
	return send(t, req)
}

func send(t *testing.T, req *http.Request) (int, []byte) {
	t.Helper()

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}
