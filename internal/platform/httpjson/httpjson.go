package httpjson

import (
	"bytes"
	"encoding/json"
	"net/http"
)

// Message es el cuerpo de toda respuesta de error (y de las confirmaciones de borrado).
type Message struct {
	Message string `json:"message"`
}

// WriteJSON codifica antes de escribir el header: si v no se puede codificar responde 500.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		buf.Reset()
		status = http.StatusInternalServerError
		_ = json.NewEncoder(&buf).Encode(Message{Message: "encode response: " + err.Error()})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func WriteMessage(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, Message{Message: msg})
}
