package httpjson

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Number acepta `5`, `"5"`, `""` y `null`. Los formularios del cliente web mandan
// números como string, así que la conversión se difiere al service.
//
// Present: la key vino en el body (incluso con null).
// Empty:   vino null o "" (string vacío tras trim).
// Valid:   Value contiene un número parseado.
type Number struct {
	Present bool
	Empty   bool
	Valid   bool
	Value   float64
}

func (n *Number) UnmarshalJSON(b []byte) error {
	*n = Number{Present: true}

	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		n.Empty = true
		return nil
	}

	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			n.Empty = true
			return nil
		}
		// ParseFloat acepta "NaN" e "Inf"; no son números para el dominio.
		f, err := strconv.ParseFloat(s, 64)
		if err == nil && finite(f) {
			n.Valid = true
			n.Value = f
		}
		return nil
	}

	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		// booleanos, objetos, etc: presente pero inválido
		return nil
	}
	n.Valid = finite(f)
	if n.Valid {
		n.Value = f
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Ptr devuelve nil si el valor no vino, vino vacío o no es numérico.
func (n Number) Ptr() *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Value
	return &v
}

// Invalid indica que vino un valor no vacío que no se pudo interpretar como número.
func (n Number) Invalid() bool {
	return n.Present && !n.Empty && !n.Valid
}
