// Package requestid genera y propaga el identificador de cada petición entrante.
package requestid

import (
	"context"

	"github.com/google/uuid"
)

// Header nombre del header HTTP que transporta el identificador.
const Header = "X-Request-ID"

type ctxKey struct{}

// New genera un identificador nuevo.
func New() string {
	return uuid.New().String()
}

// NewContext devuelve un contexto que transporta id.
func NewContext(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext devuelve el identificador del contexto o "" si no hay.
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}
