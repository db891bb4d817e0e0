package repository

import (
	"context"

	"github.com/jhoicas/erp-categorias/internal/domain/entity"
)

// CategoryReader define el puerto de lectura para Category (DIP).
// ListByCompany devuelve la instantánea plana completa en el orden de inserción del almacén.
// GetByID devuelve nil, nil si la categoría no existe.
type CategoryReader interface {
	ListByCompany(ctx context.Context, companyID string) ([]entity.Category, error)
	GetByID(ctx context.Context, companyID, id string) (*entity.Category, error)
}

// CategoryWriter define el puerto de escritura para Category.
// Create y Update devuelven el registro tal como quedó en el almacén (el ID lo asigna el almacén).
type CategoryWriter interface {
	Create(ctx context.Context, category *entity.Category) (*entity.Category, error)
	Update(ctx context.Context, category *entity.Category) (*entity.Category, error)
	Delete(ctx context.Context, companyID, id string) error
}

// CategoryRepository agrupa lectura y escritura.
type CategoryRepository interface {
	CategoryReader
	CategoryWriter
}
