package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/erp-categorias/internal/domain/entity"
	"github.com/jhoicas/erp-categorias/internal/domain/repository"
)

var _ repository.CategoryReader = (*CategoryRepo)(nil)

// categoryColumns columnas leídas de la tabla categories; parent_id NULL = raíz.
const categoryColumns = `id::text, company_id::text, parent_id::text, name,
	COALESCE(code, ''), COALESCE(status, ''), created_at, updated_at`

// CategoryRepo lectura de categorías sobre la réplica PostgreSQL. Las escrituras van por la API externa.
type CategoryRepo struct {
	db Querier
}

// NewCategoryRepository construye el adaptador de lectura.
func NewCategoryRepository(db Querier) *CategoryRepo {
	return &CategoryRepo{db: db}
}

// ListByCompany lista las categorías de la empresa en orden de inserción.
func (r *CategoryRepo) ListByCompany(ctx context.Context, companyID string) ([]entity.Category, error) {
	query := `SELECT ` + categoryColumns + `
		FROM categories
		WHERE company_id = $1
		ORDER BY created_at, id`
	rows, err := r.db.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	list := make([]entity.Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		list = append(list, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return list, nil
}

// GetByID obtiene una categoría de la empresa. Devuelve nil, nil si no existe
// o si id no es un UUID válido.
func (r *CategoryRepo) GetByID(ctx context.Context, companyID, id string) (*entity.Category, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	query := `SELECT ` + categoryColumns + `
		FROM categories
		WHERE company_id = $1 AND id = $2`
	c, err := scanCategory(r.db.QueryRow(ctx, query, companyID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return &c, nil
}

func scanCategory(row pgx.Row) (entity.Category, error) {
	var (
		c      entity.Category
		parent *string
	)
	if err := row.Scan(&c.ID, &c.CompanyID, &parent, &c.Name, &c.Code, &c.Status, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return entity.Category{}, err
	}
	if parent != nil {
		c.ParentID = *parent
	}
	return c, nil
}
