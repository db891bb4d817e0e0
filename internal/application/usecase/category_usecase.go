package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/erp-categorias/internal/application/dto"
	"github.com/jhoicas/erp-categorias/internal/domain"
	"github.com/jhoicas/erp-categorias/internal/domain/category"
	"github.com/jhoicas/erp-categorias/internal/domain/entity"
	"github.com/jhoicas/erp-categorias/internal/domain/repository"
)

// CategoryTreePDFRenderer genera la representación imprimible del árbol de categorías.
type CategoryTreePDFRenderer interface {
	RenderCategoryTree(ctx context.Context, title string, forest []*category.Node[entity.Category]) ([]byte, error)
}

// CategoryUseCase casos de uso de categorías: listado plano, árbol, opciones del selector y CRUD.
// Las lecturas salen de reader (API externa, réplica o caché); las escrituras van siempre por writer.
type CategoryUseCase struct {
	reader repository.CategoryReader
	writer repository.CategoryWriter
	pdf    CategoryTreePDFRenderer
}

// NewCategoryUseCase construye el caso de uso. pdf puede ser nil si no se exporta a PDF.
func NewCategoryUseCase(reader repository.CategoryReader, writer repository.CategoryWriter, pdf CategoryTreePDFRenderer) *CategoryUseCase {
	return &CategoryUseCase{reader: reader, writer: writer, pdf: pdf}
}

// List lista las categorías de la empresa en orden de inserción, paginando en memoria.
func (uc *CategoryUseCase) List(ctx context.Context, companyID string, limit, offset int) (*dto.CategoryListResponse, error) {
	list, err := uc.reader.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	total := len(list)
	if offset > total {
		offset = total
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}
	items := make([]dto.CategoryResponse, 0, end-offset)
	for _, c := range list[offset:end] {
		items = append(items, toCategoryResponse(c))
	}
	return &dto.CategoryListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset, Total: total},
	}, nil
}

// GetByID obtiene una categoría por ID. Devuelve nil, nil si no existe.
func (uc *CategoryUseCase) GetByID(ctx context.Context, companyID, id string) (*dto.CategoryResponse, error) {
	c, err := uc.reader.GetByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, nil
	}
	out := toCategoryResponse(*c)
	return &out, nil
}

// Tree devuelve el bosque completo de categorías con todos los campos de cada registro.
func (uc *CategoryUseCase) Tree(ctx context.Context, companyID string) (*dto.CategoryTreeResponse, error) {
	list, err := uc.reader.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	forest := category.BuildTree(list)
	return &dto.CategoryTreeResponse{
		Items: toCategoryTreeNodes(forest),
		Total: category.CountNodes(forest),
	}, nil
}

// Options devuelve el bosque del selector de categoría padre. excludeID (opcional) es la categoría
// en edición: se omite solo ese nodo y sus hijas quedan en la raíz.
func (uc *CategoryUseCase) Options(ctx context.Context, companyID, excludeID string) (*dto.CategoryOptionsResponse, error) {
	list, err := uc.reader.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	opts := category.BuildOptionsTree(list, excludeID)
	return &dto.CategoryOptionsResponse{
		Items:     opts,
		Total:     category.CountOptions(opts),
		ExcludeID: excludeID,
	}, nil
}

// TreePDF genera el árbol de categorías en PDF.
func (uc *CategoryUseCase) TreePDF(ctx context.Context, companyID string) ([]byte, error) {
	if uc.pdf == nil {
		return nil, fmt.Errorf("category: exportación PDF no configurada")
	}
	list, err := uc.reader.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return uc.pdf.RenderCategoryTree(ctx, "Árbol de categorías", category.BuildTree(list))
}

// Create crea una categoría. El padre, si se indica, debe existir en la misma empresa.
func (uc *CategoryUseCase) Create(ctx context.Context, companyID string, in dto.CreateCategoryRequest) (*dto.CategoryResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name es requerido", domain.ErrInvalidInput)
	}
	status, err := normalizeStatus(in.Status)
	if err != nil {
		return nil, err
	}
	parentID := ""
	if in.ParentID != nil {
		parentID = strings.TrimSpace(*in.ParentID)
	}
	if parentID != "" {
		parent, err := uc.reader.GetByID(ctx, companyID, parentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, fmt.Errorf("%w: la categoría padre %q no existe", domain.ErrInvalidInput, parentID)
		}
	}

	created, err := uc.writer.Create(ctx, &entity.Category{
		CompanyID: companyID,
		ParentID:  parentID,
		Name:      name,
		Code:      strings.TrimSpace(in.Code),
		Status:    status,
	})
	if err != nil {
		return nil, err
	}
	out := toCategoryResponse(*created)
	return &out, nil
}

// Update actualiza una categoría. Devuelve nil, nil si no existe.
// Rechaza con ErrCategoryCycle mover la categoría bajo sí misma o bajo una descendiente.
func (uc *CategoryUseCase) Update(ctx context.Context, companyID, id string, in dto.UpdateCategoryRequest) (*dto.CategoryResponse, error) {
	current, err := uc.reader.GetByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, nil
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name no puede quedar vacío", domain.ErrInvalidInput)
		}
		current.Name = name
	}
	if in.Code != nil {
		current.Code = strings.TrimSpace(*in.Code)
	}
	if in.Status != nil {
		status, err := normalizeStatus(*in.Status)
		if err != nil {
			return nil, err
		}
		current.Status = status
	}
	if in.ParentID != nil {
		parentID := strings.TrimSpace(*in.ParentID)
		if parentID != "" && parentID != current.ParentID {
			if err := uc.checkNewParent(ctx, companyID, id, parentID); err != nil {
				return nil, err
			}
		}
		current.ParentID = parentID
	}

	updated, err := uc.writer.Update(ctx, current)
	if err != nil {
		return nil, err
	}
	out := toCategoryResponse(*updated)
	return &out, nil
}

// Delete elimina una categoría sin subcategorías.
func (uc *CategoryUseCase) Delete(ctx context.Context, companyID, id string) error {
	list, err := uc.reader.ListByCompany(ctx, companyID)
	if err != nil {
		return err
	}
	if _, ok := category.IndexByID(list)[id]; !ok {
		return domain.ErrNotFound
	}
	if category.HasChildren(list, id) {
		return domain.ErrCategoryHasChildren
	}
	return uc.writer.Delete(ctx, companyID, id)
}

func (uc *CategoryUseCase) checkNewParent(ctx context.Context, companyID, id, parentID string) error {
	if parentID == id {
		return domain.ErrCategoryCycle
	}
	list, err := uc.reader.ListByCompany(ctx, companyID)
	if err != nil {
		return err
	}
	if _, ok := category.IndexByID(list)[parentID]; !ok {
		return fmt.Errorf("%w: la categoría padre %q no existe", domain.ErrInvalidInput, parentID)
	}
	if category.WouldCycle(list, id, parentID) {
		return domain.ErrCategoryCycle
	}
	return nil
}

func normalizeStatus(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", entity.CategoryStatusActive:
		return entity.CategoryStatusActive, nil
	case entity.CategoryStatusInactive:
		return entity.CategoryStatusInactive, nil
	default:
		return "", fmt.Errorf("%w: status debe ser active o inactive", domain.ErrInvalidInput)
	}
}

func toCategoryResponse(c entity.Category) dto.CategoryResponse {
	out := dto.CategoryResponse{
		ID:     c.ID,
		Name:   c.Name,
		Code:   c.Code,
		Status: c.Status,
		Extra:  c.Extra,
	}
	if c.ParentID != "" {
		parentID := c.ParentID
		out.ParentID = &parentID
	}
	if !c.CreatedAt.IsZero() {
		createdAt := c.CreatedAt
		out.CreatedAt = &createdAt
	}
	if !c.UpdatedAt.IsZero() {
		updatedAt := c.UpdatedAt
		out.UpdatedAt = &updatedAt
	}
	return out
}

func toCategoryTreeNodes(nodes []*category.Node[entity.Category]) []dto.CategoryTreeNode {
	out := make([]dto.CategoryTreeNode, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, dto.CategoryTreeNode{
			CategoryResponse: toCategoryResponse(n.Record),
			Children:         toCategoryTreeNodes(n.Children),
		})
	}
	return out
}
