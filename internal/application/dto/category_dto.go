package dto

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/jhoicas/erp-categorias/internal/domain/category"
)

// CreateCategoryRequest entrada para crear una categoría. ParentID nulo o vacío crea una raíz.
type CreateCategoryRequest struct {
	Name     string  `json:"name" validate:"required,min=1,max=200"`
	ParentID *string `json:"parentId"`
	Code     string  `json:"code" validate:"omitempty,max=50"`
	Status   string  `json:"status" validate:"omitempty,oneof=active inactive"`
}

// UpdateCategoryRequest entrada para actualizar una categoría.
// Los campos nulos no se modifican; ParentID "" mueve la categoría a la raíz.
type UpdateCategoryRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=200"`
	ParentID *string `json:"parentId"`
	Code     *string `json:"code" validate:"omitempty,max=50"`
	Status   *string `json:"status" validate:"omitempty,oneof=active inactive"`
}

// CategoryResponse salida de una categoría. Extra se emite al mismo nivel que los campos conocidos.
type CategoryResponse struct {
	ID        string                     `json:"id"`
	Name      string                     `json:"name"`
	ParentID  *string                    `json:"parentId"`
	Code      string                     `json:"code,omitempty"`
	Status    string                     `json:"status,omitempty"`
	CreatedAt *time.Time                 `json:"createdAt,omitempty"`
	UpdatedAt *time.Time                 `json:"updatedAt,omitempty"`
	Extra     map[string]json.RawMessage `json:"-"`
}

// MarshalJSON agrega los campos de paso sin pisar los conocidos.
func (r CategoryResponse) MarshalJSON() ([]byte, error) {
	type plain CategoryResponse
	base, err := json.Marshal(plain(r))
	if err != nil || len(r.Extra) == 0 {
		return base, err
	}
	merged := make(map[string]json.RawMessage, len(r.Extra)+7)
	if err := json.Unmarshal(base, &merged); err != nil {
		return nil, err
	}
	for k, v := range r.Extra {
		if _, taken := merged[k]; taken || k == "children" {
			continue
		}
		merged[k] = v
	}
	return json.Marshal(merged)
}

// CategoryListResponse lista paginada de categorías (plana).
type CategoryListResponse struct {
	Items []CategoryResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// CategoryTreeNode nodo del árbol de administración: el registro completo más sus hijos.
// Children siempre se serializa como arreglo, vacío en las hojas.
type CategoryTreeNode struct {
	CategoryResponse
	Children []CategoryTreeNode `json:"children"`
}

// MarshalJSON serializa el registro y añade children al final del objeto.
func (n CategoryTreeNode) MarshalJSON() ([]byte, error) {
	base, err := json.Marshal(n.CategoryResponse)
	if err != nil {
		return nil, err
	}
	children := n.Children
	if children == nil {
		children = []CategoryTreeNode{}
	}
	rawChildren, err := json.Marshal(children)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Grow(len(base) + len(rawChildren) + 16)
	buf.Write(base[:len(base)-1])
	if len(bytes.TrimSpace(base[1:len(base)-1])) > 0 {
		buf.WriteByte(',')
	}
	buf.WriteString(`"children":`)
	buf.Write(rawChildren)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// CategoryTreeResponse bosque completo de categorías.
type CategoryTreeResponse struct {
	Items []CategoryTreeNode `json:"items"`
	Total int                `json:"total"`
}

// CategoryOptionsResponse bosque del selector jerárquico.
type CategoryOptionsResponse struct {
	Items     []category.OptionNode `json:"items"`
	Total     int                   `json:"total"`
	ExcludeID string                `json:"excludeId,omitempty"`
}
