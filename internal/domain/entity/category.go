package entity

import (
	"encoding/json"
	"time"
)

// Estados de una categoría.
const (
	CategoryStatusActive   = "active"
	CategoryStatusInactive = "inactive"
)

// Category representa una categoría de productos (jerárquica opcional).
// Los campos que el almacén externo envía y que no se modelan aquí viajan en Extra sin modificarse.
type Category struct {
	ID        string
	CompanyID string
	ParentID  string // vacío si es raíz
	Name      string
	Code      string // código único por empresa
	Status    string // active, inactive
	Extra     map[string]json.RawMessage
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RecordID, RecordParentID y RecordName permiten ordenar categorías en un árbol (category.Record).
func (c Category) RecordID() string       { return c.ID }
func (c Category) RecordParentID() string { return c.ParentID }
func (c Category) RecordName() string     { return c.Name }

// IsRoot informa si la categoría no declara padre.
func (c Category) IsRoot() bool {
	return c.ParentID == ""
}
