package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")
	ErrConflict     = errors.New("conflicto con el estado actual")
	ErrUpstream     = errors.New("error del servicio de categorías")

	ErrCategoryCycle       = errors.New("la categoría no puede quedar bajo sí misma ni bajo una de sus descendientes")
	ErrCategoryHasChildren = errors.New("la categoría tiene subcategorías")
)
