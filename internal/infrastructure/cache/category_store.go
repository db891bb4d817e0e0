// Package cache mantiene instantáneas de categorías por empresa delante de la fuente de lectura.
package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog"

	"github.com/jhoicas/erp-categorias/internal/domain/entity"
	"github.com/jhoicas/erp-categorias/internal/domain/repository"
)

var _ repository.CategoryRepository = (*CategoryStore)(nil)

// CategoryStore decora un par lector/escritor. ListByCompany se sirve desde un LRU con expiración
// por empresa; toda escritura exitosa invalida la instantánea de esa empresa.
type CategoryStore struct {
	reader    repository.CategoryReader
	writer    repository.CategoryWriter
	snapshots *expirable.LRU[string, []entity.Category]
	log       zerolog.Logger

	// mu protege generations. Una carga solo se guarda si la generación de la
	// empresa no cambió mientras se leía la fuente.
	mu          sync.Mutex
	generations map[string]uint64
}

// NewCategoryStore construye el decorador. size <= 0 usa 256 empresas; ttl <= 0 usa 30 s.
func NewCategoryStore(reader repository.CategoryReader, writer repository.CategoryWriter, size int, ttl time.Duration, log zerolog.Logger) *CategoryStore {
	if size <= 0 {
		size = 256
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &CategoryStore{
		reader:      reader,
		writer:      writer,
		snapshots:   expirable.NewLRU[string, []entity.Category](size, nil, ttl),
		log:         log.With().Str("component", "cache.categories").Logger(),
		generations: make(map[string]uint64),
	}
}

// ListByCompany devuelve una copia de la instantánea de la empresa.
func (s *CategoryStore) ListByCompany(ctx context.Context, companyID string) ([]entity.Category, error) {
	if list, ok := s.snapshots.Get(companyID); ok {
		return clone(list), nil
	}
	gen := s.generation(companyID)
	list, err := s.reader.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	s.store(companyID, gen, list)
	return list, nil
}

func (s *CategoryStore) generation(companyID string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generations[companyID]
}

// store guarda la lista leída solo si ninguna escritura invalidó la empresa durante la lectura.
func (s *CategoryStore) store(companyID string, gen uint64, list []entity.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generations[companyID] != gen {
		s.log.Debug().Str("company_id", companyID).Msg("lectura descartada: la empresa fue invalidada")
		return
	}
	s.snapshots.Add(companyID, clone(list))
	s.log.Debug().Str("company_id", companyID).Int("count", len(list)).Msg("instantánea de categorías cargada")
}

// GetByID usa la instantánea vigente si existe; si no, consulta la fuente.
func (s *CategoryStore) GetByID(ctx context.Context, companyID, id string) (*entity.Category, error) {
	if list, ok := s.snapshots.Get(companyID); ok {
		for _, c := range list {
			if c.ID == id {
				cp := c
				return &cp, nil
			}
		}
		return nil, nil
	}
	return s.reader.GetByID(ctx, companyID, id)
}

// Create delega en el escritor e invalida la instantánea.
func (s *CategoryStore) Create(ctx context.Context, category *entity.Category) (*entity.Category, error) {
	out, err := s.writer.Create(ctx, category)
	if err != nil {
		return nil, err
	}
	s.Invalidate(category.CompanyID)
	return out, nil
}

// Update delega en el escritor e invalida la instantánea.
func (s *CategoryStore) Update(ctx context.Context, category *entity.Category) (*entity.Category, error) {
	out, err := s.writer.Update(ctx, category)
	if err != nil {
		return nil, err
	}
	s.Invalidate(category.CompanyID)
	return out, nil
}

// Delete delega en el escritor e invalida la instantánea.
func (s *CategoryStore) Delete(ctx context.Context, companyID, id string) error {
	if err := s.writer.Delete(ctx, companyID, id); err != nil {
		return err
	}
	s.Invalidate(companyID)
	return nil
}

// Invalidate descarta la instantánea de la empresa y las lecturas que sigan en curso.
func (s *CategoryStore) Invalidate(companyID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generations[companyID]++
	s.snapshots.Remove(companyID)
}

// clone copia la lista y los mapas Extra para que nadie comparta estado con la caché.
func clone(list []entity.Category) []entity.Category {
	out := make([]entity.Category, len(list))
	copy(out, list)
	for i := range out {
		if out[i].Extra == nil {
			continue
		}
		extra := make(map[string]json.RawMessage, len(out[i].Extra))
		for k, v := range out[i].Extra {
			extra[k] = v
		}
		out[i].Extra = extra
	}
	return out
}
