package cache_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/erp-categorias/internal/domain/entity"
	"github.com/jhoicas/erp-categorias/internal/infrastructure/cache"
)

type countingSource struct {
	lists   int
	gets    int
	writes  int
	failing error
	data    map[string][]entity.Category
}

func (s *countingSource) ListByCompany(_ context.Context, companyID string) ([]entity.Category, error) {
	s.lists++
	if s.failing != nil {
		return nil, s.failing
	}
	out := make([]entity.Category, len(s.data[companyID]))
	copy(out, s.data[companyID])
	return out, nil
}

func (s *countingSource) GetByID(_ context.Context, companyID, id string) (*entity.Category, error) {
	s.gets++
	for _, c := range s.data[companyID] {
		if c.ID == id {
			cp := c
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *countingSource) Create(_ context.Context, c *entity.Category) (*entity.Category, error) {
	s.writes++
	if s.failing != nil {
		return nil, s.failing
	}
	cp := *c
	cp.ID = "nueva"
	s.data[c.CompanyID] = append(s.data[c.CompanyID], cp)
	return &cp, nil
}

func (s *countingSource) Update(_ context.Context, c *entity.Category) (*entity.Category, error) {
	s.writes++
	cp := *c
	return &cp, nil
}

func (s *countingSource) Delete(_ context.Context, _, _ string) error {
	s.writes++
	return s.failing
}

func newStore(src *countingSource) *cache.CategoryStore {
	return cache.NewCategoryStore(src, src, 8, time.Minute, zerolog.Nop())
}

func seeded() *countingSource {
	return &countingSource{data: map[string][]entity.Category{
		"c1": {
			{ID: "a", CompanyID: "c1", Name: "A", Extra: map[string]json.RawMessage{"color": json.RawMessage(`"rojo"`)}},
			{ID: "b", CompanyID: "c1", ParentID: "a", Name: "B"},
		},
		"c2": {{ID: "x", CompanyID: "c2", Name: "X"}},
	}}
}

func TestCategoryStore_ListUsaInstantanea(t *testing.T) {
	src := seeded()
	store := newStore(src)
	ctx := context.Background()

	first, err := store.ListByCompany(ctx, "c1")
	require.NoError(t, err)
	second, err := store.ListByCompany(ctx, "c1")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, src.lists)

	_, err = store.ListByCompany(ctx, "c2")
	require.NoError(t, err)
	assert.Equal(t, 2, src.lists, "cada empresa tiene su propia instantánea")
}

func TestCategoryStore_DevuelveCopias(t *testing.T) {
	store := newStore(seeded())
	ctx := context.Background()

	list, err := store.ListByCompany(ctx, "c1")
	require.NoError(t, err)
	list[0].Name = "mutada"
	list[0].Extra["color"] = json.RawMessage(`"verde"`)

	again, err := store.ListByCompany(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "A", again[0].Name)
	assert.JSONEq(t, `"rojo"`, string(again[0].Extra["color"]))

	again[1].Name = "otra"
	third, err := store.ListByCompany(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "B", third[1].Name)
}

func TestCategoryStore_GetByID(t *testing.T) {
	src := seeded()
	store := newStore(src)
	ctx := context.Background()

	c, err := store.GetByID(ctx, "c1", "b")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, 1, src.gets, "sin instantánea consulta la fuente")

	_, err = store.ListByCompany(ctx, "c1")
	require.NoError(t, err)

	c, err = store.GetByID(ctx, "c1", "a")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "A", c.Name)

	missing, err := store.GetByID(ctx, "c1", "zz")
	require.NoError(t, err)
	assert.Nil(t, missing)
	assert.Equal(t, 1, src.gets)
}

func TestCategoryStore_EscriturasInvalidan(t *testing.T) {
	src := seeded()
	store := newStore(src)
	ctx := context.Background()

	_, err := store.ListByCompany(ctx, "c1")
	require.NoError(t, err)

	_, err = store.Create(ctx, &entity.Category{CompanyID: "c1", Name: "N"})
	require.NoError(t, err)

	list, err := store.ListByCompany(ctx, "c1")
	require.NoError(t, err)
	assert.Len(t, list, 3)
	assert.Equal(t, 2, src.lists)

	_, err = store.Update(ctx, &entity.Category{ID: "a", CompanyID: "c1", Name: "A2"})
	require.NoError(t, err)
	require.NoError(t, store.Delete(ctx, "c1", "b"))

	_, err = store.ListByCompany(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 3, src.lists)
}

func TestCategoryStore_ErroresNoSeCachean(t *testing.T) {
	src := seeded()
	store := newStore(src)
	ctx := context.Background()
	boom := errors.New("caído")

	src.failing = boom
	_, err := store.ListByCompany(ctx, "c1")
	assert.ErrorIs(t, err, boom)

	src.failing = nil
	list, err := store.ListByCompany(ctx, "c1")
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Equal(t, 2, src.lists)
}

func TestCategoryStore_EscrituraFallidaNoInvalida(t *testing.T) {
	src := seeded()
	store := newStore(src)
	ctx := context.Background()

	_, err := store.ListByCompany(ctx, "c1")
	require.NoError(t, err)

	src.failing = errors.New("rechazado")
	assert.Error(t, store.Delete(ctx, "c1", "a"))
	src.failing = nil

	_, err = store.ListByCompany(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 1, src.lists)
}

// slowSource retiene la primera lectura después de copiar los datos, como una
// consulta que ya respondió pero aún no volvió al caller.
type slowSource struct {
	*countingSource
	once    sync.Once
	started chan struct{}
	release chan struct{}
}

func (s *slowSource) ListByCompany(ctx context.Context, companyID string) ([]entity.Category, error) {
	list, err := s.countingSource.ListByCompany(ctx, companyID)
	first := false
	s.once.Do(func() { first = true })
	if first {
		close(s.started)
		<-s.release
	}
	return list, err
}

func TestCategoryStore_LecturaEnCursoNoPisaInvalidacion(t *testing.T) {
	src := &slowSource{countingSource: seeded(), started: make(chan struct{}), release: make(chan struct{})}
	store := cache.NewCategoryStore(src, src, 8, time.Minute, zerolog.Nop())
	ctx := context.Background()

	type result struct {
		list []entity.Category
		err  error
	}
	done := make(chan result, 1)
	go func() {
		list, err := store.ListByCompany(ctx, "c1")
		done <- result{list, err}
	}()

	<-src.started
	created, err := store.Create(ctx, &entity.Category{CompanyID: "c1", Name: "N"})
	require.NoError(t, err)
	close(src.release)

	stale := <-done
	require.NoError(t, stale.err)
	assert.Len(t, stale.list, 2, "la lectura en curso devuelve lo que leyó")

	list, err := store.ListByCompany(ctx, "c1")
	require.NoError(t, err)
	assert.Len(t, list, 3)

	got, err := store.GetByID(ctx, "c1", created.ID)
	require.NoError(t, err)
	require.NotNil(t, got, "la categoría recién creada debe ser visible")
	assert.Equal(t, "N", got.Name)
}

func TestCategoryStore_InvalidateManual(t *testing.T) {
	src := seeded()
	store := newStore(src)
	ctx := context.Background()

	_, err := store.ListByCompany(ctx, "c1")
	require.NoError(t, err)
	store.Invalidate("c1")
	_, err = store.ListByCompany(ctx, "c1")
	require.NoError(t, err)
	_, err = store.ListByCompany(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 2, src.lists, "tras invalidar se recarga una sola vez")
}
