package pdf

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/erp-categorias/internal/domain/category"
	"github.com/jhoicas/erp-categorias/internal/domain/entity"
)

func sampleForest() []*category.Node[entity.Category] {
	return category.BuildTree([]entity.Category{
		{ID: "a", Name: "Bebidas", Code: "BEB", Status: entity.CategoryStatusActive},
		{ID: "b", Name: "Gaseosas", ParentID: "a"},
		{ID: "c", Name: "Light", ParentID: "b"},
		{ID: "d", Name: "Aseo"},
		{ID: "e", Name: "Jugos", ParentID: "a"},
	})
}

func TestFlatten_Preorden(t *testing.T) {
	lines := flatten(sampleForest())
	require.Len(t, lines, 5)

	var got []string
	var depths []int
	for _, l := range lines {
		got = append(got, l.category.ID)
		depths = append(depths, l.depth)
	}
	assert.Equal(t, []string{"a", "b", "c", "e", "d"}, got)
	assert.Equal(t, []int{0, 1, 2, 1, 0}, depths)
	assert.Equal(t, 2, lines[0].children)
	assert.Equal(t, 0, lines[2].children)
}

func TestRenderCategoryTree(t *testing.T) {
	doc, err := NewCategoryTreePDF().RenderCategoryTree(context.Background(), "Árbol de categorías", sampleForest())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc, []byte("%PDF")))
}

func TestRenderCategoryTree_Vacio(t *testing.T) {
	doc, err := NewCategoryTreePDF().RenderCategoryTree(context.Background(), "Vacío", nil)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc, []byte("%PDF")))
}
