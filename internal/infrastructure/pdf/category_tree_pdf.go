// Package pdf exporta el árbol de categorías de una empresa a PDF.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título                     │  Fecha + N° categorías │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Categoría (sangría por nivel) | Código | Estado | Hijos │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: total de raíces                                     │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strconv"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/erp-categorias/internal/application/usecase"
	"github.com/jhoicas/erp-categorias/internal/domain/category"
	"github.com/jhoicas/erp-categorias/internal/domain/entity"
)

var _ usecase.CategoryTreePDFRenderer = (*CategoryTreePDF)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// indentPerLevel sangría en mm por nivel de profundidad; tope para que el nombre siga visible.
const (
	indentPerLevel = 4.0
	maxIndent      = 40.0
)

// CategoryTreePDF implementa usecase.CategoryTreePDFRenderer con Maroto v2.
type CategoryTreePDF struct {
	now func() time.Time
}

// NewCategoryTreePDF construye el renderizador.
func NewCategoryTreePDF() *CategoryTreePDF { return &CategoryTreePDF{now: time.Now} }

// RenderCategoryTree dibuja el bosque en recorrido en profundidad, una fila por categoría.
func (g *CategoryTreePDF) RenderCategoryTree(
	_ context.Context,
	title string,
	forest []*category.Node[entity.Category],
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(title, true).
		Build()

	m := maroto.New(cfg)

	lines := flatten(forest)
	m.AddRows(headerRow(title, g.now(), len(lines)))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(tableHeaderRow())
	for _, l := range lines {
		m.AddRows(categoryRow(l))
	}
	if len(lines) == 0 {
		m.AddRows(row.New(8).Add(col.New(12).Add(
			text.New("Sin categorías registradas.", props.Text{Size: 9, Color: colorGray, Top: 2, Align: align.Center}),
		)))
	}
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(row.New(6).Add(col.New(12).Add(
		text.New(fmt.Sprintf("Categorías raíz: %d", len(forest)), props.Text{Size: 8, Color: colorGray, Top: 1}),
	)))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// treeLine una fila del listado: la categoría y su profundidad (0 = raíz).
type treeLine struct {
	depth    int
	category entity.Category
	children int
}

// flatten recorre el bosque en preorden conservando el orden de hermanos.
func flatten(forest []*category.Node[entity.Category]) []treeLine {
	out := make([]treeLine, 0, category.CountNodes(forest))
	var walk func(nodes []*category.Node[entity.Category], depth int)
	walk = func(nodes []*category.Node[entity.Category], depth int) {
		for _, n := range nodes {
			out = append(out, treeLine{depth: depth, category: n.Record, children: len(n.Children)})
			walk(n.Children, depth+1)
		}
	}
	walk(forest, 0)
	return out
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(title string, at time.Time, total int) core.Row {
	return row.New(16).Add(
		col.New(8).Add(
			text.New(title, props.Text{Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 2}),
		),
		col.New(4).Add(
			text.New("Generado: "+at.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 2, Color: colorGray,
			}),
			text.New("Categorías: "+strconv.Itoa(total), props.Text{
				Style: fontstyle.Bold, Size: 9, Align: align.Right, Top: 8,
			}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorWhite, Top: 2,
		})).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
	}
	return row.New(8).Add(
		h("Categoría", 6, align.Left),
		h("Código", 2, align.Left),
		h("Estado", 2, align.Center),
		h("Hijos", 2, align.Center),
	)
}

func categoryRow(l treeLine) core.Row {
	indent := min(float64(l.depth)*indentPerLevel, maxIndent)
	name := l.category.Name
	if l.depth > 0 {
		name = "- " + name
	}
	return row.New(6).Add(
		col.New(6).Add(text.New(name, props.Text{
			Size: 8, Top: 1, Left: 1 + indent, Style: styleFor(l.depth),
		})),
		col.New(2).Add(text.New(nonEmpty(l.category.Code, "-"), props.Text{Size: 8, Top: 1, Color: colorGray})),
		col.New(2).Add(text.New(nonEmpty(l.category.Status, "-"), props.Text{Size: 8, Top: 1, Align: align.Center})),
		col.New(2).Add(text.New(strconv.Itoa(l.children), props.Text{Size: 8, Top: 1, Align: align.Center})),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func styleFor(depth int) fontstyle.Type {
	if depth == 0 {
		return fontstyle.Bold
	}
	return fontstyle.Normal
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
