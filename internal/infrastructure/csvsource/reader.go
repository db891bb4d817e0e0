// Package csvsource lee exportaciones CSV de categorías de sistemas heredados.
//
// Formato: primera fila con encabezados; id, name y parent_id son obligatorios,
// code y status se reconocen y cualquier otra columna viaja como campo de paso.
package csvsource

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/jhoicas/erp-categorias/internal/domain/entity"
)

// ErrMissingColumn falta una columna obligatoria en el encabezado.
var ErrMissingColumn = errors.New("csv: columna obligatoria ausente")

var requiredColumns = []string{"id", "name", "parent_id"}

// Read decodifica el CSV en categorías, en el orden del archivo.
// charset: "" o "utf-8", "iso-8859-1" / "latin1", "windows-1252" / "cp1252".
func Read(r io.Reader, charset string) ([]entity.Category, error) {
	enc, err := lookupCharset(charset)
	if err != nil {
		return nil, err
	}
	cr := csv.NewReader(transform.NewReader(r, enc.NewDecoder()))
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return []entity.Category{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("csv: leer encabezado: %w", err)
	}
	columns := normalizeHeader(header)
	index := make(map[string]int, len(columns))
	for i, name := range columns {
		index[name] = i
	}
	for _, name := range requiredColumns {
		if _, ok := index[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}

	out := make([]entity.Category, 0)
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv: %w", err)
		}
		line, _ := cr.FieldPos(0)
		c, err := toCategory(columns, record)
		if err != nil {
			return nil, fmt.Errorf("csv: línea %d: %w", line, err)
		}
		out = append(out, c)
	}
	return out, nil
}

func lookupCharset(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return unicode.UTF8BOM, nil
	case "iso-8859-1", "iso8859-1", "latin1":
		return charmap.ISO8859_1, nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252, nil
	default:
		return nil, fmt.Errorf("csv: charset no soportado %q", name)
	}
}

func normalizeHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(h))
		switch h {
		case "parentid", "parent":
			h = "parent_id"
		}
		out[i] = h
	}
	return out
}

func toCategory(columns, record []string) (entity.Category, error) {
	var c entity.Category
	for i, value := range record {
		if i >= len(columns) {
			break
		}
		value = strings.TrimSpace(value)
		switch columns[i] {
		case "id":
			c.ID = value
		case "name":
			c.Name = value
		case "parent_id":
			c.ParentID = value
		case "code":
			c.Code = value
		case "status":
			c.Status = value
		case "":
		default:
			raw, err := json.Marshal(value)
			if err != nil {
				return entity.Category{}, err
			}
			if c.Extra == nil {
				c.Extra = make(map[string]json.RawMessage)
			}
			c.Extra[columns[i]] = raw
		}
	}
	if c.ID == "" {
		return entity.Category{}, errors.New("id vacío")
	}
	return c, nil
}
