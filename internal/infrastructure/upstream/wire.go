package upstream

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jhoicas/erp-categorias/internal/domain/entity"
)

// ── Formato de intercambio con el almacén de categorías ───────────────────────
//
//	{ "id": "...", "name": "...", "parentId": "..." | null, "code": "...", "status": "...",
//	  "createdAt": "RFC3339", "updatedAt": "RFC3339", ...campos de paso }

// DecodeCategories decodifica una lista de categorías: un arreglo JSON o un objeto con "items" o "data".
func DecodeCategories(r io.Reader) ([]entity.Category, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("leer categorías: %w", err)
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return []entity.Category{}, nil
	}

	var items []json.RawMessage
	switch raw[0] {
	case '[':
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("decodificar lista de categorías: %w", err)
		}
	case '{':
		var envelope struct {
			Items []json.RawMessage `json:"items"`
			Data  []json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(raw, &envelope); err != nil {
			return nil, fmt.Errorf("decodificar lista de categorías: %w", err)
		}
		items = envelope.Items
		if items == nil {
			items = envelope.Data
		}
	default:
		return nil, fmt.Errorf("decodificar lista de categorías: se esperaba un arreglo JSON")
	}

	out := make([]entity.Category, 0, len(items))
	for i, item := range items {
		c, err := decodeCategory(item)
		if err != nil {
			return nil, fmt.Errorf("categoría #%d: %w", i, err)
		}
		out = append(out, c)
	}
	return out, nil
}

func decodeCategory(raw json.RawMessage) (entity.Category, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return entity.Category{}, fmt.Errorf("decodificar categoría: %w", err)
	}

	var c entity.Category
	for key, value := range fields {
		var err error
		switch key {
		case "id":
			c.ID, err = decodeID(value)
		case "parentId":
			c.ParentID, err = decodeID(value)
		case "name":
			err = json.Unmarshal(value, &c.Name)
		case "code":
			c.Code, err = decodeOptionalString(value)
		case "status":
			c.Status, err = decodeOptionalString(value)
		case "createdAt", "updatedAt":
			var ts time.Time
			if json.Unmarshal(value, &ts) != nil {
				c.Extra = withExtra(c.Extra, key, value)
				continue
			}
			if key == "createdAt" {
				c.CreatedAt = ts
			} else {
				c.UpdatedAt = ts
			}
		case "companyId", "children":
			// companyId lo fija el token; children nunca forma parte del registro almacenado.
		default:
			c.Extra = withExtra(c.Extra, key, value)
		}
		if err != nil {
			return entity.Category{}, fmt.Errorf("campo %s: %w", key, err)
		}
	}
	if c.ID == "" {
		return entity.Category{}, fmt.Errorf("categoría sin id")
	}
	return c, nil
}

// decodeID acepta string, número o null.
func decodeID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return strings.TrimSpace(s), nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("identificador inválido: %s", string(raw))
	}
	return n.String(), nil
}

func decodeOptionalString(raw json.RawMessage) (string, error) {
	var s *string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", err
	}
	if s == nil {
		return "", nil
	}
	return *s, nil
}

func withExtra(extra map[string]json.RawMessage, key string, value json.RawMessage) map[string]json.RawMessage {
	if extra == nil {
		extra = make(map[string]json.RawMessage)
	}
	extra[key] = value
	return extra
}

// encodeCategory arma el cuerpo de POST/PUT. Los campos de paso se reenvían tal cual.
func encodeCategory(c *entity.Category) ([]byte, error) {
	payload := make(map[string]any, len(c.Extra)+4)
	for k, v := range c.Extra {
		payload[k] = v
	}
	payload["name"] = c.Name
	if c.ParentID != "" {
		payload["parentId"] = c.ParentID
	} else {
		payload["parentId"] = nil
	}
	if c.Code != "" {
		payload["code"] = c.Code
	}
	if c.Status != "" {
		payload["status"] = c.Status
	}
	return json.Marshal(payload)
}
