// Package category arma la jerarquía de categorías a partir de la lista plana que entrega el almacén.
//
// Hay dos proyecciones sobre el mismo agrupamiento padre → hijos:
//   - BuildTree conserva el registro completo en cada nodo (vista de administración);
//   - BuildOptionsTree emite solo {title, value, children?} para el selector jerárquico.
//
// Ambas son funciones puras: no modifican la entrada y devuelven estructuras nuevas en cada llamada.
package category

// Record es el subconjunto mínimo que el árbol necesita de un registro.
// RecordParentID vacío indica raíz.
type Record interface {
	RecordID() string
	RecordParentID() string
	RecordName() string
}

// Node nodo del árbol completo. Children nunca es nil.
type Node[T Record] struct {
	Record   T
	Children []*Node[T]
}

// OptionNode nodo del selector jerárquico. Children se omite en las hojas.
type OptionNode struct {
	Title    string       `json:"title"`
	Value    string       `json:"value"`
	Children []OptionNode `json:"children,omitempty"`
}

// BuildTree convierte la lista plana en un bosque anidado.
// Un registro cuyo padre no existe en la lista (o apunta a sí mismo) queda en la raíz.
// Los hermanos conservan el orden de la entrada. No detecta ciclos: los registros de una
// cadena cíclica quedan enlazados entre sí y no son alcanzables desde las raíces.
func BuildTree[T Record](records []T) []*Node[T] {
	lookup := make(map[string]*Node[T], len(records))
	for _, r := range records {
		lookup[r.RecordID()] = &Node[T]{Record: r, Children: []*Node[T]{}}
	}

	roots := make([]*Node[T], 0, len(records))
	for _, r := range records {
		node := lookup[r.RecordID()]
		parentID := r.RecordParentID()
		if parent, ok := lookup[parentID]; ok && parentID != "" && parentID != r.RecordID() {
			parent.Children = append(parent.Children, node)
			continue
		}
		roots = append(roots, node)
	}
	return roots
}

// BuildOptionsTree arma el árbol del selector. Si excludeID no está vacío se descarta solo el
// registro con ese ID antes de enlazar: sus hijos pierden el padre y pasan a la raíz.
func BuildOptionsTree[T Record](records []T, excludeID string) []OptionNode {
	filtered := records
	if excludeID != "" {
		filtered = make([]T, 0, len(records))
		for _, r := range records {
			if r.RecordID() != excludeID {
				filtered = append(filtered, r)
			}
		}
	}
	return toOptions(BuildTree(filtered))
}

func toOptions[T Record](nodes []*Node[T]) []OptionNode {
	out := make([]OptionNode, 0, len(nodes))
	for _, n := range nodes {
		opt := OptionNode{Title: n.Record.RecordName(), Value: n.Record.RecordID()}
		if len(n.Children) > 0 {
			opt.Children = toOptions(n.Children)
		}
		out = append(out, opt)
	}
	return out
}

// CountNodes cuenta los nodos del bosque en todos los niveles.
func CountNodes[T Record](forest []*Node[T]) int {
	total := 0
	for _, n := range forest {
		total += 1 + CountNodes(n.Children)
	}
	return total
}

// CountOptions cuenta los nodos del selector en todos los niveles.
func CountOptions(forest []OptionNode) int {
	total := 0
	for _, n := range forest {
		total += 1 + CountOptions(n.Children)
	}
	return total
}
