package category

// IndexByID indexa los registros por ID. Si hay IDs repetidos gana el último.
func IndexByID[T Record](records []T) map[string]T {
	idx := make(map[string]T, len(records))
	for _, r := range records {
		idx[r.RecordID()] = r
	}
	return idx
}

// HasChildren informa si algún registro declara a id como padre.
func HasChildren[T Record](records []T, id string) bool {
	for _, r := range records {
		if r.RecordParentID() == id && r.RecordID() != id {
			return true
		}
	}
	return false
}

// WouldCycle informa si asignar newParentID como padre de id dejaría a id bajo sí misma,
// es decir, si newParentID es id o uno de sus descendientes. Recorre la cadena de ancestros
// de newParentID; una cadena cíclica preexistente corta el recorrido sin bucle infinito.
func WouldCycle[T Record](records []T, id, newParentID string) bool {
	if newParentID == "" {
		return false
	}
	idx := IndexByID(records)
	seen := make(map[string]struct{}, len(records))
	for cur := newParentID; cur != ""; {
		if cur == id {
			return true
		}
		if _, ok := seen[cur]; ok {
			return false
		}
		seen[cur] = struct{}{}
		r, ok := idx[cur]
		if !ok {
			return false
		}
		cur = r.RecordParentID()
	}
	return false
}
