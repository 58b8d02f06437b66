package pets

import "strings"

// OwnerPatch: nil = no tocar ese campo.
type OwnerPatch struct {
	Name  *string
	Phone *string
	Email *string
}

// MergeOwner aplica el patch campo por campo; lo que no viene conserva el valor anterior.
func MergeOwner(cur Owner, patch OwnerPatch) Owner {
	if patch.Name != nil {
		cur.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Phone != nil {
		cur.Phone = strings.TrimSpace(*patch.Phone)
	}
	if patch.Email != nil {
		cur.Email = strings.TrimSpace(*patch.Email)
	}
	return cur
}
