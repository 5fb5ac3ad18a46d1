package reconcile

import "github.com/portfolio-content-api/internal/models"

// Append adds rec to the end of list. A record whose id is already present
// replaces the existing entry instead, so the list never holds duplicates.
func Append[T models.Record](list []T, rec T) []T {
	if indexOf(list, rec.GetID()) >= 0 {
		return Replace(list, rec)
	}
	out := make([]T, 0, len(list)+1)
	out = append(out, list...)
	return append(out, rec)
}

// Replace swaps the entry with rec's id. The list is returned unchanged
// when no entry matches.
func Replace[T models.Record](list []T, rec T) []T {
	out := make([]T, len(list))
	copy(out, list)
	if i := indexOf(out, rec.GetID()); i >= 0 {
		out[i] = rec
	}
	return out
}

// Upsert replaces rec in place or appends it
func Upsert[T models.Record](list []T, rec T) []T {
	return Append(list, rec)
}

// Remove drops every entry with id
func Remove[T models.Record](list []T, id string) []T {
	out := make([]T, 0, len(list))
	for _, r := range list {
		if r.GetID() != id {
			out = append(out, r)
		}
	}
	return out
}

// Dedupe keeps the first occurrence of each id
func Dedupe[T models.Record](list []T) []T {
	seen := make(map[string]struct{}, len(list))
	out := make([]T, 0, len(list))
	for _, r := range list {
		if _, ok := seen[r.GetID()]; ok {
			continue
		}
		seen[r.GetID()] = struct{}{}
		out = append(out, r)
	}
	return out
}

// Contains reports whether list holds an entry with id
func Contains[T models.Record](list []T, id string) bool {
	return indexOf(list, id) >= 0
}

func indexOf[T models.Record](list []T, id string) int {
	for i, r := range list {
		if r.GetID() == id {
			return i
		}
	}
	return -1
}
