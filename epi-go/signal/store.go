package signal

import (
	"sort"

	"github.com/epiclass/epiatlas/epi-golib/errors"
)

// Source provides signal vectors by md5.
type Source interface {
	// IDs returns the md5s the source can load, ascending.
	IDs() []string
	// Load returns the vectors of ids; a missing id is an error.
	Load(ids []string) (Store, error)
}

// Store maps md5s to signal vectors of equal length. Vectors are shared and
// must not be modified in place.
type Store map[string][]float32

// IDs returns the md5s of the store, ascending.
func (s Store) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Load returns the subset of the store for ids.
func (s Store) Load(ids []string) (Store, error) {
	out := make(Store, len(ids))
	for _, id := range ids {
		v, ok := s[id]
		if !ok {
			return nil, errors.Integrity("no signal for %s", id)
		}
		out[id] = v
	}
	return out, nil
}

// VectorLength returns the length of the vectors of the store, or 0 when empty.
func (s Store) VectorLength() int {
	for _, v := range s {
		return len(v)
	}
	return 0
}
