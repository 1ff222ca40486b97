package signal

import (
	"sort"

	"github.com/epiclass/epiatlas/epi-golib/errors"
	lru "github.com/hashicorp/golang-lru"
)

// DefaultCacheSize is the number of vectors kept by a FileSource.
const DefaultCacheSize = 20000

// FileSource loads vectors from a signal list on demand and keeps the most
// recently loaded ones in memory.
type FileSource struct {
	loader  Loader
	files   map[string]string
	workers int
	cache   *lru.Cache
}

// NewFileSource reads the signal list at listPath.
func NewFileSource(loader Loader, listPath string, cacheSize, workers int) (*FileSource, error) {
	files, err := ReadList(listPath)
	if err != nil {
		return nil, err
	}
	return NewFileSourceFromFiles(loader, AdaptToEnvironment(files), cacheSize, workers)
}

// NewFileSourceFromFiles builds a source over md5 -> path files.
func NewFileSourceFromFiles(loader Loader, files map[string]string, cacheSize, workers int) (*FileSource, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, err
	}
	return &FileSource{
		loader:  loader,
		files:   files,
		workers: workers,
		cache:   cache,
	}, nil
}

// IDs implements Source.
func (s *FileSource) IDs() []string {
	ids := make([]string, 0, len(s.files))
	for id := range s.files {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Load implements Source. Every id must be in the list and readable.
func (s *FileSource) Load(ids []string) (Store, error) {
	out := make(Store, len(ids))
	var missing []string
	for _, id := range ids {
		if v, ok := s.cache.Get(id); ok {
			out[id] = v.([]float32)
			continue
		}
		if _, ok := s.files[id]; !ok {
			return nil, errors.Integrity("no signal file for %s", id)
		}
		missing = append(missing, id)
	}
	if len(missing) == 0 {
		return out, nil
	}

	loaded, _, err := s.loader.LoadFiles(s.files, LoadOptions{
		IDs:     missing,
		Strict:  true,
		Workers: s.workers,
	})
	if err != nil {
		return nil, err
	}
	for id, v := range loaded {
		s.cache.Add(id, v)
		out[id] = v
	}
	return out, nil
}
