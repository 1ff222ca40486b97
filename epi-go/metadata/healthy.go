package metadata

import (
	"bufio"
	"io"
	"sort"
	"strings"

	"github.com/epiclass/epiatlas/epi-golib/errors"
	"github.com/epiclass/epiatlas/epi-golib/fileutil"
)

const (
	diseaseKey      = "disease"
	healthStatusKey = "donor_health_status"
	// HealthyKey is the category derived by CreateHealthyCategory.
	HealthyKey = "healthy"
)

// unknownHealth marks a pair whose health status cannot be decided.
const unknownHealth = "?"

// HealthPair is a (disease, donor_health_status) pair.
type HealthPair struct {
	Disease      string
	HealthStatus string
}

// HealthyTable maps (disease, donor_health_status) pairs to a healthy status.
type HealthyTable map[HealthPair]string

// ReadHealthyTable reads a tab separated disease/donor_health_status/healthy
// file whose first line is a header.
func ReadHealthyTable(path string) (HealthyTable, error) {
	r, err := fileutil.NewCachedReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	table, err := ParseHealthyTable(r)
	return table, errors.WrapfOrNil(err, "error reading %s", path)
}

// ParseHealthyTable is ReadHealthyTable over an open stream.
func ParseHealthyTable(r io.Reader) (HealthyTable, error) {
	table := make(HealthyTable)
	scanner := bufio.NewScanner(r)
	var lineno int
	for scanner.Scan() {
		lineno++
		if lineno == 1 {
			continue
		}
		line := scanner.Text()
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != 3 {
			return nil, errors.Errorf("line %d: expected 3 columns, got %d", lineno, len(fields))
		}
		table[HealthPair{Disease: fields[0], HealthStatus: fields[1]}] = fields[2]
	}
	return table, scanner.Err()
}

func healthPairOf(r *Record) HealthPair {
	pair := HealthPair{Disease: emptyValue, HealthStatus: emptyValue}
	if v, ok := r.Get(diseaseKey); ok {
		pair.Disease = v
	}
	if v, ok := r.Get(healthStatusKey); ok {
		pair.HealthStatus = v
	}
	return pair
}

// CreateHealthyCategory derives the healthy category from disease and
// donor_health_status. Records whose pair is missing from the table, or maps
// to an unknown status, are left unmodified and can be dropped with
// RemoveMissingCategory.
func (c *Catalog) CreateHealthyCategory(table HealthyTable) {
	for _, r := range c.records {
		status, ok := table[healthPairOf(r)]
		if !ok || status == unknownHealth {
			continue
		}
		r.Set(HealthyKey, status)
	}
}

// HealthPairs returns the distinct (disease, donor_health_status) pairs of the catalog, sorted.
func (c *Catalog) HealthPairs() []HealthPair {
	seen := make(map[HealthPair]bool)
	var pairs []HealthPair
	for _, r := range c.records {
		p := healthPairOf(r)
		if !seen[p] {
			seen[p] = true
			pairs = append(pairs, p)
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Disease != pairs[j].Disease {
			return pairs[i].Disease < pairs[j].Disease
		}
		return pairs[i].HealthStatus < pairs[j].HealthStatus
	})
	return pairs
}
