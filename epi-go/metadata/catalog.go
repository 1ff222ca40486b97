// Package metadata holds the per-file metadata catalog keyed by md5sum and the
// filtering and class-balance operations run on it before building datasets.
package metadata

import (
	"encoding/json"
	"io"
	"log"
	"sort"

	"github.com/epiclass/epiatlas/epi-golib/epilog"
	"github.com/epiclass/epiatlas/epi-golib/errors"
	"github.com/epiclass/epiatlas/epi-golib/serialization"
)

type document struct {
	Datasets []*Record `json:"datasets"`
}

// Catalog maps md5sums to their record. It is mutated in place by the filter
// operations; use Copy to hand out an independent snapshot.
type Catalog struct {
	records map[string]*Record
}

// New builds a catalog from records. A later record replaces an earlier one
// with the same md5.
func New(records ...*Record) *Catalog {
	c := &Catalog{records: make(map[string]*Record, len(records))}
	for _, r := range records {
		c.records[r.MD5] = r
	}
	return c
}

// Load reads a metadata document ({"datasets": [...]}) from a local or s3
// path. A .gz suffix is decompressed.
func Load(path string) (*Catalog, error) {
	var doc document
	if err := serialization.Decode(path, &doc); err != nil {
		return nil, errors.Wrapf(err, "error loading metadata")
	}
	return New(doc.Datasets...), nil
}

// Decode reads a JSON metadata document from r.
func Decode(r io.Reader) (*Catalog, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrapf(err, "error decoding metadata")
	}
	return New(doc.Datasets...), nil
}

// Save writes the catalog as a metadata document, records sorted by md5.
func (c *Catalog) Save(path string) error {
	return serialization.Encode(path, document{Datasets: c.Records()})
}

// Len returns the number of records.
func (c *Catalog) Len() int {
	return len(c.records)
}

// Get returns the record of md5.
func (c *Catalog) Get(md5 string) (*Record, bool) {
	r, ok := c.records[md5]
	return r, ok
}

// Has returns true if the catalog has a record for md5.
func (c *Catalog) Has(md5 string) bool {
	_, ok := c.records[md5]
	return ok
}

// Add inserts or replaces a record.
func (c *Catalog) Add(r *Record) {
	c.records[r.MD5] = r
}

// Delete removes the record of md5, if any.
func (c *Catalog) Delete(md5 string) {
	delete(c.records, md5)
}

// MD5s returns the md5s in ascending order.
func (c *Catalog) MD5s() []string {
	md5s := make([]string, 0, len(c.records))
	for md5 := range c.records {
		md5s = append(md5s, md5)
	}
	sort.Strings(md5s)
	return md5s
}

// Records returns the records sorted by md5.
func (c *Catalog) Records() []*Record {
	records := make([]*Record, 0, len(c.records))
	for _, md5 := range c.MD5s() {
		records = append(records, c.records[md5])
	}
	return records
}

// Copy returns a deep copy of the catalog.
func (c *Catalog) Copy() *Catalog {
	out := &Catalog{records: make(map[string]*Record, len(c.records))}
	for md5, r := range c.records {
		out.records[md5] = r.Copy()
	}
	return out
}

// Subset returns a deep copy restricted to the given md5s. Unknown md5s are ignored.
func (c *Catalog) Subset(md5s []string) *Catalog {
	out := &Catalog{records: make(map[string]*Record, len(md5s))}
	for _, md5 := range md5s {
		if r, ok := c.records[md5]; ok {
			out.records[md5] = r.Copy()
		}
	}
	return out
}

// Filter keeps the records for which keep returns true.
func (c *Catalog) Filter(keep func(*Record) bool) {
	for md5, r := range c.records {
		if !keep(r) {
			delete(c.records, md5)
		}
	}
}

// RemoveMissingCategory removes the records without a value for category.
func (c *Catalog) RemoveMissingCategory(category string) {
	c.Filter(func(r *Record) bool {
		return r.Has(category)
	})
}

// GroupByCategory returns the md5s of every label of category, md5s ascending.
// Records without the category are left out.
func (c *Catalog) GroupByCategory(category string) map[string][]string {
	groups := make(map[string][]string)
	for _, md5 := range c.MD5s() {
		label, ok := c.records[md5].Get(category)
		if !ok {
			continue
		}
		groups[label] = append(groups[label], md5)
	}
	return groups
}

// LabelCounter counts the records of every label of category.
func (c *Catalog) LabelCounter(category string) map[string]int {
	counts := make(map[string]int)
	for _, r := range c.records {
		if label, ok := r.Get(category); ok {
			counts[label]++
		}
	}
	return counts
}

// LabelCount is the number of records with a label.
type LabelCount struct {
	Label string
	Count int
}

// MostCommon returns the label counts of category, most common first; ties
// are ordered by label.
func (c *Catalog) MostCommon(category string) []LabelCount {
	var counts []LabelCount
	for label, n := range c.LabelCounter(category) {
		counts = append(counts, LabelCount{Label: label, Count: n})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Label < counts[j].Label
	})
	return counts
}

// UniqueClasses returns the labels of category in ascending order.
func (c *Catalog) UniqueClasses(category string) []string {
	var labels []string
	for label := range c.LabelCounter(category) {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// RemoveSmallClasses removes the records of every label of category with
// fewer than minSize records. It returns the number of removed labels and the
// number of labels before filtering.
func (c *Catalog) RemoveSmallClasses(minSize int, category string) (removed, total int) {
	groups := c.GroupByCategory(category)
	for _, lc := range c.MostCommon(category) {
		if lc.Count >= minSize {
			continue
		}
		removed++
		for _, md5 := range groups[lc.Label] {
			delete(c.records, md5)
		}
	}
	total = len(groups)
	log.Printf("%d/%d labels left after filtering.", total-removed, total)
	return removed, total
}

// SelectCategorySubset keeps only the records whose category value is one of labels.
func (c *Catalog) SelectCategorySubset(category string, labels []string) {
	set := toSet(labels)
	c.Filter(func(r *Record) bool {
		v, ok := r.Get(category)
		return ok && set[v]
	})
}

// RemoveCategorySubset removes the records whose category value is one of labels.
func (c *Catalog) RemoveCategorySubset(category string, labels []string) {
	set := toSet(labels)
	c.Filter(func(r *Record) bool {
		v, ok := r.Get(category)
		return !ok || !set[v]
	})
}

// DisplayLabels logs the number of records of every label of category.
func (c *Catalog) DisplayLabels(category string, logger epilog.Interface) {
	logger.Printf("Examples")
	var total int
	for _, lc := range c.MostCommon(category) {
		logger.Printf("%s: %d", lc.Label, lc.Count)
		total += lc.Count
	}
	logger.Printf("For a total of %d examples", total)
}

// MergeMoleculeClasses merges equivalent labels of the molecule category.
func (c *Catalog) MergeMoleculeClasses() {
	for _, r := range c.records {
		switch r.Value("molecule") {
		case "rna":
			r.Set("molecule", "total_rna")
		case "polyadenylated_mrna":
			r.Set("molecule", "polya_rna")
		}
	}
}

func toSet(labels []string) map[string]bool {
	set := make(map[string]bool, len(labels))
	for _, l := range labels {
		set[l] = true
	}
	return set
}
