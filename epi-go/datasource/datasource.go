// Package datasource bundles the input files of an EpiAtlas run.
package datasource

import (
	"sort"

	"github.com/epiclass/epiatlas/epi-go/genome"
	"github.com/epiclass/epiatlas/epi-go/metadata"
	"github.com/epiclass/epiatlas/epi-go/signal"
	"github.com/epiclass/epiatlas/epi-golib/awsutil"
	"github.com/epiclass/epiatlas/epi-golib/errors"
	"github.com/epiclass/epiatlas/epi-golib/fileutil"
)

// DataSource holds the paths of the signal list, the chromosome size file and
// the metadata document. Paths may be local or s3 URIs.
type DataSource struct {
	SignalList string
	ChromSizes string
	Metadata   string
}

// New returns a DataSource after checking that local inputs exist.
func New(signalList, chromSizes, meta string) (*DataSource, error) {
	ds := &DataSource{SignalList: signalList, ChromSizes: chromSizes, Metadata: meta}
	for _, p := range []string{signalList, chromSizes, meta} {
		if p == "" {
			return nil, errors.Config("missing datasource path")
		}
		if awsutil.IsS3URI(p) {
			continue
		}
		if !fileutil.Exists(p) {
			return nil, errors.Config("%s does not exist", p)
		}
	}
	return ds, nil
}

// Files returns the md5 -> path signal list, relocated to the cluster
// scratch directory when available.
func (d *DataSource) Files() (map[string]string, error) {
	files, err := signal.ReadList(d.SignalList)
	if err != nil {
		return nil, err
	}
	return signal.AdaptToEnvironment(files), nil
}

// Resolution infers the bin size from the name of the listed file with the
// smallest md5.
func (d *DataSource) Resolution() (int, error) {
	files, err := signal.ReadList(d.SignalList)
	if err != nil {
		return 0, err
	}
	if len(files) == 0 {
		return 0, errors.Config("signal list %s is empty", d.SignalList)
	}
	md5s := make([]string, 0, len(files))
	for md5 := range files {
		md5s = append(md5s, md5)
	}
	sort.Strings(md5s)
	return signal.ResolutionFromName(files[md5s[0]])
}

// Chroms reads the chromosome sizes, sorted by name.
func (d *DataSource) Chroms() ([]genome.Chrom, error) {
	chroms, err := genome.ReadChromSizes(d.ChromSizes)
	if err != nil {
		return nil, err
	}
	return genome.SortByName(chroms), nil
}

// Catalog loads the metadata document.
func (d *DataSource) Catalog() (*metadata.Catalog, error) {
	return metadata.Load(d.Metadata)
}

// Loader returns a signal loader for the chromosomes and resolution of the
// data source.
func (d *DataSource) Loader(normalize bool) (signal.Loader, error) {
	chroms, err := d.Chroms()
	if err != nil {
		return signal.Loader{}, err
	}
	res, err := d.Resolution()
	if err != nil {
		return signal.Loader{}, err
	}
	if _, err := genome.ExpectedVectorLength(chroms, res); err != nil {
		return signal.Loader{}, err
	}
	return signal.NewLoader(chroms, res, normalize), nil
}

// Source returns a cached signal source over the listed files.
func (d *DataSource) Source(normalize bool, cacheSize, workers int) (*signal.FileSource, error) {
	loader, err := d.Loader(normalize)
	if err != nil {
		return nil, err
	}
	files, err := d.Files()
	if err != nil {
		return nil, err
	}
	return signal.NewFileSourceFromFiles(loader, files, cacheSize, workers)
}
