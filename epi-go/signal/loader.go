package signal

import (
	"log"
	"sort"
	"sync"
	"time"

	humanize "github.com/dustin/go-humanize"
	"github.com/epiclass/epiatlas/epi-go/genome"
	"github.com/epiclass/epiatlas/epi-golib/awsutil"
	"github.com/epiclass/epiatlas/epi-golib/errors"
	"github.com/epiclass/epiatlas/epi-golib/fileutil"
	"github.com/epiclass/epiatlas/epi-golib/workerpool"
)

// Loader reads signal containers into vectors.
type Loader struct {
	// Chroms are the chromosome arrays concatenated, in sorted order.
	Chroms []string
	// Normalize applies ZScore to every vector.
	Normalize bool
	// Resolution and Genome, when both set, fix the expected vector length.
	Resolution int
	Genome     []genome.Chrom
}

// LoadOptions restrict and tune a Load.
type LoadOptions struct {
	// IDs restricts loading to these md5s; nil loads the whole list.
	IDs []string
	// Strict aborts on the first unreadable file instead of skipping it.
	Strict bool
	// Workers is the number of files read concurrently, at least 1.
	Workers int
}

// NewLoader returns a loader for the chromosomes of a chromosome size file.
func NewLoader(chroms []genome.Chrom, resolution int, normalize bool) Loader {
	return Loader{
		Chroms:     genome.Names(genome.SortByName(chroms)),
		Normalize:  normalize,
		Resolution: resolution,
		Genome:     genome.SortByName(chroms),
	}
}

// Load reads the files of a signal list.
func (l Loader) Load(listPath string, opts LoadOptions) (Store, error) {
	files, err := ReadList(listPath)
	if err != nil {
		return nil, err
	}
	files = AdaptToEnvironment(files)

	store, skipped, err := l.LoadFiles(files, opts)
	if err != nil {
		return nil, err
	}
	if skipped != nil {
		log.Printf("skipped %d unreadable signal files:\n%s", skipped.Len(), skipped.Summary(10))
	}
	return store, nil
}

// LoadFiles reads md5 -> path files. In non-strict mode unreadable files are
// skipped and returned as errors alongside the store.
func (l Loader) LoadFiles(files map[string]string, opts LoadOptions) (Store, errors.Errors, error) {
	files = selectFiles(files, opts.IDs)

	chroms := append([]string(nil), l.Chroms...)
	sort.Strings(chroms)

	expected := -1
	if l.Resolution > 0 && len(l.Genome) > 0 {
		n, err := genome.ExpectedVectorLength(l.Genome, l.Resolution)
		if err != nil {
			return nil, nil, err
		}
		expected = n
	}

	var (
		m       sync.Mutex
		store   = make(Store, len(files))
		skipped errors.Errors
	)

	start := time.Now()
	pool := workerpool.New(opts.Workers)
	var jobs []workerpool.Job
	for md5, path := range files {
		md5, path := md5, path
		jobs = append(jobs, func() error {
			v, err := l.readOne(path, md5, chroms)
			if err == nil && expected >= 0 && len(v) != expected {
				pool.Stop()
				return errors.Config("%s: signal length %d not coherent with resolution %d (expected %d)",
					md5, len(v), l.Resolution, expected)
			}
			if err != nil {
				log.Printf("error occurred with %s: %s. %v", md5, path, err)
				if opts.Strict {
					pool.Stop()
					return err
				}
				m.Lock()
				skipped = errors.Append(skipped, err)
				m.Unlock()
				return nil
			}

			m.Lock()
			store[md5] = v
			m.Unlock()
			return nil
		})
	}
	pool.Add(jobs)
	if err := pool.Wait(); err != nil {
		return nil, nil, firstError(err)
	}

	log.Printf("loaded %s signals (%s) in %v", humanize.Comma(int64(len(store))),
		humanize.Bytes(uint64(len(store)*store.VectorLength()*4)), time.Since(start))
	return store, skipped, nil
}

func (l Loader) readOne(path, md5 string, chroms []string) ([]float32, error) {
	local := path
	if awsutil.IsS3URI(path) {
		var err error
		local, err = fileutil.DownloadedFile(path)
		if err != nil {
			return nil, errors.Partial("cannot download %s: %v", path, err)
		}
	}

	v, err := readSignal(local, md5, chroms)
	if err != nil {
		return nil, err
	}
	if l.Normalize {
		v = ZScore(v)
	}
	return v, nil
}

func selectFiles(files map[string]string, ids []string) map[string]string {
	if ids == nil {
		return files
	}
	selected := make(map[string]string, len(ids))
	var absent []string
	for _, id := range ids {
		if p, ok := files[id]; ok {
			selected[id] = p
		} else {
			absent = append(absent, id)
		}
	}
	if len(absent) > 0 {
		sort.Strings(absent)
		log.Printf("%d given md5s are absent of signal list: %v", len(absent), absent)
	}
	return selected
}

func firstError(err error) error {
	if errs, ok := err.(errors.Errors); ok {
		for _, e := range errs.Slice() {
			if errors.Is(e, errors.KindConfig) {
				return e
			}
		}
		return errs.Slice()[0]
	}
	return err
}
