package awsutil

import (
	"bytes"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/epiclass/epiatlas/epi-golib/epilog"
	"github.com/epiclass/epiatlas/epi-golib/errors"
)

const etagSuffix = ".etag"

// cachingReader streams an object and writes it to a temporary file, which
// becomes the cached copy once the whole object was read. The temporary file
// is removed on read errors or if the reader is closed early.
type cachingReader struct {
	body   io.ReadCloser
	tmp    *os.File
	dest   string
	etag   []byte
	logger epilog.Interface
}

func newCachingReader(body io.ReadCloser, dest, tmpDir string, etag []byte, logger epilog.Interface) (*cachingReader, error) {
	if err := os.MkdirAll(tmpDir, os.ModePerm); err != nil {
		return nil, err
	}
	tmp, err := ioutil.TempFile(tmpDir, filepath.Base(dest))
	if err != nil {
		return nil, errors.Wrapf(err, "unable to create temporary file")
	}
	return &cachingReader{body: body, tmp: tmp, dest: dest, etag: etag, logger: logger}, nil
}

func (r *cachingReader) Read(p []byte) (int, error) {
	n, err := r.body.Read(p)
	if n > 0 && r.tmp != nil {
		if _, werr := r.tmp.Write(p[:n]); werr != nil {
			r.logger.Printf("not caching %s: %v", r.dest, werr)
			r.discard()
		}
	}
	switch {
	case err == io.EOF:
		if cerr := r.commit(); cerr != nil {
			r.logger.Printf("not caching %s: %v", r.dest, cerr)
		}
	case err != nil:
		r.discard()
	}
	return n, err
}

func (r *cachingReader) Close() error {
	r.discard()
	return r.body.Close()
}

func (r *cachingReader) commit() error {
	if r.tmp == nil {
		return nil
	}
	tmp := r.tmp
	r.tmp = nil

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.MkdirAll(filepath.Dir(r.dest), os.ModePerm); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), r.dest); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if r.etag == nil {
		os.Remove(r.dest + etagSuffix)
		return nil
	}
	return ioutil.WriteFile(r.dest+etagSuffix, r.etag, 0644)
}

func (r *cachingReader) discard() {
	if r.tmp == nil {
		return
	}
	r.tmp.Close()
	if err := os.Remove(r.tmp.Name()); err != nil {
		r.logger.Printf("error removing %s: %v", r.tmp.Name(), err)
	}
	r.tmp = nil
}

// openCached opens the cached copy at path. With a non-nil etag, the copy
// must have been stored with the same etag.
func openCached(path string, etag []byte) (*os.File, error) {
	if etag != nil {
		stored, err := ioutil.ReadFile(path + etagSuffix)
		if err != nil {
			return nil, errors.Wrapf(err, "no stored etag")
		}
		if !bytes.Equal(stored, etag) {
			return nil, errors.New("cached copy is out of date")
		}
	}
	return os.Open(path)
}

// CachedReaderOptions configure NewCachedS3ReaderWithOptions.
type CachedReaderOptions struct {
	// CacheRoot defaults to CacheRoot().
	CacheRoot string
	// Logger defaults to epilog.Basic.
	Logger epilog.Interface
}

// NewCachedS3Reader reads the object at uri from the cache when the cached
// copy has the current etag, or streams it from s3 into the cache.
func NewCachedS3Reader(uri string) (io.ReadCloser, error) {
	return NewCachedS3ReaderWithOptions(CachedReaderOptions{}, uri)
}

// NewCachedS3ReaderWithOptions is NewCachedS3Reader with explicit options.
// When the etag cannot be fetched any cached copy is used.
func NewCachedS3ReaderWithOptions(opts CachedReaderOptions, uri string) (io.ReadCloser, error) {
	if opts.CacheRoot == "" {
		opts.CacheRoot = cacheroot
	}
	if opts.Logger == nil {
		opts.Logger = epilog.Basic
	}
	o, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}
	dest := o.CachePath(opts.CacheRoot)

	etag, err := o.etag()
	if err != nil {
		opts.Logger.Printf("no etag for %s, trying the cache: %v", uri, err)
		etag = nil
	}
	if f, err := openCached(dest, etag); err == nil {
		return f, nil
	}

	body, err := o.open()
	if err != nil {
		return nil, err
	}
	r, err := newCachingReader(body, dest, filepath.Join(opts.CacheRoot, "tmp"), etag, opts.Logger)
	if err != nil {
		body.Close()
		return nil, err
	}
	return r, nil
}
