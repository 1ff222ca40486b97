// Package fileutil opens pipeline inputs that may live on local disk, on s3
// or behind http, and creates local outputs.
package fileutil

import (
	"io"
	"io/ioutil"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/epiclass/epiatlas/epi-golib/awsutil"
	"github.com/epiclass/epiatlas/epi-golib/errors"
)

func isHTTP(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}

func openHTTP(url string) (io.ReadCloser, error) {
	resp, err := http.Get(url)
	if err != nil {
		return nil, errors.Wrapf(err, "error fetching %s", url)
	}
	if resp.StatusCode != http.StatusOK {
		io.Copy(ioutil.Discard, resp.Body)
		resp.Body.Close()
		return nil, errors.Errorf("error fetching %s: %s", url, resp.Status)
	}
	return resp.Body, nil
}

// NewCachedReader opens path for reading. s3 objects go through the local s3
// cache, http urls are streamed and anything else is a local file.
func NewCachedReader(path string) (io.ReadCloser, error) {
	switch {
	case awsutil.IsS3URI(path):
		return awsutil.NewCachedS3Reader(path)
	case isHTTP(path):
		return openHTTP(path)
	default:
		return os.Open(path)
	}
}

// DownloadedFile returns a local path holding the contents of path. Local
// files must exist and are returned as is, s3 objects are fetched into the
// cache. Formats that need random access (npz) are read this way.
func DownloadedFile(path string) (string, error) {
	if !awsutil.IsS3URI(path) {
		if _, err := os.Stat(path); err != nil {
			return "", err
		}
		return path, nil
	}

	obj, err := awsutil.ParseURI(path)
	if err != nil {
		return "", err
	}
	r, err := awsutil.NewCachedS3Reader(path)
	if err != nil {
		return "", err
	}
	_, err = io.Copy(ioutil.Discard, r)
	err = errors.Combine(err, r.Close())
	if err != nil {
		return "", errors.Wrapf(err, "error downloading %s", path)
	}
	return obj.CachePath(awsutil.CacheRoot()), nil
}

// Relocate moves a local path under newParent, keeping the last keep components
// of the original path. Remote paths are returned unchanged.
//   Relocate("/project/hdf5/100kb/a.npz", "/scratch", 2) == "/scratch/100kb/a.npz"
func Relocate(path, newParent string, keep int) string {
	if newParent == "" || strings.Contains(path, "://") {
		return path
	}
	parts := strings.Split(filepath.Clean(path), string(filepath.Separator))
	if keep > len(parts) {
		keep = len(parts)
	}
	tail := parts[len(parts)-keep:]
	return filepath.Join(append([]string{newParent}, tail...)...)
}

// NewWriter creates the local file at path, creating missing parent dirs.
func NewWriter(path string) (*os.File, error) {
	if strings.Contains(path, "://") {
		return nil, errors.Config("cannot write to %s: outputs must be local", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	return os.Create(path)
}

// ReadFile reads all of path, see NewCachedReader.
func ReadFile(path string) ([]byte, error) {
	r, err := NewCachedReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return ioutil.ReadAll(r)
}

// Exists returns true if the local path exists.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
