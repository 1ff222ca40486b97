// Package signal loads per-sample binned genomic signal from .npz containers
// into float32 vectors keyed by md5sum.
package signal

import (
	"bufio"
	"io"
	"log"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/epiclass/epiatlas/epi-golib/envutil"
	"github.com/epiclass/epiatlas/epi-golib/errors"
	"github.com/epiclass/epiatlas/epi-golib/fileutil"
)

// ExtractMD5 returns the md5sum encoded in a signal file name, the part of
// the base name before the first underscore.
func ExtractMD5(p string) string {
	base := path.Base(filepath.ToSlash(p))
	if i := strings.Index(base, "_"); i >= 0 {
		return base[:i]
	}
	return base
}

// ReadList reads a newline separated list of signal file paths and returns
// md5 -> path. Blank lines are ignored; a later path replaces an earlier one
// with the same md5.
func ReadList(listPath string) (map[string]string, error) {
	r, err := fileutil.NewCachedReader(listPath)
	if err != nil {
		return nil, errors.Wrapf(err, "error opening signal list")
	}
	defer r.Close()

	files, err := ParseList(r)
	return files, errors.WrapfOrNil(err, "error reading %s", listPath)
}

// ParseList is ReadList over an open stream.
func ParseList(r io.Reader) (map[string]string, error) {
	files := make(map[string]string)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		files[ExtractMD5(line)] = line
	}
	return files, scanner.Err()
}

// AdaptToEnvironment points local paths to the cluster scratch copy
// ($SLURM_TMPDIR/$HDF5_PARENT) when that directory exists.
func AdaptToEnvironment(files map[string]string) map[string]string {
	tmp := os.Getenv("SLURM_TMPDIR")
	if tmp == "" {
		return files
	}
	scratch := filepath.Join(tmp, envutil.GetenvDefault("HDF5_PARENT", "hdf5s"))
	if !fileutil.Exists(scratch) {
		return files
	}

	log.Printf("using files in %s", scratch)
	out := make(map[string]string, len(files))
	for md5, p := range files {
		out[md5] = fileutil.Relocate(p, scratch, 1)
	}
	return out
}

var resolutionRe = regexp.MustCompile(`^(\d+)(bp|kb|mb)?$`)

// ResolutionFromName parses the bin size of a "<md5>_<resolution>_..." signal
// file name, e.g. 100kb, 1mb or 1000.
func ResolutionFromName(p string) (int, error) {
	base := path.Base(filepath.ToSlash(p))
	parts := strings.Split(strings.TrimSuffix(base, path.Ext(base)), "_")
	if len(parts) < 2 {
		return 0, errors.Config("no resolution in file name %s", base)
	}
	m := resolutionRe.FindStringSubmatch(strings.ToLower(parts[1]))
	if m == nil {
		return 0, errors.Config("invalid resolution %q in file name %s", parts[1], base)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, errors.Config("invalid resolution %q in file name %s", parts[1], base)
	}
	switch m[2] {
	case "kb":
		n *= 1000
	case "mb":
		n *= 1000000
	}
	return n, nil
}
