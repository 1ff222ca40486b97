package predict

import (
	"os"

	"github.com/epiclass/epiatlas/epi-golib/errors"
	"github.com/epiclass/epiatlas/epi-golib/fileutil"
	"github.com/gocarina/gocsv"
)

// Partition names used in fold manifests.
const (
	Training   = "training"
	Validation = "validation"
)

// FoldRow assigns a file to a partition of a split.
type FoldRow struct {
	MD5       string `csv:"md5"`
	Split     int    `csv:"split"`
	Partition string `csv:"partition"`
	Label     string `csv:"label"`
}

// WriteFoldManifest writes rows as CSV to path.
func WriteFoldManifest(path string, rows []*FoldRow) error {
	f, err := fileutil.NewWriter(path)
	if err != nil {
		return errors.Wrapf(err, "error creating fold manifest")
	}
	if err := gocsv.Marshal(&rows, f); err != nil {
		f.Close()
		return errors.Wrapf(err, "error writing %s", path)
	}
	return f.Close()
}

// ReadFoldManifest reads a manifest written by WriteFoldManifest.
func ReadFoldManifest(path string) ([]*FoldRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var rows []*FoldRow
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, errors.Wrapf(err, "error reading %s", path)
	}
	return rows, nil
}
