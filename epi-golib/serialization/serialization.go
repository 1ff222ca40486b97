// Package serialization reads and writes single documents in the format given
// by their file extension: .json, .gob, .yml or .yaml, optionally followed by
// .gz. Compressed .bz2 documents can be read but not written.
package serialization

import (
	"compress/bzip2"
	"compress/gzip"
	"encoding/gob"
	"encoding/json"
	"io"
	"path/filepath"
	"strings"

	"github.com/epiclass/epiatlas/epi-golib/errors"
	"github.com/epiclass/epiatlas/epi-golib/fileutil"
	"gopkg.in/yaml.v2"
)

type codec int

const (
	jsonCodec codec = iota
	gobCodec
	yamlCodec
)

type format struct {
	codec       codec
	compression string
}

func formatOf(path string) (format, error) {
	var f format
	name := path
	for _, ext := range []string{".gz", ".bz2"} {
		if strings.HasSuffix(name, ext) {
			f.compression = ext
			name = strings.TrimSuffix(name, ext)
			break
		}
	}
	switch filepath.Ext(name) {
	case ".json":
		f.codec = jsonCodec
	case ".gob":
		f.codec = gobCodec
	case ".yml", ".yaml":
		f.codec = yamlCodec
	default:
		return f, errors.Config("unknown document format for %s", path)
	}
	return f, nil
}

// Decode reads the document at path, local or on s3, into v.
//
//   var doc metadataDocument
//   err := serialization.Decode("s3://epiatlas/metadata.json.gz", &doc)
func Decode(path string, v interface{}) error {
	f, err := formatOf(path)
	if err != nil {
		return err
	}
	r, err := fileutil.NewCachedReader(path)
	if err != nil {
		return errors.Wrapf(err, "error opening %s", path)
	}
	defer r.Close()
	return errors.WrapfOrNil(f.decode(r, v), "error decoding %s", path)
}

func (f format) decode(r io.Reader, v interface{}) error {
	switch f.compression {
	case ".gz":
		zr, err := gzip.NewReader(r)
		if err != nil {
			return err
		}
		defer zr.Close()
		r = zr
	case ".bz2":
		r = bzip2.NewReader(r)
	}

	switch f.codec {
	case jsonCodec:
		return json.NewDecoder(r).Decode(v)
	case gobCodec:
		return gob.NewDecoder(r).Decode(v)
	default:
		return yaml.NewDecoder(r).Decode(v)
	}
}

// Encode writes v to the local file at path, creating parent directories.
func Encode(path string, v interface{}) error {
	f, err := formatOf(path)
	if err != nil {
		return err
	}
	if f.compression == ".bz2" {
		return errors.Config("cannot write bzip2 documents: %s", path)
	}

	out, err := fileutil.NewWriter(path)
	if err != nil {
		return err
	}
	var w io.Writer = out
	var zw *gzip.Writer
	if f.compression == ".gz" {
		zw = gzip.NewWriter(out)
		w = zw
	}

	err = f.encode(w, v)
	if zw != nil {
		err = errors.Combine(err, zw.Close())
	}
	err = errors.Combine(err, out.Close())
	return errors.WrapfOrNil(err, "error encoding %s", path)
}

func (f format) encode(w io.Writer, v interface{}) error {
	switch f.codec {
	case jsonCodec:
		return json.NewEncoder(w).Encode(v)
	case gobCodec:
		return gob.NewEncoder(w).Encode(v)
	default:
		ye := yaml.NewEncoder(w)
		return errors.Combine(ye.Encode(v), ye.Close())
	}
}
