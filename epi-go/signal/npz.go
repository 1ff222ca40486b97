package signal

import (
	"log"
	"reflect"
	"sort"
	"strings"

	"github.com/epiclass/epiatlas/epi-golib/errors"
	"github.com/sbinet/npyio/npz"
)

var dtypes = map[string]reflect.Type{
	"f4": reflect.TypeOf(float32(0)),
	"f8": reflect.TypeOf(float64(0)),
	"i1": reflect.TypeOf(int8(0)),
	"i2": reflect.TypeOf(int16(0)),
	"i4": reflect.TypeOf(int32(0)),
	"i8": reflect.TypeOf(int64(0)),
	"u1": reflect.TypeOf(uint8(0)),
	"u2": reflect.TypeOf(uint16(0)),
	"u4": reflect.TypeOf(uint32(0)),
	"u8": reflect.TypeOf(uint64(0)),
}

// container indexes the "<group>/<chrom>" arrays of an npz archive.
type container struct {
	r      *npz.Reader
	groups map[string]map[string]string
}

func openContainer(path string) (*container, error) {
	r, err := npz.Open(path)
	if err != nil {
		return nil, err
	}
	c := &container{r: r, groups: make(map[string]map[string]string)}
	for _, key := range r.Keys() {
		name := strings.TrimSuffix(key, ".npy")
		i := strings.LastIndex(name, "/")
		if i < 0 {
			continue
		}
		group, chrom := name[:i], name[i+1:]
		if c.groups[group] == nil {
			c.groups[group] = make(map[string]string)
		}
		c.groups[group][chrom] = key
	}
	return c, nil
}

func (c *container) Close() error {
	return c.r.Close()
}

// group returns the arrays of the md5 group, or of the only group in the
// file when the md5 group is missing.
func (c *container) group(md5 string) (map[string]string, error) {
	if g, ok := c.groups[md5]; ok {
		return g, nil
	}
	if len(c.groups) != 1 {
		return nil, errors.Partial("no group %s among %d groups", md5, len(c.groups))
	}
	for name, g := range c.groups {
		log.Printf("cannot read %s directly, header is different, using header %s", md5, name)
		return g, nil
	}
	return nil, nil
}

func (c *container) read(key string) ([]float32, error) {
	hdr := c.r.Header(key)
	if hdr == nil {
		return nil, errors.Partial("no array %s", key)
	}
	descr := hdr.Descr.Type
	if len(descr) > 2 {
		descr = descr[len(descr)-2:]
	}
	typ, ok := dtypes[descr]
	if !ok {
		return nil, errors.Partial("unsupported dtype %s for %s", hdr.Descr.Type, key)
	}

	ptr := reflect.New(reflect.SliceOf(typ))
	if err := c.r.Read(key, ptr.Interface()); err != nil {
		return nil, err
	}
	return toFloat32(ptr.Elem().Interface()), nil
}

func toFloat32(v interface{}) []float32 {
	switch v := v.(type) {
	case []float32:
		return v
	case []float64:
		out := make([]float32, len(v))
		for i, x := range v {
			out[i] = float32(x)
		}
		return out
	}

	rv := reflect.ValueOf(v)
	out := make([]float32, rv.Len())
	for i := range out {
		e := rv.Index(i)
		switch e.Kind() {
		case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			out[i] = float32(e.Int())
		default:
			out[i] = float32(e.Uint())
		}
	}
	return out
}

// readSignal concatenates the chromosome arrays of md5 in the order of chroms.
func readSignal(path, md5 string, chroms []string) ([]float32, error) {
	c, err := openContainer(path)
	if err != nil {
		return nil, errors.Partial("cannot open %s: %v", path, err)
	}
	defer c.Close()

	g, err := c.group(md5)
	if err != nil {
		return nil, errors.Wrapf(err, "error reading %s", path)
	}

	var signal []float32
	for _, chrom := range chroms {
		key, ok := g[chrom]
		if !ok {
			return nil, errors.Partial("%s: missing chromosome %s", path, chrom)
		}
		values, err := c.read(key)
		if err != nil {
			return nil, errors.Wrapf(err, "error reading %s", path)
		}
		signal = append(signal, values...)
	}
	return signal, nil
}

// WriteFile writes per-chromosome arrays as the md5 group of an npz archive.
func WriteFile(path, md5 string, chroms map[string][]float32) error {
	w, err := npz.Create(path)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(chroms))
	for name := range chroms {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := w.Write(md5+"/"+name, chroms[name]); err != nil {
			w.Close()
			return errors.Wrapf(err, "error writing %s/%s", md5, name)
		}
	}
	return w.Close()
}
