package metadata

import (
	"encoding/json"
	"strconv"

	"github.com/epiclass/epiatlas/epi-golib/errors"
)

// JSON names of the categories every record carries.
const (
	MD5Key       = "md5sum"
	TrackTypeKey = "track_type"
	UUIDKey      = "uuid"
)

// Placeholder used when a category needed to derive another one is missing.
const emptyValue = "--empty--"

// Record is the metadata of one signal file.
type Record struct {
	MD5       string
	TrackType string
	// UUID identifies the physical sample; tracks of the same sample share it.
	UUID       string
	Categories map[string]string
}

// Get returns the value of category, including the core fields under their
// JSON names.
func (r *Record) Get(category string) (string, bool) {
	switch category {
	case MD5Key:
		return r.MD5, r.MD5 != ""
	case TrackTypeKey:
		return r.TrackType, r.TrackType != ""
	case UUIDKey:
		return r.UUID, r.UUID != ""
	}
	v, ok := r.Categories[category]
	return v, ok
}

// Value returns the value of category, or the empty string.
func (r *Record) Value(category string) string {
	v, _ := r.Get(category)
	return v
}

// Has returns true if the record has a value for category.
func (r *Record) Has(category string) bool {
	_, ok := r.Get(category)
	return ok
}

// Set sets the value of category.
func (r *Record) Set(category, value string) {
	switch category {
	case MD5Key:
		r.MD5 = value
	case TrackTypeKey:
		r.TrackType = value
	case UUIDKey:
		r.UUID = value
	default:
		if r.Categories == nil {
			r.Categories = make(map[string]string)
		}
		r.Categories[category] = value
	}
}

// Copy returns a deep copy of the record.
func (r *Record) Copy() *Record {
	out := *r
	out.Categories = make(map[string]string, len(r.Categories))
	for k, v := range r.Categories {
		out.Categories[k] = v
	}
	return &out
}

// MarshalJSON flattens the record into a single JSON object.
func (r *Record) MarshalJSON() ([]byte, error) {
	flat := make(map[string]string, len(r.Categories)+3)
	for k, v := range r.Categories {
		flat[k] = v
	}
	flat[MD5Key] = r.MD5
	if r.TrackType != "" {
		flat[TrackTypeKey] = r.TrackType
	}
	if r.UUID != "" {
		flat[UUIDKey] = r.UUID
	}
	return json.Marshal(flat)
}

// UnmarshalJSON reads a flat JSON object. Scalars are stringified and null
// values are dropped.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	rec, err := recordFromRaw(raw)
	if err != nil {
		return err
	}
	*r = *rec
	return nil
}

func recordFromRaw(raw map[string]interface{}) (*Record, error) {
	r := &Record{Categories: make(map[string]string, len(raw))}
	for k, v := range raw {
		s, ok, err := stringify(v)
		if err != nil {
			return nil, errors.Wrapf(err, "category %s", k)
		}
		if !ok {
			continue
		}
		r.Set(k, s)
	}
	if r.MD5 == "" {
		return nil, errors.Errorf("dataset without %s", MD5Key)
	}
	return r, nil
}

func stringify(v interface{}) (string, bool, error) {
	switch v := v.(type) {
	case nil:
		return "", false, nil
	case string:
		return v, true, nil
	case bool:
		return strconv.FormatBool(v), true, nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true, nil
	case json.Number:
		return v.String(), true, nil
	default:
		buf, err := json.Marshal(v)
		if err != nil {
			return "", false, err
		}
		return string(buf), true, nil
	}
}
