package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"
)

// TimeLayout is the timestamp format used in serialised objects.
const TimeLayout = "2006-01-02T15:04:05.000000"

// Reserved attribute names. They are managed by the Instance itself.
const (
	FieldID        = "id"
	FieldCreatedAt = "created_at"
	FieldUpdatedAt = "updated_at"
	FieldClass     = "__class__"
)

// Instance is a single domain object.
type Instance struct {
	Class     string
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time

	attrs map[string]any
}

// New creates an instance of class with a fresh UUID and both timestamps set to now.
func New(class string) *Instance {
	now := time.Now().UTC()
	return &Instance{
		Class:     class,
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
		attrs:     make(map[string]any),
	}
}

// Key returns the store key "Class.id".
func (i *Instance) Key() string {
	return Key(i.Class, i.ID)
}

// Key builds a store key from a class name and an id.
func Key(class, id string) string {
	return class + "." + id
}

// IsReserved reports whether name is managed by the Instance and cannot be set.
func IsReserved(name string) bool {
	switch name {
	case FieldID, FieldCreatedAt, FieldUpdatedAt, FieldClass:
		return true
	}
	return false
}

// Set assigns value to the attribute name. Reserved names are ignored and Set
// reports false.
func (i *Instance) Set(name string, value any) bool {
	if name == "" || IsReserved(name) {
		return false
	}
	if i.attrs == nil {
		i.attrs = make(map[string]any)
	}
	i.attrs[name] = value
	return true
}

// Get returns the attribute name. Reserved names resolve to the managed fields.
func (i *Instance) Get(name string) (any, bool) {
	switch name {
	case FieldID:
		return i.ID, true
	case FieldCreatedAt:
		return i.CreatedAt, true
	case FieldUpdatedAt:
		return i.UpdatedAt, true
	case FieldClass:
		return i.Class, true
	}
	v, ok := i.attrs[name]
	return v, ok
}

// Attributes returns a copy of the user attributes.
func (i *Instance) Attributes() map[string]any {
	return maps.Clone(i.attrs)
}

// Touch sets UpdatedAt.
func (i *Instance) Touch(now time.Time) {
	i.UpdatedAt = now.UTC()
}

// Clone returns a copy that shares no attribute map with i.
func (i *Instance) Clone() *Instance {
	c := *i
	c.attrs = maps.Clone(i.attrs)
	if c.attrs == nil {
		c.attrs = make(map[string]any)
	}
	return &c
}

// String renders the instance as "[Class] (id) {attributes}".
func (i *Instance) String() string {
	fields := i.fields()
	return fmt.Sprintf("[%s] (%s) %s", i.Class, i.ID, encodeFields(fields))
}

// ToMap returns the serialisable form of the instance, including "__class__".
func (i *Instance) ToMap() map[string]any {
	m := i.fields()
	m[FieldClass] = i.Class
	return m
}

func (i *Instance) fields() map[string]any {
	m := make(map[string]any, len(i.attrs)+3)
	for k, v := range i.attrs {
		m[k] = keepFloats(v)
	}
	m[FieldID] = i.ID
	m[FieldCreatedAt] = i.CreatedAt.Format(TimeLayout)
	m[FieldUpdatedAt] = i.UpdatedAt.Format(TimeLayout)
	return m
}

func encodeFields(m map[string]any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(m); err != nil {
		// Values that do not encode still get a readable rendering.
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%q: %v", k, m[k]))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
	return strings.TrimRight(buf.String(), "\n")
}

type record struct {
	Class     string         `mapstructure:"__class__"`
	ID        string         `mapstructure:"id"`
	CreatedAt time.Time      `mapstructure:"created_at"`
	UpdatedAt time.Time      `mapstructure:"updated_at"`
	Attrs     map[string]any `mapstructure:",remain"`
}

// FromMap hydrates an instance from its serialised form (see ToMap).
func FromMap(m map[string]any) (*Instance, error) {
	var rec record
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: timeHook,
		Result:     &rec,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	if rec.Class == "" || rec.ID == "" {
		return nil, fmt.Errorf("%w: missing %s or %s", ErrInvalidRecord, FieldClass, FieldID)
	}

	inst := &Instance{
		Class:     rec.Class,
		ID:        rec.ID,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
		attrs:     make(map[string]any, len(rec.Attrs)),
	}
	for k, v := range rec.Attrs {
		inst.attrs[k] = Normalize(v)
	}
	return inst, nil
}

var timeType = reflect.TypeOf(time.Time{})

func timeHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != timeType {
		return data, nil
	}
	return ParseTime(data.(string))
}

// ParseTime accepts TimeLayout and RFC 3339 timestamps.
func ParseTime(s string) (time.Time, error) {
	if t, err := time.Parse(TimeLayout, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bad timestamp %q", ErrInvalidRecord, s)
	}
	return t.UTC(), nil
}

// keepFloats returns v with whole float64 values written as json.Number "N.0",
// so they are not read back as integers. Containers are copied, never modified.
func keepFloats(v any) any {
	switch val := v.(type) {
	case float64:
		if val == math.Trunc(val) && math.Abs(val) < 1e21 {
			return json.Number(strconv.FormatFloat(val, 'f', 1, 64))
		}
		return val
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[k] = keepFloats(e)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for idx, e := range val {
			out[idx] = keepFloats(e)
		}
		return out
	}
	return v
}

// Normalize converts json.Number values (as produced by decoders using UseNumber)
// into int or float64, recursing into maps and slices. Numbers written with a
// fraction or an exponent stay float64.
func Normalize(v any) any {
	switch val := v.(type) {
	case json.Number:
		if !strings.ContainsAny(val.String(), ".eE") {
			if n, err := val.Int64(); err == nil {
				return int(n)
			}
		}
		if f, err := val.Float64(); err == nil {
			return f
		}
		return val.String()
	case map[string]any:
		for k, e := range val {
			val[k] = Normalize(e)
		}
		return val
	case []any:
		for idx, e := range val {
			val[idx] = Normalize(e)
		}
		return val
	}
	return v
}
