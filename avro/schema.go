package avro

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	hamba "github.com/hamba/avro/v2"
)

// Type is the tag of an Avro schema node.
type Type int

const (
	Null Type = iota
	Boolean
	Int
	Long
	Float
	Double
	String
	Bytes
	Fixed
	Enum
	Array
	Map
	Record
	Union
)

var typeNames = [...]string{
	Null:    "null",
	Boolean: "boolean",
	Int:     "int",
	Long:    "long",
	Float:   "float",
	Double:  "double",
	String:  "string",
	Bytes:   "bytes",
	Fixed:   "fixed",
	Enum:    "enum",
	Array:   "array",
	Map:     "map",
	Record:  "record",
	Union:   "union",
}

// String returns the Avro name of the type, e.g. "record".
func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("type(%d)", int(t))
}

// IsNumeric reports whether values of the type are JSON numbers.
func (t Type) IsNumeric() bool {
	return t == Int || t == Long || t == Float || t == Double
}

func parseType(name string) (Type, bool) {
	for i, n := range typeNames {
		if n == name {
			return Type(i), true
		}
	}
	return 0, false
}

// Schema is a walkable Avro type descriptor. Named types that are referenced
// more than once share the same *Schema, so record schemas may be recursive.
type Schema struct {
	Type      Type
	Name      string
	Namespace string

	Fields      []*Field
	Symbols     []string
	EnumDefault *string
	Size        int
	Items       *Schema
	Values      *Schema
	Types       []*Schema

	text string
}

// Field is a record field. Default holds the JSON default with json.Number
// numbers; HasDefault distinguishes a null default from none.
type Field struct {
	Name       string
	Schema     *Schema
	Default    interface{}
	HasDefault bool
}

// FullName returns the namespace-qualified name for named types and the type
// name for all other types. Union branches in goavro native form are keyed by it.
func (s *Schema) FullName() string {
	switch s.Type {
	case Record, Enum, Fixed:
		if s.Namespace != "" {
			return s.Namespace + "." + s.Name
		}
		return s.Name
	default:
		return s.Type.String()
	}
}

// SimpleName returns the unqualified name for named types and the type name
// for all other types.
func (s *Schema) SimpleName() string {
	switch s.Type {
	case Record, Enum, Fixed:
		return s.Name
	default:
		return s.Type.String()
	}
}

// Field returns the record field with the given name.
func (s *Schema) Field(name string) (*Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// HasSymbol reports whether an enum schema declares symbol.
func (s *Schema) HasSymbol(symbol string) bool {
	for _, sym := range s.Symbols {
		if sym == symbol {
			return true
		}
	}
	return false
}

// HasNull reports whether a union schema has a null branch.
func (s *Schema) HasNull() bool {
	for _, t := range s.Types {
		if t.Type == Null {
			return true
		}
	}
	return false
}

// Text returns the JSON text the schema was parsed from, empty for
// schemas nested inside another schema.
func (s *Schema) Text() string {
	return s.text
}

// ParseSchema parses an Avro schema from its JSON representation. Name
// resolution and validation are done by hamba/avro; the result is converted
// into the walkable form used by MapToSchema. Every parse resolves names on
// its own, so registry schemas never see each other's types.
func ParseSchema(text string) (*Schema, error) {
	parsed, err := hamba.ParseWithCache(text, "", &hamba.SchemaCache{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchema, err)
	}
	c := &converter{named: make(map[string]*Schema)}
	s, err := c.convert(parsed)
	if err != nil {
		return nil, err
	}
	s.text = compact(text)
	return s, nil
}

func compact(text string) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(text)); err != nil {
		return text
	}
	return buf.String()
}

// converter shares one *Schema per named type, which keeps recursive records
// finite.
type converter struct {
	named map[string]*Schema
}

func (c *converter) convert(s hamba.Schema) (*Schema, error) {
	switch t := s.(type) {
	case *hamba.RefSchema:
		return c.convert(t.Schema())
	case *hamba.PrimitiveSchema:
		typ, ok := parseType(string(t.Type()))
		if !ok {
			return nil, fmt.Errorf("%w: unsupported type %q", ErrInvalidSchema, t.Type())
		}
		return &Schema{Type: typ}, nil
	case *hamba.RecordSchema:
		out, seen := c.namedSchema(Record, t)
		if seen {
			return out, nil
		}
		for _, f := range t.Fields() {
			fieldSchema, err := c.convert(f.Type())
			if err != nil {
				return nil, err
			}
			field := &Field{Name: f.Name(), Schema: fieldSchema, HasDefault: f.HasDefault()}
			if field.HasDefault {
				field.Default = jsonDefault(f.Default())
			}
			out.Fields = append(out.Fields, field)
		}
		return out, nil
	case *hamba.EnumSchema:
		out, seen := c.namedSchema(Enum, t)
		if !seen {
			out.Symbols = t.Symbols()
			if def := t.Default(); def != "" {
				out.EnumDefault = &def
			}
		}
		return out, nil
	case *hamba.FixedSchema:
		out, seen := c.namedSchema(Fixed, t)
		if !seen {
			out.Size = t.Size()
		}
		return out, nil
	case *hamba.ArraySchema:
		items, err := c.convert(t.Items())
		if err != nil {
			return nil, err
		}
		return &Schema{Type: Array, Items: items}, nil
	case *hamba.MapSchema:
		values, err := c.convert(t.Values())
		if err != nil {
			return nil, err
		}
		return &Schema{Type: Map, Values: values}, nil
	case *hamba.UnionSchema:
		out := &Schema{Type: Union, Types: make([]*Schema, 0, len(t.Types()))}
		for _, branch := range t.Types() {
			b, err := c.convert(branch)
			if err != nil {
				return nil, err
			}
			out.Types = append(out.Types, b)
		}
		return out, nil
	case *hamba.NullSchema:
		return &Schema{Type: Null}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported schema %s", ErrInvalidSchema, s.Type())
	}
}

func (c *converter) namedSchema(t Type, n hamba.NamedSchema) (*Schema, bool) {
	if s, ok := c.named[n.FullName()]; ok {
		return s, true
	}
	s := &Schema{Type: t, Name: n.Name(), Namespace: n.Namespace()}
	c.named[n.FullName()] = s
	return s, false
}

// jsonDefault turns a field default as typed by hamba/avro back into the JSON
// shape MapToSchema reads: numbers as json.Number, bytes as one character per
// byte.
func jsonDefault(v interface{}) interface{} {
	switch d := v.(type) {
	case int:
		return json.Number(strconv.Itoa(d))
	case int32:
		return json.Number(strconv.FormatInt(int64(d), 10))
	case int64:
		return json.Number(strconv.FormatInt(d, 10))
	case float32:
		return json.Number(strconv.FormatFloat(float64(d), 'g', -1, 32))
	case float64:
		return json.Number(strconv.FormatFloat(d, 'g', -1, 64))
	case []byte:
		var sb strings.Builder
		for _, b := range d {
			sb.WriteRune(rune(b))
		}
		return sb.String()
	case []interface{}:
		out := make([]interface{}, len(d))
		for i, e := range d {
			out[i] = jsonDefault(e)
		}
		return out
	case map[string]interface{}:
		out := make(map[string]interface{}, len(d))
		for k, e := range d {
			out[k] = jsonDefault(e)
		}
		return out
	default:
		return v
	}
}
