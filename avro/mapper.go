package avro

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// MapToSchema converts a JSON value, as decoded by encoding/json with
// UseNumber, into the goavro native representation of schema. def is the JSON
// default of the enclosing record field, or nil when the field has none.
//
// The result is deterministic for a given input: records become
// map[string]interface{} keyed by field name, non-null union values become a
// single-entry map keyed by the branch's full name, bytes and fixed become
// []byte, and numbers take the Go type goavro expects for the schema type.
func MapToSchema(value interface{}, schema *Schema, ctx *ParsingContext, def interface{}) (interface{}, error) {
	if value == nil {
		switch {
		case schema.Type == Null:
			return nil, nil
		case schema.Type == Union:
			return mapUnion(nil, schema, ctx, def)
		case def == nil:
			return nil, ctx.InvalidContent("No value given to field without default")
		default:
			return MapToSchema(def, schema, ctx.Child(schema.Type, "default value"), nil)
		}
	}

	switch schema.Type {
	case Record:
		return mapRecord(value, schema, ctx)
	case Int, Long, Float, Double:
		return mapNumber(value, schema.Type, ctx)
	case Boolean:
		return mapBoolean(value, ctx)
	case Array:
		return mapArray(value, schema.Items, ctx)
	case Null:
		return nil, nil
	case Bytes:
		return mapBytes(value, ctx)
	case Fixed:
		return mapFixed(value, schema, ctx)
	case Enum:
		return mapEnum(value, schema, ctx, def)
	case Map:
		return mapMap(value, schema.Values, ctx)
	case String:
		return mapString(value, ctx)
	case Union:
		return mapUnion(value, schema, ctx, def)
	default:
		return nil, ctx.InvalidContent(fmt.Sprintf("Unsupported schema type %s", schema.Type))
	}
}

// MapRecord maps a JSON object onto a record schema, starting a new context
// chain under ctx.
func MapRecord(value interface{}, schema *Schema, ctx *ParsingContext) (map[string]interface{}, error) {
	if schema.Type != Record {
		return nil, ctx.InvalidContent(fmt.Sprintf("Schema %s is not a record", schema.FullName()))
	}
	out, err := mapRecord(value, schema, ctx)
	if err != nil {
		return nil, err
	}
	return out.(map[string]interface{}), nil
}

func mapRecord(value interface{}, schema *Schema, ctx *ParsingContext) (interface{}, error) {
	obj, ok := value.(map[string]interface{})
	if !ok {
		return nil, ctx.InvalidContent("Cannot map non-object to object")
	}
	out := make(map[string]interface{}, len(schema.Fields))
	for _, field := range schema.Fields {
		fieldCtx := ctx.Child(Record, schema.Name+"."+field.Name)
		node, present := obj[field.Name]
		var (
			v   interface{}
			err error
		)
		switch {
		case present:
			v, err = MapToSchema(node, field.Schema, fieldCtx, field.Default)
		case field.HasDefault:
			v, err = fieldDefault(field, fieldCtx)
		default:
			err = fieldCtx.InvalidContent(fmt.Sprintf("Missing field %s without default", field.Name))
		}
		if err != nil {
			return nil, err
		}
		out[field.Name] = v
	}
	return out, nil
}

// fieldDefault maps the declared default of an absent field. Union defaults
// always refer to the first branch.
func fieldDefault(field *Field, ctx *ParsingContext) (interface{}, error) {
	defCtx := ctx.Child(field.Schema.Type, "default value")
	if field.Schema.Type != Union {
		return MapToSchema(field.Default, field.Schema, defCtx, nil)
	}
	if len(field.Schema.Types) == 0 {
		return nil, ctx.InvalidContent("Cannot map default to empty union")
	}
	first := field.Schema.Types[0]
	v, err := MapToSchema(field.Default, first, defCtx, nil)
	if err != nil {
		return nil, err
	}
	return wrapUnion(first, v), nil
}

func mapNumber(value interface{}, t Type, ctx *ParsingContext) (interface{}, error) {
	switch v := value.(type) {
	case json.Number:
		return numberFromJSON(v, t, ctx)
	case float64:
		return numberFromJSON(json.Number(strconv.FormatFloat(v, 'g', -1, 64)), t, ctx)
	case string:
		return numberFromText(v, t, ctx)
	default:
		return nil, ctx.InvalidContent(fmt.Sprintf("Cannot map non-number %s to number", kindOf(value)))
	}
}

func numberFromJSON(n json.Number, t Type, ctx *ParsingContext) (interface{}, error) {
	switch t {
	case Long, Int:
		i, err := n.Int64()
		if err != nil {
			f, ferr := n.Float64()
			// float64(math.MaxInt64) rounds up to 2^63
			if ferr != nil || math.IsNaN(f) || f < math.MinInt64 || f >= math.MaxInt64 {
				return nil, ctx.InvalidContent(fmt.Sprintf("Number %s out of range for %s", n, t))
			}
			i = int64(f)
		}
		if t == Int {
			if i < math.MinInt32 || i > math.MaxInt32 {
				return nil, ctx.InvalidContent(fmt.Sprintf("Number %s out of range for %s", n, t))
			}
			return int32(i), nil
		}
		return i, nil
	case Float:
		f, err := n.Float64()
		if err != nil || math.Abs(f) > math.MaxFloat32 {
			return nil, ctx.InvalidContent(fmt.Sprintf("Number %s out of range for %s", n, t))
		}
		return float32(f), nil
	case Double:
		f, err := n.Float64()
		if err != nil {
			return nil, ctx.InvalidContent(fmt.Sprintf("Cannot map number %s to %s", n, t))
		}
		return f, nil
	default:
		return nil, ctx.InvalidContent(fmt.Sprintf("Non-number type %s used for numbers", t))
	}
}

func numberFromText(s string, t Type, ctx *ParsingContext) (interface{}, error) {
	var (
		out interface{}
		err error
	)
	switch t {
	case Long:
		out, err = strconv.ParseInt(s, 10, 64)
	case Int:
		var i int64
		i, err = strconv.ParseInt(s, 10, 32)
		out = int32(i)
	case Float:
		var f float64
		f, err = strconv.ParseFloat(s, 32)
		out = float32(f)
	case Double:
		out, err = strconv.ParseFloat(s, 64)
	default:
		return nil, ctx.InvalidContent(fmt.Sprintf("Non-number type %s used for numbers", t))
	}
	if err != nil {
		return nil, ctx.InvalidContent(fmt.Sprintf("Cannot map non-number string %q to %s", s, t))
	}
	return out, nil
}

func mapBoolean(value interface{}, ctx *ParsingContext) (interface{}, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		switch v {
		case "true":
			return true, nil
		case "false":
			return false, nil
		default:
			return nil, ctx.InvalidContent(fmt.Sprintf("Cannot map non-boolean string %s to boolean", v))
		}
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return nil, ctx.InvalidContent(fmt.Sprintf("Cannot map number %s to boolean", v))
		}
		return f != 0, nil
	case float64:
		return v != 0, nil
	default:
		return nil, ctx.InvalidContent("Cannot map non-boolean to boolean")
	}
}

func mapString(value interface{}, ctx *ParsingContext) (interface{}, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	case bool:
		return strconv.FormatBool(v), nil
	default:
		text, _ := json.Marshal(value)
		return nil, ctx.InvalidContent(fmt.Sprintf("Cannot map non-simple types to string: %s", text))
	}
}

// latin1 converts s to one byte per character. Characters above U+00FF have
// no single-byte representation.
func latin1(s string, ctx *ParsingContext) ([]byte, error) {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if r > 0xFF {
			return nil, ctx.InvalidContent(fmt.Sprintf("Character %q cannot be stored as a single byte", r))
		}
		out = append(out, byte(r))
	}
	return out, nil
}

func mapBytes(value interface{}, ctx *ParsingContext) (interface{}, error) {
	s, ok := value.(string)
	if !ok {
		return nil, ctx.InvalidContent("Can only convert strings to byte arrays")
	}
	return latin1(s, ctx)
}

func mapFixed(value interface{}, schema *Schema, ctx *ParsingContext) (interface{}, error) {
	s, ok := value.(string)
	if !ok {
		return nil, ctx.InvalidContent("Can only convert strings to byte arrays")
	}
	b, err := latin1(s, ctx)
	if err != nil {
		return nil, err
	}
	if len(b) != schema.Size {
		return nil, ctx.InvalidContent("Cannot use a different Fixed size")
	}
	return b, nil
}

func mapEnum(value interface{}, schema *Schema, ctx *ParsingContext, def interface{}) (interface{}, error) {
	s, ok := value.(string)
	if !ok {
		return nil, ctx.InvalidContent("Can only convert strings to enum")
	}
	if schema.HasSymbol(s) {
		return s, nil
	}
	if d, ok := def.(string); ok {
		if schema.HasSymbol(d) {
			return d, nil
		}
		return nil, ctx.InvalidContent("Enum symbol default cannot be found")
	}
	if schema.EnumDefault != nil && schema.HasSymbol(*schema.EnumDefault) {
		return *schema.EnumDefault, nil
	}
	return nil, ctx.InvalidContent("Enum symbol without default cannot be found")
}

func mapArray(value interface{}, items *Schema, ctx *ParsingContext) (interface{}, error) {
	arr, ok := value.([]interface{})
	if !ok {
		return nil, ctx.InvalidContent("Cannot map non-array to array")
	}
	out := make([]interface{}, len(arr))
	for i, elem := range arr {
		v, err := MapToSchema(elem, items, ctx.Child(Array, strconv.Itoa(i)), nil)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func mapMap(value interface{}, values *Schema, ctx *ParsingContext) (interface{}, error) {
	obj, ok := value.(map[string]interface{})
	if !ok {
		return nil, ctx.InvalidContent("Can only convert objects to map")
	}
	out := make(map[string]interface{}, len(obj))
	for key, elem := range obj {
		v, err := MapToSchema(elem, values, ctx.Child(Map, key), nil)
		if err != nil {
			return nil, err
		}
		out[key] = v
	}
	return out, nil
}

func mapUnion(value interface{}, schema *Schema, ctx *ParsingContext, def interface{}) (interface{}, error) {
	if value == nil {
		switch {
		case schema.HasNull():
			return nil, nil
		case def != nil && len(schema.Types) > 0:
			first := schema.Types[0]
			v, err := MapToSchema(def, first, ctx, nil)
			if err != nil {
				return nil, err
			}
			return wrapUnion(first, v), nil
		default:
			return nil, ctx.InvalidContent("Cannot map null value to non-null union")
		}
	}

	var branch *Schema
	switch v := value.(type) {
	case map[string]interface{}:
		if len(v) == 1 {
			for name, inner := range v {
				if tagged := unionBranchByName(schema, name); tagged != nil {
					return mapBranch(inner, tagged, ctx, nil)
				}
			}
		}
		branch = firstBranch(schema, Map, Record)
		if branch == nil {
			if len(v) == 1 {
				return nil, ctx.InvalidContent("Cannot find any matching union types")
			}
			return nil, ctx.InvalidContent("Cannot map object to non-object union")
		}
		return mapBranch(value, branch, ctx, def)
	case json.Number, float64:
		branch = firstBranch(schema, Long, Int, Float, Double)
		if branch == nil {
			return nil, ctx.InvalidContent("Cannot map number to non-number union")
		}
		out, err := mapNumber(value, branch.Type, ctx.Child(Union, branch.SimpleName()))
		if err != nil {
			return nil, err
		}
		return wrapUnion(branch, out), nil
	case string:
		branch = firstBranch(schema, String, Fixed, Bytes, Enum)
		if branch == nil {
			return nil, ctx.InvalidContent("Cannot map text to non-textual union")
		}
		return mapBranch(value, branch, ctx, def)
	case bool:
		branch = firstBranch(schema, Boolean)
		if branch == nil {
			return nil, ctx.InvalidContent("Cannot map boolean to non-boolean union")
		}
		return mapBranch(value, branch, ctx, nil)
	case []interface{}:
		branch = firstBranch(schema, Array)
		if branch == nil {
			return nil, ctx.InvalidContent("Cannot map array to non-array union")
		}
		return mapBranch(value, branch, ctx, nil)
	default:
		return nil, ctx.InvalidContent("Cannot map unknown JSON node type")
	}
}

func mapBranch(value interface{}, branch *Schema, ctx *ParsingContext, def interface{}) (interface{}, error) {
	v, err := MapToSchema(value, branch, ctx.Child(Union, branch.SimpleName()), def)
	if err != nil {
		return nil, err
	}
	return wrapUnion(branch, v), nil
}

func unionBranchByName(schema *Schema, name string) *Schema {
	for _, t := range schema.Types {
		if name == t.SimpleName() || name == t.FullName() {
			return t
		}
	}
	return nil
}

// firstBranch returns the first union branch, in declaration order, whose type
// is one of types.
func firstBranch(schema *Schema, types ...Type) *Schema {
	for _, t := range schema.Types {
		for _, want := range types {
			if t.Type == want {
				return t
			}
		}
	}
	return nil
}

func wrapUnion(branch *Schema, v interface{}) interface{} {
	if branch.Type == Null {
		return nil
	}
	return map[string]interface{}{branch.FullName(): v}
}

func kindOf(value interface{}) string {
	switch value.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case json.Number, float64:
		return "number"
	case string:
		return "string"
	case []interface{}:
		return "array"
	case map[string]interface{}:
		return "object"
	default:
		return fmt.Sprintf("%T", value)
	}
}
