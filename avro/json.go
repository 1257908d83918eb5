package avro

import (
	"fmt"
	"strings"
)

// ToJSON renders a goavro native value as the JSON shape accepted by
// MapToSchema: unions stay tagged with their branch name and bytes become
// one character per byte.
func ToJSON(native interface{}, schema *Schema) (interface{}, error) {
	switch schema.Type {
	case Null:
		return nil, nil
	case Boolean, Int, Long, Float, Double, String, Enum:
		return native, nil
	case Bytes, Fixed:
		b, ok := native.([]byte)
		if !ok {
			return nil, fmt.Errorf("expected []byte for %s, got %T", schema.Type, native)
		}
		var sb strings.Builder
		for _, c := range b {
			sb.WriteRune(rune(c))
		}
		return sb.String(), nil
	case Array:
		arr, ok := native.([]interface{})
		if !ok {
			return nil, fmt.Errorf("expected array, got %T", native)
		}
		out := make([]interface{}, len(arr))
		for i, elem := range arr {
			v, err := ToJSON(elem, schema.Items)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case Map:
		m, ok := native.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("expected map, got %T", native)
		}
		out := make(map[string]interface{}, len(m))
		for k, elem := range m {
			v, err := ToJSON(elem, schema.Values)
			if err != nil {
				return nil, err
			}
			out[k] = v
		}
		return out, nil
	case Record:
		m, ok := native.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("expected record %s, got %T", schema.FullName(), native)
		}
		out := make(map[string]interface{}, len(schema.Fields))
		for _, f := range schema.Fields {
			v, err := ToJSON(m[f.Name], f.Schema)
			if err != nil {
				return nil, err
			}
			out[f.Name] = v
		}
		return out, nil
	case Union:
		if native == nil {
			return nil, nil
		}
		m, ok := native.(map[string]interface{})
		if !ok || len(m) != 1 {
			return nil, fmt.Errorf("expected single-entry union map, got %T", native)
		}
		for name, v := range m {
			branch := unionBranchByName(schema, name)
			if branch == nil {
				return nil, fmt.Errorf("union has no branch %q", name)
			}
			inner, err := ToJSON(v, branch)
			if err != nil {
				return nil, err
			}
			return map[string]interface{}{name: inner}, nil
		}
	}
	return nil, fmt.Errorf("unsupported schema type %s", schema.Type)
}
