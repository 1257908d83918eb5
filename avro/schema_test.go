package avro

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSchema_Record(t *testing.T) {
	t.Parallel()
	s, err := ParseSchema(observationKeySchema)
	require.NoError(t, err)

	assert.Equal(t, Record, s.Type)
	assert.Equal(t, "ObservationKey", s.SimpleName())
	assert.Equal(t, "org.radarcns.kafka.ObservationKey", s.FullName())
	require.Len(t, s.Fields, 3)

	project, ok := s.Field("projectId")
	require.True(t, ok)
	assert.Equal(t, Union, project.Schema.Type)
	assert.True(t, project.Schema.HasNull())
	assert.True(t, project.HasDefault)
	assert.Nil(t, project.Default)

	_, ok = s.Field("organizationId")
	assert.False(t, ok)
	assert.NotEmpty(t, s.Text())
}

func TestParseSchema_NamedReferences(t *testing.T) {
	t.Parallel()
	s, err := ParseSchema(`{
	  "type": "record", "name": "Node", "namespace": "tree",
	  "fields": [
	    {"name": "color", "type": {"type": "enum", "name": "Color", "symbols": ["RED"], "default": "RED"}},
	    {"name": "other", "type": "Color"},
	    {"name": "next", "type": ["null", "tree.Node"]}
	  ]
	}`)
	require.NoError(t, err)

	color, _ := s.Field("color")
	other, _ := s.Field("other")
	next, _ := s.Field("next")
	assert.Same(t, color.Schema, other.Schema)
	assert.Same(t, s, next.Schema.Types[1])
	require.NotNil(t, color.Schema.EnumDefault)
	assert.Equal(t, "RED", *color.Schema.EnumDefault)
}

func TestParseSchema_Errors(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"malformed json":     `{"type": `,
		"unknown type":       `"decimal128"`,
		"nested union":       `["null", ["int"]]`,
		"enum no symbols":    `{"type": "enum", "name": "E", "symbols": []}`,
		"invalid name":       `{"type": "record", "name": "1bad", "fields": []}`,
		"unknown field type": `{"type": "record", "name": "R", "fields": [{"name": "a", "type": "Other"}]}`,
	}
	for name, text := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseSchema(text)
			assert.ErrorIs(t, err, ErrInvalidSchema)
		})
	}
}

func TestParsingContext_String(t *testing.T) {
	t.Parallel()
	ctx := NewContext(Array, "records[0]").Child(Map, "value").Child(Record, "PhoneAcceleration.x")
	assert.Equal(t, "ARRAY { records[0]: MAP { value: RECORD { PhoneAcceleration.x } } }", ctx.String())
	assert.Equal(t, "UNION { string }", NewContext(Union, "string").String())

	var root *ParsingContext
	assert.Equal(t, "", root.String())
	assert.Equal(t, "MAP { key }", root.Child(Map, "key").String())
}

func TestParsingContext_Equal(t *testing.T) {
	t.Parallel()
	a := NewContext(Array, "records[0]").Child(Map, "key")
	b := NewContext(Array, "records[0]").Child(Map, "key")
	c := NewContext(Array, "records[1]").Child(Map, "key")

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(a.Parent))
}

func TestParseSchema_Defaults(t *testing.T) {
	t.Parallel()
	s, err := ParseSchema(`{
	  "type": "record", "name": "Defaults",
	  "fields": [
	    {"name": "count", "type": "int", "default": 3},
	    {"name": "ratio", "type": "double", "default": 0.5},
	    {"name": "label", "type": ["string", "null"], "default": "none"},
	    {"name": "plain", "type": "string"}
	  ]
	}`)
	require.NoError(t, err)

	count, _ := s.Field("count")
	assert.Equal(t, json.Number("3"), count.Default)
	ratio, _ := s.Field("ratio")
	assert.Equal(t, json.Number("0.5"), ratio.Default)
	label, _ := s.Field("label")
	assert.Equal(t, "none", label.Default)
	plain, _ := s.Field("plain")
	assert.False(t, plain.HasDefault)

	out, err := MapToSchema(map[string]interface{}{"plain": "x"}, s, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{
		"count": int32(3),
		"ratio": 0.5,
		"label": map[string]interface{}{"string": "none"},
		"plain": "x",
	}, out)
}
