package avro

import (
	"strings"

	"github.com/aalemi-dev/kafka-gateway/apperr"
)

// ParsingContext is an immutable breadcrumb from the root of a payload to the
// value currently being converted. A nil *ParsingContext is the empty root.
type ParsingContext struct {
	Type   Type
	Name   string
	Parent *ParsingContext
}

// NewContext returns a root context.
func NewContext(t Type, name string) *ParsingContext {
	return &ParsingContext{Type: t, Name: name}
}

// Child returns a context nested under c.
func (c *ParsingContext) Child(t Type, name string) *ParsingContext {
	return &ParsingContext{Type: t, Name: name, Parent: c}
}

// String renders the chain as nested "TYPE { name: child }" text, outermost first.
func (c *ParsingContext) String() string {
	if c == nil {
		return ""
	}
	return c.render("")
}

func (c *ParsingContext) render(child string) string {
	var b strings.Builder
	b.WriteString(strings.ToUpper(c.Type.String()))
	b.WriteString(" { ")
	b.WriteString(c.Name)
	if child != "" {
		b.WriteString(": ")
		b.WriteString(child)
	}
	b.WriteString(" }")
	if c.Parent == nil {
		return b.String()
	}
	return c.Parent.render(b.String())
}

// Equal compares the full chains of c and o.
func (c *ParsingContext) Equal(o *ParsingContext) bool {
	for c != nil && o != nil {
		if c == o {
			return true
		}
		if c.Type != o.Type || c.Name != o.Name {
			return false
		}
		c, o = c.Parent, o.Parent
	}
	return c == nil && o == nil
}

// InvalidContent returns a validation error that embeds the rendered context.
func (c *ParsingContext) InvalidContent(message string) *apperr.Error {
	if c == nil {
		return apperr.InvalidContent(message)
	}
	return apperr.InvalidContentf("%s (context %s)", message, c)
}
