package endpoint

import (
	"strings"

	"github.com/dogmatiq/propertykit/fault"
)

// ParameterMarker is the prefix that identifies a parameter segment within an
// endpoint template.
const ParameterMarker = "%{"

// Separator is the byte that delimits segments in templates and paths.
const Separator = '/'

// Segment is a single segment of an endpoint [Template].
type Segment struct {
	// Text is the segment exactly as it appears in the template.
	Text string
}

// IsParameter returns true if the segment is a parameter, which is matched
// structurally rather than by value.
func (s Segment) IsParameter() bool {
	return strings.HasPrefix(s.Text, ParameterMarker)
}

// Name returns the name of a parameter segment, that is, the text between the
// parameter marker and the closing brace.
//
// It returns an empty string for literal segments.
func (s Segment) Name() string {
	if !s.IsParameter() {
		return ""
	}

	name := strings.TrimPrefix(s.Text, ParameterMarker)
	return strings.TrimSuffix(name, "}")
}

// Template is a parsed endpoint template, such as "/%{sensor_id}/value".
type Template struct {
	text     string
	segments []Segment
}

// Parse parses an endpoint template.
//
// It returns an error matching [fault.ErrInvalidArgument] if the template is
// empty, does not begin with a separator, or has no segments.
func Parse(template string) (Template, error) {
	if template == "" || template[0] != Separator {
		return Template{}, fault.InvalidArgument("endpoint template %q must begin with '/'", template)
	}

	var segments []Segment
	for _, s := range strings.Split(template, string(Separator)) {
		if s != "" {
			segments = append(segments, Segment{s})
		}
	}

	if len(segments) == 0 {
		return Template{}, fault.InvalidArgument("endpoint template %q has no segments", template)
	}

	return Template{template, segments}, nil
}

// MustParse parses an endpoint template, or panics if it is malformed.
func MustParse(template string) Template {
	t, err := Parse(template)
	if err != nil {
		panic(err)
	}
	return t
}

// String returns the template text.
func (t Template) String() string {
	return t.text
}

// Segments returns the segments of the template.
func (t Template) Segments() []Segment {
	return t.segments
}

// ParameterCount returns the number of parameter segments in the template.
func (t Template) ParameterCount() int {
	n := 0
	for _, s := range t.segments {
		if s.IsParameter() {
			n++
		}
	}
	return n
}

// Parameters returns the names of the template's parameters, in order.
func (t Template) Parameters() []string {
	var names []string
	for _, s := range t.segments {
		if s.IsParameter() {
			names = append(names, s.Name())
		}
	}
	return names
}

// Expand builds a concrete path from the template by substituting each
// parameter with the corresponding entry in values.
//
// Every parameter value must satisfy the default parameter grammar.
func (t Template) Expand(values map[string]string) (string, error) {
	var b strings.Builder

	for _, s := range t.segments {
		b.WriteByte(Separator)

		if !s.IsParameter() {
			b.WriteString(s.Text)
			continue
		}

		v, ok := values[s.Name()]
		if !ok {
			return "", fault.InvalidArgument("no value for parameter %q", s.Name())
		}

		if !defaultGrammar.MatchString(v) {
			return "", fault.InvalidArgument("value %q for parameter %q is not a valid identifier", v, s.Name())
		}

		b.WriteString(v)
	}

	return b.String(), nil
}
